package api_test

import (
	"fmt"
	"testing"
	"time"
)

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s %d", prefix, time.Now().UnixNano())
}

func createTestPatient(t *testing.T) string {
	t.Helper()

	resp := makeRequest("POST", "/patients", map[string]interface{}{
		"hospital_id": hospitalID,
		"full_name":   uniqueName("Test Patient"),
		"email":       fmt.Sprintf("patient_%d@example.com", time.Now().UnixNano()),
		"gender":      "other",
	})
	if !resp.IsSuccess() {
		t.Fatalf("failed to create test patient: %s", resp.Message)
	}
	return resp.GetString("id")
}

// createTestDoctor registers a doctor in the shared department. Pass a
// non-unique name on purpose when a test needs an ambiguous reference.
func createTestDoctor(t *testing.T, fullName string) string {
	t.Helper()

	resp := makeRequest("POST", "/doctors", map[string]interface{}{
		"hospital_id":   hospitalID,
		"department_id": departmentID,
		"full_name":     fullName,
		"specialty":     "cardiology",
	})
	if !resp.IsSuccess() {
		t.Fatalf("failed to create test doctor: %s", resp.Message)
	}
	return resp.GetString("id")
}

func deleteDoctor(doctorID string) {
	makeRequest("DELETE", fmt.Sprintf("/doctors/%s", doctorID), nil)
}

// addDailyRules publishes a 09:00-12:00 rule for every weekday of a
// test-owned doctor.
func addDailyRules(t *testing.T, doctorID string, capacity int) {
	t.Helper()

	for weekday := 0; weekday <= 6; weekday++ {
		resp := makeRequest("POST", fmt.Sprintf("/doctors/%s/availability", doctorID), map[string]interface{}{
			"weekday":               weekday,
			"start_time":            "09:00",
			"end_time":              "12:00",
			"capacity":              capacity,
			"slot_duration_minutes": 30,
		})
		if !resp.IsSuccess() {
			t.Fatalf("failed to create availability rule for weekday %d: %s", weekday, resp.Message)
		}
	}
}

// listSlots returns the doctor's open slots over the next `days` days.
func listSlots(t *testing.T, doctorID string, days int) []map[string]interface{} {
	t.Helper()

	from := time.Now().UTC()
	to := from.AddDate(0, 0, days)
	resp := makeRequest("GET", fmt.Sprintf("/doctors/%s/slots?from=%s&to=%s&limit=100",
		doctorID, from.Format(time.RFC3339), to.Format(time.RFC3339)), nil)
	if !resp.IsSuccess() {
		t.Fatalf("failed to list slots: %s", resp.Message)
	}
	return resp.List
}

func slotTimes(t *testing.T, slot map[string]interface{}) (string, string) {
	t.Helper()

	start, ok := slot["start_at"].(string)
	if !ok {
		t.Fatalf("slot has no start_at: %v", slot)
	}
	end, ok := slot["end_at"].(string)
	if !ok {
		t.Fatalf("slot has no end_at: %v", slot)
	}
	return start, end
}

func bookSlot(t *testing.T, patientID, doctorRef, startAt, endAt string) TestResponse {
	t.Helper()

	return makeRequest("POST", "/appointments", map[string]interface{}{
		"hospital_id": hospitalID,
		"patient_id":  patientID,
		"doctor_ref":  doctorRef,
		"start_at":    startAt,
		"end_at":      endAt,
		"source":      "portal",
	})
}
