package validator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type bookingForm struct {
	PatientID string    `validate:"required,uuid"`
	Channel   string    `validate:"omitempty,oneof=web whatsapp sms"`
	StartAt   time.Time `validate:"required"`
	EndAt     time.Time `validate:"required,gtfield=StartAt"`
}

func validForm() bookingForm {
	start := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	return bookingForm{
		PatientID: "7bb4b2d8-5d3e-4a54-9f4b-0a4a3bb6f3a1",
		Channel:   "whatsapp",
		StartAt:   start,
		EndAt:     start.Add(30 * time.Minute),
	}
}

func TestValidateAcceptsValidStruct(t *testing.T) {
	require.NoError(t, New().Validate(validForm()))
}

func TestValidateDescribesFailures(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		mutate  func(*bookingForm)
		message string
	}{
		{
			name:    "missing required field",
			mutate:  func(f *bookingForm) { f.PatientID = "" },
			message: "PatientID is required",
		},
		{
			name:    "malformed uuid",
			mutate:  func(f *bookingForm) { f.PatientID = "not-a-uuid" },
			message: "PatientID must be a valid UUID",
		},
		{
			name:    "end before start",
			mutate:  func(f *bookingForm) { f.EndAt = f.StartAt.Add(-time.Minute) },
			message: "EndAt must be after StartAt",
		},
		{
			name:    "unknown channel",
			mutate:  func(f *bookingForm) { f.Channel = "pigeon" },
			message: "Channel must be one of web whatsapp sms",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.mutate(&form)

			err := v.Validate(form)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestValidateJoinsMultipleFailures(t *testing.T) {
	form := validForm()
	form.PatientID = ""
	form.Channel = "pigeon"

	err := New().Validate(form)
	require.Error(t, err)
	require.Contains(t, err.Error(), "PatientID is required")
	require.Contains(t, err.Error(), "; ")
	require.Contains(t, err.Error(), "Channel must be one of")
}

func TestValidateNonStruct(t *testing.T) {
	require.Error(t, New().Validate(42))
}

func TestValidateVar(t *testing.T) {
	v := New()
	require.NoError(t, v.ValidateVar("ada@example.com", "email"))
	require.Error(t, v.ValidateVar("nope", "email"))
}
