package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/hospiq/scheduling-api/internal/model"
)

// All repository interfaces in one file
type (
	HospitalRepository interface {
		Create(ctx context.Context, hospital *model.Hospital) error
		Get(ctx context.Context, id uuid.UUID) (*model.Hospital, error)
		Update(ctx context.Context, hospital *model.Hospital) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Hospital, error)
		CreateDepartment(ctx context.Context, department *model.Department) error
		GetDepartment(ctx context.Context, id uuid.UUID) (*model.Department, error)
		ListDepartments(ctx context.Context, hospitalID uuid.UUID) ([]*model.Department, error)
		DeleteDepartment(ctx context.Context, id uuid.UUID) error
	}

	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		Update(ctx context.Context, doctor *model.Doctor) error
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.DoctorStatus) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.DoctorFilters) ([]*model.Doctor, error)
		// FindActiveByName returns every active doctor in the hospital whose
		// full name matches exactly; the scheduler decides what multiple
		// matches mean.
		FindActiveByName(ctx context.Context, hospitalID uuid.UUID, name string) ([]*model.Doctor, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)
	}

	AvailabilityRepository interface {
		Create(ctx context.Context, rule *model.AvailabilityRule) error
		Get(ctx context.Context, id uuid.UUID) (*model.AvailabilityRule, error)
		Update(ctx context.Context, rule *model.AvailabilityRule) error
		Delete(ctx context.Context, id uuid.UUID) error
		ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.AvailabilityRule, error)
		ListActiveByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.AvailabilityRule, error)
		// FindByWindow looks up the rule occupying exactly this weekly
		// window, used to reject duplicate rules.
		FindByWindow(ctx context.Context, doctorID uuid.UUID, weekday model.Weekday, startTime, endTime string) (*model.AvailabilityRule, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		// CountActiveForSlot counts appointments occupying the slot, i.e.
		// those whose status still holds capacity.
		CountActiveForSlot(ctx context.Context, key model.SlotKey) (int, error)
		// CountActiveForPatient counts the patient's own non-terminal
		// appointments in the slot, used to reject duplicate bookings.
		CountActiveForPatient(ctx context.Context, patientID uuid.UUID, key model.SlotKey) (int, error)
		ListForDoctorBetween(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*model.Appointment, error)
	}

	DraftRepository interface {
		Archive(ctx context.Context, draft *model.Draft) error
		ListArchived(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*model.Draft, error)
	}

	AuditRepository interface {
		Create(ctx context.Context, event *model.AuditEvent) error
		List(ctx context.Context, filters *model.AuditFilters, pagination model.Pagination) ([]*model.AuditEvent, int64, error)
		DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
	}

	OutboxRepository interface {
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		Create(ctx context.Context, event *model.OutboxEvent) error
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, err *string) error
		BeginTx(ctx context.Context) (*sql.Tx, error)
		UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uuid.UUID, status string, errorMessage *string, retryAt *time.Time) error
		MoveToDeadLetter(ctx context.Context, tx *sql.Tx, event *model.OutboxEvent) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
