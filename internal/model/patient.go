package model

import (
	"time"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderOther   Gender = "other"
	GenderUnknown Gender = "unknown"
)

type Patient struct {
	Base
	HospitalID  uuid.UUID  `db:"hospital_id" json:"hospital_id"`
	FullName    string     `db:"full_name" json:"full_name"`
	Email       string     `db:"email" json:"email,omitempty"`
	Phone       string     `db:"phone" json:"phone,omitempty"`
	Gender      Gender     `db:"gender" json:"gender"`
	DateOfBirth *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
}

type CreatePatientRequest struct {
	HospitalID  string     `json:"hospital_id" binding:"required,uuid"`
	FullName    string     `json:"full_name" binding:"required"`
	Email       string     `json:"email" binding:"omitempty,email"`
	Phone       string     `json:"phone"`
	Gender      Gender     `json:"gender" binding:"omitempty,oneof=male female other unknown"`
	DateOfBirth *time.Time `json:"date_of_birth"`
}

type UpdatePatientRequest struct {
	FullName    *string    `json:"full_name"`
	Email       *string    `json:"email" binding:"omitempty,email"`
	Phone       *string    `json:"phone"`
	Gender      *Gender    `json:"gender" binding:"omitempty,oneof=male female other unknown"`
	DateOfBirth *time.Time `json:"date_of_birth"`
}

type PatientFilters struct {
	HospitalID uuid.UUID
	Name       string
	Phone      string
}
