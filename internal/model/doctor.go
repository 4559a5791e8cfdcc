package model

import (
	"github.com/google/uuid"
)

type DoctorStatus string

const (
	DoctorStatusActive   DoctorStatus = "active"
	DoctorStatusInactive DoctorStatus = "inactive"
	DoctorStatusOnLeave  DoctorStatus = "on_leave"
)

type Doctor struct {
	Base
	HospitalID   uuid.UUID    `db:"hospital_id" json:"hospital_id"`
	DepartmentID *uuid.UUID   `db:"department_id" json:"department_id,omitempty"`
	FullName     string       `db:"full_name" json:"full_name"`
	Specialty    string       `db:"specialty" json:"specialty,omitempty"`
	Email        string       `db:"email" json:"email,omitempty"`
	Phone        string       `db:"phone" json:"phone,omitempty"`
	Status       DoctorStatus `db:"status" json:"status"`
}

// Bookable reports whether the doctor can take new appointments.
func (d *Doctor) Bookable() bool {
	return d.Status == DoctorStatusActive
}

type CreateDoctorRequest struct {
	HospitalID   string  `json:"hospital_id" binding:"required,uuid"`
	DepartmentID *string `json:"department_id" binding:"omitempty,uuid"`
	FullName     string  `json:"full_name" binding:"required"`
	Specialty    string  `json:"specialty"`
	Email        string  `json:"email" binding:"omitempty,email"`
	Phone        string  `json:"phone"`
}

type UpdateDoctorRequest struct {
	DepartmentID *string `json:"department_id" binding:"omitempty,uuid"`
	FullName     *string `json:"full_name"`
	Specialty    *string `json:"specialty"`
	Email        *string `json:"email" binding:"omitempty,email"`
	Phone        *string `json:"phone"`
}

type UpdateDoctorStatusRequest struct {
	Status DoctorStatus `json:"status" binding:"required,oneof=active inactive on_leave"`
}

type DoctorFilters struct {
	HospitalID   uuid.UUID
	DepartmentID uuid.UUID
	Specialty    string
	Status       DoctorStatus
	Name         string
}
