package model

import (
	"github.com/google/uuid"
)

type HospitalStatus string

const (
	HospitalStatusActive   HospitalStatus = "active"
	HospitalStatusInactive HospitalStatus = "inactive"
)

type Hospital struct {
	Base
	Name     string         `db:"name" json:"name"`
	Timezone string         `db:"timezone" json:"timezone"`
	Address  string         `db:"address" json:"address,omitempty"`
	Phone    string         `db:"phone" json:"phone,omitempty"`
	Status   HospitalStatus `db:"status" json:"status"`
}

type Department struct {
	Base
	HospitalID  uuid.UUID `db:"hospital_id" json:"hospital_id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description,omitempty"`
}

type CreateHospitalRequest struct {
	Name     string `json:"name" binding:"required"`
	Timezone string `json:"timezone"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
}

type UpdateHospitalRequest struct {
	Name     *string         `json:"name"`
	Timezone *string         `json:"timezone"`
	Address  *string         `json:"address"`
	Phone    *string         `json:"phone"`
	Status   *HospitalStatus `json:"status"`
}

type CreateDepartmentRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}
