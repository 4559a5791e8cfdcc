package directory

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/hospiq/scheduling-api/internal/model"
	apperrors "github.com/hospiq/scheduling-api/pkg/errors"
)

func (s *Service) CreatePatient(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error) {
	hospitalID, err := uuid.Parse(req.HospitalID)
	if err != nil {
		return nil, apperrors.NewValidation("invalid hospital id", err)
	}
	if _, err := s.GetHospital(ctx, hospitalID); err != nil {
		return nil, err
	}

	patient := &model.Patient{
		HospitalID:  hospitalID,
		FullName:    req.FullName,
		Email:       req.Email,
		Phone:       req.Phone,
		Gender:      req.Gender,
		DateOfBirth: req.DateOfBirth,
	}
	if patient.Gender == "" {
		patient.Gender = model.GenderUnknown
	}

	if err := s.patients.Create(ctx, patient); err != nil {
		return nil, apperrors.NewInternal(err)
	}
	return patient, nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	key := "patient:" + id.String()
	if cached, found := s.cache.Get(key); found {
		return cached.(*model.Patient), nil
	}

	patient, err := s.patients.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("patient", err)
		}
		return nil, apperrors.NewInternal(err)
	}
	s.cache.Set(key, patient, cache.DefaultExpiration)
	return patient, nil
}

func (s *Service) UpdatePatient(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	patient, err := s.GetPatient(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		patient.FullName = *req.FullName
	}
	if req.Email != nil {
		patient.Email = *req.Email
	}
	if req.Phone != nil {
		patient.Phone = *req.Phone
	}
	if req.Gender != nil {
		patient.Gender = *req.Gender
	}
	if req.DateOfBirth != nil {
		patient.DateOfBirth = req.DateOfBirth
	}

	if err := s.patients.Update(ctx, patient); err != nil {
		return nil, apperrors.NewInternal(err)
	}
	s.cache.Delete("patient:" + id.String())
	return patient, nil
}

func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	if err := s.patients.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NewNotFound("patient", err)
		}
		return apperrors.NewInternal(err)
	}
	s.cache.Delete("patient:" + id.String())
	return nil
}

func (s *Service) ListPatients(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	patients, err := s.patients.List(ctx, filters)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	return patients, nil
}
