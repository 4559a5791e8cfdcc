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

func (s *Service) CreateDoctor(ctx context.Context, req *model.CreateDoctorRequest) (*model.Doctor, error) {
	hospitalID, err := uuid.Parse(req.HospitalID)
	if err != nil {
		return nil, apperrors.NewValidation("invalid hospital id", err)
	}
	if _, err := s.GetHospital(ctx, hospitalID); err != nil {
		return nil, err
	}

	doctor := &model.Doctor{
		HospitalID: hospitalID,
		FullName:   req.FullName,
		Specialty:  req.Specialty,
		Email:      req.Email,
		Phone:      req.Phone,
		Status:     model.DoctorStatusActive,
	}
	if req.DepartmentID != nil {
		departmentID, err := uuid.Parse(*req.DepartmentID)
		if err != nil {
			return nil, apperrors.NewValidation("invalid department id", err)
		}
		department, err := s.GetDepartment(ctx, departmentID)
		if err != nil {
			return nil, err
		}
		if department.HospitalID != hospitalID {
			return nil, apperrors.NewValidation("department belongs to another hospital", nil)
		}
		doctor.DepartmentID = &departmentID
	}

	if err := s.doctors.Create(ctx, doctor); err != nil {
		return nil, apperrors.NewInternal(err)
	}
	return doctor, nil
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	key := "doctor:" + id.String()
	if cached, found := s.cache.Get(key); found {
		return cached.(*model.Doctor), nil
	}

	doctor, err := s.doctors.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("doctor", err)
		}
		return nil, apperrors.NewInternal(err)
	}
	s.cache.Set(key, doctor, cache.DefaultExpiration)
	return doctor, nil
}

func (s *Service) UpdateDoctor(ctx context.Context, id uuid.UUID, req *model.UpdateDoctorRequest) (*model.Doctor, error) {
	doctor, err := s.GetDoctor(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.DepartmentID != nil {
		departmentID, err := uuid.Parse(*req.DepartmentID)
		if err != nil {
			return nil, apperrors.NewValidation("invalid department id", err)
		}
		department, err := s.GetDepartment(ctx, departmentID)
		if err != nil {
			return nil, err
		}
		if department.HospitalID != doctor.HospitalID {
			return nil, apperrors.NewValidation("department belongs to another hospital", nil)
		}
		doctor.DepartmentID = &departmentID
	}
	if req.FullName != nil {
		doctor.FullName = *req.FullName
	}
	if req.Specialty != nil {
		doctor.Specialty = *req.Specialty
	}
	if req.Email != nil {
		doctor.Email = *req.Email
	}
	if req.Phone != nil {
		doctor.Phone = *req.Phone
	}

	if err := s.doctors.Update(ctx, doctor); err != nil {
		return nil, apperrors.NewInternal(err)
	}
	s.cache.Delete("doctor:" + id.String())
	return doctor, nil
}

// UpdateDoctorStatus changes a doctor's booking status. Moving a doctor
// off `active` does not touch existing appointments; it only stops new
// slots from being generated.
func (s *Service) UpdateDoctorStatus(ctx context.Context, id uuid.UUID, status model.DoctorStatus) (*model.Doctor, error) {
	doctor, err := s.GetDoctor(ctx, id)
	if err != nil {
		return nil, err
	}
	if doctor.Status == status {
		return doctor, nil
	}

	if err := s.doctors.UpdateStatus(ctx, id, status); err != nil {
		return nil, apperrors.NewInternal(err)
	}
	doctor.Status = status
	s.cache.Delete("doctor:" + id.String())
	return doctor, nil
}

func (s *Service) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	if err := s.doctors.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NewNotFound("doctor", err)
		}
		return apperrors.NewInternal(err)
	}
	s.cache.Delete("doctor:" + id.String())
	return nil
}

func (s *Service) ListDoctors(ctx context.Context, filters *model.DoctorFilters) ([]*model.Doctor, error) {
	doctors, err := s.doctors.List(ctx, filters)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	return doctors, nil
}
