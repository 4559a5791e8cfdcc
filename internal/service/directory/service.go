package directory

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/hospiq/scheduling-api/internal/model"
	"github.com/hospiq/scheduling-api/internal/repository"
	apperrors "github.com/hospiq/scheduling-api/pkg/errors"
)

const (
	cacheTTL     = 5 * time.Minute
	cacheCleanup = 15 * time.Minute
)

// Service maintains the scheduling directory: hospitals, departments,
// doctors and patients. Single-record reads go through an in-process
// cache because the booking path looks the same records up on every
// request; every write invalidates the entry.
type Service struct {
	hospitals repository.HospitalRepository
	doctors   repository.DoctorRepository
	patients  repository.PatientRepository
	cache     *cache.Cache
}

func NewService(hospitals repository.HospitalRepository, doctors repository.DoctorRepository, patients repository.PatientRepository) *Service {
	return &Service{
		hospitals: hospitals,
		doctors:   doctors,
		patients:  patients,
		cache:     cache.New(cacheTTL, cacheCleanup),
	}
}

func (s *Service) CreateHospital(ctx context.Context, req *model.CreateHospitalRequest) (*model.Hospital, error) {
	hospital := &model.Hospital{
		Name:     req.Name,
		Timezone: req.Timezone,
		Address:  req.Address,
		Phone:    req.Phone,
		Status:   model.HospitalStatusActive,
	}
	if hospital.Timezone == "" {
		hospital.Timezone = "UTC"
	}
	if err := s.hospitals.Create(ctx, hospital); err != nil {
		return nil, apperrors.NewInternal(err)
	}
	return hospital, nil
}

func (s *Service) GetHospital(ctx context.Context, id uuid.UUID) (*model.Hospital, error) {
	key := "hospital:" + id.String()
	if cached, found := s.cache.Get(key); found {
		return cached.(*model.Hospital), nil
	}

	hospital, err := s.hospitals.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("hospital", err)
		}
		return nil, apperrors.NewInternal(err)
	}
	s.cache.Set(key, hospital, cache.DefaultExpiration)
	return hospital, nil
}

func (s *Service) UpdateHospital(ctx context.Context, id uuid.UUID, req *model.UpdateHospitalRequest) (*model.Hospital, error) {
	hospital, err := s.GetHospital(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		hospital.Name = *req.Name
	}
	if req.Timezone != nil {
		hospital.Timezone = *req.Timezone
	}
	if req.Address != nil {
		hospital.Address = *req.Address
	}
	if req.Phone != nil {
		hospital.Phone = *req.Phone
	}
	if req.Status != nil {
		hospital.Status = *req.Status
	}

	if err := s.hospitals.Update(ctx, hospital); err != nil {
		return nil, apperrors.NewInternal(err)
	}
	s.cache.Delete("hospital:" + id.String())
	return hospital, nil
}

func (s *Service) DeleteHospital(ctx context.Context, id uuid.UUID) error {
	if err := s.hospitals.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NewNotFound("hospital", err)
		}
		return apperrors.NewInternal(err)
	}
	s.cache.Delete("hospital:" + id.String())
	return nil
}

func (s *Service) ListHospitals(ctx context.Context) ([]*model.Hospital, error) {
	hospitals, err := s.hospitals.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	return hospitals, nil
}

func (s *Service) CreateDepartment(ctx context.Context, hospitalID uuid.UUID, req *model.CreateDepartmentRequest) (*model.Department, error) {
	if _, err := s.GetHospital(ctx, hospitalID); err != nil {
		return nil, err
	}

	department := &model.Department{
		HospitalID:  hospitalID,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.hospitals.CreateDepartment(ctx, department); err != nil {
		return nil, apperrors.NewInternal(err)
	}
	return department, nil
}

func (s *Service) GetDepartment(ctx context.Context, id uuid.UUID) (*model.Department, error) {
	department, err := s.hospitals.GetDepartment(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("department", err)
		}
		return nil, apperrors.NewInternal(err)
	}
	return department, nil
}

func (s *Service) ListDepartments(ctx context.Context, hospitalID uuid.UUID) ([]*model.Department, error) {
	departments, err := s.hospitals.ListDepartments(ctx, hospitalID)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	return departments, nil
}

func (s *Service) DeleteDepartment(ctx context.Context, id uuid.UUID) error {
	if err := s.hospitals.DeleteDepartment(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NewNotFound("department", err)
		}
		return apperrors.NewInternal(err)
	}
	return nil
}
