package implementation

import (
	"context"
	"errors"

	"medibook-be/internal/entity"
	"medibook-be/internal/mapper"
	"medibook-be/internal/model"
	"medibook-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PatientRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ScheduleMapper
}

func NewPatientRepository(db *gorm.DB) contract.PatientRepository {
	return &PatientRepositoryImpl{
		db:     db,
		mapper: mapper.NewScheduleMapper(),
	}
}

func (r *PatientRepositoryImpl) FindByDocument(ctx context.Context, documentNumber string) (*entity.Patient, error) {
	var m model.Patient
	if err := r.db.WithContext(ctx).Where("document_number = ?", documentNumber).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.PatientToEntity(&m), nil
}

func (r *PatientRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*entity.Patient, error) {
	var m model.Patient
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.PatientToEntity(&m), nil
}

type ProfessionalRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ScheduleMapper
}

func NewProfessionalRepository(db *gorm.DB) contract.ProfessionalRepository {
	return &ProfessionalRepositoryImpl{
		db:     db,
		mapper: mapper.NewScheduleMapper(),
	}
}

func (r *ProfessionalRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*entity.Professional, error) {
	var m model.Professional
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ProfessionalToEntity(&m), nil
}

func (r *ProfessionalRepositoryImpl) ListCities(ctx context.Context) ([]string, error) {
	var cities []string
	err := r.db.WithContext(ctx).
		Model(&model.Professional{}).
		Distinct("city").
		Order("city").
		Pluck("city", &cities).Error
	if err != nil {
		return nil, err
	}
	return cities, nil
}

func (r *ProfessionalRepositoryImpl) ListSpecialties(ctx context.Context, city string) ([]string, error) {
	var specialties []string
	err := r.db.WithContext(ctx).
		Model(&model.Professional{}).
		Where("city = ?", city).
		Distinct("specialty").
		Order("specialty").
		Pluck("specialty", &specialties).Error
	if err != nil {
		return nil, err
	}
	return specialties, nil
}

func (r *ProfessionalRepositoryImpl) ListByCityAndSpecialty(ctx context.Context, city, specialty string) ([]*entity.Professional, error) {
	var models []*model.Professional
	err := r.db.WithContext(ctx).
		Where("city = ? AND specialty = ?", city, specialty).
		Order("full_name").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	entities := make([]*entity.Professional, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ProfessionalToEntity(m)
	}
	return entities, nil
}
