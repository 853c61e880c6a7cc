package contract

import (
	"context"

	"medibook-be/internal/entity"

	"github.com/google/uuid"
)

// PatientRepository is the read side of the external patient service.
type PatientRepository interface {
	// FindByDocument returns (nil, nil) when no patient matches.
	FindByDocument(ctx context.Context, documentNumber string) (*entity.Patient, error)
	// FindByID returns (nil, nil) when the patient does not exist.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Patient, error)
}

type ProfessionalRepository interface {
	// FindByID returns (nil, nil) when the professional does not exist.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Professional, error)
	ListCities(ctx context.Context) ([]string, error)
	ListSpecialties(ctx context.Context, city string) ([]string, error)
	ListByCityAndSpecialty(ctx context.Context, city, specialty string) ([]*entity.Professional, error)
}
