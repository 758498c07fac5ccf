package depots

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ducvu/wasteflow-backend/pkg/db/models"
	pkgerrors "github.com/ducvu/wasteflow-backend/pkg/errors"
)

type depotRepository interface {
	Create(ctx context.Context, dto CreateDepotDTO) (*models.Depot, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Depot, error)
	List(ctx context.Context) ([]models.Depot, error)
	Update(ctx context.Context, depot *models.Depot) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountVehicles(ctx context.Context, depotID uuid.UUID) (int64, error)
}

// Service exposes depot operations.
type Service interface {
	Create(ctx context.Context, input CreateDepotDTO) (*DepotDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*DepotDTO, error)
	List(ctx context.Context) ([]DepotDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateDepotInput) (*DepotDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo depotRepository
}

// NewService builds a depot service with the provided repository.
func NewService(repo depotRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("depot repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateDepotDTO) (*DepotDTO, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "depot name is required")
	}
	if !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid waste category")
	}

	depot, err := s.repo.Create(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create depot")
	}
	return FromModel(depot), nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*DepotDTO, error) {
	depot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "depot not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load depot")
	}
	return FromModel(depot), nil
}

func (s *service) List(ctx context.Context) ([]DepotDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list depots")
	}
	dtos := make([]DepotDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i]))
	}
	return dtos, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateDepotInput) (*DepotDTO, error) {
	depot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "depot not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load depot")
	}

	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "depot name cannot be empty")
		}
		depot.Name = trimmed
	}
	if input.Latitude != nil {
		depot.Latitude = *input.Latitude
	}
	if input.Longitude != nil {
		depot.Longitude = *input.Longitude
	}
	if input.Address != nil {
		depot.Address = *input.Address
	}

	if err := s.repo.Update(ctx, depot); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update depot")
	}
	return FromModel(depot), nil
}

// Delete refuses to remove a depot that still has vehicles based at it.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "depot not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load depot")
	}

	count, err := s.repo.CountVehicles(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count depot vehicles")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "depot still has assigned vehicles").
			WithDetails(map[string]any{"vehicle_count": count})
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete depot")
	}
	return nil
}
