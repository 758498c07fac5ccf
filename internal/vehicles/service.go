package vehicles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ducvu/wasteflow-backend/pkg/db/models"
	"github.com/ducvu/wasteflow-backend/pkg/enums"
	pkgerrors "github.com/ducvu/wasteflow-backend/pkg/errors"
)

type vehicleRepository interface {
	Create(ctx context.Context, vehicle *models.Vehicle) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	List(ctx context.Context) ([]models.Vehicle, error)
	Update(ctx context.Context, vehicle *models.Vehicle) error
	ApplyTelemetry(ctx context.Context, id uuid.UUID, lat, lon, load float64) (bool, error)
	CountOpenRoutes(ctx context.Context, vehicleID uuid.UUID) (int64, error)
}

type depotRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Depot, error)
}

// Service exposes vehicle operations.
type Service interface {
	Create(ctx context.Context, input CreateVehicleDTO) (*VehicleDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*VehicleDTO, error)
	List(ctx context.Context) ([]VehicleDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateVehicleInput) (*VehicleDTO, error)
	ApplyTelemetry(ctx context.Context, id uuid.UUID, lat, lon, load float64) error
}

type service struct {
	repo   vehicleRepository
	depots depotRepository
}

// NewService builds a vehicle service with the provided repositories.
func NewService(repo vehicleRepository, depots depotRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("vehicle repository required")
	}
	if depots == nil {
		return nil, fmt.Errorf("depot repository required")
	}
	return &service{repo: repo, depots: depots}, nil
}

func (s *service) Create(ctx context.Context, input CreateVehicleDTO) (*VehicleDTO, error) {
	input.LicensePlate = strings.ToUpper(strings.TrimSpace(input.LicensePlate))
	if input.LicensePlate == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "license plate is required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid vehicle type")
	}
	if !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid waste category")
	}
	if input.Capacity.IsNegative() || input.Capacity.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "capacity must be positive")
	}

	depot, err := s.depots.FindByID(ctx, input.DepotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "depot not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load depot")
	}

	vehicle := input.ToModel(depot)
	if err := s.repo.Create(ctx, vehicle); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create vehicle")
	}
	return FromModel(vehicle), nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*VehicleDTO, error) {
	vehicle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
	}
	return FromModel(vehicle), nil
}

func (s *service) List(ctx context.Context) ([]VehicleDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vehicles")
	}
	dtos := make([]VehicleDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i]))
	}
	return dtos, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateVehicleInput) (*VehicleDTO, error) {
	vehicle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
	}

	if input.DriverID != nil {
		vehicle.DriverID = input.DriverID
	}
	if input.Capacity != nil {
		if input.Capacity.IsNegative() || input.Capacity.IsZero() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "capacity must be positive")
		}
		vehicle.Capacity = *input.Capacity
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid vehicle status")
		}
		if err := s.guardStatusChange(ctx, vehicle, *input.Status); err != nil {
			return nil, err
		}
		vehicle.Status = *input.Status
	}

	if err := s.repo.Update(ctx, vehicle); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update vehicle")
	}
	return FromModel(vehicle), nil
}

// guardStatusChange keeps vehicle status consistent with route ownership: a
// vehicle driving an in-progress route must stay active.
func (s *service) guardStatusChange(ctx context.Context, vehicle *models.Vehicle, next enums.VehicleStatus) error {
	if next == vehicle.Status {
		return nil
	}
	if vehicle.Status != enums.VehicleStatusActive || next == enums.VehicleStatusActive {
		return nil
	}

	open, err := s.repo.CountOpenRoutes(ctx, vehicle.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count open routes")
	}
	if open > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "vehicle still owns an in-progress route").
			WithDetails(map[string]any{"open_routes": open})
	}
	return nil
}

func (s *service) ApplyTelemetry(ctx context.Context, id uuid.UUID, lat, lon, load float64) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "vehicle id required")
	}
	found, err := s.repo.ApplyTelemetry(ctx, id, lat, lon, load)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply telemetry")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
	}
	return nil
}
