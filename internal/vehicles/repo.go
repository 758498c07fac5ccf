package vehicles

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ducvu/wasteflow-backend/pkg/db/models"
	"github.com/ducvu/wasteflow-backend/pkg/enums"
)

// Repository defines persistence operations for fleet vehicles.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, vehicle *models.Vehicle) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	List(ctx context.Context) ([]models.Vehicle, error)
	ListDispatchable(ctx context.Context) ([]models.Vehicle, error)
	Update(ctx context.Context, vehicle *models.Vehicle) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.VehicleStatus) error
	ApplyTelemetry(ctx context.Context, id uuid.UUID, lat, lon, load float64) (bool, error)
	CountOpenRoutes(ctx context.Context, vehicleID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to vehicle operations.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Create persists a new vehicle row.
func (r *repository) Create(ctx context.Context, vehicle *models.Vehicle) error {
	if vehicle == nil {
		return fmt.Errorf("vehicle is required")
	}
	return r.db.WithContext(ctx).Create(vehicle).Error
}

// FindByID loads a vehicle by its UUID.
func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&vehicle).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// List returns all vehicles ordered by license plate.
func (r *repository) List(ctx context.Context) ([]models.Vehicle, error) {
	var vehicles []models.Vehicle
	if err := r.db.WithContext(ctx).Order("license_plate ASC").Find(&vehicles).Error; err != nil {
		return nil, err
	}
	return vehicles, nil
}

// ListDispatchable returns every vehicle that may enter a solving round,
// i.e. anything not flagged for repair.
func (r *repository) ListDispatchable(ctx context.Context) ([]models.Vehicle, error) {
	var vehicles []models.Vehicle
	if err := r.db.WithContext(ctx).
		Where("status <> ?", enums.VehicleStatusRepair).
		Order("license_plate ASC").
		Find(&vehicles).Error; err != nil {
		return nil, err
	}
	return vehicles, nil
}

// Update saves the provided vehicle.
func (r *repository) Update(ctx context.Context, vehicle *models.Vehicle) error {
	if vehicle == nil {
		return fmt.Errorf("vehicle is required")
	}
	return r.db.WithContext(ctx).Save(vehicle).Error
}

// UpdateStatus flips a vehicle's status.
func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.VehicleStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Vehicle{}).
		Where("id = ?", id).
		UpdateColumn("status", status).Error
}

// ApplyTelemetry writes the position and load reported by the vehicle unit.
// Last write wins; the dispatch engine only ever reads these columns.
func (r *repository) ApplyTelemetry(ctx context.Context, id uuid.UUID, lat, lon, load float64) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Vehicle{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"current_latitude":  lat,
			"current_longitude": lon,
			"current_load":      load,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CountOpenRoutes returns how many in-progress routes the vehicle owns.
func (r *repository) CountOpenRoutes(ctx context.Context, vehicleID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Route{}).
		Where("vehicle_id = ? AND status = ?", vehicleID, enums.RouteStatusInProgress).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
