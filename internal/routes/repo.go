package routes

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ducvu/wasteflow-backend/pkg/db/models"
	"github.com/ducvu/wasteflow-backend/pkg/enums"
)

// Repository defines persistence operations for routes and the dispatch rows
// they roll up into.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, route *models.Route) error
	Save(ctx context.Context, route *models.Route) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Route, error)
	FindByDispatchAndVehicle(ctx context.Context, dispatchID, vehicleID uuid.UUID) (*models.Route, error)
	FindActiveByVehicle(ctx context.Context, vehicleID uuid.UUID) (*models.Route, error)
	ListByDispatch(ctx context.Context, dispatchID uuid.UUID) ([]models.Route, error)
	CountOpenByDispatch(ctx context.Context, dispatchID uuid.UUID) (int64, error)
	CompleteDispatch(ctx context.Context, dispatchID uuid.UUID, at time.Time) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to route operations.
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

// Create persists a new route row.
func (r *repository) Create(ctx context.Context, route *models.Route) error {
	if route == nil {
		return fmt.Errorf("route is required")
	}
	return r.db.WithContext(ctx).Create(route).Error
}

// Save writes the full route row back.
func (r *repository) Save(ctx context.Context, route *models.Route) error {
	if route == nil {
		return fmt.Errorf("route is required")
	}
	return r.db.WithContext(ctx).Save(route).Error
}

// FindByID loads a route with its stops in sequence order.
func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Route, error) {
	var route models.Route
	if err := r.db.WithContext(ctx).
		Preload("Orders", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence_index ASC")
		}).
		Where("id = ?", id).
		First(&route).Error; err != nil {
		return nil, err
	}
	return &route, nil
}

// FindByDispatchAndVehicle loads the vehicle's route within the dispatch, if any.
func (r *repository) FindByDispatchAndVehicle(ctx context.Context, dispatchID, vehicleID uuid.UUID) (*models.Route, error) {
	var route models.Route
	if err := r.db.WithContext(ctx).
		Where("dispatch_id = ? AND vehicle_id = ?", dispatchID, vehicleID).
		First(&route).Error; err != nil {
		return nil, err
	}
	return &route, nil
}

// FindActiveByVehicle loads the vehicle's in-progress route with its stops.
func (r *repository) FindActiveByVehicle(ctx context.Context, vehicleID uuid.UUID) (*models.Route, error) {
	var route models.Route
	if err := r.db.WithContext(ctx).
		Preload("Orders", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence_index ASC")
		}).
		Where("vehicle_id = ? AND status = ?", vehicleID, enums.RouteStatusInProgress).
		First(&route).Error; err != nil {
		return nil, err
	}
	return &route, nil
}

// ListByDispatch returns every route of the dispatch with stops preloaded.
func (r *repository) ListByDispatch(ctx context.Context, dispatchID uuid.UUID) ([]models.Route, error) {
	var rows []models.Route
	if err := r.db.WithContext(ctx).
		Preload("Orders", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence_index ASC")
		}).
		Where("dispatch_id = ?", dispatchID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountOpenByDispatch counts the dispatch's routes still in progress.
func (r *repository) CountOpenByDispatch(ctx context.Context, dispatchID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Route{}).
		Where("dispatch_id = ? AND status = ?", dispatchID, enums.RouteStatusInProgress).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CompleteDispatch closes the dispatch row once its last route finishes.
func (r *repository) CompleteDispatch(ctx context.Context, dispatchID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Dispatch{}).
		Where("id = ? AND status = ?", dispatchID, enums.DispatchStatusInProgress).
		UpdateColumns(map[string]any{
			"status":       enums.DispatchStatusCompleted,
			"completed_at": at,
			"updated_at":   at,
		}).Error
}
