package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ducvu/wasteflow-backend/pkg/db/models"
	"github.com/ducvu/wasteflow-backend/pkg/enums"
)

// Repository defines persistence operations for dispatches.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, dispatch *models.Dispatch) error
	Save(ctx context.Context, dispatch *models.Dispatch) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Dispatch, error)
	FindActive(ctx context.Context) (*models.Dispatch, error)
	List(ctx context.Context, limit int) ([]models.Dispatch, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to dispatch operations.
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

// Create persists a new dispatch row. The partial unique index on status makes
// a second in-progress dispatch a constraint violation, not a silent overwrite.
func (r *repository) Create(ctx context.Context, dispatch *models.Dispatch) error {
	if dispatch == nil {
		return fmt.Errorf("dispatch is required")
	}
	return r.db.WithContext(ctx).Create(dispatch).Error
}

// Save writes the dispatch row back.
func (r *repository) Save(ctx context.Context, dispatch *models.Dispatch) error {
	if dispatch == nil {
		return fmt.Errorf("dispatch is required")
	}
	return r.db.WithContext(ctx).Save(dispatch).Error
}

// FindByID loads a dispatch with its routes and their stops.
func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Dispatch, error) {
	var dispatch models.Dispatch
	if err := r.db.WithContext(ctx).
		Preload("Routes").
		Preload("Routes.Orders", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence_index ASC")
		}).
		Where("id = ?", id).
		First(&dispatch).Error; err != nil {
		return nil, err
	}
	return &dispatch, nil
}

// FindActive returns the single in-progress dispatch, or nil when none exists.
// The partial index on status keeps this an indexed point lookup.
func (r *repository) FindActive(ctx context.Context) (*models.Dispatch, error) {
	var dispatch models.Dispatch
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.DispatchStatusInProgress).
		First(&dispatch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &dispatch, nil
}

// List returns recent dispatches, newest first.
func (r *repository) List(ctx context.Context, limit int) ([]models.Dispatch, error) {
	query := r.db.WithContext(ctx).Order("started_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []models.Dispatch
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
