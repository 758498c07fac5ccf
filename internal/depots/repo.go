package depots

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ducvu/wasteflow-backend/pkg/db/models"
)

// Repository handles depot persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to depot operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new depot row.
func (r *Repository) Create(ctx context.Context, dto CreateDepotDTO) (*models.Depot, error) {
	depot := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(depot).Error; err != nil {
		return nil, err
	}
	return depot, nil
}

// FindByID loads a depot by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Depot, error) {
	var depot models.Depot
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&depot).Error; err != nil {
		return nil, err
	}
	return &depot, nil
}

// List returns all depots ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Depot, error) {
	var depots []models.Depot
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&depots).Error; err != nil {
		return nil, err
	}
	return depots, nil
}

// Update saves the provided depot.
func (r *Repository) Update(ctx context.Context, depot *models.Depot) error {
	if depot == nil {
		return fmt.Errorf("depot is required")
	}
	return r.db.WithContext(ctx).Save(depot).Error
}

// Delete removes the depot row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Depot{}, "id = ?", id).Error
}

// CountVehicles returns how many vehicles are based at the depot.
func (r *Repository) CountVehicles(ctx context.Context, depotID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Vehicle{}).
		Where("depot_id = ?", depotID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
