package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ducvu/wasteflow-backend/pkg/db/models"
	"github.com/ducvu/wasteflow-backend/pkg/enums"
)

// OrderDTO exposes collection order data in API responses.
type OrderDTO struct {
	ID            uuid.UUID           `json:"id"`
	CustomerID    uuid.UUID           `json:"customer_id"`
	Latitude      float64             `json:"latitude"`
	Longitude     float64             `json:"longitude"`
	Address       string              `json:"address,omitempty"`
	Weight        decimal.Decimal     `json:"weight"`
	Category      enums.WasteCategory `json:"category"`
	Description   string              `json:"description,omitempty"`
	ImageURL      *string             `json:"image_url,omitempty"`
	Status        enums.OrderStatus   `json:"status"`
	SequenceIndex *int                `json:"sequence_index,omitempty"`
	RouteID       *uuid.UUID          `json:"route_id,omitempty"`
	CompletedAt   *time.Time          `json:"completed_at,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// CreateOrderDTO holds creation-time data for a new collection order.
type CreateOrderDTO struct {
	CustomerID  uuid.UUID
	Latitude    float64
	Longitude   float64
	Address     string
	Weight      decimal.Decimal
	Category    enums.WasteCategory
	Description string
	ImageURL    *string
}

// FromModel maps the persisted order into a DTO.
func FromModel(m *models.Order) *OrderDTO {
	if m == nil {
		return nil
	}
	return &OrderDTO{
		ID:            m.ID,
		CustomerID:    m.CustomerID,
		Latitude:      m.Latitude,
		Longitude:     m.Longitude,
		Address:       m.Address,
		Weight:        m.Weight,
		Category:      m.Category,
		Description:   m.Description,
		ImageURL:      m.ImageURL,
		Status:        m.Status,
		SequenceIndex: m.SequenceIndex,
		RouteID:       m.RouteID,
		CompletedAt:   m.CompletedAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// ToModel prepares the GORM model from the creation DTO. New orders always
// start pending and unassigned.
func (c CreateOrderDTO) ToModel() *models.Order {
	return &models.Order{
		ID:          uuid.New(),
		CustomerID:  c.CustomerID,
		Latitude:    c.Latitude,
		Longitude:   c.Longitude,
		Address:     c.Address,
		Weight:      c.Weight,
		Category:    c.Category,
		Description: c.Description,
		ImageURL:    c.ImageURL,
		Status:      enums.OrderStatusPending,
	}
}
