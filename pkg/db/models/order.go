package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ducvu/wasteflow-backend/pkg/enums"
)

// Order is a single collection request submitted by a customer. RouteID and
// SequenceIndex are either both set or both null: they are only written together
// when a solving round assigns the order to a route.
type Order struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CustomerID    uuid.UUID           `gorm:"column:customer_id;type:uuid;not null" json:"customer_id"`
	Latitude      float64             `gorm:"column:latitude;not null" json:"latitude"`
	Longitude     float64             `gorm:"column:longitude;not null" json:"longitude"`
	Address       string              `gorm:"column:address;type:text" json:"address"`
	Weight        decimal.Decimal     `gorm:"column:weight;type:numeric(10,2);not null" json:"weight"`
	Category      enums.WasteCategory `gorm:"column:category;type:text;not null" json:"category"`
	Description   string              `gorm:"column:description;type:text" json:"description"`
	ImageURL      *string             `gorm:"column:image_url;type:text" json:"image_url,omitempty"`
	Status        enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'" json:"status"`
	SequenceIndex *int                `gorm:"column:sequence_index" json:"sequence_index,omitempty"`
	RouteID       *uuid.UUID          `gorm:"column:route_id;type:uuid" json:"route_id,omitempty"`
	CompletedAt   *time.Time          `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
