package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Product struct {
	ID                uuid.UUID       `json:"id"`
	CategoryID        uuid.UUID       `json:"category_id"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	Price             decimal.Decimal `json:"price"`
	StockQuantity     int             `json:"stock_quantity"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	SKU               string          `json:"sku"`
	Image             string          `json:"image,omitempty"`
	Status            string          `json:"status"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Category          *Category       `json:"category,omitempty"`
}

func (p *Product) IsActive() bool {
	return p.Status == "active"
}

func (p *Product) IsLowStock() bool {
	return p.StockQuantity <= p.LowStockThreshold
}

type CreateProductRequest struct {
	CategoryID        uuid.UUID       `json:"category_id" validate:"required"`
	Name              string          `json:"name" validate:"required,min=3,max=200"`
	Description       string          `json:"description,omitempty"`
	Price             decimal.Decimal `json:"price" validate:"required"`
	StockQuantity     int             `json:"stock_quantity" validate:"gte=0"`
	LowStockThreshold int             `json:"low_stock_threshold" validate:"gte=0"`
	SKU               string          `json:"sku" validate:"required,min=3,max=50"`
	Image             string          `json:"image,omitempty"`
}

type UpdateProductRequest struct {
	CategoryID        *uuid.UUID       `json:"category_id,omitempty"`
	Name              *string          `json:"name,omitempty" validate:"omitempty,min=3,max=200"`
	Description       *string          `json:"description,omitempty"`
	Price             *decimal.Decimal `json:"price,omitempty"`
	StockQuantity     *int             `json:"stock_quantity,omitempty" validate:"omitempty,gte=0"`
	LowStockThreshold *int             `json:"low_stock_threshold,omitempty" validate:"omitempty,gte=0"`
	Image             *string          `json:"image,omitempty"`
	Status            *string          `json:"status,omitempty" validate:"omitempty,oneof=active inactive discontinued"`
}
