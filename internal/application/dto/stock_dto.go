package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockOverviewRow stock efectivo de un producto en cada tienda activa.
// Los valores ya vienen resueltos con la regla por defecto (no dispersos).
type StockOverviewRow struct {
	ProductID   string                     `json:"product_id"`
	GlobalStock decimal.Decimal            `json:"global_stock"`
	PerStore    map[string]decimal.Decimal `json:"per_store"`
	UpdatedAt   time.Time                  `json:"updated_at"`
}

// StockOverviewResponse vista de inventario del establecimiento.
type StockOverviewResponse struct {
	Items []StockOverviewRow `json:"items"`
	Page  PageResponse       `json:"page"`
}

// EffectiveStockResponse stock efectivo de un (producto, tienda).
type EffectiveStockResponse struct {
	ProductID string          `json:"product_id"`
	StoreID   string          `json:"store_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}
