package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo. El stock NO vive aquí:
// se maneja por tienda en StockRecord (el CRUD de catálogo es otro módulo).
type Product struct {
	ID              string
	EstablishmentID string
	Name            string
	Unit            string // "unidad", "kg", "lt", etc.
	Price           decimal.Decimal
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
