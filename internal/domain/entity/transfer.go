package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del ciclo de vida de un traslado. pending es el único estado desde
// el que se puede transicionar; completed y cancelled son terminales.
const (
	TransferStatusPending   = "pending"
	TransferStatusCompleted = "completed"
	TransferStatusCancelled = "cancelled"
)

// Transfer representa un traslado de stock entre dos tiendas del mismo
// establecimiento. Se crea en pending y termina en completed (muta stock
// exactamente una vez) o cancelled (no muta stock). Nunca se borra.
type Transfer struct {
	ID                 string
	EstablishmentID    string
	SourceStoreID      string
	DestinationStoreID string
	Items              []TransferItem
	Status             string
	Notes              string
	CreatedBy          string // UserID
	CreatedAt          time.Time
	CompletedBy        string // UserID; vacío mientras no se complete
	CompletedAt        *time.Time
	UpdatedAt          time.Time
}

// TransferItem es una línea del traslado. ProductName es un snapshot
// desnormalizado al momento de crear el borrador (el catálogo puede cambiar).
type TransferItem struct {
	ID          string
	ProductID   string
	ProductName string
	Quantity    decimal.Decimal // > 0
	Unit        string
	Notes       string
}

// IsTerminal indica si el estado ya no admite transiciones.
func (t *Transfer) IsTerminal() bool {
	return t.Status == TransferStatusCompleted || t.Status == TransferStatusCancelled
}
