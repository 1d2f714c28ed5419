package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferItemRequest línea de un borrador de traslado.
type TransferItemRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Notes     string          `json:"notes,omitempty"`
}

// CreateTransferRequest body para POST /api/transfers.
type CreateTransferRequest struct {
	SourceStoreID      string                `json:"source_store_id"`
	DestinationStoreID string                `json:"destination_store_id"`
	Notes              string                `json:"notes,omitempty"`
	Items              []TransferItemRequest `json:"items"`
}

// TransferItemResponse línea de un traslado.
type TransferItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	Notes       string          `json:"notes,omitempty"`
}

// TransferResponse salida de un traslado.
type TransferResponse struct {
	ID                 string                 `json:"id"`
	EstablishmentID    string                 `json:"establishment_id"`
	SourceStoreID      string                 `json:"source_store_id"`
	DestinationStoreID string                 `json:"destination_store_id"`
	Items              []TransferItemResponse `json:"items"`
	Status             string                 `json:"status"`
	Notes              string                 `json:"notes,omitempty"`
	CreatedBy          string                 `json:"created_by"`
	CreatedAt          time.Time              `json:"created_at"`
	CompletedBy        string                 `json:"completed_by,omitempty"`
	CompletedAt        *time.Time             `json:"completed_at,omitempty"`
	UpdatedAt          time.Time              `json:"updated_at"`
}

// TransferListRequest query params para GET /api/transfers.
type TransferListRequest struct {
	Status  string `query:"status"`
	StoreID string `query:"store_id"`
	PageRequest
}

// TransferListResponse lista paginada de traslados.
type TransferListResponse struct {
	Items []TransferResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
