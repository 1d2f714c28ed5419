package dto

import "time"

// StoreResponse salida de una tienda.
type StoreResponse struct {
	ID              string    `json:"id"`
	EstablishmentID string    `json:"establishment_id"`
	Name            string    `json:"name"`
	IsMainStore     bool      `json:"is_main_store"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// StoreListResponse lista de tiendas activas del establecimiento.
type StoreListResponse struct {
	Items []StoreResponse `json:"items"`
}
