package entity

import "time"

// Store representa una tienda física de un establecimiento (multi-tienda).
// Se espera exactamente una tienda principal (IsMainStore) por establecimiento;
// el esquema no lo garantiza, así que el código no debe depender de ello para
// la corrección (ver regla de stock efectivo en internal/domain/stock).
type Store struct {
	ID              string
	EstablishmentID string
	Name            string
	IsMainStore     bool
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
