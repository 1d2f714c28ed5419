package entity

import "time"

// Establishment representa un establecimiento (tenant) dueño de una o más tiendas.
type Establishment struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
