package entity

import "time"

// Roles de usuario dentro de un establecimiento.
const (
	RoleAdmin     = "admin"
	RoleEncargado = "encargado" // puede crear/completar/cancelar traslados
	RoleVendedor  = "vendedor"
)

// User representa un operador del sistema (la gestión de usuarios es otro módulo;
// aquí solo se necesita para login y para atribuir traslados).
type User struct {
	ID              string
	EstablishmentID string
	Email           string
	PasswordHash    string
	Name            string
	Role            string
	CreatedAt       time.Time
}
