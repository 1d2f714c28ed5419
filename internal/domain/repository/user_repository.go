package repository

import (
	"context"

	"github.com/dariomv/puntoventa-api/internal/domain/entity"
)

// UserRepository define el puerto de usuarios (DIP). Solo lo necesario para login.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}
