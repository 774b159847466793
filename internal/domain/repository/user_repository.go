package repository

import (
	"context"

	"github.com/jhoicas/bitumen-api/internal/domain/access"
	"github.com/jhoicas/bitumen-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
// GetBy* devuelven (nil, nil) si no existe.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	List(ctx context.Context, f UserFilter) ([]*entity.User, error)
	Count(ctx context.Context) (int, error)
}

// SessionRepository persistencia de sesiones de servidor.
type SessionRepository interface {
	Create(ctx context.Context, s *entity.Session) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*entity.Session, error)
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
	DeleteByUser(ctx context.Context, userID string) error
}

// PermissionRepository persistencia de la tabla user_permissions.
type PermissionRepository interface {
	access.GrantReader
	ListByUser(ctx context.Context, userID string) ([]access.Grant, error)
	// ReplaceForUser sustituye el conjunto completo de filas del usuario.
	ReplaceForUser(ctx context.Context, userID string, grants []access.Grant) error
}
