package access

import (
	"context"
	"fmt"

	"github.com/jhoicas/bitumen-api/internal/domain"
	"github.com/jhoicas/bitumen-api/internal/domain/entity"
)

// GrantReader puerto de lectura de la tabla de permisos.
// found=false significa que no existe fila para la tripleta.
type GrantReader interface {
	FindGrant(ctx context.Context, userID string, module Module, action Action) (granted, found bool, err error)
}

// Resolver decide permisos consultando el GrantReader en cada llamada (sin caché).
type Resolver struct {
	grants GrantReader
}

// NewResolver construye el resolver.
func NewResolver(grants GrantReader) *Resolver {
	return &Resolver{grants: grants}
}

// HasPermission informa si user puede ejecutar action sobre module.
// Una acción vacía se interpreta como VIEW.
func (r *Resolver) HasPermission(ctx context.Context, user *entity.User, module Module, action Action) (bool, error) {
	if user == nil || !user.IsActive {
		return false, nil
	}
	if user.IsAdmin() {
		return true, nil
	}
	if action == "" {
		action = ActionView
	}
	if !module.Valid() || !action.Valid() {
		return false, nil
	}
	granted, found, err := r.grants.FindGrant(ctx, user.ID, module, action)
	if err != nil {
		return false, fmt.Errorf("access: consultar permiso %s/%s: %w", module, action, err)
	}
	return found && granted, nil
}

// CanView atajo para la acción VIEW; lo usa el filtro de navegación.
func (r *Resolver) CanView(ctx context.Context, user *entity.User, module Module) (bool, error) {
	return r.HasPermission(ctx, user, module, ActionView)
}

// Require devuelve ErrUnauthorized si no hay usuario, ErrForbidden si no tiene el permiso.
// Debe llamarse antes de cualquier validación o escritura.
func (r *Resolver) Require(ctx context.Context, user *entity.User, module Module, action Action) error {
	if user == nil {
		return domain.ErrUnauthorized
	}
	ok, err := r.HasPermission(ctx, user, module, action)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s/%s", domain.ErrForbidden, module, action)
	}
	return nil
}
