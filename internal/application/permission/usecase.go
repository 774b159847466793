// Package permission expone la consulta y administración de permisos por usuario.
package permission

import (
	"context"
	"fmt"

	"github.com/jhoicas/bitumen-api/internal/application/auth"
	"github.com/jhoicas/bitumen-api/internal/application/dto"
	"github.com/jhoicas/bitumen-api/internal/domain"
	"github.com/jhoicas/bitumen-api/internal/domain/access"
	"github.com/jhoicas/bitumen-api/internal/domain/entity"
	"github.com/jhoicas/bitumen-api/internal/domain/repository"
	"github.com/jhoicas/bitumen-api/pkg/validator"
)

// PermissionUseCase lectura y reemplazo de la matriz de permisos.
type PermissionUseCase struct {
	users    repository.UserRepository
	perms    repository.PermissionRepository
	resolver *access.Resolver
}

// NewPermissionUseCase construye el caso de uso.
func NewPermissionUseCase(users repository.UserRepository, perms repository.PermissionRepository, resolver *access.Resolver) *PermissionUseCase {
	return &PermissionUseCase{users: users, perms: perms, resolver: resolver}
}

// MyPermissions permisos efectivos del usuario autenticado (sin gate: cada usuario ve los suyos).
func (uc *PermissionUseCase) MyPermissions(ctx context.Context, actor *entity.User) (*dto.PermissionsResponse, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	return uc.describe(ctx, actor)
}

// ListForUser permisos efectivos de otro usuario (USER_MANAGEMENT/VIEW).
func (uc *PermissionUseCase) ListForUser(ctx context.Context, actor *entity.User, userID string) (*dto.PermissionsResponse, error) {
	if err := uc.resolver.Require(ctx, actor, access.ModuleUserManagement, access.ActionView); err != nil {
		return nil, err
	}
	target, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, domain.ErrUserNotFound
	}
	return uc.describe(ctx, target)
}

// SetForUser reemplaza el conjunto de permisos del usuario (USER_MANAGEMENT/EDIT).
// Módulos o acciones desconocidos se rechazan sin tocar nada.
func (uc *PermissionUseCase) SetForUser(ctx context.Context, actor *entity.User, userID string, in dto.SetPermissionsRequest) (*dto.PermissionsResponse, error) {
	if err := uc.resolver.Require(ctx, actor, access.ModuleUserManagement, access.ActionEdit); err != nil {
		return nil, err
	}
	if err := validator.Struct(in); err != nil {
		return nil, err
	}
	target, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, domain.ErrUserNotFound
	}

	verr := &domain.ValidationError{}
	seen := make(map[access.Grant]bool)
	grants := make([]access.Grant, 0, len(in.Grants))
	for i, g := range in.Grants {
		module, ok := access.ParseModule(g.Module)
		if !ok {
			verr.Add(fmt.Sprintf("grants[%d].module", i), "módulo desconocido")
			continue
		}
		action, ok := access.ParseAction(g.Action)
		if !ok {
			verr.Add(fmt.Sprintf("grants[%d].action", i), "acción desconocida")
			continue
		}
		granted := g.Granted == nil || *g.Granted
		key := access.Grant{Module: module, Action: action}
		if seen[key] {
			verr.Add(fmt.Sprintf("grants[%d]", i), "módulo/acción repetido")
			continue
		}
		seen[key] = true
		grants = append(grants, access.Grant{Module: module, Action: action, Granted: granted})
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	if err := uc.perms.ReplaceForUser(ctx, target.ID, grants); err != nil {
		return nil, err
	}
	return uc.describe(ctx, target)
}

func (uc *PermissionUseCase) describe(ctx context.Context, user *entity.User) (*dto.PermissionsResponse, error) {
	grants, err := auth.EffectiveGrants(ctx, uc.perms, user)
	if err != nil {
		return nil, err
	}
	return &dto.PermissionsResponse{
		UserID:  user.ID,
		Role:    string(user.Role),
		IsAdmin: user.IsAdmin(),
		Grants:  grants,
	}, nil
}
