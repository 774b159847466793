package crm

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/bitumen-api/internal/application/auth"
	"github.com/jhoicas/bitumen-api/internal/application/dto"
	"github.com/jhoicas/bitumen-api/internal/domain"
	"github.com/jhoicas/bitumen-api/internal/domain/access"
	"github.com/jhoicas/bitumen-api/internal/domain/entity"
	"github.com/jhoicas/bitumen-api/internal/domain/repository"
)

// UserUseCase administración de usuarios (módulo USER_MANAGEMENT).
// Los usuarios nunca se borran: Delete los desactiva y cierra sus sesiones.
type UserUseCase struct {
	d Deps
}

func NewUserUseCase(d Deps) *UserUseCase {
	return &UserUseCase{d: d}
}

func (uc *UserUseCase) gate(ctx context.Context, actor *entity.User, action access.Action) error {
	return uc.d.Gate.Require(ctx, actor, access.ModuleUserManagement, action)
}

// requireAdminFor solo un administrador crea, modifica o desactiva cuentas ADMIN.
func requireAdminFor(actor *entity.User, role entity.Role) error {
	if role == entity.RoleAdmin && !actor.IsAdmin() {
		return fmt.Errorf("%w: solo un administrador gestiona administradores", domain.ErrForbidden)
	}
	return nil
}

func userResponse(u *entity.User) dto.UserResponse { return *auth.ToUserResponse(u) }

func (uc *UserUseCase) List(ctx context.Context, actor *entity.User, f repository.UserFilter) (*dto.ListResponse[dto.UserResponse], error) {
	if err := uc.gate(ctx, actor, access.ActionView); err != nil {
		return nil, err
	}
	rows, err := uc.d.Users.List(ctx, f)
	if err != nil {
		return nil, err
	}
	limit, offset := listPage(f.Page)
	return &dto.ListResponse[dto.UserResponse]{Items: mapList(rows, userResponse), Limit: limit, Offset: offset}, nil
}

func (uc *UserUseCase) Get(ctx context.Context, actor *entity.User, id string) (*dto.UserResponse, error) {
	if err := uc.gate(ctx, actor, access.ActionView); err != nil {
		return nil, err
	}
	u, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return auth.ToUserResponse(u), nil
}

func (uc *UserUseCase) load(ctx context.Context, id string) (*entity.User, error) {
	u, err := uc.d.Users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

// Create da de alta un usuario con los permisos por defecto de su rol.
func (uc *UserUseCase) Create(ctx context.Context, actor *entity.User, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	if err := uc.gate(ctx, actor, access.ActionAdd); err != nil {
		return nil, err
	}
	if err := validate(in).OrNil(); err != nil {
		return nil, err
	}
	if err := requireAdminFor(actor, entity.Role(in.Role)); err != nil {
		return nil, err
	}
	u, err := auth.CreateUser(ctx, uc.d.Users, uc.d.Permissions, auth.NewUser{
		Username: strings.ToLower(strings.TrimSpace(in.Username)),
		Password: in.Password,
		Name:     in.Name,
		Email:    in.Email,
		Role:     entity.Role(in.Role),
	}, uc.d.BcryptCost, uc.d.now())
	if err != nil {
		return nil, err
	}
	return auth.ToUserResponse(u), nil
}

// Update cambia nombre, email, rol, estado o password. Cambiar el rol no altera los permisos
// ya asignados; se administran aparte con PUT /users/:id/permissions.
func (uc *UserUseCase) Update(ctx context.Context, actor *entity.User, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if err := uc.gate(ctx, actor, access.ActionEdit); err != nil {
		return nil, err
	}
	u, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireAdminFor(actor, u.Role); err != nil {
		return nil, err
	}
	if in.Role != nil {
		if err := requireAdminFor(actor, entity.Role(*in.Role)); err != nil {
			return nil, err
		}
	}
	verr := validate(in)
	requireText(verr, "name", in.Name)
	if in.IsActive != nil && !*in.IsActive && u.ID == actor.ID {
		verr.Add("is_active", "no puede desactivarse a sí mismo")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	u.Name = patchString(in.Name, u.Name)
	u.Email = patchString(in.Email, u.Email)
	if in.Role != nil {
		u.Role = entity.Role(*in.Role)
	}
	if in.Password != nil {
		hash, err := auth.HashPassword(*in.Password, uc.d.BcryptCost)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}
	deactivated := false
	if in.IsActive != nil {
		deactivated = u.IsActive && !*in.IsActive
		u.IsActive = *in.IsActive
	}
	u.UpdatedAt = uc.d.now()
	if err := uc.d.Users.Update(ctx, u); err != nil {
		return nil, err
	}
	if deactivated || in.Password != nil {
		if err := uc.d.Sessions.DeleteByUser(ctx, u.ID); err != nil {
			return nil, err
		}
	}
	return auth.ToUserResponse(u), nil
}

// Delete desactiva al usuario y elimina todas sus sesiones.
func (uc *UserUseCase) Delete(ctx context.Context, actor *entity.User, id string) error {
	if err := uc.gate(ctx, actor, access.ActionDelete); err != nil {
		return err
	}
	u, err := uc.load(ctx, id)
	if err != nil {
		return err
	}
	if err := requireAdminFor(actor, u.Role); err != nil {
		return err
	}
	if u.ID == actor.ID {
		return fmt.Errorf("%w: no puede desactivarse a sí mismo", domain.ErrConflict)
	}
	if u.IsActive {
		u.IsActive = false
		u.UpdatedAt = uc.d.now()
		if err := uc.d.Users.Update(ctx, u); err != nil {
			return err
		}
	}
	return uc.d.Sessions.DeleteByUser(ctx, u.ID)
}
