package dto

import (
	"time"

	"github.com/jhoicas/bitumen-api/internal/domain/access"
)

// RegisterRequest entrada para registro público (password en texto, se hashea en el use case).
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,username"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"omitempty,email"`
	Role     string `json:"role" validate:"omitempty,oneof=ADMIN SALES_MANAGER SALES_EXECUTIVE OPERATIONS EMPLOYEE"`
}

// CreateUserRequest alta de usuario por un administrador; el rol es obligatorio.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,username"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"omitempty,email"`
	Role     string `json:"role" validate:"required,oneof=ADMIN SALES_MANAGER SALES_EXECUTIVE OPERATIONS EMPLOYEE"`
}

// UpdateUserRequest actualización parcial; nil = sin cambios.
type UpdateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=200"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Role     *string `json:"role" validate:"omitempty,oneof=ADMIN SALES_MANAGER SALES_EXECUTIVE OPERATIONS EMPLOYEE"`
	IsActive *bool   `json:"is_active"`
	Password *string `json:"password" validate:"omitempty,min=8,max=72"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse salida con el token opaco de sesión (también va en cookie).
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// MeResponse usuario autenticado y sus permisos efectivos.
type MeResponse struct {
	User        UserResponse   `json:"user"`
	Permissions []access.Grant `json:"permissions"`
}

// GrantRequest una fila de permiso enviada por un administrador.
type GrantRequest struct {
	Module  string `json:"module" validate:"required"`
	Action  string `json:"action"`
	Granted *bool  `json:"granted"`
}

// SetPermissionsRequest reemplaza el conjunto de permisos de un usuario.
type SetPermissionsRequest struct {
	Grants []GrantRequest `json:"grants" validate:"dive"`
}

// PermissionsResponse permisos efectivos de un usuario.
type PermissionsResponse struct {
	UserID  string         `json:"user_id"`
	Role    string         `json:"role"`
	IsAdmin bool           `json:"is_admin"`
	Grants  []access.Grant `json:"grants"`
}
