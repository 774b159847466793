package entity

import "time"

// Role rol de un usuario del sistema.
type Role string

// Roles válidos para User.
const (
	RoleAdmin          Role = "ADMIN"
	RoleSalesManager   Role = "SALES_MANAGER"
	RoleSalesExecutive Role = "SALES_EXECUTIVE"
	RoleOperations     Role = "OPERATIONS"
	RoleEmployee       Role = "EMPLOYEE"
)

// Roles lista cerrada de roles, en orden de presentación.
var Roles = []Role{RoleAdmin, RoleSalesManager, RoleSalesExecutive, RoleOperations, RoleEmployee}

// Valid informa si r pertenece a la lista cerrada.
func (r Role) Valid() bool {
	for _, v := range Roles {
		if v == r {
			return true
		}
	}
	return false
}

// User representa un usuario de la aplicación.
// Nunca se borra físicamente: se desactiva con IsActive=false.
type User struct {
	ID           string
	Username     string
	PasswordHash string // bcrypt
	Name         string
	Email        string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin informa si el usuario es administrador.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Session sesión de servidor asociada a un token opaco.
// Solo se persiste el hash SHA-256 del token.
type Session struct {
	ID        string
	TokenHash string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired informa si la sesión está vencida en el instante now (estrictamente posterior a ExpiresAt).
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
