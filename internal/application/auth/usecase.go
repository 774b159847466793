package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/bitumen-api/internal/application/dto"
	"github.com/jhoicas/bitumen-api/internal/domain"
	"github.com/jhoicas/bitumen-api/internal/domain/access"
	"github.com/jhoicas/bitumen-api/internal/domain/entity"
	"github.com/jhoicas/bitumen-api/internal/domain/repository"
	"github.com/jhoicas/bitumen-api/pkg/validator"
)

// Config parámetros de sesión y hashing.
type Config struct {
	SessionTTL time.Duration
	BcryptCost int // 0 = bcrypt.DefaultCost
}

// AuthUseCase casos de uso de autenticación: registro, login, resolución de sesión y logout.
type AuthUseCase struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	perms    repository.PermissionRepository
	cfg      Config
	now      func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(users repository.UserRepository, sessions repository.SessionRepository, perms repository.PermissionRepository, cfg Config) *AuthUseCase {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 7 * 24 * time.Hour
	}
	return &AuthUseCase{users: users, sessions: sessions, perms: perms, cfg: cfg, now: time.Now}
}

// WithClock reemplaza el reloj (tests de vencimiento).
func (uc *AuthUseCase) WithClock(now func() time.Time) *AuthUseCase {
	uc.now = now
	return uc
}

// Register crea un usuario desde el registro público. Solo el primer usuario del sistema
// puede registrarse como ADMIN. El usuario recibe los permisos por defecto de su rol.
func (uc *AuthUseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	if err := validator.Struct(in); err != nil {
		return nil, err
	}
	role := entity.Role(in.Role)
	if role == "" {
		role = entity.RoleEmployee
	}
	if role == entity.RoleAdmin {
		n, err := uc.users.Count(ctx)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, fmt.Errorf("%w: solo un administrador puede crear administradores", domain.ErrForbidden)
		}
	}
	user, err := CreateUser(ctx, uc.users, uc.perms, NewUser{
		Username: in.Username, Password: in.Password, Name: in.Name, Email: in.Email, Role: role,
	}, uc.cfg.BcryptCost, uc.now())
	if err != nil {
		return nil, err
	}
	return ToUserResponse(user), nil
}

// Login verifica credenciales y abre una sesión. Usuario inexistente, password
// incorrecto y usuario inactivo devuelven el mismo ErrInvalidCredentials.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	if username == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	user, err := uc.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		burnComparison(in.Password)
		return nil, domain.ErrInvalidCredentials
	}
	if !CheckPassword(user.PasswordHash, in.Password) || !user.IsActive {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := newSessionToken()
	if err != nil {
		return nil, err
	}
	now := uc.now()
	sess := &entity.Session{
		ID:        uuid.New().String(),
		TokenHash: HashToken(token),
		UserID:    user.ID,
		ExpiresAt: now.Add(uc.cfg.SessionTTL),
		CreatedAt: now,
	}
	if err := uc.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Token: token, ExpiresAt: sess.ExpiresAt, User: *ToUserResponse(user)}, nil
}

// ResolveSession devuelve el usuario dueño del token o nil. Una sesión vencida, o de un
// usuario desactivado o inexistente, se borra en el momento y se devuelve nil.
func (uc *AuthUseCase) ResolveSession(ctx context.Context, token string) (*entity.User, error) {
	if token == "" {
		return nil, nil
	}
	hash := HashToken(token)
	sess, err := uc.sessions.GetByTokenHash(ctx, hash)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}
	if sess.Expired(uc.now()) {
		return nil, uc.sessions.DeleteByTokenHash(ctx, hash)
	}
	user, err := uc.users.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, uc.sessions.DeleteByTokenHash(ctx, hash)
	}
	return user, nil
}

// Logout borra únicamente la sesión presentada. Un token desconocido no es error.
func (uc *AuthUseCase) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return uc.sessions.DeleteByTokenHash(ctx, HashToken(token))
}

// Me devuelve el usuario autenticado y sus permisos efectivos.
func (uc *AuthUseCase) Me(ctx context.Context, user *entity.User) (*dto.MeResponse, error) {
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	grants, err := EffectiveGrants(ctx, uc.perms, user)
	if err != nil {
		return nil, err
	}
	return &dto.MeResponse{User: *ToUserResponse(user), Permissions: grants}, nil
}

// EffectiveGrants permisos concedidos del usuario: todos para ADMIN, las filas granted para el resto.
func EffectiveGrants(ctx context.Context, perms repository.PermissionRepository, user *entity.User) ([]access.Grant, error) {
	if user.IsAdmin() {
		return access.AllGranted(), nil
	}
	rows, err := perms.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	out := make([]access.Grant, 0, len(rows))
	for _, g := range rows {
		if g.Granted {
			out = append(out, g)
		}
	}
	return out, nil
}

// NewUser datos para crear un usuario (registro público o alta por administrador).
type NewUser struct {
	Username string
	Password string
	Name     string
	Email    string
	Role     entity.Role
}

// CreateUser hashea el password, persiste el usuario y le asigna los permisos por defecto del rol.
func CreateUser(ctx context.Context, users repository.UserRepository, perms repository.PermissionRepository, in NewUser, cost int, now time.Time) (*entity.User, error) {
	existing, err := users.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrUsernameTaken
	}
	hash, err := HashPassword(in.Password, cost)
	if err != nil {
		return nil, err
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		Username:     in.Username,
		PasswordHash: hash,
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.TrimSpace(in.Email),
		Role:         in.Role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.Create(ctx, user); err != nil {
		return nil, err
	}
	if grants := access.DefaultGrants(in.Role); len(grants) > 0 {
		if err := perms.ReplaceForUser(ctx, user.ID, grants); err != nil {
			return nil, err
		}
	}
	return user, nil
}

// ToUserResponse convierte la entidad a su DTO (sin password).
func ToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
