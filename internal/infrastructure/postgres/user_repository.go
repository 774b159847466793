package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/bitumen-api/internal/domain"
	"github.com/jhoicas/bitumen-api/internal/domain/access"
	"github.com/jhoicas/bitumen-api/internal/domain/entity"
	"github.com/jhoicas/bitumen-api/internal/domain/repository"
)

var (
	_ repository.UserRepository       = (*UserRepo)(nil)
	_ repository.SessionRepository    = (*SessionRepo)(nil)
	_ repository.PermissionRepository = (*PermissionRepo)(nil)
)

const userColumns = `id, username, password_hash, name, email, role, is_active, created_at, updated_at`

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var u entity.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Name, &u.Email, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create persiste un nuevo usuario.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		u.ID, u.Username, u.PasswordHash, u.Name, u.Email, u.Role, u.IsActive, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUsernameTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	return notFound(u, err, "get user by id")
}

// GetByUsername obtiene un usuario por nombre de usuario.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	return notFound(u, err, "get user by username")
}

// Update actualiza un usuario.
func (r *UserRepo) Update(ctx context.Context, u *entity.User) error {
	query := `
		UPDATE users SET password_hash = $2, name = $3, email = $4, role = $5, is_active = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, u.ID, u.PasswordHash, u.Name, u.Email, u.Role, u.IsActive, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// List lista usuarios con filtros y paginación.
func (r *UserRepo) List(ctx context.Context, f repository.UserFilter) ([]*entity.User, error) {
	var w where
	w.eq("role", f.Role)
	if f.Active != nil {
		w.add("is_active = $%[1]d", *f.Active)
	}
	w.search(f.Search, "username", "name", "email")
	rows, err := r.q.Query(ctx, `SELECT `+userColumns+` FROM users`+w.sql("username", f.Page), w.args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return collect(rows, scanUser)
}

// Count número total de usuarios (para el bootstrap del primer administrador).
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// SessionRepo sesiones de servidor sobre PostgreSQL.
type SessionRepo struct {
	q Querier
}

// NewSessionRepository construye el adaptador de sesiones.
func NewSessionRepository(q Querier) *SessionRepo {
	return &SessionRepo{q: q}
}

// Create persiste una sesión.
func (r *SessionRepo) Create(ctx context.Context, s *entity.Session) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO sessions (id, token_hash, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		s.ID, s.TokenHash, s.UserID, s.ExpiresAt, s.CreatedAt,
	)
	if err != nil {
		return mapWriteError("insert session", err)
	}
	return nil
}

// GetByTokenHash obtiene la sesión por hash del token.
func (r *SessionRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*entity.Session, error) {
	var s entity.Session
	err := r.q.QueryRow(ctx, `
		SELECT id, token_hash, user_id, expires_at, created_at
		FROM sessions WHERE token_hash = $1`, tokenHash,
	).Scan(&s.ID, &s.TokenHash, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	return notFound(&s, err, "get session")
}

// DeleteByTokenHash borra la sesión indicada; no falla si no existe.
func (r *SessionRepo) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM sessions WHERE token_hash = $1`, tokenHash); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteByUser borra todas las sesiones del usuario.
func (r *SessionRepo) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete user sessions: %w", err)
	}
	return nil
}

// PermissionRepo filas de user_permissions.
type PermissionRepo struct {
	q Querier
}

// NewPermissionRepository construye el adaptador de permisos.
func NewPermissionRepository(q Querier) *PermissionRepo {
	return &PermissionRepo{q: q}
}

// FindGrant lee la fila (usuario, módulo, acción). found=false si no existe.
func (r *PermissionRepo) FindGrant(ctx context.Context, userID string, module access.Module, action access.Action) (bool, bool, error) {
	var granted bool
	err := r.q.QueryRow(ctx, `
		SELECT granted FROM user_permissions
		WHERE user_id = $1 AND module = $2 AND action = $3`,
		userID, string(module), string(action),
	).Scan(&granted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, false, nil
		}
		return false, false, fmt.Errorf("find grant: %w", err)
	}
	return granted, true, nil
}

// ListByUser devuelve todas las filas del usuario.
func (r *PermissionRepo) ListByUser(ctx context.Context, userID string) ([]access.Grant, error) {
	rows, err := r.q.Query(ctx, `
		SELECT module, action, granted FROM user_permissions
		WHERE user_id = $1 ORDER BY module, action`, userID)
	if err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}
	defer rows.Close()
	out := []access.Grant{}
	for rows.Next() {
		var g access.Grant
		var module, action string
		if err := rows.Scan(&module, &action, &g.Granted); err != nil {
			return nil, fmt.Errorf("scan grant: %w", err)
		}
		g.Module, g.Action = access.Module(module), access.Action(action)
		out = append(out, g)
	}
	return out, rows.Err()
}

// ReplaceForUser sustituye el conjunto de filas del usuario dentro de una transacción.
func (r *PermissionRepo) ReplaceForUser(ctx context.Context, userID string, grants []access.Grant) error {
	tx, err := r.q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM user_permissions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete grants: %w", err)
	}
	for _, g := range grants {
		_, err := tx.Exec(ctx, `
			INSERT INTO user_permissions (user_id, module, action, granted)
			VALUES ($1, $2, $3, $4)`,
			userID, string(g.Module), string(g.Action), g.Granted,
		)
		if err != nil {
			return mapWriteError("insert grant", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
