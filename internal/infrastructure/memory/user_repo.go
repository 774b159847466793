package memory

import (
	"context"

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

// UserRepo usuarios en memoria.
type UserRepo struct{ s *Store }

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, existing := range r.s.users {
		if existing.Username == u.Username {
			return domain.ErrUsernameTaken
		}
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Username == username {
			out := u
			return &out, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) Update(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepo) List(_ context.Context, f repository.UserFilter) ([]*entity.User, error) {
	r.s.mu.RLock()
	var rows []*entity.User
	for _, u := range r.s.users {
		if f.Role != "" && string(u.Role) != f.Role {
			continue
		}
		if f.Active != nil && u.IsActive != *f.Active {
			continue
		}
		if f.Search != "" && !containsFold(u.Username, f.Search) && !containsFold(u.Name, f.Search) && !containsFold(u.Email, f.Search) {
			continue
		}
		out := u
		rows = append(rows, &out)
	}
	r.s.mu.RUnlock()
	return paginate(rows, func(a, b *entity.User) bool { return a.Username < b.Username }, f.Page), nil
}

func (r *UserRepo) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.users), nil
}

// SessionRepo sesiones en memoria, indexadas por hash del token.
type SessionRepo struct{ s *Store }

func (r *SessionRepo) Create(_ context.Context, sess *entity.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.sessions[sess.TokenHash]; ok {
		return domain.ErrDuplicate
	}
	r.s.sessions[sess.TokenHash] = *sess
	return nil
}

func (r *SessionRepo) GetByTokenHash(_ context.Context, tokenHash string) (*entity.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sess, ok := r.s.sessions[tokenHash]
	if !ok {
		return nil, nil
	}
	return &sess, nil
}

func (r *SessionRepo) DeleteByTokenHash(_ context.Context, tokenHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.sessions, tokenHash)
	return nil
}

func (r *SessionRepo) DeleteByUser(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k, sess := range r.s.sessions {
		if sess.UserID == userID {
			delete(r.s.sessions, k)
		}
	}
	return nil
}

// Len número de sesiones almacenadas.
func (r *SessionRepo) Len() int {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.sessions)
}

// PermissionRepo filas (usuario, módulo, acción) en memoria.
type PermissionRepo struct{ s *Store }

func (r *PermissionRepo) FindGrant(_ context.Context, userID string, module access.Module, action access.Action) (bool, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	granted, found := r.s.grants[grantKey{userID, module, action}]
	return granted, found, nil
}

func (r *PermissionRepo) ListByUser(_ context.Context, userID string) ([]access.Grant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []access.Grant{}
	for _, m := range access.Modules {
		for _, a := range access.Actions {
			if granted, ok := r.s.grants[grantKey{userID, m, a}]; ok {
				out = append(out, access.Grant{Module: m, Action: a, Granted: granted})
			}
		}
	}
	return out, nil
}

func (r *PermissionRepo) ReplaceForUser(_ context.Context, userID string, grants []access.Grant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k := range r.s.grants {
		if k.userID == userID {
			delete(r.s.grants, k)
		}
	}
	for _, g := range grants {
		r.s.grants[grantKey{userID, g.Module, g.Action}] = g.Granted
	}
	return nil
}
