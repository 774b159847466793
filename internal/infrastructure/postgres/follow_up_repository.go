package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/bitumen-api/internal/domain"
	"github.com/jhoicas/bitumen-api/internal/domain/entity"
	"github.com/jhoicas/bitumen-api/internal/domain/repository"
)

var _ repository.FollowUpRepository = (*FollowUpRepo)(nil)

const followUpColumns = `id, client_id, user_id, follow_up_date, type, notes, outcome, next_follow_up_date, status, created_at, updated_at`

// FollowUpRepo seguimientos comerciales sobre PostgreSQL.
type FollowUpRepo struct {
	q Querier
}

// NewFollowUpRepository construye el adaptador de seguimientos.
func NewFollowUpRepository(q Querier) *FollowUpRepo {
	return &FollowUpRepo{q: q}
}

func scanFollowUp(row pgx.Row) (*entity.FollowUp, error) {
	var f entity.FollowUp
	err := row.Scan(&f.ID, &f.ClientID, &f.UserID, &f.FollowUpDate, &f.Type, &f.Notes, &f.Outcome,
		&f.NextFollowUpDate, &f.Status, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FollowUpRepo) Create(ctx context.Context, f *entity.FollowUp) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO follow_ups (`+followUpColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		f.ID, f.ClientID, f.UserID, f.FollowUpDate, f.Type, f.Notes, f.Outcome, f.NextFollowUpDate, f.Status,
		f.CreatedAt, f.UpdatedAt,
	)
	if err != nil {
		return mapWriteError("insert follow-up", err)
	}
	return nil
}

func (r *FollowUpRepo) GetByID(ctx context.Context, id string) (*entity.FollowUp, error) {
	f, err := scanFollowUp(r.q.QueryRow(ctx, `SELECT `+followUpColumns+` FROM follow_ups WHERE id = $1`, id))
	return notFound(f, err, "get follow-up")
}

func (r *FollowUpRepo) List(ctx context.Context, f repository.FollowUpFilter) ([]*entity.FollowUp, error) {
	var w where
	w.eq("status", f.Status)
	w.eq("client_id::text", f.ClientID)
	w.eq("user_id::text", f.UserID)
	rows, err := r.q.Query(ctx, `SELECT `+followUpColumns+` FROM follow_ups`+w.sql("follow_up_date DESC, id", f.Page), w.args...)
	if err != nil {
		return nil, fmt.Errorf("list follow-ups: %w", err)
	}
	return collect(rows, scanFollowUp)
}

func (r *FollowUpRepo) Update(ctx context.Context, f *entity.FollowUp) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE follow_ups SET client_id = $2, user_id = $3, follow_up_date = $4, type = $5, notes = $6,
			outcome = $7, next_follow_up_date = $8, status = $9, updated_at = $10
		WHERE id = $1`,
		f.ID, f.ClientID, f.UserID, f.FollowUpDate, f.Type, f.Notes, f.Outcome, f.NextFollowUpDate, f.Status,
		f.UpdatedAt,
	)
	if err != nil {
		return mapWriteError("update follow-up", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
