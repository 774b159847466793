package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/bitumen-api/internal/domain"
	"github.com/jhoicas/bitumen-api/internal/domain/entity"
	"github.com/jhoicas/bitumen-api/internal/domain/repository"
)

var _ repository.TourAdvanceRepository = (*TourAdvanceRepo)(nil)

const tourAdvanceColumns = `id, employee_id, purpose, destination, start_date, end_date, amount_requested,
	amount_approved, amount_spent, status, created_at, updated_at`

// TourAdvanceRepo anticipos de viaje sobre PostgreSQL.
type TourAdvanceRepo struct {
	q Querier
}

// NewTourAdvanceRepository construye el adaptador de anticipos.
func NewTourAdvanceRepository(q Querier) *TourAdvanceRepo {
	return &TourAdvanceRepo{q: q}
}

func scanTourAdvance(row pgx.Row) (*entity.TourAdvance, error) {
	var t entity.TourAdvance
	err := row.Scan(&t.ID, &t.EmployeeID, &t.Purpose, &t.Destination, &t.StartDate, &t.EndDate, &t.AmountRequested,
		&t.AmountApproved, &t.AmountSpent, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TourAdvanceRepo) Create(ctx context.Context, t *entity.TourAdvance) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO tour_advances (`+tourAdvanceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		t.ID, t.EmployeeID, t.Purpose, t.Destination, t.StartDate, t.EndDate, t.AmountRequested,
		t.AmountApproved, t.AmountSpent, t.Status, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return mapWriteError("insert tour advance", err)
	}
	return nil
}

func (r *TourAdvanceRepo) GetByID(ctx context.Context, id string) (*entity.TourAdvance, error) {
	t, err := scanTourAdvance(r.q.QueryRow(ctx, `SELECT `+tourAdvanceColumns+` FROM tour_advances WHERE id = $1`, id))
	return notFound(t, err, "get tour advance")
}

func (r *TourAdvanceRepo) List(ctx context.Context, f repository.TourAdvanceFilter) ([]*entity.TourAdvance, error) {
	var w where
	w.eq("status", f.Status)
	w.eq("employee_id::text", f.EmployeeID)
	rows, err := r.q.Query(ctx, `SELECT `+tourAdvanceColumns+` FROM tour_advances`+w.sql("start_date DESC, id", f.Page), w.args...)
	if err != nil {
		return nil, fmt.Errorf("list tour advances: %w", err)
	}
	return collect(rows, scanTourAdvance)
}

func (r *TourAdvanceRepo) Update(ctx context.Context, t *entity.TourAdvance) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE tour_advances SET employee_id = $2, purpose = $3, destination = $4, start_date = $5, end_date = $6,
			amount_requested = $7, amount_approved = $8, amount_spent = $9, status = $10, updated_at = $11
		WHERE id = $1`,
		t.ID, t.EmployeeID, t.Purpose, t.Destination, t.StartDate, t.EndDate, t.AmountRequested,
		t.AmountApproved, t.AmountSpent, t.Status, t.UpdatedAt,
	)
	if err != nil {
		return mapWriteError("update tour advance", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
