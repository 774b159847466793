package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/bitumen-api/internal/domain"
	"github.com/jhoicas/bitumen-api/internal/domain/entity"
	"github.com/jhoicas/bitumen-api/internal/domain/repository"
)

var _ repository.PaymentRepository = (*PaymentRepo)(nil)

const paymentColumns = `id, client_id, order_id, amount, payment_date, due_date, mode, reference, status, notes, created_at, updated_at`

// PaymentRepo pagos a crédito sobre PostgreSQL.
type PaymentRepo struct {
	q Querier
}

// NewPaymentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPaymentRepository(q Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

func scanPayment(row pgx.Row) (*entity.Payment, error) {
	var p entity.Payment
	err := row.Scan(&p.ID, &p.ClientID, &p.OrderID, &p.Amount, &p.PaymentDate, &p.DueDate, &p.Mode, &p.Reference,
		&p.Status, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepo) Create(ctx context.Context, p *entity.Payment) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO payments (`+paymentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		p.ID, p.ClientID, p.OrderID, p.Amount, p.PaymentDate, p.DueDate, p.Mode, p.Reference, p.Status, p.Notes,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return mapWriteError("insert payment", err)
	}
	return nil
}

func (r *PaymentRepo) GetByID(ctx context.Context, id string) (*entity.Payment, error) {
	p, err := scanPayment(r.q.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
	return notFound(p, err, "get payment")
}

func (r *PaymentRepo) List(ctx context.Context, f repository.PaymentFilter) ([]*entity.Payment, error) {
	var w where
	w.eq("status", f.Status)
	w.eq("client_id::text", f.ClientID)
	w.eq("mode", f.Mode)
	rows, err := r.q.Query(ctx, `SELECT `+paymentColumns+` FROM payments`+w.sql("payment_date DESC, id", f.Page), w.args...)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return collect(rows, scanPayment)
}

func (r *PaymentRepo) Update(ctx context.Context, p *entity.Payment) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE payments SET client_id = $2, order_id = $3, amount = $4, payment_date = $5, due_date = $6,
			mode = $7, reference = $8, status = $9, notes = $10, updated_at = $11
		WHERE id = $1`,
		p.ID, p.ClientID, p.OrderID, p.Amount, p.PaymentDate, p.DueDate, p.Mode, p.Reference, p.Status, p.Notes,
		p.UpdatedAt,
	)
	if err != nil {
		return mapWriteError("update payment", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SumOutstanding suma los pagos PENDING y OVERDUE del cliente.
func (r *PaymentRepo) SumOutstanding(ctx context.Context, clientID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM payments
		WHERE client_id = $1 AND status IN ('PENDING', 'OVERDUE')`, clientID,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum outstanding: %w", err)
	}
	return total, nil
}
