package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/bitumen-api/internal/domain"
	"github.com/jhoicas/bitumen-api/internal/domain/entity"
	"github.com/jhoicas/bitumen-api/internal/domain/repository"
)

var _ repository.EWayBillRepository = (*EWayBillRepo)(nil)

const ewayBillColumns = `id, eway_bill_number, client_id, order_id, vehicle_number, from_place, to_place, distance_km,
	generated_date, valid_until, invoice_value, status, created_at, updated_at`

// EWayBillRepo e-way bills sobre PostgreSQL.
type EWayBillRepo struct {
	q Querier
}

// NewEWayBillRepository construye el adaptador de e-way bills.
func NewEWayBillRepository(q Querier) *EWayBillRepo {
	return &EWayBillRepo{q: q}
}

func scanEWayBill(row pgx.Row) (*entity.EWayBill, error) {
	var e entity.EWayBill
	err := row.Scan(&e.ID, &e.EWayBillNumber, &e.ClientID, &e.OrderID, &e.VehicleNumber, &e.FromPlace, &e.ToPlace,
		&e.DistanceKM, &e.GeneratedDate, &e.ValidUntil, &e.InvoiceValue, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EWayBillRepo) Create(ctx context.Context, e *entity.EWayBill) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO eway_bills (`+ewayBillColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		e.ID, e.EWayBillNumber, e.ClientID, e.OrderID, e.VehicleNumber, e.FromPlace, e.ToPlace, e.DistanceKM,
		e.GeneratedDate, e.ValidUntil, e.InvoiceValue, e.Status, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return mapWriteError("insert eway bill", err)
	}
	return nil
}

func (r *EWayBillRepo) GetByID(ctx context.Context, id string) (*entity.EWayBill, error) {
	e, err := scanEWayBill(r.q.QueryRow(ctx, `SELECT `+ewayBillColumns+` FROM eway_bills WHERE id = $1`, id))
	return notFound(e, err, "get eway bill")
}

func (r *EWayBillRepo) List(ctx context.Context, f repository.EWayBillFilter) ([]*entity.EWayBill, error) {
	var w where
	w.eq("status", f.Status)
	w.eq("client_id::text", f.ClientID)
	w.search(f.Search, "eway_bill_number", "vehicle_number")
	rows, err := r.q.Query(ctx, `SELECT `+ewayBillColumns+` FROM eway_bills`+w.sql("generated_date DESC, id", f.Page), w.args...)
	if err != nil {
		return nil, fmt.Errorf("list eway bills: %w", err)
	}
	return collect(rows, scanEWayBill)
}

func (r *EWayBillRepo) Update(ctx context.Context, e *entity.EWayBill) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE eway_bills SET eway_bill_number = $2, client_id = $3, order_id = $4, vehicle_number = $5,
			from_place = $6, to_place = $7, distance_km = $8, generated_date = $9, valid_until = $10,
			invoice_value = $11, status = $12, updated_at = $13
		WHERE id = $1`,
		e.ID, e.EWayBillNumber, e.ClientID, e.OrderID, e.VehicleNumber, e.FromPlace, e.ToPlace, e.DistanceKM,
		e.GeneratedDate, e.ValidUntil, e.InvoiceValue, e.Status, e.UpdatedAt,
	)
	if err != nil {
		return mapWriteError("update eway bill", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
