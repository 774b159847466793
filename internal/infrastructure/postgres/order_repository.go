package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/bitumen-api/internal/domain"
	"github.com/jhoicas/bitumen-api/internal/domain/entity"
	"github.com/jhoicas/bitumen-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

const orderColumns = `id, order_number, client_id, sales_person_id, order_date, delivery_date, status, notes,
	total_amount, created_at, updated_at`

// OrderRepo pedidos y líneas; cabecera y líneas se escriben en la misma transacción.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var o entity.Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.ClientID, &o.SalesPersonID, &o.OrderDate, &o.DeliveryDate,
		&o.Status, &o.Notes, &o.TotalAmount, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Create persiste cabecera y líneas.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	tx, err := r.q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		o.ID, o.OrderNumber, o.ClientID, o.SalesPersonID, o.OrderDate, o.DeliveryDate, o.Status, o.Notes,
		o.TotalAmount, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return mapWriteError("insert order", err)
	}
	if err := insertItems(ctx, tx, o); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func insertItems(ctx context.Context, tx pgx.Tx, o *entity.Order) error {
	for i := range o.Items {
		it := &o.Items[i]
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.OrderID = o.ID
		_, err := tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, position, product_name, grade, quantity, unit, rate)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			it.ID, o.ID, i, it.ProductName, it.Grade, it.Quantity, it.Unit, it.Rate,
		)
		if err != nil {
			return mapWriteError("insert order item", err)
		}
	}
	return nil
}

// GetByID obtiene el pedido con sus líneas.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	o, err = notFound(o, err, "get order")
	if err != nil || o == nil {
		return o, err
	}
	if err := r.loadItems(ctx, []*entity.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

// loadItems carga las líneas de varios pedidos en una sola consulta.
func (r *OrderRepo) loadItems(ctx context.Context, orders []*entity.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	byID := make(map[string]*entity.Order, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		o.Items = []entity.OrderItem{}
		byID[o.ID] = o
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, order_id, product_name, grade, quantity, unit, rate
		FROM order_items WHERE order_id::text = ANY($1) ORDER BY order_id, position`, ids)
	if err != nil {
		return fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductName, &it.Grade, &it.Quantity, &it.Unit, &it.Rate); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		if o := byID[it.OrderID]; o != nil {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}

// List lista pedidos (con líneas) con filtros y paginación.
func (r *OrderRepo) List(ctx context.Context, f repository.OrderFilter) ([]*entity.Order, error) {
	var w where
	w.eq("status", f.Status)
	w.eq("client_id::text", f.ClientID)
	w.eq("sales_person_id::text", f.SalesPersonID)
	w.search(f.Search, "order_number")
	rows, err := r.q.Query(ctx, `SELECT `+orderColumns+` FROM orders`+w.sql("order_date DESC, id", f.Page), w.args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	list, err := collect(rows, scanOrder)
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// Update reemplaza cabecera y líneas del pedido.
func (r *OrderRepo) Update(ctx context.Context, o *entity.Order) error {
	tx, err := r.q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE orders SET order_number = $2, client_id = $3, sales_person_id = $4, order_date = $5,
			delivery_date = $6, status = $7, notes = $8, total_amount = $9, updated_at = $10
		WHERE id = $1`,
		o.ID, o.OrderNumber, o.ClientID, o.SalesPersonID, o.OrderDate, o.DeliveryDate, o.Status, o.Notes,
		o.TotalAmount, o.UpdatedAt,
	)
	if err != nil {
		return mapWriteError("update order", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, o.ID); err != nil {
		return fmt.Errorf("delete order items: %w", err)
	}
	if err := insertItems(ctx, tx, o); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
