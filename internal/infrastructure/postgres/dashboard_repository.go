package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/bitumen-api/internal/domain/repository"
)

var _ repository.DashboardRepository = (*DashboardRepo)(nil)

// DashboardRepo consultas agregadas de solo lectura.
type DashboardRepo struct {
	q Querier
}

// NewDashboardRepository construye el adaptador del dashboard.
func NewDashboardRepository(q Querier) *DashboardRepo {
	return &DashboardRepo{q: q}
}

func (r *DashboardRepo) count(ctx context.Context, op, query string, args ...any) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

func (r *DashboardRepo) sum(ctx context.Context, op, query string, args ...any) (decimal.Decimal, error) {
	var total decimal.Decimal
	if err := r.q.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}
	return total, nil
}

func (r *DashboardRepo) CountActiveClients(ctx context.Context) (int, error) {
	return r.count(ctx, "count active clients", `SELECT COUNT(*) FROM clients WHERE status = 'ACTIVE'`)
}

func (r *DashboardRepo) ClientsByCategory(ctx context.Context) ([]repository.CategoryCount, error) {
	rows, err := r.q.Query(ctx, `
		SELECT category, COUNT(*) FROM clients
		WHERE status = 'ACTIVE'
		GROUP BY category ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("clients by category: %w", err)
	}
	defer rows.Close()
	out := []repository.CategoryCount{}
	for rows.Next() {
		var c repository.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *DashboardRepo) OpenOrders(ctx context.Context) (int, error) {
	return r.count(ctx, "open orders", `SELECT COUNT(*) FROM orders WHERE status NOT IN ('DELIVERED', 'CANCELLED')`)
}

func (r *DashboardRepo) OrderValueBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	return r.sum(ctx, "order value", `
		SELECT COALESCE(SUM(total_amount), 0) FROM orders
		WHERE status <> 'CANCELLED' AND order_date >= $1 AND order_date < $2`, from, to)
}

func (r *DashboardRepo) PendingTasksFor(ctx context.Context, userID string) (int, error) {
	return r.count(ctx, "pending tasks", `
		SELECT COUNT(*) FROM tasks WHERE assignee_id = $1 AND status <> 'COMPLETED'`, userID)
}

func (r *DashboardRepo) OutstandingCredit(ctx context.Context) (decimal.Decimal, error) {
	return r.sum(ctx, "outstanding credit", `
		SELECT COALESCE(SUM(amount), 0) FROM payments WHERE status IN ('PENDING', 'OVERDUE')`)
}

func (r *DashboardRepo) OverduePayments(ctx context.Context, now time.Time) (int, error) {
	return r.count(ctx, "overdue payments", `
		SELECT COUNT(*) FROM payments
		WHERE status = 'OVERDUE' OR (status = 'PENDING' AND due_date IS NOT NULL AND due_date < $1)`, now)
}

func (r *DashboardRepo) FollowUpsBetween(ctx context.Context, from, to time.Time) (int, error) {
	return r.count(ctx, "follow-ups", `
		SELECT COUNT(*) FROM follow_ups
		WHERE status = 'SCHEDULED' AND follow_up_date >= $1 AND follow_up_date < $2`, from, to)
}

func (r *DashboardRepo) PendingTourAdvances(ctx context.Context) (int, error) {
	return r.count(ctx, "pending tour advances", `SELECT COUNT(*) FROM tour_advances WHERE status = 'PENDING'`)
}
