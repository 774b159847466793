package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// CategoryCount número de clientes activos por categoría.
type CategoryCount struct {
	Category string
	Count    int
}

// DashboardRepository consultas agregadas de solo lectura para el dashboard.
type DashboardRepository interface {
	CountActiveClients(ctx context.Context) (int, error)
	ClientsByCategory(ctx context.Context) ([]CategoryCount, error)
	// OpenOrders pedidos no entregados ni cancelados.
	OpenOrders(ctx context.Context) (int, error)
	OrderValueBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	PendingTasksFor(ctx context.Context, userID string) (int, error)
	OutstandingCredit(ctx context.Context) (decimal.Decimal, error)
	OverduePayments(ctx context.Context, now time.Time) (int, error)
	FollowUpsBetween(ctx context.Context, from, to time.Time) (int, error)
	PendingTourAdvances(ctx context.Context) (int, error)
}
