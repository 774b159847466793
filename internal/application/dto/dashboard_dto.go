package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryCountDTO clientes activos por categoría.
type CategoryCountDTO struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// DashboardSummaryResponse tarjetas del dashboard.
type DashboardSummaryResponse struct {
	ActiveClients       int                `json:"active_clients"`
	ClientsByCategory   []CategoryCountDTO `json:"clients_by_category"`
	OpenOrders          int                `json:"open_orders"`
	MonthOrderValue     decimal.Decimal    `json:"month_order_value"`
	MyPendingTasks      int                `json:"my_pending_tasks"`
	OutstandingCredit   decimal.Decimal    `json:"outstanding_credit"`
	OverduePayments     int                `json:"overdue_payments"`
	UpcomingFollowUps   int                `json:"upcoming_follow_ups"`
	PendingTourAdvances int                `json:"pending_tour_advances"`
	TallyConnected      bool               `json:"tally_connected"`
	GeneratedAt         time.Time          `json:"generated_at"`
}
