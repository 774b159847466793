package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/bitumen-api/internal/domain/entity"
)

// ClientRepository define el puerto de persistencia para Client.
type ClientRepository interface {
	Create(ctx context.Context, c *entity.Client) error
	GetByID(ctx context.Context, id string) (*entity.Client, error)
	GetByLedgerName(ctx context.Context, ledgerName string) (*entity.Client, error)
	List(ctx context.Context, f ClientFilter) ([]*entity.Client, error)
	Update(ctx context.Context, c *entity.Client) error
	UpdateOutstanding(ctx context.Context, clientID string, amount decimal.Decimal) error
}

// OrderRepository persiste pedidos junto con sus líneas.
type OrderRepository interface {
	Create(ctx context.Context, o *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	List(ctx context.Context, f OrderFilter) ([]*entity.Order, error)
	// Update reemplaza cabecera y líneas.
	Update(ctx context.Context, o *entity.Order) error
}

// TaskRepository persistencia de tareas (borrado físico permitido).
type TaskRepository interface {
	Create(ctx context.Context, t *entity.Task) error
	GetByID(ctx context.Context, id string) (*entity.Task, error)
	List(ctx context.Context, f TaskFilter) ([]*entity.Task, error)
	Update(ctx context.Context, t *entity.Task) error
	Delete(ctx context.Context, id string) error
}

// PaymentRepository persistencia de pagos a crédito.
type PaymentRepository interface {
	Create(ctx context.Context, p *entity.Payment) error
	GetByID(ctx context.Context, id string) (*entity.Payment, error)
	List(ctx context.Context, f PaymentFilter) ([]*entity.Payment, error)
	Update(ctx context.Context, p *entity.Payment) error
	// SumOutstanding suma los pagos PENDING y OVERDUE del cliente.
	SumOutstanding(ctx context.Context, clientID string) (decimal.Decimal, error)
}

// FollowUpRepository persistencia de seguimientos.
type FollowUpRepository interface {
	Create(ctx context.Context, f *entity.FollowUp) error
	GetByID(ctx context.Context, id string) (*entity.FollowUp, error)
	List(ctx context.Context, f FollowUpFilter) ([]*entity.FollowUp, error)
	Update(ctx context.Context, f *entity.FollowUp) error
}

// TourAdvanceRepository persistencia de anticipos de viaje.
type TourAdvanceRepository interface {
	Create(ctx context.Context, t *entity.TourAdvance) error
	GetByID(ctx context.Context, id string) (*entity.TourAdvance, error)
	List(ctx context.Context, f TourAdvanceFilter) ([]*entity.TourAdvance, error)
	Update(ctx context.Context, t *entity.TourAdvance) error
}

// EWayBillRepository persistencia de e-way bills.
type EWayBillRepository interface {
	Create(ctx context.Context, e *entity.EWayBill) error
	GetByID(ctx context.Context, id string) (*entity.EWayBill, error)
	List(ctx context.Context, f EWayBillFilter) ([]*entity.EWayBill, error)
	Update(ctx context.Context, e *entity.EWayBill) error
}
