package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/bitumen-api/internal/domain/repository"
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunPayment inicia una transacción, ejecuta fn con repos de pagos y clientes atados a la tx
// y hace Commit o Rollback. Así el saldo del cliente nunca queda desfasado de sus pagos.
func (r *TxRunner) RunPayment(ctx context.Context, fn func(
	payments repository.PaymentRepository,
	clients repository.ClientRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewPaymentRepository(tx), NewClientRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Repositories agrupa todos los adaptadores sobre un mismo pool.
type Repositories struct {
	Users        *UserRepo
	Sessions     *SessionRepo
	Permissions  *PermissionRepo
	Clients      *ClientRepo
	Orders       *OrderRepo
	Tasks        *TaskRepo
	Payments     *PaymentRepo
	FollowUps    *FollowUpRepo
	TourAdvances *TourAdvanceRepo
	EWayBills    *EWayBillRepo
	Dashboard    *DashboardRepo
	Tx           *TxRunner
}

// NewRepositories construye todos los repositorios sobre el pool.
func NewRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Users:        NewUserRepository(pool),
		Sessions:     NewSessionRepository(pool),
		Permissions:  NewPermissionRepository(pool),
		Clients:      NewClientRepository(pool),
		Orders:       NewOrderRepository(pool),
		Tasks:        NewTaskRepository(pool),
		Payments:     NewPaymentRepository(pool),
		FollowUps:    NewFollowUpRepository(pool),
		TourAdvances: NewTourAdvanceRepository(pool),
		EWayBills:    NewEWayBillRepository(pool),
		Dashboard:    NewDashboardRepository(pool),
		Tx:           NewTxRunner(pool),
	}
}
