// Package dashboard arma las tarjetas de resumen de la pantalla inicial.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/bitumen-api/internal/application/crm"
	"github.com/jhoicas/bitumen-api/internal/application/dto"
	"github.com/jhoicas/bitumen-api/internal/domain/access"
	"github.com/jhoicas/bitumen-api/internal/domain/entity"
	"github.com/jhoicas/bitumen-api/internal/domain/repository"
)

// upcomingWindow ventana de seguimientos próximos.
const upcomingWindow = 7 * 24 * time.Hour

// SyncStatus informa si el software contable figura conectado. Lo implementa *tallysync.Registry.
type SyncStatus interface {
	Connected() bool
}

// DashboardUseCase resumen del negocio (módulo DASHBOARD).
//
// Fuente de datos: DashboardRepository (consultas read-only). Las consultas
// corren en paralelo; la primera que falle aborta el resumen.
type DashboardUseCase struct {
	gate crm.Gate
	repo repository.DashboardRepository
	sync SyncStatus
	now  func() time.Time
}

// NewDashboardUseCase construye el caso de uso. sync puede ser nil.
func NewDashboardUseCase(gate crm.Gate, repo repository.DashboardRepository, sync SyncStatus) *DashboardUseCase {
	return &DashboardUseCase{gate: gate, repo: repo, sync: sync, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *DashboardUseCase) WithClock(now func() time.Time) *DashboardUseCase {
	uc.now = now
	return uc
}

// Summary construye las tarjetas para el usuario autenticado.
//
//  1. clientes activos y por categoría
//  2. pedidos abiertos y valor de pedidos del mes
//  3. tareas pendientes del propio usuario
//  4. crédito pendiente y pagos vencidos
//  5. seguimientos de los próximos 7 días y anticipos pendientes
func (uc *DashboardUseCase) Summary(ctx context.Context, actor *entity.User) (*dto.DashboardSummaryResponse, error) {
	if err := uc.gate.Require(ctx, actor, access.ModuleDashboard, access.ActionView); err != nil {
		return nil, err
	}
	now := uc.now()

	// ── Rangos de fecha ────────────────────────────────────────────────────────
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	// ── Goroutines para paralelizar las consultas ─────────────────────────────
	type countResult struct {
		n   int
		err error
	}
	type amountResult struct {
		v   decimal.Decimal
		err error
	}
	type categoriesResult struct {
		rows []repository.CategoryCount
		err  error
	}

	count := func(fn func() (int, error)) <-chan countResult {
		ch := make(chan countResult, 1)
		go func() {
			n, err := fn()
			ch <- countResult{n, err}
		}()
		return ch
	}
	amount := func(fn func() (decimal.Decimal, error)) <-chan amountResult {
		ch := make(chan amountResult, 1)
		go func() {
			v, err := fn()
			ch <- amountResult{v, err}
		}()
		return ch
	}

	activeCh := count(func() (int, error) { return uc.repo.CountActiveClients(ctx) })
	openCh := count(func() (int, error) { return uc.repo.OpenOrders(ctx) })
	tasksCh := count(func() (int, error) { return uc.repo.PendingTasksFor(ctx, actor.ID) })
	overdueCh := count(func() (int, error) { return uc.repo.OverduePayments(ctx, now) })
	followCh := count(func() (int, error) {
		return uc.repo.FollowUpsBetween(ctx, todayStart, todayStart.Add(upcomingWindow))
	})
	toursCh := count(func() (int, error) { return uc.repo.PendingTourAdvances(ctx) })
	monthCh := amount(func() (decimal.Decimal, error) { return uc.repo.OrderValueBetween(ctx, monthStart, monthEnd) })
	creditCh := amount(func() (decimal.Decimal, error) { return uc.repo.OutstandingCredit(ctx) })
	catCh := make(chan categoriesResult, 1)
	go func() {
		rows, err := uc.repo.ClientsByCategory(ctx)
		catCh <- categoriesResult{rows, err}
	}()

	active, open, tasks := <-activeCh, <-openCh, <-tasksCh
	overdue, follow, tours := <-overdueCh, <-followCh, <-toursCh
	month, credit, cats := <-monthCh, <-creditCh, <-catCh

	for _, r := range []struct {
		name string
		err  error
	}{
		{"clientes activos", active.err},
		{"clientes por categoría", cats.err},
		{"pedidos abiertos", open.err},
		{"valor del mes", month.err},
		{"tareas pendientes", tasks.err},
		{"crédito pendiente", credit.err},
		{"pagos vencidos", overdue.err},
		{"seguimientos próximos", follow.err},
		{"anticipos pendientes", tours.err},
	} {
		if r.err != nil {
			return nil, fmt.Errorf("dashboard: %s: %w", r.name, r.err)
		}
	}

	byCategory := make([]dto.CategoryCountDTO, 0, len(cats.rows))
	for _, c := range cats.rows {
		byCategory = append(byCategory, dto.CategoryCountDTO{Category: c.Category, Count: c.Count})
	}

	return &dto.DashboardSummaryResponse{
		ActiveClients:       active.n,
		ClientsByCategory:   byCategory,
		OpenOrders:          open.n,
		MonthOrderValue:     month.v.Round(2),
		MyPendingTasks:      tasks.n,
		OutstandingCredit:   credit.v.Round(2),
		OverduePayments:     overdue.n,
		UpcomingFollowUps:   follow.n,
		PendingTourAdvances: tours.n,
		TallyConnected:      uc.sync != nil && uc.sync.Connected(),
		GeneratedAt:         now,
	}, nil
}
