package dashboard_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bitumen-api/internal/application/crm"
	"github.com/jhoicas/bitumen-api/internal/application/dashboard"
	"github.com/jhoicas/bitumen-api/internal/application/dto"
	"github.com/jhoicas/bitumen-api/internal/domain"
	"github.com/jhoicas/bitumen-api/internal/domain/access"
	"github.com/jhoicas/bitumen-api/internal/domain/entity"
	"github.com/jhoicas/bitumen-api/internal/domain/numeric"
	"github.com/jhoicas/bitumen-api/internal/domain/repository"
	"github.com/jhoicas/bitumen-api/internal/infrastructure/memory"
)

var fixedNow = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

type syncStub bool

func (s syncStub) Connected() bool { return bool(s) }

func TestSummary(t *testing.T) {
	repos := memory.NewStore().Repos()
	ctx := context.Background()
	admin := &entity.User{ID: uuid.New().String(), Username: "admin", Role: entity.RoleAdmin, IsActive: true}
	clerk := &entity.User{ID: uuid.New().String(), Username: "clerk", Role: entity.RoleEmployee, IsActive: true}
	require.NoError(t, repos.Users.Create(ctx, admin))
	require.NoError(t, repos.Users.Create(ctx, clerk))

	gate := access.NewResolver(repos.Permissions)
	svc := crm.NewServices(crm.Deps{
		Gate: gate, Users: repos.Users, Sessions: repos.Sessions, Permissions: repos.Permissions,
		Clients: repos.Clients, Orders: repos.Orders, Tasks: repos.Tasks, Payments: repos.Payments,
		FollowUps: repos.FollowUps, TourAdvances: repos.TourAdvances, EWayBills: repos.EWayBills,
		PaymentTx: repos.Tx, Now: func() time.Time { return fixedNow },
	})

	alfa, err := svc.Clients.Create(ctx, admin, dto.CreateClientRequest{CompanyName: "Sharma Constructions", Category: "ALFA"})
	require.NoError(t, err)
	_, err = svc.Clients.Create(ctx, admin, dto.CreateClientRequest{CompanyName: "Patel Roads", Category: "BETA"})
	require.NoError(t, err)

	_, err = svc.Orders.Create(ctx, admin, dto.CreateOrderRequest{
		ClientID:  alfa.ID,
		OrderDate: dto.DateOf(fixedNow.AddDate(0, 0, -3)),
		Items:     []dto.OrderItemRequest{{ProductName: "VG-30", Quantity: numeric.OfInt(2), Unit: "MT", Rate: numeric.OfInt(40000)}},
	})
	require.NoError(t, err)
	_, err = svc.Orders.Create(ctx, admin, dto.CreateOrderRequest{
		ClientID:  alfa.ID,
		OrderDate: dto.DateOf(fixedNow.AddDate(0, -1, 0)),
		Items:     []dto.OrderItemRequest{{ProductName: "VG-40", Quantity: numeric.OfInt(1), Unit: "MT", Rate: numeric.OfInt(50000)}},
	})
	require.NoError(t, err)

	_, err = svc.Tasks.Create(ctx, admin, dto.CreateTaskRequest{Title: "Llamar a Sharma", AssigneeID: clerk.ID})
	require.NoError(t, err)
	_, err = svc.Tasks.Create(ctx, admin, dto.CreateTaskRequest{Title: "Cerrada", AssigneeID: clerk.ID, Status: "COMPLETED"})
	require.NoError(t, err)
	_, err = svc.Tasks.Create(ctx, admin, dto.CreateTaskRequest{Title: "Del admin", AssigneeID: admin.ID})
	require.NoError(t, err)

	_, err = svc.Payments.Create(ctx, admin, dto.CreatePaymentRequest{
		ClientID: alfa.ID, Amount: numeric.OfInt(1500), PaymentDate: dto.DateOf(fixedNow),
		DueDate: dto.DateOf(fixedNow.AddDate(0, 0, -1)), Mode: "NEFT",
	})
	require.NoError(t, err)

	for _, days := range []int{1, 6, 8} {
		_, err = svc.FollowUps.Create(ctx, admin, dto.CreateFollowUpRequest{
			ClientID: alfa.ID, FollowUpDate: dto.DateOf(fixedNow.AddDate(0, 0, days)), Type: "CALL",
		})
		require.NoError(t, err)
	}

	uc := dashboard.NewDashboardUseCase(gate, repos.Dashboard, syncStub(true)).WithClock(func() time.Time { return fixedNow })

	_, err = uc.Summary(ctx, clerk)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, repos.Permissions.ReplaceForUser(ctx, clerk.ID, []access.Grant{
		{Module: access.ModuleDashboard, Action: access.ActionView, Granted: true},
	}))
	got, err := uc.Summary(ctx, clerk)
	require.NoError(t, err)

	assert.Equal(t, 2, got.ActiveClients)
	assert.ElementsMatch(t, []dto.CategoryCountDTO{{Category: "ALFA", Count: 1}, {Category: "BETA", Count: 1}}, got.ClientsByCategory)
	assert.Equal(t, 2, got.OpenOrders)
	assert.True(t, decimal.NewFromInt(80000).Equal(got.MonthOrderValue), "solo pedidos del mes en curso")
	assert.Equal(t, 1, got.MyPendingTasks, "solo tareas propias no completadas")
	assert.True(t, decimal.NewFromInt(1500).Equal(got.OutstandingCredit))
	assert.Equal(t, 1, got.OverduePayments)
	assert.Equal(t, 2, got.UpcomingFollowUps, "ventana de 7 días")
	assert.True(t, got.TallyConnected)
	assert.Equal(t, fixedNow, got.GeneratedAt)
}

type failingRepo struct{ repository.DashboardRepository }

func (failingRepo) CountActiveClients(context.Context) (int, error) { return 0, errors.New("db caída") }

func TestSummary_PropagaErrores(t *testing.T) {
	repos := memory.NewStore().Repos()
	uc := dashboard.NewDashboardUseCase(access.NewResolver(repos.Permissions), failingRepo{repos.Dashboard}, nil)
	admin := &entity.User{ID: uuid.New().String(), Role: entity.RoleAdmin, IsActive: true}

	_, err := uc.Summary(context.Background(), admin)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clientes activos")
}
