package crm_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/bitumen-api/internal/application/crm"
	"github.com/jhoicas/bitumen-api/internal/application/dto"
	"github.com/jhoicas/bitumen-api/internal/domain"
	"github.com/jhoicas/bitumen-api/internal/domain/access"
	"github.com/jhoicas/bitumen-api/internal/domain/entity"
	"github.com/jhoicas/bitumen-api/internal/domain/numeric"
	"github.com/jhoicas/bitumen-api/internal/domain/repository"
	"github.com/jhoicas/bitumen-api/internal/infrastructure/memory"
)

var fixedNow = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc   *crm.Services
	repos memory.Repositories
	admin *entity.User
	clerk *entity.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := memory.NewStore().Repos()
	ctx := context.Background()

	admin := &entity.User{ID: uuid.New().String(), Username: "admin", Name: "Admin", Role: entity.RoleAdmin, IsActive: true}
	clerk := &entity.User{ID: uuid.New().String(), Username: "clerk", Name: "Clerk", Role: entity.RoleEmployee, IsActive: true}
	require.NoError(t, repos.Users.Create(ctx, admin))
	require.NoError(t, repos.Users.Create(ctx, clerk))

	svc := crm.NewServices(crm.Deps{
		Gate:         access.NewResolver(repos.Permissions),
		Users:        repos.Users,
		Sessions:     repos.Sessions,
		Permissions:  repos.Permissions,
		Clients:      repos.Clients,
		Orders:       repos.Orders,
		Tasks:        repos.Tasks,
		Payments:     repos.Payments,
		FollowUps:    repos.FollowUps,
		TourAdvances: repos.TourAdvances,
		EWayBills:    repos.EWayBills,
		PaymentTx:    repos.Tx,
		BcryptCost:   bcrypt.MinCost,
		Now:          func() time.Time { return fixedNow },
	})
	return &fixture{svc: svc, repos: repos, admin: admin, clerk: clerk}
}

func (f *fixture) grant(t *testing.T, user *entity.User, grants ...access.Grant) {
	t.Helper()
	require.NoError(t, f.repos.Permissions.ReplaceForUser(context.Background(), user.ID, grants))
}

func (f *fixture) client(t *testing.T, name string) *dto.ClientResponse {
	t.Helper()
	c, err := f.svc.Clients.Create(context.Background(), f.admin, dto.CreateClientRequest{
		CompanyName: name, Category: "ALFA",
	})
	require.NoError(t, err)
	return c
}

func g(m access.Module, a access.Action) access.Grant {
	return access.Grant{Module: m, Action: a, Granted: true}
}

// ─── Clients ─────────────────────────────────────────────────────────────────

func TestClients_CreditLimitCeroSeConserva(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.Clients.Create(ctx, f.admin, dto.CreateClientRequest{
		CompanyName: "Highways Infra", Category: "BETA", CreditLimit: numeric.OfInt(0),
	})
	require.NoError(t, err)
	require.NotNil(t, a.CreditLimit, "0 no se convierte en nulo")
	assert.True(t, a.CreditLimit.IsZero())

	b, err := f.svc.Clients.Create(ctx, f.admin, dto.CreateClientRequest{
		CompanyName: "Roadways Ltd", Category: "BETA", CreditLimit: numeric.OfString("0"),
	})
	require.NoError(t, err)
	require.NotNil(t, b.CreditLimit)
	assert.True(t, b.CreditLimit.IsZero())

	got, err := f.svc.Clients.Get(ctx, f.admin, b.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CreditLimit)
	assert.True(t, got.CreditLimit.IsZero())
}

func TestClients_CategoriaCerrada(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Clients.Create(context.Background(), f.admin, dto.CreateClientRequest{
		CompanyName: "X", Category: "OMEGA",
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "category")
}

func TestClients_DenegacionNoModificaNada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.client(t, "Highways Infra")
	f.grant(t, f.clerk, g(access.ModuleClientManagement, access.ActionView))

	before, err := f.repos.Clients.GetByID(ctx, c.ID)
	require.NoError(t, err)

	_, err = f.svc.Clients.Create(ctx, f.clerk, dto.CreateClientRequest{CompanyName: "Nuevo", Category: "ALFA"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	name := "Renombrado"
	_, err = f.svc.Clients.Update(ctx, f.clerk, c.ID, dto.UpdateClientRequest{CompanyName: &name})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.ErrorIs(t, f.svc.Clients.Delete(ctx, f.clerk, c.ID), domain.ErrForbidden)

	// La denegación ocurre antes de validar: una entrada inválida también da 403.
	_, err = f.svc.Clients.Create(ctx, f.clerk, dto.CreateClientRequest{})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	after, err := f.repos.Clients.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	list, err := f.repos.Clients.List(ctx, repository.ClientFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	// VIEW sí está concedido.
	_, err = f.svc.Clients.Get(ctx, f.clerk, c.ID)
	assert.NoError(t, err)
}

func TestClients_UpdateIdempotente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.client(t, "Highways Infra")

	city := "Pune"
	in := dto.UpdateClientRequest{City: &city, CreditLimit: numeric.OfString("250000.50"), CreditDays: numeric.OfInt(30)}
	first, err := f.svc.Clients.Update(ctx, f.admin, c.ID, in)
	require.NoError(t, err)
	second, err := f.svc.Clients.Update(ctx, f.admin, c.ID, in)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, "250000.5", second.CreditLimit.String())
	assert.Equal(t, 30, *second.CreditDays)

	// null borra credit_limit; ausente lo conserva.
	cleared, err := f.svc.Clients.Update(ctx, f.admin, c.ID, dto.UpdateClientRequest{CreditLimit: numeric.NullValue()})
	require.NoError(t, err)
	assert.Nil(t, cleared.CreditLimit)
	assert.Equal(t, 30, *cleared.CreditDays)
}

func TestClients_DeleteDesactiva(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.client(t, "Highways Infra")

	require.NoError(t, f.svc.Clients.Delete(ctx, f.admin, c.ID))
	got, err := f.svc.Clients.Get(ctx, f.admin, c.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.ClientInactive), got.Status)

	_, err = f.svc.Clients.Get(ctx, f.admin, uuid.New().String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClients_ImportLedgers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bal := decimal.RequireFromString("125000.75")

	res, err := f.svc.Clients.ImportLedgers(ctx, []entity.LedgerRecord{
		{Name: "Sharma Constructions", City: "Jaipur", ClosingBalance: &bal},
		{Name: "  "},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Skipped)

	c, err := f.repos.Clients.GetByLedgerName(ctx, "Sharma Constructions")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, entity.CategoryDelta, c.Category)
	assert.True(t, bal.Equal(c.OutstandingAmount))

	res, err = f.svc.Clients.ImportLedgers(ctx, []entity.LedgerRecord{{Name: "Sharma Constructions", Phone: "9800000000"}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)
	c, err = f.repos.Clients.GetByLedgerName(ctx, "Sharma Constructions")
	require.NoError(t, err)
	assert.Equal(t, "9800000000", c.Phone)
	assert.Equal(t, "Jaipur", c.City, "los campos vacíos del ledger no pisan datos")
}

func TestClients_ImportLedgersNoPisaSaldoConPagos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	opening := decimal.RequireFromString("5000")
	_, err := f.svc.Clients.ImportLedgers(ctx, []entity.LedgerRecord{{Name: "Jain Roadways", ClosingBalance: &opening}})
	require.NoError(t, err)
	c, err := f.repos.Clients.GetByLedgerName(ctx, "Jain Roadways")
	require.NoError(t, err)

	// Sin pagos registrados el ledger sigue mandando.
	again := decimal.RequireFromString("6200")
	_, err = f.svc.Clients.ImportLedgers(ctx, []entity.LedgerRecord{{Name: "Jain Roadways", ClosingBalance: &again}})
	require.NoError(t, err)
	got, err := f.svc.Clients.Get(ctx, f.admin, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "6200", got.OutstandingAmount.String())

	_, err = f.svc.Payments.Create(ctx, f.admin, dto.CreatePaymentRequest{
		ClientID: c.ID, Amount: numeric.OfInt(1000), Mode: entity.PaymentNEFT,
	})
	require.NoError(t, err)

	// Con pagos, el saldo es la suma de pendientes y el ledger solo actualiza contacto.
	later := decimal.RequireFromString("9000")
	res, err := f.svc.Clients.ImportLedgers(ctx, []entity.LedgerRecord{{Name: "Jain Roadways", Phone: "9811111111", ClosingBalance: &later}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)
	got, err = f.svc.Clients.Get(ctx, f.admin, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "1000", got.OutstandingAmount.String())
	assert.Equal(t, "9811111111", got.Phone)
}

type brokenClients struct {
	*memory.ClientRepo
}

func (brokenClients) Create(context.Context, *entity.Client) error {
	return errors.New("insert client: write tcp 10.0.0.3:5432: connection reset by peer")
}

func TestClients_ImportLedgersNoExponeErroresInternos(t *testing.T) {
	repos := memory.NewStore().Repos()
	uc := crm.NewClientUseCase(crm.Deps{
		Gate:    access.NewResolver(repos.Permissions),
		Clients: brokenClients{repos.Clients},
		Now:     func() time.Time { return fixedNow },
	})

	res, err := uc.ImportLedgers(context.Background(), []entity.LedgerRecord{{Name: "Sharma Constructions"}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, "error interno", res.Errors["Sharma Constructions"])
	assert.NotContains(t, res.Errors["Sharma Constructions"], "10.0.0.3")
	assert.ErrorContains(t, res.Causes["Sharma Constructions"], "connection reset")
}

// ─── Orders ──────────────────────────────────────────────────────────────────

func TestOrders_RateCeroYTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.client(t, "Highways Infra")

	o, err := f.svc.Orders.Create(ctx, f.admin, dto.CreateOrderRequest{
		ClientID: c.ID,
		Items: []dto.OrderItemRequest{
			{ProductName: "Bitumen", Grade: "VG-30", Quantity: numeric.OfString("10"), Unit: "MT", Rate: numeric.OfString("42000")},
			{ProductName: "Muestra", Grade: "VG-10", Quantity: numeric.OfInt(1), Unit: "drum", Rate: numeric.OfString("0")},
			{ProductName: "Reposición", Quantity: numeric.OfInt(2), Unit: "drum", Rate: numeric.OfInt(0)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, string(entity.OrderPending), o.Status)
	assert.NotEmpty(t, o.OrderNumber)
	assert.Equal(t, f.admin.ID, *o.SalesPersonID, "sin sales_person_id queda a nombre del usuario actual")
	require.Len(t, o.Items, 3)
	assert.True(t, o.Items[1].Rate.IsZero())
	assert.True(t, o.Items[2].Rate.IsZero())
	assert.Equal(t, "420000", o.TotalAmount.String())

	got, err := f.svc.Orders.Get(ctx, f.admin, o.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 3)
	assert.True(t, got.Items[1].Rate.IsZero())
}

func TestOrders_ValidacionDeLineasYCliente(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Orders.Create(context.Background(), f.admin, dto.CreateOrderRequest{
		ClientID: uuid.New().String(),
		Items: []dto.OrderItemRequest{
			{ProductName: "Bitumen", Quantity: numeric.OfInt(0), Unit: "MT", Rate: numeric.OfString("-1")},
		},
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "client_id")
	assert.Contains(t, verr.Fields, "items[0].quantity")
	assert.Contains(t, verr.Fields, "items[0].rate")
}

func TestOrders_FlujoDeEstados(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.client(t, "Highways Infra")
	o, err := f.svc.Orders.Create(ctx, f.admin, dto.CreateOrderRequest{
		ClientID: c.ID,
		Items:    []dto.OrderItemRequest{{ProductName: "Bitumen", Quantity: numeric.OfInt(5), Unit: "MT", Rate: numeric.OfInt(40000)}},
	})
	require.NoError(t, err)

	_, err = f.svc.Orders.UpdateStatus(ctx, f.admin, o.ID, dto.UpdateOrderStatusRequest{Status: string(entity.OrderDelivered)})
	assert.ErrorIs(t, err, domain.ErrConflict)

	for _, s := range []entity.OrderStatus{entity.OrderConfirmed, entity.OrderDispatched} {
		got, err := f.svc.Orders.UpdateStatus(ctx, f.admin, o.ID, dto.UpdateOrderStatusRequest{Status: string(s)})
		require.NoError(t, err)
		assert.Equal(t, string(s), got.Status)
	}
	assert.ErrorIs(t, f.svc.Orders.Delete(ctx, f.admin, o.ID), domain.ErrConflict, "un pedido despachado no se cancela")
}

// ─── Payments ────────────────────────────────────────────────────────────────

func TestPayments_RecalculaSaldoDelCliente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.client(t, "Highways Infra")

	p1, err := f.svc.Payments.Create(ctx, f.admin, dto.CreatePaymentRequest{
		ClientID: c.ID, Amount: numeric.OfString("1000"), Mode: entity.PaymentNEFT,
	})
	require.NoError(t, err)
	_, err = f.svc.Payments.Create(ctx, f.admin, dto.CreatePaymentRequest{
		ClientID: c.ID, Amount: numeric.OfInt(500), Mode: entity.PaymentCash, Status: string(entity.PaymentOverdue),
	})
	require.NoError(t, err)
	_, err = f.svc.Payments.Create(ctx, f.admin, dto.CreatePaymentRequest{
		ClientID: c.ID, Amount: numeric.OfInt(700), Mode: entity.PaymentUPI, Status: string(entity.PaymentReceived),
	})
	require.NoError(t, err)

	got, err := f.svc.Clients.Get(ctx, f.admin, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "1500", got.OutstandingAmount.String())

	require.NoError(t, f.svc.Payments.Delete(ctx, f.admin, p1.ID))
	got, err = f.svc.Clients.Get(ctx, f.admin, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "500", got.OutstandingAmount.String())
}

func TestPayments_ImporteDebeSerPositivo(t *testing.T) {
	f := newFixture(t)
	c := f.client(t, "Highways Infra")
	for _, amt := range []numeric.Optional{numeric.OfInt(0), numeric.OfString("abc"), {}} {
		_, err := f.svc.Payments.Create(context.Background(), f.admin, dto.CreatePaymentRequest{
			ClientID: c.ID, Amount: amt, Mode: entity.PaymentCash,
		})
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "amount")
	}
}

// ─── Tasks / tour advances / e-way bills ─────────────────────────────────────

func TestTasks_CreatedByYBorradoFisico(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.grant(t, f.clerk,
		g(access.ModuleTaskManagement, access.ActionView),
		g(access.ModuleTaskManagement, access.ActionAdd),
	)

	task, err := f.svc.Tasks.Create(ctx, f.clerk, dto.CreateTaskRequest{Title: "Llamar a planta", AssigneeID: f.clerk.ID})
	require.NoError(t, err)
	assert.Equal(t, f.clerk.ID, task.CreatedBy)
	assert.Equal(t, entity.PriorityMedium, task.Priority)

	assert.ErrorIs(t, f.svc.Tasks.Delete(ctx, f.clerk, task.ID), domain.ErrForbidden)
	require.NoError(t, f.svc.Tasks.Delete(ctx, f.admin, task.ID))
	_, err = f.svc.Tasks.Get(ctx, f.admin, task.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTourAdvances_FechasYEmpleadoPorDefecto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.TourAdvances.Create(ctx, f.admin, dto.CreateTourAdvanceRequest{
		Purpose: "Visita", Destination: "Nagpur",
		StartDate: dto.DateOf(fixedNow), EndDate: dto.DateOf(fixedNow.AddDate(0, 0, -1)),
		AmountRequested: numeric.OfInt(5000),
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "end_date")

	ta, err := f.svc.TourAdvances.Create(ctx, f.admin, dto.CreateTourAdvanceRequest{
		Purpose: "Visita", Destination: "Nagpur",
		StartDate: dto.DateOf(fixedNow), EndDate: dto.DateOf(fixedNow),
		AmountRequested: numeric.OfInt(5000), AmountApproved: numeric.OfString("0"),
	})
	require.NoError(t, err)
	assert.Equal(t, f.admin.ID, ta.EmployeeID)
	require.NotNil(t, ta.AmountApproved)
	assert.True(t, ta.AmountApproved.IsZero())
}

func TestEWayBills_EstadoEfectivo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.client(t, "Highways Infra")

	e, err := f.svc.EWayBills.Create(ctx, f.admin, dto.CreateEWayBillRequest{
		EWayBillNumber: "123456789012", ClientID: c.ID, VehicleNumber: "mh12ab1234",
		FromPlace: "Mumbai", ToPlace: "Pune",
		GeneratedDate: dto.DateOf(fixedNow.AddDate(0, 0, -3)), ValidUntil: dto.DateOf(fixedNow.AddDate(0, 0, -1)),
		InvoiceValue: numeric.OfString("0"),
	})
	require.NoError(t, err)
	assert.Equal(t, string(entity.EWayBillExpired), e.Status)
	assert.Equal(t, "MH12AB1234", e.VehicleNumber)

	_, err = f.svc.EWayBills.Create(ctx, f.admin, dto.CreateEWayBillRequest{
		EWayBillNumber: "12345", ClientID: c.ID, VehicleNumber: "X", FromPlace: "A", ToPlace: "B",
		ValidUntil: dto.DateOf(fixedNow),
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "eway_bill_number")
}

// ─── Users ───────────────────────────────────────────────────────────────────

func TestUsers_DesactivarCierraSesiones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.repos.Sessions.Create(ctx, &entity.Session{
		ID: uuid.New().String(), TokenHash: "h1", UserID: f.clerk.ID, ExpiresAt: fixedNow.Add(time.Hour),
	}))

	require.NoError(t, f.svc.Users.Delete(ctx, f.admin, f.clerk.ID))
	u, err := f.repos.Users.GetByID(ctx, f.clerk.ID)
	require.NoError(t, err)
	assert.False(t, u.IsActive)
	assert.Equal(t, 0, f.repos.Sessions.Len())

	assert.ErrorIs(t, f.svc.Users.Delete(ctx, f.admin, f.admin.ID), domain.ErrConflict)
}

func TestUsers_CreateAsignaPermisosDelRol(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u, err := f.svc.Users.Create(ctx, f.admin, dto.CreateUserRequest{
		Username: "ops1", Password: "s3cret-pass", Name: "Ops", Role: string(entity.RoleOperations),
	})
	require.NoError(t, err)

	ok, err := access.NewResolver(f.repos.Permissions).HasPermission(ctx, &entity.User{ID: u.ID, Role: entity.RoleOperations, IsActive: true}, access.ModuleEWayBills, access.ActionAdd)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.svc.Users.List(ctx, f.clerk, repository.UserFilter{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUsers_SoloAdminGestionaAdministradores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.grant(t, f.clerk,
		g(access.ModuleUserManagement, access.ActionAdd),
		g(access.ModuleUserManagement, access.ActionEdit),
		g(access.ModuleUserManagement, access.ActionDelete),
	)

	_, err := f.svc.Users.Create(ctx, f.clerk, dto.CreateUserRequest{
		Username: "root2", Password: "s3cret-pass", Name: "Root", Role: string(entity.RoleAdmin),
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	admin := string(entity.RoleAdmin)
	_, err = f.svc.Users.Update(ctx, f.clerk, f.clerk.ID, dto.UpdateUserRequest{Role: &admin})
	assert.ErrorIs(t, err, domain.ErrForbidden, "nadie se asciende a ADMIN sin serlo")
	u, err := f.repos.Users.GetByID(ctx, f.clerk.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleEmployee, u.Role)

	name := "Otro"
	_, err = f.svc.Users.Update(ctx, f.clerk, f.admin.ID, dto.UpdateUserRequest{Name: &name})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.ErrorIs(t, f.svc.Users.Delete(ctx, f.clerk, f.admin.ID), domain.ErrForbidden)

	// Con roles no administrativos el permiso basta.
	sales := string(entity.RoleSalesExecutive)
	out, err := f.svc.Users.Update(ctx, f.clerk, f.clerk.ID, dto.UpdateUserRequest{Role: &sales})
	require.NoError(t, err)
	assert.Equal(t, sales, out.Role)

	_, err = f.svc.Users.Update(ctx, f.admin, f.clerk.ID, dto.UpdateUserRequest{Role: &admin})
	assert.NoError(t, err)
}
