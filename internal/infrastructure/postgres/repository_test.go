package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/bitumen-api/internal/domain"
	"github.com/jhoicas/bitumen-api/internal/domain/access"
	"github.com/jhoicas/bitumen-api/internal/domain/entity"
	"github.com/jhoicas/bitumen-api/internal/domain/repository"
	"github.com/jhoicas/bitumen-api/internal/infrastructure/postgres"
	"github.com/jhoicas/bitumen-api/pkg/config"
	"github.com/jhoicas/bitumen-api/pkg/logger"
)

// setupTestDB levanta PostgreSQL en un contenedor y aplica las migraciones.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("omitido: TEST_INTEGRATION no definida")
	}
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"docker.io/postgres:16-alpine",
		tcpostgres.WithDatabase("bitumen_test"),
		tcpostgres.WithUsername("bitumen"),
		tcpostgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	cfg := config.DBConfig{DatabaseURL: dsn}

	require.NoError(t, postgres.Migrate(cfg, logger.Nop()))
	pool, err := postgres.NewPool(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func newUser(t *testing.T, repos postgres.Repositories, username string) *entity.User {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	u := &entity.User{
		ID: uuid.New().String(), Username: username, PasswordHash: "x", Name: username,
		Role: entity.RoleSalesExecutive, IsActive: true, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, repos.Users.Create(context.Background(), u))
	return u
}

func TestPostgres_UsuariosSesionesYPermisos(t *testing.T) {
	pool := setupTestDB(t)
	repos := postgres.NewRepositories(pool)
	ctx := context.Background()

	u := newUser(t, repos, "ravi")
	dup := *u
	dup.ID = uuid.New().String()
	assert.ErrorIs(t, repos.Users.Create(ctx, &dup), domain.ErrUsernameTaken)

	got, err := repos.Users.GetByUsername(ctx, "ravi")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)

	missing, err := repos.Users.GetByID(ctx, uuid.New().String())
	require.NoError(t, err)
	assert.Nil(t, missing)
	// Un id que no es UUID no existe: sin error de base de datos.
	missing, err = repos.Users.GetByID(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, missing)
	noClient, err := repos.Clients.GetByID(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, noClient)
	noOrder, err := repos.Orders.GetByID(ctx, "not-a-uuid")
	require.NoError(t, err)
	assert.Nil(t, noOrder)

	sess := &entity.Session{ID: uuid.New().String(), TokenHash: "a1b2", UserID: u.ID, ExpiresAt: time.Now().Add(time.Hour), CreatedAt: time.Now()}
	require.NoError(t, repos.Sessions.Create(ctx, sess))
	found, err := repos.Sessions.GetByTokenHash(ctx, "a1b2")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.NoError(t, repos.Sessions.DeleteByTokenHash(ctx, "a1b2"))
	found, err = repos.Sessions.GetByTokenHash(ctx, "a1b2")
	require.NoError(t, err)
	assert.Nil(t, found)

	require.NoError(t, repos.Permissions.ReplaceForUser(ctx, u.ID, []access.Grant{
		{Module: access.ModuleClientManagement, Action: access.ActionView, Granted: true},
		{Module: access.ModuleClientManagement, Action: access.ActionDelete, Granted: false},
	}))
	granted, ok, err := repos.Permissions.FindGrant(ctx, u.ID, access.ModuleClientManagement, access.ActionView)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, granted)
	granted, ok, err = repos.Permissions.FindGrant(ctx, u.ID, access.ModuleClientManagement, access.ActionDelete)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, granted)
	_, ok, err = repos.Permissions.FindGrant(ctx, u.ID, access.ModuleOrderWorkflow, access.ActionView)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPostgres_PedidoConTarifaCero(t *testing.T) {
	pool := setupTestDB(t)
	repos := postgres.NewRepositories(pool)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	zero := decimal.Zero
	client := &entity.Client{
		ID: uuid.New().String(), CompanyName: "Shree Roads", Category: entity.CategoryAlfa,
		CreditLimit: &zero, Status: entity.ClientActive, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, repos.Clients.Create(ctx, client))

	order := &entity.Order{
		ID: uuid.New().String(), OrderNumber: "ORD-0001", ClientID: client.ID, OrderDate: now,
		Status: entity.OrderPending, CreatedAt: now, UpdatedAt: now,
		Items: []entity.OrderItem{
			{ProductName: "Bitumen", Grade: "VG-30", Quantity: decimal.NewFromInt(10), Unit: "MT", Rate: decimal.Zero},
		},
	}
	order.RecalculateTotal()
	require.NoError(t, repos.Orders.Create(ctx, order))

	got, err := repos.Orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.True(t, got.Items[0].Rate.IsZero(), "la tarifa 0 se conserva")
	assert.True(t, got.TotalAmount.IsZero())

	gotClient, err := repos.Clients.GetByID(ctx, client.ID)
	require.NoError(t, err)
	require.NotNil(t, gotClient.CreditLimit, "credit_limit 0 no se convierte en NULL")
	assert.True(t, gotClient.CreditLimit.IsZero())

	bad := *order
	bad.ID = uuid.New().String()
	bad.OrderNumber = "ORD-0002"
	bad.ClientID = uuid.New().String()
	err = repos.Orders.Create(ctx, &bad)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "client_id")
}

func TestPostgres_SaldoPendienteYFiltros(t *testing.T) {
	pool := setupTestDB(t)
	repos := postgres.NewRepositories(pool)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	client := &entity.Client{ID: uuid.New().String(), CompanyName: "Ganga Infra", Category: entity.CategoryBeta,
		Status: entity.ClientActive, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repos.Clients.Create(ctx, client))

	for _, p := range []struct {
		amount int64
		status entity.PaymentStatus
	}{{1000, entity.PaymentPending}, {500, entity.PaymentOverdue}, {700, entity.PaymentReceived}} {
		require.NoError(t, repos.Payments.Create(ctx, &entity.Payment{
			ID: uuid.New().String(), ClientID: client.ID, Amount: decimal.NewFromInt(p.amount), PaymentDate: now,
			Mode: entity.PaymentNEFT, Status: p.status, CreatedAt: now, UpdatedAt: now,
		}))
	}

	err := repos.Tx.RunPayment(ctx, func(payments repository.PaymentRepository, clients repository.ClientRepository) error {
		total, err := payments.SumOutstanding(ctx, client.ID)
		if err != nil {
			return err
		}
		return clients.UpdateOutstanding(ctx, client.ID, total)
	})
	require.NoError(t, err)

	got, err := repos.Clients.GetByID(ctx, client.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1500).Equal(got.OutstandingAmount))

	list, err := repos.Payments.List(ctx, repository.PaymentFilter{ClientID: client.ID, Status: string(entity.PaymentPending)})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	clients, err := repos.Clients.List(ctx, repository.ClientFilter{Search: "ganga"})
	require.NoError(t, err)
	assert.Len(t, clients, 1)
}
