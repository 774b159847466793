package tallysync_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bitumen-api/internal/application/crm"
	"github.com/jhoicas/bitumen-api/internal/application/dto"
	"github.com/jhoicas/bitumen-api/internal/application/tallysync"
	"github.com/jhoicas/bitumen-api/internal/domain"
	"github.com/jhoicas/bitumen-api/internal/domain/access"
	"github.com/jhoicas/bitumen-api/internal/domain/entity"
	"github.com/jhoicas/bitumen-api/internal/domain/numeric"
	"github.com/jhoicas/bitumen-api/internal/infrastructure/memory"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time         { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

var cfg = tallysync.Config{
	StatusTimeout: 90 * time.Second,
	EvictTimeout:  10 * time.Minute,
	SweepInterval: time.Minute,
}

func newRegistry() (*tallysync.Registry, *clock) {
	clk := &clock{t: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)}
	return tallysync.NewRegistry(cfg, nil).WithClock(clk.now), clk
}

func TestRegistry_LineaDeTiempo(t *testing.T) {
	r, clk := newRegistry()
	assert.False(t, r.Status().Connected, "sin agentes no hay conexión")

	r.Heartbeat("tally-pc-01", true, map[string]string{"hostname": "ACCOUNTS-PC"})
	assert.True(t, r.Status().Connected)

	clk.advance(90 * time.Second)
	assert.True(t, r.Status().Connected, "en el límite de la ventana sigue conectado")

	clk.advance(time.Second)
	st := r.Status()
	assert.False(t, st.Connected)
	require.Len(t, st.Agents, 1)
	assert.True(t, st.Agents[0].Stale)
	assert.Equal(t, []string{"tally-pc-01"}, r.Clients(), "stale pero todavía rastreado")

	assert.Equal(t, 0, r.Sweep(), "antes de la ventana de desalojo no se elimina")
	assert.Equal(t, []string{"tally-pc-01"}, r.Clients())

	clk.advance(10 * time.Minute)
	assert.Equal(t, 1, r.Sweep())
	assert.Empty(t, r.Clients())
}

func TestRegistry_SoloAgentesRealesConectan(t *testing.T) {
	r, _ := newRegistry()
	r.Heartbeat("mock-agent", false, nil)
	assert.False(t, r.Status().Connected)
	assert.Equal(t, []string{"mock-agent"}, r.Clients())

	r.Heartbeat("tally-pc-01", true, nil)
	assert.True(t, r.Status().Connected)
}

func TestRegistry_SweepNoTocaAgentesVivos(t *testing.T) {
	r, clk := newRegistry()
	r.Heartbeat("viejo", true, nil)
	clk.advance(9 * time.Minute)
	r.Heartbeat("nuevo", true, nil)
	clk.advance(2 * time.Minute)

	assert.Equal(t, 1, r.Sweep())
	assert.Equal(t, []string{"nuevo"}, r.Clients())
}

func TestRegistry_OnChangeSoloEnTransiciones(t *testing.T) {
	r, clk := newRegistry()
	var events []bool
	r.OnChange(func(st tallysync.Status) { events = append(events, st.Connected) })

	r.Heartbeat("tally-pc-01", true, nil)
	r.Heartbeat("tally-pc-01", true, nil)
	clk.advance(2 * time.Minute)
	r.Sweep()
	r.Sweep()

	assert.Equal(t, []bool{true, false}, events)
}

func TestRegistry_RunTerminaConElContexto(t *testing.T) {
	r := tallysync.NewRegistry(tallysync.Config{StatusTimeout: time.Second, EvictTimeout: time.Second, SweepInterval: time.Millisecond}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run no terminó al cancelar el contexto")
	}
}

func TestMetrics_ReflejanEstado(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := tallysync.NewMetrics(reg)
	r, clk := newRegistry()
	r.WithMetrics(m)

	r.Heartbeat("tally-pc-01", true, nil)
	count, err := testutil.GatherAndCount(reg, "bitumen_tally_sync_connected")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	clk.advance(5 * time.Minute)
	r.Sweep()
	assert.False(t, r.Connected())
}

// ─── Bridge ──────────────────────────────────────────────────────────────────

func newBridge(t *testing.T) (*tallysync.Bridge, *clock, memory.Repositories) {
	t.Helper()
	repos := memory.NewStore().Repos()
	resolver := access.NewResolver(repos.Permissions)
	clients := crm.NewClientUseCase(crm.Deps{Gate: resolver, Users: repos.Users, Clients: repos.Clients})
	r, clk := newRegistry()
	return tallysync.NewBridge(r, clients, resolver, nil), clk, repos
}

func TestBridge_RelaySinConexion(t *testing.T) {
	b, clk, repos := newBridge(t)
	ctx := context.Background()
	recs := []entity.LedgerRecord{{Name: "Sharma Constructions"}}

	_, err := b.Relay(ctx, "mock-agent", recs)
	assert.ErrorIs(t, err, domain.ErrAgentNotConnected)

	_, err = b.Heartbeat("mock-agent", false, dto.HeartbeatRequest{})
	require.NoError(t, err)
	_, err = b.Relay(ctx, "mock-agent", recs)
	assert.ErrorIs(t, err, domain.ErrAgentNotConnected, "un agente mock no habilita el reenvío")

	_, err = b.Heartbeat("tally-pc-01", true, dto.HeartbeatRequest{Hostname: "ACCOUNTS-PC"})
	require.NoError(t, err)
	res, err := b.Relay(ctx, "tally-pc-01", recs)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)

	c, err := repos.Clients.GetByLedgerName(ctx, "Sharma Constructions")
	require.NoError(t, err)
	assert.NotNil(t, c)

	clk.advance(2 * time.Minute)
	_, err = b.Relay(ctx, "tally-pc-01", recs)
	assert.ErrorIs(t, err, domain.ErrAgentNotConnected)
}

func TestBridge_StatusRequierePermiso(t *testing.T) {
	b, _, _ := newBridge(t)
	ctx := context.Background()
	clerk := &entity.User{ID: "u-1", Role: entity.RoleEmployee, IsActive: true}
	_, err := b.Status(ctx, clerk)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	admin := &entity.User{ID: "u-2", Role: entity.RoleAdmin, IsActive: true}
	st, err := b.Status(ctx, admin)
	require.NoError(t, err)
	assert.False(t, st.Connected)
	assert.NotNil(t, st.Agents)
}

func TestLedgersFromDTO(t *testing.T) {
	recs, err := tallysync.LedgersFromDTO(dto.LedgersRequest{Ledgers: []dto.LedgerRequest{
		{Name: "A", ClosingBalance: numeric.OfString("1500.25")},
		{Name: "B"},
	}})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.True(t, decimal.RequireFromString("1500.25").Equal(*recs[0].ClosingBalance))
	assert.Nil(t, recs[1].ClosingBalance)

	_, err = tallysync.LedgersFromDTO(dto.LedgersRequest{Ledgers: []dto.LedgerRequest{{Name: ""}}})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "ledgers[0].name")
}
