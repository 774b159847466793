// Package tallysync rastrea el agente de escritorio del software contable (Tally) por latidos
// y reenvía sus ledgers al servicio de clientes.
//
// Dos ventanas independientes:
//   - StatusTimeout: un agente real con latido dentro de la ventana cuenta como "conectado".
//   - EvictTimeout: pasado este tiempo sin latido, el barrido periódico lo deja de rastrear.
package tallysync

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/bitumen-api/pkg/logger"
)

// Config ventanas de tiempo del registro.
type Config struct {
	StatusTimeout time.Duration
	EvictTimeout  time.Duration
	SweepInterval time.Duration
}

// Agent último latido conocido de un agente.
type Agent struct {
	ID       string
	Real     bool
	LastSeen time.Time
	Info     map[string]string
}

// AgentState agente con su estado calculado en un instante.
type AgentState struct {
	Agent
	Stale bool
}

// Status foto del registro.
type Status struct {
	Connected bool
	CheckedAt time.Time
	Agents    []AgentState
}

// Registry registro de agentes. Se inyecta; no hay estado global.
type Registry struct {
	cfg     Config
	now     func() time.Time
	log     *logger.Logger
	metrics *Metrics

	mu        sync.Mutex
	agents    map[string]Agent
	connected bool
	listeners []func(Status)
}

// NewRegistry construye un registro vacío.
func NewRegistry(cfg Config, log *logger.Logger) *Registry {
	if log == nil {
		log = logger.Nop()
	}
	return &Registry{
		cfg:    cfg,
		now:    time.Now,
		log:    log.Named("tally_sync"),
		agents: make(map[string]Agent),
	}
}

// WithClock reemplaza el reloj (tests).
func (r *Registry) WithClock(now func() time.Time) *Registry {
	r.now = now
	return r
}

// WithMetrics publica el estado en Prometheus.
func (r *Registry) WithMetrics(m *Metrics) *Registry {
	r.metrics = m
	return r
}

// OnChange registra fn para cada cambio de conectado/desconectado.
// fn se invoca fuera del lock.
func (r *Registry) OnChange(fn func(Status)) {
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

// Heartbeat registra un latido. real viene del token del agente, nunca del cuerpo.
func (r *Registry) Heartbeat(id string, real bool, info map[string]string) Agent {
	now := r.now()
	a := Agent{ID: id, Real: real, LastSeen: now, Info: copyInfo(info)}

	r.mu.Lock()
	_, known := r.agents[id]
	r.agents[id] = a
	st, changed := r.refreshLocked(now)
	listeners := r.listenersLocked(changed)
	r.mu.Unlock()

	if !known {
		r.log.Info().Str("agent_id", id).Bool("real", real).Msg("agente registrado")
	}
	r.metrics.heartbeat(real)
	r.publish(st, listeners)
	return a
}

// Status estado calculado en el instante actual.
func (r *Registry) Status() Status {
	now := r.now()
	r.mu.Lock()
	st, changed := r.refreshLocked(now)
	listeners := r.listenersLocked(changed)
	r.mu.Unlock()
	r.publish(st, listeners)
	return st
}

// Connected atajo de Status().Connected.
func (r *Registry) Connected() bool {
	return r.Status().Connected
}

// Clients IDs rastreados (incluye agentes stale aún no barridos), ordenados.
func (r *Registry) Clients() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.agents))
	for id := range r.agents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Sweep elimina los agentes sin latido dentro de EvictTimeout. Nunca modifica agentes vivos.
// Devuelve cuántos se eliminaron.
func (r *Registry) Sweep() int {
	now := r.now()
	r.mu.Lock()
	evicted := 0
	for id, a := range r.agents {
		if now.Sub(a.LastSeen) > r.cfg.EvictTimeout {
			delete(r.agents, id)
			evicted++
			r.log.Info().Str("agent_id", id).Time("last_seen", a.LastSeen).Msg("agente desalojado por inactividad")
		}
	}
	st, changed := r.refreshLocked(now)
	listeners := r.listenersLocked(changed)
	r.mu.Unlock()

	r.publish(st, listeners)
	return evicted
}

// Run barre cada SweepInterval hasta que ctx termine.
func (r *Registry) Run(ctx context.Context) {
	interval := r.cfg.SweepInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// refreshLocked calcula el estado y detecta el cambio de conectado. Requiere r.mu.
func (r *Registry) refreshLocked(now time.Time) (Status, bool) {
	st := Status{CheckedAt: now, Agents: make([]AgentState, 0, len(r.agents))}
	for _, a := range r.agents {
		stale := now.Sub(a.LastSeen) > r.cfg.StatusTimeout
		if a.Real && !stale {
			st.Connected = true
		}
		st.Agents = append(st.Agents, AgentState{Agent: Agent{ID: a.ID, Real: a.Real, LastSeen: a.LastSeen, Info: copyInfo(a.Info)}, Stale: stale})
	}
	sort.Slice(st.Agents, func(i, j int) bool { return st.Agents[i].ID < st.Agents[j].ID })
	changed := st.Connected != r.connected
	r.connected = st.Connected
	return st, changed
}

func (r *Registry) listenersLocked(changed bool) []func(Status) {
	if !changed {
		return nil
	}
	return append(([]func(Status))(nil), r.listeners...)
}

func (r *Registry) publish(st Status, listeners []func(Status)) {
	r.metrics.observe(st)
	if listeners == nil {
		return
	}
	if st.Connected {
		r.log.Info().Msg("software contable conectado")
	} else {
		r.log.Warn().Msg("software contable desconectado")
	}
	for _, fn := range listeners {
		fn(st)
	}
}

func copyInfo(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
