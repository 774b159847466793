package tallysync

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/bitumen-api/internal/application/crm"
	"github.com/jhoicas/bitumen-api/internal/application/dto"
	"github.com/jhoicas/bitumen-api/internal/domain"
	"github.com/jhoicas/bitumen-api/internal/domain/access"
	"github.com/jhoicas/bitumen-api/internal/domain/entity"
	"github.com/jhoicas/bitumen-api/pkg/logger"
	"github.com/jhoicas/bitumen-api/pkg/validator"
)

// LedgerImporter destino de los ledgers; lo implementa *crm.ClientUseCase.
type LedgerImporter interface {
	ImportLedgers(ctx context.Context, records []entity.LedgerRecord) (crm.ImportResult, error)
}

// Bridge une el registro de agentes con el servicio de clientes.
type Bridge struct {
	registry *Registry
	importer LedgerImporter
	gate     crm.Gate
	log      *logger.Logger
}

// NewBridge construye el puente.
func NewBridge(registry *Registry, importer LedgerImporter, gate crm.Gate, log *logger.Logger) *Bridge {
	if log == nil {
		log = logger.Nop()
	}
	return &Bridge{registry: registry, importer: importer, gate: gate, log: log.Named("tally_bridge")}
}

// Registry registro subyacente (lo usa el hub de WebSocket).
func (b *Bridge) Registry() *Registry { return b.registry }

// Heartbeat registra el latido de un agente autenticado.
func (b *Bridge) Heartbeat(agentID string, real bool, in dto.HeartbeatRequest) (*dto.AgentResponse, error) {
	if strings.TrimSpace(agentID) == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := validator.Struct(in); err != nil {
		return nil, err
	}
	info := map[string]string{}
	for k, v := range map[string]string{"hostname": in.Hostname, "version": in.Version, "company": in.Company} {
		if v = strings.TrimSpace(v); v != "" {
			info[k] = v
		}
	}
	a := b.registry.Heartbeat(agentID, real, info)
	return &dto.AgentResponse{ID: a.ID, Real: a.Real, LastSeen: a.LastSeen, Info: a.Info}, nil
}

// Relay importa ledgers si el software contable figura como conectado.
func (b *Bridge) Relay(ctx context.Context, agentID string, records []entity.LedgerRecord) (*dto.RelayResponse, error) {
	if !b.registry.Connected() {
		return nil, domain.ErrAgentNotConnected
	}
	res, err := b.importer.ImportLedgers(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("importar ledgers: %w", err)
	}
	b.registry.metrics.relayed(res.Created, res.Updated, res.Skipped)
	log := b.log.With("agent_id", agentID)
	for name, cause := range res.Causes {
		log.Warn().Err(cause).Str("ledger", name).Msg("ledger rechazado")
	}
	log.Info().
		Int("created", res.Created).
		Int("updated", res.Updated).
		Int("skipped", res.Skipped).
		Msg("ledgers importados")
	out := &dto.RelayResponse{Created: res.Created, Updated: res.Updated, Skipped: res.Skipped}
	if len(res.Errors) > 0 {
		out.Errors = res.Errors
	}
	return out, nil
}

// Status estado de la sincronización para la interfaz (TALLY_SYNC/VIEW).
func (b *Bridge) Status(ctx context.Context, actor *entity.User) (*dto.SyncStatusResponse, error) {
	if err := b.gate.Require(ctx, actor, access.ModuleTallySync, access.ActionView); err != nil {
		return nil, err
	}
	out := ToStatusResponse(b.registry.Status())
	return &out, nil
}

// ToStatusResponse convierte la foto del registro a su DTO.
func ToStatusResponse(st Status) dto.SyncStatusResponse {
	agents := make([]dto.AgentResponse, 0, len(st.Agents))
	for _, a := range st.Agents {
		agents = append(agents, dto.AgentResponse{ID: a.ID, Real: a.Real, LastSeen: a.LastSeen, Stale: a.Stale, Info: a.Info})
	}
	return dto.SyncStatusResponse{Connected: st.Connected, CheckedAt: st.CheckedAt, Agents: agents}
}

// LedgersFromDTO valida el lote JSON y lo convierte a registros de dominio.
func LedgersFromDTO(in dto.LedgersRequest) ([]entity.LedgerRecord, error) {
	if err := validator.Struct(in); err != nil {
		return nil, err
	}
	verr := &domain.ValidationError{}
	out := make([]entity.LedgerRecord, 0, len(in.Ledgers))
	for i, l := range in.Ledgers {
		if l.ClosingBalance.IsInvalid() {
			verr.Add(fmt.Sprintf("ledgers[%d].closing_balance", i), "debe ser numérico")
			continue
		}
		out = append(out, entity.LedgerRecord{
			Name:           l.Name,
			Parent:         l.Parent,
			ContactPerson:  l.ContactPerson,
			Phone:          l.Phone,
			Email:          l.Email,
			GSTIN:          l.GSTIN,
			Address:        l.Address,
			City:           l.City,
			State:          l.State,
			ClosingBalance: l.ClosingBalance.Ptr(),
		})
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return out, nil
}
