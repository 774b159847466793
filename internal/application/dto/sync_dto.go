package dto

import (
	"time"

	"github.com/jhoicas/bitumen-api/internal/domain/numeric"
)

// HeartbeatRequest latido del agente. El modo (real/mock) sale del token, no del cuerpo.
type HeartbeatRequest struct {
	Hostname string `json:"hostname" validate:"max=255"`
	Version  string `json:"version" validate:"max=50"`
	Company  string `json:"company" validate:"max=255"`
}

// LedgerRequest ledger de deudor enviado por el agente en formato JSON.
type LedgerRequest struct {
	Name           string           `json:"name" validate:"required,max=255"`
	Parent         string           `json:"parent"`
	ContactPerson  string           `json:"contact_person"`
	Phone          string           `json:"phone"`
	Email          string           `json:"email"`
	GSTIN          string           `json:"gstin"`
	Address        string           `json:"address"`
	City           string           `json:"city"`
	State          string           `json:"state"`
	ClosingBalance numeric.Optional `json:"closing_balance"`
}

// LedgersRequest lote de ledgers.
type LedgersRequest struct {
	Ledgers []LedgerRequest `json:"ledgers" validate:"required,dive"`
}

// RelayResponse resultado de importar un lote de ledgers.
type RelayResponse struct {
	Created int               `json:"created"`
	Updated int               `json:"updated"`
	Skipped int               `json:"skipped"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// AgentResponse un agente conocido por el registro.
type AgentResponse struct {
	ID       string            `json:"id"`
	Real     bool              `json:"real"`
	LastSeen time.Time         `json:"last_seen"`
	Stale    bool              `json:"stale"`
	Info     map[string]string `json:"info,omitempty"`
}

// SyncStatusResponse estado de la conexión con el software contable.
type SyncStatusResponse struct {
	Connected bool            `json:"connected"`
	CheckedAt time.Time       `json:"checked_at"`
	Agents    []AgentResponse `json:"agents"`
}
