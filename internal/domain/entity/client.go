package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClientCategory clasificación comercial del cliente.
type ClientCategory string

const (
	CategoryAlfa  ClientCategory = "ALFA"
	CategoryBeta  ClientCategory = "BETA"
	CategoryGamma ClientCategory = "GAMMA"
	CategoryDelta ClientCategory = "DELTA"
)

// ClientCategories lista cerrada de categorías.
var ClientCategories = []ClientCategory{CategoryAlfa, CategoryBeta, CategoryGamma, CategoryDelta}

// ClientStatus estado de Client.
type ClientStatus string

const (
	ClientActive   ClientStatus = "ACTIVE"
	ClientInactive ClientStatus = "INACTIVE"
)

// Client cliente de la empresa (comprador de bitumen).
// Borrar un cliente lo deja INACTIVE.
type Client struct {
	ID                string
	CompanyName       string
	ContactPerson     string
	Phone             string
	Email             string
	GSTIN             string // número de registro GST (India)
	Address           string
	City              string
	State             string
	Category          ClientCategory
	CreditLimit       *decimal.Decimal // nil = sin límite definido
	CreditDays        *int
	OutstandingAmount decimal.Decimal // saldo pendiente (pagos PENDING + OVERDUE)
	SalesPersonID     *string
	TallyLedgerName   *string // nombre del ledger en el software contable, si se sincroniza
	Status            ClientStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
