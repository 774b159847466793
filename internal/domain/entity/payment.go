package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Modos de pago.
const (
	PaymentCash   = "CASH"
	PaymentCheque = "CHEQUE"
	PaymentNEFT   = "NEFT"
	PaymentRTGS   = "RTGS"
	PaymentUPI    = "UPI"
)

// PaymentStatus estado de Payment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentReceived  PaymentStatus = "RECEIVED"
	PaymentOverdue   PaymentStatus = "OVERDUE"
	PaymentBounced   PaymentStatus = "BOUNCED"
	PaymentCancelled PaymentStatus = "CANCELLED"
)

// Payment pago a crédito de un cliente. PENDING y OVERDUE suman al saldo del cliente.
type Payment struct {
	ID          string
	ClientID    string
	OrderID     *string
	Amount      decimal.Decimal
	PaymentDate time.Time
	DueDate     *time.Time
	Mode        string
	Reference   string
	Status      PaymentStatus
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Outstanding informa si el pago cuenta como saldo pendiente.
func (p *Payment) Outstanding() bool {
	return p.Status == PaymentPending || p.Status == PaymentOverdue
}
