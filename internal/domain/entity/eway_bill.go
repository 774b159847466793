package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// EWayBillStatus estado de EWayBill.
type EWayBillStatus string

const (
	EWayBillActive    EWayBillStatus = "ACTIVE"
	EWayBillExpired   EWayBillStatus = "EXPIRED"
	EWayBillCancelled EWayBillStatus = "CANCELLED"
)

// EWayBill guía electrónica de transporte (e-way bill, 12 dígitos) asociada a un despacho.
type EWayBill struct {
	ID             string
	EWayBillNumber string
	ClientID       string
	OrderID        *string
	VehicleNumber  string
	FromPlace      string
	ToPlace        string
	DistanceKM     *int
	GeneratedDate  time.Time
	ValidUntil     time.Time
	InvoiceValue   decimal.Decimal
	Status         EWayBillStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// EffectiveStatus devuelve EXPIRED si la guía activa ya venció en now.
func (e *EWayBill) EffectiveStatus(now time.Time) EWayBillStatus {
	if e.Status == EWayBillActive && now.After(e.ValidUntil) {
		return EWayBillExpired
	}
	return e.Status
}
