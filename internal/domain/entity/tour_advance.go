package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TourAdvanceStatus estado de TourAdvance.
type TourAdvanceStatus string

const (
	TourPending   TourAdvanceStatus = "PENDING"
	TourApproved  TourAdvanceStatus = "APPROVED"
	TourRejected  TourAdvanceStatus = "REJECTED"
	TourSettled   TourAdvanceStatus = "SETTLED"
	TourCancelled TourAdvanceStatus = "CANCELLED"
)

// TourAdvance anticipo de viaje solicitado por un empleado.
type TourAdvance struct {
	ID              string
	EmployeeID      string
	Purpose         string
	Destination     string
	StartDate       time.Time
	EndDate         time.Time
	AmountRequested decimal.Decimal
	AmountApproved  *decimal.Decimal
	AmountSpent     *decimal.Decimal
	Status          TourAdvanceStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
