package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/bitumen-api/internal/domain/numeric"
)

// ─── Clients ─────────────────────────────────────────────────────────────────

// CreateClientRequest alta de cliente. credit_limit y credit_days aceptan número o string numérico.
type CreateClientRequest struct {
	CompanyName     string           `json:"company_name" validate:"required,max=255"`
	ContactPerson   string           `json:"contact_person" validate:"max=255"`
	Phone           string           `json:"phone" validate:"max=32"`
	Email           string           `json:"email" validate:"omitempty,email"`
	GSTIN           string           `json:"gstin" validate:"omitempty,gstin"`
	Address         string           `json:"address"`
	City            string           `json:"city" validate:"max=100"`
	State           string           `json:"state" validate:"max=100"`
	Category        string           `json:"category" validate:"required,oneof=ALFA BETA GAMMA DELTA"`
	CreditLimit     numeric.Optional `json:"credit_limit"`
	CreditDays      numeric.Optional `json:"credit_days"`
	SalesPersonID   string           `json:"sales_person_id" validate:"omitempty,uuid"`
	TallyLedgerName string           `json:"tally_ledger_name" validate:"max=255"`
}

// UpdateClientRequest actualización parcial; nil/ausente = sin cambios, null = borrar (solo columnas opcionales).
type UpdateClientRequest struct {
	CompanyName     *string          `json:"company_name" validate:"omitempty,min=1,max=255"`
	ContactPerson   *string          `json:"contact_person" validate:"omitempty,max=255"`
	Phone           *string          `json:"phone" validate:"omitempty,max=32"`
	Email           *string          `json:"email" validate:"omitempty,email"`
	GSTIN           *string          `json:"gstin" validate:"omitempty,gstin"`
	Address         *string          `json:"address"`
	City            *string          `json:"city" validate:"omitempty,max=100"`
	State           *string          `json:"state" validate:"omitempty,max=100"`
	Category        *string          `json:"category" validate:"omitempty,oneof=ALFA BETA GAMMA DELTA"`
	CreditLimit     numeric.Optional `json:"credit_limit"`
	CreditDays      numeric.Optional `json:"credit_days"`
	SalesPersonID   *string          `json:"sales_person_id" validate:"omitempty,uuid"`
	TallyLedgerName *string          `json:"tally_ledger_name" validate:"omitempty,max=255"`
	Status          *string          `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
}

// ClientResponse salida de un cliente.
type ClientResponse struct {
	ID                string           `json:"id"`
	CompanyName       string           `json:"company_name"`
	ContactPerson     string           `json:"contact_person"`
	Phone             string           `json:"phone"`
	Email             string           `json:"email"`
	GSTIN             string           `json:"gstin"`
	Address           string           `json:"address"`
	City              string           `json:"city"`
	State             string           `json:"state"`
	Category          string           `json:"category"`
	CreditLimit       *decimal.Decimal `json:"credit_limit"`
	CreditDays        *int             `json:"credit_days"`
	OutstandingAmount decimal.Decimal  `json:"outstanding_amount"`
	SalesPersonID     *string          `json:"sales_person_id"`
	TallyLedgerName   *string          `json:"tally_ledger_name"`
	Status            string           `json:"status"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// ─── Orders ──────────────────────────────────────────────────────────────────

// OrderItemRequest línea de pedido. rate puede ser 0.
type OrderItemRequest struct {
	ProductName string           `json:"product_name" validate:"required,max=255"`
	Grade       string           `json:"grade" validate:"max=32"`
	Quantity    numeric.Optional `json:"quantity"`
	Unit        string           `json:"unit" validate:"required,max=16"`
	Rate        numeric.Optional `json:"rate"`
}

// CreateOrderRequest alta de pedido. Sin order_number se genera uno.
type CreateOrderRequest struct {
	OrderNumber   string             `json:"order_number" validate:"max=32"`
	ClientID      string             `json:"client_id" validate:"required,uuid"`
	SalesPersonID string             `json:"sales_person_id" validate:"omitempty,uuid"`
	OrderDate     Date               `json:"order_date"`
	DeliveryDate  Date               `json:"delivery_date"`
	Notes         string             `json:"notes"`
	Items         []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateOrderRequest actualización parcial; items presente reemplaza todas las líneas.
type UpdateOrderRequest struct {
	ClientID      *string            `json:"client_id" validate:"omitempty,uuid"`
	SalesPersonID *string            `json:"sales_person_id" validate:"omitempty,uuid"`
	OrderDate     Date               `json:"order_date"`
	DeliveryDate  Date               `json:"delivery_date"`
	Notes         *string            `json:"notes"`
	Status        *string            `json:"status" validate:"omitempty,oneof=PENDING CONFIRMED DISPATCHED DELIVERED CANCELLED"`
	Items         []OrderItemRequest `json:"items" validate:"omitempty,min=1,dive"`
}

// UpdateOrderStatusRequest cambio de estado del flujo de pedidos.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING CONFIRMED DISPATCHED DELIVERED CANCELLED"`
}

// OrderItemResponse línea de pedido con su importe.
type OrderItemResponse struct {
	ID          string          `json:"id"`
	ProductName string          `json:"product_name"`
	Grade       string          `json:"grade"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

// OrderResponse salida de un pedido.
type OrderResponse struct {
	ID            string              `json:"id"`
	OrderNumber   string              `json:"order_number"`
	ClientID      string              `json:"client_id"`
	SalesPersonID *string             `json:"sales_person_id"`
	OrderDate     time.Time           `json:"order_date"`
	DeliveryDate  *time.Time          `json:"delivery_date"`
	Status        string              `json:"status"`
	Notes         string              `json:"notes"`
	TotalAmount   decimal.Decimal     `json:"total_amount"`
	Items         []OrderItemResponse `json:"items"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// ─── Tasks ───────────────────────────────────────────────────────────────────

// CreateTaskRequest alta de tarea. Prioridad por defecto MEDIUM, estado PENDING.
type CreateTaskRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description"`
	AssigneeID  string `json:"assignee_id" validate:"required,uuid"`
	ClientID    string `json:"client_id" validate:"omitempty,uuid"`
	DueDate     Date   `json:"due_date"`
	Priority    string `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	Status      string `json:"status" validate:"omitempty,oneof=PENDING IN_PROGRESS COMPLETED"`
}

// UpdateTaskRequest actualización parcial de una tarea.
type UpdateTaskRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	AssigneeID  *string `json:"assignee_id" validate:"omitempty,uuid"`
	ClientID    *string `json:"client_id" validate:"omitempty,uuid"`
	DueDate     Date    `json:"due_date"`
	Priority    *string `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	Status      *string `json:"status" validate:"omitempty,oneof=PENDING IN_PROGRESS COMPLETED"`
}

// TaskResponse salida de una tarea.
type TaskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	AssigneeID  string     `json:"assignee_id"`
	ClientID    *string    `json:"client_id"`
	DueDate     *time.Time `json:"due_date"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	CreatedBy   string     `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ─── Payments ────────────────────────────────────────────────────────────────

// CreatePaymentRequest alta de pago. Estado por defecto PENDING.
type CreatePaymentRequest struct {
	ClientID    string           `json:"client_id" validate:"required,uuid"`
	OrderID     string           `json:"order_id" validate:"omitempty,uuid"`
	Amount      numeric.Optional `json:"amount"`
	PaymentDate Date             `json:"payment_date"`
	DueDate     Date             `json:"due_date"`
	Mode        string           `json:"mode" validate:"required,oneof=CASH CHEQUE NEFT RTGS UPI"`
	Reference   string           `json:"reference" validate:"max=100"`
	Status      string           `json:"status" validate:"omitempty,oneof=PENDING RECEIVED OVERDUE BOUNCED CANCELLED"`
	Notes       string           `json:"notes"`
}

// UpdatePaymentRequest actualización parcial de un pago.
type UpdatePaymentRequest struct {
	OrderID     *string          `json:"order_id" validate:"omitempty,uuid"`
	Amount      numeric.Optional `json:"amount"`
	PaymentDate Date             `json:"payment_date"`
	DueDate     Date             `json:"due_date"`
	Mode        *string          `json:"mode" validate:"omitempty,oneof=CASH CHEQUE NEFT RTGS UPI"`
	Reference   *string          `json:"reference" validate:"omitempty,max=100"`
	Status      *string          `json:"status" validate:"omitempty,oneof=PENDING RECEIVED OVERDUE BOUNCED CANCELLED"`
	Notes       *string          `json:"notes"`
}

// PaymentResponse salida de un pago.
type PaymentResponse struct {
	ID          string          `json:"id"`
	ClientID    string          `json:"client_id"`
	OrderID     *string         `json:"order_id"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate time.Time       `json:"payment_date"`
	DueDate     *time.Time      `json:"due_date"`
	Mode        string          `json:"mode"`
	Reference   string          `json:"reference"`
	Status      string          `json:"status"`
	Notes       string          `json:"notes"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ─── Follow-ups ──────────────────────────────────────────────────────────────

// CreateFollowUpRequest alta de seguimiento. Sin user_id se asigna al usuario actual.
type CreateFollowUpRequest struct {
	ClientID         string `json:"client_id" validate:"required,uuid"`
	UserID           string `json:"user_id" validate:"omitempty,uuid"`
	FollowUpDate     Date   `json:"follow_up_date"`
	Type             string `json:"type" validate:"required,oneof=CALL VISIT EMAIL MEETING"`
	Notes            string `json:"notes"`
	Outcome          string `json:"outcome"`
	NextFollowUpDate Date   `json:"next_follow_up_date"`
	Status           string `json:"status" validate:"omitempty,oneof=SCHEDULED COMPLETED CANCELLED"`
}

// UpdateFollowUpRequest actualización parcial de un seguimiento.
type UpdateFollowUpRequest struct {
	UserID           *string `json:"user_id" validate:"omitempty,uuid"`
	FollowUpDate     Date    `json:"follow_up_date"`
	Type             *string `json:"type" validate:"omitempty,oneof=CALL VISIT EMAIL MEETING"`
	Notes            *string `json:"notes"`
	Outcome          *string `json:"outcome"`
	NextFollowUpDate Date    `json:"next_follow_up_date"`
	Status           *string `json:"status" validate:"omitempty,oneof=SCHEDULED COMPLETED CANCELLED"`
}

// FollowUpResponse salida de un seguimiento.
type FollowUpResponse struct {
	ID               string     `json:"id"`
	ClientID         string     `json:"client_id"`
	UserID           string     `json:"user_id"`
	FollowUpDate     time.Time  `json:"follow_up_date"`
	Type             string     `json:"type"`
	Notes            string     `json:"notes"`
	Outcome          string     `json:"outcome"`
	NextFollowUpDate *time.Time `json:"next_follow_up_date"`
	Status           string     `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// ─── Tour advances ───────────────────────────────────────────────────────────

// CreateTourAdvanceRequest solicitud de anticipo. Sin employee_id se asigna al usuario actual.
type CreateTourAdvanceRequest struct {
	EmployeeID      string           `json:"employee_id" validate:"omitempty,uuid"`
	Purpose         string           `json:"purpose" validate:"required"`
	Destination     string           `json:"destination" validate:"required,max=255"`
	StartDate       Date             `json:"start_date"`
	EndDate         Date             `json:"end_date"`
	AmountRequested numeric.Optional `json:"amount_requested"`
	AmountApproved  numeric.Optional `json:"amount_approved"`
	AmountSpent     numeric.Optional `json:"amount_spent"`
	Status          string           `json:"status" validate:"omitempty,oneof=PENDING APPROVED REJECTED SETTLED CANCELLED"`
}

// UpdateTourAdvanceRequest actualización parcial de un anticipo.
type UpdateTourAdvanceRequest struct {
	Purpose         *string          `json:"purpose" validate:"omitempty,min=1"`
	Destination     *string          `json:"destination" validate:"omitempty,min=1,max=255"`
	StartDate       Date             `json:"start_date"`
	EndDate         Date             `json:"end_date"`
	AmountRequested numeric.Optional `json:"amount_requested"`
	AmountApproved  numeric.Optional `json:"amount_approved"`
	AmountSpent     numeric.Optional `json:"amount_spent"`
	Status          *string          `json:"status" validate:"omitempty,oneof=PENDING APPROVED REJECTED SETTLED CANCELLED"`
}

// TourAdvanceResponse salida de un anticipo.
type TourAdvanceResponse struct {
	ID              string           `json:"id"`
	EmployeeID      string           `json:"employee_id"`
	Purpose         string           `json:"purpose"`
	Destination     string           `json:"destination"`
	StartDate       time.Time        `json:"start_date"`
	EndDate         time.Time        `json:"end_date"`
	AmountRequested decimal.Decimal  `json:"amount_requested"`
	AmountApproved  *decimal.Decimal `json:"amount_approved"`
	AmountSpent     *decimal.Decimal `json:"amount_spent"`
	Status          string           `json:"status"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// ─── E-way bills ─────────────────────────────────────────────────────────────

// CreateEWayBillRequest alta de e-way bill (número de 12 dígitos).
type CreateEWayBillRequest struct {
	EWayBillNumber string           `json:"eway_bill_number" validate:"required,ewaybill"`
	ClientID       string           `json:"client_id" validate:"required,uuid"`
	OrderID        string           `json:"order_id" validate:"omitempty,uuid"`
	VehicleNumber  string           `json:"vehicle_number" validate:"required,max=20"`
	FromPlace      string           `json:"from_place" validate:"required,max=255"`
	ToPlace        string           `json:"to_place" validate:"required,max=255"`
	DistanceKM     numeric.Optional `json:"distance_km"`
	GeneratedDate  Date             `json:"generated_date"`
	ValidUntil     Date             `json:"valid_until"`
	InvoiceValue   numeric.Optional `json:"invoice_value"`
	Status         string           `json:"status" validate:"omitempty,oneof=ACTIVE EXPIRED CANCELLED"`
}

// UpdateEWayBillRequest actualización parcial de una e-way bill.
type UpdateEWayBillRequest struct {
	OrderID       *string          `json:"order_id" validate:"omitempty,uuid"`
	VehicleNumber *string          `json:"vehicle_number" validate:"omitempty,min=1,max=20"`
	FromPlace     *string          `json:"from_place" validate:"omitempty,min=1,max=255"`
	ToPlace       *string          `json:"to_place" validate:"omitempty,min=1,max=255"`
	DistanceKM    numeric.Optional `json:"distance_km"`
	ValidUntil    Date             `json:"valid_until"`
	InvoiceValue  numeric.Optional `json:"invoice_value"`
	Status        *string          `json:"status" validate:"omitempty,oneof=ACTIVE EXPIRED CANCELLED"`
}

// EWayBillResponse salida de una e-way bill; status refleja el vencimiento.
type EWayBillResponse struct {
	ID             string          `json:"id"`
	EWayBillNumber string          `json:"eway_bill_number"`
	ClientID       string          `json:"client_id"`
	OrderID        *string         `json:"order_id"`
	VehicleNumber  string          `json:"vehicle_number"`
	FromPlace      string          `json:"from_place"`
	ToPlace        string          `json:"to_place"`
	DistanceKM     *int            `json:"distance_km"`
	GeneratedDate  time.Time       `json:"generated_date"`
	ValidUntil     time.Time       `json:"valid_until"`
	InvoiceValue   decimal.Decimal `json:"invoice_value"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
