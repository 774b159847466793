package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus estado del flujo de pedidos.
type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderConfirmed  OrderStatus = "CONFIRMED"
	OrderDispatched OrderStatus = "DISPATCHED"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCancelled  OrderStatus = "CANCELLED"
)

// OrderStatuses lista cerrada, en orden del flujo.
var OrderStatuses = []OrderStatus{OrderPending, OrderConfirmed, OrderDispatched, OrderDelivered, OrderCancelled}

// orderTransitions transiciones permitidas del flujo de pedidos.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderConfirmed, OrderCancelled},
	OrderConfirmed:  {OrderDispatched, OrderCancelled},
	OrderDispatched: {OrderDelivered},
}

// CanTransition informa si un pedido puede pasar de from a to. Repetir el mismo estado es válido.
func CanTransition(from, to OrderStatus) bool {
	if from == to {
		return true
	}
	for _, s := range orderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Order pedido de un cliente. Cancelar equivale a borrar.
type Order struct {
	ID            string
	OrderNumber   string
	ClientID      string
	SalesPersonID *string
	OrderDate     time.Time
	DeliveryDate  *time.Time
	Status        OrderStatus
	Notes         string
	TotalAmount   decimal.Decimal
	Items         []OrderItem
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OrderItem línea de pedido. Rate puede ser 0 (muestras, reposiciones).
type OrderItem struct {
	ID          string
	OrderID     string
	ProductName string
	Grade       string // VG-10, VG-30, VG-40, emulsión...
	Quantity    decimal.Decimal
	Unit        string // MT, KL, drum
	Rate        decimal.Decimal
}

// Amount importe de la línea.
func (i OrderItem) Amount() decimal.Decimal {
	return i.Quantity.Mul(i.Rate)
}

// RecalculateTotal suma los importes de las líneas.
func (o *Order) RecalculateTotal() {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Amount())
	}
	o.TotalAmount = total.Round(2)
}
