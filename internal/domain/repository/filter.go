package repository

// Límites de paginación comunes a todos los listados.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Page paginación de un listado.
type Page struct {
	Limit  int
	Offset int
}

// Normalize aplica los valores por defecto y los topes.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// UserFilter filtros del listado de usuarios.
type UserFilter struct {
	Page
	Role   string
	Active *bool
	Search string
}

// ClientFilter filtros del listado de clientes.
type ClientFilter struct {
	Page
	Status        string
	Category      string
	SalesPersonID string
	Search        string // company_name, contact_person, gstin
}

// OrderFilter filtros del listado de pedidos.
type OrderFilter struct {
	Page
	Status        string
	ClientID      string
	SalesPersonID string
	Search        string // order_number
}

// TaskFilter filtros del listado de tareas.
type TaskFilter struct {
	Page
	Status     string
	AssigneeID string
	ClientID   string
	Search     string
}

// PaymentFilter filtros del listado de pagos.
type PaymentFilter struct {
	Page
	Status   string
	ClientID string
	Mode     string
}

// FollowUpFilter filtros del listado de seguimientos.
type FollowUpFilter struct {
	Page
	Status   string
	ClientID string
	UserID   string
}

// TourAdvanceFilter filtros del listado de anticipos de viaje.
type TourAdvanceFilter struct {
	Page
	Status     string
	EmployeeID string
}

// EWayBillFilter filtros del listado de e-way bills.
type EWayBillFilter struct {
	Page
	Status   string
	ClientID string
	Search   string // número de guía o vehículo
}
