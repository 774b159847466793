// Package crm contiene los casos de uso CRUD de la empresa: clientes, pedidos, tareas,
// pagos, seguimientos, anticipos de viaje, e-way bills y usuarios.
//
// Orden de cada operación: permiso → validación → persistencia. Una denegación
// nunca llega a validar ni a tocar el almacenamiento.
package crm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/bitumen-api/internal/application/dto"
	"github.com/jhoicas/bitumen-api/internal/domain"
	"github.com/jhoicas/bitumen-api/internal/domain/access"
	"github.com/jhoicas/bitumen-api/internal/domain/entity"
	"github.com/jhoicas/bitumen-api/internal/domain/numeric"
	"github.com/jhoicas/bitumen-api/internal/domain/repository"
	"github.com/jhoicas/bitumen-api/pkg/validator"
)

// Gate autoriza (usuario, módulo, acción). Lo implementa *access.Resolver.
type Gate interface {
	Require(ctx context.Context, user *entity.User, module access.Module, action access.Action) error
}

// PaymentTxRunner ejecuta la escritura de pagos y el recálculo del saldo del cliente juntos.
type PaymentTxRunner interface {
	RunPayment(ctx context.Context, fn func(payments repository.PaymentRepository, clients repository.ClientRepository) error) error
}

// Deps dependencias compartidas por los casos de uso.
type Deps struct {
	Gate         Gate
	Users        repository.UserRepository
	Sessions     repository.SessionRepository
	Permissions  repository.PermissionRepository
	Clients      repository.ClientRepository
	Orders       repository.OrderRepository
	Tasks        repository.TaskRepository
	Payments     repository.PaymentRepository
	FollowUps    repository.FollowUpRepository
	TourAdvances repository.TourAdvanceRepository
	EWayBills    repository.EWayBillRepository
	PaymentTx    PaymentTxRunner
	BcryptCost   int
	Now          func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// Services agrupa todos los casos de uso CRUD.
type Services struct {
	Clients      *ClientUseCase
	Orders       *OrderUseCase
	Tasks        *TaskUseCase
	Payments     *PaymentUseCase
	FollowUps    *FollowUpUseCase
	TourAdvances *TourAdvanceUseCase
	EWayBills    *EWayBillUseCase
	Users        *UserUseCase
}

// NewServices construye todos los casos de uso sobre las mismas dependencias.
func NewServices(d Deps) *Services {
	return &Services{
		Clients:      NewClientUseCase(d),
		Orders:       NewOrderUseCase(d),
		Tasks:        NewTaskUseCase(d),
		Payments:     NewPaymentUseCase(d),
		FollowUps:    NewFollowUpUseCase(d),
		TourAdvances: NewTourAdvanceUseCase(d),
		EWayBills:    NewEWayBillUseCase(d),
		Users:        NewUserUseCase(d),
	}
}

// ─── Validación ──────────────────────────────────────────────────────────────

// validate aplica los tags del DTO y devuelve el acumulador de errores por campo.
func validate(in any) *domain.ValidationError {
	if err := validator.Struct(in); err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return verr
		}
		return domain.NewValidationError("body", err.Error())
	}
	return &domain.ValidationError{}
}

func requireText(verr *domain.ValidationError, field string, p *string) {
	if p != nil && strings.TrimSpace(*p) == "" {
		verr.Add(field, "no puede estar vacío")
	}
}

// amount lee un importe no negativo. Absent y Null equivalen a "no enviado".
func amount(verr *domain.ValidationError, field string, o numeric.Optional, required bool) *decimal.Decimal {
	switch {
	case o.IsInvalid():
		verr.Add(field, "debe ser numérico")
		return nil
	case !o.IsPresent():
		if required {
			verr.Add(field, "es requerido")
		}
		return nil
	}
	v, _ := o.Value()
	if v.IsNegative() {
		verr.Add(field, "no puede ser negativo")
		return nil
	}
	return &v
}

// patchAmount aplica un importe parcial: Absent conserva, Null borra (si la columna lo admite).
func patchAmount(verr *domain.ValidationError, field string, o numeric.Optional, cur *decimal.Decimal, nullable bool) *decimal.Decimal {
	switch {
	case o.IsAbsent():
		return cur
	case o.IsNull():
		if !nullable {
			verr.Add(field, "es requerido")
			return cur
		}
		return nil
	}
	if v := amount(verr, field, o, true); v != nil {
		return v
	}
	return cur
}

// positive exige un importe estrictamente mayor que 0.
func positive(verr *domain.ValidationError, field string, v *decimal.Decimal) *decimal.Decimal {
	if v == nil {
		return nil
	}
	if !v.IsPositive() {
		verr.Add(field, "debe ser mayor que 0")
		return nil
	}
	return v
}

// whole lee un entero no negativo.
func whole(verr *domain.ValidationError, field string, o numeric.Optional, required bool) *int {
	switch {
	case o.IsInvalid():
		verr.Add(field, "debe ser numérico")
		return nil
	case !o.IsPresent():
		if required {
			verr.Add(field, "es requerido")
		}
		return nil
	}
	n, ok := o.Int()
	if !ok {
		verr.Add(field, "debe ser entero")
		return nil
	}
	if n < 0 {
		verr.Add(field, "no puede ser negativo")
		return nil
	}
	v := int(n)
	return &v
}

func patchWhole(verr *domain.ValidationError, field string, o numeric.Optional, cur *int) *int {
	switch {
	case o.IsAbsent():
		return cur
	case o.IsNull():
		return nil
	}
	if v := whole(verr, field, o, true); v != nil {
		return v
	}
	return cur
}

// date lee una fecha; Absent y Null equivalen a "no enviada".
func date(verr *domain.ValidationError, field string, d dto.Date, required bool) *time.Time {
	if d.IsInvalid() {
		verr.Add(field, "fecha inválida (YYYY-MM-DD o RFC3339)")
		return nil
	}
	t := d.Ptr()
	if t == nil && required {
		verr.Add(field, "es requerido")
	}
	return t
}

func patchDate(verr *domain.ValidationError, field string, d dto.Date, cur *time.Time, nullable bool) *time.Time {
	switch {
	case d.IsAbsent():
		return cur
	case d.IsInvalid():
		verr.Add(field, "fecha inválida (YYYY-MM-DD o RFC3339)")
		return cur
	case d.IsNull():
		if !nullable {
			verr.Add(field, "es requerido")
			return cur
		}
		return nil
	}
	return d.Ptr()
}

// optID convierte "" en nil.
func optID(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}

// patchID nil conserva, "" borra, otro valor reemplaza.
func patchID(p *string, cur *string) *string {
	if p == nil {
		return cur
	}
	return optID(*p)
}

func patchString[S ~string](p *string, cur S) S {
	if p == nil {
		return cur
	}
	return S(strings.TrimSpace(*p))
}

func orDefault[S ~string](s string, def S) S {
	if s == "" {
		return def
	}
	return S(s)
}

// ─── Referencias ─────────────────────────────────────────────────────────────

// refs comprueba que las claves foráneas existan y reporta el campo concreto si no.
type refs struct{ d Deps }

func (r refs) client(ctx context.Context, verr *domain.ValidationError, field string, id *string) (*entity.Client, error) {
	if id == nil {
		return nil, nil
	}
	c, err := r.d.Clients.GetByID(ctx, *id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		verr.Add(field, "cliente no existe")
	}
	return c, nil
}

func (r refs) user(ctx context.Context, verr *domain.ValidationError, field string, id *string) (*entity.User, error) {
	if id == nil {
		return nil, nil
	}
	u, err := r.d.Users.GetByID(ctx, *id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		verr.Add(field, "usuario no existe")
	}
	return u, nil
}

func (r refs) order(ctx context.Context, verr *domain.ValidationError, field string, id *string) (*entity.Order, error) {
	if id == nil {
		return nil, nil
	}
	o, err := r.d.Orders.GetByID(ctx, *id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		verr.Add(field, "pedido no existe")
	}
	return o, nil
}

func ptr[T any](v T) *T { return &v }

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func decOrZero(p *decimal.Decimal) decimal.Decimal {
	if p == nil {
		return decimal.Zero
	}
	return *p
}

func listPage(p repository.Page) (int, int) {
	p = p.Normalize()
	return p.Limit, p.Offset
}
