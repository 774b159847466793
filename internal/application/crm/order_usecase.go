package crm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/bitumen-api/internal/application/dto"
	"github.com/jhoicas/bitumen-api/internal/domain"
	"github.com/jhoicas/bitumen-api/internal/domain/access"
	"github.com/jhoicas/bitumen-api/internal/domain/entity"
	"github.com/jhoicas/bitumen-api/internal/domain/repository"
)

// OrderUseCase pedidos y su flujo de estados (módulo ORDER_WORKFLOW).
type OrderUseCase struct {
	d    Deps
	refs refs
}

// NewOrderUseCase construye el caso de uso.
func NewOrderUseCase(d Deps) *OrderUseCase {
	return &OrderUseCase{d: d, refs: refs{d}}
}

func (uc *OrderUseCase) gate(ctx context.Context, actor *entity.User, action access.Action) error {
	return uc.d.Gate.Require(ctx, actor, access.ModuleOrderWorkflow, action)
}

// List lista pedidos.
func (uc *OrderUseCase) List(ctx context.Context, actor *entity.User, f repository.OrderFilter) (*dto.ListResponse[dto.OrderResponse], error) {
	if err := uc.gate(ctx, actor, access.ActionView); err != nil {
		return nil, err
	}
	rows, err := uc.d.Orders.List(ctx, f)
	if err != nil {
		return nil, err
	}
	limit, offset := listPage(f.Page)
	return &dto.ListResponse[dto.OrderResponse]{Items: mapList(rows, toOrderResponse), Limit: limit, Offset: offset}, nil
}

// Get obtiene un pedido con sus líneas.
func (uc *OrderUseCase) Get(ctx context.Context, actor *entity.User, id string) (*dto.OrderResponse, error) {
	if err := uc.gate(ctx, actor, access.ActionView); err != nil {
		return nil, err
	}
	o, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	out := toOrderResponse(o)
	return &out, nil
}

func (uc *OrderUseCase) load(ctx context.Context, id string) (*entity.Order, error) {
	o, err := uc.d.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

// Create registra un pedido en estado PENDING y calcula el total desde las líneas.
func (uc *OrderUseCase) Create(ctx context.Context, actor *entity.User, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	if err := uc.gate(ctx, actor, access.ActionAdd); err != nil {
		return nil, err
	}
	verr := validate(in)
	items := orderItems(verr, in.Items)
	orderDate := date(verr, "order_date", in.OrderDate, false)
	delivery := date(verr, "delivery_date", in.DeliveryDate, false)
	clientID := optID(in.ClientID)
	if _, err := uc.refs.client(ctx, verr, "client_id", clientID); err != nil {
		return nil, err
	}
	salesPerson := optID(in.SalesPersonID)
	if _, err := uc.refs.user(ctx, verr, "sales_person_id", salesPerson); err != nil {
		return nil, err
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	now := uc.d.now()
	if orderDate == nil {
		orderDate = &now
	}
	if salesPerson == nil {
		salesPerson = &actor.ID
	}
	o := &entity.Order{
		ID:            uuid.New().String(),
		OrderNumber:   orDefault(strings.TrimSpace(in.OrderNumber), newOrderNumber(*orderDate)),
		ClientID:      deref(clientID),
		SalesPersonID: salesPerson,
		OrderDate:     *orderDate,
		DeliveryDate:  delivery,
		Status:        entity.OrderPending,
		Notes:         strings.TrimSpace(in.Notes),
		Items:         items,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	o.RecalculateTotal()
	if err := uc.d.Orders.Create(ctx, o); err != nil {
		return nil, err
	}
	out := toOrderResponse(o)
	return &out, nil
}

// Update actualización parcial. Si llegan items se reemplazan todas las líneas y se recalcula el total.
func (uc *OrderUseCase) Update(ctx context.Context, actor *entity.User, id string, in dto.UpdateOrderRequest) (*dto.OrderResponse, error) {
	if err := uc.gate(ctx, actor, access.ActionEdit); err != nil {
		return nil, err
	}
	o, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	verr := validate(in)
	if in.ClientID != nil {
		o.ClientID = strings.TrimSpace(*in.ClientID)
		if _, err := uc.refs.client(ctx, verr, "client_id", &o.ClientID); err != nil {
			return nil, err
		}
	}
	if in.SalesPersonID != nil {
		o.SalesPersonID = patchID(in.SalesPersonID, o.SalesPersonID)
		if _, err := uc.refs.user(ctx, verr, "sales_person_id", o.SalesPersonID); err != nil {
			return nil, err
		}
	}
	if d := patchDate(verr, "order_date", in.OrderDate, &o.OrderDate, false); d != nil {
		o.OrderDate = *d
	}
	o.DeliveryDate = patchDate(verr, "delivery_date", in.DeliveryDate, o.DeliveryDate, true)
	o.Notes = patchString(in.Notes, o.Notes)
	if in.Status != nil && !entity.CanTransition(o.Status, entity.OrderStatus(*in.Status)) {
		verr.Add("status", fmt.Sprintf("transición no permitida: %s → %s", o.Status, *in.Status))
	}
	if in.Items != nil {
		o.Items = orderItems(verr, in.Items)
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	if in.Status != nil {
		o.Status = entity.OrderStatus(*in.Status)
	}
	o.RecalculateTotal()
	o.UpdatedAt = uc.d.now()
	if err := uc.d.Orders.Update(ctx, o); err != nil {
		return nil, err
	}
	out := toOrderResponse(o)
	return &out, nil
}

// UpdateStatus avanza el pedido en su flujo. Una transición fuera del flujo devuelve ErrConflict.
func (uc *OrderUseCase) UpdateStatus(ctx context.Context, actor *entity.User, id string, in dto.UpdateOrderStatusRequest) (*dto.OrderResponse, error) {
	if err := uc.gate(ctx, actor, access.ActionEdit); err != nil {
		return nil, err
	}
	if err := validate(in).OrNil(); err != nil {
		return nil, err
	}
	o, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	next := entity.OrderStatus(in.Status)
	if !entity.CanTransition(o.Status, next) {
		return nil, fmt.Errorf("%w: pedido %s no puede pasar de %s a %s", domain.ErrConflict, o.OrderNumber, o.Status, next)
	}
	if o.Status != next {
		o.Status = next
		o.UpdatedAt = uc.d.now()
		if err := uc.d.Orders.Update(ctx, o); err != nil {
			return nil, err
		}
	}
	out := toOrderResponse(o)
	return &out, nil
}

// Delete cancela el pedido. Un pedido despachado o entregado no se puede cancelar.
func (uc *OrderUseCase) Delete(ctx context.Context, actor *entity.User, id string) error {
	if err := uc.gate(ctx, actor, access.ActionDelete); err != nil {
		return err
	}
	o, err := uc.load(ctx, id)
	if err != nil {
		return err
	}
	if o.Status == entity.OrderCancelled {
		return nil
	}
	if !entity.CanTransition(o.Status, entity.OrderCancelled) {
		return fmt.Errorf("%w: pedido %s en estado %s", domain.ErrConflict, o.OrderNumber, o.Status)
	}
	o.Status = entity.OrderCancelled
	o.UpdatedAt = uc.d.now()
	return uc.d.Orders.Update(ctx, o)
}

// orderItems valida las líneas: quantity > 0, rate ≥ 0 (0 es un valor válido).
func orderItems(verr *domain.ValidationError, in []dto.OrderItemRequest) []entity.OrderItem {
	items := make([]entity.OrderItem, 0, len(in))
	for i, it := range in {
		prefix := fmt.Sprintf("items[%d].", i)
		qty := amount(verr, prefix+"quantity", it.Quantity, true)
		if qty != nil && qty.IsZero() {
			verr.Add(prefix+"quantity", "debe ser mayor que 0")
		}
		rate := amount(verr, prefix+"rate", it.Rate, true)
		if qty == nil || rate == nil {
			continue
		}
		items = append(items, entity.OrderItem{
			ID:          uuid.New().String(),
			ProductName: strings.TrimSpace(it.ProductName),
			Grade:       strings.TrimSpace(it.Grade),
			Quantity:    *qty,
			Unit:        strings.TrimSpace(it.Unit),
			Rate:        *rate,
		})
	}
	return items
}

// newOrderNumber genera ORD-AAAAMMDD-XXXXXX.
func newOrderNumber(day time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return "ORD-" + day.Format("20060102") + "-" + suffix
}
