package crm

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/bitumen-api/internal/application/dto"
	"github.com/jhoicas/bitumen-api/internal/domain"
	"github.com/jhoicas/bitumen-api/internal/domain/access"
	"github.com/jhoicas/bitumen-api/internal/domain/entity"
	"github.com/jhoicas/bitumen-api/internal/domain/repository"
)

// EWayBillUseCase e-way bills de despacho (módulo EWAY_BILLS).
// El estado devuelto es el efectivo: una guía ACTIVE vencida se informa como EXPIRED.
type EWayBillUseCase struct {
	d    Deps
	refs refs
}

func NewEWayBillUseCase(d Deps) *EWayBillUseCase {
	return &EWayBillUseCase{d: d, refs: refs{d}}
}

func (uc *EWayBillUseCase) gate(ctx context.Context, actor *entity.User, action access.Action) error {
	return uc.d.Gate.Require(ctx, actor, access.ModuleEWayBills, action)
}

func (uc *EWayBillUseCase) respond(e *entity.EWayBill) dto.EWayBillResponse {
	return toEWayBillResponse(e, uc.d.now())
}

func (uc *EWayBillUseCase) List(ctx context.Context, actor *entity.User, f repository.EWayBillFilter) (*dto.ListResponse[dto.EWayBillResponse], error) {
	if err := uc.gate(ctx, actor, access.ActionView); err != nil {
		return nil, err
	}
	rows, err := uc.d.EWayBills.List(ctx, f)
	if err != nil {
		return nil, err
	}
	limit, offset := listPage(f.Page)
	return &dto.ListResponse[dto.EWayBillResponse]{Items: mapList(rows, uc.respond), Limit: limit, Offset: offset}, nil
}

func (uc *EWayBillUseCase) Get(ctx context.Context, actor *entity.User, id string) (*dto.EWayBillResponse, error) {
	if err := uc.gate(ctx, actor, access.ActionView); err != nil {
		return nil, err
	}
	e, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	out := uc.respond(e)
	return &out, nil
}

func (uc *EWayBillUseCase) load(ctx context.Context, id string) (*entity.EWayBill, error) {
	e, err := uc.d.EWayBills.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, domain.ErrNotFound
	}
	return e, nil
}

func (uc *EWayBillUseCase) Create(ctx context.Context, actor *entity.User, in dto.CreateEWayBillRequest) (*dto.EWayBillResponse, error) {
	if err := uc.gate(ctx, actor, access.ActionAdd); err != nil {
		return nil, err
	}
	verr := validate(in)
	generated := date(verr, "generated_date", in.GeneratedDate, false)
	validUntil := date(verr, "valid_until", in.ValidUntil, true)
	distance := whole(verr, "distance_km", in.DistanceKM, false)
	invoice := amount(verr, "invoice_value", in.InvoiceValue, false)
	clientID := optID(in.ClientID)
	if _, err := uc.refs.client(ctx, verr, "client_id", clientID); err != nil {
		return nil, err
	}
	orderID := optID(in.OrderID)
	if o, err := uc.refs.order(ctx, verr, "order_id", orderID); err != nil {
		return nil, err
	} else if o != nil && o.ClientID != deref(clientID) {
		verr.Add("order_id", "el pedido pertenece a otro cliente")
	}

	now := uc.d.now()
	if generated == nil {
		generated = &now
	}
	if validUntil != nil && validUntil.Before(*generated) {
		verr.Add("valid_until", "no puede ser anterior a generated_date")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	if invoice == nil {
		invoice = ptr(decimal.Zero)
	}

	e := &entity.EWayBill{
		ID:             uuid.New().String(),
		EWayBillNumber: strings.TrimSpace(in.EWayBillNumber),
		ClientID:       deref(clientID),
		OrderID:        orderID,
		VehicleNumber:  strings.ToUpper(strings.TrimSpace(in.VehicleNumber)),
		FromPlace:      strings.TrimSpace(in.FromPlace),
		ToPlace:        strings.TrimSpace(in.ToPlace),
		DistanceKM:     distance,
		GeneratedDate:  *generated,
		ValidUntil:     *validUntil,
		InvoiceValue:   *invoice,
		Status:         orDefault(in.Status, entity.EWayBillActive),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.d.EWayBills.Create(ctx, e); err != nil {
		return nil, err
	}
	out := uc.respond(e)
	return &out, nil
}

func (uc *EWayBillUseCase) Update(ctx context.Context, actor *entity.User, id string, in dto.UpdateEWayBillRequest) (*dto.EWayBillResponse, error) {
	if err := uc.gate(ctx, actor, access.ActionEdit); err != nil {
		return nil, err
	}
	e, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	verr := validate(in)
	requireText(verr, "vehicle_number", in.VehicleNumber)
	requireText(verr, "from_place", in.FromPlace)
	requireText(verr, "to_place", in.ToPlace)
	if in.OrderID != nil {
		e.OrderID = patchID(in.OrderID, e.OrderID)
		if o, err := uc.refs.order(ctx, verr, "order_id", e.OrderID); err != nil {
			return nil, err
		} else if o != nil && o.ClientID != e.ClientID {
			verr.Add("order_id", "el pedido pertenece a otro cliente")
		}
	}
	if in.VehicleNumber != nil {
		e.VehicleNumber = strings.ToUpper(strings.TrimSpace(*in.VehicleNumber))
	}
	e.FromPlace = patchString(in.FromPlace, e.FromPlace)
	e.ToPlace = patchString(in.ToPlace, e.ToPlace)
	e.DistanceKM = patchWhole(verr, "distance_km", in.DistanceKM, e.DistanceKM)
	if d := patchDate(verr, "valid_until", in.ValidUntil, &e.ValidUntil, false); d != nil {
		e.ValidUntil = *d
	}
	if e.ValidUntil.Before(e.GeneratedDate) {
		verr.Add("valid_until", "no puede ser anterior a generated_date")
	}
	if v := patchAmount(verr, "invoice_value", in.InvoiceValue, &e.InvoiceValue, false); v != nil {
		e.InvoiceValue = *v
	}
	e.Status = patchString(in.Status, e.Status)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	e.UpdatedAt = uc.d.now()
	if err := uc.d.EWayBills.Update(ctx, e); err != nil {
		return nil, err
	}
	out := uc.respond(e)
	return &out, nil
}

// Delete cancela la guía.
func (uc *EWayBillUseCase) Delete(ctx context.Context, actor *entity.User, id string) error {
	if err := uc.gate(ctx, actor, access.ActionDelete); err != nil {
		return err
	}
	e, err := uc.load(ctx, id)
	if err != nil {
		return err
	}
	if e.Status == entity.EWayBillCancelled {
		return nil
	}
	e.Status = entity.EWayBillCancelled
	e.UpdatedAt = uc.d.now()
	return uc.d.EWayBills.Update(ctx, e)
}
