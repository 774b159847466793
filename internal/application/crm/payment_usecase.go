package crm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/bitumen-api/internal/application/dto"
	"github.com/jhoicas/bitumen-api/internal/domain"
	"github.com/jhoicas/bitumen-api/internal/domain/access"
	"github.com/jhoicas/bitumen-api/internal/domain/entity"
	"github.com/jhoicas/bitumen-api/internal/domain/repository"
)

// PaymentUseCase pagos a crédito (módulo CREDIT_PAYMENTS).
// Cada escritura recalcula outstanding_amount del cliente dentro de la misma transacción.
type PaymentUseCase struct {
	d    Deps
	refs refs
}

func NewPaymentUseCase(d Deps) *PaymentUseCase {
	return &PaymentUseCase{d: d, refs: refs{d}}
}

func (uc *PaymentUseCase) gate(ctx context.Context, actor *entity.User, action access.Action) error {
	return uc.d.Gate.Require(ctx, actor, access.ModuleCreditPayments, action)
}

func (uc *PaymentUseCase) List(ctx context.Context, actor *entity.User, f repository.PaymentFilter) (*dto.ListResponse[dto.PaymentResponse], error) {
	if err := uc.gate(ctx, actor, access.ActionView); err != nil {
		return nil, err
	}
	rows, err := uc.d.Payments.List(ctx, f)
	if err != nil {
		return nil, err
	}
	limit, offset := listPage(f.Page)
	return &dto.ListResponse[dto.PaymentResponse]{Items: mapList(rows, toPaymentResponse), Limit: limit, Offset: offset}, nil
}

func (uc *PaymentUseCase) Get(ctx context.Context, actor *entity.User, id string) (*dto.PaymentResponse, error) {
	if err := uc.gate(ctx, actor, access.ActionView); err != nil {
		return nil, err
	}
	p, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	out := toPaymentResponse(p)
	return &out, nil
}

func (uc *PaymentUseCase) load(ctx context.Context, id string) (*entity.Payment, error) {
	p, err := uc.d.Payments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// Create registra un pago. amount debe ser > 0 y el pedido, si se indica, debe ser del mismo cliente.
func (uc *PaymentUseCase) Create(ctx context.Context, actor *entity.User, in dto.CreatePaymentRequest) (*dto.PaymentResponse, error) {
	if err := uc.gate(ctx, actor, access.ActionAdd); err != nil {
		return nil, err
	}
	verr := validate(in)
	amt := positive(verr, "amount", amount(verr, "amount", in.Amount, true))
	paid := date(verr, "payment_date", in.PaymentDate, false)
	due := date(verr, "due_date", in.DueDate, false)
	clientID := optID(in.ClientID)
	if _, err := uc.refs.client(ctx, verr, "client_id", clientID); err != nil {
		return nil, err
	}
	orderID := optID(in.OrderID)
	if err := uc.checkOrder(ctx, verr, orderID, deref(clientID)); err != nil {
		return nil, err
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	now := uc.d.now()
	if paid == nil {
		paid = &now
	}
	p := &entity.Payment{
		ID:          uuid.New().String(),
		ClientID:    deref(clientID),
		OrderID:     orderID,
		Amount:      *amt,
		PaymentDate: *paid,
		DueDate:     due,
		Mode:        in.Mode,
		Reference:   strings.TrimSpace(in.Reference),
		Status:      orDefault(in.Status, entity.PaymentPending),
		Notes:       strings.TrimSpace(in.Notes),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := uc.d.PaymentTx.RunPayment(ctx, func(payments repository.PaymentRepository, clients repository.ClientRepository) error {
		if err := payments.Create(ctx, p); err != nil {
			return err
		}
		return recomputeOutstanding(ctx, payments, clients, p.ClientID)
	})
	if err != nil {
		return nil, err
	}
	out := toPaymentResponse(p)
	return &out, nil
}

func (uc *PaymentUseCase) Update(ctx context.Context, actor *entity.User, id string, in dto.UpdatePaymentRequest) (*dto.PaymentResponse, error) {
	if err := uc.gate(ctx, actor, access.ActionEdit); err != nil {
		return nil, err
	}
	p, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	verr := validate(in)
	if v := patchAmount(verr, "amount", in.Amount, &p.Amount, false); v != nil {
		if positive(verr, "amount", v) != nil {
			p.Amount = *v
		}
	}
	if d := patchDate(verr, "payment_date", in.PaymentDate, &p.PaymentDate, false); d != nil {
		p.PaymentDate = *d
	}
	p.DueDate = patchDate(verr, "due_date", in.DueDate, p.DueDate, true)
	if in.OrderID != nil {
		p.OrderID = patchID(in.OrderID, p.OrderID)
		if err := uc.checkOrder(ctx, verr, p.OrderID, p.ClientID); err != nil {
			return nil, err
		}
	}
	p.Mode = patchString(in.Mode, p.Mode)
	p.Reference = patchString(in.Reference, p.Reference)
	p.Status = patchString(in.Status, p.Status)
	p.Notes = patchString(in.Notes, p.Notes)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	p.UpdatedAt = uc.d.now()
	err = uc.d.PaymentTx.RunPayment(ctx, func(payments repository.PaymentRepository, clients repository.ClientRepository) error {
		if err := payments.Update(ctx, p); err != nil {
			return err
		}
		return recomputeOutstanding(ctx, payments, clients, p.ClientID)
	})
	if err != nil {
		return nil, err
	}
	out := toPaymentResponse(p)
	return &out, nil
}

// Delete cancela el pago; deja de contar en el saldo del cliente.
func (uc *PaymentUseCase) Delete(ctx context.Context, actor *entity.User, id string) error {
	if err := uc.gate(ctx, actor, access.ActionDelete); err != nil {
		return err
	}
	p, err := uc.load(ctx, id)
	if err != nil {
		return err
	}
	if p.Status == entity.PaymentCancelled {
		return nil
	}
	p.Status = entity.PaymentCancelled
	p.UpdatedAt = uc.d.now()
	return uc.d.PaymentTx.RunPayment(ctx, func(payments repository.PaymentRepository, clients repository.ClientRepository) error {
		if err := payments.Update(ctx, p); err != nil {
			return err
		}
		return recomputeOutstanding(ctx, payments, clients, p.ClientID)
	})
}

func (uc *PaymentUseCase) checkOrder(ctx context.Context, verr *domain.ValidationError, orderID *string, clientID string) error {
	o, err := uc.refs.order(ctx, verr, "order_id", orderID)
	if err != nil {
		return err
	}
	if o != nil && clientID != "" && o.ClientID != clientID {
		verr.Add("order_id", "el pedido pertenece a otro cliente")
	}
	return nil
}

// recomputeOutstanding fija outstanding_amount = Σ pagos PENDING + OVERDUE del cliente.
func recomputeOutstanding(ctx context.Context, payments repository.PaymentRepository, clients repository.ClientRepository, clientID string) error {
	total, err := payments.SumOutstanding(ctx, clientID)
	if err != nil {
		return fmt.Errorf("recalcular saldo: %w", err)
	}
	return clients.UpdateOutstanding(ctx, clientID, total)
}
