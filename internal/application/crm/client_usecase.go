package crm

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/bitumen-api/internal/application/dto"
	"github.com/jhoicas/bitumen-api/internal/domain"
	"github.com/jhoicas/bitumen-api/internal/domain/access"
	"github.com/jhoicas/bitumen-api/internal/domain/entity"
	"github.com/jhoicas/bitumen-api/internal/domain/repository"
)

// ClientUseCase CRUD de clientes (módulo CLIENT_MANAGEMENT).
type ClientUseCase struct {
	d    Deps
	refs refs
}

// NewClientUseCase construye el caso de uso.
func NewClientUseCase(d Deps) *ClientUseCase {
	return &ClientUseCase{d: d, refs: refs{d}}
}

func (uc *ClientUseCase) gate(ctx context.Context, actor *entity.User, action access.Action) error {
	return uc.d.Gate.Require(ctx, actor, access.ModuleClientManagement, action)
}

// List lista clientes con filtros.
func (uc *ClientUseCase) List(ctx context.Context, actor *entity.User, f repository.ClientFilter) (*dto.ListResponse[dto.ClientResponse], error) {
	if err := uc.gate(ctx, actor, access.ActionView); err != nil {
		return nil, err
	}
	rows, err := uc.d.Clients.List(ctx, f)
	if err != nil {
		return nil, err
	}
	limit, offset := listPage(f.Page)
	return &dto.ListResponse[dto.ClientResponse]{Items: mapList(rows, toClientResponse), Limit: limit, Offset: offset}, nil
}

// Get obtiene un cliente por ID.
func (uc *ClientUseCase) Get(ctx context.Context, actor *entity.User, id string) (*dto.ClientResponse, error) {
	if err := uc.gate(ctx, actor, access.ActionView); err != nil {
		return nil, err
	}
	c, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	out := toClientResponse(c)
	return &out, nil
}

func (uc *ClientUseCase) load(ctx context.Context, id string) (*entity.Client, error) {
	c, err := uc.d.Clients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

// Create da de alta un cliente. credit_limit 0 y "0" se guardan como 0, no como nulo.
func (uc *ClientUseCase) Create(ctx context.Context, actor *entity.User, in dto.CreateClientRequest) (*dto.ClientResponse, error) {
	if err := uc.gate(ctx, actor, access.ActionAdd); err != nil {
		return nil, err
	}
	verr := validate(in)
	creditLimit := amount(verr, "credit_limit", in.CreditLimit, false)
	creditDays := whole(verr, "credit_days", in.CreditDays, false)
	salesPerson := optID(in.SalesPersonID)
	if _, err := uc.refs.user(ctx, verr, "sales_person_id", salesPerson); err != nil {
		return nil, err
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	now := uc.d.now()
	c := &entity.Client{
		ID:                uuid.New().String(),
		CompanyName:       strings.TrimSpace(in.CompanyName),
		ContactPerson:     strings.TrimSpace(in.ContactPerson),
		Phone:             strings.TrimSpace(in.Phone),
		Email:             strings.TrimSpace(in.Email),
		GSTIN:             strings.ToUpper(strings.TrimSpace(in.GSTIN)),
		Address:           strings.TrimSpace(in.Address),
		City:              strings.TrimSpace(in.City),
		State:             strings.TrimSpace(in.State),
		Category:          entity.ClientCategory(in.Category),
		CreditLimit:       creditLimit,
		CreditDays:        creditDays,
		OutstandingAmount: decimal.Zero,
		SalesPersonID:     salesPerson,
		TallyLedgerName:   optID(in.TallyLedgerName),
		Status:            entity.ClientActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uc.d.Clients.Create(ctx, c); err != nil {
		return nil, err
	}
	out := toClientResponse(c)
	return &out, nil
}

// Update aplica una actualización parcial. Aplicar dos veces la misma entrada deja el mismo estado.
func (uc *ClientUseCase) Update(ctx context.Context, actor *entity.User, id string, in dto.UpdateClientRequest) (*dto.ClientResponse, error) {
	if err := uc.gate(ctx, actor, access.ActionEdit); err != nil {
		return nil, err
	}
	c, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	verr := validate(in)
	requireText(verr, "company_name", in.CompanyName)
	c.CompanyName = patchString(in.CompanyName, c.CompanyName)
	c.ContactPerson = patchString(in.ContactPerson, c.ContactPerson)
	c.Phone = patchString(in.Phone, c.Phone)
	c.Email = patchString(in.Email, c.Email)
	c.GSTIN = strings.ToUpper(patchString(in.GSTIN, c.GSTIN))
	c.Address = patchString(in.Address, c.Address)
	c.City = patchString(in.City, c.City)
	c.State = patchString(in.State, c.State)
	if in.Category != nil {
		c.Category = entity.ClientCategory(*in.Category)
	}
	if in.Status != nil {
		c.Status = entity.ClientStatus(*in.Status)
	}
	c.CreditLimit = patchAmount(verr, "credit_limit", in.CreditLimit, c.CreditLimit, true)
	c.CreditDays = patchWhole(verr, "credit_days", in.CreditDays, c.CreditDays)
	c.SalesPersonID = patchID(in.SalesPersonID, c.SalesPersonID)
	c.TallyLedgerName = patchID(in.TallyLedgerName, c.TallyLedgerName)
	if in.SalesPersonID != nil {
		if _, err := uc.refs.user(ctx, verr, "sales_person_id", c.SalesPersonID); err != nil {
			return nil, err
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	c.UpdatedAt = uc.d.now()
	if err := uc.d.Clients.Update(ctx, c); err != nil {
		return nil, err
	}
	out := toClientResponse(c)
	return &out, nil
}

// Delete desactiva el cliente (INACTIVE); sus pedidos y pagos se conservan.
func (uc *ClientUseCase) Delete(ctx context.Context, actor *entity.User, id string) error {
	if err := uc.gate(ctx, actor, access.ActionDelete); err != nil {
		return err
	}
	c, err := uc.load(ctx, id)
	if err != nil {
		return err
	}
	if c.Status == entity.ClientInactive {
		return nil
	}
	c.Status = entity.ClientInactive
	c.UpdatedAt = uc.d.now()
	return uc.d.Clients.Update(ctx, c)
}

// ImportResult resultado de una importación de ledgers.
type ImportResult struct {
	Created int
	Updated int
	Skipped int
	Errors  map[string]string // ledger → motivo genérico, apto para el agente
	Causes  map[string]error  // ledger → error original, solo para logs
}

// fail registra un ledger rechazado sin exponer el detalle de almacenamiento.
func (r *ImportResult) fail(name string, err error) {
	r.Skipped++
	r.Causes[name] = err
	var verr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrDuplicate):
		r.Errors[name] = "duplicado"
	case errors.As(err, &verr):
		r.Errors[name] = "datos inválidos"
	default:
		r.Errors[name] = "error interno"
	}
}

// ImportLedgers crea o actualiza clientes a partir de ledgers contables, enlazando por
// tally_ledger_name. Camino de sistema (puente de sincronización): no pasa por el gate de usuario.
// Los clientes nuevos entran en categoría DELTA. El saldo del ledger pasa a outstanding_amount
// mientras el cliente no tenga pagos registrados aquí; desde el primer pago el saldo lo calculan
// los pagos (PaymentUseCase) y el ledger ya no lo pisa.
func (uc *ClientUseCase) ImportLedgers(ctx context.Context, records []entity.LedgerRecord) (ImportResult, error) {
	res := ImportResult{Errors: map[string]string{}, Causes: map[string]error{}}
	for _, rec := range records {
		name := strings.TrimSpace(rec.Name)
		if name == "" {
			res.Skipped++
			continue
		}
		existing, err := uc.d.Clients.GetByLedgerName(ctx, name)
		if err != nil {
			return res, err
		}
		now := uc.d.now()
		if existing == nil {
			c := &entity.Client{
				ID:                uuid.New().String(),
				CompanyName:       name,
				Category:          entity.CategoryDelta,
				OutstandingAmount: decOrZero(rec.ClosingBalance),
				TallyLedgerName:   &name,
				Status:            entity.ClientActive,
				CreatedAt:         now,
			}
			applyLedger(c, rec)
			c.UpdatedAt = now
			if err := uc.d.Clients.Create(ctx, c); err != nil {
				res.fail(name, err)
				continue
			}
			res.Created++
			continue
		}
		applyLedger(existing, rec)
		if rec.ClosingBalance != nil {
			tracked, err := uc.hasPayments(ctx, existing.ID)
			if err != nil {
				return res, err
			}
			if !tracked {
				existing.OutstandingAmount = *rec.ClosingBalance
			}
		}
		existing.UpdatedAt = now
		if err := uc.d.Clients.Update(ctx, existing); err != nil {
			res.fail(name, err)
			continue
		}
		res.Updated++
	}
	return res, nil
}

func (uc *ClientUseCase) hasPayments(ctx context.Context, clientID string) (bool, error) {
	if uc.d.Payments == nil {
		return false, nil
	}
	rows, err := uc.d.Payments.List(ctx, repository.PaymentFilter{Page: repository.Page{Limit: 1}, ClientID: clientID})
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// applyLedger copia los datos de contacto no vacíos del ledger.
func applyLedger(c *entity.Client, rec entity.LedgerRecord) {
	set := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	set(&c.ContactPerson, rec.ContactPerson)
	set(&c.Phone, rec.Phone)
	set(&c.Email, rec.Email)
	set(&c.GSTIN, strings.ToUpper(rec.GSTIN))
	set(&c.Address, rec.Address)
	set(&c.City, rec.City)
	set(&c.State, rec.State)
}
