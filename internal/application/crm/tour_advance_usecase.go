package crm

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/bitumen-api/internal/application/dto"
	"github.com/jhoicas/bitumen-api/internal/domain"
	"github.com/jhoicas/bitumen-api/internal/domain/access"
	"github.com/jhoicas/bitumen-api/internal/domain/entity"
	"github.com/jhoicas/bitumen-api/internal/domain/repository"
)

// TourAdvanceUseCase anticipos de viaje (módulo TOUR_ADVANCES).
type TourAdvanceUseCase struct {
	d    Deps
	refs refs
}

func NewTourAdvanceUseCase(d Deps) *TourAdvanceUseCase {
	return &TourAdvanceUseCase{d: d, refs: refs{d}}
}

func (uc *TourAdvanceUseCase) gate(ctx context.Context, actor *entity.User, action access.Action) error {
	return uc.d.Gate.Require(ctx, actor, access.ModuleTourAdvances, action)
}

func (uc *TourAdvanceUseCase) List(ctx context.Context, actor *entity.User, f repository.TourAdvanceFilter) (*dto.ListResponse[dto.TourAdvanceResponse], error) {
	if err := uc.gate(ctx, actor, access.ActionView); err != nil {
		return nil, err
	}
	rows, err := uc.d.TourAdvances.List(ctx, f)
	if err != nil {
		return nil, err
	}
	limit, offset := listPage(f.Page)
	return &dto.ListResponse[dto.TourAdvanceResponse]{Items: mapList(rows, toTourAdvanceResponse), Limit: limit, Offset: offset}, nil
}

func (uc *TourAdvanceUseCase) Get(ctx context.Context, actor *entity.User, id string) (*dto.TourAdvanceResponse, error) {
	if err := uc.gate(ctx, actor, access.ActionView); err != nil {
		return nil, err
	}
	t, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	out := toTourAdvanceResponse(t)
	return &out, nil
}

func (uc *TourAdvanceUseCase) load(ctx context.Context, id string) (*entity.TourAdvance, error) {
	t, err := uc.d.TourAdvances.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

// Create solicita un anticipo; sin employee_id se asigna al usuario actual.
func (uc *TourAdvanceUseCase) Create(ctx context.Context, actor *entity.User, in dto.CreateTourAdvanceRequest) (*dto.TourAdvanceResponse, error) {
	if err := uc.gate(ctx, actor, access.ActionAdd); err != nil {
		return nil, err
	}
	verr := validate(in)
	start := date(verr, "start_date", in.StartDate, true)
	end := date(verr, "end_date", in.EndDate, true)
	if start != nil && end != nil && end.Before(*start) {
		verr.Add("end_date", "no puede ser anterior a start_date")
	}
	requested := amount(verr, "amount_requested", in.AmountRequested, true)
	approved := amount(verr, "amount_approved", in.AmountApproved, false)
	spent := amount(verr, "amount_spent", in.AmountSpent, false)
	employee := optID(in.EmployeeID)
	if _, err := uc.refs.user(ctx, verr, "employee_id", employee); err != nil {
		return nil, err
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	if employee == nil {
		employee = &actor.ID
	}

	now := uc.d.now()
	t := &entity.TourAdvance{
		ID:              uuid.New().String(),
		EmployeeID:      *employee,
		Purpose:         strings.TrimSpace(in.Purpose),
		Destination:     strings.TrimSpace(in.Destination),
		StartDate:       *start,
		EndDate:         *end,
		AmountRequested: *requested,
		AmountApproved:  approved,
		AmountSpent:     spent,
		Status:          orDefault(in.Status, entity.TourPending),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.d.TourAdvances.Create(ctx, t); err != nil {
		return nil, err
	}
	out := toTourAdvanceResponse(t)
	return &out, nil
}

func (uc *TourAdvanceUseCase) Update(ctx context.Context, actor *entity.User, id string, in dto.UpdateTourAdvanceRequest) (*dto.TourAdvanceResponse, error) {
	if err := uc.gate(ctx, actor, access.ActionEdit); err != nil {
		return nil, err
	}
	t, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	verr := validate(in)
	requireText(verr, "purpose", in.Purpose)
	requireText(verr, "destination", in.Destination)
	t.Purpose = patchString(in.Purpose, t.Purpose)
	t.Destination = patchString(in.Destination, t.Destination)
	if d := patchDate(verr, "start_date", in.StartDate, &t.StartDate, false); d != nil {
		t.StartDate = *d
	}
	if d := patchDate(verr, "end_date", in.EndDate, &t.EndDate, false); d != nil {
		t.EndDate = *d
	}
	if t.EndDate.Before(t.StartDate) {
		verr.Add("end_date", "no puede ser anterior a start_date")
	}
	if v := patchAmount(verr, "amount_requested", in.AmountRequested, &t.AmountRequested, false); v != nil {
		t.AmountRequested = *v
	}
	t.AmountApproved = patchAmount(verr, "amount_approved", in.AmountApproved, t.AmountApproved, true)
	t.AmountSpent = patchAmount(verr, "amount_spent", in.AmountSpent, t.AmountSpent, true)
	t.Status = patchString(in.Status, t.Status)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	t.UpdatedAt = uc.d.now()
	if err := uc.d.TourAdvances.Update(ctx, t); err != nil {
		return nil, err
	}
	out := toTourAdvanceResponse(t)
	return &out, nil
}

// Delete cancela el anticipo.
func (uc *TourAdvanceUseCase) Delete(ctx context.Context, actor *entity.User, id string) error {
	if err := uc.gate(ctx, actor, access.ActionDelete); err != nil {
		return err
	}
	t, err := uc.load(ctx, id)
	if err != nil {
		return err
	}
	if t.Status == entity.TourCancelled {
		return nil
	}
	t.Status = entity.TourCancelled
	t.UpdatedAt = uc.d.now()
	return uc.d.TourAdvances.Update(ctx, t)
}
