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

// FollowUpUseCase seguimientos comerciales (módulo FOLLOW_UPS).
type FollowUpUseCase struct {
	d    Deps
	refs refs
}

func NewFollowUpUseCase(d Deps) *FollowUpUseCase {
	return &FollowUpUseCase{d: d, refs: refs{d}}
}

func (uc *FollowUpUseCase) gate(ctx context.Context, actor *entity.User, action access.Action) error {
	return uc.d.Gate.Require(ctx, actor, access.ModuleFollowUps, action)
}

func (uc *FollowUpUseCase) List(ctx context.Context, actor *entity.User, f repository.FollowUpFilter) (*dto.ListResponse[dto.FollowUpResponse], error) {
	if err := uc.gate(ctx, actor, access.ActionView); err != nil {
		return nil, err
	}
	rows, err := uc.d.FollowUps.List(ctx, f)
	if err != nil {
		return nil, err
	}
	limit, offset := listPage(f.Page)
	return &dto.ListResponse[dto.FollowUpResponse]{Items: mapList(rows, toFollowUpResponse), Limit: limit, Offset: offset}, nil
}

func (uc *FollowUpUseCase) Get(ctx context.Context, actor *entity.User, id string) (*dto.FollowUpResponse, error) {
	if err := uc.gate(ctx, actor, access.ActionView); err != nil {
		return nil, err
	}
	f, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	out := toFollowUpResponse(f)
	return &out, nil
}

func (uc *FollowUpUseCase) load(ctx context.Context, id string) (*entity.FollowUp, error) {
	f, err := uc.d.FollowUps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, domain.ErrNotFound
	}
	return f, nil
}

// Create registra un seguimiento; sin user_id queda a nombre del usuario actual.
func (uc *FollowUpUseCase) Create(ctx context.Context, actor *entity.User, in dto.CreateFollowUpRequest) (*dto.FollowUpResponse, error) {
	if err := uc.gate(ctx, actor, access.ActionAdd); err != nil {
		return nil, err
	}
	verr := validate(in)
	when := date(verr, "follow_up_date", in.FollowUpDate, true)
	next := date(verr, "next_follow_up_date", in.NextFollowUpDate, false)
	clientID := optID(in.ClientID)
	if _, err := uc.refs.client(ctx, verr, "client_id", clientID); err != nil {
		return nil, err
	}
	userID := optID(in.UserID)
	if _, err := uc.refs.user(ctx, verr, "user_id", userID); err != nil {
		return nil, err
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	if userID == nil {
		userID = &actor.ID
	}

	now := uc.d.now()
	f := &entity.FollowUp{
		ID:               uuid.New().String(),
		ClientID:         deref(clientID),
		UserID:           *userID,
		FollowUpDate:     *when,
		Type:             in.Type,
		Notes:            strings.TrimSpace(in.Notes),
		Outcome:          strings.TrimSpace(in.Outcome),
		NextFollowUpDate: next,
		Status:           orDefault(in.Status, entity.FollowUpScheduled),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.d.FollowUps.Create(ctx, f); err != nil {
		return nil, err
	}
	out := toFollowUpResponse(f)
	return &out, nil
}

func (uc *FollowUpUseCase) Update(ctx context.Context, actor *entity.User, id string, in dto.UpdateFollowUpRequest) (*dto.FollowUpResponse, error) {
	if err := uc.gate(ctx, actor, access.ActionEdit); err != nil {
		return nil, err
	}
	f, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	verr := validate(in)
	if in.UserID != nil {
		f.UserID = strings.TrimSpace(*in.UserID)
		if _, err := uc.refs.user(ctx, verr, "user_id", &f.UserID); err != nil {
			return nil, err
		}
	}
	if d := patchDate(verr, "follow_up_date", in.FollowUpDate, &f.FollowUpDate, false); d != nil {
		f.FollowUpDate = *d
	}
	f.NextFollowUpDate = patchDate(verr, "next_follow_up_date", in.NextFollowUpDate, f.NextFollowUpDate, true)
	f.Type = patchString(in.Type, f.Type)
	f.Notes = patchString(in.Notes, f.Notes)
	f.Outcome = patchString(in.Outcome, f.Outcome)
	f.Status = patchString(in.Status, f.Status)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	f.UpdatedAt = uc.d.now()
	if err := uc.d.FollowUps.Update(ctx, f); err != nil {
		return nil, err
	}
	out := toFollowUpResponse(f)
	return &out, nil
}

// Delete cancela el seguimiento.
func (uc *FollowUpUseCase) Delete(ctx context.Context, actor *entity.User, id string) error {
	if err := uc.gate(ctx, actor, access.ActionDelete); err != nil {
		return err
	}
	f, err := uc.load(ctx, id)
	if err != nil {
		return err
	}
	if f.Status == entity.FollowUpCancelled {
		return nil
	}
	f.Status = entity.FollowUpCancelled
	f.UpdatedAt = uc.d.now()
	return uc.d.FollowUps.Update(ctx, f)
}
