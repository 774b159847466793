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

// TaskUseCase tareas (módulo TASK_MANAGEMENT).
type TaskUseCase struct {
	d    Deps
	refs refs
}

func NewTaskUseCase(d Deps) *TaskUseCase {
	return &TaskUseCase{d: d, refs: refs{d}}
}

func (uc *TaskUseCase) gate(ctx context.Context, actor *entity.User, action access.Action) error {
	return uc.d.Gate.Require(ctx, actor, access.ModuleTaskManagement, action)
}

func (uc *TaskUseCase) List(ctx context.Context, actor *entity.User, f repository.TaskFilter) (*dto.ListResponse[dto.TaskResponse], error) {
	if err := uc.gate(ctx, actor, access.ActionView); err != nil {
		return nil, err
	}
	rows, err := uc.d.Tasks.List(ctx, f)
	if err != nil {
		return nil, err
	}
	limit, offset := listPage(f.Page)
	return &dto.ListResponse[dto.TaskResponse]{Items: mapList(rows, toTaskResponse), Limit: limit, Offset: offset}, nil
}

func (uc *TaskUseCase) Get(ctx context.Context, actor *entity.User, id string) (*dto.TaskResponse, error) {
	if err := uc.gate(ctx, actor, access.ActionView); err != nil {
		return nil, err
	}
	t, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	out := toTaskResponse(t)
	return &out, nil
}

func (uc *TaskUseCase) load(ctx context.Context, id string) (*entity.Task, error) {
	t, err := uc.d.Tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

// Create registra una tarea; created_by es siempre el usuario que la crea.
func (uc *TaskUseCase) Create(ctx context.Context, actor *entity.User, in dto.CreateTaskRequest) (*dto.TaskResponse, error) {
	if err := uc.gate(ctx, actor, access.ActionAdd); err != nil {
		return nil, err
	}
	verr := validate(in)
	due := date(verr, "due_date", in.DueDate, false)
	assignee := optID(in.AssigneeID)
	if _, err := uc.refs.user(ctx, verr, "assignee_id", assignee); err != nil {
		return nil, err
	}
	clientID := optID(in.ClientID)
	if _, err := uc.refs.client(ctx, verr, "client_id", clientID); err != nil {
		return nil, err
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	now := uc.d.now()
	t := &entity.Task{
		ID:          uuid.New().String(),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		AssigneeID:  deref(assignee),
		ClientID:    clientID,
		DueDate:     due,
		Priority:    orDefault(in.Priority, entity.PriorityMedium),
		Status:      orDefault(in.Status, entity.TaskPending),
		CreatedBy:   actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.d.Tasks.Create(ctx, t); err != nil {
		return nil, err
	}
	out := toTaskResponse(t)
	return &out, nil
}

func (uc *TaskUseCase) Update(ctx context.Context, actor *entity.User, id string, in dto.UpdateTaskRequest) (*dto.TaskResponse, error) {
	if err := uc.gate(ctx, actor, access.ActionEdit); err != nil {
		return nil, err
	}
	t, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	verr := validate(in)
	requireText(verr, "title", in.Title)
	t.Title = patchString(in.Title, t.Title)
	t.Description = patchString(in.Description, t.Description)
	if in.AssigneeID != nil {
		t.AssigneeID = strings.TrimSpace(*in.AssigneeID)
		if _, err := uc.refs.user(ctx, verr, "assignee_id", &t.AssigneeID); err != nil {
			return nil, err
		}
	}
	if in.ClientID != nil {
		t.ClientID = patchID(in.ClientID, t.ClientID)
		if _, err := uc.refs.client(ctx, verr, "client_id", t.ClientID); err != nil {
			return nil, err
		}
	}
	t.DueDate = patchDate(verr, "due_date", in.DueDate, t.DueDate, true)
	t.Priority = patchString(in.Priority, t.Priority)
	t.Status = patchString(in.Status, t.Status)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	t.UpdatedAt = uc.d.now()
	if err := uc.d.Tasks.Update(ctx, t); err != nil {
		return nil, err
	}
	out := toTaskResponse(t)
	return &out, nil
}

// Delete borra la tarea físicamente.
func (uc *TaskUseCase) Delete(ctx context.Context, actor *entity.User, id string) error {
	if err := uc.gate(ctx, actor, access.ActionDelete); err != nil {
		return err
	}
	if _, err := uc.load(ctx, id); err != nil {
		return err
	}
	return uc.d.Tasks.Delete(ctx, id)
}
