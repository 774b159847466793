package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bitumen-api/internal/application/crm"
	"github.com/jhoicas/bitumen-api/internal/domain/repository"
)

// TaskHandler maneja tareas (TASK_MANAGEMENT).
type TaskHandler struct {
	uc *crm.TaskUseCase
}

// NewTaskHandler construye el handler.
func NewTaskHandler(uc *crm.TaskUseCase) *TaskHandler {
	return &TaskHandler{uc: uc}
}

// List godoc
// @Summary      Listar tareas
// @Tags         tasks
// @Security     Session
// @Produce      json
// @Param        status       query  string  false  "PENDING | IN_PROGRESS | COMPLETED"
// @Param        assignee_id  query  string  false  "Responsable"
// @Param        client_id    query  string  false  "Cliente"
// @Param        search       query  string  false  "Título"
// @Success      200  {object}  dto.ListResponse[dto.TaskResponse]
// @Router       /api/tasks [get]
func (h *TaskHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), CurrentUser(c), repository.TaskFilter{
		Page:       pageFrom(c),
		Status:     c.Query("status"),
		AssigneeID: c.Query("assignee_id"),
		ClientID:   c.Query("client_id"),
		Search:     c.Query("search"),
	})
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener tarea
// @Tags         tasks
// @Security     Session
// @Param        id   path  string  true  "ID de la tarea"
// @Success      200  {object}  dto.TaskResponse
// @Router       /api/tasks/{id} [get]
func (h *TaskHandler) Get(c *fiber.Ctx) error { return getOne(c, h.uc.Get) }

// Create godoc
// @Summary      Crear tarea
// @Tags         tasks
// @Security     Session
// @Accept       json
// @Param        body  body  dto.CreateTaskRequest  true  "Tarea"
// @Success      201   {object}  dto.TaskResponse
// @Router       /api/tasks [post]
func (h *TaskHandler) Create(c *fiber.Ctx) error { return createOne(c, h.uc.Create) }

// Update godoc
// @Summary      Actualizar tarea
// @Tags         tasks
// @Security     Session
// @Accept       json
// @Param        id    path  string                 true  "ID de la tarea"
// @Param        body  body  dto.UpdateTaskRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.TaskResponse
// @Router       /api/tasks/{id} [put]
func (h *TaskHandler) Update(c *fiber.Ctx) error { return updateOne(c, h.uc.Update) }

// Delete godoc
// @Summary      Eliminar tarea
// @Tags         tasks
// @Security     Session
// @Param        id   path  string  true  "ID de la tarea"
// @Success      204
// @Router       /api/tasks/{id} [delete]
func (h *TaskHandler) Delete(c *fiber.Ctx) error { return deleteOne(c, h.uc.Delete) }
