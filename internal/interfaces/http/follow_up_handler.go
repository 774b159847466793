package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bitumen-api/internal/application/crm"
	"github.com/jhoicas/bitumen-api/internal/domain/repository"
)

// FollowUpHandler maneja seguimientos de clientes (FOLLOW_UPS).
type FollowUpHandler struct {
	uc *crm.FollowUpUseCase
}

// NewFollowUpHandler construye el handler.
func NewFollowUpHandler(uc *crm.FollowUpUseCase) *FollowUpHandler {
	return &FollowUpHandler{uc: uc}
}

// List godoc
// @Summary      Listar seguimientos
// @Tags         follow-ups
// @Security     Session
// @Param        status     query  string  false  "SCHEDULED | COMPLETED | CANCELLED"
// @Param        client_id  query  string  false  "Cliente"
// @Param        user_id    query  string  false  "Responsable"
// @Success      200  {object}  dto.ListResponse[dto.FollowUpResponse]
// @Router       /api/follow-ups [get]
func (h *FollowUpHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), CurrentUser(c), repository.FollowUpFilter{
		Page:     pageFrom(c),
		Status:   c.Query("status"),
		ClientID: c.Query("client_id"),
		UserID:   c.Query("user_id"),
	})
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener seguimiento
// @Tags         follow-ups
// @Security     Session
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.FollowUpResponse
// @Router       /api/follow-ups/{id} [get]
func (h *FollowUpHandler) Get(c *fiber.Ctx) error { return getOne(c, h.uc.Get) }

// Create godoc
// @Summary      Programar seguimiento
// @Tags         follow-ups
// @Security     Session
// @Accept       json
// @Param        body  body  dto.CreateFollowUpRequest  true  "Seguimiento"
// @Success      201   {object}  dto.FollowUpResponse
// @Router       /api/follow-ups [post]
func (h *FollowUpHandler) Create(c *fiber.Ctx) error { return createOne(c, h.uc.Create) }

// Update godoc
// @Summary      Actualizar seguimiento
// @Tags         follow-ups
// @Security     Session
// @Accept       json
// @Param        id    path  string                     true  "ID"
// @Param        body  body  dto.UpdateFollowUpRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.FollowUpResponse
// @Router       /api/follow-ups/{id} [put]
func (h *FollowUpHandler) Update(c *fiber.Ctx) error { return updateOne(c, h.uc.Update) }

// Delete godoc
// @Summary      Cancelar seguimiento
// @Tags         follow-ups
// @Security     Session
// @Param        id   path  string  true  "ID"
// @Success      204
// @Router       /api/follow-ups/{id} [delete]
func (h *FollowUpHandler) Delete(c *fiber.Ctx) error { return deleteOne(c, h.uc.Delete) }
