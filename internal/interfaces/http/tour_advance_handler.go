package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bitumen-api/internal/application/crm"
	"github.com/jhoicas/bitumen-api/internal/domain/repository"
)

// TourAdvanceHandler maneja anticipos de viaje (TOUR_ADVANCES).
type TourAdvanceHandler struct {
	uc *crm.TourAdvanceUseCase
}

// NewTourAdvanceHandler construye el handler.
func NewTourAdvanceHandler(uc *crm.TourAdvanceUseCase) *TourAdvanceHandler {
	return &TourAdvanceHandler{uc: uc}
}

// List godoc
// @Summary      Listar anticipos de viaje
// @Tags         tour-advances
// @Security     Session
// @Param        status       query  string  false  "Estado"
// @Param        employee_id  query  string  false  "Empleado"
// @Success      200  {object}  dto.ListResponse[dto.TourAdvanceResponse]
// @Router       /api/tour-advances [get]
func (h *TourAdvanceHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), CurrentUser(c), repository.TourAdvanceFilter{
		Page:       pageFrom(c),
		Status:     c.Query("status"),
		EmployeeID: c.Query("employee_id"),
	})
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener anticipo
// @Tags         tour-advances
// @Security     Session
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.TourAdvanceResponse
// @Router       /api/tour-advances/{id} [get]
func (h *TourAdvanceHandler) Get(c *fiber.Ctx) error { return getOne(c, h.uc.Get) }

// Create godoc
// @Summary      Solicitar anticipo
// @Tags         tour-advances
// @Security     Session
// @Accept       json
// @Param        body  body  dto.CreateTourAdvanceRequest  true  "Anticipo"
// @Success      201   {object}  dto.TourAdvanceResponse
// @Router       /api/tour-advances [post]
func (h *TourAdvanceHandler) Create(c *fiber.Ctx) error { return createOne(c, h.uc.Create) }

// Update godoc
// @Summary      Actualizar anticipo
// @Tags         tour-advances
// @Security     Session
// @Accept       json
// @Param        id    path  string                        true  "ID"
// @Param        body  body  dto.UpdateTourAdvanceRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.TourAdvanceResponse
// @Router       /api/tour-advances/{id} [put]
func (h *TourAdvanceHandler) Update(c *fiber.Ctx) error { return updateOne(c, h.uc.Update) }

// Delete godoc
// @Summary      Cancelar anticipo
// @Tags         tour-advances
// @Security     Session
// @Param        id   path  string  true  "ID"
// @Success      204
// @Router       /api/tour-advances/{id} [delete]
func (h *TourAdvanceHandler) Delete(c *fiber.Ctx) error { return deleteOne(c, h.uc.Delete) }
