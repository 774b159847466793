package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bitumen-api/internal/application/crm"
	"github.com/jhoicas/bitumen-api/internal/domain/repository"
)

// EWayBillHandler maneja e-way bills de transporte (EWAY_BILLS).
type EWayBillHandler struct {
	uc *crm.EWayBillUseCase
}

// NewEWayBillHandler construye el handler.
func NewEWayBillHandler(uc *crm.EWayBillUseCase) *EWayBillHandler {
	return &EWayBillHandler{uc: uc}
}

// List godoc
// @Summary      Listar e-way bills
// @Tags         eway-bills
// @Security     Session
// @Param        status     query  string  false  "ACTIVE | EXPIRED | CANCELLED"
// @Param        client_id  query  string  false  "Cliente"
// @Param        search     query  string  false  "Número o vehículo"
// @Success      200  {object}  dto.ListResponse[dto.EWayBillResponse]
// @Router       /api/eway-bills [get]
func (h *EWayBillHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), CurrentUser(c), repository.EWayBillFilter{
		Page:     pageFrom(c),
		Status:   c.Query("status"),
		ClientID: c.Query("client_id"),
		Search:   c.Query("search"),
	})
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener e-way bill
// @Tags         eway-bills
// @Security     Session
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.EWayBillResponse
// @Router       /api/eway-bills/{id} [get]
func (h *EWayBillHandler) Get(c *fiber.Ctx) error { return getOne(c, h.uc.Get) }

// Create godoc
// @Summary      Registrar e-way bill
// @Tags         eway-bills
// @Security     Session
// @Accept       json
// @Param        body  body  dto.CreateEWayBillRequest  true  "E-way bill"
// @Success      201   {object}  dto.EWayBillResponse
// @Router       /api/eway-bills [post]
func (h *EWayBillHandler) Create(c *fiber.Ctx) error { return createOne(c, h.uc.Create) }

// Update godoc
// @Summary      Actualizar e-way bill
// @Tags         eway-bills
// @Security     Session
// @Accept       json
// @Param        id    path  string                     true  "ID"
// @Param        body  body  dto.UpdateEWayBillRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.EWayBillResponse
// @Router       /api/eway-bills/{id} [put]
func (h *EWayBillHandler) Update(c *fiber.Ctx) error { return updateOne(c, h.uc.Update) }

// Delete godoc
// @Summary      Cancelar e-way bill
// @Tags         eway-bills
// @Security     Session
// @Param        id   path  string  true  "ID"
// @Success      204
// @Router       /api/eway-bills/{id} [delete]
func (h *EWayBillHandler) Delete(c *fiber.Ctx) error { return deleteOne(c, h.uc.Delete) }
