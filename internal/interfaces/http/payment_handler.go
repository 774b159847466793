package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bitumen-api/internal/application/crm"
	"github.com/jhoicas/bitumen-api/internal/domain/repository"
)

// PaymentHandler maneja crédito y pagos (CREDIT_PAYMENTS).
type PaymentHandler struct {
	uc *crm.PaymentUseCase
}

// NewPaymentHandler construye el handler.
func NewPaymentHandler(uc *crm.PaymentUseCase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

// List godoc
// @Summary      Listar pagos
// @Tags         payments
// @Security     Session
// @Produce      json
// @Param        status     query  string  false  "Estado"
// @Param        client_id  query  string  false  "Cliente"
// @Param        mode       query  string  false  "CASH | CHEQUE | NEFT | RTGS | UPI"
// @Success      200  {object}  dto.ListResponse[dto.PaymentResponse]
// @Router       /api/payments [get]
func (h *PaymentHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), CurrentUser(c), repository.PaymentFilter{
		Page:     pageFrom(c),
		Status:   c.Query("status"),
		ClientID: c.Query("client_id"),
		Mode:     c.Query("mode"),
	})
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener pago
// @Tags         payments
// @Security     Session
// @Param        id   path  string  true  "ID del pago"
// @Success      200  {object}  dto.PaymentResponse
// @Router       /api/payments/{id} [get]
func (h *PaymentHandler) Get(c *fiber.Ctx) error { return getOne(c, h.uc.Get) }

// Create godoc
// @Summary      Registrar pago
// @Description  Recalcula el saldo pendiente del cliente.
// @Tags         payments
// @Security     Session
// @Accept       json
// @Param        body  body  dto.CreatePaymentRequest  true  "Pago"
// @Success      201   {object}  dto.PaymentResponse
// @Router       /api/payments [post]
func (h *PaymentHandler) Create(c *fiber.Ctx) error { return createOne(c, h.uc.Create) }

// Update godoc
// @Summary      Actualizar pago
// @Tags         payments
// @Security     Session
// @Accept       json
// @Param        id    path  string                    true  "ID del pago"
// @Param        body  body  dto.UpdatePaymentRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.PaymentResponse
// @Router       /api/payments/{id} [put]
func (h *PaymentHandler) Update(c *fiber.Ctx) error { return updateOne(c, h.uc.Update) }

// Delete godoc
// @Summary      Anular pago
// @Tags         payments
// @Security     Session
// @Param        id   path  string  true  "ID del pago"
// @Success      204
// @Router       /api/payments/{id} [delete]
func (h *PaymentHandler) Delete(c *fiber.Ctx) error { return deleteOne(c, h.uc.Delete) }
