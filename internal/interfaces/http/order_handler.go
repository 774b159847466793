package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bitumen-api/internal/application/crm"
	"github.com/jhoicas/bitumen-api/internal/domain/repository"
)

// OrderHandler maneja pedidos (ORDER_WORKFLOW).
type OrderHandler struct {
	uc *crm.OrderUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *crm.OrderUseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// List godoc
// @Summary      Listar pedidos
// @Tags         orders
// @Security     Session
// @Produce      json
// @Param        status           query  string  false  "Estado"
// @Param        client_id        query  string  false  "Cliente"
// @Param        sales_person_id  query  string  false  "Vendedor"
// @Param        search           query  string  false  "Número de pedido"
// @Param        limit            query  int     false  "Límite"  default(20)
// @Param        offset           query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.ListResponse[dto.OrderResponse]
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), CurrentUser(c), repository.OrderFilter{
		Page:          pageFrom(c),
		Status:        c.Query("status"),
		ClientID:      c.Query("client_id"),
		SalesPersonID: c.Query("sales_person_id"),
		Search:        c.Query("search"),
	})
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener pedido con sus líneas
// @Tags         orders
// @Security     Session
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) Get(c *fiber.Ctx) error { return getOne(c, h.uc.Get) }

// Create godoc
// @Summary      Crear pedido
// @Description  rate 0 es válido; el total se recalcula con las líneas.
// @Tags         orders
// @Security     Session
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "Pedido y líneas"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error { return createOne(c, h.uc.Create) }

// Update godoc
// @Summary      Actualizar pedido
// @Tags         orders
// @Security     Session
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del pedido"
// @Param        body  body  dto.UpdateOrderRequest  true  "Campos a actualizar; items reemplaza todas las líneas"
// @Success      200   {object}  dto.OrderResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [put]
func (h *OrderHandler) Update(c *fiber.Ctx) error { return updateOne(c, h.uc.Update) }

// UpdateStatus godoc
// @Summary      Cambiar estado del pedido
// @Tags         orders
// @Security     Session
// @Accept       json
// @Produce      json
// @Param        id    path  string                        true  "ID del pedido"
// @Param        body  body  dto.UpdateOrderStatusRequest  true  "Nuevo estado"
// @Success      200   {object}  dto.OrderResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error { return updateOne(c, h.uc.UpdateStatus) }

// Delete godoc
// @Summary      Cancelar pedido
// @Tags         orders
// @Security     Session
// @Param        id   path  string  true  "ID del pedido"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [delete]
func (h *OrderHandler) Delete(c *fiber.Ctx) error { return deleteOne(c, h.uc.Delete) }
