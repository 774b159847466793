package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bitumen-api/internal/application/crm"
	"github.com/jhoicas/bitumen-api/internal/domain/repository"
)

// ClientHandler maneja las peticiones HTTP de clientes (CLIENT_MANAGEMENT).
type ClientHandler struct {
	uc *crm.ClientUseCase
}

// NewClientHandler construye el handler.
func NewClientHandler(uc *crm.ClientUseCase) *ClientHandler {
	return &ClientHandler{uc: uc}
}

// List godoc
// @Summary      Listar clientes
// @Tags         clients
// @Security     Session
// @Produce      json
// @Param        status           query  string  false  "ACTIVE | INACTIVE"
// @Param        category         query  string  false  "ALFA | BETA | GAMMA | DELTA"
// @Param        sales_person_id  query  string  false  "Vendedor asignado"
// @Param        search           query  string  false  "Empresa, contacto o GSTIN"
// @Param        limit            query  int     false  "Límite"  default(20)
// @Param        offset           query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.ListResponse[dto.ClientResponse]
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/clients [get]
func (h *ClientHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), CurrentUser(c), repository.ClientFilter{
		Page:          pageFrom(c),
		Status:        c.Query("status"),
		Category:      c.Query("category"),
		SalesPersonID: c.Query("sales_person_id"),
		Search:        c.Query("search"),
	})
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener cliente por ID
// @Tags         clients
// @Security     Session
// @Produce      json
// @Param        id   path  string  true  "ID del cliente"
// @Success      200  {object}  dto.ClientResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/clients/{id} [get]
func (h *ClientHandler) Get(c *fiber.Ctx) error { return getOne(c, h.uc.Get) }

// Create godoc
// @Summary      Crear cliente
// @Tags         clients
// @Security     Session
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateClientRequest  true  "Datos del cliente"
// @Success      201   {object}  dto.ClientResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/clients [post]
func (h *ClientHandler) Create(c *fiber.Ctx) error { return createOne(c, h.uc.Create) }

// Update godoc
// @Summary      Actualizar cliente
// @Description  Actualización parcial: los campos ausentes no cambian; credit_limit null lo borra.
// @Tags         clients
// @Security     Session
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID del cliente"
// @Param        body  body  dto.UpdateClientRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.ClientResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/clients/{id} [put]
func (h *ClientHandler) Update(c *fiber.Ctx) error { return updateOne(c, h.uc.Update) }

// Delete godoc
// @Summary      Desactivar cliente
// @Tags         clients
// @Security     Session
// @Param        id   path  string  true  "ID del cliente"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/clients/{id} [delete]
func (h *ClientHandler) Delete(c *fiber.Ctx) error { return deleteOne(c, h.uc.Delete) }
