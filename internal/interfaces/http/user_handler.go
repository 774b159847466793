package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bitumen-api/internal/application/crm"
	"github.com/jhoicas/bitumen-api/internal/domain/repository"
)

// UserHandler administración de usuarios (USER_MANAGEMENT).
type UserHandler struct {
	uc *crm.UserUseCase
}

// NewUserHandler construye el handler.
func NewUserHandler(uc *crm.UserUseCase) *UserHandler {
	return &UserHandler{uc: uc}
}

// List godoc
// @Summary      Listar usuarios
// @Tags         users
// @Security     Session
// @Param        role    query  string  false  "Rol"
// @Param        active  query  bool    false  "Solo activos / inactivos"
// @Param        search  query  string  false  "Usuario, nombre o email"
// @Success      200  {object}  dto.ListResponse[dto.UserResponse]
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	f := repository.UserFilter{Page: pageFrom(c), Role: c.Query("role"), Search: c.Query("search")}
	if v := c.Query("active"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			f.Active = &b
		}
	}
	out, err := h.uc.List(c.UserContext(), CurrentUser(c), f)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener usuario
// @Tags         users
// @Security     Session
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.UserResponse
// @Router       /api/users/{id} [get]
func (h *UserHandler) Get(c *fiber.Ctx) error { return getOne(c, h.uc.Get) }

// Create godoc
// @Summary      Crear usuario
// @Description  Recibe los permisos por defecto de su rol.
// @Tags         users
// @Security     Session
// @Accept       json
// @Param        body  body  dto.CreateUserRequest  true  "Usuario"
// @Success      201   {object}  dto.UserResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/users [post]
func (h *UserHandler) Create(c *fiber.Ctx) error { return createOne(c, h.uc.Create) }

// Update godoc
// @Summary      Actualizar usuario
// @Tags         users
// @Security     Session
// @Accept       json
// @Param        id    path  string                 true  "ID"
// @Param        body  body  dto.UpdateUserRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.UserResponse
// @Router       /api/users/{id} [put]
func (h *UserHandler) Update(c *fiber.Ctx) error { return updateOne(c, h.uc.Update) }

// Delete godoc
// @Summary      Desactivar usuario
// @Description  Desactiva la cuenta y cierra todas sus sesiones.
// @Tags         users
// @Security     Session
// @Param        id   path  string  true  "ID"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/users/{id} [delete]
func (h *UserHandler) Delete(c *fiber.Ctx) error { return deleteOne(c, h.uc.Delete) }
