package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bitumen-api/internal/application/dto"
	"github.com/jhoicas/bitumen-api/internal/application/permission"
	"github.com/jhoicas/bitumen-api/internal/domain"
	"github.com/jhoicas/bitumen-api/internal/domain/navigation"
)

// AccessHandler permisos propios y ajenos, y el menú filtrado.
type AccessHandler struct {
	perms   *permission.PermissionUseCase
	menu    navigation.Menu
	checker navigation.ViewChecker
}

// NewAccessHandler construye el handler.
func NewAccessHandler(perms *permission.PermissionUseCase, menu navigation.Menu, checker navigation.ViewChecker) *AccessHandler {
	return &AccessHandler{perms: perms, menu: menu, checker: checker}
}

// MyPermissions godoc
// @Summary      Permisos efectivos del usuario autenticado
// @Tags         permissions
// @Security     Session
// @Produce      json
// @Success      200  {object}  dto.PermissionsResponse
// @Router       /api/permissions/me [get]
func (h *AccessHandler) MyPermissions(c *fiber.Ctx) error {
	out, err := h.perms.MyPermissions(c.UserContext(), CurrentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// UserPermissions godoc
// @Summary      Permisos de un usuario
// @Tags         permissions
// @Security     Session
// @Produce      json
// @Param        id   path  string  true  "ID del usuario"
// @Success      200  {object}  dto.PermissionsResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/users/{id}/permissions [get]
func (h *AccessHandler) UserPermissions(c *fiber.Ctx) error {
	out, err := h.perms.ListForUser(c.UserContext(), CurrentUser(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// SetUserPermissions godoc
// @Summary      Reemplazar permisos de un usuario
// @Tags         permissions
// @Security     Session
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID del usuario"
// @Param        body  body  dto.SetPermissionsRequest  true  "Conjunto completo de permisos"
// @Success      200   {object}  dto.PermissionsResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/users/{id}/permissions [put]
func (h *AccessHandler) SetUserPermissions(c *fiber.Ctx) error {
	var in dto.SetPermissionsRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.perms.SetForUser(c.UserContext(), CurrentUser(c), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Navigation godoc
// @Summary      Menú visible para el usuario
// @Description  Ítems y secciones sin permiso VIEW se omiten; una sección vacía desaparece.
// @Tags         navigation
// @Security     Session
// @Produce      json
// @Success      200  {object}  navigation.Menu
// @Router       /api/navigation [get]
func (h *AccessHandler) Navigation(c *fiber.Ctx) error {
	user := CurrentUser(c)
	if user == nil {
		return domain.ErrUnauthorized
	}
	out, err := navigation.Filter(c.UserContext(), h.menu, user, h.checker)
	if err != nil {
		return err
	}
	return c.JSON(out)
}
