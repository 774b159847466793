package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bitumen-api/internal/application/dto"
	"github.com/jhoicas/bitumen-api/internal/domain/access"
	"github.com/jhoicas/bitumen-api/internal/domain/entity"
	"github.com/jhoicas/bitumen-api/pkg/jwt"
)

// Locals keys.
const (
	LocalUser         = "user"
	LocalSessionToken = "session_token"
	LocalAgentID      = "agent_id"
	LocalAgentReal    = "agent_real"
)

// sessionResolver contrato mínimo del middleware de sesión (lo implementa *auth.AuthUseCase).
type sessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*entity.User, error)
}

// SessionMiddleware resuelve la sesión desde la cookie o desde "Authorization: Bearer <token>"
// y deja el usuario en c.Locals. Sin sesión válida responde 401.
func SessionMiddleware(resolver sessionResolver, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := sessionToken(c, cookieName)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_SESSION", Message: "sesión requerida"})
		}
		user, err := resolver.ResolveSession(c.UserContext(), token)
		if err != nil {
			return err
		}
		if user == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_SESSION", Message: "sesión inválida o expirada"})
		}
		c.Locals(LocalUser, user)
		c.Locals(LocalSessionToken, token)
		return c.Next()
	}
}

// sessionToken la cookie tiene prioridad sobre el header.
func sessionToken(c *fiber.Ctx, cookieName string) string {
	if v := strings.TrimSpace(c.Cookies(cookieName)); v != "" {
		return v
	}
	return bearer(c)
}

func bearer(c *fiber.Ctx) string {
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// CurrentUser devuelve el usuario autenticado (después de SessionMiddleware).
func CurrentUser(c *fiber.Ctx) *entity.User {
	u, _ := c.Locals(LocalUser).(*entity.User)
	return u
}

// CurrentSessionToken devuelve el token de la sesión en curso.
func CurrentSessionToken(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalSessionToken).(string)
	return s
}

// AgentMiddleware valida el JWT del agente de sincronización y extrae agent_id y modo.
// Con secret vacío los endpoints de agente quedan deshabilitados (503).
func AgentMiddleware(secret, issuer string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if secret == "" {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "SYNC_DISABLED", Message: "sincronización deshabilitada"})
		}
		tokenString := bearer(c)
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "formato: Bearer <token>"})
		}
		claims, err := jwt.ParseAgent(secret, issuer, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token de agente inválido o expirado"})
		}
		c.Locals(LocalAgentID, claims.AgentID)
		c.Locals(LocalAgentReal, claims.IsReal())
		return c.Next()
	}
}

// GetAgent devuelve la identidad del agente (después de AgentMiddleware).
func GetAgent(c *fiber.Ctx) (id string, isReal bool) {
	id, _ = c.Locals(LocalAgentID).(string)
	isReal, _ = c.Locals(LocalAgentReal).(bool)
	return id, isReal
}

// permissionChecker lo implementa *access.Resolver.
type permissionChecker interface {
	Require(ctx context.Context, user *entity.User, module access.Module, action access.Action) error
}

// RequirePermission exige (módulo, acción) al usuario de la sesión; va después de SessionMiddleware.
// En escrituras corre antes de leer el cuerpo; también protege rutas sin caso de uso propio (WebSocket).
func RequirePermission(module access.Module, action access.Action, checker permissionChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := checker.Require(c.UserContext(), CurrentUser(c), module, action); err != nil {
			return err
		}
		return c.Next()
	}
}
