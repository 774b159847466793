package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bitumen-api/internal/application/dto"
	"github.com/jhoicas/bitumen-api/internal/application/tallysync"
	"github.com/jhoicas/bitumen-api/internal/domain/entity"
	"github.com/jhoicas/bitumen-api/internal/infrastructure/tally"
)

// SyncHandler endpoints del agente de Tally y estado de la sincronización.
type SyncHandler struct {
	bridge *tallysync.Bridge
}

// NewSyncHandler construye el handler.
func NewSyncHandler(bridge *tallysync.Bridge) *SyncHandler {
	return &SyncHandler{bridge: bridge}
}

// Heartbeat godoc
// @Summary      Latido del agente
// @Description  El modo real/mock sale del token del agente.
// @Tags         sync
// @Security     AgentToken
// @Accept       json
// @Produce      json
// @Param        body  body  dto.HeartbeatRequest  false  "Datos del equipo"
// @Success      200   {object}  dto.AgentResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/sync/heartbeat [post]
func (h *SyncHandler) Heartbeat(c *fiber.Ctx) error {
	var in dto.HeartbeatRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	id, isReal := GetAgent(c)
	out, err := h.bridge.Heartbeat(id, isReal, in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Ledgers godoc
// @Summary      Importar ledgers de deudores
// @Description  Acepta JSON ({"ledgers": [...]}) o el ENVELOPE XML exportado por Tally.
// @Description  503 si no hay un agente real conectado.
// @Tags         sync
// @Security     AgentToken
// @Accept       json
// @Accept       xml
// @Produce      json
// @Param        body  body  dto.LedgersRequest  true  "Ledgers"
// @Success      200   {object}  dto.RelayResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/sync/ledgers [post]
func (h *SyncHandler) Ledgers(c *fiber.Ctx) error {
	var (
		records []entity.LedgerRecord
		err     error
	)
	if isXML(c) {
		records, err = tally.ParseLedgers(c.Body())
	} else {
		var in dto.LedgersRequest
		if perr := c.BodyParser(&in); perr != nil {
			return badBody(c)
		}
		records, err = tallysync.LedgersFromDTO(in)
	}
	if err != nil {
		return err
	}
	id, _ := GetAgent(c)
	out, err := h.bridge.Relay(c.UserContext(), id, records)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

func isXML(c *fiber.Ctx) bool {
	ct := strings.ToLower(c.Get(fiber.HeaderContentType))
	return strings.Contains(ct, "xml")
}

// Status godoc
// @Summary      Estado de la conexión con Tally
// @Tags         sync
// @Security     Session
// @Produce      json
// @Success      200  {object}  dto.SyncStatusResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/sync/status [get]
func (h *SyncHandler) Status(c *fiber.Ctx) error {
	out, err := h.bridge.Status(c.UserContext(), CurrentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}
