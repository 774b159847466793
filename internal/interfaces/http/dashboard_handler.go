package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bitumen-api/internal/application/dashboard"
)

// DashboardHandler tarjetas de la pantalla de inicio.
type DashboardHandler struct {
	summary *dashboard.DashboardUseCase
}

func NewDashboardHandler(summary *dashboard.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{summary: summary}
}

// GetSummary godoc
// @Summary      Resumen del dashboard
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  dto.DashboardSummaryResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/dashboard/summary [get]
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	out, err := h.summary.Summary(c.UserContext(), CurrentUser(c))
	if err != nil {
		return err
	}
	// Cifras del momento: el navegador no debe reutilizarlas.
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.JSON(out)
}
