package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bitumen-api/internal/application/report"
	"github.com/jhoicas/bitumen-api/internal/domain/repository"
)

// ReportHandler descargas CSV/PDF (REPORTS).
type ReportHandler struct {
	uc *report.ReportUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *report.ReportUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

func attachment(c *fiber.Ctx, contentType, name string, body []byte) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, name))
	return c.Send(body)
}

func clientFilter(c *fiber.Ctx) repository.ClientFilter {
	return repository.ClientFilter{
		Status:        c.Query("status"),
		Category:      c.Query("category"),
		SalesPersonID: c.Query("sales_person_id"),
		Search:        c.Query("search"),
	}
}

func paymentFilter(c *fiber.Ctx) repository.PaymentFilter {
	return repository.PaymentFilter{Status: c.Query("status"), ClientID: c.Query("client_id"), Mode: c.Query("mode")}
}

// ClientsCSV godoc
// @Summary      Exportar clientes (CSV)
// @Tags         reports
// @Security     Session
// @Produce      text/csv
// @Success      200  {file}  file
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/reports/clients.csv [get]
func (h *ReportHandler) ClientsCSV(c *fiber.Ctx) error {
	out, err := h.uc.ClientsCSV(c.UserContext(), CurrentUser(c), clientFilter(c))
	if err != nil {
		return err
	}
	return attachment(c, "text/csv; charset=utf-8", "clients.csv", out)
}

// ClientsPDF godoc
// @Summary      Exportar clientes (PDF)
// @Tags         reports
// @Security     Session
// @Produce      application/pdf
// @Success      200  {file}  file
// @Router       /api/reports/clients.pdf [get]
func (h *ReportHandler) ClientsPDF(c *fiber.Ctx) error {
	out, err := h.uc.ClientsPDF(c.UserContext(), CurrentUser(c), clientFilter(c))
	if err != nil {
		return err
	}
	return attachment(c, "application/pdf", "clients.pdf", out)
}

// PaymentsCSV godoc
// @Summary      Exportar pagos (CSV)
// @Tags         reports
// @Security     Session
// @Produce      text/csv
// @Success      200  {file}  file
// @Router       /api/reports/payments.csv [get]
func (h *ReportHandler) PaymentsCSV(c *fiber.Ctx) error {
	out, err := h.uc.PaymentsCSV(c.UserContext(), CurrentUser(c), paymentFilter(c))
	if err != nil {
		return err
	}
	return attachment(c, "text/csv; charset=utf-8", "payments.csv", out)
}

// PaymentsPDF godoc
// @Summary      Exportar pagos (PDF)
// @Tags         reports
// @Security     Session
// @Produce      application/pdf
// @Success      200  {file}  file
// @Router       /api/reports/payments.pdf [get]
func (h *ReportHandler) PaymentsPDF(c *fiber.Ctx) error {
	out, err := h.uc.PaymentsPDF(c.UserContext(), CurrentUser(c), paymentFilter(c))
	if err != nil {
		return err
	}
	return attachment(c, "application/pdf", "payments.pdf", out)
}

// OrdersCSV godoc
// @Summary      Exportar pedidos (CSV, una fila por línea)
// @Tags         reports
// @Security     Session
// @Produce      text/csv
// @Success      200  {file}  file
// @Router       /api/reports/orders.csv [get]
func (h *ReportHandler) OrdersCSV(c *fiber.Ctx) error {
	out, err := h.uc.OrdersCSV(c.UserContext(), CurrentUser(c), repository.OrderFilter{
		Status: c.Query("status"), ClientID: c.Query("client_id"), SalesPersonID: c.Query("sales_person_id"),
	})
	if err != nil {
		return err
	}
	return attachment(c, "text/csv; charset=utf-8", "orders.csv", out)
}
