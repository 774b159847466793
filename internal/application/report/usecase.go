package report

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/bitumen-api/internal/application/crm"
	"github.com/jhoicas/bitumen-api/internal/application/dto"
	"github.com/jhoicas/bitumen-api/internal/domain/access"
	"github.com/jhoicas/bitumen-api/internal/domain/entity"
	"github.com/jhoicas/bitumen-api/internal/domain/repository"
)

// maxRows tope de filas por exportación.
const maxRows = 5000

// ReportUseCase exportaciones (módulo REPORTS). Primero exige REPORTS/VIEW; luego las filas
// se leen a través de los casos de uso CRUD, que exigen VIEW del módulo correspondiente.
type ReportUseCase struct {
	gate     crm.Gate
	clients  *crm.ClientUseCase
	orders   *crm.OrderUseCase
	payments *crm.PaymentUseCase
	pdf      PDFRenderer
	now      func() time.Time
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(gate crm.Gate, svc *crm.Services, pdf PDFRenderer) *ReportUseCase {
	return &ReportUseCase{
		gate:     gate,
		clients:  svc.Clients,
		orders:   svc.Orders,
		payments: svc.Payments,
		pdf:      pdf,
		now:      time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *ReportUseCase) WithClock(now func() time.Time) *ReportUseCase {
	uc.now = now
	return uc
}

func (uc *ReportUseCase) gateReports(ctx context.Context, actor *entity.User) error {
	return uc.gate.Require(ctx, actor, access.ModuleReports, access.ActionView)
}

// collect pagina un listado hasta agotarlo o llegar a maxRows.
func collect[T any](list func(page repository.Page) (*dto.ListResponse[T], error)) ([]T, error) {
	var out []T
	for offset := 0; offset < maxRows; offset += repository.MaxLimit {
		res, err := list(repository.Page{Limit: repository.MaxLimit, Offset: offset})
		if err != nil {
			return nil, err
		}
		out = append(out, res.Items...)
		if len(res.Items) < repository.MaxLimit {
			break
		}
	}
	return out, nil
}

// ─── Clientes ────────────────────────────────────────────────────────────────

var clientColumns = []Column{
	{Header: "Company", Width: 3},
	{Header: "Contact", Width: 2},
	{Header: "Phone", Width: 2},
	{Header: "GSTIN", Width: 2},
	{Header: "City", Width: 1},
	{Header: "Category", Width: 1, Align: AlignCenter},
	{Header: "Outstanding", Width: 1, Align: AlignRight},
}

func (uc *ReportUseCase) clientRows(ctx context.Context, actor *entity.User, f repository.ClientFilter) ([]dto.ClientResponse, error) {
	if err := uc.gateReports(ctx, actor); err != nil {
		return nil, err
	}
	return collect(func(p repository.Page) (*dto.ListResponse[dto.ClientResponse], error) {
		f.Page = p
		return uc.clients.List(ctx, actor, f)
	})
}

// ClientsCSV exporta clientes en CSV.
func (uc *ReportUseCase) ClientsCSV(ctx context.Context, actor *entity.User, f repository.ClientFilter) ([]byte, error) {
	rows, err := uc.clientRows(ctx, actor, f)
	if err != nil {
		return nil, err
	}
	header := []string{"id", "company_name", "contact_person", "phone", "email", "gstin", "city", "state",
		"category", "credit_limit", "credit_days", "outstanding_amount", "status", "tally_ledger_name"}
	out := make([][]string, 0, len(rows))
	for _, c := range rows {
		ledger := ""
		if c.TallyLedgerName != nil {
			ledger = *c.TallyLedgerName
		}
		out = append(out, []string{c.ID, c.CompanyName, c.ContactPerson, c.Phone, c.Email, c.GSTIN, c.City, c.State,
			c.Category, csvAmountPtr(c.CreditLimit), csvInt(c.CreditDays), csvAmount(c.OutstandingAmount), c.Status, ledger})
	}
	return writeCSV(header, out)
}

// ClientsPDF exporta clientes en PDF con el saldo total al pie.
func (uc *ReportUseCase) ClientsPDF(ctx context.Context, actor *entity.User, f repository.ClientFilter) ([]byte, error) {
	rows, err := uc.clientRows(ctx, actor, f)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	doc := Document{Title: "Client Report", Subtitle: fmt.Sprintf("%d clients", len(rows)), GeneratedAt: uc.now(), Columns: clientColumns}
	for _, c := range rows {
		total = total.Add(c.OutstandingAmount)
		doc.Rows = append(doc.Rows, []string{c.CompanyName, c.ContactPerson, c.Phone, c.GSTIN, c.City, c.Category, FormatINR(c.OutstandingAmount)})
	}
	doc.Footer = []string{"Total outstanding: " + FormatINR(total)}
	return uc.pdf.Render(ctx, doc)
}

// ─── Pagos ───────────────────────────────────────────────────────────────────

var paymentColumns = []Column{
	{Header: "Date", Width: 2},
	{Header: "Client", Width: 3},
	{Header: "Mode", Width: 1, Align: AlignCenter},
	{Header: "Reference", Width: 2},
	{Header: "Status", Width: 2, Align: AlignCenter},
	{Header: "Amount", Width: 2, Align: AlignRight},
}

func (uc *ReportUseCase) paymentRows(ctx context.Context, actor *entity.User, f repository.PaymentFilter) ([]dto.PaymentResponse, error) {
	if err := uc.gateReports(ctx, actor); err != nil {
		return nil, err
	}
	return collect(func(p repository.Page) (*dto.ListResponse[dto.PaymentResponse], error) {
		f.Page = p
		return uc.payments.List(ctx, actor, f)
	})
}

// clientNames resuelve nombres de cliente para las filas; si no hay VIEW de clientes se usa el ID.
func (uc *ReportUseCase) clientNames(ctx context.Context, actor *entity.User) map[string]string {
	names := map[string]string{}
	rows, err := collect(func(p repository.Page) (*dto.ListResponse[dto.ClientResponse], error) {
		return uc.clients.List(ctx, actor, repository.ClientFilter{Page: p})
	})
	if err != nil {
		return names
	}
	for _, c := range rows {
		names[c.ID] = c.CompanyName
	}
	return names
}

// PaymentsCSV exporta pagos en CSV.
func (uc *ReportUseCase) PaymentsCSV(ctx context.Context, actor *entity.User, f repository.PaymentFilter) ([]byte, error) {
	rows, err := uc.paymentRows(ctx, actor, f)
	if err != nil {
		return nil, err
	}
	header := []string{"id", "client_id", "order_id", "amount", "payment_date", "due_date", "mode", "reference", "status"}
	out := make([][]string, 0, len(rows))
	for _, p := range rows {
		order := ""
		if p.OrderID != nil {
			order = *p.OrderID
		}
		out = append(out, []string{p.ID, p.ClientID, order, csvAmount(p.Amount), csvDate(&p.PaymentDate), csvDate(p.DueDate), p.Mode, p.Reference, p.Status})
	}
	return writeCSV(header, out)
}

// PaymentsPDF exporta pagos en PDF con totales por estado pendiente/recibido.
func (uc *ReportUseCase) PaymentsPDF(ctx context.Context, actor *entity.User, f repository.PaymentFilter) ([]byte, error) {
	rows, err := uc.paymentRows(ctx, actor, f)
	if err != nil {
		return nil, err
	}
	names := uc.clientNames(ctx, actor)
	outstanding, received := decimal.Zero, decimal.Zero
	doc := Document{Title: "Credit & Payments Report", Subtitle: fmt.Sprintf("%d payments", len(rows)), GeneratedAt: uc.now(), Columns: paymentColumns}
	for _, p := range rows {
		switch entity.PaymentStatus(p.Status) {
		case entity.PaymentPending, entity.PaymentOverdue:
			outstanding = outstanding.Add(p.Amount)
		case entity.PaymentReceived:
			received = received.Add(p.Amount)
		}
		client := names[p.ClientID]
		if client == "" {
			client = p.ClientID
		}
		doc.Rows = append(doc.Rows, []string{p.PaymentDate.Format("02-01-2006"), client, p.Mode, p.Reference, p.Status, FormatINR(p.Amount)})
	}
	doc.Footer = []string{"Outstanding: " + FormatINR(outstanding), "Received: " + FormatINR(received)}
	return uc.pdf.Render(ctx, doc)
}

// ─── Pedidos ─────────────────────────────────────────────────────────────────

// OrdersCSV exporta pedidos en CSV, una fila por línea de pedido.
func (uc *ReportUseCase) OrdersCSV(ctx context.Context, actor *entity.User, f repository.OrderFilter) ([]byte, error) {
	if err := uc.gateReports(ctx, actor); err != nil {
		return nil, err
	}
	orders, err := collect(func(p repository.Page) (*dto.ListResponse[dto.OrderResponse], error) {
		f.Page = p
		return uc.orders.List(ctx, actor, f)
	})
	if err != nil {
		return nil, err
	}
	header := []string{"order_number", "order_date", "client_id", "status", "product_name", "grade", "quantity", "unit", "rate", "amount", "order_total"}
	var out [][]string
	for _, o := range orders {
		for _, it := range o.Items {
			out = append(out, []string{o.OrderNumber, csvDate(&o.OrderDate), o.ClientID, o.Status,
				it.ProductName, it.Grade, it.Quantity.String(), it.Unit, csvAmount(it.Rate), csvAmount(it.Amount), csvAmount(o.TotalAmount)})
		}
	}
	return writeCSV(header, out)
}
