package crm

import (
	"time"

	"github.com/jhoicas/bitumen-api/internal/application/dto"
	"github.com/jhoicas/bitumen-api/internal/domain/entity"
)

func toClientResponse(c *entity.Client) dto.ClientResponse {
	return dto.ClientResponse{
		ID:                c.ID,
		CompanyName:       c.CompanyName,
		ContactPerson:     c.ContactPerson,
		Phone:             c.Phone,
		Email:             c.Email,
		GSTIN:             c.GSTIN,
		Address:           c.Address,
		City:              c.City,
		State:             c.State,
		Category:          string(c.Category),
		CreditLimit:       c.CreditLimit,
		CreditDays:        c.CreditDays,
		OutstandingAmount: c.OutstandingAmount,
		SalesPersonID:     c.SalesPersonID,
		TallyLedgerName:   c.TallyLedgerName,
		Status:            string(c.Status),
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}

func toOrderResponse(o *entity.Order) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, dto.OrderItemResponse{
			ID:          it.ID,
			ProductName: it.ProductName,
			Grade:       it.Grade,
			Quantity:    it.Quantity,
			Unit:        it.Unit,
			Rate:        it.Rate,
			Amount:      it.Amount().Round(2),
		})
	}
	return dto.OrderResponse{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		ClientID:      o.ClientID,
		SalesPersonID: o.SalesPersonID,
		OrderDate:     o.OrderDate,
		DeliveryDate:  o.DeliveryDate,
		Status:        string(o.Status),
		Notes:         o.Notes,
		TotalAmount:   o.TotalAmount,
		Items:         items,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func toTaskResponse(t *entity.Task) dto.TaskResponse {
	return dto.TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		AssigneeID:  t.AssigneeID,
		ClientID:    t.ClientID,
		DueDate:     t.DueDate,
		Priority:    t.Priority,
		Status:      string(t.Status),
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toPaymentResponse(p *entity.Payment) dto.PaymentResponse {
	return dto.PaymentResponse{
		ID:          p.ID,
		ClientID:    p.ClientID,
		OrderID:     p.OrderID,
		Amount:      p.Amount,
		PaymentDate: p.PaymentDate,
		DueDate:     p.DueDate,
		Mode:        p.Mode,
		Reference:   p.Reference,
		Status:      string(p.Status),
		Notes:       p.Notes,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toFollowUpResponse(f *entity.FollowUp) dto.FollowUpResponse {
	return dto.FollowUpResponse{
		ID:               f.ID,
		ClientID:         f.ClientID,
		UserID:           f.UserID,
		FollowUpDate:     f.FollowUpDate,
		Type:             f.Type,
		Notes:            f.Notes,
		Outcome:          f.Outcome,
		NextFollowUpDate: f.NextFollowUpDate,
		Status:           string(f.Status),
		CreatedAt:        f.CreatedAt,
		UpdatedAt:        f.UpdatedAt,
	}
}

func toTourAdvanceResponse(t *entity.TourAdvance) dto.TourAdvanceResponse {
	return dto.TourAdvanceResponse{
		ID:              t.ID,
		EmployeeID:      t.EmployeeID,
		Purpose:         t.Purpose,
		Destination:     t.Destination,
		StartDate:       t.StartDate,
		EndDate:         t.EndDate,
		AmountRequested: t.AmountRequested,
		AmountApproved:  t.AmountApproved,
		AmountSpent:     t.AmountSpent,
		Status:          string(t.Status),
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

func toEWayBillResponse(e *entity.EWayBill, now time.Time) dto.EWayBillResponse {
	return dto.EWayBillResponse{
		ID:             e.ID,
		EWayBillNumber: e.EWayBillNumber,
		ClientID:       e.ClientID,
		OrderID:        e.OrderID,
		VehicleNumber:  e.VehicleNumber,
		FromPlace:      e.FromPlace,
		ToPlace:        e.ToPlace,
		DistanceKM:     e.DistanceKM,
		GeneratedDate:  e.GeneratedDate,
		ValidUntil:     e.ValidUntil,
		InvoiceValue:   e.InvoiceValue,
		Status:         string(e.EffectiveStatus(now)),
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

// mapList aplica fn a cada fila; nunca devuelve nil.
func mapList[E any, R any](rows []*E, fn func(*E) R) []R {
	out := make([]R, 0, len(rows))
	for _, r := range rows {
		out = append(out, fn(r))
	}
	return out
}
