package memory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/bitumen-api/internal/domain/entity"
	"github.com/jhoicas/bitumen-api/internal/domain/repository"
)

var _ repository.DashboardRepository = (*DashboardRepo)(nil)

// DashboardRepo agregados del dashboard calculados sobre el Store.
type DashboardRepo struct{ s *Store }

func (r *DashboardRepo) CountActiveClients(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, c := range r.s.clients {
		if c.Status == entity.ClientActive {
			n++
		}
	}
	return n, nil
}

func (r *DashboardRepo) ClientsByCategory(_ context.Context) ([]repository.CategoryCount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	counts := make(map[entity.ClientCategory]int)
	for _, c := range r.s.clients {
		if c.Status == entity.ClientActive {
			counts[c.Category]++
		}
	}
	out := make([]repository.CategoryCount, 0, len(entity.ClientCategories))
	for _, cat := range entity.ClientCategories {
		if n := counts[cat]; n > 0 {
			out = append(out, repository.CategoryCount{Category: string(cat), Count: n})
		}
	}
	return out, nil
}

func (r *DashboardRepo) OpenOrders(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, o := range r.s.orders {
		if o.Status != entity.OrderDelivered && o.Status != entity.OrderCancelled {
			n++
		}
	}
	return n, nil
}

func (r *DashboardRepo) OrderValueBetween(_ context.Context, from, to time.Time) (decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	total := decimal.Zero
	for _, o := range r.s.orders {
		if o.Status == entity.OrderCancelled {
			continue
		}
		if !o.OrderDate.Before(from) && o.OrderDate.Before(to) {
			total = total.Add(o.TotalAmount)
		}
	}
	return total, nil
}

func (r *DashboardRepo) PendingTasksFor(_ context.Context, userID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, t := range r.s.tasks {
		if t.AssigneeID == userID && t.Status != entity.TaskCompleted {
			n++
		}
	}
	return n, nil
}

func (r *DashboardRepo) OutstandingCredit(_ context.Context) (decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	total := decimal.Zero
	for _, p := range r.s.payments {
		if p.Outstanding() {
			total = total.Add(p.Amount)
		}
	}
	return total, nil
}

func (r *DashboardRepo) OverduePayments(_ context.Context, now time.Time) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, p := range r.s.payments {
		switch {
		case p.Status == entity.PaymentOverdue:
			n++
		case p.Status == entity.PaymentPending && p.DueDate != nil && p.DueDate.Before(now):
			n++
		}
	}
	return n, nil
}

func (r *DashboardRepo) FollowUpsBetween(_ context.Context, from, to time.Time) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, f := range r.s.followUps {
		if f.Status == entity.FollowUpScheduled && !f.FollowUpDate.Before(from) && f.FollowUpDate.Before(to) {
			n++
		}
	}
	return n, nil
}

func (r *DashboardRepo) PendingTourAdvances(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, t := range r.s.tourAdvance {
		if t.Status == entity.TourPending {
			n++
		}
	}
	return n, nil
}
