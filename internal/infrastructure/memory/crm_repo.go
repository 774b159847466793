package memory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/bitumen-api/internal/domain"
	"github.com/jhoicas/bitumen-api/internal/domain/entity"
	"github.com/jhoicas/bitumen-api/internal/domain/repository"
)

var (
	_ repository.ClientRepository      = (*ClientRepo)(nil)
	_ repository.OrderRepository       = (*OrderRepo)(nil)
	_ repository.TaskRepository        = (*TaskRepo)(nil)
	_ repository.PaymentRepository     = (*PaymentRepo)(nil)
	_ repository.FollowUpRepository    = (*FollowUpRepo)(nil)
	_ repository.TourAdvanceRepository = (*TourAdvanceRepo)(nil)
	_ repository.EWayBillRepository    = (*EWayBillRepo)(nil)
)

func newerFirst(a, b time.Time, idA, idB string) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return idA < idB
}

// ─── Clients ─────────────────────────────────────────────────────────────────

// ClientRepo clientes en memoria.
type ClientRepo struct{ s *Store }

func (r *ClientRepo) checkUnique(c *entity.Client) error {
	if c.TallyLedgerName == nil {
		return nil
	}
	for id, other := range r.s.clients {
		if id != c.ID && ptrEq(other.TallyLedgerName, *c.TallyLedgerName) {
			return domain.ErrDuplicate
		}
	}
	return nil
}

func (r *ClientRepo) Create(_ context.Context, c *entity.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.clients[c.ID]; ok {
		return domain.ErrDuplicate
	}
	if err := r.checkUnique(c); err != nil {
		return err
	}
	r.s.clients[c.ID] = *c
	return nil
}

func (r *ClientRepo) GetByID(_ context.Context, id string) (*entity.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.clients[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *ClientRepo) GetByLedgerName(_ context.Context, ledgerName string) (*entity.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.clients {
		if ptrEq(c.TallyLedgerName, ledgerName) {
			out := c
			return &out, nil
		}
	}
	return nil, nil
}

func (r *ClientRepo) List(_ context.Context, f repository.ClientFilter) ([]*entity.Client, error) {
	r.s.mu.RLock()
	var rows []*entity.Client
	for _, c := range r.s.clients {
		if f.Status != "" && string(c.Status) != f.Status {
			continue
		}
		if f.Category != "" && string(c.Category) != f.Category {
			continue
		}
		if f.SalesPersonID != "" && !ptrEq(c.SalesPersonID, f.SalesPersonID) {
			continue
		}
		if f.Search != "" && !containsFold(c.CompanyName, f.Search) && !containsFold(c.ContactPerson, f.Search) && !containsFold(c.GSTIN, f.Search) {
			continue
		}
		out := c
		rows = append(rows, &out)
	}
	r.s.mu.RUnlock()
	return paginate(rows, func(a, b *entity.Client) bool {
		if a.CompanyName != b.CompanyName {
			return a.CompanyName < b.CompanyName
		}
		return a.ID < b.ID
	}, f.Page), nil
}

func (r *ClientRepo) Update(_ context.Context, c *entity.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.clients[c.ID]; !ok {
		return domain.ErrNotFound
	}
	if err := r.checkUnique(c); err != nil {
		return err
	}
	r.s.clients[c.ID] = *c
	return nil
}

func (r *ClientRepo) UpdateOutstanding(_ context.Context, clientID string, amount decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.clients[clientID]
	if !ok {
		return domain.ErrNotFound
	}
	c.OutstandingAmount = amount
	r.s.clients[clientID] = c
	return nil
}

// ─── Orders ──────────────────────────────────────────────────────────────────

// OrderRepo pedidos con sus líneas en memoria.
type OrderRepo struct{ s *Store }

func cloneOrder(o entity.Order) entity.Order {
	if o.Items != nil {
		items := make([]entity.OrderItem, len(o.Items))
		copy(items, o.Items)
		o.Items = items
	}
	return o
}

func (r *OrderRepo) Create(_ context.Context, o *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[o.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, other := range r.s.orders {
		if other.OrderNumber == o.OrderNumber {
			return domain.ErrDuplicate
		}
	}
	r.s.orders[o.ID] = cloneOrder(*o)
	return nil
}

func (r *OrderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	out := cloneOrder(o)
	return &out, nil
}

func (r *OrderRepo) List(_ context.Context, f repository.OrderFilter) ([]*entity.Order, error) {
	r.s.mu.RLock()
	var rows []*entity.Order
	for _, o := range r.s.orders {
		if f.Status != "" && string(o.Status) != f.Status {
			continue
		}
		if f.ClientID != "" && o.ClientID != f.ClientID {
			continue
		}
		if f.SalesPersonID != "" && !ptrEq(o.SalesPersonID, f.SalesPersonID) {
			continue
		}
		if f.Search != "" && !containsFold(o.OrderNumber, f.Search) {
			continue
		}
		out := cloneOrder(o)
		rows = append(rows, &out)
	}
	r.s.mu.RUnlock()
	return paginate(rows, func(a, b *entity.Order) bool {
		return newerFirst(a.OrderDate, b.OrderDate, a.ID, b.ID)
	}, f.Page), nil
}

func (r *OrderRepo) Update(_ context.Context, o *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[o.ID]; !ok {
		return domain.ErrNotFound
	}
	for id, other := range r.s.orders {
		if id != o.ID && other.OrderNumber == o.OrderNumber {
			return domain.ErrDuplicate
		}
	}
	r.s.orders[o.ID] = cloneOrder(*o)
	return nil
}

// ─── Tasks ───────────────────────────────────────────────────────────────────

// TaskRepo tareas en memoria.
type TaskRepo struct{ s *Store }

func (r *TaskRepo) Create(_ context.Context, t *entity.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tasks[t.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.tasks[t.ID] = *t
	return nil
}

func (r *TaskRepo) GetByID(_ context.Context, id string) (*entity.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tasks[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *TaskRepo) List(_ context.Context, f repository.TaskFilter) ([]*entity.Task, error) {
	r.s.mu.RLock()
	var rows []*entity.Task
	for _, t := range r.s.tasks {
		if f.Status != "" && string(t.Status) != f.Status {
			continue
		}
		if f.AssigneeID != "" && t.AssigneeID != f.AssigneeID {
			continue
		}
		if f.ClientID != "" && !ptrEq(t.ClientID, f.ClientID) {
			continue
		}
		if f.Search != "" && !containsFold(t.Title, f.Search) && !containsFold(t.Description, f.Search) {
			continue
		}
		out := t
		rows = append(rows, &out)
	}
	r.s.mu.RUnlock()
	return paginate(rows, func(a, b *entity.Task) bool {
		return newerFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	}, f.Page), nil
}

func (r *TaskRepo) Update(_ context.Context, t *entity.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tasks[t.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.tasks[t.ID] = *t
	return nil
}

func (r *TaskRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tasks[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.tasks, id)
	return nil
}

// ─── Payments ────────────────────────────────────────────────────────────────

// PaymentRepo pagos en memoria.
type PaymentRepo struct{ s *Store }

func (r *PaymentRepo) Create(_ context.Context, p *entity.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.payments[p.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.payments[p.ID] = *p
	return nil
}

func (r *PaymentRepo) GetByID(_ context.Context, id string) (*entity.Payment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.payments[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *PaymentRepo) List(_ context.Context, f repository.PaymentFilter) ([]*entity.Payment, error) {
	r.s.mu.RLock()
	var rows []*entity.Payment
	for _, p := range r.s.payments {
		if f.Status != "" && string(p.Status) != f.Status {
			continue
		}
		if f.ClientID != "" && p.ClientID != f.ClientID {
			continue
		}
		if f.Mode != "" && p.Mode != f.Mode {
			continue
		}
		out := p
		rows = append(rows, &out)
	}
	r.s.mu.RUnlock()
	return paginate(rows, func(a, b *entity.Payment) bool {
		return newerFirst(a.PaymentDate, b.PaymentDate, a.ID, b.ID)
	}, f.Page), nil
}

func (r *PaymentRepo) Update(_ context.Context, p *entity.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.payments[p.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.payments[p.ID] = *p
	return nil
}

func (r *PaymentRepo) SumOutstanding(_ context.Context, clientID string) (decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	total := decimal.Zero
	for _, p := range r.s.payments {
		if p.ClientID == clientID && p.Outstanding() {
			total = total.Add(p.Amount)
		}
	}
	return total, nil
}

// ─── Follow-ups ──────────────────────────────────────────────────────────────

// FollowUpRepo seguimientos en memoria.
type FollowUpRepo struct{ s *Store }

func (r *FollowUpRepo) Create(_ context.Context, f *entity.FollowUp) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.followUps[f.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.followUps[f.ID] = *f
	return nil
}

func (r *FollowUpRepo) GetByID(_ context.Context, id string) (*entity.FollowUp, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	f, ok := r.s.followUps[id]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

func (r *FollowUpRepo) List(_ context.Context, f repository.FollowUpFilter) ([]*entity.FollowUp, error) {
	r.s.mu.RLock()
	var rows []*entity.FollowUp
	for _, fu := range r.s.followUps {
		if f.Status != "" && string(fu.Status) != f.Status {
			continue
		}
		if f.ClientID != "" && fu.ClientID != f.ClientID {
			continue
		}
		if f.UserID != "" && fu.UserID != f.UserID {
			continue
		}
		out := fu
		rows = append(rows, &out)
	}
	r.s.mu.RUnlock()
	return paginate(rows, func(a, b *entity.FollowUp) bool {
		return newerFirst(a.FollowUpDate, b.FollowUpDate, a.ID, b.ID)
	}, f.Page), nil
}

func (r *FollowUpRepo) Update(_ context.Context, f *entity.FollowUp) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.followUps[f.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.followUps[f.ID] = *f
	return nil
}

// ─── Tour advances ───────────────────────────────────────────────────────────

// TourAdvanceRepo anticipos de viaje en memoria.
type TourAdvanceRepo struct{ s *Store }

func (r *TourAdvanceRepo) Create(_ context.Context, t *entity.TourAdvance) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tourAdvance[t.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.tourAdvance[t.ID] = *t
	return nil
}

func (r *TourAdvanceRepo) GetByID(_ context.Context, id string) (*entity.TourAdvance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tourAdvance[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *TourAdvanceRepo) List(_ context.Context, f repository.TourAdvanceFilter) ([]*entity.TourAdvance, error) {
	r.s.mu.RLock()
	var rows []*entity.TourAdvance
	for _, t := range r.s.tourAdvance {
		if f.Status != "" && string(t.Status) != f.Status {
			continue
		}
		if f.EmployeeID != "" && t.EmployeeID != f.EmployeeID {
			continue
		}
		out := t
		rows = append(rows, &out)
	}
	r.s.mu.RUnlock()
	return paginate(rows, func(a, b *entity.TourAdvance) bool {
		return newerFirst(a.StartDate, b.StartDate, a.ID, b.ID)
	}, f.Page), nil
}

func (r *TourAdvanceRepo) Update(_ context.Context, t *entity.TourAdvance) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tourAdvance[t.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.tourAdvance[t.ID] = *t
	return nil
}

// ─── E-way bills ─────────────────────────────────────────────────────────────

// EWayBillRepo e-way bills en memoria.
type EWayBillRepo struct{ s *Store }

func (r *EWayBillRepo) checkUnique(e *entity.EWayBill) error {
	for id, other := range r.s.ewayBills {
		if id != e.ID && other.EWayBillNumber == e.EWayBillNumber {
			return domain.ErrDuplicate
		}
	}
	return nil
}

func (r *EWayBillRepo) Create(_ context.Context, e *entity.EWayBill) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.ewayBills[e.ID]; ok {
		return domain.ErrDuplicate
	}
	if err := r.checkUnique(e); err != nil {
		return err
	}
	r.s.ewayBills[e.ID] = *e
	return nil
}

func (r *EWayBillRepo) GetByID(_ context.Context, id string) (*entity.EWayBill, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.ewayBills[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (r *EWayBillRepo) List(_ context.Context, f repository.EWayBillFilter) ([]*entity.EWayBill, error) {
	r.s.mu.RLock()
	var rows []*entity.EWayBill
	for _, e := range r.s.ewayBills {
		if f.Status != "" && string(e.Status) != f.Status {
			continue
		}
		if f.ClientID != "" && e.ClientID != f.ClientID {
			continue
		}
		if f.Search != "" && !containsFold(e.EWayBillNumber, f.Search) && !containsFold(e.VehicleNumber, f.Search) {
			continue
		}
		out := e
		rows = append(rows, &out)
	}
	r.s.mu.RUnlock()
	return paginate(rows, func(a, b *entity.EWayBill) bool {
		return newerFirst(a.GeneratedDate, b.GeneratedDate, a.ID, b.ID)
	}, f.Page), nil
}

func (r *EWayBillRepo) Update(_ context.Context, e *entity.EWayBill) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.ewayBills[e.ID]; !ok {
		return domain.ErrNotFound
	}
	if err := r.checkUnique(e); err != nil {
		return err
	}
	r.s.ewayBills[e.ID] = *e
	return nil
}
