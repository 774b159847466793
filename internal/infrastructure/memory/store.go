// Package memory implementa todos los puertos de persistencia en memoria.
// Lo usan los tests de casos de uso y HTTP, y el modo demo DB_DRIVER=memory.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/jhoicas/bitumen-api/internal/domain/access"
	"github.com/jhoicas/bitumen-api/internal/domain/entity"
	"github.com/jhoicas/bitumen-api/internal/domain/repository"
)

// Store estado compartido por todos los repositorios en memoria.
// Las entidades se copian al entrar y al salir para que los llamadores no compartan punteros.
type Store struct {
	mu sync.RWMutex

	users       map[string]entity.User
	sessions    map[string]entity.Session // por token_hash
	grants      map[grantKey]bool
	clients     map[string]entity.Client
	orders      map[string]entity.Order
	tasks       map[string]entity.Task
	payments    map[string]entity.Payment
	followUps   map[string]entity.FollowUp
	tourAdvance map[string]entity.TourAdvance
	ewayBills   map[string]entity.EWayBill
}

type grantKey struct {
	userID string
	module access.Module
	action access.Action
}

// NewStore construye un almacén vacío.
func NewStore() *Store {
	return &Store{
		users:       make(map[string]entity.User),
		sessions:    make(map[string]entity.Session),
		grants:      make(map[grantKey]bool),
		clients:     make(map[string]entity.Client),
		orders:      make(map[string]entity.Order),
		tasks:       make(map[string]entity.Task),
		payments:    make(map[string]entity.Payment),
		followUps:   make(map[string]entity.FollowUp),
		tourAdvance: make(map[string]entity.TourAdvance),
		ewayBills:   make(map[string]entity.EWayBill),
	}
}

// Repositories agrupa los adaptadores del almacén, con la misma forma que el de postgres.
type Repositories struct {
	Users        *UserRepo
	Sessions     *SessionRepo
	Permissions  *PermissionRepo
	Clients      *ClientRepo
	Orders       *OrderRepo
	Tasks        *TaskRepo
	Payments     *PaymentRepo
	FollowUps    *FollowUpRepo
	TourAdvances *TourAdvanceRepo
	EWayBills    *EWayBillRepo
	Dashboard    *DashboardRepo
	Tx           *TxRunner
}

// Repos construye todos los repositorios sobre el mismo Store.
func (s *Store) Repos() Repositories {
	return Repositories{
		Users:        &UserRepo{s: s},
		Sessions:     &SessionRepo{s: s},
		Permissions:  &PermissionRepo{s: s},
		Clients:      &ClientRepo{s: s},
		Orders:       &OrderRepo{s: s},
		Tasks:        &TaskRepo{s: s},
		Payments:     &PaymentRepo{s: s},
		FollowUps:    &FollowUpRepo{s: s},
		TourAdvances: &TourAdvanceRepo{s: s},
		EWayBills:    &EWayBillRepo{s: s},
		Dashboard:    &DashboardRepo{s: s},
		Tx:           &TxRunner{s: s},
	}
}

// TxRunner ejecuta el callback sobre los mismos repos; cada operación ya es atómica.
type TxRunner struct{ s *Store }

func (r *TxRunner) RunPayment(_ context.Context, fn func(
	payments repository.PaymentRepository,
	clients repository.ClientRepository,
) error) error {
	return fn(&PaymentRepo{s: r.s}, &ClientRepo{s: r.s})
}

// paginate ordena por la clave dada (desc por fecha de creación en los llamadores) y recorta.
func paginate[T any](rows []T, less func(a, b T) bool, p repository.Page) []T {
	sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j]) })
	p = p.Normalize()
	if p.Offset >= len(rows) {
		return []T{}
	}
	end := p.Offset + p.Limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[p.Offset:end]
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func ptrEq(p *string, v string) bool {
	return p != nil && *p == v
}
