package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/bitumen-api/internal/domain"
	"github.com/jhoicas/bitumen-api/internal/domain/entity"
	"github.com/jhoicas/bitumen-api/internal/domain/repository"
)

var _ repository.ClientRepository = (*ClientRepo)(nil)

const clientColumns = `id, company_name, contact_person, phone, email, gstin, address, city, state, category,
	credit_limit, credit_days, outstanding_amount, sales_person_id, tally_ledger_name, status, created_at, updated_at`

// ClientRepo implementación de ClientRepository (usable con pool o tx).
type ClientRepo struct {
	q Querier
}

// NewClientRepository construye el adaptador. Pasar pool o tx (Querier).
func NewClientRepository(q Querier) *ClientRepo {
	return &ClientRepo{q: q}
}

func scanClient(row pgx.Row) (*entity.Client, error) {
	var c entity.Client
	err := row.Scan(
		&c.ID, &c.CompanyName, &c.ContactPerson, &c.Phone, &c.Email, &c.GSTIN, &c.Address, &c.City, &c.State, &c.Category,
		&c.CreditLimit, &c.CreditDays, &c.OutstandingAmount, &c.SalesPersonID, &c.TallyLedgerName, &c.Status,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create persiste un nuevo cliente.
func (r *ClientRepo) Create(ctx context.Context, c *entity.Client) error {
	query := `
		INSERT INTO clients (` + clientColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.CompanyName, c.ContactPerson, c.Phone, c.Email, c.GSTIN, c.Address, c.City, c.State, string(c.Category),
		c.CreditLimit, c.CreditDays, c.OutstandingAmount, c.SalesPersonID, c.TallyLedgerName, c.Status,
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return mapWriteError("insert client", err)
	}
	return nil
}

// GetByID obtiene un cliente por ID.
func (r *ClientRepo) GetByID(ctx context.Context, id string) (*entity.Client, error) {
	c, err := scanClient(r.q.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id))
	return notFound(c, err, "get client")
}

// GetByLedgerName obtiene el cliente vinculado a un ledger contable.
func (r *ClientRepo) GetByLedgerName(ctx context.Context, ledgerName string) (*entity.Client, error) {
	c, err := scanClient(r.q.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE tally_ledger_name = $1`, ledgerName))
	return notFound(c, err, "get client by ledger")
}

// List lista clientes con filtros y paginación.
func (r *ClientRepo) List(ctx context.Context, f repository.ClientFilter) ([]*entity.Client, error) {
	var w where
	w.eq("status", f.Status)
	w.eq("category", f.Category)
	w.eq("sales_person_id::text", f.SalesPersonID)
	w.search(f.Search, "company_name", "contact_person", "gstin")
	rows, err := r.q.Query(ctx, `SELECT `+clientColumns+` FROM clients`+w.sql("company_name, id", f.Page), w.args...)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return collect(rows, scanClient)
}

// Update actualiza los datos del cliente (el saldo se mantiene con UpdateOutstanding).
func (r *ClientRepo) Update(ctx context.Context, c *entity.Client) error {
	query := `
		UPDATE clients SET company_name = $2, contact_person = $3, phone = $4, email = $5, gstin = $6,
			address = $7, city = $8, state = $9, category = $10, credit_limit = $11, credit_days = $12,
			outstanding_amount = $13, sales_person_id = $14, tally_ledger_name = $15, status = $16, updated_at = $17
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		c.ID, c.CompanyName, c.ContactPerson, c.Phone, c.Email, c.GSTIN, c.Address, c.City, c.State, string(c.Category),
		c.CreditLimit, c.CreditDays, c.OutstandingAmount, c.SalesPersonID, c.TallyLedgerName, c.Status, c.UpdatedAt,
	)
	if err != nil {
		return mapWriteError("update client", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateOutstanding fija el saldo pendiente del cliente.
func (r *ClientRepo) UpdateOutstanding(ctx context.Context, clientID string, amount decimal.Decimal) error {
	tag, err := r.q.Exec(ctx, `UPDATE clients SET outstanding_amount = $2, updated_at = NOW() WHERE id = $1`, clientID, amount)
	if err != nil {
		return fmt.Errorf("update outstanding: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
