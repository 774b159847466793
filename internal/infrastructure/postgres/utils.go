package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/bitumen-api/internal/domain"
	"github.com/jhoicas/bitumen-api/internal/domain/repository"
)

// Querier interfaz común a *pgxpool.Pool y pgx.Tx; los repos aceptan cualquiera de los dos.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// fkColumns columna de la FK según el nombre de constraint que genera Postgres (<tabla>_<columna>_fkey).
var fkColumns = []string{"client_id", "order_id", "sales_person_id", "assignee_id", "created_by", "user_id", "employee_id"}

// mapWriteError traduce errores de escritura: 23505 → ErrDuplicate, 23503 → ValidationError del campo.
func mapWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return domain.ErrDuplicate
		case "23503":
			field := "reference"
			for _, col := range fkColumns {
				if strings.Contains(pgErr.ConstraintName, col) {
					field = col
					break
				}
			}
			return domain.NewValidationError(field, "no existe")
		case "23514":
			return domain.NewValidationError(pgErr.ConstraintName, "restricción no cumplida")
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// where arma cláusulas WHERE con placeholders numerados.
type where struct {
	conds []string
	args  []any
}

// add registra una condición; cond usa %[1]d para el número de placeholder.
func (w *where) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(cond, len(w.args)))
}

func (w *where) eq(col, val string) {
	if val != "" {
		w.add(col+" = $%[1]d", val)
	}
}

func (w *where) search(val string, cols ...string) {
	if val == "" {
		return
	}
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = c + " ILIKE $%[1]d"
	}
	w.add("("+strings.Join(parts, " OR ")+")", "%"+val+"%")
}

// sql devuelve " WHERE ..." + ORDER BY + LIMIT/OFFSET.
func (w *where) sql(orderBy string, p repository.Page) string {
	p = p.Normalize()
	var b strings.Builder
	if len(w.conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(w.conds, " AND "))
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(orderBy)
	w.args = append(w.args, p.Limit, p.Offset)
	fmt.Fprintf(&b, " LIMIT $%d OFFSET $%d", len(w.args)-1, len(w.args))
	return b.String()
}

// collect recorre rows aplicando scan a cada fila.
func collect[T any](rows pgx.Rows, scan func(pgx.Row) (*T, error)) ([]*T, error) {
	defer rows.Close()
	list := []*T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, item)
	}
	return list, rows.Err()
}

// isInvalidText 22P02: el texto no es un valor válido del tipo (p. ej. un id que no es UUID).
func isInvalidText(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}

// notFound convierte pgx.ErrNoRows en (nil, nil) como el resto de repos.
// Un id con formato inválido tampoco puede existir y se trata igual.
func notFound[T any](v *T, err error, op string) (*T, error) {
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}
