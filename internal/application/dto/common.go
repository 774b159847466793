package dto

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// PageRequest paginación para listados (query string).
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// ListResponse envoltorio de listados paginados.
type ListResponse[T any] struct {
	Items  []T `json:"items"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ErrorResponse cuerpo de error HTTP. Fields solo aparece en errores de validación.
type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Date fecha de entrada con tres estados: ausente, nula ("" o null) o presente.
// Acepta "2006-01-02" y RFC3339. Un formato desconocido queda como inválido para
// que la validación lo reporte por campo.
type Date struct {
	set     bool
	null    bool
	invalid bool
	t       time.Time
}

// DateOf construye una fecha presente.
func DateOf(t time.Time) Date { return Date{set: true, t: t} }

func (d *Date) UnmarshalJSON(b []byte) error {
	d.set = true
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		d.null = true
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		d.invalid = true
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		d.null = true
		return nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			d.t = t.UTC()
			return nil
		}
	}
	d.invalid = true
	return nil
}

// IsAbsent la clave no vino en el cuerpo.
func (d Date) IsAbsent() bool { return !d.set }

// IsNull la clave vino vacía o null.
func (d Date) IsNull() bool { return d.set && d.null }

// IsInvalid la clave vino con un formato no reconocido.
func (d Date) IsInvalid() bool { return d.set && d.invalid }

// Value devuelve la fecha y si está presente.
func (d Date) Value() (time.Time, bool) {
	if !d.set || d.null || d.invalid {
		return time.Time{}, false
	}
	return d.t, true
}

// Ptr puntero a la fecha si está presente.
func (d Date) Ptr() *time.Time {
	t, ok := d.Value()
	if !ok {
		return nil
	}
	return &t
}
