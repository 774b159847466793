// Package numeric modela campos numéricos opcionales que llegan desde el cliente
// como número JSON, como string numérico, vacíos o ausentes.
//
// Un Optional distingue explícitamente:
//
//	Absent  → la clave no vino en el JSON
//	Null    → vino null o "" (el cliente quiere "sin valor")
//	Present → vino un número, incluido 0 o "0"
//
// El cero es un valor como cualquier otro: nunca se interpreta como ausencia.
package numeric

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// State estado de un Optional.
type State uint8

const (
	Absent State = iota
	Null
	Present
	Invalid // el cliente envió algo que no es un número
)

// Optional valor numérico con estado explícito.
type Optional struct {
	state State
	value decimal.Decimal
	raw   string
}

// Of construye un Optional presente.
func Of(d decimal.Decimal) Optional { return Optional{state: Present, value: d} }

// OfInt construye un Optional presente a partir de un entero.
func OfInt(n int64) Optional { return Of(decimal.NewFromInt(n)) }

// OfString interpreta s igual que un string JSON.
func OfString(s string) Optional {
	var o Optional
	o.parseString(s)
	return o
}

// NullValue construye un Optional nulo.
func NullValue() Optional { return Optional{state: Null} }

// FromPtr convierte un puntero persistido (nil = nulo) en Optional.
func FromPtr(d *decimal.Decimal) Optional {
	if d == nil {
		return NullValue()
	}
	return Of(*d)
}

func (o Optional) State() State     { return o.state }
func (o Optional) IsAbsent() bool   { return o.state == Absent }
func (o Optional) IsNull() bool     { return o.state == Null }
func (o Optional) IsPresent() bool  { return o.state == Present }
func (o Optional) IsInvalid() bool  { return o.state == Invalid }
func (o Optional) Raw() string      { return o.raw }

// Provided informa si el cliente envió un valor utilizable (presente).
func (o Optional) Provided() bool { return o.state == Present }

// Value devuelve el valor y si está presente.
func (o Optional) Value() (decimal.Decimal, bool) {
	if o.state != Present {
		return decimal.Zero, false
	}
	return o.value, true
}

// Ptr devuelve un puntero al valor si está presente, nil en cualquier otro caso.
func (o Optional) Ptr() *decimal.Decimal {
	if o.state != Present {
		return nil
	}
	v := o.value
	return &v
}

// Int devuelve el valor como entero. ok=false si no está presente o no es entero.
func (o Optional) Int() (n int64, ok bool) {
	if o.state != Present || !o.value.Equal(o.value.Truncate(0)) {
		return 0, false
	}
	return o.value.IntPart(), true
}

// UnmarshalJSON acepta números, strings numéricos, "" y null.
// Una entrada no numérica no falla el parseo: queda en estado Invalid para que la
// validación pueda reportar el campo concreto.
func (o *Optional) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	o.raw = string(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		o.state, o.value = Null, decimal.Zero
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			o.state = Invalid
			return nil
		}
		o.parseString(s)
	default:
		d, err := decimal.NewFromString(string(b))
		if err != nil {
			o.state = Invalid
			return nil
		}
		o.state, o.value = Present, d
	}
	return nil
}

// MarshalJSON emite el número o null.
func (o Optional) MarshalJSON() ([]byte, error) {
	if o.state != Present {
		return []byte("null"), nil
	}
	return []byte(o.value.String()), nil
}

func (o *Optional) parseString(s string) {
	o.raw = s
	s = strings.TrimSpace(s)
	if s == "" {
		o.state, o.value = Null, decimal.Zero
		return
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		o.state = Invalid
		return
	}
	o.state, o.value = Present, d
}
