// Package report arma exportaciones CSV y PDF a partir de las filas de los casos de uso CRUD.
package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Align alineación de una columna.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
	AlignCenter
)

// Column columna de un reporte. Width en la grilla de 12 del PDF.
type Column struct {
	Header string
	Width  int
	Align  Align
}

// Document reporte tabular independiente del formato de salida.
type Document struct {
	Title       string
	Subtitle    string
	GeneratedAt time.Time
	Columns     []Column
	Rows        [][]string
	// Footer líneas de resumen al pie (totales).
	Footer []string
}

// PDFRenderer convierte un Document en PDF. Lo implementa infrastructure/pdf.
type PDFRenderer interface {
	Render(ctx context.Context, doc Document) ([]byte, error)
}

// writeCSV escribe cabecera y filas con encoding/csv.
func writeCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("csv: cabecera: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("csv: filas: %w", err)
	}
	return buf.Bytes(), nil
}

var inr = message.NewPrinter(language.MustParse("en-IN"))

// FormatINR formatea un importe con agrupación india (lakh/crore) y dos decimales.
func FormatINR(d decimal.Decimal) string {
	return "₹" + inr.Sprint(number.Decimal(d.Round(2).InexactFloat64(), number.Scale(2)))
}

func csvAmount(d decimal.Decimal) string { return d.StringFixed(2) }

func csvAmountPtr(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return csvAmount(*d)
}

func csvDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func csvInt(n *int) string {
	if n == nil {
		return ""
	}
	return fmt.Sprint(*n)
}
