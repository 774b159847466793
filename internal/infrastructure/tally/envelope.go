// Package tally lee las exportaciones XML de Tally (ENVELOPE) y las convierte en ledgers.
package tally

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/bitumen-api/internal/domain"
	"github.com/jhoicas/bitumen-api/internal/domain/entity"
)

// ParseLedgers extrae todos los LEDGER del sobre, estén en IMPORTDATA/REQUESTDATA/TALLYMESSAGE
// o en DATA/COLLECTION. El nombre sale del atributo NAME o, si falta, del elemento NAME.
//
// Tally exporta los saldos deudores en negativo (o con sufijo "Dr"); se devuelven en positivo
// porque para la empresa son importes por cobrar.
func ParseLedgers(b []byte) ([]entity.LedgerRecord, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(b); err != nil {
		return nil, domain.NewValidationError("body", "XML inválido: "+err.Error())
	}
	root := doc.Root()
	if root == nil || !strings.EqualFold(root.Tag, "ENVELOPE") {
		return nil, domain.NewValidationError("body", "se esperaba un ENVELOPE de Tally")
	}

	verr := &domain.ValidationError{}
	var out []entity.LedgerRecord
	for i, el := range root.FindElements(".//LEDGER") {
		rec := entity.LedgerRecord{
			Name:          ledgerName(el),
			Parent:        childText(el, "PARENT"),
			ContactPerson: childText(el, "LEDGERCONTACT"),
			Phone:         firstNonEmpty(childText(el, "LEDGERMOBILE"), childText(el, "LEDGERPHONE")),
			Email:         childText(el, "EMAIL"),
			GSTIN:         strings.ToUpper(firstNonEmpty(childText(el, "PARTYGSTIN"), childText(el, "GSTIN"))),
			Address:       address(el),
			City:          childText(el, "CITY"),
			State:         firstNonEmpty(childText(el, "LEDSTATENAME"), childText(el, "STATENAME")),
		}
		if rec.Name == "" {
			verr.Add(fmt.Sprintf("ledgers[%d].name", i), "es requerido")
			continue
		}
		if raw := childText(el, "CLOSINGBALANCE"); raw != "" {
			bal, err := parseBalance(raw)
			if err != nil {
				verr.Add(fmt.Sprintf("ledgers[%d].closing_balance", i), "debe ser numérico")
				continue
			}
			rec.ClosingBalance = &bal
		}
		out = append(out, rec)
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return out, nil
}

func ledgerName(el *etree.Element) string {
	if v := strings.TrimSpace(el.SelectAttrValue("NAME", "")); v != "" {
		return v
	}
	if v := childText(el, "NAME"); v != "" {
		return v
	}
	// <NAME.LIST><NAME>…</NAME></NAME.LIST>
	if n := el.FindElement("NAME.LIST/NAME"); n != nil {
		return strings.TrimSpace(n.Text())
	}
	return ""
}

func childText(el *etree.Element, tag string) string {
	c := el.SelectElement(tag)
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.Text())
}

// address une las líneas de ADDRESS.LIST.
func address(el *etree.Element) string {
	var lines []string
	for _, a := range el.FindElements("ADDRESS.LIST/ADDRESS") {
		if v := strings.TrimSpace(a.Text()); v != "" {
			lines = append(lines, v)
		}
	}
	if len(lines) == 0 {
		return childText(el, "ADDRESS")
	}
	return strings.Join(lines, ", ")
}

// parseBalance acepta "-1500.00", "1,500.00 Dr" y "250 Cr".
func parseBalance(raw string) (decimal.Decimal, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	sign := decimal.NewFromInt(-1)
	switch {
	case strings.HasSuffix(strings.ToUpper(s), "DR"):
		s, sign = strings.TrimSpace(s[:len(s)-2]), decimal.NewFromInt(1)
	case strings.HasSuffix(strings.ToUpper(s), "CR"):
		s = strings.TrimSpace(s[:len(s)-2])
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	return d.Mul(sign), nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
