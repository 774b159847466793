package entity

import "github.com/shopspring/decimal"

// LedgerRecord ledger de deudor exportado por el software contable (Tally).
// Se importa como cliente, enlazado por Name = tally_ledger_name.
type LedgerRecord struct {
	Name           string
	Parent         string // grupo contable, p. ej. "Sundry Debtors"
	ContactPerson  string
	Phone          string
	Email          string
	GSTIN          string
	Address        string
	City           string
	State          string
	ClosingBalance *decimal.Decimal
}
