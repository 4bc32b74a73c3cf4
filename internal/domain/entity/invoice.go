package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceState estado del ciclo de vida de una factura interna.
// Solo CONFIRMED contribuye al stock de los productos; BORRADOR y ANULADA
// contribuyen cero.
type InvoiceState string

const (
	StateDraft     InvoiceState = "DRAFT"
	StateConfirmed InvoiceState = "CONFIRMED"
	StateVoided    InvoiceState = "VOIDED"
)

// Valid reporta si s es uno de los tres estados conocidos.
func (s InvoiceState) Valid() bool {
	switch s {
	case StateDraft, StateConfirmed, StateVoided:
		return true
	}
	return false
}

// Contributes reporta si las líneas de una factura en este estado suman al stock.
func (s InvoiceState) Contributes() bool { return s == StateConfirmed }

// Invoice cabecera de una factura interna (documento de movimiento).
// Una cabecera posee cero o más líneas; las líneas se borran con la cabecera.
type Invoice struct {
	ID                string
	Code              string // código externo único (case sensitive)
	MovementTypeID    string
	Concept           string
	ResponsibleUserID string
	MovementDate      time.Time
	Total             decimal.Decimal
	Notes             string
	State             InvoiceState
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// Campos de join para respuestas (no persisten).
	MovementTypeName string
	ResponsibleUser  string
}

// InvoiceLine línea de una factura interna: un producto con cantidad y precio.
// Dentro de una factura cada producto aparece a lo más una vez; la conciliación
// colapsa duplicados quedándose con la última ocurrencia.
type InvoiceLine struct {
	ID        string
	InvoiceID string
	ProductID string
	Quantity  decimal.Decimal // > 0 (validado antes del motor)
	UnitPrice decimal.Decimal // >= 0

	ProductName string // join para respuestas (no persiste)
}

// Subtotal cantidad por precio unitario.
func (l InvoiceLine) Subtotal() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}
