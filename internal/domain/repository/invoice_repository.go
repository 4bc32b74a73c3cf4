package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/inventra/inventra-api/internal/domain/entity"
)

// InvoiceFilter filtros de listado de facturas internas.
type InvoiceFilter struct {
	State      entity.InvoiceState // "" = todas
	SearchText string              // código o concepto (LIKE escapado)
	DateFrom   *time.Time
	DateTo     *time.Time
	Limit      int
	Offset     int
}

// InvoiceHeaderPatch actualización parcial tipada de la cabecera. Cada campo se
// aplica solo si no es nil (cierra el patrón de armado dinámico de UPDATEs del
// sistema anterior).
type InvoiceHeaderPatch struct {
	Code              *string
	MovementTypeID    *string
	Concept           *string
	ResponsibleUserID *string
	MovementDate      *time.Time
	Total             *decimal.Decimal
	Notes             *string
	State             *entity.InvoiceState
}

// Empty reporta si el patch no toca ningún campo.
func (p InvoiceHeaderPatch) Empty() bool {
	return p.Code == nil && p.MovementTypeID == nil && p.Concept == nil &&
		p.ResponsibleUserID == nil && p.MovementDate == nil && p.Total == nil &&
		p.Notes == nil && p.State == nil
}

// InvoiceStats agregados por estado para el dashboard.
type InvoiceStats struct {
	Total       int
	Draft       int
	Confirmed   int
	Voided      int
	TotalAmount decimal.Decimal
}

// InvoiceRepository puerto de persistencia de facturas internas y sus líneas.
// Las implementaciones aceptan pool o tx.
type InvoiceRepository interface {
	// GetByIDForUpdate bloquea la fila de la cabecera (SELECT ... FOR UPDATE)
	// y devuelve cabecera + líneas actuales en la transacción del caller. Dos
	// actualizaciones concurrentes sobre la misma factura serializan aquí.
	// Devuelve domain.ErrNotFound si no existe.
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Invoice, []*entity.InvoiceLine, error)

	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	GetByCode(ctx context.Context, code string) (*entity.Invoice, error)
	ExistsCode(ctx context.Context, code string) (bool, error)
	List(ctx context.Context, f InvoiceFilter) ([]*entity.Invoice, int, error)
	Stats(ctx context.Context) (*InvoiceStats, error)

	InsertHeader(ctx context.Context, inv *entity.Invoice) error
	UpdateHeader(ctx context.Context, id string, patch InvoiceHeaderPatch) error
	// DeleteCascade elimina cabecera y líneas. No revierte stock (ver DESIGN.md).
	DeleteCascade(ctx context.Context, id string) error

	GetLines(ctx context.Context, invoiceID string) ([]*entity.InvoiceLine, error)
	InsertLine(ctx context.Context, line *entity.InvoiceLine) error
	UpdateLine(ctx context.Context, lineID string, qty, price decimal.Decimal) error
	DeleteLine(ctx context.Context, lineID string) error
}
