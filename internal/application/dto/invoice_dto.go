package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/inventra/inventra-api/internal/domain"
	"github.com/inventra/inventra-api/internal/domain/entity"
)

// InvoiceLineRequest una línea objetivo de la factura.
type InvoiceLineRequest struct {
	ProductID string          `json:"producto_id"`
	Quantity  decimal.Decimal `json:"cantidad"`
	UnitPrice decimal.Decimal `json:"precio_unitario"`
}

// Validate aplica las reglas que el motor de conciliación asume ya verificadas:
// cantidad > 0, precio >= 0, producto referenciado.
func (l InvoiceLineRequest) Validate() error {
	if l.ProductID == "" {
		return domain.ErrInvalidInput
	}
	if !l.Quantity.IsPositive() {
		return domain.ErrInvalidInput
	}
	if l.UnitPrice.IsNegative() {
		return domain.ErrInvalidInput
	}
	return nil
}

// CreateInvoiceRequest alta de factura interna (en DRAFT o directamente CONFIRMED).
type CreateInvoiceRequest struct {
	Code              string               `json:"codigo_interno"`
	MovementTypeID    string               `json:"tipo_movimiento_id"`
	Concept           string               `json:"concepto"`
	ResponsibleUserID string               `json:"usuario_responsable_id"`
	MovementDate      time.Time            `json:"fecha_movimiento"`
	Total             decimal.Decimal      `json:"total"`
	Notes             string               `json:"observaciones"`
	State             string               `json:"estado"` // DRAFT|CONFIRMED (default DRAFT)
	Lines             []InvoiceLineRequest `json:"detalles"`
}

// UpdateInvoiceRequest actualización parcial: cada campo se aplica solo si está
// presente. Lines == nil significa "las líneas no cambian"; una lista vacía
// elimina todas las líneas.
type UpdateInvoiceRequest struct {
	Code              *string               `json:"codigo_interno"`
	MovementTypeID    *string               `json:"tipo_movimiento_id"`
	Concept           *string               `json:"concepto"`
	ResponsibleUserID *string               `json:"usuario_responsable_id"`
	MovementDate      *time.Time            `json:"fecha_movimiento"`
	Total             *decimal.Decimal      `json:"total"`
	Notes             *string               `json:"observaciones"`
	State             *string               `json:"estado"`
	Lines             *[]InvoiceLineRequest `json:"detalles"`
}

// UpdateInvoiceStateRequest cambio de estado puro (confirmar, anular, reabrir).
type UpdateInvoiceStateRequest struct {
	State string `json:"estado"`
}

// InvoiceLineResponse línea en respuestas.
type InvoiceLineResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"producto_id"`
	ProductName string          `json:"producto_nombre,omitempty"`
	Quantity    decimal.Decimal `json:"cantidad"`
	UnitPrice   decimal.Decimal `json:"precio_unitario"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// InvoiceResponse cabecera (con joins) en respuestas.
type InvoiceResponse struct {
	ID                string                `json:"id"`
	Code              string                `json:"codigo_interno"`
	MovementTypeID    string                `json:"tipo_movimiento_id"`
	MovementTypeName  string                `json:"tipo_movimiento_nombre,omitempty"`
	Concept           string                `json:"concepto"`
	ResponsibleUserID string                `json:"usuario_responsable_id"`
	ResponsibleUser   string                `json:"usuario_responsable,omitempty"`
	MovementDate      time.Time             `json:"fecha_movimiento"`
	Total             decimal.Decimal       `json:"total"`
	Notes             string                `json:"observaciones"`
	State             string                `json:"estado"`
	CreatedAt         time.Time             `json:"fecha_creacion"`
	UpdatedAt         time.Time             `json:"fecha_actualizacion"`
	Lines             []InvoiceLineResponse `json:"detalles,omitempty"`
}

// ReconcileResult resultado de una conciliación confirmada.
type ReconcileResult struct {
	Invoice        InvoiceResponse `json:"factura"`
	LineCountAfter int             `json:"detalles_count"`
}

// InvoiceListResponse página de facturas.
type InvoiceListResponse struct {
	Invoices []InvoiceResponse `json:"facturas"`
	Page     PageResponse      `json:"pagina"`
}

// InvoiceStatsResponse agregados por estado.
type InvoiceStatsResponse struct {
	Total       int             `json:"total_facturas"`
	Draft       int             `json:"facturas_borrador"`
	Confirmed   int             `json:"facturas_confirmadas"`
	Voided      int             `json:"facturas_anuladas"`
	TotalAmount decimal.Decimal `json:"total_monto"`
}

// ToInvoiceResponse mapea la entidad a su DTO de respuesta.
func ToInvoiceResponse(inv *entity.Invoice, lines []*entity.InvoiceLine) InvoiceResponse {
	out := InvoiceResponse{
		ID:                inv.ID,
		Code:              inv.Code,
		MovementTypeID:    inv.MovementTypeID,
		MovementTypeName:  inv.MovementTypeName,
		Concept:           inv.Concept,
		ResponsibleUserID: inv.ResponsibleUserID,
		ResponsibleUser:   inv.ResponsibleUser,
		MovementDate:      inv.MovementDate,
		Total:             inv.Total,
		Notes:             inv.Notes,
		State:             string(inv.State),
		CreatedAt:         inv.CreatedAt,
		UpdatedAt:         inv.UpdatedAt,
	}
	for _, l := range lines {
		out.Lines = append(out.Lines, InvoiceLineResponse{
			ID:          l.ID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Subtotal:    l.Subtotal(),
		})
	}
	return out
}
