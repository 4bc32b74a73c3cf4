package invoicing

import (
	"context"

	"github.com/inventra/inventra-api/internal/domain/entity"
	"github.com/inventra/inventra-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el motor de
// conciliación: cualquier error dentro de fn hace rollback de todo (ajustes de
// stock incluidos) antes de propagar el error.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		invoiceRepo repository.InvoiceRepository,
		productRepo repository.ProductRepository,
	) error) error
}

// PDFGenerator genera la representación imprimible de una factura interna.
type PDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, inv *entity.Invoice, lines []*entity.InvoiceLine) ([]byte, error)
}
