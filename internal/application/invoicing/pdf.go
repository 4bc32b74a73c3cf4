package invoicing

import (
	"context"

	"github.com/inventra/inventra-api/internal/domain"
	"github.com/inventra/inventra-api/internal/domain/repository"
)

// InvoicePDFUseCase genera la representación PDF de una factura interna.
type InvoicePDFUseCase struct {
	invoiceRepo repository.InvoiceRepository
	generator   PDFGenerator
}

// NewInvoicePDFUseCase construye el caso de uso.
func NewInvoicePDFUseCase(invoiceRepo repository.InvoiceRepository, generator PDFGenerator) *InvoicePDFUseCase {
	return &InvoicePDFUseCase{invoiceRepo: invoiceRepo, generator: generator}
}

// GeneratePDF devuelve los bytes del PDF de la factura con sus líneas.
func (uc *InvoicePDFUseCase) GeneratePDF(ctx context.Context, invoiceID string) ([]byte, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	lines, err := uc.invoiceRepo.GetLines(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return uc.generator.GenerateInvoicePDF(ctx, inv, lines)
}
