package dto

import "github.com/inventra/inventra-api/internal/domain/entity"

// ExtractInvoiceRequest imagen de factura en base64 para extracción con el
// modelo de visión. MimeType es informativo (el modelo recibe solo los bytes).
type ExtractInvoiceRequest struct {
	ImageBase64 string `json:"imagen_base64"`
	MimeType    string `json:"mime_type"`
}

// ExtractInvoiceResponse borrador estructurado extraído de la imagen, ya
// enriquecido contra el catálogo cuando hubo matches.
type ExtractInvoiceResponse struct {
	Invoice  entity.ProcessedInvoice `json:"factura"`
	Enriched int                     `json:"productos_enriquecidos"` // cuántos ítems matchearon catálogo
}
