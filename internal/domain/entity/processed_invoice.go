package entity

import "github.com/shopspring/decimal"

// ProcessedInvoice resultado estructurado de extraer una imagen de factura con
// el modelo de visión. Es un borrador: el usuario lo revisa antes de crear la
// factura interna real.
type ProcessedInvoice struct {
	Code         string             `json:"codigo_interno"`
	Concept      string             `json:"concepto"` // materiales|equipos|servicios|otros
	MovementDate string             `json:"fecha_movimiento"` // DD-MM-YYYY tal como lo emite el modelo
	Total        decimal.Decimal    `json:"total"`
	Notes        string             `json:"observaciones"`
	Products     []ExtractedProduct `json:"productos"`
}

// ExtractedProduct ítem extraído de la imagen. ProductID y UnitMeasureID se
// rellenan en la fase de enriquecimiento si hay un match en el catálogo.
type ExtractedProduct struct {
	Name          string          `json:"nombre"`
	UnitMeasure   string          `json:"unidad_medida"`
	Quantity      decimal.Decimal `json:"cantidad"`
	UnitPrice     decimal.Decimal `json:"precio_unitario"`
	ProductID     string          `json:"producto_id,omitempty"`
	UnitMeasureID string          `json:"unidad_medida_id,omitempty"`
}
