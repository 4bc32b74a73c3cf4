package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo con su stock actual.
// StockQuantity nunca debe quedar negativa: una vez que el producto participa
// en una factura confirmada se muta únicamente vía ProductRepository.AdjustStock
// (ajuste relativo dentro de la transacción de conciliación), nunca con un
// overwrite ciego.
type Product struct {
	ID             string
	Name           string
	Description    string
	CategoryID     string
	UnitMeasureID  string
	StockQuantity  decimal.Decimal
	MinStock       decimal.Decimal
	ReferencePrice decimal.Decimal
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Campos de join para listados (no persisten).
	CategoryName    string
	UnitMeasureName string
}
