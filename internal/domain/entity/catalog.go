package entity

import "time"

// Category agrupa productos del catálogo.
type Category struct {
	ID          string
	Name        string
	Description string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UnitMeasure unidad de medida de un producto (kg, unidad, caja...).
type UnitMeasure struct {
	ID           string
	Name         string
	Abbreviation string
	Description  string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// MovementType clasifica una factura interna (compra, consumo, devolución...).
// AffectsStock es informativo para el frontend; la conciliación de stock
// depende del estado de la factura, no del tipo.
type MovementType struct {
	ID           string
	Name         string
	Description  string
	AffectsStock bool
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
