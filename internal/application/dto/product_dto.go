package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/inventra/inventra-api/internal/domain"
	"github.com/inventra/inventra-api/internal/domain/entity"
)

// CreateProductRequest alta de producto de catálogo.
type CreateProductRequest struct {
	Name           string          `json:"nombre"`
	Description    string          `json:"descripcion"`
	CategoryID     string          `json:"categoria_id"`
	UnitMeasureID  string          `json:"unidad_medida_id"`
	InitialStock   decimal.Decimal `json:"stock_inicial"`
	MinStock       decimal.Decimal `json:"stock_minimo"`
	ReferencePrice decimal.Decimal `json:"precio_referencia"`
}

// Validate reglas de alta.
func (r CreateProductRequest) Validate() error {
	if r.Name == "" || r.CategoryID == "" || r.UnitMeasureID == "" {
		return domain.ErrInvalidInput
	}
	if r.InitialStock.IsNegative() || r.MinStock.IsNegative() || r.ReferencePrice.IsNegative() {
		return domain.ErrInvalidInput
	}
	return nil
}

// UpdateProductRequest actualización parcial de producto. El stock no es
// editable por aquí: solo se mueve vía conciliación de facturas.
type UpdateProductRequest struct {
	Name           *string          `json:"nombre"`
	Description    *string          `json:"descripcion"`
	CategoryID     *string          `json:"categoria_id"`
	UnitMeasureID  *string          `json:"unidad_medida_id"`
	MinStock       *decimal.Decimal `json:"stock_minimo"`
	ReferencePrice *decimal.Decimal `json:"precio_referencia"`
	Active         *bool            `json:"activo"`
}

// ProductResponse producto en respuestas.
type ProductResponse struct {
	ID              string          `json:"id"`
	Name            string          `json:"nombre"`
	Description     string          `json:"descripcion"`
	CategoryID      string          `json:"categoria_id"`
	CategoryName    string          `json:"categoria_nombre,omitempty"`
	UnitMeasureID   string          `json:"unidad_medida_id"`
	UnitMeasureName string          `json:"unidad_medida_nombre,omitempty"`
	StockQuantity   decimal.Decimal `json:"stock_actual"`
	MinStock        decimal.Decimal `json:"stock_minimo"`
	ReferencePrice  decimal.Decimal `json:"precio_referencia"`
	LowStock        bool            `json:"stock_bajo"`
	Active          bool            `json:"activo"`
	CreatedAt       time.Time       `json:"fecha_creacion"`
	UpdatedAt       time.Time       `json:"fecha_actualizacion"`
}

// ProductListResponse página de productos.
type ProductListResponse struct {
	Products []ProductResponse `json:"productos"`
	Page     PageResponse      `json:"pagina"`
}

// ToProductResponse mapea la entidad a su DTO de respuesta.
func ToProductResponse(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		CategoryID:      p.CategoryID,
		CategoryName:    p.CategoryName,
		UnitMeasureID:   p.UnitMeasureID,
		UnitMeasureName: p.UnitMeasureName,
		StockQuantity:   p.StockQuantity,
		MinStock:        p.MinStock,
		ReferencePrice:  p.ReferencePrice,
		LowStock:        p.StockQuantity.LessThanOrEqual(p.MinStock),
		Active:          p.Active,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}
