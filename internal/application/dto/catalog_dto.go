package dto

import (
	"time"

	"github.com/inventra/inventra-api/internal/domain"
	"github.com/inventra/inventra-api/internal/domain/entity"
)

// CategoryRequest alta/edición de categoría.
type CategoryRequest struct {
	Name        string `json:"nombre"`
	Description string `json:"descripcion"`
	Active      *bool  `json:"activo"`
}

func (r CategoryRequest) Validate() error {
	if r.Name == "" {
		return domain.ErrInvalidInput
	}
	return nil
}

// CategoryResponse categoría en respuestas.
type CategoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"nombre"`
	Description string    `json:"descripcion"`
	Active      bool      `json:"activo"`
	CreatedAt   time.Time `json:"fecha_creacion"`
	UpdatedAt   time.Time `json:"fecha_actualizacion"`
}

func ToCategoryResponse(c *entity.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Active:      c.Active,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// UnitMeasureRequest alta/edición de unidad de medida.
type UnitMeasureRequest struct {
	Name         string `json:"nombre"`
	Abbreviation string `json:"abreviatura"`
	Description  string `json:"descripcion"`
	Active       *bool  `json:"activo"`
}

func (r UnitMeasureRequest) Validate() error {
	if r.Name == "" || r.Abbreviation == "" {
		return domain.ErrInvalidInput
	}
	return nil
}

// UnitMeasureResponse unidad de medida en respuestas.
type UnitMeasureResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"nombre"`
	Abbreviation string    `json:"abreviatura"`
	Description  string    `json:"descripcion"`
	Active       bool      `json:"activo"`
	CreatedAt    time.Time `json:"fecha_creacion"`
	UpdatedAt    time.Time `json:"fecha_actualizacion"`
}

func ToUnitMeasureResponse(u *entity.UnitMeasure) UnitMeasureResponse {
	return UnitMeasureResponse{
		ID:           u.ID,
		Name:         u.Name,
		Abbreviation: u.Abbreviation,
		Description:  u.Description,
		Active:       u.Active,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// MovementTypeRequest alta/edición de tipo de movimiento.
type MovementTypeRequest struct {
	Name         string `json:"nombre"`
	Description  string `json:"descripcion"`
	AffectsStock *bool  `json:"afecta_stock"`
	Active       *bool  `json:"activo"`
}

func (r MovementTypeRequest) Validate() error {
	if r.Name == "" {
		return domain.ErrInvalidInput
	}
	return nil
}

// MovementTypeResponse tipo de movimiento en respuestas.
type MovementTypeResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"nombre"`
	Description  string    `json:"descripcion"`
	AffectsStock bool      `json:"afecta_stock"`
	Active       bool      `json:"activo"`
	CreatedAt    time.Time `json:"fecha_creacion"`
	UpdatedAt    time.Time `json:"fecha_actualizacion"`
}

func ToMovementTypeResponse(m *entity.MovementType) MovementTypeResponse {
	return MovementTypeResponse{
		ID:           m.ID,
		Name:         m.Name,
		Description:  m.Description,
		AffectsStock: m.AffectsStock,
		Active:       m.Active,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
