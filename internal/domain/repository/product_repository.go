package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/inventra/inventra-api/internal/domain/entity"
)

// ProductFilter filtros de listado de productos.
type ProductFilter struct {
	Active        *bool
	CategoryID    string
	UnitMeasureID string
	SearchText    string // busca en nombre y descripción (LIKE escapado)
	Limit         int
	Offset        int
}

// ProductPatch actualización parcial tipada de un producto. Cada campo se
// aplica solo si no es nil. El stock NO se toca por aquí: únicamente vía
// AdjustStock.
type ProductPatch struct {
	Name           *string
	Description    *string
	CategoryID     *string
	UnitMeasureID  *string
	MinStock       *decimal.Decimal
	ReferencePrice *decimal.Decimal
	Active         *bool
}

// ProductRepository puerto de persistencia de productos. Las implementaciones
// aceptan pool o tx; AdjustStock solo tiene sentido dentro de una transacción.
type ProductRepository interface {
	Create(ctx context.Context, p *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByName(ctx context.Context, name string) (*entity.Product, error)
	List(ctx context.Context, f ProductFilter) ([]*entity.Product, int, error)
	Update(ctx context.Context, id string, patch ProductPatch) (*entity.Product, error)
	Delete(ctx context.Context, id string) error

	// AdjustStock aplica stock = stock + delta de forma atómica
	// (UPDATE ... SET stock_quantity = stock_quantity + $n). Si delta es
	// negativo, primero lee el stock bajo FOR UPDATE dentro de la misma
	// transacción y falla con *domain.InsufficientStockError si el resultado
	// sería negativo. Si newPrice != nil y > 0, sobreescribe el precio de
	// referencia (last-writer-wins). Es un ajuste relativo, no idempotente:
	// el caller no debe invocarlo dos veces para el mismo cambio lógico.
	AdjustStock(ctx context.Context, productID string, delta decimal.Decimal, newPrice *decimal.Decimal) error

	// Búsqueda para enriquecimiento: candidatos cuyo nombre contiene todos los
	// tokens (activos, máx. 20 por orden alfabético).
	SearchByNameTokens(ctx context.Context, tokens []string) ([]*entity.Product, error)
}
