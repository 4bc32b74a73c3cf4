package repository

import (
	"context"

	"github.com/inventra/inventra-api/internal/domain/entity"
)

// CategoryRepository puerto de persistencia de categorías.
type CategoryRepository interface {
	Create(ctx context.Context, c *entity.Category) error
	GetByID(ctx context.Context, id string) (*entity.Category, error)
	List(ctx context.Context, onlyActive bool) ([]*entity.Category, error)
	Update(ctx context.Context, c *entity.Category) error
	Delete(ctx context.Context, id string) error
}

// UnitMeasureRepository puerto de persistencia de unidades de medida.
type UnitMeasureRepository interface {
	Create(ctx context.Context, u *entity.UnitMeasure) error
	GetByID(ctx context.Context, id string) (*entity.UnitMeasure, error)
	ListActive(ctx context.Context) ([]*entity.UnitMeasure, error)
	Update(ctx context.Context, u *entity.UnitMeasure) error
	Delete(ctx context.Context, id string) error
}

// MovementTypeRepository puerto de persistencia de tipos de movimiento.
type MovementTypeRepository interface {
	Create(ctx context.Context, m *entity.MovementType) error
	GetByID(ctx context.Context, id string) (*entity.MovementType, error)
	List(ctx context.Context, onlyActive bool) ([]*entity.MovementType, error)
	Update(ctx context.Context, m *entity.MovementType) error
	Delete(ctx context.Context, id string) error
}
