package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/inventra/inventra-api/internal/application/dto"
	"github.com/inventra/inventra-api/internal/domain"
	"github.com/inventra/inventra-api/internal/domain/entity"
	"github.com/inventra/inventra-api/internal/domain/repository"
)

// MovementTypeUseCase CRUD de tipos de movimiento. AffectsStock es informativo:
// la conciliación de stock depende del estado de la factura, no del tipo.
type MovementTypeUseCase struct {
	repo repository.MovementTypeRepository
}

func NewMovementTypeUseCase(repo repository.MovementTypeRepository) *MovementTypeUseCase {
	return &MovementTypeUseCase{repo: repo}
}

func (uc *MovementTypeUseCase) Create(ctx context.Context, in dto.MovementTypeRequest) (*dto.MovementTypeResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	now := time.Now()
	m := &entity.MovementType{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Description: in.Description,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.AffectsStock != nil {
		m.AffectsStock = *in.AffectsStock
	}
	if in.Active != nil {
		m.Active = *in.Active
	}
	if err := uc.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	out := dto.ToMovementTypeResponse(m)
	return &out, nil
}

func (uc *MovementTypeUseCase) GetByID(ctx context.Context, id string) (*dto.MovementTypeResponse, error) {
	m, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	out := dto.ToMovementTypeResponse(m)
	return &out, nil
}

func (uc *MovementTypeUseCase) List(ctx context.Context, onlyActive bool) ([]dto.MovementTypeResponse, error) {
	types, err := uc.repo.List(ctx, onlyActive)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementTypeResponse, 0, len(types))
	for _, m := range types {
		out = append(out, dto.ToMovementTypeResponse(m))
	}
	return out, nil
}

func (uc *MovementTypeUseCase) Update(ctx context.Context, id string, in dto.MovementTypeRequest) (*dto.MovementTypeResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	m, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	m.Name = in.Name
	m.Description = in.Description
	if in.AffectsStock != nil {
		m.AffectsStock = *in.AffectsStock
	}
	if in.Active != nil {
		m.Active = *in.Active
	}
	if err := uc.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	out := dto.ToMovementTypeResponse(m)
	return &out, nil
}

func (uc *MovementTypeUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}
