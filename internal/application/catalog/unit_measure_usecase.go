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

// UnitMeasureUseCase CRUD de unidades de medida.
type UnitMeasureUseCase struct {
	repo repository.UnitMeasureRepository
}

func NewUnitMeasureUseCase(repo repository.UnitMeasureRepository) *UnitMeasureUseCase {
	return &UnitMeasureUseCase{repo: repo}
}

func (uc *UnitMeasureUseCase) Create(ctx context.Context, in dto.UnitMeasureRequest) (*dto.UnitMeasureResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	now := time.Now()
	u := &entity.UnitMeasure{
		ID:           uuid.New().String(),
		Name:         in.Name,
		Abbreviation: in.Abbreviation,
		Description:  in.Description,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.Active != nil {
		u.Active = *in.Active
	}
	if err := uc.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	out := dto.ToUnitMeasureResponse(u)
	return &out, nil
}

func (uc *UnitMeasureUseCase) GetByID(ctx context.Context, id string) (*dto.UnitMeasureResponse, error) {
	u, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrNotFound
	}
	out := dto.ToUnitMeasureResponse(u)
	return &out, nil
}

func (uc *UnitMeasureUseCase) ListActive(ctx context.Context) ([]dto.UnitMeasureResponse, error) {
	units, err := uc.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UnitMeasureResponse, 0, len(units))
	for _, u := range units {
		out = append(out, dto.ToUnitMeasureResponse(u))
	}
	return out, nil
}

func (uc *UnitMeasureUseCase) Update(ctx context.Context, id string, in dto.UnitMeasureRequest) (*dto.UnitMeasureResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	u, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrNotFound
	}
	u.Name = in.Name
	u.Abbreviation = in.Abbreviation
	u.Description = in.Description
	if in.Active != nil {
		u.Active = *in.Active
	}
	if err := uc.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	out := dto.ToUnitMeasureResponse(u)
	return &out, nil
}

func (uc *UnitMeasureUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}
