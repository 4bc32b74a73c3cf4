package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/inventra/inventra-api/internal/application/dto"
	"github.com/inventra/inventra-api/internal/domain"
	"github.com/inventra/inventra-api/internal/domain/entity"
	"github.com/inventra/inventra-api/internal/domain/repository"
	"github.com/inventra/inventra-api/pkg/logger"
)

// ProductNotifier publica cambios de producto a los clientes conectados (hub de
// websockets). Puede ser nil; en ese caso no se notifica.
type ProductNotifier interface {
	NotifyProductChanged(p *entity.Product)
}

// ProductUseCase CRUD de productos de catálogo. El stock NO se edita por aquí:
// solo se mueve vía la conciliación de facturas internas (el alta admite un
// stock inicial porque todavía no hay facturas que lo gobiernen).
type ProductUseCase struct {
	productRepo     repository.ProductRepository
	categoryRepo    repository.CategoryRepository
	unitMeasureRepo repository.UnitMeasureRepository
	notifier        ProductNotifier
	log             *logger.Logger
}

// NewProductUseCase construye el caso de uso. notifier puede ser nil.
func NewProductUseCase(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	unitMeasureRepo repository.UnitMeasureRepository,
	notifier ProductNotifier,
	log *logger.Logger,
) *ProductUseCase {
	return &ProductUseCase{
		productRepo:     productRepo,
		categoryRepo:    categoryRepo,
		unitMeasureRepo: unitMeasureRepo,
		notifier:        notifier,
		log:             log,
	}
}

// Create da de alta un producto.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := uc.checkForeignKeys(ctx, in.CategoryID, in.UnitMeasureID); err != nil {
		return nil, err
	}
	existing, err := uc.productRepo.GetByName(ctx, in.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}

	now := time.Now()
	p := &entity.Product{
		ID:             uuid.New().String(),
		Name:           in.Name,
		Description:    in.Description,
		CategoryID:     in.CategoryID,
		UnitMeasureID:  in.UnitMeasureID,
		StockQuantity:  in.InitialStock,
		MinStock:       in.MinStock,
		ReferencePrice: in.ReferencePrice,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.productRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	uc.notify(p)
	out := dto.ToProductResponse(p)
	return &out, nil
}

// GetByID devuelve un producto.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	p, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	out := dto.ToProductResponse(p)
	return &out, nil
}

// List devuelve una página de productos con filtros.
func (uc *ProductUseCase) List(ctx context.Context, f repository.ProductFilter) (*dto.ProductListResponse, error) {
	if f.Limit <= 0 {
		f.Limit = 10
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	products, total, err := uc.productRepo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := &dto.ProductListResponse{
		Page: dto.PageResponse{
			Page:       f.Offset/f.Limit + 1,
			Limit:      f.Limit,
			Total:      total,
			TotalPages: (total + f.Limit - 1) / f.Limit,
		},
	}
	for _, p := range products {
		out.Products = append(out.Products, dto.ToProductResponse(p))
	}
	return out, nil
}

// Update aplica una actualización parcial (stock excluido).
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if in.MinStock != nil && in.MinStock.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if in.ReferencePrice != nil && in.ReferencePrice.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	catID, umID := "", ""
	if in.CategoryID != nil {
		catID = *in.CategoryID
	}
	if in.UnitMeasureID != nil {
		umID = *in.UnitMeasureID
	}
	if err := uc.checkForeignKeys(ctx, catID, umID); err != nil {
		return nil, err
	}

	p, err := uc.productRepo.Update(ctx, id, repository.ProductPatch{
		Name:           in.Name,
		Description:    in.Description,
		CategoryID:     in.CategoryID,
		UnitMeasureID:  in.UnitMeasureID,
		MinStock:       in.MinStock,
		ReferencePrice: in.ReferencePrice,
		Active:         in.Active,
	})
	if err != nil {
		return nil, err
	}
	uc.notify(p)
	out := dto.ToProductResponse(p)
	return &out, nil
}

// Delete elimina un producto del catálogo.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	return uc.productRepo.Delete(ctx, id)
}

func (uc *ProductUseCase) checkForeignKeys(ctx context.Context, categoryID, unitMeasureID string) error {
	if categoryID != "" {
		c, err := uc.categoryRepo.GetByID(ctx, categoryID)
		if err != nil {
			return err
		}
		if c == nil {
			return domain.ErrNotFound
		}
	}
	if unitMeasureID != "" {
		u, err := uc.unitMeasureRepo.GetByID(ctx, unitMeasureID)
		if err != nil {
			return err
		}
		if u == nil {
			return domain.ErrNotFound
		}
	}
	return nil
}

func (uc *ProductUseCase) notify(p *entity.Product) {
	if uc.notifier == nil || p == nil {
		return
	}
	uc.notifier.NotifyProductChanged(p)
}
