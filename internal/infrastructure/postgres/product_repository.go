package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/inventra/inventra-api/internal/domain"
	"github.com/inventra/inventra-api/internal/domain/entity"
	"github.com/inventra/inventra-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación de ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `p.id, p.name, p.description, p.category_id, p.unit_measure_id,
	       p.stock_quantity, p.min_stock, p.reference_price, p.active, p.created_at, p.updated_at`

// Create persiste un producto nuevo.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (id, name, description, category_id, unit_measure_id,
		                      stock_quantity, min_stock, reference_price, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Name, p.Description, p.CategoryID, p.UnitMeasureID,
		p.StockQuantity, p.MinStock, p.ReferencePrice, p.Active, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID (nil si no existe).
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE p.id = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, id))
}

// GetByName obtiene un producto activo por nombre exacto (nil si no existe).
func (r *ProductRepo) GetByName(ctx context.Context, name string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE p.name = $1 AND p.active LIMIT 1`
	return r.scanOne(r.q.QueryRow(ctx, query, name))
}

// List devuelve productos filtrados con el total de la consulta (para paginación).
func (r *ProductRepo) List(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, int, error) {
	conditions := make([]string, 0, 4)
	args := make([]any, 0, 6)

	if f.Active != nil {
		args = append(args, *f.Active)
		conditions = append(conditions, fmt.Sprintf("p.active = $%d", len(args)))
	}
	if f.CategoryID != "" {
		args = append(args, f.CategoryID)
		conditions = append(conditions, fmt.Sprintf("p.category_id = $%d", len(args)))
	}
	if f.UnitMeasureID != "" {
		args = append(args, f.UnitMeasureID)
		conditions = append(conditions, fmt.Sprintf("p.unit_measure_id = $%d", len(args)))
	}
	if s := strings.TrimSpace(f.SearchText); s != "" {
		args = append(args, "%"+escapeLike(s)+"%")
		conditions = append(conditions,
			fmt.Sprintf("(p.name ILIKE $%d OR p.description ILIKE $%d)", len(args), len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM products p " + where
	if err := r.q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	args = append(args, f.Limit, f.Offset)
	query := fmt.Sprintf(`
		SELECT `+productColumns+`, c.name, um.name
		FROM products p
		JOIN categories c ON p.category_id = c.id
		JOIN unit_measures um ON p.unit_measure_id = um.id
		%s
		ORDER BY p.name ASC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var list []*entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.CategoryID, &p.UnitMeasureID,
			&p.StockQuantity, &p.MinStock, &p.ReferencePrice, &p.Active, &p.CreatedAt, &p.UpdatedAt,
			&p.CategoryName, &p.UnitMeasureName,
		); err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, &p)
	}
	return list, total, rows.Err()
}

// Update aplica un patch tipado y devuelve el producto actualizado. El stock
// nunca se toca por aquí (solo vía AdjustStock).
func (r *ProductRepo) Update(ctx context.Context, id string, patch repository.ProductPatch) (*entity.Product, error) {
	sets := []string{"updated_at = now()"}
	args := []any{id}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.CategoryID != nil {
		add("category_id", *patch.CategoryID)
	}
	if patch.UnitMeasureID != nil {
		add("unit_measure_id", *patch.UnitMeasureID)
	}
	if patch.MinStock != nil {
		add("min_stock", *patch.MinStock)
	}
	if patch.ReferencePrice != nil {
		add("reference_price", *patch.ReferencePrice)
	}
	if patch.Active != nil {
		add("active", *patch.Active)
	}

	query := fmt.Sprintf("UPDATE products SET %s WHERE id = $1", strings.Join(sets, ", "))
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicate
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete elimina un producto.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AdjustStock aplica stock = stock + delta de forma atómica. Si delta es
// negativo, primero lee stock y nombre bajo FOR UPDATE (misma transacción) y
// falla con *domain.InsufficientStockError si el resultado quedaría negativo.
// Si newPrice != nil y > 0, sobreescribe el precio de referencia
// (last-writer-wins, sin histórico). Ajuste relativo, no idempotente: una sola
// invocación por cambio lógico, siempre dentro de la transacción de conciliación.
func (r *ProductRepo) AdjustStock(ctx context.Context, productID string, delta decimal.Decimal, newPrice *decimal.Decimal) error {
	if delta.IsNegative() {
		var name string
		var current decimal.Decimal
		err := r.q.QueryRow(ctx,
			`SELECT name, stock_quantity FROM products WHERE id = $1 FOR UPDATE`,
			productID,
		).Scan(&name, &current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("read stock for adjust: %w", err)
		}
		if current.Add(delta).IsNegative() {
			return &domain.InsufficientStockError{
				ProductID:    productID,
				ProductName:  name,
				CurrentStock: current,
				Delta:        delta,
			}
		}
	}

	query := `UPDATE products SET stock_quantity = stock_quantity + $2, updated_at = now() WHERE id = $1`
	args := []any{productID, delta}
	if newPrice != nil && newPrice.IsPositive() {
		query = `UPDATE products
			SET stock_quantity = stock_quantity + $2, reference_price = $3, updated_at = now()
			WHERE id = $1`
		args = append(args, *newPrice)
	}
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("adjust stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SearchByNameTokens devuelve hasta 20 productos activos cuyo nombre contiene
// todos los tokens (para el enriquecimiento de facturas extraídas).
func (r *ProductRepo) SearchByNameTokens(ctx context.Context, tokens []string) ([]*entity.Product, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	conditions := make([]string, 0, len(tokens))
	args := make([]any, 0, len(tokens))
	for _, t := range tokens {
		args = append(args, "%"+escapeLike(t)+"%")
		conditions = append(conditions, fmt.Sprintf("p.name ILIKE $%d", len(args)))
	}
	query := `SELECT ` + productColumns + ` FROM products p
		WHERE p.active AND ` + strings.Join(conditions, " AND ") + `
		ORDER BY p.name ASC LIMIT 20`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()

	var list []*entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.CategoryID, &p.UnitMeasureID,
			&p.StockQuantity, &p.MinStock, &p.ReferencePrice, &p.Active, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

func (r *ProductRepo) scanOne(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.CategoryID, &p.UnitMeasureID,
		&p.StockQuantity, &p.MinStock, &p.ReferencePrice, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}
