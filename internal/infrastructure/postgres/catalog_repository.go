package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/inventra/inventra-api/internal/domain"
	"github.com/inventra/inventra-api/internal/domain/entity"
	"github.com/inventra/inventra-api/internal/domain/repository"
)

var (
	_ repository.CategoryRepository     = (*CategoryRepo)(nil)
	_ repository.UnitMeasureRepository  = (*UnitMeasureRepo)(nil)
	_ repository.MovementTypeRepository = (*MovementTypeRepo)(nil)
)

// CategoryRepo implementación de CategoryRepository sobre PostgreSQL.
type CategoryRepo struct {
	q Querier
}

func NewCategoryRepository(q Querier) *CategoryRepo {
	return &CategoryRepo{q: q}
}

func (r *CategoryRepo) Create(ctx context.Context, c *entity.Category) error {
	query := `
		INSERT INTO categories (id, name, description, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, c.ID, c.Name, c.Description, c.Active, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	query := `SELECT id, name, description, active, created_at, updated_at FROM categories WHERE id = $1`
	var c entity.Category
	err := r.q.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Description, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

func (r *CategoryRepo) List(ctx context.Context, onlyActive bool) ([]*entity.Category, error) {
	query := `SELECT id, name, description, active, created_at, updated_at FROM categories`
	if onlyActive {
		query += ` WHERE active`
	}
	query += ` ORDER BY name ASC`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var list []*entity.Category
	for rows.Next() {
		var c entity.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

func (r *CategoryRepo) Update(ctx context.Context, c *entity.Category) error {
	query := `
		UPDATE categories
		SET name = $2, description = $3, active = $4, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, c.ID, c.Name, c.Description, c.Active)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UnitMeasureRepo implementación de UnitMeasureRepository sobre PostgreSQL.
type UnitMeasureRepo struct {
	q Querier
}

func NewUnitMeasureRepository(q Querier) *UnitMeasureRepo {
	return &UnitMeasureRepo{q: q}
}

func (r *UnitMeasureRepo) Create(ctx context.Context, u *entity.UnitMeasure) error {
	query := `
		INSERT INTO unit_measures (id, name, abbreviation, description, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, u.ID, u.Name, u.Abbreviation, u.Description, u.Active, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert unit measure: %w", err)
	}
	return nil
}

func (r *UnitMeasureRepo) GetByID(ctx context.Context, id string) (*entity.UnitMeasure, error) {
	query := `SELECT id, name, abbreviation, description, active, created_at, updated_at
		FROM unit_measures WHERE id = $1`
	var u entity.UnitMeasure
	err := r.q.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Name, &u.Abbreviation, &u.Description, &u.Active, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get unit measure: %w", err)
	}
	return &u, nil
}

func (r *UnitMeasureRepo) ListActive(ctx context.Context) ([]*entity.UnitMeasure, error) {
	query := `SELECT id, name, abbreviation, description, active, created_at, updated_at
		FROM unit_measures WHERE active ORDER BY name ASC`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list unit measures: %w", err)
	}
	defer rows.Close()

	var list []*entity.UnitMeasure
	for rows.Next() {
		var u entity.UnitMeasure
		if err := rows.Scan(&u.ID, &u.Name, &u.Abbreviation, &u.Description, &u.Active, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan unit measure: %w", err)
		}
		list = append(list, &u)
	}
	return list, rows.Err()
}

func (r *UnitMeasureRepo) Update(ctx context.Context, u *entity.UnitMeasure) error {
	query := `
		UPDATE unit_measures
		SET name = $2, abbreviation = $3, description = $4, active = $5, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, u.ID, u.Name, u.Abbreviation, u.Description, u.Active)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update unit measure: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UnitMeasureRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM unit_measures WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete unit measure: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MovementTypeRepo implementación de MovementTypeRepository sobre PostgreSQL.
type MovementTypeRepo struct {
	q Querier
}

func NewMovementTypeRepository(q Querier) *MovementTypeRepo {
	return &MovementTypeRepo{q: q}
}

func (r *MovementTypeRepo) Create(ctx context.Context, m *entity.MovementType) error {
	query := `
		INSERT INTO movement_types (id, name, description, affects_stock, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, m.ID, m.Name, m.Description, m.AffectsStock, m.Active, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert movement type: %w", err)
	}
	return nil
}

func (r *MovementTypeRepo) GetByID(ctx context.Context, id string) (*entity.MovementType, error) {
	query := `SELECT id, name, description, affects_stock, active, created_at, updated_at
		FROM movement_types WHERE id = $1`
	var m entity.MovementType
	err := r.q.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.Name, &m.Description, &m.AffectsStock, &m.Active, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement type: %w", err)
	}
	return &m, nil
}

func (r *MovementTypeRepo) List(ctx context.Context, onlyActive bool) ([]*entity.MovementType, error) {
	query := `SELECT id, name, description, affects_stock, active, created_at, updated_at
		FROM movement_types`
	if onlyActive {
		query += ` WHERE active`
	}
	query += ` ORDER BY name ASC`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list movement types: %w", err)
	}
	defer rows.Close()

	var list []*entity.MovementType
	for rows.Next() {
		var m entity.MovementType
		if err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.AffectsStock, &m.Active, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan movement type: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

func (r *MovementTypeRepo) Update(ctx context.Context, m *entity.MovementType) error {
	query := `
		UPDATE movement_types
		SET name = $2, description = $3, affects_stock = $4, active = $5, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, m.ID, m.Name, m.Description, m.AffectsStock, m.Active)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update movement type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MovementTypeRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM movement_types WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete movement type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
