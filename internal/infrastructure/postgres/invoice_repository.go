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

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository sobre PostgreSQL (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `i.id, i.code, i.movement_type_id, i.concept, i.responsible_user_id,
	       i.movement_date, i.total, i.notes, i.state, i.created_at, i.updated_at`

const invoiceJoinedColumns = invoiceColumns + `, mt.name, u.username`

const invoiceJoins = `
	FROM internal_invoices i
	JOIN movement_types mt ON i.movement_type_id = mt.id
	JOIN users u ON i.responsible_user_id = u.id`

// GetByIDForUpdate bloquea la fila de la cabecera (SELECT ... FOR UPDATE) y
// devuelve cabecera + líneas en la transacción del caller. El bloqueo hace que
// dos actualizaciones concurrentes a la misma factura serialicen: la segunda
// espera el commit/rollback de la primera antes de leer el estado.
//
// FOR UPDATE no admite el JOIN a tablas laterales, así que se bloquea solo la
// cabecera y los nombres de join se omiten (no se necesitan para conciliar).
func (r *InvoiceRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Invoice, []*entity.InvoiceLine, error) {
	query := `
		SELECT i.id, i.code, i.movement_type_id, i.concept, i.responsible_user_id,
		       i.movement_date, i.total, i.notes, i.state, i.created_at, i.updated_at
		FROM internal_invoices i
		WHERE i.id = $1
		FOR UPDATE`
	var inv entity.Invoice
	err := r.q.QueryRow(ctx, query, id).Scan(
		&inv.ID, &inv.Code, &inv.MovementTypeID, &inv.Concept, &inv.ResponsibleUserID,
		&inv.MovementDate, &inv.Total, &inv.Notes, &inv.State, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get invoice for update: %w", err)
	}
	lines, err := r.GetLines(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return &inv, lines, nil
}

// GetByID obtiene la cabecera con nombres de join (nil si no existe).
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceJoinedColumns + invoiceJoins + ` WHERE i.id = $1`
	return r.scanJoined(r.q.QueryRow(ctx, query, id))
}

// GetByCode obtiene la cabecera por su código externo (nil si no existe).
func (r *InvoiceRepo) GetByCode(ctx context.Context, code string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceJoinedColumns + invoiceJoins + ` WHERE i.code = $1`
	return r.scanJoined(r.q.QueryRow(ctx, query, code))
}

// ExistsCode verifica si ya hay una factura con ese código (case sensitive).
func (r *InvoiceRepo) ExistsCode(ctx context.Context, code string) (bool, error) {
	var one int
	err := r.q.QueryRow(ctx, `SELECT 1 FROM internal_invoices WHERE code = $1 LIMIT 1`, code).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("exists code: %w", err)
	}
	return true, nil
}

// List devuelve facturas filtradas por estado, texto y rango de fechas, más el
// total para paginación.
func (r *InvoiceRepo) List(ctx context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, int, error) {
	conditions := make([]string, 0, 4)
	args := make([]any, 0, 6)

	if f.State != "" {
		args = append(args, f.State)
		conditions = append(conditions, fmt.Sprintf("i.state = $%d", len(args)))
	}
	if s := strings.TrimSpace(f.SearchText); s != "" {
		args = append(args, "%"+escapeLike(s)+"%")
		conditions = append(conditions,
			fmt.Sprintf("(i.code ILIKE $%d OR i.concept ILIKE $%d)", len(args), len(args)))
	}
	if f.DateFrom != nil {
		args = append(args, *f.DateFrom)
		conditions = append(conditions, fmt.Sprintf("i.movement_date >= $%d", len(args)))
	}
	if f.DateTo != nil {
		args = append(args, *f.DateTo)
		conditions = append(conditions, fmt.Sprintf("i.movement_date <= $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.q.QueryRow(ctx, "SELECT COUNT(*) FROM internal_invoices i"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count invoices: %w", err)
	}

	args = append(args, f.Limit, f.Offset)
	query := fmt.Sprintf(`SELECT `+invoiceJoinedColumns+invoiceJoins+`%s
		ORDER BY i.created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var list []*entity.Invoice
	for rows.Next() {
		var inv entity.Invoice
		if err := rows.Scan(
			&inv.ID, &inv.Code, &inv.MovementTypeID, &inv.Concept, &inv.ResponsibleUserID,
			&inv.MovementDate, &inv.Total, &inv.Notes, &inv.State, &inv.CreatedAt, &inv.UpdatedAt,
			&inv.MovementTypeName, &inv.ResponsibleUser,
		); err != nil {
			return nil, 0, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, &inv)
	}
	return list, total, rows.Err()
}

// Stats agregados por estado y monto total.
func (r *InvoiceRepo) Stats(ctx context.Context) (*repository.InvoiceStats, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE state = 'DRAFT'),
		       COUNT(*) FILTER (WHERE state = 'CONFIRMED'),
		       COUNT(*) FILTER (WHERE state = 'VOIDED'),
		       COALESCE(SUM(total), 0)
		FROM internal_invoices`
	var s repository.InvoiceStats
	err := r.q.QueryRow(ctx, query).Scan(&s.Total, &s.Draft, &s.Confirmed, &s.Voided, &s.TotalAmount)
	if err != nil {
		return nil, fmt.Errorf("invoice stats: %w", err)
	}
	return &s, nil
}

// InsertHeader persiste la cabecera.
func (r *InvoiceRepo) InsertHeader(ctx context.Context, inv *entity.Invoice) error {
	query := `
		INSERT INTO internal_invoices (id, code, movement_type_id, concept, responsible_user_id,
		                               movement_date, total, notes, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.Code, inv.MovementTypeID, inv.Concept, inv.ResponsibleUserID,
		inv.MovementDate, inv.Total, inv.Notes, inv.State, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// UpdateHeader aplica un patch tipado a la cabecera (cada campo solo si no es nil).
func (r *InvoiceRepo) UpdateHeader(ctx context.Context, id string, patch repository.InvoiceHeaderPatch) error {
	sets := []string{"updated_at = now()"}
	args := []any{id}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Code != nil {
		add("code", *patch.Code)
	}
	if patch.MovementTypeID != nil {
		add("movement_type_id", *patch.MovementTypeID)
	}
	if patch.Concept != nil {
		add("concept", *patch.Concept)
	}
	if patch.ResponsibleUserID != nil {
		add("responsible_user_id", *patch.ResponsibleUserID)
	}
	if patch.MovementDate != nil {
		add("movement_date", *patch.MovementDate)
	}
	if patch.Total != nil {
		add("total", *patch.Total)
	}
	if patch.Notes != nil {
		add("notes", *patch.Notes)
	}
	if patch.State != nil {
		add("state", *patch.State)
	}

	query := fmt.Sprintf("UPDATE internal_invoices SET %s WHERE id = $1", strings.Join(sets, ", "))
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update invoice header: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteCascade elimina cabecera y líneas. No revierte stock (hueco heredado,
// ver DESIGN.md).
func (r *InvoiceRepo) DeleteCascade(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM invoice_lines WHERE invoice_id = $1`, id); err != nil {
		return fmt.Errorf("delete invoice lines: %w", err)
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM internal_invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetLines devuelve las líneas actuales de la factura con el nombre del producto.
func (r *InvoiceRepo) GetLines(ctx context.Context, invoiceID string) ([]*entity.InvoiceLine, error) {
	query := `
		SELECT l.id, l.invoice_id, l.product_id, l.quantity, l.unit_price, p.name
		FROM invoice_lines l
		JOIN products p ON l.product_id = p.id
		WHERE l.invoice_id = $1
		ORDER BY l.id`
	rows, err := r.q.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice lines: %w", err)
	}
	defer rows.Close()

	var list []*entity.InvoiceLine
	for rows.Next() {
		var l entity.InvoiceLine
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.ProductID, &l.Quantity, &l.UnitPrice, &l.ProductName); err != nil {
			return nil, fmt.Errorf("scan invoice line: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// InsertLine persiste una línea.
func (r *InvoiceRepo) InsertLine(ctx context.Context, line *entity.InvoiceLine) error {
	query := `
		INSERT INTO invoice_lines (id, invoice_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query, line.ID, line.InvoiceID, line.ProductID, line.Quantity, line.UnitPrice)
	if err != nil {
		return fmt.Errorf("insert invoice line: %w", err)
	}
	return nil
}

// UpdateLine actualiza cantidad y precio de una línea.
func (r *InvoiceRepo) UpdateLine(ctx context.Context, lineID string, qty, price decimal.Decimal) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE invoice_lines SET quantity = $2, unit_price = $3 WHERE id = $1`,
		lineID, qty, price,
	)
	if err != nil {
		return fmt.Errorf("update invoice line: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteLine elimina una línea.
func (r *InvoiceRepo) DeleteLine(ctx context.Context, lineID string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM invoice_lines WHERE id = $1`, lineID)
	if err != nil {
		return fmt.Errorf("delete invoice line: %w", err)
	}
	return nil
}

func (r *InvoiceRepo) scanJoined(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	err := row.Scan(
		&inv.ID, &inv.Code, &inv.MovementTypeID, &inv.Concept, &inv.ResponsibleUserID,
		&inv.MovementDate, &inv.Total, &inv.Notes, &inv.State, &inv.CreatedAt, &inv.UpdatedAt,
		&inv.MovementTypeName, &inv.ResponsibleUser,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return &inv, nil
}
