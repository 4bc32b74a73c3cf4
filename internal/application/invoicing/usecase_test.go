package invoicing

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inventra/inventra-api/internal/application/dto"
	"github.com/inventra/inventra-api/internal/domain"
	"github.com/inventra/inventra-api/internal/domain/entity"
	"github.com/inventra/inventra-api/internal/domain/repository"
	"github.com/inventra/inventra-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria con semántica transaccional (snapshot + rollback)
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	products  map[string]*entity.Product
	invoices  map[string]*entity.Invoice
	lines     map[string]*entity.InvoiceLine
	users     map[string]*entity.User
	moveTypes map[string]*entity.MovementType
}

func newMemStore() *memStore {
	return &memStore{
		products:  map[string]*entity.Product{},
		invoices:  map[string]*entity.Invoice{},
		lines:     map[string]*entity.InvoiceLine{},
		users:     map[string]*entity.User{},
		moveTypes: map[string]*entity.MovementType{},
	}
}

// snapshot copia profunda del estado mutable (productos, facturas y líneas).
func (s *memStore) snapshot() *memStore {
	c := newMemStore()
	for k, v := range s.products {
		cp := *v
		c.products[k] = &cp
	}
	for k, v := range s.invoices {
		cp := *v
		c.invoices[k] = &cp
	}
	for k, v := range s.lines {
		cp := *v
		c.lines[k] = &cp
	}
	c.users = s.users
	c.moveTypes = s.moveTypes
	return c
}

func (s *memStore) restore(snap *memStore) {
	s.products = snap.products
	s.invoices = snap.invoices
	s.lines = snap.lines
}

type fakeInvoiceRepo struct{ s *memStore }

func (r *fakeInvoiceRepo) GetByIDForUpdate(_ context.Context, id string) (*entity.Invoice, []*entity.InvoiceLine, error) {
	inv, ok := r.s.invoices[id]
	if !ok {
		return nil, nil, domain.ErrNotFound
	}
	lines, _ := r.GetLines(context.Background(), id)
	return inv, lines, nil
}

func (r *fakeInvoiceRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	return r.s.invoices[id], nil
}

func (r *fakeInvoiceRepo) GetByCode(_ context.Context, code string) (*entity.Invoice, error) {
	for _, inv := range r.s.invoices {
		if inv.Code == code {
			return inv, nil
		}
	}
	return nil, nil
}

func (r *fakeInvoiceRepo) ExistsCode(_ context.Context, code string) (bool, error) {
	for _, inv := range r.s.invoices {
		if inv.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeInvoiceRepo) List(_ context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, int, error) {
	var out []*entity.Invoice
	for _, inv := range r.s.invoices {
		if f.State != "" && inv.State != f.State {
			continue
		}
		out = append(out, inv)
	}
	return out, len(out), nil
}

func (r *fakeInvoiceRepo) Stats(_ context.Context) (*repository.InvoiceStats, error) {
	st := &repository.InvoiceStats{TotalAmount: decimal.Zero}
	for _, inv := range r.s.invoices {
		st.Total++
		switch inv.State {
		case entity.StateDraft:
			st.Draft++
		case entity.StateConfirmed:
			st.Confirmed++
		case entity.StateVoided:
			st.Voided++
		}
		st.TotalAmount = st.TotalAmount.Add(inv.Total)
	}
	return st, nil
}

func (r *fakeInvoiceRepo) InsertHeader(_ context.Context, inv *entity.Invoice) error {
	cp := *inv
	r.s.invoices[inv.ID] = &cp
	return nil
}

func (r *fakeInvoiceRepo) UpdateHeader(_ context.Context, id string, patch repository.InvoiceHeaderPatch) error {
	inv, ok := r.s.invoices[id]
	if !ok {
		return domain.ErrNotFound
	}
	if patch.Code != nil {
		inv.Code = *patch.Code
	}
	if patch.MovementTypeID != nil {
		inv.MovementTypeID = *patch.MovementTypeID
	}
	if patch.Concept != nil {
		inv.Concept = *patch.Concept
	}
	if patch.ResponsibleUserID != nil {
		inv.ResponsibleUserID = *patch.ResponsibleUserID
	}
	if patch.MovementDate != nil {
		inv.MovementDate = *patch.MovementDate
	}
	if patch.Total != nil {
		inv.Total = *patch.Total
	}
	if patch.Notes != nil {
		inv.Notes = *patch.Notes
	}
	if patch.State != nil {
		inv.State = *patch.State
	}
	inv.UpdatedAt = time.Now()
	return nil
}

func (r *fakeInvoiceRepo) DeleteCascade(_ context.Context, id string) error {
	if _, ok := r.s.invoices[id]; !ok {
		return domain.ErrNotFound
	}
	for lid, l := range r.s.lines {
		if l.InvoiceID == id {
			delete(r.s.lines, lid)
		}
	}
	delete(r.s.invoices, id)
	return nil
}

func (r *fakeInvoiceRepo) GetLines(_ context.Context, invoiceID string) ([]*entity.InvoiceLine, error) {
	var out []*entity.InvoiceLine
	for _, l := range r.s.lines {
		if l.InvoiceID == invoiceID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeInvoiceRepo) InsertLine(_ context.Context, line *entity.InvoiceLine) error {
	cp := *line
	r.s.lines[line.ID] = &cp
	return nil
}

func (r *fakeInvoiceRepo) UpdateLine(_ context.Context, lineID string, qty, price decimal.Decimal) error {
	l, ok := r.s.lines[lineID]
	if !ok {
		return domain.ErrNotFound
	}
	l.Quantity = qty
	l.UnitPrice = price
	return nil
}

func (r *fakeInvoiceRepo) DeleteLine(_ context.Context, lineID string) error {
	delete(r.s.lines, lineID)
	return nil
}

type fakeProductRepo struct{ s *memStore }

func (r *fakeProductRepo) Create(_ context.Context, p *entity.Product) error {
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	return r.s.products[id], nil
}

func (r *fakeProductRepo) GetByName(_ context.Context, name string) (*entity.Product, error) {
	for _, p := range r.s.products {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) List(_ context.Context, _ repository.ProductFilter) ([]*entity.Product, int, error) {
	return nil, 0, nil
}

func (r *fakeProductRepo) Update(_ context.Context, id string, _ repository.ProductPatch) (*entity.Product, error) {
	return r.s.products[id], nil
}

func (r *fakeProductRepo) Delete(_ context.Context, _ string) error { return nil }

func (r *fakeProductRepo) AdjustStock(_ context.Context, productID string, delta decimal.Decimal, newPrice *decimal.Decimal) error {
	p, ok := r.s.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	result := p.StockQuantity.Add(delta)
	if delta.IsNegative() && result.IsNegative() {
		return &domain.InsufficientStockError{
			ProductID:    p.ID,
			ProductName:  p.Name,
			CurrentStock: p.StockQuantity,
			Delta:        delta,
		}
	}
	p.StockQuantity = result
	if newPrice != nil && newPrice.IsPositive() {
		p.ReferencePrice = *newPrice
	}
	return nil
}

func (r *fakeProductRepo) SearchByNameTokens(_ context.Context, _ []string) ([]*entity.Product, error) {
	return nil, nil
}

// fakeTxRunner toma un snapshot antes de fn y lo restaura si fn falla,
// imitando el rollback de una transacción real.
type fakeTxRunner struct{ s *memStore }

func (t *fakeTxRunner) Run(ctx context.Context, fn func(repository.InvoiceRepository, repository.ProductRepository) error) error {
	snap := t.s.snapshot()
	if err := fn(&fakeInvoiceRepo{s: t.s}, &fakeProductRepo{s: t.s}); err != nil {
		t.s.restore(snap)
		return err
	}
	return nil
}

type fakeMovementTypeRepo struct{ s *memStore }

func (r *fakeMovementTypeRepo) Create(_ context.Context, m *entity.MovementType) error {
	r.s.moveTypes[m.ID] = m
	return nil
}
func (r *fakeMovementTypeRepo) GetByID(_ context.Context, id string) (*entity.MovementType, error) {
	return r.s.moveTypes[id], nil
}
func (r *fakeMovementTypeRepo) List(_ context.Context, _ bool) ([]*entity.MovementType, error) {
	return nil, nil
}
func (r *fakeMovementTypeRepo) Update(_ context.Context, _ *entity.MovementType) error { return nil }
func (r *fakeMovementTypeRepo) Delete(_ context.Context, _ string) error               { return nil }

type fakeUserRepo struct{ s *memStore }

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	r.s.users[u.ID] = u
	return nil
}
func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	return r.s.users[id], nil
}
func (r *fakeUserRepo) GetByEmail(_ context.Context, _ string) (*entity.User, error) {
	return nil, nil
}
func (r *fakeUserRepo) GetByUsername(_ context.Context, _ string) (*entity.User, error) {
	return nil, nil
}
func (r *fakeUserRepo) List(_ context.Context) ([]*entity.User, error)  { return nil, nil }
func (r *fakeUserRepo) Update(_ context.Context, _ *entity.User) error  { return nil }
func (r *fakeUserRepo) Delete(_ context.Context, _ string) error        { return nil }

// ──────────────────────────────────────────────────────────────────────────────
// Armado
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	store *memStore
	uc    *InvoiceUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := newMemStore()
	s.moveTypes["mt-1"] = &entity.MovementType{ID: "mt-1", Name: "Entrada por compra", AffectsStock: true, Active: true}
	s.users["u-1"] = &entity.User{ID: "u-1", Username: "jperez", Active: true}
	s.products["P"] = &entity.Product{ID: "P", Name: "Cemento gris 50kg", StockQuantity: dec("100"), ReferencePrice: dec("40"), Active: true}
	s.products["Q"] = &entity.Product{ID: "Q", Name: "Arena fina m3", StockQuantity: dec("200"), ReferencePrice: dec("90"), Active: true}

	uc := NewInvoiceUseCase(
		&fakeTxRunner{s: s},
		&fakeInvoiceRepo{s: s},
		&fakeProductRepo{s: s},
		&fakeMovementTypeRepo{s: s},
		&fakeUserRepo{s: s},
		logger.Nop(),
	)
	return &fixture{store: s, uc: uc}
}

func (f *fixture) stock(t *testing.T, productID string) decimal.Decimal {
	t.Helper()
	p, ok := f.store.products[productID]
	require.True(t, ok, "producto %s no existe", productID)
	return p.StockQuantity
}

func (f *fixture) createRequest(code, state string, lines ...dto.InvoiceLineRequest) dto.CreateInvoiceRequest {
	return dto.CreateInvoiceRequest{
		Code:              code,
		MovementTypeID:    "mt-1",
		Concept:           "compra de materiales",
		ResponsibleUserID: "u-1",
		Total:             dec("0"),
		State:             state,
		Lines:             lines,
	}
}

func lineReq(productID, qty, price string) dto.InvoiceLineRequest {
	return dto.InvoiceLineRequest{ProductID: productID, Quantity: dec(qty), UnitPrice: dec(price)}
}

func strPtr(s string) *string { return &s }

// ──────────────────────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────────────────────

func TestInvoiceCreate_Borrador_NoTocaStock(t *testing.T) {
	f := newFixture(t)

	res, err := f.uc.Create(context.Background(), f.createRequest("FI-001", "DRAFT", lineReq("P", "10", "60")))
	require.NoError(t, err)

	assert.Equal(t, "DRAFT", res.Invoice.State)
	assert.Equal(t, 1, res.LineCountAfter)
	assert.True(t, f.stock(t, "P").Equal(dec("100")), "un borrador no contribuye al stock")
	assert.True(t, f.store.products["P"].ReferencePrice.Equal(dec("40")), "el precio tampoco cambia")
}

func TestInvoiceCreate_Confirmada_AplicaStockYPrecio(t *testing.T) {
	f := newFixture(t)

	res, err := f.uc.Create(context.Background(), f.createRequest("FI-002", "CONFIRMED", lineReq("P", "5", "60")))
	require.NoError(t, err)

	assert.Equal(t, "CONFIRMED", res.Invoice.State)
	assert.True(t, f.stock(t, "P").Equal(dec("105")))
	assert.True(t, f.store.products["P"].ReferencePrice.Equal(dec("60")))
}

func TestInvoiceCreate_EstadoPorDefectoEsBorrador(t *testing.T) {
	f := newFixture(t)

	res, err := f.uc.Create(context.Background(), f.createRequest("FI-003", "", lineReq("P", "10", "60")))
	require.NoError(t, err)
	assert.Equal(t, "DRAFT", res.Invoice.State)
}

func TestInvoiceCreate_EstadoAnuladaRechazado(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Create(context.Background(), f.createRequest("FI-004", "VOIDED"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "no se crea una factura ya anulada")
}

func TestInvoiceCreate_CodigoDuplicado(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Create(context.Background(), f.createRequest("FI-005", "DRAFT"))
	require.NoError(t, err)

	_, err = f.uc.Create(context.Background(), f.createRequest("FI-005", "DRAFT"))
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestInvoiceCreate_TipoMovimientoInexistente(t *testing.T) {
	f := newFixture(t)

	in := f.createRequest("FI-006", "DRAFT")
	in.MovementTypeID = "mt-nope"
	_, err := f.uc.Create(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Una línea que referencia un producto inexistente se rechaza antes de
// persistir nada, incluso en borrador (donde no hay ajuste de stock que la
// detecte).
func TestInvoiceCreate_ProductoInexistente(t *testing.T) {
	f := newFixture(t)

	for _, state := range []string{"DRAFT", "CONFIRMED"} {
		_, err := f.uc.Create(context.Background(), f.createRequest("FI-008-"+state, state,
			lineReq("producto-inexistente", "3", "10")))
		assert.ErrorIs(t, err, domain.ErrNotFound, "estado %s", state)
	}
	assert.Empty(t, f.store.invoices, "no se persiste ninguna cabecera")
	assert.Empty(t, f.store.lines, "no se persiste ninguna línea")
}

func TestInvoiceUpdate_ProductoInexistente(t *testing.T) {
	f := newFixture(t)

	res, err := f.uc.Create(context.Background(), f.createRequest("FI-009", "DRAFT", lineReq("P", "10", "50")))
	require.NoError(t, err)

	lines := []dto.InvoiceLineRequest{lineReq("P", "10", "50"), lineReq("producto-inexistente", "2", "5")}
	_, err = f.uc.Update(context.Background(), res.Invoice.ID, dto.UpdateInvoiceRequest{Lines: &lines})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	inv, err := f.uc.GetByID(context.Background(), res.Invoice.ID)
	require.NoError(t, err)
	require.Len(t, inv.Lines, 1, "las líneas originales quedan intactas")
	assert.Equal(t, "P", inv.Lines[0].ProductID)
}

func TestInvoiceCreate_LineaInvalida(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Create(context.Background(), f.createRequest("FI-007", "DRAFT", lineReq("P", "0", "10")))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad cero se rechaza antes del motor")

	_, err = f.uc.Create(context.Background(), f.createRequest("FI-007", "DRAFT", lineReq("P", "1", "-5")))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "precio negativo se rechaza")
}

// ──────────────────────────────────────────────────────────────────────────────
// Transiciones de estado
// ──────────────────────────────────────────────────────────────────────────────

// Crear CONFIRMED (+5) y anular: el stock vuelve exactamente al valor inicial.
func TestInvoiceLifecycle_ConfirmarYAnular_NetoCero(t *testing.T) {
	f := newFixture(t)

	res, err := f.uc.Create(context.Background(), f.createRequest("FI-010", "CONFIRMED", lineReq("P", "5", "60")))
	require.NoError(t, err)
	require.True(t, f.stock(t, "P").Equal(dec("105")))

	res2, err := f.uc.UpdateState(context.Background(), res.Invoice.ID, "VOIDED")
	require.NoError(t, err)

	assert.Equal(t, "VOIDED", res2.Invoice.State)
	assert.True(t, f.stock(t, "P").Equal(dec("100")), "anular revierte el aporte completo")
	assert.True(t, f.store.products["P"].ReferencePrice.Equal(dec("60")),
		"el precio propagado al confirmar se conserva tras anular")
}

// DRAFT → CONFIRMED aplica +qty con el precio de la línea.
func TestInvoiceLifecycle_ConfirmarBorrador(t *testing.T) {
	f := newFixture(t)

	res, err := f.uc.Create(context.Background(), f.createRequest("FI-011", "DRAFT", lineReq("P", "20", "70")))
	require.NoError(t, err)
	require.True(t, f.stock(t, "P").Equal(dec("100")))

	res2, err := f.uc.UpdateState(context.Background(), res.Invoice.ID, "CONFIRMED")
	require.NoError(t, err)

	assert.Equal(t, "CONFIRMED", res2.Invoice.State)
	assert.True(t, f.stock(t, "P").Equal(dec("120")))
	assert.True(t, f.store.products["P"].ReferencePrice.Equal(dec("70")))
}

// CONFIRMED → DRAFT revierte exactamente lo aplicado al confirmar.
func TestInvoiceLifecycle_ReabrirConfirmada_ReversaExacta(t *testing.T) {
	f := newFixture(t)

	res, err := f.uc.Create(context.Background(), f.createRequest("FI-012", "CONFIRMED",
		lineReq("P", "7", "61"), lineReq("Q", "3", "95")))
	require.NoError(t, err)
	require.True(t, f.stock(t, "P").Equal(dec("107")))
	require.True(t, f.stock(t, "Q").Equal(dec("203")))

	_, err = f.uc.UpdateState(context.Background(), res.Invoice.ID, "DRAFT")
	require.NoError(t, err)

	assert.True(t, f.stock(t, "P").Equal(dec("100")))
	assert.True(t, f.stock(t, "Q").Equal(dec("200")))
}

// DRAFT → VOIDED sin pasar por CONFIRMED: neto cero en stock.
func TestInvoiceLifecycle_AnularBorrador_SinEfecto(t *testing.T) {
	f := newFixture(t)

	res, err := f.uc.Create(context.Background(), f.createRequest("FI-013", "DRAFT", lineReq("P", "10", "60")))
	require.NoError(t, err)

	_, err = f.uc.UpdateState(context.Background(), res.Invoice.ID, "VOIDED")
	require.NoError(t, err)
	assert.True(t, f.stock(t, "P").Equal(dec("100")))
}

// VOIDED es terminal: cualquier intento de salir devuelve conflicto.
func TestInvoiceLifecycle_AnuladaEsTerminal(t *testing.T) {
	f := newFixture(t)

	res, err := f.uc.Create(context.Background(), f.createRequest("FI-014", "DRAFT"))
	require.NoError(t, err)
	_, err = f.uc.UpdateState(context.Background(), res.Invoice.ID, "VOIDED")
	require.NoError(t, err)

	for _, target := range []string{"DRAFT", "CONFIRMED"} {
		_, err = f.uc.UpdateState(context.Background(), res.Invoice.ID, target)
		assert.ErrorIs(t, err, domain.ErrConflict, "VOIDED → %s debe rechazarse", target)
	}
}

func TestInvoiceUpdate_EstadoInvalido(t *testing.T) {
	f := newFixture(t)

	res, err := f.uc.Create(context.Background(), f.createRequest("FI-015", "DRAFT"))
	require.NoError(t, err)

	_, err = f.uc.UpdateState(context.Background(), res.Invoice.ID, "PAGADA")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestInvoiceUpdate_NoExiste(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.UpdateState(context.Background(), "no-such-id", "CONFIRMED")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Conciliación de líneas en facturas confirmadas
// ──────────────────────────────────────────────────────────────────────────────

// Resize 10 → 15 en una confirmada: solo el delta +5 llega al stock.
func TestInvoiceUpdate_ConfirmadaResize_AplicaDelta(t *testing.T) {
	f := newFixture(t)

	res, err := f.uc.Create(context.Background(), f.createRequest("FI-020", "CONFIRMED", lineReq("P", "10", "50")))
	require.NoError(t, err)
	require.True(t, f.stock(t, "P").Equal(dec("110")))

	lines := []dto.InvoiceLineRequest{lineReq("P", "15", "55")}
	res2, err := f.uc.Update(context.Background(), res.Invoice.ID, dto.UpdateInvoiceRequest{Lines: &lines})
	require.NoError(t, err)

	assert.True(t, f.stock(t, "P").Equal(dec("115")))
	assert.True(t, f.store.products["P"].ReferencePrice.Equal(dec("55")))
	require.Len(t, res2.Invoice.Lines, 1)
	assert.True(t, res2.Invoice.Lines[0].Quantity.Equal(dec("15")))
}

// Reducir P a 12 y agregar Q con 5 en la misma actualización.
func TestInvoiceUpdate_ReducirYAgregar(t *testing.T) {
	f := newFixture(t)

	res, err := f.uc.Create(context.Background(), f.createRequest("FI-021", "CONFIRMED", lineReq("P", "15", "55")))
	require.NoError(t, err)
	require.True(t, f.stock(t, "P").Equal(dec("115")))

	lines := []dto.InvoiceLineRequest{lineReq("P", "12", "55"), lineReq("Q", "5", "110")}
	res2, err := f.uc.Update(context.Background(), res.Invoice.ID, dto.UpdateInvoiceRequest{Lines: &lines})
	require.NoError(t, err)

	assert.True(t, f.stock(t, "P").Equal(dec("112")))
	assert.True(t, f.stock(t, "Q").Equal(dec("205")))
	assert.Equal(t, 2, res2.LineCountAfter)
}

// Remover P por completo revierte su aporte; Q queda intacto.
func TestInvoiceUpdate_RemoverProducto_RevierteSuAporte(t *testing.T) {
	f := newFixture(t)

	res, err := f.uc.Create(context.Background(), f.createRequest("FI-022", "CONFIRMED",
		lineReq("P", "12", "55"), lineReq("Q", "5", "110")))
	require.NoError(t, err)
	require.True(t, f.stock(t, "P").Equal(dec("112")))
	require.True(t, f.stock(t, "Q").Equal(dec("205")))

	lines := []dto.InvoiceLineRequest{lineReq("Q", "5", "110")}
	res2, err := f.uc.Update(context.Background(), res.Invoice.ID, dto.UpdateInvoiceRequest{Lines: &lines})
	require.NoError(t, err)

	assert.True(t, f.stock(t, "P").Equal(dec("100")), "P vuelve a su valor previo a la factura")
	assert.True(t, f.stock(t, "Q").Equal(dec("205")), "Q no se toca")
	assert.Equal(t, 1, res2.LineCountAfter)
}

// Lista vacía explícita elimina todas las líneas y revierte todo su aporte.
func TestInvoiceUpdate_ListaVacia_EliminaTodo(t *testing.T) {
	f := newFixture(t)

	res, err := f.uc.Create(context.Background(), f.createRequest("FI-023", "CONFIRMED", lineReq("P", "10", "50")))
	require.NoError(t, err)

	lines := []dto.InvoiceLineRequest{}
	res2, err := f.uc.Update(context.Background(), res.Invoice.ID, dto.UpdateInvoiceRequest{Lines: &lines})
	require.NoError(t, err)

	assert.True(t, f.stock(t, "P").Equal(dec("100")))
	assert.Equal(t, 0, res2.LineCountAfter)
}

// Lines ausente (nil): la cabecera cambia y las líneas/stock quedan como están.
func TestInvoiceUpdate_SinLineas_PreservaLineasYStock(t *testing.T) {
	f := newFixture(t)

	res, err := f.uc.Create(context.Background(), f.createRequest("FI-024", "CONFIRMED", lineReq("P", "10", "50")))
	require.NoError(t, err)

	res2, err := f.uc.Update(context.Background(), res.Invoice.ID, dto.UpdateInvoiceRequest{
		Concept: strPtr("concepto corregido"),
	})
	require.NoError(t, err)

	assert.Equal(t, "concepto corregido", res2.Invoice.Concept)
	assert.Equal(t, 1, res2.LineCountAfter)
	assert.True(t, f.stock(t, "P").Equal(dec("110")))
}

// Confirmar y reemplazar líneas en la misma llamada: el plan aplica las
// cantidades nuevas completas (la cantidad vieja nunca contribuyó).
func TestInvoiceUpdate_ConfirmarYReemplazarLineas(t *testing.T) {
	f := newFixture(t)

	res, err := f.uc.Create(context.Background(), f.createRequest("FI-025", "DRAFT", lineReq("P", "10", "50")))
	require.NoError(t, err)

	state := "CONFIRMED"
	lines := []dto.InvoiceLineRequest{lineReq("P", "15", "55")}
	_, err = f.uc.Update(context.Background(), res.Invoice.ID, dto.UpdateInvoiceRequest{
		State: &state,
		Lines: &lines,
	})
	require.NoError(t, err)

	assert.True(t, f.stock(t, "P").Equal(dec("115")), "se aplica la cantidad nueva completa, no el delta")
}

func TestInvoiceUpdate_CodigoDuplicado(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Create(context.Background(), f.createRequest("FI-026", "DRAFT"))
	require.NoError(t, err)
	res, err := f.uc.Create(context.Background(), f.createRequest("FI-027", "DRAFT"))
	require.NoError(t, err)

	_, err = f.uc.Update(context.Background(), res.Invoice.ID, dto.UpdateInvoiceRequest{Code: strPtr("FI-026")})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

// ──────────────────────────────────────────────────────────────────────────────
// Stock insuficiente y atomicidad
// ──────────────────────────────────────────────────────────────────────────────

// Una reversión que dejaría el stock negativo falla y no muta nada: ni stock,
// ni líneas, ni estado de la factura (rollback completo).
func TestInvoiceUpdate_StockInsuficiente_RollbackCompleto(t *testing.T) {
	f := newFixture(t)

	res, err := f.uc.Create(context.Background(), f.createRequest("FI-030", "CONFIRMED", lineReq("P", "5", "60")))
	require.NoError(t, err)
	require.True(t, f.stock(t, "P").Equal(dec("105")))

	// Consumo externo deja el stock por debajo del aporte de la factura.
	f.store.products["P"].StockQuantity = dec("2")

	_, err = f.uc.UpdateState(context.Background(), res.Invoice.ID, "VOIDED")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "P", stockErr.ProductID)
	assert.Equal(t, "Cemento gris 50kg", stockErr.ProductName)
	assert.True(t, stockErr.CurrentStock.Equal(dec("2")))
	assert.True(t, stockErr.Delta.Equal(dec("-5")))

	// Nada cambió.
	assert.True(t, f.stock(t, "P").Equal(dec("2")))
	inv, _ := f.uc.GetByID(context.Background(), res.Invoice.ID)
	assert.Equal(t, "CONFIRMED", inv.State)
	require.Len(t, inv.Lines, 1)
	assert.True(t, inv.Lines[0].Quantity.Equal(dec("5")))
}

// Si una línea falla a mitad del plan, los ajustes ya aplicados se revierten.
func TestInvoiceUpdate_FalloParcial_RevierteAjustesPrevios(t *testing.T) {
	f := newFixture(t)

	res, err := f.uc.Create(context.Background(), f.createRequest("FI-031", "CONFIRMED",
		lineReq("P", "5", "60"), lineReq("Q", "150", "90")))
	require.NoError(t, err)
	require.True(t, f.stock(t, "P").Equal(dec("105")))
	require.True(t, f.stock(t, "Q").Equal(dec("350")))

	// Q ya no alcanza para revertir sus 150; P sí alcanza para sus 5.
	f.store.products["Q"].StockQuantity = dec("10")

	_, err = f.uc.UpdateState(context.Background(), res.Invoice.ID, "VOIDED")
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.True(t, f.stock(t, "P").Equal(dec("105")), "el ajuste de P se revirtió con el rollback")
	assert.True(t, f.stock(t, "Q").Equal(dec("10")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Delete y consultas
// ──────────────────────────────────────────────────────────────────────────────

// Eliminar una confirmada borra cabecera y líneas pero no revierte stock.
func TestInvoiceDelete_ConfirmadaNoRevierteStock(t *testing.T) {
	f := newFixture(t)

	res, err := f.uc.Create(context.Background(), f.createRequest("FI-040", "CONFIRMED", lineReq("P", "5", "60")))
	require.NoError(t, err)
	require.True(t, f.stock(t, "P").Equal(dec("105")))

	err = f.uc.Delete(context.Background(), res.Invoice.ID)
	require.NoError(t, err)

	assert.True(t, f.stock(t, "P").Equal(dec("105")), "el aporte de la factura eliminada queda en el stock")
	_, err = f.uc.GetByID(context.Background(), res.Invoice.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, f.store.lines, "las líneas se borran en cascada")
}

func TestInvoiceDelete_NoExiste(t *testing.T) {
	f := newFixture(t)
	err := f.uc.Delete(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInvoiceStats_CuentaPorEstado(t *testing.T) {
	f := newFixture(t)

	mk := func(code, state string) {
		in := f.createRequest(code, state)
		in.Total = dec("100")
		_, err := f.uc.Create(context.Background(), in)
		require.NoError(t, err)
	}
	mk("FI-050", "DRAFT")
	mk("FI-051", "CONFIRMED")
	mk("FI-052", "CONFIRMED")

	stats, err := f.uc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Draft)
	assert.Equal(t, 2, stats.Confirmed)
	assert.Equal(t, 0, stats.Voided)
	assert.True(t, stats.TotalAmount.Equal(dec("300")))
}

// Dos líneas del mismo producto en el alta colapsan a la última.
func TestInvoiceCreate_LineasDuplicadasColapsan(t *testing.T) {
	f := newFixture(t)

	res, err := f.uc.Create(context.Background(), f.createRequest("FI-060", "CONFIRMED",
		lineReq("P", "3", "10"), lineReq("P", "7", "12")))
	require.NoError(t, err)

	assert.Equal(t, 1, res.LineCountAfter)
	assert.True(t, f.stock(t, "P").Equal(dec("107")))
	assert.True(t, f.store.products["P"].ReferencePrice.Equal(dec("12")))
}
