package invoicing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inventra/inventra-api/internal/domain/entity"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func line(id, productID, qty, price string) *entity.InvoiceLine {
	return &entity.InvoiceLine{
		ID:        id,
		ProductID: productID,
		Quantity:  dec(qty),
		UnitPrice: dec(price),
	}
}

func input(productID, qty, price string) LineInput {
	return LineInput{ProductID: productID, Quantity: dec(qty), UnitPrice: dec(price)}
}

// netDelta suma los ajustes del plan para un producto.
func netDelta(p Plan, productID string) decimal.Decimal {
	total := decimal.Zero
	for _, a := range p.Adjustments {
		if a.ProductID == productID {
			total = total.Add(a.Delta)
		}
	}
	return total
}

// ──────────────────────────────────────────────────────────────────────────────
// Sin cambio de líneas: solo transición de estado
// ──────────────────────────────────────────────────────────────────────────────

// Mismo estado, líneas sin tocar → plan vacío.
func TestBuildPlan_SinLineas_MismoEstado_PlanVacio(t *testing.T) {
	old := []*entity.InvoiceLine{line("l1", "P", "10", "50")}

	for _, state := range []entity.InvoiceState{entity.StateDraft, entity.StateConfirmed, entity.StateVoided} {
		plan := BuildPlan(state, state, old, nil, false)
		assert.True(t, plan.Empty(), "estado %s → %s no debe producir mutaciones", state, state)
	}
}

// DRAFT → CONFIRMED sin cambio de líneas aplica +qty de cada línea con su precio.
func TestBuildPlan_SinLineas_ConfirmarAplicaCantidadesCompletas(t *testing.T) {
	old := []*entity.InvoiceLine{
		line("l1", "P", "20", "70"),
		line("l2", "Q", "5", "110"),
	}
	plan := BuildPlan(entity.StateDraft, entity.StateConfirmed, old, nil, false)

	require.Len(t, plan.Adjustments, 2)
	assert.Empty(t, plan.RemoveLineIDs)
	assert.Empty(t, plan.Inserts)
	assert.Empty(t, plan.Updates)

	assert.True(t, netDelta(plan, "P").Equal(dec("20")))
	assert.True(t, netDelta(plan, "Q").Equal(dec("5")))
	require.NotNil(t, plan.Adjustments[0].NewPrice)
	assert.True(t, plan.Adjustments[0].NewPrice.Equal(dec("70")),
		"al confirmar se propaga el precio de la línea al producto")
}

// CONFIRMED → DRAFT y CONFIRMED → VOIDED revierten -qty sin tocar el precio.
func TestBuildPlan_SinLineas_SalirDeConfirmadaRevierte(t *testing.T) {
	old := []*entity.InvoiceLine{line("l1", "P", "10", "50")}

	for _, target := range []entity.InvoiceState{entity.StateDraft, entity.StateVoided} {
		plan := BuildPlan(entity.StateConfirmed, target, old, nil, false)
		require.Len(t, plan.Adjustments, 1, "CONFIRMED → %s", target)
		assert.True(t, netDelta(plan, "P").Equal(dec("-10")))
		assert.Nil(t, plan.Adjustments[0].NewPrice, "la reversión no sobreescribe el precio")
	}
}

// DRAFT → VOIDED sin pasar por CONFIRMED no toca stock (round-trip neto cero).
func TestBuildPlan_SinLineas_AnularBorradorNoTocaStock(t *testing.T) {
	old := []*entity.InvoiceLine{line("l1", "P", "10", "60")}
	plan := BuildPlan(entity.StateDraft, entity.StateVoided, old, nil, false)
	assert.True(t, plan.Empty())
}

// ──────────────────────────────────────────────────────────────────────────────
// Con líneas: particiones removido / agregado / común
// ──────────────────────────────────────────────────────────────────────────────

// C → C con la misma línea en nueva cantidad: único caso de ajuste parcial.
func TestBuildPlan_ConfirmadaAConfirmada_AjusteDelta(t *testing.T) {
	old := []*entity.InvoiceLine{line("l1", "P", "10", "50")}
	plan := BuildPlan(entity.StateConfirmed, entity.StateConfirmed, old,
		[]LineInput{input("P", "15", "55")}, true)

	require.Len(t, plan.Updates, 1)
	assert.Equal(t, "l1", plan.Updates[0].LineID)
	assert.True(t, plan.Updates[0].Quantity.Equal(dec("15")))

	require.Len(t, plan.Adjustments, 1)
	assert.True(t, netDelta(plan, "P").Equal(dec("5")), "10 → 15 aplica solo el delta +5")
	require.NotNil(t, plan.Adjustments[0].NewPrice)
	assert.True(t, plan.Adjustments[0].NewPrice.Equal(dec("55")))
}

// C → C sin cambio de cantidad ni precio: ni fila ni ajuste.
func TestBuildPlan_ConfirmadaAConfirmada_SinCambios_PlanVacio(t *testing.T) {
	old := []*entity.InvoiceLine{line("l1", "P", "10", "50")}
	plan := BuildPlan(entity.StateConfirmed, entity.StateConfirmed, old,
		[]LineInput{input("P", "10", "50")}, true)
	assert.True(t, plan.Empty())
}

// C → C con solo cambio de precio: actualiza la fila y emite ajuste delta cero
// para propagar el precio.
func TestBuildPlan_ConfirmadaAConfirmada_SoloPrecio(t *testing.T) {
	old := []*entity.InvoiceLine{line("l1", "P", "10", "50")}
	plan := BuildPlan(entity.StateConfirmed, entity.StateConfirmed, old,
		[]LineInput{input("P", "10", "60")}, true)

	require.Len(t, plan.Updates, 1)
	require.Len(t, plan.Adjustments, 1)
	assert.True(t, plan.Adjustments[0].Delta.IsZero())
	require.NotNil(t, plan.Adjustments[0].NewPrice)
	assert.True(t, plan.Adjustments[0].NewPrice.Equal(dec("60")))
}

// D → C con líneas nuevas: aplica la cantidad nueva completa (nada contribuía).
func TestBuildPlan_BorradorAConfirmada_CantidadNuevaCompleta(t *testing.T) {
	old := []*entity.InvoiceLine{line("l1", "P", "10", "50")}
	plan := BuildPlan(entity.StateDraft, entity.StateConfirmed, old,
		[]LineInput{input("P", "15", "55")}, true)

	require.Len(t, plan.Adjustments, 1)
	assert.True(t, netDelta(plan, "P").Equal(dec("15")),
		"entrando a CONFIRMED la cantidad vieja nunca contribuyó")
}

// C → D con líneas nuevas: revierte la cantidad vieja completa (la nueva no
// contribuirá).
func TestBuildPlan_ConfirmadaABorrador_RevierteCantidadVieja(t *testing.T) {
	old := []*entity.InvoiceLine{line("l1", "P", "10", "50")}
	plan := BuildPlan(entity.StateConfirmed, entity.StateDraft, old,
		[]LineInput{input("P", "15", "55")}, true)

	require.Len(t, plan.Updates, 1, "la fila sí se actualiza a la nueva cantidad")
	require.Len(t, plan.Adjustments, 1)
	assert.True(t, netDelta(plan, "P").Equal(dec("-10")))
	assert.Nil(t, plan.Adjustments[0].NewPrice)
}

// D → D con líneas nuevas: muta filas pero ningún ajuste de stock.
func TestBuildPlan_BorradorABorrador_SoloFilas(t *testing.T) {
	old := []*entity.InvoiceLine{line("l1", "P", "10", "50")}
	plan := BuildPlan(entity.StateDraft, entity.StateDraft, old,
		[]LineInput{input("P", "99", "1"), input("Q", "5", "2")}, true)

	assert.Len(t, plan.Updates, 1)
	assert.Len(t, plan.Inserts, 1)
	assert.Empty(t, plan.Adjustments)
}

// Producto removido de una factura confirmada: borra fila y revierte su aporte.
func TestBuildPlan_RemovidoDeConfirmada_BorraYRevierte(t *testing.T) {
	old := []*entity.InvoiceLine{
		line("l1", "P", "12", "55"),
		line("l2", "Q", "5", "110"),
	}
	plan := BuildPlan(entity.StateConfirmed, entity.StateConfirmed, old,
		[]LineInput{input("Q", "5", "110")}, true)

	assert.Equal(t, []string{"l1"}, plan.RemoveLineIDs)
	assert.True(t, netDelta(plan, "P").Equal(dec("-12")))
	assert.True(t, netDelta(plan, "Q").IsZero(), "Q no cambió: sin ajuste")
}

// Producto removido de un borrador: borra fila sin ajuste.
func TestBuildPlan_RemovidoDeBorrador_SoloBorraFila(t *testing.T) {
	old := []*entity.InvoiceLine{line("l1", "P", "12", "55")}
	plan := BuildPlan(entity.StateDraft, entity.StateDraft, old, []LineInput{}, true)

	assert.Equal(t, []string{"l1"}, plan.RemoveLineIDs)
	assert.Empty(t, plan.Adjustments)
}

// Lista vacía explícita sobre confirmada: elimina todas las líneas y revierte todo.
func TestBuildPlan_ListaVaciaSobreConfirmada_RevierteTodo(t *testing.T) {
	old := []*entity.InvoiceLine{
		line("l1", "P", "10", "50"),
		line("l2", "Q", "5", "110"),
	}
	plan := BuildPlan(entity.StateConfirmed, entity.StateConfirmed, old, nil, true)

	assert.ElementsMatch(t, []string{"l1", "l2"}, plan.RemoveLineIDs)
	assert.True(t, netDelta(plan, "P").Equal(dec("-10")))
	assert.True(t, netDelta(plan, "Q").Equal(dec("-5")))
}

// Producto agregado a una confirmada: inserta y aplica cantidad completa.
func TestBuildPlan_AgregadoAConfirmada_InsertaYAplica(t *testing.T) {
	old := []*entity.InvoiceLine{line("l1", "P", "10", "50")}
	plan := BuildPlan(entity.StateConfirmed, entity.StateConfirmed, old,
		[]LineInput{input("P", "10", "50"), input("Q", "5", "110")}, true)

	require.Len(t, plan.Inserts, 1)
	assert.Equal(t, "Q", plan.Inserts[0].ProductID)
	assert.True(t, netDelta(plan, "Q").Equal(dec("5")))
	assert.True(t, netDelta(plan, "P").IsZero())
}

// ──────────────────────────────────────────────────────────────────────────────
// Deduplicación por producto
// ──────────────────────────────────────────────────────────────────────────────

// Dos líneas del mismo producto colapsan a la última ocurrencia.
func TestBuildPlan_DuplicadosColapsanUltimaGana(t *testing.T) {
	plan := BuildPlan(entity.StateDraft, entity.StateConfirmed, nil,
		[]LineInput{input("P", "3", "10"), input("P", "7", "12")}, true)

	require.Len(t, plan.Inserts, 1, "un solo insert por producto")
	assert.True(t, plan.Inserts[0].Quantity.Equal(dec("7")))
	assert.True(t, plan.Inserts[0].UnitPrice.Equal(dec("12")))
	assert.True(t, netDelta(plan, "P").Equal(dec("7")), "el ajuste usa la línea ganadora")
}

func TestDedupeByProduct_ConservaOrdenPrimeraAparicion(t *testing.T) {
	out := dedupeByProduct([]LineInput{
		input("A", "1", "1"),
		input("B", "2", "1"),
		input("A", "9", "9"),
	})
	require.Len(t, out, 2)
	assert.Equal(t, "A", out[0].ProductID)
	assert.True(t, out[0].Quantity.Equal(dec("9")))
	assert.Equal(t, "B", out[1].ProductID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenarios encadenados (historial completo de una factura)
// ──────────────────────────────────────────────────────────────────────────────

// applyToStock simula la aplicación del plan sobre stocks en memoria.
func applyToStock(stocks map[string]decimal.Decimal, p Plan) {
	for _, a := range p.Adjustments {
		stocks[a.ProductID] = stocks[a.ProductID].Add(a.Delta)
	}
}

// Recorre los escenarios 1-6: alta en borrador, confirmación directa y
// anulación, confirmación de borrador, resize en confirmada, mezcla de resize y
// alta, y remoción total de un producto. Tras cada paso el stock simulado debe
// cumplir el invariante stock = inicial + Σ líneas confirmadas.
func TestBuildPlan_HistorialCompleto(t *testing.T) {
	stocks := map[string]decimal.Decimal{"P": dec("100"), "Q": dec("200")}

	// 1. Alta en DRAFT: sin efecto.
	plan := BuildPlan(entity.StateDraft, entity.StateDraft, nil,
		[]LineInput{input("P", "10", "60")}, true)
	applyToStock(stocks, plan)
	assert.True(t, stocks["P"].Equal(dec("100")))

	// 2. Alta directa en CONFIRMED con qty=5 y luego anulación: neto cero.
	plan = BuildPlan(entity.StateDraft, entity.StateConfirmed, nil,
		[]LineInput{input("P", "5", "60")}, true)
	applyToStock(stocks, plan)
	assert.True(t, stocks["P"].Equal(dec("105")))

	confirmedLines := []*entity.InvoiceLine{line("s2", "P", "5", "60")}
	plan = BuildPlan(entity.StateConfirmed, entity.StateVoided, confirmedLines, nil, false)
	applyToStock(stocks, plan)
	assert.True(t, stocks["P"].Equal(dec("100")), "anular devuelve el aporte completo")

	// 3. Confirmar un borrador con qty=20.
	draftLines := []*entity.InvoiceLine{line("s3", "P", "20", "70")}
	plan = BuildPlan(entity.StateDraft, entity.StateConfirmed, draftLines, nil, false)
	applyToStock(stocks, plan)
	assert.True(t, stocks["P"].Equal(dec("120")))

	// Revertir para encadenar con el escenario 4 (baseline 110 con qty=10).
	plan = BuildPlan(entity.StateConfirmed, entity.StateDraft, draftLines, nil, false)
	applyToStock(stocks, plan)
	require.True(t, stocks["P"].Equal(dec("100")))

	plan = BuildPlan(entity.StateDraft, entity.StateConfirmed, nil,
		[]LineInput{input("P", "10", "50")}, true)
	applyToStock(stocks, plan)
	require.True(t, stocks["P"].Equal(dec("110")))

	// 4. Resize 10 → 15 en CONFIRMED: delta +5.
	lines4 := []*entity.InvoiceLine{line("l4", "P", "10", "50")}
	plan = BuildPlan(entity.StateConfirmed, entity.StateConfirmed, lines4,
		[]LineInput{input("P", "15", "55")}, true)
	applyToStock(stocks, plan)
	assert.True(t, stocks["P"].Equal(dec("115")))

	// 5. P reducido a 12, Q agregado con 5.
	lines5 := []*entity.InvoiceLine{line("l4", "P", "15", "55")}
	plan = BuildPlan(entity.StateConfirmed, entity.StateConfirmed, lines5,
		[]LineInput{input("P", "12", "55"), input("Q", "5", "110")}, true)
	applyToStock(stocks, plan)
	assert.True(t, stocks["P"].Equal(dec("112")))
	assert.True(t, stocks["Q"].Equal(dec("205")))

	// 6. P removido por completo: vuelve a su baseline; Q intacto.
	lines6 := []*entity.InvoiceLine{
		line("l4", "P", "12", "55"),
		line("l5", "Q", "5", "110"),
	}
	plan = BuildPlan(entity.StateConfirmed, entity.StateConfirmed, lines6,
		[]LineInput{input("Q", "5", "110")}, true)
	applyToStock(stocks, plan)
	assert.True(t, stocks["P"].Equal(dec("100")))
	assert.True(t, stocks["Q"].Equal(dec("205")))
}
