package invoicing

import (
	"github.com/shopspring/decimal"
	"github.com/inventra/inventra-api/internal/domain/entity"
)

// LineInput línea objetivo de una factura, ya validada por el caller
// (cantidad > 0, precio >= 0, producto existente).
type LineInput struct {
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// StockAdjustment ajuste firmado a aplicar al stock de un producto dentro de
// la transacción de conciliación. NewPrice != nil sobreescribe el precio de
// referencia del producto.
type StockAdjustment struct {
	ProductID string
	Delta     decimal.Decimal
	NewPrice  *decimal.Decimal
}

// LineUpdate actualización de una línea existente a nueva cantidad/precio.
type LineUpdate struct {
	LineID    string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// Plan conjunto mínimo de mutaciones de líneas y ajustes de stock que lleva
// una factura de (oldState, oldLines) a (newState, newLines). Se calcula en
// memoria y se aplica completo dentro de una sola transacción: o todo o nada.
type Plan struct {
	RemoveLineIDs []string
	Inserts       []LineInput
	Updates       []LineUpdate
	Adjustments   []StockAdjustment
}

// Empty reporta si el plan no tiene ninguna mutación.
func (p Plan) Empty() bool {
	return len(p.RemoveLineIDs) == 0 && len(p.Inserts) == 0 &&
		len(p.Updates) == 0 && len(p.Adjustments) == 0
}

// BuildPlan calcula el efecto de mover una factura de oldState a newState,
// opcionalmente reemplazando sus líneas (linesProvided=false significa "las
// líneas no cambian"). Invariante que preserva: la contribución de una factura
// al stock es la suma de sus líneas si está CONFIRMED y cero en DRAFT/VOIDED.
//
// Las líneas nuevas se deduplican por producto (última ocurrencia gana): dos
// líneas del mismo producto en una factura son el mismo ítem económico.
func BuildPlan(
	oldState, newState entity.InvoiceState,
	oldLines []*entity.InvoiceLine,
	newLines []LineInput,
	linesProvided bool,
) Plan {
	var plan Plan

	if !linesProvided {
		// Sin cambio de líneas: solo importa la transición de estado.
		switch {
		case oldState == newState:
			// Sin efecto de stock.
		case newState.Contributes():
			// Entra a CONFIRMED: aplicar +qty de cada línea existente.
			for _, l := range oldLines {
				price := l.UnitPrice
				plan.Adjustments = append(plan.Adjustments, StockAdjustment{
					ProductID: l.ProductID,
					Delta:     l.Quantity,
					NewPrice:  &price,
				})
			}
		case oldState.Contributes():
			// Sale de CONFIRMED (a DRAFT o VOIDED): revertir -qty de cada línea.
			for _, l := range oldLines {
				plan.Adjustments = append(plan.Adjustments, StockAdjustment{
					ProductID: l.ProductID,
					Delta:     l.Quantity.Neg(),
				})
			}
		}
		return plan
	}

	newLines = dedupeByProduct(newLines)

	oldByProduct := make(map[string]*entity.InvoiceLine, len(oldLines))
	for _, l := range oldLines {
		oldByProduct[l.ProductID] = l
	}
	newByProduct := make(map[string]LineInput, len(newLines))
	for _, l := range newLines {
		newByProduct[l.ProductID] = l
	}

	// Removidos: en old y no en new. Borrar fila; revertir si contribuía.
	for _, old := range oldLines {
		if _, ok := newByProduct[old.ProductID]; ok {
			continue
		}
		plan.RemoveLineIDs = append(plan.RemoveLineIDs, old.ID)
		if oldState.Contributes() {
			plan.Adjustments = append(plan.Adjustments, StockAdjustment{
				ProductID: old.ProductID,
				Delta:     old.Quantity.Neg(),
			})
		}
	}

	for _, nl := range newLines {
		old, exists := oldByProduct[nl.ProductID]
		if !exists {
			// Agregado: insertar fila; aplicar la cantidad completa si el
			// estado destino contribuye (no había contribución previa sea
			// cual sea oldState, porque solo CONFIRMED contribuye).
			plan.Inserts = append(plan.Inserts, nl)
			if newState.Contributes() {
				price := nl.UnitPrice
				plan.Adjustments = append(plan.Adjustments, StockAdjustment{
					ProductID: nl.ProductID,
					Delta:     nl.Quantity,
					NewPrice:  &price,
				})
			}
			continue
		}

		// Común: actualizar la fila si cambió; el efecto de stock depende de
		// la transición de estado, no solo de la presencia.
		qtyChanged := !nl.Quantity.Equal(old.Quantity)
		priceChanged := !nl.UnitPrice.Equal(old.UnitPrice)
		if qtyChanged || priceChanged {
			plan.Updates = append(plan.Updates, LineUpdate{
				LineID:    old.ID,
				Quantity:  nl.Quantity,
				UnitPrice: nl.UnitPrice,
			})
		}

		switch {
		case oldState.Contributes() && newState.Contributes():
			// Único caso de ajuste parcial: la contribución previa ya está
			// reflejada en el stock, aplicar solo el delta.
			delta := nl.Quantity.Sub(old.Quantity)
			if !delta.IsZero() || priceChanged {
				price := nl.UnitPrice
				plan.Adjustments = append(plan.Adjustments, StockAdjustment{
					ProductID: nl.ProductID,
					Delta:     delta,
					NewPrice:  &price,
				})
			}
		case !oldState.Contributes() && newState.Contributes():
			// Nada se había contribuido: aplicar la cantidad nueva completa.
			price := nl.UnitPrice
			plan.Adjustments = append(plan.Adjustments, StockAdjustment{
				ProductID: nl.ProductID,
				Delta:     nl.Quantity,
				NewPrice:  &price,
			})
		case oldState.Contributes() && !newState.Contributes():
			// Revertir la cantidad vieja completa; la nueva nunca contribuyó.
			plan.Adjustments = append(plan.Adjustments, StockAdjustment{
				ProductID: nl.ProductID,
				Delta:     old.Quantity.Neg(),
			})
		}
	}

	return plan
}

// dedupeByProduct colapsa líneas repetidas por producto conservando la última
// ocurrencia y el orden de primera aparición.
func dedupeByProduct(lines []LineInput) []LineInput {
	if len(lines) < 2 {
		return lines
	}
	index := make(map[string]int, len(lines))
	out := make([]LineInput, 0, len(lines))
	for _, l := range lines {
		if i, ok := index[l.ProductID]; ok {
			out[i] = l
			continue
		}
		index[l.ProductID] = len(out)
		out = append(out, l)
	}
	return out
}
