package ai

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/inventra/inventra-api/internal/domain/entity"
	"github.com/inventra/inventra-api/internal/domain/repository"
	"github.com/inventra/inventra-api/pkg/logger"
)

const similarityThreshold = 0.8

// Enricher cruza los productos extraídos de una imagen con el catálogo: match
// exacto por nombre primero, después match difuso sobre candidatos. Si hay
// match se rellena producto_id y unidad_medida_id; si no, al menos se intenta
// resolver la unidad de medida por nombre o abreviatura.
type Enricher struct {
	productRepo     repository.ProductRepository
	unitMeasureRepo repository.UnitMeasureRepository
	log             *logger.Logger
}

// NewEnricher construye el enriquecedor.
func NewEnricher(productRepo repository.ProductRepository, unitMeasureRepo repository.UnitMeasureRepository, log *logger.Logger) *Enricher {
	return &Enricher{productRepo: productRepo, unitMeasureRepo: unitMeasureRepo, log: log}
}

// Enrich muta la factura extraída y devuelve cuántos ítems matchearon un
// producto del catálogo. Es best-effort: los fallos de consulta se loguean y el
// ítem se deja sin enriquecer.
func (e *Enricher) Enrich(ctx context.Context, inv *entity.ProcessedInvoice) int {
	units, err := e.unitMeasureRepo.ListActive(ctx)
	if err != nil {
		e.log.Warn().Err(err).Msg("enriquecimiento: fallo listando unidades de medida")
	}

	cache := make(map[string]*entity.Product)
	matched := 0
	for i := range inv.Products {
		p := &inv.Products[i]
		if product := e.findProduct(ctx, p.Name, cache); product != nil {
			p.ProductID = product.ID
			p.UnitMeasureID = product.UnitMeasureID
			matched++
			continue
		}
		if id := findUnitMeasureID(p.UnitMeasure, units); id != "" {
			p.UnitMeasureID = id
		}
	}
	return matched
}

// findProduct busca primero por nombre exacto y después por similitud sobre
// candidatos que contienen todos los tokens del nombre. El cache evita repetir
// consultas para ítems con el mismo nombre normalizado.
func (e *Enricher) findProduct(ctx context.Context, name string, cache map[string]*entity.Product) *entity.Product {
	key := normalizeText(name)
	if key == "" {
		return nil
	}
	if p, ok := cache[key]; ok {
		return p
	}

	exact, err := e.productRepo.GetByName(ctx, name)
	if err != nil {
		e.log.Warn().Err(err).Str("nombre", name).Msg("enriquecimiento: fallo buscando producto exacto")
		cache[key] = nil
		return nil
	}
	if exact != nil {
		cache[key] = exact
		return exact
	}

	tokens := tokenize(name)
	if len(tokens) > 4 {
		tokens = tokens[:4]
	}
	candidates, err := e.productRepo.SearchByNameTokens(ctx, tokens)
	if err != nil {
		e.log.Warn().Err(err).Str("nombre", name).Msg("enriquecimiento: fallo buscando candidatos")
		cache[key] = nil
		return nil
	}

	var best *entity.Product
	bestScore := 0.0
	for _, c := range candidates {
		if score := similarity(name, c.Name); score > bestScore {
			bestScore = score
			best = c
		}
	}
	if bestScore < similarityThreshold {
		best = nil
	}
	cache[key] = best
	return best
}

// findUnitMeasureID resuelve la unidad por nombre o abreviatura exactos
// (normalizados) y, si no, por similitud con el mismo umbral.
func findUnitMeasureID(unit string, units []*entity.UnitMeasure) string {
	target := normalizeText(unit)
	if target == "" {
		return ""
	}
	for _, u := range units {
		if normalizeText(u.Name) == target || normalizeText(u.Abbreviation) == target {
			return u.ID
		}
	}
	bestID := ""
	bestScore := 0.0
	for _, u := range units {
		if score := similarity(unit, u.Name); score > bestScore {
			bestScore = score
			bestID = u.ID
		}
	}
	if bestScore >= similarityThreshold {
		return bestID
	}
	return ""
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeText minúsculas, sin tildes, solo [a-z0-9] y espacios simples.
func normalizeText(s string) string {
	s = strings.ToLower(s)
	if out, _, err := transform.String(stripMarks, s); err == nil {
		s = out
	}
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// tokenize tokens normalizados de al menos 2 caracteres, de más largo a más
// corto (los tokens largos discriminan mejor en el LIKE).
func tokenize(s string) []string {
	var out []string
	for _, t := range strings.Fields(normalizeText(s)) {
		if len(t) >= 2 {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return len(out[i]) > len(out[j]) })
	return out
}

// similarity mezcla a partes iguales el ratio de Levenshtein y el índice de
// Jaccard sobre tokens, ambos sobre texto normalizado.
func similarity(a, b string) float64 {
	na, nb := normalizeText(a), normalizeText(b)
	return 0.5*levenshteinRatio(na, nb) + 0.5*jaccardTokens(na, nb)
}

func levenshteinRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	m, n := len(ra), len(rb)
	if m == 0 && n == 0 {
		return 1
	}
	prev := make([]int, n+1)
	curr := make([]int, n+1)
	for j := 0; j <= n; j++ {
		prev[j] = j
	}
	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	longest := m
	if n > longest {
		longest = n
	}
	if longest == 0 {
		longest = 1
	}
	return 1 - float64(prev[n])/float64(longest)
}

func jaccardTokens(a, b string) float64 {
	sa := make(map[string]struct{})
	for _, t := range strings.Fields(a) {
		sa[t] = struct{}{}
	}
	sb := make(map[string]struct{})
	for _, t := range strings.Fields(b) {
		sb[t] = struct{}{}
	}
	if len(sa) == 0 && len(sb) == 0 {
		return 0
	}
	inter := 0
	for t := range sa {
		if _, ok := sb[t]; ok {
			inter++
		}
	}
	union := len(sa) + len(sb) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
