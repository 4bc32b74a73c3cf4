package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/inventra/inventra-api/internal/application/dto"
	"github.com/inventra/inventra-api/internal/application/ports"
	"github.com/inventra/inventra-api/internal/domain"
	"github.com/inventra/inventra-api/internal/domain/entity"
	"github.com/inventra/inventra-api/pkg/logger"
)

const (
	maxRetries = 3
	retryDelay = 2 * time.Second
)

// extractionPrompt instruye al modelo de visión a devolver solo el JSON de la
// factura. Las reglas replican el contrato del borrador: código en mayúsculas
// sin tildes, concepto en una de cuatro categorías, fecha DD-MM-YYYY y
// cantidades enteras calculadas desde el subtotal.
const extractionPrompt = `Analiza únicamente la información contenida en la factura visible en la imagen y devuelve SOLO un objeto JSON válido, sin texto adicional, sin explicaciones, sin comentarios, sin markdown.
Reglas estrictas:
- codigo_interno: concatena el nombre de la empresa emisora en MAYÚSCULAS, sin tildes ni caracteres especiales + todo el número de factura COMPLETO (ejemplo: EMPRESASINESPACIO-0001-11212-212).
- concepto: clasifica en UNA categoría: "materiales", "equipos", "servicios", "otros".
- fecha_movimiento: usa la fecha principal de emisión o transacción en formato DD-MM-YYYY.
- total: monto total a pagar como número (usa punto como separador decimal).
- observaciones: descripción breve de la factura (máx. 200 caracteres).
- productos: lista de ítems en un array. Cada ítem debe contener:
- nombre: el nombre completo del producto/servicio es el DETALLE O DESCRIPCIÓN (Sin tildes ni letras especiales). Si no existe, usa el código del producto.
- unidad_medida: tipo de unidad (ejemplo: "kg", "unidad").
- cantidad: número entero, calculado dividiendo el valor/precio total del producto entre el precio unitario para asegurar precisión.
- precio_unitario: número con 2 decimales.
Formato JSON esperado:
{
  "codigo_interno": "string",
  "concepto": "materiales|equipos|servicios|otros",
  "fecha_movimiento": "DD-MM-YYYY",
  "total": 0.00,
  "observaciones": "string",
  "productos": [
    {
      "nombre": "string",
      "unidad_medida": "string",
      "cantidad": 0,
      "precio_unitario": 0.00
    }
  ]
}
Responde ÚNICAMENTE con el JSON válido.`

var (
	dateRe      = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)
	jsonBlockRe = regexp.MustCompile(`\{[\s\S]*\}`)
)

// ExtractionUseCase extrae una factura estructurada de una imagen usando el
// modelo de visión y la enriquece contra el catálogo. El resultado es un
// borrador: el usuario lo revisa antes de crear la factura interna real.
type ExtractionUseCase struct {
	llm      ports.LLMService
	enricher *Enricher
	log      *logger.Logger
}

// NewExtractionUseCase construye el caso de uso. enricher puede ser nil (sin
// enriquecimiento).
func NewExtractionUseCase(llm ports.LLMService, enricher *Enricher, log *logger.Logger) *ExtractionUseCase {
	return &ExtractionUseCase{llm: llm, enricher: enricher, log: log}
}

// Extract procesa la imagen con hasta 3 intentos (el modelo a veces devuelve
// JSON malformado o incompleto) y valida el resultado contra el contrato.
func (uc *ExtractionUseCase) Extract(ctx context.Context, in dto.ExtractInvoiceRequest) (*dto.ExtractInvoiceResponse, error) {
	if in.ImageBase64 == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.MimeType != "" && !isValidImageMime(in.MimeType) {
		return nil, domain.ErrInvalidInput
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		uc.log.Debug().Int("intento", attempt).Msg("procesando imagen de factura")

		content, err := uc.llm.ChatVision(ctx, extractionPrompt, in.ImageBase64)
		if err == nil {
			var inv entity.ProcessedInvoice
			if err = parseInvoiceJSON(content, &inv); err == nil {
				if err = validateExtracted(&inv); err == nil {
					enriched := 0
					if uc.enricher != nil {
						enriched = uc.enricher.Enrich(ctx, &inv)
					}
					uc.log.Info().Int("intento", attempt).Int("productos", len(inv.Products)).
						Msg("imagen de factura procesada")
					return &dto.ExtractInvoiceResponse{Invoice: inv, Enriched: enriched}, nil
				}
			}
		}
		lastErr = err
		uc.log.Warn().Err(err).Int("intento", attempt).Msg("fallo procesando imagen de factura")

		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
		}
	}
	return nil, fmt.Errorf("procesar imagen tras %d intentos: %w", maxRetries, lastErr)
}

// parseInvoiceJSON limpia la respuesta del modelo (bloques markdown, texto
// alrededor) y deserializa el JSON embebido.
func parseInvoiceJSON(content string, out *entity.ProcessedInvoice) error {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	if m := jsonBlockRe.FindString(s); m != "" {
		s = m
	}
	if err := json.Unmarshal([]byte(s), out); err != nil {
		return fmt.Errorf("respuesta del modelo no es JSON válido: %w", err)
	}
	return nil
}

// validateExtracted aplica el contrato del borrador: concepto en el enum,
// fecha DD-MM-YYYY, cantidades enteras positivas, precios no negativos.
func validateExtracted(inv *entity.ProcessedInvoice) error {
	if inv.Code == "" {
		return fmt.Errorf("codigo_interno vacío")
	}
	switch inv.Concept {
	case "materiales", "equipos", "servicios", "otros":
	default:
		return fmt.Errorf("concepto %q fuera del enum", inv.Concept)
	}
	if !dateRe.MatchString(inv.MovementDate) {
		return fmt.Errorf("fecha_movimiento %q no es DD-MM-YYYY", inv.MovementDate)
	}
	if r := []rune(inv.Notes); len(r) > 200 {
		inv.Notes = string(r[:200])
	}
	for i, p := range inv.Products {
		if p.Name == "" {
			return fmt.Errorf("producto %d sin nombre", i)
		}
		if !p.Quantity.IsPositive() || !p.Quantity.IsInteger() {
			return fmt.Errorf("producto %d: cantidad %s no es entero positivo", i, p.Quantity)
		}
		if p.UnitPrice.IsNegative() {
			return fmt.Errorf("producto %d: precio negativo", i)
		}
	}
	return nil
}

func isValidImageMime(mime string) bool {
	switch strings.ToLower(mime) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}
