package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inventra/inventra-api/internal/application/dto"
	"github.com/inventra/inventra-api/internal/domain"
	"github.com/inventra/inventra-api/internal/domain/entity"
	"github.com/inventra/inventra-api/pkg/logger"
)

const validInvoiceJSON = `{
  "codigo_interno": "FERRETERIACENTRAL-0001-123",
  "concepto": "materiales",
  "fecha_movimiento": "15-08-2026",
  "total": 1250.50,
  "observaciones": "compra de materiales de obra",
  "productos": [
    {"nombre": "Cemento Gris 50kg", "unidad_medida": "kg", "cantidad": 10, "precio_unitario": 60.00}
  ]
}`

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

type stubLLM struct {
	responses []string
	errs      []error
	calls     int
}

func (s *stubLLM) ChatVision(_ context.Context, _ string, _ string) (string, error) {
	i := s.calls
	s.calls++
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	resp := ""
	if i < len(s.responses) {
		resp = s.responses[i]
	}
	return resp, err
}

func (s *stubLLM) Chat(_ context.Context, _ string) (string, error) {
	return s.ChatVision(context.Background(), "", "")
}

// ──────────────────────────────────────────────────────────────────────────────
// parseInvoiceJSON
// ──────────────────────────────────────────────────────────────────────────────

func TestParseInvoiceJSON_JSONLimpio(t *testing.T) {
	var inv entity.ProcessedInvoice
	require.NoError(t, parseInvoiceJSON(validInvoiceJSON, &inv))
	assert.Equal(t, "FERRETERIACENTRAL-0001-123", inv.Code)
	require.Len(t, inv.Products, 1)
	assert.Equal(t, "Cemento Gris 50kg", inv.Products[0].Name)
}

func TestParseInvoiceJSON_BloqueMarkdown(t *testing.T) {
	content := "```json\n" + validInvoiceJSON + "\n```"
	var inv entity.ProcessedInvoice
	require.NoError(t, parseInvoiceJSON(content, &inv))
	assert.Equal(t, "materiales", inv.Concept)
}

func TestParseInvoiceJSON_TextoAlrededor(t *testing.T) {
	content := "Claro, aquí está el JSON solicitado:\n" + validInvoiceJSON + "\nEspero que sirva."
	var inv entity.ProcessedInvoice
	require.NoError(t, parseInvoiceJSON(content, &inv))
	assert.Equal(t, "15-08-2026", inv.MovementDate)
}

func TestParseInvoiceJSON_Invalido(t *testing.T) {
	var inv entity.ProcessedInvoice
	assert.Error(t, parseInvoiceJSON("no soy json", &inv))
	assert.Error(t, parseInvoiceJSON(`{"codigo_interno": `, &inv))
}

// ──────────────────────────────────────────────────────────────────────────────
// validateExtracted
// ──────────────────────────────────────────────────────────────────────────────

func validInvoice() entity.ProcessedInvoice {
	var inv entity.ProcessedInvoice
	if err := parseInvoiceJSON(validInvoiceJSON, &inv); err != nil {
		panic(err)
	}
	return inv
}

func TestValidateExtracted_Valida(t *testing.T) {
	inv := validInvoice()
	assert.NoError(t, validateExtracted(&inv))
}

func TestValidateExtracted_Rechazos(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*entity.ProcessedInvoice)
	}{
		{"codigo vacio", func(i *entity.ProcessedInvoice) { i.Code = "" }},
		{"concepto fuera del enum", func(i *entity.ProcessedInvoice) { i.Concept = "comida" }},
		{"fecha sin formato", func(i *entity.ProcessedInvoice) { i.MovementDate = "2026-08-15" }},
		{"producto sin nombre", func(i *entity.ProcessedInvoice) { i.Products[0].Name = "" }},
		{"cantidad cero", func(i *entity.ProcessedInvoice) { i.Products[0].Quantity = dec("0") }},
		{"cantidad fraccionaria", func(i *entity.ProcessedInvoice) { i.Products[0].Quantity = dec("2.5") }},
		{"precio negativo", func(i *entity.ProcessedInvoice) { i.Products[0].UnitPrice = dec("-1") }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			inv := validInvoice()
			c.mutate(&inv)
			assert.Error(t, validateExtracted(&inv))
		})
	}
}

func TestValidateExtracted_TruncaObservaciones(t *testing.T) {
	inv := validInvoice()
	inv.Notes = strings.Repeat("á", 250)
	require.NoError(t, validateExtracted(&inv))
	assert.Equal(t, 200, len([]rune(inv.Notes)))
}

// ──────────────────────────────────────────────────────────────────────────────
// Extract
// ──────────────────────────────────────────────────────────────────────────────

func TestExtract_EntradaInvalida(t *testing.T) {
	uc := NewExtractionUseCase(&stubLLM{}, nil, logger.Nop())

	_, err := uc.Extract(context.Background(), dto.ExtractInvoiceRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "imagen vacía")

	_, err = uc.Extract(context.Background(), dto.ExtractInvoiceRequest{
		ImageBase64: "aGVsbG8=",
		MimeType:    "application/pdf",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "mime no soportado")
}

func TestExtract_PrimerIntentoExitoso(t *testing.T) {
	llm := &stubLLM{responses: []string{"```json\n" + validInvoiceJSON + "\n```"}}
	uc := NewExtractionUseCase(llm, nil, logger.Nop())

	out, err := uc.Extract(context.Background(), dto.ExtractInvoiceRequest{
		ImageBase64: "aGVsbG8=",
		MimeType:    "image/png",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, llm.calls)
	assert.Equal(t, "FERRETERIACENTRAL-0001-123", out.Invoice.Code)
	assert.Equal(t, 0, out.Enriched, "sin enricher no hay matches")
}

func TestExtract_ReintentaTrasRespuestaInvalida(t *testing.T) {
	if testing.Short() {
		t.Skip("espera entre reintentos")
	}
	llm := &stubLLM{responses: []string{"respuesta basura", validInvoiceJSON}}
	uc := NewExtractionUseCase(llm, nil, logger.Nop())

	out, err := uc.Extract(context.Background(), dto.ExtractInvoiceRequest{ImageBase64: "aGVsbG8="})
	require.NoError(t, err)
	assert.Equal(t, 2, llm.calls)
	assert.Equal(t, "materiales", out.Invoice.Concept)
}

func TestExtract_AgotaReintentos(t *testing.T) {
	if testing.Short() {
		t.Skip("espera entre reintentos")
	}
	llm := &stubLLM{errs: []error{
		errors.New("timeout"), errors.New("timeout"), errors.New("timeout"),
	}}
	uc := NewExtractionUseCase(llm, nil, logger.Nop())

	_, err := uc.Extract(context.Background(), dto.ExtractInvoiceRequest{ImageBase64: "aGVsbG8="})
	require.Error(t, err)
	assert.Equal(t, maxRetries, llm.calls)
	assert.Contains(t, err.Error(), "3 intentos")
}

func TestExtract_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	llm := &stubLLM{errs: []error{errors.New("timeout")}}
	uc := NewExtractionUseCase(llm, nil, logger.Nop())

	_, err := uc.Extract(ctx, dto.ExtractInvoiceRequest{ImageBase64: "aGVsbG8="})
	assert.ErrorIs(t, err, context.Canceled)
}
