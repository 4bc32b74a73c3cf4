package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inventra/inventra-api/internal/domain"
)

// errorApp monta una ruta que siempre responde con handleError(err).
func errorApp(err error) *fiber.App {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return handleError(c, err)
	})
	return app
}

func getError(t *testing.T, app *fiber.App) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return resp.StatusCode, body
}

func TestHandleError_Sentinelas(t *testing.T) {
	cases := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
		{domain.ErrUserNotFound, fiber.StatusNotFound, "NOT_FOUND"},
		{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
		{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
		{domain.ErrEmailAlreadyExists, fiber.StatusConflict, "EMAIL_EXISTS"},
		{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
		{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
		{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
		{fmt.Errorf("fallo de red"), fiber.StatusInternalServerError, "INTERNAL"},
	}
	for _, c := range cases {
		t.Run(c.wantCode, func(t *testing.T) {
			status, body := getError(t, errorApp(c.err))
			assert.Equal(t, c.wantStatus, status)
			assert.Equal(t, c.wantCode, body["code"])
		})
	}
}

// Los errores envueltos con %w también se mapean.
func TestHandleError_ErrorEnvuelto(t *testing.T) {
	status, body := getError(t, errorApp(fmt.Errorf("creando factura: %w", domain.ErrDuplicate)))
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "DUPLICATE", body["code"])
}

// Stock insuficiente lleva el detalle completo para que el frontend lo muestre.
func TestHandleError_StockInsuficiente(t *testing.T) {
	stockErr := &domain.InsufficientStockError{
		ProductID:    "p-1",
		ProductName:  "Cemento gris 50kg",
		CurrentStock: decimal.NewFromInt(2),
		Delta:        decimal.NewFromInt(-5),
	}
	status, body := getError(t, errorApp(fmt.Errorf("aplicando plan: %w", stockErr)))

	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])

	details, ok := body["details"].(map[string]any)
	require.True(t, ok, "details debe ser un objeto")
	assert.Equal(t, "p-1", details["producto_id"])
	assert.Equal(t, "Cemento gris 50kg", details["producto_nombre"])
	assert.Equal(t, "2", details["stock_actual"])
	assert.Equal(t, "-5", details["ajuste_solicitado"])
}
