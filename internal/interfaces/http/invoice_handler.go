package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/inventra/inventra-api/internal/application/dto"
	"github.com/inventra/inventra-api/internal/application/invoicing"
	"github.com/inventra/inventra-api/internal/domain/entity"
	"github.com/inventra/inventra-api/internal/domain/repository"
)

// InvoiceHandler maneja las peticiones HTTP para facturas internas (protegido).
type InvoiceHandler struct {
	uc    *invoicing.InvoiceUseCase
	pdfUC *invoicing.InvoicePDFUseCase
}

// NewInvoiceHandler construye el handler. pdfUC puede ser nil (sin export PDF).
func NewInvoiceHandler(uc *invoicing.InvoiceUseCase, pdfUC *invoicing.InvoicePDFUseCase) *InvoiceHandler {
	return &InvoiceHandler{uc: uc, pdfUC: pdfUC}
}

// Create godoc
// @Summary      Crear factura interna (DRAFT o directamente CONFIRMED)
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateInvoiceRequest  true  "Datos de la factura"
// @Success      201   {object}  dto.ReconcileResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/facturas-internas [post]
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.ResponsibleUserID == "" {
		in.ResponsibleUserID = GetUserID(c)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener factura interna con sus líneas
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/facturas-internas/{id} [get]
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar facturas internas
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Param        estado  query  string  false  "DRAFT | CONFIRMED | VOIDED"
// @Param        buscar  query  string  false  "Buscar en código y concepto"
// @Param        desde   query  string  false  "Fecha mínima (YYYY-MM-DD)"
// @Param        hasta   query  string  false  "Fecha máxima (YYYY-MM-DD)"
// @Param        limit   query  int     false  "Límite"  default(10)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.InvoiceListResponse
// @Router       /api/facturas-internas [get]
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	f := repository.InvoiceFilter{
		SearchText: c.Query("buscar"),
		Limit:      c.QueryInt("limit", 10),
		Offset:     c.QueryInt("offset", 0),
	}
	if s := c.Query("estado"); s != "" {
		state := entity.InvoiceState(s)
		if !state.Valid() {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "estado inválido"})
		}
		f.State = state
	}
	if s := c.Query("desde"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "desde debe ser YYYY-MM-DD"})
		}
		f.DateFrom = &t
	}
	if s := c.Query("hasta"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "hasta debe ser YYYY-MM-DD"})
		}
		f.DateTo = &t
	}
	out, err := h.uc.List(c.UserContext(), f)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Stats godoc
// @Summary      Estadísticas de facturas por estado
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.InvoiceStatsResponse
// @Router       /api/facturas-internas/stats [get]
func (h *InvoiceHandler) Stats(c *fiber.Ctx) error {
	out, err := h.uc.Stats(c.UserContext())
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar factura (cabecera, líneas y/o estado) con conciliación de stock
// @Description  Actualización parcial: las líneas ausentes en el body se conservan; una lista vacía las elimina todas. Todos los ajustes de stock se aplican en una sola transacción; stock insuficiente revierte todo con 409.
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la factura"
// @Param        body  body  dto.UpdateInvoiceRequest  true  "Cambios"
// @Success      200   {object}  dto.ReconcileResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/facturas-internas/{id} [put]
func (h *InvoiceHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// UpdateState godoc
// @Summary      Cambiar el estado de la factura (confirmar, anular, reabrir)
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la factura"
// @Param        body  body  dto.UpdateInvoiceStateRequest  true  "Estado destino"
// @Success      200   {object}  dto.ReconcileResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/facturas-internas/{id}/estado [patch]
func (h *InvoiceHandler) UpdateState(c *fiber.Ctx) error {
	var in dto.UpdateInvoiceStateRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.UpdateState(c.UserContext(), c.Params("id"), in.State)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar factura interna (no revierte stock)
// @Tags         invoices
// @Security     Bearer
// @Param        id  path  string  true  "ID de la factura"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/facturas-internas/{id} [delete]
func (h *InvoiceHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return handleError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// PDF godoc
// @Summary      Descargar la factura interna en PDF
// @Tags         invoices
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "ID de la factura"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/facturas-internas/{id}/pdf [get]
func (h *InvoiceHandler) PDF(c *fiber.Ctx) error {
	id := c.Params("id")
	data, err := h.pdfUC.GeneratePDF(c.UserContext(), id)
	if err != nil {
		return handleError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="factura-%s.pdf"`, id))
	return c.Send(data)
}
