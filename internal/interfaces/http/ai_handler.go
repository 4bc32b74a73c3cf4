package http

import (
	"encoding/base64"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/inventra/inventra-api/internal/application/ai"
	"github.com/inventra/inventra-api/internal/application/dto"
)

// maxImageBytes límite del archivo subido (10 MB, igual que el frontend).
const maxImageBytes = 10 << 20

// AIHandler maneja la extracción de facturas desde imágenes.
type AIHandler struct {
	uc *ai.ExtractionUseCase
}

// NewAIHandler construye el handler.
func NewAIHandler(uc *ai.ExtractionUseCase) *AIHandler {
	return &AIHandler{uc: uc}
}

// ExtractInvoice godoc
// @Summary      Extraer factura de una imagen con el modelo de visión
// @Description  Acepta multipart (campo "imagen") o JSON con imagen_base64. Devuelve un borrador estructurado enriquecido contra el catálogo; el usuario lo revisa antes de crear la factura interna.
// @Tags         ai
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        imagen  formData  file  false  "Imagen de la factura (jpeg/png/gif/webp)"
// @Success      200  {object}  dto.ExtractInvoiceResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/ia/extraer-factura [post]
func (h *AIHandler) ExtractInvoice(c *fiber.Ctx) error {
	in, err := extractRequest(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: err.Error()})
	}
	out, err := h.uc.Extract(c.UserContext(), *in)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// extractRequest admite multipart (campo imagen) o JSON con imagen_base64.
func extractRequest(c *fiber.Ctx) (*dto.ExtractInvoiceRequest, error) {
	if fh, err := c.FormFile("imagen"); err == nil {
		if fh.Size > maxImageBytes {
			return nil, fiber.NewError(fiber.StatusBadRequest, "imagen demasiado grande")
		}
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		raw, err := io.ReadAll(io.LimitReader(f, maxImageBytes))
		if err != nil {
			return nil, err
		}
		return &dto.ExtractInvoiceRequest{
			ImageBase64: base64.StdEncoding.EncodeToString(raw),
			MimeType:    fh.Header.Get("Content-Type"),
		}, nil
	}

	var in dto.ExtractInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return nil, err
	}
	return &in, nil
}
