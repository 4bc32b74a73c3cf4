package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/inventra/inventra-api/internal/application/catalog"
	"github.com/inventra/inventra-api/internal/application/dto"
)

// CategoryHandler maneja las peticiones HTTP para categorías (protegido).
type CategoryHandler struct {
	uc *catalog.CategoryUseCase
}

func NewCategoryHandler(uc *catalog.CategoryUseCase) *CategoryHandler {
	return &CategoryHandler{uc: uc}
}

// Create godoc
// @Summary      Crear categoría
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CategoryRequest  true  "Datos de la categoría"
// @Success      201   {object}  dto.CategoryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/categorias [post]
func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var in dto.CategoryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar categorías
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        activo  query  bool  false  "Solo activas"
// @Success      200  {array}  dto.CategoryResponse
// @Router       /api/categorias [get]
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), c.QueryBool("activo"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener categoría por ID
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la categoría"
// @Success      200  {object}  dto.CategoryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/categorias/{id} [get]
func (h *CategoryHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar categoría
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la categoría"
// @Param        body  body  dto.CategoryRequest  true  "Datos a actualizar"
// @Success      200   {object}  dto.CategoryResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/categorias/{id} [put]
func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	var in dto.CategoryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar categoría
// @Tags         catalog
// @Security     Bearer
// @Param        id  path  string  true  "ID de la categoría"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/categorias/{id} [delete]
func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return handleError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UnitMeasureHandler maneja las peticiones HTTP para unidades de medida.
type UnitMeasureHandler struct {
	uc *catalog.UnitMeasureUseCase
}

func NewUnitMeasureHandler(uc *catalog.UnitMeasureUseCase) *UnitMeasureHandler {
	return &UnitMeasureHandler{uc: uc}
}

// Create godoc
// @Summary      Crear unidad de medida
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UnitMeasureRequest  true  "Datos de la unidad"
// @Success      201   {object}  dto.UnitMeasureResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/unidades-medida [post]
func (h *UnitMeasureHandler) Create(c *fiber.Ctx) error {
	var in dto.UnitMeasureRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar unidades de medida activas
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.UnitMeasureResponse
// @Router       /api/unidades-medida [get]
func (h *UnitMeasureHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.ListActive(c.UserContext())
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener unidad de medida por ID
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la unidad"
// @Success      200  {object}  dto.UnitMeasureResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/unidades-medida/{id} [get]
func (h *UnitMeasureHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar unidad de medida
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la unidad"
// @Param        body  body  dto.UnitMeasureRequest  true  "Datos a actualizar"
// @Success      200   {object}  dto.UnitMeasureResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/unidades-medida/{id} [put]
func (h *UnitMeasureHandler) Update(c *fiber.Ctx) error {
	var in dto.UnitMeasureRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar unidad de medida
// @Tags         catalog
// @Security     Bearer
// @Param        id  path  string  true  "ID de la unidad"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/unidades-medida/{id} [delete]
func (h *UnitMeasureHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return handleError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MovementTypeHandler maneja las peticiones HTTP para tipos de movimiento.
type MovementTypeHandler struct {
	uc *catalog.MovementTypeUseCase
}

func NewMovementTypeHandler(uc *catalog.MovementTypeUseCase) *MovementTypeHandler {
	return &MovementTypeHandler{uc: uc}
}

// Create godoc
// @Summary      Crear tipo de movimiento
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MovementTypeRequest  true  "Datos del tipo"
// @Success      201   {object}  dto.MovementTypeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/tipos-movimiento [post]
func (h *MovementTypeHandler) Create(c *fiber.Ctx) error {
	var in dto.MovementTypeRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar tipos de movimiento
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        activo  query  bool  false  "Solo activos"
// @Success      200  {array}  dto.MovementTypeResponse
// @Router       /api/tipos-movimiento [get]
func (h *MovementTypeHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), c.QueryBool("activo"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener tipo de movimiento por ID
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del tipo"
// @Success      200  {object}  dto.MovementTypeResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/tipos-movimiento/{id} [get]
func (h *MovementTypeHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar tipo de movimiento
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del tipo"
// @Param        body  body  dto.MovementTypeRequest  true  "Datos a actualizar"
// @Success      200   {object}  dto.MovementTypeResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/tipos-movimiento/{id} [put]
func (h *MovementTypeHandler) Update(c *fiber.Ctx) error {
	var in dto.MovementTypeRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar tipo de movimiento
// @Tags         catalog
// @Security     Bearer
// @Param        id  path  string  true  "ID del tipo"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/tipos-movimiento/{id} [delete]
func (h *MovementTypeHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return handleError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
