package invoicing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/inventra/inventra-api/internal/application/dto"
	"github.com/inventra/inventra-api/internal/domain"
	"github.com/inventra/inventra-api/internal/domain/entity"
	"github.com/inventra/inventra-api/internal/domain/repository"
	"github.com/inventra/inventra-api/pkg/logger"
)

// InvoiceUseCase orquesta el ciclo de vida de facturas internas: crear,
// actualizar (cabecera, líneas y/o estado), anular, eliminar y consultar.
// Toda la matemática de stock dependiente de estado vive en BuildPlan; este
// caso de uso resuelve claves foráneas, valida la entrada y aplica el plan
// dentro de una transacción con la cabecera bloqueada (FOR UPDATE).
type InvoiceUseCase struct {
	txRunner         TxRunner
	invoiceRepo      repository.InvoiceRepository
	productRepo      repository.ProductRepository
	movementTypeRepo repository.MovementTypeRepository
	userRepo         repository.UserRepository
	log              *logger.Logger
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(
	txRunner TxRunner,
	invoiceRepo repository.InvoiceRepository,
	productRepo repository.ProductRepository,
	movementTypeRepo repository.MovementTypeRepository,
	userRepo repository.UserRepository,
	log *logger.Logger,
) *InvoiceUseCase {
	return &InvoiceUseCase{
		txRunner:         txRunner,
		invoiceRepo:      invoiceRepo,
		productRepo:      productRepo,
		movementTypeRepo: movementTypeRepo,
		userRepo:         userRepo,
		log:              log,
	}
}

// Create crea una factura interna en DRAFT o directamente en CONFIRMED. Crear
// en CONFIRMED aplica +cantidad por cada línea de inmediato (caso especial de
// conciliación con oldLines vacías).
func (uc *InvoiceUseCase) Create(ctx context.Context, in dto.CreateInvoiceRequest) (*dto.ReconcileResult, error) {
	state := entity.InvoiceState(in.State)
	if in.State == "" {
		state = entity.StateDraft
	}
	if state != entity.StateDraft && state != entity.StateConfirmed {
		return nil, domain.ErrInvalidInput
	}
	if in.Code == "" || in.MovementTypeID == "" || in.ResponsibleUserID == "" {
		return nil, domain.ErrInvalidInput
	}
	lines, err := toLineInputs(in.Lines)
	if err != nil {
		return nil, err
	}
	if err := uc.checkProducts(ctx, lines); err != nil {
		return nil, err
	}
	if err := uc.checkForeignKeys(ctx, in.MovementTypeID, in.ResponsibleUserID); err != nil {
		return nil, err
	}
	exists, err := uc.invoiceRepo.ExistsCode(ctx, in.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicate
	}

	now := time.Now()
	inv := &entity.Invoice{
		ID:                uuid.New().String(),
		Code:              in.Code,
		MovementTypeID:    in.MovementTypeID,
		Concept:           in.Concept,
		ResponsibleUserID: in.ResponsibleUserID,
		MovementDate:      in.MovementDate,
		Total:             in.Total,
		Notes:             in.Notes,
		State:             state,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if inv.MovementDate.IsZero() {
		inv.MovementDate = now
	}

	// Alta como conciliación desde el estado vacío: oldState no contribuye y
	// oldLines = []; en CONFIRMED el plan aplica la cantidad completa de cada línea.
	plan := BuildPlan(entity.StateDraft, state, nil, lines, true)

	err = uc.txRunner.Run(ctx, func(invRepo repository.InvoiceRepository, prodRepo repository.ProductRepository) error {
		if err := invRepo.InsertHeader(ctx, inv); err != nil {
			return err
		}
		return applyPlan(ctx, invRepo, prodRepo, inv.ID, plan)
	})
	if err != nil {
		return nil, err
	}

	if state.Contributes() {
		uc.log.Info().Str("factura_id", inv.ID).Str("usuario_id", in.ResponsibleUserID).
			Msg("inventario actualizado por creación de factura confirmada")
	}
	return uc.reconcileResult(ctx, inv.ID)
}

// Update actualiza cabecera, líneas y/o estado de una factura de forma
// incremental. Carga el estado persistido bajo bloqueo de fila, calcula el
// plan de conciliación y lo aplica junto con las mutaciones de cabecera y
// líneas en una sola transacción. Ante cualquier error (incluido stock
// insuficiente) se hace rollback completo.
func (uc *InvoiceUseCase) Update(ctx context.Context, id string, in dto.UpdateInvoiceRequest) (*dto.ReconcileResult, error) {
	var targetState *entity.InvoiceState
	if in.State != nil {
		s := entity.InvoiceState(*in.State)
		if !s.Valid() {
			return nil, domain.ErrInvalidInput
		}
		targetState = &s
	}

	var newLines []LineInput
	linesProvided := in.Lines != nil
	if linesProvided {
		var err error
		newLines, err = toLineInputs(*in.Lines)
		if err != nil {
			return nil, err
		}
		if err := uc.checkProducts(ctx, newLines); err != nil {
			return nil, err
		}
	}

	if in.MovementTypeID != nil || in.ResponsibleUserID != nil {
		mt, usr := "", ""
		if in.MovementTypeID != nil {
			mt = *in.MovementTypeID
		}
		if in.ResponsibleUserID != nil {
			usr = *in.ResponsibleUserID
		}
		if err := uc.checkForeignKeys(ctx, mt, usr); err != nil {
			return nil, err
		}
	}

	var oldState, newState entity.InvoiceState
	err := uc.txRunner.Run(ctx, func(invRepo repository.InvoiceRepository, prodRepo repository.ProductRepository) error {
		inv, oldLines, err := invRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		oldState = inv.State
		newState = oldState
		if targetState != nil {
			newState = *targetState
		}

		// Las transiciones que salen de VOIDED se rechazan aquí (regla del
		// orquestador; el motor en sí no las impide).
		if oldState == entity.StateVoided && newState != entity.StateVoided {
			return domain.ErrConflict
		}

		if in.Code != nil && *in.Code != inv.Code {
			exists, err := invRepo.ExistsCode(ctx, *in.Code)
			if err != nil {
				return err
			}
			if exists {
				return domain.ErrDuplicate
			}
		}

		plan := BuildPlan(oldState, newState, oldLines, newLines, linesProvided)
		if err := applyPlan(ctx, invRepo, prodRepo, id, plan); err != nil {
			return err
		}

		patch := repository.InvoiceHeaderPatch{
			Code:              in.Code,
			MovementTypeID:    in.MovementTypeID,
			Concept:           in.Concept,
			ResponsibleUserID: in.ResponsibleUserID,
			MovementDate:      in.MovementDate,
			Total:             in.Total,
			Notes:             in.Notes,
		}
		if targetState != nil {
			patch.State = targetState
		}
		if patch.Empty() {
			return nil
		}
		return invRepo.UpdateHeader(ctx, id, patch)
	})
	if err != nil {
		return nil, err
	}

	if oldState != newState || (newState.Contributes() && linesProvided) {
		uc.log.Info().Str("factura_id", id).
			Str("estado_anterior", string(oldState)).
			Str("estado_nuevo", string(newState)).
			Msg("factura e inventario actualizados")
	}
	return uc.reconcileResult(ctx, id)
}

// UpdateState cambio de estado puro: confirmar (aplica stock), anular o
// reabrir a borrador (ambos revierten si venía de CONFIRMED).
func (uc *InvoiceUseCase) UpdateState(ctx context.Context, id string, state string) (*dto.ReconcileResult, error) {
	return uc.Update(ctx, id, dto.UpdateInvoiceRequest{State: &state})
}

// Delete elimina cabecera y líneas. No revierte stock: es un hueco heredado
// del sistema original que se conserva a propósito (ver DESIGN.md); se deja
// rastro en el log cuando la factura eliminada estaba confirmada.
func (uc *InvoiceUseCase) Delete(ctx context.Context, id string) error {
	inv, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if inv == nil {
		return domain.ErrNotFound
	}
	if inv.State.Contributes() {
		uc.log.Warn().Str("factura_id", id).Str("codigo", inv.Code).
			Msg("eliminando factura CONFIRMADA: el stock aportado no se revierte")
	}
	return uc.invoiceRepo.DeleteCascade(ctx, id)
}

// GetByID devuelve la factura con sus líneas.
func (uc *InvoiceUseCase) GetByID(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	lines, err := uc.invoiceRepo.GetLines(ctx, id)
	if err != nil {
		return nil, err
	}
	out := dto.ToInvoiceResponse(inv, lines)
	return &out, nil
}

// List devuelve una página de facturas con filtros de estado, texto y fechas.
func (uc *InvoiceUseCase) List(ctx context.Context, f repository.InvoiceFilter) (*dto.InvoiceListResponse, error) {
	if f.Limit <= 0 {
		f.Limit = 10
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	invoices, total, err := uc.invoiceRepo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := &dto.InvoiceListResponse{
		Page: dto.PageResponse{
			Page:       f.Offset/f.Limit + 1,
			Limit:      f.Limit,
			Total:      total,
			TotalPages: (total + f.Limit - 1) / f.Limit,
		},
	}
	for _, inv := range invoices {
		out.Invoices = append(out.Invoices, dto.ToInvoiceResponse(inv, nil))
	}
	return out, nil
}

// Stats agregados de facturas por estado.
func (uc *InvoiceUseCase) Stats(ctx context.Context) (*dto.InvoiceStatsResponse, error) {
	s, err := uc.invoiceRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.InvoiceStatsResponse{
		Total:       s.Total,
		Draft:       s.Draft,
		Confirmed:   s.Confirmed,
		Voided:      s.Voided,
		TotalAmount: s.TotalAmount,
	}, nil
}

// applyPlan ejecuta las mutaciones de líneas y los ajustes de stock del plan
// usando los repositorios atados a la transacción del caller.
func applyPlan(
	ctx context.Context,
	invRepo repository.InvoiceRepository,
	prodRepo repository.ProductRepository,
	invoiceID string,
	plan Plan,
) error {
	for _, lineID := range plan.RemoveLineIDs {
		if err := invRepo.DeleteLine(ctx, lineID); err != nil {
			return err
		}
	}
	for _, ins := range plan.Inserts {
		line := &entity.InvoiceLine{
			ID:        uuid.New().String(),
			InvoiceID: invoiceID,
			ProductID: ins.ProductID,
			Quantity:  ins.Quantity,
			UnitPrice: ins.UnitPrice,
		}
		if err := invRepo.InsertLine(ctx, line); err != nil {
			return err
		}
	}
	for _, upd := range plan.Updates {
		if err := invRepo.UpdateLine(ctx, upd.LineID, upd.Quantity, upd.UnitPrice); err != nil {
			return err
		}
	}
	for _, adj := range plan.Adjustments {
		if err := prodRepo.AdjustStock(ctx, adj.ProductID, adj.Delta, adj.NewPrice); err != nil {
			return err
		}
	}
	return nil
}

// checkProducts valida que cada línea referencie un producto existente antes de
// entrar al motor. Un borrador nunca ajusta stock, así que sin este chequeo un
// producto inexistente solo se detectaría como violación de FK al insertar la línea.
func (uc *InvoiceUseCase) checkProducts(ctx context.Context, lines []LineInput) error {
	seen := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ProductID]; ok {
			continue
		}
		seen[l.ProductID] = struct{}{}
		p, err := uc.productRepo.GetByID(ctx, l.ProductID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
	}
	return nil
}

// checkForeignKeys valida tipo de movimiento y usuario responsable cuando vienen.
func (uc *InvoiceUseCase) checkForeignKeys(ctx context.Context, movementTypeID, userID string) error {
	if movementTypeID != "" {
		mt, err := uc.movementTypeRepo.GetByID(ctx, movementTypeID)
		if err != nil {
			return err
		}
		if mt == nil {
			return domain.ErrNotFound
		}
	}
	if userID != "" {
		usr, err := uc.userRepo.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if usr == nil {
			return domain.ErrNotFound
		}
	}
	return nil
}

// reconcileResult relee la factura ya confirmada para la respuesta.
func (uc *InvoiceUseCase) reconcileResult(ctx context.Context, id string) (*dto.ReconcileResult, error) {
	out, err := uc.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.ReconcileResult{Invoice: *out, LineCountAfter: len(out.Lines)}, nil
}

func toLineInputs(in []dto.InvoiceLineRequest) ([]LineInput, error) {
	out := make([]LineInput, 0, len(in))
	for _, l := range in {
		if err := l.Validate(); err != nil {
			return nil, err
		}
		out = append(out, LineInput{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}
	return out, nil
}
