package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// BalanceReader lectura rápida de saldos ya publicados (caché). Un miss devuelve nil, nil.
type BalanceReader interface {
	Lookup(ctx context.Context, key entity.BalanceKey) (*entity.StockBalance, error)
}

// InventoryHandler maneja movimientos, kardex y saldos (protegido).
type InventoryHandler struct {
	uc            *inventory.MovementUseCase
	replenishment *inventory.ReplenishmentUseCase
	balances      BalanceReader
}

// NewInventoryHandler construye el handler. balances puede ser nil.
func NewInventoryHandler(uc *inventory.MovementUseCase, replenishment *inventory.ReplenishmentUseCase, balances BalanceReader) *InventoryHandler {
	return &InventoryHandler{uc: uc, replenishment: replenishment, balances: balances}
}

// CreateMovement godoc
// @Summary      Registrar movimiento de inventario
// @Description  ENTRY, EXIT y ADJUSTMENT quedan COMPLETED; TRANSFER queda PENDING hasta confirmar recibo.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateMovementRequest  true  "datos del documento"
// @Success      201  {object}  dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) CreateMovement(c *fiber.Ctx) error {
	companyID, userID, err := tenant(c)
	if err != nil {
		return fail(c, err)
	}
	var in dto.CreateMovementRequest
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	mi := inventory.MovementInput{
		CompanyID:         companyID,
		UserID:            userID,
		Type:              in.Type,
		Subtype:           in.Subtype,
		SourceWarehouseID: in.SourceWarehouseID,
		DestWarehouseID:   in.DestWarehouseID,
		SupplierID:        in.SupplierID,
		CostCenterID:      in.CostCenterID,
		Receptor:          in.Receptor.ToEntity(),
		Notes:             in.Notes,
		Lines:             make([]inventory.MovementLineInput, 0, len(in.Lines)),
	}
	if in.Reference != nil {
		mi.Reference = &entity.DocumentReference{Kind: entity.ReferenceKind(in.Reference.Kind), ID: in.Reference.ID}
	}
	if in.Date != nil {
		mi.Date = *in.Date
	}
	for _, l := range in.Lines {
		mi.Lines = append(mi.Lines, inventory.MovementLineInput{
			ProductID:  l.ProductID,
			Quantity:   l.Quantity,
			UnitCost:   l.UnitCost,
			Direction:  l.Direction,
			LotNumber:  l.LotNumber,
			ExpiryDate: l.ExpiryDate,
		})
	}
	mov, err := h.uc.Create(c.UserContext(), mi)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewMovementResponse(mov))
}

// GetMovement godoc
// @Summary      Obtener movimiento
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID"
// @Success      200  {object}  dto.MovementResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id} [get]
func (h *InventoryHandler) GetMovement(c *fiber.Ctx) error {
	companyID, _, err := tenant(c)
	if err != nil {
		return fail(c, err)
	}
	mov, err := h.uc.Get(c.UserContext(), companyID, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.NewMovementResponse(mov))
}

// ListMovements godoc
// @Summary      Listar movimientos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "bodega origen o destino"
// @Param        type  query  string  false  "ENTRY | EXIT | TRANSFER | ADJUSTMENT"
// @Param        status  query  string  false  "PENDING | COMPLETED | VOIDED"
// @Param        from  query  string  false  "RFC3339 o YYYY-MM-DD"
// @Param        to  query  string  false  "RFC3339 o YYYY-MM-DD"
// @Param        limit  query  int  false  "máximo 100"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	companyID, _, err := tenant(c)
	if err != nil {
		return fail(c, err)
	}
	from, to, err := dateRange(c)
	if err != nil {
		return fail(c, err)
	}
	p := page(c)
	list, err := h.uc.List(c.UserContext(), repository.MovementFilter{
		CompanyID:   companyID,
		WarehouseID: c.Query("warehouse_id"),
		Type:        c.Query("type"),
		Status:      c.Query("status"),
		From:        from,
		To:          to,
		Limit:       p.Fetch(),
		Offset:      p.Offset,
	})
	if err != nil {
		return fail(c, err)
	}
	list, meta := dto.Paginate(p, list)
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, *dto.NewMovementResponse(m))
	}
	return c.JSON(dto.MovementListResponse{Items: items, Page: meta})
}

// ConfirmTransfer godoc
// @Summary      Confirmar recibo de traslado
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID"
// @Success      200  {object}  dto.MovementResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id}/confirm [post]
func (h *InventoryHandler) ConfirmTransfer(c *fiber.Ctx) error {
	companyID, userID, err := tenant(c)
	if err != nil {
		return fail(c, err)
	}
	mov, err := h.uc.ConfirmTransferReceipt(c.UserContext(), companyID, userID, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.NewMovementResponse(mov))
}

// VoidMovement godoc
// @Summary      Anular movimiento
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id  path  string  true  "ID"
// @Param        body  body  dto.VoidMovementRequest  true  "motivo obligatorio"
// @Success      200  {object}  dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id}/void [post]
func (h *InventoryHandler) VoidMovement(c *fiber.Ctx) error {
	companyID, userID, err := tenant(c)
	if err != nil {
		return fail(c, err)
	}
	var in dto.VoidMovementRequest
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	mov, err := h.uc.Void(c.UserContext(), companyID, userID, c.Params("id"), in.Reason)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.NewMovementResponse(mov))
}

// Kardex godoc
// @Summary      Kardex valorizado de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  true  "producto"
// @Param        warehouse_id  query  string  false  "bodega; vacío incluye todas"
// @Param        from  query  string  false  "RFC3339 o YYYY-MM-DD"
// @Param        to  query  string  false  "RFC3339 o YYYY-MM-DD"
// @Param        limit  query  int  false  "máximo 1000"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/inventory/kardex [get]
func (h *InventoryHandler) Kardex(c *fiber.Ctx) error {
	companyID, _, err := tenant(c)
	if err != nil {
		return fail(c, err)
	}
	from, to, err := dateRange(c)
	if err != nil {
		return fail(c, err)
	}
	entries, err := h.uc.ListKardex(c.UserContext(), repository.KardexFilter{
		CompanyID:   companyID,
		ProductID:   c.Query("product_id"),
		WarehouseID: c.Query("warehouse_id"),
		From:        from,
		To:          to,
		Limit:       c.QueryInt("limit"),
		Offset:      c.QueryInt("offset"),
	})
	if err != nil {
		return fail(c, err)
	}
	out := make([]dto.KardexEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.NewKardexEntryResponse(e))
	}
	return c.JSON(fiber.Map{"total": len(out), "entries": out})
}

// ListBalances godoc
// @Summary      Saldos de una bodega
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  true  "bodega"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/inventory/balances [get]
func (h *InventoryHandler) ListBalances(c *fiber.Ctx) error {
	companyID, _, err := tenant(c)
	if err != nil {
		return fail(c, err)
	}
	list, err := h.uc.ListBalances(c.UserContext(), companyID, c.Query("warehouse_id"))
	if err != nil {
		return fail(c, err)
	}
	out := make([]dto.StockBalanceResponse, 0, len(list))
	for _, b := range list {
		out = append(out, dto.NewStockBalanceResponse(b))
	}
	return c.JSON(fiber.Map{"total": len(out), "balances": out})
}

// GetBalance godoc
// @Summary      Saldo de un producto en una bodega
// @Description  Consulta la caché antes que la base; X-Cache: HIT cuando responde la caché.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  path  string  true  "bodega"
// @Param        product_id  path  string  true  "producto"
// @Success      200  {object}  dto.StockBalanceResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/inventory/balances/{warehouse_id}/{product_id} [get]
func (h *InventoryHandler) GetBalance(c *fiber.Ctx) error {
	companyID, _, err := tenant(c)
	if err != nil {
		return fail(c, err)
	}
	key := entity.BalanceKey{CompanyID: companyID, WarehouseID: c.Params("warehouse_id"), ProductID: c.Params("product_id")}
	if h.balances != nil {
		if b, err := h.balances.Lookup(c.UserContext(), key); err == nil && b != nil {
			c.Set("X-Cache", "HIT")
			return c.JSON(dto.NewStockBalanceResponse(b))
		}
	}
	b, err := h.uc.GetBalance(c.UserContext(), key)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.NewStockBalanceResponse(b))
}

// SetStockLimits godoc
// @Summary      Fijar mínimo y máximo
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        warehouse_id  path  string  true  "bodega"
// @Param        product_id  path  string  true  "producto"
// @Param        body  body  dto.StockLimitsRequest  true  "datos del documento"
// @Success      200  {object}  dto.StockBalanceResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/inventory/balances/{warehouse_id}/{product_id}/limits [put]
func (h *InventoryHandler) SetStockLimits(c *fiber.Ctx) error {
	companyID, _, err := tenant(c)
	if err != nil {
		return fail(c, err)
	}
	var in dto.StockLimitsRequest
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	key := entity.BalanceKey{CompanyID: companyID, WarehouseID: c.Params("warehouse_id"), ProductID: c.Params("product_id")}
	b, err := h.uc.SetStockLimits(c.UserContext(), key, in.MinStock, in.MaxStock)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.NewStockBalanceResponse(b))
}

// GetReplenishmentList godoc
// @Summary      Lista de reposición
// @Description  Vacío en warehouse_id considera todas las bodegas.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "bodega"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/inventory/replenishment-list [get]
func (h *InventoryHandler) GetReplenishmentList(c *fiber.Ctx) error {
	companyID, _, err := tenant(c)
	if err != nil {
		return fail(c, err)
	}
	list, err := h.replenishment.GenerateReplenishmentList(c.UserContext(), companyID, c.Query("warehouse_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"total":          len(list),
		"replenishments": list,
	})
}

// dateRange lee from/to en RFC3339 o YYYY-MM-DD.
func dateRange(c *fiber.Ctx) (from, to *time.Time, err error) {
	parse := func(field string) (*time.Time, error) {
		raw := c.Query(field)
		if raw == "" {
			return nil, nil
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, raw); err == nil {
				return &t, nil
			}
		}
		return nil, domain.Invalid(field, "fecha inválida, use RFC3339 o YYYY-MM-DD")
	}
	if from, err = parse("from"); err != nil {
		return nil, nil, err
	}
	if to, err = parse("to"); err != nil {
		return nil, nil, err
	}
	return from, to, nil
}
