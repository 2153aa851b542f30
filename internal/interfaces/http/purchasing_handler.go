package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/purchasing"
)

// PurchasingHandler órdenes de compra, recepciones y cotizaciones.
type PurchasingHandler struct {
	uc *purchasing.UseCase
}

func NewPurchasingHandler(uc *purchasing.UseCase) *PurchasingHandler {
	return &PurchasingHandler{uc: uc}
}

// CreateOrder godoc
// @Summary      Crear orden de compra
// @Tags         purchasing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePurchaseOrderRequest  true  "datos del documento"
// @Success      201  {object}  dto.PurchaseOrderResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders [post]
func (h *PurchasingHandler) CreateOrder(c *fiber.Ctx) error {
	companyID, userID, err := tenant(c)
	if err != nil {
		return fail(c, err)
	}
	var in dto.CreatePurchaseOrderRequest
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	lines := make([]purchasing.OrderLineInput, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, purchasing.OrderLineInput{ProductID: l.ProductID, Quantity: l.Quantity, UnitCost: l.UnitCost})
	}
	order, err := h.uc.CreatePurchaseOrder(c.UserContext(), purchasing.CreateOrderInput{
		CompanyID:   companyID,
		UserID:      userID,
		SupplierID:  in.SupplierID,
		WarehouseID: in.WarehouseID,
		Lines:       lines,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewPurchaseOrderResponse(order))
}

// GetOrder godoc
// @Summary      Obtener orden de compra
// @Tags         purchasing
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id} [get]
func (h *PurchasingHandler) GetOrder(c *fiber.Ctx) error {
	companyID, _, err := tenant(c)
	if err != nil {
		return fail(c, err)
	}
	order, err := h.uc.GetPurchaseOrder(c.UserContext(), companyID, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.NewPurchaseOrderResponse(order))
}

// ApproveOrder godoc
// @Summary      Aprobar orden de compra
// @Tags         purchasing
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/approve [post]
func (h *PurchasingHandler) ApproveOrder(c *fiber.Ctx) error {
	companyID, _, err := tenant(c)
	if err != nil {
		return fail(c, err)
	}
	order, err := h.uc.ApprovePurchaseOrder(c.UserContext(), companyID, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.NewPurchaseOrderResponse(order))
}

// Receive godoc
// @Summary      Recibir orden de compra (total o parcial)
// @Tags         purchasing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id  path  string  true  "ID"
// @Param        body  body  dto.ReceivePurchaseOrderRequest  true  "datos del documento"
// @Success      201  {object}  dto.DocumentMovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/receipts [post]
func (h *PurchasingHandler) Receive(c *fiber.Ctx) error {
	companyID, userID, err := tenant(c)
	if err != nil {
		return fail(c, err)
	}
	var in dto.ReceivePurchaseOrderRequest
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	lines := make([]purchasing.ReceiptLineInput, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, purchasing.ReceiptLineInput{LineID: l.LineID, Quantity: l.Quantity, LotNumber: l.LotNumber, ExpiryDate: l.ExpiryDate})
	}
	res, err := h.uc.ReceivePurchaseOrder(c.UserContext(), purchasing.ReceiveInput{
		CompanyID:   companyID,
		UserID:      userID,
		OrderID:     c.Params("id"),
		WarehouseID: in.WarehouseID,
		Notes:       in.Notes,
		Lines:       lines,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.DocumentMovementResponse{
		Document: dto.NewPurchaseOrderResponse(res.Order),
		Movement: dto.NewMovementResponse(res.Movement),
	})
}

// CreateQuotation godoc
// @Summary      Crear cotización
// @Tags         purchasing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateQuotationRequest  true  "datos del documento"
// @Success      201  {object}  dto.QuotationResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/quotations [post]
func (h *PurchasingHandler) CreateQuotation(c *fiber.Ctx) error {
	companyID, _, err := tenant(c)
	if err != nil {
		return fail(c, err)
	}
	var in dto.CreateQuotationRequest
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	q, err := h.uc.CreateQuotation(c.UserContext(), companyID, in.SupplierID)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.QuotationResponse{ID: q.ID, Number: q.Number, SupplierID: q.SupplierID, CreatedAt: q.CreatedAt})
}
