package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/requisition"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// RequisitionHandler requisiciones internas y sus vales de salida.
type RequisitionHandler struct {
	uc *requisition.UseCase
}

func NewRequisitionHandler(uc *requisition.UseCase) *RequisitionHandler {
	return &RequisitionHandler{uc: uc}
}

// Create godoc
// @Summary      Crear requisición
// @Description  Sin requester, solicita el usuario del token.
// @Tags         requisitions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateRequisitionRequest  true  "datos del documento"
// @Success      201  {object}  dto.RequisitionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/requisitions [post]
func (h *RequisitionHandler) Create(c *fiber.Ctx) error {
	companyID, userID, err := tenant(c)
	if err != nil {
		return fail(c, err)
	}
	var in dto.CreateRequisitionRequest
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	requester := entity.SystemUser(userID)
	if in.Requester != nil {
		requester = *in.Requester.ToEntity()
	}
	lines := make([]requisition.LineInput, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, requisition.LineInput{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	req, err := h.uc.CreateRequisition(c.UserContext(), requisition.CreateInput{
		CompanyID:    companyID,
		CostCenterID: in.CostCenterID,
		Requester:    requester,
		Lines:        lines,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewRequisitionResponse(req))
}

// Get godoc
// @Summary      Obtener requisición
// @Tags         requisitions
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID"
// @Success      200  {object}  dto.RequisitionResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/requisitions/{id} [get]
func (h *RequisitionHandler) Get(c *fiber.Ctx) error {
	companyID, _, err := tenant(c)
	if err != nil {
		return fail(c, err)
	}
	req, err := h.uc.GetRequisition(c.UserContext(), companyID, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.NewRequisitionResponse(req))
}

// Approve godoc
// @Summary      Aprobar requisición
// @Description  Sin líneas aprueba todo lo solicitado.
// @Tags         requisitions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id  path  string  true  "ID"
// @Param        body  body  dto.ApproveRequisitionRequest  false  "opcional"
// @Success      200  {object}  dto.RequisitionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/requisitions/{id}/approve [post]
func (h *RequisitionHandler) Approve(c *fiber.Ctx) error {
	companyID, _, err := tenant(c)
	if err != nil {
		return fail(c, err)
	}
	var in dto.ApproveRequisitionRequest
	if len(c.Body()) > 0 {
		if err := bind(c, &in); err != nil {
			return fail(c, err)
		}
	}
	var lines []requisition.ApprovalLine
	for _, l := range in.Lines {
		lines = append(lines, requisition.ApprovalLine{LineID: l.LineID, Quantity: l.Quantity})
	}
	req, err := h.uc.Approve(c.UserContext(), companyID, c.Params("id"), lines)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.NewRequisitionResponse(req))
}

// Reject godoc
// @Summary      Rechazar requisición
// @Tags         requisitions
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID"
// @Success      200  {object}  dto.RequisitionResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/requisitions/{id}/reject [post]
func (h *RequisitionHandler) Reject(c *fiber.Ctx) error {
	companyID, _, err := tenant(c)
	if err != nil {
		return fail(c, err)
	}
	req, err := h.uc.Reject(c.UserContext(), companyID, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.NewRequisitionResponse(req))
}

// CreateVoucher godoc
// @Summary      Crear vale de salida
// @Tags         requisitions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id  path  string  true  "ID"
// @Param        body  body  dto.CreateExitVoucherRequest  true  "datos del documento"
// @Success      201  {object}  dto.ExitVoucherResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/requisitions/{id}/vouchers [post]
func (h *RequisitionHandler) CreateVoucher(c *fiber.Ctx) error {
	companyID, userID, err := tenant(c)
	if err != nil {
		return fail(c, err)
	}
	var in dto.CreateExitVoucherRequest
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	var lines []requisition.VoucherLineInput
	for _, l := range in.Lines {
		lines = append(lines, requisition.VoucherLineInput{RequisitionLineID: l.RequisitionLineID, Quantity: l.Quantity})
	}
	v, err := h.uc.CreateExitVoucher(c.UserContext(), requisition.CreateVoucherInput{
		CompanyID:     companyID,
		UserID:        userID,
		RequisitionID: c.Params("id"),
		WarehouseID:   in.WarehouseID,
		Receptor:      in.Receptor.ToEntity(),
		Lines:         lines,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewExitVoucherResponse(v))
}

// GetVoucher godoc
// @Summary      Obtener vale de salida
// @Tags         requisitions
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID"
// @Success      200  {object}  dto.ExitVoucherResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/exit-vouchers/{id} [get]
func (h *RequisitionHandler) GetVoucher(c *fiber.Ctx) error {
	companyID, _, err := tenant(c)
	if err != nil {
		return fail(c, err)
	}
	v, err := h.uc.GetExitVoucher(c.UserContext(), companyID, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.NewExitVoucherResponse(v))
}

// Deliver godoc
// @Summary      Entregar vale de salida (total o parcial)
// @Description  Sin líneas entrega todo lo pendiente.
// @Tags         requisitions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id  path  string  true  "ID"
// @Param        body  body  dto.DeliverExitVoucherRequest  false  "opcional"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/exit-vouchers/{id}/deliveries [post]
func (h *RequisitionHandler) Deliver(c *fiber.Ctx) error {
	companyID, userID, err := tenant(c)
	if err != nil {
		return fail(c, err)
	}
	var in dto.DeliverExitVoucherRequest
	if len(c.Body()) > 0 {
		if err := bind(c, &in); err != nil {
			return fail(c, err)
		}
	}
	var lines []requisition.DeliveryLineInput
	for _, l := range in.Lines {
		lines = append(lines, requisition.DeliveryLineInput{VoucherLineID: l.VoucherLineID, Quantity: l.Quantity})
	}
	res, err := h.uc.DeliverExitVoucher(c.UserContext(), requisition.DeliverInput{
		CompanyID: companyID,
		UserID:    userID,
		VoucherID: c.Params("id"),
		Notes:     in.Notes,
		Lines:     lines,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"voucher":     dto.NewExitVoucherResponse(res.Voucher),
		"requisition": dto.NewRequisitionResponse(res.Requisition),
		"movement":    dto.NewMovementResponse(res.Movement),
	})
}
