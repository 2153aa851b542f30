package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/epp"
)

// EppHandler entregas y renovaciones de elementos de protección personal.
type EppHandler struct {
	uc *epp.UseCase
}

func NewEppHandler(uc *epp.UseCase) *EppHandler {
	return &EppHandler{uc: uc}
}

func eppLines(in []dto.EppLineRequest) []epp.LineInput {
	var out []epp.LineInput
	for _, l := range in {
		out = append(out, epp.LineInput{ProductID: l.ProductID, Quantity: l.Quantity, Size: l.Size})
	}
	return out
}

// Issue godoc
// @Summary      Entregar EPP a un trabajador
// @Tags         epp
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.IssueEppRequest  true  "datos del documento"
// @Success      201  {object}  dto.DocumentMovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/epp/issuances [post]
func (h *EppHandler) Issue(c *fiber.Ctx) error {
	companyID, userID, err := tenant(c)
	if err != nil {
		return fail(c, err)
	}
	var in dto.IssueEppRequest
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	res, err := h.uc.Issue(c.UserContext(), epp.IssueInput{
		CompanyID:   companyID,
		UserID:      userID,
		WarehouseID: in.WarehouseID,
		WorkerID:    in.WorkerID,
		Notes:       in.Notes,
		Lines:       eppLines(in.Lines),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.DocumentMovementResponse{
		Document: dto.NewEppIssuanceResponse(res.Issuance),
		Movement: dto.NewMovementResponse(res.Movement),
	})
}

// Renew godoc
// @Summary      Renovar entrega de EPP
// @Tags         epp
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id  path  string  true  "ID"
// @Param        body  body  dto.RenewEppRequest  false  "opcional"
// @Success      201  {object}  dto.DocumentMovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/epp/issuances/{id}/renewals [post]
func (h *EppHandler) Renew(c *fiber.Ctx) error {
	companyID, userID, err := tenant(c)
	if err != nil {
		return fail(c, err)
	}
	var in dto.RenewEppRequest
	if len(c.Body()) > 0 {
		if err := bind(c, &in); err != nil {
			return fail(c, err)
		}
	}
	res, err := h.uc.Renew(c.UserContext(), epp.RenewInput{
		CompanyID:   companyID,
		UserID:      userID,
		IssuanceID:  c.Params("id"),
		WarehouseID: in.WarehouseID,
		Notes:       in.Notes,
		Lines:       eppLines(in.Lines),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.DocumentMovementResponse{
		Document: dto.NewEppIssuanceResponse(res.Issuance),
		Movement: dto.NewMovementResponse(res.Movement),
	})
}

// History godoc
// @Summary      Historial de EPP de un trabajador
// @Tags         epp
// @Security     Bearer
// @Produce      json
// @Param        worker_id  path  string  true  "trabajador"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/epp/workers/{worker_id}/issuances [get]
func (h *EppHandler) History(c *fiber.Ctx) error {
	companyID, _, err := tenant(c)
	if err != nil {
		return fail(c, err)
	}
	list, err := h.uc.History(c.UserContext(), companyID, c.Params("worker_id"))
	if err != nil {
		return fail(c, err)
	}
	out := make([]dto.EppIssuanceResponse, 0, len(list))
	for _, i := range list {
		out = append(out, dto.NewEppIssuanceResponse(i))
	}
	return c.JSON(fiber.Map{"total": len(out), "issuances": out})
}
