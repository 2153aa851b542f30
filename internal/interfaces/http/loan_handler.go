package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/loans"
)

// LoanHandler préstamos de equipos y sus devoluciones.
type LoanHandler struct {
	uc *loans.UseCase
}

func NewLoanHandler(uc *loans.UseCase) *LoanHandler {
	return &LoanHandler{uc: uc}
}

// Lend godoc
// @Summary      Prestar equipos
// @Tags         loans
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LendRequest  true  "datos del documento"
// @Success      201  {object}  dto.DocumentMovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/loans [post]
func (h *LoanHandler) Lend(c *fiber.Ctx) error {
	companyID, userID, err := tenant(c)
	if err != nil {
		return fail(c, err)
	}
	var in dto.LendRequest
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	lines := make([]loans.LineInput, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, loans.LineInput{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	res, err := h.uc.Lend(c.UserContext(), loans.LendInput{
		CompanyID:   companyID,
		UserID:      userID,
		WarehouseID: in.WarehouseID,
		Borrower:    *in.Borrower.ToEntity(),
		DueDate:     in.DueDate,
		Notes:       in.Notes,
		Lines:       lines,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.DocumentMovementResponse{
		Document: dto.NewLoanResponse(res.Loan),
		Movement: dto.NewMovementResponse(res.Movement),
	})
}

// Get godoc
// @Summary      Obtener préstamo
// @Tags         loans
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID"
// @Success      200  {object}  dto.LoanResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/loans/{id} [get]
func (h *LoanHandler) Get(c *fiber.Ctx) error {
	companyID, _, err := tenant(c)
	if err != nil {
		return fail(c, err)
	}
	loan, err := h.uc.Get(c.UserContext(), companyID, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.NewLoanResponse(loan))
}

// Return godoc
// @Summary      Registrar devolución de préstamo
// @Description  Sin líneas devuelve todo lo pendiente.
// @Tags         loans
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id  path  string  true  "ID"
// @Param        body  body  dto.ReturnLoanRequest  false  "opcional"
// @Success      201  {object}  dto.DocumentMovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/loans/{id}/returns [post]
func (h *LoanHandler) Return(c *fiber.Ctx) error {
	companyID, userID, err := tenant(c)
	if err != nil {
		return fail(c, err)
	}
	var in dto.ReturnLoanRequest
	if len(c.Body()) > 0 {
		if err := bind(c, &in); err != nil {
			return fail(c, err)
		}
	}
	var lines []loans.ReturnLineInput
	for _, l := range in.Lines {
		lines = append(lines, loans.ReturnLineInput{LoanLineID: l.LoanLineID, Quantity: l.Quantity})
	}
	res, err := h.uc.Return(c.UserContext(), loans.ReturnInput{
		CompanyID: companyID,
		UserID:    userID,
		LoanID:    c.Params("id"),
		Notes:     in.Notes,
		Lines:     lines,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.DocumentMovementResponse{
		Document: dto.NewLoanResponse(res.Loan),
		Movement: dto.NewMovementResponse(res.Movement),
	})
}
