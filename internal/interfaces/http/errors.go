package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
)

var validate = validator.New()

// bind parsea el body y aplica las etiquetas validate del DTO.
func bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return domain.Invalid("body", "cuerpo inválido")
	}
	if err := validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return domain.Invalid(verrs[0].Field(), "campos inválidos: "+strings.Join(fields, ", "))
		}
		return domain.Invalid("body", err.Error())
	}
	return nil
}

// fail traduce errores de dominio a respuestas HTTP.
func fail(c *fiber.Ctx, err error) error {
	status, code := fiber.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrForbidden):
		status, code = fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrCrossTenantReference):
		status, code = fiber.StatusForbidden, "CROSS_TENANT"
	case errors.Is(err, domain.ErrDuplicate):
		status, code = fiber.StatusConflict, "DUPLICATE"
	case errors.Is(err, domain.ErrConflict):
		status, code = fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrInvalidStateTransition):
		status, code = fiber.StatusConflict, "INVALID_STATE"
	case errors.Is(err, domain.ErrInsufficientStock):
		status, code = fiber.StatusUnprocessableEntity, "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrCeilingExceeded):
		status, code = fiber.StatusUnprocessableEntity, "CEILING_EXCEEDED"
	case errors.Is(err, domain.ErrSequenceExhausted):
		status, code = fiber.StatusServiceUnavailable, "SEQUENCE_EXHAUSTED"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}

// tenant devuelve empresa y usuario del token.
func tenant(c *fiber.Ctx) (companyID, userID string, err error) {
	companyID, userID = GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return "", "", fmt.Errorf("%w: token sin empresa o usuario", domain.ErrUnauthorized)
	}
	return companyID, userID, nil
}

func page(c *fiber.Ctx) dto.PageRequest {
	return dto.NewPageRequest(c.QueryInt("limit"), c.QueryInt("offset"))
}
