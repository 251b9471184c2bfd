package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/cafetal-api/internal/application/dto"
	"github.com/jhoicas/cafetal-api/internal/domain"
)

// Códigos de error de la API.
const (
	codeValidation        = "VALIDATION"
	codeNotFound          = "NOT_FOUND"
	codeConflict          = "CONFLICT"
	codeInsufficientStock = "INSUFFICIENT_STOCK"
	codeBrokenLineage     = "BROKEN_LINEAGE"
	codeCyclicLineage     = "CYCLIC_LINEAGE"
	codeAIUnavailable     = "AI_UNAVAILABLE"
	codeInternal          = "INTERNAL"
)

// statusFor traduce un error de dominio a código HTTP y código de API.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, codeValidation
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, codeNotFound
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, codeInsufficientStock
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, codeConflict
	case errors.Is(err, domain.ErrBrokenLineage):
		return fiber.StatusUnprocessableEntity, codeBrokenLineage
	case errors.Is(err, domain.ErrCyclicLineage):
		return fiber.StatusUnprocessableEntity, codeCyclicLineage
	case errors.Is(err, domain.ErrLLMUnavailable):
		return fiber.StatusServiceUnavailable, codeAIUnavailable
	default:
		return fiber.StatusInternalServerError, codeInternal
	}
}

// respondError escribe el error como dto.ErrorResponse. Los errores internos no exponen detalle.
func respondError(c *fiber.Ctx, err error) error {
	status, code := statusFor(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		requestLog(c).Error().Err(err).Str("path", c.Path()).Msg("error interno")
		msg = "error interno del servidor"
	}
	body := dto.ErrorResponse{Code: code, Message: msg}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		body.Field = ve.Field
	}
	return c.Status(status).JSON(body)
}

// ErrorHandler atiende los errores que escapan de los handlers (404 de ruteo, body demasiado grande).
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := codeInternal
		switch fe.Code {
		case fiber.StatusNotFound:
			code = codeNotFound
		case fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge, fiber.StatusMethodNotAllowed:
			code = codeValidation
		}
		return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: code, Message: fe.Message})
	}
	return respondError(c, err)
}
