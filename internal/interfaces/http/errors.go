package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/magazzino-api/internal/application/dto"
	"github.com/jhoicas/magazzino-api/internal/domain"
	"github.com/jhoicas/magazzino-api/pkg/logger"
)

// errorBody traduce un error de dominio a status y cuerpo HTTP.
func errorBody(err error) (int, dto.ErrorResponse) {
	var pm *domain.PackageMultipleError
	switch {
	case errors.As(err, &pm):
		return fiber.StatusUnprocessableEntity, dto.ErrorResponse{
			Code: "PACKAGE_MULTIPLE", Message: pm.Error(), RequiredMultiple: pm.PackageSize,
		}
	case errors.Is(err, domain.ErrInvalidQuantity):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "INVALID_QUANTITY", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()}
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()}
	case errors.Is(err, domain.ErrAlreadyReversed):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "ALREADY_REVERSED", Message: err.Error()}
	case errors.Is(err, domain.ErrNotReversible):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "NOT_REVERSIBLE", Message: err.Error()}
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()}
	case errors.Is(err, domain.ErrStorage):
		return fiber.StatusServiceUnavailable, dto.ErrorResponse{Code: "STORAGE", Message: "almacenamiento no disponible, intente más tarde"}
	default:
		return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"}
	}
}

// respondError responde el error de dominio. Los 5xx se registran; el resto es error del cliente.
func respondError(c *fiber.Ctx, log *logger.Logger, err error) error {
	status, body := errorBody(err)
	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("error del servidor")
	}
	return c.Status(status).JSON(body)
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
