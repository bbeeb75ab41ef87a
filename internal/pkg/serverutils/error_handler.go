package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"ragbot-be/internal/apperrors"
)

// ErrorHandlerMiddleware translates service errors into HTTP envelopes.
// Client-caused errors echo their message; everything else gets the
// generic failure message so internal detail stays in the logs.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		switch {
		case errors.Is(err, apperrors.ErrInvalidRequest),
			errors.Is(err, apperrors.ErrEmptyDocument):
			return ctx.Status(fiber.StatusBadRequest).
				JSON(ErrorResponse(fiber.StatusBadRequest, err.Error()))

		case errors.Is(err, apperrors.ErrIndexUnavailable),
			errors.Is(err, apperrors.ErrSessionStore):
			return ctx.Status(fiber.StatusServiceUnavailable).
				JSON(ErrorResponse(fiber.StatusServiceUnavailable, apperrors.GenericFailureMessage))

		case errors.Is(err, apperrors.ErrEmbeddingService),
			errors.Is(err, apperrors.ErrModelService):
			return ctx.Status(fiber.StatusBadGateway).
				JSON(ErrorResponse(fiber.StatusBadGateway, apperrors.GenericFailureMessage))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).
				JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		return ctx.Status(fiber.StatusInternalServerError).
			JSON(ErrorResponse(fiber.StatusInternalServerError, apperrors.GenericFailureMessage))
	}
}
