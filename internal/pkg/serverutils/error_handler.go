package serverutils

import (
	"errors"
	"log"

	"tradie-recovery-be/internal/pkg/authz"
	"tradie-recovery-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ErrorHandler is installed as fiber.Config.ErrorHandler when no logger is wired.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	return NewErrorHandler(nil)(ctx, err)
}

// NewErrorHandler reports 5xx causes through l; the client only sees the
// generic message.
func NewErrorHandler(l logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		code, body := toResponse(err)
		if code >= fiber.StatusInternalServerError {
			details := map[string]interface{}{"method": ctx.Method(), "path": ctx.Path(), "error": err.Error()}
			if l != nil {
				l.Error("HTTP", "Request failed", details)
			} else {
				log.Printf("[ERROR] %s %s: %v", ctx.Method(), ctx.Path(), err)
			}
		}
		return ctx.Status(code).JSON(body)
	}
}

// ErrorHandlerMiddleware converts errors returned by downstream handlers
// before they reach fiber's default handler.
func ErrorHandlerMiddleware(l logger.ILogger) fiber.Handler {
	handle := NewErrorHandler(l)
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return handle(ctx, err)
	}
}

func toResponse(err error) (int, BaseResponse[any]) {
	var appErr *AppError
	var fiberErr *fiber.Error

	switch {
	case errors.As(err, &appErr):
		res := ErrorResponse(appErr.Code, appErr.Message)
		res.Errors = appErr.Fields
		return appErr.Code, res
	case errors.As(err, &fiberErr):
		return fiberErr.Code, ErrorResponse(fiberErr.Code, fiberErr.Message)
	case errors.Is(err, authz.ErrForbidden):
		return fiber.StatusForbidden, ErrorResponse(fiber.StatusForbidden, "forbidden")
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fiber.StatusNotFound, ErrorResponse(fiber.StatusNotFound, "not found")
	}
	return fiber.StatusInternalServerError, ErrorResponse(fiber.StatusInternalServerError, "internal server error")
}
