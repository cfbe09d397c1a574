package http

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/destekhq/ticket-core/internal/observability"
	"github.com/destekhq/ticket-core/pkg/util"
)

// RegisterMiddlewares wires the shared request pipeline: timeout, error
// envelope, logging and metrics.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(requestTimeoutMiddleware(timeout))
	app.Use(errorHandlingMiddleware(logger, metrics))
	app.Use(observability.RequestLogger(logger, metrics))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if timeout <= 0 {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var err error
		func() {
			defer func() {
				if r := recover(); r != nil {
					err = util.NewInternalError(fmt.Errorf("panic: %v", r))
					logger.Error("panic recovered",
						zap.String("path", c.Path()),
						zap.Any("panic", r),
					)
				}
			}()
			err = c.Next()
		}()

		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiber.Map{
				"code":    "HTTP_ERROR",
				"message": fiberErr.Message,
			}})
		}

		domainErr := util.ToDomainError(err)
		metrics.RecordError(c.Path(), c.Method(), domainErr.Code)

		if domainErr.HTTPStatus >= fiber.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("code", domainErr.Code),
				zap.Error(err),
			)
		}

		body := fiber.Map{
			"code":    domainErr.Code,
			"message": domainErr.Message,
		}
		if len(domainErr.Details) > 0 {
			body["details"] = domainErr.Details
		}
		return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"error": body})
	}
}
