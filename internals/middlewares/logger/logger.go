package logger

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/utils"

	applog "standbill_backend/internals/helpers/logger"
)

const LocRequestID = "reqid"

// RequestLogger assigns X-Request-ID, bounds the request context with timeout
// and writes one structured line per request.
func RequestLogger(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(fiber.HeaderXRequestID)
		if id == "" {
			id = utils.UUID()
		}
		c.Set(fiber.HeaderXRequestID, id)
		c.Locals(LocRequestID, id)

		reqLog := applog.WithRequestID(id)
		ctx := reqLog.WithContext(c.UserContext())
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		c.SetUserContext(ctx)

		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		ev := reqLog.Info()
		if status >= fiber.StatusInternalServerError {
			ev = reqLog.Error().Err(err)
		}
		ev.Str("method", c.Method()).
			Str("path", c.OriginalURL()).
			Int("status", status).
			Dur("dur", time.Since(start)).
			Msg("request")
		return err
	}
}
