package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/caja-pos-api/pkg/logger"
)

// RequestLogger access log estructurado. Se registra antes de las rutas; el tenant
// aparece solo si TenantMiddleware corrió en la cadena de la ruta.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			cause := err
			if cause == nil {
				cause, _ = c.Locals(LocalError).(error)
			}
			ev = log.Error().Err(cause)
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("company_id", GetTenant(c).CompanyID).
			Str("user_id", GetUserID(c)).
			Msg("http")
		return err
	}
}
