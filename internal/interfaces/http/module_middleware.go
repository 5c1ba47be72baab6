package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/caja-pos-api/internal/application/dto"
)

// moduleChecker es el contrato mínimo que necesita el middleware para verificar módulos.
// Lo implementa *usecase.ModuleService; el uso de interfaz evita el import circular.
type moduleChecker interface {
	HasActiveModule(ctx context.Context, companyID, moduleName string) (bool, error)
}

// RequireModule verifica que la empresa activa tenga el módulo contratado.
// Va DESPUÉS de TenantMiddleware (usa la empresa resuelta, no la del token).
//
// Comportamiento:
//   - 428 Precondition Required → MASTER sin empresa elegida.
//   - 403 Forbidden  → módulo no contratado o vencido.
//   - 503 Service Unavailable → fallo de infraestructura al consultar la DB.
func RequireModule(moduleName string, checker moduleChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tc := GetTenant(c)
		if err := tc.Require(); err != nil {
			return respondError(c, err)
		}

		active, err := checker.HasActiveModule(c.UserContext(), tc.CompanyID, moduleName)
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "MODULE_CHECK_FAILED",
				Message: "no se pudo verificar el módulo, intente más tarde",
			})
		}

		if !active {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "MODULE_DISABLED",
				Message: "el módulo '" + moduleName + "' no está activo para esta empresa",
			})
		}

		return c.Next()
	}
}
