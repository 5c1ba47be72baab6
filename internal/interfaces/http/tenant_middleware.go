package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/jhoicas/caja-pos-api/internal/application/tenant"
)

// HeaderTenantID permite a un MASTER operar sobre otra empresa en una sola petición.
const HeaderTenantID = "X-Tenant-ID"

// LocalTenant key del tenant.Context resuelto.
const LocalTenant = "tenant"

type tenantResolver interface {
	ResolveRequest(ctx context.Context, op tenant.Operator, header string) (tenant.Context, error)
}

// TenantMiddleware resuelve la empresa activa de la petición. Debe ir DESPUÉS de AuthMiddleware.
func TenantMiddleware(resolver tenantResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// fasthttp recicla el buffer de cabeceras; el tenant vive más que la petición
		header := utils.CopyString(c.Get(HeaderTenantID))
		tc, err := resolver.ResolveRequest(c.UserContext(), operatorFrom(c), header)
		if err != nil {
			return respondError(c, err)
		}
		c.Locals(LocalTenant, tc)
		return c.Next()
	}
}

// GetTenant devuelve el contexto resuelto; vacío si el middleware no corrió.
func GetTenant(c *fiber.Ctx) tenant.Context {
	tc, _ := c.Locals(LocalTenant).(tenant.Context)
	return tc
}
