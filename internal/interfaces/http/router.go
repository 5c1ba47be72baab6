package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	appanalytics "github.com/jhoicas/caja-pos-api/internal/application/analytics"
	"github.com/jhoicas/caja-pos-api/internal/application/auth"
	"github.com/jhoicas/caja-pos-api/internal/application/billing"
	"github.com/jhoicas/caja-pos-api/internal/application/inventory"
	"github.com/jhoicas/caja-pos-api/internal/application/receivables"
	"github.com/jhoicas/caja-pos-api/internal/application/repair"
	"github.com/jhoicas/caja-pos-api/internal/application/session"
	"github.com/jhoicas/caja-pos-api/internal/application/tenant"
	"github.com/jhoicas/caja-pos-api/internal/application/usecase"
	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
	"github.com/jhoicas/caja-pos-api/internal/domain/repository"
	"github.com/jhoicas/caja-pos-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC        *auth.AuthUseCase
	UserUC        *usecase.UserUseCase
	CompanyUC     *usecase.CompanyUseCase
	BranchUC      *usecase.BranchUseCase
	ModuleService *usecase.ModuleService
	ProductUC     *inventory.ProductUseCase
	StockUC       *inventory.StockUseCase
	CustomerUC    *billing.CustomerUseCase
	SaleUC        *billing.SaleUseCase
	ReceiptUC     *billing.ReceiptUseCase
	Emitter       *billing.EInvoiceEmitter
	DocumentUC    *billing.DocumentUseCase
	SessionUC     *session.LedgerUseCase
	ReceivableUC  *receivables.LedgerUseCase
	RepairUC      *repair.UseCase
	DashboardUC   *appanalytics.DashboardUseCase
	Tenants       *tenant.Service
	Idempotency   repository.IdempotencyRepository
	JWTSecret     string

	// Opcionales: nil desactiva el access log; RateRPS <= 0 desactiva el límite.
	Logger         *logger.Logger
	RateRPS        float64
	RateBurst      int
	IdempotencyTTL time.Duration
}

// Roles que operan la caja y los que administran catálogo.
var (
	cashRoles    = []string{entity.RoleMaster, entity.RoleAdmin, entity.RoleManager, entity.RoleCashier}
	catalogRoles = []string{entity.RoleMaster, entity.RoleAdmin, entity.RoleManager, entity.RoleWarehouse}
	adminRoles   = []string{entity.RoleMaster, entity.RoleAdmin}
)

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Logger != nil {
		app.Use(RequestLogger(deps.Logger))
	}
	api := app.Group("/api")

	authHandler := NewAuthHandler(deps.AuthUC, deps.UserUC)

	// Auth (público)
	authGroup := api.Group("/auth")
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas: JWT → empresa activa → límite por empresa
	protected := api.Group("/",
		AuthMiddleware(deps.JWTSecret),
		TenantMiddleware(deps.Tenants),
		NewRateLimiter(deps.RateRPS, deps.RateBurst).Handler(),
	)

	protected.Post("/auth/register", RequireRole(adminRoles...), authHandler.Register)
	protected.Get("/auth/me", authHandler.Me)
	protected.Get("/users", RequireRole(adminRoles...), authHandler.ListUsers)

	// Companies: alta y administración solo MASTER; lectura de la propia para todos
	companyHandler := NewCompanyHandler(deps.CompanyUC, deps.BranchUC)
	companies := protected.Group("/companies")
	companies.Get("/", RequireRole(entity.RoleMaster), companyHandler.List)
	companies.Post("/", RequireRole(entity.RoleMaster), companyHandler.Create)
	companies.Get("/:id", companyHandler.GetByID)
	companies.Put("/:id", RequireRole(entity.RoleMaster), companyHandler.Update)

	branches := protected.Group("/branches")
	branches.Get("/", companyHandler.ListBranches)
	branches.Post("/", RequireRole(adminRoles...), companyHandler.CreateBranch)

	// Products
	productHandler := NewProductHandler(deps.ProductUC, deps.StockUC)
	products := protected.Group("/products")
	products.Get("/", productHandler.List)
	products.Post("/", RequireRole(catalogRoles...), productHandler.Create)
	products.Get("/low-stock", productHandler.LowStock)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", RequireRole(catalogRoles...), productHandler.Update)
	products.Delete("/:id", RequireRole(catalogRoles...), productHandler.Delete)
	products.Post("/:id/adjust", RequireRole(catalogRoles...), productHandler.Adjust)
	products.Post("/:id/receive", RequireRole(catalogRoles...), productHandler.Receive)
	products.Get("/:id/movements", productHandler.Movements)

	// Customers
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers := protected.Group("/customers")
	customers.Get("/", customerHandler.List)
	customers.Post("/", customerHandler.Create)
	customers.Get("/:id", customerHandler.GetByID)

	// Sales: POST idempotente con Idempotency-Key
	saleHandler := NewSaleHandler(deps.SaleUC, deps.ReceiptUC, deps.Emitter, deps.DocumentUC)
	idem := NewIdempotencyCache(deps.Idempotency, deps.IdempotencyTTL)
	sales := protected.Group("/sales", RequireModule(entity.ModulePOS, deps.ModuleService))
	sales.Post("/", RequireRole(cashRoles...), idem.Handler(), saleHandler.Create)
	sales.Get("/", saleHandler.List)
	sales.Get("/:id", saleHandler.GetByID)
	sales.Get("/:id/pdf", saleHandler.PDF)
	sales.Get("/:id/xml", saleHandler.Document)
	sales.Post("/:id/emit", RequireRole(cashRoles...), saleHandler.Emit)

	// Cash sessions
	sessionHandler := NewSessionHandler(deps.SessionUC)
	sessions := protected.Group("/sessions", RequireModule(entity.ModulePOS, deps.ModuleService))
	sessions.Post("/open", RequireRole(cashRoles...), sessionHandler.Open)
	sessions.Get("/current", sessionHandler.Current)
	sessions.Get("/history", sessionHandler.History)
	sessions.Get("/:id", sessionHandler.GetByID)
	sessions.Post("/:id/close", RequireRole(cashRoles...), sessionHandler.Close)
	sessions.Get("/:id/invoices", sessionHandler.Invoices)
	sessions.Get("/:id/report", sessionHandler.Report)

	// Receivables (módulo receivables)
	receivableHandler := NewReceivableHandler(deps.ReceivableUC)
	recv := protected.Group("/receivables", RequireModule(entity.ModuleReceivables, deps.ModuleService))
	recv.Get("/", receivableHandler.List)
	recv.Post("/", RequireRole(cashRoles...), receivableHandler.Create)
	recv.Get("/summary", receivableHandler.Summary)
	recv.Post("/:id/payments", RequireRole(cashRoles...), receivableHandler.RegisterPayment)
	recv.Get("/:id/payments", receivableHandler.Payments)

	// Repairs (módulo repairs)
	repairHandler := NewRepairHandler(deps.RepairUC)
	repairs := protected.Group("/repairs", RequireModule(entity.ModuleRepairs, deps.ModuleService))
	repairs.Get("/", repairHandler.List)
	repairs.Post("/", repairHandler.Create)
	repairs.Patch("/:id/status", repairHandler.UpdateStatus)
	repairs.Put("/:id", repairHandler.Update)

	// Dashboard
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	protected.Get("/dashboard", dashboardHandler.GetSummary)

	// Workspace
	workspaceHandler := NewWorkspaceHandler(deps.Tenants)
	protected.Get("/workspace", workspaceHandler.Get)
	protected.Post("/workspace/switch", RequireRole(entity.RoleMaster), workspaceHandler.Switch)
}
