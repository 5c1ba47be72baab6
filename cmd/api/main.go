package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"

	_ "github.com/jhoicas/caja-pos-api/docs"
	appanalytics "github.com/jhoicas/caja-pos-api/internal/application/analytics"
	"github.com/jhoicas/caja-pos-api/internal/application/auth"
	"github.com/jhoicas/caja-pos-api/internal/application/billing"
	"github.com/jhoicas/caja-pos-api/internal/application/inventory"
	"github.com/jhoicas/caja-pos-api/internal/application/receivables"
	"github.com/jhoicas/caja-pos-api/internal/application/repair"
	"github.com/jhoicas/caja-pos-api/internal/application/session"
	"github.com/jhoicas/caja-pos-api/internal/application/tenant"
	"github.com/jhoicas/caja-pos-api/internal/application/usecase"
	"github.com/jhoicas/caja-pos-api/internal/domain/repository"
	"github.com/jhoicas/caja-pos-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/caja-pos-api/internal/infrastructure/pdf"
	"github.com/jhoicas/caja-pos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/caja-pos-api/internal/infrastructure/ubl"
	httpRouter "github.com/jhoicas/caja-pos-api/internal/interfaces/http"
	"github.com/jhoicas/caja-pos-api/pkg/config"
	"github.com/jhoicas/caja-pos-api/pkg/logger"
)

// txRunner transacciones que necesitan los casos de uso.
type txRunner interface {
	billing.SaleTxRunner
	session.TxRunner
	receivables.TxRunner
	inventory.TxRunner
}

// stores repositorios de la implementación elegida por STORE_DRIVER.
type stores struct {
	companies   repository.CompanyRepository
	branches    repository.BranchRepository
	users       repository.UserRepository
	products    repository.ProductRepository
	movements   repository.StockMovementRepository
	customers   repository.CustomerRepository
	invoices    repository.InvoiceRepository
	sessions    repository.CashSessionRepository
	receivables repository.ReceivableRepository
	repairs     repository.RepairOrderRepository
	idempotency repository.IdempotencyRepository
	tx          txRunner
	close       func()
}

func openStores(ctx context.Context, cfg *config.Config, log *logger.Logger) stores {
	if cfg.Store.Driver == config.StoreMemory {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		m := memory.New()
		return stores{
			companies: m.Companies(), branches: m.Branches(), users: m.Users(),
			products: m.Products(), movements: m.Movements(), customers: m.Customers(),
			invoices: m.Invoices(), sessions: m.Sessions(), receivables: m.Receivables(),
			repairs: m.Repairs(), idempotency: m.Idempotency(), tx: m, close: func() {},
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("migración del esquema")
		}
		log.Info().Msg("esquema aplicado")
	}
	return stores{
		companies:   postgres.NewCompanyRepository(pool),
		branches:    postgres.NewBranchRepository(pool),
		users:       postgres.NewUserRepository(pool),
		products:    postgres.NewProductRepository(pool),
		movements:   postgres.NewStockMovementRepository(pool),
		customers:   postgres.NewCustomerRepository(pool),
		invoices:    postgres.NewInvoiceRepository(pool),
		sessions:    postgres.NewCashSessionRepository(pool),
		receivables: postgres.NewReceivableRepository(pool),
		repairs:     postgres.NewRepairRepository(pool),
		idempotency: postgres.NewIdempotencyRepository(pool),
		tx:          postgres.NewTxRunner(pool),
		close:       pool.Close,
	}
}

// sweepIdempotencyKeys borra cada hora las claves idempotentes vencidas.
func sweepIdempotencyKeys(ctx context.Context, repo repository.IdempotencyRepository, log *logger.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := repo.DeleteExpired(ctx, now)
			if err != nil {
				log.Warn().Err(err).Msg("limpieza de claves idempotentes")
				continue
			}
			if n > 0 {
				log.Debug().Int64("deleted", n).Msg("claves idempotentes vencidas")
			}
		}
	}
}

// @title                      Caja POS API
// @version                    1.0
// @description                Punto de venta multiempresa: ventas, caja, inventario, cartera y reparaciones.
// @BasePath                   /
// @securityDefinitions.apikey Bearer
// @in                         header
// @name                       Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	st := openStores(ctx, cfg, log)
	defer st.close()

	defaultTax := decimal.NewFromFloat(cfg.POS.DefaultTaxRate)

	// Emisión electrónica simulada: CUFE + QR, asíncrona tras cada venta
	emitter := billing.NewEInvoiceEmitter(st.invoices, st.companies, billing.EInvoiceConfig{
		TechnicalKey: cfg.EInvoice.TechnicalKey,
		Environment:  cfg.EInvoice.Environment,
	}, log)

	// PDF: tirilla de venta y arqueo de caja
	pdfGenerator := infrapdf.NewMarotoGenerator(cfg.POS.Currency)

	saleUC := billing.NewSaleUseCase(
		st.tx, st.companies, st.customers, st.products, st.invoices,
		emitter, billing.SaleConfig{InvoicePrefix: cfg.POS.InvoicePrefix, DefaultTax: defaultTax}, log,
	)
	sessionUC := session.NewLedgerUseCase(
		st.tx, st.sessions, st.invoices, st.companies,
		pdfGenerator, decimal.NewFromFloat(cfg.POS.VarianceTolerance),
	)

	authUC := auth.NewAuthUseCase(st.users, st.companies, st.branches, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	tenants := tenant.NewService(tenant.NewRegistry(&tenant.RepoLoader{
		Products:  st.products,
		Invoices:  st.invoices,
		Repairs:   st.repairs,
		Customers: st.customers,
		Sessions:  st.sessions,
		Branches:  st.branches,
	}), st.users, st.companies)

	// Immutable: params y cabeceras terminan en el store y en los workspaces
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		Immutable:    true,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Caja POS API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.Store.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:    authUC,
		UserUC:    usecase.NewUserUseCase(st.users),
		CompanyUC: usecase.NewCompanyUseCase(st.companies, st.branches, usecase.CompanyDefaults{
			TaxRate:        defaultTax,
			CurrencySymbol: "$",
			InvoicePrefix:  cfg.POS.InvoicePrefix,
		}),
		BranchUC:       usecase.NewBranchUseCase(st.branches),
		ModuleService:  usecase.NewModuleService(st.companies),
		ProductUC:      inventory.NewProductUseCase(st.products),
		StockUC:        inventory.NewStockUseCase(st.tx, st.products, st.movements),
		CustomerUC:     billing.NewCustomerUseCase(st.customers),
		SaleUC:         saleUC,
		ReceiptUC:      billing.NewReceiptUseCase(st.invoices, st.companies, pdfGenerator),
		Emitter:        emitter,
		DocumentUC:     billing.NewDocumentUseCase(st.invoices, st.companies, ubl.NewBuilder(cfg.POS.Currency)),
		SessionUC:      sessionUC,
		ReceivableUC:   receivables.NewLedgerUseCase(st.tx, st.receivables, st.customers),
		RepairUC:       repair.NewUseCase(st.repairs),
		DashboardUC:    appanalytics.NewDashboardUseCase(st.invoices, st.products, st.receivables, st.sessions),
		Tenants:        tenants,
		Idempotency:    st.idempotency,
		JWTSecret:      cfg.JWT.Secret,
		Logger:         log,
		RateRPS:        cfg.RateLimit.RequestsPerSecond,
		RateBurst:      cfg.RateLimit.Burst,
		IdempotencyTTL: time.Duration(cfg.Idempotency.TTLHours) * time.Hour,
	})

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go sweepIdempotencyKeys(sweepCtx, st.idempotency, log)

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
