package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	appanalytics "github.com/jhoicas/caja-pos-api/internal/application/analytics"
	"github.com/jhoicas/caja-pos-api/internal/application/auth"
	"github.com/jhoicas/caja-pos-api/internal/application/billing"
	"github.com/jhoicas/caja-pos-api/internal/application/dto"
	"github.com/jhoicas/caja-pos-api/internal/application/inventory"
	"github.com/jhoicas/caja-pos-api/internal/application/receivables"
	"github.com/jhoicas/caja-pos-api/internal/application/repair"
	"github.com/jhoicas/caja-pos-api/internal/application/session"
	"github.com/jhoicas/caja-pos-api/internal/application/tenant"
	"github.com/jhoicas/caja-pos-api/internal/application/usecase"
	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
	"github.com/jhoicas/caja-pos-api/internal/domain/repository"
	"github.com/jhoicas/caja-pos-api/internal/infrastructure/memory"
	"github.com/jhoicas/caja-pos-api/internal/infrastructure/pdf"
	"github.com/jhoicas/caja-pos-api/internal/infrastructure/ubl"
	apphttp "github.com/jhoicas/caja-pos-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/caja-pos-api/pkg/jwt"
	"github.com/jhoicas/caja-pos-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test: API completa sobre el almacenamiento en memoria
// ──────────────────────────────────────────────────────────────────────────────

const (
	companyPro   = "c-pro"
	companyBasic = "c-basic"
	productID    = "p-cargador"
	adminEmail   = "admin@centro.co"
	adminPass    = "secreto123"
)

type apiEnv struct {
	app   *fiber.App
	store *memory.Store
}

func newAPI(t *testing.T, mutate ...func(*apphttp.RouterDeps)) *apiEnv {
	t.Helper()
	store := memory.New()
	seedAPI(t, store)
	return &apiEnv{app: buildApp(store, mutate...), store: store}
}

// buildApp arma la API sobre un store existente; dos apps sobre el mismo store simulan réplicas.
func buildApp(store *memory.Store, mutate ...func(*apphttp.RouterDeps)) *fiber.App {
	companies := store.Companies()
	generator := pdf.NewMarotoGenerator("COP")
	loader := &tenant.RepoLoader{
		Products: store.Products(), Invoices: store.Invoices(), Repairs: store.Repairs(),
		Customers: store.Customers(), Sessions: store.Sessions(), Branches: store.Branches(),
	}
	deps := apphttp.RouterDeps{
		AuthUC: auth.NewAuthUseCase(store.Users(), companies, store.Branches(), auth.JWTConfig{
			Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer,
		}),
		UserUC:        usecase.NewUserUseCase(store.Users()),
		CompanyUC:     usecase.NewCompanyUseCase(companies, store.Branches(), usecase.CompanyDefaults{TaxRate: decimal.NewFromInt(19), CurrencySymbol: "$", InvoicePrefix: "POS"}),
		BranchUC:      usecase.NewBranchUseCase(store.Branches()),
		ModuleService: usecase.NewModuleService(companies),
		ProductUC:     inventory.NewProductUseCase(store.Products()),
		StockUC:       inventory.NewStockUseCase(store, store.Products(), store.Movements()),
		CustomerUC:    billing.NewCustomerUseCase(store.Customers()),
		// sin emisor asíncrono: el estado de la venta queda fijo para las aserciones
		SaleUC: billing.NewSaleUseCase(store, companies, store.Customers(), store.Products(), store.Invoices(), nil,
			billing.SaleConfig{InvoicePrefix: "POS", DefaultTax: decimal.NewFromInt(19)}, nil),
		ReceiptUC:    billing.NewReceiptUseCase(store.Invoices(), companies, generator),
		Emitter:      billing.NewEInvoiceEmitter(store.Invoices(), companies, billing.EInvoiceConfig{TechnicalKey: "clave-pruebas", Environment: "2"}, nil),
		DocumentUC:   billing.NewDocumentUseCase(store.Invoices(), companies, ubl.NewBuilder("COP")),
		SessionUC:    session.NewLedgerUseCase(store, store.Sessions(), store.Invoices(), companies, generator, decimal.NewFromInt(100)),
		ReceivableUC: receivables.NewLedgerUseCase(store, store.Receivables(), store.Customers()),
		RepairUC:     repair.NewUseCase(store.Repairs()),
		DashboardUC:  appanalytics.NewDashboardUseCase(store.Invoices(), store.Products(), store.Receivables(), store.Sessions()),
		Tenants:      tenant.NewService(tenant.NewRegistry(loader), store.Users(), companies),
		Idempotency:  store.Idempotency(),
		JWTSecret:    testJWTSecret,
	}
	for _, m := range mutate {
		m(&deps)
	}
	app := fiber.New()
	apphttp.Router(app, deps)
	return app
}

func seedAPI(t *testing.T, store *memory.Store) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()
	for _, c := range []*entity.Company{
		{ID: companyPro, Name: "Celulares Centro", NIT: "900123456-8", SubscriptionPlan: entity.PlanPro},
		{ID: companyBasic, Name: "Accesorios Norte", NIT: "800987654-1", SubscriptionPlan: entity.PlanBasic},
	} {
		c.SubscriptionStatus = entity.SubscriptionActive
		tax := decimal.NewFromInt(19)
		c.Config = entity.CompanyConfig{TaxRate: &tax, CurrencySymbol: "$", InvoicePrefix: "CC"}
		c.CreatedAt, c.UpdatedAt = now, now
		require.NoError(t, store.Companies().Create(ctx, c))
		require.NoError(t, store.Branches().Create(ctx, &entity.Branch{
			ID: "b-" + c.ID, CompanyID: c.ID, Name: "Principal", IsMain: true, CreatedAt: now, UpdatedAt: now,
		}))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPass), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, store.Users().Create(ctx, &entity.User{
		ID: testUserID, CompanyID: companyPro, Email: adminEmail, PasswordHash: string(hash),
		Name: "Admin Centro", Role: entity.RoleAdmin, Status: entity.UserStatusActive, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, store.Users().Create(ctx, &entity.User{
		ID: "u-master", Email: "master@pos.co", PasswordHash: string(hash),
		Name: "Master", Role: entity.RoleMaster, Status: entity.UserStatusActive, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, store.Products().Create(ctx, &entity.Product{
		ID: productID, CompanyID: companyPro, SKU: "CRG-01", Name: "Cargador USB-C",
		Price: decimal.NewFromInt(10000), TaxRate: decimal.NewFromInt(19), StockQuantity: decimal.NewFromInt(5),
		MinStock: decimal.NewFromInt(1), Type: entity.ProductStandard, IsActive: true, CreatedAt: now, UpdatedAt: now,
	}))
}

func admin(t *testing.T) string {
	return tokenFor(t, pkgjwt.Identity{UserID: testUserID, CompanyID: companyPro, Role: entity.RoleAdmin})
}

func cashierOf(t *testing.T, companyID string) string {
	return tokenFor(t, pkgjwt.Identity{UserID: "u-cajero-" + companyID, CompanyID: companyID, Role: entity.RoleCashier})
}

func master(t *testing.T) string {
	return tokenFor(t, pkgjwt.Identity{UserID: "u-master", Role: entity.RoleMaster})
}

// do envía la petición; body nil = sin cuerpo. headers en pares clave, valor.
func (e *apiEnv) do(t *testing.T, method, path, token string, body any, headers ...string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			b, err := json.Marshal(body)
			require.NoError(t, err)
			raw = string(b)
		}
		reader = bytes.NewBufferString(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func errorCode(t *testing.T, raw []byte) string {
	return decode[dto.ErrorResponse](t, raw).Code
}

var saleOfTwo = map[string]any{
	"customer": map[string]any{"name": "Ana Gómez", "document": "1020304050"},
	"items":    []map[string]any{{"product_id": productID, "quantity": "2"}},
}

// ──────────────────────────────────────────────────────────────────────────────
// Auth
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_LoginYPerfil(t *testing.T) {
	e := newAPI(t)

	resp, body := e.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "ADMIN@centro.co", Password: adminPass})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	login := decode[dto.LoginResponse](t, body)
	require.NotEmpty(t, login.Token)
	assert.Equal(t, entity.RoleAdmin, login.User.Role)

	resp, body = e.do(t, http.MethodGet, "/api/auth/me", "Bearer "+login.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, adminEmail, decode[dto.UserResponse](t, body).Email)

	resp, body = e.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: adminEmail, Password: "otra-clave"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, body))
}

func TestAPI_RegistroSoloAdmin(t *testing.T) {
	e := newAPI(t)
	in := dto.RegisterRequest{Email: "caja1@centro.co", Password: "clave-segura", Name: "Caja 1", Role: entity.RoleCashier}

	resp, _ := e.do(t, http.MethodPost, "/api/auth/register", cashierOf(t, companyPro), in)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "un cajero no registra usuarios")

	resp, body := e.do(t, http.MethodPost, "/api/auth/register", admin(t), in)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	assert.Equal(t, companyPro, decode[dto.UserResponse](t, body).CompanyID)

	resp, body = e.do(t, http.MethodPost, "/api/auth/register", admin(t), in)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "EMAIL_EXISTS", errorCode(t, body))
}

// ──────────────────────────────────────────────────────────────────────────────
// Tenant
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_MasterSinEmpresaRequiereTenant(t *testing.T) {
	e := newAPI(t)

	resp, body := e.do(t, http.MethodGet, "/api/products", master(t), nil)
	assert.Equal(t, http.StatusPreconditionRequired, resp.StatusCode)
	assert.Equal(t, "TENANT_REQUIRED", errorCode(t, body))

	resp, body = e.do(t, http.MethodGet, "/api/products", master(t), nil, apphttp.HeaderTenantID, companyPro)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Len(t, decode[dto.ProductListResponse](t, body).Items, 1)

	resp, _ = e.do(t, http.MethodGet, "/api/companies", master(t), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "la vista general lista empresas")
}

func TestAPI_CajeroNoCambiaDeEmpresa(t *testing.T) {
	e := newAPI(t)

	resp, _ := e.do(t, http.MethodGet, "/api/products", cashierOf(t, companyPro), nil, apphttp.HeaderTenantID, companyBasic)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = e.do(t, http.MethodGet, "/api/companies", cashierOf(t, companyPro), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = e.do(t, http.MethodPost, "/api/workspace/switch", cashierOf(t, companyPro), dto.SwitchTenantRequest{CompanyID: companyBasic})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAPI_SwitchPersisteEleccion(t *testing.T) {
	e := newAPI(t)

	resp, body := e.do(t, http.MethodPost, "/api/workspace/switch", master(t), dto.SwitchTenantRequest{CompanyID: companyPro})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	ws := decode[dto.WorkspaceResponse](t, body)
	assert.Equal(t, companyPro, ws.CompanyID)
	assert.True(t, ws.Ready)
	assert.Equal(t, "b-"+companyPro, ws.BranchID, "toma la primera sucursal")
	require.Len(t, ws.Products, 1)

	// sin cabecera usa la elección guardada
	resp, _ = e.do(t, http.MethodGet, "/api/products", master(t), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = e.do(t, http.MethodPost, "/api/workspace/switch", master(t), dto.SwitchTenantRequest{CompanyID: "no-existe"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(t, body))

	resp, body = e.do(t, http.MethodPost, "/api/workspace/switch", master(t), dto.SwitchTenantRequest{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ws = decode[dto.WorkspaceResponse](t, body)
	assert.True(t, ws.Overview)
	assert.Empty(t, ws.Products, "la vista general no arrastra datos de otra empresa")
}

func TestAPI_TenantPorCabeceraNoSeCorrompe(t *testing.T) {
	e := newAPI(t)

	resp, body := e.do(t, http.MethodPost, "/api/products", master(t), dto.CreateProductRequest{
		SKU: "FND-01", Name: "Funda silicona", Price: decimal.NewFromInt(15000), TaxRate: decimal.NewFromInt(19),
	}, apphttp.HeaderTenantID, companyPro)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	created := decode[dto.ProductResponse](t, body)
	assert.Equal(t, companyPro, created.CompanyID)

	resp, body = e.do(t, http.MethodGet, "/api/workspace", master(t), nil, apphttp.HeaderTenantID, companyPro)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	// peticiones posteriores reutilizan los buffers de cabecera
	for i := 0; i < 50; i++ {
		resp, _ = e.do(t, http.MethodGet, "/api/products", master(t), nil, apphttp.HeaderTenantID, companyBasic)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, body = e.do(t, http.MethodGet, "/api/products", admin(t), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	list := decode[dto.ProductListResponse](t, body)
	require.Len(t, list.Items, 2, "el producto creado por el MASTER sigue en su empresa")
	for _, p := range list.Items {
		assert.Equal(t, companyPro, p.CompanyID)
	}

	resp, body = e.do(t, http.MethodGet, "/api/products", cashierOf(t, companyBasic), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Empty(t, decode[dto.ProductListResponse](t, body).Items)
}

// ──────────────────────────────────────────────────────────────────────────────
// Módulos por plan
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_ModuloRepairsSegunPlan(t *testing.T) {
	e := newAPI(t)

	resp, body := e.do(t, http.MethodGet, "/api/repairs", cashierOf(t, companyBasic), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "MODULE_DISABLED", errorCode(t, body))

	resp, body = e.do(t, http.MethodPost, "/api/repairs", cashierOf(t, companyPro), dto.CreateRepairRequest{
		CustomerName: "Luis", DeviceModel: "Moto G", IssueDescription: "No carga", EstimatedCost: decimal.NewFromInt(50000),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	order := decode[dto.RepairResponse](t, body)
	assert.Equal(t, entity.RepairReceived, order.Status)

	resp, _ = e.do(t, http.MethodPatch, "/api/repairs/"+order.ID+"/status", cashierOf(t, companyPro),
		dto.UpdateRepairStatusRequest{Status: entity.RepairDelivered})
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "RECEIVED no salta a DELIVERED")
}

// ──────────────────────────────────────────────────────────────────────────────
// Caja y ventas
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_CajaActualSinAbrir(t *testing.T) {
	e := newAPI(t)
	tok := cashierOf(t, companyPro)

	resp, body := e.do(t, http.MethodGet, "/api/sessions/current", tok, nil)
	assert.Equal(t, http.StatusPreconditionFailed, resp.StatusCode)
	assert.Equal(t, "NO_OPEN_SESSION", errorCode(t, body))

	resp, body = e.do(t, http.MethodPost, "/api/sessions/open", tok, dto.OpenSessionRequest{StartCash: decimal.NewFromInt(100000)})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = e.do(t, http.MethodPost, "/api/sessions/open", tok, dto.OpenSessionRequest{StartCash: decimal.NewFromInt(1)})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "SESSION_ALREADY_OPEN", errorCode(t, body))

	resp, _ = e.do(t, http.MethodGet, "/api/sessions/current", tok, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_VentaIdempotente(t *testing.T) {
	e := newAPI(t)
	tok := cashierOf(t, companyPro)

	resp, body := e.do(t, http.MethodPost, "/api/sales", tok, saleOfTwo, apphttp.HeaderIdempotencyKey, "venta-001")
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	first := decode[dto.SaleResponse](t, body)
	assert.True(t, first.Total.Equal(decimal.NewFromInt(23800)), "2 x 10000 + IVA 19%%: %s", first.Total)

	resp, body = e.do(t, http.MethodPost, "/api/sales", tok, saleOfTwo, apphttp.HeaderIdempotencyKey, "venta-001")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "true", resp.Header.Get("Idempotent-Replay"))
	assert.Equal(t, first.ID, decode[dto.SaleResponse](t, body).ID)

	resp, body = e.do(t, http.MethodGet, "/api/products/"+productID, tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	p := decode[dto.ProductResponse](t, body)
	assert.True(t, p.StockQuantity.Equal(decimal.NewFromInt(3)), "el reintento no descuenta de nuevo: %s", p.StockQuantity)

	resp, body = e.do(t, http.MethodPost, "/api/sales", tok, saleOfTwo, apphttp.HeaderIdempotencyKey, "venta-002")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEqual(t, first.ID, decode[dto.SaleResponse](t, body).ID)
}

func TestAPI_IdempotenciaCompartidaEntreReplicas(t *testing.T) {
	e := newAPI(t)
	replica := &apiEnv{app: buildApp(e.store), store: e.store}
	tok := cashierOf(t, companyPro)

	resp, body := e.do(t, http.MethodPost, "/api/sales", tok, saleOfTwo, apphttp.HeaderIdempotencyKey, "venta-777")
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	first := decode[dto.SaleResponse](t, body)

	resp, body = replica.do(t, http.MethodPost, "/api/sales", tok, saleOfTwo, apphttp.HeaderIdempotencyKey, "venta-777")
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	assert.Equal(t, "true", resp.Header.Get("Idempotent-Replay"), "la otra réplica ve la respuesta guardada")
	assert.Equal(t, first.ID, decode[dto.SaleResponse](t, body).ID)

	otherCart := map[string]any{"items": []map[string]any{{"product_id": productID, "quantity": "1"}}}
	resp, body = replica.do(t, http.MethodPost, "/api/sales", tok, otherCart, apphttp.HeaderIdempotencyKey, "venta-777")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "IDEMPOTENCY_KEY_REUSED", errorCode(t, body))

	// la misma clave de otro cajero es independiente
	resp, body = e.do(t, http.MethodPost, "/api/sales", admin(t), otherCart, apphttp.HeaderIdempotencyKey, "venta-777")
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	assert.Empty(t, resp.Header.Get("Idempotent-Replay"))

	resp, body = e.do(t, http.MethodGet, "/api/products/"+productID, tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[dto.ProductResponse](t, body).StockQuantity.Equal(decimal.NewFromInt(2)), "solo dos ventas reales: 5 - 2 - 1")
}

func TestAPI_IdempotenciaPersisteConVencimiento(t *testing.T) {
	e := newAPI(t)
	farFuture := time.Now().Add(48 * time.Hour)

	resp, body := e.do(t, http.MethodPost, "/api/sales", cashierOf(t, companyPro), saleOfTwo, apphttp.HeaderIdempotencyKey, "venta-900")
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	n, err := e.store.Idempotency().DeleteExpired(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, n, "vigente durante el TTL")

	n, err = e.store.Idempotency().DeleteExpired(context.Background(), farFuture)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "vencida tras el TTL")
}

// downRunner simula una base de datos caída al confirmar la venta.
type downRunner struct{}

func (downRunner) RunSale(context.Context, func(billing.SaleRepos) error) error { return errCatalogDown }

func TestAPI_IdempotenciaNoGuardaErroresInternos(t *testing.T) {
	store := memory.New()
	seedAPI(t, store)
	e := &apiEnv{store: store, app: buildApp(store, func(d *apphttp.RouterDeps) {
		d.SaleUC = billing.NewSaleUseCase(downRunner{}, store.Companies(), store.Customers(), store.Products(), store.Invoices(), nil,
			billing.SaleConfig{InvoicePrefix: "POS", DefaultTax: decimal.NewFromInt(19)}, nil)
	})}

	resp, body := e.do(t, http.MethodPost, "/api/sales", cashierOf(t, companyPro), saleOfTwo, apphttp.HeaderIdempotencyKey, "venta-901")
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode, string(body))

	n, err := store.Idempotency().DeleteExpired(context.Background(), time.Now().Add(48*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n, "un 5xx libera la clave para reintentar")
}

func TestAPI_VentaErroresDeValidacion(t *testing.T) {
	e := newAPI(t)
	tok := cashierOf(t, companyPro)

	resp, body := e.do(t, http.MethodPost, "/api/sales", tok, map[string]any{"items": []any{}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "EMPTY_CART", errorCode(t, body))

	resp, body = e.do(t, http.MethodPost, "/api/sales", tok, "{no es json")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", errorCode(t, body))

	resp, body = e.do(t, http.MethodPost, "/api/sales", tok, map[string]any{
		"items": []map[string]any{{"product_id": productID, "quantity": "9"}},
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", errorCode(t, body))
}

func TestAPI_VentaTirillaYEmision(t *testing.T) {
	e := newAPI(t)
	tok := cashierOf(t, companyPro)

	resp, body := e.do(t, http.MethodPost, "/api/sales", tok, saleOfTwo)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	sale := decode[dto.SaleResponse](t, body)
	assert.Equal(t, entity.SaleStatusPendingElectronic, sale.Status)

	resp, body = e.do(t, http.MethodGet, "/api/sales/"+sale.ID+"/pdf", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "factura_")
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))

	resp, body = e.do(t, http.MethodGet, "/api/sales/"+sale.ID+"/xml", tok, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "sin emitir no hay XML")
	assert.Equal(t, "CONFLICT", errorCode(t, body))

	resp, body = e.do(t, http.MethodPost, "/api/sales/"+sale.ID+"/emit", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	emitted := decode[dto.SaleResponse](t, body)
	assert.NotEmpty(t, emitted.CUFE)
	assert.NotEqual(t, entity.SaleStatusPendingElectronic, emitted.Status)

	resp, body = e.do(t, http.MethodGet, "/api/sales/"+sale.ID+"/xml", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "application/xml", resp.Header.Get("Content-Type"))
	assert.NotEmpty(t, resp.Header.Get(apphttp.HeaderDocumentDigest))
	assert.Contains(t, string(body), emitted.CUFE)

	resp, body = e.do(t, http.MethodGet, "/api/sales/"+sale.ID+"/xml?zip=true", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/zip", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(body, []byte("PK")))

	resp, _ = e.do(t, http.MethodGet, "/api/sales/"+sale.ID, cashierOf(t, companyBasic), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "la venta es de otra empresa")
}

func TestAPI_CierreDeCajaConReporte(t *testing.T) {
	e := newAPI(t)
	tok := cashierOf(t, companyPro)

	resp, body := e.do(t, http.MethodPost, "/api/sessions/open", tok, dto.OpenSessionRequest{StartCash: decimal.NewFromInt(100000)})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	opened := decode[dto.SessionResponse](t, body)

	resp, _ = e.do(t, http.MethodPost, "/api/sales", tok, saleOfTwo)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body = e.do(t, http.MethodPost, "/api/sessions/"+opened.ID+"/close", tok, dto.CloseSessionRequest{CountedCash: decimal.NewFromInt(123800)})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	summary := decode[dto.SessionSummaryResponse](t, body)
	assert.True(t, summary.ExpectedCash.Equal(decimal.NewFromInt(123800)), "base + efectivo: %s", summary.ExpectedCash)
	assert.Equal(t, entity.VarianceBalanced, summary.Result)

	resp, body = e.do(t, http.MethodPost, "/api/sessions/"+opened.ID+"/close", tok, dto.CloseSessionRequest{CountedCash: decimal.Zero})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "SESSION_CLOSED", errorCode(t, body))

	resp, body = e.do(t, http.MethodGet, "/api/sessions/"+opened.ID+"/invoices", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]dto.SaleResponse](t, body), 1)

	resp, body = e.do(t, http.MethodGet, "/api/sessions/"+opened.ID+"/report", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))

	resp, body = e.do(t, http.MethodGet, "/api/sessions/history", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]dto.SessionResponse](t, body), 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Cartera
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_CarteraAbonos(t *testing.T) {
	e := newAPI(t)
	tok := cashierOf(t, companyPro)

	resp, body := e.do(t, http.MethodPost, "/api/receivables", tok, dto.CreateReceivableRequest{
		CustomerName: "Pedro", TotalAmount: decimal.NewFromInt(300000), InitialPayment: decimal.NewFromInt(100000),
		PaymentMethod: entity.PaymentCash, DueDate: time.Now().AddDate(0, 0, 30),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	rc := decode[dto.ReceivableResponse](t, body)
	assert.True(t, rc.Balance.Equal(decimal.NewFromInt(200000)))

	resp, body = e.do(t, http.MethodPost, "/api/receivables/"+rc.ID+"/payments", tok,
		dto.RegisterPaymentRequest{Amount: decimal.NewFromInt(250000), PaymentMethod: entity.PaymentCash})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "OVERPAYMENT", errorCode(t, body))

	resp, body = e.do(t, http.MethodPost, "/api/receivables/"+rc.ID+"/payments", tok,
		dto.RegisterPaymentRequest{Amount: decimal.NewFromInt(200000), PaymentMethod: entity.PaymentTransfer})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	assert.Equal(t, entity.ReceivablePaid, decode[dto.RegisterPaymentResponse](t, body).Receivable.Status)

	resp, body = e.do(t, http.MethodGet, "/api/receivables/"+rc.ID+"/payments", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]dto.PaymentRecordResponse](t, body), 2)

	resp, _ = e.do(t, http.MethodGet, "/api/receivables/summary", cashierOf(t, companyBasic), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "BASIC no incluye cartera")
}

// ──────────────────────────────────────────────────────────────────────────────
// Middlewares transversales
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_RateLimitPorEmpresa(t *testing.T) {
	e := newAPI(t, func(d *apphttp.RouterDeps) {
		d.RateRPS = 0.001
		d.RateBurst = 1
	})

	resp, _ := e.do(t, http.MethodGet, "/api/dashboard", cashierOf(t, companyPro), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := e.do(t, http.MethodGet, "/api/dashboard", cashierOf(t, companyPro), nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "RATE_LIMITED", errorCode(t, body))

	resp, _ = e.do(t, http.MethodGet, "/api/dashboard", cashierOf(t, companyBasic), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "otra empresa tiene su propio cupo")
}

// brokenCatalog simula una caída del almacenamiento al listar productos.
type brokenCatalog struct {
	repository.ProductRepository
}

var errCatalogDown = errors.New(`pq: connection refused host=10.0.3.7 query="SELECT id, company_id FROM products"`)

func (brokenCatalog) ListByCompany(context.Context, string, repository.ProductFilter) ([]*entity.Product, error) {
	return nil, errCatalogDown
}

func TestAPI_ErrorInternoNoExponeDetalle(t *testing.T) {
	var logs bytes.Buffer
	e := newAPI(t, func(d *apphttp.RouterDeps) {
		d.ProductUC = inventory.NewProductUseCase(brokenCatalog{})
		d.Logger = logger.NewWriter(&logs, "info")
	})

	resp, body := e.do(t, http.MethodGet, "/api/products", admin(t), nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	out := decode[dto.ErrorResponse](t, body)
	assert.Equal(t, "INTERNAL", out.Code)
	assert.NotContains(t, string(body), "10.0.3.7")
	assert.NotContains(t, string(body), "SELECT")

	assert.Contains(t, logs.String(), "10.0.3.7", "el detalle queda en el log")
	assert.Contains(t, logs.String(), `"status":500`)

	// los errores de negocio conservan su mensaje
	resp, body = e.do(t, http.MethodPost, "/api/sales", admin(t), map[string]any{"items": []any{}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEqual(t, "error interno del servidor", decode[dto.ErrorResponse](t, body).Message)
}

func TestAPI_RutaProtegidaSinToken(t *testing.T) {
	e := newAPI(t)
	resp, body := e.do(t, http.MethodGet, "/api/dashboard", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_TOKEN", errorCode(t, body))
}
