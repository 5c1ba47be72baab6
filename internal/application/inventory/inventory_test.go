package inventory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/caja-pos-api/internal/application/dto"
	"github.com/jhoicas/caja-pos-api/internal/application/inventory"
	"github.com/jhoicas/caja-pos-api/internal/application/tenant"
	"github.com/jhoicas/caja-pos-api/internal/domain"
	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
	"github.com/jhoicas/caja-pos-api/internal/infrastructure/memory"
)

var admin = tenant.Context{UserID: "u1", Role: entity.RoleAdmin, CompanyID: "c1"}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newUseCases() (*inventory.ProductUseCase, *inventory.StockUseCase, *memory.Store) {
	s := memory.New()
	return inventory.NewProductUseCase(s.Products()),
		inventory.NewStockUseCase(s, s.Products(), s.Movements()),
		s
}

// ──────────────────────────────────────────────────────────────────────────────
// Catálogo
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateProduct_DefaultsYServicioSinStock(t *testing.T) {
	products, _, _ := newUseCases()
	ctx := context.Background()

	p, err := products.Create(ctx, admin, dto.CreateProductRequest{SKU: "FUNDA-01", Name: "Funda", Price: dec("15000"), TaxRate: dec("19"), StockQuantity: dec("10"), MinStock: dec("2")})
	require.NoError(t, err)
	assert.Equal(t, entity.ProductStandard, p.Type)
	assert.True(t, p.IsActive)

	svc, err := products.Create(ctx, admin, dto.CreateProductRequest{SKU: "SERV-01", Name: "Instalación", Type: "service", StockQuantity: dec("99")})
	require.NoError(t, err)
	assert.Equal(t, entity.ProductService, svc.Type)
	assert.True(t, svc.StockQuantity.IsZero())
	assert.False(t, svc.LowStock, "un servicio nunca está en stock bajo")

	_, err = products.Create(ctx, admin, dto.CreateProductRequest{SKU: "FUNDA-01", Name: "Otra"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = products.Create(ctx, admin, dto.CreateProductRequest{SKU: "X", Name: "X", TaxRate: dec("101")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = products.Create(ctx, admin, dto.CreateProductRequest{SKU: "Y", Name: "Y", Type: "KIT"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestListProducts_BusquedaEInactivos(t *testing.T) {
	products, _, _ := newUseCases()
	ctx := context.Background()

	a, err := products.Create(ctx, admin, dto.CreateProductRequest{SKU: "CEL-A", Name: "Celular A", Barcode: "7701"})
	require.NoError(t, err)
	_, err = products.Create(ctx, admin, dto.CreateProductRequest{SKU: "CAR-B", Name: "Cargador"})
	require.NoError(t, err)
	require.NoError(t, products.Delete(ctx, admin, a.ID))

	list, err := products.List(ctx, admin, "", false, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Cargador", list.Items[0].Name)

	list, err = products.List(ctx, admin, "7701", true, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.False(t, list.Items[0].IsActive)
}

func TestUpdateProduct_NoTocaStockYRespetaEmpresa(t *testing.T) {
	products, _, _ := newUseCases()
	ctx := context.Background()

	p, err := products.Create(ctx, admin, dto.CreateProductRequest{SKU: "A", Name: "A", StockQuantity: dec("5")})
	require.NoError(t, err)

	price := dec("2500")
	name := "A renombrado"
	up, err := products.Update(ctx, admin, p.ID, dto.UpdateProductRequest{Name: &name, Price: &price})
	require.NoError(t, err)
	assert.Equal(t, name, up.Name)
	assert.True(t, up.Price.Equal(price))
	assert.True(t, up.StockQuantity.Equal(dec("5")))

	other := admin
	other.CompanyID = "c2"
	_, err = products.Get(ctx, other, p.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestLowStock(t *testing.T) {
	products, _, _ := newUseCases()
	ctx := context.Background()
	_, err := products.Create(ctx, admin, dto.CreateProductRequest{SKU: "A", Name: "Bajo", StockQuantity: dec("2"), MinStock: dec("2")})
	require.NoError(t, err)
	_, err = products.Create(ctx, admin, dto.CreateProductRequest{SKU: "B", Name: "Suficiente", StockQuantity: dec("20"), MinStock: dec("2")})
	require.NoError(t, err)

	low, err := products.LowStock(ctx, admin)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "Bajo", low[0].Name)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ajustes de stock
// ──────────────────────────────────────────────────────────────────────────────

func TestAdjustStock_GuardaDiferenciaComoMovimiento(t *testing.T) {
	products, stock, _ := newUseCases()
	ctx := context.Background()
	p, err := products.Create(ctx, admin, dto.CreateProductRequest{SKU: "A", Name: "A", StockQuantity: dec("10")})
	require.NoError(t, err)

	out, err := stock.AdjustStock(ctx, admin, p.ID, dto.AdjustStockRequest{NewQuantity: dec("7")})
	require.NoError(t, err)
	assert.True(t, out.Product.StockQuantity.Equal(dec("7")))
	require.NotNil(t, out.Movement)
	assert.True(t, out.Movement.Quantity.Equal(dec("-3")))
	assert.Equal(t, "Ajuste manual", out.Movement.Reference)

	same, err := stock.AdjustStock(ctx, admin, p.ID, dto.AdjustStockRequest{NewQuantity: dec("7"), Reason: "conteo"})
	require.NoError(t, err)
	assert.Nil(t, same.Movement, "sin diferencia no hay movimiento")

	movs, err := stock.Movements(ctx, admin, p.ID)
	require.NoError(t, err)
	assert.Len(t, movs, 1)
}

func TestAdjustStock_Rechazos(t *testing.T) {
	products, stock, _ := newUseCases()
	ctx := context.Background()
	svc, err := products.Create(ctx, admin, dto.CreateProductRequest{SKU: "S", Name: "Servicio", Type: entity.ProductService})
	require.NoError(t, err)
	p, err := products.Create(ctx, admin, dto.CreateProductRequest{SKU: "A", Name: "A"})
	require.NoError(t, err)

	_, err = stock.AdjustStock(ctx, admin, svc.ID, dto.AdjustStockRequest{NewQuantity: dec("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = stock.AdjustStock(ctx, admin, p.ID, dto.AdjustStockRequest{NewQuantity: dec("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	other := admin
	other.CompanyID = "c2"
	_, err = stock.AdjustStock(ctx, other, p.ID, dto.AdjustStockRequest{NewQuantity: dec("1")})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = stock.AdjustStock(ctx, admin, "no-existe", dto.AdjustStockRequest{NewQuantity: dec("1")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReceiveStock_CostoPromedioPonderado(t *testing.T) {
	products, stock, _ := newUseCases()
	ctx := context.Background()
	p, err := products.Create(ctx, admin, dto.CreateProductRequest{SKU: "CAB-01", Name: "Cable USB-C", Cost: dec("1000"), StockQuantity: dec("10")})
	require.NoError(t, err)

	out, err := stock.ReceiveStock(ctx, admin, p.ID, dto.ReceiveStockRequest{Quantity: dec("10"), UnitCost: dec("2000"), Supplier: "Importadora Sur"})
	require.NoError(t, err)
	assert.True(t, out.Product.StockQuantity.Equal(dec("20")))
	assert.True(t, out.Product.Cost.Equal(dec("1500")), "costo: %s", out.Product.Cost)
	require.NotNil(t, out.Movement)
	assert.Equal(t, entity.MovementPurchase, out.Movement.Type)
	assert.Equal(t, "Importadora Sur", out.Movement.Reference)

	again, err := products.Get(ctx, admin, p.ID)
	require.NoError(t, err)
	assert.True(t, again.Cost.Equal(dec("1500")), "el costo queda persistido")
	assert.True(t, again.StockQuantity.Equal(dec("20")))
}

func TestReceiveStock_Rechazos(t *testing.T) {
	products, stock, _ := newUseCases()
	ctx := context.Background()
	svc, err := products.Create(ctx, admin, dto.CreateProductRequest{SKU: "S", Name: "Servicio", Type: entity.ProductService})
	require.NoError(t, err)
	p, err := products.Create(ctx, admin, dto.CreateProductRequest{SKU: "A", Name: "A"})
	require.NoError(t, err)

	_, err = stock.ReceiveStock(ctx, admin, p.ID, dto.ReceiveStockRequest{Quantity: dec("0"), UnitCost: dec("10")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = stock.ReceiveStock(ctx, admin, p.ID, dto.ReceiveStockRequest{Quantity: dec("1"), UnitCost: dec("-10")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = stock.ReceiveStock(ctx, admin, svc.ID, dto.ReceiveStockRequest{Quantity: dec("1"), UnitCost: dec("10")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	other := admin
	other.CompanyID = "c2"
	_, err = stock.ReceiveStock(ctx, other, p.ID, dto.ReceiveStockRequest{Quantity: dec("1"), UnitCost: dec("10")})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
