package billing_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/caja-pos-api/internal/application/billing"
	"github.com/jhoicas/caja-pos-api/internal/application/dto"
	"github.com/jhoicas/caja-pos-api/internal/domain"
	"github.com/jhoicas/caja-pos-api/internal/infrastructure/memory"
)

func TestCustomer_CrearBuscarYObtener(t *testing.T) {
	uc := billing.NewCustomerUseCase(memory.New().Customers())
	ctx := context.Background()

	ana, err := uc.Create(ctx, cashier, dto.CreateCustomerRequest{Name: " Ana Gómez ", DocumentNumber: "1020304050", Phone: "3001234567"})
	require.NoError(t, err)
	assert.Equal(t, "Ana Gómez", ana.Name)
	_, err = uc.Create(ctx, cashier, dto.CreateCustomerRequest{Name: "Luis Pérez", DocumentNumber: "79888777"})
	require.NoError(t, err)

	_, err = uc.Create(ctx, cashier, dto.CreateCustomerRequest{Name: "Otra Ana", DocumentNumber: "1020304050"})
	assert.ErrorIs(t, err, domain.ErrDuplicate, "el documento es único por empresa")

	found, err := uc.List(ctx, cashier, "300123", dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, ana.ID, found[0].ID)

	all, err := uc.List(ctx, cashier, "", dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	got, err := uc.Get(ctx, cashier, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, "1020304050", got.DocumentNumber)
}

func TestCustomer_Rechazos(t *testing.T) {
	uc := billing.NewCustomerUseCase(memory.New().Customers())
	ctx := context.Background()

	_, err := uc.Create(ctx, cashier, dto.CreateCustomerRequest{Name: "Sin documento"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, cashier, dto.CreateCustomerRequest{Name: "Cupo negativo", DocumentNumber: "1", CreditLimit: dec("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	c, err := uc.Create(ctx, cashier, dto.CreateCustomerRequest{Name: "Ana", DocumentNumber: "2"})
	require.NoError(t, err)

	other := cashier
	other.CompanyID = "c2"
	_, err = uc.Get(ctx, other, c.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.Get(ctx, cashier, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
