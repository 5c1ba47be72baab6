package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/caja-pos-api/pkg/money"
)

func TestFormat_PesosSinDecimales(t *testing.T) {
	got := money.FormatCOP(decimal.NewFromInt(1234567))
	assert.Equal(t, "$ 1.234.567", got)
}

func TestFormat_DolaresConDosDecimales(t *testing.T) {
	got := money.Format(decimal.RequireFromString("1234567.5"), "usd")
	assert.Equal(t, "US$ 1,234,567.50", got)
}

func TestConvert_COPaUSD(t *testing.T) {
	got, err := money.Convert(decimal.NewFromInt(4_000_000), "USD")
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(1000)), "4.000.000 COP deben ser 1000 USD, obtenido %s", got)
}

func TestConvert_MonedaNoSoportada(t *testing.T) {
	_, err := money.Convert(decimal.NewFromInt(1), "JPY")
	assert.Error(t, err)

	_, err = money.Convert(decimal.NewFromInt(1), "XX")
	assert.Error(t, err)
}
