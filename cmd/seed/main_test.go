package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestReadCatalog_UTF8ConEncabezado(t *testing.T) {
	csv := "sku;nombre;precio;costo;stock;iva\nCRG-01;Cargador USB-C;25.000,00;12000;10;19\nFND-02;Funda;15000\n"
	rows, err := readCatalog(strings.NewReader(csv), "c1", decimal.NewFromInt(19), time.Now())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "CRG-01", rows[0].SKU)
	assert.True(t, rows[0].Price.Equal(decimal.NewFromInt(25000)))
	assert.True(t, rows[0].StockQuantity.Equal(decimal.NewFromInt(10)))
	assert.True(t, rows[1].TaxRate.Equal(decimal.NewFromInt(19)), "sin columna iva usa la tasa por defecto")
	assert.True(t, rows[1].StockQuantity.IsZero())
}

func TestReadCatalog_Latin1(t *testing.T) {
	enc, err := charmap.ISO8859_1.NewEncoder().String("AUD-03;Audífonos Bluetooth;89000\n")
	require.NoError(t, err)

	rows, err := readCatalog(bytes.NewBufferString(enc), "c1", decimal.NewFromInt(19), time.Now())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Audífonos Bluetooth", rows[0].Name)
}

func TestReadCatalog_FilaInvalida(t *testing.T) {
	_, err := readCatalog(strings.NewReader("X-1;Sin precio;abc\n"), "c1", decimal.Zero, time.Now())
	assert.Error(t, err)

	_, err = readCatalog(strings.NewReader("X-1;Precio cero;0\n"), "c1", decimal.Zero, time.Now())
	assert.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	for in, want := range map[string]string{
		"1.234,50":   "1234.5",
		"1234.50":    "1234.5",
		"$ 2.000,00": "2000",
		"19":         "19",
	} {
		got, err := parseAmount(in)
		require.NoError(t, err, in)
		assert.True(t, got.Equal(decimal.RequireFromString(want)), "%s → %s", in, got)
	}
}
