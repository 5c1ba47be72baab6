package dian_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/caja-pos-api/pkg/dian"
)

// ──────────────────────────────────────────────────────────────────────────────
// Vector calculado con SHA-384 sobre:
//
//	"POS-12345678" + "2026-10-18" + "10:30:00-05:00" + "200.00" +
//	"01" + "38.00" + "04" + "0.00" + "03" + "0.00" + "238.00" +
//	"900123456" + "222222222222" + "clave-tecnica" + "2"
// ──────────────────────────────────────────────────────────────────────────────

const testCufeExpected = "fc3ff7faf1501a8f43f4388726bbf28cdd54fe6df56066d51608a8e04d7f76943dac364803e0b1c0f39fb9af1b211afa"

func baseParams() *dian.CufeParams {
	return &dian.CufeParams{
		NumFac:       "POS-12345678",
		FecFac:       "2026-10-18",
		HorFac:       "10:30:00-05:00",
		ValFac:       decimal.NewFromInt(200),
		ValIVA:       decimal.NewFromInt(38),
		ValPag:       decimal.NewFromInt(238),
		NitOfe:       "900.123.456",
		DocAdq:       "",
		ClaveTecnica: "clave-tecnica",
		TipoAmbiente: "2",
	}
}

func TestCalculateCUFE_VectorExacto(t *testing.T) {
	cufe, err := dian.CalculateCUFE(baseParams())
	require.NoError(t, err)
	assert.Equal(t, testCufeExpected, cufe)
	assert.Len(t, cufe, 96, "SHA-384 en hex ocupa 96 caracteres")
}

func TestCalculateCUFE_SinDocumentoUsaConsumidorFinal(t *testing.T) {
	p := baseParams()
	cadena, err := p.Cadena()
	require.NoError(t, err)
	assert.Contains(t, cadena, dian.ConsumidorFinal)
}

func TestCalculateCUFE_CambioDeMontoCambiaHash(t *testing.T) {
	p := baseParams()
	p.ValPag = decimal.NewFromInt(239)
	cufe, err := dian.CalculateCUFE(p)
	require.NoError(t, err)
	assert.NotEqual(t, testCufeExpected, cufe)
}

func TestCalculateCUFE_CamposObligatorios(t *testing.T) {
	p := baseParams()
	p.NumFac = "  "
	_, err := dian.CalculateCUFE(p)
	assert.Error(t, err)

	p = baseParams()
	p.ClaveTecnica = ""
	_, err = dian.CalculateCUFE(p)
	assert.Error(t, err)

	_, err = dian.CalculateCUFE(nil)
	assert.Error(t, err)
}

func TestBuildQRData_IncluyeCUFEyURL(t *testing.T) {
	p := baseParams()
	qr := dian.BuildQRData(p, testCufeExpected)
	assert.True(t, strings.HasSuffix(qr, "documentkey="+testCufeExpected))
	assert.Contains(t, qr, "ValTolFac=238.00")
	assert.Contains(t, qr, "NitFac=900123456")
}
