// Package dian: referencia electrónica simulada para ventas POS.
// Reproduce la forma del CUFE (SHA-384 sobre la cadena de concatenación) sin firma ni envío real.
package dian

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ConsumidorFinal documento usado cuando la venta no identifica al comprador.
const ConsumidorFinal = "222222222222"

// CufeParams datos de la venta en el orden de concatenación.
type CufeParams struct {
	NumFac       string          // número de factura, sin espacios
	FecFac       string          // YYYY-MM-DD
	HorFac       string          // HH:MM:SS-05:00
	ValFac       decimal.Decimal // subtotal antes de impuestos
	ValIVA       decimal.Decimal
	ValPag       decimal.Decimal // total a pagar
	NitOfe       string
	DocAdq       string
	ClaveTecnica string
	TipoAmbiente string // "1" producción, "2" pruebas
}

// Cadena devuelve la concatenación exacta que se hashea.
func (p *CufeParams) Cadena() (string, error) {
	numFac := strings.Join(strings.Fields(p.NumFac), "")
	if numFac == "" {
		return "", fmt.Errorf("dian: NumFac es obligatorio")
	}
	if p.FecFac == "" {
		return "", fmt.Errorf("dian: FecFac es obligatorio")
	}
	nitOfe := onlyDigits(p.NitOfe)
	if nitOfe == "" {
		return "", fmt.Errorf("dian: NitOfe es obligatorio")
	}
	if p.ClaveTecnica == "" {
		return "", fmt.Errorf("dian: ClaveTecnica es obligatoria")
	}
	docAdq := onlyDigits(p.DocAdq)
	if docAdq == "" {
		docAdq = ConsumidorFinal
	}
	tipoAmb := p.TipoAmbiente
	if tipoAmb == "" {
		tipoAmb = "2"
	}
	return numFac +
		p.FecFac +
		p.HorFac +
		formatAmount(p.ValFac) +
		TaxCodeIVA + formatAmount(p.ValIVA) +
		TaxCodeINC + formatAmount(decimal.Zero) +
		TaxCodeICA + formatAmount(decimal.Zero) +
		formatAmount(p.ValPag) +
		nitOfe +
		docAdq +
		p.ClaveTecnica +
		tipoAmb, nil
}

// CalculateCUFE SHA-384 en hexadecimal minúscula.
func CalculateCUFE(p *CufeParams) (string, error) {
	if p == nil {
		return "", fmt.Errorf("dian: CufeParams es obligatorio")
	}
	cadena, err := p.Cadena()
	if err != nil {
		return "", err
	}
	hash := sha512.Sum384([]byte(cadena))
	return hex.EncodeToString(hash[:]), nil
}

// BuildQRData contenido del QR impreso en la tirilla.
func BuildQRData(p *CufeParams, cufe string) string {
	base := qrURLPruebas
	if p.TipoAmbiente == "1" {
		base = qrURLProduccion
	}
	docAdq := onlyDigits(p.DocAdq)
	if docAdq == "" {
		docAdq = ConsumidorFinal
	}
	return strings.Join([]string{
		"NumFac=" + p.NumFac,
		"FecFac=" + p.FecFac,
		"NitFac=" + onlyDigits(p.NitOfe),
		"DocAdq=" + docAdq,
		"ValFac=" + formatAmount(p.ValFac),
		"ValIva=" + formatAmount(p.ValIVA),
		"ValTolFac=" + formatAmount(p.ValPag),
		"CUFE=" + cufe,
		base + cufe,
	}, "\n")
}

const (
	qrURLPruebas    = "https://catalogo-vpfe-hab.dian.gov.co/document/searchqr?documentkey="
	qrURLProduccion = "https://catalogo-vpfe.dian.gov.co/document/searchqr?documentkey="
)

// formatAmount sin separador de miles, punto decimal, 2 decimales.
func formatAmount(d decimal.Decimal) string {
	return d.Round(2).StringFixed(2)
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
