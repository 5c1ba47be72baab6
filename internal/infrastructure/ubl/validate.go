package ubl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jhoicas/caja-pos-api/internal/domain"
	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
	"github.com/jhoicas/caja-pos-api/pkg/dian"
)

// ErrInvalidInvoice la factura no cumple las reglas mínimas del documento electrónico.
var ErrInvalidInvoice = fmt.Errorf("%w: factura inválida para el documento electrónico", domain.ErrInvalidInput)

// Validate revisa que los totales guardados cuadren con las líneas y que un cliente
// identificado con NIT (con guion) tenga dígito de verificación válido.
// Devuelve todos los problemas encontrados unidos con errors.Join.
func Validate(inv *entity.Invoice) error {
	var errs []error

	if doc := inv.Customer.Document; strings.Contains(doc, "-") {
		if err := dian.ValidateNIT(doc); err != nil {
			errs = append(errs, fmt.Errorf("cliente: %w", err))
		}
	}

	if len(inv.Lines) == 0 {
		errs = append(errs, errors.New("la factura no tiene líneas"))
	} else {
		sum := inv.Lines[0].Amount()
		for _, l := range inv.Lines[1:] {
			sum = sum.Add(l.Amount())
		}
		if !inv.Subtotal.Round(2).Equal(sum.Round(2)) {
			errs = append(errs, fmt.Errorf("subtotal %s no coincide con la suma de líneas %s", inv.Subtotal, sum.Round(2)))
		}
	}
	if !inv.TaxEnabled && !inv.TaxAmount.IsZero() {
		errs = append(errs, fmt.Errorf("impuesto %s en una factura sin IVA", inv.TaxAmount))
	}
	if !inv.Total.Equal(inv.Subtotal.Add(inv.TaxAmount)) {
		errs = append(errs, fmt.Errorf("total %s no coincide con subtotal + impuesto %s", inv.Total, inv.Subtotal.Add(inv.TaxAmount)))
	}

	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidInvoice}, errs...)...)
	}
	return nil
}
