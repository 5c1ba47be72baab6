package dian

// Códigos de impuesto usados en la cadena de la referencia electrónica.
const (
	TaxCodeIVA = "01" // IVA
	TaxCodeICA = "03" // ICA
	TaxCodeINC = "04" // Impuesto Nacional al Consumo
)

// Forma de pago.
const (
	PaymentFormContado = "1"
	PaymentFormCredito = "2"
)

// Medios de pago de uso frecuente.
const (
	PaymentMeansEfectivo       = "10"
	PaymentMeansTransferencia  = "47"
	PaymentMeansTarjetaCredito = "48"
	PaymentMeansSinDefinir     = "1"
)

// Tipos de identificación.
const (
	IdentificationTypeNIT = "31"
	IdentificationTypeCC  = "13"
)

// PaymentMeansCode traduce el medio de pago del POS al código del catálogo.
func PaymentMeansCode(method string) string {
	switch method {
	case "CASH":
		return PaymentMeansEfectivo
	case "CARD":
		return PaymentMeansTarjetaCredito
	case "TRANSFER":
		return PaymentMeansTransferencia
	default:
		return PaymentMeansSinDefinir
	}
}

// PaymentForm contado salvo que haya porción a crédito.
func PaymentForm(hasCredit bool) string {
	if hasCredit {
		return PaymentFormCredito
	}
	return PaymentFormContado
}

// IdentificationType NIT si el documento tiene 9 o más dígitos, si no cédula.
func IdentificationType(document string) string {
	if len(onlyDigits(document)) >= 9 {
		return IdentificationTypeNIT
	}
	return IdentificationTypeCC
}
