package dian

import (
	"fmt"
)

// pesos del dígito de verificación NIT (módulo 11), aplicados a los 9 primeros dígitos.
var nitWeights = [9]int{41, 37, 29, 23, 19, 17, 13, 7, 3}

// ComputeNITVerificationDigit calcula el dígito de verificación de los 9 primeros dígitos.
func ComputeNITVerificationDigit(taxID string) (byte, error) {
	digits := onlyDigits(taxID)
	if len(digits) < 9 {
		return 0, fmt.Errorf("dian: se requieren al menos 9 dígitos, se encontraron %d", len(digits))
	}
	var sum int
	for i := 0; i < 9; i++ {
		sum += int(digits[i]-'0') * nitWeights[i]
	}
	r := sum % 11
	if r == 0 || r == 1 {
		return byte('0' + r), nil
	}
	return byte('0' + (11 - r)), nil
}

// ValidateNIT acepta "900123456-8", "900.123.456-8" o "9001234568".
func ValidateNIT(taxID string) error {
	digits := onlyDigits(taxID)
	if len(digits) != 10 {
		return fmt.Errorf("dian: el NIT debe tener 9 dígitos más el de verificación, se recibieron %d", len(digits))
	}
	expected, err := ComputeNITVerificationDigit(digits)
	if err != nil {
		return err
	}
	if digits[9] != expected {
		return fmt.Errorf("dian: dígito de verificación inválido: esperado %c, recibido %c", expected, digits[9])
	}
	return nil
}

// NormalizeNIT deja el NIT como "900123456-8".
func NormalizeNIT(taxID string) string {
	digits := onlyDigits(taxID)
	if len(digits) != 10 {
		return digits
	}
	return digits[:9] + "-" + digits[9:]
}
