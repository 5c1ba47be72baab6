package billing

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

// maxNumberAttempts intentos de numeración ante colisión del índice único.
const maxNumberAttempts = 3

// NextInvoiceNumber PREFIX-<últimos 6 dígitos de unix millis><2 dígitos aleatorios>.
func NextInvoiceNumber(prefix string, now time.Time) string {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		prefix = "POS"
	}
	return fmt.Sprintf("%s-%06d%02d", prefix, now.UnixMilli()%1_000_000, rand.IntN(100))
}
