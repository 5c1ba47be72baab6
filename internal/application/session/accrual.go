package session

import (
	"context"

	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
	"github.com/jhoicas/caja-pos-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// SplitTenders separa el pago en efectivo y tarjeta/transferencia. El crédito no entra a la caja.
func SplitTenders(tenders []entity.Tender) (cash, card decimal.Decimal) {
	cash, card = decimal.Zero, decimal.Zero
	for _, t := range tenders {
		switch t.Method {
		case entity.PaymentCash:
			cash = cash.Add(t.Amount)
		case entity.PaymentCard, entity.PaymentTransfer:
			card = card.Add(t.Amount)
		}
	}
	return cash, card
}

// Accrue suma la venta a los acumulados de la caja. Se llama una sola vez por venta,
// dentro de la transacción de la venta; el repo incrementa de forma atómica.
func Accrue(ctx context.Context, sessions repository.CashSessionRepository, sessionID string, tenders []entity.Tender) error {
	cash, card := SplitTenders(tenders)
	if cash.IsZero() && card.IsZero() {
		return nil
	}
	return sessions.Accrue(ctx, sessionID, cash, card)
}
