package memory

import (
	"context"

	"github.com/jhoicas/caja-pos-api/internal/application/billing"
	"github.com/jhoicas/caja-pos-api/internal/application/inventory"
	"github.com/jhoicas/caja-pos-api/internal/application/receivables"
	"github.com/jhoicas/caja-pos-api/internal/application/session"
	"github.com/jhoicas/caja-pos-api/internal/domain/repository"
)

var (
	_ billing.SaleTxRunner = (*Store)(nil)
	_ session.TxRunner     = (*Store)(nil)
	_ receivables.TxRunner = (*Store)(nil)
	_ inventory.TxRunner   = (*Store)(nil)
)

// run ejecuta fn con acceso exclusivo; si fn falla restaura el snapshot.
func (s *Store) run(ctx context.Context, fn func(base repo) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	snap := s.t.clone()
	s.mu.RUnlock()

	if err := fn(repo{s: s, tx: true}); err != nil {
		s.mu.Lock()
		s.t = snap
		s.mu.Unlock()
		return err
	}
	return nil
}

// RunSale transacción de venta.
func (s *Store) RunSale(ctx context.Context, fn func(r billing.SaleRepos) error) error {
	return s.run(ctx, func(base repo) error {
		return fn(billing.SaleRepos{
			Products:    &ProductRepo{base},
			Invoices:    &InvoiceRepo{base},
			Sessions:    &SessionRepo{base},
			Movements:   &MovementRepo{base},
			Receivables: &ReceivableRepo{base},
		})
	})
}

// RunSession transacción de apertura/cierre de caja.
func (s *Store) RunSession(ctx context.Context, fn func(sessions repository.CashSessionRepository) error) error {
	return s.run(ctx, func(base repo) error {
		return fn(&SessionRepo{base})
	})
}

// RunReceivable transacción de cartera.
func (s *Store) RunReceivable(ctx context.Context, fn func(receivables repository.ReceivableRepository) error) error {
	return s.run(ctx, func(base repo) error {
		return fn(&ReceivableRepo{base})
	})
}

// RunStock transacción de ajuste de inventario.
func (s *Store) RunStock(ctx context.Context, fn func(
	products repository.ProductRepository,
	movements repository.StockMovementRepository,
) error) error {
	return s.run(ctx, func(base repo) error {
		return fn(&ProductRepo{base}, &MovementRepo{base})
	})
}
