package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/caja-pos-api/internal/application/billing"
	"github.com/jhoicas/caja-pos-api/internal/application/inventory"
	"github.com/jhoicas/caja-pos-api/internal/application/receivables"
	"github.com/jhoicas/caja-pos-api/internal/application/session"
	"github.com/jhoicas/caja-pos-api/internal/domain/repository"
)

var (
	_ billing.SaleTxRunner = (*TxRunner)(nil)
	_ session.TxRunner     = (*TxRunner)(nil)
	_ receivables.TxRunner = (*TxRunner)(nil)
	_ inventory.TxRunner   = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// run inicia la transacción, ejecuta fn y hace Commit; cualquier error hace Rollback.
func (r *TxRunner) run(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunSale transacción de venta: productos, factura, movimientos, caja y cartera.
func (r *TxRunner) RunSale(ctx context.Context, fn func(repos billing.SaleRepos) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(billing.SaleRepos{
			Products:    NewProductRepository(tx),
			Invoices:    NewInvoiceRepository(tx),
			Sessions:    NewCashSessionRepository(tx),
			Movements:   NewStockMovementRepository(tx),
			Receivables: NewReceivableRepository(tx),
		})
	})
}

// RunSession transacción de apertura/cierre de caja.
func (r *TxRunner) RunSession(ctx context.Context, fn func(sessions repository.CashSessionRepository) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewCashSessionRepository(tx))
	})
}

// RunReceivable transacción de cartera (creación y abonos).
func (r *TxRunner) RunReceivable(ctx context.Context, fn func(receivables repository.ReceivableRepository) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewReceivableRepository(tx))
	})
}

// RunStock transacción de ajuste de inventario.
func (r *TxRunner) RunStock(ctx context.Context, fn func(
	products repository.ProductRepository,
	movements repository.StockMovementRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewProductRepository(tx), NewStockMovementRepository(tx))
	})
}
