package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/caja-pos-api/internal/application/dto"
	"github.com/jhoicas/caja-pos-api/internal/application/tenant"
	"github.com/jhoicas/caja-pos-api/internal/domain"
	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
	domaininv "github.com/jhoicas/caja-pos-api/internal/domain/inventory"
	"github.com/jhoicas/caja-pos-api/internal/domain/repository"
)

// movementHistoryLimit movimientos devueltos por producto.
const movementHistoryLimit = 50

// StockUseCase ajustes de stock con bloqueo de fila y rastro de movimientos.
type StockUseCase struct {
	txRunner  TxRunner
	movements repository.StockMovementRepository
	products  repository.ProductRepository
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(txRunner TxRunner, products repository.ProductRepository, movements repository.StockMovementRepository) *StockUseCase {
	return &StockUseCase{txRunner: txRunner, products: products, movements: movements}
}

// AdjustStock fija el stock contado. Bloquea el producto (SELECT FOR UPDATE), guarda la
// diferencia como movimiento ADJUSTMENT y hace Commit o Rollback.
func (uc *StockUseCase) AdjustStock(ctx context.Context, tc tenant.Context, productID string, in dto.AdjustStockRequest) (*dto.AdjustStockResponse, error) {
	if err := tc.Require(); err != nil {
		return nil, err
	}
	if productID == "" || in.NewQuantity.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		reason = "Ajuste manual"
	}

	var (
		product  *entity.Product
		movement *entity.StockMovement
	)
	err := uc.txRunner.RunStock(ctx, func(products repository.ProductRepository, movements repository.StockMovementRepository) error {
		p, err := products.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		if !tc.Owns(p.CompanyID) {
			return domain.ErrForbidden
		}
		if !p.TracksStock() {
			return fmt.Errorf("%w: los servicios no manejan stock", domain.ErrInvalidInput)
		}

		delta := in.NewQuantity.Sub(p.StockQuantity)
		if delta.IsZero() {
			product = p
			return nil
		}
		if err := products.SetStock(ctx, p.ID, in.NewQuantity); err != nil {
			return err
		}
		now := time.Now()
		m := &entity.StockMovement{
			ID:        uuid.New().String(),
			CompanyID: p.CompanyID,
			ProductID: p.ID,
			Type:      entity.MovementAdjustment,
			Quantity:  delta,
			Reference: reason,
			CreatedBy: tc.UserID,
			CreatedAt: now,
		}
		if err := movements.Create(ctx, m); err != nil {
			return err
		}
		p.StockQuantity = in.NewQuantity
		p.UpdatedAt = now
		product, movement = p, m
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := &dto.AdjustStockResponse{Product: dto.ProductFromEntity(product)}
	if movement != nil {
		mv := toMovementResponse(movement)
		out.Movement = &mv
	}
	return out, nil
}

// ReceiveStock registra una entrada de mercancía: suma la cantidad y recalcula el
// costo promedio ponderado del producto en la misma transacción.
func (uc *StockUseCase) ReceiveStock(ctx context.Context, tc tenant.Context, productID string, in dto.ReceiveStockRequest) (*dto.AdjustStockResponse, error) {
	if err := tc.Require(); err != nil {
		return nil, err
	}
	if productID == "" || !in.Quantity.IsPositive() || in.UnitCost.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	reference := strings.TrimSpace(in.Supplier)
	if reference == "" {
		reference = "Entrada de mercancía"
	}

	var (
		product  *entity.Product
		movement *entity.StockMovement
	)
	err := uc.txRunner.RunStock(ctx, func(products repository.ProductRepository, movements repository.StockMovementRepository) error {
		p, err := products.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		if !tc.Owns(p.CompanyID) {
			return domain.ErrForbidden
		}
		if !p.TracksStock() {
			return fmt.Errorf("%w: los servicios no manejan stock", domain.ErrInvalidInput)
		}

		now := time.Now()
		p.Cost = domaininv.WeightedAverageCost(p.StockQuantity, p.Cost, in.Quantity, in.UnitCost)
		p.UpdatedAt = now
		if err := products.Update(ctx, p); err != nil {
			return err
		}
		next := p.StockQuantity.Add(in.Quantity)
		if err := products.SetStock(ctx, p.ID, next); err != nil {
			return err
		}
		m := &entity.StockMovement{
			ID:        uuid.New().String(),
			CompanyID: p.CompanyID,
			ProductID: p.ID,
			Type:      entity.MovementPurchase,
			Quantity:  in.Quantity,
			Reference: reference,
			CreatedBy: tc.UserID,
			CreatedAt: now,
		}
		if err := movements.Create(ctx, m); err != nil {
			return err
		}
		p.StockQuantity = next
		product, movement = p, m
		return nil
	})
	if err != nil {
		return nil, err
	}

	mv := toMovementResponse(movement)
	return &dto.AdjustStockResponse{Product: dto.ProductFromEntity(product), Movement: &mv}, nil
}

// Movements historial de movimientos de un producto, más recientes primero.
func (uc *StockUseCase) Movements(ctx context.Context, tc tenant.Context, productID string) ([]dto.StockMovementResponse, error) {
	if err := tc.Require(); err != nil {
		return nil, err
	}
	p, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	if !tc.Owns(p.CompanyID) {
		return nil, domain.ErrForbidden
	}
	list, err := uc.movements.ListByProduct(ctx, productID, movementHistoryLimit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockMovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, toMovementResponse(m))
	}
	return out, nil
}

func toMovementResponse(m *entity.StockMovement) dto.StockMovementResponse {
	return dto.StockMovementResponse{
		ID:        m.ID,
		ProductID: m.ProductID,
		Type:      m.Type,
		Quantity:  m.Quantity,
		Reference: m.Reference,
		CreatedBy: m.CreatedBy,
		CreatedAt: m.CreatedAt,
	}
}
