package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/caja-pos-api/internal/domain"
	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
	"github.com/jhoicas/caja-pos-api/internal/domain/repository"
)

var _ repository.RepairOrderRepository = (*RepairRepo)(nil)

// RepairRepo órdenes de reparación sobre PostgreSQL.
type RepairRepo struct {
	q Querier
}

// NewRepairRepository construye el adaptador.
func NewRepairRepository(q Querier) *RepairRepo {
	return &RepairRepo{q: q}
}

const repairColumns = `id, company_id, customer_name, customer_phone, device_model, serial_number, issue_description,
	status, estimated_cost, technician_notes, created_at, updated_at`

func scanRepair(row pgx.Row) (*entity.RepairOrder, error) {
	var o entity.RepairOrder
	err := row.Scan(
		&o.ID, &o.CompanyID, &o.CustomerName, &o.CustomerPhone, &o.DeviceModel, &o.SerialNumber,
		&o.IssueDescription, &o.Status, &o.EstimatedCost, &o.TechnicianNotes, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *RepairRepo) Create(ctx context.Context, o *entity.RepairOrder) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO repair_orders (`+repairColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		o.ID, o.CompanyID, o.CustomerName, o.CustomerPhone, o.DeviceModel, o.SerialNumber,
		o.IssueDescription, o.Status, o.EstimatedCost, o.TechnicianNotes, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert repair order: %w", err)
	}
	return nil
}

func (r *RepairRepo) GetByID(ctx context.Context, id string) (*entity.RepairOrder, error) {
	o, err := scanRepair(r.q.QueryRow(ctx, `SELECT `+repairColumns+` FROM repair_orders WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get repair order: %w", err)
	}
	return o, nil
}

func (r *RepairRepo) Update(ctx context.Context, o *entity.RepairOrder) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE repair_orders SET customer_name = $2, customer_phone = $3, device_model = $4, serial_number = $5,
			issue_description = $6, status = $7, estimated_cost = $8, technician_notes = $9, updated_at = $10
		WHERE id = $1`,
		o.ID, o.CustomerName, o.CustomerPhone, o.DeviceModel, o.SerialNumber,
		o.IssueDescription, o.Status, o.EstimatedCost, o.TechnicianNotes, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update repair order: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByCompany más recientes primero; status vacío no filtra.
func (r *RepairRepo) ListByCompany(ctx context.Context, companyID, status string) ([]*entity.RepairOrder, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+repairColumns+` FROM repair_orders
		WHERE company_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC`, companyID, status)
	if err != nil {
		return nil, fmt.Errorf("list repair orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.RepairOrder
	for rows.Next() {
		o, err := scanRepair(rows)
		if err != nil {
			return nil, fmt.Errorf("scan repair order: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}
