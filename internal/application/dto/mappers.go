package dto

import "github.com/jhoicas/caja-pos-api/internal/domain/entity"

// ProductFromEntity convierte a respuesta.
func ProductFromEntity(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		CompanyID:     p.CompanyID,
		SKU:           p.SKU,
		Name:          p.Name,
		Description:   p.Description,
		Category:      p.Category,
		Brand:         p.Brand,
		Barcode:       p.Barcode,
		Price:         p.Price,
		Cost:          p.Cost,
		TaxRate:       p.TaxRate,
		StockQuantity: p.StockQuantity,
		MinStock:      p.MinStock,
		Type:          p.Type,
		IsActive:      p.IsActive,
		LowStock:      p.IsLowStock(),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// CustomerFromEntity convierte a respuesta.
func CustomerFromEntity(c *entity.Customer) CustomerResponse {
	return CustomerResponse{
		ID:             c.ID,
		CompanyID:      c.CompanyID,
		Name:           c.Name,
		DocumentNumber: c.DocumentNumber,
		Email:          c.Email,
		Phone:          c.Phone,
		Address:        c.Address,
		CreditLimit:    c.CreditLimit,
	}
}

// SaleFromEntity convierte la factura y sus líneas (si están cargadas).
func SaleFromEntity(inv *entity.Invoice) SaleResponse {
	out := SaleResponse{
		ID:            inv.ID,
		CompanyID:     inv.CompanyID,
		BranchID:      inv.BranchID,
		SessionID:     inv.SessionID,
		InvoiceNumber: inv.Number,
		Customer: CustomerSnapshotRequest{
			Name:     inv.Customer.Name,
			Document: inv.Customer.Document,
			Email:    inv.Customer.Email,
			Phone:    inv.Customer.Phone,
		},
		Subtotal:      inv.Subtotal,
		TaxAmount:     inv.TaxAmount,
		Total:         inv.Total,
		TaxEnabled:    inv.TaxEnabled,
		TaxRate:       inv.TaxRate,
		PaymentMethod: inv.PaymentMethod,
		Status:        inv.Status,
		CUFE:          inv.CUFE,
		QRData:        inv.QRData,
		CreatedAt:     inv.CreatedAt,
		Payments:      make([]TenderRequest, 0, len(inv.Payments)),
		Items:         make([]SaleLineResponse, 0, len(inv.Lines)),
	}
	for _, p := range inv.Payments {
		out.Payments = append(out.Payments, TenderRequest{Method: p.Method, Amount: p.Amount})
	}
	for _, l := range inv.Lines {
		out.Items = append(out.Items, SaleLineResponse{
			ProductID:    l.ProductID,
			ProductName:  l.ProductName,
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice,
			TaxRate:      l.TaxRate,
			Discount:     l.Discount,
			SerialNumber: l.SerialNumber,
		})
	}
	return out
}

// SessionFromEntity convierte a respuesta.
func SessionFromEntity(s *entity.CashSession) SessionResponse {
	return SessionResponse{
		ID:             s.ID,
		CompanyID:      s.CompanyID,
		BranchID:       s.BranchID,
		UserID:         s.UserID,
		Status:         s.Status,
		StartCash:      s.StartCash,
		TotalSalesCash: s.TotalSalesCash,
		TotalSalesCard: s.TotalSalesCard,
		StartTime:      s.StartTime,
		EndTime:        s.EndTime,
		EndCash:        s.EndCash,
		Difference:     s.Difference,
	}
}

// RepairFromEntity convierte a respuesta.
func RepairFromEntity(o *entity.RepairOrder) RepairResponse {
	return RepairResponse{
		ID:               o.ID,
		CompanyID:        o.CompanyID,
		CustomerName:     o.CustomerName,
		CustomerPhone:    o.CustomerPhone,
		DeviceModel:      o.DeviceModel,
		SerialNumber:     o.SerialNumber,
		IssueDescription: o.IssueDescription,
		Status:           o.Status,
		EstimatedCost:    o.EstimatedCost,
		TechnicianNotes:  o.TechnicianNotes,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}
