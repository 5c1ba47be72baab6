package billing

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/caja-pos-api/internal/application/dto"
	"github.com/jhoicas/caja-pos-api/internal/application/session"
	"github.com/jhoicas/caja-pos-api/internal/application/tenant"
	"github.com/jhoicas/caja-pos-api/internal/domain"
	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
	"github.com/jhoicas/caja-pos-api/internal/domain/repository"
	"github.com/jhoicas/caja-pos-api/pkg/logger"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// defaultCreditDays plazo de la porción a crédito si la venta no trae fecha.
const defaultCreditDays = 30

// SaleConfig parámetros del punto de venta.
type SaleConfig struct {
	InvoicePrefix string          // se usa si la empresa no tiene prefijo propio
	DefaultTax    decimal.Decimal // se usa si la empresa no tiene tasa configurada
}

// SaleUseCase publica ventas: factura + líneas + stock + caja + cartera en una sola transacción.
type SaleUseCase struct {
	tx        SaleTxRunner
	companies repository.CompanyRepository
	customers repository.CustomerRepository
	products  repository.ProductRepository
	invoices  repository.InvoiceRepository
	emitter   Emitter
	cfg       SaleConfig
	log       *logger.Logger
	now       func() time.Time
}

// NewSaleUseCase construye el caso de uso. emitter puede ser nil: la venta queda en PENDING_ELECTRONIC.
func NewSaleUseCase(
	tx SaleTxRunner,
	companies repository.CompanyRepository,
	customers repository.CustomerRepository,
	products repository.ProductRepository,
	invoices repository.InvoiceRepository,
	emitter Emitter,
	cfg SaleConfig,
	log *logger.Logger,
) *SaleUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &SaleUseCase{
		tx:        tx,
		companies: companies,
		customers: customers,
		products:  products,
		invoices:  invoices,
		emitter:   emitter,
		cfg:       cfg,
		log:       log.WithComponent("sale"),
		now:       time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *SaleUseCase) WithClock(now func() time.Time) *SaleUseCase {
	uc.now = now
	return uc
}

// pricedLine línea validada con el producto que la respalda.
type pricedLine struct {
	line    entity.CartLine
	product *entity.Product
}

// saleDraft todo lo calculado antes de tocar la base.
type saleDraft struct {
	lines      []pricedLine
	demand     map[string]decimal.Decimal // stock a reservar por producto (solo STANDARD)
	subtotal   decimal.Decimal
	tax        decimal.Decimal
	total      decimal.Decimal
	taxEnabled bool
	taxRate    decimal.Decimal
	tenders    []entity.Tender
	credit     decimal.Decimal
	dueDate    time.Time
}

// Post valida el carrito, calcula totales y publica la venta.
// Ninguna validación escribe en la base: si algo falla, no queda nada persistido.
func (uc *SaleUseCase) Post(ctx context.Context, tc tenant.Context, in dto.PostSaleRequest) (*dto.SaleResponse, error) {
	if err := tc.Require(); err != nil {
		return nil, err
	}
	if len(in.Items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	company, err := uc.companies.GetByID(ctx, tc.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("venta: obtener empresa: %w", err)
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}

	now := uc.now()
	draft, err := uc.buildDraft(ctx, tc, company, in, now)
	if err != nil {
		return nil, err
	}

	var customerID string
	if in.CustomerID != "" {
		customer, err := uc.customers.GetByID(ctx, in.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, domain.ErrNotFound
		}
		if !tc.Owns(customer.CompanyID) {
			return nil, domain.ErrForbidden
		}
		customerID = customer.ID
	}
	if draft.credit.IsPositive() && strings.TrimSpace(in.Customer.Name) == "" {
		return nil, fmt.Errorf("%w: la venta a crédito requiere el nombre del cliente", domain.ErrInvalidInput)
	}

	branchID := in.BranchID
	if branchID == "" {
		branchID = tc.BranchID
	}
	prefix := company.InvoicePrefixOr(uc.cfg.InvoicePrefix)

	var (
		inv          *entity.Invoice
		receivableID string
	)
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		inv = uc.newInvoice(tc, branchID, NextInvoiceNumber(prefix, now), in.Customer, draft, now)
		receivableID = ""
		err = uc.tx.RunSale(ctx, func(r SaleRepos) error {
			id, err := uc.persist(ctx, r, tc, inv, draft, customerID, now)
			receivableID = id
			return err
		})
		if !errors.Is(err, domain.ErrDuplicate) {
			break
		}
		uc.log.Warn().Str("invoice_number", inv.Number).Int("attempt", attempt+1).Msg("número de factura repetido, reintentando")
	}
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("company_id", inv.CompanyID).
		Str("invoice_id", inv.ID).
		Str("invoice_number", inv.Number).
		Str("total", inv.Total.String()).
		Msg("venta publicada")

	if uc.emitter != nil && inv.Status == entity.SaleStatusPendingElectronic {
		uc.emitter.ProcessAsync(inv.ID)
	}

	out := dto.SaleFromEntity(inv)
	out.ReceivableID = receivableID
	return &out, nil
}

func (uc *SaleUseCase) buildDraft(ctx context.Context, tc tenant.Context, company *entity.Company, in dto.PostSaleRequest, now time.Time) (*saleDraft, error) {
	d := &saleDraft{
		demand:     make(map[string]decimal.Decimal),
		subtotal:   decimal.Zero,
		taxEnabled: true,
		taxRate:    uc.cfg.DefaultTax,
	}
	// 0% configurado es válido (régimen no responsable de IVA)
	if company.Config.TaxRate != nil {
		d.taxRate = *company.Config.TaxRate
	}
	if in.Tax != nil {
		d.taxEnabled = in.Tax.Enabled
		if in.Tax.Rate != nil {
			d.taxRate = *in.Tax.Rate
		}
	}
	if d.taxRate.IsNegative() || d.taxRate.GreaterThan(hundred) {
		return nil, fmt.Errorf("%w: tasa de IVA fuera de rango", domain.ErrInvalidInput)
	}

	products := make(map[string]*entity.Product)
	seenSerial := make(map[string]struct{})
	for _, item := range in.Items {
		if item.ProductID == "" {
			return nil, domain.ErrInvalidInput
		}
		p, ok := products[item.ProductID]
		if !ok {
			var err error
			p, err = uc.products.GetByID(ctx, item.ProductID)
			if err != nil {
				return nil, err
			}
			if p == nil {
				return nil, domain.ErrNotFound
			}
			if !tc.Owns(p.CompanyID) {
				return nil, domain.ErrForbidden
			}
			if !p.IsActive {
				return nil, fmt.Errorf("%w: el producto %s está inactivo", domain.ErrInvalidInput, p.SKU)
			}
			products[p.ID] = p
		}

		pricing := entity.LinePricing{
			UnitPrice: p.Price,
			TaxRate:   p.TaxRate,
			Discount:  item.Discount,
		}
		if item.UnitPrice != nil {
			pricing.UnitPrice = *item.UnitPrice
		}
		if item.TaxRate != nil {
			pricing.TaxRate = *item.TaxRate
		}
		if pricing.UnitPrice.IsNegative() || pricing.Discount.IsNegative() {
			return nil, domain.ErrInvalidInput
		}

		line, err := entity.NewCartLine(p, item.Quantity, item.Serials, pricing)
		if err != nil {
			if entity.IsSerialError(err) {
				return nil, fmt.Errorf("%w: %s (%s)", domain.ErrMissingSerial, p.Name, err)
			}
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, err)
		}
		if entity.LineAmount(line).IsNegative() {
			return nil, fmt.Errorf("%w: el descuento supera el valor de la línea", domain.ErrInvalidInput)
		}

		switch l := line.(type) {
		case entity.SerializedLine:
			for _, serial := range l.Serials {
				key := p.ID + "|" + serial
				if _, dup := seenSerial[key]; dup {
					return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateSerial, serial)
				}
				seenSerial[key] = struct{}{}
			}
		case entity.StandardLine:
			d.demand[p.ID] = d.demand[p.ID].Add(l.Quantity)
		}

		d.lines = append(d.lines, pricedLine{line: line, product: p})
		d.subtotal = d.subtotal.Add(entity.LineAmount(line))
	}

	for productID, qty := range d.demand {
		if products[productID].StockQuantity.LessThan(qty) {
			return nil, fmt.Errorf("%w: %s", domain.ErrInsufficientStock, products[productID].Name)
		}
	}

	d.tax = decimal.Zero
	if d.taxEnabled {
		d.tax = d.subtotal.Mul(d.taxRate).Div(hundred).Round(2)
	}
	d.total = d.subtotal.Add(d.tax)

	tenders, err := normalizeTenders(in.Payments, d.total)
	if err != nil {
		return nil, err
	}
	d.tenders = tenders
	d.credit = decimal.Zero
	for _, t := range tenders {
		if t.Method == entity.PaymentCredit {
			d.credit = d.credit.Add(t.Amount)
		}
	}
	d.dueDate = now.AddDate(0, 0, defaultCreditDays)
	if in.DueDate != nil {
		d.dueDate = *in.DueDate
	}
	return d, nil
}

// normalizeTenders sin desglose = un solo pago en efectivo por el total.
// Con desglose, la suma debe coincidir exactamente con el total.
func normalizeTenders(in []dto.TenderRequest, total decimal.Decimal) ([]entity.Tender, error) {
	if len(in) == 0 {
		return []entity.Tender{{Method: entity.PaymentCash, Amount: total}}, nil
	}
	out := make([]entity.Tender, 0, len(in))
	sum := decimal.Zero
	for _, t := range in {
		method := strings.ToUpper(strings.TrimSpace(t.Method))
		if !entity.ValidPaymentMethod(method) {
			return nil, fmt.Errorf("%w: medio de pago %q", domain.ErrInvalidInput, t.Method)
		}
		if !t.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: monto de pago inválido", domain.ErrInvalidInput)
		}
		sum = sum.Add(t.Amount)
		out = append(out, entity.Tender{Method: method, Amount: t.Amount})
	}
	if !sum.Equal(total) {
		return nil, fmt.Errorf("%w: los pagos (%s) no cuadran con el total (%s)", domain.ErrInvalidInput, sum, total)
	}
	return out, nil
}

// mainMethod el medio con mayor monto; en empate, el primero.
func mainMethod(tenders []entity.Tender) string {
	best := tenders[0]
	for _, t := range tenders[1:] {
		if t.Amount.GreaterThan(best.Amount) {
			best = t
		}
	}
	return best.Method
}

func (uc *SaleUseCase) newInvoice(tc tenant.Context, branchID, number string, c dto.CustomerSnapshotRequest, d *saleDraft, now time.Time) *entity.Invoice {
	status := entity.SaleStatusPendingElectronic
	if d.credit.IsPositive() {
		status = entity.SaleStatusCreditPending
	}
	inv := &entity.Invoice{
		ID:        uuid.New().String(),
		CompanyID: tc.CompanyID,
		BranchID:  branchID,
		UserID:    tc.UserID,
		Number:    number,
		Customer: entity.CustomerSnapshot{
			Name:     strings.TrimSpace(c.Name),
			Document: strings.TrimSpace(c.Document),
			Email:    c.Email,
			Phone:    c.Phone,
		},
		Subtotal:      d.subtotal,
		TaxAmount:     d.tax,
		Total:         d.total,
		TaxEnabled:    d.taxEnabled,
		TaxRate:       d.taxRate,
		PaymentMethod: mainMethod(d.tenders),
		Payments:      d.tenders,
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, pl := range d.lines {
		inv.Lines = append(inv.Lines, expandLine(inv.ID, pl)...)
	}
	return inv
}

// expandLine una línea de factura por serial; el descuento va en la primera.
func expandLine(invoiceID string, pl pricedLine) []entity.InvoiceLine {
	p := pl.line.Pricing()
	base := entity.InvoiceLine{
		InvoiceID:   invoiceID,
		ProductID:   pl.product.ID,
		ProductName: pl.product.Name,
		ProductType: pl.product.Type,
		UnitPrice:   p.UnitPrice,
		TaxRate:     p.TaxRate,
	}
	serialized, ok := pl.line.(entity.SerializedLine)
	if !ok {
		l := base
		l.ID = uuid.New().String()
		l.Quantity = pl.line.Qty()
		l.Discount = p.Discount
		return []entity.InvoiceLine{l}
	}
	out := make([]entity.InvoiceLine, 0, len(serialized.Serials))
	for i, serial := range serialized.Serials {
		l := base
		l.ID = uuid.New().String()
		l.Quantity = decimal.NewFromInt(1)
		l.SerialNumber = serial
		l.Discount = decimal.Zero
		if i == 0 {
			l.Discount = p.Discount
		}
		out = append(out, l)
	}
	return out
}

// persist corre dentro de la transacción. Devuelve el ID de la cuenta por cobrar si hubo crédito.
func (uc *SaleUseCase) persist(ctx context.Context, r SaleRepos, tc tenant.Context, inv *entity.Invoice, d *saleDraft, customerID string, now time.Time) (string, error) {
	// ── 1. Bloquear productos y revalidar stock ───────────────────────────────
	// Orden fijo por ID: evita interbloqueos entre ventas concurrentes.
	toLock := make(map[string]struct{}, len(d.lines))
	for _, pl := range d.lines {
		if entity.DecrementsStock(pl.line) {
			toLock[pl.product.ID] = struct{}{}
		}
	}
	for _, id := range slices.Sorted(maps.Keys(toLock)) {
		locked, err := r.Products.GetForUpdate(ctx, id)
		if err != nil {
			return "", err
		}
		if locked == nil {
			return "", domain.ErrNotFound
		}
		if need, ok := d.demand[locked.ID]; ok && locked.StockQuantity.LessThan(need) {
			return "", fmt.Errorf("%w: %s", domain.ErrInsufficientStock, locked.Name)
		}
	}

	// ── 2. Caja abierta (opcional) ────────────────────────────────────────────
	open, err := r.Sessions.GetOpenByCompany(ctx, tc.CompanyID)
	if err != nil {
		return "", err
	}
	if open != nil {
		inv.SessionID = open.ID
	}

	// ── 3. Cabecera y líneas ──────────────────────────────────────────────────
	if err := r.Invoices.Create(ctx, inv); err != nil {
		return "", err
	}
	for i := range inv.Lines {
		if err := r.Invoices.CreateLine(ctx, &inv.Lines[i]); err != nil {
			return "", err
		}
	}

	// ── 4. Stock y movimientos ────────────────────────────────────────────────
	for _, pl := range d.lines {
		if !entity.DecrementsStock(pl.line) {
			continue
		}
		qty := pl.line.Qty()
		if err := r.Products.DecrementStock(ctx, pl.product.ID, qty); err != nil {
			return "", err
		}
		if err := r.Movements.Create(ctx, &entity.StockMovement{
			ID:        uuid.New().String(),
			CompanyID: tc.CompanyID,
			ProductID: pl.product.ID,
			Type:      entity.MovementSale,
			Quantity:  qty.Neg(),
			Reference: inv.ID,
			CreatedBy: tc.UserID,
			CreatedAt: now,
		}); err != nil {
			return "", err
		}
	}

	// ── 5. Acumulado de caja ──────────────────────────────────────────────────
	if open != nil {
		if err := session.Accrue(ctx, r.Sessions, open.ID, d.tenders); err != nil {
			return "", err
		}
	}

	// ── 6. Porción a crédito ──────────────────────────────────────────────────
	if !d.credit.IsPositive() {
		return "", nil
	}
	rec := &entity.Receivable{
		ID:           uuid.New().String(),
		CompanyID:    tc.CompanyID,
		CustomerID:   customerID,
		CustomerName: inv.Customer.Name,
		InvoiceID:    inv.ID,
		TotalAmount:  d.credit,
		PaidAmount:   decimal.Zero,
		Balance:      d.credit,
		DueDate:      d.dueDate,
		Status:       entity.ReceivablePending,
		Notes:        "Venta " + inv.Number,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := r.Receivables.Create(ctx, rec); err != nil {
		return "", err
	}
	return rec.ID, nil
}

// Get devuelve la venta con sus líneas.
func (uc *SaleUseCase) Get(ctx context.Context, tc tenant.Context, id string) (*dto.SaleResponse, error) {
	inv, err := uc.load(ctx, tc, id)
	if err != nil {
		return nil, err
	}
	out := dto.SaleFromEntity(inv)
	return &out, nil
}

// List ventas de la empresa, más recientes primero.
func (uc *SaleUseCase) List(ctx context.Context, tc tenant.Context, page dto.PageRequest) (*dto.SaleListResponse, error) {
	if err := tc.Require(); err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := uc.invoices.ListByCompany(ctx, tc.CompanyID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := &dto.SaleListResponse{
		Items: make([]dto.SaleResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, inv := range list {
		out.Items = append(out.Items, dto.SaleFromEntity(inv))
	}
	return out, nil
}

func (uc *SaleUseCase) load(ctx context.Context, tc tenant.Context, id string) (*entity.Invoice, error) {
	if err := tc.Require(); err != nil {
		return nil, err
	}
	inv, err := uc.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	if !tc.Owns(inv.CompanyID) {
		return nil, domain.ErrForbidden
	}
	lines, err := uc.invoices.GetLines(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	inv.Lines = lines
	return inv, nil
}
