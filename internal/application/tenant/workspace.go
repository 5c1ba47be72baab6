package tenant

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
)

// Collections datos de una empresa cargados para un operador.
type Collections struct {
	Products  []*entity.Product
	Sales     []*entity.Invoice
	Repairs   []*entity.RepairOrder
	Customers []*entity.Customer
	Session   *entity.CashSession
}

func (c Collections) clone() Collections {
	out := Collections{
		Products:  append([]*entity.Product(nil), c.Products...),
		Sales:     append([]*entity.Invoice(nil), c.Sales...),
		Repairs:   append([]*entity.RepairOrder(nil), c.Repairs...),
		Customers: append([]*entity.Customer(nil), c.Customers...),
	}
	if c.Session != nil {
		s := *c.Session
		out.Session = &s
	}
	return out
}

// Loader carga cada colección de una empresa.
type Loader interface {
	LoadProducts(ctx context.Context, companyID string) ([]*entity.Product, error)
	LoadSales(ctx context.Context, companyID string) ([]*entity.Invoice, error)
	LoadRepairs(ctx context.Context, companyID string) ([]*entity.RepairOrder, error)
	LoadCustomers(ctx context.Context, companyID string) ([]*entity.Customer, error)
	LoadSession(ctx context.Context, companyID string) (*entity.CashSession, error)
	// FirstBranch sucursal por defecto al cambiar de empresa; nil si no tiene.
	FirstBranch(ctx context.Context, companyID string) (*entity.Branch, error)
}

// State foto del workspace. Ready es false mientras se carga o si la carga falló.
type State struct {
	Context Context
	Data    Collections
	Ready   bool
}

// Workspace mantiene las colecciones de la empresa activa de un operador.
// Al cambiar de empresa se vacían todas antes de cargar la nueva; nunca quedan datos de otra empresa.
type Workspace struct {
	mu     sync.RWMutex
	loader Loader
	tc     Context
	data   Collections
	ready  bool
	gen    uint64
}

// NewWorkspace crea un workspace vacío.
func NewWorkspace(loader Loader) *Workspace {
	return &Workspace{loader: loader}
}

// Snapshot devuelve copias; el caller puede modificarlas sin afectar al workspace.
func (w *Workspace) Snapshot() State {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return State{Context: w.tc, Data: w.data.clone(), Ready: w.ready}
}

// Switch cambia a next. Primero vacía todo y publica el nuevo contexto; después carga.
// Si la carga falla, las colecciones quedan vacías y Ready en false.
func (w *Workspace) Switch(ctx context.Context, next Context) error {
	w.mu.Lock()
	w.gen++
	gen := w.gen
	w.data = Collections{}
	w.ready = false
	w.tc = next
	w.mu.Unlock()

	if next.Overview() {
		w.mu.Lock()
		if w.gen == gen {
			w.ready = true
		}
		w.mu.Unlock()
		return nil
	}
	if err := next.Require(); err != nil {
		return err
	}

	branchID := next.BranchID
	if branchID == "" {
		b, err := w.loader.FirstBranch(ctx, next.CompanyID)
		if err != nil {
			return fmt.Errorf("workspace: sucursal por defecto: %w", err)
		}
		if b != nil {
			branchID = b.ID
		}
	}

	data, err := w.load(ctx, next.CompanyID)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.gen != gen {
		// otro Switch empezó mientras cargábamos; su resultado manda
		return nil
	}
	w.tc.BranchID = branchID
	w.data = data
	w.ready = true
	return nil
}

// Refresh recarga la empresa actual.
func (w *Workspace) Refresh(ctx context.Context) error {
	w.mu.RLock()
	tc := w.tc
	w.mu.RUnlock()
	return w.Switch(ctx, tc)
}

func (w *Workspace) load(ctx context.Context, companyID string) (Collections, error) {
	var c Collections
	var err error
	if c.Products, err = w.loader.LoadProducts(ctx, companyID); err != nil {
		return Collections{}, fmt.Errorf("workspace: productos: %w", err)
	}
	if c.Sales, err = w.loader.LoadSales(ctx, companyID); err != nil {
		return Collections{}, fmt.Errorf("workspace: ventas: %w", err)
	}
	if c.Repairs, err = w.loader.LoadRepairs(ctx, companyID); err != nil {
		return Collections{}, fmt.Errorf("workspace: reparaciones: %w", err)
	}
	if c.Customers, err = w.loader.LoadCustomers(ctx, companyID); err != nil {
		return Collections{}, fmt.Errorf("workspace: clientes: %w", err)
	}
	if c.Session, err = w.loader.LoadSession(ctx, companyID); err != nil {
		return Collections{}, fmt.Errorf("workspace: caja: %w", err)
	}
	return c, nil
}

// Registry un workspace por operador.
type Registry struct {
	mu     sync.Mutex
	loader Loader
	items  map[string]*Workspace
}

// NewRegistry construye el registro.
func NewRegistry(loader Loader) *Registry {
	return &Registry{loader: loader, items: make(map[string]*Workspace)}
}

// Get devuelve (o crea) el workspace del usuario.
func (r *Registry) Get(userID string) *Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.items[userID]
	if !ok {
		w = NewWorkspace(r.loader)
		r.items[userID] = w
	}
	return w
}

// Drop elimina el workspace del usuario.
func (r *Registry) Drop(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, userID)
}
