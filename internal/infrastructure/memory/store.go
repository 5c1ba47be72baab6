// Package memory implementa los puertos de persistencia en memoria.
// Se usa en tests y con STORE_DRIVER=memory (demo sin base de datos).
package memory

import (
	"sort"
	"sync"

	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
)

// row valor guardado con su orden de inserción (desempate al ordenar).
type row[T any] struct {
	seq uint64
	v   T
}

// tables estado completo del store. clone() sirve de snapshot para el rollback.
type tables struct {
	seq         uint64
	companies   map[string]row[entity.Company]
	branches    map[string]row[entity.Branch]
	users       map[string]row[entity.User]
	customers   map[string]row[entity.Customer]
	products    map[string]row[entity.Product]
	movements   map[string]row[entity.StockMovement]
	invoices    map[string]row[entity.Invoice]
	lines       map[string][]entity.InvoiceLine
	sessions    map[string]row[entity.CashSession]
	receivables map[string]row[entity.Receivable]
	payments    map[string]row[entity.PaymentRecord]
	repairs     map[string]row[entity.RepairOrder]
	idempotency map[string]row[entity.IdempotencyKey]
}

func newTables() *tables {
	return &tables{
		companies:   make(map[string]row[entity.Company]),
		branches:    make(map[string]row[entity.Branch]),
		users:       make(map[string]row[entity.User]),
		customers:   make(map[string]row[entity.Customer]),
		products:    make(map[string]row[entity.Product]),
		movements:   make(map[string]row[entity.StockMovement]),
		invoices:    make(map[string]row[entity.Invoice]),
		lines:       make(map[string][]entity.InvoiceLine),
		sessions:    make(map[string]row[entity.CashSession]),
		receivables: make(map[string]row[entity.Receivable]),
		payments:    make(map[string]row[entity.PaymentRecord]),
		repairs:     make(map[string]row[entity.RepairOrder]),
		idempotency: make(map[string]row[entity.IdempotencyKey]),
	}
}

func (t *tables) next() uint64 {
	t.seq++
	return t.seq
}

func (t *tables) clone() *tables {
	c := &tables{
		seq:         t.seq,
		companies:   cloneMap(t.companies),
		branches:    cloneMap(t.branches),
		users:       cloneMap(t.users),
		customers:   cloneMap(t.customers),
		products:    cloneMap(t.products),
		movements:   cloneMap(t.movements),
		invoices:    cloneMap(t.invoices),
		lines:       make(map[string][]entity.InvoiceLine, len(t.lines)),
		sessions:    cloneMap(t.sessions),
		receivables: cloneMap(t.receivables),
		payments:    cloneMap(t.payments),
		repairs:     cloneMap(t.repairs),
		idempotency: cloneMap(t.idempotency),
	}
	for k, v := range t.lines {
		c.lines[k] = append([]entity.InvoiceLine(nil), v...)
	}
	return c
}

func cloneMap[T any](m map[string]row[T]) map[string]row[T] {
	out := make(map[string]row[T], len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Store base de datos en memoria.
//
// txMu serializa las transacciones y las escrituras sueltas: una transacción ve y deja
// el estado de forma exclusiva y, si falla, restaura el snapshot tomado al empezar.
// mu protege los mapas para lecturas concurrentes.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	t    *tables
}

// New crea un store vacío.
func New() *Store {
	return &Store{t: newTables()}
}

// repo base de todos los repositorios; tx indica si corre dentro de una transacción (txMu ya tomado).
type repo struct {
	s  *Store
	tx bool
}

func (r repo) write(fn func(t *tables) error) error {
	if !r.tx {
		r.s.txMu.Lock()
		defer r.s.txMu.Unlock()
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return fn(r.s.t)
}

func (r repo) read(fn func(t *tables)) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	fn(r.s.t)
}

// collect filtra y ordena; a igual criterio conserva el orden de inserción.
func collect[T any](m map[string]row[T], keep func(*T) bool, less func(a, b *T) int) []*T {
	rows := make([]row[T], 0, len(m))
	for _, r := range m {
		if keep(&r.v) {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if c := less(&rows[i].v, &rows[j].v); c != 0 {
			return c < 0
		}
		return rows[i].seq < rows[j].seq
	})
	out := make([]*T, 0, len(rows))
	for i := range rows {
		v := rows[i].v
		out = append(out, &v)
	}
	return out
}

func page[T any](list []*T, limit, offset int) []*T {
	if offset >= len(list) {
		return []*T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
