// Package memory implementa los repositorios sobre un almacén en memoria con control de
// concurrencia optimista: cada documento tiene una versión, las unidades de trabajo registran
// las versiones leídas, bufferizan sus escrituras y al confirmar validan que nada de lo leído
// haya cambiado. Si cambió, la unidad de trabajo se re-ejecuta completa.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/insumos-api/internal/application/fabrication"
	"github.com/jhoicas/insumos-api/internal/application/inventory"
	"github.com/jhoicas/insumos-api/internal/domain"
	"github.com/jhoicas/insumos-api/internal/domain/entity"
	"github.com/jhoicas/insumos-api/internal/domain/repository"
	"github.com/jhoicas/insumos-api/pkg/logger"
	"github.com/jhoicas/insumos-api/pkg/metrics"
)

var _ inventory.TxRunner = (*Store)(nil)
var _ fabrication.TxRunner = (*Store)(nil)

// errConflict la validación del read-set falló en el commit.
var errConflict = errors.New("memory: conflicto de versión")

const (
	keyMaterials = "materials" // versión de la colección (unicidad de códigos)
)

func productKey(id string) string  { return "product:" + id }
func materialKey(id string) string { return "material:" + id }

// Store almacén en memoria. Seguro para uso concurrente.
type Store struct {
	mu           sync.RWMutex
	versions     map[string]uint64
	products     map[string]*entity.Product
	materials    map[string]*entity.Material
	recipes      map[string][]entity.RecipeLine
	movements    []entity.Movement
	fabrications []entity.Fabrication

	maxAttempts  int
	backoff      time.Duration
	log          *logger.Logger
	now          func() time.Time
	beforeCommit func()
}

// Option configura el Store.
type Option func(*Store)

// WithRetry define el número máximo de intentos por unidad de trabajo y la espera base entre ellos.
func WithRetry(maxAttempts int, backoff time.Duration) Option {
	return func(s *Store) {
		if maxAttempts > 0 {
			s.maxAttempts = maxAttempts
		}
		s.backoff = backoff
	}
}

// WithLogger asigna el logger usado para reportar reintentos.
func WithLogger(log *logger.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// New crea un almacén vacío.
func New(opts ...Option) *Store {
	s := &Store{
		versions:    make(map[string]uint64),
		products:    make(map[string]*entity.Product),
		materials:   make(map[string]*entity.Material),
		recipes:     make(map[string][]entity.RecipeLine),
		maxAttempts: 5,
		backoff:     20 * time.Millisecond,
		log:         logger.Nop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Products repositorio de productos fuera de transacción.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// Materials repositorio de insumos fuera de transacción.
func (s *Store) Materials() *MaterialRepo { return &MaterialRepo{s: s} }

// Recipes repositorio de recetas.
func (s *Store) Recipes() *RecipeRepo { return &RecipeRepo{s: s} }

// Movements repositorio de movimientos fuera de transacción.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{s: s} }

// Fabrications repositorio de registros de fabricación fuera de transacción.
func (s *Store) Fabrications() *FabricationRepo { return &FabricationRepo{s: s} }

// Run ejecuta fn como unidad de trabajo con repos de movimientos y productos.
func (s *Store) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	return s.run(ctx, func(tx *txn) error {
		return fn(&MovementRepo{s: s, tx: tx}, &ProductRepo{s: s, tx: tx})
	})
}

// RunFabrication ejecuta fn como unidad de trabajo con los repos del motor de fabricación.
func (s *Store) RunFabrication(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	materialRepo repository.MaterialRepository,
	fabricationRepo repository.FabricationRepository,
) error) error {
	return s.run(ctx, func(tx *txn) error {
		return fn(&ProductRepo{s: s, tx: tx}, &MaterialRepo{s: s, tx: tx}, &FabricationRepo{s: s, tx: tx})
	})
}

// txn estado de una unidad de trabajo: versiones leídas y escrituras pendientes.
type txn struct {
	reads   map[string]uint64
	written map[string]bool
	ops     []func()
	bumps   []string
}

func newTxn() *txn {
	return &txn{reads: make(map[string]uint64), written: make(map[string]bool)}
}

// observe registra la primera versión vista de key.
func (t *txn) observe(key string, version uint64) {
	if _, ok := t.reads[key]; !ok {
		t.reads[key] = version
	}
}

func (s *Store) run(ctx context.Context, fn func(tx *txn) error) error {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		tx := newTxn()
		if err := fn(tx); err != nil {
			return err
		}
		if err := s.commit(tx); err == nil {
			return nil
		}
		if attempt == s.maxAttempts {
			break
		}
		metrics.ObserveTxRetry("memory")
		s.log.Debug().Int("attempt", attempt).Msg("conflicto de versión, reintentando")

		if s.backoff > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * s.backoff):
			}
		}
	}
	return fmt.Errorf("%w: %d intentos", domain.ErrStorageConflict, s.maxAttempts)
}

func (s *Store) commit(tx *txn) error {
	if s.beforeCommit != nil {
		s.beforeCommit()
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, v := range tx.reads {
		if s.versions[key] != v {
			return errConflict
		}
	}
	for _, op := range tx.ops {
		op()
	}
	for _, key := range tx.bumps {
		s.versions[key]++
	}
	return nil
}

// read ejecuta get bajo lock de lectura registrando la versión de key si hay tx.
// Leer algo que la misma tx ya escribió devuelve domain.ErrReadAfterWrite.
func (s *Store) read(tx *txn, key string, get func()) error {
	if tx != nil && tx.written[key] {
		return domain.ErrReadAfterWrite
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if tx != nil {
		tx.observe(key, s.versions[key])
	}
	get()
	return nil
}

// write valida con check contra el estado confirmado y aplica apply. Sin tx se aplica en el
// acto; con tx se difiere al commit, que antes verifica que las versiones de keys no cambiaron.
func (s *Store) write(tx *txn, keys []string, check func() error, apply func()) error {
	if tx == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		if check != nil {
			if err := check(); err != nil {
				return err
			}
		}
		apply()
		for _, k := range keys {
			s.versions[k]++
		}
		return nil
	}

	s.mu.RLock()
	for _, k := range keys {
		tx.observe(k, s.versions[k])
	}
	var err error
	if check != nil {
		err = check()
	}
	s.mu.RUnlock()
	if err != nil {
		return err
	}
	for _, k := range keys {
		tx.written[k] = true
	}
	tx.ops = append(tx.ops, apply)
	tx.bumps = append(tx.bumps, keys...)
	return nil
}

// page aplica offset y limit (limit <= 0 = sin límite).
func page[T any](list []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
