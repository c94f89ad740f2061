package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/insumos-api/internal/application/fabrication"
	"github.com/jhoicas/insumos-api/internal/application/inventory"
	"github.com/jhoicas/insumos-api/internal/domain"
	"github.com/jhoicas/insumos-api/internal/domain/repository"
	"github.com/jhoicas/insumos-api/pkg/logger"
	"github.com/jhoicas/insumos-api/pkg/metrics"
)

// Ensure TxRunner implements inventory.TxRunner and fabrication.TxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)
var _ fabrication.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción SERIALIZABLE de PostgreSQL.
// Si la transacción pierde frente a otra concurrente (40001/40P01) el callback se re-ejecuta
// completo hasta maxAttempts veces; agotados los intentos devuelve domain.ErrStorageConflict.
type TxRunner struct {
	pool        *pgxpool.Pool
	maxAttempts int
	backoff     time.Duration
	log         *logger.Logger
}

// TxOption configura el TxRunner.
type TxOption func(*TxRunner)

// WithRetry define el número máximo de intentos y la espera base entre ellos.
func WithRetry(maxAttempts int, backoff time.Duration) TxOption {
	return func(r *TxRunner) {
		if maxAttempts > 0 {
			r.maxAttempts = maxAttempts
		}
		r.backoff = backoff
	}
}

// WithLogger asigna el logger usado para reportar reintentos.
func WithLogger(log *logger.Logger) TxOption {
	return func(r *TxRunner) {
		if log != nil {
			r.log = log
		}
	}
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool, opts ...TxOption) *TxRunner {
	r := &TxRunner{
		pool:        pool,
		maxAttempts: 5,
		backoff:     20 * time.Millisecond,
		log:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	return r.withRetry(ctx, func(tx pgx.Tx) error {
		return fn(NewMovementRepository(tx), NewProductRepository(tx))
	})
}

// RunFabrication inicia una transacción con los repos que toca el motor de fabricación.
func (r *TxRunner) RunFabrication(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	materialRepo repository.MaterialRepository,
	fabricationRepo repository.FabricationRepository,
) error) error {
	return r.withRetry(ctx, func(tx pgx.Tx) error {
		return fn(NewProductRepository(tx), NewMaterialRepository(tx), NewFabricationRepository(tx))
	})
}

func (r *TxRunner) withRetry(ctx context.Context, body func(tx pgx.Tx) error) error {
	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		err := r.runOnce(ctx, body)
		if err == nil {
			return nil
		}
		if !isSerializationFailure(err) {
			return err
		}
		lastErr = err
		if attempt == r.maxAttempts {
			break
		}
		metrics.ObserveTxRetry("postgres")
		r.log.Debug().Err(err).Int("attempt", attempt).Msg("conflicto de serialización, reintentando")

		if r.backoff > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * r.backoff):
			}
		}
	}
	return fmt.Errorf("%w: %d intentos: %v", domain.ErrStorageConflict, r.maxAttempts, lastErr)
}

func (r *TxRunner) runOnce(ctx context.Context, body func(tx pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := body(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
