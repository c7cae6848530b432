package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tadbeer/tadbeer-api/internal/application/auth"
	"github.com/tadbeer/tadbeer-api/internal/application/ledger"
	"github.com/tadbeer/tadbeer-api/internal/application/subscriber"
	"github.com/tadbeer/tadbeer-api/internal/domain/repository"
)

var _ ledger.TxRunner = (*TxRunner)(nil)
var _ subscriber.TxRunner = (*TxRunner)(nil)
var _ auth.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL, con los
// repositorios atados a esa transacción.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunLedger abre una transacción con el contador y la tabla de transacciones:
// la asignación del número electrónico y el insert se confirman juntos.
func (r *TxRunner) RunLedger(ctx context.Context, fn func(
	counters repository.TransactionCounterRepository,
	transactions repository.TransactionRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewTransactionCounterRepository(tx), NewTransactionRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunSubscriber abre una transacción para el alta de suscriptores: número de
// cuenta, fila del suscriptor y los dos asientos contables, todo o nada.
func (r *TxRunner) RunSubscriber(ctx context.Context, fn func(
	subscribers repository.SubscriberRepository,
	subscriberCounters repository.SubscriberCounterRepository,
	transactionCounters repository.TransactionCounterRepository,
	transactions repository.TransactionRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = fn(
		NewSubscriberRepository(tx),
		NewSubscriberCounterRepository(tx),
		NewTransactionCounterRepository(tx),
		NewTransactionRepository(tx),
	)
	if err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunRegistration abre una transacción para el registro: la empresa y su
// usuario administrador se crean juntos.
func (r *TxRunner) RunRegistration(ctx context.Context, fn func(
	companies repository.CompanyRepository,
	users repository.UserRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewCompanyRepository(tx), NewUserRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
