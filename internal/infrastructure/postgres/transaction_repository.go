package postgres

import (
	"context"
	"fmt"

	"github.com/tadbeer/tadbeer-api/internal/domain"
	"github.com/tadbeer/tadbeer-api/internal/domain/entity"
	"github.com/tadbeer/tadbeer-api/internal/domain/repository"
)

var _ repository.TransactionCounterRepository = (*TransactionCounterRepo)(nil)
var _ repository.SubscriberCounterRepository = (*SubscriberCounterRepo)(nil)
var _ repository.TransactionRepository = (*TransactionRepo)(nil)

// TransactionCounterRepo implementación del contador por (empresa, año, tipo)
// sobre PostgreSQL (usable con pool o tx).
type TransactionCounterRepo struct {
	q Querier
}

// NewTransactionCounterRepository construye el adaptador del contador.
func NewTransactionCounterRepository(q Querier) *TransactionCounterRepo {
	return &TransactionCounterRepo{q: q}
}

// Next asigna la siguiente secuencia en una sola sentencia atómica: el upsert
// crea la fila en 1 o la incrementa bajo el bloqueo de fila del UPDATE. Dos
// llamadas concurrentes jamás reciben el mismo número. El prefijo persistido
// en la primera asignación es el que vale para siempre.
func (r *TransactionCounterRepo) Next(ctx context.Context, companyID int64, year int, transactionType, prefix string) (int64, string, error) {
	const query = `
		INSERT INTO transaction_counters (company_id, year, transaction_type, prefix, current_number)
		VALUES ($1, $2, $3, $4, 1)
		ON CONFLICT (company_id, year, transaction_type)
		DO UPDATE SET current_number = transaction_counters.current_number + 1,
		              updated_at     = now()
		RETURNING current_number, prefix`
	var sequence int64
	var storedPrefix string
	err := r.q.QueryRow(ctx, query, companyID, year, transactionType, prefix).
		Scan(&sequence, &storedPrefix)
	if err != nil {
		return 0, "", fmt.Errorf("next transaction number: %w", err)
	}
	return sequence, storedPrefix, nil
}

// Current devuelve la última secuencia asignada, 0 si el contador no existe.
func (r *TransactionCounterRepo) Current(ctx context.Context, companyID int64, year int, transactionType string) (int64, error) {
	var current int64
	err := r.q.QueryRow(ctx, `
		SELECT current_number FROM transaction_counters
		WHERE company_id = $1 AND year = $2 AND transaction_type = $3`,
		companyID, year, transactionType,
	).Scan(&current)
	if err != nil {
		if isNoRows(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("get counter: %w", err)
	}
	return current, nil
}

// SubscriberCounterRepo implementación del contador de números de cuenta por
// empresa, con el mismo upsert atómico que el contador de transacciones.
type SubscriberCounterRepo struct {
	q Querier
}

// NewSubscriberCounterRepository construye el adaptador del contador de suscriptores.
func NewSubscriberCounterRepository(q Querier) *SubscriberCounterRepo {
	return &SubscriberCounterRepo{q: q}
}

// Next asigna la siguiente secuencia de cuenta de la empresa.
func (r *SubscriberCounterRepo) Next(ctx context.Context, companyID int64) (int64, error) {
	const query = `
		INSERT INTO subscriber_counters (company_id, current_number)
		VALUES ($1, 1)
		ON CONFLICT (company_id)
		DO UPDATE SET current_number = subscriber_counters.current_number + 1,
		              updated_at     = now()
		RETURNING current_number`
	var sequence int64
	if err := r.q.QueryRow(ctx, query, companyID).Scan(&sequence); err != nil {
		return 0, fmt.Errorf("next subscriber number: %w", err)
	}
	return sequence, nil
}

// TransactionRepo implementación del puerto TransactionRepository sobre
// PostgreSQL (usable con pool o tx).
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador de persistencia para transacciones.
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

// Create persiste la transacción. Devuelve domain.ErrDuplicate si
// (company_id, electronic_number) ya existe.
func (r *TransactionRepo) Create(ctx context.Context, tx *entity.Transaction) error {
	query := `
		INSERT INTO transactions (company_id, electronic_number, transaction_type,
			amount, description, reference_number, transaction_date, created_by, assigned_to)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		tx.CompanyID, tx.ElectronicNumber, tx.TransactionType,
		tx.Amount, tx.Description, nullIfEmpty(tx.ReferenceNumber),
		tx.TransactionDate, tx.CreatedBy, tx.AssignedTo,
	).Scan(&tx.ID, &tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert transaction %s: %w", tx.ElectronicNumber, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

const transactionColumns = `t.id, t.company_id, t.electronic_number, t.transaction_type,
	t.amount, t.description, t.reference_number, t.transaction_date,
	t.created_by, t.assigned_to, COALESCE(u.name, ''), t.created_at, t.updated_at`

// ListByCompany lista las transacciones del tenant, más recientes primero.
func (r *TransactionRepo) ListByCompany(ctx context.Context, companyID int64, limit, offset int) ([]*entity.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions t
		LEFT JOIN users u ON u.id = t.created_by
		WHERE t.company_id = $1
		ORDER BY t.created_at DESC, t.id DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var list []*entity.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		list = append(list, tx)
	}
	return list, rows.Err()
}

// GetByElectronicNumber busca por número exacto dentro del tenant.
// Devuelve nil, nil si no existe.
func (r *TransactionRepo) GetByElectronicNumber(ctx context.Context, companyID int64, electronicNumber string) (*entity.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions t
		LEFT JOIN users u ON u.id = t.created_by
		WHERE t.company_id = $1 AND t.electronic_number = $2`
	tx, err := scanTransaction(r.q.QueryRow(ctx, query, companyID, electronicNumber))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

// UpdateDetails muta description y/o reference_number. Los punteros nil dejan
// la columna intacta. Devuelve false si no hay fila (id, company_id).
func (r *TransactionRepo) UpdateDetails(ctx context.Context, id, companyID int64, description, referenceNumber *string) (bool, error) {
	query := `
		UPDATE transactions
		SET description      = COALESCE($3, description),
		    reference_number = COALESCE($4, reference_number),
		    updated_at       = now()
		WHERE id = $1 AND company_id = $2`
	cmd, err := r.q.Exec(ctx, query, id, companyID, description, referenceNumber)
	if err != nil {
		return false, fmt.Errorf("update transaction: %w", err)
	}
	return cmd.RowsAffected() > 0, nil
}

func scanTransaction(row rowScanner) (*entity.Transaction, error) {
	var tx entity.Transaction
	var reference *string
	err := row.Scan(
		&tx.ID, &tx.CompanyID, &tx.ElectronicNumber, &tx.TransactionType,
		&tx.Amount, &tx.Description, &reference, &tx.TransactionDate,
		&tx.CreatedBy, &tx.AssignedTo, &tx.CreatedByName, &tx.CreatedAt, &tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if reference != nil {
		tx.ReferenceNumber = *reference
	}
	return &tx, nil
}
