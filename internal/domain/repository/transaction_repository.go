package repository

import (
	"context"

	"github.com/tadbeer/tadbeer-api/internal/domain/entity"
)

// TransactionCounterRepository asigna secuencias por (empresa, año, tipo).
type TransactionCounterRepository interface {
	// Next incrementa y devuelve la siguiente secuencia del contador junto con
	// el prefijo almacenado. La fila se crea con prefix en la primera llamada;
	// llamadas posteriores conservan el prefijo original. La implementación
	// debe ser un read-modify-write atómico: dos llamadas concurrentes sobre
	// la misma clave nunca ven la misma secuencia.
	Next(ctx context.Context, companyID int64, year int, transactionType, prefix string) (sequence int64, storedPrefix string, err error)
	// Current devuelve la secuencia actual sin incrementarla (0 si no hay fila).
	Current(ctx context.Context, companyID int64, year int, transactionType string) (int64, error)
}

// SubscriberCounterRepository asigna la secuencia de números de cuenta por empresa.
type SubscriberCounterRepository interface {
	Next(ctx context.Context, companyID int64) (int64, error)
}

// TransactionRepository define el puerto de persistencia para Transaction.
type TransactionRepository interface {
	// Create inserta la transacción y completa ID/CreatedAt. Devuelve
	// domain.ErrDuplicate si (company_id, electronic_number) ya existe.
	Create(ctx context.Context, tx *entity.Transaction) error
	ListByCompany(ctx context.Context, companyID int64, limit, offset int) ([]*entity.Transaction, error)
	// GetByElectronicNumber devuelve nil, nil si no existe (no es un error).
	GetByElectronicNumber(ctx context.Context, companyID int64, electronicNumber string) (*entity.Transaction, error)
	// UpdateDetails actualiza solo description/reference_number (nil = no tocar).
	// Devuelve false si la transacción no existe en ese tenant.
	UpdateDetails(ctx context.Context, id, companyID int64, description, referenceNumber *string) (bool, error)
}
