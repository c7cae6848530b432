package subscriber

import (
	"context"

	"github.com/tadbeer/tadbeer-api/internal/domain/entity"
	"github.com/tadbeer/tadbeer-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una única transacción de base de datos, con
// los cuatro repositorios ligados a la misma conexión: el suscriptor, su
// número de cuenta y los dos asientos contables se confirman juntos o no se
// confirma nada.
type TxRunner interface {
	RunSubscriber(ctx context.Context, fn func(
		subscribers repository.SubscriberRepository,
		subscriberCounters repository.SubscriberCounterRepository,
		transactionCounters repository.TransactionCounterRepository,
		transactions repository.TransactionRepository,
	) error) error
}

// Gate decide si la suscripción de la empresa permite la operación.
type Gate interface {
	CheckLimits(ctx context.Context, companyID int64, operation string) (allowed bool, reason string, err error)
}

// Notifier recibe los asientos generados por el registro. Fire-and-forget.
type Notifier interface {
	TransactionCreated(tx *entity.Transaction)
}
