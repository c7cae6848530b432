package ledger

import (
	"context"

	"github.com/tadbeer/tadbeer-api/internal/domain/entity"
	"github.com/tadbeer/tadbeer-api/internal/domain/repository"
)

// TxRunner ejecuta una función con los repos de contadores y transacciones
// atados a una misma transacción de base de datos. La asignación del número
// electrónico y el insert de la fila son una sola unidad atómica: si fn
// retorna error (o el contexto se cancela a mitad), el incremento del
// contador se revierte junto con todo lo demás.
type TxRunner interface {
	RunLedger(ctx context.Context, fn func(
		counters repository.TransactionCounterRepository,
		transactions repository.TransactionRepository,
	) error) error
}

// Gate decide si una operación mutadora está permitida por la suscripción del
// tenant. Lo implementa subscription.Gate; la interfaz evita acoplar el ledger
// a ese paquete.
type Gate interface {
	CheckLimits(ctx context.Context, companyID int64, operation string) (allowed bool, reason string, err error)
}

// Notifier recibe la transacción ya confirmada para despachar notificaciones.
// El contrato es fire-and-forget: la implementación no debe bloquear ni
// propagar fallos al flujo de creación.
type Notifier interface {
	TransactionCreated(tx *entity.Transaction)
}
