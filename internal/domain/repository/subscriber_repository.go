package repository

import (
	"context"

	"github.com/tadbeer/tadbeer-api/internal/domain/entity"
)

// SubscriberRepository define el puerto de persistencia para Subscriber.
// Toda operación de escritura incluye companyID en el WHERE: una actualización
// cruzada entre tenants es estructuralmente imposible.
type SubscriberRepository interface {
	// Create inserta el suscriptor y completa ID/CreatedAt. Devuelve
	// domain.ErrDuplicate si (company_id, account_number) ya existe.
	Create(ctx context.Context, sub *entity.Subscriber) error
	// GetByID devuelve nil, nil si no existe en ese tenant.
	GetByID(ctx context.Context, id, companyID int64) (*entity.Subscriber, error)
	GetByAccountNumber(ctx context.Context, companyID int64, accountNumber string) (*entity.Subscriber, error)
	ListByCompany(ctx context.Context, companyID int64, limit, offset int) ([]*entity.Subscriber, error)
	// Update devuelve false si no hay fila (id, company_id).
	Update(ctx context.Context, sub *entity.Subscriber) (bool, error)
	// Deactivate es la baja lógica (is_active = false).
	Deactivate(ctx context.Context, id, companyID int64) (bool, error)
}
