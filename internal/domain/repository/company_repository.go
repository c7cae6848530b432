package repository

import (
	"context"
	"time"

	"github.com/tadbeer/tadbeer-api/internal/domain/entity"
)

// SubscriptionUpdate agrupa los campos de suscripción que cambia el panel
// administrativo (siempre juntos, nunca parcialmente).
type SubscriptionUpdate struct {
	Status       string
	Plan         string
	MaxUsers     int
	MaxStorageMB int
	ExpiresAt    time.Time
}

// CompanyRepository define el puerto de persistencia para Company (DIP).
// La implementación vive en infrastructure.
type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	GetByID(ctx context.Context, id int64) (*entity.Company, error)
	GetByEmail(ctx context.Context, email string) (*entity.Company, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Company, error)
	UpdateSubscription(ctx context.Context, companyID int64, sub SubscriptionUpdate) (bool, error)
}
