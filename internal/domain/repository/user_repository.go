package repository

import (
	"context"
	"time"

	"github.com/tadbeer/tadbeer-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	ListByCompany(ctx context.Context, companyID int64, limit, offset int) ([]*entity.User, error)
	// CountActiveByCompany cuenta usuarios activos del tenant (para el límite max_users).
	CountActiveByCompany(ctx context.Context, companyID int64) (int, error)
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) (bool, error)
	SetResetToken(ctx context.Context, email, token string, expires time.Time) (bool, error)
	GetByResetToken(ctx context.Context, token string) (*entity.User, error)
	ClearResetToken(ctx context.Context, userID int64) error
}

// AccessGrantRepository define el puerto para la relación de acceso secundario
// usuario ↔ empresa (más allá de la empresa primaria).
type AccessGrantRepository interface {
	// HasActiveGrant indica si existe un grant activo para (userID, companyID).
	HasActiveGrant(ctx context.Context, userID, companyID int64) (bool, error)
	ListByUser(ctx context.Context, userID int64) ([]*entity.CompanyAccessGrant, error)
	Create(ctx context.Context, grant *entity.CompanyAccessGrant) error
}
