package auth

import (
	"context"

	"github.com/tadbeer/tadbeer-api/internal/domain/repository"
)

// TxRunner ejecuta fn en una transacción de base de datos: la empresa y su
// usuario administrador se crean juntos o no se crea ninguno.
type TxRunner interface {
	RunRegistration(ctx context.Context, fn func(
		companies repository.CompanyRepository,
		users repository.UserRepository,
	) error) error
}

// Gate decide si la suscripción de la empresa permite la operación
// (aquí: add_user al dar de alta usuarios).
type Gate interface {
	CheckLimits(ctx context.Context, companyID int64, operation string) (allowed bool, reason string, err error)
}
