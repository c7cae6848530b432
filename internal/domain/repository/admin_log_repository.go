package repository

import (
	"context"

	"github.com/tadbeer/tadbeer-api/internal/domain/entity"
)

// AdminLogRepository define el puerto para la bitácora administrativa
// (append-only: solo Create y lectura para el listado del panel).
type AdminLogRepository interface {
	Create(ctx context.Context, log *entity.AdminLog) error
	List(ctx context.Context, limit, offset int) ([]*entity.AdminLog, error)
}
