package repository

import (
	"context"

	"github.com/tadbeer/tadbeer-api/internal/domain/entity"
)

// NotificationRepository define el puerto para configuración, plantillas y
// bitácora de entregas de notificaciones.
type NotificationRepository interface {
	// GetSetting devuelve nil, nil si la empresa no configuró ese tipo.
	GetSetting(ctx context.Context, companyID int64, transactionType string) (*entity.NotificationSetting, error)
	ListSettings(ctx context.Context, companyID int64) ([]*entity.NotificationSetting, error)
	UpsertSetting(ctx context.Context, setting *entity.NotificationSetting) error
	// GetTemplate devuelve nil, nil si no hay plantilla propia (se usa la default).
	GetTemplate(ctx context.Context, companyID int64, transactionType, channel string) (*entity.MessageTemplate, error)
	SaveLog(ctx context.Context, log *entity.NotificationLog) error
	UpdateLogStatus(ctx context.Context, logID int64, status, providerMsgID, errorMessage string) error
	ListLogsByCompany(ctx context.Context, companyID int64, limit, offset int) ([]*entity.NotificationLog, error)
}
