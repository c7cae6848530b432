package postgres

import (
	"context"
	"fmt"

	"github.com/tadbeer/tadbeer-api/internal/domain/entity"
	"github.com/tadbeer/tadbeer-api/internal/domain/repository"
)

var _ repository.NotificationRepository = (*NotificationRepo)(nil)

// NotificationRepo implementación del puerto NotificationRepository sobre
// PostgreSQL. Channels se guarda como text[].
type NotificationRepo struct {
	q Querier
}

// NewNotificationRepository construye el adaptador de notificaciones.
func NewNotificationRepository(q Querier) *NotificationRepo {
	return &NotificationRepo{q: q}
}

// GetSetting devuelve nil, nil si la empresa no configuró ese tipo.
func (r *NotificationRepo) GetSetting(ctx context.Context, companyID int64, transactionType string) (*entity.NotificationSetting, error) {
	query := `
		SELECT id, company_id, transaction_type, channels, is_enabled, auto_send,
		       send_to_subscriber, send_to_company, created_at, updated_at
		FROM notification_settings
		WHERE company_id = $1 AND transaction_type = $2`
	s, err := scanNotificationSetting(r.q.QueryRow(ctx, query, companyID, transactionType))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get notification setting: %w", err)
	}
	return s, nil
}

// ListSettings lista la configuración de la empresa.
func (r *NotificationRepo) ListSettings(ctx context.Context, companyID int64) ([]*entity.NotificationSetting, error) {
	query := `
		SELECT id, company_id, transaction_type, channels, is_enabled, auto_send,
		       send_to_subscriber, send_to_company, created_at, updated_at
		FROM notification_settings
		WHERE company_id = $1 ORDER BY transaction_type`
	rows, err := r.q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list notification settings: %w", err)
	}
	defer rows.Close()

	var list []*entity.NotificationSetting
	for rows.Next() {
		s, err := scanNotificationSetting(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification setting: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// UpsertSetting crea o reemplaza la configuración de (empresa, tipo).
func (r *NotificationRepo) UpsertSetting(ctx context.Context, setting *entity.NotificationSetting) error {
	query := `
		INSERT INTO notification_settings (company_id, transaction_type, channels,
			is_enabled, auto_send, send_to_subscriber, send_to_company)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (company_id, transaction_type)
		DO UPDATE SET channels           = EXCLUDED.channels,
		              is_enabled         = EXCLUDED.is_enabled,
		              auto_send          = EXCLUDED.auto_send,
		              send_to_subscriber = EXCLUDED.send_to_subscriber,
		              send_to_company    = EXCLUDED.send_to_company,
		              updated_at         = now()
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		setting.CompanyID, setting.TransactionType, setting.Channels,
		setting.IsEnabled, setting.AutoSend, setting.SendToSubscriber, setting.SendToCompany,
	).Scan(&setting.ID, &setting.CreatedAt, &setting.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert notification setting: %w", err)
	}
	return nil
}

// GetTemplate devuelve nil, nil si la empresa no tiene plantilla propia.
func (r *NotificationRepo) GetTemplate(ctx context.Context, companyID int64, transactionType, channel string) (*entity.MessageTemplate, error) {
	query := `
		SELECT id, company_id, transaction_type, channel, COALESCE(subject, ''), content,
		       created_at, updated_at
		FROM message_templates
		WHERE company_id = $1 AND transaction_type = $2 AND channel = $3`
	var t entity.MessageTemplate
	err := r.q.QueryRow(ctx, query, companyID, transactionType, channel).Scan(
		&t.ID, &t.CompanyID, &t.TransactionType, &t.Channel, &t.Subject, &t.Content,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get message template: %w", err)
	}
	return &t, nil
}

// SaveLog registra un intento de entrega y completa su ID.
func (r *NotificationRepo) SaveLog(ctx context.Context, log *entity.NotificationLog) error {
	query := `
		INSERT INTO notification_logs (company_id, transaction_id, channel, recipient,
			subject, content, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		log.CompanyID, log.TransactionID, log.Channel, log.Recipient,
		nullIfEmpty(log.Subject), log.Content, log.Status,
	).Scan(&log.ID, &log.CreatedAt, &log.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert notification log: %w", err)
	}
	return nil
}

// UpdateLogStatus fija el resultado de la entrega.
func (r *NotificationRepo) UpdateLogStatus(ctx context.Context, logID int64, status, providerMsgID, errorMessage string) error {
	_, err := r.q.Exec(ctx, `
		UPDATE notification_logs
		SET status = $2, provider_msg_id = $3, error_message = $4, updated_at = now()
		WHERE id = $1`,
		logID, status, nullIfEmpty(providerMsgID), nullIfEmpty(errorMessage),
	)
	if err != nil {
		return fmt.Errorf("update notification log: %w", err)
	}
	return nil
}

// ListLogsByCompany lista la bitácora de entregas, más recientes primero.
func (r *NotificationRepo) ListLogsByCompany(ctx context.Context, companyID int64, limit, offset int) ([]*entity.NotificationLog, error) {
	query := `
		SELECT id, company_id, transaction_id, channel, recipient,
		       COALESCE(subject, ''), content, status,
		       COALESCE(provider_msg_id, ''), COALESCE(error_message, ''),
		       created_at, updated_at
		FROM notification_logs
		WHERE company_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list notification logs: %w", err)
	}
	defer rows.Close()

	var list []*entity.NotificationLog
	for rows.Next() {
		var l entity.NotificationLog
		err := rows.Scan(
			&l.ID, &l.CompanyID, &l.TransactionID, &l.Channel, &l.Recipient,
			&l.Subject, &l.Content, &l.Status, &l.ProviderMsgID, &l.ErrorMessage,
			&l.CreatedAt, &l.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan notification log: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

func scanNotificationSetting(row rowScanner) (*entity.NotificationSetting, error) {
	var s entity.NotificationSetting
	err := row.Scan(
		&s.ID, &s.CompanyID, &s.TransactionType, &s.Channels, &s.IsEnabled,
		&s.AutoSend, &s.SendToSubscriber, &s.SendToCompany, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
