package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tadbeer/tadbeer-api/internal/domain/entity"
	"github.com/tadbeer/tadbeer-api/internal/domain/repository"
)

var _ repository.AdminLogRepository = (*AdminLogRepo)(nil)

// AdminLogRepo implementación del puerto AdminLogRepository sobre PostgreSQL.
// Metadata se guarda como JSONB.
type AdminLogRepo struct {
	q Querier
}

// NewAdminLogRepository construye el adaptador de la bitácora administrativa.
func NewAdminLogRepository(q Querier) *AdminLogRepo {
	return &AdminLogRepo{q: q}
}

// Create registra una acción administrativa.
func (r *AdminLogRepo) Create(ctx context.Context, log *entity.AdminLog) error {
	var metadata []byte
	if log.Metadata != nil {
		var err error
		metadata, err = json.Marshal(log.Metadata)
		if err != nil {
			return fmt.Errorf("marshal admin log metadata: %w", err)
		}
	}
	query := `
		INSERT INTO admin_activity_logs (company_id, admin_user_id, action_type,
			description, affected_user_id, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	err := r.q.QueryRow(ctx, query,
		log.CompanyID, log.AdminUserID, log.ActionType,
		log.Description, log.AffectedUserID, metadata,
	).Scan(&log.ID, &log.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert admin log: %w", err)
	}
	return nil
}

// List devuelve la bitácora con los joins de presentación, más recientes primero.
func (r *AdminLogRepo) List(ctx context.Context, limit, offset int) ([]*entity.AdminLog, error) {
	query := `
		SELECT l.id, l.company_id, l.admin_user_id, l.action_type, l.description,
		       l.affected_user_id, l.metadata,
		       COALESCE(u.name, ''), COALESCE(u.email, ''), COALESCE(c.name, ''),
		       l.created_at
		FROM admin_activity_logs l
		LEFT JOIN users u ON u.id = l.admin_user_id
		LEFT JOIN companies c ON c.id = l.company_id
		ORDER BY l.created_at DESC, l.id DESC
		LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list admin logs: %w", err)
	}
	defer rows.Close()

	var list []*entity.AdminLog
	for rows.Next() {
		var l entity.AdminLog
		var metadata []byte
		err := rows.Scan(
			&l.ID, &l.CompanyID, &l.AdminUserID, &l.ActionType, &l.Description,
			&l.AffectedUserID, &metadata,
			&l.AdminName, &l.AdminEmail, &l.CompanyName, &l.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan admin log: %w", err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &l.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal admin log metadata: %w", err)
			}
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
