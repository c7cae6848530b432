package postgres

import (
	"context"
	"fmt"

	"github.com/tadbeer/tadbeer-api/internal/domain"
	"github.com/tadbeer/tadbeer-api/internal/domain/entity"
	"github.com/tadbeer/tadbeer-api/internal/domain/repository"
)

var _ repository.AccessGrantRepository = (*AccessGrantRepo)(nil)

// AccessGrantRepo implementación del puerto AccessGrantRepository sobre PostgreSQL.
type AccessGrantRepo struct {
	q Querier
}

// NewAccessGrantRepository construye el adaptador para los accesos secundarios.
func NewAccessGrantRepository(q Querier) *AccessGrantRepo {
	return &AccessGrantRepo{q: q}
}

// HasActiveGrant responde en O(1) vía índice sobre (user_id, company_id).
func (r *AccessGrantRepo) HasActiveGrant(ctx context.Context, userID, companyID int64) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM user_company_access
			 WHERE user_id    = $1
			   AND company_id = $2
			   AND is_active  = true
		)`
	var ok bool
	if err := r.q.QueryRow(ctx, query, userID, companyID).Scan(&ok); err != nil {
		return false, fmt.Errorf("check access grant: %w", err)
	}
	return ok, nil
}

// ListByUser lista los grants del usuario (activos e inactivos).
func (r *AccessGrantRepo) ListByUser(ctx context.Context, userID int64) ([]*entity.CompanyAccessGrant, error) {
	query := `
		SELECT id, user_id, company_id, role, is_active, created_at
		FROM user_company_access WHERE user_id = $1 ORDER BY created_at`
	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list access grants: %w", err)
	}
	defer rows.Close()

	var list []*entity.CompanyAccessGrant
	for rows.Next() {
		var g entity.CompanyAccessGrant
		if err := rows.Scan(&g.ID, &g.UserID, &g.CompanyID, &g.Role, &g.IsActive, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan access grant: %w", err)
		}
		list = append(list, &g)
	}
	return list, rows.Err()
}

// Create persiste un grant nuevo.
func (r *AccessGrantRepo) Create(ctx context.Context, grant *entity.CompanyAccessGrant) error {
	query := `
		INSERT INTO user_company_access (user_id, company_id, role, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	err := r.q.QueryRow(ctx, query,
		grant.UserID, grant.CompanyID, grant.Role, grant.IsActive,
	).Scan(&grant.ID, &grant.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert access grant: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("insert access grant: %w", err)
	}
	return nil
}
