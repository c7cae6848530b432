package postgres

import (
	"context"
	"fmt"

	"github.com/tadbeer/tadbeer-api/internal/domain"
	"github.com/tadbeer/tadbeer-api/internal/domain/entity"
	"github.com/tadbeer/tadbeer-api/internal/domain/repository"
)

// Asegura que CompanyRepo implementa repository.CompanyRepository.
var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo implementación del puerto CompanyRepository sobre PostgreSQL
// (usable con pool o tx).
type CompanyRepo struct {
	q Querier
}

// NewCompanyRepository construye el adaptador de persistencia para empresas.
func NewCompanyRepository(q Querier) *CompanyRepo {
	return &CompanyRepo{q: q}
}

const companyColumns = `id, name, email, phone, address, description,
	subscription_status, subscription_plan, max_users, max_storage_mb,
	subscription_expires_at, created_at, updated_at`

// Create persiste una nueva empresa y completa ID y timestamps.
func (r *CompanyRepo) Create(ctx context.Context, company *entity.Company) error {
	query := `
		INSERT INTO companies (name, email, phone, address, description,
			subscription_status, subscription_plan, max_users, max_storage_mb,
			subscription_expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		company.Name, company.Email, nullIfEmpty(company.Phone),
		nullIfEmpty(company.Address), nullIfEmpty(company.Description),
		company.SubscriptionStatus, company.SubscriptionPlan,
		company.MaxUsers, company.MaxStorageMB, company.SubscriptionExpires,
	).Scan(&company.ID, &company.CreatedAt, &company.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert company: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

// GetByID obtiene una empresa por ID. Devuelve nil, nil si no existe.
func (r *CompanyRepo) GetByID(ctx context.Context, id int64) (*entity.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE id = $1`
	c, err := r.scanCompany(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return c, nil
}

// GetByEmail obtiene una empresa por email. Devuelve nil, nil si no existe.
func (r *CompanyRepo) GetByEmail(ctx context.Context, email string) (*entity.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE email = $1`
	c, err := r.scanCompany(r.q.QueryRow(ctx, query, email))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company by email: %w", err)
	}
	return c, nil
}

// List devuelve empresas con paginación, más recientes primero.
func (r *CompanyRepo) List(ctx context.Context, limit, offset int) ([]*entity.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	var list []*entity.Company
	for rows.Next() {
		c, err := r.scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// UpdateSubscription aplica el cambio de plan/estado/vigencia en una sola
// sentencia. Devuelve false si la empresa no existe.
func (r *CompanyRepo) UpdateSubscription(ctx context.Context, companyID int64, sub repository.SubscriptionUpdate) (bool, error) {
	query := `
		UPDATE companies
		SET subscription_status      = $2,
		    subscription_plan        = $3,
		    max_users                = $4,
		    max_storage_mb           = $5,
		    subscription_expires_at  = $6,
		    updated_at               = now()
		WHERE id = $1`
	var expires any
	if !sub.ExpiresAt.IsZero() {
		expires = sub.ExpiresAt
	}
	cmd, err := r.q.Exec(ctx, query,
		companyID, sub.Status, sub.Plan, sub.MaxUsers, sub.MaxStorageMB, expires,
	)
	if err != nil {
		return false, fmt.Errorf("update subscription: %w", err)
	}
	return cmd.RowsAffected() > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *CompanyRepo) scanCompany(row rowScanner) (*entity.Company, error) {
	var c entity.Company
	var phone, address, description *string
	err := row.Scan(
		&c.ID, &c.Name, &c.Email, &phone, &address, &description,
		&c.SubscriptionStatus, &c.SubscriptionPlan, &c.MaxUsers, &c.MaxStorageMB,
		&c.SubscriptionExpires, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if phone != nil {
		c.Phone = *phone
	}
	if address != nil {
		c.Address = *address
	}
	if description != nil {
		c.Description = *description
	}
	return &c, nil
}
