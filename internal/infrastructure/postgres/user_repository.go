package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/tadbeer/tadbeer-api/internal/domain"
	"github.com/tadbeer/tadbeer-api/internal/domain/entity"
	"github.com/tadbeer/tadbeer-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación del puerto UserRepository sobre PostgreSQL
// (usable con pool o tx).
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

const userColumns = `id, company_id, name, email, password_hash, phone, role,
	is_active, reset_token, reset_token_expires_at, created_at, updated_at`

// Create persiste un nuevo usuario y completa ID y timestamps.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (company_id, name, email, password_hash, phone, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		user.CompanyID, user.Name, user.Email, user.PasswordHash,
		nullIfEmpty(user.Phone), user.Role, user.IsActive,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert user: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID obtiene un usuario por ID. Devuelve nil, nil si no existe.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetByEmail obtiene un usuario por email. Devuelve nil, nil si no existe.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(r.q.QueryRow(ctx, query, email))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// ListByCompany lista los usuarios del tenant, paginados.
func (r *UserRepo) ListByCompany(ctx context.Context, companyID int64, limit, offset int) ([]*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		WHERE company_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var list []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// CountActiveByCompany cuenta los usuarios activos del tenant.
func (r *UserRepo) CountActiveByCompany(ctx context.Context, companyID int64) (int, error) {
	var count int
	err := r.q.QueryRow(ctx,
		`SELECT count(*) FROM users WHERE company_id = $1 AND is_active = true`,
		companyID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

// UpdatePassword fija el nuevo hash. Devuelve false si el usuario no existe.
func (r *UserRepo) UpdatePassword(ctx context.Context, userID int64, passwordHash string) (bool, error) {
	cmd, err := r.q.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`,
		userID, passwordHash,
	)
	if err != nil {
		return false, fmt.Errorf("update password: %w", err)
	}
	return cmd.RowsAffected() > 0, nil
}

// SetResetToken guarda el token de restablecimiento. Devuelve false si no hay
// usuario activo con ese email.
func (r *UserRepo) SetResetToken(ctx context.Context, email, token string, expires time.Time) (bool, error) {
	cmd, err := r.q.Exec(ctx, `
		UPDATE users
		SET reset_token = $2, reset_token_expires_at = $3, updated_at = now()
		WHERE email = $1 AND is_active = true`,
		email, token, expires,
	)
	if err != nil {
		return false, fmt.Errorf("set reset token: %w", err)
	}
	return cmd.RowsAffected() > 0, nil
}

// GetByResetToken busca por token vigente. Devuelve nil, nil si no existe.
func (r *UserRepo) GetByResetToken(ctx context.Context, token string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE reset_token = $1`
	u, err := scanUser(r.q.QueryRow(ctx, query, token))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by reset token: %w", err)
	}
	return u, nil
}

// ClearResetToken invalida el token tras su uso.
func (r *UserRepo) ClearResetToken(ctx context.Context, userID int64) error {
	_, err := r.q.Exec(ctx, `
		UPDATE users
		SET reset_token = NULL, reset_token_expires_at = NULL, updated_at = now()
		WHERE id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("clear reset token: %w", err)
	}
	return nil
}

func scanUser(row rowScanner) (*entity.User, error) {
	var u entity.User
	var phone, resetToken *string
	err := row.Scan(
		&u.ID, &u.CompanyID, &u.Name, &u.Email, &u.PasswordHash, &phone, &u.Role,
		&u.IsActive, &resetToken, &u.ResetTokenExpires, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if phone != nil {
		u.Phone = *phone
	}
	if resetToken != nil {
		u.ResetToken = *resetToken
	}
	return &u, nil
}
