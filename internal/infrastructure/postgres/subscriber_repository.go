package postgres

import (
	"context"
	"fmt"

	"github.com/tadbeer/tadbeer-api/internal/domain"
	"github.com/tadbeer/tadbeer-api/internal/domain/entity"
	"github.com/tadbeer/tadbeer-api/internal/domain/repository"
)

var _ repository.SubscriberRepository = (*SubscriberRepo)(nil)

// SubscriberRepo implementación del puerto SubscriberRepository sobre
// PostgreSQL (usable con pool o tx). Toda sentencia incluye company_id en el
// WHERE: el aislamiento entre tenants se impone en el SQL.
type SubscriberRepo struct {
	q Querier
}

// NewSubscriberRepository construye el adaptador de persistencia para suscriptores.
func NewSubscriberRepository(q Querier) *SubscriberRepo {
	return &SubscriberRepo{q: q}
}

const subscriberColumns = `id, company_id, account_number, full_name, address, phone,
	business_type, meter_system_type, tariff_type, tariff_group, id_card_number,
	photo_path, property_ownership, connection_amount, is_active, created_by,
	created_at, updated_at`

// Create persiste el suscriptor. Devuelve domain.ErrDuplicate si
// (company_id, account_number) ya existe.
func (r *SubscriberRepo) Create(ctx context.Context, sub *entity.Subscriber) error {
	query := `
		INSERT INTO subscribers (company_id, account_number, full_name, address, phone,
			business_type, meter_system_type, tariff_type, tariff_group, id_card_number,
			photo_path, property_ownership, connection_amount, is_active, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		sub.CompanyID, sub.AccountNumber, sub.FullName,
		nullIfEmpty(sub.Address), nullIfEmpty(sub.Phone),
		nullIfEmpty(sub.BusinessType), nullIfEmpty(sub.MeterSystemType),
		nullIfEmpty(sub.TariffType), nullIfEmpty(sub.TariffGroup),
		nullIfEmpty(sub.IDCardNumber), nullIfEmpty(sub.PhotoPath),
		nullIfEmpty(sub.PropertyOwnership), sub.ConnectionAmount,
		sub.IsActive, sub.CreatedBy,
	).Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert subscriber %s: %w", sub.AccountNumber, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert subscriber: %w", err)
	}
	return nil
}

// GetByID busca dentro del tenant. Devuelve nil, nil si no existe.
func (r *SubscriberRepo) GetByID(ctx context.Context, id, companyID int64) (*entity.Subscriber, error) {
	query := `SELECT ` + subscriberColumns + ` FROM subscribers
		WHERE id = $1 AND company_id = $2`
	sub, err := scanSubscriber(r.q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get subscriber: %w", err)
	}
	return sub, nil
}

// GetByAccountNumber busca por número de cuenta exacto dentro del tenant.
func (r *SubscriberRepo) GetByAccountNumber(ctx context.Context, companyID int64, accountNumber string) (*entity.Subscriber, error) {
	query := `SELECT ` + subscriberColumns + ` FROM subscribers
		WHERE company_id = $1 AND account_number = $2`
	sub, err := scanSubscriber(r.q.QueryRow(ctx, query, companyID, accountNumber))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get subscriber by account: %w", err)
	}
	return sub, nil
}

// ListByCompany lista los suscriptores del tenant, más recientes primero.
func (r *SubscriberRepo) ListByCompany(ctx context.Context, companyID int64, limit, offset int) ([]*entity.Subscriber, error) {
	query := `SELECT ` + subscriberColumns + ` FROM subscribers
		WHERE company_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	defer rows.Close()

	var list []*entity.Subscriber
	for rows.Next() {
		sub, err := scanSubscriber(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		list = append(list, sub)
	}
	return list, rows.Err()
}

// Update muta los campos editables. account_number y connection_amount no se
// tocan. Devuelve false si no hay fila (id, company_id).
func (r *SubscriberRepo) Update(ctx context.Context, sub *entity.Subscriber) (bool, error) {
	query := `
		UPDATE subscribers
		SET full_name          = $3,
		    address            = $4,
		    phone              = $5,
		    business_type      = $6,
		    meter_system_type  = $7,
		    tariff_type        = $8,
		    tariff_group       = $9,
		    id_card_number     = $10,
		    photo_path         = $11,
		    property_ownership = $12,
		    updated_at         = now()
		WHERE id = $1 AND company_id = $2`
	cmd, err := r.q.Exec(ctx, query,
		sub.ID, sub.CompanyID, sub.FullName,
		nullIfEmpty(sub.Address), nullIfEmpty(sub.Phone),
		nullIfEmpty(sub.BusinessType), nullIfEmpty(sub.MeterSystemType),
		nullIfEmpty(sub.TariffType), nullIfEmpty(sub.TariffGroup),
		nullIfEmpty(sub.IDCardNumber), nullIfEmpty(sub.PhotoPath),
		nullIfEmpty(sub.PropertyOwnership),
	)
	if err != nil {
		return false, fmt.Errorf("update subscriber: %w", err)
	}
	return cmd.RowsAffected() > 0, nil
}

// Deactivate es la baja lógica; la fila permanece.
func (r *SubscriberRepo) Deactivate(ctx context.Context, id, companyID int64) (bool, error) {
	cmd, err := r.q.Exec(ctx, `
		UPDATE subscribers SET is_active = false, updated_at = now()
		WHERE id = $1 AND company_id = $2`,
		id, companyID,
	)
	if err != nil {
		return false, fmt.Errorf("deactivate subscriber: %w", err)
	}
	return cmd.RowsAffected() > 0, nil
}

func scanSubscriber(row rowScanner) (*entity.Subscriber, error) {
	var s entity.Subscriber
	var address, phone, businessType, meterType, tariffType, tariffGroup *string
	var idCard, photoPath, ownership *string
	err := row.Scan(
		&s.ID, &s.CompanyID, &s.AccountNumber, &s.FullName, &address, &phone,
		&businessType, &meterType, &tariffType, &tariffGroup, &idCard,
		&photoPath, &ownership, &s.ConnectionAmount, &s.IsActive, &s.CreatedBy,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	for dst, src := range map[*string]*string{
		&s.Address: address, &s.Phone: phone, &s.BusinessType: businessType,
		&s.MeterSystemType: meterType, &s.TariffType: tariffType,
		&s.TariffGroup: tariffGroup, &s.IDCardNumber: idCard,
		&s.PhotoPath: photoPath, &s.PropertyOwnership: ownership,
	} {
		if src != nil {
			*dst = *src
		}
	}
	return &s, nil
}
