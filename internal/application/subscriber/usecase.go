package subscriber

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tadbeer/tadbeer-api/internal/application/dto"
	"github.com/tadbeer/tadbeer-api/internal/domain"
	"github.com/tadbeer/tadbeer-api/internal/domain/entity"
	"github.com/tadbeer/tadbeer-api/internal/domain/repository"
	"github.com/tadbeer/tadbeer-api/pkg/logger"
)

// OpAddSubscriber es la operación consultada al Subscription Gate. No tiene
// límite numérico propio: el gate la deja pasar salvo suscripción suspendida
// o vencida.
const OpAddSubscriber = "add_subscriber"

const maxInsertRetries = 3

var phonePattern = regexp.MustCompile(`^\+?[0-9\-\s]{6,15}$`)

// DeniedError es el rechazo del Subscription Gate.
type DeniedError struct {
	Reason string
}

func (e *DeniedError) Error() string { return e.Reason }

// UseCase administra el registro de suscriptores. Un alta con monto de
// conexión positivo produce además dos asientos contables emparejados
// (connection_revenue y cash_receipt) en la misma transacción de base de datos.
type UseCase struct {
	txRunner    TxRunner
	subscribers repository.SubscriberRepository
	gate        Gate
	notifier    Notifier
	log         *logger.Logger
	now         func() time.Time
}

// NewUseCase construye el caso de uso. notifier puede ser nil.
func NewUseCase(
	txRunner TxRunner,
	subscribers repository.SubscriberRepository,
	gate Gate,
	notifier Notifier,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		txRunner:    txRunner,
		subscribers: subscribers,
		gate:        gate,
		notifier:    notifier,
		log:         log,
		now:         time.Now,
	}
}

// SetNow reemplaza la fuente de tiempo. Solo para tests.
func (uc *UseCase) SetNow(now func() time.Time) { uc.now = now }

func (uc *UseCase) validate(in dto.CreateSubscriberRequest) (amount decimal.Decimal, reasons []string) {
	if in.CompanyID <= 0 {
		reasons = append(reasons, "معرف الشركة مطلوب ويجب أن يكون رقم صالح")
	}
	if strings.TrimSpace(in.FullName) == "" {
		reasons = append(reasons, "اسم المشترك مطلوب")
	}
	if strings.TrimSpace(in.Address) == "" {
		reasons = append(reasons, "العنوان مطلوب")
	}
	if p := strings.TrimSpace(in.Phone); p == "" {
		reasons = append(reasons, "رقم الهاتف مطلوب")
	} else if !phonePattern.MatchString(p) {
		reasons = append(reasons, "رقم الهاتف غير صالح")
	}
	if o := strings.TrimSpace(in.PropertyOwnership); o != "" && !entity.ValidOwnership(o) {
		reasons = append(reasons, "نوع ملكية العقار يجب أن يكون ملك أو إيجار")
	}
	amount = decimal.Zero
	if s := strings.TrimSpace(in.ConnectionAmount); s != "" {
		parsed, err := decimal.NewFromString(s)
		if err != nil || parsed.IsNegative() {
			reasons = append(reasons, "مبلغ التوصيل يجب أن يكون رقم غير سالب")
		} else {
			amount = parsed
		}
	}
	return amount, reasons
}

// CreateSubscriber valida, asigna el número de cuenta y persiste el suscriptor.
// Si el monto de conexión es positivo genera dos asientos por el mismo monto,
// ambos con reference_number = número de cuenta, dentro de la misma transacción
// que el suscriptor: nunca queda un suscriptor con un solo asiento.
func (uc *UseCase) CreateSubscriber(ctx context.Context, in dto.CreateSubscriberRequest, actingUserID int64) (*entity.Subscriber, []*entity.Transaction, error) {
	amount, reasons := uc.validate(in)
	if len(reasons) > 0 {
		return nil, nil, domain.NewValidationError(reasons)
	}

	allowed, reason, err := uc.gate.CheckLimits(ctx, in.CompanyID, OpAddSubscriber)
	if err != nil {
		return nil, nil, err
	}
	if !allowed {
		return nil, nil, &DeniedError{Reason: reason}
	}

	sub := &entity.Subscriber{
		CompanyID:         in.CompanyID,
		FullName:          strings.TrimSpace(in.FullName),
		Address:           strings.TrimSpace(in.Address),
		Phone:             strings.TrimSpace(in.Phone),
		BusinessType:      strings.TrimSpace(in.BusinessType),
		MeterSystemType:   strings.TrimSpace(in.MeterSystemType),
		TariffType:        strings.TrimSpace(in.TariffType),
		TariffGroup:       strings.TrimSpace(in.TariffGroup),
		IDCardNumber:      strings.TrimSpace(in.IDCardNumber),
		PhotoPath:         strings.TrimSpace(in.PhotoPath),
		PropertyOwnership: strings.TrimSpace(in.PropertyOwnership),
		ConnectionAmount:  amount,
		IsActive:          true,
		CreatedBy:         actingUserID,
	}

	year := uc.now().Year()
	var entries []*entity.Transaction

	for attempt := 1; ; attempt++ {
		entries = entries[:0]
		err = uc.txRunner.RunSubscriber(ctx, func(
			subscribers repository.SubscriberRepository,
			subscriberCounters repository.SubscriberCounterRepository,
			transactionCounters repository.TransactionCounterRepository,
			transactions repository.TransactionRepository,
		) error {
			seq, err := subscriberCounters.Next(ctx, sub.CompanyID)
			if err != nil {
				return err
			}
			sub.AccountNumber = entity.FormatAccountNumber(sub.CompanyID, seq)
			if err := subscribers.Create(ctx, sub); err != nil {
				return err
			}
			if !amount.IsPositive() {
				return nil
			}
			pair := []struct {
				txType      string
				description string
			}{
				{entity.TxTypeConnectionRevenue, fmt.Sprintf("إيراد توصيل للمشترك: %s", sub.FullName)},
				{entity.TxTypeCashReceipt, fmt.Sprintf("سند قبض رسوم توصيل للمشترك: %s", sub.FullName)},
			}
			for _, p := range pair {
				tx := &entity.Transaction{
					CompanyID:       sub.CompanyID,
					TransactionType: p.txType,
					Amount:          amount,
					Description:     p.description,
					ReferenceNumber: sub.AccountNumber,
					TransactionDate: uc.now(),
					CreatedBy:       actingUserID,
					AssignedTo:      in.PaymentAssignedTo,
				}
				seq, prefix, err := transactionCounters.Next(ctx, tx.CompanyID, year, tx.TransactionType, entity.TypePrefix(tx.TransactionType))
				if err != nil {
					return err
				}
				tx.ElectronicNumber = entity.FormatElectronicNumber(prefix, year, seq)
				if err := transactions.Create(ctx, tx); err != nil {
					return err
				}
				entries = append(entries, tx)
			}
			return nil
		})
		if err == nil {
			break
		}
		if errors.Is(err, domain.ErrDuplicate) && attempt < maxInsertRetries {
			uc.log.Warn().
				Int64("company_id", sub.CompanyID).
				Str("account_number", sub.AccountNumber).
				Int("attempt", attempt).
				Msg("número duplicado al registrar suscriptor, reintentando")
			continue
		}
		return nil, nil, err
	}

	if uc.notifier != nil {
		for _, tx := range entries {
			uc.notifier.TransactionCreated(tx)
		}
	}
	return sub, entries, nil
}

// GetByID busca dentro del tenant. Devuelve nil, nil si no existe.
func (uc *UseCase) GetByID(ctx context.Context, id, companyID int64) (*entity.Subscriber, error) {
	return uc.subscribers.GetByID(ctx, id, companyID)
}

// GetByAccountNumber busca por número de cuenta exacto dentro del tenant.
func (uc *UseCase) GetByAccountNumber(ctx context.Context, companyID int64, accountNumber string) (*entity.Subscriber, error) {
	if strings.TrimSpace(accountNumber) == "" {
		return nil, domain.NewValidationError([]string{"رقم الحساب غير صالح"})
	}
	return uc.subscribers.GetByAccountNumber(ctx, companyID, accountNumber)
}

// ListByCompany devuelve los suscriptores del tenant, paginados.
func (uc *UseCase) ListByCompany(ctx context.Context, companyID int64, page dto.PageRequest) ([]*entity.Subscriber, error) {
	page.DefaultPage()
	return uc.subscribers.ListByCompany(ctx, companyID, page.Limit, page.Offset())
}

// UpdateSubscriber muta los datos de contacto y clasificación. El número de
// cuenta y el monto de conexión son inmutables tras el alta.
func (uc *UseCase) UpdateSubscriber(ctx context.Context, id, companyID int64, in dto.UpdateSubscriberRequest) (*entity.Subscriber, error) {
	var reasons []string
	if strings.TrimSpace(in.FullName) == "" {
		reasons = append(reasons, "اسم المشترك مطلوب")
	}
	if strings.TrimSpace(in.Address) == "" {
		reasons = append(reasons, "العنوان مطلوب")
	}
	if p := strings.TrimSpace(in.Phone); p == "" {
		reasons = append(reasons, "رقم الهاتف مطلوب")
	} else if !phonePattern.MatchString(p) {
		reasons = append(reasons, "رقم الهاتف غير صالح")
	}
	if o := strings.TrimSpace(in.PropertyOwnership); o != "" && !entity.ValidOwnership(o) {
		reasons = append(reasons, "نوع ملكية العقار يجب أن يكون ملك أو إيجار")
	}
	if len(reasons) > 0 {
		return nil, domain.NewValidationError(reasons)
	}

	sub, err := uc.subscribers.GetByID(ctx, id, companyID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, domain.ErrNotFound
	}

	sub.FullName = strings.TrimSpace(in.FullName)
	sub.Address = strings.TrimSpace(in.Address)
	sub.Phone = strings.TrimSpace(in.Phone)
	sub.BusinessType = strings.TrimSpace(in.BusinessType)
	sub.MeterSystemType = strings.TrimSpace(in.MeterSystemType)
	sub.TariffType = strings.TrimSpace(in.TariffType)
	sub.TariffGroup = strings.TrimSpace(in.TariffGroup)
	sub.IDCardNumber = strings.TrimSpace(in.IDCardNumber)
	sub.PhotoPath = strings.TrimSpace(in.PhotoPath)
	sub.PropertyOwnership = strings.TrimSpace(in.PropertyOwnership)

	updated, err := uc.subscribers.Update(ctx, sub)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, domain.ErrNotFound
	}
	return sub, nil
}

// DeactivateSubscriber es la baja lógica: la fila y sus asientos permanecen.
func (uc *UseCase) DeactivateSubscriber(ctx context.Context, id, companyID int64) error {
	done, err := uc.subscribers.Deactivate(ctx, id, companyID)
	if err != nil {
		return err
	}
	if !done {
		return domain.ErrNotFound
	}
	return nil
}
