package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tadbeer/tadbeer-api/internal/application/dto"
	"github.com/tadbeer/tadbeer-api/internal/domain"
	"github.com/tadbeer/tadbeer-api/internal/domain/entity"
	"github.com/tadbeer/tadbeer-api/internal/domain/repository"
	"github.com/tadbeer/tadbeer-api/pkg/logger"
)

// OpAddTransaction es la operación que se consulta al Subscription Gate antes
// de registrar una transacción.
const OpAddTransaction = "add_transaction"

// maxInsertRetries acota los reintentos del ciclo asignar-insertar ante una
// violación de unicidad en electronic_number. Con el contador atómico no
// debería dispararse; cubre números insertados por cargas externas.
const maxInsertRetries = 3

// DeniedError es el rechazo del Subscription Gate: error de cliente, no del servidor.
type DeniedError struct {
	Reason string
}

func (e *DeniedError) Error() string { return e.Reason }

// UseCase valida, numera y persiste transacciones financieras, y responde
// consultas paginadas y de agregación.
type UseCase struct {
	txRunner     TxRunner
	transactions repository.TransactionRepository
	stats        repository.StatisticsRepository
	gate         Gate
	notifier     Notifier
	log          *logger.Logger
	now          func() time.Time
}

// NewUseCase construye el caso de uso. notifier puede ser nil (sin notificaciones).
func NewUseCase(
	txRunner TxRunner,
	transactions repository.TransactionRepository,
	stats repository.StatisticsRepository,
	gate Gate,
	notifier Notifier,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		txRunner:     txRunner,
		transactions: transactions,
		stats:        stats,
		gate:         gate,
		notifier:     notifier,
		log:          log,
		now:          time.Now,
	}
}

// SetNow reemplaza la fuente de tiempo. Solo para tests.
func (uc *UseCase) SetNow(now func() time.Time) { uc.now = now }

// validate revisa la forma y el rango de los datos de entrada. Devuelve la
// lista de motivos (mensajes visibles al usuario) y los valores ya parseados.
func (uc *UseCase) validate(in dto.CreateTransactionRequest) (amount decimal.Decimal, date time.Time, reasons []string) {
	if in.CompanyID <= 0 {
		reasons = append(reasons, "معرف الشركة مطلوب ويجب أن يكون رقم صالح")
	}
	if strings.TrimSpace(in.TransactionType) == "" {
		reasons = append(reasons, "نوع المعاملة مطلوب ويجب أن يكون نص صالح")
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(in.Amount))
	if err != nil || !amount.IsPositive() {
		reasons = append(reasons, "المبلغ مطلوب ويجب أن يكون رقم موجب")
	}
	if strings.TrimSpace(in.Description) == "" {
		reasons = append(reasons, "وصف المعاملة مطلوب")
	}
	date, err = parseDate(in.TransactionDate)
	if err != nil {
		reasons = append(reasons, "تاريخ المعاملة مطلوب ويجب أن يكون تاريخ صالح")
	}
	return amount, date, reasons
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// CreateTransaction valida, consulta el gate, asigna el número electrónico y
// persiste la transacción — asignación e insert en una sola transacción de
// base de datos. La validación ocurre antes de tocar el contador: una entrada
// rechazada jamás incrementa una secuencia.
func (uc *UseCase) CreateTransaction(ctx context.Context, in dto.CreateTransactionRequest, actingUserID int64) (*entity.Transaction, error) {
	amount, date, reasons := uc.validate(in)
	if len(reasons) > 0 {
		return nil, domain.NewValidationError(reasons)
	}

	allowed, reason, err := uc.gate.CheckLimits(ctx, in.CompanyID, OpAddTransaction)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, &DeniedError{Reason: reason}
	}

	year := uc.now().Year()
	prefix := entity.TypePrefix(in.TransactionType)

	tx := &entity.Transaction{
		CompanyID:       in.CompanyID,
		TransactionType: strings.TrimSpace(in.TransactionType),
		Amount:          amount,
		Description:     strings.TrimSpace(in.Description),
		ReferenceNumber: strings.TrimSpace(in.ReferenceNumber),
		TransactionDate: date,
		CreatedBy:       actingUserID,
		AssignedTo:      in.AssignedTo,
	}

	for attempt := 1; ; attempt++ {
		err = uc.txRunner.RunLedger(ctx, func(
			counters repository.TransactionCounterRepository,
			transactions repository.TransactionRepository,
		) error {
			seq, storedPrefix, err := counters.Next(ctx, tx.CompanyID, year, tx.TransactionType, prefix)
			if err != nil {
				return err
			}
			tx.ElectronicNumber = entity.FormatElectronicNumber(storedPrefix, year, seq)
			return transactions.Create(ctx, tx)
		})
		if err == nil {
			break
		}
		if errors.Is(err, domain.ErrDuplicate) && attempt < maxInsertRetries {
			uc.log.Warn().
				Int64("company_id", tx.CompanyID).
				Str("electronic_number", tx.ElectronicNumber).
				Int("attempt", attempt).
				Msg("número electrónico duplicado, reintentando asignación")
			continue
		}
		return nil, err
	}

	// La notificación es posterior al commit y jamás afecta el resultado.
	if uc.notifier != nil {
		uc.notifier.TransactionCreated(tx)
	}
	return tx, nil
}

// ListByCompany devuelve las transacciones del tenant, más recientes primero.
// Una página vacía es un resultado normal, no un error.
func (uc *UseCase) ListByCompany(ctx context.Context, companyID int64, page dto.PageRequest) ([]*entity.Transaction, error) {
	page.DefaultPage()
	list, err := uc.transactions.ListByCompany(ctx, companyID, page.Limit, page.Offset())
	if err != nil {
		return nil, err
	}
	return list, nil
}

// GetByElectronicNumber busca por número exacto dentro del tenant.
// Devuelve nil, nil si no existe: "no encontrada" es un resultado, no un fallo.
func (uc *UseCase) GetByElectronicNumber(ctx context.Context, companyID int64, electronicNumber string) (*entity.Transaction, error) {
	if strings.TrimSpace(electronicNumber) == "" {
		return nil, domain.NewValidationError([]string{"الرقم الإلكتروني غير صالح"})
	}
	return uc.transactions.GetByElectronicNumber(ctx, companyID, electronicNumber)
}

// Statistics agrega las transacciones del tenant en el año dado
// (0 = año calendario actual). Solo lectura.
func (uc *UseCase) Statistics(ctx context.Context, companyID int64, year int) (*repository.CompanyYearStats, error) {
	if year == 0 {
		year = uc.now().Year()
	}
	return uc.stats.CompanyYearStats(ctx, companyID, year)
}

// UpdateDetails muta únicamente description y reference_number. Monto, tipo y
// numeración son inmutables tras persistir (integridad financiera).
func (uc *UseCase) UpdateDetails(ctx context.Context, id, companyID int64, in dto.UpdateTransactionRequest) error {
	if in.Description == nil && in.ReferenceNumber == nil {
		return domain.NewValidationError([]string{"لا توجد حقول صالحة للتحديث"})
	}
	if in.Description != nil && strings.TrimSpace(*in.Description) == "" {
		return domain.NewValidationError([]string{"وصف المعاملة مطلوب"})
	}
	updated, err := uc.transactions.UpdateDetails(ctx, id, companyID, in.Description, in.ReferenceNumber)
	if err != nil {
		return err
	}
	if !updated {
		return domain.ErrNotFound
	}
	return nil
}
