package subscriber_test

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tadbeer/tadbeer-api/internal/application/dto"
	"github.com/tadbeer/tadbeer-api/internal/application/subscriber"
	"github.com/tadbeer/tadbeer-api/internal/domain"
	"github.com/tadbeer/tadbeer-api/internal/domain/entity"
	"github.com/tadbeer/tadbeer-api/internal/domain/repository"
	"github.com/tadbeer/tadbeer-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type fakeSubscribers struct {
	mu     sync.Mutex
	byKey  map[string]*entity.Subscriber // companyID:accountNumber
	nextID int64
}

func newFakeSubscribers() *fakeSubscribers {
	return &fakeSubscribers{byKey: make(map[string]*entity.Subscriber)}
}

func subKey(companyID int64, account string) string {
	return fmt.Sprintf("%d:%s", companyID, account)
}

func (f *fakeSubscribers) Create(_ context.Context, sub *entity.Subscriber) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := subKey(sub.CompanyID, sub.AccountNumber)
	if _, exists := f.byKey[k]; exists {
		return fmt.Errorf("insert subscribers: %w", domain.ErrDuplicate)
	}
	f.nextID++
	sub.ID = f.nextID
	f.byKey[k] = sub
	return nil
}

func (f *fakeSubscribers) GetByID(_ context.Context, id, companyID int64) (*entity.Subscriber, error) {
	for _, s := range f.byKey {
		if s.ID == id && s.CompanyID == companyID {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeSubscribers) GetByAccountNumber(_ context.Context, companyID int64, account string) (*entity.Subscriber, error) {
	s, ok := f.byKey[subKey(companyID, account)]
	if !ok {
		return nil, nil
	}
	return s, nil
}

func (f *fakeSubscribers) ListByCompany(_ context.Context, companyID int64, limit, offset int) ([]*entity.Subscriber, error) {
	var out []*entity.Subscriber
	for _, s := range f.byKey {
		if s.CompanyID == companyID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSubscribers) Update(_ context.Context, sub *entity.Subscriber) (bool, error) {
	_, ok := f.byKey[subKey(sub.CompanyID, sub.AccountNumber)]
	return ok, nil
}

func (f *fakeSubscribers) Deactivate(_ context.Context, id, companyID int64) (bool, error) {
	for _, s := range f.byKey {
		if s.ID == id && s.CompanyID == companyID {
			s.IsActive = false
			return true, nil
		}
	}
	return false, nil
}

type fakeSubCounters struct {
	mu   sync.Mutex
	seqs map[int64]int64
}

func (f *fakeSubCounters) Next(_ context.Context, companyID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seqs == nil {
		f.seqs = make(map[int64]int64)
	}
	f.seqs[companyID]++
	return f.seqs[companyID], nil
}

type txCounterKey struct {
	companyID int64
	year      int
	txType    string
}

type fakeTxCounters struct {
	seqs map[txCounterKey]int64
}

func (f *fakeTxCounters) Next(_ context.Context, companyID int64, year int, txType, prefix string) (int64, string, error) {
	if f.seqs == nil {
		f.seqs = make(map[txCounterKey]int64)
	}
	k := txCounterKey{companyID, year, txType}
	f.seqs[k]++
	return f.seqs[k], prefix, nil
}

func (f *fakeTxCounters) Current(_ context.Context, companyID int64, year int, txType string) (int64, error) {
	return f.seqs[txCounterKey{companyID, year, txType}], nil
}

type fakeTransactions struct {
	created []*entity.Transaction
	nextID  int64
}

func (f *fakeTransactions) Create(_ context.Context, tx *entity.Transaction) error {
	f.nextID++
	tx.ID = f.nextID
	f.created = append(f.created, tx)
	return nil
}

func (f *fakeTransactions) ListByCompany(_ context.Context, _ int64, _, _ int) ([]*entity.Transaction, error) {
	return f.created, nil
}

func (f *fakeTransactions) GetByElectronicNumber(_ context.Context, _ int64, _ string) (*entity.Transaction, error) {
	return nil, nil
}

func (f *fakeTransactions) UpdateDetails(_ context.Context, _, _ int64, _, _ *string) (bool, error) {
	return false, nil
}

// fakeRunner simula la atomicidad contando los rollbacks: si fn falla, revierte
// los asientos creados durante el intento.
type fakeRunner struct {
	mu         sync.Mutex
	subs       *fakeSubscribers
	subCtr     *fakeSubCounters
	txCtr      *fakeTxCounters
	txs        *fakeTransactions
	rollbacks  int
	commits    int
	failInsert error // si no es nil, el insert del suscriptor falla una vez
}

func (f *fakeRunner) RunSubscriber(ctx context.Context, fn func(
	repository.SubscriberRepository,
	repository.SubscriberCounterRepository,
	repository.TransactionCounterRepository,
	repository.TransactionRepository,
) error) error {
	beforeTxs := len(f.txs.created)
	var subsRepo repository.SubscriberRepository = f.subs
	if f.failInsert != nil {
		err := f.failInsert
		f.failInsert = nil
		subsRepo = failingSubscribers{err: err}
	}
	if err := fn(subsRepo, f.subCtr, f.txCtr, f.txs); err != nil {
		f.mu.Lock()
		f.rollbacks++
		f.txs.created = f.txs.created[:beforeTxs]
		f.mu.Unlock()
		return err
	}
	f.mu.Lock()
	f.commits++
	f.mu.Unlock()
	return nil
}

type failingSubscribers struct{ err error }

func (f failingSubscribers) Create(context.Context, *entity.Subscriber) error { return f.err }
func (f failingSubscribers) GetByID(context.Context, int64, int64) (*entity.Subscriber, error) {
	return nil, nil
}
func (f failingSubscribers) GetByAccountNumber(context.Context, int64, string) (*entity.Subscriber, error) {
	return nil, nil
}
func (f failingSubscribers) ListByCompany(context.Context, int64, int, int) ([]*entity.Subscriber, error) {
	return nil, nil
}
func (f failingSubscribers) Update(context.Context, *entity.Subscriber) (bool, error) {
	return false, nil
}
func (f failingSubscribers) Deactivate(context.Context, int64, int64) (bool, error) {
	return false, nil
}

type fakeGate struct {
	allowed bool
	reason  string
}

func (f *fakeGate) CheckLimits(context.Context, int64, string) (bool, string, error) {
	return f.allowed, f.reason, nil
}

type fixture struct {
	uc     *subscriber.UseCase
	runner *fakeRunner
	gate   *fakeGate
}

func newFixture() *fixture {
	runner := &fakeRunner{
		subs:   newFakeSubscribers(),
		subCtr: &fakeSubCounters{},
		txCtr:  &fakeTxCounters{},
		txs:    &fakeTransactions{},
	}
	gate := &fakeGate{allowed: true}
	uc := subscriber.NewUseCase(runner, runner.subs, gate, nil, logger.Nop())
	uc.SetNow(func() time.Time {
		return time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	})
	return &fixture{uc: uc, runner: runner, gate: gate}
}

func validRequest(companyID int64) dto.CreateSubscriberRequest {
	return dto.CreateSubscriberRequest{
		CompanyID:         companyID,
		FullName:          "أحمد محمد علي",
		Address:           "حي السلام",
		Phone:             "777123456",
		PropertyOwnership: entity.OwnershipOwned,
		ConnectionAmount:  "500.00",
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests CreateSubscriber
// ──────────────────────────────────────────────────────────────────────────────

// El primer suscriptor de la empresa 7 recibe COMP7-SUB000001.
func TestCreateSubscriber_PrimerNumeroCuenta(t *testing.T) {
	fx := newFixture()

	sub, _, err := fx.uc.CreateSubscriber(context.Background(), validRequest(7), 1)
	require.NoError(t, err)
	assert.Equal(t, "COMP7-SUB000001", sub.AccountNumber)
	assert.True(t, sub.IsActive, "el alta deja al suscriptor activo")
	assert.Regexp(t, regexp.MustCompile(`^COMP\d+-SUB\d{6}$`), sub.AccountNumber)
}

// Un monto de conexión positivo genera exactamente dos asientos emparejados:
// mismo monto, misma referencia (el número de cuenta) y tipos distintos.
func TestCreateSubscriber_AsientosEmparejados(t *testing.T) {
	fx := newFixture()

	sub, entries, err := fx.uc.CreateSubscriber(context.Background(), validRequest(7), 1)
	require.NoError(t, err)
	require.Len(t, entries, 2, "deben crearse los dos asientos, nunca uno solo")

	revenue, receipt := entries[0], entries[1]
	assert.Equal(t, entity.TxTypeConnectionRevenue, revenue.TransactionType)
	assert.Equal(t, entity.TxTypeCashReceipt, receipt.TransactionType)
	assert.True(t, revenue.Amount.Equal(receipt.Amount),
		"ambos asientos deben llevar el mismo monto")
	assert.True(t, revenue.Amount.Equal(decimal.RequireFromString("500.00")))
	assert.Equal(t, sub.AccountNumber, revenue.ReferenceNumber)
	assert.Equal(t, sub.AccountNumber, receipt.ReferenceNumber,
		"la referencia de ambos asientos es el número de cuenta")
	assert.NotEqual(t, revenue.ElectronicNumber, receipt.ElectronicNumber)
	assert.Equal(t, 1, fx.runner.commits)
}

// Con monto cero no se genera ningún asiento.
func TestCreateSubscriber_MontoCeroSinAsientos(t *testing.T) {
	fx := newFixture()
	req := validRequest(7)
	req.ConnectionAmount = "0"

	_, entries, err := fx.uc.CreateSubscriber(context.Background(), req, 1)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, fx.runner.txs.created)
}

// Si el insert del suscriptor falla, el intento completo se revierte y el
// reintento vuelve a empezar desde cero: no quedan asientos huérfanos.
func TestCreateSubscriber_RollbackYReintento(t *testing.T) {
	fx := newFixture()
	fx.runner.failInsert = fmt.Errorf("insert subscribers: %w", domain.ErrDuplicate)

	sub, entries, err := fx.uc.CreateSubscriber(context.Background(), validRequest(7), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, fx.runner.rollbacks)
	assert.Equal(t, 1, fx.runner.commits)
	assert.Len(t, entries, 2)
	assert.Equal(t, "COMP7-SUB000002", sub.AccountNumber,
		"el reintento consume una nueva secuencia")
	assert.Len(t, fx.runner.txs.created, 2,
		"solo deben persistir los asientos del intento confirmado")
}

// Validación: ملكية inválida, teléfono malformado y monto negativo se acumulan.
func TestCreateSubscriber_Validacion(t *testing.T) {
	fx := newFixture()
	req := validRequest(7)
	req.PropertyOwnership = "مستأجر"
	req.Phone = "no-es-telefono!"
	req.ConnectionAmount = "-5"

	_, _, err := fx.uc.CreateSubscriber(context.Background(), req, 1)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Contains(t, err.Error(), "ملك أو إيجار")
	assert.Contains(t, err.Error(), "رقم الهاتف")
	assert.Contains(t, err.Error(), "مبلغ التوصيل")
	assert.Zero(t, fx.runner.commits, "una entrada inválida no debe tocar la base")
}

// Altas paralelas en la misma empresa reciben números de cuenta distintos:
// el contador por empresa nunca reparte la misma secuencia dos veces.
func TestCreateSubscriber_UnicidadBajoConcurrencia(t *testing.T) {
	fx := newFixture()
	const workers = 16

	var wg sync.WaitGroup
	accounts := make(chan string, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := validRequest(7)
			req.ConnectionAmount = "0"
			sub, _, err := fx.uc.CreateSubscriber(context.Background(), req, 1)
			if err != nil {
				t.Error(err)
				return
			}
			accounts <- sub.AccountNumber
		}()
	}
	wg.Wait()
	close(accounts)

	seen := make(map[string]struct{}, workers)
	for a := range accounts {
		_, dup := seen[a]
		assert.False(t, dup, "número de cuenta repartido dos veces: %s", a)
		seen[a] = struct{}{}
	}
	require.Len(t, seen, workers)
	assert.Equal(t, workers, fx.runner.commits)
	assert.Zero(t, fx.runner.rollbacks,
		"sin choques de unicidad no debe haber reintentos")
}

// El domicilio y el teléfono son obligatorios: sin ellos el alta se rechaza
// antes de tocar el contador de cuentas.
func TestCreateSubscriber_DireccionYTelefonoObligatorios(t *testing.T) {
	fx := newFixture()
	req := validRequest(7)
	req.Address = ""
	req.Phone = ""

	_, _, err := fx.uc.CreateSubscriber(context.Background(), req, 1)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Contains(t, err.Error(), "العنوان مطلوب")
	assert.Contains(t, err.Error(), "رقم الهاتف مطلوب")
	assert.Zero(t, fx.runner.commits)
	assert.Nil(t, fx.runner.subCtr.seqs, "no debe consumirse ninguna secuencia")

	// La misma regla aplica al actualizar un suscriptor existente.
	sub, _, err := fx.uc.CreateSubscriber(context.Background(), validRequest(7), 1)
	require.NoError(t, err)
	_, err = fx.uc.UpdateSubscriber(context.Background(), sub.ID, 7, dto.UpdateSubscriberRequest{
		FullName: "اسم جديد",
	})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Contains(t, err.Error(), "العنوان مطلوب")
	assert.Contains(t, err.Error(), "رقم الهاتف مطلوب")
}

// El rechazo del gate se devuelve como DeniedError sin consumir secuencias.
func TestCreateSubscriber_GateDeniega(t *testing.T) {
	fx := newFixture()
	fx.gate.allowed = false
	fx.gate.reason = "انتهت صلاحية الاشتراك"

	_, _, err := fx.uc.CreateSubscriber(context.Background(), validRequest(7), 1)
	var denied *subscriber.DeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, "انتهت صلاحية الاشتراك", denied.Reason)
	assert.Zero(t, fx.runner.commits)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests de consulta, actualización y baja
// ──────────────────────────────────────────────────────────────────────────────

// GetByAccountNumber está acotado al tenant.
func TestGetByAccountNumber_AisladoPorTenant(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	sub, _, err := fx.uc.CreateSubscriber(ctx, validRequest(7), 1)
	require.NoError(t, err)

	found, err := fx.uc.GetByAccountNumber(ctx, 7, sub.AccountNumber)
	require.NoError(t, err)
	require.NotNil(t, found)

	other, err := fx.uc.GetByAccountNumber(ctx, 8, sub.AccountNumber)
	require.NoError(t, err)
	assert.Nil(t, other)
}

// UpdateSubscriber no toca el número de cuenta ni el monto de conexión.
func TestUpdateSubscriber_CamposInmutables(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	sub, _, err := fx.uc.CreateSubscriber(ctx, validRequest(7), 1)
	require.NoError(t, err)

	updated, err := fx.uc.UpdateSubscriber(ctx, sub.ID, 7, dto.UpdateSubscriberRequest{
		FullName: "اسم جديد",
		Address:  "حي الثورة",
		Phone:    "711000000",
	})
	require.NoError(t, err)
	assert.Equal(t, "اسم جديد", updated.FullName)
	assert.Equal(t, "COMP7-SUB000001", updated.AccountNumber)
	assert.True(t, updated.ConnectionAmount.Equal(decimal.RequireFromString("500.00")))
}

// Actualizar o dar de baja una fila de otra empresa devuelve not found.
func TestSubscriber_OperacionesCruzadasEntreTenants(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	sub, _, err := fx.uc.CreateSubscriber(ctx, validRequest(7), 1)
	require.NoError(t, err)

	_, err = fx.uc.UpdateSubscriber(ctx, sub.ID, 99, dto.UpdateSubscriberRequest{
		FullName: "x",
		Address:  "y",
		Phone:    "711000000",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = fx.uc.DeactivateSubscriber(ctx, sub.ID, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// La baja es lógica: la fila sigue existiendo con IsActive en falso.
func TestDeactivateSubscriber_BajaLogica(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	sub, _, err := fx.uc.CreateSubscriber(ctx, validRequest(7), 1)
	require.NoError(t, err)

	require.NoError(t, fx.uc.DeactivateSubscriber(ctx, sub.ID, 7))

	found, err := fx.uc.GetByID(ctx, sub.ID, 7)
	require.NoError(t, err)
	require.NotNil(t, found, "la fila no se borra")
	assert.False(t, found.IsActive)
}
