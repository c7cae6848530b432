package ledger_test

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tadbeer/tadbeer-api/internal/application/dto"
	"github.com/tadbeer/tadbeer-api/internal/application/ledger"
	"github.com/tadbeer/tadbeer-api/internal/domain"
	"github.com/tadbeer/tadbeer-api/internal/domain/entity"
	"github.com/tadbeer/tadbeer-api/internal/domain/repository"
	"github.com/tadbeer/tadbeer-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type counterKey struct {
	companyID int64
	year      int
	txType    string
}

// fakeCounters simula el upsert atómico del contador: cada Next incrementa y
// devuelve el nuevo valor, con el prefijo registrado en la primera asignación.
// El mutex reproduce la atomicidad del statement real bajo llamadas paralelas.
type fakeCounters struct {
	mu       sync.Mutex
	seqs     map[counterKey]int64
	prefixes map[counterKey]string
	calls    int
}

func newFakeCounters() *fakeCounters {
	return &fakeCounters{
		seqs:     make(map[counterKey]int64),
		prefixes: make(map[counterKey]string),
	}
}

func (f *fakeCounters) Next(_ context.Context, companyID int64, year int, txType, prefix string) (int64, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	k := counterKey{companyID, year, txType}
	if _, ok := f.prefixes[k]; !ok {
		f.prefixes[k] = prefix
	}
	f.seqs[k]++
	return f.seqs[k], f.prefixes[k], nil
}

func (f *fakeCounters) Current(_ context.Context, companyID int64, year int, txType string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seqs[counterKey{companyID, year, txType}], nil
}

// fakeTransactions guarda transacciones en memoria y rechaza números duplicados.
// failFirst simula inserciones que chocan con filas preexistentes.
type fakeTransactions struct {
	mu        sync.Mutex
	byNumber  map[string]*entity.Transaction
	nextID    int64
	failFirst int
}

func newFakeTransactions() *fakeTransactions {
	return &fakeTransactions{byNumber: make(map[string]*entity.Transaction)}
}

func (f *fakeTransactions) Create(_ context.Context, tx *entity.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFirst > 0 {
		f.failFirst--
		return fmt.Errorf("insert transactions: %w", domain.ErrDuplicate)
	}
	if _, exists := f.byNumber[tx.ElectronicNumber]; exists {
		return fmt.Errorf("insert transactions: %w", domain.ErrDuplicate)
	}
	f.nextID++
	tx.ID = f.nextID
	f.byNumber[tx.ElectronicNumber] = tx
	return nil
}

func (f *fakeTransactions) ListByCompany(_ context.Context, companyID int64, limit, offset int) ([]*entity.Transaction, error) {
	var out []*entity.Transaction
	for _, tx := range f.byNumber {
		if tx.CompanyID == companyID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (f *fakeTransactions) GetByElectronicNumber(_ context.Context, companyID int64, number string) (*entity.Transaction, error) {
	tx, ok := f.byNumber[number]
	if !ok || tx.CompanyID != companyID {
		return nil, nil
	}
	return tx, nil
}

func (f *fakeTransactions) UpdateDetails(_ context.Context, id, companyID int64, description, reference *string) (bool, error) {
	for _, tx := range f.byNumber {
		if tx.ID == id && tx.CompanyID == companyID {
			if description != nil {
				tx.Description = *description
			}
			if reference != nil {
				tx.ReferenceNumber = *reference
			}
			return true, nil
		}
	}
	return false, nil
}

// fakeRunner ejecuta el closure directamente contra los fakes, sin transacción real.
type fakeRunner struct {
	counters     *fakeCounters
	transactions *fakeTransactions
}

func (f *fakeRunner) RunLedger(ctx context.Context, fn func(repository.TransactionCounterRepository, repository.TransactionRepository) error) error {
	return fn(f.counters, f.transactions)
}

// fakeGate permite o deniega según configuración.
type fakeGate struct {
	mu      sync.Mutex
	allowed bool
	reason  string
	calls   int
}

func (f *fakeGate) CheckLimits(_ context.Context, _ int64, _ string) (bool, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.allowed, f.reason, nil
}

type fakeNotifier struct {
	mu      sync.Mutex
	created []*entity.Transaction
}

func (f *fakeNotifier) TransactionCreated(tx *entity.Transaction) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, tx)
}

type fixture struct {
	uc           *ledger.UseCase
	counters     *fakeCounters
	transactions *fakeTransactions
	gate         *fakeGate
	notifier     *fakeNotifier
}

func newFixture() *fixture {
	counters := newFakeCounters()
	transactions := newFakeTransactions()
	gate := &fakeGate{allowed: true}
	notifier := &fakeNotifier{}
	uc := ledger.NewUseCase(
		&fakeRunner{counters: counters, transactions: transactions},
		transactions,
		nil,
		gate,
		notifier,
		logger.Nop(),
	)
	uc.SetNow(func() time.Time {
		return time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	})
	return &fixture{uc: uc, counters: counters, transactions: transactions, gate: gate, notifier: notifier}
}

func validRequest(companyID int64) dto.CreateTransactionRequest {
	return dto.CreateTransactionRequest{
		CompanyID:       companyID,
		TransactionType: "sale",
		Amount:          "150.75",
		Description:     "بيع عداد مياه",
		TransactionDate: "2025-03-10",
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests CreateTransaction
// ──────────────────────────────────────────────────────────────────────────────

// La primera transacción de un tipo y año recibe la secuencia 1 con el formato completo.
func TestCreateTransaction_PrimerNumeroElectronico(t *testing.T) {
	fx := newFixture()

	tx, err := fx.uc.CreateTransaction(context.Background(), validRequest(7), 42)
	require.NoError(t, err)
	assert.Equal(t, "SAL2025-000001", tx.ElectronicNumber,
		"la primera venta del año debe recibir la secuencia 000001")
	assert.Equal(t, int64(42), tx.CreatedBy)
}

// Las secuencias son contiguas: dos creaciones seguidas dan 000001 y 000002.
func TestCreateTransaction_SecuenciaContigua(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	first, err := fx.uc.CreateTransaction(ctx, validRequest(7), 1)
	require.NoError(t, err)
	second, err := fx.uc.CreateTransaction(ctx, validRequest(7), 1)
	require.NoError(t, err)

	assert.Equal(t, "SAL2025-000001", first.ElectronicNumber)
	assert.Equal(t, "SAL2025-000002", second.ElectronicNumber)
}

// El número electrónico cumple el formato PRE + año(4) + guion + secuencia(6).
func TestCreateTransaction_FormatoNumeroElectronico(t *testing.T) {
	fx := newFixture()
	pattern := regexp.MustCompile(`^[A-Z]{3}\d{4}-\d{6}$`)

	for _, txType := range []string{"sale", "purchase", "cash_receipt", "connection_revenue"} {
		req := validRequest(7)
		req.TransactionType = txType
		tx, err := fx.uc.CreateTransaction(context.Background(), req, 1)
		require.NoError(t, err)
		assert.Regexp(t, pattern, tx.ElectronicNumber,
			"el número de tipo %s debe cumplir el formato", txType)
	}
}

// Cada tenant tiene su propia secuencia: dos empresas parten ambas de 000001.
func TestCreateTransaction_SecuenciasPorTenant(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	a, err := fx.uc.CreateTransaction(ctx, validRequest(1), 1)
	require.NoError(t, err)
	b, err := fx.uc.CreateTransaction(ctx, validRequest(2), 1)
	require.NoError(t, err)

	assert.Equal(t, "SAL2025-000001", a.ElectronicNumber)
	assert.Equal(t, "SAL2025-000001", b.ElectronicNumber,
		"la secuencia de una empresa no debe verse afectada por otra")
}

// Un monto no positivo se rechaza en validación, sin tocar el contador.
func TestCreateTransaction_MontoInvalidoNoConsumeSecuencia(t *testing.T) {
	fx := newFixture()

	for _, amount := range []string{"0", "-10", "abc", ""} {
		req := validRequest(7)
		req.Amount = amount
		_, err := fx.uc.CreateTransaction(context.Background(), req, 1)
		require.Error(t, err, "monto %q debe rechazarse", amount)
		assert.True(t, domain.IsValidation(err))
		assert.Contains(t, err.Error(), "المبلغ",
			"el mensaje debe mencionar el campo monto")
	}
	assert.Zero(t, fx.counters.calls,
		"una entrada rechazada jamás debe incrementar el contador")
}

// La validación acumula todos los motivos en un solo error.
func TestCreateTransaction_ValidacionAcumulaMotivos(t *testing.T) {
	fx := newFixture()

	req := dto.CreateTransactionRequest{CompanyID: 0}
	_, err := fx.uc.CreateTransaction(context.Background(), req, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "خطأ في التحقق من البيانات")
	assert.Contains(t, err.Error(), "معرف الشركة")
	assert.Contains(t, err.Error(), "نوع المعاملة")
	assert.Contains(t, err.Error(), "المبلغ")
	assert.Contains(t, err.Error(), "وصف المعاملة")
	assert.Contains(t, err.Error(), "تاريخ المعاملة")
}

// El rechazo del gate devuelve DeniedError con el motivo, antes de numerar.
func TestCreateTransaction_GateDeniega(t *testing.T) {
	fx := newFixture()
	fx.gate.allowed = false
	fx.gate.reason = "الاشتراك موقوف"

	_, err := fx.uc.CreateTransaction(context.Background(), validRequest(7), 1)
	require.Error(t, err)

	var denied *ledger.DeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, "الاشتراك موقوف", denied.Reason)
	assert.Zero(t, fx.counters.calls,
		"una operación denegada no debe consumir secuencia")
}

// Una violación de unicidad provoca un reintento con nueva secuencia.
func TestCreateTransaction_ReintentoTrasDuplicado(t *testing.T) {
	fx := newFixture()
	fx.transactions.failFirst = 1

	tx, err := fx.uc.CreateTransaction(context.Background(), validRequest(7), 1)
	require.NoError(t, err)
	assert.Equal(t, "SAL2025-000002", tx.ElectronicNumber,
		"tras un choque debe asignarse la siguiente secuencia")
	assert.Equal(t, 2, fx.counters.calls)
}

// Si todos los reintentos chocan, el error de duplicado se propaga.
func TestCreateTransaction_ReintentosAgotados(t *testing.T) {
	fx := newFixture()
	fx.transactions.failFirst = 10

	_, err := fx.uc.CreateTransaction(context.Background(), validRequest(7), 1)
	require.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Equal(t, 3, fx.counters.calls, "el ciclo debe acotarse a tres intentos")
}

// Creaciones paralelas sobre el mismo tenant, tipo y año nunca reparten el
// mismo número: el contador atómico entrega secuencias distintas a cada
// goroutine y el ciclo de reintentos no llega a activarse.
func TestCreateTransaction_UnicidadBajoConcurrencia(t *testing.T) {
	fx := newFixture()
	const workers = 32

	var wg sync.WaitGroup
	numbers := make(chan string, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tx, err := fx.uc.CreateTransaction(context.Background(), validRequest(7), 1)
			if err != nil {
				t.Error(err)
				return
			}
			numbers <- tx.ElectronicNumber
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]struct{}, workers)
	for n := range numbers {
		_, dup := seen[n]
		assert.False(t, dup, "número repartido dos veces: %s", n)
		seen[n] = struct{}{}
	}
	require.Len(t, seen, workers)
	assert.Equal(t, workers, fx.counters.calls,
		"sin choques de unicidad no debe haber reintentos")
	assert.Len(t, fx.transactions.byNumber, workers)
}

// La creación exitosa dispara la notificación con la transacción persistida.
func TestCreateTransaction_NotificaTrasPersistir(t *testing.T) {
	fx := newFixture()

	tx, err := fx.uc.CreateTransaction(context.Background(), validRequest(7), 1)
	require.NoError(t, err)
	require.Len(t, fx.notifier.created, 1)
	assert.Equal(t, tx.ElectronicNumber, fx.notifier.created[0].ElectronicNumber)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests de consulta y actualización
// ──────────────────────────────────────────────────────────────────────────────

// La búsqueda por número exacto está acotada al tenant: otra empresa no ve la fila.
func TestGetByElectronicNumber_AisladoPorTenant(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	tx, err := fx.uc.CreateTransaction(ctx, validRequest(7), 1)
	require.NoError(t, err)

	found, err := fx.uc.GetByElectronicNumber(ctx, 7, tx.ElectronicNumber)
	require.NoError(t, err)
	require.NotNil(t, found)

	other, err := fx.uc.GetByElectronicNumber(ctx, 8, tx.ElectronicNumber)
	require.NoError(t, err)
	assert.Nil(t, other, "el número de la empresa 7 no debe resolverse para la empresa 8")
}

// Buscar un número inexistente devuelve nil sin error.
func TestGetByElectronicNumber_NoEncontrado(t *testing.T) {
	fx := newFixture()

	found, err := fx.uc.GetByElectronicNumber(context.Background(), 7, "SAL2025-999999")
	require.NoError(t, err)
	assert.Nil(t, found)
}

// UpdateDetails solo muta descripción y referencia; el resto queda intacto.
func TestUpdateDetails_CamposMutables(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	tx, err := fx.uc.CreateTransaction(ctx, validRequest(7), 1)
	require.NoError(t, err)

	desc := "وصف محدث"
	ref := "REF-009"
	require.NoError(t, fx.uc.UpdateDetails(ctx, tx.ID, 7, dto.UpdateTransactionRequest{
		Description:     &desc,
		ReferenceNumber: &ref,
	}))

	found, err := fx.uc.GetByElectronicNumber(ctx, 7, tx.ElectronicNumber)
	require.NoError(t, err)
	assert.Equal(t, "وصف محدث", found.Description)
	assert.Equal(t, "REF-009", found.ReferenceNumber)
	assert.Equal(t, "SAL2025-000001", found.ElectronicNumber,
		"el número electrónico es inmutable")
}

// UpdateDetails sin campos es un error de validación; fila ajena devuelve not found.
func TestUpdateDetails_Errores(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	err := fx.uc.UpdateDetails(ctx, 1, 7, dto.UpdateTransactionRequest{})
	assert.True(t, domain.IsValidation(err))

	tx, err := fx.uc.CreateTransaction(ctx, validRequest(7), 1)
	require.NoError(t, err)

	desc := "x"
	err = fx.uc.UpdateDetails(ctx, tx.ID, 99, dto.UpdateTransactionRequest{Description: &desc})
	assert.ErrorIs(t, err, domain.ErrNotFound,
		"una empresa no debe poder actualizar filas de otra")
}
