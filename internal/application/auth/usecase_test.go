package auth_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tadbeer/tadbeer-api/internal/application/auth"
	"github.com/tadbeer/tadbeer-api/internal/application/dto"
	"github.com/tadbeer/tadbeer-api/internal/domain"
	"github.com/tadbeer/tadbeer-api/internal/domain/entity"
	"github.com/tadbeer/tadbeer-api/internal/domain/repository"
	pkgjwt "github.com/tadbeer/tadbeer-api/pkg/jwt"
	"github.com/tadbeer/tadbeer-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type fakeCompanies struct {
	byEmail map[string]*entity.Company
	nextID  int64
	failCreate error
}

func newFakeCompanies() *fakeCompanies {
	return &fakeCompanies{byEmail: make(map[string]*entity.Company)}
}

func (f *fakeCompanies) Create(_ context.Context, c *entity.Company) error {
	if f.failCreate != nil {
		return f.failCreate
	}
	f.nextID++
	c.ID = f.nextID
	f.byEmail[c.Email] = c
	return nil
}

func (f *fakeCompanies) GetByID(_ context.Context, id int64) (*entity.Company, error) {
	for _, c := range f.byEmail {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeCompanies) GetByEmail(_ context.Context, email string) (*entity.Company, error) {
	return f.byEmail[email], nil
}

func (f *fakeCompanies) List(_ context.Context, _, _ int) ([]*entity.Company, error) {
	return nil, nil
}

func (f *fakeCompanies) UpdateSubscription(_ context.Context, _ int64, _ repository.SubscriptionUpdate) (bool, error) {
	return false, nil
}

type fakeUsers struct {
	byEmail map[string]*entity.User
	nextID  int64
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byEmail: make(map[string]*entity.User)}
}

func (f *fakeUsers) Create(_ context.Context, u *entity.User) error {
	if _, exists := f.byEmail[u.Email]; exists {
		return fmt.Errorf("insert users: %w", domain.ErrDuplicate)
	}
	f.nextID++
	u.ID = f.nextID
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*entity.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return f.byEmail[email], nil
}

func (f *fakeUsers) ListByCompany(_ context.Context, _ int64, _, _ int) ([]*entity.User, error) {
	return nil, nil
}

func (f *fakeUsers) CountActiveByCompany(_ context.Context, companyID int64) (int, error) {
	n := 0
	for _, u := range f.byEmail {
		if u.CompanyID == companyID && u.IsActive {
			n++
		}
	}
	return n, nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, userID int64, hash string) (bool, error) {
	for _, u := range f.byEmail {
		if u.ID == userID {
			u.PasswordHash = hash
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) SetResetToken(_ context.Context, email, token string, expires time.Time) (bool, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return false, nil
	}
	u.ResetToken = token
	u.ResetTokenExpires = &expires
	return true, nil
}

func (f *fakeUsers) GetByResetToken(_ context.Context, token string) (*entity.User, error) {
	for _, u := range f.byEmail {
		if u.ResetToken == token && token != "" {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) ClearResetToken(_ context.Context, userID int64) error {
	for _, u := range f.byEmail {
		if u.ID == userID {
			u.ResetToken = ""
			u.ResetTokenExpires = nil
		}
	}
	return nil
}

type fakeRunner struct {
	companies *fakeCompanies
	users     *fakeUsers
	rollbacks int
}

func (f *fakeRunner) RunRegistration(ctx context.Context, fn func(repository.CompanyRepository, repository.UserRepository) error) error {
	if err := fn(f.companies, f.users); err != nil {
		f.rollbacks++
		return err
	}
	return nil
}

type fakeGate struct {
	allowed bool
	reason  string
}

func (f *fakeGate) CheckLimits(context.Context, int64, string) (bool, string, error) {
	return f.allowed, f.reason, nil
}

var testNow = time.Date(2025, time.January, 15, 9, 0, 0, 0, time.UTC)

var testJWT = auth.JWTConfig{Secret: "test-secret", Issuer: "tadbeer-test", ExpMinutes: 60}

type fixture struct {
	uc        *auth.UseCase
	companies *fakeCompanies
	users     *fakeUsers
	gate      *fakeGate
}

func newFixture() *fixture {
	companies := newFakeCompanies()
	users := newFakeUsers()
	gate := &fakeGate{allowed: true}
	runner := &fakeRunner{companies: companies, users: users}
	uc := auth.NewUseCase(runner, companies, users, gate, testJWT, logger.Nop())
	uc.SetNow(func() time.Time { return testNow })
	return &fixture{uc: uc, companies: companies, users: users, gate: gate}
}

func registerRequest() dto.RegisterCompanyRequest {
	return dto.RegisterCompanyRequest{
		Name:          "مؤسسة مياه الريف",
		Email:         "info@water.example",
		AdminName:     "صالح أحمد",
		AdminEmail:    "saleh@water.example",
		AdminPassword: "segura-123",
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RegisterCompany
// ──────────────────────────────────────────────────────────────────────────────

// El registro crea la empresa en plan básico activo y su administrador con rol admin.
func TestRegisterCompany_PlanInicial(t *testing.T) {
	fx := newFixture()

	company, admin, err := fx.uc.RegisterCompany(context.Background(), registerRequest())
	require.NoError(t, err)
	assert.Equal(t, entity.SubscriptionActive, company.SubscriptionStatus)
	assert.Equal(t, entity.PlanBasic, company.SubscriptionPlan)
	assert.Equal(t, 10, company.MaxUsers)
	require.NotNil(t, company.SubscriptionExpires)
	assert.Equal(t, testNow.AddDate(0, 12, 0), *company.SubscriptionExpires)

	assert.Equal(t, entity.RoleAdmin, admin.Role)
	assert.Equal(t, company.ID, admin.CompanyID)
	assert.NotEqual(t, "segura-123", admin.PasswordHash, "la contraseña jamás se guarda en claro")
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("segura-123")))
}

// Un email de empresa ya registrado se rechaza antes de crear nada.
func TestRegisterCompany_EmailDuplicado(t *testing.T) {
	fx := newFixture()
	_, _, err := fx.uc.RegisterCompany(context.Background(), registerRequest())
	require.NoError(t, err)

	_, _, err = fx.uc.RegisterCompany(context.Background(), registerRequest())
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

// La validación acumula motivos: nombre, emails y contraseña corta.
func TestRegisterCompany_Validacion(t *testing.T) {
	fx := newFixture()

	_, _, err := fx.uc.RegisterCompany(context.Background(), dto.RegisterCompanyRequest{
		Email:         "no-es-email",
		AdminEmail:    "tampoco",
		AdminPassword: "corta",
	})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Contains(t, err.Error(), "اسم الشركة")
	assert.Contains(t, err.Error(), "كلمة المرور")
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Login
// ──────────────────────────────────────────────────────────────────────────────

// Login correcto emite un JWT con usuario, empresa y rol.
func TestLogin_EmiteJWT(t *testing.T) {
	fx := newFixture()
	company, admin, err := fx.uc.RegisterCompany(context.Background(), registerRequest())
	require.NoError(t, err)

	token, user, err := fx.uc.Login(context.Background(), dto.LoginRequest{
		Email:    "saleh@water.example",
		Password: "segura-123",
	})
	require.NoError(t, err)
	assert.Equal(t, admin.ID, user.ID)

	userID, companyID, role, err := pkgjwt.Parse(testJWT.Secret, token)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, userID)
	assert.Equal(t, company.ID, companyID)
	assert.Equal(t, entity.RoleAdmin, role)
}

// Contraseña incorrecta, email inexistente y usuario inactivo devuelven el
// mismo error opaco.
func TestLogin_CredencialesInvalidas(t *testing.T) {
	fx := newFixture()
	_, admin, err := fx.uc.RegisterCompany(context.Background(), registerRequest())
	require.NoError(t, err)

	_, _, err = fx.uc.Login(context.Background(), dto.LoginRequest{Email: "saleh@water.example", Password: "otra"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, _, err = fx.uc.Login(context.Background(), dto.LoginRequest{Email: "nadie@water.example", Password: "segura-123"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	admin.IsActive = false
	_, _, err = fx.uc.Login(context.Background(), dto.LoginRequest{Email: "saleh@water.example", Password: "segura-123"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests CreateUser
// ──────────────────────────────────────────────────────────────────────────────

// El alta de usuario pasa por el gate y respeta la enumeración de roles.
func TestCreateUser_GateYRoles(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	user, err := fx.uc.CreateUser(ctx, 7, dto.CreateUserRequest{
		Name:     "موظف",
		Email:    "emp@water.example",
		Password: "segura-123",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleUser, user.Role, "sin rol explícito se asigna user")
	assert.Equal(t, int64(7), user.CompanyID)

	// system_admin jamás se crea por la API
	_, err = fx.uc.CreateUser(ctx, 7, dto.CreateUserRequest{
		Name:     "x",
		Email:    "x@water.example",
		Password: "segura-123",
		Role:     entity.RoleSystemAdmin,
	})
	assert.True(t, domain.IsValidation(err))

	fx.gate.allowed = false
	fx.gate.reason = "تم الوصول إلى الحد الأقصى لعدد المستخدمين (10)"
	_, err = fx.uc.CreateUser(ctx, 7, dto.CreateUserRequest{
		Name:     "y",
		Email:    "y@water.example",
		Password: "segura-123",
	})
	var denied *auth.DeniedError
	require.ErrorAs(t, err, &denied)
	assert.Contains(t, denied.Reason, "10")
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests de restablecimiento de contraseña
// ──────────────────────────────────────────────────────────────────────────────

// El ciclo completo: solicitar token, restablecer, y el token deja de servir.
func TestResetPassword_CicloCompleto(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	_, _, err := fx.uc.RegisterCompany(ctx, registerRequest())
	require.NoError(t, err)

	token, err := fx.uc.RequestPasswordReset(ctx, "saleh@water.example")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.NoError(t, fx.uc.ResetPassword(ctx, token, "nueva-clave-9"))

	_, _, err = fx.uc.Login(ctx, dto.LoginRequest{Email: "saleh@water.example", Password: "nueva-clave-9"})
	require.NoError(t, err, "la nueva contraseña debe funcionar")

	err = fx.uc.ResetPassword(ctx, token, "otra-clave-10")
	assert.ErrorIs(t, err, domain.ErrUnauthorized, "el token es de un solo uso")
}

// Un email no registrado devuelve token vacío sin error (respuesta opaca).
func TestRequestPasswordReset_EmailDesconocido(t *testing.T) {
	fx := newFixture()

	token, err := fx.uc.RequestPasswordReset(context.Background(), "nadie@water.example")
	require.NoError(t, err)
	assert.Empty(t, token)
}

// Un token vencido se rechaza.
func TestResetPassword_TokenVencido(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	_, _, err := fx.uc.RegisterCompany(ctx, registerRequest())
	require.NoError(t, err)

	token, err := fx.uc.RequestPasswordReset(ctx, "saleh@water.example")
	require.NoError(t, err)

	fx.uc.SetNow(func() time.Time { return testNow.Add(2 * time.Hour) })
	err = fx.uc.ResetPassword(ctx, token, "nueva-clave-9")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
