// Package auth implementa el registro de empresas, la autenticación de
// usuarios y el ciclo de restablecimiento de contraseña.
package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tadbeer/tadbeer-api/internal/application/dto"
	"github.com/tadbeer/tadbeer-api/internal/application/subscription"
	"github.com/tadbeer/tadbeer-api/internal/domain"
	"github.com/tadbeer/tadbeer-api/internal/domain/entity"
	"github.com/tadbeer/tadbeer-api/internal/domain/repository"
	pkgjwt "github.com/tadbeer/tadbeer-api/pkg/jwt"
	"github.com/tadbeer/tadbeer-api/pkg/logger"
)

const (
	minPasswordLen  = 8
	resetTokenTTL   = time.Hour
	defaultPlanLife = 12 // meses de vigencia del plan inicial
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// JWTConfig parámetros de emisión de tokens.
type JWTConfig struct {
	Secret     string
	Issuer     string
	ExpMinutes int
}

// UseCase agrupa registro, login y restablecimiento de contraseña.
type UseCase struct {
	txRunner  TxRunner
	companies repository.CompanyRepository
	users     repository.UserRepository
	gate      Gate
	jwtCfg    JWTConfig
	log       *logger.Logger
	now       func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	txRunner TxRunner,
	companies repository.CompanyRepository,
	users repository.UserRepository,
	gate Gate,
	jwtCfg JWTConfig,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		txRunner:  txRunner,
		companies: companies,
		users:     users,
		gate:      gate,
		jwtCfg:    jwtCfg,
		log:       log,
		now:       time.Now,
	}
}

// SetNow reemplaza la fuente de tiempo. Solo para tests.
func (uc *UseCase) SetNow(now func() time.Time) { uc.now = now }

// RegisterCompany crea la empresa y su usuario administrador en una sola
// transacción. La empresa arranca en el plan básico, activa y con vigencia
// de un año.
func (uc *UseCase) RegisterCompany(ctx context.Context, in dto.RegisterCompanyRequest) (*entity.Company, *entity.User, error) {
	var reasons []string
	if strings.TrimSpace(in.Name) == "" {
		reasons = append(reasons, "اسم الشركة مطلوب")
	}
	if !emailPattern.MatchString(strings.TrimSpace(in.Email)) {
		reasons = append(reasons, "البريد الإلكتروني للشركة غير صالح")
	}
	if strings.TrimSpace(in.AdminName) == "" {
		reasons = append(reasons, "اسم المدير مطلوب")
	}
	if !emailPattern.MatchString(strings.TrimSpace(in.AdminEmail)) {
		reasons = append(reasons, "البريد الإلكتروني للمدير غير صالح")
	}
	if len(in.AdminPassword) < minPasswordLen {
		reasons = append(reasons, "كلمة المرور يجب أن تكون 8 أحرف على الأقل")
	}
	if len(reasons) > 0 {
		return nil, nil, domain.NewValidationError(reasons)
	}

	existing, err := uc.companies.GetByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		return nil, nil, domain.ErrEmailAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	basic, _ := subscription.PlanByName(entity.PlanBasic)
	expires := uc.now().AddDate(0, defaultPlanLife, 0)
	company := &entity.Company{
		Name:                strings.TrimSpace(in.Name),
		Email:               strings.TrimSpace(in.Email),
		Phone:               strings.TrimSpace(in.Phone),
		Address:             strings.TrimSpace(in.Address),
		Description:         strings.TrimSpace(in.Description),
		SubscriptionStatus:  entity.SubscriptionActive,
		SubscriptionPlan:    basic.Name,
		MaxUsers:            basic.MaxUsers,
		MaxStorageMB:        basic.MaxStorageMB,
		SubscriptionExpires: &expires,
	}
	admin := &entity.User{
		Name:         strings.TrimSpace(in.AdminName),
		Email:        strings.TrimSpace(in.AdminEmail),
		Phone:        strings.TrimSpace(in.AdminPhone),
		PasswordHash: string(hash),
		Role:         entity.RoleAdmin,
		IsActive:     true,
	}

	err = uc.txRunner.RunRegistration(ctx, func(
		companies repository.CompanyRepository,
		users repository.UserRepository,
	) error {
		if err := companies.Create(ctx, company); err != nil {
			return err
		}
		admin.CompanyID = company.ID
		return users.Create(ctx, admin)
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, nil, domain.ErrEmailAlreadyExists
		}
		return nil, nil, err
	}

	uc.log.Info().
		Int64("company_id", company.ID).
		Str("plan", company.SubscriptionPlan).
		Msg("empresa registrada")
	return company, admin, nil
}

// Login verifica las credenciales y emite un JWT con usuario, empresa y rol.
// Credenciales inválidas y usuario inactivo devuelven el mismo error opaco.
func (uc *UseCase) Login(ctx context.Context, in dto.LoginRequest) (string, *entity.User, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return "", nil, domain.NewValidationError([]string{"البريد الإلكتروني وكلمة المرور مطلوبان"})
	}

	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if user == nil || !user.IsActive {
		return "", nil, domain.ErrUnauthorized
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		return "", nil, domain.ErrUnauthorized
	}

	token, err := pkgjwt.Generate(uc.jwtCfg.Secret, user.ID, user.CompanyID, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}
	return token, user, nil
}

// CreateUser da de alta un usuario dentro de la empresa, sujeto al límite
// max_users del Subscription Gate.
func (uc *UseCase) CreateUser(ctx context.Context, companyID int64, in dto.CreateUserRequest) (*entity.User, error) {
	var reasons []string
	if strings.TrimSpace(in.Name) == "" {
		reasons = append(reasons, "اسم المستخدم مطلوب")
	}
	if !emailPattern.MatchString(strings.TrimSpace(in.Email)) {
		reasons = append(reasons, "البريد الإلكتروني غير صالح")
	}
	if len(in.Password) < minPasswordLen {
		reasons = append(reasons, "كلمة المرور يجب أن تكون 8 أحرف على الأقل")
	}
	role := in.Role
	if role == "" {
		role = entity.RoleUser
	}
	if !entity.ValidRole(role) || role == entity.RoleSystemAdmin {
		// system_admin solo se crea por el bootstrap, nunca por la API.
		reasons = append(reasons, "الدور غير صالح")
	}
	if len(reasons) > 0 {
		return nil, domain.NewValidationError(reasons)
	}

	allowed, reason, err := uc.gate.CheckLimits(ctx, companyID, subscription.OpAddUser)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, &DeniedError{Reason: reason}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &entity.User{
		CompanyID:    companyID,
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.TrimSpace(in.Email),
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.ErrEmailAlreadyExists
		}
		return nil, err
	}
	return user, nil
}

// RequestPasswordReset genera y guarda un token de un solo uso con vigencia de
// una hora. Devuelve el token vacío si el email no existe: la respuesta HTTP es
// idéntica en ambos casos para no revelar qué emails están registrados.
func (uc *UseCase) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if !emailPattern.MatchString(email) {
		return "", domain.NewValidationError([]string{"البريد الإلكتروني غير صالح"})
	}
	token := uuid.NewString()
	set, err := uc.users.SetResetToken(ctx, email, token, uc.now().Add(resetTokenTTL))
	if err != nil {
		return "", err
	}
	if !set {
		return "", nil
	}
	return token, nil
}

// ResetPassword consume el token y fija la nueva contraseña.
func (uc *UseCase) ResetPassword(ctx context.Context, token, newPassword string) error {
	if strings.TrimSpace(token) == "" {
		return domain.NewValidationError([]string{"رمز الاستعادة مطلوب"})
	}
	if len(newPassword) < minPasswordLen {
		return domain.NewValidationError([]string{"كلمة المرور يجب أن تكون 8 أحرف على الأقل"})
	}

	user, err := uc.users.GetByResetToken(ctx, token)
	if err != nil {
		return err
	}
	if user == nil || user.ResetTokenExpires == nil || uc.now().After(*user.ResetTokenExpires) {
		return domain.ErrUnauthorized
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if _, err := uc.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return err
	}
	return uc.users.ClearResetToken(ctx, user.ID)
}

// DeniedError es el rechazo del Subscription Gate al crear usuarios.
type DeniedError struct {
	Reason string
}

func (e *DeniedError) Error() string { return e.Reason }
