// Package admin implementa el panel de administración del sistema: gestión de
// suscripciones de las empresas, estadísticas globales y bitácora de acciones.
// Todas las operaciones exigen rol system_admin en la capa HTTP.
package admin

import (
	"context"
	"time"

	"github.com/tadbeer/tadbeer-api/internal/application/dto"
	"github.com/tadbeer/tadbeer-api/internal/application/subscription"
	"github.com/tadbeer/tadbeer-api/internal/domain"
	"github.com/tadbeer/tadbeer-api/internal/domain/entity"
	"github.com/tadbeer/tadbeer-api/internal/domain/repository"
	"github.com/tadbeer/tadbeer-api/pkg/logger"
)

const defaultDurationMonths = 12

// UseCase agrupa las operaciones del panel administrativo.
type UseCase struct {
	companies repository.CompanyRepository
	stats     repository.StatisticsRepository
	adminLogs repository.AdminLogRepository
	log       *logger.Logger
	now       func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	companies repository.CompanyRepository,
	stats repository.StatisticsRepository,
	adminLogs repository.AdminLogRepository,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		companies: companies,
		stats:     stats,
		adminLogs: adminLogs,
		now:       time.Now,
		log:       log,
	}
}

// SetNow reemplaza la fuente de tiempo. Solo para tests.
func (uc *UseCase) SetNow(now func() time.Time) { uc.now = now }

// UpdateSubscription cambia el plan y la vigencia de la empresa. Los límites
// (max_users, max_storage_mb) se derivan siempre de la matriz de planes, nunca
// del cliente. Registra la acción en la bitácora administrativa.
func (uc *UseCase) UpdateSubscription(ctx context.Context, companyID, adminUserID int64, in dto.UpdateSubscriptionRequest) (*dto.SubscriptionInfo, error) {
	plan, ok := subscription.PlanByName(in.SubscriptionPlan)
	if !ok {
		return nil, domain.NewValidationError([]string{"خطة الاشتراك غير صالحة"})
	}
	status := in.SubscriptionStatus
	if status == "" {
		status = entity.SubscriptionActive
	}
	if status != entity.SubscriptionActive && status != entity.SubscriptionSuspended {
		return nil, domain.NewValidationError([]string{"حالة الاشتراك غير صالحة"})
	}
	months := in.DurationMonths
	if months <= 0 {
		months = defaultDurationMonths
	}

	expires := uc.now().AddDate(0, months, 0)
	update := repository.SubscriptionUpdate{
		Status:       status,
		Plan:         plan.Name,
		MaxUsers:     plan.MaxUsers,
		MaxStorageMB: plan.MaxStorageMB,
		ExpiresAt:    expires,
	}
	updated, err := uc.companies.UpdateSubscription(ctx, companyID, update)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, domain.ErrCompanyNotFound
	}

	uc.audit(ctx, &entity.AdminLog{
		CompanyID:   companyID,
		AdminUserID: adminUserID,
		ActionType:  entity.ActionSubscriptionUpdate,
		Description: "تحديث خطة الاشتراك",
		Metadata: map[string]any{
			"plan":            plan.Name,
			"status":          status,
			"duration_months": months,
			"expires_at":      expires.Format(time.RFC3339),
		},
	})

	return &dto.SubscriptionInfo{
		SubscriptionStatus: status,
		SubscriptionPlan:   plan.Name,
		MaxUsers:           plan.MaxUsers,
		MaxStorageMB:       plan.MaxStorageMB,
		ExpiresAt:          expires,
	}, nil
}

// SuspendSubscription pasa la empresa a suspended. Los datos permanecen; el
// gate denegará toda operación hasta la reactivación.
func (uc *UseCase) SuspendSubscription(ctx context.Context, companyID, adminUserID int64, in dto.SuspendSubscriptionRequest) error {
	company, err := uc.companies.GetByID(ctx, companyID)
	if err != nil {
		return err
	}
	if company == nil {
		return domain.ErrCompanyNotFound
	}
	if company.SubscriptionStatus == entity.SubscriptionSuspended {
		return domain.ErrConflict
	}

	update := repository.SubscriptionUpdate{
		Status:       entity.SubscriptionSuspended,
		Plan:         company.SubscriptionPlan,
		MaxUsers:     company.MaxUsers,
		MaxStorageMB: company.MaxStorageMB,
	}
	if company.SubscriptionExpires != nil {
		update.ExpiresAt = *company.SubscriptionExpires
	}
	if _, err := uc.companies.UpdateSubscription(ctx, companyID, update); err != nil {
		return err
	}

	uc.audit(ctx, &entity.AdminLog{
		CompanyID:   companyID,
		AdminUserID: adminUserID,
		ActionType:  entity.ActionSubscriptionSuspend,
		Description: "إيقاف الاشتراك",
		Metadata:    map[string]any{"reason": in.Reason},
	})
	return nil
}

// ReactivateSubscription reactiva una empresa suspendida, opcionalmente con un
// plan distinto al que tenía.
func (uc *UseCase) ReactivateSubscription(ctx context.Context, companyID, adminUserID int64, in dto.ReactivateSubscriptionRequest) (*dto.SubscriptionInfo, error) {
	company, err := uc.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrCompanyNotFound
	}
	if company.SubscriptionStatus == entity.SubscriptionActive {
		return nil, domain.ErrConflict
	}

	planName := in.SubscriptionPlan
	if planName == "" {
		planName = company.SubscriptionPlan
	}
	plan, ok := subscription.PlanByName(planName)
	if !ok {
		return nil, domain.NewValidationError([]string{"خطة الاشتراك غير صالحة"})
	}
	months := in.DurationMonths
	if months <= 0 {
		months = defaultDurationMonths
	}
	expires := uc.now().AddDate(0, months, 0)

	update := repository.SubscriptionUpdate{
		Status:       entity.SubscriptionActive,
		Plan:         plan.Name,
		MaxUsers:     plan.MaxUsers,
		MaxStorageMB: plan.MaxStorageMB,
		ExpiresAt:    expires,
	}
	if _, err := uc.companies.UpdateSubscription(ctx, companyID, update); err != nil {
		return nil, err
	}

	uc.audit(ctx, &entity.AdminLog{
		CompanyID:   companyID,
		AdminUserID: adminUserID,
		ActionType:  entity.ActionSubscriptionReactivate,
		Description: "إعادة تفعيل الاشتراك",
		Metadata: map[string]any{
			"plan":            plan.Name,
			"duration_months": months,
		},
	})

	return &dto.SubscriptionInfo{
		SubscriptionStatus: entity.SubscriptionActive,
		SubscriptionPlan:   plan.Name,
		MaxUsers:           plan.MaxUsers,
		MaxStorageMB:       plan.MaxStorageMB,
		ExpiresAt:          expires,
	}, nil
}

// ListCompanies lista todas las empresas del sistema, paginadas.
func (uc *UseCase) ListCompanies(ctx context.Context, page dto.PageRequest) ([]*entity.Company, error) {
	page.DefaultPage()
	return uc.companies.List(ctx, page.Limit, page.Offset())
}

// SystemStatistics devuelve los totales globales del sistema.
func (uc *UseCase) SystemStatistics(ctx context.Context) (*repository.SystemStats, error) {
	return uc.stats.SystemStats(ctx)
}

// ActivityLogs lista la bitácora administrativa, más reciente primero.
func (uc *UseCase) ActivityLogs(ctx context.Context, page dto.PageRequest) ([]*entity.AdminLog, error) {
	page.DefaultPage()
	return uc.adminLogs.List(ctx, page.Limit, page.Offset())
}

// audit registra la acción; un fallo de bitácora no revierte la operación,
// solo se deja constancia en el log.
func (uc *UseCase) audit(ctx context.Context, entry *entity.AdminLog) {
	if err := uc.adminLogs.Create(ctx, entry); err != nil {
		uc.log.Error().Err(err).
			Int64("company_id", entry.CompanyID).
			Str("action_type", entry.ActionType).
			Msg("no se pudo registrar la acción administrativa")
	}
}
