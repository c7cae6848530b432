// Package subscription implementa el Subscription Gate: la verificación previa
// que decide si la suscripción de una empresa permite ejecutar una operación.
package subscription

import (
	"context"
	"fmt"
	"time"

	"github.com/tadbeer/tadbeer-api/internal/domain/entity"
	"github.com/tadbeer/tadbeer-api/internal/domain/repository"
	"github.com/tadbeer/tadbeer-api/pkg/logger"
)

// Operaciones con regla propia en el gate. Cualquier otra operación pasa
// mientras la suscripción esté activa y vigente.
const (
	OpAddUser        = "add_user"
	OpAddTransaction = "add_transaction"
	OpStorageUsage   = "storage_usage"
)

// Plan describe los límites de un plan de suscripción.
type Plan struct {
	Name         string `json:"name"`
	MaxUsers     int    `json:"max_users"`
	MaxStorageMB int    `json:"max_storage_mb"`
}

// Plans devuelve la matriz de planes disponibles. entity.Unlimited (-1)
// significa sin límite.
func Plans() []Plan {
	return []Plan{
		{Name: entity.PlanBasic, MaxUsers: 10, MaxStorageMB: 1000},
		{Name: entity.PlanStandard, MaxUsers: 50, MaxStorageMB: 5000},
		{Name: entity.PlanPremium, MaxUsers: 200, MaxStorageMB: 20000},
		{Name: entity.PlanEnterprise, MaxUsers: entity.Unlimited, MaxStorageMB: entity.Unlimited},
	}
}

// PlanByName busca un plan por nombre. Devuelve false si no existe.
func PlanByName(name string) (Plan, bool) {
	for _, p := range Plans() {
		if p.Name == name {
			return p, true
		}
	}
	return Plan{}, false
}

// Gate evalúa el estado de la suscripción en el momento de la llamada, nunca
// contra un estado cacheado. Ante una empresa inexistente deniega (fail closed).
type Gate struct {
	companies repository.CompanyRepository
	users     repository.UserRepository
	log       *logger.Logger
	now       func() time.Time
}

// NewGate construye el gate.
func NewGate(companies repository.CompanyRepository, users repository.UserRepository, log *logger.Logger) *Gate {
	return &Gate{
		companies: companies,
		users:     users,
		log:       log,
		now:       time.Now,
	}
}

// SetNow reemplaza la fuente de tiempo. Solo para tests.
func (g *Gate) SetNow(now func() time.Time) { g.now = now }

// CheckLimits decide si la empresa puede ejecutar la operación. Devuelve
// allowed=false con un motivo legible; err solo ante fallos de infraestructura.
func (g *Gate) CheckLimits(ctx context.Context, companyID int64, operation string) (bool, string, error) {
	company, err := g.companies.GetByID(ctx, companyID)
	if err != nil {
		return false, "", fmt.Errorf("gate: get company %d: %w", companyID, err)
	}
	if company == nil {
		// Empresa inexistente: denegar, no fallar.
		g.log.Warn().Int64("company_id", companyID).Str("operation", operation).
			Msg("gate consultado para empresa inexistente")
		return false, "الشركة غير موجودة", nil
	}

	if company.SubscriptionStatus != entity.SubscriptionActive {
		return false, "الاشتراك موقوف، يرجى التواصل مع الإدارة", nil
	}
	if company.SubscriptionExpired(g.now()) {
		return false, "انتهت صلاحية الاشتراك، يرجى التجديد", nil
	}

	switch operation {
	case OpAddUser:
		if company.MaxUsers == entity.Unlimited {
			return true, "", nil
		}
		count, err := g.users.CountActiveByCompany(ctx, companyID)
		if err != nil {
			return false, "", fmt.Errorf("gate: count users for company %d: %w", companyID, err)
		}
		if count >= company.MaxUsers {
			return false, fmt.Sprintf("تم الوصول إلى الحد الأقصى لعدد المستخدمين (%d)", company.MaxUsers), nil
		}
		return true, "", nil
	case OpAddTransaction, OpStorageUsage:
		// Puntos de extensión: hoy solo exigen suscripción activa y vigente.
		return true, "", nil
	default:
		return true, "", nil
	}
}
