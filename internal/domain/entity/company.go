package entity

import "time"

// Estados de suscripción de una empresa.
const (
	SubscriptionActive    = "active"
	SubscriptionSuspended = "suspended"
)

// Planes de suscripción disponibles (deben coincidir con el CHECK de la tabla companies).
const (
	PlanBasic      = "basic"
	PlanStandard   = "standard"
	PlanPremium    = "premium"
	PlanEnterprise = "enterprise"
)

// Unlimited es el valor centinela para MaxUsers/MaxStorageMB sin límite.
const Unlimited = -1

// Company representa una organización/tenant del sistema. Toda fila financiera
// y de mercadeo está ligada a exactamente una empresa; no hay visibilidad
// entre tenants.
type Company struct {
	ID                  int64
	Name                string
	Email               string
	Phone               string
	Address             string
	Description         string
	SubscriptionStatus  string     // active, suspended
	SubscriptionPlan    string     // ver constantes Plan*
	MaxUsers            int        // -1 = ilimitado
	MaxStorageMB        int        // -1 = ilimitado
	SubscriptionExpires *time.Time // nil = sin vencimiento
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// SubscriptionExpired indica si la suscripción venció respecto a now.
// Una empresa sin fecha de vencimiento nunca expira.
func (c *Company) SubscriptionExpired(now time.Time) bool {
	return c.SubscriptionExpires != nil && now.After(*c.SubscriptionExpires)
}

// CompanyAccessGrant es la relación muchos-a-muchos que da a un usuario acceso
// a empresas distintas de su empresa primaria.
type CompanyAccessGrant struct {
	ID        int64
	UserID    int64
	CompanyID int64
	Role      string
	IsActive  bool
	CreatedAt time.Time
}
