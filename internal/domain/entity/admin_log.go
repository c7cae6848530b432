package entity

import "time"

// Tipos de acción registrados en la bitácora administrativa.
const (
	ActionSubscriptionUpdate     = "subscription_update"
	ActionSubscriptionSuspend    = "subscription_suspend"
	ActionSubscriptionReactivate = "subscription_reactivate"
)

// AdminLog es la bitácora append-only de acciones administrativas
// (cambios y suspensiones de suscripción). El núcleo solo escribe.
type AdminLog struct {
	ID             int64
	CompanyID      int64
	AdminUserID    int64
	ActionType     string
	Description    string
	AffectedUserID *int64
	Metadata       map[string]any // serializado como JSON en la tabla
	AdminName      string         // joins de solo lectura para el listado
	AdminEmail     string
	CompanyName    string
	CreatedAt      time.Time
}
