package dto

import (
	"time"

	"github.com/tadbeer/tadbeer-api/internal/domain/repository"
)

// UpdateSubscriptionRequest cambia el plan de una empresa.
type UpdateSubscriptionRequest struct {
	SubscriptionPlan   string `json:"subscription_plan"`
	SubscriptionStatus string `json:"subscription_status"`
	DurationMonths     int    `json:"duration_months"`
}

// SuspendSubscriptionRequest suspende la suscripción de una empresa.
type SuspendSubscriptionRequest struct {
	Reason string `json:"reason"`
}

// ReactivateSubscriptionRequest reactiva una suscripción suspendida.
type ReactivateSubscriptionRequest struct {
	SubscriptionPlan string `json:"subscription_plan"`
	DurationMonths   int    `json:"duration_months"`
}

// SubscriptionResult envoltura {success, message, subscription}.
type SubscriptionResult struct {
	Result
	Subscription *SubscriptionInfo `json:"subscription,omitempty"`
}

// SubscriptionInfo estado de suscripción resultante tras una mutación.
type SubscriptionInfo struct {
	SubscriptionStatus string    `json:"subscription_status"`
	SubscriptionPlan   string    `json:"subscription_plan"`
	MaxUsers           int       `json:"max_users"`
	MaxStorageMB       int       `json:"max_storage_mb"`
	ExpiresAt          time.Time `json:"subscription_expires_at"`
}

// GateDecision es la decisión del Subscription Gate: permitir o rechazar con motivo.
type GateDecision struct {
	Allowed bool   `json:"allowed"`
	Message string `json:"message"`
}

// StatisticsResult envoltura {success, message, statistics} para una empresa/año.
type StatisticsResult struct {
	Result
	Statistics *repository.CompanyYearStats `json:"statistics"`
}

// SystemStatisticsResult envoltura para los totales globales del sistema.
type SystemStatisticsResult struct {
	Result
	Statistics *repository.SystemStats `json:"statistics"`
}

// AdminLogEntry fila del listado de bitácora administrativa.
type AdminLogEntry struct {
	ID          int64          `json:"id"`
	CompanyID   int64          `json:"company_id"`
	CompanyName string         `json:"company_name,omitempty"`
	AdminName   string         `json:"admin_name,omitempty"`
	AdminEmail  string         `json:"admin_email,omitempty"`
	ActionType  string         `json:"action_type"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// AdminLogListResult envoltura {success, message, logs}.
type AdminLogListResult struct {
	Result
	Logs []AdminLogEntry `json:"logs"`
}
