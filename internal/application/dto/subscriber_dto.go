package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateSubscriberRequest payload para registrar un suscriptor.
// ConnectionAmount como string por la misma razón que Amount en transacciones.
type CreateSubscriberRequest struct {
	CompanyID         int64  `json:"company_id"`
	FullName          string `json:"full_name"`
	Address           string `json:"address"`
	Phone             string `json:"phone"`
	BusinessType      string `json:"business_type"`
	MeterSystemType   string `json:"meter_system_type"`
	TariffType        string `json:"tariff_type"`
	TariffGroup       string `json:"tariff_group"`
	IDCardNumber      string `json:"id_card_number"`
	PhotoPath         string `json:"photo_path"`
	PropertyOwnership string `json:"property_ownership"`
	ConnectionAmount  string `json:"connection_amount"`
	// PaymentAssignedTo delega la cobranza del monto de conexión a otro usuario.
	PaymentAssignedTo *int64 `json:"payment_assigned_to"`
}

// UpdateSubscriberRequest campos editables de un suscriptor existente.
type UpdateSubscriberRequest struct {
	FullName          string `json:"full_name"`
	Address           string `json:"address"`
	Phone             string `json:"phone"`
	BusinessType      string `json:"business_type"`
	MeterSystemType   string `json:"meter_system_type"`
	TariffType        string `json:"tariff_type"`
	TariffGroup       string `json:"tariff_group"`
	IDCardNumber      string `json:"id_card_number"`
	PhotoPath         string `json:"photo_path"`
	PropertyOwnership string `json:"property_ownership"`
}

// SubscriberResponse representación de un suscriptor persistido.
type SubscriberResponse struct {
	ID                int64           `json:"id"`
	CompanyID         int64           `json:"company_id"`
	AccountNumber     string          `json:"account_number"`
	FullName          string          `json:"full_name"`
	Address           string          `json:"address"`
	Phone             string          `json:"phone"`
	BusinessType      string          `json:"business_type,omitempty"`
	MeterSystemType   string          `json:"meter_system_type,omitempty"`
	TariffType        string          `json:"tariff_type,omitempty"`
	TariffGroup       string          `json:"tariff_group,omitempty"`
	IDCardNumber      string          `json:"id_card_number,omitempty"`
	PropertyOwnership string          `json:"property_ownership,omitempty"`
	ConnectionAmount  decimal.Decimal `json:"connection_amount"`
	IsActive          bool            `json:"is_active"`
	CreatedAt         time.Time       `json:"created_at"`
}

// SubscriberResult envoltura {success, message, subscriber}.
type SubscriberResult struct {
	Result
	Subscriber *SubscriberResponse `json:"subscriber"`
}

// SubscriberListResult envoltura {success, message, subscribers}.
type SubscriberListResult struct {
	Result
	Subscribers []SubscriberResponse `json:"subscribers"`
	Pagination  PageResponse         `json:"pagination"`
}
