package dto

import "time"

// UpsertNotificationSettingRequest configura canales y auto-envío por tipo.
type UpsertNotificationSettingRequest struct {
	TransactionType  string   `json:"transaction_type"`
	Channels         []string `json:"channels"`
	IsEnabled        bool     `json:"is_enabled"`
	AutoSend         bool     `json:"auto_send"`
	SendToSubscriber bool     `json:"send_to_subscriber"`
	SendToCompany    bool     `json:"send_to_company"`
}

// NotificationSettingResponse configuración persistida.
type NotificationSettingResponse struct {
	ID               int64    `json:"id"`
	CompanyID        int64    `json:"company_id"`
	TransactionType  string   `json:"transaction_type"`
	Channels         []string `json:"channels"`
	IsEnabled        bool     `json:"is_enabled"`
	AutoSend         bool     `json:"auto_send"`
	SendToSubscriber bool     `json:"send_to_subscriber"`
	SendToCompany    bool     `json:"send_to_company"`
}

// NotificationSettingListResult envoltura {success, message, settings}.
type NotificationSettingListResult struct {
	Result
	Settings []NotificationSettingResponse `json:"settings"`
}

// NotificationLogEntry fila de la bitácora de entregas.
type NotificationLogEntry struct {
	ID            int64     `json:"id"`
	TransactionID int64     `json:"transaction_id"`
	Channel       string    `json:"channel"`
	Recipient     string    `json:"recipient"`
	Status        string    `json:"status"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// NotificationLogListResult envoltura {success, message, logs}.
type NotificationLogListResult struct {
	Result
	Logs []NotificationLogEntry `json:"logs"`
}
