package entity

import "time"

// Canales de notificación soportados (los envíos son stubs; ver el dispatcher).
const (
	ChannelSMS      = "sms"
	ChannelWhatsApp = "whatsapp"
	ChannelEmail    = "email"
)

// Estados de entrega de una notificación.
const (
	DeliveryPending   = "pending"
	DeliverySent      = "sent"
	DeliveryFailed    = "failed"
	DeliveryDelivered = "delivered"
)

// NotificationSetting configura, por empresa y tipo de transacción, qué
// canales usar y si el envío es automático tras registrar la transacción.
type NotificationSetting struct {
	ID               int64
	CompanyID        int64
	TransactionType  string
	Channels         []string // subconjunto de Channel*
	IsEnabled        bool
	AutoSend         bool
	SendToSubscriber bool
	SendToCompany    bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// MessageTemplate es una plantilla por empresa, tipo y canal con variables
// {placeholder} que el dispatcher sustituye.
type MessageTemplate struct {
	ID              int64
	CompanyID       int64
	TransactionType string
	Channel         string
	Subject         string // solo email
	Content         string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NotificationLog registra cada intento de entrega.
type NotificationLog struct {
	ID              int64
	CompanyID       int64
	TransactionID   int64
	Channel         string
	Recipient       string
	Subject         string
	Content         string
	Status          string // ver constantes Delivery*
	ProviderMsgID   string
	ErrorMessage    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
