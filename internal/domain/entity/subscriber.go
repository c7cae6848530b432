package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Valores válidos para la propiedad del inmueble del suscriptor.
const (
	OwnershipOwned  = "ملك"
	OwnershipRented = "إيجار"
)

// ValidOwnership indica si v es uno de los dos valores enumerados.
func ValidOwnership(v string) bool {
	return v == OwnershipOwned || v == OwnershipRented
}

// Subscriber es un abonado de la empresa. AccountNumber es único por empresa;
// la baja es lógica (IsActive = false), nunca se borra la fila.
type Subscriber struct {
	ID                int64
	CompanyID         int64
	AccountNumber     string
	FullName          string
	Address           string
	Phone             string
	BusinessType      string
	MeterSystemType   string
	TariffType        string
	TariffGroup       string
	IDCardNumber      string
	PhotoPath         string
	PropertyOwnership string // ملك | إيجار | vacío
	ConnectionAmount  decimal.Decimal
	IsActive          bool
	CreatedBy         int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
