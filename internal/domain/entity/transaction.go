package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción predefinidos. El campo es una etiqueta libre: cualquier
// string no vacío obtiene su propio contador y prefijo.
const (
	TxTypeSale              = "sale"
	TxTypePurchase          = "purchase"
	TxTypeReceipt           = "receipt"
	TxTypePayment           = "payment"
	TxTypeJournal           = "journal"
	TxTypeAdjustment        = "adjustment"
	TxTypeTransfer          = "transfer"
	TxTypeExpense           = "expense"
	TxTypeIncome            = "income"
	TxTypeRefund            = "refund"
	TxTypeConnectionRevenue = "connection_revenue"
	TxTypeCashReceipt       = "cash_receipt"
)

// TransactionType describe un tipo disponible para la interfaz (etiqueta árabe y prefijo).
type TransactionType struct {
	Value  string `json:"value"`
	Label  string `json:"label"`
	Prefix string `json:"prefix"`
}

// TransactionTypes devuelve el catálogo de tipos predefinidos.
func TransactionTypes() []TransactionType {
	return []TransactionType{
		{Value: TxTypeSale, Label: "مبيعات", Prefix: "SAL"},
		{Value: TxTypePurchase, Label: "مشتريات", Prefix: "PUR"},
		{Value: TxTypeReceipt, Label: "إيصال قبض", Prefix: "REC"},
		{Value: TxTypePayment, Label: "إيصال دفع", Prefix: "PAY"},
		{Value: TxTypeJournal, Label: "قيد يومية", Prefix: "JOU"},
		{Value: TxTypeAdjustment, Label: "قيد تسوية", Prefix: "ADJ"},
		{Value: TxTypeTransfer, Label: "تحويل", Prefix: "TRF"},
		{Value: TxTypeExpense, Label: "مصروف", Prefix: "EXP"},
		{Value: TxTypeIncome, Label: "إيراد", Prefix: "INC"},
		{Value: TxTypeRefund, Label: "استرداد", Prefix: "REF"},
	}
}

// TypePrefix deriva el prefijo de 3 letras mayúsculas de un tipo de transacción.
// Tipos de menos de 3 caracteres se rellenan con 'X' para conservar el formato.
func TypePrefix(transactionType string) string {
	s := strings.ToUpper(strings.TrimSpace(transactionType))
	runes := []rune(s)
	if len(runes) > 3 {
		runes = runes[:3]
	}
	for len(runes) < 3 {
		runes = append(runes, 'X')
	}
	return string(runes)
}

// FormatElectronicNumber arma el número electrónico: {prefijo}{año}-{secuencia a 6 dígitos}.
// Formato exacto: ^[A-Z]{3}\d{4}-\d{6}$.
func FormatElectronicNumber(prefix string, year int, sequence int64) string {
	return fmt.Sprintf("%s%04d-%06d", prefix, year, sequence)
}

// FormatAccountNumber arma el número de cuenta de un suscriptor:
// COMP{empresa}-SUB{secuencia a 6 dígitos}. Formato exacto: ^COMP\d+-SUB\d{6}$.
func FormatAccountNumber(companyID int64, sequence int64) string {
	return fmt.Sprintf("COMP%d-SUB%06d", companyID, sequence)
}

// TransactionCounter es el contador por (empresa, año, tipo). CurrentNumber
// solo crece; la fila se crea perezosamente en la primera asignación y nunca
// se borra ni se reinicia a mitad de año.
type TransactionCounter struct {
	ID              int64
	CompanyID       int64
	Year            int
	TransactionType string
	Prefix          string
	CurrentNumber   int64
	UpdatedAt       time.Time
}

// Transaction es un asiento financiero. Inmutable tras persistir salvo
// Description y ReferenceNumber; (CompanyID, ElectronicNumber) es único.
type Transaction struct {
	ID               int64
	CompanyID        int64
	ElectronicNumber string
	TransactionType  string
	Amount           decimal.Decimal
	Description      string
	ReferenceNumber  string
	TransactionDate  time.Time
	CreatedBy        int64
	AssignedTo       *int64 // responsable de la cobranza, si aplica
	CreatedByName    string // join con users, solo lectura
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
