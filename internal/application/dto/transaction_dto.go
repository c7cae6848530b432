package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateTransactionRequest payload para registrar una transacción financiera.
// Amount viaja como string para no perder precisión decimal en el JSON.
type CreateTransactionRequest struct {
	CompanyID       int64  `json:"company_id"`
	TransactionType string `json:"transaction_type"`
	Amount          string `json:"amount"`
	Description     string `json:"description"`
	ReferenceNumber string `json:"reference_number"`
	TransactionDate string `json:"transaction_date"` // YYYY-MM-DD
	AssignedTo      *int64 `json:"assigned_to"`
}

// UpdateTransactionRequest solo admite los campos mutables tras persistir.
type UpdateTransactionRequest struct {
	Description     *string `json:"description"`
	ReferenceNumber *string `json:"reference_number"`
}

// TransactionResponse representación de una transacción persistida.
type TransactionResponse struct {
	ID               int64           `json:"id"`
	CompanyID        int64           `json:"company_id"`
	ElectronicNumber string          `json:"electronic_number"`
	TransactionType  string          `json:"transaction_type"`
	Amount           decimal.Decimal `json:"amount"`
	Description      string          `json:"description"`
	ReferenceNumber  string          `json:"reference_number,omitempty"`
	TransactionDate  string          `json:"transaction_date"`
	CreatedBy        int64           `json:"created_by"`
	CreatedByName    string          `json:"created_by_name,omitempty"`
	AssignedTo       *int64          `json:"assigned_to,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// TransactionResult envoltura {success, message, transaction}.
type TransactionResult struct {
	Result
	Transaction *TransactionResponse `json:"transaction"`
}

// TransactionListResult envoltura {success, message, transactions, pagination}.
type TransactionListResult struct {
	Result
	Transactions []TransactionResponse `json:"transactions"`
	Pagination   PageResponse          `json:"pagination"`
}
