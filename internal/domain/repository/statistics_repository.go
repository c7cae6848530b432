package repository

import (
	"context"

	"github.com/shopspring/decimal"
)

// TypeStats es el desglose por tipo de transacción.
type TypeStats struct {
	TransactionType string          `json:"transaction_type"`
	Count           int64           `json:"count"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
}

// MonthStats es el desglose por mes (1-12) dentro del año consultado.
type MonthStats struct {
	Month       int             `json:"month"`
	Count       int64           `json:"count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// CompanyYearStats agrega las transacciones de una empresa en un año.
type CompanyYearStats struct {
	Year              int             `json:"year"`
	TotalTransactions int64           `json:"total_transactions"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	ByType            []TypeStats     `json:"by_type"`
	ByMonth           []MonthStats    `json:"by_month"`
}

// SystemStats son los totales globales del panel de administración del sistema.
type SystemStats struct {
	TotalCompanies     int64            `json:"total_companies"`
	ActiveCompanies    int64            `json:"active_companies"`
	SuspendedCompanies int64            `json:"suspended_companies"`
	TotalUsers         int64            `json:"total_users"`
	TotalTransactions  int64            `json:"total_transactions"`
	CompaniesByPlan    map[string]int64 `json:"companies_by_plan"`
}

// StatisticsRepository agrupa las consultas de solo lectura de agregación.
// Sin efectos secundarios: ninguna implementación debe escribir.
type StatisticsRepository interface {
	CompanyYearStats(ctx context.Context, companyID int64, year int) (*CompanyYearStats, error)
	SystemStats(ctx context.Context) (*SystemStats, error)
}
