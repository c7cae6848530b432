package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tadbeer/tadbeer-api/internal/domain/repository"
)

var _ repository.StatisticsRepository = (*StatisticsRepo)(nil)

// StatisticsRepo implementación de las consultas de agregación. Solo lectura.
type StatisticsRepo struct {
	q Querier
}

// NewStatisticsRepository construye el adaptador de estadísticas.
func NewStatisticsRepository(q Querier) *StatisticsRepo {
	return &StatisticsRepo{q: q}
}

// CompanyYearStats agrega las transacciones de la empresa en el año dado:
// totales, desglose por tipo y por mes. Una empresa sin transacciones recibe
// totales en cero, no un error.
func (r *StatisticsRepo) CompanyYearStats(ctx context.Context, companyID int64, year int) (*repository.CompanyYearStats, error) {
	stats := &repository.CompanyYearStats{
		Year:        year,
		TotalAmount: decimal.Zero,
	}

	err := r.q.QueryRow(ctx, `
		SELECT count(*), COALESCE(sum(amount), 0)
		FROM transactions
		WHERE company_id = $1 AND EXTRACT(YEAR FROM transaction_date) = $2`,
		companyID, year,
	).Scan(&stats.TotalTransactions, &stats.TotalAmount)
	if err != nil {
		return nil, fmt.Errorf("stats totals: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT transaction_type, count(*), COALESCE(sum(amount), 0)
		FROM transactions
		WHERE company_id = $1 AND EXTRACT(YEAR FROM transaction_date) = $2
		GROUP BY transaction_type
		ORDER BY transaction_type`,
		companyID, year,
	)
	if err != nil {
		return nil, fmt.Errorf("stats by type: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var t repository.TypeStats
		if err := rows.Scan(&t.TransactionType, &t.Count, &t.TotalAmount); err != nil {
			return nil, fmt.Errorf("scan type stats: %w", err)
		}
		stats.ByType = append(stats.ByType, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	monthRows, err := r.q.Query(ctx, `
		SELECT EXTRACT(MONTH FROM transaction_date)::int, count(*), COALESCE(sum(amount), 0)
		FROM transactions
		WHERE company_id = $1 AND EXTRACT(YEAR FROM transaction_date) = $2
		GROUP BY 1
		ORDER BY 1`,
		companyID, year,
	)
	if err != nil {
		return nil, fmt.Errorf("stats by month: %w", err)
	}
	defer monthRows.Close()
	for monthRows.Next() {
		var m repository.MonthStats
		if err := monthRows.Scan(&m.Month, &m.Count, &m.TotalAmount); err != nil {
			return nil, fmt.Errorf("scan month stats: %w", err)
		}
		stats.ByMonth = append(stats.ByMonth, m)
	}
	return stats, monthRows.Err()
}

// SystemStats devuelve los totales globales del panel de administración.
func (r *StatisticsRepo) SystemStats(ctx context.Context) (*repository.SystemStats, error) {
	stats := &repository.SystemStats{CompaniesByPlan: make(map[string]int64)}

	err := r.q.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM companies),
			(SELECT count(*) FROM companies WHERE subscription_status = 'active'),
			(SELECT count(*) FROM companies WHERE subscription_status = 'suspended'),
			(SELECT count(*) FROM users),
			(SELECT count(*) FROM transactions)`,
	).Scan(
		&stats.TotalCompanies, &stats.ActiveCompanies, &stats.SuspendedCompanies,
		&stats.TotalUsers, &stats.TotalTransactions,
	)
	if err != nil {
		return nil, fmt.Errorf("system stats: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT subscription_plan, count(*) FROM companies GROUP BY subscription_plan`)
	if err != nil {
		return nil, fmt.Errorf("companies by plan: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var plan string
		var count int64
		if err := rows.Scan(&plan, &count); err != nil {
			return nil, fmt.Errorf("scan plan count: %w", err)
		}
		stats.CompaniesByPlan[plan] = count
	}
	return stats, rows.Err()
}
