package database

import (
	"context"
	"database/sql"
	"fmt"

	"cleanhive/internal/models"

	"github.com/shopspring/decimal"
)

// DashboardStats собирается агрегатами на стороне SQL, без вычитывания таблиц целиком.
type DashboardStats struct {
	TotalCustomers    int64            `json:"total_customers"`
	TotalProviders    int64            `json:"total_providers"`
	BookingsByStatus  map[string]int64 `json:"bookings_by_status"`
	Revenue           decimal.Decimal  `json:"revenue"`
	AverageRating     float64          `json:"average_rating"`
	LeadsByStage      map[string]int64 `json:"leads_by_stage"`
	ActivePromotions  int64            `json:"active_promotions"`
}

func (db *DB) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{
		BookingsByStatus: make(map[string]int64),
		Revenue:          decimal.Zero,
	}

	var err error
	if stats.TotalCustomers, err = db.CountUsersByRole(ctx, models.RoleCustomer); err != nil {
		return nil, err
	}
	if stats.TotalProviders, err = db.CountUsersByRole(ctx, models.RoleProvider); err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT status, COUNT(*) FROM bookings GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count bookings by status: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan booking counter: %w", err)
		}
		stats.BookingsByStatus[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	revenue, err := db.CompletedRevenue(ctx)
	if err != nil {
		return nil, err
	}
	stats.Revenue = revenue

	if stats.AverageRating, err = db.AverageRating(ctx); err != nil {
		return nil, err
	}
	if stats.LeadsByStage, err = db.CountLeadsByStage(ctx); err != nil {
		return nil, err
	}

	err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM promotions WHERE is_active = 1`).Scan(&stats.ActivePromotions)
	if err != nil {
		return nil, fmt.Errorf("failed to count active promotions: %w", err)
	}

	return stats, nil
}

// CompletedRevenue sums amounts of completed bookings. Amounts are stored as
// decimal strings, so the sum is accumulated in Go rather than in SQL.
func (db *DB) CompletedRevenue(ctx context.Context) (decimal.Decimal, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT amount FROM bookings WHERE status = ?`, models.StatusCompleted)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to query revenue: %w", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var amountStr string
		if err := rows.Scan(&amountStr); err != nil {
			return decimal.Zero, fmt.Errorf("failed to scan amount: %w", err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to parse amount %s: %w", amountStr, err)
		}
		total = total.Add(amount)
	}
	return total, rows.Err()
}

// MonthlyRevenuePoint одна точка графика выручки.
type MonthlyRevenuePoint struct {
	Month   string          `json:"month"` // YYYY-MM
	Revenue decimal.Decimal `json:"revenue"`
	Count   int64           `json:"count"`
}

func (db *DB) MonthlyRevenue(ctx context.Context, months int) ([]MonthlyRevenuePoint, error) {
	if months <= 0 {
		months = 12
	}
	query := `SELECT strftime('%Y-%m', scheduled_date) AS month, amount FROM bookings
        WHERE status = ? ORDER BY month ASC`
	rows, err := db.QueryContext(ctx, query, models.StatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly revenue: %w", err)
	}
	defer rows.Close()

	byMonth := make(map[string]*MonthlyRevenuePoint)
	var order []string
	for rows.Next() {
		var month sql.NullString
		var amountStr string
		if err := rows.Scan(&month, &amountStr); err != nil {
			return nil, fmt.Errorf("failed to scan revenue row: %w", err)
		}
		if !month.Valid {
			continue
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse amount %s: %w", amountStr, err)
		}
		point, ok := byMonth[month.String]
		if !ok {
			point = &MonthlyRevenuePoint{Month: month.String, Revenue: decimal.Zero}
			byMonth[month.String] = point
			order = append(order, month.String)
		}
		point.Revenue = point.Revenue.Add(amount)
		point.Count++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(order) > months {
		order = order[len(order)-months:]
	}
	result := make([]MonthlyRevenuePoint, 0, len(order))
	for _, m := range order {
		result = append(result, *byMonth[m])
	}
	return result, nil
}
