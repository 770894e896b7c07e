package db

import (
	"context"
	"database/sql"
	"fmt"
)

// LogQuery records one processed query for monitoring
func (db *DB) LogQuery(ctx context.Context, rec QueryRecord) error {
	query := `
		INSERT INTO query_analytics (query, intent, products_returned, response_time_ms, was_adversarial)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := db.ExecContext(ctx, query,
		rec.Query, rec.Intent, rec.ProductsReturned, rec.ResponseTimeMs, rec.WasAdversarial,
	)
	if err != nil {
		return fmt.Errorf("failed to log query: %w", err)
	}
	return nil
}

// AnalyticsSummary aggregates query analytics for the admin surface
type AnalyticsSummary struct {
	TotalQueries      int            `json:"total_queries"`
	AdversarialCount  int            `json:"adversarial_count"`
	AvgResponseTimeMs float64        `json:"avg_response_time_ms"`
	IntentCounts      map[string]int `json:"intent_counts"`
}

// GetAnalyticsSummary returns aggregate counts over all logged queries
func (db *DB) GetAnalyticsSummary(ctx context.Context) (*AnalyticsSummary, error) {
	summary := &AnalyticsSummary{IntentCounts: make(map[string]int)}

	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE was_adversarial),
		       COALESCE(AVG(response_time_ms), 0)
		FROM query_analytics
	`
	err := db.QueryRowContext(ctx, query).Scan(
		&summary.TotalQueries, &summary.AdversarialCount, &summary.AvgResponseTimeMs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get analytics summary: %w", err)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT intent, COUNT(*)
		FROM query_analytics
		GROUP BY intent
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get intent counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			intent string
			count  int
		)
		if err := rows.Scan(&intent, &count); err != nil {
			return nil, fmt.Errorf("failed to scan intent count: %w", err)
		}
		summary.IntentCounts[intent] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating intent counts: %w", err)
	}

	return summary, nil
}

// GetAdminByEmail retrieves an admin account by email
func (db *DB) GetAdminByEmail(ctx context.Context, email string) (*AdminUser, error) {
	query := `
		SELECT id, email, password_hash, created_at
		FROM admin_users
		WHERE email = $1
	`

	admin := &AdminUser{}
	err := db.QueryRowContext(ctx, query, email).Scan(
		&admin.ID, &admin.Email, &admin.PasswordHash, &admin.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return admin, nil
}
