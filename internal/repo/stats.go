// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries used
// primarily for conditional responses (e.g., ETag generation) in the HTTP
// layer. Each function is context-aware and safe to call from services or
// handlers.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/pverdon/go-minutes-backend/internal/domain"
)

// SummariesStats returns aggregate metadata for the summaries table: the
// total number of rows and the maximum CreatedAt timestamp among them.
//
// It executes two lightweight queries. When the store is empty, the returned
// count is 0 and maxCreatedAt is nil.
//
// Return values:
//   - count:        total stored summaries
//   - maxCreatedAt: pointer to the greatest CreatedAt, or nil if no rows
//   - err:          database error, if any
func SummariesStats(ctx context.Context, db *gorm.DB) (count int64, maxCreatedAt *time.Time, err error) {
	count, err = CountSummaries(ctx, db)
	if err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest created_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		CreatedAt time.Time
	}
	q := db.WithContext(ctx).Model(&domain.Summary{})
	if err = q.Select("created_at").Order("created_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.CreatedAt, nil
}
