// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Summary
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a summary is not found, GetSummary returns gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - DeleteSummary is a no-op when the id does not exist; absence is not
//     an error.
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated. Nothing is retried.
//
// Summaries are append-only: there is deliberately no update function. A
// record is created once, read by list/get, and destroyed by single or
// bulk delete. Business defaults (placeholder titles, edited-falls-back-
// to-generated) belong to services.SummaryService, not here.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/pverdon/go-minutes-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateSummary inserts a new Summary row. The identifier is assigned by
// SQLite (autoincrement) and CreatedAt is set here to UTC; callers never
// supply either.
//
// On success, it returns the persisted Summary. On failure, it returns a DB error.
func CreateSummary(ctx context.Context, db *gorm.DB, title, prompt, transcript, generated, edited string) (*domain.Summary, error) {
	s := &domain.Summary{
		Title:              title,
		Prompt:             prompt,
		OriginalTranscript: transcript,
		GeneratedSummary:   generated,
		EditedSummary:      edited,
		CreatedAt:          time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// ListSummaries returns up to limit summaries ordered by creation time
// descending (most recent first). The id is used as a tiebreaker so rows
// created within the same timestamp still come back newest first. An empty
// store yields an empty slice. On DB error, it returns the error.
func ListSummaries(ctx context.Context, db *gorm.DB, limit int) ([]domain.Summary, error) {
	var out []domain.Summary
	err := db.WithContext(ctx).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountSummaries returns the total number of stored summaries.
// On DB error, it returns the error.
func CountSummaries(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Summary{}).
		Count(&total).Error
	return total, err
}

// GetSummary fetches a single summary by its identifier. If the record does
// not exist, it returns ErrNotFound. On other DB errors, the raw error is
// returned.
func GetSummary(ctx context.Context, db *gorm.DB, id uint) (*domain.Summary, error) {
	var s domain.Summary
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteSummary removes the summary matching id if present. Deleting a
// missing id affects zero rows and is not an error. On DB error, the raw
// error is returned.
func DeleteSummary(ctx context.Context, db *gorm.DB, id uint) error {
	return db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.Summary{}).Error
}

// DeleteAllSummaries removes every stored summary. On DB error, the raw
// error is returned.
func DeleteAllSummaries(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).
		Where("1 = 1").
		Delete(&domain.Summary{}).Error
}
