// Package domain defines the persistence models of the application. The
// types here are mapped with GORM and shared across the repository and
// service layers.
package domain

import "time"

// Summary is the single persistent entity: one saved meeting summary.
//
// A row is created by an explicit save action and afterwards only read or
// deleted; there is no update-in-place operation. The identifier and the
// creation timestamp are assigned by the store, never by the caller.
//
// Fields:
//   - ID: auto-incrementing integer primary key.
//   - Title: short display title; the service substitutes a default when
//     the user leaves it blank.
//   - Prompt: the instruction text that was sent to the generator.
//   - OriginalTranscript: the verbatim transcript input.
//   - GeneratedSummary: the verbatim generator output.
//   - EditedSummary: the user-facing text at save time; falls back to
//     GeneratedSummary when not separately supplied.
//   - CreatedAt: insert timestamp, set once by the repository.
type Summary struct {
	ID                 uint      `json:"id"                  gorm:"primaryKey;autoIncrement"`
	Title              string    `json:"title"               gorm:"type:varchar(255);not null"`
	Prompt             string    `json:"prompt"              gorm:"type:text;not null"`
	OriginalTranscript string    `json:"original_transcript" gorm:"type:text;not null"`
	GeneratedSummary   string    `json:"generated_summary"   gorm:"type:text;not null"`
	EditedSummary      string    `json:"edited_summary"      gorm:"type:text;not null"`
	CreatedAt          time.Time `json:"created_at"          gorm:"index"`
}

// TableName returns the database table name for Summary.
func (Summary) TableName() string { return "summaries" }
