// Package services – SummaryService
//
// This file implements the SummaryService, which manages the lifecycle of
// saved summary records. It applies the store-level defaults (placeholder
// title, edited text falling back to generated text), clamps list limits,
// and coordinates repository operations for saving, listing, fetching, and
// deleting records. Records are append-only: there is no update path, so
// the service exposes none.
//
// Service-level errors (e.g., ErrSummaryNotFound, ErrEmptySummary) are
// returned for predictable cases so handlers can map them to HTTP results
// consistently.
package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/pverdon/go-minutes-backend/internal/domain"
)

// DefaultTitle is stored when the user saves without providing a title.
const DefaultTitle = "Untitled"

// DefaultListLimit caps how many records a list call may return.
const DefaultListLimit = 50

// SummaryRepo defines the repository contract required by SummaryService.
// Implementations are responsible for persistence of summary records.
type SummaryRepo interface {
	// CreateSummary inserts a new record and returns it with its assigned id.
	CreateSummary(ctx context.Context, db *gorm.DB, title, prompt, transcript, generated, edited string) (*domain.Summary, error)

	// ListSummaries returns up to limit records, newest first.
	ListSummaries(ctx context.Context, db *gorm.DB, limit int) ([]domain.Summary, error)

	// GetSummary fetches a record by id.
	GetSummary(ctx context.Context, db *gorm.DB, id uint) (*domain.Summary, error)

	// DeleteSummary removes a record by id; missing ids are a no-op.
	DeleteSummary(ctx context.Context, db *gorm.DB, id uint) error

	// DeleteAllSummaries removes every record.
	DeleteAllSummaries(ctx context.Context, db *gorm.DB) error
}

// SummaryService provides record-level operations over the summary store.
// It owns the defaulting rules; the repository below it stays mechanical.
type SummaryService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the summary repository used by this service.
	Repo SummaryRepo

	// TitleMaxLen caps stored titles by rune length.
	TitleMaxLen int
	// ListLimit caps the number of records List may return.
	ListLimit int
}

// NewSummaryService constructs a SummaryService with the store defaults.
func NewSummaryService(db *gorm.DB, r SummaryRepo) *SummaryService {
	return &SummaryService{
		DB:          db,
		Repo:        r,
		TitleMaxLen: 255,
		ListLimit:   DefaultListLimit,
	}
}

// Save persists a new record. A blank title falls back to DefaultTitle and a
// blank edited text falls back to the generated text. The summary text must
// be non-empty; otherwise ErrEmptySummary is returned before any write.
func (s *SummaryService) Save(ctx context.Context, title, prompt, transcript, generated, edited string) (*domain.Summary, error) {
	if strings.TrimSpace(generated) == "" {
		return nil, ErrEmptySummary
	}
	title = normalizeTitle(title)
	if title == "" {
		title = DefaultTitle
	}
	if strings.TrimSpace(edited) == "" {
		edited = generated
	}
	return s.Repo.CreateSummary(ctx, s.DB, s.clip(title), prompt, transcript, generated, edited)
}

// List returns up to limit records, most recent first. Non-positive limits
// fall back to the configured cap, and limits above the cap are clamped.
func (s *SummaryService) List(ctx context.Context, limit int) ([]domain.Summary, error) {
	cap := s.ListLimit
	if cap <= 0 {
		cap = DefaultListLimit
	}
	if limit <= 0 || limit > cap {
		limit = cap
	}
	return s.Repo.ListSummaries(ctx, s.DB, limit)
}

// Get fetches a single record by id, returning ErrSummaryNotFound when it
// does not exist.
func (s *SummaryService) Get(ctx context.Context, id uint) (*domain.Summary, error) {
	rec, err := s.Repo.GetSummary(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSummaryNotFound
		}
		return nil, err
	}
	return rec, nil
}

// Delete removes a record by id. Deleting a missing id is not an error.
func (s *SummaryService) Delete(ctx context.Context, id uint) error {
	return s.Repo.DeleteSummary(ctx, s.DB, id)
}

// DeleteAll removes every stored record.
func (s *SummaryService) DeleteAll(ctx context.Context) error {
	return s.Repo.DeleteAllSummaries(ctx, s.DB)
}

// clip truncates a title to the configured maximum rune length.
func (s *SummaryService) clip(title string) string {
	if s.TitleMaxLen > 0 && utf8.RuneCountInString(title) > s.TitleMaxLen {
		return string([]rune(title)[:s.TitleMaxLen])
	}
	return title
}

// normalizeTitle trims whitespace and collapses multiple spaces to one.
func normalizeTitle(s string) string {
	s = whitespaceRE.ReplaceAllString(strings.TrimSpace(s), " ")
	return s
}

// whitespaceRE collapses consecutive whitespace to a single space.
var whitespaceRE = regexp.MustCompile(`\s+`)
