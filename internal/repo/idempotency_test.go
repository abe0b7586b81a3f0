package repo

import (
	"context"
	"testing"
	"time"

	"github.com/pverdon/go-minutes-backend/internal/domain"
)

func TestGetIdempotency_NoScope_ReturnsNotFound(t *testing.T) {
	db := newTestDB(t, &domain.Idempotency{})
	now := time.Now().UTC()

	rec, err := GetIdempotency(context.Background(), db, "u1", "   ", "k1", now)
	if rec != nil || err != ErrNotFound {
		t.Fatalf("expected (nil, ErrNotFound) for empty scope, got (%v, %v)", rec, err)
	}
}

func TestGetIdempotency_ExpiredOrMissing_ReturnsNotFound(t *testing.T) {
	db := newTestDB(t, &domain.Idempotency{})
	now := time.Now().UTC()

	// Insert an expired record (expires_at <= now)
	exp := &domain.Idempotency{
		ID:        "expired",
		UserID:    "u1",
		Scope:     "save",
		Key:       "k1",
		Status:    200,
		CreatedAt: now.Add(-2 * time.Hour),
		ExpiresAt: now.Add(-time.Hour),
	}
	if err := db.Create(exp).Error; err != nil {
		t.Fatalf("seed expired: %v", err)
	}

	rec, err := GetIdempotency(context.Background(), db, "u1", "save", "k1", now)
	if rec != nil || err != ErrNotFound {
		t.Fatalf("expected (nil, ErrNotFound) for expired, got (%v, %v)", rec, err)
	}

	// Also check a totally missing key
	rec2, err2 := GetIdempotency(context.Background(), db, "u1", "save", "missing", now)
	if rec2 != nil || err2 != ErrNotFound {
		t.Fatalf("expected (nil, ErrNotFound) for missing, got (%v, %v)", rec2, err2)
	}
}

func TestGetIdempotency_Success(t *testing.T) {
	db := newTestDB(t, &domain.Idempotency{})
	now := time.Now().UTC()

	ok := &domain.Idempotency{
		ID:        "ok",
		UserID:    "u1",
		Scope:     "email",
		Key:       "k2",
		Ref:       "msg-1",
		Status:    202,
		CreatedAt: now.Add(-time.Minute),
		ExpiresAt: now.Add(time.Hour),
	}
	if err := db.Create(ok).Error; err != nil {
		t.Fatalf("seed ok: %v", err)
	}

	rec, err := GetIdempotency(context.Background(), db, "u1", "email", "k2", now)
	if err != nil {
		t.Fatalf("GetIdempotency success err: %v", err)
	}
	if rec == nil || rec.Ref != "msg-1" || rec.Status != 202 {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestCreateIdempotency_SetsFieldsAndTTL(t *testing.T) {
	db := newTestDB(t, &domain.Idempotency{})

	rec, err := CreateIdempotency(context.Background(), db, "u1", "save", "k1", "7", 201, time.Hour)
	if err != nil {
		t.Fatalf("CreateIdempotency: %v", err)
	}
	if rec.ID == "" || rec.UserID != "u1" || rec.Scope != "save" || rec.Key != "k1" || rec.Ref != "7" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if !rec.ExpiresAt.After(rec.CreatedAt) {
		t.Fatalf("ExpiresAt %v must be after CreatedAt %v", rec.ExpiresAt, rec.CreatedAt)
	}
}

func TestCreateIdempotency_DuplicateTuple(t *testing.T) {
	db := newTestDB(t, &domain.Idempotency{})

	if _, err := CreateIdempotency(context.Background(), db, "u1", "email", "k1", "a", 202, time.Hour); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if _, err := CreateIdempotency(context.Background(), db, "u1", "email", "k1", "b", 202, time.Hour); err != ErrDuplicate {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	// A different scope with the same key is a distinct tuple.
	if _, err := CreateIdempotency(context.Background(), db, "u1", "save", "k1", "c", 201, time.Hour); err != nil {
		t.Fatalf("different scope should insert: %v", err)
	}
}
