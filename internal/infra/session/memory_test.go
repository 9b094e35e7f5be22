package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"resume-rewrite-service/internal/domain"
)

func TestCreateAndGetRoundTrip(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	sess, err := store.Create(context.Background(), "简历正文", "要求", "zh", "en", "10.0.0.1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if sess.ID == "" {
		t.Fatal("session id not assigned")
	}

	got, err := store.GetAndTouch(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ResumeText != "简历正文" || got.Requirements != "要求" {
		t.Fatalf("round trip lost fields: %+v", got)
	}
	if got.SourceLanguage != "zh" || got.TargetLanguage != "en" {
		t.Fatalf("languages lost: %+v", got)
	}
	if got.ClientAddr != "10.0.0.1" {
		t.Fatalf("client addr lost: %+v", got)
	}
}

func TestGetUnknownSession(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	if _, err := store.GetAndTouch(context.Background(), "missing"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("want ErrSessionNotFound, got %v", err)
	}
}

func TestGetRejectsExpiredBetweenSweeps(t *testing.T) {
	store := NewMemoryStore(10 * time.Millisecond)
	sess, err := store.Create(context.Background(), "r", "", "zh", "zh", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	time.Sleep(30 * time.Millisecond)

	if _, err := store.GetAndTouch(context.Background(), sess.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expired session must 404 without a sweep, got %v", err)
	}
	if n, _ := store.Len(context.Background()); n != 0 {
		t.Fatalf("expired session not evicted on access, len = %d", n)
	}
}

func TestTouchExtendsLifetime(t *testing.T) {
	store := NewMemoryStore(60 * time.Millisecond)
	sess, err := store.Create(context.Background(), "r", "", "zh", "zh", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// keep touching inside the ttl; the session must survive well past it
	deadline := time.Now().Add(150 * time.Millisecond)
	for time.Now().Before(deadline) {
		if _, err := store.GetAndTouch(context.Background(), sess.ID); err != nil {
			t.Fatalf("touched session expired: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestDeleteExpiredSweepsOnlyStale(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	stale, _ := store.Create(context.Background(), "old", "", "zh", "zh", "")
	fresh, _ := store.Create(context.Background(), "new", "", "zh", "zh", "")

	removed, err := store.DeleteExpired(context.Background(), time.Now().Add(-time.Second))
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if removed != 0 {
		t.Fatalf("nothing is stale yet, removed %d", removed)
	}

	removed, err = store.DeleteExpired(context.Background(), time.Now().Add(2*time.Minute))
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}
	if _, err := store.GetAndTouch(context.Background(), stale.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("stale session survived the sweep: %v", err)
	}
	if _, err := store.GetAndTouch(context.Background(), fresh.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("swept session still readable: %v", err)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	sess, _ := store.Create(context.Background(), "original", "", "zh", "zh", "")

	got, err := store.GetAndTouch(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got.ResumeText = "mutated"

	again, err := store.GetAndTouch(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if again.ResumeText != "original" {
		t.Fatal("caller mutation leaked into the store")
	}
}
