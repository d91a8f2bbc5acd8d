package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
)

// mongoTestStore connects to the MongoDB instance named by
// EVENTDECK_TEST_MONGO_URI, skipping the test when none is configured.
func mongoTestStore(t *testing.T) *MongoStore {
	_ = godotenv.Load("../../.env")

	uri := os.Getenv("EVENTDECK_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("EVENTDECK_TEST_MONGO_URI not set; skipping MongoDB store tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Unique database per run so parallel CI jobs don't collide.
	dbName := fmt.Sprintf("eventdeck_test_%d", time.Now().UnixNano())
	s, err := NewMongoStore(ctx, uri, dbName)
	if err != nil {
		t.Fatalf("failed to connect to test mongodb: %v", err)
	}
	t.Cleanup(func() {
		dropCtx, dropCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer dropCancel()
		s.events.Database().Drop(dropCtx)
		s.Close()
	})
	return s
}

func TestMongoStore_Contract(t *testing.T) {
	s := mongoTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	seed := []struct {
		slug string
		at   time.Time
		tags []string
	}{
		{"source", base, []string{"a", "b"}},
		{"shares-a", base.Add(1 * time.Hour), []string{"a", "x"}},
		{"shares-none", base.Add(2 * time.Hour), []string{"z"}},
	}
	for _, sd := range seed {
		if err := s.Create(ctx, testEvent(sd.slug, sd.at, sd.tags...)); err != nil {
			t.Fatalf("failed to create %s: %v", sd.slug, err)
		}
	}

	if err := s.Create(ctx, testEvent("source", base.Add(time.Minute), "a")); err != ErrDuplicateSlug {
		t.Fatalf("expected ErrDuplicateSlug, got %v", err)
	}

	all, err := s.ListAll(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 3 || all[0].Slug != "shares-none" {
		t.Errorf("recency order mismatch: %+v", all)
	}

	if _, err := s.GetBySlug(ctx, "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	similar, err := s.FindSimilar(ctx, "source")
	if err != nil {
		t.Fatalf("find similar failed: %v", err)
	}
	if len(similar) != 1 || similar[0].Slug != "shares-a" {
		t.Errorf("similarity mismatch: %+v", similar)
	}

	similar, err = s.FindSimilar(ctx, "missing")
	if err != nil || len(similar) != 0 {
		t.Errorf("unresolved slug should fail soft: %v, %d records", err, len(similar))
	}
}
