package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	database, err := Connect(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := database.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("Failed to ensure schema: %v", err)
	}

	return database
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	database := setupTestDB(t)

	// Running schema creation against an initialized store must be safe
	if err := database.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("Second EnsureSchema failed: %v", err)
	}
}

func TestUpsertDelaysReplacesExistingKey(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	key := Delay{Line: "L1", Station: "Oslo S", Transport: "rail"}

	first := key
	first.DelayMinutes = 3.5
	if err := database.UpsertDelays(ctx, []Delay{first}, time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("First upsert failed: %v", err)
	}

	second := key
	second.DelayMinutes = 5.0
	now := time.Now()
	if err := database.UpsertDelays(ctx, []Delay{second}, now); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}

	rows, err := database.TodayDelays(ctx)
	if err != nil {
		t.Fatalf("TodayDelays failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected exactly 1 row after double upsert, got %d", len(rows))
	}
	if rows[0].DelayMinutes != 5.0 {
		t.Errorf("expected latest delay 5.0, got %v", rows[0].DelayMinutes)
	}
	if rows[0].Timestamp != now.Format("2006-01-02 15:04:05") {
		t.Errorf("expected latest timestamp %s, got %s", now.Format("2006-01-02 15:04:05"), rows[0].Timestamp)
	}
}

func TestUpsertDelaysDistinctKeys(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	delays := []Delay{
		{Line: "31", Station: "Jernbanetorget", Transport: "bus", DelayMinutes: 2.5},
		{Line: "31", Station: "Grorud", Transport: "bus", DelayMinutes: 4.0},
		{Line: "31", Station: "Jernbanetorget", Transport: "tram", DelayMinutes: 3.0},
	}
	if err := database.UpsertDelays(ctx, delays, time.Now()); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	rows, err := database.TodayDelays(ctx)
	if err != nil {
		t.Fatalf("TodayDelays failed: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("expected 3 rows for 3 distinct keys, got %d", len(rows))
	}
}

func TestTodayDelaysOrderedNewestFirst(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	older := time.Now().Add(-10 * time.Minute)
	if err := database.UpsertDelays(ctx, []Delay{{Line: "old", Station: "A", Transport: "bus", DelayMinutes: 2}}, older); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := database.UpsertDelays(ctx, []Delay{{Line: "new", Station: "A", Transport: "bus", DelayMinutes: 3}}, time.Now()); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	rows, err := database.TodayDelays(ctx)
	if err != nil {
		t.Fatalf("TodayDelays failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Line != "new" || rows[1].Line != "old" {
		t.Errorf("rows not ordered newest first: %+v", rows)
	}
}

func TestSummary24h(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	// Empty store yields zeros, not NULLs
	summary, err := database.Summary24h(ctx)
	if err != nil {
		t.Fatalf("Summary24h failed: %v", err)
	}
	if summary.TotalDelays != 0 || summary.AverageDelay != 0 {
		t.Errorf("expected empty summary, got %+v", summary)
	}

	if err := database.UpsertDelays(ctx, []Delay{
		{Line: "L1", Station: "Oslo S", Transport: "rail", DelayMinutes: 3.5},
	}, time.Now()); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	summary, err = database.Summary24h(ctx)
	if err != nil {
		t.Fatalf("Summary24h failed: %v", err)
	}
	if summary.TotalDelays != 1 {
		t.Errorf("expected 1 delay in 24h window, got %d", summary.TotalDelays)
	}
	if summary.AverageDelay != 3.5 {
		t.Errorf("expected average 3.5, got %v", summary.AverageDelay)
	}
}

func TestUpsertDelaysEmptyBatch(t *testing.T) {
	database := setupTestDB(t)

	if err := database.UpsertDelays(context.Background(), nil, time.Now()); err != nil {
		t.Fatalf("Upsert of empty batch failed: %v", err)
	}
}
