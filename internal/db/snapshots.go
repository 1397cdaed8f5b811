package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// RecordSnapshot logs one completed poll cycle and how many delay records
// it produced. The snapshot log is observability data only; nothing in
// the pipeline reads it back.
func (db *DB) RecordSnapshot(ctx context.Context, polledAt time.Time, recordCount int) (string, error) {
	snapshotID := uuid.New().String()

	db.LockWrite()
	defer db.UnlockWrite()

	_, err := db.conn.ExecContext(ctx,
		"INSERT INTO poll_snapshots (snapshot_id, polled_at, record_count) VALUES (?, ?, ?)",
		snapshotID, polledAt.Format(timeFormat), recordCount,
	)
	if err != nil {
		return "", fmt.Errorf("failed to record snapshot: %w", err)
	}

	return snapshotID, nil
}

// PruneSnapshots deletes poll snapshots older than the retention window.
func (db *DB) PruneSnapshots(ctx context.Context, retention time.Duration) error {
	hours := int(retention.Hours())
	if hours < 1 {
		hours = 1
	}

	db.LockWrite()
	defer db.UnlockWrite()

	result, err := db.conn.ExecContext(ctx, fmt.Sprintf(
		"DELETE FROM poll_snapshots WHERE datetime(polled_at) < datetime('now', 'localtime', '-%d hours')", hours,
	))
	if err != nil {
		return fmt.Errorf("failed to prune snapshots: %w", err)
	}

	if deleted, _ := result.RowsAffected(); deleted > 0 {
		log.Printf("Pruned %d poll snapshots older than %d hours", deleted, hours)
	}

	return nil
}
