package db

import (
	"context"
	"fmt"
	"time"
)

// Delay represents a delay observation for database insertion
type Delay struct {
	Line         string
	Station      string
	Transport    string
	DelayMinutes float64
}

// DelayRow is a stored delay observation as returned by queries
type DelayRow struct {
	Line         string
	Station      string
	Transport    string
	DelayMinutes float64
	Timestamp    string
}

// DelaySummary is the rolling 24-hour count and mean delay
type DelaySummary struct {
	TotalDelays  int
	AverageDelay float64
}

// UpsertDelays inserts or updates delay rows keyed by
// (line, station, transport). An existing key gets its delay and
// timestamp replaced; last writer wins, no averaging.
func (db *DB) UpsertDelays(ctx context.Context, delays []Delay, now time.Time) error {
	if len(delays) == 0 {
		return nil
	}

	db.LockWrite()
	defer db.UnlockWrite()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO delays (line, station, transport, delay_minutes, timestamp)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (line, station, transport) DO UPDATE SET
			delay_minutes = excluded.delay_minutes,
			timestamp = excluded.timestamp
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert statement: %w", err)
	}
	defer stmt.Close()

	nowStr := now.Format(timeFormat)
	for _, d := range delays {
		if _, err := stmt.ExecContext(ctx, d.Line, d.Station, d.Transport, d.DelayMinutes, nowStr); err != nil {
			return fmt.Errorf("failed to upsert delay %s/%s/%s: %w", d.Line, d.Station, d.Transport, err)
		}
	}

	return tx.Commit()
}

// TodayDelays returns all delay rows stamped with today's local date,
// most recent first.
func (db *DB) TodayDelays(ctx context.Context) ([]DelayRow, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT line, station, transport, delay_minutes, timestamp
		FROM delays
		WHERE date(timestamp) = date('now', 'localtime')
		ORDER BY timestamp DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query today's delays: %w", err)
	}
	defer rows.Close()

	var delays []DelayRow
	for rows.Next() {
		var d DelayRow
		if err := rows.Scan(&d.Line, &d.Station, &d.Transport, &d.DelayMinutes, &d.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan delay row: %w", err)
		}
		delays = append(delays, d)
	}

	return delays, rows.Err()
}

// Summary24h returns the count and mean delay over the trailing 24 hours.
// An empty window yields zeros, never NULL.
func (db *DB) Summary24h(ctx context.Context) (*DelaySummary, error) {
	var summary DelaySummary
	var avg *float64

	err := db.conn.QueryRowContext(ctx, `
		SELECT COUNT(*), AVG(delay_minutes)
		FROM delays
		WHERE timestamp >= datetime('now', 'localtime', '-1 day')
	`).Scan(&summary.TotalDelays, &avg)
	if err != nil {
		return nil, fmt.Errorf("failed to query 24h summary: %w", err)
	}

	if avg != nil {
		summary.AverageDelay = *avg
	}

	return &summary, nil
}
