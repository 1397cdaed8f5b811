package db

import (
	"context"
	"fmt"
	"log"
	"time"
)

// DailyStat is one archived (date, transport) aggregate
type DailyStat struct {
	Date         string
	Transport    string
	TotalDelays  int
	AverageDelay float64
	MaxDelay     float64
}

// ArchiveDay rolls the given calendar day's delay rows into daily_history
// and deletes them. One aggregate row is written per transport mode seen
// that day; transports with no rows produce no history row. Re-running
// for an already-archived day replaces the aggregates rather than
// accumulating, so the operation is idempotent.
func (db *DB) ArchiveDay(ctx context.Context, day time.Time) error {
	dayStr := day.Format(dateFormat)

	db.LockWrite()
	defer db.UnlockWrite()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
		SELECT transport, COUNT(*), AVG(delay_minutes), MAX(delay_minutes)
		FROM delays
		WHERE date(timestamp) = ?
		GROUP BY transport
	`, dayStr)
	if err != nil {
		return fmt.Errorf("failed to aggregate delays for %s: %w", dayStr, err)
	}

	var stats []DailyStat
	for rows.Next() {
		var stat DailyStat
		var avg, max *float64
		if err := rows.Scan(&stat.Transport, &stat.TotalDelays, &avg, &max); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan aggregate row: %w", err)
		}
		if avg != nil {
			stat.AverageDelay = *avg
		}
		if max != nil {
			stat.MaxDelay = *max
		}
		stat.Date = dayStr
		stats = append(stats, stat)
	}
	if err := rows.Close(); err != nil {
		return fmt.Errorf("failed to read aggregate rows: %w", err)
	}

	for _, stat := range stats {
		_, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO daily_history (date, transport, total_delays, average_delay, max_delay)
			VALUES (?, ?, ?, ?, ?)
		`, stat.Date, stat.Transport, stat.TotalDelays, stat.AverageDelay, stat.MaxDelay)
		if err != nil {
			return fmt.Errorf("failed to upsert history for %s/%s: %w", stat.Date, stat.Transport, err)
		}
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM delays WHERE date(timestamp) = ?", dayStr)
	if err != nil {
		return fmt.Errorf("failed to delete archived delays for %s: %w", dayStr, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit archive for %s: %w", dayStr, err)
	}

	deleted, _ := result.RowsAffected()
	log.Printf("Archived %s: %d transport aggregates, %d delay rows cleared", dayStr, len(stats), deleted)
	return nil
}

// LastArchivedDays returns the most recent n archived days, oldest first.
func (db *DB) LastArchivedDays(ctx context.Context, n int) ([]DailyStat, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT date, transport, total_delays, average_delay, max_delay
		FROM (
			SELECT date, transport, total_delays, average_delay, max_delay
			FROM daily_history
			ORDER BY date DESC
			LIMIT ?
		)
		ORDER BY date ASC
	`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily history: %w", err)
	}
	defer rows.Close()

	var stats []DailyStat
	for rows.Next() {
		var stat DailyStat
		if err := rows.Scan(&stat.Date, &stat.Transport, &stat.TotalDelays, &stat.AverageDelay, &stat.MaxDelay); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		stats = append(stats, stat)
	}

	return stats, rows.Err()
}

// YearTotal sums archived delay counts for the given year, optionally
// filtered to one transport mode (empty string means all). Years with no
// archived rows return 0.
func (db *DB) YearTotal(ctx context.Context, year int, transport string) (int, error) {
	start := fmt.Sprintf("%04d-01-01", year)
	end := fmt.Sprintf("%04d-12-31", year)

	var total *int
	var err error
	if transport == "" {
		err = db.conn.QueryRowContext(ctx, `
			SELECT SUM(total_delays)
			FROM daily_history
			WHERE date >= ? AND date <= ?
		`, start, end).Scan(&total)
	} else {
		err = db.conn.QueryRowContext(ctx, `
			SELECT SUM(total_delays)
			FROM daily_history
			WHERE date >= ? AND date <= ? AND transport = ?
		`, start, end, transport).Scan(&total)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query year total: %w", err)
	}

	if total == nil {
		return 0, nil
	}
	return *total, nil
}
