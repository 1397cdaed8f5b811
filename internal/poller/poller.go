package poller

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/kollektiv-forsinkelser/tracker/internal/config"
	"github.com/kollektiv-forsinkelser/tracker/internal/db"
	"github.com/kollektiv-forsinkelser/tracker/internal/siri"
)

const dateFormat = "2006-01-02"

// Poller runs the fetch → decode → store → archive pipeline against the
// vehicle-monitoring feed.
type Poller struct {
	db     *db.DB
	cfg    *config.Config
	client *http.Client
	now    func() time.Time
}

// NewPoller creates a new feed poller
func NewPoller(database *db.DB, cfg *config.Config) *Poller {
	return &Poller{
		db:  database,
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.FetchTimeout,
		},
		now: time.Now,
	}
}

// Run executes the polling loop until ctx is cancelled. Each cycle polls
// once, then checks whether the local calendar day changed since the
// previous cycle; on rollover the finished day is archived before the
// marker advances. A failed cycle logs and retries after the shorter
// backoff instead of the regular interval; the loop itself never stops
// on errors.
func (p *Poller) Run(ctx context.Context) {
	currentDay := p.now().Format(dateFormat)
	log.Printf("Polling loop started (interval %v, tracking day %s)", p.cfg.PollInterval, currentDay)

	for {
		sleep := p.cfg.PollInterval

		if err := p.Poll(ctx); err != nil {
			log.Printf("Poll cycle failed: %v", err)
			sleep = p.cfg.RetryBackoff
		} else if today := p.now().Format(dateFormat); today != currentDay {
			day, _ := time.ParseInLocation(dateFormat, currentDay, time.Local)
			if err := p.db.ArchiveDay(ctx, day); err != nil {
				log.Printf("Archive of %s failed: %v", currentDay, err)
				sleep = p.cfg.RetryBackoff
			} else {
				currentDay = today
			}
		}

		select {
		case <-time.After(sleep):
		case <-ctx.Done():
			log.Println("Polling loop stopped")
			return
		}
	}
}

// Poll runs a single fetch → decode → store cycle. Fetch and decode
// failures are recovered here as an empty record set so a bad feed never
// takes the loop down; only storage failures propagate to the caller.
func (p *Poller) Poll(ctx context.Context) error {
	polledAt := p.now()

	records := p.fetchDelays(ctx)

	delays := make([]db.Delay, 0, len(records))
	for _, r := range records {
		delays = append(delays, db.Delay{
			Line:         r.Line,
			Station:      r.Station,
			Transport:    r.Transport,
			DelayMinutes: r.DelayMinutes,
		})
	}

	if err := p.db.UpsertDelays(ctx, delays, polledAt); err != nil {
		return fmt.Errorf("failed to store delays: %w", err)
	}

	if _, err := p.db.RecordSnapshot(ctx, polledAt, len(delays)); err != nil {
		log.Printf("Snapshot log write failed: %v", err)
	}
	if err := p.db.PruneSnapshots(ctx, p.cfg.SnapshotRetention); err != nil {
		log.Printf("Snapshot prune failed: %v", err)
	}

	log.Printf("Polled %d delays", len(delays))
	return nil
}

// fetchDelays fetches and decodes the feed, degrading to an empty record
// set on any fetch or decode failure.
func (p *Poller) fetchDelays(ctx context.Context) []siri.DelayRecord {
	raw, err := p.fetchFeed(ctx)
	if err != nil {
		log.Printf("Feed fetch failed: %v", err)
		return nil
	}

	records, err := siri.DecodeDelays(raw, true)
	if err != nil {
		log.Printf("Feed decode failed: %v", err)
		return nil
	}

	return records
}

// fetchFeed fetches the raw vehicle-monitoring payload
func (p *Poller) fetchFeed(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", p.cfg.FeedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("ET-Client-Name", p.cfg.ClientName)
	req.Header.Set("Accept", "application/xml")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return body, nil
}
