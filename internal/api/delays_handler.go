package api

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kollektiv-forsinkelser/tracker/internal/db"
	"github.com/kollektiv-forsinkelser/tracker/internal/models"
)

// DelayRepository defines the store queries the API reads from
type DelayRepository interface {
	TodayDelays(ctx context.Context) ([]db.DelayRow, error)
	Summary24h(ctx context.Context) (*db.DelaySummary, error)
	LastArchivedDays(ctx context.Context, n int) ([]db.DailyStat, error)
	YearTotal(ctx context.Context, year int, transport string) (int, error)
}

// ErrorResponse is the JSON body returned on handler failures
type ErrorResponse struct {
	Error string `json:"error"`
}

// DelayHandler handles HTTP requests for delay data
type DelayHandler struct {
	repo DelayRepository
}

// NewDelayHandler creates a new handler with the given repository
func NewDelayHandler(repo DelayRepository) *DelayHandler {
	return &DelayHandler{repo: repo}
}

// GetDelays handles GET /api/delays: today's delays, most recent first.
func (h *DelayHandler) GetDelays(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rows, err := h.repo.TodayDelays(ctx)
	if err != nil {
		writeError(w, "Failed to get delays")
		return
	}

	delays := make([]models.Delay, 0, len(rows))
	for _, row := range rows {
		delays = append(delays, models.Delay{
			Line:         cleanLineName(row.Line),
			Station:      row.Station,
			Transport:    row.Transport,
			DelayMinutes: row.DelayMinutes,
			Timestamp:    row.Timestamp,
		})
	}

	writeJSON(w, delays)
}

// GetStats handles GET /api/stats: count and mean delay over 24 hours.
func (h *DelayHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	summary, err := h.repo.Summary24h(ctx)
	if err != nil {
		writeError(w, "Failed to get delay summary")
		return
	}

	writeJSON(w, models.StatsResponse{
		TotalDelays24h:  summary.TotalDelays,
		AverageDelay24h: math.Round(summary.AverageDelay*10) / 10,
	})
}

// GetDailyStats handles GET /api/daily_stats: last 7 archived days,
// oldest first.
func (h *DelayHandler) GetDailyStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	stats, err := h.repo.LastArchivedDays(ctx, 7)
	if err != nil {
		writeError(w, "Failed to get daily stats")
		return
	}

	result := make([]models.DailyStat, 0, len(stats))
	for _, s := range stats {
		result = append(result, models.DailyStat{
			Date:         s.Date,
			Transport:    s.Transport,
			TotalDelays:  s.TotalDelays,
			AverageDelay: s.AverageDelay,
			MaxDelay:     s.MaxDelay,
		})
	}

	writeJSON(w, result)
}

// GetYearTotal handles GET /api/history/{year} and
// GET /api/history/{year}/{transport}. A transport of "all" or an absent
// segment sums every mode; a year with no archived rows returns 0.
func (h *DelayHandler) GetYearTotal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(ErrorResponse{Error: "Invalid year"})
		return
	}

	transport := chi.URLParam(r, "transport")
	if transport == "all" {
		transport = ""
	}

	total, err := h.repo.YearTotal(ctx, year, transport)
	if err != nil {
		writeError(w, "Failed to get year total")
		return
	}

	resp := models.YearTotalResponse{Year: year, Transport: transport, Total: total}
	if resp.Transport == "" {
		resp.Transport = "all"
	}
	writeJSON(w, resp)
}

// cleanLineName strips Entur line references like
// "RUT:Line:31_inbound" down to the bare line code "31".
func cleanLineName(line string) string {
	if i := strings.Index(line, ":Line:"); i >= 0 {
		line = line[i+len(":Line:"):]
		if j := strings.Index(line, "_"); j >= 0 {
			line = line[:j]
		}
	}
	return line
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(ErrorResponse{Error: msg})
}
