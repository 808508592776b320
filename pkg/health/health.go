// Package health reports proxy uptime and error rate from the error log.
package health

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/countries-proxy/pkg/errorlog"
	"github.com/Sternrassler/countries-proxy/pkg/logging"
)

// StatusOK is the only status the reporter emits.
const StatusOK = "OK"

// Snapshot is the health document served on /health.
type Snapshot struct {
	Status        string  `json:"status"`
	Uptime        float64 `json:"uptime"`
	TotalRequests int64   `json:"totalRequests"`
	ErrorsLast24h int     `json:"errorsLast24h"`
	ErrorRate     string  `json:"errorRate"`
}

// StateReader exposes a copy of the error log state.
type StateReader interface {
	Snapshot() errorlog.State
}

// Reporter builds health snapshots. It never mutates the error log.
type Reporter struct {
	log     StateReader
	started time.Time
	now     func() time.Time
	logger  zerolog.Logger
}

// NewReporter creates a reporter measuring uptime from started.
func NewReporter(log StateReader, started time.Time) *Reporter {
	return &Reporter{
		log:     log,
		started: started,
		now:     time.Now,
		logger:  logging.NewLogger(logging.ComponentHealth),
	}
}

// Report computes the snapshot at now. Recent errors are re-filtered against
// now, so events that aged out since the last write are not counted.
func (r *Reporter) Report(now time.Time) Snapshot {
	state := r.log.Snapshot()
	recent := len(errorlog.Prune(state.Errors, now))

	return Snapshot{
		Status:        StatusOK,
		Uptime:        now.Sub(r.started).Seconds(),
		TotalRequests: state.TotalRequests,
		ErrorsLast24h: recent,
		ErrorRate:     FormatRate(errorlog.ErrorRate(recent, state.TotalRequests)),
	}
}

// FormatRate renders a percentage with two decimals, e.g. "12.50%".
func FormatRate(rate float64) string {
	return fmt.Sprintf("%.2f%%", rate)
}

// ServeHTTP writes the current snapshot as JSON.
func (r *Reporter) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	snap := r.Report(r.now())

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		r.logger.Warn().Err(err).Msg("Failed to write health response")
	}
}
