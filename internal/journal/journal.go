package journal

import (
	"io"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"reversal-alert/internal/strategy"
)

// Journal appends one JSON line per analysis pass
type Journal struct {
	mu     sync.Mutex
	log    zerolog.Logger
	closer io.Closer
	runID  string
}

// Open appends to the file at path. An empty path gives a journal that
// discards everything.
func Open(path string) (*Journal, error) {
	if path == "" {
		return New(io.Discard), nil
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	j := New(file)
	j.closer = file
	return j, nil
}

// New writes records to w. Timestamps follow zerolog.TimeFieldFormat,
// which the process sets once at startup.
func New(w io.Writer) *Journal {
	return &Journal{
		log:   zerolog.New(w).With().Timestamp().Logger(),
		runID: uuid.NewString(),
	}
}

// RunID identifies this process run in every record
func (j *Journal) RunID() string {
	return j.runID
}

// NewPassID returns a fresh identifier for an analysis pass
func NewPassID() string {
	return uuid.NewString()
}

// Record writes one pass. Failed passes are logged at error level.
func (j *Journal) Record(symbol string, rec strategy.PassRecord) {
	j.mu.Lock()
	defer j.mu.Unlock()

	var ev *zerolog.Event
	if rec.Error != "" {
		ev = j.log.Error().Str("error", rec.Error)
	} else {
		ev = j.log.Info()
	}
	ev.Str("run_id", j.runID).
		Str("pass_id", rec.ID).
		Str("symbol", symbol).
		Time("pass_at", rec.At).
		Int("bars", rec.Bars).
		Float64("price", rec.Price).
		Float64("rsi", rec.RSI).
		Float64("ma", rec.MA).
		Str("pattern", rec.Pattern).
		Str("candidate", rec.Candidate).
		Str("emitted", rec.Emitted).
		Bool("suppressed", rec.Candidate != strategy.SignalNone.String() && rec.Emitted == strategy.SignalNone.String()).
		Msg("pass")
}

// Close releases the underlying file, if any
func (j *Journal) Close() error {
	if j.closer == nil {
		return nil
	}
	return j.closer.Close()
}
