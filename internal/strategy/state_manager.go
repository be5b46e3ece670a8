package strategy

import (
	"sync"
	"time"
)

// PassRecord summarises the outcome of one analysis pass
type PassRecord struct {
	ID        string    `json:"id"`
	At        time.Time `json:"at"`
	Bars      int       `json:"bars"`
	Price     float64   `json:"price,omitempty"`
	RSI       float64   `json:"rsi,omitempty"`
	MA        float64   `json:"ma,omitempty"`
	Pattern   string    `json:"pattern,omitempty"`
	Candidate string    `json:"candidate"`
	Emitted   string    `json:"emitted"`
	Error     string    `json:"error,omitempty"`
}

// Snapshot is a copy of the in-memory bot state.
type Snapshot struct {
	Symbol     string      `json:"symbol"`
	StartedAt  time.Time   `json:"started_at"`
	LastSignal string      `json:"last_signal"`
	Passes     int         `json:"passes"`
	Failures   int         `json:"failures"`
	LastPass   *PassRecord `json:"last_pass,omitempty"`
}

// StateManager keeps pass bookkeeping in memory. Nothing is written to disk;
// a restart starts from an empty state.
type StateManager struct {
	mu         sync.RWMutex
	symbol     string
	startedAt  time.Time
	lastSignal Signal
	passes     int
	failures   int
	lastPass   *PassRecord
}

// NewStateManager creates a manager for the given instrument
func NewStateManager(symbol string) *StateManager {
	return &StateManager{
		symbol:    symbol,
		startedAt: time.Now(),
	}
}

// RecordPass stores the latest pass and the current last emitted signal.
func (sm *StateManager) RecordPass(rec PassRecord, lastSignal Signal) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.passes++
	if rec.Error != "" {
		sm.failures++
	}
	sm.lastSignal = lastSignal
	r := rec
	sm.lastPass = &r
}

// SetSymbol follows a config refresh that changed the instrument.
func (sm *StateManager) SetSymbol(symbol string) {
	sm.mu.Lock()
	sm.symbol = symbol
	sm.mu.Unlock()
}

// Snapshot returns a copy safe to hand to other goroutines
func (sm *StateManager) Snapshot() Snapshot {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	snap := Snapshot{
		Symbol:     sm.symbol,
		StartedAt:  sm.startedAt,
		LastSignal: sm.lastSignal.String(),
		Passes:     sm.passes,
		Failures:   sm.failures,
	}
	if sm.lastPass != nil {
		p := *sm.lastPass
		snap.LastPass = &p
	}
	return snap
}
