package config

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// Store owns the active configuration and re-reads config.yaml on demand.
type Store struct {
	mu      sync.RWMutex
	path    string
	modTime time.Time
	current *AppConfig
}

// NewStore loads path and keeps it as the active configuration.
func NewStore(path string) (*Store, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return &Store{path: path, modTime: info.ModTime(), current: cfg}, nil
}

// Current returns the active configuration.
func (s *Store) Current() *AppConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Refresh reloads the file when its modification time changed. It reports
// whether a new configuration became active. On error the previous
// configuration stays active.
func (s *Store) Refresh() (bool, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", s.path, err)
	}

	s.mu.RLock()
	unchanged := info.ModTime().Equal(s.modTime)
	s.mu.RUnlock()
	if unchanged {
		return false, nil
	}

	cfg, err := LoadConfig(s.path)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	s.current = cfg
	s.modTime = info.ModTime()
	s.mu.Unlock()
	return true, nil
}
