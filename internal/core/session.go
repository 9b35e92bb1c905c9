package core

// session.go holds the per-upload interaction state.
//
// Every successful upload creates a Session that owns one Dataset and the
// Selection applied to it. A Session serializes its own interactions; the
// store only guards the ID map. Idle sessions are removed by a background
// sweeper so abandoned uploads do not pin memory.

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrSessionNotFound is returned for unknown or expired session IDs.
	ErrSessionNotFound = errors.New("session not found")
	// ErrTooManySessions is returned when the store is at capacity.
	ErrTooManySessions = errors.New("too many active sessions")
)

// Session store defaults.
const (
	DefaultSessionTTL    = 30 * time.Minute
	DefaultMaxSessions   = 100
	DefaultSweepInterval = time.Minute
)

// SessionConfig configures a Sessions store. Zero values use the defaults.
type SessionConfig struct {
	TTL           time.Duration
	MaxSessions   int
	SweepInterval time.Duration
}

// Sessions is an in-memory store of live sessions keyed by UUID.
type Sessions struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	cfg      SessionConfig
	now      func() time.Time
}

// NewSessions creates an empty store.
func NewSessions(cfg SessionConfig) *Sessions {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultSessionTTL
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = DefaultMaxSessions
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	return &Sessions{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		now:      time.Now,
	}
}

// Create registers a new session for a loaded Dataset with the default
// selection. Expired sessions are swept first when the store is full.
func (s *Sessions) Create(fileName string, ds *Dataset) (*Session, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sessions) >= s.cfg.MaxSessions {
		s.sweepLocked(now)
		if len(s.sessions) >= s.cfg.MaxSessions {
			return nil, ErrTooManySessions
		}
	}

	sess := &Session{
		ID:       uuid.New().String(),
		Created:  now,
		lastUsed: now,
		now:      s.now,
	}
	sess.load(fileName, ds)
	s.sessions[sess.ID] = sess
	return sess, nil
}

// Get returns the live session with the given ID and marks it used.
func (s *Sessions) Get(id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrSessionNotFound
	}

	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if sess.idleSince(s.now()) > s.cfg.TTL {
		s.Delete(id)
		return nil, ErrSessionNotFound
	}
	sess.touch()
	return sess, nil
}

// Delete removes a session. It reports whether the session existed.
func (s *Sessions) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	return ok
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes sessions idle for longer than the TTL and returns how many
// were removed.
func (s *Sessions) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(now)
}

func (s *Sessions) sweepLocked(now time.Time) int {
	removed := 0
	for id, sess := range s.sessions {
		if sess.idleSince(now) > s.cfg.TTL {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// StartSweeper expires idle sessions every SweepInterval until ctx is
// cancelled. It blocks, so run it in its own goroutine.
func (s *Sessions) StartSweeper(ctx context.Context) {
	slog.Info("session sweeper started",
		"ttl", s.cfg.TTL.String(),
		"interval", s.cfg.SweepInterval.String(),
		"max_sessions", s.cfg.MaxSessions,
	)

	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopped")
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				slog.Info("expired idle sessions", "removed", n, "live", s.Len())
			}
		}
	}
}

// Session is one user's loaded Dataset and current Selection.
// All methods are safe for concurrent use; interactions are applied one at
// a time.
type Session struct {
	ID      string
	Created time.Time

	mu       sync.Mutex
	fileName string
	data     *Dataset
	sel      Selection
	lastUsed time.Time
	now      func() time.Time
}

// ExportScope selects which table Export writes.
type ExportScope string

const (
	// ExportView writes the filtered and sorted View.
	ExportView ExportScope = "view"
	// ExportChartInput writes the View without rows missing the chart axes.
	ExportChartInput ExportScope = "chart"
)

// ParseExportScope maps a query value to a scope. Empty means ExportView.
func ParseExportScope(s string) (ExportScope, error) {
	switch ExportScope(s) {
	case "", ExportView:
		return ExportView, nil
	case ExportChartInput:
		return ExportChartInput, nil
	}
	return "", &ConfigurationError{Field: "scope", Column: s, Err: errors.New("unknown export scope")}
}

// Snapshot is a consistent read of a session taken under its lock.
type Snapshot struct {
	FileName  string
	Dataset   *Dataset
	Selection Selection
	View      *Dataset
}

// Load replaces the session's Dataset and resets the selection to defaults.
func (s *Session) Load(fileName string, ds *Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(fileName, ds)
}

func (s *Session) load(fileName string, ds *Dataset) {
	if ds == nil {
		ds = &Dataset{}
	}
	s.fileName = fileName
	s.data = ds
	s.sel = DefaultSelection(ds)
}

// FileName returns the name of the loaded file.
func (s *Session) FileName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fileName
}

// Dataset returns the loaded Dataset. It must not be modified.
func (s *Session) Dataset() *Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// Selection returns a copy of the current selection.
func (s *Session) Selection() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.Clone()
}

// UpdateSelection validates sel against the Dataset and makes it current.
// On error the previous selection is kept.
func (s *Session) UpdateSelection(sel Selection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sel.Chart == "" {
		sel.Chart = ChartLine
	}
	if err := sel.Validate(s.data); err != nil {
		return err
	}
	s.sel = sel.Clone()
	return nil
}

// View applies the current selection to the Dataset.
func (s *Session) View() (*Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Apply(s.data, s.sel)
}

// Snapshot returns the selection and its View computed together.
func (s *Session) Snapshot() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	view, err := Apply(s.data, s.sel)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{FileName: s.fileName, Dataset: s.data, Selection: s.sel.Clone(), View: view}, nil
}

// Chart projects the current View into a render command for the selected
// chart kind.
func (s *Session) Chart() (*RenderCommand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	view, err := Apply(s.data, s.sel)
	if err != nil {
		return nil, err
	}
	return Project(view, s.sel.Chart, s.sel.X, s.sel.Y, s.sel.Color)
}

// Export serializes the View, or the Chart Input when scope is
// ExportChartInput, as CSV.
func (s *Session) Export(scope ExportScope) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	view, err := Apply(s.data, s.sel)
	if err != nil {
		return nil, err
	}
	if scope == ExportChartInput && s.sel.Chart != ChartHeatmap {
		view, err = ChartInput(view, s.sel.X, s.sel.Y)
		if err != nil {
			return nil, err
		}
	}
	return Export(view), nil
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastUsed = s.now()
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastUsed)
}
