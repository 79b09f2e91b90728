// ABOUTME: Health metrics store: owns the fetched record collection for a session.
// ABOUTME: Writes commit remotely, then resynchronize with a full refetch.
package records

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/healthtrack/internal/apperr"
	"github.com/harperreed/healthtrack/internal/backend"
	"github.com/harperreed/healthtrack/internal/models"
)

// State is the store's current condition.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateLoaded  State = "loaded"
	StateError   State = "error"
)

const (
	msgFetch = "Error fetching health data"
	msgSave  = "Error saving health data"
)

// Snapshot is a read-only copy of the store's state. In the error state
// Records holds the last successfully loaded collection.
type Snapshot struct {
	State   State                 `json:"state"`
	Records []models.HealthRecord `json:"records"`
	Err     *apperr.Error         `json:"error,omitempty"`

	// Stale is set when a write committed but the refetch after it failed,
	// so the server holds data Records does not show. The next successful
	// fetch clears it.
	Stale bool `json:"stale,omitempty"`
}

// Store owns the record collection. Operations block until the service
// call settles; state is observable concurrently through Snapshot. Remote
// failures are recorded in the snapshot rather than returned.
//
// Overlapping calls are not serialized. By default whichever call settles
// last wins; WithRequestFencing drops results from superseded calls.
type Store struct {
	svc     backend.DataService
	log     *log.Logger
	timeout time.Duration
	fence   bool

	mu      sync.RWMutex
	state   State
	records []models.HealthRecord
	err     *apperr.Error
	stale   bool
	latest  uint64
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger for state transitions.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l.WithPrefix("records")
		}
	}
}

// WithTimeout bounds each remote call. Zero means no timeout, in which case
// a stalled call leaves the store loading.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) {
		s.timeout = d
	}
}

// WithRequestFencing makes a newer call supersede older in-flight ones.
func WithRequestFencing() Option {
	return func(s *Store) {
		s.fence = true
	}
}

// New creates an idle Store.
func New(svc backend.DataService, opts ...Option) *Store {
	s := &Store{
		svc:   svc,
		log:   log.New(io.Discard),
		state: StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// snapshotLocked copies the state out. Caller holds mu.
func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:   s.state,
		Records: models.CloneRecords(s.records),
		Stale:   s.stale,
	}
	if s.err != nil {
		e := *s.err
		snap.Err = &e
	}
	return snap
}

// Fetch replaces the collection with the user's records, newest first. On
// failure the previous collection is kept. The returned snapshot is the
// state this call settled, or the current state if its result was dropped.
func (s *Store) Fetch(ctx context.Context, userID string) Snapshot {
	token := s.begin()
	snap, _ := s.fetch(ctx, userID, token, false)
	return snap
}

// Add writes a reading, then refetches. The collection is never appended to
// locally: it only ever reflects what the service returned.
//
// If the write commits but the refetch fails, the refetch error is recorded
// and Stale is set. The returned snapshot is taken as in Fetch.
func (s *Store) Add(ctx context.Context, userID string, r models.Reading) Snapshot {
	token := s.begin()

	callCtx, cancel := s.callContext(ctx)
	err := s.svc.InsertRecord(callCtx, userID, r.Clone())
	cancel()
	if err != nil {
		e := apperr.Normalize(apperr.KindData, err, msgSave)
		s.log.Debug("write failed", "user", userID, "err", e.Message)
		return s.settle(token, func() {
			s.state = StateError
			s.err = e
		})
	}

	s.log.Debug("write committed", "user", userID)
	snap, ok := s.fetch(ctx, userID, token, true)
	if !ok {
		s.log.Warn("refetch after write failed; shown records may be behind the server", "user", userID)
	}
	return snap
}

// fetch queries and applies the result under token. It reports whether the
// query succeeded. A failed query after a committed write sets Stale in the
// same step that records the error.
func (s *Store) fetch(ctx context.Context, userID string, token uint64, afterWrite bool) (Snapshot, bool) {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	records, err := s.svc.QueryRecords(callCtx, userID)
	if err != nil {
		e := apperr.Normalize(apperr.KindData, err, msgFetch)
		s.log.Debug("fetch failed", "user", userID, "err", e.Message)
		return s.settle(token, func() {
			s.state = StateError
			s.err = e
			if afterWrite {
				s.stale = true
			}
		}), false
	}

	records = models.CloneRecords(records)
	if records == nil {
		records = []models.HealthRecord{}
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	s.log.Debug("fetched", "user", userID, "count", len(records))
	return s.settle(token, func() {
		s.state = StateLoaded
		s.records = records
		s.err = nil
		s.stale = false
	}), true
}

// begin moves to loading and issues a request token.
func (s *Store) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest++
	s.state = StateLoading
	s.err = nil
	return s.latest
}

// settle applies a result unless fencing is on and a newer call was issued,
// and returns the state as it stands once the lock is released.
func (s *Store) settle(token uint64, apply func()) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fence && token != s.latest {
		s.log.Debug("dropping superseded result", "token", token, "latest", s.latest)
	} else {
		apply()
	}
	return s.snapshotLocked()
}

func (s *Store) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(ctx, s.timeout)
	}
	return context.WithCancel(ctx)
}
