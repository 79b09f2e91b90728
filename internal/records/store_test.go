// ABOUTME: Tests for the health metrics store.
// ABOUTME: Covers write-then-refetch, stale marking, and overlapping fetches.
package records

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/harperreed/healthtrack/internal/apperr"
	"github.com/harperreed/healthtrack/internal/backend"
	"github.com/harperreed/healthtrack/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userID = "user-1"

func hr(v float64) models.Reading {
	var r models.Reading
	r.Set(models.FieldHeartRate, v)
	return r
}

func TestInitialState(t *testing.T) {
	s := New(backend.NewMemory())
	snap := s.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Empty(t, snap.Records)
	assert.Nil(t, snap.Err)
	assert.False(t, snap.Stale)
}

func TestFetchEmpty(t *testing.T) {
	s := New(backend.NewMemory())
	s.Fetch(context.Background(), userID)

	snap := s.Snapshot()
	assert.Equal(t, StateLoaded, snap.State)
	assert.NotNil(t, snap.Records)
	assert.Empty(t, snap.Records)
}

func TestAddRefetchesNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc := backend.NewMemory()
	s := New(svc)

	s.Add(ctx, userID, hr(70))
	s.Add(ctx, userID, hr(80))

	snap := s.Snapshot()
	require.Equal(t, StateLoaded, snap.State)
	require.Len(t, snap.Records, 2)
	assert.Equal(t, 80.0, snap.Records[0].Value(models.FieldHeartRate))
	assert.Equal(t, 70.0, snap.Records[1].Value(models.FieldHeartRate))
	assert.True(t, snap.Records[0].CreatedAt.After(snap.Records[1].CreatedAt))

	// One refetch per write; no local appends.
	assert.Equal(t, 2, svc.Calls(backend.OpInsertRecord))
	assert.Equal(t, 2, svc.Calls(backend.OpQueryRecords))

	// The collection is exactly what the service returns.
	want, err := svc.QueryRecords(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, want, snap.Records)
}

func TestAddReturnsSettledSnapshot(t *testing.T) {
	ctx := context.Background()
	svc := backend.NewMemory()
	s := New(svc)

	snap := s.Add(ctx, userID, hr(70))
	assert.Equal(t, StateLoaded, snap.State)
	require.Len(t, snap.Records, 1)
	assert.Equal(t, s.Snapshot(), snap)

	svc.FailOn(backend.OpQueryRecords, errors.New("timeout"))
	snap = s.Add(ctx, userID, hr(80))
	assert.Equal(t, StateError, snap.State)
	assert.True(t, snap.Stale)
	require.NotNil(t, snap.Err)
	assert.Equal(t, "timeout", snap.Err.Message)
}

func TestFetchErrorKeepsRecords(t *testing.T) {
	ctx := context.Background()
	svc := backend.NewMemory()
	s := New(svc)
	s.Add(ctx, userID, hr(70))
	require.Len(t, s.Snapshot().Records, 1)

	svc.FailOn(backend.OpQueryRecords, errors.New("connection reset"))
	s.Fetch(ctx, userID)

	snap := s.Snapshot()
	assert.Equal(t, StateError, snap.State)
	require.NotNil(t, snap.Err)
	assert.Equal(t, apperr.KindData, snap.Err.Kind)
	assert.Equal(t, "connection reset", snap.Err.Message)
	assert.Len(t, snap.Records, 1)
}

func TestEmptyErrorUsesDefaultMessage(t *testing.T) {
	ctx := context.Background()
	svc := backend.NewMemory()
	s := New(svc)

	svc.FailOn(backend.OpQueryRecords, errors.New(""))
	s.Fetch(ctx, userID)
	assert.Equal(t, msgFetch, s.Snapshot().Err.Message)

	svc.FailOn(backend.OpInsertRecord, errors.New(""))
	s.Add(ctx, userID, hr(70))
	assert.Equal(t, msgSave, s.Snapshot().Err.Message)
}

func TestWriteFailureSkipsRefetch(t *testing.T) {
	ctx := context.Background()
	svc := backend.NewMemory()
	s := New(svc)

	svc.FailOn(backend.OpInsertRecord, errors.New("permission denied"))
	s.Add(ctx, userID, hr(70))

	snap := s.Snapshot()
	assert.Equal(t, StateError, snap.State)
	assert.Equal(t, "permission denied", snap.Err.Message)
	assert.False(t, snap.Stale)
	assert.Equal(t, 0, svc.Calls(backend.OpQueryRecords))
}

func TestRefetchFailureMarksStale(t *testing.T) {
	ctx := context.Background()
	svc := backend.NewMemory()
	s := New(svc)

	svc.FailOn(backend.OpQueryRecords, errors.New("timeout"))
	s.Add(ctx, userID, hr(70))

	snap := s.Snapshot()
	assert.Equal(t, StateError, snap.State)
	assert.Equal(t, "timeout", snap.Err.Message)
	assert.True(t, snap.Stale)
	assert.Empty(t, snap.Records)

	// The write did commit.
	svc.FailOn(backend.OpQueryRecords, nil)
	s.Fetch(ctx, userID)
	snap = s.Snapshot()
	assert.Equal(t, StateLoaded, snap.State)
	assert.False(t, snap.Stale)
	assert.Len(t, snap.Records, 1)
}

func TestNotAuthenticatedWrite(t *testing.T) {
	s := New(backend.NewMemory())
	s.Add(context.Background(), "", hr(70))

	snap := s.Snapshot()
	assert.Equal(t, StateError, snap.State)
	assert.Contains(t, snap.Err.Message, backend.ErrNotAuthenticated.Error())
}

func TestSnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	s := New(backend.NewMemory())
	s.Add(ctx, userID, hr(70))

	snap := s.Snapshot()
	snap.Records[0].Set(models.FieldHeartRate, 1)
	snap.Records = nil

	again := s.Snapshot()
	require.Len(t, again.Records, 1)
	assert.Equal(t, 70.0, again.Records[0].Value(models.FieldHeartRate))
}

// gatedService holds each QueryRecords call until the test releases it.
type gatedService struct {
	backend.DataService

	mu      sync.Mutex
	n       int
	gates   []chan gatedResult
	started chan int
}

type gatedResult struct {
	records []models.HealthRecord
	err     error
}

func newGated(calls int) *gatedService {
	g := &gatedService{started: make(chan int, calls)}
	for i := 0; i < calls; i++ {
		g.gates = append(g.gates, make(chan gatedResult, 1))
	}
	return g
}

func (g *gatedService) QueryRecords(ctx context.Context, _ string) ([]models.HealthRecord, error) {
	g.mu.Lock()
	i := g.n
	g.n++
	g.mu.Unlock()

	g.started <- i
	select {
	case r := <-g.gates[i]:
		return r.records, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (g *gatedService) InsertRecord(context.Context, string, models.Reading) error {
	return nil
}

func recordsWith(id string) []models.HealthRecord {
	return []models.HealthRecord{{ID: id, UserID: userID, CreatedAt: time.Now()}}
}

// overlap runs two fetches where the first issued settles last.
func overlap(t *testing.T, s *Store, g *gatedService) {
	t.Helper()
	ctx := context.Background()

	first := make(chan struct{})
	go func() {
		s.Fetch(ctx, userID)
		close(first)
	}()
	require.Equal(t, 0, <-g.started)

	second := make(chan struct{})
	go func() {
		s.Fetch(ctx, userID)
		close(second)
	}()
	require.Equal(t, 1, <-g.started)

	g.gates[1] <- gatedResult{records: recordsWith("newer")}
	<-second
	g.gates[0] <- gatedResult{records: recordsWith("older")}
	<-first
}

func TestOverlappingFetchesLastSettledWins(t *testing.T) {
	g := newGated(2)
	s := New(g)
	overlap(t, s, g)

	snap := s.Snapshot()
	assert.Equal(t, StateLoaded, snap.State)
	require.Len(t, snap.Records, 1)
	assert.Equal(t, "older", snap.Records[0].ID)
}

func TestRequestFencingDropsSupersededResult(t *testing.T) {
	g := newGated(2)
	s := New(g, WithRequestFencing())
	overlap(t, s, g)

	snap := s.Snapshot()
	assert.Equal(t, StateLoaded, snap.State)
	require.Len(t, snap.Records, 1)
	assert.Equal(t, "newer", snap.Records[0].ID)
}

func TestFencingDropsSupersededError(t *testing.T) {
	ctx := context.Background()
	g := newGated(2)
	s := New(g, WithRequestFencing())

	first := make(chan struct{})
	go func() {
		s.Fetch(ctx, userID)
		close(first)
	}()
	<-g.started
	second := make(chan struct{})
	go func() {
		s.Fetch(ctx, userID)
		close(second)
	}()
	<-g.started

	g.gates[1] <- gatedResult{records: recordsWith("newer")}
	<-second
	g.gates[0] <- gatedResult{err: errors.New("late failure")}
	<-first

	snap := s.Snapshot()
	assert.Equal(t, StateLoaded, snap.State)
	assert.Nil(t, snap.Err)
}

func TestTimeoutResolvesStalledFetch(t *testing.T) {
	g := newGated(1)
	s := New(g, WithTimeout(10*time.Millisecond))
	s.Fetch(context.Background(), userID)

	snap := s.Snapshot()
	assert.Equal(t, StateError, snap.State)
	assert.Equal(t, context.DeadlineExceeded.Error(), snap.Err.Message)
}

// addThenFetch runs an Add and a Fetch whose refetch/fetch results are
// released in the given order.
func addThenFetch(t *testing.T, s *Store, g *gatedService, addResult, fetchResult gatedResult, addFirst bool) (addSnap Snapshot) {
	t.Helper()
	ctx := context.Background()

	added := make(chan Snapshot, 1)
	go func() { added <- s.Add(ctx, userID, hr(70)) }()
	require.Equal(t, 0, <-g.started)

	fetched := make(chan struct{})
	go func() {
		s.Fetch(ctx, userID)
		close(fetched)
	}()
	require.Equal(t, 1, <-g.started)

	if addFirst {
		g.gates[0] <- addResult
		addSnap = <-added
		g.gates[1] <- fetchResult
		<-fetched
		return addSnap
	}
	g.gates[1] <- fetchResult
	<-fetched
	g.gates[0] <- addResult
	return <-added
}

func TestAddSnapshotSurvivesLaterFetch(t *testing.T) {
	g := newGated(2)
	s := New(g)

	got := addThenFetch(t, s, g,
		gatedResult{records: recordsWith("mine")},
		gatedResult{records: recordsWith("other")}, true)

	require.Len(t, got.Records, 1)
	assert.Equal(t, "mine", got.Records[0].ID)
	assert.Equal(t, "other", s.Snapshot().Records[0].ID)
}

func TestStaleOnlyWithRefetchError(t *testing.T) {
	tests := []struct {
		name      string
		addFirst  bool
		wantState State
		wantStale bool
	}{
		{"fetch settles after failed refetch", true, StateLoaded, false},
		{"failed refetch settles last", false, StateError, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGated(2)
			s := New(g)

			addThenFetch(t, s, g,
				gatedResult{err: errors.New("timeout")},
				gatedResult{records: recordsWith("fresh")}, tt.addFirst)

			snap := s.Snapshot()
			assert.Equal(t, tt.wantState, snap.State)
			assert.Equal(t, tt.wantStale, snap.Stale)
			assert.Equal(t, tt.wantStale, snap.Err != nil)
		})
	}
}
