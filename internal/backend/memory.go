// ABOUTME: In-memory persistence service for demos and tests.
// ABOUTME: Mirrors the SQLite service's semantics and supports failure injection.
package backend

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/healthtrack/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// Op names a service call for failure injection and call counting.
type Op string

const (
	OpSignUp        Op = "sign_up"
	OpSignIn        Op = "sign_in"
	OpSignOut       Op = "sign_out"
	OpGetSession    Op = "get_session"
	OpInsertRecord  Op = "insert_record"
	OpQueryRecords  Op = "query_records"
	OpUpsertProfile Op = "upsert_profile"
	OpGetProfile    Op = "get_profile"
)

type memUser struct {
	identity models.Identity
	hash     []byte
}

// Memory is a Service held entirely in process memory.
type Memory struct {
	mu       sync.Mutex
	users    map[string]*memUser // keyed by lower-cased email
	current  *models.Identity
	records  map[string][]models.HealthRecord
	profiles map[string]models.Profile
	failures map[Op]error
	calls    map[Op]int
	lastTime time.Time
	now      func() time.Time
}

// Compile-time check that Memory implements Service.
var _ Service = (*Memory)(nil)

// NewMemory creates an empty in-memory service.
func NewMemory() *Memory {
	return &Memory{
		users:    make(map[string]*memUser),
		records:  make(map[string][]models.HealthRecord),
		profiles: make(map[string]models.Profile),
		failures: make(map[Op]error),
		calls:    make(map[Op]int),
		now:      time.Now,
	}
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}

// FailOn makes every subsequent call of op return err. A nil err clears it.
func (m *Memory) FailOn(op Op, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, op)
		return
	}
	m.failures[op] = err
}

// Calls returns how many times op has been invoked.
func (m *Memory) Calls(op Op) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// enter counts the call and returns any injected failure. Caller holds mu.
func (m *Memory) enter(ctx context.Context, op Op) error {
	m.calls[op]++
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.failures[op]
}

func (m *Memory) SignUp(ctx context.Context, email, password string) (*models.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, OpSignUp); err != nil {
		return nil, err
	}

	key := strings.ToLower(strings.TrimSpace(email))
	if _, ok := m.users[key]; ok {
		return nil, ErrUserExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &memUser{
		identity: models.Identity{ID: uuid.New().String(), Email: strings.TrimSpace(email)},
		hash:     hash,
	}
	m.users[key] = u
	id := u.identity
	m.current = &id
	return &id, nil
}

func (m *Memory) SignIn(ctx context.Context, email, password string) (*models.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, OpSignIn); err != nil {
		return nil, err
	}

	u, ok := m.users[strings.ToLower(strings.TrimSpace(email))]
	if !ok || bcrypt.CompareHashAndPassword(u.hash, []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	id := u.identity
	m.current = &id
	return &id, nil
}

func (m *Memory) SignOut(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, OpSignOut); err != nil {
		return err
	}
	m.current = nil
	return nil
}

func (m *Memory) GetSession(ctx context.Context) (*models.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, OpGetSession); err != nil {
		return nil, err
	}
	if m.current == nil {
		return nil, nil
	}
	id := *m.current
	return &id, nil
}

func (m *Memory) InsertRecord(ctx context.Context, userID string, r models.Reading) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, OpInsertRecord); err != nil {
		return err
	}
	if userID == "" {
		return fmt.Errorf("insert record: %w", ErrNotAuthenticated)
	}

	created := m.now().UTC()
	if !created.After(m.lastTime) {
		created = m.lastTime.Add(time.Microsecond)
	}
	m.lastTime = created

	m.records[userID] = append(m.records[userID], models.HealthRecord{
		ID:        uuid.New().String(),
		UserID:    userID,
		CreatedAt: created,
		Reading:   r.Clone(),
	})
	return nil
}

func (m *Memory) QueryRecords(ctx context.Context, userID string) ([]models.HealthRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, OpQueryRecords); err != nil {
		return nil, err
	}

	out := models.CloneRecords(m.records[userID])
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) UpsertProfile(ctx context.Context, userID string, p models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, OpUpsertProfile); err != nil {
		return err
	}
	if userID == "" {
		return fmt.Errorf("upsert profile: %w", ErrNotAuthenticated)
	}
	p.ID = userID
	p.UpdatedAt = m.now().UTC()
	m.profiles[userID] = p
	return nil
}

func (m *Memory) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, OpGetProfile); err != nil {
		return nil, err
	}
	p, ok := m.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}
