package access

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type memoKey struct {
	check   string
	subject int64
}

// Memo caches permission decisions for the lifetime of one request.
// The zero value is ready to use.
type Memo struct {
	mu      sync.Mutex
	entries map[memoKey]bool
}

// Decide returns the cached decision for (check, subject), computing it with
// fn on first use. Errors are returned uncached.
func (m *Memo) Decide(check string, subject int64, fn func() (bool, error)) (bool, error) {
	key := memoKey{check: check, subject: subject}
	m.mu.Lock()
	if v, ok := m.entries[key]; ok {
		m.mu.Unlock()
		return v, nil
	}
	m.mu.Unlock()

	v, err := fn()
	if err != nil {
		return false, err
	}
	m.mu.Lock()
	if m.entries == nil {
		m.entries = make(map[memoKey]bool)
	}
	m.entries[key] = v
	m.mu.Unlock()
	return v, nil
}

// Len returns the number of cached decisions.
func (m *Memo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Reset empties the memo.
func (m *Memo) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
}

// Request is the explicit per-request context handed to the sheet service.
type Request struct {
	ID    uuid.UUID
	Actor Actor
	Memo  *Memo
}

// NewRequest starts a request for userID with a fresh ID and an empty memo.
func NewRequest(userID int64) *Request {
	return &Request{ID: uuid.New(), Actor: Actor{UserID: userID}, Memo: &Memo{}}
}

// End releases the request-scoped state.
func (r *Request) End() {
	r.Memo.Reset()
}

// Logger returns logger annotated with the request ID and user.
func (r *Request) Logger(logger *zap.Logger) *zap.Logger {
	return logger.With(
		zap.String("request_id", r.ID.String()),
		zap.Int64("user_id", r.Actor.UserID),
	)
}
