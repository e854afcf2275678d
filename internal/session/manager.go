package session

import (
	"context"
	"sync"
	"time"
)

// Manager owns all live sessions. Each account additionally carries a
// handling lock so that no two events for the same account are interleaved.
type Manager struct {
	mu       sync.Mutex
	sessions map[int64]*entry
	ttl      time.Duration
}

type entry struct {
	handling sync.Mutex
	session  Session
}

func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		sessions: make(map[int64]*entry),
		ttl:      ttl,
	}
}

func (m *Manager) entryFor(accountID int64) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[accountID]
	if !ok {
		e = &entry{session: Session{AccountID: accountID, UpdatedAt: time.Now()}}
		m.sessions[accountID] = e
	}
	return e
}

// Lock serializes event handling for one account. The returned func
// releases the lock. An entry can be swept between lookup and acquisition,
// so membership is re-checked after locking; holding an orphaned entry's
// lock would let two events for one account interleave.
func (m *Manager) Lock(accountID int64) func() {
	for {
		e := m.entryFor(accountID)
		e.handling.Lock()
		m.mu.Lock()
		current := m.sessions[accountID]
		m.mu.Unlock()
		if current == e {
			return e.handling.Unlock
		}
		e.handling.Unlock()
	}
}

func (m *Manager) Get(accountID int64) Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.sessions[accountID]; ok {
		return e.session
	}
	return Session{AccountID: accountID}
}

// SetExpectation replaces the expectation tag and applies the supplied
// payload fields; nil patch fields keep their current value.
func (m *Manager) SetExpectation(accountID int64, expectation Expectation, patch Patch) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[accountID]
	if !ok {
		e = &entry{session: Session{AccountID: accountID}}
		m.sessions[accountID] = e
	}
	e.session.Expectation = expectation
	if patch.Counterparty != nil {
		e.session.Counterparty = *patch.Counterparty
	}
	if patch.AmountMinor != nil {
		e.session.AmountMinor = *patch.AmountMinor
	}
	if patch.TransferID != nil {
		e.session.TransferID = *patch.TransferID
	}
	if patch.Registering != nil {
		e.session.Registering = *patch.Registering
	}
	e.session.UpdatedAt = time.Now()
}

// Clear resets the expectation and every pending payload field. Called at
// the end of every completed or abandoned flow.
func (m *Manager) Clear(accountID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[accountID]
	if !ok {
		return
	}
	e.session = Session{AccountID: accountID, UpdatedAt: time.Now()}
}

// Sweep drops sessions idle for longer than the TTL. Sessions currently
// being handled are skipped and picked up on a later pass.
func (m *Manager) Sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for accountID, e := range m.sessions {
		if now.Sub(e.session.UpdatedAt) < m.ttl {
			continue
		}
		if !e.handling.TryLock() {
			continue
		}
		e.handling.Unlock()
		delete(m.sessions, accountID)
		removed++
	}
	return removed
}

// Run sweeps expired sessions until the context is canceled.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.Sweep(now)
		}
	}
}
