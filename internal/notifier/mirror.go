package notifier

import (
	"sync"

	"github.com/saas-webapp/web/internal/model"
)

// UserState is the client-side view of the session user.
type UserState struct {
	ID            string
	Username      string
	CreditBalance int64
}

// Mirror is a read-only projection of the authoritative session user. Only the
// Notifier writes it, always from a server response, so it cannot diverge from
// the session it was derived from.
type Mirror struct {
	mu    sync.RWMutex
	state UserState
	set   bool
}

func NewMirror() *Mirror {
	return &Mirror{}
}

// Snapshot returns the current state and whether a user has been applied.
func (m *Mirror) Snapshot() (UserState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state, m.set
}

func (m *Mirror) apply(user model.SessionUser) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = UserState{
		ID:            user.ID,
		Username:      user.Username,
		CreditBalance: user.StartingCredits,
	}
	m.set = true
}

func (m *Mirror) clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = UserState{}
	m.set = false
}
