package bot

import (
	"sync"

	"github.com/belanjabot/belanjabot/pkg/api"
)

// state is the conversation step a chat is currently on.
type state int

const (
	// stateIdle means no entry is in progress.
	stateIdle state = iota
	// stateAwaitLocation means an expense was parsed without a location.
	stateAwaitLocation
	// stateAwaitMore means the bot asked whether more items were bought.
	stateAwaitMore
	// stateAwaitReceipt means the bot offered to attach a receipt photo
	// before saving.
	stateAwaitReceipt
)

// session holds the in-progress entry for one chat. Pending candidates are
// only persisted once the conversation reaches its end; a /cancel drops
// them.
type session struct {
	state   state
	pending []api.Expense
}

// sessions tracks per-chat conversation state. Each LogBot owns exactly one
// registry and passes it explicitly; there is no package-level state.
type sessions struct {
	mu sync.Mutex
	m  map[int64]*session
}

func newSessions() *sessions {
	return &sessions{m: make(map[int64]*session)}
}

// get returns the chat's session, creating an idle one if absent.
func (s *sessions) get(ownerID int64) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.m[ownerID]
	if !ok {
		sess = &session{}
		s.m[ownerID] = sess
	}
	return sess
}

// reset discards the chat's session, dropping any pending candidates.
func (s *sessions) reset(ownerID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, ownerID)
}
