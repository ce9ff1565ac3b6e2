package flow

import "sync"

// Mode is the per-user conversation mode.
type Mode int

const (
	ModeIdle Mode = iota
	ModeAwaitingQuestion
)

type userState struct {
	Mode         Mode
	SeenGuidance bool
}

// Store holds per-user conversation state in memory. The upstream dispatch
// serializes delivery per chat, so a single coarse lock is enough.
type Store struct {
	mu    sync.Mutex
	users map[int64]*userState
}

func NewStore() *Store {
	return &Store{users: make(map[int64]*userState)}
}

func (s *Store) get(userID int64) *userState {
	st, ok := s.users[userID]
	if !ok {
		st = &userState{}
		s.users[userID] = st
	}
	return st
}

func (s *Store) Mode(userID int64) Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(userID).Mode
}

func (s *Store) SetMode(userID int64, m Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(userID).Mode = m
}

// ObserveGuidance marks the extended question guidance as seen and reports
// whether this was the user's first time. The flag survives /start resets.
func (s *Store) ObserveGuidance(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.get(userID)
	if st.SeenGuidance {
		return false
	}
	st.SeenGuidance = true
	return true
}

// Count reports how many users have conversation state.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}
