// Package session tracks multi-turn chat state. A session is either active
// (chat mode on, turns accumulate) or inactive (no turns held).
package session

import (
	"sync"

	"github.com/promptdeck/promptdeck/internal/models"
)

type Session struct {
	mu     sync.Mutex
	active bool
	turns  []models.Message
}

func New() *Session {
	return &Session{}
}

// SetActive toggles chat mode. Both transitions reset the turns: enabling
// starts a fresh conversation, disabling discards the old one.
func (s *Session) SetActive(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = on
	s.turns = nil
}

func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Turns returns a snapshot copy of the conversation so far
func (s *Session) Turns() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.turns) == 0 {
		return nil
	}
	cpy := make([]models.Message, len(s.turns))
	copy(cpy, s.turns)
	return cpy
}

// AddExchange appends the user turn and then the assistant turn, in that
// order. Called only after a fully successful round-trip, so a failed send
// never touches the session. No-op when inactive.
func (s *Session) AddExchange(userText, assistantText string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	s.turns = append(s.turns,
		models.Message{Role: "user", Content: userText},
		models.Message{Role: "assistant", Content: assistantText},
	)
}

// Restore seeds an active session with previously persisted turns
func (s *Session) Restore(turns []models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = true
	s.turns = make([]models.Message, len(turns))
	copy(s.turns, turns)
}
