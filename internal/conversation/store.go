// Package conversation keeps track of answered questions so that feedback
// can be attached to them later.
package conversation

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned for conversation ids the store never issued.
var ErrNotFound = errors.New("conversation not found")

// Conversation is one answered question.
type Conversation struct {
	ID        string
	Question  string
	Answer    string
	Feedback  *int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store is a keyed, in-memory conversation registry. A conversation is
// created when an answer is produced and updated when feedback arrives.
type Store struct {
	mu            sync.RWMutex
	conversations map[string]*Conversation
	now           func() time.Time
	newID         func() string
}

func NewStore() *Store {
	return &Store{
		conversations: make(map[string]*Conversation),
		now:           time.Now,
		newID:         func() string { return uuid.New().String() },
	}
}

// Create registers a new conversation under a fresh id.
func (s *Store) Create(question, answer string) *Conversation {
	now := s.now()
	c := &Conversation{
		ID:        s.newID(),
		Question:  question,
		Answer:    answer,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.conversations[c.ID] = c
	s.mu.Unlock()

	copied := *c
	return &copied
}

// Get returns a snapshot of the conversation.
func (s *Store) Get(id string) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.conversations[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *c
	if c.Feedback != nil {
		v := *c.Feedback
		copied.Feedback = &v
	}
	return &copied, nil
}

// SetFeedback records feedback on an existing conversation, replacing any
// earlier value.
func (s *Store) SetFeedback(id string, value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conversations[id]
	if !ok {
		return ErrNotFound
	}
	c.Feedback = &value
	c.UpdatedAt = s.now()
	return nil
}

// Len returns the number of tracked conversations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations)
}
