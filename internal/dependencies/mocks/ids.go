package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/rpgroster-go/internal/dependencies/ids"
	"github.com/mcoot/rpgroster-go/internal/model"
)

// MockIDs is a mock Generator that hands out predictable IDs
type MockIDs struct {
	mu sync.Mutex

	// CharacterIDs is a queue of IDs to return before falling back to a sequence
	CharacterIDs []model.CharacterID
	// UserIDs is a queue of IDs to return before falling back to a sequence
	UserIDs []model.UserID

	characterSeq int
	userSeq      int
}

// Ensure MockIDs implements Generator
var _ ids.Generator = (*MockIDs)(nil)

// NewMockIDs creates a new MockIDs
func NewMockIDs() *MockIDs {
	return &MockIDs{}
}

// NewCharacterID returns the next queued ID, or char-N once the queue is empty
func (m *MockIDs) NewCharacterID() model.CharacterID {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.CharacterIDs) > 0 {
		id := m.CharacterIDs[0]
		m.CharacterIDs = m.CharacterIDs[1:]
		return id
	}
	m.characterSeq++
	return model.CharacterID(fmt.Sprintf("char-%d", m.characterSeq))
}

// NewUserID returns the next queued ID, or user-N once the queue is empty
func (m *MockIDs) NewUserID() model.UserID {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.UserIDs) > 0 {
		id := m.UserIDs[0]
		m.UserIDs = m.UserIDs[1:]
		return id
	}
	m.userSeq++
	return model.UserID(fmt.Sprintf("user-%d", m.userSeq))
}

// QueueCharacterIDs adds values to the character ID queue
func (m *MockIDs) QueueCharacterIDs(values ...model.CharacterID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CharacterIDs = append(m.CharacterIDs, values...)
}
