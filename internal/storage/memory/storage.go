package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/mcoot/rpgroster-go/internal/model"
	"github.com/mcoot/rpgroster-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Records are cloned on the way in and out so callers never share state with the store.
type Storage struct {
	mu sync.RWMutex

	users         map[model.UserID]*model.User
	emailIndex    map[string]model.UserID
	usernameIndex map[string]model.UserID
	characters    map[model.CharacterID]*model.Character
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:         make(map[model.UserID]*model.User),
		emailIndex:    make(map[string]model.UserID),
		usernameIndex: make(map[string]model.UserID),
		characters:    make(map[model.CharacterID]*model.Character),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Close is a no-op for the in-memory store
func (s *Storage) Close() error {
	return nil
}

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; ok {
		return model.ErrUserExists
	}
	if _, ok := s.emailIndex[user.Email]; ok {
		return model.ErrUserExists
	}
	if _, ok := s.usernameIndex[user.Username]; ok {
		return model.ErrUserExists
	}
	u := *user
	s.users[u.ID] = &u
	s.emailIndex[u.Email] = u.ID
	s.usernameIndex[u.Username] = u.ID
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	id, ok := s.emailIndex[email]
	s.mu.RUnlock()
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return s.GetUser(ctx, id)
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	id, ok := s.usernameIndex[username]
	s.mu.RUnlock()
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return s.GetUser(ctx, id)
}

// Character operations

func (s *Storage) CreateCharacter(ctx context.Context, c *model.Character) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.characters[c.ID] = c.Clone()
	return nil
}

func (s *Storage) GetCharacter(ctx context.Context, id model.CharacterID) (*model.Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.characters[id]
	if !ok {
		return nil, model.ErrCharacterNotFound
	}
	return c.Clone(), nil
}

func (s *Storage) ListCharacters(ctx context.Context, q model.CharacterQuery) ([]*model.Character, error) {
	s.mu.RLock()
	matched := s.filter(q.Filter)
	s.mu.RUnlock()

	slices.SortFunc(matched, q.Compare)

	offset, ok := q.Offset()
	if !ok || offset >= len(matched) {
		return []*model.Character{}, nil
	}
	end := len(matched)
	if q.Limit > 0 && q.Limit < end-offset {
		end = offset + q.Limit
	}
	return matched[offset:end], nil
}

func (s *Storage) CountCharacters(ctx context.Context, f model.CharacterFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.filter(f)), nil
}

// filter returns clones of every character matching f; callers must hold the lock
func (s *Storage) filter(f model.CharacterFilter) []*model.Character {
	out := make([]*model.Character, 0, len(s.characters))
	for _, c := range s.characters {
		if f.Matches(c) {
			out = append(out, c.Clone())
		}
	}
	return out
}

func (s *Storage) UpdateCharacter(ctx context.Context, c *model.Character) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.characters[c.ID]
	if !ok {
		return model.ErrCharacterNotFound
	}
	if current.Version != c.Version {
		return model.ErrVersionConflict
	}
	c.Version++
	s.characters[c.ID] = c.Clone()
	return nil
}

func (s *Storage) DeleteCharacter(ctx context.Context, id model.CharacterID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.characters[id]; !ok {
		return model.ErrCharacterNotFound
	}
	delete(s.characters, id)
	return nil
}

func (s *Storage) DeleteCharacters(ctx context.Context, ids []model.CharacterID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for _, id := range ids {
		if _, ok := s.characters[id]; ok {
			delete(s.characters, id)
			deleted++
		}
	}
	return deleted, nil
}
