package ids

import (
	"github.com/google/uuid"

	"github.com/mcoot/rpgroster-go/internal/model"
)

// Generator mints identifiers for new records and can be mocked for testing
type Generator interface {
	NewUserID() model.UserID
	NewCharacterID() model.CharacterID
}

// UUIDGenerator implements Generator with random (v4) UUIDs
type UUIDGenerator struct{}

// New creates a new UUIDGenerator
func New() *UUIDGenerator {
	return &UUIDGenerator{}
}

// NewUserID returns a fresh user ID
func (g *UUIDGenerator) NewUserID() model.UserID {
	return model.UserID(uuid.NewString())
}

// NewCharacterID returns a fresh character ID
func (g *UUIDGenerator) NewCharacterID() model.CharacterID {
	return model.CharacterID(uuid.NewString())
}
