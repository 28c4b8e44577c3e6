package request

// RegisterRequest is the request body for registering a user
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// StatsRequest is a complete stat block supplied on create
type StatsRequest struct {
	Health  *int `json:"health" validate:"required,min=0"`
	Attack  *int `json:"attack" validate:"required,min=0"`
	Defense *int `json:"defense" validate:"required,min=0"`
	Speed   *int `json:"speed" validate:"required,min=0"`
	Mana    *int `json:"mana" validate:"required,min=0"`
}

// CreateCharacterRequest is the request body for creating a character
type CreateCharacterRequest struct {
	Name       string        `json:"name" validate:"required,min=2,max=50"`
	Class      string        `json:"class" validate:"required,oneof=warrior mage archer assassin healer"`
	Level      *int          `json:"level" validate:"omitempty,min=1,max=100"`
	Experience *int          `json:"experience" validate:"omitempty,min=0"`
	Rarity     *string       `json:"rarity" validate:"omitempty,oneof=common rare epic legendary"`
	Stats      *StatsRequest `json:"stats" validate:"omitempty"`
	Skills     []string      `json:"skills"`
	IsActive   *bool         `json:"isActive"`
	UserID     *string       `json:"userId"`
}

// StatsPatchRequest holds optional per-stat replacements
type StatsPatchRequest struct {
	Health  *int `json:"health" validate:"omitempty,min=0"`
	Attack  *int `json:"attack" validate:"omitempty,min=0"`
	Defense *int `json:"defense" validate:"omitempty,min=0"`
	Speed   *int `json:"speed" validate:"omitempty,min=0"`
	Mana    *int `json:"mana" validate:"omitempty,min=0"`
}

// UpdateCharacterRequest is the request body for a partial character update
type UpdateCharacterRequest struct {
	Name       *string            `json:"name" validate:"omitempty,min=2,max=50"`
	Class      *string            `json:"class" validate:"omitempty,oneof=warrior mage archer assassin healer"`
	Level      *int               `json:"level" validate:"omitempty,min=1,max=100"`
	Experience *int               `json:"experience" validate:"omitempty,min=0"`
	Rarity     *string            `json:"rarity" validate:"omitempty,oneof=common rare epic legendary"`
	Stats      *StatsPatchRequest `json:"stats" validate:"omitempty"`
	Skills     *[]string          `json:"skills"`
	IsActive   *bool              `json:"isActive"`
	UserID     *string            `json:"userId"`
}

// BulkDeleteRequest is the request body for deleting several characters
type BulkDeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,required"`
}

// AddExperienceRequest is the request body for granting experience
type AddExperienceRequest struct {
	Experience int `json:"experience" validate:"required,gt=0"`
}

// BattleRequest is the request body for a battle between two characters
type BattleRequest struct {
	Char1ID string `json:"char1Id" validate:"required"`
	Char2ID string `json:"char2Id" validate:"required"`
}
