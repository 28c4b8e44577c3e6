package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/rpgroster-go/internal/dependencies/clock"
	"github.com/mcoot/rpgroster-go/internal/dependencies/ids"
	"github.com/mcoot/rpgroster-go/internal/model"
	"github.com/mcoot/rpgroster-go/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("email or password is incorrect")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrEmailExists        = errors.New("email is already registered")
	ErrUsernameExists     = errors.New("username is already taken")
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// UserSummary is the public view of a user returned alongside a token
type UserSummary struct {
	ID       model.UserID
	Username string
	Email    string
}

// Result is the outcome of a successful register or login
type Result struct {
	Token string
	User  UserSummary
}

// Config holds configuration for the auth service
type Config struct {
	Secret     []byte
	TokenTTL   time.Duration
	BcryptCost int
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		TokenTTL:   7 * 24 * time.Hour,
		BcryptCost: bcrypt.DefaultCost,
	}
}

// Service handles registration, login and token issuance
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	ids     ids.Generator
	logger  *slog.Logger
	tokens  *tokenIssuer
	cost    int
}

// New creates a new AuthService
func New(storage storage.Storage, clock clock.Clock, ids ids.Generator, logger *slog.Logger, cfg Config) *Service {
	defaults := DefaultConfig()
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = defaults.TokenTTL
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = defaults.BcryptCost
	}
	return &Service{
		storage: storage,
		clock:   clock,
		ids:     ids,
		logger:  logger,
		tokens:  newTokenIssuer(cfg.Secret, cfg.TokenTTL, clock),
		cost:    cfg.BcryptCost,
	}
}

// Register creates a user account and returns a token for it
func (s *Service) Register(ctx context.Context, username, email, password string) (*Result, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if n := utf8.RuneCountInString(username); n < model.MinUsernameLength || n > model.MaxUsernameLength {
		return nil, model.NewInvalidInput("username",
			fmt.Sprintf("must be between %d and %d characters", model.MinUsernameLength, model.MaxUsernameLength))
	}
	if !emailPattern.MatchString(email) {
		return nil, model.NewInvalidInput("email", "is not a valid email address")
	}
	if len(password) < model.MinPasswordLength {
		return nil, model.NewInvalidInput("password",
			fmt.Sprintf("must be at least %d characters", model.MinPasswordLength))
	}

	if err := s.checkAvailable(ctx, username, email); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	user := &model.User{
		ID:           s.ids.NewUserID(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.storage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, model.ErrUserExists) {
			// lost a race with a concurrent registration
			if err := s.checkAvailable(ctx, username, email); err != nil {
				return nil, err
			}
			return nil, ErrEmailExists
		}
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	return s.result(user)
}

// checkAvailable reports which of email or username is already taken
func (s *Service) checkAvailable(ctx context.Context, username, email string) error {
	_, err := s.storage.GetUserByEmail(ctx, email)
	if err == nil {
		return ErrEmailExists
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return err
	}

	_, err = s.storage.GetUserByUsername(ctx, username)
	if err == nil {
		return ErrUsernameExists
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return err
	}
	return nil
}

// Login authenticates a user by email and password
func (s *Service) Login(ctx context.Context, email, password string) (*Result, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.storage.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.result(user)
}

// IssueToken signs a token for the given claims
func (s *Service) IssueToken(claims Claims) (string, error) {
	return s.tokens.issue(claims)
}

// VerifyToken checks a token's signature and expiry and returns its claims
func (s *Service) VerifyToken(token string) (*Claims, error) {
	return s.tokens.verify(token)
}

func (s *Service) result(user *model.User) (*Result, error) {
	token, err := s.tokens.issue(Claims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
	})
	if err != nil {
		return nil, err
	}
	return &Result{
		Token: token,
		User: UserSummary{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
		},
	}, nil
}
