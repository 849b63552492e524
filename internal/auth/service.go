package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/mrlokans/librarian/internal/config"
	"github.com/mrlokans/librarian/internal/database/accounts"
	"github.com/mrlokans/librarian/internal/entities"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,64}$`)

var (
	// ErrInvalidCredentials covers every login failure: unknown username,
	// wrong password, wrong role or missing fields.
	ErrInvalidCredentials = errors.New("invalid username, password, or role")
	ErrAccountExists      = errors.New("account already exists")
	ErrInvalidRole        = errors.New("invalid role")
	ErrUsernameRequired   = errors.New("username is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrUsernameInvalid    = errors.New("username must be 3-64 characters, alphanumeric and underscore/hyphen only")
)

// Service handles credential checks and account creation.
type Service struct {
	accounts *accounts.Repository
	config   config.Auth
}

// NewService creates a new authentication service.
func NewService(repo *accounts.Repository, cfg config.Auth) *Service {
	return &Service{
		accounts: repo,
		config:   cfg,
	}
}

// CreateAccount creates an account with a bcrypt-hashed password.
func (s *Service) CreateAccount(ctx context.Context, username, password string, role entities.Role) (*entities.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	if !usernamePattern.MatchString(username) {
		return nil, ErrUsernameInvalid
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	exists, err := s.accounts.Exists(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}
	if exists {
		return nil, ErrAccountExists
	}

	passwordHash, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}

	account := &entities.Account{
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return account, nil
}

// HashPassword hashes with the configured bcrypt cost. Its signature matches
// database.PasswordHasher so it can drive the seed bootstrap.
func (s *Service) HashPassword(password string) (string, error) {
	return HashPassword(password, s.config.BcryptCost)
}

// Authenticate succeeds only when the username exists, the password matches
// and the stored role equals claimedRole. The returned account, not the
// claim, is the source of truth for the session role.
func (s *Service) Authenticate(ctx context.Context, username, password string, claimedRole entities.Role) (*entities.Account, error) {
	if username == "" || password == "" || claimedRole == "" {
		return nil, ErrInvalidCredentials
	}

	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, accounts.ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	if err := CheckPassword(password, account.PasswordHash); err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if account.Role != claimedRole {
		return nil, ErrInvalidCredentials
	}

	return account, nil
}

// GetAccount retrieves an account by ID.
func (s *Service) GetAccount(ctx context.Context, id string) (*entities.Account, error) {
	return s.accounts.GetByID(ctx, id)
}

// HasAccounts returns true if any accounts exist in the database.
func (s *Service) HasAccounts(ctx context.Context) (bool, error) {
	count, err := s.accounts.Count(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
