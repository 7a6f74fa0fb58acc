package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/isdelr/placeit-be/internal/auth"
	"github.com/isdelr/placeit-be/internal/models"
	"github.com/isdelr/placeit-be/internal/store"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(ctx context.Context, email, password string) (models.User, error)
	Login(ctx context.Context, email, password string) (LoginResult, error)
	GetUserByID(ctx context.Context, id string) (models.User, error)
}

// LoginResult is a signed token plus the public user it was issued for.
type LoginResult struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

// UserService provides registration and login against the credential store.
type UserService struct {
	store      store.UserStore
	tokens     *auth.TokenManager
	bcryptCost int
}

// NewUserService creates a new UserService.
func NewUserService(s store.UserStore, tokens *auth.TokenManager, bcryptCost int) *UserService {
	return &UserService{store: s, tokens: tokens, bcryptCost: bcryptCost}
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register validates the credentials, hashes the password and stores a new user.
func (s *UserService) Register(ctx context.Context, email, password string) (models.User, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return models.User{}, clientError(ErrValidation, MsgCredentialsRequired)
	}
	if utf8.RuneCountInString(password) < auth.MinPasswordLen {
		return models.User{}, clientError(ErrValidation, MsgPasswordTooShort)
	}
	if len(password) > auth.MaxPasswordLen {
		return models.User{}, clientError(ErrValidation, MsgPasswordTooLong)
	}

	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return models.User{}, clientError(ErrConflict, MsgEmailExists)
	} else if !errors.Is(err, store.ErrNotFound) {
		return models.User{}, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{Email: email, PasswordHash: hash}
	if err := s.store.Create(ctx, &user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return models.User{}, clientError(ErrConflict, MsgEmailExists)
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}

	log.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("Registered new user")

	// Return user without password hash
	user.PasswordHash = ""
	return user, nil
}

// Login verifies the credentials and issues a signed token. Unknown emails and
// wrong passwords produce the same error.
func (s *UserService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	user, err := s.store.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return LoginResult{}, clientError(ErrInvalidCredentials, MsgInvalidCredentials)
		}
		return LoginResult{}, fmt.Errorf("lookup user: %w", err)
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return LoginResult{}, clientError(ErrInvalidCredentials, MsgInvalidCredentials)
	}

	token, err := s.tokens.GenerateJWT(user)
	if err != nil {
		return LoginResult{}, fmt.Errorf("failed to generate token: %w", err)
	}

	log.Info().Str("user_id", user.ID).Msg("User logged in")
	return LoginResult{Token: token, User: user.Public()}, nil
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(ctx context.Context, id string) (models.User, error) {
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.User{}, clientError(ErrNotFound, "User not found")
		}
		return models.User{}, err
	}
	user.PasswordHash = ""
	return user, nil
}

var _ UserServiceProvider = (*UserService)(nil)
