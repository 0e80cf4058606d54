package services

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/todoshare-be/internal/auth"
	"github.com/isdelr/todoshare-be/internal/models"
	"github.com/rs/zerolog/log"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const minPasswordLength = 6

// UserDirectory is the identity storage the user service works against.
type UserDirectory interface {
	Create(user models.User) error
	FindByUsernameOrEmail(key string) (models.User, bool)
	FindByID(id string) (models.User, bool)
	Count() int
}

// TokenIssuer signs identity tokens.
type TokenIssuer interface {
	Issue(user models.User) (string, error)
}

// AuthResult is returned by a successful register or login.
type AuthResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(username, email, password string) (AuthResult, error)
	Login(usernameOrEmail, password string) (AuthResult, error)
	GetUserByID(id string) (models.User, error)
	UserCount() int
}

// UserService provides business logic for registration and login.
type UserService struct {
	users  UserDirectory
	tokens TokenIssuer
}

// NewUserService creates a new UserService.
func NewUserService(users UserDirectory, tokens TokenIssuer) *UserService {
	return &UserService{users: users, tokens: tokens}
}

// Register validates the input, creates a user with a hashed password and
// returns a token for it.
func (s *UserService) Register(username, email, password string) (AuthResult, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return AuthResult{}, invalid("missing required fields")
	}
	if !emailPattern.MatchString(email) {
		return AuthResult{}, invalid("invalid email format")
	}
	if len(password) < minPasswordLength {
		return AuthResult{}, invalid("password must be at least %d characters long", minPasswordLength)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(user); err != nil {
		return AuthResult{}, translateStoreErr(err)
	}
	log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("User registered")

	return s.issue(user)
}

// Login checks credentials. Unknown users and wrong passwords fail the same way.
func (s *UserService) Login(usernameOrEmail, password string) (AuthResult, error) {
	usernameOrEmail = strings.TrimSpace(usernameOrEmail)
	if usernameOrEmail == "" || password == "" {
		return AuthResult{}, invalid("missing required fields")
	}

	user, ok := s.users.FindByUsernameOrEmail(usernameOrEmail)
	if !ok || !auth.VerifyPassword(user.PasswordHash, password) {
		log.Warn().Str("login", usernameOrEmail).Msg("Failed authentication attempt")
		return AuthResult{}, ErrInvalidCredentials
	}

	return s.issue(user)
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(id string) (models.User, error) {
	user, ok := s.users.FindByID(id)
	if !ok {
		return models.User{}, notFound("user " + id)
	}
	user.PasswordHash = ""
	return user, nil
}

// UserCount returns the number of registered users.
func (s *UserService) UserCount() int {
	return s.users.Count()
}

func (s *UserService) issue(user models.User) (AuthResult, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return AuthResult{}, err
	}
	user.PasswordHash = ""
	return AuthResult{Token: token, User: user}, nil
}
