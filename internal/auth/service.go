package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fintrack/internal/core"
	applog "fintrack/internal/log"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password too short")
)

const minPasswordLen = 8

// UserStore is the subset of the repository the auth service needs.
type UserStore interface {
	CreateUser(ctx context.Context, u core.User) error
	GetUserByEmail(ctx context.Context, email string) (core.User, error)
	GetUserByID(ctx context.Context, id string) (core.User, error)
}

type Service struct {
	store  UserStore
	issuer *TokenIssuer
	logger *applog.Logger
}

func NewService(store UserStore, issuer *TokenIssuer, logger *applog.Logger) *Service {
	return &Service{
		store:  store,
		issuer: issuer,
		logger: logger.WithComponent(applog.ComponentAuth),
	}
}

// Signup registers a new user and returns a signed access token.
func (s *Service) Signup(ctx context.Context, email, password string) (core.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return core.User{}, "", fmt.Errorf("%w: email", core.ErrInvalidInput)
	}
	if len(password) < minPasswordLen {
		return core.User{}, "", ErrWeakPassword
	}

	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return core.User{}, "", ErrEmailTaken
	} else if !errors.Is(err, core.ErrNotFound) {
		return core.User{}, "", fmt.Errorf("check existing user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return core.User{}, "", fmt.Errorf("hash password: %w", err)
	}

	user := core.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return core.User{}, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.issuer.Issue(user.ID, time.Now())
	if err != nil {
		return core.User{}, "", err
	}

	s.logger.Info("user registered", applog.FieldUserID, user.ID)
	return user, token, nil
}

// Login verifies the credentials and returns a signed access token.
func (s *Service) Login(ctx context.Context, email, password string) (core.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.User{}, "", ErrInvalidCredentials
		}
		return core.User{}, "", fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return core.User{}, "", ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(user.ID, time.Now())
	if err != nil {
		return core.User{}, "", err
	}

	s.logger.Info("user logged in", applog.FieldUserID, user.ID)
	return user, token, nil
}

// Authenticate resolves a bearer token to the user it belongs to.
func (s *Service) Authenticate(ctx context.Context, token string) (core.User, error) {
	userID, err := s.issuer.Verify(token)
	if err != nil {
		return core.User{}, err
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.User{}, ErrInvalidToken
		}
		return core.User{}, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}
