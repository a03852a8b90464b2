// Package user registers accounts and exchanges credentials for access
// tokens.
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrMissingCredentials = errors.New("username and password are required")
	ErrAlreadyExists      = errors.New("user already exists")
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

type TokenIssuer interface {
	Issue(userID, userName string) (string, error)
}

type Events interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

type Service struct {
	repo   Repository
	tokens TokenIssuer
	events Events
	cost   int
}

type Option func(*Service)

func WithEvents(ev Events) Option {
	return func(s *Service) { s.events = ev }
}

// WithBcryptCost overrides bcrypt.DefaultCost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

func NewService(repo Repository, tokens TokenIssuer, opts ...Option) *Service {
	s := &Service{repo: repo, tokens: tokens, cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Register(ctx context.Context, userName, password string) error {
	userName = strings.TrimSpace(userName)
	if userName == "" || password == "" {
		return ErrMissingCredentials
	}
	// cheap pre-check; the unique index is what actually guards duplicates
	if _, err := s.repo.GetByUserName(ctx, userName); err == nil {
		return ErrAlreadyExists
	} else if !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("lookup user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u := &User{ID: uuid.NewString(), UserName: userName, PasswordHash: string(hash)}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return err
		}
		return fmt.Errorf("create user: %w", err)
	}

	if s.events != nil {
		if err := s.events.Publish(ctx, RKRegistered, Registered{UserID: u.ID, UserName: u.UserName}); err != nil {
			log.Warn().Err(err).Str("rk", RKRegistered).Msg("publish user event failed")
		}
	}
	return nil
}

// Login returns a signed token for valid credentials. Unknown users and
// wrong passwords are both ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, userName, password string) (string, error) {
	userName = strings.TrimSpace(userName)
	if userName == "" || password == "" {
		return "", ErrMissingCredentials
	}
	u, err := s.repo.GetByUserName(ctx, userName)
	if errors.Is(err, ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("lookup user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u.ID, u.UserName)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}
