package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/thiagojorgelins/to-do-list/internal/crypto"
	"github.com/thiagojorgelins/to-do-list/internal/model"
	"github.com/thiagojorgelins/to-do-list/internal/notify"
	"github.com/thiagojorgelins/to-do-list/internal/repository"
)

const (
	TokenType         = "Bearer"
	MinPasswordLength = 8
)

var (
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrUnauthenticated    = errors.New("could not validate credentials")
	ErrUsernameRequired   = errors.New("username is required")
	ErrEmailRequired      = errors.New("email is required")
	ErrInvalidEmail       = errors.New("email is not a valid address")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrEmailTaken         = errors.New("email already taken")
)

// UserStore is the user persistence the auth service needs.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// IdentityCache short-circuits the user lookup done on every authenticated request.
type IdentityCache interface {
	Get(ctx context.Context, email string) (*model.User, error)
	Set(ctx context.Context, user *model.User) error
}

// AuthService handles registration, login and per-request identity resolution.
type AuthService struct {
	users    UserStore
	tokens   *crypto.TokenService
	cache    IdentityCache
	notifier notify.Notifier
	log      logrus.FieldLogger
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

type AuthOption func(*AuthService)

func WithIdentityCache(c IdentityCache) AuthOption {
	return func(s *AuthService) { s.cache = c }
}

func WithNotifier(n notify.Notifier) AuthOption {
	return func(s *AuthService) { s.notifier = n }
}

func WithAuthClock(now func() time.Time) AuthOption {
	return func(s *AuthService) { s.now = now }
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, tokens *crypto.TokenService, log logrus.FieldLogger, opts ...AuthOption) *AuthService {
	s := &AuthService{
		users:    users,
		tokens:   tokens,
		notifier: notify.NopNotifier{},
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a new user account.
func (s *AuthService) Register(ctx context.Context, req model.CreateUserRequest) (model.UserResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	if username == "" {
		return model.UserResponse{}, ErrUsernameRequired
	}
	if email == "" {
		return model.UserResponse{}, ErrEmailRequired
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return model.UserResponse{}, ErrInvalidEmail
	}
	if req.Password == "" {
		return model.UserResponse{}, ErrPasswordRequired
	}
	if len(req.Password) < MinPasswordLength {
		return model.UserResponse{}, ErrPasswordTooShort
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return model.UserResponse{}, err
	}

	now := s.now().UTC()
	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.UserResponse{}, ErrEmailTaken
		}
		return model.UserResponse{}, err
	}

	s.log.WithField("user_id", user.ID).Info("user registered")
	go s.sendWelcome(*user)

	return user.ToResponse(), nil
}

func (s *AuthService) sendWelcome(user model.User) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.notifier.Welcome(ctx, user); err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Warn("welcome e-mail failed")
	}
}

// Login checks the email/password pair and issues an access token.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Spend the same hashing time as a real check.
			crypto.CheckPassword(req.Password, s.fallbackHash())
			return model.TokenResponse{}, ErrInvalidCredentials
		}
		return model.TokenResponse{}, err
	}

	match, err := crypto.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Error("stored password hash is unreadable")
		return model.TokenResponse{}, ErrInvalidCredentials
	}
	if !match {
		return model.TokenResponse{}, ErrInvalidCredentials
	}

	token, err := s.tokens.IssueDefault(user.Email)
	if err != nil {
		return model.TokenResponse{}, err
	}

	return model.TokenResponse{AccessToken: token, TokenType: TokenType}, nil
}

// Resolve returns the user a bearer token belongs to. An invalid token and a
// token for an unknown user both yield ErrUnauthenticated.
func (s *AuthService) Resolve(ctx context.Context, token string) (*model.User, error) {
	email, err := s.tokens.Validate(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	if s.cache != nil {
		if user, err := s.cache.Get(ctx, email); err == nil {
			return user, nil
		} else if !errors.Is(err, repository.ErrCacheMiss) {
			s.log.WithError(err).Warn("identity cache read failed")
		}
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, user); err != nil {
			s.log.WithError(err).Warn("identity cache write failed")
		}
	}

	return user, nil
}

func (s *AuthService) fallbackHash() string {
	s.dummyOnce.Do(func() {
		h, err := crypto.HashPassword("not-a-real-password")
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}
