package crypto

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/thiagojorgelins/to-do-list/internal/logger"
)

const (
	defaultIssuer   = "todo-api"
	defaultAudience = "todo-api-clients"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrEmptySubject = errors.New("token subject is required")
)

// TokenService issues and validates HS256 bearer tokens. It holds no mutable
// state after construction and is safe for concurrent use.
type TokenService struct {
	secret   []byte
	lifetime time.Duration
	issuer   string
	audience string
	now      func() time.Time
	log      logrus.FieldLogger
}

type TokenOption func(*TokenService)

// WithClock overrides the time source used for issuance and expiry checks.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

// WithTokenLogger sets the logger that receives validation failure reasons.
func WithTokenLogger(l logrus.FieldLogger) TokenOption {
	return func(s *TokenService) { s.log = l }
}

// WithIssuer sets the iss and aud claims written and required by the service.
func WithIssuer(issuer, audience string) TokenOption {
	return func(s *TokenService) {
		s.issuer = issuer
		s.audience = audience
	}
}

// NewTokenService creates a TokenService signing with secret. lifetime is used by IssueDefault.
func NewTokenService(secret string, lifetime time.Duration, opts ...TokenOption) *TokenService {
	s := &TokenService{
		secret:   []byte(secret),
		lifetime: lifetime,
		issuer:   defaultIssuer,
		audience: defaultAudience,
		now:      time.Now,
		log:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lifetime returns the configured token lifetime.
func (s *TokenService) Lifetime() time.Duration {
	return s.lifetime
}

// IssueDefault issues a token for subject with the configured lifetime.
func (s *TokenService) IssueDefault(subject string) (string, error) {
	return s.Issue(subject, s.lifetime)
}

// Issue creates a signed token for subject that expires lifetime from now.
func (s *TokenService) Issue(subject string, lifetime time.Duration) (string, error) {
	if subject == "" {
		return "", ErrEmptySubject
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:    s.issuer,
		Subject:   subject,
		Audience:  jwt.ClaimStrings{s.audience},
		ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate verifies the signature, issuer, audience and expiry of tokenString
// and returns its subject. Every failure is reported as ErrInvalidToken.
func (s *TokenService) Validate(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		s.log.WithError(err).Debug("token rejected")
		return "", ErrInvalidToken
	}
	if !token.Valid || claims.Subject == "" {
		s.log.Debug("token rejected: missing subject")
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
