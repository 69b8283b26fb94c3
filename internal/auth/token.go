package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/service"
)

const DefaultTokenTTL = 30 * time.Minute

var (
	// ErrUnauthenticated is wrapped by every token and guard failure.
	ErrUnauthenticated = errors.New("could not validate credentials")
	ErrInvalidToken    = fmt.Errorf("%w: invalid token", ErrUnauthenticated)
	ErrTokenExpired    = fmt.Errorf("%w: token expired", ErrUnauthenticated)
	ErrUnknownSubject  = fmt.Errorf("%w: unknown subject", ErrUnauthenticated)
)

// Credentials is the part of the user service the token service needs.
type Credentials interface {
	Authenticate(ctx context.Context, identifier, password string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// Token is an issued access token.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// TokenService issues and verifies stateless HS256 access tokens whose
// subject is the user id.
type TokenService struct {
	users  Credentials
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*TokenService)

// WithClock replaces the wall clock used for issuing and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *TokenService) { s.now = now }
}

func NewTokenService(users Credentials, secret string, ttl time.Duration, opts ...Option) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	s := &TokenService{
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue authenticates the identifier/password pair and signs a token for it.
func (s *TokenService) Issue(ctx context.Context, identifier, password string) (Token, error) {
	user, err := s.users.Authenticate(ctx, identifier, password)
	if err != nil {
		return Token{}, err
	}
	return s.Sign(user.ID)
}

// Sign creates a token for a known user id without checking credentials.
func (s *TokenService) Sign(userID int64) (Token, error) {
	now := s.now().UTC()
	expiresAt := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}
	return Token{AccessToken: signed, TokenType: "bearer", ExpiresAt: expiresAt}, nil
}

// Verify checks signature and expiry and resolves the subject to a stored user.
func (s *TokenService) Verify(ctx context.Context, raw string) (*domain.User, error) {
	if len(s.secret) == 0 {
		return nil, ErrInvalidToken
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return nil, ErrUnknownSubject
		}
		return nil, fmt.Errorf("load token subject: %w", err)
	}
	return user, nil
}
