package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lvidal/tasklist-be/internal/models"
)

// DefaultTTL is how long an issued session stays valid.
const DefaultTTL = 7 * 24 * time.Hour

// Config holds the codec configuration. The secret is loaded once at startup
// and never changes within a process lifetime; rotating it invalidates every
// outstanding session, which simply logs those users out.
type Config struct {
	Secret []byte
	TTL    time.Duration
}

// Claims defines the session token claims structure.
type Claims struct {
	Username string `json:"username"`
	UserID   int64  `json:"userId"`
	jwt.RegisteredClaims
}

// Codec signs and verifies session tokens. It is stateless; nothing about a
// session is stored server-side.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// New creates a Codec from an explicit Config so tests can inject
// deterministic keys.
func New(cfg Config) *Codec {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Codec{secret: cfg.Secret, ttl: ttl}
}

// Encode creates a signed session token for the given user and returns it
// together with its expiry time.
func (c *Codec) Encode(username string, userID int64) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(c.ttl)
	claims := &Claims{
		Username: username,
		UserID:   userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Decode verifies a session token and returns the session it carries. It
// fails closed: any structural, signature, or expiry failure, or a missing
// user id claim, yields nil rather than a partial session.
func (c *Codec) Decode(tokenStr string) *models.UserSession {
	if tokenStr == "" {
		return nil
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		log.Debug().Err(err).Msg("Failed to verify session token")
		return nil
	}
	if !token.Valid || claims.UserID <= 0 {
		log.Debug().Msg("Session token valid in form but missing user id claim")
		return nil
	}

	return &models.UserSession{Username: claims.Username, UserID: claims.UserID}
}
