package auth

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/lvidal/tasklist-be/internal/database"
	"github.com/lvidal/tasklist-be/internal/models"
	"github.com/lvidal/tasklist-be/internal/services"
	"github.com/lvidal/tasklist-be/internal/session"
)

// CookieName is the session cookie, owned exclusively by the client browser.
const CookieName = "session"

var (
	// ErrInvalidCredentials covers both unknown-username and wrong-password
	// so a caller cannot probe which usernames exist.
	ErrInvalidCredentials = errors.New("username or password wrong")

	// ErrUsernameTaken signals a uniqueness conflict on signup.
	ErrUsernameTaken = errors.New("username already exists")

	// ErrStorageUnavailable signals a transient storage fault the user may
	// retry later.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

var (
	hasLetter = regexp.MustCompile(`[a-zA-Z]`)
	hasDigit  = regexp.MustCompile(`[0-9]`)
)

// dummyHash soaks up a bcrypt comparison when the username does not exist,
// keeping the miss path on the same timing as a real mismatch.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("tasklist-dummy-0"), bcrypt.DefaultCost)

// Service validates credentials and issues/destroys sessions.
type Service struct {
	users services.UserServiceProvider
	codec *session.Codec
}

// NewService creates a new auth Service.
func NewService(users services.UserServiceProvider, codec *session.Codec) *Service {
	return &Service{users: users, codec: codec}
}

// AuthResult carries the created session alongside the authenticated user.
type AuthResult struct {
	User      models.User
	Token     string
	ExpiresAt time.Time
}

// ValidateCredentials checks the signup/login input shape and returns the
// trimmed username plus any field errors. It never touches storage.
func ValidateCredentials(username, password string) (string, models.FieldErrors) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)

	errs := models.FieldErrors{}
	if len(username) < 2 {
		errs.Add("username", "Username must be at least 2 characters long")
	}
	if len(password) < 4 {
		errs.Add("password", "Must be at least 4 characters long")
	}
	if !hasLetter.MatchString(password) {
		errs.Add("password", "Contain at least one letter")
	}
	if !hasDigit.MatchString(password) {
		errs.Add("password", "Contain at least one number")
	}
	if len(errs) > 0 {
		return username, errs
	}
	return username, nil
}

// Signup validates the input, creates the user, and issues a session.
// Failures are split three ways: field-level validation errors
// (models.FieldErrors), a username conflict (ErrUsernameTaken), and storage
// faults (ErrStorageUnavailable or the wrapped original error).
func (s *Service) Signup(ctx context.Context, username, password string) (*AuthResult, error) {
	username, fieldErrs := ValidateCredentials(username, password)
	if fieldErrs != nil {
		return nil, fieldErrs
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(password)), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user, err := s.users.CreateUser(ctx, username, string(hashed))
	if err != nil {
		// The UNIQUE constraint is the source of truth for duplicates; there
		// is no racy pre-check.
		if database.IsUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		if database.IsUnavailable(err) {
			log.Error().Err(err).Msg("Signup: database unavailable")
			return nil, ErrStorageUnavailable
		}
		log.Error().Err(err).Str("username", username).Msg("Signup: failed to create user")
		return nil, err
	}

	log.Info().Str("username", user.Username).Msg("User created")
	return s.issue(user)
}

// Login validates the input and authenticates the user against the stored
// hash. Unknown usernames and wrong passwords both yield
// ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	username, fieldErrs := ValidateCredentials(username, password)
	if fieldErrs != nil {
		return nil, fieldErrs
	}
	password = strings.TrimSpace(password)

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		if database.IsUnavailable(err) {
			log.Error().Err(err).Msg("Login: database unavailable")
			return nil, ErrStorageUnavailable
		}
		log.Error().Err(err).Str("username", username).Msg("Login: failed to look up user")
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	user.PasswordHash = ""
	log.Info().Str("username", user.Username).Msg("User logged in")
	return s.issue(user)
}

func (s *Service) issue(user models.User) (*AuthResult, error) {
	token, expiresAt, err := s.codec.Encode(user.Username, user.ID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to sign session token")
		return nil, err
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// IssueCookie writes the session cookie for a freshly created session.
func (s *Service) IssueCookie(w http.ResponseWriter, res *AuthResult) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    res.Token,
		Expires:  res.ExpiresAt,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	})
}

// ClearCookie unconditionally removes the session cookie. Idempotent; it
// never fails observably.
func (s *Service) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	})
}

// CurrentSession resolves the session carried by the request cookie, or nil
// when there is no cookie or the token does not verify.
func (s *Service) CurrentSession(r *http.Request) *models.UserSession {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil
	}
	return s.codec.Decode(cookie.Value)
}
