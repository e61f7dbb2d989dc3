package auth

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lvidal/tasklist-be/internal/database"
	"github.com/lvidal/tasklist-be/internal/models"
	"github.com/lvidal/tasklist-be/internal/services"
	"github.com/lvidal/tasklist-be/internal/session"
)

func newTestService(t *testing.T) (*Service, *sql.DB) {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("database.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("database.Migrate error: %v", err)
	}

	codec := session.New(session.Config{Secret: []byte("test-secret-key-0123456789abcdef")})
	return NewService(services.NewUserService(db), codec), db
}

func userCount(t *testing.T, db *sql.DB) int {
	t.Helper()
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		t.Fatalf("count error: %v", err)
	}
	return count
}

func TestSignupValidation(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		field    string
		message  string
	}{
		{"short username", "a", "Passw0rd", "username", "Username must be at least 2 characters long"},
		{"empty username", "", "Passw0rd", "username", "Username must be at least 2 characters long"},
		{"whitespace username", "  a  ", "Passw0rd", "username", "Username must be at least 2 characters long"},
		{"short password", "alice", "a1", "password", "Must be at least 4 characters long"},
		{"no letter", "alice", "1234", "password", "Contain at least one letter"},
		{"no digit", "alice", "abcd", "password", "Contain at least one number"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Signup(ctx, tc.username, tc.password)
			var fieldErrs models.FieldErrors
			if !errors.As(err, &fieldErrs) {
				t.Fatalf("expected field errors, got: %v", err)
			}
			found := false
			for _, msg := range fieldErrs[tc.field] {
				if msg == tc.message {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected %q on field %q, got: %v", tc.message, tc.field, fieldErrs)
			}
		})
	}

	// Validation failures must never reach storage.
	if got := userCount(t, db); got != 0 {
		t.Fatalf("validation failures wrote %d rows", got)
	}
}

func TestSignupSuccess(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.Signup(context.Background(), "alice", "Passw0rd")
	if err != nil {
		t.Fatalf("Signup error: %v", err)
	}
	if res.User.Username != "alice" || res.User.ID <= 0 {
		t.Fatalf("unexpected user: %+v", res.User)
	}
	if res.Token == "" {
		t.Fatal("expected a session token")
	}

	// The issued cookie must carry the session back through CurrentSession.
	rec := httptest.NewRecorder()
	svc.IssueCookie(rec, res)
	req := httptest.NewRequest("GET", "/", nil)
	for _, cookie := range rec.Result().Cookies() {
		req.AddCookie(cookie)
	}
	sess := svc.CurrentSession(req)
	if sess == nil || sess.UserID != res.User.ID || sess.Username != "alice" {
		t.Fatalf("unexpected session: %+v", sess)
	}
}

func TestSignupTrimsUsername(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.Signup(context.Background(), "  alice  ", "Passw0rd")
	if err != nil {
		t.Fatalf("Signup error: %v", err)
	}
	if res.User.Username != "alice" {
		t.Fatalf("expected trimmed username, got %q", res.User.Username)
	}
}

func TestSignupDuplicateUsername(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "alice", "Passw0rd"); err != nil {
		t.Fatalf("first Signup error: %v", err)
	}

	_, err := svc.Signup(ctx, "alice", "Hunter42")
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got: %v", err)
	}
	if got := userCount(t, db); got != 1 {
		t.Fatalf("duplicate signup left %d rows", got)
	}
}

func TestLoginMissParity(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "alice", "Passw0rd"); err != nil {
		t.Fatalf("Signup error: %v", err)
	}

	// A wrong password and a nonexistent user must be indistinguishable.
	_, errWrongPass := svc.Login(ctx, "alice", "Wrong123")
	_, errNoUser := svc.Login(ctx, "mallory", "Wrong123")

	if !errors.Is(errWrongPass, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got: %v", errWrongPass)
	}
	if !errors.Is(errNoUser, ErrInvalidCredentials) {
		t.Fatalf("unknown user: expected ErrInvalidCredentials, got: %v", errNoUser)
	}
	if errWrongPass.Error() != errNoUser.Error() {
		t.Fatalf("error messages differ: %q vs %q", errWrongPass, errNoUser)
	}
}

func TestLoginSuccess(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Signup(ctx, "alice", "Passw0rd")
	if err != nil {
		t.Fatalf("Signup error: %v", err)
	}

	res, err := svc.Login(ctx, "alice", "Passw0rd")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if res.User.ID != created.User.ID {
		t.Fatalf("login resolved user %d, want %d", res.User.ID, created.User.ID)
	}
	if res.User.PasswordHash != "" {
		t.Fatal("login result must not carry the password hash")
	}
}

func TestClearCookieIdempotent(t *testing.T) {
	svc, _ := newTestService(t)

	rec := httptest.NewRecorder()
	svc.ClearCookie(rec)
	svc.ClearCookie(rec)

	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a deletion cookie")
	}
	for _, cookie := range cookies {
		if cookie.Name != CookieName || cookie.MaxAge >= 0 || cookie.Value != "" {
			t.Fatalf("unexpected deletion cookie: %+v", cookie)
		}
	}
}

func TestIssueCookieAttributes(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.Signup(context.Background(), "alice", "Passw0rd")
	if err != nil {
		t.Fatalf("Signup error: %v", err)
	}

	rec := httptest.NewRecorder()
	svc.IssueCookie(rec, res)

	raw := rec.Header().Get("Set-Cookie")
	if !strings.HasPrefix(raw, CookieName+"=") {
		t.Fatalf("unexpected cookie header: %s", raw)
	}
	cookie := rec.Result().Cookies()[0]
	if !cookie.HttpOnly || !cookie.Secure || cookie.SameSite != http.SameSiteLaxMode || cookie.Path != "/" {
		t.Fatalf("cookie attributes wrong: %+v", cookie)
	}
}
