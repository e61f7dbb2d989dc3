package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/lvidal/tasklist-be/internal/auth"
	"github.com/lvidal/tasklist-be/internal/models"
	"github.com/lvidal/tasklist-be/internal/services"
)

// AuthHandler handles signup, login, logout, and session introspection.
type AuthHandler struct {
	auth  *auth.Service
	users services.UserServiceProvider
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authSvc *auth.Service, users services.UserServiceProvider) *AuthHandler {
	return &AuthHandler{auth: authSvc, users: users}
}

// credentialsPayload is the input for signup and login, accepted either as a
// JSON body or as form fields named "username" and "password".
type credentialsPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Signup handles new user registration. On success it issues the session
// cookie; on failure it returns the form contract with field errors and an
// echo of the submitted username.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	payload, err := readCredentials(r)
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	echo := map[string]string{"username": strings.TrimSpace(payload.Username)}

	res, err := h.auth.Signup(r.Context(), payload.Username, payload.Password)
	if err != nil {
		var fieldErrs models.FieldErrors
		switch {
		case errors.As(err, &fieldErrs):
			writeJSON(w, http.StatusBadRequest, models.NewFormState(fieldErrs, "", echo))
		case errors.Is(err, auth.ErrUsernameTaken):
			taken := models.FieldErrors{}
			taken.Add("username", fmt.Sprintf("Username %q already exists", echo["username"]))
			writeJSON(w, http.StatusConflict, models.NewFormState(taken, "", echo))
		case errors.Is(err, auth.ErrStorageUnavailable):
			writeJSON(w, http.StatusServiceUnavailable, models.NewFormState(nil, "Failed to connect to the database", echo))
		default:
			writeJSON(w, http.StatusInternalServerError, models.NewFormState(nil, "Unknown server error", echo))
		}
		return
	}

	h.auth.IssueCookie(w, res)
	writeJSON(w, http.StatusCreated, map[string]interface{}{"user": res.User})
}

// Login handles authentication. Unknown usernames and wrong passwords get the
// same response.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	payload, err := readCredentials(r)
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	echo := map[string]string{"username": strings.TrimSpace(payload.Username)}

	res, err := h.auth.Login(r.Context(), payload.Username, payload.Password)
	if err != nil {
		var fieldErrs models.FieldErrors
		switch {
		case errors.As(err, &fieldErrs):
			writeJSON(w, http.StatusBadRequest, models.NewFormState(fieldErrs, "", echo))
		case errors.Is(err, auth.ErrInvalidCredentials):
			log.Warn().Str("username", echo["username"]).Msg("Failed authentication attempt")
			writeJSON(w, http.StatusUnauthorized, models.NewFormState(nil, "Username or password wrong", echo))
		case errors.Is(err, auth.ErrStorageUnavailable):
			writeJSON(w, http.StatusServiceUnavailable, models.NewFormState(nil, "Failed to connect to the database", echo))
		default:
			writeJSON(w, http.StatusInternalServerError, models.NewFormState(nil, "Unknown server error", echo))
		}
		return
	}

	h.auth.IssueCookie(w, res)
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": res.User})
}

// Logout clears the session cookie. It requires no session and always
// succeeds.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.ClearCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// GetMe returns the user behind the current session.
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	if sess == nil {
		http.Error(w, "Missing or invalid session", http.StatusUnauthorized)
		return
	}

	user, err := h.users.GetUserByID(r.Context(), sess.UserID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", sess.UserID).Msg("User from session not found")
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func readCredentials(r *http.Request) (credentialsPayload, error) {
	var payload credentialsPayload
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		err := json.NewDecoder(r.Body).Decode(&payload)
		return payload, err
	}
	if err := r.ParseForm(); err != nil {
		return payload, err
	}
	payload.Username = r.PostFormValue("username")
	payload.Password = r.PostFormValue("password")
	return payload, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
