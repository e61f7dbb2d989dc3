package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/lvidal/tasklist-be/internal/auth"
	"github.com/lvidal/tasklist-be/internal/models"
	"github.com/lvidal/tasklist-be/internal/services"
)

// TodoHandler handles HTTP requests for a user's todo list.
type TodoHandler struct {
	service services.TodoServiceProvider
}

// NewTodoHandler creates a new TodoHandler.
func NewTodoHandler(service services.TodoServiceProvider) *TodoHandler {
	return &TodoHandler{service: service}
}

// List returns the session owner's todos in display order.
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	if sess == nil {
		http.Error(w, "Missing or invalid session", http.StatusUnauthorized)
		return
	}

	todos, err := h.service.ListByOwner(r.Context(), sess.UserID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", sess.UserID).Msg("Failed to list todos")
		writeJSON(w, http.StatusInternalServerError, models.FormState{
			Errors: &models.FormErrorSet{Server: "Failed to fetch todos"},
		})
		return
	}
	if todos == nil {
		todos = []models.Todo{}
	}
	writeJSON(w, http.StatusOK, todos)
}

// Create adds a new pending todo owned by the session user.
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	if sess == nil {
		writeJSON(w, http.StatusUnauthorized, models.FormState{
			Errors: &models.FormErrorSet{Session: "Failed to verify session"},
		})
		return
	}

	title, err := readTitle(r)
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	echo := map[string]string{"title": title}

	if title == "" {
		errs := models.FieldErrors{}
		errs.Add("title", "Title must be at least 1 character long")
		writeJSON(w, http.StatusBadRequest, models.NewFormState(errs, "", echo))
		return
	}

	todo, err := h.service.Create(r.Context(), sess.UserID, title)
	if err != nil {
		log.Error().Err(err).Int64("user_id", sess.UserID).Msg("Failed to create todo")
		writeJSON(w, http.StatusInternalServerError, models.NewFormState(nil, "Failed to add todo", echo))
		return
	}
	writeJSON(w, http.StatusCreated, todo)
}

// Toggle flips a todo's completion status. Errors, including a todo that is
// missing or owned by someone else, are logged and swallowed: the endpoint
// answers 204 either way and the client simply sees no change on the next
// list. Best-effort by policy, not an oversight.
func (h *TodoHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	if sess == nil {
		http.Error(w, "Missing or invalid session", http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err == nil {
		if err := h.service.ToggleStatus(r.Context(), id, sess.UserID); err != nil {
			log.Error().Err(err).Int64("todo_id", id).Int64("user_id", sess.UserID).Msg("Failed to toggle todo")
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete removes a todo. Same fire-and-forget policy as Toggle.
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	if sess == nil {
		http.Error(w, "Missing or invalid session", http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err == nil {
		if err := h.service.Delete(r.Context(), id, sess.UserID); err != nil {
			log.Error().Err(err).Int64("todo_id", id).Int64("user_id", sess.UserID).Msg("Failed to delete todo")
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func readTitle(r *http.Request) (string, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var payload struct {
			Title string `json:"title"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			return "", err
		}
		return strings.TrimSpace(payload.Title), nil
	}
	if err := r.ParseForm(); err != nil {
		return "", err
	}
	return strings.TrimSpace(r.PostFormValue("title")), nil
}
