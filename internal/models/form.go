package models

import (
	"fmt"
	"sort"
	"strings"
)

// FieldErrors maps an input field name to its validation messages. It is
// user-correctable input feedback, not an operational fault.
type FieldErrors map[string][]string

// Add appends a message to the given field.
func (e FieldErrors) Add(field, message string) {
	e[field] = append(e[field], message)
}

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msgs := range e {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(msgs, "; ")))
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}

// FormErrorSet is the error half of a form response: per-field message lists
// plus the optional top-level session/server errors.
type FormErrorSet struct {
	Username []string `json:"username,omitempty"`
	Password []string `json:"password,omitempty"`
	Title    []string `json:"title,omitempty"`
	Session  string   `json:"session,omitempty"`
	Server   string   `json:"server,omitempty"`
}

// FormState is returned to a form submitter on failure. FormFields echoes the
// submitted non-sensitive values so the client can re-render the form.
type FormState struct {
	Errors     *FormErrorSet     `json:"errors,omitempty"`
	FormFields map[string]string `json:"formFields,omitempty"`
}

// NewFormState builds a FormState from field errors, an optional server error
// and the submitted fields to echo. Passwords must not be passed in fields.
func NewFormState(fieldErrs FieldErrors, serverErr string, fields map[string]string) FormState {
	set := &FormErrorSet{
		Username: fieldErrs["username"],
		Password: fieldErrs["password"],
		Title:    fieldErrs["title"],
		Server:   serverErr,
	}
	return FormState{Errors: set, FormFields: fields}
}
