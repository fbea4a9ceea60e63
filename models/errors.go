package models

import (
	"errors"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrDuplicateEmail  = errors.New("user with this email already exists")
)

// NonFieldError keys validation messages that do not belong to a single field.
const NonFieldError = ""

// ValidationErrors maps a field name to its validation message. The empty
// key holds non-field errors.
type ValidationErrors map[string]string

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

// Messages renders the errors the way forms present them: each message is
// prefixed with the capitalized field name, except non-field errors which
// appear bare. Output is sorted by field for stable responses.
func (v ValidationErrors) Messages() []string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	messages := make([]string, 0, len(v))
	for _, field := range fields {
		if field == NonFieldError {
			messages = append(messages, v[field])
			continue
		}
		messages = append(messages, Capitalize(field)+": "+v[field])
	}
	return messages
}

func (v ValidationErrors) Error() string {
	return strings.Join(v.Messages(), "; ")
}

// Capitalize upper-cases the first rune and lower-cases the rest.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
