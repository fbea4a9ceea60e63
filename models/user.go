package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

// User is an account identified by its unique email. IsStaff/IsSuperuser
// mark the elevated role; everyone else is a regular employee.
type User struct {
	ID           int64      `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	FirstName    string     `json:"first_name" db:"first_name"`
	LastName     string     `json:"last_name" db:"last_name"`
	MiddleName   string     `json:"middle_name,omitempty" db:"middle_name"`
	Birthday     *time.Time `json:"birthday,omitempty" db:"birthday"`
	Avatar       *string    `json:"avatar,omitempty" db:"avatar"`
	IsStaff      bool       `json:"is_staff" db:"is_staff"`
	IsSuperuser  bool       `json:"is_superuser" db:"is_superuser"`
	LastLogin    *time.Time `json:"last_login,omitempty" db:"last_login"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

const maxUserFieldLen = 150

// Elevated reports whether the user has the staff/superuser role.
func (u *User) Elevated() bool {
	return u.IsStaff || u.IsSuperuser
}

// DisplayName builds "Lastname F. M." from the capitalized last name and the
// first/middle initials, falling back to the email when no last name is set.
func (u *User) DisplayName() string {
	name := u.Email
	if u.LastName != "" {
		name = Capitalize(u.LastName) + " "
	}
	if u.FirstName != "" {
		name += Capitalize(firstRune(u.FirstName)) + ". "
	}
	if u.MiddleName != "" {
		name += Capitalize(firstRune(u.MiddleName)) + ". "
	}
	return strings.TrimSpace(name)
}

func (u *User) String() string {
	return u.DisplayName() + " (" + u.Email + ")"
}

// Validate checks profile constraints. now supplies the current time so the
// birthday check does not depend on the wall clock.
func (u *User) Validate(now time.Time) error {
	errs := ValidationErrors{}

	if u.Email == "" {
		errs.Add("email", "this field is required")
	} else if !strings.Contains(u.Email, "@") {
		errs.Add("email", "enter a valid email address")
	} else if len(u.Email) > 100 {
		errs.Add("email", "must be at most 100 characters")
	}

	if u.FirstName == "" {
		errs.Add("first_name", "this field is required")
	} else if len(u.FirstName) > maxUserFieldLen {
		errs.Add("first_name", "must be at most 150 characters")
	}

	if u.LastName == "" {
		errs.Add("last_name", "this field is required")
	} else if len(u.LastName) > maxUserFieldLen {
		errs.Add("last_name", "must be at most 150 characters")
	}

	if len(u.MiddleName) > maxUserFieldLen {
		errs.Add("middle_name", "must be at most 150 characters")
	}

	if u.Birthday != nil && u.Birthday.After(now) {
		errs.Add("birthday", "birthday cannot be in the future")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func firstRune(s string) string {
	_, size := utf8.DecodeRuneInString(s)
	return s[:size]
}
