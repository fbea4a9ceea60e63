package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_Elevated(t *testing.T) {
	assert.False(t, (&User{}).Elevated())
	assert.True(t, (&User{IsStaff: true}).Elevated())
	assert.True(t, (&User{IsSuperuser: true}).Elevated())
}

func TestUser_DisplayName(t *testing.T) {
	tests := []struct {
		name string
		user User
		want string
	}{
		{
			"full name",
			User{FirstName: "ivan", LastName: "petrov", MiddleName: "sergeevich"},
			"Petrov I. S.",
		},
		{
			"no middle name",
			User{FirstName: "ivan", LastName: "petrov"},
			"Petrov I.",
		},
		{
			"cyrillic",
			User{FirstName: "иван", LastName: "петров", MiddleName: "сергеевич"},
			"Петров И. С.",
		},
		{
			"last name only",
			User{LastName: "petrov"},
			"Petrov",
		},
		{
			"falls back to email",
			User{Email: "ivan@example.com"},
			"ivan@example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.DisplayName())
		})
	}
}

func TestUser_String(t *testing.T) {
	user := User{Email: "ivan@example.com", FirstName: "ivan", LastName: "petrov"}
	assert.Equal(t, "Petrov I. (ivan@example.com)", user.String())
}

func TestUser_Validate(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	valid := User{Email: "ivan@example.com", FirstName: "Ivan", LastName: "Petrov"}
	assert.NoError(t, valid.Validate(now))

	tests := []struct {
		name   string
		field  string
		mutate func(*User)
	}{
		{"missing email", "email", func(u *User) { u.Email = "" }},
		{"email without at sign", "email", func(u *User) { u.Email = "ivan.example.com" }},
		{"email too long", "email", func(u *User) { u.Email = strings.Repeat("x", 95) + "@ex.com" }},
		{"missing first name", "first_name", func(u *User) { u.FirstName = "" }},
		{"missing last name", "last_name", func(u *User) { u.LastName = "" }},
		{"future birthday", "birthday", func(u *User) {
			future := now.AddDate(1, 0, 0)
			u.Birthday = &future
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := valid
			tt.mutate(&user)

			var errs ValidationErrors
			require.ErrorAs(t, user.Validate(now), &errs)
			assert.Contains(t, errs, tt.field)
		})
	}
}

func TestUser_PasswordHashHiddenFromJSON(t *testing.T) {
	user := User{Email: "ivan@example.com", PasswordHash: "secret"}
	data, err := json.Marshal(user)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
}
