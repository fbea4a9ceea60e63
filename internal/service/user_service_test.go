package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderdesk/models"
)

func registerUser(t *testing.T, env *testEnv, email, password string) *models.User {
	t.Helper()

	user, err := env.userService.Register(context.Background(), RegisterRequest{
		Email:     email,
		Password:  password,
		FirstName: "Ivan",
		LastName:  "Petrov",
	})
	require.NoError(t, err)
	return user
}

func TestUserService_Register(t *testing.T) {
	env := newTestEnv()

	user := registerUser(t, env, "Ivan@Example.com", "correct-horse")

	assert.Equal(t, "ivan@example.com", user.Email)
	assert.False(t, user.Elevated())
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)
}

func TestUserService_Register_DuplicateEmail(t *testing.T) {
	env := newTestEnv()
	registerUser(t, env, "ivan@example.com", "correct-horse")

	_, err := env.userService.Register(context.Background(), RegisterRequest{
		Email:     "IVAN@example.com",
		Password:  "another-pass",
		FirstName: "Other",
		LastName:  "Person",
	})

	var errs models.ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Contains(t, errs, "email")
}

func TestUserService_Register_ShortPassword(t *testing.T) {
	env := newTestEnv()

	_, err := env.userService.Register(context.Background(), RegisterRequest{
		Email:     "ivan@example.com",
		Password:  "short",
		FirstName: "Ivan",
		LastName:  "Petrov",
	})

	var errs models.ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Contains(t, errs, "password")
}

func TestUserService_Login(t *testing.T) {
	env := newTestEnv()
	registered := registerUser(t, env, "ivan@example.com", "correct-horse")

	session, user, err := env.userService.Login(context.Background(), "ivan@example.com", "correct-horse")
	require.NoError(t, err)

	assert.Equal(t, registered.ID, user.ID)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, testNow, session.CreatedAt)
	assert.Equal(t, testNow.Add(24*time.Hour), session.ExpiresAt)

	stored, err := env.users.GetByID(context.Background(), registered.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLogin)
	assert.Equal(t, testNow, *stored.LastLogin)
}

func TestUserService_Login_EmailIsCaseInsensitive(t *testing.T) {
	env := newTestEnv()
	registerUser(t, env, "ivan@example.com", "correct-horse")

	_, user, err := env.userService.Login(context.Background(), "  IVAN@Example.COM ", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "ivan@example.com", user.Email)
}

func TestUserService_Login_WrongPassword(t *testing.T) {
	env := newTestEnv()
	registerUser(t, env, "ivan@example.com", "correct-horse")

	_, _, err := env.userService.Login(context.Background(), "ivan@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_Login_UnknownEmail(t *testing.T) {
	env := newTestEnv()

	_, _, err := env.userService.Login(context.Background(), "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_CurrentUser(t *testing.T) {
	env := newTestEnv()
	registered := registerUser(t, env, "ivan@example.com", "correct-horse")

	session, _, err := env.userService.Login(context.Background(), "ivan@example.com", "correct-horse")
	require.NoError(t, err)

	user, err := env.userService.CurrentUser(context.Background(), session.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
}

func TestUserService_CurrentUser_UnknownToken(t *testing.T) {
	env := newTestEnv()

	_, err := env.userService.CurrentUser(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
}

func TestUserService_CurrentUser_ExpiredSessionRemoved(t *testing.T) {
	env := newTestEnv()
	registered := registerUser(t, env, "ivan@example.com", "correct-horse")

	expired := &models.Session{
		Token:     "expired-token",
		UserID:    registered.ID,
		CreatedAt: testNow.AddDate(0, -1, 0),
		ExpiresAt: testNow.AddDate(0, 0, -1),
	}
	require.NoError(t, env.sessions.Create(context.Background(), expired))

	_, err := env.userService.CurrentUser(context.Background(), expired.Token)
	assert.ErrorIs(t, err, models.ErrSessionNotFound)

	_, err = env.sessions.GetByToken(context.Background(), expired.Token)
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
}

func TestUserService_Logout(t *testing.T) {
	env := newTestEnv()
	registerUser(t, env, "ivan@example.com", "correct-horse")

	session, _, err := env.userService.Login(context.Background(), "ivan@example.com", "correct-horse")
	require.NoError(t, err)

	require.NoError(t, env.userService.Logout(context.Background(), session.Token))

	_, err = env.userService.CurrentUser(context.Background(), session.Token)
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
}

func TestUserService_UpdateProfile(t *testing.T) {
	env := newTestEnv()
	registered := registerUser(t, env, "ivan@example.com", "correct-horse")

	updated, err := env.userService.UpdateProfile(context.Background(), registered, ProfileFields{
		FirstName:  "Sergey",
		LastName:   "Sidorov",
		MiddleName: "Ivanovich",
	})
	require.NoError(t, err)
	assert.Equal(t, "Sergey", updated.FirstName)

	stored, err := env.users.GetByID(context.Background(), registered.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sidorov", stored.LastName)
	// The password hash survives profile updates.
	assert.Equal(t, registered.PasswordHash, stored.PasswordHash)
}

func TestUserService_UpdateProfile_InvalidData(t *testing.T) {
	env := newTestEnv()
	registered := registerUser(t, env, "ivan@example.com", "correct-horse")

	_, err := env.userService.UpdateProfile(context.Background(), registered, ProfileFields{
		FirstName: "",
		LastName:  "Petrov",
	})

	var errs models.ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Contains(t, errs, "first_name")
}

func TestUserService_ProfileStats_Employee(t *testing.T) {
	env := newTestEnv()
	employee := registerUser(t, env, "ivan@example.com", "correct-horse")
	other := registerUser(t, env, "other@example.com", "correct-horse")

	seedOrderAt(t, env, "mine open", testNow, &employee.ID, false)
	seedOrderAt(t, env, "mine done", testNow, &employee.ID, true)
	seedOrderAt(t, env, "theirs", testNow, &other.ID, false)
	seedOrderAt(t, env, "unassigned", testNow, nil, false)

	stats, err := env.userService.ProfileStats(context.Background(), employee)
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(1), stats.Done)
	assert.Equal(t, int64(1), stats.InProgress)
	assert.Zero(t, stats.NotAssigned)
}

func TestUserService_ProfileStats_Staff(t *testing.T) {
	env := newTestEnv()
	employee := registerUser(t, env, "ivan@example.com", "correct-horse")

	seedOrderAt(t, env, "unassigned", testNow, nil, false)
	seedOrderAt(t, env, "in progress", testNow, &employee.ID, false)
	seedOrderAt(t, env, "done", testNow, &employee.ID, true)

	stats, err := env.userService.ProfileStats(context.Background(), staffUser())
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(1), stats.NotAssigned)
	assert.Equal(t, int64(1), stats.Done)
	assert.Equal(t, int64(1), stats.InProgress)
}

func TestUserService_List_StaffOnly(t *testing.T) {
	env := newTestEnv()
	employee := registerUser(t, env, "ivan@example.com", "correct-horse")
	registerUser(t, env, "other@example.com", "correct-horse")

	users, err := env.userService.List(context.Background(), staffUser())
	require.NoError(t, err)
	assert.Len(t, users, 2)

	_, err = env.userService.List(context.Background(), employee)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUserService_Search_CapitalizesNameQuery(t *testing.T) {
	env := newTestEnv()
	registerUser(t, env, "ivan@example.com", "correct-horse")

	// Names are stored capitalized; a lower-case query still matches.
	users, err := env.userService.Search(context.Background(), staffUser(), "ivan")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "ivan@example.com", users[0].Email)

	users, err = env.userService.Search(context.Background(), staffUser(), "petrov")
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserService_Detail_SelfOrStaff(t *testing.T) {
	env := newTestEnv()
	employee := registerUser(t, env, "ivan@example.com", "correct-horse")
	other := registerUser(t, env, "other@example.com", "correct-horse")

	got, err := env.userService.Detail(context.Background(), employee, employee.ID)
	require.NoError(t, err)
	assert.Equal(t, employee.ID, got.ID)

	_, err = env.userService.Detail(context.Background(), employee, other.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err = env.userService.Detail(context.Background(), staffUser(), other.ID)
	require.NoError(t, err)
	assert.Equal(t, other.ID, got.ID)
}

func TestUserService_Employees_ExcludesStaff(t *testing.T) {
	env := newTestEnv()
	registerUser(t, env, "ivan@example.com", "correct-horse")

	boss := &models.User{Email: "boss@example.com", FirstName: "Olga", LastName: "Ivanova", IsStaff: true}
	require.NoError(t, env.users.Create(context.Background(), boss))

	employees, err := env.userService.Employees(context.Background(), staffUser())
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, "ivan@example.com", employees[0].Email)
}
