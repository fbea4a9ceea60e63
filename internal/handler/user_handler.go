package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"orderdesk/internal/service"
	"orderdesk/models"
	"orderdesk/pkg/logger"
)

const birthdayLayout = "2006-01-02"

// UserHandler serves the /user endpoints.
type UserHandler struct {
	users  service.UserServiceInterface
	logger *logger.Logger
}

func NewUserHandler(users service.UserServiceInterface, log *logger.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		logger: log.WithComponent("user_handler"),
	}
}

// Register handles POST /user/register. Success lands on the login page.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		handleServiceError(w, r, models.ValidationErrors{models.NonFieldError: "malformed form data"}, h.logger)
		return
	}

	req := service.RegisterRequest{
		Email:      r.PostFormValue("email"),
		Password:   r.PostFormValue("password1"),
		FirstName:  strings.TrimSpace(r.PostFormValue("first_name")),
		LastName:   strings.TrimSpace(r.PostFormValue("last_name")),
		MiddleName: strings.TrimSpace(r.PostFormValue("middle_name")),
	}

	if r.PostFormValue("password1") != r.PostFormValue("password2") {
		handleServiceError(w, r, models.ValidationErrors{"password2": "passwords do not match"}, h.logger)
		return
	}

	birthday, err := parseBirthday(r.PostFormValue("birthday"))
	if err != nil {
		handleServiceError(w, r, err, h.logger)
		return
	}
	req.Birthday = birthday

	if avatar := strings.TrimSpace(r.PostFormValue("avatar")); avatar != "" {
		req.Avatar = &avatar
	}

	if _, err := h.users.Register(r.Context(), req); err != nil {
		handleServiceError(w, r, err, h.logger)
		return
	}
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}

// Login handles POST /user/login: opens a session and sets the cookie.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		handleServiceError(w, r, models.ValidationErrors{models.NonFieldError: "malformed form data"}, h.logger)
		return
	}

	session, _, err := h.users.Login(r.Context(), r.PostFormValue("email"), r.PostFormValue("password"))
	if err != nil {
		handleServiceError(w, r, err, h.logger)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/user/profile", http.StatusSeeOther)
}

// Logout handles GET /user/logout: drops the session and expires the cookie.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.users.Logout(r.Context(), cookie.Value); err != nil && err != models.ErrSessionNotFound {
			h.logger.Warn("Failed to delete session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}

// Profile handles GET /user/profile: the caller plus their order counters.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	actor := CurrentUser(r)
	if actor == nil {
		http.Redirect(w, r, LoginPath, http.StatusSeeOther)
		return
	}

	stats, err := h.users.ProfileStats(r.Context(), actor)
	if err != nil {
		handleServiceError(w, r, err, h.logger)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"user":  actor,
		"stats": stats,
	})
}

// UpdateProfile handles POST /user/profile.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		handleServiceError(w, r, models.ValidationErrors{models.NonFieldError: "malformed form data"}, h.logger)
		return
	}

	fields := service.ProfileFields{
		FirstName:  strings.TrimSpace(r.PostFormValue("first_name")),
		LastName:   strings.TrimSpace(r.PostFormValue("last_name")),
		MiddleName: strings.TrimSpace(r.PostFormValue("middle_name")),
	}

	birthday, err := parseBirthday(r.PostFormValue("birthday"))
	if err != nil {
		handleServiceError(w, r, err, h.logger)
		return
	}
	fields.Birthday = birthday

	if avatar := strings.TrimSpace(r.PostFormValue("avatar")); avatar != "" {
		fields.Avatar = &avatar
	}

	if _, err := h.users.UpdateProfile(r.Context(), CurrentUser(r), fields); err != nil {
		handleServiceError(w, r, err, h.logger)
		return
	}
	http.Redirect(w, r, "/user/profile", http.StatusSeeOther)
}

// List handles GET /user/list.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context(), CurrentUser(r))
	if err != nil {
		handleServiceError(w, r, err, h.logger)
		return
	}
	writeJSONResponse(w, http.StatusOK, users)
}

// Search handles GET /user/search/{query}.
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.Search(r.Context(), CurrentUser(r), chi.URLParam(r, "query"))
	if err != nil {
		handleServiceError(w, r, err, h.logger)
		return
	}
	writeJSONResponse(w, http.StatusOK, users)
}

// Detail handles GET /user/detail/{id}.
func (h *UserHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeErrorResponse(w, http.StatusNotFound, "User not found")
		return
	}

	user, err := h.users.Detail(r.Context(), CurrentUser(r), id)
	if err != nil {
		handleServiceError(w, r, err, h.logger)
		return
	}
	writeJSONResponse(w, http.StatusOK, user)
}

func parseBirthday(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation(birthdayLayout, raw, time.Local)
	if err != nil {
		return nil, models.ValidationErrors{"birthday": "enter a valid date"}
	}
	return &parsed, nil
}
