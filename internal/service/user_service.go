package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"orderdesk/internal/repositories"
	"orderdesk/models"
	"orderdesk/pkg/clock"
	"orderdesk/pkg/logger"
)

// dummyHash is a fixed bcrypt hash (cost 10). Login attempts for unknown
// emails are compared against it so the response time does not disclose
// whether an account exists.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

const minPasswordLen = 8

// RegisterRequest is the sign-up form payload.
type RegisterRequest struct {
	Email      string
	Password   string
	FirstName  string
	LastName   string
	MiddleName string
	Birthday   *time.Time
	Avatar     *string
}

// ProfileFields is the profile edit payload. Email and role flags are not
// editable through the profile.
type ProfileFields struct {
	FirstName  string
	LastName   string
	MiddleName string
	Birthday   *time.Time
	Avatar     *string
}

// ProfileStats summarizes order counts for the profile page. Staff see the
// whole desk; employees see their own workload.
type ProfileStats struct {
	Total       int64 `json:"total"`
	NotAssigned int64 `json:"not_assigned,omitempty"`
	Done        int64 `json:"done"`
	InProgress  int64 `json:"in_progress"`
}

type UserServiceInterface interface {
	Register(ctx context.Context, req RegisterRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.Session, *models.User, error)
	Logout(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, token string) (*models.User, error)
	UpdateProfile(ctx context.Context, actor *models.User, fields ProfileFields) (*models.User, error)
	ProfileStats(ctx context.Context, actor *models.User) (*ProfileStats, error)
	List(ctx context.Context, actor *models.User) ([]*models.User, error)
	Search(ctx context.Context, actor *models.User, query string) ([]*models.User, error)
	Detail(ctx context.Context, actor *models.User, id int64) (*models.User, error)
	Employees(ctx context.Context, actor *models.User) ([]*models.User, error)
}

type UserService struct {
	users      repositories.UserRepositoryInterface
	sessions   repositories.SessionRepositoryInterface
	orders     repositories.OrderRepositoryInterface
	policy     *AccessPolicy
	clock      clock.Clock
	sessionTTL time.Duration
	logger     *logger.Logger
}

func NewUserService(
	users repositories.UserRepositoryInterface,
	sessions repositories.SessionRepositoryInterface,
	orders repositories.OrderRepositoryInterface,
	policy *AccessPolicy,
	clk clock.Clock,
	sessionTTL time.Duration,
	log *logger.Logger,
) *UserService {
	return &UserService{
		users:      users,
		sessions:   sessions,
		orders:     orders,
		policy:     policy,
		clock:      clk,
		sessionTTL: sessionTTL,
		logger:     log.WithComponent("user_service"),
	}
}

// Register creates a regular employee account. Staff accounts are
// provisioned out of band.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	user := &models.User{
		Email:      strings.TrimSpace(strings.ToLower(req.Email)),
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		MiddleName: req.MiddleName,
		Birthday:   req.Birthday,
		Avatar:     req.Avatar,
		CreatedAt:  s.clock.Now(),
	}

	if err := user.Validate(s.clock.Now()); err != nil {
		s.logger.Warn("Registration failed: invalid data", "error", err)
		return nil, err
	}
	if len(req.Password) < minPasswordLen {
		return nil, models.ValidationErrors{"password": "must be at least 8 characters"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = string(hash)

	if err := s.users.Create(ctx, user); err != nil {
		if err == models.ErrDuplicateEmail {
			return nil, models.ValidationErrors{"email": "user with this email already exists"}
		}
		return nil, err
	}

	s.logger.Info("User registered", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// authenticate resolves email+password to a user or the generic rejection.
func (s *UserService) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		// Burn a comparable amount of time before rejecting.
		bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		return nil, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates and opens a session.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.Session, *models.User, error) {
	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		s.logger.Warn("Login rejected")
		return nil, nil, err
	}

	now := s.clock.Now()
	session := &models.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, nil, err
	}
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, nil, err
	}

	// Opportunistic cleanup; losing the race is harmless.
	_ = s.sessions.DeleteExpired(ctx, now)

	s.logger.Info("User logged in", "user_id", user.ID)
	return session, user, nil
}

func (s *UserService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// CurrentUser resolves a session token to its user. Expired sessions are
// removed on sight.
func (s *UserService) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if session.Expired(s.clock.Now()) {
		_ = s.sessions.Delete(ctx, token)
		return nil, models.ErrSessionNotFound
	}

	return s.users.GetByID(ctx, session.UserID)
}

func (s *UserService) UpdateProfile(ctx context.Context, actor *models.User, fields ProfileFields) (*models.User, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}

	updated := *actor
	updated.FirstName = fields.FirstName
	updated.LastName = fields.LastName
	updated.MiddleName = fields.MiddleName
	updated.Birthday = fields.Birthday
	updated.Avatar = fields.Avatar

	if err := updated.Validate(s.clock.Now()); err != nil {
		s.logger.Warn("Profile update failed: invalid data", "error", err, "user_id", actor.ID)
		return nil, err
	}

	if err := s.users.Update(ctx, &updated); err != nil {
		return nil, err
	}

	s.logger.Info("Profile updated", "user_id", actor.ID)
	return &updated, nil
}

func (s *UserService) ProfileStats(ctx context.Context, actor *models.User) (*ProfileStats, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}

	if actor.Elevated() {
		total, err := s.orders.CountAll(ctx)
		if err != nil {
			return nil, err
		}
		notAssigned, err := s.orders.CountUnassignedOpen(ctx)
		if err != nil {
			return nil, err
		}
		done, err := s.orders.CountDone(ctx)
		if err != nil {
			return nil, err
		}
		return &ProfileStats{
			Total:       total,
			NotAssigned: notAssigned,
			Done:        done,
			InProgress:  total - done - notAssigned,
		}, nil
	}

	total, err := s.orders.CountForEmployee(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	done, err := s.orders.CountDoneForEmployee(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return &ProfileStats{
		Total:      total,
		Done:       done,
		InProgress: total - done,
	}, nil
}

func (s *UserService) List(ctx context.Context, actor *models.User) ([]*models.User, error) {
	if err := s.policy.Authorize(actor, ActionViewUserList, nil); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

// Search matches the email by case-insensitive substring, and the first or
// last name by the capitalized form of the query ("ivan" finds "Ivan").
func (s *UserService) Search(ctx context.Context, actor *models.User, query string) ([]*models.User, error) {
	if err := s.policy.Authorize(actor, ActionViewUserList, nil); err != nil {
		return nil, err
	}
	name := models.Capitalize(strings.ToLower(query))
	return s.users.Search(ctx, query, name)
}

// Detail is visible to staff, or to the user themselves.
func (s *UserService) Detail(ctx context.Context, actor *models.User, id int64) (*models.User, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	if !actor.Elevated() && actor.ID != id {
		return nil, ErrForbidden
	}
	return s.users.GetByID(ctx, id)
}

// Employees lists non-staff accounts for the assignment picker. Staff only.
func (s *UserService) Employees(ctx context.Context, actor *models.User) ([]*models.User, error) {
	if err := s.policy.Authorize(actor, ActionViewUserList, nil); err != nil {
		return nil, err
	}
	return s.users.Employees(ctx)
}
