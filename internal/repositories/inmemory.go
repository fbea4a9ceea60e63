package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"orderdesk/models"
)

// In-memory implementations of the repository interfaces. They back the
// service tests and behave like the SQL versions: copies on read, newest
// first, same sentinel errors.

type InMemoryOrderRepository struct {
	mu     sync.RWMutex
	orders map[int64]*models.Order
	users  *InMemoryUserRepository
	nextID int64
}

// NewInMemoryOrderRepository stores orders in memory. users may be nil; when
// set, list reads attach the assigned employee the way the SQL join does.
func NewInMemoryOrderRepository(users *InMemoryUserRepository) *InMemoryOrderRepository {
	return &InMemoryOrderRepository{
		orders: make(map[int64]*models.Order),
		users:  users,
		nextID: 1,
	}
}

func (r *InMemoryOrderRepository) Create(ctx context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order.ID = r.nextID
	r.nextID++
	if order.CreationTime.IsZero() {
		order.CreationTime = time.Now()
	}

	stored := *order
	r.orders[order.ID] = &stored
	return nil
}

func (r *InMemoryOrderRepository) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, exists := r.orders[id]
	if !exists {
		return nil, models.ErrOrderNotFound
	}
	return r.copyOf(order), nil
}

func (r *InMemoryOrderRepository) Update(ctx context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.orders[order.ID]
	if !exists {
		return models.ErrOrderNotFound
	}

	stored := *order
	stored.CreationTime = existing.CreationTime
	r.orders[order.ID] = &stored
	return nil
}

func (r *InMemoryOrderRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[id]; !exists {
		return models.ErrOrderNotFound
	}
	delete(r.orders, id)
	return nil
}

func (r *InMemoryOrderRepository) UnassignedOpen(ctx context.Context) ([]*models.Order, error) {
	return r.filter(func(o *models.Order) bool { return o.EmployeeID == nil && !o.Status }), nil
}

func (r *InMemoryOrderRepository) AssignedOpen(ctx context.Context) ([]*models.Order, error) {
	return r.filter(func(o *models.Order) bool { return o.EmployeeID != nil && !o.Status }), nil
}

func (r *InMemoryOrderRepository) Completed(ctx context.Context) ([]*models.Order, error) {
	return r.filter(func(o *models.Order) bool { return o.Status }), nil
}

func (r *InMemoryOrderRepository) AssignedOpenFor(ctx context.Context, employeeID int64) ([]*models.Order, error) {
	return r.filter(func(o *models.Order) bool { return o.AssignedTo(employeeID) && !o.Status }), nil
}

func (r *InMemoryOrderRepository) CompletedFor(ctx context.Context, employeeID int64) ([]*models.Order, error) {
	return r.filter(func(o *models.Order) bool { return o.AssignedTo(employeeID) && o.Status }), nil
}

func (r *InMemoryOrderRepository) CreatedBetween(ctx context.Context, from, to time.Time) ([]*models.Order, error) {
	return r.filter(func(o *models.Order) bool {
		return !o.CreationTime.Before(from) && !o.CreationTime.After(to)
	}), nil
}

func (r *InMemoryOrderRepository) CountForEmployee(ctx context.Context, employeeID int64) (int64, error) {
	return int64(len(r.filter(func(o *models.Order) bool { return o.AssignedTo(employeeID) }))), nil
}

func (r *InMemoryOrderRepository) CountDoneForEmployee(ctx context.Context, employeeID int64) (int64, error) {
	return int64(len(r.filter(func(o *models.Order) bool { return o.AssignedTo(employeeID) && o.Status }))), nil
}

func (r *InMemoryOrderRepository) CountAll(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.orders)), nil
}

func (r *InMemoryOrderRepository) CountUnassignedOpen(ctx context.Context) (int64, error) {
	return int64(len(r.filter(func(o *models.Order) bool { return o.EmployeeID == nil && !o.Status }))), nil
}

func (r *InMemoryOrderRepository) CountDone(ctx context.Context) (int64, error) {
	return int64(len(r.filter(func(o *models.Order) bool { return o.Status }))), nil
}

func (r *InMemoryOrderRepository) filter(keep func(*models.Order) bool) []*models.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*models.Order, 0)
	for _, order := range r.orders {
		if keep(order) {
			matched = append(matched, r.copyOf(order))
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreationTime.After(matched[j].CreationTime)
	})
	return matched
}

func (r *InMemoryOrderRepository) copyOf(order *models.Order) *models.Order {
	copied := *order
	if r.users != nil && order.EmployeeID != nil {
		if user, err := r.users.GetByID(context.Background(), *order.EmployeeID); err == nil {
			copied.Employee = user
		}
	}
	return &copied
}

type InMemoryUserRepository struct {
	mu     sync.RWMutex
	users  map[int64]*models.User
	nextID int64
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		users:  make(map[int64]*models.User),
		nextID: 1,
	}
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == user.Email {
			return models.ErrDuplicateEmail
		}
	}

	user.ID = r.nextID
	r.nextID++

	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[id]
	if !exists {
		return nil, models.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (r *InMemoryUserRepository) Update(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.users[user.ID]
	if !exists {
		return models.ErrUserNotFound
	}
	for _, other := range r.users {
		if other.ID != user.ID && other.Email == user.Email {
			return models.ErrDuplicateEmail
		}
	}

	stored := *user
	stored.PasswordHash = existing.PasswordHash
	stored.LastLogin = existing.LastLogin
	r.users[user.ID] = &stored
	return nil
}

func (r *InMemoryUserRepository) UpdateLastLogin(ctx context.Context, id int64, when time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, exists := r.users[id]
	if !exists {
		return models.ErrUserNotFound
	}
	t := when
	user.LastLogin = &t
	return nil
}

func (r *InMemoryUserRepository) List(ctx context.Context) ([]*models.User, error) {
	return r.filter(func(*models.User) bool { return true }), nil
}

func (r *InMemoryUserRepository) Search(ctx context.Context, email, name string) ([]*models.User, error) {
	lowered := strings.ToLower(email)
	return r.filter(func(u *models.User) bool {
		return strings.Contains(strings.ToLower(u.Email), lowered) ||
			strings.Contains(u.FirstName, name) ||
			strings.Contains(u.LastName, name)
	}), nil
}

func (r *InMemoryUserRepository) Employees(ctx context.Context) ([]*models.User, error) {
	return r.filter(func(u *models.User) bool { return !u.IsStaff }), nil
}

func (r *InMemoryUserRepository) filter(keep func(*models.User) bool) []*models.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*models.User, 0)
	for _, user := range r.users {
		if keep(user) {
			copied := *user
			matched = append(matched, &copied)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return matched
}

type InMemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

func NewInMemorySessionRepository() *InMemorySessionRepository {
	return &InMemorySessionRepository{
		sessions: make(map[string]*models.Session),
	}
}

func (r *InMemorySessionRepository) Create(ctx context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *session
	r.sessions[session.Token] = &stored
	return nil
}

func (r *InMemorySessionRepository) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, exists := r.sessions[token]
	if !exists {
		return nil, models.ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

func (r *InMemorySessionRepository) Delete(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, token)
	return nil
}

func (r *InMemorySessionRepository) DeleteExpired(ctx context.Context, before time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for token, session := range r.sessions {
		if session.ExpiresAt.Before(before) {
			delete(r.sessions, token)
		}
	}
	return nil
}
