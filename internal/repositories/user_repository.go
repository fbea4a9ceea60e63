package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"orderdesk/models"
	"orderdesk/pkg/database"
	"orderdesk/pkg/logger"
)

// UserRepositoryInterface is the persistence port for accounts. Email is the
// natural identity key.
type UserRepositoryInterface interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, id int64, when time.Time) error
	List(ctx context.Context) ([]*models.User, error)
	// Search matches the email by case-insensitive substring and the
	// first/last name by the capitalized form of the query.
	Search(ctx context.Context, email, name string) ([]*models.User, error)
	// Employees lists non-staff accounts, e.g. for assignment pickers.
	Employees(ctx context.Context) ([]*models.User, error)
}

type UserRepository struct {
	db     *database.DB
	logger *logger.Logger
}

func NewUserRepository(db *database.DB, log *logger.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: log.WithComponent("user_repository"),
	}
}

const selectUsers = `
SELECT id, email, password_hash, first_name, last_name, middle_name,
       birthday, avatar, is_staff, is_superuser, last_login, created_at
FROM users`

// uniqueViolation is the PostgreSQL error code raised when the unique email
// constraint is broken.
const uniqueViolation = "23505"

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (email, password_hash, first_name, last_name, middle_name,
	                             birthday, avatar, is_staff, is_superuser, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	          RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.MiddleName,
		user.Birthday,
		user.Avatar,
		user.IsStaff,
		user.IsSuperuser,
		user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			r.logger.Warn("Attempted to register duplicate email", "email", user.Email)
			return models.ErrDuplicateEmail
		}
		r.logger.Error("Failed to insert user", "error", err)
		return fmt.Errorf("insert user: %w", err)
	}

	r.logger.Info("Added new user", "user_id", user.ID, "email", user.Email)
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, selectUsers+` WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user %d: %w", id, err)
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, selectUsers+` WHERE email = $1`, email))
	if err == sql.ErrNoRows {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user by email: %w", err)
	}
	return user, nil
}

func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	query := `UPDATE users
	          SET email = $2, first_name = $3, last_name = $4, middle_name = $5,
	              birthday = $6, avatar = $7
	          WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.FirstName,
		user.LastName,
		user.MiddleName,
		user.Birthday,
		user.Avatar,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return models.ErrDuplicateEmail
		}
		r.logger.Error("Failed to update user", "error", err, "user_id", user.ID)
		return fmt.Errorf("update user %d: %w", user.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrUserNotFound
	}

	r.logger.Info("Updated user", "user_id", user.ID)
	return nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id int64, when time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_login = $2 WHERE id = $1`, id, when)
	if err != nil {
		return fmt.Errorf("update last login for user %d: %w", id, err)
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	return r.list(ctx, selectUsers+` ORDER BY id`)
}

func (r *UserRepository) Search(ctx context.Context, email, name string) ([]*models.User, error) {
	query := selectUsers + `
	WHERE email ILIKE '%' || $1 || '%'
	   OR first_name LIKE '%' || $2 || '%'
	   OR last_name LIKE '%' || $2 || '%'
	ORDER BY id`
	return r.list(ctx, query, email, name)
}

func (r *UserRepository) Employees(ctx context.Context) ([]*models.User, error) {
	return r.list(ctx, selectUsers+` WHERE is_staff = false ORDER BY id`)
}

func (r *UserRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query users", "error", err)
		return nil, fmt.Errorf("select users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		user      models.User
		birthday  sql.NullTime
		avatar    sql.NullString
		lastLogin sql.NullTime
	)

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.MiddleName,
		&birthday,
		&avatar,
		&user.IsStaff,
		&user.IsSuperuser,
		&lastLogin,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if birthday.Valid {
		t := birthday.Time
		user.Birthday = &t
	}
	if avatar.Valid {
		user.Avatar = &avatar.String
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		user.LastLogin = &t
	}
	return &user, nil
}
