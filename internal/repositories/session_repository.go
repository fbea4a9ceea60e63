package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"orderdesk/models"
	"orderdesk/pkg/database"
	"orderdesk/pkg/logger"
)

// SessionRepositoryInterface persists login sessions keyed by token.
type SessionRepositoryInterface interface {
	Create(ctx context.Context, session *models.Session) error
	GetByToken(ctx context.Context, token string) (*models.Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, before time.Time) error
}

type SessionRepository struct {
	db     *database.DB
	logger *logger.Logger
}

func NewSessionRepository(db *database.DB, log *logger.Logger) *SessionRepository {
	return &SessionRepository{
		db:     db,
		logger: log.WithComponent("session_repository"),
	}
}

func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	query := `INSERT INTO sessions (token, user_id, created_at, expires_at)
	          VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, query,
		session.Token,
		session.UserID,
		session.CreatedAt,
		session.ExpiresAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert session", "error", err, "user_id", session.UserID)
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SessionRepository) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	var session models.Session
	query := `SELECT token, user_id, created_at, expires_at FROM sessions WHERE token = $1`
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&session.Token,
		&session.UserID,
		&session.CreatedAt,
		&session.ExpiresAt,
	)
	if err == sql.ErrNoRows {
		return nil, models.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select session: %w", err)
	}
	return &session, nil
}

func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, before time.Time) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < $1`, before)
	if err != nil {
		return fmt.Errorf("delete expired sessions: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected > 0 {
		r.logger.Debug("Removed expired sessions", "count", affected)
	}
	return nil
}
