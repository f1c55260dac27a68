package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/jmoiron/sqlx"
)

// ErrAlreadyRegistered is returned by RegisterUser when the user already has a record.
var ErrAlreadyRegistered = errors.New("user already registered")

// Store defines the interface for registration storage.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// IsRegistered reports whether a record exists for userID. It has no side effects.
	IsRegistered(ctx context.Context, userID int64) (bool, error)

	// RegisterUser durably inserts a record for userID.
	// Returns ErrAlreadyRegistered if one already exists.
	RegisterUser(ctx context.Context, userID int64, firstName string) error

	// GetUser retrieves a user by Telegram ID. Returns nil, nil if not found.
	GetUser(ctx context.Context, userID int64) (*User, error)

	// CountUsers returns the number of registered users.
	CountUsers(ctx context.Context) (int, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
	// writeMu serialises inserts so the check-then-insert below is atomic
	// even if the pool is ever allowed more than one connection.
	writeMu sync.Mutex
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// IsRegistered reports whether the user has a registration record.
func (s *sqlxStore) IsRegistered(ctx context.Context, userID int64) (bool, error) {
	if userID == 0 {
		return false, fmt.Errorf("user_id cannot be zero")
	}

	var exists bool
	err := s.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM usuarios WHERE user_id = ?);`, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to check registration", "user_id", userID, "error", err)
		return false, fmt.Errorf("failed to check registration for user %d: %w", userID, err)
	}
	return exists, nil
}

// RegisterUser inserts a new registration inside a transaction and commits
// before returning, so a successful call is never lost.
func (s *sqlxStore) RegisterUser(ctx context.Context, userID int64, firstName string) error {
	if userID == 0 {
		return fmt.Errorf("user_id cannot be zero")
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for registration", "user_id", userID, "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
			}
		}
	}()

	user := User{UserID: userID, FirstName: firstName, Registered: true}
	query := `
        INSERT INTO usuarios (user_id, first_name, registered)
        SELECT :user_id, :first_name, :registered
        WHERE NOT EXISTS (SELECT 1 FROM usuarios WHERE user_id = :user_id);
    `
	result, err := tx.NamedExecContext(ctx, query, user)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error registering user", "user_id", userID, "error", err)
		return fmt.Errorf("failed to register user %d: %w", userID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows for user %d: %w", userID, err)
	}
	if affected == 0 {
		s.logger.DebugContext(ctx, "User already registered", "user_id", userID)
		return ErrAlreadyRegistered
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit registration", "user_id", userID, "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	s.logger.InfoContext(ctx, "User registered", "user_id", userID)
	return nil
}

// GetUser retrieves a registration record by Telegram user ID.
func (s *sqlxStore) GetUser(ctx context.Context, userID int64) (*User, error) {
	var user User
	query := `SELECT id, user_id, first_name, registered FROM usuarios WHERE user_id = ? ORDER BY id LIMIT 1;`
	err := s.db.GetContext(ctx, &user, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		s.logger.ErrorContext(ctx, "Failed to get user", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}
	return &user, nil
}

// CountUsers returns the number of distinct registered users.
func (s *sqlxStore) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(DISTINCT user_id) FROM usuarios;`); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// RunSQLMaintenance executes a VACUUM command on the SQLite database.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	// VACUUM rewrites the file, keep registrations out while it runs.
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")
	if _, err := s.db.ExecContext(ctx, "VACUUM;"); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
			return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)
		}
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	return nil
}
