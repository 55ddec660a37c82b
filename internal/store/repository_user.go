package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"

	"github.com/mlevkov/go-fin-keeper/internal/logger"
	"github.com/mlevkov/go-fin-keeper/models"
)

// userRepository is the PostgreSQL-backed implementation of [UserRepository].
// It handles account creation, lookup, one-time-code slot updates, and
// verification state against the "users" table.
//
// All methods obtain a context-scoped logger via [logger.FromContext] for
// structured, request-level tracing of database interactions.
type userRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewUserRepository constructs a [UserRepository] backed by the provided
// database connection and logger.
//
// A debug-level log message is emitted at construction time to aid
// application startup diagnostics.
func NewUserRepository(db *DB, logger *logger.Logger) UserRepository {
	logger.Debug().Msg("creating user repository")
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// CreateUser persists a new user record and returns the fully populated
// [models.User] with server-assigned fields (UserID, CreatedAt, UpdatedAt).
//
// The INSERT uses the [createUser] prepared query which returns all columns
// via a RETURNING clause, so the caller receives the canonical database
// representation of the newly created account.
//
// Error handling:
//   - PostgreSQL unique_violation (23505) → [ErrEmailAlreadyExists].
//   - Any other driver-level error → wrapped as "unexpected DB error".
//   - Scan failure → returned directly.
func (r *userRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, createUser, user.Email, user.Name, user.PasswordHash, user.OTPCode, user.OTPExpiresAt)

	// create user in db
	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*userRepository.CreateUser").Msg("error: row is nil")

		switch postgresError(err) {
		case pgerrcode.UniqueViolation:
			return models.User{}, ErrEmailAlreadyExists
		default:
			r.logClassification(ctx, "*userRepository.CreateUser", err)
			return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
		}
	}

	// scan saved user from db
	if err := scanUser(row, &user); err != nil {
		log.Err(err).Str("func", "*userRepository.CreateUser").Msg("error: scanning error")
		return models.User{}, err
	}

	return user, nil
}

// FindUserByEmail retrieves a user record whose Email matches the provided
// address. Returns [ErrNoUserWasFound] when no account uses that email.
func (r *userRepository) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	log := logger.FromContext(ctx)

	var foundUser models.User
	row := r.db.QueryRowContext(ctx, findUserByEmail, email)

	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*userRepository.FindUserByEmail").Msg("error: row is nil")
		r.logClassification(ctx, "*userRepository.FindUserByEmail", err)
		return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	// scan found user from db
	if err := scanUser(row, &foundUser); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNoUserWasFound
		}
		log.Err(err).Str("func", "*userRepository.FindUserByEmail").Msg("error: scanning error")
		return models.User{}, err
	}

	return foundUser, nil
}

// FindUserByID retrieves a user record by its primary key. Returns
// [ErrNoUserWasFound] when no such account exists.
func (r *userRepository) FindUserByID(ctx context.Context, userID int64) (models.User, error) {
	log := logger.FromContext(ctx)

	var foundUser models.User
	row := r.db.QueryRowContext(ctx, findUserByID, userID)

	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*userRepository.FindUserByID").Msg("error: row is nil")
		r.logClassification(ctx, "*userRepository.FindUserByID", err)
		return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	if err := scanUser(row, &foundUser); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNoUserWasFound
		}
		log.Err(err).Str("func", "*userRepository.FindUserByID").Msg("error: scanning error")
		return models.User{}, err
	}

	return foundUser, nil
}

// SaveVerifyOTP overwrites the email-verification code slot for the given
// user. The password-reset slot is left untouched.
func (r *userRepository) SaveVerifyOTP(ctx context.Context, userID int64, code string, expiresAt time.Time) error {
	return r.execForUser(ctx, "*userRepository.SaveVerifyOTP", saveVerifyOTP, userID, code, expiresAt)
}

// SaveResetOTP overwrites the password-reset code slot for the given user.
// The email-verification slot is left untouched.
func (r *userRepository) SaveResetOTP(ctx context.Context, userID int64, code string, expiresAt time.Time) error {
	return r.execForUser(ctx, "*userRepository.SaveResetOTP", saveResetOTP, userID, code, expiresAt)
}

// MarkVerified flips the user's verification flag and clears the
// email-verification code slot in a single statement.
func (r *userRepository) MarkVerified(ctx context.Context, userID int64) error {
	return r.execForUser(ctx, "*userRepository.MarkVerified", markVerified, userID)
}

// UpdatePassword replaces the stored password hash and clears the
// password-reset code slot in a single statement.
func (r *userRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	return r.execForUser(ctx, "*userRepository.UpdatePassword", updatePassword, userID, passwordHash)
}

// execForUser runs a single-user UPDATE statement and translates an empty
// affected-row count into [ErrNoUserWasFound].
func (r *userRepository) execForUser(ctx context.Context, funcName string, query string, args ...any) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", funcName).Msg("error: executing statement")
		r.logClassification(ctx, funcName, err)
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		log.Err(err).Str("func", funcName).Msg("error: reading affected rows")
		return err
	}
	if affected == 0 {
		return ErrNoUserWasFound
	}

	return nil
}

// logClassification records whether an unexpected driver error is transient
// (worth retrying upstream) or permanent, using the connection's classifier.
func (r *userRepository) logClassification(ctx context.Context, funcName string, err error) {
	log := logger.FromContext(ctx)
	retryable := r.db.errorClassificator.Classify(err) == Retryable
	log.Warn().Str("func", funcName).Bool("retryable", retryable).Msg("unexpected DB error classified")
}

// scanUser reads a full users-table row into dst.
func scanUser(row *sql.Row, dst *models.User) error {
	return row.Scan(
		&dst.UserID, &dst.Email, &dst.Name, &dst.PasswordHash, &dst.Verified,
		&dst.OTPCode, &dst.OTPExpiresAt, &dst.ResetCode, &dst.ResetExpiresAt,
		&dst.CreatedAt, &dst.UpdatedAt,
	)
}
