package store

import (
	"context"
	"time"

	"github.com/mlevkov/go-fin-keeper/models"
)

// UserRepository is the persistence contract for user accounts and their
// one-time-code slots.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
	FindUserByID(ctx context.Context, userID int64) (models.User, error)

	// SaveVerifyOTP overwrites the email-verification code slot.
	SaveVerifyOTP(ctx context.Context, userID int64, code string, expiresAt time.Time) error
	// SaveResetOTP overwrites the password-reset code slot.
	SaveResetOTP(ctx context.Context, userID int64, code string, expiresAt time.Time) error
	// MarkVerified flips the verification flag and clears the verify slot.
	MarkVerified(ctx context.Context, userID int64) error
	// UpdatePassword replaces the stored hash and clears the reset slot.
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
}

// EntryRepository is the persistence contract for ledger entries. Every
// operation is scoped by the owning user id; an entry owned by a different
// user is indistinguishable from a missing one.
type EntryRepository interface {
	CreateEntry(ctx context.Context, entry models.Entry) (models.Entry, error)
	GetEntry(ctx context.Context, userID, entryID int64) (models.Entry, error)
	ListEntries(ctx context.Context, userID int64, filter models.EntryFilter) ([]models.Entry, error)
	UpdateEntry(ctx context.Context, entry models.Entry) (models.Entry, error)
	DeleteEntry(ctx context.Context, userID, entryID int64) (models.Entry, error)
	GetSummary(ctx context.Context, userID int64) (models.Summary, error)
}

// ErrorClassificator decides whether a failed database operation is worth
// retrying. Implementations inspect driver-level errors.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}
