package service

import (
	"context"

	"github.com/mlevkov/go-fin-keeper/models"
)

// AuthService covers the full account lifecycle: registration with emailed
// one-time codes, email verification, login, password reset, and the JWT
// session token lifecycle.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (models.User, error)
	VerifyEmail(ctx context.Context, email, code string) (models.User, error)
	ResendOTP(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string) (models.User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error

	// Identity resolves the account behind an authenticated user id.
	Identity(ctx context.Context, userID int64) (models.User, error)

	CreateToken(ctx context.Context, user models.User) (models.Token, error)
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)
}

// EntryService covers the owner-scoped ledger operations: listing with
// optional filters, creation, partial update, deletion, and aggregation.
type EntryService interface {
	List(ctx context.Context, userID int64, filter models.EntryFilter) ([]models.Entry, error)
	Create(ctx context.Context, userID int64, req models.EntryRequest) (models.Entry, error)
	Update(ctx context.Context, userID, entryID int64, req models.EntryRequest) (models.Entry, error)
	Delete(ctx context.Context, userID, entryID int64) (models.Entry, error)
	Summary(ctx context.Context, userID int64) (models.Summary, error)
}
