package models

import "time"

// User represents an account entity used for authentication and authorization.
// It contains identity attributes, credential data, and the two one-time-code
// slots used by the email-verification and password-reset flows.
// Sensitive fields must never be exposed outside trusted boundaries.
type User struct {
	// UserID is the internal unique identifier of the user.
	UserID int64 `json:"id"`

	// Email is the unique user identifier used during authentication.
	// It is stored normalized (trimmed, lower-cased).
	Email string `json:"email"`

	// Name is the display name of the user.
	// It is non-sensitive and may be shown in UI.
	Name string `json:"name"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This value MUST be a hash, never plaintext.
	// It is never exposed via JSON.
	PasswordHash string `json:"-"`

	// Verified reports whether the user has confirmed the email address
	// with a one-time code. Unverified users cannot log in or access
	// any protected resource.
	Verified bool `json:"verified"`

	// OTPCode holds the currently active email-verification code, if any.
	// Write-only for external callers; excluded from JSON.
	OTPCode string `json:"-"`

	// OTPExpiresAt is the absolute expiry instant of OTPCode.
	OTPExpiresAt *time.Time `json:"-"`

	// ResetCode holds the currently active password-reset code, if any.
	// Independent from OTPCode: issuing one slot never touches the other.
	ResetCode string `json:"-"`

	// ResetExpiresAt is the absolute expiry instant of ResetCode.
	ResetExpiresAt *time.Time `json:"-"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp of the last mutation of the record.
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}
