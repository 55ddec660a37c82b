package service

import (
	"context"
	"fmt"
	netmail "net/mail"
	"strings"
	"time"

	"github.com/mlevkov/go-fin-keeper/internal/config"
	"github.com/mlevkov/go-fin-keeper/internal/logger"
	"github.com/mlevkov/go-fin-keeper/internal/mail"
	"github.com/mlevkov/go-fin-keeper/internal/otp"
	"github.com/mlevkov/go-fin-keeper/internal/store"
	"github.com/mlevkov/go-fin-keeper/internal/utils"
	"github.com/mlevkov/go-fin-keeper/models"
)

// minPasswordLength is the minimum accepted password length for registration
// and password reset.
const minPasswordLength = 8

// authService is the concrete implementation of AuthService.
// It handles registration with emailed one-time codes, email verification,
// login, password reset, and the JWT token lifecycle, using a UserRepository
// for persistence and bcrypt for password hashing.
type authService struct {
	// userRepository is the data-access layer used to create and look up users.
	userRepository store.UserRepository

	// otpIssuer generates one-time codes with a fixed validity window.
	otpIssuer *otp.Issuer

	// mailer delivers one-time codes to the user's email address.
	mailer mail.Sender

	// bcryptCost is the cost factor applied when hashing user passwords.
	bcryptCost int

	// tokenSignKey is the HMAC secret used to sign and verify JWT tokens.
	tokenSignKey string

	// tokenIssuer is the "iss" claim embedded in every issued JWT.
	// Tokens whose issuer does not match this value are rejected during parsing.
	tokenIssuer string

	// tokenDuration controls how long a newly issued JWT remains valid.
	tokenDuration time.Duration

	// logger is the structured logger used for diagnostic and error output.
	logger *logger.Logger
}

// NewAuthService constructs a new AuthService wired to the given
// UserRepository and code delivery channel, populated with security
// parameters from cfg.
//
// The returned service is safe for concurrent use; all state is read-only
// after construction.
func NewAuthService(userRepository store.UserRepository, mailer mail.Sender, cfg config.App, logger *logger.Logger) AuthService {
	return &authService{
		userRepository: userRepository,
		otpIssuer:      otp.NewIssuer(cfg.OTPLifetime),
		mailer:         mailer,
		bcryptCost:     cfg.BcryptCost,
		tokenSignKey:   cfg.TokenSignKey,
		tokenIssuer:    cfg.TokenIssuer,
		tokenDuration:  cfg.TokenDuration,
		logger:         logger,
	}
}

// Register creates a new unverified user account and emails a verification
// code to the given address.
//
// The email is normalized (trimmed, lower-cased) and syntax-checked, the
// password is bcrypt-hashed, and a fresh one-time code is stored alongside
// the account so verification can complete later.
//
// Returns the persisted user (with a server-assigned UserID) or:
//   - ErrValidationMissingFields / ErrValidationInvalidEmail /
//     ErrValidationWeakPassword on bad input.
//   - A wrapped storage error if persistence fails (e.g. email already
//     taken — see store.ErrEmailAlreadyExists).
//   - A wrapped mail.ErrDeliveryFailed if the code email cannot be sent.
func (a *authService) Register(ctx context.Context, name, email, password string) (models.User, error) {
	log := logger.FromContext(ctx)

	email, err := normalizeEmail(email)
	if err != nil {
		log.Error().Str("email", email).Msg("invalid email provided")
		return models.User{}, err
	}
	if name == "" {
		return models.User{}, fmt.Errorf("%w: name", ErrValidationMissingFields)
	}
	if len(password) < minPasswordLength {
		return models.User{}, ErrValidationWeakPassword
	}

	passwordHash, err := utils.HashPassword(password, a.bcryptCost)
	if err != nil {
		log.Err(err).Msg("password hashing failed")
		return models.User{}, fmt.Errorf("password hashing failed: %w", err)
	}

	code, expiresAt, err := a.otpIssuer.Issue()
	if err != nil {
		log.Err(err).Msg("one-time code generation failed")
		return models.User{}, fmt.Errorf("one-time code generation failed: %w", err)
	}

	user := models.User{
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		OTPCode:      code,
		OTPExpiresAt: &expiresAt,
	}

	registeredUser, err := a.userRepository.CreateUser(ctx, user)
	if err != nil {
		log.Err(err).Str("email", email).Msg("user creation ended with error")
		return models.User{}, fmt.Errorf("user creation ended with error: %w", err)
	}

	if err := a.mailer.SendVerificationCode(ctx, registeredUser.Email, registeredUser.Name, code); err != nil {
		log.Err(err).Int64("id", registeredUser.UserID).Msg("verification code delivery failed")
		return models.User{}, fmt.Errorf("verification code delivery failed: %w", err)
	}

	return registeredUser, nil
}

// VerifyEmail checks the presented code against the stored verification slot
// and, on match, marks the account as verified.
//
// Returns the verified user or:
//   - ErrValidationMissingFields on empty input.
//   - A wrapped storage error if no account uses the email.
//   - ErrUserAlreadyVerified if the account already passed verification.
//   - ErrOTPExpired / ErrInvalidOTPCode on a stale or wrong code.
func (a *authService) VerifyEmail(ctx context.Context, email, code string) (models.User, error) {
	log := logger.FromContext(ctx)

	email, err := normalizeEmail(email)
	if err != nil {
		return models.User{}, err
	}
	if code == "" {
		return models.User{}, fmt.Errorf("%w: code", ErrValidationMissingFields)
	}

	user, err := a.userRepository.FindUserByEmail(ctx, email)
	if err != nil {
		log.Err(err).Str("email", email).Msg("user search by email failed")
		return models.User{}, fmt.Errorf("user search by email failed: %w", err)
	}

	if user.Verified {
		return models.User{}, ErrUserAlreadyVerified
	}
	if otp.Expired(user.OTPExpiresAt) {
		return models.User{}, ErrOTPExpired
	}
	if !otp.Matches(code, user.OTPCode) {
		log.Warn().Int64("id", user.UserID).Msg("wrong verification code presented")
		return models.User{}, ErrInvalidOTPCode
	}

	if err := a.userRepository.MarkVerified(ctx, user.UserID); err != nil {
		log.Err(err).Int64("id", user.UserID).Msg("marking user verified failed")
		return models.User{}, fmt.Errorf("marking user verified failed: %w", err)
	}

	user.Verified = true
	user.OTPCode = ""
	user.OTPExpiresAt = nil

	return user, nil
}

// ResendOTP issues a fresh verification code for a not-yet-verified account
// and emails it, replacing any previously issued code.
func (a *authService) ResendOTP(ctx context.Context, email string) error {
	log := logger.FromContext(ctx)

	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	user, err := a.userRepository.FindUserByEmail(ctx, email)
	if err != nil {
		log.Err(err).Str("email", email).Msg("user search by email failed")
		return fmt.Errorf("user search by email failed: %w", err)
	}

	if user.Verified {
		return ErrUserAlreadyVerified
	}

	code, expiresAt, err := a.otpIssuer.Issue()
	if err != nil {
		log.Err(err).Msg("one-time code generation failed")
		return fmt.Errorf("one-time code generation failed: %w", err)
	}

	if err := a.userRepository.SaveVerifyOTP(ctx, user.UserID, code, expiresAt); err != nil {
		log.Err(err).Int64("id", user.UserID).Msg("saving verification code failed")
		return fmt.Errorf("saving verification code failed: %w", err)
	}

	if err := a.mailer.SendVerificationCode(ctx, user.Email, user.Name, code); err != nil {
		log.Err(err).Int64("id", user.UserID).Msg("verification code delivery failed")
		return fmt.Errorf("verification code delivery failed: %w", err)
	}

	return nil
}

// Login authenticates an existing user by email and password.
//
// Returns the authenticated user record or:
//   - ErrValidationMissingFields on empty input.
//   - A wrapped storage error if the lookup fails (e.g. user not found —
//     see store.ErrNoUserWasFound).
//   - ErrWrongPassword if the password does not match the stored hash.
//   - ErrUserNotVerified if the account never completed email verification.
func (a *authService) Login(ctx context.Context, email, password string) (models.User, error) {
	log := logger.FromContext(ctx)

	email, err := normalizeEmail(email)
	if err != nil {
		return models.User{}, err
	}
	if password == "" {
		return models.User{}, fmt.Errorf("%w: password", ErrValidationMissingFields)
	}

	foundUser, err := a.userRepository.FindUserByEmail(ctx, email)
	if err != nil {
		log.Err(err).Str("email", email).Msg("user search by email failed")
		return models.User{}, fmt.Errorf("user search by email failed: %w", err)
	}

	if !utils.CheckPassword(password, foundUser.PasswordHash) {
		log.Warn().Int64("id", foundUser.UserID).Msg("wrong password")
		return models.User{}, ErrWrongPassword
	}

	if !foundUser.Verified {
		return models.User{}, ErrUserNotVerified
	}

	return foundUser, nil
}

// RequestPasswordReset issues a password-reset code for the account and
// emails it. The verification slot is untouched: reset and verification
// codes live in independent slots.
func (a *authService) RequestPasswordReset(ctx context.Context, email string) error {
	log := logger.FromContext(ctx)

	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	user, err := a.userRepository.FindUserByEmail(ctx, email)
	if err != nil {
		log.Err(err).Str("email", email).Msg("user search by email failed")
		return fmt.Errorf("user search by email failed: %w", err)
	}

	code, expiresAt, err := a.otpIssuer.Issue()
	if err != nil {
		log.Err(err).Msg("one-time code generation failed")
		return fmt.Errorf("one-time code generation failed: %w", err)
	}

	if err := a.userRepository.SaveResetOTP(ctx, user.UserID, code, expiresAt); err != nil {
		log.Err(err).Int64("id", user.UserID).Msg("saving reset code failed")
		return fmt.Errorf("saving reset code failed: %w", err)
	}

	if err := a.mailer.SendPasswordResetCode(ctx, user.Email, user.Name, code); err != nil {
		log.Err(err).Int64("id", user.UserID).Msg("reset code delivery failed")
		return fmt.Errorf("reset code delivery failed: %w", err)
	}

	return nil
}

// ResetPassword checks the presented code against the stored reset slot and,
// on match, replaces the account password with a bcrypt hash of newPassword.
func (a *authService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	log := logger.FromContext(ctx)

	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	if code == "" {
		return fmt.Errorf("%w: code", ErrValidationMissingFields)
	}
	if len(newPassword) < minPasswordLength {
		return ErrValidationWeakPassword
	}

	user, err := a.userRepository.FindUserByEmail(ctx, email)
	if err != nil {
		log.Err(err).Str("email", email).Msg("user search by email failed")
		return fmt.Errorf("user search by email failed: %w", err)
	}

	if otp.Expired(user.ResetExpiresAt) {
		return ErrOTPExpired
	}
	if !otp.Matches(code, user.ResetCode) {
		log.Warn().Int64("id", user.UserID).Msg("wrong reset code presented")
		return ErrInvalidOTPCode
	}

	passwordHash, err := utils.HashPassword(newPassword, a.bcryptCost)
	if err != nil {
		log.Err(err).Msg("password hashing failed")
		return fmt.Errorf("password hashing failed: %w", err)
	}

	if err := a.userRepository.UpdatePassword(ctx, user.UserID, passwordHash); err != nil {
		log.Err(err).Int64("id", user.UserID).Msg("password update failed")
		return fmt.Errorf("password update failed: %w", err)
	}

	return nil
}

// Identity resolves the account behind an authenticated user id. It is used
// by the access guard after token validation to attach the caller's identity
// to the request.
func (a *authService) Identity(ctx context.Context, userID int64) (models.User, error) {
	log := logger.FromContext(ctx)

	user, err := a.userRepository.FindUserByID(ctx, userID)
	if err != nil {
		log.Err(err).Int64("id", userID).Msg("user search by id failed")
		return models.User{}, fmt.Errorf("user search by id failed: %w", err)
	}

	return user, nil
}

// CreateToken issues a signed JWT for the given user.
//
// The token is signed with the configured tokenSignKey, carries the
// configured tokenIssuer as the "iss" claim, and expires after tokenDuration.
func (a *authService) CreateToken(ctx context.Context, user models.User) (models.Token, error) {
	token, err := utils.GenerateJWTToken(a.tokenIssuer, user.UserID, a.tokenDuration, a.tokenSignKey)
	if err != nil {
		return models.Token{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	return token, nil
}

// ParseToken validates and parses a raw JWT string.
//
// It delegates to utils.ValidateAndParseJWTToken, verifying the signature and
// the issuer claim. Any validation failure (expired, wrong issuer, malformed)
// is normalised to ErrTokenIsExpiredOrInvalid so that callers do not need to
// inspect low-level JWT errors.
func (a *authService) ParseToken(ctx context.Context, tokenString string) (models.Token, error) {
	token, err := utils.ValidateAndParseJWTToken(tokenString, a.tokenSignKey, a.tokenIssuer)
	if err != nil {
		return models.Token{}, ErrTokenIsExpiredOrInvalid
	}

	return token, nil
}

// normalizeEmail trims and lower-cases the address and rejects anything that
// does not parse as a bare RFC 5322 address.
func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", fmt.Errorf("%w: email", ErrValidationMissingFields)
	}

	parsed, err := netmail.ParseAddress(email)
	if err != nil || parsed.Address != email {
		return "", ErrValidationInvalidEmail
	}

	return email, nil
}
