package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/mlevkov/go-fin-keeper/internal/config"
	"github.com/mlevkov/go-fin-keeper/internal/logger"
	"github.com/mlevkov/go-fin-keeper/internal/mail"
	"github.com/mlevkov/go-fin-keeper/internal/mock"
	"github.com/mlevkov/go-fin-keeper/internal/store"
	"github.com/mlevkov/go-fin-keeper/internal/utils"
	"github.com/mlevkov/go-fin-keeper/models"
)

func newTestAuthSvc(t *testing.T, ctrl *gomock.Controller) (AuthService, *mock.MockUserRepository, *mock.MockSender) {
	t.Helper()
	mockUsers := mock.NewMockUserRepository(ctrl)
	mockMailer := mock.NewMockSender(ctrl)

	cfg := config.App{
		TokenSignKey:  "test-sign-key",
		TokenIssuer:   "go-fin-keeper-test",
		TokenDuration: time.Hour,
		OTPLifetime:   10 * time.Minute,
		BcryptCost:    bcrypt.MinCost,
	}

	svc := NewAuthService(mockUsers, mockMailer, cfg, logger.Nop())
	return svc, mockUsers, mockMailer
}

func futureTime(d time.Duration) *time.Time {
	t := time.Now().Add(d)
	return &t
}

// ── Register ─────────────────────────────────────────────────────────────────

func TestAuthService_Register_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockUsers, mockMailer := newTestAuthSvc(t, ctrl)
	ctx := context.Background()

	mockUsers.EXPECT().CreateUser(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, u models.User) (models.User, error) {
			assert.Equal(t, "john@example.com", u.Email)
			assert.Equal(t, "John", u.Name)
			assert.NotEqual(t, "secret-password", u.PasswordHash, "password must be stored hashed")
			assert.Len(t, u.OTPCode, 6)
			require.NotNil(t, u.OTPExpiresAt)
			u.UserID = 1
			return u, nil
		},
	)
	mockMailer.EXPECT().SendVerificationCode(ctx, "john@example.com", "John", gomock.Any()).Return(nil)

	user, err := svc.Register(ctx, "John", " John@Example.COM ", "secret-password")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.UserID)
	assert.False(t, user.Verified)
}

func TestAuthService_Register_WeakPassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _, _ := newTestAuthSvc(t, ctrl)

	_, err := svc.Register(context.Background(), "John", "john@example.com", "short")
	require.ErrorIs(t, err, ErrValidationWeakPassword)
}

func TestAuthService_Register_InvalidEmail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _, _ := newTestAuthSvc(t, ctrl)

	_, err := svc.Register(context.Background(), "John", "not-an-email", "secret-password")
	require.ErrorIs(t, err, ErrValidationInvalidEmail)
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockUsers, _ := newTestAuthSvc(t, ctrl)
	ctx := context.Background()

	mockUsers.EXPECT().CreateUser(ctx, gomock.Any()).Return(models.User{}, store.ErrEmailAlreadyExists)

	_, err := svc.Register(ctx, "John", "john@example.com", "secret-password")
	require.ErrorIs(t, err, store.ErrEmailAlreadyExists)
}

func TestAuthService_Register_DeliveryFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockUsers, mockMailer := newTestAuthSvc(t, ctrl)
	ctx := context.Background()

	mockUsers.EXPECT().CreateUser(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, u models.User) (models.User, error) {
			u.UserID = 1
			return u, nil
		},
	)
	mockMailer.EXPECT().SendVerificationCode(ctx, gomock.Any(), gomock.Any(), gomock.Any()).
		Return(mail.ErrDeliveryFailed)

	_, err := svc.Register(ctx, "John", "john@example.com", "secret-password")
	require.ErrorIs(t, err, mail.ErrDeliveryFailed)
}

// ── VerifyEmail ──────────────────────────────────────────────────────────────

func TestAuthService_VerifyEmail_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockUsers, _ := newTestAuthSvc(t, ctrl)
	ctx := context.Background()

	stored := models.User{
		UserID:       1,
		Email:        "john@example.com",
		OTPCode:      "123456",
		OTPExpiresAt: futureTime(5 * time.Minute),
	}

	gomock.InOrder(
		mockUsers.EXPECT().FindUserByEmail(ctx, "john@example.com").Return(stored, nil),
		mockUsers.EXPECT().MarkVerified(ctx, int64(1)).Return(nil),
	)

	user, err := svc.VerifyEmail(ctx, "john@example.com", "123456")
	require.NoError(t, err)
	assert.True(t, user.Verified)
	assert.Empty(t, user.OTPCode)
}

func TestAuthService_VerifyEmail_WrongCode(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockUsers, _ := newTestAuthSvc(t, ctrl)
	ctx := context.Background()

	stored := models.User{
		UserID:       1,
		Email:        "john@example.com",
		OTPCode:      "123456",
		OTPExpiresAt: futureTime(5 * time.Minute),
	}
	mockUsers.EXPECT().FindUserByEmail(ctx, "john@example.com").Return(stored, nil)

	_, err := svc.VerifyEmail(ctx, "john@example.com", "999999")
	require.ErrorIs(t, err, ErrInvalidOTPCode)
}

func TestAuthService_VerifyEmail_ExpiredCode(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockUsers, _ := newTestAuthSvc(t, ctrl)
	ctx := context.Background()

	stored := models.User{
		UserID:       1,
		Email:        "john@example.com",
		OTPCode:      "123456",
		OTPExpiresAt: futureTime(-time.Minute),
	}
	mockUsers.EXPECT().FindUserByEmail(ctx, "john@example.com").Return(stored, nil)

	_, err := svc.VerifyEmail(ctx, "john@example.com", "123456")
	require.ErrorIs(t, err, ErrOTPExpired)
}

func TestAuthService_VerifyEmail_AlreadyVerified(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockUsers, _ := newTestAuthSvc(t, ctrl)
	ctx := context.Background()

	mockUsers.EXPECT().FindUserByEmail(ctx, "john@example.com").
		Return(models.User{UserID: 1, Verified: true}, nil)

	_, err := svc.VerifyEmail(ctx, "john@example.com", "123456")
	require.ErrorIs(t, err, ErrUserAlreadyVerified)
}

// ── ResendOTP ────────────────────────────────────────────────────────────────

func TestAuthService_ResendOTP_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockUsers, mockMailer := newTestAuthSvc(t, ctrl)
	ctx := context.Background()

	stored := models.User{UserID: 1, Email: "john@example.com", Name: "John"}

	gomock.InOrder(
		mockUsers.EXPECT().FindUserByEmail(ctx, "john@example.com").Return(stored, nil),
		mockUsers.EXPECT().SaveVerifyOTP(ctx, int64(1), gomock.Any(), gomock.Any()).Return(nil),
		mockMailer.EXPECT().SendVerificationCode(ctx, "john@example.com", "John", gomock.Any()).Return(nil),
	)

	require.NoError(t, svc.ResendOTP(ctx, "john@example.com"))
}

func TestAuthService_ResendOTP_AlreadyVerified(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockUsers, _ := newTestAuthSvc(t, ctrl)
	ctx := context.Background()

	mockUsers.EXPECT().FindUserByEmail(ctx, "john@example.com").
		Return(models.User{UserID: 1, Verified: true}, nil)

	require.ErrorIs(t, svc.ResendOTP(ctx, "john@example.com"), ErrUserAlreadyVerified)
}

// ── Login ────────────────────────────────────────────────────────────────────

func TestAuthService_Login_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockUsers, _ := newTestAuthSvc(t, ctrl)
	ctx := context.Background()

	hash, err := utils.HashPassword("secret-password", bcrypt.MinCost)
	require.NoError(t, err)

	stored := models.User{UserID: 1, Email: "john@example.com", PasswordHash: hash, Verified: true}
	mockUsers.EXPECT().FindUserByEmail(ctx, "john@example.com").Return(stored, nil)

	user, err := svc.Login(ctx, "john@example.com", "secret-password")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.UserID)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockUsers, _ := newTestAuthSvc(t, ctrl)
	ctx := context.Background()

	hash, err := utils.HashPassword("secret-password", bcrypt.MinCost)
	require.NoError(t, err)

	stored := models.User{UserID: 1, Email: "john@example.com", PasswordHash: hash, Verified: true}
	mockUsers.EXPECT().FindUserByEmail(ctx, "john@example.com").Return(stored, nil)

	_, err = svc.Login(ctx, "john@example.com", "wrong-password")
	require.ErrorIs(t, err, ErrWrongPassword)
}

func TestAuthService_Login_NotVerified(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockUsers, _ := newTestAuthSvc(t, ctrl)
	ctx := context.Background()

	hash, err := utils.HashPassword("secret-password", bcrypt.MinCost)
	require.NoError(t, err)

	stored := models.User{UserID: 1, Email: "john@example.com", PasswordHash: hash, Verified: false}
	mockUsers.EXPECT().FindUserByEmail(ctx, "john@example.com").Return(stored, nil)

	_, err = svc.Login(ctx, "john@example.com", "secret-password")
	require.ErrorIs(t, err, ErrUserNotVerified)
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockUsers, _ := newTestAuthSvc(t, ctrl)
	ctx := context.Background()

	mockUsers.EXPECT().FindUserByEmail(ctx, "nobody@example.com").
		Return(models.User{}, store.ErrNoUserWasFound)

	_, err := svc.Login(ctx, "nobody@example.com", "secret-password")
	require.ErrorIs(t, err, store.ErrNoUserWasFound)
}

// ── Password reset ───────────────────────────────────────────────────────────

func TestAuthService_RequestPasswordReset_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockUsers, mockMailer := newTestAuthSvc(t, ctrl)
	ctx := context.Background()

	stored := models.User{UserID: 1, Email: "john@example.com", Name: "John", Verified: true}

	gomock.InOrder(
		mockUsers.EXPECT().FindUserByEmail(ctx, "john@example.com").Return(stored, nil),
		mockUsers.EXPECT().SaveResetOTP(ctx, int64(1), gomock.Any(), gomock.Any()).Return(nil),
		mockMailer.EXPECT().SendPasswordResetCode(ctx, "john@example.com", "John", gomock.Any()).Return(nil),
	)

	require.NoError(t, svc.RequestPasswordReset(ctx, "john@example.com"))
}

func TestAuthService_ResetPassword_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockUsers, _ := newTestAuthSvc(t, ctrl)
	ctx := context.Background()

	stored := models.User{
		UserID:         1,
		Email:          "john@example.com",
		ResetCode:      "654321",
		ResetExpiresAt: futureTime(5 * time.Minute),
	}

	gomock.InOrder(
		mockUsers.EXPECT().FindUserByEmail(ctx, "john@example.com").Return(stored, nil),
		mockUsers.EXPECT().UpdatePassword(ctx, int64(1), gomock.Any()).DoAndReturn(
			func(_ context.Context, _ int64, passwordHash string) error {
				assert.True(t, utils.CheckPassword("new-password-1", passwordHash))
				return nil
			},
		),
	)

	require.NoError(t, svc.ResetPassword(ctx, "john@example.com", "654321", "new-password-1"))
}

func TestAuthService_ResetPassword_WrongCode(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockUsers, _ := newTestAuthSvc(t, ctrl)
	ctx := context.Background()

	stored := models.User{
		UserID:         1,
		Email:          "john@example.com",
		ResetCode:      "654321",
		ResetExpiresAt: futureTime(5 * time.Minute),
	}
	mockUsers.EXPECT().FindUserByEmail(ctx, "john@example.com").Return(stored, nil)

	err := svc.ResetPassword(ctx, "john@example.com", "111111", "new-password-1")
	require.ErrorIs(t, err, ErrInvalidOTPCode)
}

func TestAuthService_ResetPassword_ExpiredCode(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockUsers, _ := newTestAuthSvc(t, ctrl)
	ctx := context.Background()

	stored := models.User{
		UserID:         1,
		Email:          "john@example.com",
		ResetCode:      "654321",
		ResetExpiresAt: futureTime(-time.Minute),
	}
	mockUsers.EXPECT().FindUserByEmail(ctx, "john@example.com").Return(stored, nil)

	err := svc.ResetPassword(ctx, "john@example.com", "654321", "new-password-1")
	require.ErrorIs(t, err, ErrOTPExpired)
}

func TestAuthService_ResetPassword_SlotNeverIssued(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockUsers, _ := newTestAuthSvc(t, ctrl)
	ctx := context.Background()

	// no reset code was ever requested for this account
	stored := models.User{UserID: 1, Email: "john@example.com", Verified: true}
	mockUsers.EXPECT().FindUserByEmail(ctx, "john@example.com").Return(stored, nil)

	err := svc.ResetPassword(ctx, "john@example.com", "654321", "new-password-1")
	require.ErrorIs(t, err, ErrOTPExpired)
}

// ── Tokens and identity ──────────────────────────────────────────────────────

func TestAuthService_TokenRoundtrip(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _, _ := newTestAuthSvc(t, ctrl)
	ctx := context.Background()

	token, err := svc.CreateToken(ctx, models.User{UserID: 42})
	require.NoError(t, err)
	require.NotEmpty(t, token.String())

	parsed, err := svc.ParseToken(ctx, token.String())
	require.NoError(t, err)

	userID, err := parsed.GetUserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestAuthService_ParseToken_Garbage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _, _ := newTestAuthSvc(t, ctrl)

	_, err := svc.ParseToken(context.Background(), "not-a-token")
	require.ErrorIs(t, err, ErrTokenIsExpiredOrInvalid)
}

func TestAuthService_Identity_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockUsers, _ := newTestAuthSvc(t, ctrl)
	ctx := context.Background()

	mockUsers.EXPECT().FindUserByID(ctx, int64(42)).
		Return(models.User{UserID: 42, Email: "john@example.com", Verified: true}, nil)

	user, err := svc.Identity(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "john@example.com", user.Email)
}

func TestAuthService_Identity_UnknownUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockUsers, _ := newTestAuthSvc(t, ctrl)
	ctx := context.Background()

	mockUsers.EXPECT().FindUserByID(ctx, int64(999)).
		Return(models.User{}, store.ErrNoUserWasFound)

	_, err := svc.Identity(ctx, 999)
	require.ErrorIs(t, err, store.ErrNoUserWasFound)
}
