package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlevkov/go-fin-keeper/internal/service"
	"github.com/mlevkov/go-fin-keeper/internal/store"
	"github.com/mlevkov/go-fin-keeper/internal/utils"
	"github.com/mlevkov/go-fin-keeper/models"
)

// stubTokenWithSubject builds a token whose "sub" claim resolves to userID.
func stubTokenWithSubject(userID int64) models.Token {
	return models.Token{
		RegisteredClaims: jwt.RegisteredClaims{Subject: strconv.FormatInt(userID, 10)},
		UserID:           userID,
	}
}

// guardedHandler runs the auth middleware in front of a probe handler and
// reports whether the probe was reached plus the user id it observed.
func guardedHandler(h *Handler) (http.Handler, *int64, *bool) {
	var seenUserID int64
	var reached bool

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		if id, ok := utils.GetUserIDFromContext(r.Context()); ok {
			seenUserID = id
		}
		w.WriteHeader(http.StatusOK)
	})

	return h.auth(next), &seenUserID, &reached
}

// validAuthStack returns an AuthService mock whose ParseToken and Identity
// succeed for a verified user with the given id.
func validAuthStack(userID int64) *mockAuthService {
	return &mockAuthService{
		parseTokenFn: func(_ context.Context, _ string) (models.Token, error) {
			return stubTokenWithSubject(userID), nil
		},
		identityFn: func(_ context.Context, id int64) (models.User, error) {
			return models.User{UserID: id, Email: "alice@example.com", Verified: true}, nil
		},
	}
}

func TestAuthMiddleware_Success(t *testing.T) {
	h := newHandlerWithAuth(t, validAuthStack(42))
	guard, seenUserID, reached := guardedHandler(h)

	req := httptest.NewRequest(http.MethodGet, "/entries", nil)
	req.Header.Set("Authorization", "Bearer some.jwt.token")
	rec := httptest.NewRecorder()

	guard.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, *reached)
	assert.Equal(t, int64(42), *seenUserID)
}

// TestAuthMiddleware_RealParsedToken drives the guard with a token minted
// and parsed by the real JWT helpers instead of a hand-built stub, so the
// middleware's user-id extraction is exercised against genuine parser
// output.
func TestAuthMiddleware_RealParsedToken(t *testing.T) {
	const (
		signKey = "guard-test-sign-key"
		issuer  = "go-fin-keeper"
	)

	minted, err := utils.GenerateJWTToken(issuer, 42, time.Hour, signKey)
	require.NoError(t, err)

	svc := &mockAuthService{
		parseTokenFn: func(_ context.Context, tokenString string) (models.Token, error) {
			return utils.ValidateAndParseJWTToken(tokenString, signKey, issuer)
		},
		identityFn: func(_ context.Context, id int64) (models.User, error) {
			return models.User{UserID: id, Email: "alice@example.com", Verified: true}, nil
		},
	}

	h := newHandlerWithAuth(t, svc)
	guard, seenUserID, reached := guardedHandler(h)

	req := httptest.NewRequest(http.MethodGet, "/entries", nil)
	req.Header.Set("Authorization", "Bearer "+minted.String())
	rec := httptest.NewRecorder()

	guard.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, *reached)
	assert.Equal(t, int64(42), *seenUserID)
}

// TestAuthMiddleware_UniformRejections verifies that everyway of failing
// the guard yields the same 401 status and generic body.
func TestAuthMiddleware_UniformRejections(t *testing.T) {
	cases := []struct {
		name       string
		authHeader string
		svc        *mockAuthService
	}{
		{
			name:       "missing header",
			authHeader: "",
			svc:        &mockAuthService{},
		},
		{
			name:       "header without token",
			authHeader: "Bearer",
			svc:        &mockAuthService{},
		},
		{
			name:       "empty token value",
			authHeader: "Bearer ",
			svc:        &mockAuthService{},
		},
		{
			name:       "invalid token",
			authHeader: "Bearer bad.jwt.token",
			svc: &mockAuthService{
				parseTokenFn: func(_ context.Context, _ string) (models.Token, error) {
					return models.Token{}, service.ErrTokenIsExpiredOrInvalid
				},
			},
		},
		{
			name:       "identity vanished",
			authHeader: "Bearer some.jwt.token",
			svc: &mockAuthService{
				parseTokenFn: func(_ context.Context, _ string) (models.Token, error) {
					return stubTokenWithSubject(7), nil
				},
				identityFn: func(_ context.Context, _ int64) (models.User, error) {
					return models.User{}, store.ErrNoUserWasFound
				},
			},
		},
		{
			name:       "unverified account",
			authHeader: "Bearer some.jwt.token",
			svc: &mockAuthService{
				parseTokenFn: func(_ context.Context, _ string) (models.Token, error) {
					return stubTokenWithSubject(7), nil
				},
				identityFn: func(_ context.Context, id int64) (models.User, error) {
					return models.User{UserID: id, Verified: false}, nil
				},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHandlerWithAuth(t, tc.svc)
			guard, _, reached := guardedHandler(h)

			req := httptest.NewRequest(http.MethodGet, "/entries", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			rec := httptest.NewRecorder()

			guard.ServeHTTP(rec, req)

			require.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.False(t, *reached)
			assert.Equal(t, unauthorizedMessage, decodeEnvelope(t, rec).Message)
		})
	}
}

// ─────────────────────────────────────────────
// getTokenFromAuthHeader
// ─────────────────────────────────────────────

func TestGetTokenFromAuthHeader(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		wantToken string
		wantErr   error
	}{
		{"well-formed bearer", "Bearer abc.def.ghi", "abc.def.ghi", nil},
		{"no space", "Bearerabc", "", ErrInvalidAuthorizationHeader},
		{"empty token part", "Bearer ", "", ErrEmptyToken},
		{"scheme only", "Bearer", "", ErrInvalidAuthorizationHeader},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			token, err := getTokenFromAuthHeader(tc.header)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantToken, token)
		})
	}
}
