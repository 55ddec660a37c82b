package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/mlevkov/go-fin-keeper/internal/logger"
	"github.com/mlevkov/go-fin-keeper/internal/utils"
)

// auth is an HTTP middleware that enforces JWT-based authentication.
//
// It inspects the incoming "Authorization" header, extracts the bearer token,
// validates it via [service.AuthService.ParseToken], resolves the account
// behind the token, and — on success — stores the authenticated user's ID in
// the request context under [utils.UserIDCtxKey] before delegating to the
// next handler.
//
// The middleware rejects requests with HTTP 401 Unauthorized in the
// following cases:
//   - The "Authorization" header is absent or cannot be parsed as a bearer
//     token ([ErrEmptyAuthorizationHeader], [ErrInvalidAuthorizationHeader],
//     [ErrEmptyToken]).
//   - The token is expired, malformed, or carries the wrong issuer.
//   - The account behind the token no longer exists.
//   - The account never completed email verification.
//
// Every rejection uses the same status and body regardless of the cause, so
// a probing caller learns nothing about which check failed. The real cause
// is logged using the context-scoped logger obtained via [logger.FromRequest].
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			log.Err(ErrEmptyAuthorizationHeader).Send()
			utils.WriteFailure(w, http.StatusUnauthorized, unauthorizedMessage)
			return
		}

		tokenString, err := getTokenFromAuthHeader(authHeader)
		if err != nil {
			log.Err(err).Send()
			utils.WriteFailure(w, http.StatusUnauthorized, unauthorizedMessage)
			return
		}

		ctx := r.Context()
		token, err := h.services.AuthService.ParseToken(ctx, tokenString)
		if err != nil {
			log.Err(err).Msg("error occurred during parsing token")
			utils.WriteFailure(w, http.StatusUnauthorized, unauthorizedMessage)
			return
		}

		// ParseToken caches the numeric subject on the token model, so no
		// second claims lookup is needed here.
		userID := token.UserID

		user, err := h.services.AuthService.Identity(ctx, userID)
		if err != nil {
			log.Err(err).Int64("id", userID).Msg("identity behind token not found")
			utils.WriteFailure(w, http.StatusUnauthorized, unauthorizedMessage)
			return
		}
		if !user.Verified {
			log.Warn().Int64("id", userID).Msg("unverified account presented a valid token")
			utils.WriteFailure(w, http.StatusUnauthorized, unauthorizedMessage)
			return
		}

		// Store the authenticated user's ID in the context so that downstream
		// handlers can retrieve it without re-parsing the token.
		ctx = context.WithValue(ctx, utils.UserIDCtxKey, userID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// getTokenFromAuthHeader extracts the bearer token string from a raw
// "Authorization" HTTP header value.
//
// The header is expected to follow the standard format:
//
//	Authorization: <scheme> <token>
//
// It returns the following sentinel errors:
//   - [ErrInvalidAuthorizationHeader] — if the header contains fewer than
//     two space-separated parts (i.e. the token is missing entirely).
//   - [ErrEmptyToken] — if the second part exists but is an empty string.
func getTokenFromAuthHeader(authHeader string) (string, error) {
	parts := strings.Split(authHeader, " ")
	if len(parts) < 2 {
		return "", ErrInvalidAuthorizationHeader
	}

	tokenString := parts[1]
	if tokenString == "" {
		return "", ErrEmptyToken
	}

	return tokenString, nil
}
