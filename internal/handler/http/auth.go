package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mlevkov/go-fin-keeper/internal/logger"
	"github.com/mlevkov/go-fin-keeper/internal/service"
	"github.com/mlevkov/go-fin-keeper/internal/store"
	"github.com/mlevkov/go-fin-keeper/internal/utils"
	"github.com/mlevkov/go-fin-keeper/models"
)

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		utils.WriteFailure(w, http.StatusBadRequest, "Invalid JSON was passed")
		return
	}

	registeredUser, err := h.services.AuthService.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		log.Err(err).Msg("user registration failed")
		utils.WriteFailure(w, statusFromError(err), publicMessage(err))
		return
	}

	log.Info().Int64("id", registeredUser.UserID).Msg("user registered, verification code sent")

	// no session token yet: the account stays locked until the email is verified
	utils.WriteSuccess(w, http.StatusCreated, "registered, verification code sent", registeredUser)
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		utils.WriteFailure(w, http.StatusBadRequest, "Invalid JSON was passed")
		return
	}

	verifiedUser, err := h.services.AuthService.VerifyEmail(ctx, req.Email, req.Code)
	if err != nil {
		log.Err(err).Msg("email verification failed")
		utils.WriteFailure(w, statusFromError(err), publicMessage(err))
		return
	}

	token, err := h.services.AuthService.CreateToken(ctx, verifiedUser)
	if err != nil {
		log.Err(err).Msg("creation of token failed")
		utils.WriteFailure(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	log.Info().Int64("id", verifiedUser.UserID).Msg("user verified email")

	utils.WriteSuccess(w, http.StatusOK, "email verified", models.SessionResponse{
		Token: token.String(),
		User:  verifiedUser,
	})
}

func (h *Handler) resendOTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.ResendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		utils.WriteFailure(w, http.StatusBadRequest, "Invalid JSON was passed")
		return
	}

	if err := h.services.AuthService.ResendOTP(ctx, req.Email); err != nil {
		log.Err(err).Msg("resending verification code failed")
		utils.WriteFailure(w, statusFromError(err), publicMessage(err))
		return
	}

	utils.WriteSuccess(w, http.StatusOK, "verification code sent", nil)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		utils.WriteFailure(w, http.StatusBadRequest, "Invalid JSON was passed")
		return
	}

	foundUser, err := h.services.AuthService.Login(ctx, req.Email, req.Password)
	if err != nil {
		log.Err(err).Msg("user login failed")
		switch {
		case errors.Is(err, store.ErrNoUserWasFound) || errors.Is(err, service.ErrWrongPassword):
			// one message for bad email and bad password alike
			utils.WriteFailure(w, http.StatusUnauthorized, "invalid email or password")
		case errors.Is(err, service.ErrUserNotVerified):
			utils.WriteFailure(w, http.StatusUnauthorized, "email is not verified")
		default:
			utils.WriteFailure(w, statusFromError(err), publicMessage(err))
		}
		return
	}

	token, err := h.services.AuthService.CreateToken(ctx, foundUser)
	if err != nil {
		log.Err(err).Msg("creation of token failed")
		utils.WriteFailure(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	log.Debug().Int64("id", foundUser.UserID).Msg("user successfully logged in")

	utils.WriteSuccess(w, http.StatusOK, "logged in", models.SessionResponse{
		Token: token.String(),
		User:  foundUser,
	})
}

func (h *Handler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		utils.WriteFailure(w, http.StatusBadRequest, "Invalid JSON was passed")
		return
	}

	if err := h.services.AuthService.RequestPasswordReset(ctx, req.Email); err != nil {
		log.Err(err).Msg("password reset request failed")
		utils.WriteFailure(w, statusFromError(err), publicMessage(err))
		return
	}

	utils.WriteSuccess(w, http.StatusOK, "password reset code sent", nil)
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		utils.WriteFailure(w, http.StatusBadRequest, "Invalid JSON was passed")
		return
	}

	if err := h.services.AuthService.ResetPassword(ctx, req.Email, req.Code, req.NewPassword); err != nil {
		log.Err(err).Msg("password reset failed")
		utils.WriteFailure(w, statusFromError(err), publicMessage(err))
		return
	}

	utils.WriteSuccess(w, http.StatusOK, "password updated", nil)
}

// me returns the identity attached to the request by the auth middleware.
func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		log.Error().Msg("no user id in context after auth middleware")
		utils.WriteFailure(w, http.StatusUnauthorized, unauthorizedMessage)
		return
	}

	user, err := h.services.AuthService.Identity(ctx, userID)
	if err != nil {
		log.Err(err).Int64("id", userID).Msg("identity lookup failed")
		utils.WriteFailure(w, http.StatusUnauthorized, unauthorizedMessage)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, "ok", user)
}
