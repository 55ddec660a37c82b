package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	if h.serverConfig.RequestTimeout > 0 {
		router.Use(middleware.Timeout(h.serverConfig.RequestTimeout))
	}
	router.Use(h.withTraceID)
	router.Use(h.withLogging)
	router.Use(h.withCORS)
	router.Use(h.withRateLimit)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Post("/auth/register", h.register)
		r.Post("/auth/verify", h.verify)
		r.Post("/auth/resend-otp", h.resendOTP)
		r.Post("/auth/login", h.login)
		r.Post("/auth/forgot-password", h.forgotPassword)
		r.Post("/auth/reset-password", h.resetPassword)
	})

	// routes behind the bearer-token guard
	router.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Get("/auth/me", h.me)

		r.Get("/entries", h.listEntries)
		r.Post("/entries", h.createEntry)
		r.Get("/entries/summary", h.entriesSummary)
		r.Put("/entries/{id}", h.updateEntry)
		r.Delete("/entries/{id}", h.deleteEntry)
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
