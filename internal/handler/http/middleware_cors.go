package http

import "net/http"

// withCORS allows browser clients served from the single configured origin
// to call the API. When no origin is configured the middleware is inert and
// non-browser clients are unaffected either way.
func (h *Handler) withCORS(next http.Handler) http.Handler {
	allowedOrigin := h.serverConfig.AllowedOrigin

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if allowedOrigin != "" && r.Header.Get("Origin") == allowedOrigin {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}
