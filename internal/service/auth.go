package service

import (
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// basicAuth gates requests behind HTTP Basic Auth. The password is
// checked against a bcrypt hash; the username is not interpreted.
func basicAuth(hash string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, pass, ok := r.BasicAuth()
			if !ok || bcrypt.CompareHashAndPassword([]byte(hash), []byte(pass)) != nil {
				logger.Warn("service: unauthorized", "path", r.URL.Path, "remote", r.RemoteAddr)
				w.Header().Set("WWW-Authenticate", `Basic realm="semdom"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
