package handler

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// requireAdmin guards the archive endpoints. The caller presents the
// admin password as a bearer token; it is checked against the bcrypt
// hash computed at startup. With no admin password configured, or no
// archive store, the endpoints are unavailable.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.adminHash == nil || h.store == nil {
			http.Error(w, "archive disabled", http.StatusNotFound)
			return
		}

		token, ok := bearerToken(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if err := bcrypt.CompareHashAndPassword(h.adminHash, []byte(token)); err != nil {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(auth, prefix))
	return token, token != ""
}
