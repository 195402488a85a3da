package router

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

const serviceKeyHeader = "X-Internal-Key"

// requireServiceKey guards endpoints reserved for trusted schedulers and
// internal jobs. When expected is empty every request is rejected.
func requireServiceKey(expected string) func(http.Handler) http.Handler {
	expected = strings.TrimSpace(expected)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(serviceKeyHeader))
			if expected == "" || key == "" ||
				subtle.ConstantTimeCompare([]byte(key), []byte(expected)) != 1 {
				http.Error(w, "invalid service key", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
