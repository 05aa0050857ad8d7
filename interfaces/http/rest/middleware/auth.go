package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"socialgraph/pkg/common"
	apperrors "socialgraph/pkg/errors"
)

// AdminKey guards admin routes with a static bearer key. Clients send
// "Authorization: Bearer <key>"; a mismatch gets 401 with a
// WWW-Authenticate challenge.
func AdminKey(key string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				unauthorized(w)
				return
			}
			if subtle.ConstantTimeCompare([]byte(token), []byte(key)) != 1 {
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	common.RespondError(w, http.StatusUnauthorized,
		string(apperrors.ErrorTypeUnauthorized), "Invalid authentication credentials")
}
