package api

import (
	"net/http"
	"strings"

	apperrors "github.com/eatglobe/globe-middleware/pkg/app/errors"
	apphttp "github.com/eatglobe/globe-middleware/pkg/app/http"
	"github.com/eatglobe/globe-middleware/pkg/auth"
	"github.com/eatglobe/globe-middleware/pkg/wallet"
)

// requireSession enforces a bearer token on the write path and checks it
// still matches the active session. A token survives an account switch or a
// disconnect; the session does not, so the comparison catches stale tokens.
func (h *HTTP) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			apphttp.DefaultErrorHandler(w, apperrors.UnAuthorizedError(nil, "missing bearer token"))
			return
		}

		claims, err := h.tokens.Validate(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			apphttp.DefaultErrorHandler(w, apperrors.UnAuthorizedError(err, "invalid session token"))
			return
		}

		sess, ok := h.sessions.Active()
		if !ok {
			apphttp.DefaultErrorHandler(w, apperrors.UnAuthorizedError(wallet.ErrNoActiveSession, "no active wallet session"))
			return
		}
		if sess.Address != claims.Address || sess.Chain.String() != claims.Chain {
			apphttp.DefaultErrorHandler(w, apperrors.UnAuthorizedError(nil, "token does not match the active session"))
			return
		}

		ctx := auth.WithWallet(r.Context(), sess.Chain, sess.Address)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
