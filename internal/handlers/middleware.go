package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

type contextKey string

const subjectKey contextKey = "subject"

var errUnauthorized = errors.New("Unauthorized")

// requireAuth verifies the auth cookie and stores the subject user ID in
// the request context. The check is stateless: it validates signature and
// expiry only and never touches the store.
func (a *API) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(authCookieName)
		if err != nil || cookie.Value == "" {
			respondError(w, http.StatusUnauthorized, errUnauthorized)
			return
		}

		userID, err := a.tokens.Verify(cookie.Value)
		if err != nil {
			respondError(w, http.StatusUnauthorized, errUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), subjectKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// subjectFrom recovers the authenticated user ID placed by requireAuth.
func subjectFrom(ctx context.Context) (uint, bool) {
	userID, ok := ctx.Value(subjectKey).(uint)
	return userID, ok
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// requestLogger emits one structured log line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(recorder, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
