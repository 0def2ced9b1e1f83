package devserver

import (
	"context"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/abelbrown/meetapp/internal/logging"
	"github.com/abelbrown/meetapp/internal/meetup"
)

func withUser(ctx context.Context, user meetup.UserID) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

func userFrom(ctx context.Context) meetup.UserID {
	user, _ := ctx.Value(userKey{}).(meetup.UserID)
	return user
}

// requestLogger writes one line per request to the process log.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logging.Info("devserver request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"dur", time.Since(start),
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}
