package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	applog "github.com/tuanvumaihuynh/vending-machine/internal/log"
	"github.com/tuanvumaihuynh/vending-machine/internal/session"
)

// Session resolves the session cookie and attaches the session to the request
// context. Requests without a valid session pass through anonymously.
func Session(store session.Store, cookieName string, onError func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := store.Get(r.Context(), cookie.Value)
			if err != nil {
				if errors.Is(err, session.ErrNotFound) {
					next.ServeHTTP(w, r)
					return
				}
				onError(w, r, err)
				return
			}

			ctx := session.NewContext(r.Context(), session.Session{Token: cookie.Value, UserID: userID})
			ctx = applog.ContextWithAttrs(ctx, slog.String("user_id", userID.String()))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
