package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const identityCookie = "anonId"

type identityKey struct{}

// Identity issues the anonymous id cookie on first contact and puts the
// id on the request context. The id is an opaque label, not a
// credential: whoever presents it is its holder.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(identityCookie); err == nil {
			id = c.Value
		}
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     identityCookie,
				Value:    id,
				Path:     "/",
				MaxAge:   24 * 60 * 60,
				HttpOnly: true,
			})
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey{}, id)))
	})
}

// IdentityFromContext returns the anonymous id bound to the request, or
// "" outside the Identity middleware.
func IdentityFromContext(ctx context.Context) string {
	id, _ := ctx.Value(identityKey{}).(string)
	return id
}
