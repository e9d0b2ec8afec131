package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// ClientCookie identifies a browser across page loads. Theme preferences are
// stored per client.
const ClientCookie = "pf_client"

const clientCookieMaxAge = 365 * 24 * 60 * 60

type clientKey struct{}

// ClientID returns the client ID set by the identity middleware.
func ClientID(ctx context.Context) string {
	id, _ := ctx.Value(clientKey{}).(string)
	return id
}

// clientIdentity reads the client cookie, issuing a new ID when it is missing
// or malformed.
func clientIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(ClientCookie); err == nil {
			if _, err := uuid.Parse(c.Value); err == nil {
				id = c.Value
			}
		}
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     ClientCookie,
				Value:    id,
				Path:     "/",
				MaxAge:   clientCookieMaxAge,
				HttpOnly: true,
				Secure:   r.TLS != nil,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), clientKey{}, id)))
	})
}
