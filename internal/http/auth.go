package httpapi

import (
	"context"
	"net/http"
)

type contextKey string

const clientIDKey contextKey = "clientId"

const devClientID = "dev-client"

// identify resolves which client a request belongs to. Each client gets its
// own cooking session. A reverse proxy doing auth sets one of the headers.
func (s *Server) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := r.Header.Get("X-Client-ID")

		// Also check common proxy auth headers
		if clientID == "" {
			clientID = r.Header.Get("X-Auth-User")
		}
		if clientID == "" {
			clientID = r.Header.Get("X-Forwarded-User")
		}

		if clientID == "" && s.allowAnonymous {
			clientID = devClientID
			s.logger.Debug("no client header, using dev client", "path", r.URL.Path)
		}

		if clientID == "" {
			respondError(w, "missing client identity", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), clientIDKey, clientID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func clientID(r *http.Request) string {
	id, ok := r.Context().Value(clientIDKey).(string)
	if !ok {
		return ""
	}
	return id
}
