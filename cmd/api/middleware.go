package main

import (
	"context"
	"net/http"
	"strings"

	"github.com/nairv/dailycollect/pkg/auth"
)

type contextKey string

const sessionKey contextKey = "session"

// requireSession resolves the bearer token to a live session and stores
// it in the request context.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		parts := strings.Split(header, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			respondError(w, http.StatusUnauthorized, "authorization header missing or invalid")
			return
		}

		session, ok := s.sessions.Get(parts[1])
		if !ok {
			respondError(w, http.StatusUnauthorized, "session expired or unknown")
			return
		}

		ctx := context.WithValue(r.Context(), sessionKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(r *http.Request) *auth.Session {
	session, _ := r.Context().Value(sessionKey).(*auth.Session)
	return session
}
