package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"

	"agroadmin/session"
	"agroadmin/utils"

	"github.com/julienschmidt/httprouter"
)

// Resolver turns an Authorization header into a session.
type Resolver interface {
	Resolve(ctx context.Context, header string) (*session.Session, error)
}

func unauthorized(w http.ResponseWriter, msg string) {
	utils.RespondWithError(w, http.StatusUnauthorized, "auth", msg, "login")
}

// Authenticate requires a valid agroadmin token and attaches its session to the request.
func Authenticate(sessions Resolver, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		tokenString := r.Header.Get("Authorization")
		if tokenString == "" {
			unauthorized(w, "Missing token")
			return
		}
		if len(tokenString) < 8 || tokenString[:7] != "Bearer " {
			unauthorized(w, "Invalid token format")
			return
		}

		s, err := sessions.Resolve(r.Context(), tokenString)
		if err != nil {
			if !errors.Is(err, session.ErrNotFound) {
				log.Printf("[auth] resolve session: %v", err)
			}
			unauthorized(w, "Your session has expired. Please log in again.")
			return
		}

		next(w, r.WithContext(session.WithContext(r.Context(), s)), ps)
	}
}

// RequireAdmin rejects authenticated sessions whose login was not flagged as admin.
func RequireAdmin(sessions Resolver, next httprouter.Handle) httprouter.Handle {
	return Authenticate(sessions, func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if s := session.FromContext(r.Context()); s == nil || !s.IsAdmin {
			utils.RespondWithError(w, http.StatusForbidden, "auth", "You don't have permission to access this page.", "none")
			return
		}
		next(w, r, ps)
	})
}
