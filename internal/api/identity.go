package api

import (
	"context"
	"net/http"
	"strings"

	"slotbook/internal/models"
)

type contextKey int

const (
	actorKey contextKey = iota
	tokenErrorKey
)

// identityMiddleware resolves an optional bearer token into an Actor.
// Requests without a token proceed as Guest; a failing token is also
// downgraded to Guest, with the failure kept in the context so
// member-only handlers can report the precise reason.
func (s *HTTPServer) identityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			next.ServeHTTP(w, r.WithContext(withActor(r.Context(), models.Guest)))
			return
		}

		actor, err := s.identity.ResolveBearer(r.Context(), raw)
		ctx := withActor(r.Context(), actor)
		if err != nil {
			ctx = context.WithValue(ctx, tokenErrorKey, err)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func withActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

func actorFromContext(ctx context.Context) models.Actor {
	if actor, ok := ctx.Value(actorKey).(models.Actor); ok {
		return actor
	}
	return models.Guest
}

func tokenErrorFromContext(ctx context.Context) error {
	if err, ok := ctx.Value(tokenErrorKey).(error); ok {
		return err
	}
	return nil
}

// requireMember returns the member actor, writing the precise token
// failure when the caller presented a broken token.
func (s *HTTPServer) requireMember(w http.ResponseWriter, r *http.Request) (models.Actor, bool) {
	actor := actorFromContext(r.Context())
	if actor.IsMember() {
		return actor, true
	}
	if err := tokenErrorFromContext(r.Context()); err != nil {
		s.writeServiceError(w, err)
		return models.Guest, false
	}
	writeError(w, http.StatusUnauthorized, "member identity required")
	return models.Guest, false
}
