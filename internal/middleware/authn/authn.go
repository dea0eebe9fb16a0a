// Package authn resolves the bearer session token on protected routes and
// attaches the user identity to the request context.
package authn

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	resp "awaaznow/internal/lib/api/response"
	jwtlib "awaaznow/internal/lib/jwt"
	sl "awaaznow/internal/lib/logger"
	"awaaznow/internal/models"
	"awaaznow/internal/storage"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type UserProvider interface {
	UserByID(ctx context.Context, id int64) (models.User, error)
}

type contextKey struct{}

func New(log *slog.Logger, users UserProvider, tokenSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middleware.authn"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				unauthorized(w, r, "Not authorized, no token")
				return
			}

			userID, err := jwtlib.ParseToken(strings.TrimPrefix(header, "Bearer "), tokenSecret)
			if err != nil {
				if errors.Is(err, jwtlib.ErrTokenExpired) {
					unauthorized(w, r, "Not authorized, token has expired")
					return
				}

				unauthorized(w, r, "Not authorized, invalid token")
				return
			}

			user, err := users.UserByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, storage.ErrUserNotFound) {
					// valid token for an account that no longer exists
					log.Warn("token resolved to missing user", slog.Int64("uid", userID))
					unauthorized(w, r, "Not authorized, user not found")
					return
				}

				log.Error("failed to load user", sl.Err(err))

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, resp.Error("Internal error"))

				return
			}

			// only the identity travels past this point
			user.PassHash = nil

			ctx := context.WithValue(r.Context(), contextKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the identity attached by New. The second value
// is false on routes that did not pass through the middleware.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(contextKey{}).(models.User)
	return user, ok
}

func unauthorized(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, resp.Error(msg))
}
