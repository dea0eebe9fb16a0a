package resetPassword

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"awaaznow/internal/auth"
	resp "awaaznow/internal/lib/api/response"
	sl "awaaznow/internal/lib/logger"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Password string `json:"password" validate:"required,min=6"`
}

type Response struct {
	resp.Response
	Message string `json:"message"`
}

type PasswordReseter interface {
	ResetPassword(ctx context.Context, rawToken, newPassword string) error
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	reseter PasswordReseter,
	env string,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.reset_password.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		token := chi.URLParam(r, "token")
		if token == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Reset token is missing"))

			return
		}

		var req Request

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("Failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Failed to decode request"))

			return
		}

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("Invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		if err := reseter.ResetPassword(r.Context(), token, req.Password); err != nil {
			if errors.Is(err, auth.ErrInvalidResetToken) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("Invalid or expired password reset token. Please request a new link."))

				return
			}

			log.Error("failed to reset password", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Internal(env, err))

			return
		}

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Message:  "Password has been reset successfully.",
		})
	}
}
