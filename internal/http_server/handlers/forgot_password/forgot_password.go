package forgotPassword

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"awaaznow/internal/auth"
	resp "awaaznow/internal/lib/api/response"
	sl "awaaznow/internal/lib/logger"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

// genericMessage is returned whether or not the email is registered, so
// the endpoint cannot be used to probe for accounts.
const genericMessage = "If a user with that email exists, a password reset link has been sent."

type Request struct {
	Email string `json:"email" validate:"required,email"`
}

type Response struct {
	resp.Response
	Message string `json:"message"`
}

type PasswordResetRequester interface {
	ForgotPassword(ctx context.Context, email string) error
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	requester PasswordResetRequester,
	env string,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.forgot_password.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

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

		if err := requester.ForgotPassword(r.Context(), req.Email); err != nil {
			if errors.Is(err, auth.ErrEmailSendFailed) {
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, resp.Error("Email could not be sent. Please try again later."))

				return
			}

			log.Error("failed to process password reset request", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Internal(env, err))

			return
		}

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Message:  genericMessage,
		})
	}
}
