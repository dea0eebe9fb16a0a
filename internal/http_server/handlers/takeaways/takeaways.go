package takeaways

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	resp "awaaznow/internal/lib/api/response"
	sl "awaaznow/internal/lib/logger"
	"awaaznow/internal/summarizer"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Content string `json:"content" validate:"required"`
}

type Response struct {
	resp.Response
	Takeaways string `json:"takeaways"`
}

type TakeawaysGenerator interface {
	KeyTakeaways(ctx context.Context, content string) (string, error)
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	svc TakeawaysGenerator,
	env string,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.takeaways.New"

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

		takeaways, err := svc.KeyTakeaways(r.Context(), req.Content)
		if err != nil {
			switch {
			case errors.Is(err, summarizer.ErrContentTooShort):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("Content too short or missing for key takeaways generation."))
			case errors.Is(err, summarizer.ErrSummarizationFailed):
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, resp.Error("AI key takeaways generation failed to return content."))
			default:
				log.Error("failed to generate key takeaways", sl.Err(err))

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, resp.Internal(env, err))
			}

			return
		}

		render.JSON(w, r, Response{
			Response:  resp.OK(),
			Takeaways: takeaways,
		})
	}
}
