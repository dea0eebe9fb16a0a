package summarize

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	resp "awaaznow/internal/lib/api/response"
	sl "awaaznow/internal/lib/logger"
	"awaaznow/internal/middleware/authn"
	"awaaznow/internal/models"
	"awaaznow/internal/summarizer"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	UserID     int64  `json:"user_id"`
	Title      string `json:"title" validate:"required"`
	URL        string `json:"url" validate:"required,url"`
	SourceName string `json:"source_name"`
	ImageURL   string `json:"image_url"`
	Content    string `json:"content" validate:"required"`
}

type Response struct {
	resp.Response
	Message      string               `json:"message"`
	Summary      string               `json:"summary"`
	ArticleSaved bool                 `json:"articleSaved"`
	SavedArticle *models.SavedArticle `json:"saved_article,omitempty"`
}

type ArticleSummarizer interface {
	SummarizeAndSave(ctx context.Context, callerID int64, req summarizer.SummarizeRequest) (summarizer.SummarizeResult, error)
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	svc ArticleSummarizer,
	env string,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.summarize.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user, ok := authn.UserFromContext(r.Context())
		if !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, resp.Error("Not authorized"))

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

		result, err := svc.SummarizeAndSave(r.Context(), user.ID, summarizer.SummarizeRequest{
			UserID:     req.UserID,
			Title:      req.Title,
			URL:        req.URL,
			SourceName: req.SourceName,
			ImageURL:   req.ImageURL,
			Content:    req.Content,
		})
		if err != nil {
			switch {
			case errors.Is(err, summarizer.ErrUserMismatch):
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.Error("User not authorized to save this article."))
			case errors.Is(err, summarizer.ErrContentTooShort):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("Article content too short for summarization."))
			case errors.Is(err, summarizer.ErrAlreadySaved):
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, resp.Error("Article was just saved by a concurrent request."))
			case errors.Is(err, summarizer.ErrSummarizationFailed):
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, resp.Error("AI summarization failed to return content."))
			default:
				log.Error("failed to summarize article", sl.Err(err))

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, resp.Internal(env, err))
			}

			return
		}

		if !result.ArticleSaved {
			render.JSON(w, r, Response{
				Response:     resp.OK(),
				Message:      "Article already summarized and saved by this user.",
				Summary:      result.Summary,
				ArticleSaved: false,
			})

			return
		}

		article := result.Article

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, Response{
			Response:     resp.OK(),
			Message:      "Article summarized and saved successfully!",
			Summary:      result.Summary,
			ArticleSaved: true,
			SavedArticle: &article,
		})
	}
}
