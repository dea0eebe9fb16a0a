// Package summaries serves the caller's saved-summary collection.
package summaries

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	resp "awaaznow/internal/lib/api/response"
	sl "awaaznow/internal/lib/logger"
	"awaaznow/internal/middleware/authn"
	"awaaznow/internal/models"
	"awaaznow/internal/summarizer"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type ListResponse struct {
	resp.Response
	Articles []models.SavedArticle `json:"articles"`
}

type DeleteResponse struct {
	resp.Response
	Message string `json:"message"`
}

type ArticleProvider interface {
	SavedArticles(ctx context.Context, userID int64) ([]models.SavedArticle, error)
}

type ArticleDeleter interface {
	DeleteArticle(ctx context.Context, userID, articleID int64) error
}

func List(
	log *slog.Logger,
	provider ArticleProvider,
	env string,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.summaries.List"

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

		articles, err := provider.SavedArticles(r.Context(), user.ID)
		if err != nil {
			log.Error("failed to list saved articles", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Internal(env, err))

			return
		}

		render.JSON(w, r, ListResponse{
			Response: resp.OK(),
			Articles: articles,
		})
	}
}

func Delete(
	log *slog.Logger,
	deleter ArticleDeleter,
	env string,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.summaries.Delete"

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

		articleID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Invalid article id"))

			return
		}

		if err := deleter.DeleteArticle(r.Context(), user.ID, articleID); err != nil {
			// one 404 for "doesn't exist" and "not yours"
			if errors.Is(err, summarizer.ErrArticleNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("Article not found or you are not authorized to delete it."))

				return
			}

			log.Error("failed to delete article", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Internal(env, err))

			return
		}

		render.JSON(w, r, DeleteResponse{
			Response: resp.OK(),
			Message:  "Article deleted successfully.",
		})
	}
}
