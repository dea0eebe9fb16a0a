package news

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"awaaznow/internal/gateway/newsapi"
	resp "awaaznow/internal/lib/api/response"
	sl "awaaznow/internal/lib/logger"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Response struct {
	resp.Response
	Articles []newsapi.Article `json:"articles"`
}

type HeadlinesProvider interface {
	TopHeadlines(ctx context.Context, query, category string) ([]newsapi.Article, error)
}

func New(
	log *slog.Logger,
	provider HeadlinesProvider,
	env string,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.news.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		query := r.URL.Query().Get("q")
		category := r.URL.Query().Get("category")

		articles, err := provider.TopHeadlines(r.Context(), query, category)
		if err != nil {
			switch {
			case errors.Is(err, newsapi.ErrUnauthorized):
				log.Error("news provider rejected the configured key", sl.Err(err))

				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.Error("News provider API key is invalid or unauthorized."))
			case errors.Is(err, newsapi.ErrRateLimited):
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, resp.Error("News provider rate limit exceeded. Please try again later."))
			case errors.Is(err, newsapi.ErrUnavailable):
				log.Error("news provider unreachable", sl.Err(err))

				render.Status(r, http.StatusServiceUnavailable)
				render.JSON(w, r, resp.Error("Network error when trying to reach the news provider."))
			default:
				log.Error("news provider error", sl.Err(err))

				render.Status(r, http.StatusBadGateway)
				render.JSON(w, r, resp.Internal(env, err))
			}

			return
		}

		log.Info("fetched headlines", slog.Int("count", len(articles)))

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Articles: articles,
		})
	}
}
