package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sl "awaaznow/internal/lib/logger"
	"awaaznow/internal/models"
	"awaaznow/internal/storage"
)

var (
	ErrContentTooShort     = errors.New("content too short")
	ErrSummarizationFailed = errors.New("summarization failed to return content")
	ErrAlreadySaved        = errors.New("article already saved")
	ErrArticleNotFound     = errors.New("article not found or not owned by caller")
	ErrUserMismatch        = errors.New("authenticated user does not match requested user")
)

const (
	minSummarizeContentLen = 100
	minTakeawaysContentLen = 50
)

const (
	summarizePrompt = "Please summarize the following news article content concisely, highlighting the main points. Keep the summary to around 3-5 sentences.\n\nArticle Content:\n%q"
	takeawaysPrompt = "From the following article content, extract 3-5 key takeaways or main points. Present them as a numbered list.\n\nArticle Content:\n%q"
)

type Summarizer struct {
	log         *slog.Logger
	artSaver    ArticleSaver
	artProvider ArticleProvider
	generator   Generator
}

type ArticleSaver interface {
	SaveArticle(ctx context.Context, article models.SavedArticle) (int64, error)
	DeleteArticle(ctx context.Context, id, userID int64) error
}

type ArticleProvider interface {
	ArticleByUserAndURL(ctx context.Context, userID int64, url string) (models.SavedArticle, error)
	ArticlesByUser(ctx context.Context, userID int64) ([]models.SavedArticle, error)
}

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

func New(
	log *slog.Logger,
	articleSaver ArticleSaver,
	articleProvider ArticleProvider,
	generator Generator,
) *Summarizer {
	return &Summarizer{
		log:         log,
		artSaver:    articleSaver,
		artProvider: articleProvider,
		generator:   generator,
	}
}

type SummarizeRequest struct {
	UserID     int64
	Title      string
	URL        string
	SourceName string
	ImageURL   string
	Content    string
}

type SummarizeResult struct {
	Summary      string
	ArticleSaved bool
	Article      models.SavedArticle
}

// SummarizeAndSave is idempotent per (user, url): a repeat request returns
// the stored summary without another provider call or a duplicate row.
// A concurrent duplicate loses on the store's uniqueness constraint and
// surfaces ErrAlreadySaved.
func (s *Summarizer) SummarizeAndSave(ctx context.Context, callerID int64, req SummarizeRequest) (SummarizeResult, error) {
	const op = "summarizer.SummarizeAndSave"

	log := s.log.With(slog.String("op", op), slog.Int64("uid", callerID))

	// The identity already comes from the verified token; the claimed user
	// in the body must still agree with it.
	if req.UserID != 0 && req.UserID != callerID {
		log.Warn("claimed user does not match token identity", slog.Int64("claimed", req.UserID))
		return SummarizeResult{}, ErrUserMismatch
	}

	if len(req.Content) < minSummarizeContentLen {
		return SummarizeResult{}, ErrContentTooShort
	}

	existing, err := s.artProvider.ArticleByUserAndURL(ctx, callerID, req.URL)
	if err == nil {
		log.Info("article already saved, returning cached summary", slog.Int64("article_id", existing.ID))

		return SummarizeResult{
			Summary:      existing.SummarizedContent,
			ArticleSaved: false,
			Article:      existing,
		}, nil
	}
	if !errors.Is(err, storage.ErrArticleNotFound) {
		log.Error("failed to check for existing article", sl.Err(err))
		return SummarizeResult{}, fmt.Errorf("%s: %w", op, err)
	}

	summary, err := s.generator.Generate(ctx, fmt.Sprintf(summarizePrompt, req.Content))
	if err != nil {
		log.Error("summarization call failed", sl.Err(err))
		return SummarizeResult{}, fmt.Errorf("%s: %w", op, err)
	}
	if summary == "" {
		log.Error("summarization returned empty content")
		return SummarizeResult{}, ErrSummarizationFailed
	}

	article := models.SavedArticle{
		UserID:            callerID,
		Title:             req.Title,
		URL:               req.URL,
		SourceName:        req.SourceName,
		ImageURL:          req.ImageURL,
		OriginalContent:   req.Content,
		SummarizedContent: summary,
		SavedAt:           time.Now(),
	}

	id, err := s.artSaver.SaveArticle(ctx, article)
	if err != nil {
		if errors.Is(err, storage.ErrArticleExists) {
			log.Warn("lost duplicate-save race", slog.String("url", req.URL))
			return SummarizeResult{}, ErrAlreadySaved
		}

		log.Error("failed to save article", sl.Err(err))
		return SummarizeResult{}, fmt.Errorf("%s: %w", op, err)
	}

	article.ID = id

	log.Info("article summarized and saved", slog.Int64("article_id", id))

	return SummarizeResult{
		Summary:      summary,
		ArticleSaved: true,
		Article:      article,
	}, nil
}

// KeyTakeaways is a stateless pass-through; nothing is persisted.
func (s *Summarizer) KeyTakeaways(ctx context.Context, content string) (string, error) {
	const op = "summarizer.KeyTakeaways"

	log := s.log.With(slog.String("op", op))

	if len(content) < minTakeawaysContentLen {
		return "", ErrContentTooShort
	}

	takeaways, err := s.generator.Generate(ctx, fmt.Sprintf(takeawaysPrompt, content))
	if err != nil {
		log.Error("takeaways call failed", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if takeaways == "" {
		log.Error("takeaways returned empty content")
		return "", ErrSummarizationFailed
	}

	return takeaways, nil
}

// SavedArticles returns the caller's collection, newest first.
func (s *Summarizer) SavedArticles(ctx context.Context, userID int64) ([]models.SavedArticle, error) {
	const op = "summarizer.SavedArticles"

	articles, err := s.artProvider.ArticlesByUser(ctx, userID)
	if err != nil {
		s.log.With(slog.String("op", op)).Error("failed to list saved articles", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return articles, nil
}

// DeleteArticle removes one of the caller's saved articles. A missing row
// and someone else's row produce the same error.
func (s *Summarizer) DeleteArticle(ctx context.Context, userID, articleID int64) error {
	const op = "summarizer.DeleteArticle"

	log := s.log.With(slog.String("op", op), slog.Int64("uid", userID))

	if err := s.artSaver.DeleteArticle(ctx, articleID, userID); err != nil {
		if errors.Is(err, storage.ErrArticleNotFound) {
			log.Warn("article not found or not owned", slog.Int64("article_id", articleID))
			return ErrArticleNotFound
		}

		log.Error("failed to delete article", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("article deleted", slog.Int64("article_id", articleID))

	return nil
}
