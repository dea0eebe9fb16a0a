package summarizer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"testing"
	"time"

	"awaaznow/internal/models"
	"awaaznow/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeArticleStore struct {
	articles map[int64]*models.SavedArticle
	nextID   int64
	saveErr  error
}

func newFakeArticleStore() *fakeArticleStore {
	return &fakeArticleStore{articles: make(map[int64]*models.SavedArticle), nextID: 1}
}

func (f *fakeArticleStore) SaveArticle(_ context.Context, article models.SavedArticle) (int64, error) {
	if f.saveErr != nil {
		return 0, f.saveErr
	}

	for _, a := range f.articles {
		if a.UserID == article.UserID && a.URL == article.URL {
			return 0, storage.ErrArticleExists
		}
	}

	id := f.nextID
	f.nextID++
	article.ID = id
	f.articles[id] = &article

	return id, nil
}

func (f *fakeArticleStore) DeleteArticle(_ context.Context, id, userID int64) error {
	a, ok := f.articles[id]
	if !ok || a.UserID != userID {
		return storage.ErrArticleNotFound
	}
	delete(f.articles, id)
	return nil
}

func (f *fakeArticleStore) ArticleByUserAndURL(_ context.Context, userID int64, url string) (models.SavedArticle, error) {
	for _, a := range f.articles {
		if a.UserID == userID && a.URL == url {
			return *a, nil
		}
	}
	return models.SavedArticle{}, storage.ErrArticleNotFound
}

func (f *fakeArticleStore) ArticlesByUser(_ context.Context, userID int64) ([]models.SavedArticle, error) {
	var out []models.SavedArticle
	for _, a := range f.articles {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SavedAt.After(out[j].SavedAt) })
	return out, nil
}

type fakeGenerator struct {
	calls  int
	text   string
	genErr error
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.calls++
	if f.genErr != nil {
		return "", f.genErr
	}
	return f.text, nil
}

func newTestSummarizer(store *fakeArticleStore, gen *fakeGenerator) *Summarizer {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(log, store, store, gen)
}

func validRequest() SummarizeRequest {
	return SummarizeRequest{
		Title:   "Some headline",
		URL:     "https://example.com/article",
		Content: strings.Repeat("news content ", 20),
	}
}

func TestSummarizeAndSave_ContentTooShort(t *testing.T) {
	store := newFakeArticleStore()
	gen := &fakeGenerator{text: "a summary"}
	s := newTestSummarizer(store, gen)

	req := validRequest()
	req.Content = strings.Repeat("x", 40)

	_, err := s.SummarizeAndSave(context.Background(), 1, req)
	assert.ErrorIs(t, err, ErrContentTooShort)
	assert.Zero(t, gen.calls)
}

func TestSummarizeAndSave_UserMismatch(t *testing.T) {
	s := newTestSummarizer(newFakeArticleStore(), &fakeGenerator{text: "a summary"})

	req := validRequest()
	req.UserID = 2

	_, err := s.SummarizeAndSave(context.Background(), 1, req)
	assert.ErrorIs(t, err, ErrUserMismatch)
}

func TestSummarizeAndSave_SecondCallReturnsCachedSummary(t *testing.T) {
	store := newFakeArticleStore()
	gen := &fakeGenerator{text: "a summary"}
	s := newTestSummarizer(store, gen)

	first, err := s.SummarizeAndSave(context.Background(), 1, validRequest())
	require.NoError(t, err)
	assert.True(t, first.ArticleSaved)

	second, err := s.SummarizeAndSave(context.Background(), 1, validRequest())
	require.NoError(t, err)

	assert.False(t, second.ArticleSaved)
	assert.Equal(t, first.Summary, second.Summary)
	assert.Equal(t, 1, gen.calls, "provider must not be called for an already-saved url")
	assert.Len(t, store.articles, 1)
}

func TestSummarizeAndSave_SameURLDifferentUsers(t *testing.T) {
	store := newFakeArticleStore()
	gen := &fakeGenerator{text: "a summary"}
	s := newTestSummarizer(store, gen)

	_, err := s.SummarizeAndSave(context.Background(), 1, validRequest())
	require.NoError(t, err)

	result, err := s.SummarizeAndSave(context.Background(), 2, validRequest())
	require.NoError(t, err)

	assert.True(t, result.ArticleSaved)
	assert.Len(t, store.articles, 2)
}

func TestSummarizeAndSave_EmptyGeneration(t *testing.T) {
	store := newFakeArticleStore()
	s := newTestSummarizer(store, &fakeGenerator{text: ""})

	_, err := s.SummarizeAndSave(context.Background(), 1, validRequest())
	assert.ErrorIs(t, err, ErrSummarizationFailed)
	assert.Empty(t, store.articles)
}

func TestSummarizeAndSave_DuplicateRaceSurfacesConflict(t *testing.T) {
	store := newFakeArticleStore()
	store.saveErr = storage.ErrArticleExists
	s := newTestSummarizer(store, &fakeGenerator{text: "a summary"})

	_, err := s.SummarizeAndSave(context.Background(), 1, validRequest())
	assert.ErrorIs(t, err, ErrAlreadySaved)
}

func TestKeyTakeaways_ContentTooShort(t *testing.T) {
	gen := &fakeGenerator{text: "1. point"}
	s := newTestSummarizer(newFakeArticleStore(), gen)

	_, err := s.KeyTakeaways(context.Background(), strings.Repeat("x", 40))
	assert.ErrorIs(t, err, ErrContentTooShort)
	assert.Zero(t, gen.calls)
}

func TestKeyTakeaways_NothingPersisted(t *testing.T) {
	store := newFakeArticleStore()
	s := newTestSummarizer(store, &fakeGenerator{text: "1. point\n2. point"})

	takeaways, err := s.KeyTakeaways(context.Background(), strings.Repeat("news ", 20))
	require.NoError(t, err)

	assert.Equal(t, "1. point\n2. point", takeaways)
	assert.Empty(t, store.articles)
}

func TestSavedArticles_NewestFirst(t *testing.T) {
	store := newFakeArticleStore()
	s := newTestSummarizer(store, &fakeGenerator{})

	base := time.Now()
	for i := 0; i < 3; i++ {
		store.articles[int64(i+1)] = &models.SavedArticle{
			ID:      int64(i + 1),
			UserID:  1,
			URL:     fmt.Sprintf("https://example.com/%d", i),
			SavedAt: base.Add(time.Duration(i) * time.Minute),
		}
	}

	articles, err := s.SavedArticles(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, articles, 3)

	assert.True(t, articles[0].SavedAt.After(articles[1].SavedAt))
	assert.True(t, articles[1].SavedAt.After(articles[2].SavedAt))
}

func TestDeleteArticle_OtherUsersArticle(t *testing.T) {
	store := newFakeArticleStore()
	s := newTestSummarizer(store, &fakeGenerator{text: "a summary"})

	result, err := s.SummarizeAndSave(context.Background(), 1, validRequest())
	require.NoError(t, err)

	err = s.DeleteArticle(context.Background(), 2, result.Article.ID)
	assert.ErrorIs(t, err, ErrArticleNotFound)
	assert.Len(t, store.articles, 1, "record must stay intact")
}

func TestDeleteArticle_Missing(t *testing.T) {
	s := newTestSummarizer(newFakeArticleStore(), &fakeGenerator{})

	err := s.DeleteArticle(context.Background(), 1, 999)
	assert.ErrorIs(t, err, ErrArticleNotFound)
}

func TestDeleteArticle_Owned(t *testing.T) {
	store := newFakeArticleStore()
	s := newTestSummarizer(store, &fakeGenerator{text: "a summary"})

	result, err := s.SummarizeAndSave(context.Background(), 1, validRequest())
	require.NoError(t, err)

	require.NoError(t, s.DeleteArticle(context.Background(), 1, result.Article.ID))
	assert.Empty(t, store.articles)
}
