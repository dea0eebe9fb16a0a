package news_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"awaaznow/internal/gateway/newsapi"
	"awaaznow/internal/http_server/handlers/news"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	articles []newsapi.Article
	err      error

	gotQuery    string
	gotCategory string
}

func (f *fakeProvider) TopHeadlines(_ context.Context, query, category string) ([]newsapi.Article, error) {
	f.gotQuery = query
	f.gotCategory = category

	if f.err != nil {
		return nil, f.err
	}
	return f.articles, nil
}

func doRequest(t *testing.T, provider *fakeProvider, target string) *httptest.ResponseRecorder {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := news.New(log, provider, "local")

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	return rr
}

func TestNews_Success(t *testing.T) {
	provider := &fakeProvider{articles: []newsapi.Article{{Title: "Headline"}}}

	rr := doRequest(t, provider, "/news?q=economy&category=business")

	require.Equal(t, http.StatusOK, rr.Code)

	var got news.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))

	require.Len(t, got.Articles, 1)
	assert.Equal(t, "Headline", got.Articles[0].Title)
	assert.Equal(t, "economy", provider.gotQuery)
	assert.Equal(t, "business", provider.gotCategory)
}

func TestNews_ProviderErrors(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"bad key", newsapi.ErrUnauthorized, http.StatusUnauthorized, "News provider API key is invalid or unauthorized."},
		{"rate limited", newsapi.ErrRateLimited, http.StatusTooManyRequests, "News provider rate limit exceeded. Please try again later."},
		{"unreachable", newsapi.ErrUnavailable, http.StatusServiceUnavailable, "Network error when trying to reach the news provider."},
		{"provider error", newsapi.ErrProvider, http.StatusBadGateway, "news provider error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := doRequest(t, &fakeProvider{err: tc.err}, "/news")

			assert.Equal(t, tc.wantStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tc.wantMsg)
		})
	}
}
