// Package gemini wraps the Generative Language API behind a single
// prompt-in, text-out call.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	generativelanguage "google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/option"
)

var (
	ErrProvider      = errors.New("generative provider error")
	ErrEmptyResponse = errors.New("provider returned no text")
)

type Client struct {
	svc     *generativelanguage.Service
	model   string
	timeout time.Duration
}

func New(ctx context.Context, apiKey, model string, timeout time.Duration, opts ...option.ClientOption) (*Client, error) {
	const op = "gateway.gemini.New"

	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)

	svc, err := generativelanguage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Client{
		svc:     svc,
		model:   model,
		timeout: timeout,
	}, nil
}

// Generate sends the prompt and returns the first candidate's text. The
// call is bounded by the configured timeout and retried once on a
// transient failure.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	const op = "gateway.gemini.Generate"

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := &generativelanguage.GenerateContentRequest{
		Contents: []*generativelanguage.Content{
			{Parts: []*generativelanguage.Part{{Text: prompt}}},
		},
	}

	var resp *generativelanguage.GenerateContentResponse

	backoff := retry.WithMaxRetries(1, retry.NewConstant(500*time.Millisecond))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		resp, err = c.svc.Models.GenerateContent("models/"+c.model, req).Context(ctx).Do()
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%s: %v: %w", op, err, ErrProvider)
	}

	text := firstCandidateText(resp)
	if text == "" {
		return "", fmt.Errorf("%s: %w", op, ErrEmptyResponse)
	}

	return text, nil
}

func firstCandidateText(resp *generativelanguage.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var b strings.Builder

	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part != nil {
				b.WriteString(part.Text)
			}
		}
		break
	}

	return b.String()
}
