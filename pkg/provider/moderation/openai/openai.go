// Package openai provides a moderation.Checker backed by the OpenAI
// moderation endpoint.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/MrWong99/guessbot/pkg/provider/moderation"
)

// DefaultModel is the moderation model used when none is configured.
const DefaultModel = "omni-moderation-latest"

// Option is a functional option for configuring the Checker.
type Option func(*Checker)

// WithBaseURL overrides the API base URL.
func WithBaseURL(url string) Option {
	return func(c *Checker) { c.baseURL = url }
}

// WithModel sets the moderation model.
func WithModel(model string) Option {
	return func(c *Checker) { c.model = model }
}

// Checker implements moderation.Checker.
type Checker struct {
	client  oai.Client
	model   string
	baseURL string
}

// New creates a Checker. apiKey must be non-empty.
func New(apiKey string, opts ...Option) (*Checker, error) {
	if apiKey == "" {
		return nil, errors.New("openai moderation: apiKey must not be empty")
	}
	c := &Checker{model: DefaultModel}
	for _, o := range opts {
		o(c)
	}
	clientOpts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if c.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(c.baseURL))
	}
	c.client = oai.NewClient(clientOpts...)
	return c, nil
}

// Check implements moderation.Checker. The endpoint is language-agnostic so
// lang is ignored.
func (c *Checker) Check(ctx context.Context, text, _ string) (moderation.Result, error) {
	resp, err := c.client.Moderations.New(ctx, oai.ModerationNewParams{
		Input: oai.ModerationNewParamsInputUnion{OfString: oai.String(text)},
		Model: oai.ModerationModel(c.model),
	})
	if err != nil {
		return moderation.Result{}, fmt.Errorf("openai moderation: %w", err)
	}

	var res moderation.Result
	for _, r := range resp.Results {
		if !r.Flagged {
			continue
		}
		res.Flagged = true
		res.Categories = append(res.Categories, flaggedCategories(r.Categories.RawJSON())...)
	}
	slices.Sort(res.Categories)
	res.Categories = slices.Compact(res.Categories)
	return res, nil
}

// flaggedCategories returns the category keys set to true in raw.
func flaggedCategories(raw string) []string {
	var cats map[string]bool
	if err := json.Unmarshal([]byte(raw), &cats); err != nil {
		return nil
	}
	var out []string
	for name, hit := range cats {
		if hit {
			out = append(out, name)
		}
	}
	return out
}

var _ moderation.Checker = (*Checker)(nil)
