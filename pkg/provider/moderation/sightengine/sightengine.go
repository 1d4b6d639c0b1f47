// Package sightengine provides a moderation.Checker backed by the Sightengine
// text moderation API in rule-based mode.
package sightengine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MrWong99/guessbot/pkg/provider/moderation"
)

const defaultEndpoint = "https://api.sightengine.com/1.0/text/check.json"

// Option is a functional option for configuring the Checker.
type Option func(*Checker)

// WithEndpoint overrides the API URL (used by tests).
func WithEndpoint(endpoint string) Option {
	return func(c *Checker) { c.endpoint = endpoint }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Checker) { c.client = client }
}

// Checker implements moderation.Checker.
type Checker struct {
	apiUser   string
	apiSecret string
	endpoint  string
	client    *http.Client
}

// New creates a Checker with Sightengine API credentials.
func New(apiUser, apiSecret string, opts ...Option) (*Checker, error) {
	if apiUser == "" || apiSecret == "" {
		return nil, errors.New("sightengine: api user and secret must not be empty")
	}
	c := &Checker{
		apiUser:   apiUser,
		apiSecret: apiSecret,
		endpoint:  defaultEndpoint,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

type checkResponse struct {
	Status    string `json:"status"`
	Profanity struct {
		Matches []struct {
			Type  string `json:"type"`
			Match string `json:"match"`
		} `json:"matches"`
	} `json:"profanity"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Check implements moderation.Checker.
func (c *Checker) Check(ctx context.Context, text, lang string) (moderation.Result, error) {
	if lang == "" {
		lang = "en"
	}
	form := url.Values{}
	form.Set("text", text)
	form.Set("mode", "rules")
	form.Set("lang", lang)
	form.Set("api_user", c.apiUser)
	form.Set("api_secret", c.apiSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return moderation.Result{}, fmt.Errorf("sightengine: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return moderation.Result{}, fmt.Errorf("sightengine: request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return moderation.Result{}, fmt.Errorf("sightengine: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return moderation.Result{}, fmt.Errorf("sightengine: server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed checkResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return moderation.Result{}, fmt.Errorf("sightengine: decode response: %w", err)
	}
	if parsed.Status != "success" {
		msg := parsed.Status
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return moderation.Result{}, fmt.Errorf("sightengine: check failed: %s", msg)
	}

	var res moderation.Result
	for _, m := range parsed.Profanity.Matches {
		if m.Match == "" {
			continue
		}
		res.Flagged = true
		res.Matches = append(res.Matches, m.Match)
	}
	return res, nil
}

var _ moderation.Checker = (*Checker)(nil)
