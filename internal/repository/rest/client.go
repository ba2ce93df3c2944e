// Package rest implements the repository interfaces against the remote B2B REST API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/b2b-portal/internal/config"
	"github.com/andresuchdata/b2b-portal/internal/domain"
	"github.com/rs/zerolog/log"
)

const maxErrorBody = 64 << 10

// TokenSource yields the persisted auth token, "" when signed out.
type TokenSource interface {
	Load(ctx context.Context) (string, error)
}

type Client struct {
	baseURL     string
	tokenHeader string
	tokens      TokenSource
	http        *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// NewClient builds a client. A zero timeout leaves the HTTP client default in place.
func NewClient(cfg config.APIConfig, tokens TokenSource, opts ...Option) *Client {
	header := cfg.TokenHeader
	if header == "" {
		header = "x-auth-token"
	}

	c := &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		tokenHeader: header,
		tokens:      tokens,
		http:        &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	c.authorize(ctx, req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s: %w", method, path, decodeRemoteError(resp))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// authorize attaches the token header. No token means no header; the remote
// API decides what an anonymous caller may do.
func (c *Client) authorize(ctx context.Context, req *http.Request) {
	if c.tokens == nil {
		return
	}
	token, err := c.tokens.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("could not load auth token, sending request without it")
		return
	}
	if token != "" {
		req.Header.Set(c.tokenHeader, token)
	}
}

func decodeRemoteError(resp *http.Response) *domain.RemoteError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body struct {
		Msg     string `json:"msg"`
		Message string `json:"message"`
		Error   string `json:"error"`
		Errors  []struct {
			Msg string `json:"msg"`
		} `json:"errors"`
	}
	msg := ""
	if err := json.Unmarshal(raw, &body); err == nil {
		switch {
		case body.Msg != "":
			msg = body.Msg
		case body.Message != "":
			msg = body.Message
		case body.Error != "":
			msg = body.Error
		case len(body.Errors) > 0 && body.Errors[0].Msg != "":
			msg = body.Errors[0].Msg
		}
	}
	if msg == "" {
		msg = fmt.Sprintf("Request failed with status code %d", resp.StatusCode)
	}

	return &domain.RemoteError{Status: resp.StatusCode, Message: msg}
}
