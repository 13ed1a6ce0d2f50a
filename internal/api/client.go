// Package api is the gateway to the expense backend REST API.
//
// Every call prepends the configured base URL, sends and accepts JSON,
// attaches a bearer token when the request context carries one, and
// normalises every failure into *Error.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"finweb/internal/log"
)

const maxErrorBody = 64 << 10

type tokenKey struct{}

// WithToken returns ctx carrying a bearer token for outbound calls.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func tokenFrom(ctx context.Context) string {
	s, _ := ctx.Value(tokenKey{}).(string)
	return s
}

// Client calls the backend. It never retries, queues or deduplicates.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  *log.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds every call; zero disables the per-call deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for baseURL, which already includes the /api prefix.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		timeout: 15 * time.Second,
		logger:  log.Discard(),
	}
	for _, o := range opts {
		o(c)
	}
	c.logger = c.logger.WithComponent(log.ComponentGateway)
	return c
}

// BaseURL returns the backend root the client was created with.
func (c *Client) BaseURL() string { return c.baseURL }

// envelope captures the error fields the backend may put in a 2xx body.
type envelope struct {
	Error   *string `json:"error"`
	Success *bool   `json:"success"`
	Message string  `json:"message"`
}

// do performs one call. A 204 leaves out untouched and returns nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	op := method + " " + path
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return &Error{Kind: KindDecode, Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		body = bytes.NewReader(b)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return &Error{Kind: KindNetwork, Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if tok := tokenFrom(ctx); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "Backend call failed",
			log.FieldOperation, op, log.FieldURL, u, log.FieldError, err.Error())
		return &Error{Kind: KindNetwork, Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "Backend call",
		log.FieldOperation, op,
		log.FieldStatusCode, resp.StatusCode,
		log.FieldDuration, time.Since(start).Milliseconds())

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindNetwork, Op: op, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := string(raw)
		if len(text) > maxErrorBody {
			text = text[:maxErrorBody]
		}
		c.logger.ErrorContext(ctx, "Backend returned error status",
			log.FieldOperation, op,
			log.FieldStatusCode, resp.StatusCode,
			log.FieldBody, text)
		return &Error{
			Kind:    KindHTTP,
			Op:      op,
			Status:  resp.StatusCode,
			Message: messageFromBody(raw),
			Body:    strings.TrimSpace(text),
		}
	}

	if appErr := checkEnvelope(op, resp.StatusCode, raw); appErr != nil {
		c.logger.WarnContext(ctx, "Backend reported failure",
			log.FieldOperation, op, log.FieldError, appErr.Message)
		return appErr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.ErrorContext(ctx, "Backend response decode failed",
			log.FieldOperation, op, log.FieldError, err.Error(), log.FieldBody, string(raw))
		return &Error{Kind: KindDecode, Op: op, Status: resp.StatusCode, Body: string(raw), Err: err}
	}
	return nil
}

// checkEnvelope turns {error: "..."} or {success: false} in a 2xx body into KindApplication.
func checkEnvelope(op string, status int, raw []byte) *Error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil
	}
	switch {
	case env.Error != nil && *env.Error != "":
		return &Error{Kind: KindApplication, Op: op, Status: status, Message: *env.Error, Body: string(trimmed)}
	case env.Success != nil && !*env.Success:
		return &Error{Kind: KindApplication, Op: op, Status: status, Message: env.Message, Body: string(trimmed)}
	}
	return nil
}

// messageFromBody prefers a JSON message or error field, then the plain body text.
func messageFromBody(raw []byte) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ""
	}
	if trimmed[0] == '{' {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err == nil {
			if env.Message != "" {
				return env.Message
			}
			if env.Error != nil {
				return *env.Error
			}
		}
		return ""
	}
	if len(trimmed) > 300 || bytes.HasPrefix(trimmed, []byte("<")) {
		return ""
	}
	return string(trimmed)
}

// IsCanceled reports whether err came from the caller's context being canceled.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
