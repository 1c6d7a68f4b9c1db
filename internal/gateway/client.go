// Package gateway is the typed HTTP client for the clinic REST API. Every call
// is fire-once: no retry, no queueing. Failures come back as *errors.AppError
// and callers decide what to show.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/vitemonmedoc/medoc/pkg/errors"
	"github.com/vitemonmedoc/medoc/pkg/logger"
)

const (
	HeaderXRequestID = "X-Request-ID"

	// responses above this size are truncated; the API never sends more than a patient list
	maxResponseBytes = 8 << 20
)

type Config struct {
	// BaseURL is either host:port, as written in a .env BASE_URL, or a full URL.
	BaseURL string
	// Timeout bounds each request on top of the caller's context. Zero disables it.
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logger.Logger
}

type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
	log     *logger.Logger
}

func New(cfg Config) (*Client, error) {
	base, err := NormalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Client{
		base:    base,
		http:    httpClient,
		timeout: cfg.Timeout,
		log:     log.WithComponent("gateway"),
	}, nil
}

// NormalizeBaseURL accepts "host:port", "http://host:port" or "https://host/prefix".
func NormalizeBaseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("base URL is empty")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: missing host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	return u, nil
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string {
	return c.base.String()
}

type request struct {
	op     string
	method string
	path   string
	query  url.Values
	token  string
	body   interface{}
}

type response struct {
	status int
	body   []byte
}

func (c *Client) send(ctx context.Context, r request) (*response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	u := *c.base
	u.Path = c.base.Path + r.path
	if len(r.query) > 0 {
		u.RawQuery = r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return nil, apperrors.NewBadRequest("failed to encode request body", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), body)
	if err != nil {
		return nil, apperrors.NewInternal(fmt.Errorf("failed to build request: %w", err))
	}

	requestID := uuid.New().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderXRequestID, requestID)
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.ZL.Debug().Err(err).
			Str("op", r.op).
			Str("request_id", requestID).
			Dur("latency", time.Since(start)).
			Msg("request failed")
		return nil, apperrors.NewNetwork(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, apperrors.NewNetwork(fmt.Errorf("failed to read response: %w", err))
	}

	c.log.ZL.Debug().
		Str("op", r.op).
		Str("method", r.method).
		Str("path", u.Path).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("request completed")

	return &response{status: resp.StatusCode, body: data}, nil
}

// do sends r and decodes a 2xx body into out when out is non-nil.
func (c *Client) do(ctx context.Context, r request, out interface{}) error {
	resp, err := c.send(ctx, r)
	if err != nil {
		return err
	}
	if resp.status < 200 || resp.status >= 300 {
		return apperrors.NewServer(resp.status, serverMessage(resp.body))
	}
	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(resp.body)) == 0 {
		return apperrors.NewDecode(fmt.Errorf("%s: empty response body", r.op))
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return apperrors.NewDecode(fmt.Errorf("%s: %w", r.op, err))
	}
	return nil
}

// serverMessage extracts {"message": ...} or {"error": ...} from an error body.
func serverMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}
