package service

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
)

const (
	DefaultBaseURL     = "http://localhost:3000/api"
	defaultUserAgent   = "studio-booking-cli"
	defaultTimeout     = 12 * time.Second
	defaultMaxAttempts = 3
	defaultRetryBase   = 200 * time.Millisecond
	defaultRetryCap    = 1200 * time.Millisecond
)

// Client wraps HTTP access to the studio booking API.
//
// Reads are retried on transport errors, 429 and 5xx. Writes are sent exactly
// once: the backend has no idempotency keys, so a retried booking could sell
// the same request twice.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	maxAttempts int
	retryBase   time.Duration
	retryCap    time.Duration
}

// NewClient creates a new API client. If httpClient is nil, a default client is used.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient:  httpClient,
		baseURL:     baseURL,
		userAgent:   defaultUserAgent,
		maxAttempts: defaultMaxAttempts,
		retryBase:   defaultRetryBase,
		retryCap:    defaultRetryCap,
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

type errorBody struct {
	Message string  `json:"message"`
	Error   string  `json:"error"`
	SeatIDs []int64 `json:"seatIds"`
}

func (c *Client) getJSON(ctx context.Context, endpoint string, token string, out any) error {
	maxAttempts := c.maxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		req, err := c.newRequest(ctx, http.MethodGet, endpoint, token, nil)
		if err != nil {
			return err
		}

		res, err := c.httpClient.Do(req)
		if err != nil {
			if c.shouldRetryNetworkError(err) && attempt < maxAttempts {
				if waitErr := c.waitRetry(ctx, attempt); waitErr != nil {
					return waitErr
				}
				continue
			}
			return &NetworkError{Op: "GET " + endpoint, Err: err}
		}

		if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
			apiErr := responseError(res, endpoint)
			if c.shouldRetryStatus(res.StatusCode) && attempt < maxAttempts {
				if waitErr := c.waitRetry(ctx, attempt); waitErr != nil {
					return waitErr
				}
				continue
			}
			return apiErr
		}

		return decodeBody(res, endpoint, out)
	}

	return errors.New("request failed after retries")
}

// postJSON sends a single request. It is never retried.
func (c *Client) postJSON(ctx context.Context, endpoint string, token string, in any, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, endpoint, token, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: "POST " + endpoint, Err: err}
	}
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return responseError(res, endpoint)
	}
	return decodeBody(res, endpoint, out)
}

func (c *Client) newRequest(ctx context.Context, method string, endpoint string, token string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func decodeBody(res *http.Response, endpoint string, out any) error {
	defer res.Body.Close()
	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	err := json.NewDecoder(res.Body).Decode(out)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode response from %s: %w", endpoint, err)
	}
	return nil
}

// responseError maps a non-2xx response onto the error taxonomy and closes
// the body.
func responseError(res *http.Response, endpoint string) error {
	snippet, _ := io.ReadAll(io.LimitReader(res.Body, 8<<10))
	_ = res.Body.Close()

	body := strings.TrimSpace(string(snippet))
	var parsed errorBody
	_ = json.Unmarshal(snippet, &parsed)
	message := parsed.Message
	if message == "" {
		message = parsed.Error
	}

	switch code := res.StatusCode; {
	case code == http.StatusBadRequest || code == http.StatusUnprocessableEntity:
		if message == "" {
			message = body
		}
		return &ValidationError{Message: message}
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		if message == "" {
			message = http.StatusText(code)
		}
		return &AuthError{Reason: message}
	case code == http.StatusConflict:
		return &ConflictError{SeatIDs: parsed.SeatIDs, Message: message}
	case code >= http.StatusInternalServerError:
		if message == "" {
			message = body
		}
		return &ServerError{StatusCode: code, Message: message}
	}
	return &APIError{
		StatusCode: res.StatusCode,
		Status:     res.Status,
		Endpoint:   endpoint,
		Body:       body,
	}
}

func (c *Client) shouldRetryStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func (c *Client) shouldRetryNetworkError(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func (c *Client) waitRetry(ctx context.Context, attempt int) error {
	delay := c.retryDelay(attempt)
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) retryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	base := c.retryBase
	if base <= 0 {
		base = defaultRetryBase
	}
	cap := c.retryCap
	if cap <= 0 {
		cap = defaultRetryCap
	}

	delay := base
	for i := 1; i < attempt; i++ {
		if delay >= cap/2 {
			return cap
		}
		delay *= 2
	}
	if delay > cap {
		return cap
	}
	return delay
}
