// Package fetch is the HTTP transport for the meetup API.
//
// It lists meetup pages and creates subscriptions. It does not retry: a
// failed request is reported once and the caller decides what to show.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/abelbrown/meetapp/internal/listsync"
	"github.com/abelbrown/meetapp/internal/meetup"
)

// maxBodySize caps how much of a response body is read.
const maxBodySize = 4 << 20

// APIError is a non-2xx response. Message is the "error" field of the body
// when the server sent one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d", e.Status)
}

// ServerMessage implements listsync.ServerError.
func (e *APIError) ServerMessage() string {
	return e.Message
}

var _ listsync.ServerError = (*APIError)(nil)

// Options configures a Client.
type Options struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	// RateLimit is the sustained requests per second; <= 0 disables limiting.
	RateLimit float64
}

// Client talks to the meetup API.
type Client struct {
	base    *url.URL
	token   string
	client  *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Client. BaseURL must be absolute.
func NewClient(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if !base.IsAbs() {
		return nil, fmt.Errorf("base url %q is not absolute", opts.BaseURL)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	return &Client{
		base:    base,
		token:   opts.Token,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, 1),
	}, nil
}

var _ listsync.Transport = (*Client)(nil)

// ListMeetups fetches GET meetups?date=&page=&per_page=.
func (c *Client) ListMeetups(ctx context.Context, q listsync.Query) ([]meetup.Meetup, error) {
	params := url.Values{}
	params.Set("date", q.Date.UTC().Format(time.RFC3339))
	params.Set("page", strconv.Itoa(q.Page))
	if q.PageSize > 0 {
		params.Set("per_page", strconv.Itoa(q.PageSize))
	}

	body, err := c.do(ctx, http.MethodGet, "meetups", params)
	if err != nil {
		return nil, err
	}

	var page []meetup.Meetup
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("decode meetups: %w", err)
	}
	return page, nil
}

// Subscribe calls POST meetups/{id}/subscriptions.
func (c *Client) Subscribe(ctx context.Context, id meetup.ID) error {
	_, err := c.do(ctx, http.MethodPost, fmt.Sprintf("meetups/%d/subscriptions", id), nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values) ([]byte, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	u := c.base.ResolveReference(&url.URL{Path: path})
	if params != nil {
		u.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "meetapp/0.1")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &payload) == nil {
			apiErr.Message = payload.Error
		}
		return nil, apiErr
	}
	return body, nil
}
