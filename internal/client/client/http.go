package client

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

	"github.com/dmitrijs2005/flipbook/internal/client/models"
	"github.com/dmitrijs2005/flipbook/internal/common"
	"github.com/dmitrijs2005/flipbook/internal/logging"
	"github.com/google/uuid"
)

// HTTPClient talks to the flipbook API over plain HTTP/JSON.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	logger  logging.Logger
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.logger = l }
}

func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		logger:  logging.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *HTTPClient) ListRecent(ctx context.Context) ([]models.FlipbookSummary, error) {
	var items []models.FlipbookSummary
	if err := c.doJSON(ctx, http.MethodGet, "/flipbooks/recent", &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.FlipbookSummary{}
	}
	return items, nil
}

func (c *HTTPClient) GetFlipbook(ctx context.Context, id string) (*models.Flipbook, error) {
	var fb *models.Flipbook
	if err := c.doJSON(ctx, http.MethodGet, "/flipbooks/"+url.PathEscape(id), &fb); err != nil {
		return nil, err
	}
	if fb == nil {
		return nil, ErrNotFound
	}
	return fb, nil
}

func (c *HTTPClient) Delete(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/flipbooks/"+url.PathEscape(id), nil)
}

func (c *HTTPClient) Upload(ctx context.Context, req UploadRequest, progress ProgressFunc) (*models.UploadResult, error) {
	body, err := newUploadBody(req)
	if err != nil {
		return nil, fmt.Errorf("prepare upload: %w", err)
	}
	defer body.Close()

	var r io.Reader = body
	if progress != nil {
		r = &progressReader{r: body, total: body.size, fn: progress}
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, "/upload", r)
	if err != nil {
		return nil, err
	}
	httpReq.ContentLength = body.size
	httpReq.Header.Set("Content-Type", body.contentType)

	var res models.UploadResult
	if err := c.do(httpReq, &res); err != nil {
		return nil, err
	}
	if res.ID == "" {
		return nil, fmt.Errorf("%w: upload response has no id", ErrRequestFailed)
	}
	return &res, nil
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, out any) error {
	req, err := c.newRequest(ctx, method, path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *HTTPClient) do(req *http.Request, out any) error {
	ctx := req.Context()
	reqID := req.Header.Get(common.RequestIDHeaderName)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn(ctx, "request failed", "method", req.Method, "path", req.URL.Path, "request_id", reqID, "error", err)
		return c.mapError(err)
	}
	defer resp.Body.Close()

	c.logger.Debug(ctx, "response", "method", req.Method, "path", req.URL.Path, "status", resp.StatusCode, "request_id", reqID)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.mapError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

func (c *HTTPClient) mapError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func statusError(status int, body []byte) error {
	var payload struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &payload)

	return &APIError{Status: status, Message: payload.Message}
}
