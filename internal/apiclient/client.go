// Package apiclient talks to the PBX REST backend under /api/{collection}.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	Extensions = "extensions"
	Trunks     = "trunks"
	Queues     = "queues"
	CDR        = "cdr"
)

var (
	// ErrTransport covers connection failures and timeouts.
	ErrTransport = errors.New("transport error")
	// ErrStatus is matched by every *StatusError.
	ErrStatus = errors.New("unexpected status")
	// ErrDecode is returned when a success response body cannot be decoded.
	ErrDecode = errors.New("malformed response body")
)

type StatusError struct {
	Method string
	Path   string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Code)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrStatus
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
	// Headers are added to every request, e.g. X-API-Key.
	Headers map[string]string
}

// New returns a client for baseURL. A zero timeout leaves requests unbounded.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// List fetches a whole collection into out, which must point to a slice.
func (c *Client) List(ctx context.Context, collection string, out any) error {
	return c.do(ctx, http.MethodGet, c.path(collection, ""), nil, out, func(code int) bool {
		return code == http.StatusOK
	})
}

// Create posts body and decodes the server representation into out.
func (c *Client) Create(ctx context.Context, collection string, body, out any) error {
	return c.do(ctx, http.MethodPost, c.path(collection, ""), body, out, is2xx)
}

func (c *Client) Update(ctx context.Context, collection, id string, body any) error {
	return c.do(ctx, http.MethodPut, c.path(collection, id), body, nil, is2xx)
}

func (c *Client) Delete(ctx context.Context, collection, id string) error {
	return c.do(ctx, http.MethodDelete, c.path(collection, id), nil, nil, is2xx)
}

func (c *Client) path(collection, id string) string {
	p := "/api/" + collection
	if id != "" {
		p += "/" + url.PathEscape(id)
	}
	return p
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, ok func(int) bool) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.Headers {
		req.Header.Set(k, v)
	}

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	if !ok(resp.StatusCode) {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		slog.Debug("undecodable response", "method", method, "path", path, "error", err)
		return fmt.Errorf("%w: %s %s: %v", ErrDecode, method, path, err)
	}
	return nil
}

func is2xx(code int) bool {
	return code >= 200 && code < 300
}
