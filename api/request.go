package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Request describes one call to the remote API.
type Request struct {
	Method string
	// Path is relative to the executor's base URL, e.g. "/events".
	Path  string
	Query url.Values
	// Body is encoded as JSON when non-nil.
	Body         any
	AuthRequired bool
	// Timeout overrides the executor default when positive.
	Timeout time.Duration
}

// Response is a completed call with status < 400.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	RequestID  string
}

// Decode unmarshals the JSON body into v. An empty body leaves v untouched.
func (r *Response) Decode(v any) error {
	if len(r.Body) == 0 || v == nil {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("[Response Decode] %w", err)
	}
	return nil
}

// PageMeta is the optional pagination block of a list response.
type PageMeta struct {
	CurrentPage int `json:"current_page,omitempty"`
	LastPage    int `json:"last_page,omitempty"`
	PerPage     int `json:"per_page,omitempty"`
	Total       int `json:"total,omitempty"`
}

// HasMore reports whether pages after CurrentPage exist.
func (m *PageMeta) HasMore() bool {
	return m != nil && m.CurrentPage < m.LastPage
}

// Page is the envelope of paginated list endpoints.
type Page[T any] struct {
	Data []T       `json:"data"`
	Meta *PageMeta `json:"meta,omitempty"`
}

// PageQuery returns the query for page n. Pages start at 1; n < 1 means 1.
func PageQuery(n int) url.Values {
	if n < 1 {
		n = 1
	}
	return url.Values{"page": {strconv.Itoa(n)}}
}

// Doer is satisfied by *Executor.
type Doer interface {
	Execute(ctx context.Context, req Request) (*Response, error)
}

// Do executes req and decodes the response body into a T.
func Do[T any](ctx context.Context, d Doer, req Request) (T, error) {
	var out T
	resp, err := d.Execute(ctx, req)
	if err != nil {
		return out, err
	}
	if err := resp.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}
