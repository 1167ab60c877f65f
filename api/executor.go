// Package api performs HTTP calls against the booking API.
//
// The Executor attaches the session's bearer token, encodes and decodes JSON
// and classifies every failure as *NetworkError, *HTTPError or *AuthError.
// It never retries and never touches session or cache state.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-booking-client/internal/metrics"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// DefaultTimeout applies to requests without their own Timeout.
const DefaultTimeout = 15 * time.Second

// RequestIDHeader carries a per-call correlation id.
const RequestIDHeader = "X-Request-ID"

// TokenSource supplies the current token for one call. An empty token means
// no session. *session.Manager satisfies it.
type TokenSource interface {
	Token() (string, error)
}

// readiness is implemented by token sources that restore asynchronously.
type readiness interface {
	WaitReady(ctx context.Context) error
}

// Executor performs requests against a single base URL.
type Executor struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	logger     zerolog.Logger
	metrics    *metrics.Metrics
}

var _ Doer = (*Executor)(nil)

// Option configures the Executor.
type Option func(*Executor)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Executor) { e.httpClient = c }
}

// WithTimeout sets the default per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) { e.timeout = d }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(e *Executor) { e.userAgent = ua }
}

// WithLogger sets a structured logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Executor) { e.metrics = m }
}

// NewExecutor creates an Executor for baseURL (e.g. "https://host/api/v1").
// tokens may be nil when no request needs authentication.
func NewExecutor(baseURL string, tokens TokenSource, opts ...Option) *Executor {
	e := &Executor{
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
		userAgent:  "bookingctl",
		logger:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// BaseURL returns the URL requests are resolved against.
func (e *Executor) BaseURL() string {
	return e.baseURL
}

// Execute sends req and returns the response when its status is below 400.
func (e *Executor) Execute(ctx context.Context, req Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var bearer string
	if req.AuthRequired {
		tok, err := e.currentToken(ctx)
		if err != nil || tok == "" {
			e.metrics.RecordRequest(method, "auth_error", 0)
			return nil, &AuthError{Method: method, Path: req.Path, Err: err}
		}
		bearer = tok
	}

	timeout := e.timeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	httpReq, err := e.newRequest(ctx, method, req)
	if err != nil {
		return nil, err
	}
	requestID := uuid.NewString()
	httpReq.Header.Set(RequestIDHeader, requestID)
	if bearer != "" {
		(&oauth2.Token{AccessToken: bearer, TokenType: "Bearer"}).SetAuthHeader(httpReq)
	}

	log := e.logger.With().Str("method", method).Str("path", req.Path).Str("request_id", requestID).Logger()
	start := time.Now()

	httpResp, err := e.httpClient.Do(httpReq)
	if err != nil {
		netErr := &NetworkError{Op: method + " " + req.Path, Timeout: isTimeout(ctx, err), Err: err}
		e.metrics.RecordRequest(method, "network_error", time.Since(start).Seconds())
		log.Debug().Err(err).Bool("timeout", netErr.Timeout).Msg("request failed")
		return nil, netErr
	}
	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		e.metrics.RecordRequest(method, "network_error", time.Since(start).Seconds())
		return nil, &NetworkError{Op: "read " + req.Path, Timeout: isTimeout(ctx, err), Err: err}
	}

	elapsed := time.Since(start)
	if httpResp.StatusCode >= http.StatusBadRequest {
		e.metrics.RecordRequest(method, "http_error", elapsed.Seconds())
		log.Debug().Int("status", httpResp.StatusCode).Dur("elapsed", elapsed).Msg("request rejected")
		return nil, newHTTPError(httpResp.StatusCode, body)
	}

	e.metrics.RecordRequest(method, "success", elapsed.Seconds())
	log.Debug().Int("status", httpResp.StatusCode).Dur("elapsed", elapsed).Msg("request completed")
	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       body,
		RequestID:  requestID,
	}, nil
}

// currentToken reads the token, first waiting for an asynchronous restore
// when the source supports it.
func (e *Executor) currentToken(ctx context.Context) (string, error) {
	if e.tokens == nil {
		return "", nil
	}
	if r, ok := e.tokens.(readiness); ok {
		if err := r.WaitReady(ctx); err != nil {
			return "", err
		}
	}
	return e.tokens.Token()
}

func (e *Executor) newRequest(ctx context.Context, method string, req Request) (*http.Request, error) {
	target := e.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("[Executor Execute] encode body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("[Executor Execute] build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if e.userAgent != "" {
		httpReq.Header.Set("User-Agent", e.userAgent)
	}
	return httpReq, nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
