// Package backend calls the shop's upstream services.
//
// Each service has an ordered list of candidate base URLs. A request walks the
// list one candidate at a time and only moves on when the current one looks
// unreachable or misrouted (transport error, 404, 502, 503, 504). Every other
// status is the final answer.
package backend

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

	"github.com/sony/gobreaker/v2"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/florista/bouquet-bff/internal/normalize"
	"github.com/florista/bouquet-bff/pkg/config"
	pkgerrors "github.com/florista/bouquet-bff/pkg/errors"
	"github.com/florista/bouquet-bff/pkg/logger"
	"github.com/florista/bouquet-bff/pkg/metrics"
)

// Service names an upstream backend.
type Service string

const (
	ServiceAuth    Service = "auth"
	ServiceProduct Service = "product"
	ServiceOrder   Service = "order"
	ServicePayment Service = "payment"
)

const (
	responseBodyLimit int64 = 4 << 20
	errorBodyLimit    int64 = 8 << 10
	requestIDHeader         = "X-Request-Id"
)

var errNoCandidates = errors.New("no candidate urls configured")

// Request is one logical backend call.
type Request struct {
	Service Service
	Method  string
	// Path is appended to the candidate base URL and should start with "/".
	Path  string
	Query url.Values
	// Body is JSON encoded when non-nil.
	Body any
	// Token is the user's backend bearer token, if any.
	Token     string
	RequestID string
}

// Response is a successful (2xx) backend reply.
type Response struct {
	Status int
	URL    string
	Body   []byte
}

// Decode parses the body for the normalizers. Non-JSON bodies read as absent.
func (r *Response) Decode() gjson.Result {
	if r == nil {
		return gjson.Result{}
	}
	return normalize.Decode(r.Body)
}

// Caller is the surface services depend on.
type Caller interface {
	Do(ctx context.Context, req Request) (*Response, error)
}

// Client performs backend calls with candidate fallover and a breaker per service.
type Client struct {
	httpClient *http.Client
	candidates map[Service][]string
	breakers   map[Service]*gobreaker.CircuitBreaker[*Response]
	metrics    *metrics.UpstreamMetrics
	logg       *logger.Logger

	maxFailures uint32
	openTimeout time.Duration
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default traced HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithMetrics records upstream latency, failures and breaker state.
func WithMetrics(m *metrics.UpstreamMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithLogger logs fallover and breaker transitions.
func WithLogger(logg *logger.Logger) Option {
	return func(c *Client) {
		if logg != nil {
			c.logg = logg
		}
	}
}

// NewClient builds the backend client from configuration.
func NewClient(cfg config.BackendConfig, opts ...Option) (*Client, error) {
	candidates := map[Service][]string{
		ServiceAuth:    cleanBaseURLs(cfg.AuthURLs),
		ServiceProduct: cleanBaseURLs(cfg.ProductURLs),
		ServiceOrder:   cleanBaseURLs(cfg.OrderURLs),
		ServicePayment: cleanBaseURLs(cfg.PaymentURLs),
	}
	for svc, urls := range candidates {
		if len(urls) == 0 {
			return nil, fmt.Errorf("%s: %w", svc, errNoCandidates)
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		candidates:  candidates,
		logg:        logger.Nop(),
		maxFailures: cfg.BreakerMaxFailures,
		openTimeout: cfg.BreakerOpenTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	client.breakers = make(map[Service]*gobreaker.CircuitBreaker[*Response], len(candidates))
	for svc := range candidates {
		client.breakers[svc] = client.newBreaker(svc)
	}
	return client, nil
}

// Services lists the configured upstreams.
func (c *Client) Services() []Service {
	return []Service{ServiceAuth, ServiceProduct, ServiceOrder, ServicePayment}
}

// Do executes req against the service's candidates through its breaker.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	breaker, ok := c.breakers[req.Service]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("unknown backend service %q", req.Service))
	}

	start := time.Now()
	resp, err := breaker.Execute(func() (*Response, error) {
		return c.try(ctx, req)
	})
	elapsed := time.Since(start)

	if err == nil {
		c.metrics.ObserveDuration(string(req.Service), "success", elapsed)
		return resp, nil
	}

	mapped := c.mapError(req.Service, err)
	c.metrics.ObserveDuration(string(req.Service), "error", elapsed)
	c.metrics.IncFailure(string(req.Service), string(mapped.Code()))
	return nil, mapped
}

// BreakerStates reports the current breaker state per service.
func (c *Client) BreakerStates() map[Service]gobreaker.State {
	states := make(map[Service]gobreaker.State, len(c.breakers))
	for svc, cb := range c.breakers {
		states[svc] = cb.State()
	}
	return states
}

func (c *Client) try(ctx context.Context, req Request) (*Response, error) {
	candidates := c.candidates[req.Service]
	var lastErr error
	for i, base := range candidates {
		resp, err := c.send(ctx, base, req)
		last := i == len(candidates)-1
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			lastErr = err
			if !last {
				c.fallover(ctx, req.Service, base, err)
			}
			continue
		}
		if resp.Status >= 200 && resp.Status < 300 {
			return resp, nil
		}
		upErr := &UpstreamError{
			Service: req.Service,
			URL:     resp.URL,
			Status:  resp.Status,
			Message: extractMessage(resp.Body),
		}
		if shouldTryNext(resp.Status) && !last {
			lastErr = upErr
			c.fallover(ctx, req.Service, base, upErr)
			continue
		}
		return nil, upErr
	}
	if lastErr == nil {
		lastErr = &UpstreamError{Service: req.Service, Err: errNoCandidates}
	}
	return nil, lastErr
}

func (c *Client) send(ctx context.Context, base string, req Request) (*Response, error) {
	target := base + ensureLeadingSlash(req.Path)
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, &UpstreamError{Service: req.Service, URL: target, Err: fmt.Errorf("encode request: %w", err)}
		}
		body = bytes.NewReader(payload)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, &UpstreamError{Service: req.Service, URL: target, Err: fmt.Errorf("build request: %w", err)}
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token := strings.TrimSpace(req.Token); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	if req.RequestID != "" {
		httpReq.Header.Set(requestIDHeader, req.RequestID)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &UpstreamError{Service: req.Service, URL: target, Err: err}
	}
	defer resp.Body.Close()

	limit := responseBodyLimit
	if resp.StatusCode >= 400 {
		limit = errorBodyLimit
	}
	payload, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, &UpstreamError{Service: req.Service, URL: target, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	return &Response{Status: resp.StatusCode, URL: target, Body: payload}, nil
}

func (c *Client) fallover(ctx context.Context, svc Service, base string, cause error) {
	c.metrics.IncFallover(string(svc))
	ctx = c.logg.WithFields(ctx, map[string]any{
		"upstream_service": string(svc),
		"upstream_base":    base,
		"cause":            cause.Error(),
	})
	c.logg.Warn(ctx, "backend candidate failed, trying next")
}

func (c *Client) mapError(svc Service, err error) *pkgerrors.Error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("%s service temporarily unavailable", svc)).
			WithDetails(map[string]any{"service": string(svc), "breaker": "open"})
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("%s service timed out", svc)).
			WithDetails(map[string]any{"service": string(svc)})
	}

	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("%s service call failed", svc))
	}
	if upErr.Status == 0 {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("%s service unreachable", svc)).
			WithDetails(map[string]any{"service": string(svc)})
	}

	code := pkgerrors.CodeForStatus(upErr.Status)
	message := upErr.Message
	if message == "" {
		message = fmt.Sprintf("%s service returned %d", svc, upErr.Status)
	}
	typed := pkgerrors.Wrap(code, err, message)
	if code == pkgerrors.CodeDependency {
		typed = typed.WithDetails(map[string]any{"service": string(svc), "status": upErr.Status})
	}
	return typed
}

func (c *Client) newBreaker(svc Service) *gobreaker.CircuitBreaker[*Response] {
	maxFailures := c.maxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	openTimeout := c.openTimeout
	if openTimeout <= 0 {
		openTimeout = 30 * time.Second
	}
	return gobreaker.NewCircuitBreaker[*Response](gobreaker.Settings{
		Name:        string(svc),
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			var upErr *UpstreamError
			if errors.As(err, &upErr) {
				return !upErr.outage()
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.metrics.SetBreakerState(name, int(to))
			ctx := c.logg.WithFields(context.Background(), map[string]any{
				"upstream_service": name,
				"from":             from.String(),
				"to":               to.String(),
			})
			c.logg.Warn(ctx, "backend circuit breaker state changed")
		},
	})
}

// shouldTryNext lists statuses that mean "this candidate is the wrong or a sick host".
func shouldTryNext(status int) bool {
	switch status {
	case http.StatusNotFound, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func cleanBaseURLs(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, u := range raw {
		u = strings.TrimRight(strings.TrimSpace(u), "/")
		if u == "" {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

func ensureLeadingSlash(p string) string {
	if p == "" || strings.HasPrefix(p, "/") {
		return p
	}
	return "/" + p
}
