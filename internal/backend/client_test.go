package backend

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/florista/bouquet-bff/pkg/config"
	pkgerrors "github.com/florista/bouquet-bff/pkg/errors"
	"github.com/florista/bouquet-bff/pkg/metrics"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func backendConfig(orderURLs ...string) config.BackendConfig {
	return config.BackendConfig{
		AuthURLs:           []string{"http://auth.internal"},
		ProductURLs:        []string{"http://product.internal"},
		OrderURLs:          orderURLs,
		PaymentURLs:        []string{"http://payment.internal"},
		Timeout:            time.Second,
		BreakerMaxFailures: 3,
		BreakerOpenTimeout: time.Minute,
	}
}

func newTestClient(t *testing.T, rt roundTripFunc, orderURLs ...string) *Client {
	t.Helper()
	client, err := NewClient(backendConfig(orderURLs...), WithHTTPClient(&http.Client{Transport: rt}))
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresCandidates(t *testing.T) {
	_, err := NewClient(backendConfig())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errNoCandidates))

	_, err = NewClient(backendConfig(" ", "/"))
	require.Error(t, err)
}

func TestDoFallsOverOnRetryableStatuses(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout} {
		var hosts []string
		client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
			hosts = append(hosts, req.URL.Host)
			if req.URL.Host == "a.internal" {
				return jsonResponse(status, `{}`), nil
			}
			return jsonResponse(http.StatusOK, `{"data":{"ok":true}}`), nil
		}, "http://a.internal", "http://b.internal/")

		resp, err := client.Do(context.Background(), Request{Service: ServiceOrder, Path: "/cart"})
		require.NoError(t, err, "status %d", status)
		assert.Equal(t, []string{"a.internal", "b.internal"}, hosts)
		assert.Equal(t, "http://b.internal/cart", resp.URL)
	}
}

func TestDoFallsOverOnTransportError(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		if req.URL.Host == "down.internal" {
			return nil, errors.New("connection refused")
		}
		return jsonResponse(http.StatusOK, `[]`), nil
	}, "http://down.internal", "http://up.internal")

	_, err := client.Do(context.Background(), Request{Service: ServiceOrder, Path: "orders"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestDoStopsOnFinalStatus(t *testing.T) {
	tests := []struct {
		status int
		body   string
		code   pkgerrors.Code
		msg    string
	}{
		{http.StatusBadRequest, `{"message":"quantity must be positive"}`, pkgerrors.CodeValidation, "quantity must be positive"},
		{http.StatusUnprocessableEntity, `{"errors":[{"message":"bad date"}]}`, pkgerrors.CodeValidation, "bad date"},
		{http.StatusUnauthorized, `{"error":"token expired"}`, pkgerrors.CodeUnauthorized, "token expired"},
		{http.StatusForbidden, `{"error":{"message":"admins only"}}`, pkgerrors.CodeForbidden, "admins only"},
		{http.StatusConflict, `{"detail":"already cancelled"}`, pkgerrors.CodeConflict, "already cancelled"},
		{http.StatusTooManyRequests, `slow down`, pkgerrors.CodeRateLimit, "slow down"},
		{http.StatusInternalServerError, `<html>boom</html>`, pkgerrors.CodeDependency, "order service returned 500"},
	}

	for _, tt := range tests {
		var calls int32
		client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
			atomic.AddInt32(&calls, 1)
			return jsonResponse(tt.status, tt.body), nil
		}, "http://a.internal", "http://b.internal")

		_, err := client.Do(context.Background(), Request{Service: ServiceOrder, Method: http.MethodPost, Path: "/orders", Body: map[string]any{"x": 1}})
		require.Error(t, err)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed, "status %d", tt.status)
		assert.Equal(t, tt.code, typed.Code(), "status %d", tt.status)
		assert.Equal(t, tt.msg, typed.Message(), "status %d", tt.status)
		assert.EqualValues(t, 1, atomic.LoadInt32(&calls), "status %d must not fall over", tt.status)

		dump := pkgerrors.Dump(err)
		assert.Equal(t, "order", dump.UpstreamService)
		assert.Equal(t, tt.status, dump.UpstreamStatus)
	}
}

func TestDoLastCandidateStatusIsMapped(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusNotFound, `{"message":"order not found"}`), nil
	}, "http://a.internal", "http://b.internal")

	_, err := client.Do(context.Background(), Request{Service: ServiceOrder, Path: "/orders/9"})
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
	assert.Equal(t, "order not found", pkgerrors.As(err).Message())
}

func TestDoAllCandidatesUnreachable(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("dial tcp: no route to host")
	}, "http://a.internal", "http://b.internal")

	_, err := client.Do(context.Background(), Request{Service: ServiceOrder, Path: "/orders"})
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeDependency))
	assert.Contains(t, pkgerrors.Dump(err).UpstreamURL, "b.internal")
}

func TestDoForwardsHeadersAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer backend-token", r.Header.Get("Authorization"))
		assert.Equal(t, "req-123", r.Header.Get("X-Request-Id"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "/api/cart/items", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"product_id":"p1","quantity":2}`, string(body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"items":[]}}`))
	}))
	defer server.Close()

	client, err := NewClient(backendConfig(server.URL + "/api"))
	require.NoError(t, err)

	resp, err := client.Do(context.Background(), Request{
		Service:   ServiceOrder,
		Method:    http.MethodPost,
		Path:      "/cart/items",
		Query:     map[string][]string{"limit": {"2"}},
		Body:      map[string]any{"product_id": "p1", "quantity": 2},
		Token:     "backend-token",
		RequestID: "req-123",
	})
	require.NoError(t, err)
	assert.True(t, resp.Decode().Exists())
}

func TestDoOmitsAuthorizationWithoutToken(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		assert.Empty(t, req.Header.Get("Authorization"))
		return jsonResponse(http.StatusOK, `{}`), nil
	}, "http://a.internal")
	_, err := client.Do(context.Background(), Request{Service: ServiceProduct, Path: "/products"})
	require.NoError(t, err)
}

func TestBreakerOpensOnOutagesOnly(t *testing.T) {
	reg := prometheus.NewRegistry()
	var status int32 = http.StatusBadRequest
	var calls int32
	client, err := NewClient(backendConfig("http://a.internal"),
		WithHTTPClient(&http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			atomic.AddInt32(&calls, 1)
			return jsonResponse(int(atomic.LoadInt32(&status)), `{}`), nil
		})}),
		WithMetrics(metrics.NewUpstreamMetrics(reg)),
	)
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := client.Do(ctx, Request{Service: ServiceOrder, Path: "/orders"})
		assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
	}
	assert.Equal(t, gobreaker.StateClosed, client.BreakerStates()[ServiceOrder], "client errors must not trip the breaker")

	atomic.StoreInt32(&status, http.StatusInternalServerError)
	for i := 0; i < 3; i++ {
		_, _ = client.Do(ctx, Request{Service: ServiceOrder, Path: "/orders"})
	}
	assert.Equal(t, gobreaker.StateOpen, client.BreakerStates()[ServiceOrder])
	assert.Equal(t, gobreaker.StateClosed, client.BreakerStates()[ServiceProduct], "breakers are per service")

	before := atomic.LoadInt32(&calls)
	_, err = client.Do(ctx, Request{Service: ServiceOrder, Path: "/orders"})
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeDependency))
	assert.Equal(t, before, atomic.LoadInt32(&calls), "open breaker short-circuits")

	mfs, err := reg.Gather()
	require.NoError(t, err)
	var sawGauge bool
	for _, mf := range mfs {
		if mf.GetName() == "upstream_breaker_state" {
			sawGauge = true
		}
	}
	assert.True(t, sawGauge)
}

func TestDoUnknownService(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		t.Fatal("no request expected")
		return nil, nil
	}, "http://a.internal")
	_, err := client.Do(context.Background(), Request{Service: "florist", Path: "/"})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeInternal))
}

func TestDoCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		cancel()
		return nil, req.Context().Err()
	}, "http://a.internal", "http://b.internal")

	_, err := client.Do(ctx, Request{Service: ServiceOrder, Path: "/orders"})
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeDependency))
	assert.Equal(t, gobreaker.StateClosed, client.BreakerStates()[ServiceOrder])
}

func TestExtractMessage(t *testing.T) {
	tests := map[string]string{
		`{"message":"nope"}`:                   "nope",
		`{"error":"bad"}`:                      "bad",
		`{"error":{"message":"nested"}}`:       "nested",
		`{"detail":"detail text"}`:             "detail text",
		`{"errors":["first","second"]}`:        "first",
		`{"errors":[{"msg":"validator msg"}]}`: "validator msg",
		`plain text`:                           "plain text",
		`<!doctype html><p>x</p>`:              "",
		``:                                     "",
	}
	for body, want := range tests {
		assert.Equal(t, want, extractMessage([]byte(body)), body)
	}
	assert.Len(t, extractMessage([]byte(strings.Repeat("x", 1000))), maxMessageLen)

	long := `{"message":"` + strings.Repeat("x", maxMessageLen-1) + `élan"}`
	cut := extractMessage([]byte(long))
	assert.True(t, utf8.ValidString(cut), "message must stay valid UTF-8")
	assert.Len(t, cut, maxMessageLen-1)
}
