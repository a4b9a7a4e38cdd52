// Package backendtest provides an in-memory backend.Caller for service tests.
package backendtest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/florista/bouquet-bff/internal/backend"
	pkgerrors "github.com/florista/bouquet-bff/pkg/errors"
)

// Handler answers one recorded request.
type Handler func(req backend.Request) (*backend.Response, error)

// Fake routes requests by "SERVICE METHOD /path" and records every call.
type Fake struct {
	mu     sync.Mutex
	routes map[string]Handler
	calls  []backend.Request
}

// New returns an empty fake; unrouted requests fail with NOT_FOUND.
func New() *Fake {
	return &Fake{routes: make(map[string]Handler)}
}

func routeKey(svc backend.Service, method, path string) string {
	if method == "" {
		method = http.MethodGet
	}
	return fmt.Sprintf("%s %s %s", svc, strings.ToUpper(method), path)
}

// Handle registers h for the service, method and exact path.
func (f *Fake) Handle(svc backend.Service, method, path string, h Handler) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[routeKey(svc, method, path)] = h
	return f
}

// JSON registers a fixed JSON body answered with 200.
func (f *Fake) JSON(svc backend.Service, method, path, body string) *Fake {
	return f.Handle(svc, method, path, func(backend.Request) (*backend.Response, error) {
		return &backend.Response{Status: http.StatusOK, Body: []byte(body)}, nil
	})
}

// Fail registers an error answer.
func (f *Fake) Fail(svc backend.Service, method, path string, err error) *Fake {
	return f.Handle(svc, method, path, func(backend.Request) (*backend.Response, error) {
		return nil, err
	})
}

// Do implements backend.Caller.
func (f *Fake) Do(ctx context.Context, req backend.Request) (*backend.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "request cancelled")
	}
	f.mu.Lock()
	f.calls = append(f.calls, req)
	h, ok := f.routes[routeKey(req.Service, req.Method, req.Path)]
	f.mu.Unlock()
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("no route for %s", routeKey(req.Service, req.Method, req.Path)))
	}
	return h(req)
}

// Calls returns a snapshot of the recorded requests.
func (f *Fake) Calls() []backend.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]backend.Request, len(f.calls))
	copy(out, f.calls)
	return out
}

// Last returns the most recent request, or the zero value.
func (f *Fake) Last() backend.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return backend.Request{}
	}
	return f.calls[len(f.calls)-1]
}

// BodyJSON re-encodes a recorded request body as a JSON string.
func BodyJSON(req backend.Request) string {
	if req.Body == nil {
		return ""
	}
	payload, err := json.Marshal(req.Body)
	if err != nil {
		return ""
	}
	return string(payload)
}
