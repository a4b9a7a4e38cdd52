package backend

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/florista/bouquet-bff/internal/normalize"
)

// UpstreamError describes a failed call to a backend service. Status is 0 when
// no HTTP response was received.
type UpstreamError struct {
	Service Service
	URL     string
	Status  int
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s upstream %s: %v", e.Service, e.URL, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s upstream %s returned %d: %s", e.Service, e.URL, e.Status, e.Message)
	}
	return fmt.Sprintf("%s upstream %s returned %d", e.Service, e.URL, e.Status)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func (e *UpstreamError) UpstreamService() string { return string(e.Service) }
func (e *UpstreamError) UpstreamStatus() int     { return e.Status }
func (e *UpstreamError) UpstreamURL() string     { return e.URL }

// outage reports whether the failure says something about the service's health
// rather than about the request.
func (e *UpstreamError) outage() bool {
	return e.Status == 0 || e.Status >= 500
}

var messagePaths = []string{
	"message", "error", "error.message", "detail", "errors.0", "errors.0.message", "errors.0.msg",
	"msg", "data.message",
}

const maxMessageLen = 300

// extractMessage pulls a human readable message from an error body.
func extractMessage(body []byte) string {
	raw := normalize.Decode(body)
	if !raw.Exists() {
		text := strings.TrimSpace(string(body))
		if strings.HasPrefix(text, "<") {
			return ""
		}
		return truncate(text)
	}
	return truncate(normalize.NewCoercer("upstream_error", raw).String(messagePaths...))
}

// truncate caps s at maxMessageLen bytes without splitting a rune.
func truncate(s string) string {
	if len(s) <= maxMessageLen {
		return s
	}
	cut := maxMessageLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
