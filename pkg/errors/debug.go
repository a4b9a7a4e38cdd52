package errors

import (
	"errors"
	"fmt"
)

// upstreamFailure is implemented by errors raised while talking to a backend service.
type upstreamFailure interface {
	UpstreamService() string
	UpstreamStatus() int
	UpstreamURL() string
}

type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	UpstreamService string `json:"upstream_service,omitempty"`
	UpstreamStatus  int    `json:"upstream_status,omitempty"`
	UpstreamURL     string `json:"upstream_url,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{
		TopMessage: err.Error(),
	}

	if te := As(err); te != nil {
		d.Code = te.Code()
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var upstream upstreamFailure
	if errors.As(err, &upstream) {
		d.UpstreamService = upstream.UpstreamService()
		d.UpstreamStatus = upstream.UpstreamStatus()
		d.UpstreamURL = upstream.UpstreamURL()
	}

	return d
}
