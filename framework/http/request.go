package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
)

const maxBody = 1 << 20 // 1 MB

var (
	// ErrEmptyBody is returned by Bind when the request has no body.
	ErrEmptyBody = errors.New("empty request body")

	// ErrNotJSON is returned by Bind when the body is declared as another media type.
	ErrNotJSON = errors.New("request body is not application/json")
)

// Request wraps *http.Request with small helpers.
type Request struct {
	raw *http.Request
}

// NewRequest wraps a standard *http.Request.
func NewRequest(r *http.Request) *Request {
	return &Request{raw: r}
}

// ── Binding ──────────────────────────────────────────────────────────────────

// Bind decodes a JSON request body into v. A body without Content-Type is
// assumed to be JSON.
func (req *Request) Bind(v any) error {
	defer req.raw.Body.Close()
	if req.ContentType() != "" && !req.IsJSON() {
		return ErrNotJSON
	}
	body, err := io.ReadAll(io.LimitReader(req.raw.Body, maxBody))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return ErrEmptyBody
	}
	return json.Unmarshal(body, v)
}

// ContentType returns the Content-Type header value.
func (req *Request) ContentType() string {
	return req.raw.Header.Get("Content-Type")
}

// IsJSON returns true when the request body is declared as JSON.
func (req *Request) IsJSON() bool {
	return strings.Contains(req.ContentType(), "application/json")
}
