package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gohttp "github.com/km-arc/go-koin/framework/http"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func newResponse(t *testing.T) (*gohttp.Response, *httptest.ResponseRecorder) {
	t.Helper()
	rr := httptest.NewRecorder()
	return gohttp.NewResponse(rr), rr
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&m))
	return m
}

// ── Response ──────────────────────────────────────────────────────────────────

func TestResponse_JSON(t *testing.T) {
	res, rr := newResponse(t)
	res.JSON(http.StatusOK, map[string]any{"key": "val"})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, "val", decodeJSON(t, rr)["key"])
}

func TestResponse_Success(t *testing.T) {
	res, rr := newResponse(t)
	res.Success(map[string]any{"id": 1})

	assert.Equal(t, http.StatusOK, rr.Code)
	data, ok := decodeJSON(t, rr)["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), data["id"])
}

func TestResponse_NoContent(t *testing.T) {
	res, rr := newResponse(t)
	res.NoContent()

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Zero(t, rr.Body.Len())
}

func TestResponse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		send    func(*gohttp.Response)
		status  int
		message string
	}{
		{"Error", func(r *gohttp.Response) { r.Error(http.StatusTeapot, "short and stout") }, http.StatusTeapot, "short and stout"},
		{"BadRequest default", func(r *gohttp.Response) { r.BadRequest() }, http.StatusBadRequest, "Bad request."},
		{"NotFound custom", func(r *gohttp.Response) { r.NotFound("no scope") }, http.StatusNotFound, "no scope"},
		{"ServerError default", func(r *gohttp.Response) { r.ServerError() }, http.StatusInternalServerError, "Server Error."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, rr := newResponse(t)
			tt.send(res)
			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.message, decodeJSON(t, rr)["message"])
		})
	}
}

// ── Request ───────────────────────────────────────────────────────────────────

func TestRequest_Bind(t *testing.T) {
	r := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"value":"x"}`))
	r.Header.Set("Content-Type", "application/json")

	var body struct {
		Value string `json:"value"`
	}
	req := gohttp.NewRequest(r)
	require.NoError(t, req.Bind(&body))
	assert.Equal(t, "x", body.Value)
	assert.True(t, req.IsJSON())
}

func TestRequest_Bind_EmptyBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(""))
	var body map[string]any
	assert.ErrorIs(t, gohttp.NewRequest(r).Bind(&body), gohttp.ErrEmptyBody)
}

func TestRequest_Bind_RejectsOtherMediaType(t *testing.T) {
	r := httptest.NewRequest(http.MethodPut, "/", strings.NewReader("value=x"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var body map[string]any
	req := gohttp.NewRequest(r)
	assert.False(t, req.IsJSON())
	assert.ErrorIs(t, req.Bind(&body), gohttp.ErrNotJSON)
}

func TestRequest_Bind_InvalidJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodPut, "/", strings.NewReader("{nope"))
	var body map[string]any
	assert.Error(t, gohttp.NewRequest(r).Bind(&body))
}

func TestRequest_IsJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.False(t, gohttp.NewRequest(r).IsJSON())

	r.Header.Set("Content-Type", "application/json; charset=utf-8")
	assert.True(t, gohttp.NewRequest(r).IsJSON())
}
