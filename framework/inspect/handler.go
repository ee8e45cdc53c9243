// Package inspect exposes a running container over HTTP: declared beans,
// scopes and their cache sizes, scope release and property access.
//
//	GET  {prefix}/beans
//	GET  {prefix}/tags
//	GET  {prefix}/scopes
//	POST {prefix}/scopes/{scope}/release     {scope} is a scope ID or short name
//	GET  {prefix}/properties
//	GET  {prefix}/properties/{key}
//	PUT  {prefix}/properties/{key}     {"value": ...}
package inspect

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/km-arc/go-koin/framework/container"
	gohttp "github.com/km-arc/go-koin/framework/http"
	"github.com/km-arc/go-koin/framework/routing"
)

// keyLister is implemented by property stores that can enumerate their keys.
type keyLister interface {
	Keys() []string
}

// Handler serves the inspector routes for one container.
type Handler struct {
	c      *container.Container
	logger *zap.Logger
}

// NewHandler creates a Handler for c, logging through the container's logger.
func NewHandler(c *container.Container) *Handler {
	return &Handler{c: c, logger: c.Logger().Named("inspect")}
}

// Routes registers the inspector endpoints on r. Responses are marked
// uncacheable since they reflect live container state.
func (h *Handler) Routes(r *routing.Router) {
	r.Middleware(middleware.NoCache)
	r.Get("/beans", h.beans)
	r.Get("/tags", h.tags)
	r.Get("/scopes", h.scopes)
	r.Post("/scopes/{scope}/release", h.release)
	r.Get("/properties", h.propertyKeys)
	r.Get("/properties/{key}", h.property)
	r.Put("/properties/{key}", h.setProperty)
}

func (h *Handler) beans(w http.ResponseWriter, _ *http.Request) {
	gohttp.NewResponse(w).Success(h.c.Definitions())
}

func (h *Handler) tags(w http.ResponseWriter, _ *http.Request) {
	gohttp.NewResponse(w).Success(h.c.Tags())
}

func (h *Handler) scopes(w http.ResponseWriter, _ *http.Request) {
	gohttp.NewResponse(w).Success(h.c.Scopes())
}

func (h *Handler) release(w http.ResponseWriter, r *http.Request) {
	res := gohttp.NewResponse(w)
	name, ok := param(r, "scope")
	if !ok {
		res.BadRequest("Malformed scope name.")
		return
	}
	scope, err := h.c.LookupScope(name)
	if err != nil {
		h.fail(res, err)
		return
	}
	if err := h.c.Release(scope); err != nil {
		h.fail(res, err)
		return
	}
	h.logger.Info("scope released", zap.Stringer("scope", scope))
	res.Success(h.c.Scopes())
}

func (h *Handler) propertyKeys(w http.ResponseWriter, _ *http.Request) {
	res := gohttp.NewResponse(w)
	lister, ok := h.c.Properties().(keyLister)
	if !ok {
		res.Error(http.StatusNotImplemented, "Property store cannot list keys.")
		return
	}
	res.Success(lister.Keys())
}

func (h *Handler) property(w http.ResponseWriter, r *http.Request) {
	res := gohttp.NewResponse(w)
	key, ok := param(r, "key")
	if !ok {
		res.BadRequest("Malformed property key.")
		return
	}
	v, ok := h.c.Property(key)
	if !ok {
		res.NotFound("Unknown property " + key + ".")
		return
	}
	res.Success(map[string]any{"key": key, "value": v})
}

func (h *Handler) setProperty(w http.ResponseWriter, r *http.Request) {
	req, res := gohttp.NewRequest(r), gohttp.NewResponse(w)
	key, ok := param(r, "key")
	if !ok {
		res.BadRequest("Malformed property key.")
		return
	}
	var body struct {
		Value any `json:"value"`
	}
	if err := req.Bind(&body); err != nil {
		if errors.Is(err, gohttp.ErrNotJSON) {
			res.Error(http.StatusUnsupportedMediaType, err.Error())
			return
		}
		res.BadRequest(err.Error())
		return
	}
	h.c.SetProperty(key, body.Value)
	h.logger.Info("property set", zap.String("key", key))
	res.Success(map[string]any{"key": key, "value": body.Value})
}

func (h *Handler) fail(res *gohttp.Response, err error) {
	var (
		scopeErr     *container.ScopeNotFoundError
		ambiguousErr *container.AmbiguousScopeError
	)
	switch {
	case errors.As(err, &scopeErr):
		res.NotFound(err.Error())
		return
	case errors.As(err, &ambiguousErr):
		res.Error(http.StatusConflict, err.Error())
		return
	}
	h.logger.Error("inspector request failed", zap.Error(err))
	res.ServerError(err.Error())
}

// param returns a path-unescaped route parameter.
func param(r *http.Request, key string) (string, bool) {
	v, err := url.PathUnescape(routing.Param(r, key))
	if err != nil || v == "" {
		return "", false
	}
	return v, true
}
