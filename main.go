package main

import (
	"fmt"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/km-arc/go-koin/framework/app"
	"github.com/km-arc/go-koin/framework/config"
	"github.com/km-arc/go-koin/framework/container"
	gohttp "github.com/km-arc/go-koin/framework/http"
	"github.com/km-arc/go-koin/framework/routing"
)

// ── Demo beans ────────────────────────────────────────────────────────────────

// Repository is a root-scoped singleton.
type Repository struct {
	greeting string
}

// Session owns a scope; each session gets its own Cart.
type Session struct{}

// Cart lives in the Session scope and is dropped when the scope is released.
type Cart struct {
	ID    int64
	Repo  *Repository
	Items []string
}

// Check reports on one dependency for GET /health.
type Check interface {
	Name() string
	Healthy() bool
}

func (r *Repository) Name() string  { return "repository" }
func (r *Repository) Healthy() bool { return r.greeting != "" }

// Stopwatch is transient: each request gets its own.
type Stopwatch struct{ start time.Time }

var carts atomic.Int64

// ShopModule declares the demo beans and mounts its routes at boot.
type ShopModule struct{}

func (ShopModule) Register(c *container.Container) error {
	if err := container.Provide(c, func(r container.Resolver) (*Repository, error) {
		greeting, _, err := container.GetProperty[string](c, "greeting")
		if err != nil {
			return nil, err
		}
		if greeting == "" {
			greeting = "Welcome to go-koin!"
		}
		return &Repository{greeting: greeting}, nil
	}); err != nil {
		return err
	}

	if err := container.Extend(c, func(repo *Repository, r container.Resolver) (*Repository, error) {
		cfg, err := container.Get[*config.Config](r)
		if err != nil {
			return nil, err
		}
		repo.greeting += " [" + cfg.App.Name + "]"
		return repo, nil
	}); err != nil {
		return err
	}
	if err := container.TagBean[*Repository](c, "health"); err != nil {
		return err
	}
	if err := container.ProvideFactory(c, func(container.Resolver) (*Stopwatch, error) {
		return &Stopwatch{start: time.Now()}, nil
	}); err != nil {
		return err
	}

	session := container.DeclareScopeFor[*Session](c)
	return container.ProvideAt(c, session, func(r container.Resolver) (*Cart, error) {
		repo, err := container.Get[*Repository](r)
		if err != nil {
			return nil, err
		}
		return &Cart{ID: carts.Add(1), Repo: repo}, nil
	})
}

func (ShopModule) Boot(c *container.Container) error {
	router, err := container.Get[*routing.Router](c)
	if err != nil {
		return err
	}

	router.Get("/", func(w http.ResponseWriter, req *http.Request) {
		res := gohttp.NewResponse(w)
		repo, err := container.Get[*Repository](c)
		if err != nil {
			res.ServerError(err.Error())
			return
		}
		res.Success(map[string]any{"message": repo.greeting})
	})

	router.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		res := gohttp.NewResponse(w)
		watch := container.MustGet[*Stopwatch](c)
		checks, err := container.GetTagged[Check](c, "health")
		if err != nil {
			res.ServerError(err.Error())
			return
		}
		report := make(map[string]bool, len(checks))
		for _, check := range checks {
			report[check.Name()] = check.Healthy()
		}
		res.Success(map[string]any{"checks": report, "elapsed": time.Since(watch.start).String()})
	})

	router.Prefix("/cart", func(cart *routing.Router) {
		cart.Get("/", func(w http.ResponseWriter, req *http.Request) {
			res := gohttp.NewResponse(w)
			current, err := container.Get[*Cart](c)
			if err != nil {
				res.ServerError(err.Error())
				return
			}
			res.Success(current)
		})

		cart.Delete("/", func(w http.ResponseWriter, req *http.Request) {
			res := gohttp.NewResponse(w)
			if err := c.Release(container.ScopeFor[*Session]()); err != nil {
				res.ServerError(err.Error())
				return
			}
			res.NoContent()
		})
	})
	return nil
}

func main() {
	application, err := app.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := application.Register(ShopModule{}); err != nil {
		application.Logger().Fatal("register", zap.Error(err))
	}
	if err := application.Run(); err != nil {
		application.Logger().Fatal("server", zap.Error(err))
	}
}
