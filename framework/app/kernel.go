package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/km-arc/go-koin/framework/config"
	"github.com/km-arc/go-koin/framework/container"
	"github.com/km-arc/go-koin/framework/logging"
	"github.com/km-arc/go-koin/framework/providers"
	"github.com/km-arc/go-koin/framework/routing"
)

const shutdownTimeout = 10 * time.Second

// Application is the top-level bean context.
// It embeds the Container and ModuleRegistry so user code can call
// container.Provide(app.Container, ...) and app.Register(...) directly.
type Application struct {
	*container.Container
	Modules *container.ModuleRegistry
}

// New loads configuration from envFiles, builds the logger and registers the
// framework modules. User modules are added with Register before Boot.
func New(envFiles ...string) (*Application, error) {
	cfg := config.Load(envFiles...)
	logger, err := logging.New(cfg)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(cfg, logger)
}

// NewWithConfig builds an Application from a ready Config and logger.
func NewWithConfig(cfg *config.Config, logger *zap.Logger) (*Application, error) {
	c := container.New(container.WithLogger(logger))
	c.AfterResolving(func(def container.BeanDefinition, inst any) {
		logger.Debug("bean built",
			zap.Stringer("type", def.Type),
			zap.String("name", def.Name),
			zap.Stringer("scope", def.Scope),
			zap.String("instance", fmt.Sprintf("%T", inst)),
		)
	})
	a := &Application{
		Container: c,
		Modules:   container.NewModuleRegistry(c),
	}

	for _, m := range []container.Module{
		&providers.ConfigModule{Config: cfg},
		&providers.LoggingModule{Logger: logger},
		&providers.PropertyModule{},
		&providers.RoutingModule{},
		&providers.InspectorModule{},
	} {
		if err := a.Register(m); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Register adds a module to the application.
func (a *Application) Register(m container.Module) error {
	return a.Modules.Register(m)
}

// Boot runs the Boot phase on all modules.
func (a *Application) Boot() error {
	return a.Modules.Boot()
}

// Config resolves *config.Config from the container.
func (a *Application) Config() *config.Config {
	return container.MustGet[*config.Config](a.Container)
}

// Logger resolves the application *zap.Logger.
func (a *Application) Logger() *zap.Logger {
	return container.MustGet[*zap.Logger](a.Container)
}

// Router resolves *routing.Router from the container.
func (a *Application) Router() *routing.Router {
	return container.MustGet[*routing.Router](a.Container)
}

// Run boots the application if needed and serves HTTP until SIGINT or
// SIGTERM, then shuts down gracefully and releases every scope.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return a.Serve(ctx)
}

// Serve is Run with a caller-controlled lifetime.
func (a *Application) Serve(ctx context.Context) error {
	if !a.Modules.Booted() {
		if err := a.Boot(); err != nil {
			return err
		}
	}
	cfg := a.Config()
	logger := a.Logger()

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           a.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("app: serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("app: shutdown: %w", err)
	}
	return a.releaseAll()
}

func (a *Application) releaseAll() error {
	return a.Release(a.DeclaredScopes()...)
}

// Environment returns APP_ENV value.
func (a *Application) Environment() string { return a.Config().App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
func (a *Application) IsDebug() bool       { return a.Config().App.Debug }
func (a *Application) Version() string     { return "0.1.0" }
