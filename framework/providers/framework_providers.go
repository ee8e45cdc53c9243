// Package providers holds the framework modules the application kernel
// registers before any user module.
package providers

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/km-arc/go-koin/framework/config"
	"github.com/km-arc/go-koin/framework/container"
	"github.com/km-arc/go-koin/framework/inspect"
	"github.com/km-arc/go-koin/framework/logging"
	"github.com/km-arc/go-koin/framework/property"
	"github.com/km-arc/go-koin/framework/routing"
)

// ── ConfigModule ──────────────────────────────────────────────────────────────

// ConfigModule declares *config.Config in the root scope.
//
// A preloaded Config is declared as-is; otherwise it is loaded from EnvFiles
// on first resolution.
type ConfigModule struct {
	container.BaseModule
	EnvFiles []string
	Config   *config.Config
}

func (m *ConfigModule) Register(c *container.Container) error {
	if m.Config != nil {
		return container.ProvideValue(c, m.Config)
	}
	envFiles := m.EnvFiles
	return container.Provide(c, func(container.Resolver) (*config.Config, error) {
		return config.Load(envFiles...), nil
	})
}

// ── LoggingModule ─────────────────────────────────────────────────────────────

// LoggingModule declares the application *zap.Logger. Without a preset
// Logger it is built from *config.Config.
type LoggingModule struct {
	container.BaseModule
	Logger *zap.Logger
}

func (m *LoggingModule) Register(c *container.Container) error {
	if m.Logger != nil {
		return container.ProvideValue(c, m.Logger)
	}
	return container.Provide(c, func(r container.Resolver) (*zap.Logger, error) {
		cfg, err := container.Get[*config.Config](r)
		if err != nil {
			return nil, err
		}
		return logging.New(cfg)
	})
}

// ── PropertyModule ────────────────────────────────────────────────────────────

// PropertyModule exposes the container's *property.Store as a bean, also
// resolvable as container.PropertyResolver, and on boot fills it from the
// files and environment prefix in Config.Properties.
type PropertyModule struct{}

func (m *PropertyModule) Register(c *container.Container) error {
	if err := container.Provide(c, func(container.Resolver) (*property.Store, error) {
		store, ok := c.Properties().(*property.Store)
		if !ok {
			return nil, fmt.Errorf("providers: property store is %T, not *property.Store", c.Properties())
		}
		return store, nil
	}); err != nil {
		return err
	}
	return container.Alias[container.PropertyResolver, *property.Store](c)
}

func (m *PropertyModule) Boot(c *container.Container) error {
	cfg, err := container.Get[*config.Config](c)
	if err != nil {
		return err
	}

	// Load into a scratch store so any PropertyResolver can receive the values.
	loaded := property.NewStore()
	if err := loaded.LoadFiles(cfg.Properties.Files...); err != nil {
		return err
	}
	if cfg.Properties.EnvPrefix != "" {
		loaded.LoadEnviron(cfg.Properties.EnvPrefix)
	}
	for _, key := range loaded.Keys() {
		v, _ := loaded.GetProperty(key)
		c.SetProperty(key, v)
	}

	c.Logger().Debug("properties loaded",
		zap.Int("count", len(loaded.Keys())),
		zap.Strings("files", cfg.Properties.Files),
	)
	return nil
}

// ── RoutingModule ─────────────────────────────────────────────────────────────

// RoutingModule declares the HTTP *routing.Router, access-logging through the
// application logger.
type RoutingModule struct {
	container.BaseModule
}

func (m *RoutingModule) Register(c *container.Container) error {
	return container.Provide(c, func(r container.Resolver) (*routing.Router, error) {
		logger, err := container.Get[*zap.Logger](r)
		if err != nil {
			return nil, err
		}
		return routing.New(logger.Named("http")), nil
	})
}

// ── InspectorModule ───────────────────────────────────────────────────────────

// InspectorModule declares *inspect.Handler and, when Config.Inspector is
// enabled, mounts it on the router under Config.Inspector.Prefix at boot.
type InspectorModule struct{}

func (m *InspectorModule) Register(c *container.Container) error {
	return container.Provide(c, func(container.Resolver) (*inspect.Handler, error) {
		return inspect.NewHandler(c), nil
	})
}

func (m *InspectorModule) Boot(c *container.Container) error {
	cfg, err := container.Get[*config.Config](c)
	if err != nil {
		return err
	}
	if !cfg.Inspector.Enabled {
		return nil
	}

	router, err := container.Get[*routing.Router](c)
	if err != nil {
		return err
	}
	handler, err := container.Get[*inspect.Handler](c)
	if err != nil {
		return err
	}
	router.Prefix(cfg.Inspector.Prefix, handler.Routes)
	c.Logger().Info("inspector mounted", zap.String("prefix", cfg.Inspector.Prefix))
	return nil
}
