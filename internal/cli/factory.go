// Package cli wires configuration into engines, stores and runners for the
// colloquy command.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/colloquy"
	"github.com/aretw0/colloquy/internal/config"
	"github.com/aretw0/colloquy/internal/prompt"
	"github.com/aretw0/colloquy/pkg/adapters/llm"
	loamAdapter "github.com/aretw0/colloquy/pkg/adapters/loam"
	"github.com/aretw0/colloquy/pkg/adapters/memory"
	"github.com/aretw0/colloquy/pkg/adapters/redis"
	"github.com/aretw0/colloquy/pkg/observability"
	"github.com/aretw0/colloquy/pkg/persistence/middleware"
	"github.com/aretw0/colloquy/pkg/ports"
	"github.com/aretw0/colloquy/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
)

// Components is everything a host needs to run turns.
type Components struct {
	Engine   *colloquy.Engine
	Store    ports.StateStore
	Sessions *session.Manager
	Metrics  *observability.Metrics
	Registry *prometheus.Registry
	Logger   *slog.Logger
}

// BuildOptions tweak Build for tests and special commands.
type BuildOptions struct {
	// LLM overrides the configured backend.
	LLM ports.LLMProvider
	// Debug adds logging lifecycle hooks.
	Debug bool
}

// Build creates the engine, store and session manager described by cfg.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts BuildOptions) (*Components, error) {
	provider := opts.LLM
	if provider == nil {
		p, err := llm.New(ctx, llm.Config{
			Backend:    cfg.LLM.Backend,
			Model:      cfg.LLM.Model,
			APIKey:     cfg.LLM.APIKey,
			OllamaHost: cfg.LLM.OllamaHost,
		})
		if err != nil {
			return nil, fmt.Errorf("error initializing LLM: %w", err)
		}
		provider = p
	}

	templates, err := newTemplates(cfg.Templates)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	if err != nil {
		return nil, fmt.Errorf("error registering metrics: %w", err)
	}
	hooks := metrics.Hooks()
	if opts.Debug {
		hooks = hooks.Merge(observability.LogHooks(logger))
	}

	engine := colloquy.New(
		colloquy.WithLLM(provider),
		colloquy.WithTemplates(templates),
		colloquy.WithLogger(logger),
		colloquy.WithLifecycleHooks(hooks),
		colloquy.WithGenerateConfig(ports.GenerateConfig{
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
		}),
	)

	store, locker, err := OpenStore(cfg.Store)
	if err != nil {
		return nil, err
	}
	sessOpts := []session.Option{
		session.WithLogger(logger),
		session.WithLockTTL(cfg.Session.LockTTL),
	}
	if locker != nil {
		sessOpts = append(sessOpts, session.WithLocker(locker))
	}

	return &Components{
		Engine:   engine,
		Store:    store,
		Sessions: session.NewManager(store, sessOpts...),
		Metrics:  metrics,
		Registry: reg,
		Logger:   logger,
	}, nil
}

// newTemplates serves templates from cfg.Dir when set, falling back to the embedded defaults.
func newTemplates(cfg config.TemplatesConfig) (ports.TemplateProvider, error) {
	defaults := memory.NewTemplates()
	prompt.SeedDefaults(defaults, "")
	if cfg.ProjectID != "" {
		prompt.SeedDefaults(defaults, cfg.ProjectID)
	}

	var provider ports.TemplateProvider = defaults
	if cfg.Dir != "" {
		t, err := loamAdapter.Open(cfg.Dir, loamAdapter.WithFallback(defaults))
		if err != nil {
			return nil, fmt.Errorf("error opening templates at %s: %w", cfg.Dir, err)
		}
		provider = t
	}
	if cfg.ProjectID == "" {
		return provider, nil
	}
	return defaultProject{TemplateProvider: provider, id: cfg.ProjectID}, nil
}

// defaultProject substitutes a configured project for scripts that name none.
type defaultProject struct {
	ports.TemplateProvider
	id string
}

func (d defaultProject) GetTemplate(ctx context.Context, projectID, path string) (string, error) {
	if projectID == "" {
		projectID = d.id
	}
	return d.TemplateProvider.GetTemplate(ctx, projectID, path)
}

func (d defaultProject) HasTemplate(ctx context.Context, projectID, path string) bool {
	if projectID == "" {
		projectID = d.id
	}
	return d.TemplateProvider.HasTemplate(ctx, projectID, path)
}

// OpenStore builds the configured state store, wrapped in the configured middlewares.
// The locker is nil for the memory driver.
func OpenStore(cfg config.StoreConfig) (ports.StateStore, ports.DistributedLocker, error) {
	var (
		store  ports.StateStore
		locker ports.DistributedLocker
	)
	if strings.ToLower(cfg.Driver) == config.DriverRedis {
		rs := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithPrefix(cfg.Redis.Prefix),
			redis.WithTTL(cfg.Redis.TTL),
		)
		store, locker = rs, redis.NewLocker(rs.Client(), cfg.Redis.Prefix)
	} else {
		store = memory.NewStore()
	}

	mws, err := storeMiddlewares(cfg)
	if err != nil {
		return nil, nil, err
	}
	return middleware.Chain(store, mws...), locker, nil
}

// storeMiddlewares masks before it encrypts, so masked values never reach the ciphertext.
func storeMiddlewares(cfg config.StoreConfig) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if len(cfg.MaskPatterns) > 0 {
		pii, err := middleware.NewPIIMiddleware(cfg.MaskPatterns)
		if err != nil {
			return nil, fmt.Errorf("store.mask_patterns: %w", err)
		}
		mws = append(mws, pii)
	}
	if cfg.EncryptionKey == "" {
		return mws, nil
	}

	active, err := middleware.DecodeKey(cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("store.encryption_key: %w", err)
	}
	encCfg := middleware.EncryptionConfig{ActiveKey: active}
	for i, k := range cfg.FallbackKeys {
		key, err := middleware.DecodeKey(k)
		if err != nil {
			return nil, fmt.Errorf("store.fallback_keys[%d]: %w", i, err)
		}
		encCfg.FallbackKeys = append(encCfg.FallbackKeys, key)
	}
	enc, err := middleware.NewEncryptionMiddleware(encCfg)
	if err != nil {
		return nil, err
	}
	return append(mws, enc), nil
}
