package di

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-cms-variants/internal/commands"
	variantscmd "github.com/goliatone/go-cms-variants/internal/commands/variants"
	"github.com/goliatone/go-cms-variants/internal/logging"
	"github.com/goliatone/go-cms-variants/internal/logging/console"
	"github.com/goliatone/go-cms-variants/internal/logging/gologger"
	"github.com/goliatone/go-cms-variants/internal/metrics"
	"github.com/goliatone/go-cms-variants/internal/permissions"
	"github.com/goliatone/go-cms-variants/internal/runtimeconfig"
	"github.com/goliatone/go-cms-variants/internal/store"
	"github.com/goliatone/go-cms-variants/internal/variants"
	"github.com/goliatone/go-cms-variants/pkg/activity"
	"github.com/goliatone/go-cms-variants/pkg/activity/usersink"
	"github.com/goliatone/go-cms-variants/pkg/interfaces"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
)

// CommandRegistry records command handlers so hosts can expose them via CLI or queues.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CommandDispatcher subscribes handlers to a dispatcher and returns the subscription.
type CommandDispatcher interface {
	RegisterCommand(handler any) (CommandSubscription, error)
}

// CommandSubscription releases a dispatcher registration.
type CommandSubscription interface {
	Unsubscribe()
}

// Container wires module dependencies from runtime configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider

	bunDB         *bun.DB
	ownsDB        bool
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer
	store         store.Store

	checker    interfaces.PermissionChecker
	registerer prometheus.Registerer
	registry   *prometheus.Registry
	recorder   metrics.Recorder

	activitySink  interfaces.ActivitySink
	activityHooks activity.Hooks
	emitter       *activity.Emitter

	clock   func() time.Time
	service variants.Service

	commandRegistry   CommandRegistry
	commandDispatcher CommandDispatcher
	handlers          *variantscmd.Handlers
	subscriptions     []CommandSubscription
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider selected from Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithBunDB supplies an existing connection for bun storage. The container
// does not close connections it did not open.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the definition cache service.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithStore bypasses storage configuration entirely.
func WithStore(st store.Store) Option {
	return func(c *Container) {
		c.store = st
	}
}

// WithPermissionChecker overrides the configured authorizer.
func WithPermissionChecker(checker interfaces.PermissionChecker) Option {
	return func(c *Container) {
		c.checker = checker
	}
}

// WithMetricsRegisterer registers engine collectors with reg instead of a
// private registry.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(c *Container) {
		c.registerer = reg
	}
}

// WithActivitySink forwards activity events to a go-users compatible sink.
func WithActivitySink(sink interfaces.ActivitySink) Option {
	return func(c *Container) {
		c.activitySink = sink
	}
}

// WithActivityHooks appends hooks that receive activity events.
func WithActivityHooks(hooks ...activity.Hook) Option {
	return func(c *Container) {
		c.activityHooks = append(c.activityHooks, hooks...)
	}
}

// WithClock overrides the engine clock.
func WithClock(clock func() time.Time) Option {
	return func(c *Container) {
		c.clock = clock
	}
}

// WithService overrides the engine service binding.
func WithService(service variants.Service) Option {
	return func(c *Container) {
		c.service = service
	}
}

// WithCommandRegistry registers command handlers with reg when commands are enabled.
func WithCommandRegistry(reg CommandRegistry) Option {
	return func(c *Container) {
		c.commandRegistry = reg
	}
}

// WithCommandDispatcher subscribes command handlers when commands are enabled.
func WithCommandDispatcher(dispatcher CommandDispatcher) Option {
	return func(c *Container) {
		c.commandDispatcher = dispatcher
	}
}

// NewContainer validates cfg and wires the engine.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	if err := c.configureStore(context.Background()); err != nil {
		return nil, err
	}
	c.configureAuthorizer()
	c.configureMetrics()
	c.configureActivity()
	c.configureService()
	if err := c.configureCommands(); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil || !c.Config.Features.Logger {
		return nil
	}
	switch normalize(c.Config.Logging.Provider) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     c.Config.Logging.Level,
			Format:    c.Config.Logging.Format,
			AddSource: c.Config.Logging.AddSource,
			Focus:     c.Config.Logging.Focus,
		})
		if err != nil {
			return fmt.Errorf("di: configure gologger: %w", err)
		}
		c.loggerProvider = provider
	default:
		opts := console.Options{}
		if level, ok := console.ParseLevel(c.Config.Logging.Level); ok {
			opts.MinLevel = &level
		}
		c.loggerProvider = console.NewProvider(opts)
	}
	return nil
}

func (c *Container) configureStore(ctx context.Context) error {
	if c.store != nil {
		return nil
	}
	logger := logging.StoreLogger(c.loggerProvider)
	if normalize(c.Config.Storage.Provider) != runtimeconfig.StorageBun {
		c.store = store.NewMemoryStore()
		logger.Debug("store.configured", "provider", runtimeconfig.StorageMemory)
		return nil
	}

	if c.bunDB == nil {
		db, err := store.Open(ctx, c.Config.StorageConnection())
		if err != nil {
			return err
		}
		c.bunDB = db
		c.ownsDB = true
	}
	if c.Config.Storage.AutoMigrate {
		if err := store.Migrate(ctx, c.bunDB); err != nil {
			_ = c.Close()
			return err
		}
	}

	var bunOpts []store.BunOption
	c.configureCacheDefaults()
	if c.cacheService != nil {
		bunOpts = append(bunOpts, store.WithDefinitionCache(c.cacheService, c.keySerializer))
	}
	c.store = store.NewBunStore(c.bunDB, bunOpts...)
	logger.Debug("store.configured",
		"provider", runtimeconfig.StorageBun,
		"driver", c.Config.StorageConnection().NormalizedDriver(),
		"cache", c.cacheService != nil,
	)
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.Config.Cache.DefaultTTL > 0 {
			cfg.TTL = c.Config.Cache.DefaultTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureAuthorizer() {
	if c.checker != nil || !c.Config.Features.Permissions {
		return
	}
	c.checker = permissions.NewAuthorizer(
		permissions.WithStrategy(permissions.StrategyByName(c.Config.Permissions.Strategy)),
		permissions.WithRequireChecker(c.Config.Permissions.RequireChecker),
	)
}

func (c *Container) configureMetrics() {
	if !c.Config.Features.Metrics {
		c.recorder = metrics.NoOp()
		return
	}
	if c.registerer == nil {
		c.registry = prometheus.NewRegistry()
		c.registerer = c.registry
	}
	c.recorder = metrics.NewPrometheus(c.registerer)
}

func (c *Container) configureActivity() {
	if !c.Config.Features.Activity {
		return
	}
	hooks := append(activity.Hooks{}, c.activityHooks...)
	if c.activitySink != nil {
		hooks = append(hooks, usersink.Hook{Sink: c.activitySink})
	}
	c.emitter = activity.NewEmitter(hooks, activity.Config{
		Enabled: true,
		Channel: c.Config.Activity.Channel,
	})
}

func (c *Container) configureService() {
	if c.service != nil {
		return
	}
	opts := []variants.ServiceOption{
		variants.WithLogger(logging.EngineLogger(c.loggerProvider)),
		variants.WithMetrics(c.recorder),
		variants.WithWastebin(c.Config.Wastebin.Enabled),
		variants.WithConflictRetries(c.Config.Retry.ConflictRetries),
	}
	if c.checker != nil {
		opts = append(opts, variants.WithPermissionChecker(c.checker))
	}
	if c.emitter != nil {
		opts = append(opts, variants.WithActivityEmitter(c.emitter))
	}
	if c.clock != nil {
		opts = append(opts, variants.WithClock(c.clock))
	}
	c.service = variants.NewService(c.store, opts...)
}

func (c *Container) configureCommands() error {
	if !c.Config.Commands.Enabled {
		return nil
	}
	logger := commands.CommandLogger(c.loggerProvider, "variants")
	c.handlers = variantscmd.NewHandlers(c.service, logger, c.Config.Commands.Timeout)

	for _, handler := range c.handlers.All() {
		if c.commandRegistry != nil {
			if err := c.commandRegistry.RegisterCommand(handler); err != nil {
				return fmt.Errorf("di: register command: %w", err)
			}
		}
		if c.commandDispatcher != nil {
			sub, err := c.commandDispatcher.RegisterCommand(handler)
			if err != nil {
				return fmt.Errorf("di: subscribe command: %w", err)
			}
			c.subscriptions = append(c.subscriptions, sub)
		}
	}
	logger.Debug("commands.configured",
		"handlers", len(c.handlers.All()),
		"subscriptions", len(c.subscriptions),
	)
	return nil
}

// Service returns the configured engine service.
func (c *Container) Service() variants.Service {
	return c.service
}

// Store returns the store backing units of work.
func (c *Container) Store() store.Store {
	return c.store
}

// CommandHandlers returns the command handlers, or nil when commands are disabled.
func (c *Container) CommandHandlers() *variantscmd.Handlers {
	return c.handlers
}

// LoggerProvider returns the configured logger provider, if any.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// MetricsGatherer exposes the private registry created when metrics are on
// and no registerer was supplied.
func (c *Container) MetricsGatherer() prometheus.Gatherer {
	if c.registry == nil {
		return nil
	}
	return c.registry
}

// Close releases command subscriptions and any connection the container opened.
func (c *Container) Close() error {
	for _, sub := range c.subscriptions {
		if sub != nil {
			sub.Unsubscribe()
		}
	}
	c.subscriptions = nil
	if c.ownsDB && c.bunDB != nil {
		err := c.bunDB.Close()
		c.bunDB = nil
		c.ownsDB = false
		return err
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
