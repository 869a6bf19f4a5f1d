package variants

import (
	variantscmd "github.com/goliatone/go-cms-variants/internal/commands/variants"
	"github.com/goliatone/go-cms-variants/internal/di"
	"github.com/goliatone/go-cms-variants/internal/folders"
	"github.com/goliatone/go-cms-variants/internal/objecttags"
	"github.com/goliatone/go-cms-variants/internal/pages"
	"github.com/goliatone/go-cms-variants/internal/permissions"
	"github.com/goliatone/go-cms-variants/internal/variants"
	"github.com/goliatone/go-cms-variants/internal/visibility"
)

// Service exports the variant consistency engine contract.
type Service = variants.Service

type (
	Page       = pages.Page
	Folder     = folders.Folder
	Definition = objecttags.Definition
	ObjectTag  = objecttags.ObjectTag
	Payload    = objecttags.Payload
	SyncScope  = objecttags.SyncScope
)

type (
	DeleteLanguageVariantRequest = variants.DeleteLanguageVariantRequest
	DeleteFolderRequest          = variants.DeleteFolderRequest
	PurgePageRequest             = variants.PurgePageRequest
	RestorePageRequest           = variants.RestorePageRequest
	RestoreFolderRequest         = variants.RestoreFolderRequest
	WriteAttributeRequest        = variants.WriteAttributeRequest
	ReconcileAttributeRequest    = variants.ReconcileAttributeRequest
	CreateFolderRequest          = variants.CreateFolderRequest
	CreatePageRequest            = variants.CreatePageRequest
	TranslatePageRequest         = variants.TranslatePageRequest
	CreatePageVariantRequest     = variants.CreatePageVariantRequest
	RegisterDefinitionRequest    = variants.RegisterDefinitionRequest
	DeletionReport               = variants.DeletionReport
	SyncReport                   = variants.SyncReport
	SyncState                    = variants.SyncState
)

// CommandHandlers exports the go-command handlers wrapping the engine.
type CommandHandlers = variantscmd.Handlers

// Option customises the DI container built by New.
type Option = di.Option

const (
	SyncContentset = objecttags.SyncContentset
	SyncVariants   = objecttags.SyncVariants

	SyncStateInSync    = variants.SyncStateInSync
	SyncStateDiverged  = variants.SyncStateDiverged
	SyncStateAmbiguous = variants.SyncStateAmbiguous
)

var (
	NewPayload     = objecttags.NewPayload
	MustPayload    = objecttags.MustPayload
	NullPayload    = objecttags.NullPayload
	ParsePayload   = objecttags.ParsePayload
	ParseSyncScope = objecttags.ParseSyncScope

	// WithScope widens read operations to soft-deleted records.
	WithScope      = visibility.WithScope
	IncludeDeleted = visibility.IncludeDeleted
	OnlyDeleted    = visibility.OnlyDeleted

	WithLoggerProvider    = di.WithLoggerProvider
	WithBunDB             = di.WithBunDB
	WithStore             = di.WithStore
	WithPermissionChecker = di.WithPermissionChecker
	WithMetricsRegisterer = di.WithMetricsRegisterer
	WithActivitySink      = di.WithActivitySink
	WithActivityHooks     = di.WithActivityHooks
	WithClock             = di.WithClock
	WithCommandRegistry   = di.WithCommandRegistry
	WithCommandDispatcher = di.WithCommandDispatcher

	// WithPermissions grants the listed permission tokens to the acting context.
	WithPermissions = permissions.WithPermissions
)

// Module represents the top level variants runtime facade.
type Module struct {
	container *di.Container
}

// New constructs a variants module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Service returns the configured engine.
func (m *Module) Service() Service {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Service()
}

// Commands returns the command handlers, or nil when Config.Commands is disabled.
func (m *Module) Commands() *CommandHandlers {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.CommandHandlers()
}

// Close releases resources owned by the module.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}
