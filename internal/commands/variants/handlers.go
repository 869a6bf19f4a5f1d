package variantscmd

import (
	"context"
	"time"

	"github.com/goliatone/go-cms-variants/internal/commands"
	"github.com/goliatone/go-cms-variants/internal/variants"
	"github.com/goliatone/go-cms-variants/pkg/interfaces"
	command "github.com/goliatone/go-command"
	"github.com/google/uuid"
)

// Handlers groups the command handlers backed by a variants service.
type Handlers struct {
	DeleteLanguageVariant *commands.Handler[DeleteLanguageVariantCommand]
	DeleteFolder          *commands.Handler[DeleteFolderCommand]
	PurgePage             *commands.Handler[PurgePageCommand]
	RestorePage           *commands.Handler[RestorePageCommand]
	RestoreFolder         *commands.Handler[RestoreFolderCommand]
	WriteAttribute        *commands.Handler[WriteAttributeCommand]
	ReconcileAttribute    *commands.Handler[ReconcileAttributeCommand]
}

// NewHandlers wires one handler per command message. A zero timeout keeps
// the command layer default.
func NewHandlers(service variants.Service, logger interfaces.Logger, timeout time.Duration) *Handlers {
	logger = commands.EnsureLogger(logger)
	timeout = commands.ResolveTimeout(timeout)

	return &Handlers{
		DeleteLanguageVariant: newHandler(logger, timeout, "variants.pages.delete",
			func(ctx context.Context, msg DeleteLanguageVariantCommand) error {
				report, err := service.DeleteLanguageVariant(ctx, variants.DeleteLanguageVariantRequest{PageID: msg.PageID, DeletedBy: msg.DeletedBy})
				if err == nil {
					logReport(ctx, logger, report)
				}
				return err
			},
			func(msg DeleteLanguageVariantCommand) map[string]any {
				return idFields("page_id", msg.PageID, "deleted_by", msg.DeletedBy)
			}),
		DeleteFolder: newHandler(logger, timeout, "variants.folders.delete",
			func(ctx context.Context, msg DeleteFolderCommand) error {
				report, err := service.DeleteFolder(ctx, variants.DeleteFolderRequest{FolderID: msg.FolderID, DeletedBy: msg.DeletedBy})
				if err == nil {
					logReport(ctx, logger, report)
				}
				return err
			},
			func(msg DeleteFolderCommand) map[string]any {
				return idFields("folder_id", msg.FolderID, "deleted_by", msg.DeletedBy)
			}),
		PurgePage: newHandler(logger, timeout, "variants.pages.purge",
			func(ctx context.Context, msg PurgePageCommand) error {
				report, err := service.PurgePage(ctx, variants.PurgePageRequest{PageID: msg.PageID, PurgedBy: msg.PurgedBy})
				if err == nil {
					logReport(ctx, logger, report)
				}
				return err
			},
			func(msg PurgePageCommand) map[string]any {
				return idFields("page_id", msg.PageID, "purged_by", msg.PurgedBy)
			}),
		RestorePage: newHandler(logger, timeout, "variants.pages.restore",
			func(ctx context.Context, msg RestorePageCommand) error {
				_, err := service.RestorePage(ctx, variants.RestorePageRequest{PageID: msg.PageID, RestoredBy: msg.RestoredBy})
				return err
			},
			func(msg RestorePageCommand) map[string]any {
				return idFields("page_id", msg.PageID, "restored_by", msg.RestoredBy)
			}),
		RestoreFolder: newHandler(logger, timeout, "variants.folders.restore",
			func(ctx context.Context, msg RestoreFolderCommand) error {
				_, err := service.RestoreFolder(ctx, variants.RestoreFolderRequest{FolderID: msg.FolderID, RestoredBy: msg.RestoredBy})
				return err
			},
			func(msg RestoreFolderCommand) map[string]any {
				return idFields("folder_id", msg.FolderID, "restored_by", msg.RestoredBy)
			}),
		WriteAttribute: newHandler(logger, timeout, "variants.attributes.write",
			func(ctx context.Context, msg WriteAttributeCommand) error {
				return service.WriteSyncedAttribute(ctx, variants.WriteAttributeRequest{
					PageID:    msg.PageID,
					Attribute: msg.Attribute,
					Value:     msg.Value,
					UpdatedBy: msg.UpdatedBy,
				})
			},
			func(msg WriteAttributeCommand) map[string]any {
				fields := idFields("page_id", msg.PageID, "updated_by", msg.UpdatedBy)
				fields["attribute"] = msg.Attribute
				return fields
			}),
		ReconcileAttribute: newHandler(logger, timeout, "variants.attributes.reconcile",
			func(ctx context.Context, msg ReconcileAttributeCommand) error {
				return service.ReconcileSyncedAttribute(ctx, variants.ReconcileAttributeRequest{
					PageID:    msg.PageID,
					Attribute: msg.Attribute,
					UpdatedBy: msg.UpdatedBy,
				})
			},
			func(msg ReconcileAttributeCommand) map[string]any {
				fields := idFields("page_id", msg.PageID, "updated_by", msg.UpdatedBy)
				fields["attribute"] = msg.Attribute
				return fields
			}),
	}
}

// All lists the handlers in registration order.
func (h *Handlers) All() []any {
	return []any{
		h.DeleteLanguageVariant,
		h.DeleteFolder,
		h.PurgePage,
		h.RestorePage,
		h.RestoreFolder,
		h.WriteAttribute,
		h.ReconcileAttribute,
	}
}

func newHandler[T command.Message](logger interfaces.Logger, timeout time.Duration, operation string, exec command.CommandFunc[T], fields func(T) map[string]any) *commands.Handler[T] {
	return commands.NewHandler(exec,
		commands.WithLogger[T](logger),
		commands.WithOperation[T](operation),
		commands.WithTimeout[T](timeout),
		commands.WithMessageFields(fields),
		commands.WithTelemetry(commands.DefaultTelemetry[T](logger)),
		commands.WithErrorClassifier[T](Classify),
	)
}

func logReport(ctx context.Context, logger interfaces.Logger, report *variants.DeletionReport) {
	if report == nil {
		return
	}
	logger.WithContext(ctx).Debug("variants.command.delete.report",
		"deleted", len(report.DeletedIDs),
		"purged", len(report.Purged),
		"cascaded", report.Cascaded,
	)
}

func idFields(firstKey string, first uuid.UUID, secondKey string, second uuid.UUID) map[string]any {
	fields := map[string]any{}
	if first != uuid.Nil {
		fields[firstKey] = first
	}
	if second != uuid.Nil {
		fields[secondKey] = second
	}
	return fields
}
