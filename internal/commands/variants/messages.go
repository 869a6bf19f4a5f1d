package variantscmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-cms-variants/internal/objecttags"
	"github.com/google/uuid"
)

const (
	deleteLanguageVariantMessageType = "variants.pages.delete"
	deleteFolderMessageType          = "variants.folders.delete"
	purgePageMessageType             = "variants.pages.purge"
	restorePageMessageType           = "variants.pages.restore"
	restoreFolderMessageType         = "variants.folders.restore"
	writeAttributeMessageType        = "variants.attributes.write"
	reconcileAttributeMessageType    = "variants.attributes.reconcile"
)

// DeleteLanguageVariantCommand removes a page from its language variant group.
type DeleteLanguageVariantCommand struct {
	PageID    uuid.UUID `json:"page_id"`
	DeletedBy uuid.UUID `json:"deleted_by"`
}

// Type implements command.Message.
func (DeleteLanguageVariantCommand) Type() string { return deleteLanguageVariantMessageType }

// Validate ensures the command carries the required identifiers.
func (m DeleteLanguageVariantCommand) Validate() error {
	errs := validation.Errors{}
	requireID(errs, "page_id", deleteLanguageVariantMessageType, m.PageID)
	requireID(errs, "deleted_by", deleteLanguageVariantMessageType, m.DeletedBy)
	return result(errs)
}

// DeleteFolderCommand removes a folder and its live contents.
type DeleteFolderCommand struct {
	FolderID  uuid.UUID `json:"folder_id"`
	DeletedBy uuid.UUID `json:"deleted_by"`
}

// Type implements command.Message.
func (DeleteFolderCommand) Type() string { return deleteFolderMessageType }

func (m DeleteFolderCommand) Validate() error {
	errs := validation.Errors{}
	requireID(errs, "folder_id", deleteFolderMessageType, m.FolderID)
	requireID(errs, "deleted_by", deleteFolderMessageType, m.DeletedBy)
	return result(errs)
}

// PurgePageCommand hard-removes a wastebin entry.
type PurgePageCommand struct {
	PageID   uuid.UUID `json:"page_id"`
	PurgedBy uuid.UUID `json:"purged_by"`
}

// Type implements command.Message.
func (PurgePageCommand) Type() string { return purgePageMessageType }

func (m PurgePageCommand) Validate() error {
	errs := validation.Errors{}
	requireID(errs, "page_id", purgePageMessageType, m.PageID)
	requireID(errs, "purged_by", purgePageMessageType, m.PurgedBy)
	return result(errs)
}

// RestorePageCommand brings a page back from the wastebin.
type RestorePageCommand struct {
	PageID     uuid.UUID `json:"page_id"`
	RestoredBy uuid.UUID `json:"restored_by"`
}

// Type implements command.Message.
func (RestorePageCommand) Type() string { return restorePageMessageType }

func (m RestorePageCommand) Validate() error {
	errs := validation.Errors{}
	requireID(errs, "page_id", restorePageMessageType, m.PageID)
	requireID(errs, "restored_by", restorePageMessageType, m.RestoredBy)
	return result(errs)
}

// RestoreFolderCommand brings a folder and the contents deleted with it back.
type RestoreFolderCommand struct {
	FolderID   uuid.UUID `json:"folder_id"`
	RestoredBy uuid.UUID `json:"restored_by"`
}

// Type implements command.Message.
func (RestoreFolderCommand) Type() string { return restoreFolderMessageType }

func (m RestoreFolderCommand) Validate() error {
	errs := validation.Errors{}
	requireID(errs, "folder_id", restoreFolderMessageType, m.FolderID)
	requireID(errs, "restored_by", restoreFolderMessageType, m.RestoredBy)
	return result(errs)
}

// WriteAttributeCommand sets an attribute on a page and propagates it to the
// page's sync targets.
type WriteAttributeCommand struct {
	PageID    uuid.UUID          `json:"page_id"`
	Attribute string             `json:"attribute"`
	Value     objecttags.Payload `json:"value"`
	UpdatedBy uuid.UUID          `json:"updated_by"`
}

// Type implements command.Message.
func (WriteAttributeCommand) Type() string { return writeAttributeMessageType }

func (m WriteAttributeCommand) Validate() error {
	errs := validation.Errors{}
	requireID(errs, "page_id", writeAttributeMessageType, m.PageID)
	requireAttribute(errs, writeAttributeMessageType, m.Attribute)
	if !m.Value.IsSet() {
		errs["value"] = validation.NewError(writeAttributeMessageType+".value_required", "value is required, use null to clear")
	}
	requireID(errs, "updated_by", writeAttributeMessageType, m.UpdatedBy)
	return result(errs)
}

// ReconcileAttributeCommand re-propagates a page's current attribute value.
type ReconcileAttributeCommand struct {
	PageID    uuid.UUID `json:"page_id"`
	Attribute string    `json:"attribute"`
	UpdatedBy uuid.UUID `json:"updated_by"`
}

// Type implements command.Message.
func (ReconcileAttributeCommand) Type() string { return reconcileAttributeMessageType }

func (m ReconcileAttributeCommand) Validate() error {
	errs := validation.Errors{}
	requireID(errs, "page_id", reconcileAttributeMessageType, m.PageID)
	requireAttribute(errs, reconcileAttributeMessageType, m.Attribute)
	requireID(errs, "updated_by", reconcileAttributeMessageType, m.UpdatedBy)
	return result(errs)
}

func requireID(errs validation.Errors, field, messageType string, id uuid.UUID) {
	if id == uuid.Nil {
		errs[field] = validation.NewError(messageType+"."+field+"_required", field+" is required")
	}
}

func requireAttribute(errs validation.Errors, messageType, attribute string) {
	if err := validation.Validate(strings.TrimSpace(attribute),
		validation.Required.ErrorObject(validation.NewError(messageType+".attribute_required", "attribute is required")),
		validation.Length(1, 128),
	); err != nil {
		errs["attribute"] = err
	}
}

func result(errs validation.Errors) error {
	if len(errs) > 0 {
		return errs
	}
	return nil
}
