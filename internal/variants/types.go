package variants

import (
	"context"
	"errors"

	"github.com/goliatone/go-cms-variants/internal/folders"
	"github.com/goliatone/go-cms-variants/internal/objecttags"
	"github.com/goliatone/go-cms-variants/internal/pages"
	"github.com/google/uuid"
)

// Service exposes the variant consistency use-cases.
type Service interface {
	DeleteLanguageVariant(ctx context.Context, req DeleteLanguageVariantRequest) (*DeletionReport, error)
	DeleteFolder(ctx context.Context, req DeleteFolderRequest) (*DeletionReport, error)
	PurgePage(ctx context.Context, req PurgePageRequest) (*DeletionReport, error)
	RestorePage(ctx context.Context, req RestorePageRequest) (*pages.Page, error)
	RestoreFolder(ctx context.Context, req RestoreFolderRequest) (*folders.Folder, error)

	WriteSyncedAttribute(ctx context.Context, req WriteAttributeRequest) error
	ReconcileSyncedAttribute(ctx context.Context, req ReconcileAttributeRequest) error
	CheckAttributeSync(ctx context.Context, pageID uuid.UUID, attribute string) ([]uuid.UUID, error)
	CheckAttributeSyncReport(ctx context.Context, pageID uuid.UUID, attribute string) (*SyncReport, error)
	ReadAttribute(ctx context.Context, pageID uuid.UUID, attribute string) (objecttags.Payload, error)

	GetPage(ctx context.Context, id uuid.UUID) (*pages.Page, error)
	LanguageVariants(ctx context.Context, pageID uuid.UUID) ([]*pages.Page, error)
	PageVariants(ctx context.Context, pageID uuid.UUID) ([]*pages.Page, error)
	Wastebin(ctx context.Context, folderID uuid.UUID) ([]*pages.Page, error)

	CreateFolder(ctx context.Context, req CreateFolderRequest) (*folders.Folder, error)
	CreatePage(ctx context.Context, req CreatePageRequest) (*pages.Page, error)
	TranslatePage(ctx context.Context, req TranslatePageRequest) (*pages.Page, error)
	CreatePageVariant(ctx context.Context, req CreatePageVariantRequest) (*pages.Page, error)
	RegisterDefinition(ctx context.Context, req RegisterDefinitionRequest) (*objecttags.Definition, error)
}

// DeleteLanguageVariantRequest removes one page from its language variant group.
type DeleteLanguageVariantRequest struct {
	PageID    uuid.UUID
	DeletedBy uuid.UUID
}

// DeleteFolderRequest removes a folder together with its live contents.
type DeleteFolderRequest struct {
	FolderID  uuid.UUID
	DeletedBy uuid.UUID
}

// PurgePageRequest hard-removes a page sitting in the wastebin.
type PurgePageRequest struct {
	PageID   uuid.UUID
	PurgedBy uuid.UUID
}

// RestorePageRequest brings a soft-deleted page back.
type RestorePageRequest struct {
	PageID     uuid.UUID
	RestoredBy uuid.UUID
}

// RestoreFolderRequest brings a soft-deleted folder back.
type RestoreFolderRequest struct {
	FolderID   uuid.UUID
	RestoredBy uuid.UUID
}

// WriteAttributeRequest sets an attribute value on a page. Synchronized
// attributes propagate the value to every live sync target.
type WriteAttributeRequest struct {
	PageID    uuid.UUID
	Attribute string
	Value     objecttags.Payload
	UpdatedBy uuid.UUID
}

// ReconcileAttributeRequest re-propagates the page's current value.
type ReconcileAttributeRequest struct {
	PageID    uuid.UUID
	Attribute string
	UpdatedBy uuid.UUID
}

// CreateFolderRequest captures a new folder. A nil MotherID creates a root folder.
type CreateFolderRequest struct {
	Name      string
	MotherID  *uuid.UUID
	CreatedBy uuid.UUID
}

// CreatePageRequest creates a page backed by a new content body.
type CreatePageRequest struct {
	FolderID  uuid.UUID
	Language  string
	Name      string
	CreatedBy uuid.UUID
}

// TranslatePageRequest adds a language variant to the page's content body.
// FolderID defaults to the folder of the translated page.
type TranslatePageRequest struct {
	PageID    uuid.UUID
	Language  string
	Name      string
	FolderID  *uuid.UUID
	CreatedBy uuid.UUID
}

// CreatePageVariantRequest copies a page into a folder as a page variant. The
// copy gets its own content body and records the page as its origin.
type CreatePageVariantRequest struct {
	PageID    uuid.UUID
	FolderID  uuid.UUID
	Name      string
	CreatedBy uuid.UUID
}

// RegisterDefinitionRequest declares an attribute definition.
type RegisterDefinitionRequest struct {
	Keyword    string
	TargetType string
	Sync       objecttags.SyncScope
	Schema     map[string]any
}

// DeletionReport lists what a delete operation removed. DeletedIDs holds every
// page touched, in the order they were removed.
type DeletionReport struct {
	DeletedIDs  []uuid.UUID `json:"deleted_ids"`
	SoftDeleted []uuid.UUID `json:"soft_deleted,omitempty"`
	Purged      []uuid.UUID `json:"purged,omitempty"`
	Folders     []uuid.UUID `json:"folders,omitempty"`
	Cascaded    bool        `json:"cascaded"`
}

func (r *DeletionReport) softDeleted(id uuid.UUID) {
	r.DeletedIDs = append(r.DeletedIDs, id)
	r.SoftDeleted = append(r.SoftDeleted, id)
}

func (r *DeletionReport) purged(id uuid.UUID) {
	for _, existing := range r.SoftDeleted {
		if existing == id {
			r.Purged = append(r.Purged, id)
			return
		}
	}
	r.DeletedIDs = append(r.DeletedIDs, id)
	r.Purged = append(r.Purged, id)
}

// SyncState summarises a synchronization check.
type SyncState string

const (
	SyncStateInSync    SyncState = "in_sync"
	SyncStateDiverged  SyncState = "diverged"
	SyncStateAmbiguous SyncState = "ambiguous"
)

// SyncReport is the outcome of comparing a page's attribute value with its
// live sync targets. Divergent never contains the reference page.
type SyncReport struct {
	PageID    uuid.UUID          `json:"page_id"`
	Attribute string             `json:"attribute"`
	Reference objecttags.Payload `json:"reference"`
	Divergent []uuid.UUID        `json:"divergent"`
	Checked   int                `json:"checked"`
	State     SyncState          `json:"state"`
}

var (
	ErrPageIDRequired     = errors.New("variants: page id required")
	ErrFolderIDRequired   = errors.New("variants: folder id required")
	ErrAttributeRequired  = errors.New("variants: attribute keyword required")
	ErrLanguageRequired   = errors.New("variants: language required")
	ErrNameInvalid        = errors.New("variants: name cannot be normalized")
	ErrDuplicateLanguage  = errors.New("variants: language already present in variant group")
	ErrPageNotDeleted     = errors.New("variants: page is not in the wastebin")
	ErrFolderCycle        = errors.New("variants: folder hierarchy contains a cycle")
	ErrTargetTypeMismatch = errors.New("variants: definition does not target pages")
)
