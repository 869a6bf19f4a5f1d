package variants

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-cms-variants/internal/domain"
	"github.com/goliatone/go-cms-variants/internal/folders"
	"github.com/goliatone/go-cms-variants/internal/identity"
	"github.com/goliatone/go-cms-variants/internal/logging"
	"github.com/goliatone/go-cms-variants/internal/metrics"
	"github.com/goliatone/go-cms-variants/internal/objecttags"
	"github.com/goliatone/go-cms-variants/internal/pages"
	"github.com/goliatone/go-cms-variants/internal/permissions"
	"github.com/goliatone/go-cms-variants/internal/store"
	"github.com/goliatone/go-cms-variants/internal/validation"
	"github.com/goliatone/go-cms-variants/internal/visibility"
	"github.com/goliatone/go-cms-variants/pkg/activity"
	"github.com/goliatone/go-cms-variants/pkg/interfaces"
	"github.com/goliatone/go-slug"
	"github.com/google/uuid"
)

// ServiceOption configures the service at construction time.
type ServiceOption func(*service)

// WithClock overrides the clock used to stamp records.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

type IDGenerator func() uuid.UUID

func WithIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPermissionChecker guards every mutation with checker. Without one all
// operations are allowed.
func WithPermissionChecker(checker interfaces.PermissionChecker) ServiceOption {
	return func(s *service) {
		s.checker = checker
	}
}

// WithActivityEmitter publishes an activity event after each committed mutation.
func WithActivityEmitter(emitter *activity.Emitter) ServiceOption {
	return func(s *service) {
		s.activity = emitter
	}
}

func WithMetrics(recorder metrics.Recorder) ServiceOption {
	return func(s *service) {
		if recorder != nil {
			s.metrics = recorder
		}
	}
}

// WithWastebin toggles soft deletes. When disabled deletes purge immediately.
func WithWastebin(enabled bool) ServiceOption {
	return func(s *service) {
		s.wastebin = enabled
	}
}

// WithConflictRetries sets how many times a unit of work that lost a
// concurrency race is replayed before the conflict is returned.
func WithConflictRetries(retries int) ServiceOption {
	return func(s *service) {
		if retries < 0 {
			retries = 0
		}
		s.retries = retries
	}
}

type service struct {
	store    store.Store
	resolver *Resolver
	planner  *Planner
	tracker  *Tracker
	restorer *Restorer

	now      func() time.Time
	id       IDGenerator
	logger   interfaces.Logger
	checker  interfaces.PermissionChecker
	activity *activity.Emitter
	metrics  metrics.Recorder
	wastebin bool
	retries  int
}

// NewService constructs the engine over st. The wastebin is enabled and a
// conflicting unit of work is retried once unless options say otherwise.
func NewService(st store.Store, opts ...ServiceOption) Service {
	s := &service{
		store:    st,
		now:      time.Now,
		id:       uuid.New,
		logger:   logging.NoOp(),
		metrics:  metrics.NoOp(),
		wastebin: true,
		retries:  1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.resolver = NewResolver()
	s.planner = NewPlanner(s.resolver, s.wastebin)
	s.tracker = NewTracker(s.resolver)
	s.restorer = NewRestorer()
	return s
}

func (s *service) DeleteLanguageVariant(ctx context.Context, req DeleteLanguageVariantRequest) (*DeletionReport, error) {
	const operation = "delete_language_variant"
	if req.PageID == uuid.Nil {
		return nil, ErrPageIDRequired
	}
	if err := s.authorize(ctx, domain.ObjectTypePage, req.PageID, string(permissions.ActionDelete)); err != nil {
		return nil, s.fail(ctx, operation, domain.ObjectTypePage, req.PageID, err)
	}

	scope := visibility.FromContext(ctx)
	var report *DeletionReport
	err := s.run(ctx, operation, func(ctx context.Context, tx store.Tx) error {
		page, err := tx.Pages().GetByID(ctx, req.PageID, scope)
		if err != nil {
			return err
		}
		deleteRun := NewDeleteRun(req.DeletedBy, s.timestamp()).Guarded(page.ID, s.authorize)
		if err := s.planner.DeleteLanguageVariant(ctx, tx, page, deleteRun); err != nil {
			return err
		}
		report = deleteRun.Report
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, operation, domain.ObjectTypePage, req.PageID, err)
	}
	s.deleted(ctx, operation, domain.ObjectTypePage, req.PageID, req.DeletedBy, report)
	return report, nil
}

func (s *service) DeleteFolder(ctx context.Context, req DeleteFolderRequest) (*DeletionReport, error) {
	const operation = "delete_folder"
	if req.FolderID == uuid.Nil {
		return nil, ErrFolderIDRequired
	}
	if err := s.authorize(ctx, domain.ObjectTypeFolder, req.FolderID, string(permissions.ActionDelete)); err != nil {
		return nil, s.fail(ctx, operation, domain.ObjectTypeFolder, req.FolderID, err)
	}

	var report *DeletionReport
	err := s.run(ctx, operation, func(ctx context.Context, tx store.Tx) error {
		folder, err := tx.Folders().GetByID(ctx, req.FolderID, visibility.ExcludeDeleted)
		if err != nil {
			return err
		}
		deleteRun := NewDeleteRun(req.DeletedBy, s.timestamp()).Guarded(folder.ID, s.authorize)
		if err := s.planner.DeleteFolder(ctx, tx, folder, deleteRun); err != nil {
			return err
		}
		report = deleteRun.Report
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, operation, domain.ObjectTypeFolder, req.FolderID, err)
	}
	s.deleted(ctx, operation, domain.ObjectTypeFolder, req.FolderID, req.DeletedBy, report)
	return report, nil
}

func (s *service) PurgePage(ctx context.Context, req PurgePageRequest) (*DeletionReport, error) {
	const operation = "purge_page"
	if req.PageID == uuid.Nil {
		return nil, ErrPageIDRequired
	}
	if err := s.authorize(ctx, domain.ObjectTypePage, req.PageID, string(permissions.ActionPurge)); err != nil {
		return nil, s.fail(ctx, operation, domain.ObjectTypePage, req.PageID, err)
	}

	var report *DeletionReport
	err := s.run(ctx, operation, func(ctx context.Context, tx store.Tx) error {
		page, err := tx.Pages().GetByID(ctx, req.PageID, visibility.IncludeDeleted)
		if err != nil {
			return err
		}
		deleteRun := NewDeleteRun(req.PurgedBy, s.timestamp()).Guarded(page.ID, s.authorize)
		if err := s.planner.PurgePage(ctx, tx, page, deleteRun); err != nil {
			return err
		}
		report = deleteRun.Report
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, operation, domain.ObjectTypePage, req.PageID, err)
	}
	s.deleted(ctx, operation, domain.ObjectTypePage, req.PageID, req.PurgedBy, report)
	return report, nil
}

func (s *service) RestorePage(ctx context.Context, req RestorePageRequest) (*pages.Page, error) {
	const operation = "restore_page"
	if req.PageID == uuid.Nil {
		return nil, ErrPageIDRequired
	}
	if err := s.authorize(ctx, domain.ObjectTypePage, req.PageID, string(permissions.ActionRestore)); err != nil {
		return nil, s.fail(ctx, operation, domain.ObjectTypePage, req.PageID, err)
	}

	var (
		restored *pages.Page
		result   *RestoreResult
	)
	err := visibility.Run(ctx, visibility.IncludeDeleted, func(ctx context.Context) error {
		return s.run(ctx, operation, func(ctx context.Context, tx store.Tx) error {
			page, err := tx.Pages().GetByID(ctx, req.PageID, visibility.FromContext(ctx))
			if err != nil {
				return err
			}
			restored, result, err = s.restorer.RestorePage(ctx, tx, page, req.RestoredBy, s.timestamp())
			return err
		})
	})
	if err != nil {
		return nil, s.fail(ctx, operation, domain.ObjectTypePage, req.PageID, err)
	}
	s.restored(ctx, operation, domain.ObjectTypePage, req.PageID, req.RestoredBy, result)
	return restored, nil
}

func (s *service) RestoreFolder(ctx context.Context, req RestoreFolderRequest) (*folders.Folder, error) {
	const operation = "restore_folder"
	if req.FolderID == uuid.Nil {
		return nil, ErrFolderIDRequired
	}
	if err := s.authorize(ctx, domain.ObjectTypeFolder, req.FolderID, string(permissions.ActionRestore)); err != nil {
		return nil, s.fail(ctx, operation, domain.ObjectTypeFolder, req.FolderID, err)
	}

	var (
		restored *folders.Folder
		result   *RestoreResult
	)
	err := s.run(ctx, operation, func(ctx context.Context, tx store.Tx) error {
		folder, err := tx.Folders().GetByID(ctx, req.FolderID, visibility.IncludeDeleted)
		if err != nil {
			return err
		}
		restored, result, err = s.restorer.RestoreFolder(ctx, tx, folder, req.RestoredBy, s.timestamp())
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, operation, domain.ObjectTypeFolder, req.FolderID, err)
	}
	s.restored(ctx, operation, domain.ObjectTypeFolder, req.FolderID, req.RestoredBy, result)
	return restored, nil
}

func (s *service) WriteSyncedAttribute(ctx context.Context, req WriteAttributeRequest) error {
	const operation = "write_attribute"
	definition, err := s.attributeDefinition(ctx, req.PageID, req.Attribute, string(permissions.ActionUpdate))
	if err != nil {
		return s.fail(ctx, operation, domain.ObjectTypePage, req.PageID, err)
	}

	scope := visibility.FromContext(ctx)
	var result *WriteResult
	err = s.run(ctx, operation, func(ctx context.Context, tx store.Tx) error {
		page, err := tx.Pages().GetByID(ctx, req.PageID, scope)
		if err != nil {
			return err
		}
		result, err = s.tracker.Write(ctx, tx, definition, page, req.Value, req.UpdatedBy, s.timestamp())
		return err
	})
	if err != nil {
		return s.fail(ctx, operation, domain.ObjectTypePage, req.PageID, err)
	}
	s.written(ctx, operation, definition, req.PageID, req.UpdatedBy, result)
	return nil
}

func (s *service) ReconcileSyncedAttribute(ctx context.Context, req ReconcileAttributeRequest) error {
	const operation = "reconcile_attribute"
	definition, err := s.attributeDefinition(ctx, req.PageID, req.Attribute, string(permissions.ActionUpdate))
	if err != nil {
		return s.fail(ctx, operation, domain.ObjectTypePage, req.PageID, err)
	}

	scope := visibility.FromContext(ctx)
	var result *WriteResult
	err = s.run(ctx, operation, func(ctx context.Context, tx store.Tx) error {
		page, err := tx.Pages().GetByID(ctx, req.PageID, scope)
		if err != nil {
			return err
		}
		result, err = s.tracker.Reconcile(ctx, tx, definition, page, req.UpdatedBy, s.timestamp())
		return err
	})
	if err != nil {
		return s.fail(ctx, operation, domain.ObjectTypePage, req.PageID, err)
	}
	s.written(ctx, operation, definition, req.PageID, req.UpdatedBy, result)
	return nil
}

func (s *service) CheckAttributeSync(ctx context.Context, pageID uuid.UUID, attribute string) ([]uuid.UUID, error) {
	report, err := s.CheckAttributeSyncReport(ctx, pageID, attribute)
	if err != nil {
		return nil, err
	}
	return report.Divergent, nil
}

func (s *service) CheckAttributeSyncReport(ctx context.Context, pageID uuid.UUID, attribute string) (*SyncReport, error) {
	const operation = "check_attribute_sync"
	definition, err := s.attributeDefinition(ctx, pageID, attribute, "")
	if err != nil {
		return nil, s.fail(ctx, operation, domain.ObjectTypePage, pageID, err)
	}

	scope := visibility.FromContext(ctx)
	var report *SyncReport
	err = s.store.View(ctx, func(ctx context.Context, tx store.Tx) error {
		page, err := tx.Pages().GetByID(ctx, pageID, scope)
		if err != nil {
			return err
		}
		report, err = s.tracker.Check(ctx, tx, definition, page, scope)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, operation, domain.ObjectTypePage, pageID, err)
	}
	s.metrics.SyncCheck(string(report.State))
	if report.State != SyncStateInSync {
		logging.WithOperationContext(s.logger, operation, domain.ObjectTypePage, pageID.String()).Debug(
			"variants.sync.divergent",
			"attribute", definition.Keyword,
			"state", report.State,
			"divergent", len(report.Divergent),
		)
	}
	return report, nil
}

func (s *service) ReadAttribute(ctx context.Context, pageID uuid.UUID, attribute string) (objecttags.Payload, error) {
	definition, err := s.attributeDefinition(ctx, pageID, attribute, "")
	if err != nil {
		return objecttags.Payload{}, err
	}
	scope := visibility.FromContext(ctx)
	var value objecttags.Payload
	err = s.store.View(ctx, func(ctx context.Context, tx store.Tx) error {
		page, err := tx.Pages().GetByID(ctx, pageID, scope)
		if err != nil {
			return err
		}
		value, err = s.tracker.Read(ctx, tx, definition, page)
		return err
	})
	if err != nil {
		return objecttags.Payload{}, err
	}
	return value, nil
}

func (s *service) GetPage(ctx context.Context, id uuid.UUID) (*pages.Page, error) {
	var page *pages.Page
	err := s.store.View(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		page, err = tx.Pages().GetByID(ctx, id, visibility.FromContext(ctx))
		return err
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (s *service) LanguageVariants(ctx context.Context, pageID uuid.UUID) ([]*pages.Page, error) {
	return s.readGroup(ctx, pageID, s.resolver.LanguageVariants)
}

func (s *service) PageVariants(ctx context.Context, pageID uuid.UUID) ([]*pages.Page, error) {
	return s.readGroup(ctx, pageID, s.resolver.PageVariants)
}

func (s *service) Wastebin(ctx context.Context, folderID uuid.UUID) ([]*pages.Page, error) {
	if folderID == uuid.Nil {
		return nil, ErrFolderIDRequired
	}
	var records []*pages.Page
	err := s.store.View(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := tx.Folders().GetByID(ctx, folderID, visibility.IncludeDeleted); err != nil {
			return err
		}
		var err error
		records, err = tx.Pages().ListByFolder(ctx, folderID, visibility.OnlyDeleted)
		return err
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s *service) CreateFolder(ctx context.Context, req CreateFolderRequest) (*folders.Folder, error) {
	const operation = "create_folder"
	name, err := normalizeName(req.Name)
	if err != nil {
		return nil, err
	}
	motherID := uuid.Nil
	if req.MotherID != nil {
		motherID = *req.MotherID
	}
	if err := s.authorize(ctx, domain.ObjectTypeFolder, motherID, permissions.FoldersCreate); err != nil {
		return nil, s.fail(ctx, operation, domain.ObjectTypeFolder, motherID, err)
	}

	var created *folders.Folder
	err = s.run(ctx, operation, func(ctx context.Context, tx store.Tx) error {
		if motherID != uuid.Nil {
			if _, err := tx.Folders().GetByID(ctx, motherID, visibility.ExcludeDeleted); err != nil {
				return err
			}
		}
		now := s.timestamp()
		record := &folders.Folder{
			ID:        s.id(),
			Name:      name,
			Version:   1,
			CreatedBy: req.CreatedBy,
			CreatedAt: now,
			UpdatedBy: req.CreatedBy,
			UpdatedAt: now,
		}
		if motherID != uuid.Nil {
			mother := motherID
			record.MotherID = &mother
		}
		var err error
		created, err = tx.Folders().Create(ctx, record)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, operation, domain.ObjectTypeFolder, motherID, err)
	}
	s.emit(ctx, "create", domain.ObjectTypeFolder, created.ID, req.CreatedBy, map[string]any{"name": created.Name})
	return created, nil
}

func (s *service) CreatePage(ctx context.Context, req CreatePageRequest) (*pages.Page, error) {
	const operation = "create_page"
	if req.FolderID == uuid.Nil {
		return nil, ErrFolderIDRequired
	}
	language, err := normalizeLanguage(req.Language)
	if err != nil {
		return nil, err
	}
	name, err := normalizeName(req.Name)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, domain.ObjectTypeFolder, req.FolderID, permissions.PagesCreate); err != nil {
		return nil, s.fail(ctx, operation, domain.ObjectTypeFolder, req.FolderID, err)
	}
	defs, err := s.definitions(ctx)
	if err != nil {
		return nil, s.fail(ctx, operation, domain.ObjectTypeFolder, req.FolderID, err)
	}

	var created *pages.Page
	err = s.run(ctx, operation, func(ctx context.Context, tx store.Tx) error {
		if _, err := tx.Folders().GetByID(ctx, req.FolderID, visibility.ExcludeDeleted); err != nil {
			return err
		}
		body, err := s.createBody(ctx, tx, req.CreatedBy)
		if err != nil {
			return err
		}
		created, err = s.createPage(ctx, tx, defs, &pages.Page{
			ContentBodyID: body.ID,
			FolderID:      req.FolderID,
			Language:      language,
			Name:          name,
			CreatedBy:     req.CreatedBy,
		})
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, operation, domain.ObjectTypeFolder, req.FolderID, err)
	}
	s.emit(ctx, "create", domain.ObjectTypePage, created.ID, req.CreatedBy, map[string]any{
		"language":        created.Language,
		"content_body_id": created.ContentBodyID.String(),
	})
	return created, nil
}

func (s *service) TranslatePage(ctx context.Context, req TranslatePageRequest) (*pages.Page, error) {
	const operation = "translate_page"
	if req.PageID == uuid.Nil {
		return nil, ErrPageIDRequired
	}
	language, err := normalizeLanguage(req.Language)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, domain.ObjectTypePage, req.PageID, permissions.PagesCreate); err != nil {
		return nil, s.fail(ctx, operation, domain.ObjectTypePage, req.PageID, err)
	}
	defs, err := s.definitions(ctx)
	if err != nil {
		return nil, s.fail(ctx, operation, domain.ObjectTypePage, req.PageID, err)
	}

	var created *pages.Page
	err = s.run(ctx, operation, func(ctx context.Context, tx store.Tx) error {
		source, err := tx.Pages().GetByID(ctx, req.PageID, visibility.ExcludeDeleted)
		if err != nil {
			return err
		}
		siblings, err := s.resolver.LanguageVariants(ctx, tx, source, visibility.ExcludeDeleted)
		if err != nil {
			return err
		}
		for _, sibling := range siblings {
			if sibling.Language == language {
				return fmt.Errorf("%w: %s", ErrDuplicateLanguage, language)
			}
		}
		folderID := source.FolderID
		if req.FolderID != nil && *req.FolderID != uuid.Nil {
			folderID = *req.FolderID
		}
		if _, err := tx.Folders().GetByID(ctx, folderID, visibility.ExcludeDeleted); err != nil {
			return err
		}
		name := source.Name
		if strings.TrimSpace(req.Name) != "" {
			if name, err = normalizeName(req.Name); err != nil {
				return err
			}
		}
		created, err = s.createPage(ctx, tx, defs, &pages.Page{
			ContentBodyID: source.ContentBodyID,
			FolderID:      folderID,
			Language:      language,
			Name:          name,
			CreatedBy:     req.CreatedBy,
		})
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, operation, domain.ObjectTypePage, req.PageID, err)
	}
	s.emit(ctx, "translate", domain.ObjectTypePage, created.ID, req.CreatedBy, map[string]any{
		"language":    created.Language,
		"translation": req.PageID.String(),
	})
	return created, nil
}

func (s *service) CreatePageVariant(ctx context.Context, req CreatePageVariantRequest) (*pages.Page, error) {
	const operation = "create_page_variant"
	if req.PageID == uuid.Nil {
		return nil, ErrPageIDRequired
	}
	if req.FolderID == uuid.Nil {
		return nil, ErrFolderIDRequired
	}
	if err := s.authorize(ctx, domain.ObjectTypeFolder, req.FolderID, permissions.PagesCreate); err != nil {
		return nil, s.fail(ctx, operation, domain.ObjectTypeFolder, req.FolderID, err)
	}
	defs, err := s.definitions(ctx)
	if err != nil {
		return nil, s.fail(ctx, operation, domain.ObjectTypePage, req.PageID, err)
	}

	var created *pages.Page
	err = s.run(ctx, operation, func(ctx context.Context, tx store.Tx) error {
		source, err := tx.Pages().GetByID(ctx, req.PageID, visibility.ExcludeDeleted)
		if err != nil {
			return err
		}
		if _, err := tx.Folders().GetByID(ctx, req.FolderID, visibility.ExcludeDeleted); err != nil {
			return err
		}
		name := source.Name
		if strings.TrimSpace(req.Name) != "" {
			if name, err = normalizeName(req.Name); err != nil {
				return err
			}
		}
		body, err := s.createBody(ctx, tx, req.CreatedBy)
		if err != nil {
			return err
		}
		origin := source.ID
		created, err = s.createPage(ctx, tx, defs, &pages.Page{
			ContentBodyID: body.ID,
			FolderID:      req.FolderID,
			SourcePageID:  &origin,
			Language:      source.Language,
			Name:          name,
			CreatedBy:     req.CreatedBy,
		})
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, operation, domain.ObjectTypePage, req.PageID, err)
	}
	s.emit(ctx, "copy", domain.ObjectTypePage, created.ID, req.CreatedBy, map[string]any{
		"source_page_id": req.PageID.String(),
		"folder_id":      req.FolderID.String(),
	})
	return created, nil
}

func (s *service) RegisterDefinition(ctx context.Context, req RegisterDefinitionRequest) (*objecttags.Definition, error) {
	const operation = "register_definition"
	keyword := strings.TrimSpace(req.Keyword)
	if keyword == "" {
		return nil, objecttags.ErrKeywordRequired
	}
	targetType := strings.ToLower(strings.TrimSpace(req.TargetType))
	if targetType == "" {
		targetType = domain.ObjectTypePage
	}
	switch targetType {
	case domain.ObjectTypePage:
	case domain.ObjectTypeFolder:
		if req.Sync.Synchronized() {
			return nil, fmt.Errorf("%w: folders have no variant groups", objecttags.ErrSyncScopeInvalid)
		}
	default:
		return nil, fmt.Errorf("%w: %s", objecttags.ErrTargetTypeInvalid, req.TargetType)
	}
	if !req.Sync.Valid() {
		return nil, objecttags.ErrSyncScopeInvalid
	}
	if len(req.Schema) > 0 {
		if err := validation.ValidateSchema(req.Schema); err != nil {
			return nil, err
		}
	}

	id := identity.DefinitionUUID(keyword)
	if err := s.authorize(ctx, domain.ObjectTypeDefinition, id, permissions.DefinitionsCreate); err != nil {
		return nil, s.fail(ctx, operation, domain.ObjectTypeDefinition, id, err)
	}
	now := s.timestamp()
	created, err := s.store.Definitions().Create(ctx, &objecttags.Definition{
		ID:         id,
		Keyword:    keyword,
		TargetType: targetType,
		Sync:       req.Sync,
		Schema:     req.Schema,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return nil, s.fail(ctx, operation, domain.ObjectTypeDefinition, id, err)
	}
	logging.WithOperationContext(s.logger, operation, domain.ObjectTypeDefinition, id.String()).Info(
		"variants.definition.registered",
		"keyword", created.Keyword,
		"sync", created.Sync.String(),
	)
	return created, nil
}

func (s *service) createBody(ctx context.Context, tx store.Tx, actor uuid.UUID) (*pages.ContentBody, error) {
	return tx.Pages().CreateContentBody(ctx, &pages.ContentBody{
		ID:        s.id(),
		CreatedBy: actor,
		CreatedAt: s.timestamp(),
	})
}

func (s *service) createPage(ctx context.Context, tx store.Tx, defs DefinitionSet, record *pages.Page) (*pages.Page, error) {
	now := s.timestamp()
	record.ID = s.id()
	record.Version = 1
	record.UpdatedBy = record.CreatedBy
	record.CreatedAt = now
	record.UpdatedAt = now
	created, err := tx.Pages().Create(ctx, record)
	if err != nil {
		return nil, err
	}
	if _, err := s.tracker.Inherit(ctx, tx, defs, created, record.CreatedBy, now); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) readGroup(ctx context.Context, pageID uuid.UUID, resolve func(context.Context, store.Tx, *pages.Page, visibility.Scope) ([]*pages.Page, error)) ([]*pages.Page, error) {
	scope := visibility.FromContext(ctx)
	var members []*pages.Page
	err := s.store.View(ctx, func(ctx context.Context, tx store.Tx) error {
		page, err := tx.Pages().GetByID(ctx, pageID, scope)
		if err != nil {
			return err
		}
		members, err = resolve(ctx, tx, page, scope)
		return err
	})
	if err != nil {
		return nil, err
	}
	return members, nil
}

// attributeDefinition validates an attribute request, checks permission when
// one is named and loads the page definition for keyword.
func (s *service) attributeDefinition(ctx context.Context, pageID uuid.UUID, keyword, permission string) (*objecttags.Definition, error) {
	if pageID == uuid.Nil {
		return nil, ErrPageIDRequired
	}
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, ErrAttributeRequired
	}
	if permission != "" {
		if err := s.authorize(ctx, domain.ObjectTypePage, pageID, permission); err != nil {
			return nil, err
		}
	}
	definition, err := s.store.Definitions().GetByKeyword(ctx, keyword)
	if err != nil {
		return nil, err
	}
	if definition.TargetType != domain.ObjectTypePage {
		return nil, fmt.Errorf("%w: %s targets %s", ErrTargetTypeMismatch, definition.Keyword, definition.TargetType)
	}
	return definition, nil
}

func (s *service) definitions(ctx context.Context) (DefinitionSet, error) {
	records, err := s.store.Definitions().List(ctx)
	if err != nil {
		return nil, err
	}
	return NewDefinitionSet(records...), nil
}

func (s *service) authorize(ctx context.Context, objectType string, objectID uuid.UUID, permission string) error {
	if s.checker == nil {
		return nil
	}
	allowed, err := s.checker.HasPermission(ctx, objectType, objectID, permission)
	if err != nil {
		return fmt.Errorf("variants: permission check %s: %w", permission, err)
	}
	if !allowed {
		return &domain.AuthorizationError{
			ObjectType: objectType,
			ObjectID:   objectID,
			Permission: permissions.Token(objectType, permission),
		}
	}
	return nil
}

// run executes fn as a unit of work. A unit of work that lost a concurrency
// race is replayed from scratch, so every read inside fn is fresh.
func (s *service) run(ctx context.Context, operation string, fn func(ctx context.Context, tx store.Tx) error) error {
	attempts := s.retries + 1
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = s.store.RunInTx(ctx, fn)
		if err == nil || !domain.IsConflict(err) || attempt == attempts {
			return err
		}
		s.metrics.ConflictRetry(operation)
		s.logger.Warn("variants.tx.conflict_retry",
			"operation", operation,
			"attempt", attempt,
			"error", err,
		)
	}
	return err
}

func (s *service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *service) fail(ctx context.Context, operation, objectType string, objectID uuid.UUID, err error) error {
	category := ErrorCategory(err)
	s.metrics.OperationFailed(operation, category)
	logger := logging.WithOperationContext(s.logger.WithContext(ctx), operation, objectType, objectID.String())
	if category == CategoryNotFound || category == CategoryValidation {
		logger.Debug("variants.operation.rejected", "category", category, "error", err)
	} else {
		logger.Error("variants.operation.failed", "category", category, "error", err)
	}
	return err
}

func (s *service) deleted(ctx context.Context, operation, objectType string, objectID, actor uuid.UUID, report *DeletionReport) {
	soft := len(report.SoftDeleted)
	for _, id := range report.Purged {
		for _, softID := range report.SoftDeleted {
			if id == softID {
				soft--
			}
		}
	}
	s.metrics.PagesDeleted(operation, soft, len(report.Purged))

	event := "variants.delete.page"
	if report.Cascaded {
		event = "variants.delete.cascade"
	}
	logging.WithOperationContext(s.logger, operation, objectType, objectID.String()).Info(event,
		"soft_deleted", len(report.SoftDeleted),
		"purged", len(report.Purged),
		"folders", len(report.Folders),
		"cascaded", report.Cascaded,
	)

	verb := "delete"
	if operation == "purge_page" || (len(report.SoftDeleted) == 0 && len(report.Purged) > 0) {
		verb = "purge"
	}
	s.emit(ctx, verb, objectType, objectID, actor, map[string]any{
		"deleted_ids": uuidStrings(report.DeletedIDs),
		"purged":      uuidStrings(report.Purged),
		"cascaded":    report.Cascaded,
	})
}

func (s *service) restored(ctx context.Context, operation, objectType string, objectID, actor uuid.UUID, result *RestoreResult) {
	for range result.Pages {
		s.metrics.PageRestored(domain.ObjectTypePage)
	}
	for range result.Folders {
		s.metrics.PageRestored(domain.ObjectTypeFolder)
	}
	logging.WithOperationContext(s.logger, operation, objectType, objectID.String()).Info("variants.restore."+objectType,
		"pages", len(result.Pages),
		"folders", len(result.Folders),
	)
	if len(result.Pages) == 0 && len(result.Folders) == 0 {
		return
	}
	s.emit(ctx, "restore", objectType, objectID, actor, map[string]any{
		"pages":   uuidStrings(result.Pages),
		"folders": uuidStrings(result.Folders),
	})
}

func (s *service) written(ctx context.Context, operation string, definition *objecttags.Definition, pageID, actor uuid.UUID, result *WriteResult) {
	if definition.Synchronized() {
		s.metrics.SyncFanOut(definition.Keyword, len(result.Written))
	}
	logging.WithOperationContext(s.logger, operation, domain.ObjectTypePage, pageID.String()).Info("variants.sync.write",
		"attribute", definition.Keyword,
		"sync", definition.Sync.String(),
		"written", len(result.Written),
		"unchanged", result.Unchanged,
	)
	s.emit(ctx, "update", domain.ObjectTypePage, pageID, actor, map[string]any{
		"attribute": definition.Keyword,
		"targets":   uuidStrings(result.Written),
	})
}

func (s *service) emit(ctx context.Context, verb, objectType string, objectID, actor uuid.UUID, meta map[string]any) {
	if !s.activity.Enabled() {
		return
	}
	event := activity.Event{
		Verb:       verb,
		ActorID:    actor.String(),
		UserID:     actor.String(),
		ObjectType: objectType,
		ObjectID:   objectID.String(),
		Metadata:   meta,
	}
	if err := s.activity.Emit(ctx, event); err != nil {
		s.logger.Warn("variants.activity.emit_failed", "verb", verb, "object_type", objectType, "error", err)
	}
}

func normalizeName(value string) (string, error) {
	normalized, err := slug.Normalize(value)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNameInvalid, err)
	}
	if normalized == "" {
		return "", ErrNameInvalid
	}
	return normalized, nil
}

func normalizeLanguage(value string) (string, error) {
	language := strings.ToLower(strings.TrimSpace(value))
	if language == "" {
		return "", ErrLanguageRequired
	}
	return language, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

