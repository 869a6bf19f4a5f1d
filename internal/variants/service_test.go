package variants_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-cms-variants/internal/domain"
	"github.com/goliatone/go-cms-variants/internal/identity"
	"github.com/goliatone/go-cms-variants/internal/objecttags"
	"github.com/goliatone/go-cms-variants/internal/permissions"
	"github.com/goliatone/go-cms-variants/internal/store"
	"github.com/goliatone/go-cms-variants/internal/variants"
	"github.com/goliatone/go-cms-variants/internal/visibility"
	"github.com/goliatone/go-cms-variants/pkg/activity"
	"github.com/goliatone/go-cms-variants/pkg/interfaces"
	"github.com/google/uuid"
)

func TestConflictIsRetriedOnce(t *testing.T) {
	conflicts := &conflictStore{MemoryStore: store.NewMemoryStore()}
	recorder := newRecordingMetrics()
	f := newFixtureWithStore(t, conflicts, variants.WithMetrics(recorder))
	root := f.folder("site", nil)
	en := f.page(root, "en", "home")
	de := f.translate(en, "de")

	conflicts.failures = 1
	conflicts.attempts = 0
	f.deletePage(de)
	if conflicts.attempts != 2 || recorder.retries != 1 {
		t.Fatalf("expected one retry, got attempts=%d retries=%d", conflicts.attempts, recorder.retries)
	}
	if f.visible(de) {
		t.Fatalf("expected retried delete to commit")
	}
}

func TestConflictSurfacesAfterRetry(t *testing.T) {
	conflicts := &conflictStore{MemoryStore: store.NewMemoryStore()}
	recorder := newRecordingMetrics()
	f := newFixtureWithStore(t, conflicts, variants.WithMetrics(recorder))
	root := f.folder("site", nil)
	en := f.page(root, "en", "home")

	conflicts.failures = 5
	conflicts.attempts = 0
	_, err := f.svc.DeleteLanguageVariant(f.ctx, variants.DeleteLanguageVariantRequest{PageID: en.ID})
	var conflict *domain.ConcurrencyConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConcurrencyConflictError, got %v", err)
	}
	if conflicts.attempts != 2 {
		t.Fatalf("expected two attempts, got %d", conflicts.attempts)
	}
	if len(recorder.failures) != 1 || recorder.failures[0] != variants.CategoryConflict {
		t.Fatalf("expected conflict failure recorded, got %v", recorder.failures)
	}
	conflicts.failures = 0
	if !f.visible(en) {
		t.Fatalf("expected page untouched after failed unit of work")
	}
}

func TestConflictRetriesCanBeDisabled(t *testing.T) {
	conflicts := &conflictStore{MemoryStore: store.NewMemoryStore()}
	f := newFixtureWithStore(t, conflicts, variants.WithConflictRetries(0))
	root := f.folder("site", nil)
	en := f.page(root, "en", "home")

	conflicts.failures = 1
	conflicts.attempts = 0
	_, err := f.svc.DeleteLanguageVariant(f.ctx, variants.DeleteLanguageVariantRequest{PageID: en.ID})
	if !domain.IsConflict(err) || conflicts.attempts != 1 {
		t.Fatalf("expected immediate conflict, got %v after %d attempts", err, conflicts.attempts)
	}
}

func TestAuthorizationCheckedBeforeMutation(t *testing.T) {
	f := newFixture(t, variants.WithPermissionChecker(permissions.NewAuthorizer()))
	root := f.folder("site", nil)
	en := f.page(root, "en", "home")
	de := f.translate(en, "de")
	f.define("title", objecttags.SyncContentset)

	readOnly := permissions.WithPermissions(f.ctx, permissions.PagesRead)
	_, err := f.svc.DeleteLanguageVariant(readOnly, variants.DeleteLanguageVariantRequest{PageID: de.ID})
	var authErr *domain.AuthorizationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthorizationError, got %v", err)
	}
	if authErr.Permission != permissions.PagesDelete || authErr.ObjectID != de.ID {
		t.Fatalf("unexpected authorization error %+v", authErr)
	}
	if !f.visible(de) {
		t.Fatalf("expected page untouched after denied delete")
	}

	err = f.svc.WriteSyncedAttribute(readOnly, variants.WriteAttributeRequest{
		PageID:    en.ID,
		Attribute: "title",
		Value:     objecttags.MustPayload("x"),
	})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized write, got %v", err)
	}
	if _, err := f.svc.CheckAttributeSync(readOnly, en.ID, "title"); err != nil {
		t.Fatalf("expected reads to stay open, got %v", err)
	}

	scoped := permissions.WithPermissions(f.ctx, permissions.PagesDelete+"@"+de.ID.String())
	if _, err := f.svc.DeleteLanguageVariant(scoped, variants.DeleteLanguageVariantRequest{PageID: de.ID}); err != nil {
		t.Fatalf("expected object scoped grant to allow delete, got %v", err)
	}
	if _, err := f.svc.DeleteLanguageVariant(scoped, variants.DeleteLanguageVariantRequest{PageID: en.ID}); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected grant scoped to another page to deny, got %v", err)
	}
}

func TestCascadedRemovalsNeedTheirOwnGrants(t *testing.T) {
	f := newFixture(t, variants.WithPermissionChecker(permissions.NewAuthorizer()))
	site := f.folder("site", nil)
	en := f.page(site, "en", "home")
	de := f.translate(en, "de")
	f.deletePage(de)

	var authErr *domain.AuthorizationError
	onlyTarget := permissions.WithPermissions(f.ctx, permissions.PagesDelete+"@"+en.ID.String())
	_, err := f.svc.DeleteLanguageVariant(onlyTarget, variants.DeleteLanguageVariantRequest{PageID: en.ID, DeletedBy: f.actor})
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthorizationError for the hidden sibling, got %v", err)
	}
	if authErr.Permission != permissions.PagesPurge || authErr.ObjectID != de.ID {
		t.Fatalf("unexpected authorization error %+v", authErr)
	}
	if !f.visible(en) || !f.exists(de) {
		t.Fatalf("expected the denied cascade to leave both pages in place")
	}

	folderOnly := permissions.WithPermissions(f.ctx, permissions.FoldersDelete+"@"+site.ID.String())
	_, err = f.svc.DeleteFolder(folderOnly, variants.DeleteFolderRequest{FolderID: site.ID, DeletedBy: f.actor})
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthorizationError for the contained page, got %v", err)
	}
	if authErr.Permission != permissions.PagesDelete || authErr.ObjectID != en.ID {
		t.Fatalf("unexpected authorization error %+v", authErr)
	}
	if !f.folderVisible(site) || !f.visible(en) {
		t.Fatalf("expected the denied folder delete to roll back")
	}

	granted := permissions.WithPermissions(f.ctx,
		permissions.PagesDelete+"@"+en.ID.String(),
		permissions.PagesPurge+"@"+de.ID.String(),
	)
	report, err := f.svc.DeleteLanguageVariant(granted, variants.DeleteLanguageVariantRequest{PageID: en.ID, DeletedBy: f.actor})
	if err != nil {
		t.Fatalf("expected delete with sibling grant to succeed, got %v", err)
	}
	if !report.Cascaded || f.exists(de) {
		t.Fatalf("expected the hidden sibling purged, got %+v", report)
	}
}

func TestPermissionCheckerFailureIsReturned(t *testing.T) {
	boom := errors.New("directory offline")
	checker := interfaces.PermissionCheckerFunc(func(context.Context, string, uuid.UUID, string) (bool, error) {
		return false, boom
	})
	f := newFixture(t)
	root := f.folder("site", nil)
	en := f.page(root, "en", "home")

	guarded := variants.NewService(f.store, variants.WithPermissionChecker(checker))
	_, err := guarded.DeleteLanguageVariant(f.ctx, variants.DeleteLanguageVariantRequest{PageID: en.ID})
	if !errors.Is(err, boom) {
		t.Fatalf("expected checker error, got %v", err)
	}
}

func TestResolverReportsDanglingReferences(t *testing.T) {
	f := newFixture(t)
	root := f.folder("site", nil)
	en := f.page(root, "en", "home")
	definition := f.define("title", objecttags.SyncContentset)
	resolver := variants.NewResolver()

	cases := []struct {
		name string
		defs variants.DefinitionSet
		tag  *objecttags.ObjectTag
	}{
		{
			name: "missing definition",
			defs: variants.NewDefinitionSet(),
			tag:  &objecttags.ObjectTag{ID: uuid.New(), DefinitionID: definition.ID, OwnerType: domain.ObjectTypePage, OwnerID: en.ID},
		},
		{
			name: "missing owner",
			defs: variants.NewDefinitionSet(definition),
			tag:  &objecttags.ObjectTag{ID: uuid.New(), DefinitionID: definition.ID, OwnerType: domain.ObjectTypePage, OwnerID: uuid.New()},
		},
		{
			name: "owner type outside variant groups",
			defs: variants.NewDefinitionSet(definition),
			tag:  &objecttags.ObjectTag{ID: uuid.New(), DefinitionID: definition.ID, OwnerType: domain.ObjectTypeFolder, OwnerID: root.ID},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := f.store.View(f.ctx, func(ctx context.Context, tx store.Tx) error {
				_, err := resolver.SyncTargets(ctx, tx, tc.defs, tc.tag, visibility.ExcludeDeleted)
				return err
			})
			var integrity *domain.IntegrityError
			if !errors.As(err, &integrity) {
				t.Fatalf("expected IntegrityError, got %v", err)
			}
			if variants.ErrorCategory(err) != variants.CategoryIntegrity {
				t.Fatalf("expected integrity category, got %s", variants.ErrorCategory(err))
			}
		})
	}
}

func TestRegisterDefinitionValidation(t *testing.T) {
	f := newFixture(t)

	created := f.define("Title", objecttags.SyncContentset)
	if created.ID != identity.DefinitionUUID("title") {
		t.Fatalf("expected keyword derived id")
	}

	cases := []struct {
		name string
		req  variants.RegisterDefinitionRequest
		want error
	}{
		{"keyword required", variants.RegisterDefinitionRequest{Keyword: "  "}, objecttags.ErrKeywordRequired},
		{"unknown target", variants.RegisterDefinitionRequest{Keyword: "x", TargetType: "widget"}, objecttags.ErrTargetTypeInvalid},
		{"folders cannot sync", variants.RegisterDefinitionRequest{Keyword: "x", TargetType: "folder", Sync: objecttags.SyncVariants}, objecttags.ErrSyncScopeInvalid},
		{"unknown sync bits", variants.RegisterDefinitionRequest{Keyword: "x", Sync: objecttags.SyncScope(8)}, objecttags.ErrSyncScopeInvalid},
		{"duplicate keyword", variants.RegisterDefinitionRequest{Keyword: "title"}, objecttags.ErrDefinitionExists},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.RegisterDefinition(f.ctx, tc.req)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	folderAttr, err := f.svc.RegisterDefinition(f.ctx, variants.RegisterDefinitionRequest{Keyword: "color", TargetType: "folder"})
	if err != nil {
		t.Fatalf("register folder attribute: %v", err)
	}
	root := f.folder("site", nil)
	en := f.page(root, "en", "home")
	err = f.svc.WriteSyncedAttribute(f.ctx, variants.WriteAttributeRequest{PageID: en.ID, Attribute: folderAttr.Keyword, Value: objecttags.MustPayload("red")})
	if !errors.Is(err, variants.ErrTargetTypeMismatch) {
		t.Fatalf("expected target mismatch, got %v", err)
	}
}

func TestLifecycleValidation(t *testing.T) {
	f := newFixture(t)
	root := f.folder("site", nil)
	en := f.page(root, "en", "home")
	f.translate(en, "de")

	_, err := f.svc.TranslatePage(f.ctx, variants.TranslatePageRequest{PageID: en.ID, Language: "DE"})
	if !errors.Is(err, variants.ErrDuplicateLanguage) {
		t.Fatalf("expected duplicate language, got %v", err)
	}
	_, err = f.svc.CreatePage(f.ctx, variants.CreatePageRequest{FolderID: root.ID, Name: "x"})
	if !errors.Is(err, variants.ErrLanguageRequired) {
		t.Fatalf("expected language required, got %v", err)
	}
	_, err = f.svc.CreatePage(f.ctx, variants.CreatePageRequest{FolderID: uuid.New(), Language: "en", Name: "x"})
	if !domain.IsNotFound(err) {
		t.Fatalf("expected missing folder, got %v", err)
	}
	_, err = f.svc.CreatePageVariant(f.ctx, variants.CreatePageVariantRequest{PageID: en.ID})
	if !errors.Is(err, variants.ErrFolderIDRequired) {
		t.Fatalf("expected folder required, got %v", err)
	}

	page, err := f.svc.CreatePage(f.ctx, variants.CreatePageRequest{FolderID: root.ID, Language: " EN ", Name: "About Us"})
	if err != nil {
		t.Fatalf("create page: %v", err)
	}
	if page.Language != "en" || page.Name == "About Us" || page.Name == "" {
		t.Fatalf("expected normalized language and name, got %q %q", page.Language, page.Name)
	}
}

func TestDeleteEmitsActivityAfterCommit(t *testing.T) {
	capture := &activity.CaptureHook{}
	emitter := activity.NewEmitter(activity.Hooks{capture}, activity.Config{Enabled: true, Channel: "variants"})
	f := newFixture(t, variants.WithActivityEmitter(emitter))
	root := f.folder("site", nil)
	en := f.page(root, "en", "home")
	de := f.translate(en, "de")
	capture.Events = nil

	f.deletePage(de)
	f.restorePage(de)
	_, err := f.svc.DeleteLanguageVariant(f.ctx, variants.DeleteLanguageVariantRequest{PageID: uuid.New()})
	if err == nil {
		t.Fatalf("expected missing page to fail")
	}

	if len(capture.Events) != 2 {
		t.Fatalf("expected two events, got %d", len(capture.Events))
	}
	deleted, restored := capture.Events[0], capture.Events[1]
	if deleted.Verb != "delete" || deleted.ObjectID != de.ID.String() || deleted.Channel != "variants" {
		t.Fatalf("unexpected delete event %+v", deleted)
	}
	if restored.Verb != "restore" || restored.ObjectType != domain.ObjectTypePage {
		t.Fatalf("unexpected restore event %+v", restored)
	}
	if restored.OccurredAt.IsZero() || restored.OccurredAt.After(time.Now().Add(time.Minute)) {
		t.Fatalf("expected emitter to stamp events")
	}
}

func TestRestorePageBringsBackAncestorFolders(t *testing.T) {
	f := newFixture(t)
	site := f.folder("site", nil)
	section := f.folder("section", site)
	about := f.page(section, "en", "about")

	if _, err := f.svc.DeleteFolder(f.ctx, variants.DeleteFolderRequest{FolderID: site.ID, DeletedBy: f.actor}); err != nil {
		t.Fatalf("delete folder: %v", err)
	}
	if f.folderVisible(section) || f.visible(about) {
		t.Fatalf("expected folder contents hidden")
	}

	restored := f.restorePage(about)
	if restored.IsDeleted() || restored.DeletedBy != nil {
		t.Fatalf("expected deletion marker cleared, got %+v", restored)
	}
	if !f.folderVisible(section) || !f.folderVisible(site) {
		t.Fatalf("expected ancestors restored")
	}

	again := f.restorePage(about)
	if again.Version != restored.Version {
		t.Fatalf("expected restoring a live page to be a no-op")
	}
}
