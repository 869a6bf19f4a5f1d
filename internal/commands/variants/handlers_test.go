package variantscmd

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/goliatone/go-cms-variants/internal/domain"
	"github.com/goliatone/go-cms-variants/internal/objecttags"
	"github.com/goliatone/go-cms-variants/internal/pages"
	"github.com/goliatone/go-cms-variants/internal/store"
	"github.com/goliatone/go-cms-variants/internal/variants"
	"github.com/goliatone/go-cms-variants/internal/visibility"
	"github.com/goliatone/go-command/dispatcher"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

type harness struct {
	ctx      context.Context
	service  variants.Service
	handlers *Handlers
	actor    uuid.UUID
	en       *pages.Page
	de       *pages.Page
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	service := variants.NewService(store.NewMemoryStore())
	actor := uuid.New()

	folder, err := service.CreateFolder(ctx, variants.CreateFolderRequest{Name: "site", CreatedBy: actor})
	if err != nil {
		t.Fatalf("create folder: %v", err)
	}
	if _, err := service.RegisterDefinition(ctx, variants.RegisterDefinitionRequest{Keyword: "title", Sync: objecttags.SyncContentset}); err != nil {
		t.Fatalf("register definition: %v", err)
	}
	en, err := service.CreatePage(ctx, variants.CreatePageRequest{FolderID: folder.ID, Language: "en", Name: "home", CreatedBy: actor})
	if err != nil {
		t.Fatalf("create page: %v", err)
	}
	de, err := service.TranslatePage(ctx, variants.TranslatePageRequest{PageID: en.ID, Language: "de", CreatedBy: actor})
	if err != nil {
		t.Fatalf("translate page: %v", err)
	}
	return &harness{
		ctx:      ctx,
		service:  service,
		handlers: NewHandlers(service, nil, 0),
		actor:    actor,
		en:       en,
		de:       de,
	}
}

func TestCommandValidation(t *testing.T) {
	h := newHarness(t)

	cases := []struct {
		name string
		run  func() error
	}{
		{"delete without page", func() error {
			return h.handlers.DeleteLanguageVariant.Execute(h.ctx, DeleteLanguageVariantCommand{DeletedBy: h.actor})
		}},
		{"folder delete without actor", func() error {
			return h.handlers.DeleteFolder.Execute(h.ctx, DeleteFolderCommand{FolderID: uuid.New()})
		}},
		{"write without value", func() error {
			return h.handlers.WriteAttribute.Execute(h.ctx, WriteAttributeCommand{PageID: h.en.ID, Attribute: "title", UpdatedBy: h.actor})
		}},
		{"reconcile without attribute", func() error {
			return h.handlers.ReconcileAttribute.Execute(h.ctx, ReconcileAttributeCommand{PageID: h.en.ID, Attribute: "  ", UpdatedBy: h.actor})
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.run()
			if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
				t.Fatalf("expected validation category, got %v", err)
			}
		})
	}
}

func TestWriteCommandDecodesExplicitNull(t *testing.T) {
	h := newHarness(t)

	var msg WriteAttributeCommand
	raw := `{"page_id":"` + h.en.ID.String() + `","attribute":"title","value":null,"updated_by":"` + h.actor.String() + `"}`
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		t.Fatalf("decode command: %v", err)
	}
	if err := h.handlers.WriteAttribute.Execute(h.ctx, msg); err != nil {
		t.Fatalf("write: %v", err)
	}
	value, err := h.service.ReadAttribute(h.ctx, h.de.ID, "title")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !value.IsNull() {
		t.Fatalf("expected explicit null on the sync target, got %s", value)
	}
}

func TestDeleteAndRestoreCommands(t *testing.T) {
	h := newHarness(t)

	if err := h.handlers.DeleteLanguageVariant.Execute(h.ctx, DeleteLanguageVariantCommand{PageID: h.de.ID, DeletedBy: h.actor}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := h.service.GetPage(h.ctx, h.de.ID); !domain.IsNotFound(err) {
		t.Fatalf("expected page hidden after delete, got %v", err)
	}
	if err := h.handlers.RestorePage.Execute(h.ctx, RestorePageCommand{PageID: h.de.ID, RestoredBy: h.actor}); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if _, err := h.service.GetPage(h.ctx, h.de.ID); err != nil {
		t.Fatalf("expected restored page visible, got %v", err)
	}

	err := h.handlers.PurgePage.Execute(h.ctx, PurgePageCommand{PageID: h.de.ID, PurgedBy: h.actor})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) || !errors.Is(err, variants.ErrPageNotDeleted) {
		t.Fatalf("expected purging a live page to be rejected, got %v", err)
	}
}

func TestCommandErrorsAreCategorised(t *testing.T) {
	h := newHarness(t)

	err := h.handlers.DeleteLanguageVariant.Execute(h.ctx, DeleteLanguageVariantCommand{PageID: uuid.New(), DeletedBy: h.actor})
	if !goerrors.IsCategory(err, goerrors.CategoryNotFound) {
		t.Fatalf("expected not found category, got %v", err)
	}
	if !domain.IsNotFound(err) {
		t.Fatalf("expected domain error to stay reachable, got %v", err)
	}

	cases := []struct {
		err  error
		want goerrors.Category
	}{
		{&domain.AuthorizationError{ObjectType: "page", Permission: "pages:delete"}, goerrors.CategoryAuthz},
		{&domain.ConcurrencyConflictError{Resource: "page", Key: "p", Version: 2}, goerrors.CategoryConflict},
		{&domain.IntegrityError{Resource: "object_tag", Key: "t"}, goerrors.CategoryInternal},
		{objecttags.ErrSyncScopeInvalid, goerrors.CategoryValidation},
	}
	for _, tc := range cases {
		if got := Classify(tc.err); got.Category != tc.want || got.TextCode == "" {
			t.Fatalf("classify %v: expected %s, got %+v", tc.err, tc.want, got)
		}
	}
	if got := Classify(errors.New("disk full")); got.Category != "" {
		t.Fatalf("expected unknown errors to stay unclassified, got %+v", got)
	}
}

func TestDispatchFolderDelete(t *testing.T) {
	h := newHarness(t)

	sub := dispatcher.SubscribeCommand(h.handlers.DeleteFolder)
	t.Cleanup(sub.Unsubscribe)

	if err := dispatcher.Dispatch(h.ctx, DeleteFolderCommand{FolderID: h.en.FolderID, DeletedBy: h.actor}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	wastebin, err := h.service.Wastebin(h.ctx, h.en.FolderID)
	if err != nil {
		t.Fatalf("wastebin: %v", err)
	}
	if len(wastebin) != 2 {
		t.Fatalf("expected both variants in the wastebin, got %d", len(wastebin))
	}
	if _, err := h.service.GetPage(visibility.WithScope(h.ctx, visibility.IncludeDeleted), h.en.ID); err != nil {
		t.Fatalf("expected soft-deleted page to remain readable with deleted scope, got %v", err)
	}
}
