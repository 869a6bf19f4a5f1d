package variants_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-cms-variants/internal/objecttags"
	"github.com/goliatone/go-cms-variants/internal/store"
	"github.com/goliatone/go-cms-variants/internal/variants"
	"github.com/goliatone/go-cms-variants/pkg/storage"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/google/uuid"
)

func newBunFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db, err := store.Open(ctx, storage.Config{
		Driver: "sqlite",
		DSN:    "file:variants_" + uuid.NewString() + "?mode=memory&cache=shared",
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if err := store.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cacheCfg := repocache.DefaultConfig()
	cacheCfg.TTL = time.Minute
	cacheService, err := repocache.NewCacheService(cacheCfg)
	if err != nil {
		t.Fatalf("new cache service: %v", err)
	}
	return newFixtureWithStore(t, store.NewBunStore(db, store.WithDefinitionCache(cacheService, repocache.NewDefaultKeySerializer())))
}

func TestBunStoreSyncAndCascade(t *testing.T) {
	f := newBunFixture(t)
	f.define("title", objecttags.SyncContentset)

	site := f.folder("site", nil)
	en := f.page(site, "en", "home")
	de := f.translate(en, "de")
	fr := f.translate(en, "fr")

	f.write(en, "title", "A")
	f.deletePage(de)
	f.write(en, "title", map[string]any{"text": "B", "rank": 2})
	f.restorePage(de)

	report, err := f.svc.CheckAttributeSyncReport(f.ctx, en.ID, "title")
	if err != nil {
		t.Fatalf("check sync: %v", err)
	}
	if report.State != variants.SyncStateDiverged || !sameIDs(report.Divergent, ids(de)) {
		t.Fatalf("expected de diverged, got %+v", report)
	}
	if !f.read(de, "title").Equal(objecttags.MustPayload("A")) {
		t.Fatalf("expected restored page to keep its value")
	}
	if !f.read(fr, "title").Equal(objecttags.MustPayload(map[string]any{"text": "B", "rank": 2})) {
		t.Fatalf("expected fr to follow the write")
	}

	if err := f.svc.ReconcileSyncedAttribute(f.ctx, variants.ReconcileAttributeRequest{PageID: en.ID, Attribute: "title", UpdatedBy: f.actor}); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	divergent, err := f.svc.CheckAttributeSync(f.ctx, en.ID, "title")
	if err != nil {
		t.Fatalf("check sync after reconcile: %v", err)
	}
	if len(divergent) != 0 {
		t.Fatalf("expected group in sync after reconcile, got %v", divergent)
	}

	f.deletePage(en)
	f.deletePage(fr)
	last := f.deletePage(de)
	if !last.Cascaded || !sameIDs(last.Purged, ids(en, fr)) {
		t.Fatalf("expected hidden siblings purged, got %+v", last)
	}
	if f.exists(en) || f.exists(fr) || !f.exists(de) {
		t.Fatalf("expected only the last deleted variant in the wastebin")
	}

	purged, err := f.svc.PurgePage(f.ctx, variants.PurgePageRequest{PageID: de.ID, PurgedBy: f.actor})
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if !sameIDs(purged.Purged, ids(de)) || f.exists(de) {
		t.Fatalf("expected de purged, got %+v", purged)
	}
	if _, err := f.svc.ReadAttribute(f.ctx, de.ID, "title"); err == nil {
		t.Fatalf("expected purged page to have no readable attributes")
	}
}
