package variants_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-cms-variants/internal/domain"
	"github.com/goliatone/go-cms-variants/internal/folders"
	"github.com/goliatone/go-cms-variants/internal/metrics"
	"github.com/goliatone/go-cms-variants/internal/objecttags"
	"github.com/goliatone/go-cms-variants/internal/pages"
	"github.com/goliatone/go-cms-variants/internal/store"
	"github.com/goliatone/go-cms-variants/internal/variants"
	"github.com/goliatone/go-cms-variants/internal/visibility"
	"github.com/google/uuid"
)

type fixture struct {
	t     *testing.T
	ctx   context.Context
	store store.Store
	svc   variants.Service
	actor uuid.UUID
}

func newFixture(t *testing.T, opts ...variants.ServiceOption) *fixture {
	t.Helper()
	return newFixtureWithStore(t, store.NewMemoryStore(), opts...)
}

func newFixtureWithStore(t *testing.T, st store.Store, opts ...variants.ServiceOption) *fixture {
	t.Helper()
	base := []variants.ServiceOption{variants.WithClock(tickingClock())}
	return &fixture{
		t:     t,
		ctx:   context.Background(),
		store: st,
		svc:   variants.NewService(st, append(base, opts...)...),
		actor: uuid.New(),
	}
}

func tickingClock() func() time.Time {
	current := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func (f *fixture) folder(name string, mother *folders.Folder) *folders.Folder {
	f.t.Helper()
	req := variants.CreateFolderRequest{Name: name, CreatedBy: f.actor}
	if mother != nil {
		id := mother.ID
		req.MotherID = &id
	}
	record, err := f.svc.CreateFolder(f.ctx, req)
	if err != nil {
		f.t.Fatalf("create folder %s: %v", name, err)
	}
	return record
}

func (f *fixture) page(folder *folders.Folder, language, name string) *pages.Page {
	f.t.Helper()
	record, err := f.svc.CreatePage(f.ctx, variants.CreatePageRequest{
		FolderID:  folder.ID,
		Language:  language,
		Name:      name,
		CreatedBy: f.actor,
	})
	if err != nil {
		f.t.Fatalf("create page %s: %v", name, err)
	}
	return record
}

func (f *fixture) translate(source *pages.Page, language string) *pages.Page {
	f.t.Helper()
	record, err := f.svc.TranslatePage(f.ctx, variants.TranslatePageRequest{
		PageID:    source.ID,
		Language:  language,
		CreatedBy: f.actor,
	})
	if err != nil {
		f.t.Fatalf("translate %s to %s: %v", source.Name, language, err)
	}
	return record
}

func (f *fixture) translateInto(source *pages.Page, language string, folder *folders.Folder) *pages.Page {
	f.t.Helper()
	folderID := folder.ID
	record, err := f.svc.TranslatePage(f.ctx, variants.TranslatePageRequest{
		PageID:    source.ID,
		Language:  language,
		FolderID:  &folderID,
		CreatedBy: f.actor,
	})
	if err != nil {
		f.t.Fatalf("translate %s to %s: %v", source.Name, language, err)
	}
	return record
}

func (f *fixture) variant(source *pages.Page, folder *folders.Folder) *pages.Page {
	f.t.Helper()
	record, err := f.svc.CreatePageVariant(f.ctx, variants.CreatePageVariantRequest{
		PageID:    source.ID,
		FolderID:  folder.ID,
		CreatedBy: f.actor,
	})
	if err != nil {
		f.t.Fatalf("create variant of %s: %v", source.Name, err)
	}
	return record
}

func (f *fixture) define(keyword string, sync objecttags.SyncScope) *objecttags.Definition {
	f.t.Helper()
	record, err := f.svc.RegisterDefinition(f.ctx, variants.RegisterDefinitionRequest{
		Keyword:    keyword,
		TargetType: domain.ObjectTypePage,
		Sync:       sync,
	})
	if err != nil {
		f.t.Fatalf("register %s: %v", keyword, err)
	}
	return record
}

func (f *fixture) write(page *pages.Page, keyword string, value any) {
	f.t.Helper()
	if err := f.svc.WriteSyncedAttribute(f.ctx, variants.WriteAttributeRequest{
		PageID:    page.ID,
		Attribute: keyword,
		Value:     objecttags.MustPayload(value),
		UpdatedBy: f.actor,
	}); err != nil {
		f.t.Fatalf("write %s on %s: %v", keyword, page.Name, err)
	}
}

// read returns the stored value regardless of the page's wastebin state.
func (f *fixture) read(page *pages.Page, keyword string) objecttags.Payload {
	f.t.Helper()
	value, err := f.svc.ReadAttribute(visibility.WithScope(f.ctx, visibility.IncludeDeleted), page.ID, keyword)
	if err != nil {
		f.t.Fatalf("read %s on %s: %v", keyword, page.Name, err)
	}
	return value
}

func (f *fixture) deletePage(page *pages.Page) *variants.DeletionReport {
	f.t.Helper()
	report, err := f.svc.DeleteLanguageVariant(f.ctx, variants.DeleteLanguageVariantRequest{PageID: page.ID, DeletedBy: f.actor})
	if err != nil {
		f.t.Fatalf("delete %s: %v", page.Name, err)
	}
	return report
}

func (f *fixture) restorePage(page *pages.Page) *pages.Page {
	f.t.Helper()
	restored, err := f.svc.RestorePage(f.ctx, variants.RestorePageRequest{PageID: page.ID, RestoredBy: f.actor})
	if err != nil {
		f.t.Fatalf("restore %s: %v", page.Name, err)
	}
	return restored
}

func (f *fixture) visible(page *pages.Page) bool {
	f.t.Helper()
	return f.lookup(f.ctx, page.ID)
}

func (f *fixture) exists(page *pages.Page) bool {
	f.t.Helper()
	return f.lookup(visibility.WithScope(f.ctx, visibility.IncludeDeleted), page.ID)
}

func (f *fixture) lookup(ctx context.Context, id uuid.UUID) bool {
	f.t.Helper()
	_, err := f.svc.GetPage(ctx, id)
	if err == nil {
		return true
	}
	if !domain.IsNotFound(err) {
		f.t.Fatalf("get page %s: %v", id, err)
	}
	return false
}

func (f *fixture) current(page *pages.Page) *pages.Page {
	f.t.Helper()
	record, err := f.svc.GetPage(visibility.WithScope(f.ctx, visibility.IncludeDeleted), page.ID)
	if err != nil {
		f.t.Fatalf("get page %s: %v", page.Name, err)
	}
	return record
}

func (f *fixture) folderVisible(folder *folders.Folder) bool {
	f.t.Helper()
	err := f.store.View(f.ctx, func(ctx context.Context, tx store.Tx) error {
		_, err := tx.Folders().GetByID(ctx, folder.ID, visibility.ExcludeDeleted)
		return err
	})
	if err == nil {
		return true
	}
	if !domain.IsNotFound(err) {
		f.t.Fatalf("get folder %s: %v", folder.Name, err)
	}
	return false
}

func ids(records ...*pages.Page) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(records))
	for _, record := range records {
		out = append(out, record.ID)
	}
	return out
}

func sameIDs(got, want []uuid.UUID) bool {
	if len(got) != len(want) {
		return false
	}
	counts := map[uuid.UUID]int{}
	for _, id := range got {
		counts[id]++
	}
	for _, id := range want {
		counts[id]--
		if counts[id] < 0 {
			return false
		}
	}
	return true
}

type recordingMetrics struct {
	metrics.Recorder
	retries  int
	failures []string
	checks   []string
	fanOut   []int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{Recorder: metrics.NoOp()}
}

func (r *recordingMetrics) ConflictRetry(string) {
	r.retries++
}

func (r *recordingMetrics) OperationFailed(_ string, category string) {
	r.failures = append(r.failures, category)
}

func (r *recordingMetrics) SyncCheck(state string) {
	r.checks = append(r.checks, state)
}

func (r *recordingMetrics) SyncFanOut(_ string, written int) {
	r.fanOut = append(r.fanOut, written)
}

// conflictStore fails the first units of work with a concurrency conflict.
type conflictStore struct {
	*store.MemoryStore
	failures int
	attempts int
}

func (s *conflictStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	s.attempts++
	if s.failures > 0 {
		s.failures--
		return &domain.ConcurrencyConflictError{Resource: "page", Key: "injected", Version: 1}
	}
	return s.MemoryStore.RunInTx(ctx, fn)
}
