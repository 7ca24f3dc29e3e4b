package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"testing"
	"time"

	"tinfoiltimes/internal/config"
	"tinfoiltimes/internal/domain"
	"tinfoiltimes/internal/scanner"
	"tinfoiltimes/internal/scoring"
)

type fakeRepo struct {
	mu      sync.Mutex
	rows    map[string]domain.Theory
	recent  int
	total   int
	pruned  int
	upserts int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: map[string]domain.Theory{}}
}

func (f *fakeRepo) Upsert(ctx context.Context, theory domain.Theory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[theory.Slug] = theory
	f.upserts++
	return nil
}

func (f *fakeRepo) List(ctx context.Context, order domain.ListOrder, limit int) ([]domain.Theory, error) {
	return nil, nil
}

func (f *fakeRepo) GetBySlug(ctx context.Context, slug string) (domain.Theory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if th, ok := f.rows[slug]; ok {
		return th, nil
	}
	return domain.Theory{}, domain.ErrNotFound
}

func (f *fakeRepo) CountRecentSince(ctx context.Context, window time.Duration) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recent, nil
}

func (f *fakeRepo) Count(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.total + len(f.rows), nil
}

func (f *fakeRepo) PruneOlderThan(ctx context.Context, window time.Duration, keepMinimum int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pruned++
	return 1, nil
}

type fakeSource struct {
	name       string
	candidates []scanner.Candidate
	err        error
	calls      int
	started    chan struct{}
	release    chan struct{}
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Extract(ctx context.Context, req scanner.Request) ([]scanner.Candidate, error) {
	f.calls++
	if f.started != nil {
		close(f.started)
		<-f.release
	}
	return f.candidates, f.err
}

type fakeArchiver struct {
	snapshot string
	err      error
}

func (f *fakeArchiver) Snapshot(ctx context.Context, url string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.snapshot, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testScorer() *scoring.Scorer {
	return scoring.New(scoring.Params{
		Keywords:  []string{"deep state"},
		HitWeight: 14,
		JitterMax: 0,
		Rand:      rand.New(rand.NewSource(1)),
	})
}

func testHarvestConfig() config.HarvestConfig {
	return config.HarvestConfig{
		FreshnessWindow: config.Duration(6 * time.Hour),
		MinFreshCount:   5,
		Retention: config.RetentionConfig{
			MaxAge:      config.Duration(30 * 24 * time.Hour),
			KeepMinimum: 3,
			MaxRows:     100,
		},
	}
}

func newTestHarvester(repo *fakeRepo, sources ...*fakeSource) *Harvester {
	registry := scanner.NewRegistry()
	cfgSources := make([]config.SourceConfig, 0, len(sources))
	for _, src := range sources {
		registry.Register(src)
		cfgSources = append(cfgSources, config.SourceConfig{
			Name:    src.name,
			Adapter: src.name,
			URL:     "https://example.com/" + src.name,
		})
	}
	return NewHarvester(HarvesterDeps{
		Registry: registry,
		Repo:     repo,
		Archiver: &fakeArchiver{snapshot: "https://archive.example/snap"},
		Scorer:   testScorer(),
		Sources:  cfgSources,
		Harvest:  testHarvestConfig(),
		Logger:   discardLogger(),
	})
}

func TestRunCycleSkipsWhenFresh(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	repo.recent = 5
	src := &fakeSource{name: "forum", candidates: []scanner.Candidate{
		{Title: "Birds Are Deep State Drones v3", URL: "https://example.com/birds"},
	}}

	result, err := newTestHarvester(repo, src).RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if result.Triggered {
		t.Errorf("cycle triggered despite fresh data")
	}
	if result.Reason != ReasonFresh {
		t.Errorf("reason = %q, want %q", result.Reason, ReasonFresh)
	}
	if src.calls != 0 {
		t.Errorf("adapter fetched %d times, want 0", src.calls)
	}
	if repo.upserts != 0 {
		t.Errorf("repository written %d times, want 0", repo.upserts)
	}
}

func TestRunCycleStoresAndSkips(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	src := &fakeSource{name: "forum", candidates: []scanner.Candidate{
		{Title: "Birds Are Deep State Drones v3", Body: "obvious", URL: "https://example.com/birds"},
		{Title: "???", Body: "title slugs to nothing", URL: "https://example.com/punct"},
	}}

	result, err := newTestHarvester(repo, src).RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if !result.Triggered || result.Reason != ReasonHarvested {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Fetched != 2 || result.Stored != 1 || result.Skipped != 1 {
		t.Fatalf("fetched/stored/skipped = %d/%d/%d, want 2/1/1",
			result.Fetched, result.Stored, result.Skipped)
	}

	th, err := repo.GetBySlug(context.Background(), "birds-are-deep-state-drones-v3")
	if err != nil {
		t.Fatalf("stored theory missing: %v", err)
	}
	if th.Score != 14 || th.RatingTier != "mild" {
		t.Errorf("score/tier = %d/%q, want 14/mild", th.Score, th.RatingTier)
	}
	if th.ArchiveURL != "https://archive.example/snap" {
		t.Errorf("archive url = %q, want snapshot link", th.ArchiveURL)
	}
	if th.SourceName != "forum" {
		t.Errorf("source name = %q, want forum", th.SourceName)
	}
}

func TestRunCycleArchiveFailureFallsBack(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	registry := scanner.NewRegistry()
	src := &fakeSource{name: "forum", candidates: []scanner.Candidate{
		{Title: "Birds Are Deep State Drones v3", URL: "https://example.com/birds"},
	}}
	registry.Register(src)

	h := NewHarvester(HarvesterDeps{
		Registry: registry,
		Repo:     repo,
		Archiver: &fakeArchiver{err: fmt.Errorf("archive down")},
		Scorer:   testScorer(),
		Sources: []config.SourceConfig{
			{Name: "forum", Adapter: "forum", URL: "https://example.com/forum"},
		},
		Harvest: testHarvestConfig(),
		Logger:  discardLogger(),
	})

	result, err := h.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if result.Stored != 1 {
		t.Fatalf("stored = %d, want 1 despite archive failure", result.Stored)
	}

	th, err := repo.GetBySlug(context.Background(), "birds-are-deep-state-drones-v3")
	if err != nil {
		t.Fatalf("stored theory missing: %v", err)
	}
	if th.ArchiveURL != th.SourceURL {
		t.Errorf("archive url = %q, want fallback to source url %q", th.ArchiveURL, th.SourceURL)
	}
}

func TestRunCycleAdapterFailureIsolated(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	broken := &fakeSource{name: "reddit", err: fmt.Errorf("boom")}
	healthy := &fakeSource{name: "forum", candidates: []scanner.Candidate{
		{Title: "Birds Are Deep State Drones v3", URL: "https://example.com/birds"},
	}}

	// Registry resolution failure for one source must not stop the others
	// either; point the first source at an adapter that was never registered.
	registry := scanner.NewRegistry()
	registry.Register(broken)
	registry.Register(healthy)

	h := NewHarvester(HarvesterDeps{
		Registry: registry,
		Repo:     repo,
		Archiver: &fakeArchiver{snapshot: "https://archive.example/snap"},
		Scorer:   testScorer(),
		Sources: []config.SourceConfig{
			{Name: "Ghost", Adapter: "missing", URL: "https://example.com/ghost"},
			{Name: "Reddit", Adapter: "reddit", URL: "https://example.com/reddit"},
			{Name: "Forum", Adapter: "forum", URL: "https://example.com/forum"},
		},
		Harvest: testHarvestConfig(),
		Logger:  discardLogger(),
	})

	result, err := h.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if result.Failed != 2 {
		t.Errorf("failed = %d, want 2 (unresolved adapter + extraction error)", result.Failed)
	}
	if result.Stored != 1 {
		t.Errorf("stored = %d, want 1 from the healthy source", result.Stored)
	}
}

func TestRunCycleNonReentrant(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	src := &fakeSource{
		name:    "forum",
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	h := newTestHarvester(repo, src)

	done := make(chan CycleResult, 1)
	go func() {
		result, _ := h.RunCycle(context.Background())
		done <- result
	}()

	<-src.started
	if !h.Running() {
		t.Errorf("Running() = false during an active cycle")
	}

	second, err := h.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("second RunCycle: %v", err)
	}
	if second.Triggered {
		t.Errorf("overlapping cycle triggered")
	}
	if second.Reason != ReasonInProgress {
		t.Errorf("reason = %q, want %q", second.Reason, ReasonInProgress)
	}

	close(src.release)
	first := <-done
	if !first.Triggered {
		t.Errorf("original cycle lost its trigger: %+v", first)
	}
	if h.Running() {
		t.Errorf("Running() = true after the cycle finished")
	}
}

func TestRunCyclePrunesOverBudget(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	repo.total = 101
	src := &fakeSource{name: "forum"}

	if _, err := newTestHarvester(repo, src).RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if repo.pruned != 1 {
		t.Errorf("prune calls = %d, want 1 when over MaxRows", repo.pruned)
	}
}

func TestRunCyclePruneSkippedUnderBudget(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	repo.total = 10
	src := &fakeSource{name: "forum"}

	if _, err := newTestHarvester(repo, src).RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if repo.pruned != 0 {
		t.Errorf("prune calls = %d, want 0 under MaxRows", repo.pruned)
	}
}
