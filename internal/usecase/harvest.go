package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"tinfoiltimes/internal/config"
	"tinfoiltimes/internal/domain"
	"tinfoiltimes/internal/ports"
	"tinfoiltimes/internal/scanner"
	"tinfoiltimes/internal/scoring"
	"tinfoiltimes/internal/slug"
)

// Skip reasons reported when a cycle does not run.
const (
	ReasonFresh      = "already fresh"
	ReasonInProgress = "already in progress"
	ReasonHarvested  = "harvested"
)

// CycleResult summarizes one harvest trigger for observability.
type CycleResult struct {
	Triggered bool
	Reason    string
	Fetched   int
	Stored    int
	Skipped   int
	Failed    int
}

// HarvesterDeps wires the driven adapters into the orchestrator.
type HarvesterDeps struct {
	Registry *scanner.Registry
	Repo     ports.TheoryRepository
	Archiver ports.Archiver
	Scorer   *scoring.Scorer
	Sources  []config.SourceConfig
	Harvest  config.HarvestConfig
	Logger   *slog.Logger
}

// Harvester drives the pipeline: freshness check, adapter extraction,
// scoring, slugging, archiving, and idempotent upserts. It holds no
// persistent state between cycles; freshness derives entirely from
// repository timestamps, so any stateless trigger may call RunCycle.
type Harvester struct {
	registry *scanner.Registry
	repo     ports.TheoryRepository
	archiver ports.Archiver
	scorer   *scoring.Scorer
	sources  []config.SourceConfig
	cfg      config.HarvestConfig
	logger   *slog.Logger

	harvesting atomic.Bool
}

// NewHarvester constructs the orchestrator.
func NewHarvester(deps HarvesterDeps) *Harvester {
	return &Harvester{
		registry: deps.Registry,
		repo:     deps.Repo,
		archiver: deps.Archiver,
		scorer:   deps.Scorer,
		sources:  deps.Sources,
		cfg:      deps.Harvest,
		logger:   deps.Logger,
	}
}

// Running reports whether a cycle is currently in progress.
func (h *Harvester) Running() bool {
	return h.harvesting.Load()
}

// RunCycle executes one harvest cycle. Non-reentrant per process: a second
// trigger while harvesting returns immediately with ReasonInProgress. A
// cycle is skipped entirely when enough records are fresh, bounding how
// often external sites are hit.
func (h *Harvester) RunCycle(ctx context.Context) (CycleResult, error) {
	if !h.harvesting.CompareAndSwap(false, true) {
		return CycleResult{Reason: ReasonInProgress}, nil
	}
	defer h.harvesting.Store(false)

	recent, err := h.repo.CountRecentSince(ctx, h.cfg.FreshnessWindow.Std())
	if err != nil {
		return CycleResult{}, fmt.Errorf("freshness check: %w", err)
	}
	if recent >= h.cfg.MinFreshCount {
		h.logger.Debug("harvest skipped", "recent", recent, "min_fresh", h.cfg.MinFreshCount)
		return CycleResult{Reason: ReasonFresh}, nil
	}

	result := CycleResult{Triggered: true, Reason: ReasonHarvested}
	for _, src := range h.sources {
		h.harvestSource(ctx, src, &result)
	}

	h.prune(ctx)

	h.logger.Info("harvest cycle done",
		"fetched", result.Fetched,
		"stored", result.Stored,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
	return result, nil
}

// harvestSource runs one adapter. A failing adapter or candidate is logged
// and skipped; it never aborts the remaining sources (partial success).
func (h *Harvester) harvestSource(ctx context.Context, src config.SourceConfig, result *CycleResult) {
	adapter, err := h.registry.Resolve(src.Adapter)
	if err != nil {
		h.logger.Warn("source skipped", "source", src.Name, "error", err)
		result.Failed++
		return
	}

	candidates, err := adapter.Extract(ctx, scanner.Request{
		SourceName: src.Name,
		URL:        src.URL,
		Selectors:  src.Selectors,
	})
	if err != nil {
		h.logger.Warn("extraction failed", "source", src.Name, "error", err)
		result.Failed++
		return
	}

	result.Fetched += len(candidates)
	for _, cand := range candidates {
		switch h.storeCandidate(ctx, src.Name, cand) {
		case stored:
			result.Stored++
		case skipped:
			result.Skipped++
		case failed:
			result.Failed++
		}
	}
}

type storeOutcome int

const (
	stored storeOutcome = iota
	skipped
	failed
)

func (h *Harvester) storeCandidate(ctx context.Context, sourceName string, cand scanner.Candidate) storeOutcome {
	s := slug.Make(cand.Title)
	if s == "" {
		h.logger.Debug("candidate skipped: empty slug", "title", cand.Title)
		return skipped
	}

	score, tier := h.scorer.Score(cand.Title + " " + cand.Body)

	theory := domain.Theory{
		Slug:       s,
		Title:      cand.Title,
		Body:       cand.Body,
		SourceURL:  cand.URL,
		ArchiveURL: h.archiveURL(ctx, cand.URL),
		SourceName: sourceName,
		Score:      score,
		RatingTier: tier,
	}

	if err := h.repo.Upsert(ctx, theory); err != nil {
		h.logger.Warn("upsert failed", "slug", s, "error", err)
		return failed
	}
	return stored
}

// archiveURL is a best-effort, failure-isolated step: it never blocks or
// fails the primary upsert, falling back to the source URL.
func (h *Harvester) archiveURL(ctx context.Context, sourceURL string) string {
	if h.archiver == nil {
		return sourceURL
	}
	snapshot, err := h.archiver.Snapshot(ctx, sourceURL)
	if err != nil {
		h.logger.Debug("archive snapshot failed", "url", sourceURL, "error", err)
		return sourceURL
	}
	return snapshot
}

func (h *Harvester) prune(ctx context.Context) {
	retention := h.cfg.Retention
	if retention.MaxRows <= 0 {
		return
	}

	total, err := h.repo.Count(ctx)
	if err != nil {
		h.logger.Warn("prune count failed", "error", err)
		return
	}
	if total <= retention.MaxRows {
		return
	}

	deleted, err := h.repo.PruneOlderThan(ctx, retention.MaxAge.Std(), retention.KeepMinimum)
	if err != nil {
		h.logger.Warn("prune failed", "error", err)
		return
	}
	if deleted > 0 {
		h.logger.Info("pruned old theories", "deleted", deleted, "total_before", total)
	}
}
