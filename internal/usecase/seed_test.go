package usecase

import (
	"context"
	"testing"
)

func TestSeedIfEmpty(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	h := newTestHarvester(repo, &fakeSource{name: "forum"})

	if err := h.SeedIfEmpty(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if repo.upserts != len(seedCorpus) {
		t.Fatalf("upserts = %d, want %d", repo.upserts, len(seedCorpus))
	}

	th, err := repo.GetBySlug(context.Background(), "birds-are-deep-state-drones-v3")
	if err != nil {
		t.Fatalf("seed record missing: %v", err)
	}
	if th.RatingTier == "" {
		t.Errorf("seed stored without a tier: %+v", th)
	}
	if th.ArchiveURL != th.SourceURL {
		t.Errorf("seed archive url = %q, want source url %q", th.ArchiveURL, th.SourceURL)
	}
}

func TestSeedIfEmptyIsIdempotent(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	h := newTestHarvester(repo, &fakeSource{name: "forum"})

	if err := h.SeedIfEmpty(context.Background()); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := h.SeedIfEmpty(context.Background()); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if repo.upserts != len(seedCorpus) {
		t.Fatalf("upserts = %d after reseed, want %d", repo.upserts, len(seedCorpus))
	}
}
