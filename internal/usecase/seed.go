package usecase

import (
	"context"
	"fmt"

	"tinfoiltimes/internal/domain"
	"tinfoiltimes/internal/slug"
)

type seedTheory struct {
	title  string
	body   string
	url    string
	source string
}

// seedCorpus renders content on a fresh install before the first harvest
// succeeds. Seeds flow through the normal scoring and slugging path.
var seedCorpus = []seedTheory{
	{
		title:  "2025 Eclipse Was Actual NWO Portal Opening",
		body:   "Lizards used 5G + HAARP during totality. Shadows don't lie.",
		url:    "https://x.com",
		source: "X",
	},
	{
		title:  "Birds Are Deep State Drones v3",
		body:   "2025 firmware update adds facial recognition. They're watching YOU.",
		url:    "https://reddit.com/r/conspiracy",
		source: "Reddit",
	},
	{
		title:  "Antarctica Ice Wall + Nazi Base Still Active",
		body:   "Hitler escaped. They guard the edge AND the dome.",
		url:    "https://archive.org",
		source: "Wayback",
	},
	{
		title:  "AI Grok Is a Reptilian Overlord",
		body:   "xAI = x-tra terrestrial AI. Built to harvest human paranoia.",
		url:    "https://x.com",
		source: "X",
	},
	{
		title:  "Taylor Swift's 2025 Tour = Mass Satanic Initiation",
		body:   "Eclipse alignment + 33 symbolism everywhere.",
		url:    "https://tiktok.com",
		source: "TikTok",
	},
	{
		title:  "The Moon Is a Soul-Recycling Machine",
		body:   "That's why they hide the dark side.",
		url:    "https://godlikeproductions.com",
		source: "Forum",
	},
}

// SeedIfEmpty inserts the built-in corpus when the table holds no records.
func (h *Harvester) SeedIfEmpty(ctx context.Context) error {
	total, err := h.repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("seed count: %w", err)
	}
	if total > 0 {
		return nil
	}

	for _, seed := range seedCorpus {
		score, tier := h.scorer.Score(seed.title + " " + seed.body)
		theory := domain.Theory{
			Slug:       slug.Make(seed.title),
			Title:      seed.title,
			Body:       seed.body,
			SourceURL:  seed.url,
			ArchiveURL: seed.url,
			SourceName: seed.source,
			Score:      score,
			RatingTier: tier,
		}
		if err := h.repo.Upsert(ctx, theory); err != nil {
			return fmt.Errorf("seed %s: %w", theory.Slug, err)
		}
	}

	h.logger.Info("seeded theories", "count", len(seedCorpus))
	return nil
}
