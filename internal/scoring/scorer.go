// Package scoring implements the craziness heuristic: a deliberately
// coarse, explainable keyword counter, not a classifier.
package scoring

import (
	"math/rand"
	"strings"
	"time"
)

// DefaultTiers is the fixed ordered rating scale, lowest to highest.
var DefaultTiers = []string{
	"mild",
	"speculation",
	"conspiracy",
	"tin foil",
	"full schizo",
	"beyond the veil",
}

const (
	defaultHitWeight        = 14
	defaultJitterMax        = 25
	defaultPunctuationBonus = 2
	defaultBucketWidth      = 17
)

// Params configures the heuristic. Zero values fall back to the documented
// defaults; Rand may be pinned for deterministic tests.
type Params struct {
	Keywords         []string
	HitWeight        int
	JitterMax        int
	PunctuationBonus int
	Tiers            []string
	BucketWidth      int
	Rand             *rand.Rand
}

// Scorer maps post text to a 0-100 score and a rating tier.
type Scorer struct {
	keywords         []string
	hitWeight        int
	jitterMax        int
	punctuationBonus int
	tiers            []string
	bucketWidth      int
	rng              *rand.Rand
}

// New builds a scorer from params, applying defaults for unset fields.
// The jitter source is always explicit; there is no package-level state.
func New(p Params) *Scorer {
	s := &Scorer{
		keywords:         make([]string, 0, len(p.Keywords)),
		hitWeight:        p.HitWeight,
		jitterMax:        p.JitterMax,
		punctuationBonus: p.PunctuationBonus,
		tiers:            p.Tiers,
		bucketWidth:      p.BucketWidth,
		rng:              p.Rand,
	}
	for _, kw := range p.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			s.keywords = append(s.keywords, kw)
		}
	}
	if s.hitWeight <= 0 {
		s.hitWeight = defaultHitWeight
	}
	if s.jitterMax < 0 {
		s.jitterMax = defaultJitterMax
	}
	if s.punctuationBonus <= 0 {
		s.punctuationBonus = defaultPunctuationBonus
	}
	if len(s.tiers) == 0 {
		s.tiers = DefaultTiers
	}
	if s.bucketWidth <= 0 {
		s.bucketWidth = defaultBucketWidth
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return s
}

// Score returns the clamped heuristic score and its tier. The keyword
// component is deterministic; only the jitter term varies, bounded by
// JitterMax.
func (s *Scorer) Score(text string) (int, string) {
	lowered := strings.ToLower(text)

	hits := 0
	for _, kw := range s.keywords {
		if strings.Contains(lowered, kw) {
			hits++
		}
	}

	score := hits * s.hitWeight
	if s.jitterMax > 0 {
		score += s.rng.Intn(s.jitterMax + 1)
	}
	score += countPunctuationRuns(text) * s.punctuationBonus

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	return score, s.Tier(score)
}

// Tier maps a clamped score to its rating label. Monotonic: a higher score
// never yields a lower tier.
func (s *Scorer) Tier(score int) string {
	idx := score / s.bucketWidth
	if idx >= len(s.tiers) {
		idx = len(s.tiers) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return s.tiers[idx]
}

// countPunctuationRuns counts runs of two or more '!' or '?' characters,
// a cheap enthusiasm signal.
func countPunctuationRuns(text string) int {
	runs := 0
	runLen := 0
	var runChar byte
	for i := 0; i < len(text); i++ {
		c := text[i]
		if (c == '!' || c == '?') && c == runChar {
			runLen++
			if runLen == 2 {
				runs++
			}
			continue
		}
		if c == '!' || c == '?' {
			runChar = c
			runLen = 1
			continue
		}
		runChar = 0
		runLen = 0
	}
	return runs
}
