package pattern

import (
	"math/rand/v2"
)

// WeighterConfig holds tuning knobs for tag selection.
// Zero-value fields are replaced with the standard defaults.
type WeighterConfig struct {
	// TagWeight scales how strongly an entry's own tag count boosts its
	// replication in the sampling pool. Default: 1.0.
	TagWeight float64

	// MaxTags is the maximum number of tags returned per character.
	// Default: 3.
	MaxTags int

	// Strictness controls sampling. At 0.5 and above the expanded pool is
	// used as-is; below 0.5 it is randomly thinned to len×strictness×2
	// entries before deduplication, trading adherence for variety.
	// Default: 0.6.
	Strictness float64
}

// Weighter selects style tags for a character by weighted sampling over the
// store's pattern entries. Entries with more tags dominate the pool, so a
// richly-tagged entry shapes the character's prompt more often.
//
// A Weighter is not safe for concurrent use: it shares an unsynchronised
// random source with the prompt composer so that a single seed reproduces a
// whole run.
type Weighter struct {
	store      *Store
	tagWeight  float64
	maxTags    int
	strictness float64
	rng        *rand.Rand
}

// NewWeighter creates a Weighter over store. A nil rng is replaced with an
// automatically seeded source.
func NewWeighter(store *Store, cfg WeighterConfig, rng *rand.Rand) *Weighter {
	if cfg.TagWeight <= 0 {
		cfg.TagWeight = 1.0
	}
	if cfg.MaxTags <= 0 {
		cfg.MaxTags = 3
	}
	if cfg.Strictness <= 0 {
		cfg.Strictness = 0.6
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Weighter{
		store:      store,
		tagWeight:  cfg.TagWeight,
		maxTags:    cfg.MaxTags,
		strictness: cfg.Strictness,
		rng:        rng,
	}
}

// Tags returns up to MaxTags style tags for name (case-insensitive).
// Unknown characters yield an empty result; they simply contribute no style
// inspiration to the prompt.
//
// Selection: every entry's tags are replicated int(len(tags)×TagWeight)+1
// times into a pool; when Strictness < 0.5 the pool is shuffled and cut to
// int(len×Strictness×2) entries; finally the pool is deduplicated in
// first-seen order and truncated.
func (w *Weighter) Tags(name string) []string {
	entries := w.store.Entries(name)
	if len(entries) == 0 {
		return nil
	}

	var pool []string
	for _, e := range entries {
		weight := int(float64(len(e.Tags))*w.tagWeight) + 1
		for i := 0; i < weight; i++ {
			pool = append(pool, e.Tags...)
		}
	}

	if w.strictness < 0.5 {
		n := int(float64(len(pool)) * w.strictness * 2)
		if n > len(pool) {
			n = len(pool)
		}
		w.rng.Shuffle(len(pool), func(i, j int) {
			pool[i], pool[j] = pool[j], pool[i]
		})
		pool = pool[:n]
	}

	seen := make(map[string]struct{}, len(pool))
	tags := make([]string, 0, w.maxTags)
	for _, tag := range pool {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
		if len(tags) == w.maxTags {
			break
		}
	}
	return tags
}
