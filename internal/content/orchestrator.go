package content

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"slidecraft/internal/util"
	"slidecraft/pkg/ai"
	"slidecraft/pkg/domain"
)

// Request carries the validated generation parameters. Validation (topic
// non-empty, slide count within bounds) happens at the HTTP boundary before
// the orchestrator sees it.
type Request struct {
	Topic      string
	SlideCount int
	Layouts    []domain.SlideLayout
}

// tier is one stage in the ordered fallback chain. Returning an error means
// "this tier cannot serve the request"; the orchestrator moves on to the next.
type tier interface {
	name() string
	generate(ctx context.Context, req Request) ([]domain.Slide, error)
}

// Config wires the orchestrator's collaborators.
type Config struct {
	Cache   Cache
	Library *Library
	Remote  *ai.OpenAIGenerator
	Local   *ai.OllamaGenerator

	// VariationProbability is the chance a cache miss takes the variation
	// path instead of a generator tier. Zero disables variation.
	VariationProbability float64

	// Rand is the source for variation decisions. Nil means a time-seeded
	// source; tests inject a fixed seed to pin branches.
	Rand *rand.Rand
}

// Orchestrator decides where slide content comes from: cache, probabilistic
// variation, remote generation, local generation, or static templates. It
// never fails outward — every failure path degrades to a cheaper tier, and
// the final tier is pure data construction.
type Orchestrator struct {
	cache     Cache
	library   *Library
	tiers     []tier
	variation float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewOrchestrator builds the orchestrator with its tier chain in fallback
// order: remote first, then local, then templates.
func NewOrchestrator(cfg Config) *Orchestrator {
	library := cfg.Library
	if library == nil {
		library = NewLibrary()
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	tiers := make([]tier, 0, 3)
	if cfg.Remote != nil {
		tiers = append(tiers, &remoteTier{generator: cfg.Remote})
	}
	if cfg.Local != nil {
		tiers = append(tiers, &localTier{generator: cfg.Local})
	}
	tiers = append(tiers, &templateTier{library: library})
	return &Orchestrator{
		cache:     cfg.Cache,
		library:   library,
		tiers:     tiers,
		variation: cfg.VariationProbability,
		rng:       rng,
	}
}

// Generate returns exactly req.SlideCount slides, first slide always a title
// slide. Results are cached under the request fingerprint; a cache hit is
// returned unmodified with no side effects.
func (o *Orchestrator) Generate(ctx context.Context, req Request) []domain.Slide {
	logger := util.LoggerFromContext(ctx)
	fingerprint := Fingerprint(req.Topic, req.SlideCount, req.Layouts)

	if slides, ok := o.cache.Get(fingerprint); ok {
		logger.Info("content cache hit", "topic", req.Topic)
		return slides
	}

	// The variation draw happens on every miss, including brand-new
	// fingerprints, and the variation result is what gets cached.
	if o.roll() < o.variation {
		logger.Info("generating variation content", "topic", req.Topic)
		slides := o.withVariation(req)
		o.store(fingerprint, req, slides)
		return slides
	}

	for _, t := range o.tiers {
		slides, err := t.generate(ctx, req)
		if err != nil {
			logger.Warn("generation tier failed, falling back", "tier", t.name(), "err", err)
			continue
		}
		logger.Info("content generated", "tier", t.name(), "topic", req.Topic, "slides", len(slides))
		o.store(fingerprint, req, slides)
		return slides
	}

	// Unreachable: the template tier never fails. Kept as a hard floor.
	slides := buildFromTemplates(o.library, req.Topic, req.SlideCount)
	o.store(fingerprint, req, slides)
	return slides
}

func (o *Orchestrator) withVariation(req Request) []domain.Slide {
	o.mu.Lock()
	slides := buildVariation(o.library, req.Topic, req.SlideCount, o.rng)
	o.mu.Unlock()
	return conform(slides, req.Topic, req.SlideCount, req.Layouts)
}

func (o *Orchestrator) roll() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.rng.Float64()
}

func (o *Orchestrator) store(fingerprint string, req Request, slides []domain.Slide) {
	o.cache.Put(fingerprint, Entry{
		Topic:            req.Topic,
		SlideCount:       req.SlideCount,
		LayoutPreference: req.Layouts,
		Slides:           slides,
	})
}

// templateTier is the final tier: static template construction. It cannot
// fail and therefore always terminates the chain.
type templateTier struct {
	library *Library
}

func (t *templateTier) name() string { return "templates" }

func (t *templateTier) generate(_ context.Context, req Request) ([]domain.Slide, error) {
	return buildFromTemplates(t.library, req.Topic, req.SlideCount), nil
}
