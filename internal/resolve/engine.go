package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"marquee/internal/logging"
	"marquee/internal/omdb"
	"marquee/internal/ratings"
)

// Provider is the rating provider surface the engine drives. Implementations
// return (nil, nil) for not-found; errors mean transport or decode failures.
type Provider interface {
	ByTitle(ctx context.Context, title string, year int) (*omdb.Result, error)
	ByID(ctx context.Context, id string) (*omdb.Result, error)
	Search(ctx context.Context, query string) (*omdb.Result, error)
}

// Request is one title to resolve. Key is mandatory; everything else is
// best-effort context from the caller.
type Request struct {
	Key                string
	Title              string
	EntityType         string
	VerificationRating *float64
}

// Source labels how an outcome was produced.
type Source string

const (
	// SourceCache is a fresh cache hit with no provider traffic.
	SourceCache Source = "cache"
	// SourceCacheStale is a stale record returned because its id refresh
	// failed.
	SourceCacheStale Source = "cache-stale"
	// SourceAPI is a full title resolution against the provider.
	SourceAPI Source = "api"
	// SourceAPIRefresh is an id-keyed refresh of an existing record.
	SourceAPIRefresh Source = "api-refresh"
)

// Outcome is a resolved record plus its provenance.
type Outcome struct {
	Record ratings.Record
	Source Source
}

// NeedsWrite reports whether the outcome carries new provider data that the
// store should persist.
func (o Outcome) NeedsWrite() bool {
	return o.Source == SourceAPI || o.Source == SourceAPIRefresh
}

// Options tunes engine behavior. Zero values select defaults.
type Options struct {
	// VerificationTolerance is the absolute rating delta at which a
	// caller-observed rating invalidates a match. Default 0.2.
	VerificationTolerance float64
	// MinFragmentLength is the length a split title fragment must exceed to
	// be attempted. Default 2.
	MinFragmentLength int
	// Now overrides the clock for tests.
	Now func() time.Time
}

// Engine turns one scraped title plus optional cached state into a canonical
// rating record, calling the provider as little as the staleness policy
// allows.
type Engine struct {
	provider    Provider
	policy      ratings.Policy
	logger      *slog.Logger
	tolerance   float64
	minFragment int
	now         func() time.Time
}

// NewEngine builds a resolution engine.
func NewEngine(provider Provider, policy ratings.Policy, logger *slog.Logger, opts Options) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	engine := &Engine{
		provider:    provider,
		policy:      policy,
		logger:      logging.NewComponentLogger(logger, "resolver"),
		tolerance:   opts.VerificationTolerance,
		minFragment: opts.MinFragmentLength,
		now:         opts.Now,
	}
	if engine.tolerance <= 0 {
		engine.tolerance = 0.2
	}
	if engine.minFragment <= 0 {
		engine.minFragment = 2
	}
	if engine.now == nil {
		engine.now = time.Now
	}
	return engine
}

// Resolve produces an outcome for one request. cached may be nil when the
// store holds nothing for the request's key.
func (e *Engine) Resolve(ctx context.Context, req Request, cached *ratings.Record) (Outcome, error) {
	if strings.TrimSpace(req.Key) == "" {
		return Outcome{}, Wrap(ErrMissingKey, "resolver", "resolve", "request has no key", nil)
	}
	now := e.now().UTC()

	if cached != nil {
		stale := e.policy.IsStale(cached.ReleaseDate, cached.UpdatedAt, now)
		if !stale {
			if mismatches(req.VerificationRating, cached.Rating, e.tolerance) {
				e.logger.Info("cached rating disagrees with verification, re-resolving",
					logging.String(logging.FieldKey, req.Key),
					logging.Float64("cached_rating", cached.Rating),
					logging.Float64("verification_rating", *req.VerificationRating))
			} else {
				return Outcome{Record: *cached, Source: SourceCache}, nil
			}
		} else if cached.ExternalID != "" {
			return e.refresh(ctx, req, *cached, now), nil
		}
	}

	return e.resolveTitle(ctx, req, now)
}

// refresh revalidates a stale record through its stored provider id. A
// failed refresh hands back the stale record; guessing by title would risk
// replacing a known-correct match with a wrong one.
func (e *Engine) refresh(ctx context.Context, req Request, cached ratings.Record, now time.Time) Outcome {
	result, err := e.provider.ByID(ctx, cached.ExternalID)
	if err != nil || result == nil {
		e.logger.Warn("id refresh failed, serving stale record",
			logging.String(logging.FieldKey, req.Key),
			logging.String("external_id", cached.ExternalID),
			logging.Error(err))
		return Outcome{Record: cached, Source: SourceCacheStale}
	}

	incoming := recordFromResult(req.Key, cached.Title, result, now)
	merged := ratings.Merge(cached, incoming)
	if merged.ReleaseDate.IsZero() {
		merged.ReleaseDate = now
	}
	return Outcome{Record: merged, Source: SourceAPIRefresh}
}

// strategy is one reformulation attempt in the fallback chain.
type strategy struct {
	name string
	run  func(ctx context.Context) (*omdb.Result, error)
}

func (e *Engine) resolveTitle(ctx context.Context, req Request, now time.Time) (Outcome, error) {
	if strings.TrimSpace(req.Title) == "" {
		return Outcome{}, Wrap(ErrMissingTitle, "resolver", req.Key, "no cached record and no title", nil)
	}
	normalized := NormalizeTitle(req.Title)

	var (
		winner      *omdb.Result
		providerErr error
	)
	for _, strat := range e.strategies(req, normalized) {
		result, err := strat.run(ctx)
		if err != nil {
			providerErr = err
			e.logger.Warn("lookup attempt failed",
				logging.String(logging.FieldKey, req.Key),
				logging.String("strategy", strat.name),
				logging.Error(err))
			continue
		}
		if !e.acceptable(req, result) {
			continue
		}
		e.logger.Debug("title resolved",
			logging.String(logging.FieldKey, req.Key),
			logging.String("strategy", strat.name),
			logging.String("external_id", result.ID))
		winner = result
		break
	}

	if winner == nil {
		if providerErr != nil {
			return Outcome{}, Wrap(ErrProvider, "resolver", req.Key, "provider lookup failed", providerErr)
		}
		return Outcome{}, Wrap(ErrNotFound, "resolver", req.Key, fmt.Sprintf("no acceptable match for %q", normalized), nil)
	}

	record := recordFromResult(req.Key, normalized, winner, now)
	if record.ReleaseDate.IsZero() {
		record.ReleaseDate = now
	}
	return Outcome{Record: record, Source: SourceAPI}, nil
}

// strategies builds the ordered fallback chain for one request. Each entry is
// attempted in sequence until one yields an acceptable result.
func (e *Engine) strategies(req Request, normalized string) []strategy {
	searchTitle := normalized
	chain := []strategy{{
		name: "exact-title",
		run: func(ctx context.Context) (*omdb.Result, error) {
			return e.provider.ByTitle(ctx, normalized, 0)
		},
	}}

	if variant, ok := AmpersandVariant(normalized); ok {
		searchTitle = variant
		chain = append(chain, strategy{
			name: "ampersand-title",
			run: func(ctx context.Context) (*omdb.Result, error) {
				return e.provider.ByTitle(ctx, variant, 0)
			},
		})
	}

	chain = append(chain, strategy{
		name: "search",
		run: func(ctx context.Context) (*omdb.Result, error) {
			return e.provider.Search(ctx, searchTitle)
		},
	})

	// With a verification rating in hand the caller is on a detail page and
	// the trailing segment is the real title; without one the leading segment
	// is the franchise name worth keeping.
	takeRemainder := req.VerificationRating != nil
	if fragment, ok := SplitVariant(normalized, takeRemainder, e.minFragment); ok {
		name := "split-forward"
		if takeRemainder {
			name = "split-reverse"
		}
		chain = append(chain, strategy{
			name: name,
			run: func(ctx context.Context) (*omdb.Result, error) {
				return e.provider.Search(ctx, fragment)
			},
		})
	}
	return chain
}

// acceptable applies the validation gate: a usable rating, a loosely matching
// media type, and agreement with any verification rating.
func (e *Engine) acceptable(req Request, result *omdb.Result) bool {
	if result == nil {
		return false
	}
	rating := ratings.ParseRating(result.Rating)
	if rating <= 0 {
		return false
	}
	if !typeMatches(req.EntityType, result.Type) {
		return false
	}
	return !mismatches(req.VerificationRating, rating, e.tolerance)
}

// recordFromResult assembles a record from a provider payload. The stored
// title is the locally normalized one so future cache lookups for the same
// scraped title stay consistent.
func recordFromResult(key, title string, result *omdb.Result, now time.Time) ratings.Record {
	release, _ := ratings.ParseReleaseDate(result.Released)
	return ratings.Record{
		Key:             key,
		ExternalID:      result.ID,
		Title:           title,
		Year:            ratings.ParseYear(result.Year),
		ReleaseDate:     release,
		Rating:          ratings.ParseRating(result.Rating),
		SecondaryRating: result.RottenTomatoes(),
		VoteCount:       ratings.ParseVotes(result.Votes),
		UpdatedAt:       now,
	}
}
