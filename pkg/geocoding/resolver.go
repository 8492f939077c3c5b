package geocoding

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ResolvedAddress is the outcome of one successful address resolution.
type ResolvedAddress struct {
	Lat             float64
	Lng             float64
	Address         string // display address with sub-locality noise stripped
	DisplayName     string // vendor-formatted address, untouched
	Provider        Role
	Score           int
	OriginalAddress string
	StreetName      string
	CivicNumber     string
}

// Resolver drives the provider fallback chain. Providers are tried strictly
// in order, the cheapest and most authoritative first; there is no parallel
// fan-out for a single address because the design trades latency for
// priority-ordered precision.
type Resolver struct {
	cfg     Config
	scorer  *Scorer
	entries []chainEntry
}

type chainEntry struct {
	role     Role
	provider Provider
	minScore int
}

// NewResolver builds the chain from whichever providers are configured. A
// nil provider (missing credentials) is left out entirely, so it is skipped
// without a network call.
func NewResolver(cfg Config, primary, secondary, fallback Provider) *Resolver {
	r := &Resolver{cfg: cfg, scorer: NewScorer(cfg)}

	if primary != nil {
		r.entries = append(r.entries, chainEntry{RolePrimary, primary, cfg.MinScorePrecise})
	}

	if secondary != nil {
		r.entries = append(r.entries, chainEntry{RoleSecondary, secondary, cfg.MinScorePrecise})
	}

	if fallback != nil {
		r.entries = append(r.entries, chainEntry{RoleFallback, fallback, cfg.MinScoreOpenData})
	}

	return r
}

// strategy is one (provider, query) attempt in the pipeline. The chain is
// materialized as a flat ordered list so the control flow is data, not
// nested conditionals.
type strategy struct {
	entry chainEntry
	query string
}

// Resolve runs the pipeline for one free-text address: full query per
// provider, then a retry without the civic number when one was extracted,
// then the next provider. The first candidate meeting its provider's
// acceptance threshold wins. Provider failures of any kind are soft; only
// exhausting every strategy yields ErrAddressNotFound.
func (r *Resolver) Resolve(ctx context.Context, rawAddress string) (*ResolvedAddress, error) {
	street, civic := SplitCivicNumber(rawAddress)

	fullQuery := r.buildQuery(rawAddress)

	var strategies []strategy
	for _, e := range r.entries {
		strategies = append(strategies, strategy{e, fullQuery})

		// Addresses with a civic number the vendor cannot resolve often
		// resolve fine at the street level.
		if civic != "" {
			strategies = append(strategies, strategy{e, r.buildQuery(street)})
		}
	}

	for _, s := range strategies {
		best, ok := r.attempt(ctx, s)
		if !ok {
			continue
		}

		return &ResolvedAddress{
			Lat:             best.Candidate.Lat,
			Lng:             best.Candidate.Lng,
			Address:         CleanDisplayAddress(best.Candidate.DisplayName, r.cfg.SubLocalityFragments),
			DisplayName:     best.Candidate.DisplayName,
			Provider:        s.entry.role,
			Score:           best.Score,
			OriginalAddress: rawAddress,
			StreetName:      street,
			CivicNumber:     civic,
		}, nil
	}

	return nil, fmt.Errorf("%w in %s", ErrAddressNotFound, r.cfg.Municipality)
}

func (r *Resolver) attempt(ctx context.Context, s strategy) (*ScoredCandidate, bool) {
	timeout := r.cfg.ProviderTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	candidates, err := s.entry.provider.Search(ctx, s.query)
	if err != nil {
		// Transport and vendor errors are soft: log and move on to the
		// next strategy.
		slog.WarnContext(ctx, "provider attempt failed",
			"provider", s.entry.provider.Name(),
			"role", string(s.entry.role),
			"query", s.query,
			"error", err.Error(),
		)

		return nil, false
	}

	best := r.scorer.Best(candidates)
	if best == nil || best.Score < s.entry.minScore {
		return nil, false
	}

	slog.InfoContext(ctx, "address resolved",
		"provider", s.entry.provider.Name(),
		"role", string(s.entry.role),
		"score", best.Score,
		"query", s.query,
	)

	return best, true
}

func (r *Resolver) buildQuery(address string) string {
	return fmt.Sprintf("%s, %s, %s, %s", address, r.cfg.Municipality, r.cfg.ProvinceCode, r.cfg.Country)
}

// Municipality exposes the configured target for user-facing messages.
func (r *Resolver) Municipality() string {
	return r.cfg.Municipality
}
