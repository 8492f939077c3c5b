package geocoding

import (
	"regexp"
	"strings"
)

// Scoring bonuses. Each is an independent signal; a candidate accumulates
// every one that applies.
const (
	// BonusMunicipalityInDisplay applies when the formatted string mentions
	// the target municipality anywhere.
	BonusMunicipalityInDisplay = 100

	// BonusCityComponent applies when a structured component names the
	// municipality exactly as the city/town/village.
	BonusCityComponent = 80

	// BonusRegionComponent applies when the result sits in the target
	// region or province.
	BonusRegionComponent = 20

	// BonusOutsideSubLocality applies when the formatted string matches
	// none of the configured sub-locality fragments.
	BonusOutsideSubLocality = 30

	// BonusHouseNumber applies when the vendor resolved a house-number
	// component, signaling better than street-centroid precision.
	BonusHouseNumber = 30

	// BonusPrecisionClass applies when the vendor's own classification is
	// rooftop or interpolated-range accuracy.
	BonusPrecisionClass = 40

	// DefaultHamletPenalty softens, rather than excludes, results inside
	// sub-localities that are legitimate hamlets of the municipality.
	// Hard exclusion was found to discard valid results.
	DefaultHamletPenalty = -50
)

// Acceptance thresholds. A provider attempt finds nothing usable unless its
// best candidate reaches the threshold.
const (
	ThresholdGenerous = 60
	ThresholdStrict   = 80
)

// ScoredCandidate pairs a candidate with its relevance score. Scores are
// never clamped; hamlet penalties can drive them negative.
type ScoredCandidate struct {
	Candidate Candidate
	Score     int
}

// Scorer rates candidates against the target-municipality constraint. It is
// built once from configuration and safe for concurrent use.
type Scorer struct {
	municipality  string
	province      string
	region        string
	fragmentRe    *regexp.Regexp
	hamletRe      *regexp.Regexp
	hamletPenalty int
}

func NewScorer(cfg Config) *Scorer {
	penalty := cfg.HamletPenalty
	if penalty == 0 {
		penalty = DefaultHamletPenalty
	}

	return &Scorer{
		municipality:  cfg.Municipality,
		province:      cfg.Province,
		region:        cfg.Region,
		fragmentRe:    wordListPattern(cfg.SubLocalityFragments),
		hamletRe:      wordListPattern(cfg.KnownHamlets),
		hamletPenalty: penalty,
	}
}

// wordListPattern builds a case-insensitive whole-word alternation, or nil
// for an empty list.
func wordListPattern(words []string) *regexp.Regexp {
	if len(words) == 0 {
		return nil
	}

	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}

	return regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
}

// Score accumulates every applicable bonus for one candidate.
func (s *Scorer) Score(c Candidate) int {
	score := 0

	if strings.Contains(strings.ToLower(c.DisplayName), strings.ToLower(s.municipality)) {
		score += BonusMunicipalityInDisplay
	}

	if city := c.Component("city", "town", "village"); strings.EqualFold(city, s.municipality) {
		score += BonusCityComponent
	}

	if c.Components["state"] == s.region || strings.Contains(c.Components["county"], s.province) {
		score += BonusRegionComponent
	}

	switch {
	case s.fragmentRe == nil || !s.fragmentRe.MatchString(c.DisplayName):
		score += BonusOutsideSubLocality
	case s.hamletRe != nil && s.hamletRe.MatchString(c.DisplayName):
		score += s.hamletPenalty
	}

	if c.HasHouseNumber() {
		score += BonusHouseNumber
	}

	if c.Precision == PrecisionRooftop || c.Precision == PrecisionInterpolated {
		score += BonusPrecisionClass
	}

	return score
}

// Best picks the highest-scoring candidate. Only a strictly greater score
// replaces the current best, so the first seen wins ties. Returns nil for an
// empty list.
func (s *Scorer) Best(cands []Candidate) *ScoredCandidate {
	var best *ScoredCandidate
	for _, c := range cands {
		score := s.Score(c)
		if best == nil || score > best.Score {
			best = &ScoredCandidate{Candidate: c, Score: score}
		}
	}

	return best
}
