package geocoding

import (
	"os"
	"strings"
	"time"

	"github.com/bastabarriere/api/pkg/env"
)

// Config carries everything that ties the pipeline to one municipality.
// It is loaded once at startup and read-only afterwards; nothing in this
// package holds state across requests.
type Config struct {
	// Target municipality constraint.
	Municipality string // e.g. "Civitavecchia"
	ProvinceCode string // used in queries, e.g. "RM"
	Province     string // used to match vendor county components, e.g. "Roma"
	Region       string // used to match vendor state components, e.g. "Lazio"
	Country      string // used in queries, e.g. "Italia"
	CountryCode  string // vendor country filter, e.g. "it"

	// Vendor credentials. An empty key means the provider is skipped.
	GoogleAPIKey string
	MapboxToken  string

	// Sub-locality names that vendors surface but that are noise for
	// display purposes. Fragments also listed in KnownHamlets are
	// legitimate places inside the municipality: candidates matching them
	// take a soft penalty instead of being thrown away.
	SubLocalityFragments []string
	KnownHamlets         []string
	HamletPenalty        int

	// Phrases the open-data provider strips in one of its query variants
	// because they confuse its search.
	ConfusingPhrases []string

	// Acceptance thresholds, the primary precision/recall tunable.
	MinScorePrecise  int // commercial providers
	MinScoreOpenData int // open-data fallback

	ProviderTimeout time.Duration
	UserAgent       string
}

// FromEnv loads the pipeline configuration, defaulting to the Civitavecchia
// deployment. Every knob is overridable so the core stays portable to other
// municipalities.
func FromEnv() Config {
	return Config{
		Municipality: env.Get("GEO_MUNICIPALITY", "Civitavecchia"),
		ProvinceCode: env.Get("GEO_PROVINCE_CODE", "RM"),
		Province:     env.Get("GEO_PROVINCE", "Roma"),
		Region:       env.Get("GEO_REGION", "Lazio"),
		Country:      env.Get("GEO_COUNTRY", "Italia"),
		CountryCode:  env.Get("GEO_COUNTRY_CODE", "it"),

		GoogleAPIKey: os.Getenv("GOOGLE_MAPS_API_KEY"),
		MapboxToken:  os.Getenv("MAPBOX_TOKEN"),

		SubLocalityFragments: splitList(env.Get("GEO_SUBLOCALITY_FRAGMENTS", "Faro;Cisterna;Le Vignole;San Giuliano")),
		KnownHamlets:         splitList(env.Get("GEO_KNOWN_HAMLETS", "Faro;Cisterna")),
		HamletPenalty:        env.GetInt("GEO_HAMLET_PENALTY", DefaultHamletPenalty),
		ConfusingPhrases:     splitList(env.Get("GEO_CONFUSING_PHRASES", "Cisterna Faro")),

		MinScorePrecise:  env.GetInt("GEO_MIN_SCORE_PRECISE", ThresholdGenerous),
		MinScoreOpenData: env.GetInt("GEO_MIN_SCORE_OPEN_DATA", ThresholdStrict),

		ProviderTimeout: env.GetDuration("GEO_PROVIDER_TIMEOUT", 5*time.Second),
		UserAgent:       env.Get("GEO_USER_AGENT", "BastaBarriere/1.0 (geocoding service)"),
	}
}

// splitList parses a semicolon-separated list, dropping empty entries.
// Semicolons because sub-locality names may contain spaces.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ";") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}

	return out
}
