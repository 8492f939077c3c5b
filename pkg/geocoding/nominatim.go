package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

const nominatimBaseURL = "https://nominatim.openstreetmap.org/search"

// NominatimClient implements Provider on the OpenStreetMap Nominatim search
// endpoint, the open-data fallback. Unlike the commercial vendors it issues
// several query variants itself, because Nominatim is easily confused by
// sub-locality phrases and by anything after the first comma.
type NominatimClient struct {
	municipality string
	provinceCode string
	country      string
	countryCode  string
	userAgent    string
	stripRes     []*regexp.Regexp
	httpClient   *http.Client
	baseURL      string
}

func NewNominatimClient(cfg Config, h *http.Client) *NominatimClient {
	stripRes := make([]*regexp.Regexp, 0, len(cfg.ConfusingPhrases))
	for _, p := range cfg.ConfusingPhrases {
		stripRes = append(stripRes, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(p)+`,?`))
	}

	return &NominatimClient{
		municipality: cfg.Municipality,
		provinceCode: cfg.ProvinceCode,
		country:      cfg.Country,
		countryCode:  cfg.CountryCode,
		userAgent:    cfg.UserAgent,
		stripRes:     stripRes,
		httpClient:   h,
		baseURL:      nominatimBaseURL,
	}
}

func (n *NominatimClient) Name() string { return "nominatim" }

type nominatimResult struct {
	DisplayName string            `json:"display_name"`
	Lat         string            `json:"lat"`
	Lon         string            `json:"lon"`
	Address     map[string]string `json:"address"`
}

// Search tries three query variants in order and merges their candidates:
// the query as given, the query with confusing sub-locality phrases
// stripped, and only the text before the first comma re-anchored to the
// municipality. A variant that fails is skipped; Search errors only when
// every variant does.
func (n *NominatimClient) Search(ctx context.Context, query string) ([]Candidate, error) {
	variants := n.queryVariants(query)

	var (
		candidates []Candidate
		attempted  int
		lastErr    error
	)

	for _, v := range variants {
		attempted++

		found, err := n.searchOne(ctx, v)
		if err != nil {
			slog.WarnContext(ctx, "nominatim variant failed", "query", v, "error", err.Error())
			lastErr = err

			continue
		}

		candidates = append(candidates, found...)
	}

	if len(candidates) == 0 && lastErr != nil && attempted > 0 {
		return nil, fmt.Errorf("all nominatim variants failed: %w", lastErr)
	}

	return candidates, nil
}

func (n *NominatimClient) queryVariants(query string) []string {
	variants := []string{query}

	stripped := query
	for _, re := range n.stripRes {
		stripped = re.ReplaceAllString(stripped, "")
	}

	if stripped = strings.TrimSpace(stripped); stripped != query {
		variants = append(variants, stripped)
	}

	head := strings.SplitN(query, ",", 2)[0]
	anchored := fmt.Sprintf("%s, %s, %s, %s", strings.TrimSpace(head), n.municipality, n.provinceCode, n.country)
	if anchored != query {
		variants = append(variants, anchored)
	}

	return variants
}

func (n *NominatimClient) searchOne(ctx context.Context, query string) ([]Candidate, error) {
	params := url.Values{
		"format":          {"json"},
		"q":               {query},
		"limit":           {"5"},
		"accept-language": {n.countryCode},
		"countrycodes":    {n.countryCode},
		"addressdetails":  {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building nominatim request: %w", err)
	}

	// Required by the Nominatim usage policy.
	req.Header.Set("User-Agent", n.userAgent)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nominatim request failed: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nominatim returned status %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decoding nominatim response: %w", err)
	}

	candidates := make([]Candidate, 0, len(results))

	for _, r := range results {
		lat, latErr := strconv.ParseFloat(r.Lat, 64)
		lng, lngErr := strconv.ParseFloat(r.Lon, 64)

		if latErr != nil || lngErr != nil {
			continue
		}

		components := r.Address
		if components == nil {
			components = map[string]string{}
		}

		candidates = append(candidates, Candidate{
			DisplayName: r.DisplayName,
			Lat:         lat,
			Lng:         lng,
			Components:  components,
		})
	}

	return candidates, nil
}
