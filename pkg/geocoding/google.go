package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

const googleBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

// GoogleClient implements Provider on the Google Maps Geocoding API, the
// most precise vendor available and therefore first in the chain.
type GoogleClient struct {
	apiKey      string
	countryCode string
	locality    string
	httpClient  *http.Client
	baseURL     string
}

func NewGoogleClient(apiKey, countryCode, locality string, h *http.Client) *GoogleClient {
	return &GoogleClient{
		apiKey:      apiKey,
		countryCode: countryCode,
		locality:    locality,
		httpClient:  h,
		baseURL:     googleBaseURL,
	}
}

func (g *GoogleClient) Name() string { return "google" }

type googleResponse struct {
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
			LocationType string `json:"location_type"` // ROOFTOP, RANGE_INTERPOLATED, GEOMETRIC_CENTER, APPROXIMATE
		} `json:"geometry"`
		FormattedAddress  string `json:"formatted_address"`
		AddressComponents []struct {
			LongName string   `json:"long_name"`
			Types    []string `json:"types"`
		} `json:"address_components"`
	} `json:"results"`
	Status string `json:"status"` // OK, ZERO_RESULTS, etc.
}

func (g *GoogleClient) Search(ctx context.Context, query string) ([]Candidate, error) {
	params := url.Values{}
	params.Set("address", query)
	params.Set("key", g.apiKey)
	params.Set("region", g.countryCode)
	params.Set("components", fmt.Sprintf("locality:%s|country:%s", g.locality, g.countryCode))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building google request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google request failed: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google returned status %d", resp.StatusCode)
	}

	var gr googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return nil, fmt.Errorf("decoding google response: %w", err)
	}

	if gr.Status == "ZERO_RESULTS" {
		return nil, nil
	}

	if gr.Status != "OK" {
		return nil, fmt.Errorf("google status: %s", gr.Status)
	}

	candidates := make([]Candidate, 0, len(gr.Results))

	for _, r := range gr.Results {
		c := Candidate{
			DisplayName: r.FormattedAddress,
			Lat:         r.Geometry.Location.Lat,
			Lng:         r.Geometry.Location.Lng,
			Components:  map[string]string{},
			Precision:   googlePrecision(r.Geometry.LocationType),
		}

		for _, comp := range r.AddressComponents {
			for _, t := range comp.Types {
				if key, ok := googleComponentKeys[t]; ok {
					c.Components[key] = comp.LongName
				}
			}
		}

		candidates = append(candidates, c)
	}

	return candidates, nil
}

var googleComponentKeys = map[string]string{
	"locality":                    "city",
	"administrative_area_level_3": "town",
	"administrative_area_level_2": "county",
	"administrative_area_level_1": "state",
	"street_number":               "house_number",
}

func googlePrecision(locationType string) string {
	switch locationType {
	case "ROOFTOP":
		return PrecisionRooftop
	case "RANGE_INTERPOLATED":
		return PrecisionInterpolated
	case "GEOMETRIC_CENTER":
		return PrecisionCentroid
	case "APPROXIMATE":
		return PrecisionApproximate
	}

	return ""
}
