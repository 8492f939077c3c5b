package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const mapboxBaseURL = "https://api.mapbox.com/geocoding/v5/mapbox.places"

// MapboxClient implements Provider on the Mapbox geocoding API, the second
// commercial vendor in the chain.
type MapboxClient struct {
	token       string
	countryCode string
	httpClient  *http.Client
	baseURL     string
}

func NewMapboxClient(token, countryCode string, h *http.Client) *MapboxClient {
	return &MapboxClient{
		token:       token,
		countryCode: countryCode,
		httpClient:  h,
		baseURL:     mapboxBaseURL,
	}
}

func (m *MapboxClient) Name() string { return "mapbox" }

type mapboxResponse struct {
	Features []struct {
		Center    []float64 `json:"center"` // [lng, lat]
		PlaceName string    `json:"place_name"`
		PlaceType []string  `json:"place_type"`
		Address   string    `json:"address"` // house number, present for address results
		Relevance float64   `json:"relevance"`
		Properties struct {
			Accuracy string `json:"accuracy"` // rooftop, parcel, point, interpolated, street, ...
		} `json:"properties"`
		Context []struct {
			ID   string `json:"id"` // "place.123", "region.456", ...
			Text string `json:"text"`
		} `json:"context"`
	} `json:"features"`
}

func (m *MapboxClient) Search(ctx context.Context, query string) ([]Candidate, error) {
	params := url.Values{
		"access_token": {m.token},
		"limit":        {"5"},
		"country":      {m.countryCode},
		"language":     {m.countryCode},
		"types":        {"address,street,place,locality"},
	}

	u := fmt.Sprintf("%s/%s.json?%s", m.baseURL, url.PathEscape(query), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building mapbox request: %w", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mapbox request failed: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("mapbox returned status %d: %s", resp.StatusCode, body)
	}

	var mr mapboxResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return nil, fmt.Errorf("decoding mapbox response: %w", err)
	}

	candidates := make([]Candidate, 0, len(mr.Features))

	for _, f := range mr.Features {
		c := Candidate{
			DisplayName: f.PlaceName,
			Components:  map[string]string{},
			Precision:   mapboxPrecision(f.Properties.Accuracy),
		}

		if len(f.Center) == 2 {
			c.Lng = f.Center[0]
			c.Lat = f.Center[1]
		}

		if f.Address != "" {
			c.Components["house_number"] = f.Address
		}

		for _, cx := range f.Context {
			switch {
			case strings.HasPrefix(cx.ID, "place."):
				c.Components["city"] = cx.Text
			case strings.HasPrefix(cx.ID, "locality."):
				c.Components["village"] = cx.Text
			case strings.HasPrefix(cx.ID, "district."):
				c.Components["county"] = cx.Text
			case strings.HasPrefix(cx.ID, "region."):
				c.Components["state"] = cx.Text
			}
		}

		candidates = append(candidates, c)
	}

	return candidates, nil
}

func mapboxPrecision(accuracy string) string {
	switch accuracy {
	case "rooftop", "parcel", "point":
		return PrecisionRooftop
	case "interpolated":
		return PrecisionInterpolated
	case "street":
		return PrecisionCentroid
	}

	return ""
}
