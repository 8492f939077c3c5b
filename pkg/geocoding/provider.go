package geocoding

import (
	"context"
	"errors"
)

// ErrAddressNotFound is returned when every provider and query variant has
// been exhausted without an acceptable candidate.
var ErrAddressNotFound = errors.New("address not found")

// Role identifies a provider's position in the fallback chain. Responses
// expose the role rather than the vendor name so the wire contract survives
// vendor swaps.
type Role string

const (
	RolePrimary   Role = "primary"
	RoleSecondary Role = "secondary"
	RoleFallback  Role = "fallback"
)

// Precision classes normalized across vendors.
const (
	PrecisionRooftop      = "rooftop"
	PrecisionInterpolated = "interpolated"
	PrecisionCentroid     = "centroid"
	PrecisionApproximate  = "approximate"
)

// Candidate is one result returned by a provider for a query, normalized out
// of the vendor's schema. It lives only for the duration of one request.
type Candidate struct {
	DisplayName string
	Lat         float64
	Lng         float64

	// Components holds structured address parts under normalized keys:
	// city, town, village, state, county, house_number.
	Components map[string]string

	// Precision is one of the Precision* classes, or empty when the vendor
	// doesn't classify accuracy.
	Precision string
}

// HasHouseNumber reports whether the vendor resolved down to a house number
// rather than a street centroid.
func (c Candidate) HasHouseNumber() bool {
	return c.Components["house_number"] != ""
}

// Component returns the first non-empty value among the given keys.
func (c Candidate) Component(keys ...string) string {
	for _, k := range keys {
		if v := c.Components[k]; v != "" {
			return v
		}
	}

	return ""
}

// Provider is a thin adapter around one external geocoding vendor. Each
// implementation owns its field mapping so scoring never sees vendor schema.
// A Search that finds nothing returns an empty slice and no error; errors
// are reserved for transport, credential, and decoding failures.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string) ([]Candidate, error)
}
