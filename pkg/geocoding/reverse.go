package geocoding

import (
	"fmt"

	"github.com/codingsince1985/geo-golang"
	"github.com/codingsince1985/geo-golang/openstreetmap"
)

// ReverseGeocoder turns device coordinates back into a display address, used
// to pre-fill the report form from the browser's location.
type ReverseGeocoder interface {
	Reverse(lat, lng float64) (string, error)
}

func NewOSMReverseGeocoder() *osmReverse {
	return &osmReverse{geocoder: openstreetmap.Geocoder()}
}

type osmReverse struct {
	geocoder geo.Geocoder
}

var _ ReverseGeocoder = (*osmReverse)(nil)

func (c *osmReverse) Reverse(lat, lng float64) (string, error) {
	address, err := c.geocoder.ReverseGeocode(lat, lng)
	if err != nil {
		return "", fmt.Errorf("reverse geocoding: %w", err)
	}

	if address == nil {
		return "", ErrAddressNotFound
	}

	if address.FormattedAddress != "" {
		return address.FormattedAddress, nil
	}

	return fmt.Sprintf("%s, %s", address.City, address.Country), nil
}
