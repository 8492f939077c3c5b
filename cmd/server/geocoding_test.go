package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastabarriere/api/pkg/adminauth"
	"github.com/bastabarriere/api/pkg/geocoding"
)

type stubResolver struct {
	mu       sync.Mutex
	calls    []string
	resolved map[string]*geocoding.ResolvedAddress
}

func (s *stubResolver) Resolve(_ context.Context, raw string) (*geocoding.ResolvedAddress, error) {
	s.mu.Lock()
	s.calls = append(s.calls, raw)
	s.mu.Unlock()

	if r, ok := s.resolved[raw]; ok {
		return r, nil
	}

	return nil, fmt.Errorf("%w in Civitavecchia", geocoding.ErrAddressNotFound)
}

func (s *stubResolver) Municipality() string { return "Civitavecchia" }

type stubReverse struct {
	address string
	err     error
}

func (s *stubReverse) Reverse(lat, lng float64) (string, error) {
	return s.address, s.err
}

func newTestServer(resolver addressResolver, reverse reverseGeocoder) *server {
	gin.SetMode(gin.TestMode)

	return &server{
		resolver: resolver,
		reverse:  reverse,
		admin:    adminauth.NewService("test-secret", "test-password"),
	}
}

func resolvedVia(role geocoding.Role, raw string) *geocoding.ResolvedAddress {
	return &geocoding.ResolvedAddress{
		Lat:             42.0934,
		Lng:             11.7954,
		Address:         "Via Roma, Civitavecchia, Lazio, Italia",
		DisplayName:     "Via Roma, Civitavecchia, Lazio, Italia",
		Provider:        role,
		Score:           230,
		OriginalAddress: raw,
		StreetName:      "Via Roma",
		CivicNumber:     "5",
	}
}

func TestGeocodeAddress(t *testing.T) {
	resolver := &stubResolver{resolved: map[string]*geocoding.ResolvedAddress{
		"Via Roma 5": resolvedVia(geocoding.RolePrimary, "Via Roma 5"),
	}}

	router := newTestServer(resolver, &stubReverse{}).router(false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/geocode?address=Via+Roma+5", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.Equal(t, true, body["success"])
	assert.Equal(t, 42.0934, body["lat"])
	assert.Equal(t, 11.7954, body["lng"])
	assert.Equal(t, "primary", body["provider"])
	assert.Equal(t, "Via Roma 5", body["originalAddress"])
	assert.Equal(t, "5", body["civicNumber"])
	assert.Equal(t, "Via Roma", body["streetName"])
}

func TestGeocodeAddressMissingParam(t *testing.T) {
	router := newTestServer(&stubResolver{}, &stubReverse{}).router(false)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/geocode", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGeocodeAddressNotFound(t *testing.T) {
	router := newTestServer(&stubResolver{}, &stubReverse{}).router(false)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/geocode?address=Via+Inesistente", nil))

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Civitavecchia")
}

func TestGeocodeBatchTruncatesAndCounts(t *testing.T) {
	resolver := &stubResolver{resolved: map[string]*geocoding.ResolvedAddress{}}
	for i := 0; i < 7; i++ {
		addr := fmt.Sprintf("Via Roma %d", i)
		resolver.resolved[addr] = resolvedVia(geocoding.RolePrimary, addr)
	}

	// 15 addresses in, only the first 10 attempted: 7 resolvable, 3 not.
	var addresses []string
	for i := 0; i < 15; i++ {
		addresses = append(addresses, fmt.Sprintf("Via Roma %d", i))
	}

	payload, err := json.Marshal(map[string]any{"addresses": addresses})
	require.NoError(t, err)

	router := newTestServer(resolver, &stubReverse{}).router(false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/geocode/batch", strings.NewReader(string(payload)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool             `json:"success"`
		Results []map[string]any `json:"results"`
		Total   int              `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.True(t, body.Success)
	assert.Len(t, body.Results, 10)
	assert.Equal(t, 7, body.Total)
	assert.Len(t, resolver.calls, 10)

	// Result order matches input order regardless of resolution order.
	for i, r := range body.Results {
		assert.Equal(t, fmt.Sprintf("Via Roma %d", i), r["address"])
	}

	_, failed := body.Results[6]["error"]
	assert.False(t, failed)
	_, failed = body.Results[9]["error"]
	assert.True(t, failed)
}

func TestGeocodeBatchRequiresAddresses(t *testing.T) {
	router := newTestServer(&stubResolver{}, &stubReverse{}).router(false)

	for _, payload := range []string{`{}`, `{"addresses": "Via Roma"}`, `not json`} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/geocode/batch", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "payload: %s", payload)
	}
}

func TestReverseGeocode(t *testing.T) {
	router := newTestServer(&stubResolver{}, &stubReverse{address: "Via Roma, Civitavecchia"}).router(false)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/geocode/reverse?lat=42.09&lng=11.79", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Via Roma, Civitavecchia")
}

func TestReverseGeocodeValidatesCoordinates(t *testing.T) {
	router := newTestServer(&stubResolver{}, &stubReverse{}).router(false)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/geocode/reverse?lat=abc", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReverseGeocodeNotFound(t *testing.T) {
	router := newTestServer(&stubResolver{}, &stubReverse{err: geocoding.ErrAddressNotFound}).router(false)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/geocode/reverse?lat=0&lng=0", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
