package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/bastabarriere/api/pkg/geocoding"
)

// maxBatchSize bounds one batch request; extra addresses are dropped, not
// rejected, so clients can paste a whole list and get the head resolved.
const maxBatchSize = 10

func (s *server) geocodeAddress(c *gin.Context) {
	address := c.Query("address")
	if address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address parameter is required"})
		return
	}

	resolved, err := s.resolver.Resolve(c.Request.Context(), address)
	if errors.Is(err, geocoding.ErrAddressNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": fmt.Sprintf("address not found in %s", s.resolver.Municipality()),
		})
		return
	}

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "geocoding failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"lat":             resolved.Lat,
		"lng":             resolved.Lng,
		"address":         resolved.Address,
		"provider":        string(resolved.Provider),
		"score":           resolved.Score,
		"originalAddress": resolved.OriginalAddress,
		"civicNumber":     resolved.CivicNumber,
		"streetName":      resolved.StreetName,
	})
}

type batchRequest struct {
	Addresses []string `json:"addresses"`
}

func (s *server) geocodeBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Addresses == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "addresses list is required"})
		return
	}

	addresses := req.Addresses
	if len(addresses) > maxBatchSize {
		addresses = addresses[:maxBatchSize]
	}

	results := make([]gin.H, len(addresses))

	var wg sync.WaitGroup
	for i, address := range addresses {
		wg.Add(1)
		go func(i int, address string) {
			defer wg.Done()

			resolved, err := s.resolver.Resolve(c.Request.Context(), address)
			if err != nil {
				results[i] = gin.H{"address": address, "error": err.Error()}
				return
			}

			results[i] = gin.H{
				"address":          address,
				"lat":              resolved.Lat,
				"lng":              resolved.Lng,
				"formattedAddress": resolved.Address,
				"provider":         string(resolved.Provider),
			}
		}(i, address)
	}
	wg.Wait()

	resolvedCount := 0
	for _, r := range results {
		if _, failed := r["error"]; !failed {
			resolvedCount++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"results": results,
		"total":   resolvedCount,
	})
}

func (s *server) reverseGeocode(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng parameters are required"})
		return
	}

	address, err := s.reverse.Reverse(lat, lng)
	if errors.Is(err, geocoding.ErrAddressNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no address at those coordinates"})
		return
	}

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reverse geocoding failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "address": address})
}
