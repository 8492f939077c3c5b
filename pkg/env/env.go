// package env contains simple getters for environment variables shared
// across the server and the ops binaries.
package env

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Get returns the value of the variable or the fallback when unset.
func Get(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}

	return fallback
}

// MustGet returns the value of the variable or an error when unset. Main
// functions are expected to fail fast on it.
func MustGet(name string) (string, error) {
	v := os.Getenv(name)
	if v == "" {
		return "", fmt.Errorf("missing %s environment variable. Please check your environment", name)
	}

	return v, nil
}

// GetInt parses the variable as an integer, falling back when unset or
// unparseable.
func GetInt(name string, fallback int) int {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}

	return n
}

// GetDuration parses the variable as a time.Duration, falling back when
// unset or unparseable.
func GetDuration(name string, fallback time.Duration) time.Duration {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}

	return d
}
