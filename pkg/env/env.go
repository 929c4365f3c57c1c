package env

import (
	"os"
	"strconv"
)

// Get returns the value of the environment variable named by key, or fallback
// when unset or empty.
func Get(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// GetBool parses the environment variable as a bool, returning fallback when
// unset or unparseable.
func GetBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
