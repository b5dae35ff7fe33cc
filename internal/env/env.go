// Package env provides environment variable helpers and a Wrap function for
// ambient error context, grounded on the teacher's pkg/utils.
package env

import (
	"fmt"
	"os"
	"strconv"
)

// OrDefault returns the value of the environment variable key, or fallback
// if it is unset or empty.
func OrDefault(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// OrDefaultInt is the integer counterpart of OrDefault.
func OrDefaultInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// Wrap adds context to an error message. It returns nil if err is nil, the
// same "wrap or pass through nil" shape as the teacher's utils.Wrap.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
