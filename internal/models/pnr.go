// Package models defines the data structures shared by the PNR resolution pipeline.
package models

import (
	"errors"
	"fmt"
)

// PNRLength is the number of decimal digits in a Passenger Name Record.
const PNRLength = 10

// Sentinel errors for the resolution pipeline.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrInvalidPNR indicates the input is not exactly ten decimal digits.
	// Fatal to the request; never retried.
	ErrInvalidPNR = errors.New("invalid pnr")

	// ErrSourceMiss indicates a tier answered but produced no usable data.
	// Internal: it only moves the resolver to the next tier.
	ErrSourceMiss = errors.New("source miss")

	// ErrSourceUnavailable indicates a transport failure, timeout or a
	// missing page element. Internal, like ErrSourceMiss.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrAllSourcesExhausted indicates every tier failed for a valid PNR.
	ErrAllSourcesExhausted = errors.New("all sources exhausted")

	// ErrNoPNRFound indicates a transcript did not contain ten recoverable digits.
	ErrNoPNRFound = errors.New("no pnr found")
)

// IsValidPNR reports whether s is exactly ten ASCII decimal digits.
func IsValidPNR(s string) bool {
	if len(s) != PNRLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ValidatePNR returns ErrInvalidPNR (wrapped with the offending input) when s
// is not a well-formed PNR.
func ValidatePNR(s string) error {
	if !IsValidPNR(s) {
		return fmt.Errorf("%w: %q must be %d digits", ErrInvalidPNR, s, PNRLength)
	}
	return nil
}
