package scenariodomain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf16"
)

const (
	// FingerprintPrefix marks scenario fingerprints.
	FingerprintPrefix = "scn_"

	fieldDelimiter = "|"

	minIntensity = 0
	maxIntensity = 100
)

// ValidationError reports a malformed ScenarioInput.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid scenario input: %s %s", e.Field, e.Reason)
}

// Validate rejects inputs that must never reach the hash. Intensities are
// range checked after half-up rounding, so 100.3 is accepted and 100.5 is not.
func (in ScenarioInput) Validate() error {
	zone := trimZone(in.Zone)
	if zone == "" {
		return &ValidationError{Field: "zone", Reason: "is required"}
	}
	if strings.Contains(zone, fieldDelimiter) {
		return &ValidationError{Field: "zone", Reason: "must not contain " + strconv.Quote(fieldDelimiter)}
	}

	if len(in.RequestID) > MaxRequestIDLength {
		return &ValidationError{Field: "request_id", Reason: fmt.Sprintf("must be at most %d bytes", MaxRequestIDLength)}
	}

	fields := []struct {
		name  string
		value float64
	}{
		{"trees", in.Trees},
		{"traffic", in.Traffic},
		{"waste", in.Waste},
		{"cooling", in.Cooling},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return &ValidationError{Field: f.name, Reason: "must be a finite number"}
		}
		// the range applies to the value that gets fingerprinted
		if r := math.Floor(f.value + 0.5); r < minIntensity || r > maxIntensity {
			return &ValidationError{Field: f.name, Reason: fmt.Sprintf("must round into [%d, %d], got %g", minIntensity, maxIntensity, f.value)}
		}
	}
	return nil
}

// Rounded returns the half-up rounded intervention values.
func (in ScenarioInput) Rounded() RoundedValues {
	return RoundedValues{
		Trees:   roundHalfUp(in.Trees),
		Traffic: roundHalfUp(in.Traffic),
		Waste:   roundHalfUp(in.Waste),
		Cooling: roundHalfUp(in.Cooling),
	}
}

// CanonicalString renders the fixed-order form the fingerprint hashes:
// zone|trees|traffic|waste|cooling.
func (in ScenarioInput) CanonicalString() string {
	r := in.Rounded()
	return strings.Join([]string{
		trimZone(in.Zone),
		strconv.Itoa(r.Trees),
		strconv.Itoa(r.Traffic),
		strconv.Itoa(r.Waste),
		strconv.Itoa(r.Cooling),
	}, fieldDelimiter)
}

// Fingerprint returns the deterministic identifier of a scenario input.
//
// The hash is a 32-bit rolling hash (h = h*31 + c) over the UTF-16 code units
// of the canonical string. It is NOT collision resistant in any cryptographic
// sense and must not be used as a security boundary.
func Fingerprint(in ScenarioInput) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}
	return FingerprintCanonical(in.CanonicalString()), nil
}

// FingerprintCanonical hashes an already canonical string.
func FingerprintCanonical(canonical string) string {
	var h int32
	for _, unit := range utf16.Encode([]rune(canonical)) {
		h = h*31 + int32(unit)
	}

	// widen before negating so MinInt32 stays positive
	abs := int64(h)
	if abs < 0 {
		abs = -abs
	}
	return FingerprintPrefix + strconv.FormatInt(abs, 16)
}

func trimZone(z string) string {
	return strings.TrimSpace(z)
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
