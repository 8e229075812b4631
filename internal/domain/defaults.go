package domain

import "strings"

// DefaultCodePrefix starts generated order codes when no prefix is configured.
const DefaultCodePrefix = "ORD"

// OrderCodePrefix returns the configured prefix, or DefaultCodePrefix when blank.
func OrderCodePrefix(configured string) string {
	if p := strings.TrimSpace(configured); p != "" {
		return p
	}
	return DefaultCodePrefix
}

// DeclaredOrSummedHours returns the declared hours of an imported element,
// or the sum of its children when none were declared. Negative declarations
// are kept so validation can reject them.
func DeclaredOrSummedHours(declared *int, sum int) int {
	if declared != nil {
		return *declared
	}
	return sum
}
