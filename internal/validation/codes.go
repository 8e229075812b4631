// Package validation implements the save-time checks over an order and its
// label types: code format, code and name uniqueness, and code generation.
package validation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/ordertree/internal/domain"
)

const (
	// Separator is reserved and may not appear in user codes.
	Separator = "_"
	// ChildSeparator joins a parent code and a generated sequence number.
	ChildSeparator = "-"
)

// IsFormatCodeValid reports whether code is non-empty and free of the
// reserved separator.
func IsFormatCodeValid(code string) bool {
	return strings.TrimSpace(code) != "" && !strings.Contains(code, Separator)
}

// ValidateCode checks the code of a single element.
func ValidateCode(e *domain.OrderElement) error {
	if strings.TrimSpace(e.Code) == "" {
		return &domain.ValidationError{Entity: e, Field: "code", Msg: fmt.Sprintf("%q: code cannot be empty", e.Name)}
	}
	if strings.Contains(e.Code, Separator) {
		return &domain.ValidationError{Entity: e, Field: "code", Value: e.Code,
			Msg: fmt.Sprintf("cannot contain the character %q", Separator)}
	}
	return nil
}

// CheckCodesUnique groups elements by code and reports one DuplicateError per
// code held by more than one element, listing every holder in tree order.
// Empty codes are left to ValidateCode.
func CheckCodesUnique(elements []*domain.OrderElement) []*domain.DuplicateError {
	holders := make(map[string][]any)
	var order []string
	for _, e := range elements {
		if e.Code == "" {
			continue
		}
		if _, seen := holders[e.Code]; !seen {
			order = append(order, e.Code)
		}
		holders[e.Code] = append(holders[e.Code], e)
	}
	var out []*domain.DuplicateError
	for _, code := range order {
		if len(holders[code]) > 1 {
			out = append(out, &domain.DuplicateError{Field: "code", Value: code, Entities: holders[code]})
		}
	}
	return out
}

// NextCode returns the code following the highest numeric suffix found among
// existing codes that start with prefix.
func NextCode(prefix string, existing []string, width int) string {
	return format(prefix, maxSuffix(prefix, existing)+1, width)
}

// GenerateCodes assigns prefix-based sequential codes to the elements that
// have none, continuing after the highest suffix already in use. Existing
// codes are kept. It returns the number of codes assigned.
func GenerateCodes(prefix string, elements []*domain.OrderElement, width int) int {
	existing := make([]string, 0, len(elements))
	for _, e := range elements {
		existing = append(existing, e.Code)
	}
	next := maxSuffix(prefix, existing) + 1
	assigned := 0
	for _, e := range elements {
		if strings.TrimSpace(e.Code) != "" {
			continue
		}
		e.Code = format(prefix, next, width)
		next++
		assigned++
	}
	return assigned
}

// GenerateLabelCodes fills in missing label codes as <type code>-<seq>.
func GenerateLabelCodes(lt *domain.LabelType, width int) int {
	prefix := lt.Code + ChildSeparator
	existing := make([]string, 0, len(lt.Labels))
	for _, l := range lt.Labels {
		existing = append(existing, l.Code)
	}
	next := maxSuffix(prefix, existing) + 1
	assigned := 0
	for _, l := range lt.Labels {
		if strings.TrimSpace(l.Code) != "" {
			continue
		}
		l.Code = format(prefix, next, width)
		next++
		assigned++
	}
	return assigned
}

func maxSuffix(prefix string, codes []string) int {
	highest := 0
	for _, c := range codes {
		rest, ok := strings.CutPrefix(c, prefix)
		if !ok || rest == "" {
			continue
		}
		n, err := strconv.Atoi(rest)
		if err != nil || n < 0 {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return highest
}

func format(prefix string, n, width int) string {
	if width < 1 {
		width = 1
	}
	return fmt.Sprintf("%s%0*d", prefix, width, n)
}
