package importer

import (
	"encoding/json"
	"fmt"
	"os"
)

const dateLayout = "2006-01-02"

// ImportSchema is the top-level JSON structure for order import.
type ImportSchema struct {
	Order    OrderImport     `json:"order"`
	Elements []ElementImport `json:"elements"`
}

// OrderImport defines the order root.
type OrderImport struct {
	Name        string  `json:"name"`
	Code        string  `json:"code,omitempty"`
	Description string  `json:"description,omitempty"`
	InitDate    *string `json:"init_date,omitempty"`
	Deadline    *string `json:"deadline,omitempty"`
}

// ElementImport defines a group or line. Elements without parent_ref hang
// off the order; a parent must appear earlier in the list.
type ElementImport struct {
	Ref         string             `json:"ref"`
	ParentRef   *string            `json:"parent_ref,omitempty"`
	Kind        string             `json:"kind"`
	Name        string             `json:"name"`
	Code        string             `json:"code,omitempty"`
	Description string             `json:"description,omitempty"`
	Hours       *int               `json:"hours,omitempty"`
	InitDate    *string            `json:"init_date,omitempty"`
	Deadline    *string            `json:"deadline,omitempty"`
	Labels      []LabelRefImport   `json:"labels,omitempty"`
	Criteria    []string           `json:"criteria,omitempty"`
	HoursGroups []HoursGroupImport `json:"hours_groups,omitempty"`
	Advance     []AdvanceImport    `json:"advance,omitempty"`
	Scheduling  *string            `json:"scheduling_state,omitempty"`
}

// LabelRefImport names an existing label by type and label name.
type LabelRefImport struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// HoursGroupImport defines a line's hours group. A percentage makes the
// group fixed; hours seed the proportions of free groups.
type HoursGroupImport struct {
	Code       string  `json:"code,omitempty"`
	Name       string  `json:"name"`
	Hours      int     `json:"hours,omitempty"`
	Percentage *string `json:"percentage,omitempty"`
}

// AdvanceImport assigns an existing advance type and optionally seeds
// measurements.
type AdvanceImport struct {
	Type         string              `json:"type"`
	Global       bool                `json:"global,omitempty"`
	MaxValue     *string             `json:"max_value,omitempty"`
	Measurements []MeasurementImport `json:"measurements,omitempty"`
}

type MeasurementImport struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

// LoadImportSchema reads and parses an order import JSON file.
func LoadImportSchema(path string) (*ImportSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseImportSchema(data)
}

// ParseImportSchema parses an order import document.
func ParseImportSchema(data []byte) (*ImportSchema, error) {
	var schema ImportSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parsing import file: %w", err)
	}
	return &schema, nil
}
