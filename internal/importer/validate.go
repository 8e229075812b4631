package importer

import (
	"fmt"
	"time"

	"github.com/alexanderramin/ordertree/internal/domain"
	"github.com/alexanderramin/ordertree/internal/validation"
	"github.com/shopspring/decimal"
)

var validSchedulingStates = map[string]bool{
	string(domain.SchedulingNone):      true,
	string(domain.SchedulingScheduled): true,
	string(domain.SchedulingPartial):   true,
	string(domain.SchedulingPoint):     true,
}

// ValidateImportSchema checks the import schema for errors before conversion.
// Returns a slice of all validation errors found.
func ValidateImportSchema(schema *ImportSchema) []error {
	var errs []error

	codes := make(map[string]string)
	errs = append(errs, validateOrder(&schema.Order, codes)...)

	kinds := make(map[string]string)
	for i := range schema.Elements {
		errs = append(errs, validateElement(i, &schema.Elements[i], kinds, codes)...)
	}

	return errs
}

func validateOrder(o *OrderImport, codes map[string]string) []error {
	var errs []error

	if o.Name == "" {
		errs = append(errs, fmt.Errorf("order.name is required"))
	}
	errs = append(errs, validateCode("order.code", o.Code, codes)...)
	errs = append(errs, validateDates("order", o.InitDate, o.Deadline)...)

	return errs
}

func validateElement(i int, e *ElementImport, kinds map[string]string, codes map[string]string) []error {
	var errs []error
	prefix := fmt.Sprintf("elements[%d]", i)

	if e.Ref == "" {
		errs = append(errs, fmt.Errorf("%s.ref is required", prefix))
	} else if _, dup := kinds[e.Ref]; dup {
		errs = append(errs, fmt.Errorf("%s.ref: duplicate ref %q", prefix, e.Ref))
	}

	if e.Name == "" {
		errs = append(errs, fmt.Errorf("%s.name is required", prefix))
	}
	if e.Kind == "" {
		errs = append(errs, fmt.Errorf("%s.kind is required", prefix))
	} else if !domain.ValidElementKinds[e.Kind] || e.Kind == string(domain.KindOrder) {
		errs = append(errs, fmt.Errorf("%s.kind: invalid value %q (expected group or line)", prefix, e.Kind))
	}

	if e.ParentRef != nil && *e.ParentRef != "" {
		parentKind, ok := kinds[*e.ParentRef]
		switch {
		case !ok:
			errs = append(errs, fmt.Errorf("%s.parent_ref: ref %q not found (must appear earlier in elements list)", prefix, *e.ParentRef))
		case parentKind == string(domain.KindLine):
			errs = append(errs, fmt.Errorf("%s.parent_ref: %q is a line and cannot hold children", prefix, *e.ParentRef))
		}
	}
	if e.Ref != "" {
		if _, dup := kinds[e.Ref]; !dup {
			kinds[e.Ref] = e.Kind
		}
	}

	errs = append(errs, validateCode(prefix+".code", e.Code, codes)...)
	errs = append(errs, validateDates(prefix, e.InitDate, e.Deadline)...)

	if e.Kind == string(domain.KindGroup) {
		if e.Hours != nil {
			errs = append(errs, fmt.Errorf("%s.hours: groups derive their hours from their children", prefix))
		}
		if len(e.HoursGroups) > 0 {
			errs = append(errs, fmt.Errorf("%s.hours_groups: only lines carry hours groups", prefix))
		}
	}
	if e.Hours != nil && *e.Hours < 0 {
		errs = append(errs, fmt.Errorf("%s.hours must not be negative", prefix))
	}

	for j, g := range e.HoursGroups {
		gp := fmt.Sprintf("%s.hours_groups[%d]", prefix, j)
		if g.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", gp))
		}
		if g.Hours < 0 {
			errs = append(errs, fmt.Errorf("%s.hours must not be negative", gp))
		}
		if g.Percentage != nil {
			pct, err := decimal.NewFromString(*g.Percentage)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s.percentage: invalid number %q", gp, *g.Percentage))
			} else if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(1)) {
				errs = append(errs, fmt.Errorf("%s.percentage %s must be between 0 and 1", gp, pct))
			}
		}
	}

	for j, l := range e.Labels {
		if l.Type == "" || l.Name == "" {
			errs = append(errs, fmt.Errorf("%s.labels[%d]: type and name are required", prefix, j))
		}
	}
	for j, c := range e.Criteria {
		if c == "" {
			errs = append(errs, fmt.Errorf("%s.criteria[%d] is empty", prefix, j))
		}
	}
	for j, a := range e.Advance {
		errs = append(errs, validateAdvance(fmt.Sprintf("%s.advance[%d]", prefix, j), &a)...)
	}

	if e.Scheduling != nil && !validSchedulingStates[*e.Scheduling] {
		errs = append(errs, fmt.Errorf("%s.scheduling_state: invalid value %q", prefix, *e.Scheduling))
	}

	return errs
}

func validateAdvance(prefix string, a *AdvanceImport) []error {
	var errs []error

	if a.Type == "" {
		errs = append(errs, fmt.Errorf("%s.type is required", prefix))
	}
	if a.MaxValue != nil {
		if v, err := decimal.NewFromString(*a.MaxValue); err != nil || !v.IsPositive() {
			errs = append(errs, fmt.Errorf("%s.max_value: %q must be a positive number", prefix, *a.MaxValue))
		}
	}
	for k, m := range a.Measurements {
		mp := fmt.Sprintf("%s.measurements[%d]", prefix, k)
		if _, err := time.Parse(dateLayout, m.Date); err != nil {
			errs = append(errs, fmt.Errorf("%s.date: invalid date format %q (expected YYYY-MM-DD)", mp, m.Date))
		}
		if _, err := decimal.NewFromString(m.Value); err != nil {
			errs = append(errs, fmt.Errorf("%s.value: invalid number %q", mp, m.Value))
		}
	}

	return errs
}

func validateCode(field, code string, seen map[string]string) []error {
	if code == "" {
		return nil
	}
	if !validation.IsFormatCodeValid(code) {
		return []error{fmt.Errorf("%s %q must not contain the character %q", field, code, validation.Separator)}
	}
	if first, dup := seen[code]; dup {
		return []error{fmt.Errorf("%s %q is already used by %s", field, code, first)}
	}
	seen[code] = field
	return nil
}

func validateDates(prefix string, init, deadline *string) []error {
	return append(validateOptionalDate(prefix+".init_date", init), validateOptionalDate(prefix+".deadline", deadline)...)
}

func validateOptionalDate(field string, dateStr *string) []error {
	if dateStr == nil || *dateStr == "" {
		return nil
	}
	if _, err := time.Parse(dateLayout, *dateStr); err != nil {
		return []error{fmt.Errorf("%s: invalid date format %q (expected YYYY-MM-DD)", field, *dateStr)}
	}
	return nil
}
