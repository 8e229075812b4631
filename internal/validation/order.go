package validation

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/ordertree/internal/domain"
	"github.com/alexanderramin/ordertree/internal/tree"
)

// ValidateOrder runs the full save-time pass over t and returns every problem
// as a single domain.ValidationErrors, or nil.
func ValidateOrder(t *tree.Tree) error {
	var errs domain.ValidationErrors
	all := append([]*domain.OrderElement{t.Root()}, t.Elements()...)

	for _, e := range all {
		if strings.TrimSpace(e.Name) == "" {
			errs = append(errs, &domain.ValidationError{Entity: e, Field: "name",
				Msg: fmt.Sprintf("element %s: name cannot be empty", label(t, e))})
		}
		if err := ValidateCode(e); err != nil {
			errs = append(errs, err)
		}
		errs = append(errs, checkHours(e)...)
	}
	for _, d := range CheckCodesUnique(all) {
		errs = append(errs, d)
	}
	return errs.ErrOrNil()
}

func checkHours(e *domain.OrderElement) []error {
	var errs []error
	if e.WorkHours < 0 {
		errs = append(errs, &domain.ValidationError{Entity: e, Field: "work_hours", Value: e.WorkHours, Msg: "must not be negative"})
	}
	if e.IsContainer() {
		if sum := e.SumChildrenHours(); sum != e.WorkHours {
			errs = append(errs, &domain.ValidationError{Entity: e, Field: "work_hours", Value: e.WorkHours,
				Msg: fmt.Sprintf("%q does not match the sum of its children (%d)", e.Name, sum)})
		}
		return errs
	}
	if len(e.HoursGroups) > 0 && e.HoursGroupsTotal() != e.WorkHours {
		errs = append(errs, &domain.ValidationError{Entity: e, Field: "work_hours", Value: e.WorkHours,
			Msg: fmt.Sprintf("%q does not match the sum of its hours groups (%d)", e.Name, e.HoursGroupsTotal())})
	}
	return errs
}

func label(t *tree.Tree, e *domain.OrderElement) string {
	if e == t.Root() {
		return "order"
	}
	return t.PathString(e)
}
