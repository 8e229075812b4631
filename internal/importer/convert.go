package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/ordertree/internal/advance"
	"github.com/alexanderramin/ordertree/internal/domain"
	"github.com/alexanderramin/ordertree/internal/tree"
	"github.com/shopspring/decimal"
)

// Catalog resolves references to stored labels, criteria and advance types.
// Lookups ignore case.
type Catalog interface {
	Label(typeName, name string) *domain.Label
	Criterion(name string) *domain.Criterion
	AdvanceType(name string) *domain.AdvanceType
}

type mapCatalog struct {
	labels   map[string]*domain.Label
	criteria map[string]*domain.Criterion
	advances map[string]*domain.AdvanceType
}

// NewCatalog indexes the given entities for lookup during conversion.
func NewCatalog(labelTypes []*domain.LabelType, criteria []*domain.Criterion, advanceTypes []*domain.AdvanceType) Catalog {
	c := &mapCatalog{
		labels:   make(map[string]*domain.Label),
		criteria: make(map[string]*domain.Criterion, len(criteria)),
		advances: make(map[string]*domain.AdvanceType, len(advanceTypes)),
	}
	for _, lt := range labelTypes {
		for _, l := range lt.Labels {
			c.labels[labelKey(lt.Name, l.Name)] = l
		}
	}
	for _, cr := range criteria {
		c.criteria[strings.ToLower(cr.Name)] = cr
	}
	for _, at := range advanceTypes {
		c.advances[strings.ToLower(at.Name)] = at
	}
	return c
}

func labelKey(typeName, name string) string {
	return strings.ToLower(typeName) + "\x00" + strings.ToLower(name)
}

func (c *mapCatalog) Label(typeName, name string) *domain.Label {
	return c.labels[labelKey(typeName, name)]
}

func (c *mapCatalog) Criterion(name string) *domain.Criterion {
	return c.criteria[strings.ToLower(name)]
}

func (c *mapCatalog) AdvanceType(name string) *domain.AdvanceType {
	return c.advances[strings.ToLower(name)]
}

// Convert builds a transient order tree from a validated ImportSchema.
// Call ValidateImportSchema first. Every unresolved reference or infeasible
// hours value is reported together as domain.ValidationErrors.
func Convert(schema *ImportSchema, catalog Catalog) (*tree.Tree, error) {
	root := domain.NewOrder(schema.Order.Name)
	root.Code = schema.Order.Code
	root.Description = schema.Order.Description
	root.InitDate = parseOptionalDate(schema.Order.InitDate)
	root.Deadline = parseOptionalDate(schema.Order.Deadline)

	t, err := tree.New(root)
	if err != nil {
		return nil, err
	}

	var errs domain.ValidationErrors
	byRef := make(map[string]*domain.OrderElement, len(schema.Elements))
	for i := range schema.Elements {
		in := &schema.Elements[i]
		prefix := fmt.Sprintf("elements[%d] (%s)", i, in.Ref)

		e := &domain.OrderElement{
			Kind:        domain.ElementKind(in.Kind),
			Name:        in.Name,
			Code:        in.Code,
			Description: in.Description,
			InitDate:    parseOptionalDate(in.InitDate),
			Deadline:    parseOptionalDate(in.Deadline),
		}
		if in.Scheduling != nil {
			e.SchedulingState = &domain.SchedulingState{Type: domain.SchedulingStateType(*in.Scheduling)}
		}

		parent := root
		if in.ParentRef != nil && *in.ParentRef != "" {
			p, ok := byRef[*in.ParentRef]
			if !ok {
				return nil, fmt.Errorf("%s: parent_ref %q not found", prefix, *in.ParentRef)
			}
			parent = p
		}
		if err := t.AddChild(parent, e); err != nil {
			return nil, fmt.Errorf("%s: %w", prefix, err)
		}
		byRef[in.Ref] = e

		if e.IsLeaf() {
			if err := convertHours(t, e, in); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", prefix, err))
			}
		}
		errs = append(errs, resolveReferences(prefix, e, in, catalog)...)
	}

	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}
	return t, nil
}

func convertHours(t *tree.Tree, e *domain.OrderElement, in *ElementImport) error {
	sum := 0
	for _, g := range in.HoursGroups {
		hg := &domain.HoursGroup{Code: g.Code, Name: g.Name, Hours: g.Hours}
		if g.Percentage != nil {
			hg.FixedPercentage = true
			hg.Percentage = decimal.RequireFromString(*g.Percentage)
		}
		e.HoursGroups = append(e.HoursGroups, hg)
		sum += g.Hours
	}
	return t.SetWorkHours(e, domain.DeclaredOrSummedHours(in.Hours, sum))
}

func resolveReferences(prefix string, e *domain.OrderElement, in *ElementImport, catalog Catalog) []error {
	var errs []error

	for _, ref := range in.Labels {
		l := catalog.Label(ref.Type, ref.Name)
		if l == nil {
			errs = append(errs, fmt.Errorf("%s: label %s/%s %w", prefix, ref.Type, ref.Name, domain.ErrNotFound))
			continue
		}
		e.AddLabel(l)
	}

	for _, name := range in.Criteria {
		c := catalog.Criterion(name)
		if c == nil {
			errs = append(errs, fmt.Errorf("%s: criterion %q %w", prefix, name, domain.ErrNotFound))
			continue
		}
		e.AddCriterionRequirement(c)
	}

	for _, a := range in.Advance {
		at := catalog.AdvanceType(a.Type)
		if at == nil {
			errs = append(errs, fmt.Errorf("%s: advance type %q %w", prefix, a.Type, domain.ErrNotFound))
			continue
		}
		maxValue := decimal.Zero
		if a.MaxValue != nil {
			maxValue = decimal.RequireFromString(*a.MaxValue)
		}
		assignment, err := advance.Assign(e, at, a.Global, maxValue)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", prefix, err))
			continue
		}
		for _, m := range a.Measurements {
			date, _ := time.Parse(dateLayout, m.Date)
			if err := advance.RecordMeasurement(assignment, date, decimal.RequireFromString(m.Value)); err != nil {
				errs = append(errs, fmt.Errorf("%s: measurement %s: %w", prefix, m.Date, err))
			}
		}
	}

	return errs
}

func parseOptionalDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil
	}
	return &t
}
