package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/ordertree/internal/advance"
	"github.com/alexanderramin/ordertree/internal/domain"
	"github.com/alexanderramin/ordertree/internal/filter"
	"github.com/alexanderramin/ordertree/internal/repository"
)

// PathFunc returns the dotted path of an element, "" for the order itself.
type PathFunc func(e *domain.OrderElement) string

// FormatOrderList renders stored orders as a table.
func FormatOrderList(orders []*domain.OrderElement) string {
	rows := make([][]string, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, []string{
			CodeOrDash(o.Code),
			o.Name,
			FormatHours(o.WorkHours),
			FormatDate(o.InitDate),
			FormatDate(o.Deadline),
			Dim("v" + strconv.FormatInt(o.Version, 10)),
		})
	}
	return RenderTableAligned(
		[]string{"CODE", "NAME", "HOURS", "START", "DEADLINE", "VERSION"},
		rows, map[int]bool{2: true})
}

// FormatOrderTree renders a (possibly filtered) view as a path-numbered
// tree. Elements kept only as ancestors of a match are dimmed.
func FormatOrderTree(view *filter.View, pathOf PathFunc) string {
	var items []TreeItem
	var walk func(v *filter.View, level int, last bool)
	walk = func(v *filter.View, level int, last bool) {
		e := v.Element
		title := e.Name
		if e.Code != "" {
			title += " " + Dim("("+e.Code+")")
		}
		items = append(items, TreeItem{
			Path:   pathOf(e),
			Title:  title,
			Level:  level,
			IsLast: last,
			Muted:  !v.Matched,
			Detail: elementBadge(e),
		})
		for i, c := range v.Children {
			walk(c, level+1, i == len(v.Children)-1)
		}
	}
	walk(view, 0, true)
	return RenderTree(items)
}

func elementBadge(e *domain.OrderElement) string {
	badge := FormatHours(e.WorkHours)
	if r := advance.Percentage(e); r.Tracked {
		badge += " · " + r.String()
	}
	return badge
}

// FormatElementTable renders the view as the editing grid: one row per
// element with its path, code, name, dates and hours.
func FormatElementTable(view *filter.View, pathOf PathFunc) string {
	elements := view.Elements()
	rows := make([][]string, 0, len(elements))
	for _, e := range elements {
		name := strings.Repeat("  ", strings.Count(pathOf(e), ".")) + e.Name
		rows = append(rows, []string{
			pathOf(e),
			CodeOrDash(e.Code),
			name,
			FormatDate(e.InitDate),
			FormatDate(e.Deadline),
			FormatHours(e.WorkHours),
			advance.Percentage(e).String(),
		})
	}
	return RenderTableAligned(
		[]string{"#", "CODE", "NAME", "START", "DEADLINE", "HOURS", "ADVANCE"},
		rows, map[int]bool{5: true, 6: true})
}

// Tooltip summarizes an element on one line: name, description, labels,
// valid criteria and advance.
func Tooltip(e *domain.OrderElement) string {
	var b strings.Builder
	b.WriteString(e.Name + ".")
	if d := strings.TrimSpace(e.Description); d != "" {
		b.WriteString(" " + d + ".")
	}
	if len(e.Labels) > 0 {
		names := make([]string, len(e.Labels))
		for i, l := range e.Labels {
			names[i] = l.Name
		}
		b.WriteString(" Labels: " + strings.Join(names, ", ") + ".")
	}
	if criteria := e.ValidCriteria(); len(criteria) > 0 {
		names := make([]string, len(criteria))
		for i, c := range criteria {
			names[i] = c.Name
		}
		b.WriteString(" Criteria: " + strings.Join(names, ", ") + ".")
	}
	b.WriteString(" Advance: " + advance.Percentage(e).String() + ".")
	return b.String()
}

// FormatElementDetail renders everything known about one element.
func FormatElementDetail(e *domain.OrderElement, path string, state domain.SchedulingState) string {
	var b strings.Builder
	label := func(k, v string) {
		b.WriteString(fmt.Sprintf("%s %s\n", Dim(fmt.Sprintf("%-12s", k)), v))
	}
	if path != "" {
		label("Path", path)
	}
	label("Kind", string(e.Kind))
	label("Code", CodeOrDash(e.Code))
	label("Hours", FormatHours(e.WorkHours))
	label("Start", FormatDate(e.InitDate))
	label("Deadline", FormatDate(e.Deadline))
	label("Scheduling", SchedulingIndicator(state.Type))
	if r := advance.Percentage(e); r.Tracked {
		label("Advance", RenderProgress(r.Value, 20))
	} else {
		label("Advance", Dim(r.String()))
	}
	b.WriteString("\n" + Tooltip(e) + "\n")

	if len(e.HoursGroups) > 0 {
		b.WriteString("\n" + FormatHoursGroups(e.HoursGroups))
	}
	if len(e.AdvanceAssignments) > 0 {
		b.WriteString("\n" + FormatAdvance(e))
	}
	return RenderBox(e.Name, strings.TrimRight(b.String(), "\n"))
}

// FormatHoursGroups renders a line's hours distribution.
func FormatHoursGroups(groups []*domain.HoursGroup) string {
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		share := Dim("free")
		if g.FixedPercentage {
			share = g.Percentage.Mul(hundred).StringFixed(2) + "%"
		}
		rows = append(rows, []string{CodeOrDash(g.Code), g.Name, FormatHours(g.Hours), share})
	}
	return RenderTableAligned([]string{"CODE", "GROUP", "HOURS", "SHARE"}, rows, map[int]bool{2: true})
}

// FormatAdvance renders e's advance assignments and their latest values.
func FormatAdvance(e *domain.OrderElement) string {
	rows := make([][]string, 0, len(e.AdvanceAssignments))
	for _, a := range e.AdvanceAssignments {
		global := ""
		if a.ReportGlobalAdvance {
			global = StyleGreen.Render("●")
		}
		latest := Dim("--")
		if m, ok := a.LatestMeasurement(); ok {
			latest = fmt.Sprintf("%s on %s", m.Value.String(), m.Date.Format(dateLayout))
		}
		rows = append(rows, []string{
			a.Type.Name, global, a.MaxValue.String(), latest, advance.Of(a).String(),
		})
	}
	return RenderTableAligned(
		[]string{"ADVANCE", "GLOBAL", "MAX", "LATEST", "PERCENT"},
		rows, map[int]bool{2: true, 4: true})
}

// FormatLabelTypes renders label types with their labels.
func FormatLabelTypes(types []*domain.LabelType) string {
	rows := make([][]string, 0, len(types))
	for _, lt := range types {
		names := make([]string, len(lt.Labels))
		for i, l := range lt.Labels {
			names[i] = l.Name
		}
		rows = append(rows, []string{CodeOrDash(lt.Code), lt.Name, strings.Join(names, ", ")})
	}
	return RenderTable([]string{"CODE", "TYPE", "LABELS"}, rows)
}

// FormatAdvanceTypes renders the advance type catalog.
func FormatAdvanceTypes(types []*domain.AdvanceType) string {
	rows := make([][]string, 0, len(types))
	for _, t := range types {
		kind := t.Unit
		if t.Percentage {
			kind = "%"
		}
		rows = append(rows, []string{t.Name, kind, t.DefaultMaxValue.String()})
	}
	return RenderTableAligned([]string{"NAME", "UNIT", "MAX"}, rows, map[int]bool{2: true})
}

// FormatCriteria renders the criterion catalog.
func FormatCriteria(criteria []*domain.Criterion) string {
	rows := make([][]string, 0, len(criteria))
	for _, c := range criteria {
		rows = append(rows, []string{c.Name, string(c.Type)})
	}
	return RenderTable([]string{"NAME", "TYPE"}, rows)
}

// FormatWorkReport renders the work-report lines of one element.
func FormatWorkReport(lines []*repository.WorkReportLine) string {
	rows := make([][]string, 0, len(lines))
	total := 0
	for _, l := range lines {
		rows = append(rows, []string{l.Date.Format(dateLayout), FormatHours(l.Hours)})
		total += l.Hours
	}
	rows = append(rows, []string{Bold("total"), Bold(FormatHours(total))})
	return RenderTableAligned([]string{"DATE", "HOURS"}, rows, map[int]bool{1: true})
}
