package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/ordertree/internal/db"
	"github.com/alexanderramin/ordertree/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// elementColumns is the canonical SELECT column list for order_elements.
const elementColumns = `id, order_id, parent_id, kind, code, name, description, init_date, deadline,
		work_hours, position, code_autogenerated, scheduling_state, version, created_at, updated_at`

type elementRow struct {
	ID                string         `db:"id"`
	OrderID           string         `db:"order_id"`
	ParentID          sql.NullString `db:"parent_id"`
	Kind              string         `db:"kind"`
	Code              string         `db:"code"`
	Name              string         `db:"name"`
	Description       string         `db:"description"`
	InitDate          sql.NullString `db:"init_date"`
	Deadline          sql.NullString `db:"deadline"`
	WorkHours         int            `db:"work_hours"`
	Position          int            `db:"position"`
	CodeAutogenerated int            `db:"code_autogenerated"`
	SchedulingState   string         `db:"scheduling_state"`
	Version           int64          `db:"version"`
	CreatedAt         string         `db:"created_at"`
	UpdatedAt         string         `db:"updated_at"`
}

func (row elementRow) toDomain() *domain.OrderElement {
	return &domain.OrderElement{
		ID:                row.ID,
		OrderID:           row.OrderID,
		Kind:              domain.ElementKind(row.Kind),
		Code:              row.Code,
		Name:              row.Name,
		Description:       row.Description,
		InitDate:          parseNullableTime(row.InitDate, dateLayout),
		Deadline:          parseNullableTime(row.Deadline, dateLayout),
		WorkHours:         row.WorkHours,
		CodeAutogenerated: intToBool(row.CodeAutogenerated),
		SchedulingState:   &domain.SchedulingState{Type: domain.SchedulingStateType(row.SchedulingState)},
		Version:           row.Version,
		CreatedAt:         parseTime(row.CreatedAt),
		UpdatedAt:         parseTime(row.UpdatedAt),
	}
}

type hoursGroupRow struct {
	ID              string `db:"id"`
	ElementID       string `db:"element_id"`
	Code            string `db:"code"`
	Name            string `db:"name"`
	Hours           int    `db:"hours"`
	FixedPercentage int    `db:"fixed_percentage"`
	Percentage      string `db:"percentage"`
}

type elementLabelRow struct {
	ElementID   string `db:"element_id"`
	ID          string `db:"id"`
	LabelTypeID string `db:"label_type_id"`
	Code        string `db:"code"`
	Name        string `db:"name"`
}

type requirementRow struct {
	ID            string `db:"id"`
	ElementID     string `db:"element_id"`
	Valid         int    `db:"valid"`
	CriterionID   string `db:"criterion_id"`
	CriterionName string `db:"criterion_name"`
	CriterionType string `db:"criterion_type"`
}

type assignmentRow struct {
	ID             string `db:"id"`
	ElementID      string `db:"element_id"`
	ReportGlobal   int    `db:"report_global"`
	MaxValue       string `db:"max_value"`
	TypeID         string `db:"type_id"`
	TypeName       string `db:"type_name"`
	TypeUnit       string `db:"type_unit"`
	TypeDefaultMax string `db:"type_default_max"`
	TypePercentage int    `db:"type_percentage"`
}

type measurementRow struct {
	AssignmentID string `db:"assignment_id"`
	Date         string `db:"date"`
	Value        string `db:"value"`
}

// SQLiteOrderRepo implements OrderRepo using a SQLite database. Orders are
// stored as one row per element; the root row's version is the order's
// concurrency token.
type SQLiteOrderRepo struct {
	db db.DBTX
}

// NewSQLiteOrderRepo creates a new SQLiteOrderRepo.
func NewSQLiteOrderRepo(conn db.DBTX) *SQLiteOrderRepo {
	return &SQLiteOrderRepo{db: conn}
}

func (r *SQLiteOrderRepo) Load(ctx context.Context, id string) (*domain.OrderElement, error) {
	var rows []elementRow
	err := sqlx.SelectContext(ctx, r.db, &rows,
		`SELECT `+elementColumns+` FROM order_elements WHERE order_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("loading order elements: %w", err)
	}

	byID := make(map[string]*domain.OrderElement, len(rows))
	for _, row := range rows {
		byID[row.ID] = row.toDomain()
	}
	root := byID[id]
	if root == nil || root.Kind != domain.KindOrder {
		return nil, fmt.Errorf("order %s: %w", id, domain.ErrNotFound)
	}
	for _, row := range rows {
		if !row.ParentID.Valid {
			continue
		}
		parent := byID[row.ParentID.String]
		if parent == nil {
			return nil, fmt.Errorf("order %s: element %s has unknown parent %s", id, row.ID, row.ParentID.String)
		}
		parent.Children = append(parent.Children, byID[row.ID])
	}

	if err := r.loadHoursGroups(ctx, id, byID); err != nil {
		return nil, err
	}
	if err := r.loadLabels(ctx, id, byID); err != nil {
		return nil, err
	}
	if err := r.loadRequirements(ctx, id, byID); err != nil {
		return nil, err
	}
	if err := r.loadAdvance(ctx, id, byID); err != nil {
		return nil, err
	}
	return root, nil
}

func (r *SQLiteOrderRepo) loadHoursGroups(ctx context.Context, orderID string, byID map[string]*domain.OrderElement) error {
	var rows []hoursGroupRow
	err := sqlx.SelectContext(ctx, r.db, &rows, `
		SELECT hg.id, hg.element_id, hg.code, hg.name, hg.hours, hg.fixed_percentage, hg.percentage
		FROM hours_groups hg
		JOIN order_elements e ON e.id = hg.element_id
		WHERE e.order_id = ?
		ORDER BY hg.position`, orderID)
	if err != nil {
		return fmt.Errorf("loading hours groups: %w", err)
	}
	for _, row := range rows {
		e := byID[row.ElementID]
		e.HoursGroups = append(e.HoursGroups, &domain.HoursGroup{
			ID:              row.ID,
			Code:            row.Code,
			Name:            row.Name,
			Hours:           row.Hours,
			FixedPercentage: intToBool(row.FixedPercentage),
			Percentage:      parseDecimal(row.Percentage),
		})
	}
	return nil
}

func (r *SQLiteOrderRepo) loadLabels(ctx context.Context, orderID string, byID map[string]*domain.OrderElement) error {
	var rows []elementLabelRow
	err := sqlx.SelectContext(ctx, r.db, &rows, `
		SELECT el.element_id, l.id, l.label_type_id, l.code, l.name
		FROM element_labels el
		JOIN labels l ON l.id = el.label_id
		JOIN order_elements e ON e.id = el.element_id
		WHERE e.order_id = ?
		ORDER BY el.position`, orderID)
	if err != nil {
		return fmt.Errorf("loading element labels: %w", err)
	}
	labels := make(map[string]*domain.Label)
	for _, row := range rows {
		l := labels[row.ID]
		if l == nil {
			l = &domain.Label{ID: row.ID, Code: row.Code, Name: row.Name, TypeID: row.LabelTypeID}
			labels[row.ID] = l
		}
		byID[row.ElementID].Labels = append(byID[row.ElementID].Labels, l)
	}
	return nil
}

func (r *SQLiteOrderRepo) loadRequirements(ctx context.Context, orderID string, byID map[string]*domain.OrderElement) error {
	var rows []requirementRow
	err := sqlx.SelectContext(ctx, r.db, &rows, `
		SELECT cr.id, cr.element_id, cr.valid, c.id AS criterion_id, c.name AS criterion_name, c.type AS criterion_type
		FROM criterion_requirements cr
		JOIN criteria c ON c.id = cr.criterion_id
		JOIN order_elements e ON e.id = cr.element_id
		WHERE e.order_id = ?
		ORDER BY cr.position`, orderID)
	if err != nil {
		return fmt.Errorf("loading criterion requirements: %w", err)
	}
	criteria := make(map[string]*domain.Criterion)
	for _, row := range rows {
		c := criteria[row.CriterionID]
		if c == nil {
			c = &domain.Criterion{ID: row.CriterionID, Name: row.CriterionName, Type: domain.CriterionType(row.CriterionType)}
			criteria[row.CriterionID] = c
		}
		e := byID[row.ElementID]
		e.CriterionRequirements = append(e.CriterionRequirements, &domain.CriterionRequirement{
			ID:        row.ID,
			Criterion: c,
			Valid:     intToBool(row.Valid),
		})
	}
	return nil
}

func (r *SQLiteOrderRepo) loadAdvance(ctx context.Context, orderID string, byID map[string]*domain.OrderElement) error {
	var rows []assignmentRow
	err := sqlx.SelectContext(ctx, r.db, &rows, `
		SELECT a.id, a.element_id, a.report_global, a.max_value,
			t.id AS type_id, t.name AS type_name, t.unit AS type_unit,
			t.default_max_value AS type_default_max, t.percentage AS type_percentage
		FROM advance_assignments a
		JOIN advance_types t ON t.id = a.advance_type_id
		JOIN order_elements e ON e.id = a.element_id
		WHERE e.order_id = ?
		ORDER BY a.position`, orderID)
	if err != nil {
		return fmt.Errorf("loading advance assignments: %w", err)
	}
	types := make(map[string]*domain.AdvanceType)
	assignments := make(map[string]*domain.AdvanceAssignment, len(rows))
	for _, row := range rows {
		t := types[row.TypeID]
		if t == nil {
			t = &domain.AdvanceType{
				ID:              row.TypeID,
				Name:            row.TypeName,
				Unit:            row.TypeUnit,
				DefaultMaxValue: parseDecimal(row.TypeDefaultMax),
				Percentage:      intToBool(row.TypePercentage),
			}
			types[row.TypeID] = t
		}
		a := &domain.AdvanceAssignment{
			ID:                  row.ID,
			Type:                t,
			ReportGlobalAdvance: intToBool(row.ReportGlobal),
			MaxValue:            parseDecimal(row.MaxValue),
		}
		assignments[row.ID] = a
		e := byID[row.ElementID]
		e.AdvanceAssignments = append(e.AdvanceAssignments, a)
	}

	var measurements []measurementRow
	err = sqlx.SelectContext(ctx, r.db, &measurements, `
		SELECT m.assignment_id, m.date, m.value
		FROM advance_measurements m
		JOIN advance_assignments a ON a.id = m.assignment_id
		JOIN order_elements e ON e.id = a.element_id
		WHERE e.order_id = ?
		ORDER BY m.assignment_id, m.position`, orderID)
	if err != nil {
		return fmt.Errorf("loading advance measurements: %w", err)
	}
	for _, m := range measurements {
		d, err := time.Parse(dateLayout, m.Date)
		if err != nil {
			return fmt.Errorf("parsing measurement date %q: %w", m.Date, err)
		}
		a := assignments[m.AssignmentID]
		a.Measurements = append(a.Measurements, domain.AdvanceMeasurement{Date: d, Value: parseDecimal(m.Value)})
	}
	return nil
}

// placed is an element with its storage coordinates.
type placed struct {
	e        *domain.OrderElement
	parentID any
	position int
}

// flatten lists root and its subtree in pre-order so parents are written
// before their children.
func flatten(root *domain.OrderElement) []placed {
	out := []placed{{e: root}}
	var walk func(p *domain.OrderElement)
	walk = func(p *domain.OrderElement) {
		for i, c := range p.Children {
			out = append(out, placed{e: c, parentID: p.ID, position: i})
			walk(c)
		}
	}
	walk(root)
	return out
}

// Save writes the whole tree. New elements and their parts receive fresh
// IDs, which are cleared again if the save fails. Elements of the order that
// are no longer in the tree are deleted. Versions and timestamps in memory
// are left alone; the caller applies them with MarkSaved once the
// transaction commits.
func (r *SQLiteOrderRepo) Save(ctx context.Context, root *domain.OrderElement) (version int64, err error) {
	if root.Kind != domain.KindOrder {
		return 0, &domain.StructuralError{Op: "save order", Reason: fmt.Sprintf("%q is not an order", root.Name)}
	}
	if !root.IsNew() {
		if err := CheckVersion(ctx, r.db, "order_elements", root.ID, root.Version); err != nil {
			return 0, err
		}
	}

	fresh := AssignIDs(root)
	defer func() {
		if err != nil {
			ClearIDs(fresh)
		}
	}()

	now := time.Now().UTC()
	version = root.Version + 1
	keep := make(map[string]bool)
	for _, p := range flatten(root) {
		e := p.e
		e.OrderID = root.ID
		if err := r.upsertElement(ctx, e, p.parentID, p.position, version, now); err != nil {
			return 0, err
		}
		if err := r.writeDetails(ctx, e); err != nil {
			return 0, err
		}
		keep[e.ID] = true
	}

	var existing []string
	if err := sqlx.SelectContext(ctx, r.db, &existing, `SELECT id FROM order_elements WHERE order_id = ?`, root.ID); err != nil {
		return 0, fmt.Errorf("listing stored elements: %w", err)
	}
	for _, id := range existing {
		if keep[id] {
			continue
		}
		if _, err := r.db.ExecContext(ctx, `DELETE FROM order_elements WHERE id = ?`, id); err != nil {
			return 0, fmt.Errorf("deleting removed element %s: %w", id, err)
		}
	}

	return version, nil
}

// MarkSaved applies a committed save to the tree under root.
func MarkSaved(root *domain.OrderElement, version int64, now time.Time) {
	for _, p := range flatten(root) {
		if p.e.CreatedAt.IsZero() {
			p.e.CreatedAt = now
		}
		p.e.Version = version
		p.e.Touch(now)
	}
}

// ClearIDs resets IDs handed out by AssignIDs whose save did not commit.
func ClearIDs(ids []*string) {
	for _, id := range ids {
		*id = ""
	}
}

// AssignIDs gives every new element, hours group, requirement and assignment
// under root a UUID and returns pointers to the assigned fields.
func AssignIDs(root *domain.OrderElement) []*string {
	var fresh []*string
	give := func(id *string) {
		if *id == "" {
			*id = uuid.New().String()
			fresh = append(fresh, id)
		}
	}
	for _, p := range flatten(root) {
		give(&p.e.ID)
		for _, g := range p.e.HoursGroups {
			give(&g.ID)
		}
		for _, cr := range p.e.CriterionRequirements {
			give(&cr.ID)
		}
		for _, a := range p.e.AdvanceAssignments {
			give(&a.ID)
		}
	}
	return fresh
}

func (r *SQLiteOrderRepo) upsertElement(ctx context.Context, e *domain.OrderElement, parentID any, position int, version int64, now time.Time) error {
	state := domain.SchedulingStateOrDefault(e.SchedulingState)
	created := e.CreatedAt
	if created.IsZero() {
		created = now
	}
	query := `INSERT INTO order_elements (id, order_id, parent_id, kind, code, name, description, init_date, deadline,
			work_hours, position, code_autogenerated, scheduling_state, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			order_id = excluded.order_id,
			parent_id = excluded.parent_id,
			kind = excluded.kind,
			code = excluded.code,
			name = excluded.name,
			description = excluded.description,
			init_date = excluded.init_date,
			deadline = excluded.deadline,
			work_hours = excluded.work_hours,
			position = excluded.position,
			code_autogenerated = excluded.code_autogenerated,
			scheduling_state = excluded.scheduling_state,
			version = excluded.version,
			updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.OrderID,
		parentID, // nil becomes SQL NULL for the root
		string(e.Kind),
		e.Code,
		e.Name,
		e.Description,
		nullableTimeToString(e.InitDate, dateLayout),
		nullableTimeToString(e.Deadline, dateLayout),
		e.WorkHours,
		position,
		boolToInt(e.CodeAutogenerated),
		string(state.Type),
		version,
		formatTime(created),
		formatTime(now),
	)
	if err != nil {
		return fmt.Errorf("upserting order element %q: %w", e.Name, err)
	}
	return nil
}

// writeDetails replaces the element's hours groups, labels, requirements and
// advance assignments.
func (r *SQLiteOrderRepo) writeDetails(ctx context.Context, e *domain.OrderElement) error {
	for _, table := range []string{"hours_groups", "element_labels", "criterion_requirements", "advance_assignments"} {
		if _, err := r.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE element_id = ?`, e.ID); err != nil {
			return fmt.Errorf("clearing %s of %q: %w", table, e.Name, err)
		}
	}

	for i, g := range e.HoursGroups {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO hours_groups (id, element_id, code, name, hours, fixed_percentage, percentage, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			g.ID, e.ID, g.Code, g.Name, g.Hours, boolToInt(g.FixedPercentage), g.Percentage.String(), i)
		if err != nil {
			return fmt.Errorf("inserting hours group of %q: %w", e.Name, err)
		}
	}

	for i, l := range e.Labels {
		if l.ID == "" {
			return &domain.ValidationError{Entity: e, Field: "labels", Value: l.Name, Msg: "label must be saved before it is assigned"}
		}
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO element_labels (element_id, label_id, position) VALUES (?, ?, ?)`, e.ID, l.ID, i)
		if err != nil {
			return fmt.Errorf("inserting label %q of %q: %w", l.Name, e.Name, err)
		}
	}

	for i, cr := range e.CriterionRequirements {
		if cr.Criterion == nil || cr.Criterion.ID == "" {
			return &domain.ValidationError{Entity: e, Field: "criteria", Msg: "criterion must be saved before it is required"}
		}
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO criterion_requirements (id, element_id, criterion_id, valid, position) VALUES (?, ?, ?, ?, ?)`,
			cr.ID, e.ID, cr.Criterion.ID, boolToInt(cr.Valid), i)
		if err != nil {
			return fmt.Errorf("inserting criterion requirement of %q: %w", e.Name, err)
		}
	}

	for i, a := range e.AdvanceAssignments {
		if a.Type == nil || a.Type.ID == "" {
			return &domain.ValidationError{Entity: e, Field: "advance_type", Msg: "advance type must be saved before it is assigned"}
		}
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO advance_assignments (id, element_id, advance_type_id, report_global, max_value, position)
			VALUES (?, ?, ?, ?, ?, ?)`,
			a.ID, e.ID, a.Type.ID, boolToInt(a.ReportGlobalAdvance), a.MaxValue.String(), i)
		if err != nil {
			return fmt.Errorf("inserting advance assignment of %q: %w", e.Name, err)
		}
		for k, m := range a.Measurements {
			_, err := r.db.ExecContext(ctx,
				`INSERT INTO advance_measurements (assignment_id, position, date, value) VALUES (?, ?, ?, ?)`,
				a.ID, k, m.Date.Format(dateLayout), m.Value.String())
			if err != nil {
				return fmt.Errorf("inserting advance measurement of %q: %w", e.Name, err)
			}
		}
	}
	return nil
}

// Remove deletes an order and its whole tree. Orders with work-report lines
// on any element are refused with domain.InUseError.
func (r *SQLiteOrderRepo) Remove(ctx context.Context, id string) error {
	root, err := r.getRoot(ctx, `id = ?`, id)
	if err != nil {
		return err
	}
	var used int
	err = sqlx.GetContext(ctx, r.db, &used, `
		SELECT COUNT(*) FROM work_report_lines w
		JOIN order_elements e ON e.id = w.element_id
		WHERE e.order_id = ?`, id)
	if err != nil {
		return fmt.Errorf("checking order usage: %w", err)
	}
	if used > 0 {
		return &domain.InUseError{Element: root}
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM order_elements WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting order: %w", err)
	}
	return nil
}

func (r *SQLiteOrderRepo) List(ctx context.Context) ([]*domain.OrderElement, error) {
	var rows []elementRow
	err := sqlx.SelectContext(ctx, r.db, &rows,
		`SELECT `+elementColumns+` FROM order_elements WHERE parent_id IS NULL ORDER BY code, name`)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	orders := make([]*domain.OrderElement, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, row.toDomain())
	}
	return orders, nil
}

// FindByCode loads the order whose root carries code.
func (r *SQLiteOrderRepo) FindByCode(ctx context.Context, code string) (*domain.OrderElement, error) {
	root, err := r.getRoot(ctx, `code = ?`, code)
	if err != nil {
		return nil, err
	}
	return r.Load(ctx, root.ID)
}

// Codes returns the codes of every stored order.
func (r *SQLiteOrderRepo) Codes(ctx context.Context) ([]string, error) {
	var codes []string
	err := sqlx.SelectContext(ctx, r.db, &codes,
		`SELECT code FROM order_elements WHERE parent_id IS NULL AND code != '' ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("listing order codes: %w", err)
	}
	return codes, nil
}

// IsAlreadyInUse reports whether work-report lines reference e. Unsaved
// elements are never in use.
func (r *SQLiteOrderRepo) IsAlreadyInUse(ctx context.Context, e *domain.OrderElement) (bool, error) {
	if e.IsNew() {
		return false, nil
	}
	var used bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM work_report_lines WHERE element_id = ?)`, e.ID).Scan(&used)
	if err != nil {
		return false, fmt.Errorf("checking usage of %q: %w", e.Name, err)
	}
	return used, nil
}

func (r *SQLiteOrderRepo) getRoot(ctx context.Context, where string, arg any) (*domain.OrderElement, error) {
	var row elementRow
	err := sqlx.GetContext(ctx, r.db, &row,
		`SELECT `+elementColumns+` FROM order_elements WHERE parent_id IS NULL AND `+where, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %v: %w", arg, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading order: %w", err)
	}
	return row.toDomain(), nil
}
