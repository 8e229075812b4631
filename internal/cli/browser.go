package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/ordertree/internal/cli/formatter"
	"github.com/alexanderramin/ordertree/internal/domain"
	"github.com/alexanderramin/ordertree/internal/filter"
	"github.com/alexanderramin/ordertree/internal/service"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// Editable grid columns.
const (
	colName = iota
	colCode
	colStart
	colDeadline
	colHours
	columnCount
)

var columnTitles = [columnCount]string{"Name", "Code", "Start", "Deadline", "Hours"}

type browserKeyMap struct {
	Up          key.Binding
	Down        key.Binding
	Left        key.Binding
	Right       key.Binding
	MoveUp      key.Binding
	MoveDown    key.Binding
	Indent      key.Binding
	Unindent    key.Binding
	Add         key.Binding
	Edit        key.Binding
	Remove      key.Binding
	Filter      key.Binding
	ClearFilter key.Binding
	Save        key.Binding
	Reload      key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func newBrowserKeyMap() browserKeyMap {
	return browserKeyMap{
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:        key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right:       key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		MoveUp:      key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "move up")),
		MoveDown:    key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "move down")),
		Indent:      key.NewBinding(key.WithKeys(">", "tab"), key.WithHelp(">", "indent")),
		Unindent:    key.NewBinding(key.WithKeys("<", "shift+tab"), key.WithHelp("<", "unindent")),
		Add:         key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Edit:        key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit cell")),
		Remove:      key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "remove")),
		Filter:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		ClearFilter: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear filter")),
		Save:        key.NewBinding(key.WithKeys("s", "ctrl+s"), key.WithHelp("s", "save")),
		Reload:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k browserKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Edit, k.Indent, k.Unindent, k.Save, k.Help, k.Quit}
}

func (k browserKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.MoveUp, k.MoveDown, k.Indent, k.Unindent},
		{k.Add, k.Edit, k.Remove},
		{k.Filter, k.ClearFilter, k.Save, k.Reload},
		{k.Help, k.Quit},
	}
}

type formKind int

const (
	formNone formKind = iota
	formAddElement
	formEditCell
	formFilter
)

// browserModel is an editable grid over one order. It is used through a
// pointer so huh forms can bind to its fields.
type browserModel struct {
	ctx     context.Context
	session *service.EditSession
	keys    browserKeyMap
	help    help.Model

	rows  []*domain.OrderElement
	focus focus

	form        *huh.Form
	formKind    formKind
	addFields   addElementFields
	cellValue   string
	filterValue string

	dirty       bool
	confirmQuit bool
	status      string
	err         error
	quitting    bool
}

func newBrowserModel(ctx context.Context, session *service.EditSession) *browserModel {
	m := &browserModel{
		ctx:     ctx,
		session: session,
		keys:    newBrowserKeyMap(),
		help:    help.New(),
	}
	m.refresh(nil)
	return m
}

// refresh rebuilds the visible rows and keeps focus on keep when it is
// still visible.
func (m *browserModel) refresh(keep *domain.OrderElement) {
	m.rows = m.session.View().Elements()
	if keep != nil {
		for i, e := range m.rows {
			if e == keep {
				m.focus.Row = i
				break
			}
		}
	}
	if m.focus.Row >= len(m.rows) {
		m.focus.Row = max(len(m.rows)-1, 0)
	}
	if !m.cellEnabled(m.focus) {
		m.focus.Col = colName
	}
}

func (m *browserModel) focused() *domain.OrderElement {
	if m.focus.Row < 0 || m.focus.Row >= len(m.rows) {
		return nil
	}
	return m.rows[m.focus.Row]
}

func (m *browserModel) editable(e *domain.OrderElement, col int) bool {
	switch col {
	case colCode:
		return !m.session.Order().CodeAutogenerated
	case colHours:
		return e.IsLeaf()
	}
	return true
}

func (m *browserModel) cellEnabled(f focus) bool {
	if f.Row < 0 || f.Row >= len(m.rows) {
		return false
	}
	return m.editable(m.rows[f.Row], f.Col)
}

func (m *browserModel) grid() [][]bool {
	g := make([][]bool, len(m.rows))
	for i, e := range m.rows {
		g[i] = make([]bool, columnCount)
		for c := range g[i] {
			g[i][c] = m.editable(e, c)
		}
	}
	return g
}

// changed records a successful in-memory edit.
func (m *browserModel) changed(keep *domain.OrderElement, msg string) {
	m.dirty = true
	m.err = nil
	m.status = msg
	m.refresh(keep)
}

func (m *browserModel) fail(err error) {
	m.err = err
	m.status = ""
}

func (m *browserModel) Init() tea.Cmd { return nil }

func (m *browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if m.form != nil {
			return m.updateForm(msg)
		}
		return m.handleKey(msg)
	}
	if m.form != nil {
		return m.updateForm(msg)
	}
	return m, nil
}

func (m *browserModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.closeForm()
		m.status = formatter.Dim("Cancelled.")
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateCompleted:
		kind := m.formKind
		m.closeForm()
		m.submit(kind)
		return m, nil
	case huh.StateAborted:
		m.closeForm()
		return m, nil
	}
	return m, cmd
}

func (m *browserModel) openForm(kind formKind, form *huh.Form) tea.Cmd {
	m.form = form
	m.formKind = kind
	m.err = nil
	return form.Init()
}

func (m *browserModel) closeForm() {
	m.form = nil
	m.formKind = formNone
}

func (m *browserModel) submit(kind formKind) {
	var err error
	switch kind {
	case formAddElement:
		err = m.applyAddElement(m.addFields)
	case formEditCell:
		err = m.applyCellEdit(m.focus.Col, m.cellValue)
	case formFilter:
		err = m.applyNameFilter(m.filterValue)
	}
	if err != nil {
		m.fail(err)
	}
}

func (m *browserModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		if m.dirty && !m.confirmQuit && msg.Type != tea.KeyCtrlC {
			m.confirmQuit = true
			m.status = formatter.StyleYellow.Render("Unsaved changes. Press q again to quit.")
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit
	}
	m.confirmQuit = false

	e := m.focused()
	switch {
	case key.Matches(msg, m.keys.Up):
		m.move(dirUp)
	case key.Matches(msg, m.keys.Down):
		m.move(dirDown)
	case key.Matches(msg, m.keys.Left):
		m.move(dirLeft)
	case key.Matches(msg, m.keys.Right):
		m.move(dirRight)

	case key.Matches(msg, m.keys.MoveUp):
		if e != nil && m.session.MoveUp(e) {
			m.changed(e, "Moved "+e.Name+" to "+m.session.Path(e))
		}
	case key.Matches(msg, m.keys.MoveDown):
		if e != nil && m.session.MoveDown(e) {
			m.changed(e, "Moved "+e.Name+" to "+m.session.Path(e))
		}
	case key.Matches(msg, m.keys.Indent):
		if e != nil && m.session.Indent(e) {
			m.changed(e, "Indented "+e.Name+" to "+m.session.Path(e))
		}
	case key.Matches(msg, m.keys.Unindent):
		if e != nil && m.session.Unindent(e) {
			m.changed(e, "Unindented "+e.Name+" to "+m.session.Path(e))
		}

	case key.Matches(msg, m.keys.Add):
		if m.session.Filtered() {
			m.fail(errors.New("clear the filter before adding elements"))
			return m, nil
		}
		m.addFields = addElementFields{Kind: kindLine}
		return m, m.openForm(formAddElement, wizardAddElement(&m.addFields))
	case key.Matches(msg, m.keys.Edit):
		if e == nil || !m.cellEnabled(m.focus) {
			return m, nil
		}
		m.cellValue = cellText(e, m.focus.Col)
		return m, m.openForm(formEditCell, wizardEditCell(m.focus.Col, &m.cellValue))
	case key.Matches(msg, m.keys.Remove):
		if e == nil {
			return m, nil
		}
		if err := m.session.Remove(m.ctx, e); err != nil {
			m.fail(err)
			return m, nil
		}
		m.changed(nil, "Removed "+e.Name)

	case key.Matches(msg, m.keys.Filter):
		m.filterValue = ""
		if p := m.session.Filter(); p != nil {
			m.filterValue = p.Name
		}
		return m, m.openForm(formFilter, wizardFilterName(&m.filterValue))
	case key.Matches(msg, m.keys.ClearFilter):
		if m.session.Filtered() {
			m.session.ClearFilter()
			m.status = "Filter cleared"
			m.refresh(e)
		}

	case key.Matches(msg, m.keys.Save):
		m.save()
	case key.Matches(msg, m.keys.Reload):
		m.reload()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m *browserModel) move(dir direction) {
	m.focus = nextFocus(m.focus, dir, m.grid())
}

func (m *browserModel) save() {
	version, err := m.session.Save(m.ctx)
	if err != nil {
		var conflict *domain.ConcurrentModificationError
		if errors.As(err, &conflict) {
			err = fmt.Errorf("%w (press r to reload)", err)
		}
		m.fail(err)
		return
	}
	m.dirty = false
	m.err = nil
	m.status = formatter.Success(fmt.Sprintf("Saved %s v%d", m.session.Order().Code, version))
	m.refresh(m.focused())
}

func (m *browserModel) reload() {
	if err := m.session.Reload(m.ctx); err != nil {
		m.fail(err)
		return
	}
	m.dirty = false
	m.err = nil
	m.status = "Reloaded"
	m.refresh(nil)
}

// applyAddElement appends a new element into the focused container, or next
// to the focused line. With nothing focused it goes under the order.
func (m *browserModel) applyAddElement(f addElementFields) error {
	parent := m.session.Order()
	if anchor := m.focused(); anchor != nil {
		if anchor.IsContainer() {
			parent = anchor
		} else {
			parent = m.session.Tree().Parent(anchor)
		}
	}
	var (
		e   *domain.OrderElement
		err error
	)
	if f.Kind == kindGroup {
		e, err = m.session.AddGroup(parent, f.Name)
	} else {
		e, err = m.session.AddLine(parent, f.Name, parseHours(f.Hours))
	}
	if err != nil {
		return err
	}
	m.changed(e, fmt.Sprintf("Added %s %s", f.Kind, m.session.Path(e)))
	return nil
}

// applyCellEdit writes value into column col of the focused element.
func (m *browserModel) applyCellEdit(col int, value string) error {
	e := m.focused()
	if e == nil {
		return nil
	}
	var err error
	switch col {
	case colName:
		err = m.session.Rename(e, value)
	case colCode:
		err = m.session.SetCode(e, value)
	case colStart, colDeadline:
		var d *time.Time
		d, err = parseDate(strings.ToLower(columnTitles[col]), value)
		if err == nil {
			init, deadline := e.InitDate, e.Deadline
			if col == colStart {
				init = d
			} else {
				deadline = d
			}
			err = m.session.SetDates(e, init, deadline)
		}
	case colHours:
		err = m.session.SetWorkHours(e, parseHours(value))
	}
	if err != nil {
		return err
	}
	m.changed(e, "Updated "+strings.ToLower(columnTitles[col])+" of "+e.Name)
	return nil
}

// applyNameFilter narrows the grid to elements whose name contains value.
// Blank clears the filter.
func (m *browserModel) applyNameFilter(value string) error {
	keep := m.focused()
	if strings.TrimSpace(value) == "" {
		m.session.ClearFilter()
		m.status = "Filter cleared"
		m.refresh(keep)
		return nil
	}
	p, err := filter.NewPredicate(nil, nil, nil, value)
	if err != nil {
		return err
	}
	m.session.ApplyFilter(p)
	m.err = nil
	m.status = fmt.Sprintf("Filtered by %q", strings.TrimSpace(value))
	m.focus = focus{}
	m.refresh(keep)
	return nil
}

// cellText is the plain value shown when a cell is opened for editing.
func cellText(e *domain.OrderElement, col int) string {
	switch col {
	case colName:
		return e.Name
	case colCode:
		return e.Code
	case colStart:
		if e.InitDate != nil {
			return e.InitDate.Format(dateLayout)
		}
	case colDeadline:
		if e.Deadline != nil {
			return e.Deadline.Format(dateLayout)
		}
	case colHours:
		return strconv.Itoa(e.WorkHours)
	}
	return ""
}

func (m *browserModel) View() string {
	if m.quitting {
		return ""
	}
	var sections []string
	sections = append(sections, m.renderHeader())
	sections = append(sections, m.renderGrid())
	if e := m.focused(); e != nil {
		sections = append(sections, formatter.Dim(formatter.Tooltip(e)))
	}
	if m.form != nil {
		sections = append(sections, m.form.View())
	}
	if m.err != nil {
		sections = append(sections, formatter.FormatErrors(m.err))
	} else if m.status != "" {
		sections = append(sections, m.status)
	}
	sections = append(sections, m.help.View(m.keys))
	return strings.Join(sections, "\n")
}

func (m *browserModel) renderHeader() string {
	order := m.session.Order()
	header := formatter.StyleHeader.Render(order.Name) + " " +
		formatter.Dim(fmt.Sprintf("%s v%d · %s", formatter.CodeOrDash(order.Code), order.Version, formatter.FormatHours(order.WorkHours)))
	if m.dirty {
		header += " " + formatter.StyleYellow.Render("● modified")
	}
	if m.session.Stale() {
		header += " " + formatter.StyleRed.Render("● stale")
	}
	if m.session.Filtered() {
		header += " " + formatter.StylePurple.Render("● filtered")
	}
	return header
}

func (m *browserModel) renderGrid() string {
	if len(m.rows) == 0 {
		return formatter.Dim("No elements. Press a to add one.")
	}
	view := m.session.View()
	headers := []string{"#", "NAME", "CODE", "START", "DEADLINE", "HOURS", "ADVANCE"}
	rows := make([][]string, 0, len(m.rows))
	for i, e := range m.rows {
		depth := m.session.Tree().Depth(e)
		cells := [columnCount]string{
			strings.Repeat("  ", max(depth-1, 0)) + e.Name,
			formatter.CodeOrDash(e.Code),
			formatter.FormatDate(e.InitDate),
			formatter.FormatDate(e.Deadline),
			formatter.FormatHours(e.WorkHours),
		}
		matched := true
		if v := view.Find(e); v != nil {
			matched = v.Matched
		}
		row := []string{formatter.Dim(m.session.Path(e))}
		for c, text := range cells {
			switch {
			case m.focus.Row == i && m.focus.Col == c:
				text = formatter.StyleFocus.Render(text)
			case !matched || !m.editable(e, c):
				text = formatter.Dim(text)
			}
			row = append(row, text)
		}
		row = append(row, m.session.AdvancePercentage(e).String())
		rows = append(rows, row)
	}
	return formatter.RenderTableAligned(headers, rows, map[int]bool{5: true, 6: true})
}
