// Package table is the task table view: client-side sorting, filtering and
// paging over the task list fetched through the hooks.
package table

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"taskdash/internal/service"
)

// Placeholder is rendered for absent values.
const Placeholder = "-"

// DeadlineFormat is the rendered deadline layout.
const DeadlineFormat = "2006-01-02 15:04"

// Column is a data column of the task table.
type Column int

const (
	ColTitle Column = iota
	ColDescription
	ColDeadline
	ColPriority
	ColSubtasks
)

// Columns lists the data columns in display order.
var Columns = []Column{ColTitle, ColDescription, ColDeadline, ColPriority, ColSubtasks}

var columnNames = map[Column]string{
	ColTitle:       "Title",
	ColDescription: "Description",
	ColDeadline:    "Deadline",
	ColPriority:    "Priority",
	ColSubtasks:    "Subtasks",
}

func (c Column) String() string {
	if name, ok := columnNames[c]; ok {
		return name
	}
	return "column(" + strconv.Itoa(int(c)) + ")"
}

// ParseColumn matches a column header case-insensitively. "content" is
// accepted for Description.
func ParseColumn(s string) (Column, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "content") {
		return ColDescription, nil
	}
	for _, c := range Columns {
		if strings.EqualFold(s, columnNames[c]) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown column: %s", s)
}

// Direction is the sort direction of a column.
type Direction int

const (
	Unsorted Direction = iota
	Ascending
	Descending
)

func (d Direction) String() string {
	switch d {
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	}
	return "none"
}

// SortState is the single active sort. Dir is Unsorted when no column is sorted.
type SortState struct {
	Column Column
	Dir    Direction
}

// Row is one rendered task.
type Row struct {
	Task    service.Task
	Cells   []string // indexed by Column
	Overdue bool
}

// Cell returns the rendered text of a column.
func (r Row) Cell(c Column) string { return r.Cells[c] }

// Model holds the task rows and the local view state. It is safe for
// concurrent use.
type Model struct {
	// Location renders deadlines. Defaults to time.Local.
	Location *time.Location

	mu       sync.Mutex
	tasks    []service.Task
	sort     SortState
	global   string
	filters  map[Column]string
	page     int
	pageSize int
}

// SetTasks replaces the rows with server data, in API order.
func (m *Model) SetTasks(tasks []service.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append([]service.Task(nil), tasks...)
}

// Tasks returns the unfiltered rows.
func (m *Model) Tasks() []service.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]service.Task(nil), m.tasks...)
}

// Find returns the task with id among the current rows.
func (m *Model) Find(id int64) (service.Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return service.Task{}, false
}

// ToggleSort cycles col through ascending, descending and unsorted. Sorting a
// different column starts it at ascending and drops the previous sort.
func (m *Model) ToggleSort(col Column) SortState {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sort = NextSort(m.sort, col)
	return m.sort
}

// NextSort returns the state that toggling col moves cur to.
func NextSort(cur SortState, col Column) SortState {
	switch {
	case cur.Dir == Unsorted || cur.Column != col:
		return SortState{Column: col, Dir: Ascending}
	case cur.Dir == Ascending:
		return SortState{Column: col, Dir: Descending}
	}
	return SortState{}
}

// SetSort sets the sort directly.
func (m *Model) SetSort(s SortState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.Dir == Unsorted {
		s = SortState{}
	}
	m.sort = s
}

// Sort returns the active sort.
func (m *Model) Sort() SortState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sort
}

// SetGlobalFilter sets the text matched against every column.
func (m *Model) SetGlobalFilter(f string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.global = f
	m.page = 0
}

// GlobalFilter returns the global filter text.
func (m *Model) GlobalFilter() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.global
}

// SetColumnFilter narrows one column. An empty value removes the filter.
func (m *Model) SetColumnFilter(col Column, v string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.filters == nil {
		m.filters = make(map[Column]string)
	}
	if v == "" {
		delete(m.filters, col)
	} else {
		m.filters[col] = v
	}
	m.page = 0
}

// SetPage selects a zero-based page of size rows. A size of zero shows every row.
func (m *Model) SetPage(page, size int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if page < 0 {
		page = 0
	}
	if size < 0 {
		size = 0
	}
	m.page, m.pageSize = page, size
}

// Rows returns the visible rows: filtered, then sorted, then paged.
// Overdue is computed against now.
func (m *Model) Rows(now time.Time) []Row {
	rows := m.filtered(now)

	m.mu.Lock()
	page, size := m.page, m.pageSize
	m.mu.Unlock()

	if size == 0 {
		return rows
	}
	start := page * size
	if start >= len(rows) {
		return []Row{}
	}
	end := start + size
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

// PageCount returns the number of pages for the filtered rows.
func (m *Model) PageCount(now time.Time) int {
	n := len(m.filtered(now))
	m.mu.Lock()
	size := m.pageSize
	m.mu.Unlock()
	if size == 0 || n == 0 {
		return 1
	}
	return (n + size - 1) / size
}

func (m *Model) filtered(now time.Time) []Row {
	m.mu.Lock()
	tasks := append([]service.Task(nil), m.tasks...)
	st := m.sort
	global := m.global
	filters := make(map[Column]string, len(m.filters))
	for c, v := range m.filters {
		filters[c] = v
	}
	m.mu.Unlock()

	loc := m.Location
	if loc == nil {
		loc = time.Local
	}

	rows := make([]Row, 0, len(tasks))
	for _, t := range tasks {
		row := Render(t, now, loc)
		if !MatchesGlobal(row, global) || !matchesColumns(row, filters) {
			continue
		}
		rows = append(rows, row)
	}

	if st.Dir != Unsorted {
		sort.SliceStable(rows, func(i, j int) bool {
			return less(rows[i].Task, rows[j].Task, st)
		})
	}
	return rows
}

// Render builds the cells of one task.
func Render(t service.Task, now time.Time, loc *time.Location) Row {
	cells := make([]string, len(Columns))
	cells[ColTitle] = t.Title
	cells[ColDescription] = Placeholder
	if t.Content != nil && *t.Content != "" {
		cells[ColDescription] = *t.Content
	}
	cells[ColDeadline] = Placeholder
	if t.Deadline != nil {
		cells[ColDeadline] = t.Deadline.In(loc).Format(DeadlineFormat)
	}
	cells[ColPriority] = Placeholder
	if t.Priority != nil && *t.Priority != "" {
		cells[ColPriority] = string(*t.Priority)
	}
	cells[ColSubtasks] = subtaskLabel(len(t.SubtaskIDs))

	return Row{Task: t, Cells: cells, Overdue: t.Overdue(now)}
}

func subtaskLabel(n int) string {
	switch {
	case n == 0:
		return Placeholder
	case n == 1:
		return "1 subtask"
	}
	return strconv.Itoa(n) + " subtasks"
}

// searchable returns the text filters match against; placeholders are not searchable.
func searchable(r Row, c Column) string {
	if r.Cells[c] == Placeholder {
		return ""
	}
	return r.Cells[c]
}

// MatchesGlobal reports whether f occurs, ignoring case, in any column of r.
// An empty filter matches every row.
func MatchesGlobal(r Row, f string) bool {
	if f == "" {
		return true
	}
	f = strings.ToLower(f)
	for _, c := range Columns {
		if strings.Contains(strings.ToLower(searchable(r, c)), f) {
			return true
		}
	}
	return false
}

func matchesColumns(r Row, filters map[Column]string) bool {
	for c, v := range filters {
		if !strings.Contains(strings.ToLower(searchable(r, c)), strings.ToLower(v)) {
			return false
		}
	}
	return true
}

// less orders two tasks by the sort column. Absent values sort last in
// either direction.
func less(a, b service.Task, st SortState) bool {
	cmp, aMissing, bMissing := compare(a, b, st.Column)
	if aMissing || bMissing {
		return !aMissing && bMissing
	}
	if st.Dir == Descending {
		return cmp > 0
	}
	return cmp < 0
}

func compare(a, b service.Task, col Column) (cmp int, aMissing, bMissing bool) {
	switch col {
	case ColTitle:
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)), false, false
	case ColDescription:
		ac, bc := deref(a.Content), deref(b.Content)
		return strings.Compare(strings.ToLower(ac), strings.ToLower(bc)), ac == "", bc == ""
	case ColDeadline:
		if a.Deadline == nil || b.Deadline == nil {
			return 0, a.Deadline == nil, b.Deadline == nil
		}
		return a.Deadline.Compare(*b.Deadline), false, false
	case ColPriority:
		ar, br := rank(a.Priority), rank(b.Priority)
		return ar - br, ar == 0, br == 0
	case ColSubtasks:
		return len(a.SubtaskIDs) - len(b.SubtaskIDs), false, false
	}
	return 0, false, false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func rank(p *service.Priority) int {
	if p == nil {
		return 0
	}
	return p.Rank()
}
