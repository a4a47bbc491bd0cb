package web

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"taskdash/internal/forms"
	"taskdash/internal/query"
	"taskdash/internal/service"
	"taskdash/internal/table"
)

var listParams = service.ListTasksParams{}

type summary struct {
	Total   int
	Overdue int
	ByLevel map[string]int
}

type columnHeader struct {
	Name string
	Link string
	Dir  string
}

type modalData struct {
	Heading     string
	SubmitLabel string
	Action      string
	Title       string
	Content     string
	Deadline    string
	Priority    string
	Errors      map[string]string
	Priorities  []service.Priority
}

type pageLink struct {
	Number  int
	Link    string
	Current bool
}

type tasksPage struct {
	Query   string
	Columns []columnHeader
	Rows    []table.Row
	Pages   []pageLink
	Modal   *modalData
	Confirm *service.Task
	Loading bool
}

// tableState is what the table URL carries between requests.
type tableState struct {
	q    string
	sort table.SortState
	page int // zero-based
	size int
}

func (st tableState) link() string {
	v := url.Values{}
	if st.q != "" {
		v.Set("q", st.q)
	}
	if st.sort.Dir != table.Unsorted {
		v.Set("sort", strings.ToLower(st.sort.Column.String()))
		v.Set("dir", st.sort.Dir.String())
	}
	if st.size > 0 {
		v.Set("size", strconv.Itoa(st.size))
		if st.page > 0 {
			v.Set("page", strconv.Itoa(st.page+1))
		}
	}
	if len(v) == 0 {
		return "/dashboard/tasks"
	}
	return "/dashboard/tasks?" + v.Encode()
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data := s.newPage(r, "Dashboard")
	view := s.newView()
	res := view.Load(r.Context())
	if res.Status == query.StatusError {
		data.Alerts = []string{forms.AlertMessage(res.Err)}
	}

	sum := &summary{ByLevel: make(map[string]int)}
	for _, row := range view.Rows(s.now()) {
		sum.Total++
		if row.Overdue {
			sum.Overdue++
		}
		sum.ByLevel[row.Cell(table.ColPriority)]++
	}
	data.Summary = sum
	s.render(w, http.StatusOK, "dashboard.html", data)
}

// handleTasks renders the task table. Query parameters: q (global filter),
// sort and dir, page (one-based) and size, edit (task id to open in the modal), new=1 (empty modal) and
// confirm (task id awaiting delete confirmation).
func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	view := s.newView()
	res := view.Load(r.Context())

	data := s.newPage(r, "Tasks")
	if res.Status == query.StatusError {
		data.Alerts = []string{forms.AlertMessage(res.Err)}
	}

	qs := r.URL.Query()
	if id, err := strconv.ParseInt(qs.Get("edit"), 10, 64); err == nil {
		if err := view.OpenEdit(id); err != nil {
			data.Alerts = append(data.Alerts, forms.AlertMessage(err))
		}
	} else if qs.Get("new") == "1" {
		view.OpenCreate()
	}

	page := s.tasksPage(view, qs)
	if id, err := strconv.ParseInt(qs.Get("confirm"), 10, 64); err == nil && s.confirmDelete {
		if task, ok := view.Find(id); ok {
			page.Confirm = &task
		}
	}
	data.Tasks = page
	s.render(w, http.StatusOK, "tasks.html", data)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	view := s.newView()
	view.Load(r.Context())
	view.OpenCreate()
	s.submitModal(w, r, view)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return
	}

	view := s.newView()
	view.Load(r.Context())
	if err := view.OpenEdit(id); err != nil {
		detail := s.app.Tasks.Get(r.Context(), id)
		if detail.Status == query.StatusError {
			http.Error(w, forms.AlertMessage(detail.Err), statusOf(detail.Err))
			return
		}
		view.Modal.Open(&detail.Data)
	}
	s.submitModal(w, r, view)
}

// submitModal copies the posted fields into the open modal and submits it.
// Field errors re-render the table with the modal still open.
func (s *Server) submitModal(w http.ResponseWriter, r *http.Request, view *table.View) {
	view.Modal.Title = r.PostFormValue("title")
	view.Modal.Content = r.PostFormValue("content")
	view.Modal.Deadline = r.PostFormValue("deadline")
	view.Modal.Priority = r.PostFormValue("priority")

	err := view.SubmitModal(r.Context())
	if err == nil {
		http.Redirect(w, r, "/dashboard/tasks", http.StatusSeeOther)
		return
	}

	data := s.newPage(r, "Tasks")
	status := http.StatusUnprocessableEntity
	var ferrs forms.Errors
	if !errors.As(err, &ferrs) {
		data.Alerts = []string{forms.AlertMessage(err)}
		status = statusOf(err)
	}
	data.Tasks = s.tasksPage(view, url.Values{})
	s.render(w, status, "tasks.html", data)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return
	}

	view := s.newView()
	view.Load(r.Context())
	confirmed := r.PostFormValue("confirm") == "yes"
	err = view.Delete(r.Context(), id, func(service.Task) bool { return confirmed })
	switch {
	case err == nil:
		http.Redirect(w, r, "/dashboard/tasks", http.StatusSeeOther)
	case errors.Is(err, table.ErrDeclined):
		http.Redirect(w, r, "/dashboard/tasks?confirm="+strconv.FormatInt(id, 10), http.StatusSeeOther)
	case errors.Is(err, table.ErrInvalidID):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		data := s.newPage(r, "Tasks")
		data.Alerts = []string{forms.AlertMessage(err)}
		data.Tasks = s.tasksPage(view, url.Values{})
		s.render(w, statusOf(err), "tasks.html", data)
	}
}

// tasksPage applies the filter, sort and page parameters and builds the
// table input.
func (s *Server) tasksPage(view *table.View, qs url.Values) *tasksPage {
	st := tableState{q: qs.Get("q")}
	view.SetGlobalFilter(st.q)
	if col, err := table.ParseColumn(qs.Get("sort")); err == nil {
		dir := table.Ascending
		if strings.EqualFold(qs.Get("dir"), "desc") {
			dir = table.Descending
		}
		view.SetSort(table.SortState{Column: col, Dir: dir})
	}
	st.sort = view.Sort()
	if size, err := strconv.Atoi(qs.Get("size")); err == nil && size > 0 {
		st.size = size
		if n, err := strconv.Atoi(qs.Get("page")); err == nil && n > 1 {
			st.page = n - 1
		}
	}
	view.SetPage(st.page, st.size)

	now := s.now()
	page := &tasksPage{
		Query:   st.q,
		Rows:    view.Rows(now),
		Loading: view.Result().Status == query.StatusLoading,
	}
	for _, col := range table.Columns {
		h := columnHeader{Name: col.String(), Link: sortLink(st, col)}
		if st.sort.Dir != table.Unsorted && st.sort.Column == col {
			h.Dir = st.sort.Dir.String()
		}
		page.Columns = append(page.Columns, h)
	}
	if count := view.PageCount(now); count > 1 {
		for i := 0; i < count; i++ {
			link := st
			link.page = i
			page.Pages = append(page.Pages, pageLink{Number: i + 1, Link: link.link(), Current: i == st.page})
		}
	}

	if view.Modal.IsOpen() {
		m := &view.Modal
		action := "/dashboard/tasks"
		if id, ok := m.EditingID(); ok {
			action += "/" + strconv.FormatInt(id, 10)
		}
		page.Modal = &modalData{
			Heading:     m.Heading(),
			SubmitLabel: m.SubmitLabel(),
			Action:      action,
			Title:       m.Title,
			Content:     m.Content,
			Deadline:    m.Deadline,
			Priority:    m.Priority,
			Errors:      m.FieldErrors(),
			Priorities:  service.Priorities,
		}
	}
	return page
}

// sortLink returns the table URL that advances col to its next sort state.
// The page goes back to the first one.
func sortLink(st tableState, col table.Column) string {
	st.sort = table.NextSort(st.sort, col)
	st.page = 0
	return st.link()
}

// statusOf maps an API error onto the dashboard response status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	}
	return http.StatusBadGateway
}
