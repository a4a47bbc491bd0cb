package web_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"taskdash/internal/hooks"
	"taskdash/internal/query"
	"taskdash/internal/service"
	"taskdash/internal/testutil"
	"taskdash/internal/tokenstore"
	"taskdash/internal/web"
)

var now = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

type harness struct {
	svc    *testutil.FakeService
	app    *hooks.App
	server *httptest.Server
	client *http.Client
}

func newHarness(t *testing.T, loggedIn bool, opts ...web.Option) *harness {
	t.Helper()
	svc := testutil.NewFakeService()
	tokens := tokenstore.NewMemory()
	if loggedIn {
		tokens.Set("test-token")
	}
	app := hooks.New(svc, tokens, query.New(time.Hour))
	t.Cleanup(app.Close)

	opts = append([]web.Option{web.WithClock(func() time.Time { return now }), web.WithLocation(time.UTC)}, opts...)
	server := httptest.NewServer(web.NewRouter(app, opts...))
	t.Cleanup(server.Close)

	client := server.Client()
	client.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	return &harness{svc: svc, app: app, server: server, client: client}
}

func (h *harness) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := h.client.Get(h.server.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp, readBody(t, resp)
}

func (h *harness) post(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := h.client.PostForm(h.server.URL+path, form)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp, readBody(t, resp)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(body)
}

func TestHome(t *testing.T) {
	h := newHarness(t, false)
	resp, body := h.get(t, "/")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `href="/auth/login"`) {
		t.Errorf("status=%d body=%s", resp.StatusCode, body)
	}
}

func TestDashboardRedirectsWithoutCredential(t *testing.T) {
	h := newHarness(t, false)
	for _, path := range []string{"/dashboard", "/dashboard/tasks"} {
		resp, _ := h.get(t, path)
		if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/auth/login" {
			t.Errorf("GET %s: status=%d location=%q", path, resp.StatusCode, resp.Header.Get("Location"))
		}
	}
	resp, _ := h.post(t, "/dashboard/tasks/1/delete", nil)
	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("POST delete: status=%d", resp.StatusCode)
	}
	if h.svc.TotalCalls() != 0 {
		t.Errorf("calls=%v", h.svc.Calls)
	}
}

func TestLogin(t *testing.T) {
	h := newHarness(t, false)
	h.svc.Users["ana@example.com"] = "Secret1"

	resp, body := h.get(t, "/auth/login")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `action="/auth/login"`) {
		t.Fatalf("login page status=%d", resp.StatusCode)
	}

	resp, _ = h.post(t, "/auth/login", url.Values{"email": {"ana@example.com"}, "password": {"Secret1"}})
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/dashboard/tasks" {
		t.Errorf("status=%d location=%q", resp.StatusCode, resp.Header.Get("Location"))
	}
	if token, ok := h.app.Tokens.Get(); !ok || token != "token-ana@example.com" {
		t.Errorf("token=%q ok=%v", token, ok)
	}
}

func TestLogin_FieldErrors(t *testing.T) {
	h := newHarness(t, false)
	resp, body := h.post(t, "/auth/login", url.Values{"email": {"nope"}})

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status=%d", resp.StatusCode)
	}
	for _, want := range []string{"Invalid email address", "Password is required", `value="nope"`} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
	if h.svc.TotalCalls() != 0 {
		t.Errorf("calls=%v", h.svc.Calls)
	}
}

func TestLogin_RejectedShowsAlert(t *testing.T) {
	h := newHarness(t, false)
	resp, body := h.post(t, "/auth/login", url.Values{"email": {"ana@example.com"}, "password": {"bad"}})

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status=%d", resp.StatusCode)
	}
	if !strings.Contains(body, `role="alert">invalid credentials`) {
		t.Errorf("alert missing:\n%s", body)
	}
	if h.app.LoggedIn() {
		t.Error("token stored after failed login")
	}
}

func TestSignup(t *testing.T) {
	h := newHarness(t, false)

	resp, body := h.post(t, "/auth/signup", url.Values{"email": {"new@example.com"}, "password": {"weak"}})
	if resp.StatusCode != http.StatusUnprocessableEntity || !strings.Contains(body, "Password should contain lowercase, uppercase and number") {
		t.Errorf("weak password: status=%d", resp.StatusCode)
	}

	resp, _ = h.post(t, "/auth/signup", url.Values{"email": {"new@example.com"}, "password": {"Passw0rd"}})
	if resp.StatusCode != http.StatusSeeOther || !h.app.LoggedIn() {
		t.Errorf("status=%d loggedIn=%v", resp.StatusCode, h.app.LoggedIn())
	}
}

func TestLogout(t *testing.T) {
	h := newHarness(t, true)
	resp, _ := h.post(t, "/auth/logout", nil)
	if resp.StatusCode != http.StatusSeeOther || h.app.LoggedIn() {
		t.Errorf("status=%d loggedIn=%v", resp.StatusCode, h.app.LoggedIn())
	}
}

func TestTasksPage(t *testing.T) {
	h := newHarness(t, true)
	h.svc.AddTask(service.Task{Title: "Ship release", Deadline: ptr(now.Add(-time.Hour)), Priority: ptr(service.PriorityHigh)})
	h.svc.AddTask(service.Task{Title: "Write notes", SubtaskIDs: []int64{9}})

	resp, body := h.get(t, "/dashboard/tasks")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	for _, want := range []string{
		`<tr data-id="1" class="overdue">`,
		`<tr data-id="2">`,
		"<td>2026-05-10 11:00</td>",
		"<td>1 subtask</td>",
		`<a href="/dashboard/tasks" class="active" aria-current="page">Tasks</a>`,
		`href="/dashboard/tasks?dir=asc&amp;sort=title"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestTasksPage_FilterAndSort(t *testing.T) {
	h := newHarness(t, true)
	h.svc.AddTask(service.Task{Title: "Alpha"})
	h.svc.AddTask(service.Task{Title: "Beta", Content: ptr("alpha release")})
	h.svc.AddTask(service.Task{Title: "Gamma"})

	_, body := h.get(t, "/dashboard/tasks?q=ALPHA&sort=title&dir=desc")
	beta, alpha := strings.Index(body, `data-id="2"`), strings.Index(body, `data-id="1"`)
	if beta < 0 || alpha < 0 || beta > alpha {
		t.Errorf("want Beta before Alpha: beta=%d alpha=%d", beta, alpha)
	}
	if strings.Contains(body, `data-id="3"`) {
		t.Error("Gamma not filtered out")
	}
	if !strings.Contains(body, "Title</a> ▼") {
		t.Error("sort indicator missing")
	}
	if !strings.Contains(body, `href="/dashboard/tasks?q=ALPHA"`) {
		t.Error("title header should link to the unsorted state")
	}
}

func TestTasksPage_EditOpensModal(t *testing.T) {
	h := newHarness(t, true)
	h.svc.AddTask(service.Task{Title: "Ship release", Deadline: ptr(time.Date(2026, 6, 1, 9, 30, 0, 0, time.UTC))})

	_, body := h.get(t, "/dashboard/tasks?edit=1")
	for _, want := range []string{"Edit Task", "Update Task", `action="/dashboard/tasks/1"`, `value="Ship release"`, `value="2026-06-01T09:30"`} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}

	_, body = h.get(t, "/dashboard/tasks?new=1")
	if !strings.Contains(body, "Add New Task") || !strings.Contains(body, `action="/dashboard/tasks"`) || strings.Contains(body, `value="Ship release"`) {
		t.Errorf("create modal wrong:\n%s", body)
	}
}

func TestCreateTask(t *testing.T) {
	h := newHarness(t, true)

	resp, _ := h.post(t, "/dashboard/tasks", url.Values{"title": {"Review PR"}, "priority": {"Medium"}, "deadline": {"2026-06-01T10:00"}})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	task, ok := h.svc.Task(1)
	if !ok || task.Title != "Review PR" || *task.Priority != service.PriorityMedium {
		t.Fatalf("task=%+v", task)
	}
	if !task.Deadline.Equal(time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("deadline=%v", task.Deadline)
	}

	_, body := h.get(t, "/dashboard/tasks")
	if !strings.Contains(body, "Review PR") {
		t.Error("new task not listed")
	}
}

func TestCreateTask_BlankTitle(t *testing.T) {
	h := newHarness(t, true)
	resp, body := h.post(t, "/dashboard/tasks", url.Values{"title": {" "}})

	if resp.StatusCode != http.StatusUnprocessableEntity || !strings.Contains(body, "Title is required") {
		t.Errorf("status=%d", resp.StatusCode)
	}
	if h.svc.Calls["CreateTask"] != 0 {
		t.Errorf("calls=%v", h.svc.Calls)
	}
}

func TestTasksPage_Paging(t *testing.T) {
	h := newHarness(t, true)
	for _, title := range []string{"Alpha", "Bravo", "Charlie"} {
		h.svc.AddTask(service.Task{Title: title})
	}

	_, body := h.get(t, "/dashboard/tasks?size=2")
	if n := strings.Count(body, "<tr data-id="); n != 2 {
		t.Errorf("first page rows=%d, want 2", n)
	}
	if !strings.Contains(body, `<span aria-current="page">1</span>`) || !strings.Contains(body, `href="/dashboard/tasks?page=2&amp;size=2"`) {
		t.Errorf("pager missing:\n%s", body)
	}

	_, body = h.get(t, "/dashboard/tasks?size=2&page=2")
	if n := strings.Count(body, "<tr data-id="); n != 1 || !strings.Contains(body, "Charlie") {
		t.Errorf("second page rows=%d body:\n%s", n, body)
	}
	if !strings.Contains(body, `href="/dashboard/tasks?dir=asc&amp;size=2&amp;sort=title"`) {
		t.Error("sort links should keep the page size and go back to the first page")
	}

	_, body = h.get(t, "/dashboard/tasks")
	if strings.Contains(body, `class="pager"`) {
		t.Error("pager shown without a page size")
	}
}

func TestUpdateTask(t *testing.T) {
	h := newHarness(t, true)
	h.svc.AddTask(service.Task{Title: "Ship release"})

	resp, _ := h.post(t, "/dashboard/tasks/1", url.Values{"title": {"Ship v2"}, "content": {"notes"}})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	if task, _ := h.svc.Task(1); task.Title != "Ship v2" || *task.Content != "notes" {
		t.Errorf("task=%+v", task)
	}

	resp, _ = h.post(t, "/dashboard/tasks/7", url.Values{"title": {"x"}})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing task status=%d", resp.StatusCode)
	}
}

func TestUpdateTask_BlankFieldsClearStoredValues(t *testing.T) {
	h := newHarness(t, true)
	h.svc.AddTask(service.Task{Title: "Ship release", Deadline: ptr(now.Add(time.Hour)), Priority: ptr(service.PriorityHigh)})

	resp, _ := h.post(t, "/dashboard/tasks/1", url.Values{"title": {"Ship release"}, "deadline": {""}, "priority": {""}})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	if task, _ := h.svc.Task(1); task.Deadline != nil || task.Priority != nil {
		t.Errorf("task=%+v", task)
	}
}

func TestDeleteTask(t *testing.T) {
	h := newHarness(t, true)
	h.svc.AddTask(service.Task{Title: "Ship release"})

	resp, _ := h.post(t, "/dashboard/tasks/1/delete", nil)
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/dashboard/tasks" {
		t.Errorf("status=%d location=%q", resp.StatusCode, resp.Header.Get("Location"))
	}
	if _, ok := h.svc.Task(1); ok {
		t.Error("task not deleted")
	}

	resp, _ = h.post(t, "/dashboard/tasks/0/delete", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("id 0 status=%d", resp.StatusCode)
	}
}

func TestDeleteTask_Confirm(t *testing.T) {
	h := newHarness(t, true, web.WithConfirmDelete(true))
	h.svc.AddTask(service.Task{Title: "Ship release"})

	resp, _ := h.post(t, "/dashboard/tasks/1/delete", nil)
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/dashboard/tasks?confirm=1" {
		t.Fatalf("status=%d location=%q", resp.StatusCode, resp.Header.Get("Location"))
	}
	if _, ok := h.svc.Task(1); !ok {
		t.Fatal("deleted without confirmation")
	}

	_, body := h.get(t, "/dashboard/tasks?confirm=1")
	if !strings.Contains(body, `Delete task "Ship release"?`) {
		t.Errorf("confirmation prompt missing:\n%s", body)
	}

	h.post(t, "/dashboard/tasks/1/delete", url.Values{"confirm": {"yes"}})
	if _, ok := h.svc.Task(1); ok {
		t.Error("task not deleted after confirmation")
	}
}

func TestDeleteTask_BackendError(t *testing.T) {
	h := newHarness(t, true)
	h.svc.AddTask(service.Task{Title: "Ship release"})
	h.svc.DeleteTaskErr = &service.RequestError{Status: 500, Message: "database down"}

	resp, body := h.post(t, "/dashboard/tasks/1/delete", nil)
	if resp.StatusCode != http.StatusBadGateway || !strings.Contains(body, "database down") {
		t.Errorf("status=%d", resp.StatusCode)
	}
	if !strings.Contains(body, "Ship release") {
		t.Error("rows not kept after failed delete")
	}
}

func TestDashboardSummary(t *testing.T) {
	h := newHarness(t, true)
	h.svc.AddTask(service.Task{Title: "a", Deadline: ptr(now.Add(-time.Minute))})
	h.svc.AddTask(service.Task{Title: "b", Priority: ptr(service.PriorityHigh)})

	resp, body := h.get(t, "/dashboard")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	for _, want := range []string{"2 tasks", "1 overdue", "High priority: 1", `class="active" aria-current="page">Dashboard</a>`} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}
