package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/emipaz/gestortareas/internal/core/domain"
	"github.com/emipaz/gestortareas/internal/core/ports"
)

func newTaskDetail(t *testing.T, name, description string) domain.TaskDetail {
	t.Helper()
	task, err := domain.NewTask(name, description)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return task.Detail()
}

func TestTaskHandler_Create_Success(t *testing.T) {
	e := newEcho()
	stub := &stubTaskService{
		createTaskFn: func(ctx context.Context, actor, name, description string) (domain.TaskDetail, error) {
			if actor != "sup" || name != "deploy" || description != "ship it" {
				t.Fatalf("unexpected args: %s %s %s", actor, name, description)
			}
			return newTaskDetail(t, name, description), nil
		},
	}
	h := NewTaskHandler(stub)

	body := strings.NewReader(`{"name":"deploy","description":"ship it"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/tasks", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("username", "sup")

	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["name"] != "deploy" || resp["status"] != "pending" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestTaskHandler_Create_MissingName(t *testing.T) {
	e := newEcho()
	stub := &stubTaskService{
		createTaskFn: func(ctx context.Context, actor, name, description string) (domain.TaskDetail, error) {
			t.Fatalf("service should not be reached")
			return domain.TaskDetail{}, nil
		},
	}
	h := NewTaskHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/v1/tasks", strings.NewReader(`{"description":"no name"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("username", "sup")

	err := h.Create(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestTaskHandler_Create_Forbidden(t *testing.T) {
	e := newEcho()
	stub := &stubTaskService{
		createTaskFn: func(ctx context.Context, actor, name, description string) (domain.TaskDetail, error) {
			return domain.TaskDetail{}, domain.ErrPermission
		},
	}
	h := NewTaskHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/v1/tasks", strings.NewReader(`{"name":"deploy"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("username", "bob")

	err := h.Create(c)
	if !errors.Is(err, domain.ErrPermission) {
		t.Fatalf("expected ErrPermission, got %v", err)
	}
}

func TestTaskHandler_Get(t *testing.T) {
	e := newEcho()
	detail := newTaskDetail(t, "deploy", "")
	stub := &stubTaskService{
		getTaskFn: func(ctx context.Context, name string) (domain.TaskDetail, error) {
			if name != "deploy" {
				t.Fatalf("unexpected name: %s", name)
			}
			return detail, nil
		},
	}
	h := NewTaskHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/v1/tasks/deploy", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("name")
	c.SetParamValues("deploy")
	c.Set("username", "bob")

	if err := h.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestTaskHandler_Get_NotFound(t *testing.T) {
	e := newEcho()
	stub := &stubTaskService{
		getTaskFn: func(ctx context.Context, name string) (domain.TaskDetail, error) {
			return domain.TaskDetail{}, domain.ErrNotFound
		},
	}
	h := NewTaskHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/v1/tasks/ghost", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("name")
	c.SetParamValues("ghost")
	c.Set("username", "bob")

	err := h.Get(c)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTaskHandler_Assign(t *testing.T) {
	e := newEcho()
	task, err := domain.NewTask("deploy", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	task.Assign(domain.UserRef{ID: "u-1", Name: "bob", Role: domain.RoleUser})

	assigned := false
	stub := &stubTaskService{
		assignTaskFn: func(ctx context.Context, actor, userName, taskName string) error {
			assigned = true
			if actor != "sup" || userName != "bob" || taskName != "deploy" {
				t.Fatalf("unexpected args: %s %s %s", actor, userName, taskName)
			}
			return nil
		},
		getTaskFn: func(ctx context.Context, name string) (domain.TaskDetail, error) {
			return task.Detail(), nil
		},
	}
	h := NewTaskHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/v1/tasks/deploy/assignees", strings.NewReader(`{"user_name":"bob"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("name")
	c.SetParamValues("deploy")
	c.Set("username", "sup")

	if err := h.Assign(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !assigned {
		t.Fatalf("service not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	users, ok := resp["assigned_users"].([]any)
	if !ok || len(users) != 1 {
		t.Fatalf("expected one assignee, got %+v", resp["assigned_users"])
	}
	first, _ := users[0].(map[string]any)
	if first["name"] != "bob" {
		t.Fatalf("unexpected assignee: %+v", first)
	}
}

func TestTaskHandler_Assign_TargetRoleRejected(t *testing.T) {
	e := newEcho()
	stub := &stubTaskService{
		assignTaskFn: func(ctx context.Context, actor, userName, taskName string) error {
			return domain.ErrPermission
		},
	}
	h := NewTaskHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/v1/tasks/deploy/assignees", strings.NewReader(`{"user_name":"other-sup"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("name")
	c.SetParamValues("deploy")
	c.Set("username", "sup")

	err := h.Assign(c)
	if !errors.Is(err, domain.ErrPermission) {
		t.Fatalf("expected ErrPermission, got %v", err)
	}
}

func TestTaskHandler_Comment(t *testing.T) {
	e := newEcho()
	task, err := domain.NewTask("deploy", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	author := domain.UserRef{ID: "u-1", Name: "bob", Role: domain.RoleUser}
	if err := task.AddComment("done with staging", author); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stub := &stubTaskService{
		commentTaskFn: func(ctx context.Context, actor, taskName, text string) (domain.TaskDetail, error) {
			if actor != "bob" || taskName != "deploy" || text != "done with staging" {
				t.Fatalf("unexpected args: %s %s %q", actor, taskName, text)
			}
			return task.Detail(), nil
		},
	}
	h := NewTaskHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/v1/tasks/deploy/comments", strings.NewReader(`{"text":"done with staging"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("name")
	c.SetParamValues("deploy")
	c.Set("username", "bob")

	if err := h.Comment(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	comments, ok := resp["comments"].([]any)
	if !ok || len(comments) != 1 {
		t.Fatalf("expected one comment, got %+v", resp["comments"])
	}
}

func TestTaskHandler_Finish(t *testing.T) {
	e := newEcho()
	stub := &stubTaskService{
		finishTaskFn: func(ctx context.Context, taskName string) error {
			if taskName != "deploy" {
				t.Fatalf("unexpected name: %s", taskName)
			}
			return nil
		},
	}
	h := NewTaskHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/v1/tasks/deploy/finish", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("name")
	c.SetParamValues("deploy")
	c.Set("username", "bob")

	if err := h.Finish(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestTaskHandler_Finish_AlreadyFinished(t *testing.T) {
	e := newEcho()
	stub := &stubTaskService{
		finishTaskFn: func(ctx context.Context, taskName string) error {
			return domain.ErrState
		},
	}
	h := NewTaskHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/v1/tasks/deploy/finish", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("name")
	c.SetParamValues("deploy")
	c.Set("username", "bob")

	err := h.Finish(c)
	if !errors.Is(err, domain.ErrState) {
		t.Fatalf("expected ErrState, got %v", err)
	}
}

func TestTaskHandler_Delete(t *testing.T) {
	e := newEcho()
	stub := &stubTaskService{
		deleteTaskFn: func(ctx context.Context, taskName string) error {
			if taskName != "deploy" {
				t.Fatalf("unexpected name: %s", taskName)
			}
			return nil
		},
	}
	h := NewTaskHandler(stub)

	req := httptest.NewRequest(http.MethodDelete, "/v1/tasks/deploy", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("name")
	c.SetParamValues("deploy")
	c.Set("username", "root")

	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestTaskHandler_Delete_StillPending(t *testing.T) {
	e := newEcho()
	stub := &stubTaskService{
		deleteTaskFn: func(ctx context.Context, taskName string) error {
			return domain.ErrState
		},
	}
	h := NewTaskHandler(stub)

	req := httptest.NewRequest(http.MethodDelete, "/v1/tasks/deploy", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("name")
	c.SetParamValues("deploy")
	c.Set("username", "root")

	err := h.Delete(c)
	if !errors.Is(err, domain.ErrState) {
		t.Fatalf("expected ErrState, got %v", err)
	}
}

func TestTaskHandler_Archive(t *testing.T) {
	e := newEcho()
	detail := newTaskDetail(t, "deploy", "")
	stub := &stubTaskService{
		archivedTasksFn: func(ctx context.Context) ([]domain.ArchiveEntry, error) {
			return []domain.ArchiveEntry{{ArchivedAt: time.Now().UTC(), Task: detail}}, nil
		},
	}
	h := NewTaskHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/v1/archive", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("username", "root")

	if err := h.Archive(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(resp))
	}
	task, ok := resp[0]["task"].(map[string]any)
	if !ok || task["name"] != "deploy" {
		t.Fatalf("unexpected entry: %+v", resp[0])
	}
}

func TestTaskHandler_Statistics(t *testing.T) {
	e := newEcho()
	stub := &stubTaskService{
		statisticsFn: func(ctx context.Context) (ports.Statistics, error) {
			return ports.Statistics{
				Tasks: ports.TaskStatistics{Total: 3, Pending: 2, Finished: 1},
				Users: ports.UserStatistics{Total: 4, Admins: 1, Supervisors: 1, Users: 2},
			}, nil
		},
	}
	h := NewTaskHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/v1/statistics", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("username", "root")

	if err := h.Statistics(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]map[string]float64
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["tasks"]["total"] != 3 || resp["tasks"]["pending"] != 2 || resp["tasks"]["finished"] != 1 {
		t.Fatalf("unexpected task stats: %+v", resp["tasks"])
	}
	if resp["users"]["total"] != 4 || resp["users"]["admins"] != 1 {
		t.Fatalf("unexpected user stats: %+v", resp["users"])
	}
}
