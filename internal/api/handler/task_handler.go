package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/emipaz/gestortareas/internal/api/metrics"
	"github.com/emipaz/gestortareas/internal/core/ports"
)

// TaskHandler handles task lifecycle routes.
type TaskHandler struct {
	service ports.TaskService
}

func NewTaskHandler(service ports.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// Create handles POST /v1/tasks.
//
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTaskRequest  true  "Task details"
// @Success      201   {object}  taskResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	detail, err := h.service.CreateTask(c.Request().Context(), actor, req.Name, req.Description)
	if err != nil {
		return err
	}

	metrics.TasksCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, toTaskResponse(detail))
}

// List handles GET /v1/tasks.
//
// @Summary      List live tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   taskResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	details, err := h.service.ListTasks(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskListResponse(details))
}

// Get handles GET /v1/tasks/:name.
//
// @Summary      Get a task with its assignees and comments
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        name  path      string  true  "Task name"
// @Success      200   {object}  taskResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/tasks/{name} [get]
func (h *TaskHandler) Get(c echo.Context) error {
	detail, err := h.service.GetTask(c.Request().Context(), c.Param("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskResponse(detail))
}

// Assign handles POST /v1/tasks/:name/assignees. Assigning a user who is
// already on the task is a no-op and still returns 200.
//
// @Summary      Assign a user to a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        name  path      string             true  "Task name"
// @Param        body  body      assignTaskRequest  true  "User to assign"
// @Success      200   {object}  taskResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/tasks/{name}/assignees [post]
func (h *TaskHandler) Assign(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req assignTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	taskName := c.Param("name")
	if err := h.service.AssignTask(ctx, actor, req.UserName, taskName); err != nil {
		return err
	}

	detail, err := h.service.GetTask(ctx, taskName)
	if err != nil {
		return err
	}

	metrics.TasksAssignedTotal.Inc()
	return c.JSON(http.StatusOK, toTaskResponse(detail))
}

// Comment handles POST /v1/tasks/:name/comments. The comment author is the
// authenticated account.
//
// @Summary      Comment on a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        name  path      string          true  "Task name"
// @Param        body  body      commentRequest  true  "Comment text"
// @Success      201   {object}  taskResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/tasks/{name}/comments [post]
func (h *TaskHandler) Comment(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req commentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	detail, err := h.service.CommentTask(c.Request().Context(), actor, c.Param("name"), req.Text)
	if err != nil {
		return err
	}

	metrics.TaskCommentsTotal.Inc()
	return c.JSON(http.StatusCreated, toTaskResponse(detail))
}

// Finish handles POST /v1/tasks/:name/finish. The task is archived before
// it leaves the pending set; finishing twice returns 422.
//
// @Summary      Finish a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        name  path      string  true  "Task name"
// @Success      200   {object}  messageResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/tasks/{name}/finish [post]
func (h *TaskHandler) Finish(c echo.Context) error {
	if err := h.service.FinishTask(c.Request().Context(), c.Param("name")); err != nil {
		return err
	}
	metrics.TasksFinishedTotal.Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "task finished and archived"})
}

// Delete handles DELETE /v1/tasks/:name. Only finished tasks can be
// deleted; their archive entries survive.
//
// @Summary      Delete a finished task
// @Tags         tasks
// @Security     BearerAuth
// @Param        name  path  string  true  "Task name"
// @Success      204
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/tasks/{name} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteTask(c.Request().Context(), c.Param("name")); err != nil {
		return err
	}
	metrics.TasksDeletedTotal.Inc()
	return c.NoContent(http.StatusNoContent)
}

// Archive handles GET /v1/archive.
//
// @Summary      List archived task records
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   archiveEntryResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/archive [get]
func (h *TaskHandler) Archive(c echo.Context) error {
	entries, err := h.service.ArchivedTasks(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toArchiveResponse(entries))
}

// Statistics handles GET /v1/statistics.
//
// @Summary      Task and account statistics
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  statisticsResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/statistics [get]
func (h *TaskHandler) Statistics(c echo.Context) error {
	stats, err := h.service.Statistics(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toStatisticsResponse(stats))
}
