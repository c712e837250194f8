package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/emipaz/gestortareas/internal/api/metrics"
	"github.com/emipaz/gestortareas/internal/core/domain"
	"github.com/emipaz/gestortareas/internal/core/ports"
)

// UserHandler handles account management routes.
type UserHandler struct {
	service ports.TaskService
}

func NewUserHandler(service ports.TaskService) *UserHandler {
	return &UserHandler{service: service}
}

// Create handles POST /v1/users.
//
// @Summary      Create an account
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "Account details"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return err
	}

	user, err := h.service.CreateUser(c.Request().Context(), actor, ports.CreateUserInput{
		Name:        req.Name,
		DisplayName: req.DisplayName,
		Role:        role,
		Password:    req.Password,
	})
	if err != nil {
		return err
	}

	metrics.UsersCreatedTotal.WithLabelValues(string(user.Role)).Inc()
	return c.JSON(http.StatusCreated, toUserResponse(user))
}

// List handles GET /v1/users.
//
// @Summary      List accounts
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   userResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.service.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserListResponse(users))
}

// ResetPassword handles POST /v1/users/:name/password/reset. The target
// account is left without a credential and must set a new password via
// POST /auth/password before logging in again.
//
// @Summary      Reset an account's password
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        name  path      string  true  "Account name"
// @Success      200   {object}  messageResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/users/{name}/password/reset [post]
func (h *UserHandler) ResetPassword(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	target := c.Param("name")
	if err := h.service.ResetPassword(c.Request().Context(), actor, target); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "password reset, a new one must be set on next login"})
}

// Tasks handles GET /v1/users/:name/tasks.
//
// @Summary      List tasks assigned to an account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        name  path      string  true  "Account name"
// @Success      200   {array}   taskResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/users/{name}/tasks [get]
func (h *UserHandler) Tasks(c echo.Context) error {
	details, err := h.service.TasksForUser(c.Request().Context(), c.Param("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskListResponse(details))
}
