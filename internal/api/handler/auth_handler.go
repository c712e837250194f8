package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/emipaz/gestortareas/internal/api/metrics"
	"github.com/emipaz/gestortareas/internal/api/token"
	"github.com/emipaz/gestortareas/internal/core/domain"
	"github.com/emipaz/gestortareas/internal/core/ports"
)

// LoginLimiter throttles repeated failed logins per account name. A nil
// limiter disables throttling.
type LoginLimiter interface {
	Locked(ctx context.Context, name string) (bool, error)
	RecordFailure(ctx context.Context, name string) (bool, error)
	Clear(ctx context.Context, name string) error
}

// AuthHandler handles login and first-login password setup.
type AuthHandler struct {
	service ports.TaskService
	tokens  *token.Issuer
	limiter LoginLimiter
	log     zerolog.Logger
}

func NewAuthHandler(service ports.TaskService, tokens *token.Issuer, limiter LoginLimiter, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{service: service, tokens: tokens, limiter: limiter, log: log}
}

// Login authenticates an account and returns a signed token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse  "password setup required"
// @Failure      429   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()

	if h.limiter != nil {
		locked, err := h.limiter.Locked(ctx, req.Name)
		if err != nil {
			// The limiter being unreachable must not block logins.
			h.log.Warn().Err(err).Msg("attempt limiter unavailable")
		} else if locked {
			metrics.LoginsTotal.WithLabelValues("locked").Inc()
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many failed logins, try again later")
		}
	}

	user, err := h.service.Authenticate(ctx, req.Name, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			h.recordFailure(ctx, req.Name)
		}
		if result := loginResult(err); result != "" {
			metrics.LoginsTotal.WithLabelValues(result).Inc()
		}
		return err
	}

	if h.limiter != nil {
		if err := h.limiter.Clear(ctx, req.Name); err != nil {
			h.log.Warn().Err(err).Msg("attempt limiter clear failed")
		}
	}

	signed, err := h.tokens.Issue(user)
	if err != nil {
		return fmt.Errorf("signing token: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, loginResponse{Token: signed, User: toUserResponse(user)})
}

// loginResult maps an authentication error to its logins_total label value.
// Unexpected errors return "" and are not counted as login outcomes.
func loginResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "wrong_password"
	case errors.Is(err, domain.ErrCredentialNotSet):
		return "password_setup"
	case errors.Is(err, domain.ErrNotFound):
		return "unknown_user"
	default:
		return ""
	}
}

// SetupPassword completes the first login of an account created without a
// password (or after an admin reset).
//
// @Summary      Set the initial password
// @Tags         auth
// @Accept       json
// @Param        body  body  setupPasswordRequest  true  "Account name and new password"
// @Success      204
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse  "a password is already set"
// @Router       /auth/password [post]
func (h *AuthHandler) SetupPassword(c echo.Context) error {
	var req setupPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.SetInitialPassword(c.Request().Context(), req.Name, req.Password); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) recordFailure(ctx context.Context, name string) {
	if h.limiter == nil {
		return
	}
	nowLocked, err := h.limiter.RecordFailure(ctx, name)
	if err != nil {
		h.log.Warn().Err(err).Msg("attempt limiter record failed")
		return
	}
	if nowLocked {
		h.log.Info().Str("name", name).Msg("account locked after repeated login failures")
	}
}
