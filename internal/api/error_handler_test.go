package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/emipaz/gestortareas/internal/core/domain"
)

func TestHTTPErrorHandler_DomainErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"validation", fmt.Errorf("%w: name must not be empty", domain.ErrValidation), http.StatusBadRequest},
		{"credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{"permission", fmt.Errorf("%w: role user may not create_task", domain.ErrPermission), http.StatusForbidden},
		{"not_found", fmt.Errorf("%w: user \"ghost\"", domain.ErrNotFound), http.StatusNotFound},
		{"conflict", fmt.Errorf("%w: user \"alice\"", domain.ErrConflict), http.StatusConflict},
		{"credential_not_set", domain.ErrCredentialNotSet, http.StatusConflict},
		{"state", fmt.Errorf("%w: task \"x\" is already finished", domain.ErrState), http.StatusUnprocessableEntity},
		{"echo_error", echo.NewHTTPError(http.StatusTeapot, "teapot"), http.StatusTeapot},
		{"unexpected", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	e := echo.New()
	handle := NewHTTPErrorHandler(zerolog.Nop())

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handle(tc.err, c)

			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}
		})
	}
}

func TestHTTPErrorHandler_CommittedResponseUntouched(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := c.NoContent(http.StatusNoContent); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	handle := NewHTTPErrorHandler(zerolog.Nop())
	handle(fmt.Errorf("late failure"), c)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected committed 204 untouched, got %d", rec.Code)
	}
}
