package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxActor extracts the authenticated account name injected by the Auth
// middleware. A missing name means the route was registered without the
// middleware; reject with 401 rather than hitting the service anonymously.
func ctxActor(c echo.Context) (string, error) {
	name, _ := c.Get("username").(string)
	if name == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return name, nil
}
