package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/inkwell/content-api/internal/core/domain"
)

// PrincipalKey is the echo context key the Auth middleware stores the
// resolved principal under.
const PrincipalKey = "principal"

// ctxPrincipal extracts the principal injected by the Auth middleware. Its
// absence means the route was registered without the middleware.
func ctxPrincipal(c echo.Context) (domain.Principal, error) {
	p, ok := c.Get(PrincipalKey).(domain.Principal)
	if !ok || p.ID <= 0 {
		return domain.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, domain.ErrMissingCredentials.Error())
	}
	return p, nil
}
