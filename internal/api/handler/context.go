package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/bizdir/company-api/internal/core/domain"
)

// ctxPrincipal returns the principal bound by the Auth middleware. Reaching a
// protected handler without one means the route was registered without the
// middleware; it is reported as a missing header so the client sees a 401.
func ctxPrincipal(c echo.Context) (domain.Principal, error) {
	p, ok := domain.PrincipalFromContext(c.Request().Context())
	if !ok {
		return domain.Principal{}, domain.NewAuthError(domain.AuthMissingHeader, nil)
	}
	return p, nil
}
