package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/bizdir/company-api/internal/core/domain"
	"github.com/bizdir/company-api/internal/pkg/metrics"
)

// PrincipalResolver turns the request headers into an authenticated principal.
type PrincipalResolver interface {
	Resolve(ctx context.Context, header http.Header) (domain.Principal, error)
}

// Auth resolves the caller and binds the principal to the request context.
// Rejections are returned as-is; the HTTP error handler maps them to 401.
func Auth(resolver PrincipalResolver, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			principal, err := resolver.Resolve(req.Context(), req.Header)
			if err != nil {
				if ae, ok := domain.AsAuthError(err); ok {
					metrics.AuthFailuresTotal.WithLabelValues(string(ae.Kind)).Inc()
					log.Warn().
						Str("reason", string(ae.Kind)).
						Str("path", c.Path()).
						Msg("request rejected by principal resolver")
				}
				return err
			}

			c.SetRequest(req.WithContext(domain.WithPrincipal(req.Context(), principal)))
			return next(c)
		}
	}
}
