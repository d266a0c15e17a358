package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/inkwell/content-api/internal/api/handler"
	"github.com/inkwell/content-api/internal/core/domain"
	"github.com/inkwell/content-api/internal/core/ports"
)

// Auth resolves the bearer token to a principal and stores it under
// handler.PrincipalKey. A request without a token fails with
// domain.ErrMissingCredentials, any other failure with domain.ErrInvalidToken.
func Auth(resolver ports.IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return err
			}

			principal, err := resolver.Authenticate(c.Request().Context(), token)
			if err != nil {
				return err
			}

			c.Set(handler.PrincipalKey, *principal)
			return next(c)
		}
	}
}

func bearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", domain.ErrMissingCredentials
	}

	scheme, token, _ := strings.Cut(header, " ")
	if !strings.EqualFold(scheme, "bearer") {
		return "", domain.ErrInvalidToken
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", domain.ErrMissingCredentials
	}
	return token, nil
}
