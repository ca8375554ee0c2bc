package httpapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"horse.fit/daybrief/internal/auth"
)

const editorPasswordHeader = "X-Editor-Password"

// requireEditor guards mutating routes with the configured editor password.
// An empty EDITOR_PASSWORD_HASH disables the check.
func (s *Server) requireEditor() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			hash := ""
			if s.cfg != nil {
				hash = strings.TrimSpace(s.cfg.EditorPasswordHash)
			}
			if hash == "" {
				return next(c)
			}

			password := c.Request().Header.Get(editorPasswordHeader)
			if !auth.VerifyPassword(password, hash) {
				return unauthorizedResponse(c)
			}
			return next(c)
		}
	}
}

func unauthorizedResponse(c echo.Context) error {
	return fail(c, http.StatusUnauthorized, "Editor password required", nil)
}
