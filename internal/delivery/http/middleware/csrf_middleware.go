package middleware

import (
	"log/slog"
	"net/http"

	domainerrors "pacta/internal/domain/errors"
	"pacta/internal/security/csrf"

	"github.com/labstack/echo/v4"
)

// CSRFHeader and CSRFFormField are the two places a client may carry its
// anti-forgery token.
const (
	CSRFHeader    = "X-CSRF-Token"
	CSRFFormField = "csrf_token"
)

// CSRFMiddleware enforces single-use anti-forgery tokens on mutating routes.
type CSRFMiddleware struct {
	guard  *csrf.Guard
	logger *slog.Logger
}

// NewCSRFMiddleware is the constructor for CSRFMiddleware.
func NewCSRFMiddleware(guard *csrf.Guard, logger *slog.Logger) *CSRFMiddleware {
	return &CSRFMiddleware{guard: guard, logger: logger}
}

// Verify consumes the request's token before the handler runs. Safe methods
// pass through untouched. The rejection wording is deliberately generic; the
// reason goes to the server log only.
func (m *CSRFMiddleware) Verify(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		switch c.Request().Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return next(c)
		}

		token := c.Request().Header.Get(CSRFHeader)
		if token == "" {
			token = c.FormValue(CSRFFormField)
		}

		if !m.guard.ValidateAndConsume(c.Request().Context(), token) {
			m.logger.Warn("Request rejected: missing or invalid anti-forgery token",
				slog.String("path", c.Request().URL.Path),
				slog.String("clientIP", c.RealIP()))

			return domainerrors.ErrCSRFRejected
		}

		return next(c)
	}
}
