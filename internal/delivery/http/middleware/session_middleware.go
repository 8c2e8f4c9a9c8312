package middleware

import (
	domainerrors "pacta/internal/domain/errors"
	"pacta/internal/usecase"

	"github.com/labstack/echo/v4"
)

// Context keys and cookie names shared by the session middleware and the
// auth handlers.
const (
	SessionContextKey = "session"

	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
	// LegacyTokenCookie predates the split token pair; logout still expires it
	// so stale browsers do not keep a dangling credential.
	LegacyTokenCookie = "auth_token"
)

// SessionMiddleware hydrates authentication state from the access-token
// cookie. Hydration is passive: a missing or bad cookie yields the anonymous
// session, never an error response.
type SessionMiddleware struct {
	uc usecase.AuthUsecase
}

// NewSessionMiddleware is the constructor for SessionMiddleware.
func NewSessionMiddleware(uc usecase.AuthUsecase) *SessionMiddleware {
	return &SessionMiddleware{uc: uc}
}

// Hydrate attaches the session (authenticated or anonymous) to the request
// context for downstream handlers.
func (m *SessionMiddleware) Hydrate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Set(SessionContextKey, m.uc.LoadSession(c.Request().Context(), cookieValue(c, AccessTokenCookie)))

		return next(c)
	}
}

// RequireAuth rejects requests whose hydrated session is anonymous. It must
// be used after Hydrate.
func (m *SessionMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		session := SessionFromContext(c)
		if session == nil || !session.Authenticated {
			return domainerrors.ErrTokenInvalid.WithMessage("Authentication required")
		}

		return next(c)
	}
}

// SessionFromContext returns the hydrated session, or nil when Hydrate did
// not run for this route.
func SessionFromContext(c echo.Context) *usecase.SessionResult {
	session, ok := c.Get(SessionContextKey).(*usecase.SessionResult)
	if !ok {
		return nil
	}

	return session
}

func cookieValue(c echo.Context, name string) string {
	cookie, err := c.Cookie(name)
	if err != nil {
		return ""
	}

	return cookie.Value
}
