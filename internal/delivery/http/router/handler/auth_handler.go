// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"pacta/config"
	"pacta/internal/delivery/http/middleware"
	"pacta/internal/delivery/http/response"
	domainerrors "pacta/internal/domain/errors"
	"pacta/internal/domain/service"
	"pacta/internal/security/csrf"
	"pacta/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// AuthHandler holds dependencies for the authentication endpoints.
type AuthHandler struct {
	uc       usecase.AuthUsecase
	tokenSvc service.TokenService
	csrf     *csrf.Guard
	cfg      *config.Config
	logger   *slog.Logger
}

// AuthHandlerParams holds dependencies for AuthHandler, injected by Fx.
type AuthHandlerParams struct {
	fx.In

	Usecase      usecase.AuthUsecase
	TokenService service.TokenService
	CSRFGuard    *csrf.Guard
	Config       *config.Config
	Logger       *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler.
func NewAuthHandler(params AuthHandlerParams) *AuthHandler {
	return &AuthHandler{
		uc:       params.Usecase,
		tokenSvc: params.TokenService,
		csrf:     params.CSRFGuard,
		cfg:      params.Config,
		logger:   params.Logger,
	}
}

// Register handles the user registration request.
func (h *AuthHandler) Register(c echo.Context) error {
	var input usecase.RegisterInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid registration input")
	}
	if err := c.Validate(&input); err != nil {
		return err
	}
	input.ClientID = c.RealIP()

	result, err := h.uc.Register(c.Request().Context(), &input)
	if err != nil {
		return errors.WithStack(err)
	}

	// Cookies are set only after the result is fully computed.
	h.setAuthCookies(c, result.Tokens, input.RememberMe)

	return response.Success(c, http.StatusCreated, result.User, result.Message)
}

// Login handles the user login request.
func (h *AuthHandler) Login(c echo.Context) error {
	var input usecase.LoginInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}
	if err := c.Validate(&input); err != nil {
		return err
	}
	input.ClientID = c.RealIP()

	result, err := h.uc.Login(c.Request().Context(), &input)
	if err != nil {
		return errors.WithStack(err)
	}

	h.setAuthCookies(c, result.Tokens, input.RememberMe)

	return response.Success(c, http.StatusOK, result.User, result.Message)
}

// Refresh exchanges the refresh-token cookie for a fresh access token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	refreshToken := cookieValue(c, middleware.RefreshTokenCookie)
	if refreshToken == "" {
		return domainerrors.ErrTokenInvalid.WithMessage("Refresh token is missing")
	}

	result, err := h.uc.Refresh(c.Request().Context(), refreshToken)
	if err != nil {
		return errors.WithStack(err)
	}

	// Only the access token rotates; the refresh cookie stays as issued. The
	// replacement is session-scoped since a persistent refresh cookie can
	// always mint another one after a browser restart.
	h.setCookie(c, middleware.AccessTokenCookie, result.Tokens.AccessToken, 0)

	return response.Success(c, http.StatusOK, result.User, result.Message)
}

// Logout expires every auth cookie. It is idempotent and succeeds regardless
// of the request's authentication state.
func (h *AuthHandler) Logout(c echo.Context) error {
	h.clearCookie(c, middleware.AccessTokenCookie)
	h.clearCookie(c, middleware.RefreshTokenCookie)
	h.clearCookie(c, middleware.LegacyTokenCookie)

	return response.Success(c, http.StatusOK, nil, "Logout successful")
}

// Session reports the hydrated authentication state. Anonymous is a normal
// 200 response, never an error.
func (h *AuthHandler) Session(c echo.Context) error {
	session := middleware.SessionFromContext(c)
	if session == nil {
		session = h.uc.LoadSession(c.Request().Context(), cookieValue(c, middleware.AccessTokenCookie))
	}

	return response.Success(c, http.StatusOK, session, "")
}

// CSRFToken issues a fresh single-use anti-forgery token.
func (h *AuthHandler) CSRFToken(c echo.Context) error {
	token, err := h.csrf.Issue(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to issue anti-forgery token", slog.Any("error", err))

		return domainerrors.ErrStoreUnavailable
	}

	return response.Success(c, http.StatusOK, map[string]string{"csrf_token": token}, "")
}

// Profile echoes the authenticated identity. The route is guarded by
// RequireAuth, so the session is always present here.
func (h *AuthHandler) Profile(c echo.Context) error {
	session := middleware.SessionFromContext(c)
	if session == nil || !session.Authenticated {
		return response.Unauthorized(c, "TOKEN_INVALID", "Authentication required")
	}

	return response.Success(c, http.StatusOK, map[string]string{
		"username": session.Username,
		"user_id":  session.UserID.String(),
	}, "")
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"}, "Service is healthy")
}

// setAuthCookies writes the token pair. With remember unset the cookies are
// session-scoped and die with the browser; with it set they persist for the
// token lifetimes.
func (h *AuthHandler) setAuthCookies(c echo.Context, tokens *usecase.TokenPair, remember bool) {
	access, refresh := time.Duration(0), time.Duration(0)
	if remember {
		access = h.tokenSvc.AccessTokenDuration()
		refresh = h.tokenSvc.RefreshTokenDuration()
	}
	h.setCookie(c, middleware.AccessTokenCookie, tokens.AccessToken, access)
	h.setCookie(c, middleware.RefreshTokenCookie, tokens.RefreshToken, refresh)
}

// setCookie writes one auth cookie; a zero ttl yields a session cookie.
func (h *AuthHandler) setCookie(c echo.Context, name, value string, ttl time.Duration) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   h.cfg.Auth.CookieDomain,
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearCookie(c echo.Context, name string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   h.cfg.Auth.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
}

func cookieValue(c echo.Context, name string) string {
	cookie, err := c.Cookie(name)
	if err != nil {
		return ""
	}

	return cookie.Value
}
