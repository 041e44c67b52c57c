package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"furiousrepair/internal/domain/entity"
	"furiousrepair/internal/usecase"
	"furiousrepair/pkg/errors"
	"furiousrepair/pkg/logger"
)

const (
	principalKey    = "principal"
	sessionTokenKey = "session_token"
)

type CookieOptions struct {
	Name   string
	Secure bool
}

type AuthMiddleware struct {
	authUseCase *usecase.AuthUseCase
	codec       *SessionCodec
	cookie      CookieOptions
}

func NewAuthMiddleware(authUseCase *usecase.AuthUseCase, codec *SessionCodec, cookie CookieOptions) *AuthMiddleware {
	return &AuthMiddleware{
		authUseCase: authUseCase,
		codec:       codec,
		cookie:      cookie,
	}
}

// Authenticate resolves the session cookie and stores the caller's principal
// in the context.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, err := m.tokenFromCookie(c)
		if err != nil {
			return err
		}

		session, err := m.authUseCase.Authenticate(c.Request().Context(), token)
		if err != nil {
			return err
		}

		c.Set(principalKey, session.Principal())
		c.Set(sessionTokenKey, token)
		return next(c)
	}
}

// RequireRole rejects authenticated callers of any other role.
func RequireRole(role entity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, ok := GetPrincipal(c)
			if !ok {
				return errors.Unauthorized("Unauthorized", nil)
			}
			if principal.Role != role {
				return errors.Forbidden("Access denied", nil)
			}
			return next(c)
		}
	}
}

// IssueCookie writes the signed session cookie.
func (m *AuthMiddleware) IssueCookie(c echo.Context, session *entity.Session) error {
	value, err := m.codec.Encode(session)
	if err != nil {
		return errors.Internal("Failed to start session", err)
	}
	c.SetCookie(&http.Cookie{
		Name:     m.cookie.Name,
		Value:    value,
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(session.ExpiresAt.Sub(session.CreatedAt).Seconds()),
		HttpOnly: true,
		Secure:   m.cookie.Secure,
		SameSite: sameSite(m.cookie.Secure),
	})
	return nil
}

func (m *AuthMiddleware) ClearCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     m.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.cookie.Secure,
		SameSite: sameSite(m.cookie.Secure),
	})
}

// SessionToken returns the session token carried by the request cookie, or ""
// when there is no valid cookie. It does not consult the session store.
func (m *AuthMiddleware) SessionToken(c echo.Context) string {
	token, err := m.tokenFromCookie(c)
	if err != nil {
		return ""
	}
	return token
}

func (m *AuthMiddleware) tokenFromCookie(c echo.Context) (string, error) {
	cookie, err := c.Cookie(m.cookie.Name)
	if err != nil || cookie.Value == "" {
		return "", errors.Unauthorized("Unauthorized", nil)
	}
	token, err := m.codec.Decode(cookie.Value)
	if err != nil {
		logger.Debug("rejected session cookie: %v", err)
		return "", errors.Unauthorized("Unauthorized", err)
	}
	return token, nil
}

func GetPrincipal(c echo.Context) (entity.Principal, bool) {
	principal, ok := c.Get(principalKey).(entity.Principal)
	if !ok || principal.SubjectID == "" {
		return entity.Principal{}, false
	}
	return principal, true
}

// Cross-site frontends need SameSite=None, which browsers only accept on
// secure cookies.
func sameSite(secure bool) http.SameSite {
	if secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}
