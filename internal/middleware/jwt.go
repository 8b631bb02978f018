package middleware // middleware provides reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// AccessCookie is the cookie that carries the access token for browser
// sessions established at signup/login.
const AccessCookie = "access_token"

// JWTAuth returns an Echo middleware that validates an access token and
// injects the token's subject claim into the request context. The token is
// read from the Authorization header ("Bearer <jwt>") or, failing that,
// from the access_token cookie. Requests without a valid token are
// redirected to /login. Handlers access the authenticated user via
// `c.Get("user_id")`.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := ""
			if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				raw = strings.TrimPrefix(auth, "Bearer ")
			} else if ck, err := c.Cookie(AccessCookie); err == nil {
				raw = ck.Value
			}
			if raw == "" {
				return c.Redirect(http.StatusFound, "/login")
			}

			// Parse with HS256 only; a different signing method means the
			// token was not issued by this service.
			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.Redirect(http.StatusFound, "/login")
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.Redirect(http.StatusFound, "/login")
			}

			c.Set("user_id", claims["sub"])
			return next(c)
		}
	}
}
