package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/raugupatis/raugupatis-log/internal/services"
)

const sessionCookieIssuer = "raugupatis-log"

var errInvalidSessionCookie = errors.New("invalid session cookie")

// The cookie carries no expiry claim. The server-side session decides
// whether the token is still alive.
func (handler *Handler) signSessionToken(token string, issuedAt time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:       token,
		Issuer:   sessionCookieIssuer,
		IssuedAt: jwt.NewNumericDate(issuedAt),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(handler.secretKey)
}

func (handler *Handler) parseSessionToken(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errInvalidSessionCookie
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return handler.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(sessionCookieIssuer))
	if err != nil || !parsed.Valid || claims.ID == "" {
		return "", errInvalidSessionCookie
	}
	return claims.ID, nil
}

// setSessionCookie writes the signed session token. Remember-me sessions get
// an Expires matching the server-side expiry; others end with the browser.
func (handler *Handler) setSessionCookie(c *fiber.Ctx, session services.ActiveSession) error {
	value, err := handler.signSessionToken(session.Token, handler.now())
	if err != nil {
		return err
	}

	cookie := &fiber.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
	if session.Persistent(handler.sessions.TTL()) {
		cookie.Expires = session.ExpiresAt
	}
	c.Cookie(cookie)
	return nil
}

func (handler *Handler) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
}
