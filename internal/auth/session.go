package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/account-service/internal/config"
)

// SessionWriter persists credentials back to the client-visible carrier.
type SessionWriter interface {
	SetTokens(c *fiber.Ctx, pair Pair) error
	ClearTokens(c *fiber.Ctx) error
}

// CookieSessionWriter stores credentials in HttpOnly cookies.
type CookieSessionWriter struct {
	Names  CookieNames
	Secure bool
}

// SetTokens implements SessionWriter.
func (w CookieSessionWriter) SetTokens(c *fiber.Ctx, pair Pair) error {
	c.Cookie(w.cookie(w.Names.Access, pair.Access, pair.AccessExpiresAt))
	c.Cookie(w.cookie(w.Names.Refresh, pair.Refresh, pair.RefreshExpiresAt))
	return nil
}

// ClearTokens implements SessionWriter.
func (w CookieSessionWriter) ClearTokens(c *fiber.Ctx) error {
	expired := time.Unix(0, 0)
	c.Cookie(w.cookie(w.Names.Access, "", expired))
	c.Cookie(w.cookie(w.Names.Refresh, "", expired))
	return nil
}

func (w CookieSessionWriter) cookie(name, value string, expires time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   w.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}

// HeaderSessionWriter returns credentials in response headers.
type HeaderSessionWriter struct{}

// SetTokens implements SessionWriter.
func (HeaderSessionWriter) SetTokens(c *fiber.Ctx, pair Pair) error {
	c.Set(HeaderIssuedAccessToken, pair.Access)
	c.Set(HeaderRefreshToken, pair.Refresh)
	return nil
}

// ClearTokens sends both headers empty; clients discard stored credentials on an empty value.
func (HeaderSessionWriter) ClearTokens(c *fiber.Ctx) error {
	c.Set(HeaderIssuedAccessToken, "")
	c.Set(HeaderRefreshToken, "")
	return nil
}

// NewSessionWriter picks the carrier configured for writing.
func NewSessionWriter(carrier string, names CookieNames, secure bool) SessionWriter {
	if carrier == config.CarrierHeader {
		return HeaderSessionWriter{}
	}
	return CookieSessionWriter{Names: names, Secure: secure}
}
