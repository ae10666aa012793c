package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/account-service/internal/config"
)

// Header names used by the header carrier.
const (
	HeaderAccessToken       = "Authorization"
	HeaderRefreshToken      = "X-Refresh-Token"
	HeaderIssuedAccessToken = "X-Access-Token"
)

// Credentials holds the raw credentials found on a request. An empty field means absent.
type Credentials struct {
	Access  string
	Refresh string
}

// TokenSource reads candidate credentials from an inbound request. It never fails.
type TokenSource interface {
	Extract(c *fiber.Ctx) Credentials
}

// CookieNames names the cookie slots holding each credential.
type CookieNames struct {
	Access  string
	Refresh string
}

// HeaderSource reads Authorization and X-Refresh-Token.
type HeaderSource struct{}

// Extract implements TokenSource.
func (HeaderSource) Extract(c *fiber.Ctx) Credentials {
	return Credentials{
		Access:  stripBearer(c.Get(HeaderAccessToken)),
		Refresh: stripBearer(c.Get(HeaderRefreshToken)),
	}
}

// CookieSource reads credentials from two named cookies.
type CookieSource struct {
	Names CookieNames
}

// Extract implements TokenSource.
func (s CookieSource) Extract(c *fiber.Ctx) Credentials {
	return Credentials{
		Access:  strings.TrimSpace(c.Cookies(s.Names.Access)),
		Refresh: strings.TrimSpace(c.Cookies(s.Names.Refresh)),
	}
}

// NewTokenSource picks the carrier configured for reading.
func NewTokenSource(carrier string, names CookieNames) TokenSource {
	if carrier == config.CarrierHeader {
		return HeaderSource{}
	}
	return CookieSource{Names: names}
}

func stripBearer(value string) string {
	value = strings.TrimSpace(value)
	const bearer = "bearer "
	if len(value) >= len(bearer) && strings.EqualFold(value[:len(bearer)], bearer) {
		value = strings.TrimSpace(value[len(bearer):])
	}
	return value
}
