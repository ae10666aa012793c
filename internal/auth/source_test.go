package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/account-service/internal/config"
)

var testCookies = CookieNames{Access: "test_access", Refresh: "test_refresh"}

func extractWith(t *testing.T, source TokenSource, req *http.Request) Credentials {
	t.Helper()
	var got Credentials
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		got = source.Extract(c)
		return c.SendStatus(fiber.StatusNoContent)
	})
	if _, err := app.Test(req, -1); err != nil {
		t.Fatalf("app test: %v", err)
	}
	return got
}

func TestHeaderSourceStripsBearer(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderAccessToken, "bEaReR  abc.def.ghi ")
	req.Header.Set(HeaderRefreshToken, "Bearer r.r.r")

	got := extractWith(t, HeaderSource{}, req)
	if got.Access != "abc.def.ghi" || got.Refresh != "r.r.r" {
		t.Fatalf("unexpected credentials %+v", got)
	}
}

func TestHeaderSourceAcceptsRawValues(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderAccessToken, "abc.def.ghi")

	got := extractWith(t, HeaderSource{}, req)
	if got.Access != "abc.def.ghi" || got.Refresh != "" {
		t.Fatalf("unexpected credentials %+v", got)
	}
}

func TestCookieSource(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: testCookies.Access, Value: "a.a.a"})
	req.AddCookie(&http.Cookie{Name: testCookies.Refresh, Value: "r.r.r"})
	req.Header.Set(HeaderAccessToken, "Bearer ignored")

	got := extractWith(t, CookieSource{Names: testCookies}, req)
	if got.Access != "a.a.a" || got.Refresh != "r.r.r" {
		t.Fatalf("unexpected credentials %+v", got)
	}
}

func TestSourcesReportAbsence(t *testing.T) {
	for _, source := range []TokenSource{HeaderSource{}, CookieSource{Names: testCookies}} {
		got := extractWith(t, source, httptest.NewRequest(http.MethodGet, "/", nil))
		if got != (Credentials{}) {
			t.Fatalf("%T: expected empty credentials, got %+v", source, got)
		}
	}
}

func TestNewTokenSourceSelectsCarrier(t *testing.T) {
	if _, ok := NewTokenSource(config.CarrierHeader, testCookies).(HeaderSource); !ok {
		t.Fatal("expected header source")
	}
	if _, ok := NewTokenSource(config.CarrierCookie, testCookies).(CookieSource); !ok {
		t.Fatal("expected cookie source")
	}
}

func TestCookieSessionWriter(t *testing.T) {
	exp := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	pair := Pair{Access: "a.a.a", Refresh: "r.r.r", AccessExpiresAt: exp, RefreshExpiresAt: exp.Add(time.Hour)}
	writer := CookieSessionWriter{Names: testCookies, Secure: true}

	app := fiber.New()
	app.Get("/set", func(c *fiber.Ctx) error { return writer.SetTokens(c, pair) })
	app.Get("/clear", func(c *fiber.Ctx) error { return writer.ClearTokens(c) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/set", nil), -1)
	if err != nil {
		t.Fatalf("app test: %v", err)
	}
	cookies := map[string]*http.Cookie{}
	for _, ck := range resp.Cookies() {
		cookies[ck.Name] = ck
	}
	access := cookies[testCookies.Access]
	if access == nil || access.Value != pair.Access || !access.HttpOnly || !access.Secure {
		t.Fatalf("unexpected access cookie %+v", access)
	}
	if !access.Expires.Equal(exp) {
		t.Fatalf("access cookie expiry %v, want %v", access.Expires, exp)
	}
	if refresh := cookies[testCookies.Refresh]; refresh == nil || refresh.Value != pair.Refresh {
		t.Fatalf("unexpected refresh cookie %+v", refresh)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/clear", nil), -1)
	if err != nil {
		t.Fatalf("app test: %v", err)
	}
	cleared := 0
	for _, ck := range resp.Cookies() {
		if ck.Value != "" || !ck.Expires.Before(time.Now()) {
			t.Fatalf("cookie %s not cleared: %+v", ck.Name, ck)
		}
		cleared++
	}
	if cleared != 2 {
		t.Fatalf("expected 2 cleared cookies, got %d", cleared)
	}
}

func TestHeaderSessionWriter(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return HeaderSessionWriter{}.SetTokens(c, Pair{Access: "a.a.a", Refresh: "r.r.r"})
	})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	if err != nil {
		t.Fatalf("app test: %v", err)
	}
	if got := resp.Header.Get(HeaderIssuedAccessToken); got != "a.a.a" {
		t.Fatalf("unexpected %s %q", HeaderIssuedAccessToken, got)
	}
	if got := resp.Header.Get(HeaderRefreshToken); got != "r.r.r" {
		t.Fatalf("unexpected %s %q", HeaderRefreshToken, got)
	}
}

func TestHeaderSessionWriterClearSendsEmptyValues(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return HeaderSessionWriter{}.ClearTokens(c) })
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	if err != nil {
		t.Fatalf("app test: %v", err)
	}
	for _, name := range []string{HeaderIssuedAccessToken, HeaderRefreshToken} {
		values, ok := resp.Header[http.CanonicalHeaderKey(name)]
		if !ok || len(values) != 1 || values[0] != "" {
			t.Fatalf("expected empty %s header, got %v", name, values)
		}
	}
}
