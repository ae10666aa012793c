package errorutil

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

func TestAuthErrorTaxonomy(t *testing.T) {
	cases := []struct {
		err     error
		code    string
		status  int
		message string
	}{
		{NewUnauthenticated(""), "UNAUTHENTICATED", http.StatusUnauthorized, MsgUnauthenticated},
		{NewAuthenticationFailed(""), "AUTHENTICATION_FAILED", http.StatusUnauthorized, MsgAuthenticationFailed},
		{NewAuthenticationFailed("Invalid authentication token"), "AUTHENTICATION_FAILED", http.StatusUnauthorized, "Invalid authentication token"},
		{NewForbidden(""), "FORBIDDEN", http.StatusForbidden, MsgForbidden},
		{NewInternalError(errors.New("db exploded")), "INTERNAL_ERROR", http.StatusInternalServerError, MsgInternal},
	}
	for _, tc := range cases {
		de := ToDomainError(tc.err)
		if de.Code != tc.code || de.HTTPStatus != tc.status || de.Message != tc.message {
			t.Fatalf("unexpected mapping %+v, want %s/%d/%q", de, tc.code, tc.status, tc.message)
		}
	}
}

func TestToDomainErrorMapsForeignErrors(t *testing.T) {
	if de := ToDomainError(fiber.NewError(http.StatusNotFound, "Cannot GET /x")); de.Code != "NOT_FOUND" || de.HTTPStatus != http.StatusNotFound {
		t.Fatalf("unexpected fiber mapping %+v", de)
	}
	if de := ToDomainError(pgx.ErrNoRows); de.HTTPStatus != http.StatusNotFound {
		t.Fatalf("unexpected no-rows mapping %+v", de)
	}
	cause := errors.New("boom")
	de := ToDomainError(cause)
	if de.HTTPStatus != http.StatusInternalServerError || !errors.Is(de, cause) {
		t.Fatalf("unexpected generic mapping %+v", de)
	}
	if de.Message == cause.Error() {
		t.Fatal("internal causes must not leak into the message")
	}
}

func TestMapErrorKeepsNil(t *testing.T) {
	if err := MapError(nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if ToDomainError(nil) != nil {
		t.Fatal("expected nil domain error")
	}
}
