package dto

import (
	"strings"
	"testing"

	"github.com/spec-kit/account-service/pkg/util/validation"
)

func TestPasswordLimitsCountBytes(t *testing.T) {
	// 40 runes, 80 bytes: over bcrypt's input limit.
	long := strings.Repeat("é", 40)

	fields := validation.Fields(&PasswordResetConfirmRequest{Token: "t", NewPassword: long})
	if _, ok := fields["new_password"]; !ok {
		t.Fatalf("expected new_password to be rejected, got %v", fields)
	}
	fields = validation.Fields(&UserRegisterRequest{Name: "A", Email: "a@example.com", Password: long})
	if _, ok := fields["password"]; !ok {
		t.Fatalf("expected password to be rejected, got %v", fields)
	}
	if fields := validation.Fields(&PasswordChangeRequest{CurrentPassword: "x", NewPassword: strings.Repeat("é", 36)}); len(fields) != 0 {
		t.Fatalf("72 bytes should pass, got %v", fields)
	}
}
