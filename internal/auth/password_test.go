package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/account-service/internal/domain"
)

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	hash, err := h.Hash("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := h.Compare(hash, "correct horse"); err != nil {
		t.Fatalf("expected match: %v", err)
	}
	if err := h.Compare(hash, "battery staple"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
	if err := h.Compare("not-a-hash", "x"); err == nil || errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("malformed hash should not read as a mismatch: %v", err)
	}
}

func TestPasswordHasherRejectsLongInput(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	if _, err := h.Hash(strings.Repeat("x", 73)); !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
}

func TestNewPasswordHasherClampsCost(t *testing.T) {
	hash, err := NewPasswordHasher(99).Hash("pw")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil || cost != bcrypt.DefaultCost {
		t.Fatalf("expected default cost, got %d (%v)", cost, err)
	}
}

func TestRoleSet(t *testing.T) {
	if !newRoleSet(nil).permits(domain.RoleCustomer) {
		t.Fatal("empty set must admit any role")
	}
	set := newRoleSet([]domain.Role{domain.RoleAdmin})
	if !set.permits(domain.RoleAdmin) || set.permits(domain.RoleManager) || set.permits("") {
		t.Fatal("unexpected membership")
	}
}
