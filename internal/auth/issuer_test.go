package auth

import (
	"testing"
	"time"
)

func newTestIssuer(t *testing.T, clock *testClock) *Issuer {
	t.Helper()
	issuer, err := NewIssuer(newTestCodec(t, clock), time.Minute, 10*time.Minute)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	return issuer
}

func TestIssuePair(t *testing.T) {
	clock := newTestClock()
	issuer := newTestIssuer(t, clock)

	pair, err := issuer.IssuePair(alice)
	if err != nil {
		t.Fatalf("issue pair: %v", err)
	}
	if pair.Access == pair.Refresh {
		t.Fatal("access and refresh must differ")
	}
	if !pair.AccessExpiresAt.Equal(clock.Now().Add(time.Minute)) {
		t.Fatalf("unexpected access expiry %v", pair.AccessExpiresAt)
	}
	if !pair.RefreshExpiresAt.Equal(clock.Now().Add(10 * time.Minute)) {
		t.Fatalf("unexpected refresh expiry %v", pair.RefreshExpiresAt)
	}

	access := issuer.Codec().Verify(pair.Access, KindAccess)
	refresh := issuer.Codec().Verify(pair.Refresh, KindRefresh)
	if access.Status != StatusValid || refresh.Status != StatusValid {
		t.Fatalf("expected both valid, got %s/%s", access.Status, refresh.Status)
	}
	if access.Claims.PairID == "" || access.Claims.PairID != refresh.Claims.PairID {
		t.Fatalf("pair ids must match: %q vs %q", access.Claims.PairID, refresh.Claims.PairID)
	}
	if access.Claims.Identity() != refresh.Claims.Identity() {
		t.Fatal("pair members must carry the same identity")
	}
	if v := issuer.Codec().Verify(pair.Access, KindRefresh); v.Status != StatusInvalid {
		t.Fatal("access token must not verify as refresh")
	}
}

func TestIssuePairTwiceDiffers(t *testing.T) {
	issuer := newTestIssuer(t, newTestClock())
	first, err := issuer.IssuePair(alice)
	if err != nil {
		t.Fatalf("issue pair: %v", err)
	}
	second, err := issuer.IssuePair(alice)
	if err != nil {
		t.Fatalf("issue pair: %v", err)
	}
	if first.Access == second.Access || first.Refresh == second.Refresh {
		t.Fatal("consecutive pairs must differ")
	}
}

func TestIssueSingleUseToken(t *testing.T) {
	clock := newTestClock()
	issuer := newTestIssuer(t, clock)

	token, exp, err := issuer.IssueSingleUseToken(alice, KindVerifyEmail, 10*time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !exp.Equal(clock.Now().Add(10 * time.Minute)) {
		t.Fatalf("unexpected expiry %v", exp)
	}
	v := issuer.Codec().Verify(token, KindVerifyEmail)
	if v.Status != StatusValid || v.Claims.PairID != "" {
		t.Fatalf("unexpected verification %+v", v)
	}

	if _, _, err := issuer.IssueSingleUseToken(alice, KindRefresh, time.Minute); err == nil {
		t.Fatal("expected pair kinds to be refused")
	}
}

func TestNewIssuerValidatesLifetimes(t *testing.T) {
	codec := newTestCodec(t, newTestClock())
	if _, err := NewIssuer(nil, time.Minute, time.Hour); err == nil {
		t.Fatal("expected error for nil codec")
	}
	if _, err := NewIssuer(codec, 0, time.Hour); err == nil {
		t.Fatal("expected error for zero access lifetime")
	}
	if _, err := NewIssuer(codec, time.Minute, -time.Hour); err == nil {
		t.Fatal("expected error for negative refresh lifetime")
	}
}
