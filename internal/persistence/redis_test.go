package persistence

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap/zaptest"

	"github.com/spec-kit/account-service/internal/config"
)

func TestRedisPing(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}

	r := NewRedis(context.Background(), config.RedisConfig{Addr: mr.Addr()}, zaptest.NewLogger(t))
	defer r.Close()

	if err := r.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}

	mr.Close()
	if err := r.Ping(context.Background()); err == nil {
		t.Fatal("expected ping to fail once redis is gone")
	}
}

func TestRedisKeyPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	r := NewRedis(context.Background(), config.RedisConfig{Addr: mr.Addr(), KeyPrefix: "accounts:"}, zaptest.NewLogger(t))
	defer r.Close()

	if got := r.KeyPrefix(); got != "accounts:" {
		t.Fatalf("expected prefix accounts:, got %q", got)
	}
	var nilRedis *Redis
	if nilRedis.KeyPrefix() != "" {
		t.Fatal("nil redis should report an empty prefix")
	}
}

func TestNilHandlesReportUnconfigured(t *testing.T) {
	var r *Redis
	if err := r.Ping(context.Background()); err == nil {
		t.Fatal("expected error for nil redis")
	}
	var p *Postgres
	if err := p.Ping(context.Background()); err == nil {
		t.Fatal("expected error for nil postgres")
	}
	if p.PoolHandle() != nil {
		t.Fatal("expected nil pool handle")
	}
}
