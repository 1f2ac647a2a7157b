package config

import (
	"strings"
	"testing"
)

func TestEnsureDSNPreservesExplicitValue(t *testing.T) {
	cfg := DBConfig{DSN: "postgres://app:secret@db:5432/lease"}
	if err := cfg.ensureDSN(); err != nil {
		t.Fatalf("ensureDSN: %v", err)
	}
	if cfg.DSN != "postgres://app:secret@db:5432/lease" {
		t.Fatalf("dsn was rewritten: %s", cfg.DSN)
	}
}

func TestEnsureDSNBuildsFromLegacyParts(t *testing.T) {
	cfg := DBConfig{
		LegacyHost:     "localhost",
		LegacyPort:     5432,
		LegacyUser:     "lease",
		LegacyPassword: "pw",
		LegacyName:     "onestoplease",
		LegacySSLMode:  "disable",
	}
	if err := cfg.ensureDSN(); err != nil {
		t.Fatalf("ensureDSN: %v", err)
	}
	if !strings.HasPrefix(cfg.DSN, "postgres://lease:pw@localhost:5432/onestoplease") {
		t.Fatalf("unexpected dsn %s", cfg.DSN)
	}
	if !strings.Contains(cfg.DSN, "sslmode=disable") {
		t.Fatalf("sslmode missing from dsn %s", cfg.DSN)
	}
}

func TestEnsureDSNReportsMissingParts(t *testing.T) {
	cfg := DBConfig{LegacyHost: "localhost"}
	err := cfg.ensureDSN()
	if err == nil {
		t.Fatal("expected error for missing legacy parts")
	}
	if !strings.Contains(err.Error(), EnvDBUser) {
		t.Fatalf("error should name the missing vars, got %v", err)
	}
}

func TestRefreshTokenTTL(t *testing.T) {
	cfg := JWTConfig{RefreshTokenTTLMinutes: 60}
	if got := cfg.RefreshTokenTTL().Minutes(); got != 60 {
		t.Fatalf("expected 60m ttl, got %v", got)
	}
	cfg.RefreshTokenTTLMinutes = 0
	if got := cfg.RefreshTokenTTL(); got != 0 {
		t.Fatalf("expected zero ttl, got %v", got)
	}
}
