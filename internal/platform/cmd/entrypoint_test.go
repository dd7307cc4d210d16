package cmd

import (
	"context"
	"errors"
	"flag"
	"testing"
)

type testConfig struct {
	StoragePath string `env:"CMD_TEST_STORAGE_PATH" envDefault:"kittendex.db"`
	Actor       string `env:"CMD_TEST_ACTOR" envDefault:"alice"`
}

func TestParseConfigReadsEnvAndFlags(t *testing.T) {
	t.Setenv("CMD_TEST_STORAGE_PATH", "env.db")
	t.Setenv("CMD_TEST_ACTOR", "env-actor")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg := testConfig{}
	if err := ParseConfig(&cfg); err != nil {
		t.Fatalf("load config defaults: %v", err)
	}
	fs.StringVar(&cfg.StoragePath, "db", cfg.StoragePath, "storage path")
	fs.StringVar(&cfg.Actor, "as", cfg.Actor, "actor")

	if err := ParseArgs(fs, []string{"-db", "flag.db"}); err != nil {
		t.Fatalf("parse args: %v", err)
	}

	if cfg.StoragePath != "flag.db" {
		t.Fatalf("expected flag override, got %q", cfg.StoragePath)
	}
	if cfg.Actor != "env-actor" {
		t.Fatalf("expected env value, got %q", cfg.Actor)
	}
}

func TestParseConfigRejectsNilTarget(t *testing.T) {
	if err := ParseConfig[testConfig](nil); err == nil {
		t.Fatal("expected error for nil config target")
	}
}

func TestParseArgsRejectsNilFlagSet(t *testing.T) {
	if err := ParseArgs(nil, nil); err == nil {
		t.Fatal("expected error for nil flag set")
	}
}

func TestRunWithTelemetryRequiresService(t *testing.T) {
	err := RunWithTelemetry(context.Background(), "  ", func(context.Context) error { return nil })
	if err == nil {
		t.Fatal("expected error for empty service name")
	}
}

func TestRunWithTelemetryPropagatesRunError(t *testing.T) {
	want := errors.New("boom")
	err := RunWithTelemetry(context.Background(), ServiceKittendex, func(context.Context) error { return want })
	if !errors.Is(err, want) {
		t.Fatalf("expected run error, got %v", err)
	}
}
