package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archflow.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if c := Default().History.Capacity; c != 0 {
		t.Errorf("History.Capacity = %d, want 0 (unlimited)", c)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
[server]
addr = "0.0.0.0:9000"
shutdown_timeout = "5s"

[store]
backend = "sqlite"
sqlite_path = "/var/lib/archflow/archflow.db"

[replica]
badger_path = "/var/lib/archflow/replica"

[cache]
backend = "file"
ttl = "1h"

[layout]
rank_sep = 300.0

[history]
capacity = 50
`)
	cfg, err := load(path, env(nil))
	if err != nil {
		t.Fatalf("load() error: %v", err)
	}
	if cfg.Server.Addr != "0.0.0.0:9000" || cfg.Server.ShutdownTimeout.Std() != 5*time.Second {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Store.Backend != "sqlite" || cfg.Store.SQLitePath != "/var/lib/archflow/archflow.db" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Cache.TTL.Std() != time.Hour {
		t.Errorf("Cache.TTL = %v, want 1h", cfg.Cache.TTL.Std())
	}
	if cfg.Layout.RankSep != 300 || cfg.Layout.NodeSep != 80 {
		t.Errorf("Layout = %+v, want rank_sep 300 and default node_sep", cfg.Layout)
	}
	if cfg.History.Capacity != 50 {
		t.Errorf("History.Capacity = %d, want 50", cfg.History.Capacity)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "[store]\nbackend = \"memory\"\n")
	cfg, err := load(path, env(map[string]string{
		"ARCHFLOW_STORE_BACKEND":      "postgres",
		"ARCHFLOW_STORE_POSTGRES_URL": "postgres://localhost/archflow",
		"ARCHFLOW_LOG_LEVEL":          "debug",
		"ARCHFLOW_LAYOUT_NODE_SEP":    "120",
		"ARCHFLOW_SERVER_SEED":        "true",
	}))
	if err != nil {
		t.Fatalf("load() error: %v", err)
	}
	if cfg.Store.Backend != "postgres" || cfg.Store.PostgresURL == "" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.LogLevel() != log.DebugLevel {
		t.Errorf("LogLevel() = %v, want debug", cfg.LogLevel())
	}
	if cfg.Layout.NodeSep != 120 || !cfg.Server.Seed {
		t.Errorf("env overrides not applied: %+v %+v", cfg.Layout, cfg.Server)
	}
}

func TestConfigEnvPath(t *testing.T) {
	path := writeFile(t, "[log]\nlevel = \"warn\"\n")
	cfg, err := load("", env(map[string]string{"ARCHFLOW_CONFIG": path}))
	if err != nil {
		t.Fatalf("load() error: %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		vars    map[string]string
		wantErr string
	}{
		{"unknown key", "[store]\nbackends = \"x\"\n", nil, "unknown keys"},
		{"bad toml", "[store\n", nil, "config"},
		{"bad backend", "", map[string]string{"ARCHFLOW_STORE_BACKEND": "oracle"}, "Backend"},
		{"postgres without url", "", map[string]string{"ARCHFLOW_STORE_BACKEND": "postgres"}, "PostgresURL"},
		{"redis without addr", "[cache]\nbackend = \"redis\"\n", nil, "RedisAddr"},
		{"minio without bucket", "", map[string]string{
			"ARCHFLOW_REPLICA_MINIO_ENDPOINT":   "localhost:9000",
			"ARCHFLOW_REPLICA_MINIO_ACCESS_KEY": "a",
			"ARCHFLOW_REPLICA_MINIO_SECRET_KEY": "b",
		}, "MinioBucket"},
		{"bad duration", "", map[string]string{"ARCHFLOW_CACHE_TTL": "soon"}, "ARCHFLOW_CACHE_TTL"},
		{"bad number", "", map[string]string{"ARCHFLOW_LAYOUT_ITERATIONS": "many"}, "ARCHFLOW_LAYOUT_ITERATIONS"},
		{"zero width", "[layout]\nnode_width = 0.0\n", nil, "NodeWidth"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(writeFile(t, tt.file), env(tt.vars))
			if err == nil {
				t.Fatal("load() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("load() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestExplicitMissingFile(t *testing.T) {
	if _, err := load(filepath.Join(t.TempDir(), "nope.toml"), env(nil)); err == nil {
		t.Error("load() with a missing explicit file succeeded")
	}
}

func TestKeys(t *testing.T) {
	keys := Keys()
	for _, k := range keys {
		if !strings.HasPrefix(k, EnvPrefix) {
			t.Errorf("key %q lacks prefix", k)
		}
	}
	if len(keys) < 20 {
		t.Errorf("len(Keys()) = %d", len(keys))
	}
}
