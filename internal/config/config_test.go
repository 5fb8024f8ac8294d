package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Query.MaxThreads != 5 {
		t.Fatalf("default max threads: %d", cfg.Query.MaxThreads)
	}
	if cfg.Query.Param != "backupQuery" {
		t.Fatalf("default param: %q", cfg.Query.Param)
	}
	if cfg.Store.Engine != EnginePebble {
		t.Fatalf("default engine: %q", cfg.Store.Engine)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "msgquery.json")
	data := []byte(`{"query":{"maxThreads":8},"store":{"engine":"badger","segmentBytes":1024}}`)
	if err := os.WriteFile(file, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Query.MaxThreads != 8 {
		t.Fatalf("expected 8 threads, got %d", cfg.Query.MaxThreads)
	}
	if cfg.Query.Param != "backupQuery" {
		t.Fatalf("unset fields keep defaults, got %q", cfg.Query.Param)
	}
	if cfg.Store.Engine != EngineBadger || cfg.Store.SegmentBytes != 1024 {
		t.Fatalf("store overrides not applied: %+v", cfg.Store)
	}
}

func TestLoadYAMLUnsupported(t *testing.T) {
	file := filepath.Join(t.TempDir(), "c.yaml")
	if err := os.WriteFile(file, []byte("query: {}"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(file); err == nil {
		t.Fatalf("expected yaml error")
	}
}

func TestFromEnv(t *testing.T) {
	cfg := Default()
	t.Setenv("MSGQ_QUERY_MAX_THREADS", "12")
	t.Setenv("MSGQ_QUERY_PARAM", "q")
	t.Setenv("MSGQ_STORE_ENGINE", "badger")
	t.Setenv("MSGQ_STORE_SEGMENT_BYTES", "not-a-number")
	FromEnv(&cfg)
	if cfg.Query.MaxThreads != 12 {
		t.Fatalf("env override threads")
	}
	if cfg.Query.Param != "q" {
		t.Fatalf("env override param")
	}
	if cfg.Store.Engine != EngineBadger {
		t.Fatalf("env override engine")
	}
	if cfg.Store.SegmentBytes != 64<<10 {
		t.Fatalf("invalid number must be ignored, got %d", cfg.Store.SegmentBytes)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero threads", func(c *Config) { c.Query.MaxThreads = 0 }},
		{"empty param", func(c *Config) { c.Query.Param = "" }},
		{"unknown engine", func(c *Config) { c.Store.Engine = "rocks" }},
		{"zero segment", func(c *Config) { c.Store.SegmentBytes = 0 }},
		{"zero payload max", func(c *Config) { c.Store.PayloadMaxBytes = 0 }},
		{"bad regex", func(c *Config) { c.Store.SubjectNameRegex = "[" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
