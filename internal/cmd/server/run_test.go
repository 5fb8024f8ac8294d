package serverrun

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	cfgpkg "github.com/rzbill/msgquery/internal/config"
	pebblestore "github.com/rzbill/msgquery/internal/storage/pebble"
)

func TestGetenvDefault(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		def      string
		envValue string
		expected string
	}{
		{
			name:     "environment variable set",
			key:      "TEST_VAR",
			def:      "default",
			envValue: "env_value",
			expected: "env_value",
		},
		{
			name:     "environment variable not set",
			key:      "TEST_VAR_NOT_SET",
			def:      "default",
			envValue: "",
			expected: "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				_ = os.Setenv(tt.key, tt.envValue)
			} else {
				_ = os.Unsetenv(tt.key)
			}
			t.Cleanup(func() {
				_ = os.Unsetenv(tt.key)
			})

			result := getenvDefault(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("getenvDefault(%s, %s) = %s, expected %s", tt.key, tt.def, result, tt.expected)
			}
		})
	}
}

func TestBuildLoggerPrecedence(t *testing.T) {
	t.Setenv("MSGQ_LOG_LEVEL", "debug")
	t.Setenv("MSGQ_LOG_FORMAT", "json")

	_, cfg := buildLogger(Options{})
	if cfg.Level != "debug" || cfg.Format != "json" {
		t.Fatalf("env not applied: %+v", cfg)
	}
	_, cfg = buildLogger(Options{LogLevel: "warn", LogFormat: "text"})
	if cfg.Level != "warn" || cfg.Format != "text" {
		t.Fatalf("flags must override env: %+v", cfg)
	}
	if l, _ := buildLogger(Options{LogLevel: "loud"}); l == nil {
		t.Fatalf("bad level must fall back to a default logger")
	}
}

func TestDefaultDataDirIntegration(t *testing.T) {
	t.Setenv("MSGQ_DATA_DIR", "")
	t.Setenv("XDG_DATA_HOME", "")
	dir := cfgpkg.DefaultDataDir()
	if dir == "" {
		t.Fatal("DataDir should not be empty after fallback")
	}
	if !filepath.IsAbs(dir) && !strings.HasPrefix(dir, "./") {
		t.Errorf("DataDir should be absolute or start with ./, got %s", dir)
	}
	if !strings.HasSuffix(dir, "msgquery") && dir != "./data" {
		t.Errorf("DataDir should end in msgquery, got %s", dir)
	}
}

func TestRunServesQueries(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ready := make(chan string, 1)
	opts := Options{
		DataDir:    t.TempDir(),
		HTTPAddr:   "127.0.0.1:0",
		Fsync:      pebblestore.FsyncModeNever,
		MaxThreads: 2,
		LogLevel:   "error",
		Config:     cfgpkg.Default(),
		Ready:      func(addr string) { ready <- addr },
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- Run(ctx, opts) }()

	var base string
	select {
	case addr := <-ready:
		base = "http://" + addr
	case err := <-errCh:
		t.Fatalf("run exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	resp, err := http.Post(base+"/v1/messages/append", "application/json", strings.NewReader(`{"subject":"S","payload":"qg=="}`))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("append status: %d", resp.StatusCode)
	}

	q := url.QueryEscape(`{"subject":"S","keys":[{"sequence":"1"},{"sequence":"2"}]}`)
	resp, err = http.Get(base + "/v1/messages/query?backupQuery=" + q)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !bytes.Equal(body, []byte{0, 0, 0, 0, 0, 0, 0, 1, 0xAA}) {
		t.Fatalf("body: %x", body)
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("run did not stop")
	}
}

func TestRunFailsOnBadConfig(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.Store.Engine = "rocks"
	err := Run(context.Background(), Options{DataDir: t.TempDir(), HTTPAddr: "127.0.0.1:0", LogLevel: "error", Config: cfg})
	if err == nil {
		t.Fatal("expected config error")
	}
}
