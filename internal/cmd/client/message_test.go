package client

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cfgpkg "github.com/rzbill/msgquery/internal/config"
	"github.com/rzbill/msgquery/internal/query"
	"github.com/rzbill/msgquery/internal/runtime"
	httpserver "github.com/rzbill/msgquery/internal/server/http"
	pebblestore "github.com/rzbill/msgquery/internal/storage/pebble"
	"github.com/spf13/cobra"
)

func startServer(t *testing.T) BaseURLFunc {
	t.Helper()
	rt, err := runtime.Open(runtime.Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeNever, Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("rt open: %v", err)
	}
	exec := query.NewExecutor(query.ExecutorOptions{MaxWorkers: 2})
	s := httpserver.New(rt, query.NewDispatcher(rt.Store(), exec, nil), nil)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		srv.Close()
		_ = exec.Close()
		_ = rt.Close()
	})
	return func() string { return srv.URL }
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestAppendThenGet(t *testing.T) {
	base := startServer(t)
	out, err := run(t, NewRoot(base), "message", "append", "--subject", "orders", "--data", `{"id":7}`)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if !strings.Contains(out, "sequence: 1") {
		t.Fatalf("append output: %s", out)
	}

	out, err = run(t, NewRoot(base), "message", "get", "--subject", "orders", "--seq", "1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(out), &m); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if m["seq"] != "1" || m["payload_json"].(map[string]any)["id"] != float64(7) {
		t.Fatalf("get output: %v", m)
	}

	if _, err := run(t, NewRoot(base), "message", "get", "--subject", "orders", "--seq", "9"); err == nil {
		t.Fatalf("expected not found error")
	}
}

func TestQueryWritesFrames(t *testing.T) {
	base := startServer(t)
	for _, d := range []string{"a", "bc"} {
		if _, err := run(t, NewRoot(base), "message", "append", "-s", "S", "--data", d); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	out := filepath.Join(t.TempDir(), "frames.bin")
	if _, err := run(t, NewRoot(base), "message", "query", "-s", "S", "--seq", "2", "--seq", "3", "--seq", "1", "--out", out); err != nil {
		t.Fatalf("query: %v", err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := []byte{0, 0, 0, 0, 0, 0, 0, 2, 'b', 'c', 0, 0, 0, 0, 0, 0, 0, 1, 'a'}
	if !bytes.Equal(got, want) {
		t.Fatalf("frames %x want %x", got, want)
	}

	hexOut, err := run(t, NewRoot(base), "message", "query", "-s", "S", "--seq", "1", "--hex")
	if err != nil {
		t.Fatalf("query --hex: %v", err)
	}
	if !strings.Contains(hexOut, "00 00 00 00 00 00 00 01  61") {
		t.Fatalf("hex output: %s", hexOut)
	}
}

func TestLastAndStats(t *testing.T) {
	base := startServer(t)
	_, _ = run(t, NewRoot(base), "message", "append", "-s", "S", "--data", "x")
	out, err := run(t, NewRoot(base), "message", "last", "-s", "S")
	if err != nil || strings.TrimSpace(out) != "1" {
		t.Fatalf("last: %q %v", out, err)
	}
	out, err = run(t, NewRoot(base), "stats")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !strings.Contains(out, `"maxWorkers": 2`) {
		t.Fatalf("stats output: %s", out)
	}
}

func TestAppendRejectsInvalidSubject(t *testing.T) {
	base := startServer(t)
	_, err := run(t, NewRoot(base), "message", "append", "-s", "bad subject", "--data", "x")
	if err == nil || !strings.Contains(err.Error(), "400") {
		t.Fatalf("expected 400 error, got %v", err)
	}
}
