package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/danhigham/telecache/internal/domain"
	"github.com/danhigham/telecache/internal/store"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("telegram:\n  api_id: 1\n  api_hash: x\n"), 0600); err != nil {
		t.Fatal(err)
	}
	return cfgPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	a := &app{}
	cmd := newRootCmd(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	a.close()
	return out.String(), err
}

func TestShowRaw(t *testing.T) {
	cfgPath := writeTestConfig(t)

	backend, err := store.OpenPebble(filepath.Join(filepath.Dir(cfgPath), "store"), store.PebbleOptions{})
	if err != nil {
		t.Fatalf("OpenPebble() error: %v", err)
	}
	st := store.New(backend, zaptest.NewLogger(t))
	err = st.Transaction(context.Background(), func(tx *store.Tx) error {
		return tx.UpdatePeers([]domain.Peer{&domain.Group{ID: 5, Title: "Book club"}}, nil)
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	out, err := execute(t, "--config", cfgPath, "show", "--raw", "chat:5")
	if err != nil {
		t.Fatalf("show error: %v\n%s", err, out)
	}
	if !strings.Contains(out, "# Book club") {
		t.Errorf("output = %q, want group title", out)
	}
}

func TestShowUnknownPeer(t *testing.T) {
	cfgPath := writeTestConfig(t)
	if _, err := execute(t, "--config", cfgPath, "show", "--raw", "user:42"); err == nil {
		t.Error("expected error for unknown peer")
	}
}

func TestInvalidPeerArgument(t *testing.T) {
	cfgPath := writeTestConfig(t)
	if _, err := execute(t, "--config", cfgPath, "show", "nonsense"); err == nil {
		t.Error("expected error for malformed peer id")
	}
}

func TestMissingConfig(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "show", "user:1")
	if err == nil || !strings.Contains(err.Error(), "api_id") {
		t.Errorf("error = %v, want setup hint", err)
	}
}
