package fsutil

import (
	"os"
	"path/filepath"
	"testing"
)

func setHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	return home
}

func TestExpandHome(t *testing.T) {
	home := setHome(t)
	cases := map[string]string{
		"":            "",
		"/abs/path":   "/abs/path",
		"~":           home,
		"~/cfg.yaml":  filepath.Join(home, "cfg.yaml"),
		"rel/~/thing": "rel/~/thing",
	}
	for in, want := range cases {
		got, err := ExpandHome(in)
		if err != nil {
			t.Fatalf("ExpandHome(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ExpandHome(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFirstExisting(t *testing.T) {
	home := setHome(t)
	p := filepath.Join(home, "hookd.yaml")
	if err := os.WriteFile(p, []byte("addr: :1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, ok := FirstExisting("", "/definitely/missing.yaml", "~/hookd.yaml")
	if !ok || got != p {
		t.Fatalf("FirstExisting = %q, %v", got, ok)
	}
	if _, ok := FirstExisting("/nope/a", "/nope/b"); ok {
		t.Fatalf("expected no match")
	}
	if !PathExists(home) || PathExists(filepath.Join(home, "missing")) {
		t.Fatalf("PathExists mismatch")
	}
}
