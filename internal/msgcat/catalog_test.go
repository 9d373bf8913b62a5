package msgcat

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEmbeddedRender(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := c.Render("session.connected", map[string]any{"MatchID": "m-1"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "Connected to match m-1" {
		t.Fatalf("unexpected text %q", got)
	}
	if _, err := c.Render("session.connected", map[string]any{}); err == nil {
		t.Fatalf("expected missing field error")
	}
	if _, err := c.Render("nope.nope", nil); err == nil {
		t.Fatalf("expected missing key error")
	}
	if got := c.Text("nope.nope", nil); got != "nope.nope" {
		t.Fatalf("Text fallback: %q", got)
	}
}

func TestOverrideDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("selection:\n  not_yours: \"Nope, enemy unit\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := c.Text("selection.not_yours", nil); got != "Nope, enemy unit" {
		t.Fatalf("override not applied: %q", got)
	}
	if got := c.Text("selection.cleared", nil); got != "Selection cleared" {
		t.Fatalf("embedded default lost: %q", got)
	}
}

func TestOverrideDirDuplicateKeys(t *testing.T) {
	dir := t.TempDir()
	body := []byte("ai:\n  failed: \"x\"\n")
	for _, n := range []string{"a.yaml", "b.yml"} {
		if err := os.WriteFile(filepath.Join(dir, n), body, 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if _, err := New(dir); err == nil {
		t.Fatalf("expected duplicate key error")
	}
}

func TestRejectsNonStringLeaves(t *testing.T) {
	if _, err := parseYAMLToFlat([]byte("a:\n  b: 3\n")); err == nil {
		t.Fatalf("expected error for numeric leaf")
	}
}
