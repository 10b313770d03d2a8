package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeInputs(t *testing.T, dir string) (string, string) {
	t.Helper()
	oldPath := filepath.Join(dir, "old.xml")
	newPath := filepath.Join(dir, "new.xml")
	oldXML := "<measure><note><pitch>C</pitch></note></measure>"
	newXML := "<measure><note><pitch>D</pitch></note></measure>"
	if err := os.WriteFile(oldPath, []byte(oldXML), 0o644); err != nil {
		t.Fatalf("writing %s: %v", oldPath, err)
	}
	if err := os.WriteFile(newPath, []byte(newXML), 0o644); err != nil {
		t.Fatalf("writing %s: %v", newPath, err)
	}
	return oldPath, newPath
}

func TestOverlay_WritesColoredFiles(t *testing.T) {
	dir := t.TempDir()
	oldPath, newPath := writeInputs(t, dir)

	outDir := filepath.Join(dir, "out")
	if err := Overlay([]string{"-out", outDir, oldPath, newPath}); err != nil {
		t.Fatalf("Overlay() error = %v", err)
	}

	oldColored, err := os.ReadFile(filepath.Join(outDir, "old.colored.xml"))
	if err != nil {
		t.Fatalf("reading colored old: %v", err)
	}
	if !strings.Contains(string(oldColored), `color="#FFFF00"`) {
		t.Errorf("old output not colored: %s", oldColored)
	}

	newColored, err := os.ReadFile(filepath.Join(outDir, "new.colored.xml"))
	if err != nil {
		t.Fatalf("reading colored new: %v", err)
	}
	if !strings.Contains(string(newColored), `color="#FFFF00"`) {
		t.Errorf("new output not colored: %s", newColored)
	}
}

func TestOverlay_RejectsBadUsage(t *testing.T) {
	if err := Overlay([]string{"only-one.xml"}); err == nil {
		t.Error("expected usage error")
	}
}

func TestTokens_RejectsBadUsage(t *testing.T) {
	if err := Tokens(nil); err == nil {
		t.Error("expected usage error")
	}
}
