// ABOUTME: Tests for the install-skill command.
// ABOUTME: Validates skill installation, confirmation, and file content.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSkillFSReadEmbeddedContent(t *testing.T) {
	content, err := skillFS.ReadFile("skill/SKILL.md")
	if err != nil {
		t.Fatalf("Failed to read embedded skill: %v", err)
	}
	for _, marker := range []string{"name: healthtrack", "healthtrack add", "healthtrack summary"} {
		if !strings.Contains(string(content), marker) {
			t.Errorf("Embedded skill missing %q", marker)
		}
	}
}

func TestInstallSkillWritesFile(t *testing.T) {
	home := t.TempDir()
	var out bytes.Buffer

	if err := installSkill(strings.NewReader(""), &out, home, true); err != nil {
		t.Fatalf("installSkill failed: %v", err)
	}

	written, err := os.ReadFile(skillPath(home))
	if err != nil {
		t.Fatalf("Skill file not created: %v", err)
	}
	embedded, _ := skillFS.ReadFile("skill/SKILL.md")
	if !bytes.Equal(written, embedded) {
		t.Error("Installed skill does not match embedded content")
	}

	info, err := os.Stat(skillPath(home))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("Skill file permissions = %o, want 600", perm)
	}
}

func TestInstallSkillDeclined(t *testing.T) {
	home := t.TempDir()
	var out bytes.Buffer

	if err := installSkill(strings.NewReader("n\n"), &out, home, false); err != nil {
		t.Fatalf("installSkill failed: %v", err)
	}
	if !strings.Contains(out.String(), "Installation canceled.") {
		t.Errorf("Expected cancel message, got: %s", out.String())
	}
	if _, err := os.Stat(skillPath(home)); !os.IsNotExist(err) {
		t.Error("Skill file should not exist after declining")
	}
}

func TestInstallSkillConfirmedOverwrites(t *testing.T) {
	home := t.TempDir()
	path := skillPath(home)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("old"), 0600); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := installSkill(strings.NewReader("yes\n"), &out, home, false); err != nil {
		t.Fatalf("installSkill failed: %v", err)
	}
	if !strings.Contains(out.String(), "will be overwritten") {
		t.Errorf("Expected overwrite note, got: %s", out.String())
	}
	written, _ := os.ReadFile(path)
	if string(written) == "old" {
		t.Error("Expected skill file to be overwritten")
	}
}

func TestSkillSkipConfirmFlag(t *testing.T) {
	if installSkillCmd.Flags().Lookup("yes") == nil {
		t.Error("Expected --yes flag on install-skill")
	}
}
