package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRecoverEndToEnd(t *testing.T) {
	configPath := writeTestConfig(t)

	content := "user_email,school_name,district,country,stage_1\n" +
		`jane.doe@example.org,Hill Top Primary,Leeds,GB,"a:2:{i:0;s:3:""one"";i:1;s:3:""two"";}"` + "\n"
	exportPath := filepath.Join(t.TempDir(), "export.csv")
	if err := os.WriteFile(exportPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write export: %v", err)
	}

	out, err := runCLI(t, "--config", configPath, "recover", exportPath)
	if err != nil {
		t.Fatalf("recover: %v\n%s", err, out)
	}
	requireContains(t, out, "Users created")
	requireContains(t, out, "Evidence placeholders")
	requireContains(t, out, "Records created")
}

func TestRecoverMissingFileFails(t *testing.T) {
	configPath := writeTestConfig(t)

	if _, err := runCLI(t, "--config", configPath, "recover", "/nonexistent/export.csv"); err == nil {
		t.Fatal("expected error for missing export file")
	}
}
