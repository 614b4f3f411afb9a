package main

import (
	"encoding/json"
	"testing"
)

func TestMigrateDryRun(t *testing.T) {
	configPath := writeTestConfig(t)
	exportPath := writeExport(t)

	out, err := runCLI(t, "--config", configPath, "migrate", "--dry-run", exportPath)
	if err != nil {
		t.Fatalf("migrate --dry-run: %v\n%s", err, out)
	}
	requireContains(t, out, "dry run")
	requireContains(t, out, "Valid rows")
}

func TestMigrateLiveThenRunsAndShow(t *testing.T) {
	configPath := writeTestConfig(t)
	exportPath := writeExport(t)

	out, err := runCLI(t, "--config", configPath, "migrate", exportPath)
	if err != nil {
		t.Fatalf("migrate: %v\n%s", err, out)
	}
	requireContains(t, out, "Users created")
	requireContains(t, out, "2")

	out, err = runCLI(t, "--config", configPath, "runs")
	if err != nil {
		t.Fatalf("runs: %v\n%s", err, out)
	}
	requireContains(t, out, "completed")
	requireContains(t, out, "live")

	out, err = runCLI(t, "--config", configPath, "runs", "--json")
	if err != nil {
		t.Fatalf("runs --json: %v\n%s", err, out)
	}
	requireContains(t, out, `"usersCreated": 2`)

	var views []runView
	if err := json.Unmarshal([]byte(out), &views); err != nil {
		t.Fatalf("decode runs JSON: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("runs = %d, want 1", len(views))
	}

	out, err = runCLI(t, "--config", configPath, "show", views[0].ID)
	if err != nil {
		t.Fatalf("show: %v\n%s", err, out)
	}
	requireContains(t, out, "Status:    completed")
	requireContains(t, out, "2 users, 1 schools")

	// An id prefix resolves as long as it is unique.
	out, err = runCLI(t, "--config", configPath, "show", views[0].ID[:8])
	if err != nil {
		t.Fatalf("show by prefix: %v\n%s", err, out)
	}
	requireContains(t, out, views[0].ID)
}

func TestMigrateWithoutPathFails(t *testing.T) {
	configPath := writeTestConfig(t)

	out, err := runCLI(t, "--config", configPath, "migrate")
	if err == nil {
		t.Fatalf("expected error without an export path\n%s", out)
	}
}

func TestMigrateMissingFileFails(t *testing.T) {
	configPath := writeTestConfig(t)

	if _, err := runCLI(t, "--config", configPath, "migrate", "/nonexistent/export.csv"); err == nil {
		t.Fatal("expected error for missing export file")
	}
}
