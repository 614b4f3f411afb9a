package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// LegacyHeader is the column header used by the legacy export fixtures.
const LegacyHeader = "user_email,first_name,last_name,school_name,district,country,school_type,phone_number,role,round,stage_0,stage_1,stage_2,stage_3,stage_1_completion_date,stage_2_completion_date,stage_3_completion_date,display_name,user_login,legacy_user_id,la_name,latitude,longitude"

// CSV joins a header and data lines into a CSV document.
func CSV(lines ...string) string {
	return strings.Join(append([]string{LegacyHeader}, lines...), "\n") + "\n"
}

// WriteCSV writes a CSV fixture to a temp file and returns its path.
func WriteCSV(t testing.TB, lines ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "export.csv")
	if err := os.WriteFile(path, []byte(CSV(lines...)), 0o644); err != nil {
		t.Fatalf("write csv fixture: %v", err)
	}
	return path
}
