package migration

import (
	"context"
	"testing"

	"transplant/internal/logging"
	"transplant/internal/testsupport"
)

func TestExtractSchoolInfo(t *testing.T) {
	tests := []struct {
		name string
		row  Row
		want *SchoolInfo
	}{
		{
			name: "confirmed school uses explicit columns",
			row: Row{
				SchoolName: " Hill Top Primary ",
				District:   "Leeds",
				Country:    "GB",
				SchoolType: "primary",
				Latitude:   "53.8",
				Longitude:  "-1.55",
			},
			want: &SchoolInfo{
				Name:      "Hill Top Primary",
				District:  "Leeds",
				Country:   "United Kingdom",
				Type:      "primary",
				Latitude:  "53.8",
				Longitude: "-1.55",
			},
		},
		{
			name: "legacy display name fallback",
			row:  Row{DisplayName: "412, Riverbank Academy, Cork"},
			want: &SchoolInfo{Name: "Riverbank Academy", District: "Cork", Country: "Somewhere"},
		},
		{
			name: "legacy fallback uses la_name when district missing",
			row:  Row{DisplayName: "88, Riverbank Academy", LAName: "Cork"},
			want: &SchoolInfo{Name: "Riverbank Academy", District: "Cork", Country: "Somewhere"},
		},
		{
			name: "unresolvable row",
			row:  Row{DisplayName: "just a name"},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractSchoolInfo(tt.row, "Somewhere")
			if tt.want == nil {
				if got != nil {
					t.Fatalf("expected nil, got %+v", got)
				}
				return
			}
			if got == nil {
				t.Fatal("expected school info, got nil")
			}
			if *got != *tt.want {
				t.Errorf("info = %+v, want %+v", *got, *tt.want)
			}
		})
	}
}

func TestNormalizeCountry(t *testing.T) {
	tests := []struct {
		raw       string
		userLogin string
		want      string
	}{
		{"GB", "", "United Kingdom"},
		{"gb", "", "United Kingdom"},
		{"IE", "", "Ireland"},
		{"XI", "", "Northern Ireland"},
		{"France", "", "France"},
		{"", "xi-hilltop", "Northern Ireland"},
		{"", "ie-riverbank", "Ireland"},
		{"", "hilltop", "United Kingdom"},
	}

	for _, tt := range tests {
		got := normalizeCountry(tt.raw, tt.userLogin, "United Kingdom")
		if got != tt.want {
			t.Errorf("normalizeCountry(%q, %q) = %q, want %q", tt.raw, tt.userLogin, got, tt.want)
		}
	}
}

func TestDedupKeyNormalization(t *testing.T) {
	a := SchoolInfo{Name: "St Mary&#039;s  Primary", District: "LEEDS", Country: "United Kingdom"}
	b := SchoolInfo{Name: "st mary's primary", District: "Leeds", Country: "united kingdom"}
	if a.DedupKey() != b.DedupKey() {
		t.Fatalf("keys differ: %q vs %q", a.DedupKey(), b.DedupKey())
	}

	c := SchoolInfo{Name: "St Mary's Primary", District: "Bradford", Country: "United Kingdom"}
	if a.DedupKey() == c.DedupKey() {
		t.Fatal("different districts must not collide")
	}
}

func TestResolverDeduplicatesWithinRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	resolver := NewResolver(st, "United Kingdom", logging.NewNop())
	ctx := context.Background()

	row := Row{SchoolName: "Hill Top Primary", District: "Leeds", Country: "GB", Latitude: "53.8", Longitude: "-1.55"}

	first, err := resolver.GetOrCreate(ctx, row)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	variant := Row{SchoolName: "HILL TOP  PRIMARY", District: "leeds", Country: "GB"}
	second, err := resolver.GetOrCreate(ctx, variant)
	if err != nil {
		t.Fatalf("GetOrCreate variant: %v", err)
	}
	if first != second {
		t.Fatalf("variant resolved to %s, want %s", second, first)
	}
	if resolver.Created() != 1 {
		t.Fatalf("created = %d, want 1", resolver.Created())
	}

	school, err := st.FindSchoolByID(ctx, first)
	if err != nil {
		t.Fatalf("FindSchoolByID: %v", err)
	}
	if school == nil {
		t.Fatal("school not persisted")
	}
	if !school.IsMigrated {
		t.Error("school should be flagged as migrated")
	}
	if !school.ShowOnMap {
		t.Error("school with both coordinates should show on map")
	}
}

func TestResolverReusesPersistedSchool(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	row := Row{SchoolName: "Riverbank Academy", District: "Cork", Country: "IE"}

	first, err := NewResolver(st, "United Kingdom", logging.NewNop()).GetOrCreate(ctx, row)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	rerun := NewResolver(st, "United Kingdom", logging.NewNop())
	second, err := rerun.GetOrCreate(ctx, row)
	if err != nil {
		t.Fatalf("GetOrCreate rerun: %v", err)
	}
	if first != second {
		t.Fatalf("rerun resolved to %s, want %s", second, first)
	}
	if rerun.Created() != 0 {
		t.Fatalf("rerun created = %d, want 0", rerun.Created())
	}
}

func TestResolverSkipsMapForPartialCoordinates(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	resolver := NewResolver(st, "United Kingdom", logging.NewNop())
	ctx := context.Background()

	id, err := resolver.GetOrCreate(ctx, Row{SchoolName: "Hill Top Primary", District: "Leeds", Latitude: "53.8"})
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	school, err := st.FindSchoolByID(ctx, id)
	if err != nil {
		t.Fatalf("FindSchoolByID: %v", err)
	}
	if school.ShowOnMap {
		t.Error("school with one coordinate must not show on map")
	}
}
