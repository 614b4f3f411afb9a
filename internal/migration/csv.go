package migration

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// columnAliases maps recognized header names to canonical column keys.
// Legacy exports vary in header naming; unknown columns are ignored and
// missing columns read as empty.
var columnAliases = map[string]string{
	"user_email":              "email",
	"email":                   "email",
	"first_name":              "first_name",
	"last_name":               "last_name",
	"school_name":             "school_name",
	"district":                "district",
	"country":                 "country",
	"school_type":             "school_type",
	"website":                 "website",
	"phone_number":            "phone",
	"phone":                   "phone",
	"role":                    "role",
	"round":                   "round",
	"stage_0":                 "stage_0",
	"stage_1":                 "stage_1",
	"stage_2":                 "stage_2",
	"stage_3":                 "stage_3",
	"stage_1_completion_date": "stage_1_date",
	"stage_2_completion_date": "stage_2_date",
	"stage_3_completion_date": "stage_3_date",
	"display_name":            "display_name",
	"user_login":              "user_login",
	"legacy_user_id":          "legacy_user_id",
	"id":                      "legacy_user_id",
	"la_name":                 "la_name",
	"latitude":                "latitude",
	"longitude":               "longitude",
}

// ParseRows reads a legacy export document into rows. Column order is
// irrelevant, ragged rows and relaxed quoting are tolerated, and rows keep
// their 1-based document line for error reporting.
func ParseRows(input io.Reader) ([]Row, error) {
	reader := csv.NewReader(input)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty document")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		key, ok := columnAliases[normalizeHeader(name)]
		if !ok {
			continue
		}
		if _, exists := columns[key]; !exists {
			columns[key] = i
		}
	}
	if _, ok := columns["email"]; !ok {
		return nil, fmt.Errorf("header has no email column")
	}

	var rows []Row
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}

		field := func(key string) string {
			idx, ok := columns[key]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		rows = append(rows, Row{
			Line:         line,
			Email:        field("email"),
			FirstName:    field("first_name"),
			LastName:     field("last_name"),
			SchoolName:   field("school_name"),
			District:     field("district"),
			Country:      field("country"),
			SchoolType:   field("school_type"),
			Website:      field("website"),
			Phone:        field("phone"),
			Role:         field("role"),
			Round:        field("round"),
			Stage0:       field("stage_0"),
			Stage1:       field("stage_1"),
			Stage2:       field("stage_2"),
			Stage3:       field("stage_3"),
			Stage1Date:   field("stage_1_date"),
			Stage2Date:   field("stage_2_date"),
			Stage3Date:   field("stage_3_date"),
			DisplayName:  field("display_name"),
			UserLogin:    field("user_login"),
			LegacyUserID: field("legacy_user_id"),
			LAName:       field("la_name"),
			Latitude:     field("latitude"),
			Longitude:    field("longitude"),
		})
	}

	return rows, nil
}

func normalizeHeader(name string) string {
	return strings.ToLower(strings.TrimSpace(strings.Trim(name, "\uFEFF")))
}
