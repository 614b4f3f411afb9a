package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const schoolColumns = "id, name, school_type, country, legacy_district, website, phone_number, latitude, longitude, show_on_map, is_migrated, current_round, inspire_completed, investigate_completed, act_completed, current_stage, legacy_evidence_count, progress_percentage, created_at, updated_at"

// InsertSchool persists a new school record.
func (s *Store) InsertSchool(ctx context.Context, school *School) error {
	if school == nil {
		return errors.New("school is nil")
	}
	now := time.Now().UTC()
	school.CreatedAt = now
	school.UpdatedAt = now

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO schools (
            id, name, school_type, country, legacy_district, website, phone_number,
            latitude, longitude, show_on_map, is_migrated, current_round,
            inspire_completed, investigate_completed, act_completed, current_stage,
            legacy_evidence_count, progress_percentage, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		school.ID,
		school.Name,
		nullableString(school.Type),
		school.Country,
		nullableString(school.LegacyDistrict),
		nullableString(school.Website),
		nullableString(school.PhoneNumber),
		nullableFloat(school.Latitude),
		nullableFloat(school.Longitude),
		boolToInt(school.ShowOnMap),
		boolToInt(school.IsMigrated),
		school.CurrentRound,
		boolToInt(school.InspireCompleted),
		boolToInt(school.InvestigateCompleted),
		boolToInt(school.ActCompleted),
		string(school.CurrentStage),
		school.LegacyEvidenceCount,
		school.ProgressPercentage,
		formatTime(school.CreatedAt),
		formatTime(school.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert school: %w", err)
	}
	return nil
}

// FindSchool returns the first school matching the exact identity triple,
// or nil when none exists.
func (s *Store) FindSchool(ctx context.Context, name, district, country string) (*School, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+schoolColumns+` FROM schools
         WHERE name = ? AND COALESCE(legacy_district, '') = ? AND country = ?
         ORDER BY created_at LIMIT 1`,
		name, district, country,
	)
	school, err := scanSchool(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find school: %w", err)
	}
	return school, nil
}

// FindSchoolByID fetches a school by identifier, or nil when absent.
func (s *Store) FindSchoolByID(ctx context.Context, id string) (*School, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+schoolColumns+` FROM schools WHERE id = ?`, id)
	school, err := scanSchool(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find school by id: %w", err)
	}
	return school, nil
}

// UpdateSchoolProgress applies a partial progress update in a single write.
// A zero update is a no-op.
func (s *Store) UpdateSchoolProgress(ctx context.Context, id string, update SchoolUpdate) error {
	if update.IsZero() {
		return nil
	}

	assignments := make([]string, 0, 8)
	args := make([]any, 0, 9)
	appendSet := func(column string, value any) {
		assignments = append(assignments, column+" = ?")
		args = append(args, value)
	}

	if update.CurrentRound != nil {
		appendSet("current_round", *update.CurrentRound)
	}
	if update.InspireCompleted != nil {
		appendSet("inspire_completed", boolToInt(*update.InspireCompleted))
	}
	if update.InvestigateCompleted != nil {
		appendSet("investigate_completed", boolToInt(*update.InvestigateCompleted))
	}
	if update.ActCompleted != nil {
		appendSet("act_completed", boolToInt(*update.ActCompleted))
	}
	if update.CurrentStage != nil {
		appendSet("current_stage", string(*update.CurrentStage))
	}
	if update.LegacyEvidenceCount != nil {
		appendSet("legacy_evidence_count", *update.LegacyEvidenceCount)
	}
	if update.ProgressPercentage != nil {
		appendSet("progress_percentage", *update.ProgressPercentage)
	}
	appendSet("updated_at", formatTime(time.Now()))

	args = append(args, id)
	query := "UPDATE schools SET " + strings.Join(assignments, ", ") + " WHERE id = ?"
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update school progress: %w", err)
	}
	return nil
}

// CountSchools returns the number of persisted schools.
func (s *Store) CountSchools(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM schools").Scan(&count); err != nil {
		return 0, fmt.Errorf("count schools: %w", err)
	}
	return count, nil
}

func scanSchool(scanner interface{ Scan(dest ...any) error }) (*School, error) {
	var (
		id                   string
		name                 string
		schoolType           sql.NullString
		country              string
		district             sql.NullString
		website              sql.NullString
		phone                sql.NullString
		latitude             sql.NullFloat64
		longitude            sql.NullFloat64
		showOnMap            int
		isMigrated           int
		currentRound         int
		inspireCompleted     int
		investigateCompleted int
		actCompleted         int
		currentStage         string
		evidenceCount        int
		progressPercentage   int
		createdRaw           string
		updatedRaw           string
	)

	if err := scanner.Scan(
		&id,
		&name,
		&schoolType,
		&country,
		&district,
		&website,
		&phone,
		&latitude,
		&longitude,
		&showOnMap,
		&isMigrated,
		&currentRound,
		&inspireCompleted,
		&investigateCompleted,
		&actCompleted,
		&currentStage,
		&evidenceCount,
		&progressPercentage,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	school := &School{
		ID:                   id,
		Name:                 name,
		Type:                 schoolType.String,
		Country:              country,
		LegacyDistrict:       district.String,
		Website:              website.String,
		PhoneNumber:          phone.String,
		ShowOnMap:            showOnMap != 0,
		IsMigrated:           isMigrated != 0,
		CurrentRound:         currentRound,
		InspireCompleted:     inspireCompleted != 0,
		InvestigateCompleted: investigateCompleted != 0,
		ActCompleted:         actCompleted != 0,
		CurrentStage:         Stage(currentStage),
		LegacyEvidenceCount:  evidenceCount,
		ProgressPercentage:   progressPercentage,
	}
	if latitude.Valid {
		v := latitude.Float64
		school.Latitude = &v
	}
	if longitude.Valid {
		v := longitude.Float64
		school.Longitude = &v
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		school.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		school.UpdatedAt = updated
	}
	return school, nil
}
