package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const userColumns = "id, email, first_name, last_name, phone_number, role, is_migrated, legacy_user_id, needs_evidence_resubmission, needs_password_reset, password_hash, created_at"

// InsertUser persists a new user record. The email column is unique;
// violating it returns an error rather than silently overwriting.
func (s *Store) InsertUser(ctx context.Context, user *User) error {
	if user == nil {
		return errors.New("user is nil")
	}
	user.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO users (
            id, email, first_name, last_name, phone_number, role, is_migrated,
            legacy_user_id, needs_evidence_resubmission, needs_password_reset,
            password_hash, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		nullableString(user.FirstName),
		nullableString(user.LastName),
		nullableString(user.PhoneNumber),
		user.Role,
		boolToInt(user.IsMigrated),
		nullableString(user.LegacyUserID),
		boolToInt(user.NeedsEvidenceResubmission),
		boolToInt(user.NeedsPasswordReset),
		user.PasswordHash,
		formatTime(user.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// FindUserByEmail returns the user with the given email, or nil when absent.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return user, nil
}

// CountUsers returns the number of persisted users.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM users").Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

// InsertMembership persists a school membership record.
func (s *Store) InsertMembership(ctx context.Context, membership *Membership) error {
	if membership == nil {
		return errors.New("membership is nil")
	}
	membership.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO school_memberships (
            id, user_id, school_id, role, is_verified, verification_method, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		membership.ID,
		membership.UserID,
		membership.SchoolID,
		membership.Role,
		boolToInt(membership.IsVerified),
		nullableString(membership.VerificationMethod),
		formatTime(membership.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert membership: %w", err)
	}
	return nil
}

// MembershipsForSchool returns the memberships registered at a school
// ordered by creation time.
func (s *Store) MembershipsForSchool(ctx context.Context, schoolID string) ([]*Membership, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, user_id, school_id, role, is_verified, verification_method, created_at
         FROM school_memberships WHERE school_id = ? ORDER BY created_at, id`,
		schoolID,
	)
	if err != nil {
		return nil, fmt.Errorf("query memberships: %w", err)
	}
	defer rows.Close()

	var memberships []*Membership
	for rows.Next() {
		var (
			membership Membership
			verified   int
			method     sql.NullString
			createdRaw string
		)
		if err := rows.Scan(
			&membership.ID,
			&membership.UserID,
			&membership.SchoolID,
			&membership.Role,
			&verified,
			&method,
			&createdRaw,
		); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		membership.IsVerified = verified != 0
		membership.VerificationMethod = method.String
		if created, err := parseTimeString(createdRaw); err == nil {
			membership.CreatedAt = created
		}
		memberships = append(memberships, &membership)
	}
	return memberships, rows.Err()
}

func scanUser(scanner interface{ Scan(dest ...any) error }) (*User, error) {
	var (
		id            string
		email         string
		firstName     sql.NullString
		lastName      sql.NullString
		phone         sql.NullString
		role          string
		isMigrated    int
		legacyUserID  sql.NullString
		needsEvidence int
		needsReset    int
		passwordHash  string
		createdRaw    string
	)

	if err := scanner.Scan(
		&id,
		&email,
		&firstName,
		&lastName,
		&phone,
		&role,
		&isMigrated,
		&legacyUserID,
		&needsEvidence,
		&needsReset,
		&passwordHash,
		&createdRaw,
	); err != nil {
		return nil, err
	}

	user := &User{
		ID:                        id,
		Email:                     email,
		FirstName:                 firstName.String,
		LastName:                  lastName.String,
		PhoneNumber:               phone.String,
		Role:                      role,
		IsMigrated:                isMigrated != 0,
		LegacyUserID:              legacyUserID.String,
		NeedsEvidenceResubmission: needsEvidence != 0,
		NeedsPasswordReset:        needsReset != 0,
		PasswordHash:              passwordHash,
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		user.CreatedAt = created
	}
	return user, nil
}
