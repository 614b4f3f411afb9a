package migration

import (
	"context"
	"html"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"transplant/internal/logging"
	"transplant/internal/store"
)

// SchoolInfo is the school identity derived from a row, used as a
// deduplication key and as the template for new school records.
type SchoolInfo struct {
	Name      string
	District  string
	Country   string
	Type      string
	Website   string
	Phone     string
	Latitude  string
	Longitude string
}

// ExtractSchoolInfo derives school identity from a row. New-format rows
// carry explicit columns; legacy rows encode "<id>, <school>, <district>"
// in display_name. Returns nil when neither shape applies.
func ExtractSchoolInfo(row Row, defaultCountry string) *SchoolInfo {
	country := normalizeCountry(row.Country, row.UserLogin, defaultCountry)

	if row.HasConfirmedSchool() {
		return &SchoolInfo{
			Name:      strings.TrimSpace(row.SchoolName),
			District:  strings.TrimSpace(row.District),
			Country:   country,
			Type:      strings.TrimSpace(row.SchoolType),
			Website:   strings.TrimSpace(row.Website),
			Phone:     strings.TrimSpace(row.Phone),
			Latitude:  strings.TrimSpace(row.Latitude),
			Longitude: strings.TrimSpace(row.Longitude),
		}
	}

	parts := strings.Split(row.DisplayName, ",")
	if len(parts) < 2 {
		return nil
	}
	name := strings.TrimSpace(parts[1])
	if name == "" {
		return nil
	}
	district := strings.TrimSpace(row.LAName)
	if len(parts) > 2 {
		district = strings.TrimSpace(parts[2])
	}
	return &SchoolInfo{
		Name:      name,
		District:  district,
		Country:   country,
		Phone:     strings.TrimSpace(row.Phone),
		Latitude:  strings.TrimSpace(row.Latitude),
		Longitude: strings.TrimSpace(row.Longitude),
	}
}

// normalizeCountry resolves the ISO-style codes the legacy export used,
// passes other explicit values through, and otherwise infers the country
// from the user_login prefix before falling back to the default.
func normalizeCountry(raw, userLogin, defaultCountry string) string {
	trimmed := strings.TrimSpace(raw)
	switch strings.ToUpper(trimmed) {
	case "GB":
		return "United Kingdom"
	case "IE":
		return "Ireland"
	case "XI":
		return "Northern Ireland"
	}
	if trimmed != "" {
		return trimmed
	}

	login := strings.ToLower(strings.TrimSpace(userLogin))
	switch {
	case strings.HasPrefix(login, "xi-"):
		return "Northern Ireland"
	case strings.HasPrefix(login, "ie-"):
		return "Ireland"
	}
	return defaultCountry
}

// DedupKey builds the case-insensitive identity key used to deduplicate
// schools within and across runs.
func (info SchoolInfo) DedupKey() string {
	return normalizeKeyPart(info.Name) + "|" + normalizeKeyPart(info.District) + "|" + normalizeKeyPart(info.Country)
}

func normalizeKeyPart(value string) string {
	unescaped := html.UnescapeString(value)
	lowered := strings.ToLower(unescaped)
	return strings.Join(strings.Fields(lowered), " ")
}

type cachedSchool struct {
	id    string
	users int
}

// Resolver deduplicates school identity within a run and against the
// persisted store, creating schools on first encounter. All state is
// per-run; construct a fresh Resolver for each migration.
type Resolver struct {
	store          Store
	defaultCountry string
	logger         *slog.Logger

	byKey map[string]*cachedSchool
	byID  map[string]*cachedSchool

	created int
}

// NewResolver constructs a per-run school resolver.
func NewResolver(st Store, defaultCountry string, logger *slog.Logger) *Resolver {
	return &Resolver{
		store:          st,
		defaultCountry: defaultCountry,
		logger:         logging.NewComponentLogger(logger, "schools"),
		byKey:          map[string]*cachedSchool{},
		byID:           map[string]*cachedSchool{},
	}
}

// GetOrCreate resolves the row's school to a persisted identifier,
// creating the school when neither the in-run cache nor the store knows it.
func (r *Resolver) GetOrCreate(ctx context.Context, row Row) (string, error) {
	info := ExtractSchoolInfo(row, r.defaultCountry)
	if info == nil {
		return "", Wrap(ErrRow, "schools", "extract", "failed to extract school information", nil)
	}

	key := info.DedupKey()
	if entry, ok := r.byKey[key]; ok {
		return entry.id, nil
	}

	existing, err := r.store.FindSchool(ctx, info.Name, info.District, info.Country)
	if err != nil {
		return "", Wrap(ErrStorage, "schools", "lookup", info.Name, err)
	}
	if existing != nil {
		r.register(key, existing.ID)
		return existing.ID, nil
	}

	latitude := parseCoordinate(info.Latitude)
	longitude := parseCoordinate(info.Longitude)
	school := &store.School{
		ID:             uuid.NewString(),
		Name:           info.Name,
		Type:           info.Type,
		Country:        info.Country,
		LegacyDistrict: info.District,
		Website:        info.Website,
		PhoneNumber:    info.Phone,
		Latitude:       latitude,
		Longitude:      longitude,
		ShowOnMap:      latitude != nil && longitude != nil,
		IsMigrated:     true,
		CurrentStage:   store.StageInspire,
	}
	if err := r.store.InsertSchool(ctx, school); err != nil {
		return "", Wrap(ErrStorage, "schools", "create", info.Name, err)
	}
	r.register(key, school.ID)
	r.created++

	logging.WithContext(ctx, r.logger).Info(
		"created school",
		logging.String(logging.FieldSchoolID, school.ID),
		logging.String("name", school.Name),
		logging.String("country", school.Country),
	)
	return school.ID, nil
}

// RegisterUser increments the school's in-run user counter and returns the
// new count. The first registered user per school becomes head teacher.
func (r *Resolver) RegisterUser(schoolID string) int {
	entry, ok := r.byID[schoolID]
	if !ok {
		entry = &cachedSchool{id: schoolID}
		r.byID[schoolID] = entry
	}
	entry.users++
	return entry.users
}

// Created returns the number of schools created during this run.
func (r *Resolver) Created() int {
	return r.created
}

func (r *Resolver) register(key, id string) {
	entry := &cachedSchool{id: id}
	r.byKey[key] = entry
	r.byID[id] = entry
}

func parseCoordinate(value string) *float64 {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return nil
	}
	return &parsed
}
