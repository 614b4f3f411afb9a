package migration

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"transplant/internal/logging"
	"transplant/internal/phpserial"
	"transplant/internal/store"
)

// Provisioner creates a user and school membership for each valid row.
// It is safe to re-run: rows whose email already exists in the store are
// skipped before any write.
type Provisioner struct {
	store          Store
	schools        *Resolver
	progress       *Reconciler
	logger         *slog.Logger
	passwordLength int
}

// NewProvisioner constructs a per-run user provisioner.
func NewProvisioner(st Store, schools *Resolver, progress *Reconciler, logger *slog.Logger, passwordLength int) *Provisioner {
	return &Provisioner{
		store:          st,
		schools:        schools,
		progress:       progress,
		logger:         logging.NewComponentLogger(logger, "provision"),
		passwordLength: passwordLength,
	}
}

// ProcessRow migrates one valid row: resolves the school, creates the user
// and membership, and reconciles the school's progress. An existing email
// returns early without touching school progress; that short-circuit is
// deliberate and documented behavior.
func (p *Provisioner) ProcessRow(ctx context.Context, row Row, result *Result, rec *phpserial.Recorder) error {
	logger := logging.WithContext(ctx, p.logger)

	schoolID, err := p.schools.GetOrCreate(ctx, row)
	if err != nil {
		return err
	}

	existing, err := p.store.FindUserByEmail(ctx, row.Email)
	if err != nil {
		return Wrap(ErrStorage, "provision", "lookup user", row.Email, err)
	}
	if existing != nil {
		logger.Info("user already exists, skipping row", logging.String("email", row.Email))
		return nil
	}

	password, err := GeneratePassword(p.passwordLength)
	if err != nil {
		return Wrap(ErrRow, "provision", "generate password", row.Email, err)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return Wrap(ErrRow, "provision", "hash password", row.Email, err)
	}

	stage1 := phpserial.StageComplete(row.Stage1)
	stage2 := phpserial.StageComplete(row.Stage2)
	stage3 := phpserial.StageComplete(row.Stage3)
	hasEvidence := stage1 || stage2 || stage3
	evidenceCount := phpserial.SumEvidence(rec, row.Stage1, row.Stage2, row.Stage3)

	firstName, lastName := DeriveName(row)

	schoolName := strings.TrimSpace(row.SchoolName)
	if schoolName == "" {
		if info := ExtractSchoolInfo(row, ""); info != nil {
			schoolName = info.Name
		}
	}

	user := &store.User{
		ID:                        uuid.NewString(),
		Email:                     row.Email,
		FirstName:                 firstName,
		LastName:                  lastName,
		PhoneNumber:               strings.TrimSpace(row.Phone),
		Role:                      store.RoleTeacher,
		IsMigrated:                true,
		LegacyUserID:              row.LegacyUserID,
		NeedsEvidenceResubmission: hasEvidence,
		NeedsPasswordReset:        true,
		PasswordHash:              hash,
	}
	if err := p.store.InsertUser(ctx, user); err != nil {
		return Wrap(ErrStorage, "provision", "create user", row.Email, err)
	}
	result.UsersCreated++

	membership := &store.Membership{
		ID:                 uuid.NewString(),
		UserID:             user.ID,
		SchoolID:           schoolID,
		Role:               p.membershipRole(row, schoolID),
		IsVerified:         true,
		VerificationMethod: store.VerificationMigration,
	}
	if err := p.store.InsertMembership(ctx, membership); err != nil {
		return Wrap(ErrStorage, "provision", "create membership", row.Email, err)
	}

	result.Credentials = append(result.Credentials, Credential{
		Email:             row.Email,
		TemporaryPassword: password,
		SchoolName:        schoolName,
	})

	logger.Info(
		"created user",
		logging.String("email", row.Email),
		logging.String(logging.FieldSchoolID, schoolID),
		logging.String("membership_role", membership.Role),
		logging.Bool("needs_resubmission", hasEvidence),
	)

	return p.progress.Update(ctx, schoolID, Progress{
		Stage1Complete:      stage1,
		Stage2Complete:      stage2,
		Stage3Complete:      stage3,
		CurrentStage:        deriveStage(stage2, stage3),
		Round:               row.RoundNumber(),
		LegacyEvidenceCount: evidenceCount,
	})
}

// membershipRole maps an explicit CSV role when present, otherwise the
// first user registered at a school this run becomes head teacher.
func (p *Provisioner) membershipRole(row Row, schoolID string) string {
	users := p.schools.RegisterUser(schoolID)

	explicit := strings.ToLower(strings.TrimSpace(row.Role))
	if explicit != "" {
		if strings.Contains(explicit, "head") {
			return store.RoleHeadTeacher
		}
		return store.RoleTeacher
	}

	if users == 1 {
		return store.RoleHeadTeacher
	}
	return store.RoleTeacher
}

// deriveStage picks the furthest stage the row's signals indicate.
func deriveStage(stage2, stage3 bool) store.Stage {
	switch {
	case stage3:
		return store.StageAct
	case stage2:
		return store.StageInvestigate
	default:
		return store.StageInspire
	}
}
