package migration

import (
	"context"

	"transplant/internal/store"
)

// Store is the persistence collaborator the pipeline drives. The SQLite
// store satisfies it; tests may substitute their own.
type Store interface {
	FindSchool(ctx context.Context, name, district, country string) (*store.School, error)
	FindSchoolByID(ctx context.Context, id string) (*store.School, error)
	InsertSchool(ctx context.Context, school *store.School) error
	UpdateSchoolProgress(ctx context.Context, id string, update store.SchoolUpdate) error
	FindUserByEmail(ctx context.Context, email string) (*store.User, error)
	InsertUser(ctx context.Context, user *store.User) error
	InsertMembership(ctx context.Context, membership *store.Membership) error
	InsertRun(ctx context.Context, run *store.Run) error
	UpdateRun(ctx context.Context, run *store.Run) error
}
