package services

import (
	"context"

	"github.com/mentorhub/apiserver/types"
)

// PrincipalDirectory exposes the three credential tables behind the
// single lookup surface the principal resolver dispatches on. It is the
// only place a token's kind tag turns into a concrete table read.
type PrincipalDirectory struct {
	users   *UserService
	mentors *MentorService
	schools *SchoolService
}

func NewPrincipalDirectory(users *UserService, mentors *MentorService, schools *SchoolService) *PrincipalDirectory {
	return &PrincipalDirectory{users: users, mentors: mentors, schools: schools}
}

func (d *PrincipalDirectory) UserByID(ctx context.Context, id int) (types.User, error) {
	return d.users.GetByID(ctx, id)
}

func (d *PrincipalDirectory) MentorByID(ctx context.Context, id int) (types.Mentor, error) {
	return d.mentors.GetByID(ctx, id)
}

func (d *PrincipalDirectory) SchoolByID(ctx context.Context, id int) (types.School, error) {
	return d.schools.GetByID(ctx, id)
}
