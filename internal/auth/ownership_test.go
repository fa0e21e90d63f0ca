package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mentorhub/apiserver/types"
)

func TestCanModifyOwner(t *testing.T) {
	mentor := Principal{Kind: types.KindMentor, Mentor: &types.Mentor{ID: 5}}

	assert.True(t, CanModify(types.MentorOwner(5), mentor))
	assert.False(t, CanModify(types.MentorOwner(6), mentor))
}

func TestCanModifyRequiresMatchingKind(t *testing.T) {
	// A user and a mentor sharing an id are different principals.
	user := Principal{Kind: types.KindUser, User: &types.User{ID: 5, Role: types.RoleStudent}}

	assert.False(t, CanModify(types.MentorOwner(5), user))
	assert.True(t, CanModify(types.UserOwner(5), user))
}

func TestCanModifyAdminOverride(t *testing.T) {
	admin := Principal{Kind: types.KindUser, User: &types.User{ID: 1, Role: types.RoleAdmin}}

	assert.True(t, CanModify(types.MentorOwner(99), admin))
	assert.True(t, CanModify(types.UserOwner(99), admin))
	assert.True(t, CanModify(types.OwnerRef{Kind: types.KindSchool, ID: 99}, admin))
}

func TestCanModifyIsIdempotent(t *testing.T) {
	owner := types.MentorOwner(5)
	mentor := Principal{Kind: types.KindMentor, Mentor: &types.Mentor{ID: 5}}

	first := CanModify(owner, mentor)
	second := CanModify(owner, mentor)
	assert.Equal(t, first, second)
	assert.Equal(t, 5, owner.ID, "check must not mutate its inputs")
}
