package types

// OwnerRef identifies the principal that owns a resource. Resources that
// can be owned by more than one principal kind persist both fields;
// fixed-owner resources (courses, classes, mock tests, notebooks) lift
// their single owner column into an OwnerRef before authorization checks
// so the same comparison applies everywhere.
type OwnerRef struct {
	Kind PrincipalKind `json:"kind" db:"owner_kind"`
	ID   int           `json:"id" db:"owner_id"`
}

// MentorOwner builds the OwnerRef for a mentor-owned resource.
func MentorOwner(mentorID int) OwnerRef {
	return OwnerRef{Kind: KindMentor, ID: mentorID}
}

// UserOwner builds the OwnerRef for a user-owned resource.
func UserOwner(userID int) OwnerRef {
	return OwnerRef{Kind: KindUser, ID: userID}
}
