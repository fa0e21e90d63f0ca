package auth

import "github.com/mentorhub/apiserver/types"

// CanModify is the ownership check every domain handler performs before
// a mutation: the principal must be the resource owner, or an
// admin-flagged user. Admin override is a cross-cutting rule, so even
// resources with a fixed owner kind route through this conjunction.
//
// The check is pure: it never mutates its inputs and never touches
// storage. Handlers call it only after the resource has been fetched and
// found, so NotFound always precedes Forbidden.
func CanModify(owner types.OwnerRef, p Principal) bool {
	if p.IsAdmin() {
		return true
	}
	return owner.Kind == p.Kind && owner.ID == p.ID()
}
