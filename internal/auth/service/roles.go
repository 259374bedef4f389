package service

import (
	"slices"

	"github.com/aussiebroadwan/designer/internal/auth/domain"
)

// DeriveRoles returns the roles to embed in tokens issued for u: its role
// set, sorted and without duplicates. It never returns nil.
func DeriveRoles(u domain.User) []string {
	roles := slices.Clone(u.Roles)
	slices.Sort(roles)
	roles = slices.Compact(roles)
	if roles == nil {
		roles = []string{}
	}
	return roles
}
