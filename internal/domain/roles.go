package domain

import "strings"

type Role string

const (
	RoleAdmin         Role = "admin"
	RoleDealer        Role = "dealer"
	RoleRentalCompany Role = "rental_company"
)

// RoleSet is an explicit capability set. Checks like "admins may act on
// unapproved auctions" go through Has rather than ad hoc boolean flags.
type RoleSet map[Role]struct{}

func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

func (s RoleSet) Has(role Role) bool {
	_, ok := s[role]
	return ok
}

func (s RoleSet) Add(role Role) {
	s[role] = struct{}{}
}

func (s RoleSet) Remove(role Role) {
	delete(s, role)
}

// Encode renders the set as a comma-joined list for storage.
func (s RoleSet) Encode() string {
	parts := make([]string, 0, len(s))
	for _, r := range []Role{RoleAdmin, RoleDealer, RoleRentalCompany} {
		if s.Has(r) {
			parts = append(parts, string(r))
		}
	}
	return strings.Join(parts, ",")
}

func DecodeRoleSet(encoded string) RoleSet {
	set := make(RoleSet)
	for _, part := range strings.Split(encoded, ",") {
		if part = strings.TrimSpace(part); part != "" {
			set[Role(part)] = struct{}{}
		}
	}
	return set
}

// Identity is the acting caller as resolved by the identity middleware.
// The zero value is an anonymous caller.
type Identity struct {
	UserID string
	Roles  RoleSet
}

func (id Identity) IsAuthenticated() bool {
	return id.UserID != ""
}

func (id Identity) Has(role Role) bool {
	return id.Roles.Has(role)
}
