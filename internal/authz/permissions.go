// Package authz defines the effective permission set resolved once per
// request and consumed by route guards and the menu builder.
package authz

import "strings"

// PermissionSet is the effective set of permission codes for an actor.
// Administrators get an unrestricted set that satisfies every check; all
// other actors get the union of codes attached to their role.
type PermissionSet struct {
	unrestricted bool
	codes        map[string]struct{}
}

// Unrestricted returns a set that allows every permission check.
func Unrestricted() PermissionSet {
	return PermissionSet{unrestricted: true}
}

// Restricted returns a set allowing exactly the given codes. Codes are
// trimmed; empty codes are dropped.
func Restricted(codes ...string) PermissionSet {
	set := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code != "" {
			set[code] = struct{}{}
		}
	}
	return PermissionSet{codes: set}
}

// Empty returns a set that denies every permission check. This is the
// resolution result for unauthenticated actors and actors without a role.
func Empty() PermissionSet {
	return PermissionSet{}
}

// Allows reports whether the set grants the permission code.
func (s PermissionSet) Allows(code string) bool {
	if s.unrestricted {
		return true
	}
	_, ok := s.codes[strings.TrimSpace(code)]
	return ok
}

// AllowsAny reports whether the set grants at least one of the codes.
func (s PermissionSet) AllowsAny(codes ...string) bool {
	if s.unrestricted {
		return len(codes) > 0
	}
	for _, code := range codes {
		if s.Allows(code) {
			return true
		}
	}
	return false
}

// IsUnrestricted reports whether the set carries the admin wildcard.
func (s PermissionSet) IsUnrestricted() bool {
	return s.unrestricted
}

// Codes returns the explicit codes in the set. Unrestricted sets return nil.
func (s PermissionSet) Codes() []string {
	if s.unrestricted || len(s.codes) == 0 {
		return nil
	}
	codes := make([]string, 0, len(s.codes))
	for code := range s.codes {
		codes = append(codes, code)
	}
	return codes
}
