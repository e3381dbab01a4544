// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # User Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// Can create and manage their own series, worlds and explorations
	RoleAuthor UserRole = "author"

	// Default role for registered readers
	RoleReader UserRole = "reader"

	// Anonymous visitors carry no role
	RoleNone UserRole = ""
)

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

// IsValid reports whether r is a role the auth layer may issue.
func (r UserRole) IsValid() bool {
	return r == RoleAuthor || r == RoleReader
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r UserRole) level() int {

	// Linear scale leaves room for intermediate roles
	switch r {
	case RoleAuthor:
		return 20
	case RoleReader:
		return 10
	default:
		return 0
	}
}
