// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # Viewer Identity

// Viewer is the resolved identity behind a request. ID is nil for anonymous visitors.
type Viewer struct {
	ID   *int64
	Role UserRole
}

// Anonymous returns the identity of an unauthenticated visitor.
func Anonymous() Viewer {
	return Viewer{Role: RoleNone}
}

// NewViewer builds an authenticated identity.
func NewViewer(id int64, role UserRole) Viewer {
	return Viewer{ID: &id, Role: role}
}

// ViewerFromClaims converts verified token claims into a [Viewer].
func ViewerFromClaims(claims *AuthClaims) Viewer {
	if claims == nil {
		return Anonymous()
	}
	return NewViewer(claims.UserID, UserRole(claims.Role))
}

// IsAuthenticated reports whether the viewer carries an id.
func (v Viewer) IsAuthenticated() bool {
	return v.ID != nil
}

// Is reports whether the viewer is the user with the given id.
func (v Viewer) Is(userID int64) bool {
	return v.ID != nil && *v.ID == userID
}
