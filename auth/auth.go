// Package auth resolves API tokens to back-office users. Identity itself is
// an external concern; this package only consumes a provisioned token file.
package auth

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleAdmin        Role = "admin"
	RoleCollaborator Role = "collaborator"
	RoleViewer       Role = "viewer"
)

func ParseRole(raw string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(RoleAdmin):
		return RoleAdmin, nil
	case string(RoleCollaborator):
		return RoleCollaborator, nil
	case string(RoleViewer):
		return RoleViewer, nil
	default:
		return "", fmt.Errorf("unknown role %q (supported: admin, collaborator, viewer)", raw)
	}
}

// CanImport gates the bulk-import endpoints.
func (r Role) CanImport() bool {
	return r == RoleAdmin || r == RoleCollaborator
}

// CanEdit gates event create/update.
func (r Role) CanEdit() bool {
	return r == RoleAdmin || r == RoleCollaborator
}

// CanDelete gates event deletion.
func (r Role) CanDelete() bool {
	return r == RoleAdmin
}

// ScopedToCompany reports whether listings must be restricted to the user's
// own company. Admins and viewers see everything.
func (r Role) ScopedToCompany() bool {
	return r == RoleCollaborator
}

type User struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Company string `json:"company,omitempty"`
	Role    Role   `json:"role"`
}
