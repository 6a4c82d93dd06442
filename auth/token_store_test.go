package auth

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTokenFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tokens.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write token file: %v", err)
	}
	return path
}

func TestLoadTokenFile_ResolvesUsers(t *testing.T) {
	t.Parallel()

	path := writeTokenFile(t, `{
		"tokens": [
			{"token": "tok-admin", "id": 1, "name": "Admin", "role": "admin"},
			{"token": "tok-collab", "id": 2, "name": "Acme Ops", "company": "Acme", "role": "collaborator"}
		]
	}`)

	store, err := LoadTokenFile(path)
	if err != nil {
		t.Fatalf("load token file: %v", err)
	}

	admin, ok := store.Lookup("tok-admin")
	if !ok || admin.Role != RoleAdmin {
		t.Fatalf("admin lookup failed: %+v ok=%v", admin, ok)
	}

	collab, ok := store.Lookup("tok-collab")
	if !ok || collab.Role != RoleCollaborator || collab.Company != "Acme" {
		t.Fatalf("collaborator lookup failed: %+v", collab)
	}

	if _, ok := store.Lookup("unknown"); ok {
		t.Fatalf("unknown token must not resolve")
	}
}

func TestLoadTokenFile_RejectsBadEntries(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		content string
	}{
		{"missing token", `{"tokens": [{"id": 1, "name": "x", "role": "admin"}]}`},
		{"bad role", `{"tokens": [{"token": "t", "id": 1, "name": "x", "role": "root"}]}`},
		{"zero id", `{"tokens": [{"token": "t", "id": 0, "name": "x", "role": "admin"}]}`},
		{"collaborator without company", `{"tokens": [{"token": "t", "id": 1, "name": "x", "role": "collaborator"}]}`},
		{"duplicate token", `{"tokens": [
			{"token": "t", "id": 1, "name": "x", "role": "admin"},
			{"token": "t", "id": 2, "name": "y", "role": "viewer"}
		]}`},
		{"not json", `nope`},
	}
	for _, tc := range cases {
		path := writeTokenFile(t, tc.content)
		if _, err := LoadTokenFile(path); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestRolePermissions(t *testing.T) {
	t.Parallel()

	if !RoleAdmin.CanImport() || !RoleAdmin.CanEdit() || !RoleAdmin.CanDelete() {
		t.Fatalf("admin permissions wrong")
	}
	if !RoleCollaborator.CanImport() || !RoleCollaborator.CanEdit() || RoleCollaborator.CanDelete() {
		t.Fatalf("collaborator permissions wrong")
	}
	if RoleViewer.CanImport() || RoleViewer.CanEdit() || RoleViewer.CanDelete() {
		t.Fatalf("viewer permissions wrong")
	}
	if !RoleCollaborator.ScopedToCompany() || RoleAdmin.ScopedToCompany() || RoleViewer.ScopedToCompany() {
		t.Fatalf("company scoping wrong")
	}
}

func TestParseRole_CaseInsensitive(t *testing.T) {
	t.Parallel()

	role, err := ParseRole(" Admin ")
	if err != nil || role != RoleAdmin {
		t.Fatalf("parse role: %v %v", role, err)
	}
	if _, err := ParseRole("superuser"); err == nil {
		t.Fatalf("expected error for unknown role")
	}
}
