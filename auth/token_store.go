package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type tokenFile struct {
	Tokens []tokenEntry `json:"tokens"`
}

type tokenEntry struct {
	Token   string `json:"token"`
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Company string `json:"company"`
	Role    string `json:"role"`
}

// TokenStore maps bearer tokens to users. Loaded once at startup; the file
// is the provisioning surface for the back office's static user set.
type TokenStore struct {
	byToken map[string]User
}

func DefaultTokenFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".eventdesk", "tokens.json"), nil
}

func LoadTokenFile(path string) (*TokenStore, error) {
	content, err := os.ReadFile(strings.TrimSpace(path))
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}

	var file tokenFile
	if err := json.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("decode token file: %w", err)
	}

	return storeFromEntries(file.Tokens)
}

// NewTokenStore builds a store from an in-memory token→user map.
func NewTokenStore(users map[string]User) *TokenStore {
	byToken := make(map[string]User, len(users))
	for token, user := range users {
		byToken[token] = user
	}
	return &TokenStore{byToken: byToken}
}

func storeFromEntries(entries []tokenEntry) (*TokenStore, error) {
	byToken := make(map[string]User, len(entries))
	for i, entry := range entries {
		token := strings.TrimSpace(entry.Token)
		if token == "" {
			return nil, fmt.Errorf("tokens[%d]: token is required", i)
		}
		if _, exists := byToken[token]; exists {
			return nil, fmt.Errorf("tokens[%d]: duplicate token", i)
		}
		if entry.ID <= 0 {
			return nil, fmt.Errorf("tokens[%d]: id must be > 0", i)
		}
		role, err := ParseRole(entry.Role)
		if err != nil {
			return nil, fmt.Errorf("tokens[%d]: %w", i, err)
		}
		if role == RoleCollaborator && strings.TrimSpace(entry.Company) == "" {
			return nil, fmt.Errorf("tokens[%d]: collaborator requires a company", i)
		}

		byToken[token] = User{
			ID:      entry.ID,
			Name:    strings.TrimSpace(entry.Name),
			Company: strings.TrimSpace(entry.Company),
			Role:    role,
		}
	}
	return &TokenStore{byToken: byToken}, nil
}

func (s *TokenStore) Lookup(token string) (User, bool) {
	user, ok := s.byToken[strings.TrimSpace(token)]
	return user, ok
}

// ExampleJSON returns the token file template written by "config create".
func ExampleJSON() string {
	return `{
  "tokens": [
    {"token": "change-me-admin", "id": 1, "name": "Admin", "role": "admin"},
    {"token": "change-me-collab", "id": 2, "name": "Acme Ops", "company": "Acme", "role": "collaborator"},
    {"token": "change-me-viewer", "id": 3, "name": "Read Only", "role": "viewer"}
  ]
}
`
}
