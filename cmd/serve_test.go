package cmd

import (
	"strings"
	"testing"
)

func TestResolveTokenFilePath(t *testing.T) {
	t.Parallel()

	path, err := resolveTokenFilePath("/flag/tokens.json", "/config/tokens.json")
	if err != nil || path != "/flag/tokens.json" {
		t.Fatalf("flag must win: %q, %v", path, err)
	}

	path, err = resolveTokenFilePath("  ", "/config/tokens.json")
	if err != nil || path != "/config/tokens.json" {
		t.Fatalf("config must be second: %q, %v", path, err)
	}

	path, err = resolveTokenFilePath("", "")
	if err != nil {
		t.Fatalf("default path: %v", err)
	}
	if !strings.HasSuffix(path, "tokens.json") {
		t.Fatalf("unexpected default token path: %q", path)
	}
}
