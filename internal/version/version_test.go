package version

import (
	"strings"
	"testing"
)

func TestShortCommit(t *testing.T) {
	t.Parallel()

	if got := shortCommit("abc"); got != "abc" {
		t.Fatalf("got %q want abc", got)
	}
	if got := shortCommit("0123456789abcdef"); got != "0123456789ab" {
		t.Fatalf("got %q want 0123456789ab", got)
	}
}

func TestResolveNeverEmpty(t *testing.T) {
	t.Parallel()

	info := Resolve()
	if info.Version == "" {
		t.Fatalf("empty version")
	}
	if !strings.HasPrefix(String(), info.Version) {
		t.Fatalf("String() %q does not start with %q", String(), info.Version)
	}
}
