package version

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStringIncludesBuildMetadata(t *testing.T) {
	originalVersion := Version
	originalCommit := Commit
	originalDate := Date
	t.Cleanup(func() {
		Version = originalVersion
		Commit = originalCommit
		Date = originalDate
	})

	Version = "0.3.0"
	Commit = "abc123"
	Date = "2026-08-28"

	got := String()
	require.Contains(t, got, "lingopad 0.3.0")
	require.Contains(t, got, "commit=abc123")
	require.Contains(t, got, "date=2026-08-28")
	require.Contains(t, got, "go=")
}
