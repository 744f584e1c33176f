package synth

import (
	"os"
	"path/filepath"
	"testing"
)

func tcheck(tb testing.TB, err error) {
	if err == nil {
		return
	}

	tb.Helper()
	tb.Fatalf("fatal error:\n\n%s\n", err)
}

func writeFile(tb testing.TB, name, content string) string {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), name)
	tcheck(tb, os.WriteFile(path, []byte(content), 0644))
	return path
}
