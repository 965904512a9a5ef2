package cli_test

import (
	"testing"

	"backport.dev/backport/testhelpers"
)

func TestMain(m *testing.M) {
	testhelpers.TestMain(m, nil)
}

// getBackportBinary returns the path to the pre-built backport binary.
func getBackportBinary(t *testing.T) string {
	t.Helper()
	binaryPath := testhelpers.GetSharedBinaryPath()
	if binaryPath == "" {
		if err := testhelpers.GetBinaryError(); err != nil {
			t.Fatalf("failed to build backport binary: %v", err)
		}
		t.Fatal("backport binary not built")
	}
	return binaryPath
}
