package cmd

import (
	"io"
	"os"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/halsten/boogaloo/internal/errors"
	"github.com/halsten/boogaloo/pkg/boogaloo"
)

// captureStdout runs fn with os.Stdout redirected to a pipe and returns
// whatever it wrote.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	orig := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()

	require.NoError(t, w.Close())
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out)
}

func TestPrintVerdictPass(t *testing.T) {
	tc := &boogaloo.TestCase{EntrySignature: "f(x: int)"}
	out := captureStdout(t, func() { printVerdict(tc) })
	require.Contains(t, out, "PASS")
	require.Contains(t, out, "f(x: int)")
}

func TestPrintVerdictFail(t *testing.T) {
	tc := &boogaloo.TestCase{
		EntrySignature: "f(x: int)",
		Failure:        &errors.Failure{Kind: errors.AssertionViolated, ClauseKind: 1},
	}
	out := captureStdout(t, func() { printVerdict(tc) })
	require.Contains(t, out, "FAIL")
}

// fakeCommandWithConfig builds a standalone *cobra.Command carrying just
// the --config flag loadRunConfig reads, so these tests don't depend on
// rootCmd's shared flag state.
func fakeCommandWithConfig(path string) *cobra.Command {
	c := &cobra.Command{Use: "fake"}
	c.Flags().String("config", path, "")
	return c
}

func TestLoadRunConfigDefaultsWithoutFlag(t *testing.T) {
	cfg, err := loadRunConfig(fakeCommandWithConfig(""))
	require.NoError(t, err)
	require.Equal(t, int64(1), cfg.Seed)
	require.Equal(t, int64(100), cfg.IntBound)
}

func TestLoadRunConfigReadsYAMLFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "run-*.yaml")
	require.NoError(t, err)
	_, err = f.WriteString("seed: 7\nint_bound: 50\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	cfg, err := loadRunConfig(fakeCommandWithConfig(f.Name()))
	require.NoError(t, err)
	require.Equal(t, int64(7), cfg.Seed)
	require.Equal(t, int64(50), cfg.IntBound)
}
