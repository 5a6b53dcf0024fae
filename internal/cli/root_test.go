package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "todos", cmd.Use)

	runCmd, _, err := cmd.Find([]string{"run"})
	require.NoError(t, err)
	assert.Equal(t, "run", runCmd.Name())
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)
}

func TestRunCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	runCmd, _, err := cmd.Find([]string{"run"})
	require.NoError(t, err)

	for flag, def := range map[string]string{
		"seed":    "",
		"delay":   "200ms",
		"timeout": "10s",
		"workers": "1",
	} {
		t.Run(flag, func(t *testing.T) {
			f := runCmd.Flags().Lookup(flag)
			require.NotNil(t, f)
			assert.Equal(t, def, f.DefValue)
		})
	}
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitCommandError, GetExitCode(WrapExitError(ExitCommandError, "bad", nil)))
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
}
