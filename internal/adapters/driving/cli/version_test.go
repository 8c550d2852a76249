package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionCmdUse(t *testing.T) {
	assert.Equal(t, "version", versionCmd.Use)
}

func TestVersionCmdExecutes(t *testing.T) {
	original := version
	version = "test-1.0.0"
	defer func() { version = original }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"version"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "filesearch version test-1.0.0")
}
