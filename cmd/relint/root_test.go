package main

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmdHelp(t *testing.T) {
	output, err := executeCommand(newTestRootCmd(), "--help")
	require.NoError(t, err)
	assert.Contains(t, output, "relint")
	assert.Contains(t, output, "lint")
	assert.Contains(t, output, "inspect")
	assert.Contains(t, output, "render")
}

func TestRootCmdUnknownCommand(t *testing.T) {
	_, err := executeCommand(newTestRootCmd(), "frobnicate")
	assert.Error(t, err)
}

func TestSetFsRestores(t *testing.T) {
	original := AppFs
	memFs := afero.NewMemMapFs()

	restore := SetFs(memFs)
	assert.Equal(t, memFs, AppFs)

	restore()
	assert.Equal(t, original, AppFs)
}

func TestGetRootCmd(t *testing.T) {
	root := getRootCmd()
	require.NotNil(t, root)
	assert.Equal(t, "relint", root.Use)
}
