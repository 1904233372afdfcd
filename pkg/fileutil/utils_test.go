package fileutil

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileExists(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "release.yaml", []byte("kind: HelmRelease"), ReadWriteUserReadOthers))
	require.NoError(t, fs.MkdirAll("manifests", ReadWriteExecuteUserReadExecuteOthers))

	exists, err := FileExists(fs, "release.yaml")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = FileExists(fs, "missing.yaml")
	require.NoError(t, err)
	assert.False(t, exists)

	// Directories are not files.
	exists, err = FileExists(fs, "manifests")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestIsYAMLFile(t *testing.T) {
	assert.True(t, IsYAMLFile("gitlab.yaml"))
	assert.True(t, IsYAMLFile("gitlab.YML"))
	assert.False(t, IsYAMLFile("gitlab.json"))
	assert.False(t, IsYAMLFile("gitlab"))
}
