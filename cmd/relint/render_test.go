package main

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/yaml"

	"github.com/lucas-albers-lz4/relint/pkg/exitcodes"
)

const secretStandIn = `global:
  smtp:
    port: 587
    user: mailer
  psql:
    password: s3cret
`

const sesStandIn = `global:
  smtp:
    address: email-smtp.us-east-1.amazonaws.com
`

func TestRenderEffectiveValues(t *testing.T) {
	fs := setupTestFs(t)
	require.NoError(t, afero.WriteFile(fs, "/standins/secrets.yaml", []byte(secretStandIn), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/standins/ses.yaml", []byte(sesStandIn), 0o644))

	output, err := executeCommand(newTestRootCmd(), "render",
		"-f", "/manifests/gitlab.yaml",
		"--source", "gitlab-secrets=/standins/secrets.yaml",
		"--source", "gitlab-ses-config=/standins/ses.yaml")
	require.NoError(t, err)

	var merged map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(output), &merged))

	global := merged["global"].(map[string]interface{})
	smtp := global["smtp"].(map[string]interface{})

	// Inline values win over the secret layer for the same leaf.
	assert.Equal(t, float64(465), smtp["port"])
	// Leaves unique to earlier layers survive the merge.
	assert.Equal(t, "mailer", smtp["user"])
	assert.Equal(t, "email-smtp.us-east-1.amazonaws.com", smtp["address"])
	assert.Equal(t, "s3cret", global["psql"].(map[string]interface{})["password"])
}

func TestRenderMissingRequiredSource(t *testing.T) {
	setupTestFs(t)

	_, err := executeCommand(newTestRootCmd(), "render", "-f", "/manifests/gitlab.yaml")
	require.Error(t, err)
	code, ok := exitcodes.IsExitCodeError(err)
	require.True(t, ok)
	assert.Equal(t, exitcodes.ExitSourceNotProvided, code)
	assert.Contains(t, err.Error(), "gitlab-secrets")
}

func TestRenderSkipsMissingOptionalSource(t *testing.T) {
	fs := setupTestFs(t)
	require.NoError(t, afero.WriteFile(fs, "/standins/secrets.yaml", []byte(secretStandIn), 0o644))

	output, err := executeCommand(newTestRootCmd(), "render",
		"-f", "/manifests/gitlab.yaml",
		"--source", "gitlab-secrets=/standins/secrets.yaml")
	require.NoError(t, err)
	assert.NotContains(t, output, "email-smtp")
}

func TestRenderMalformedSourceFlag(t *testing.T) {
	setupTestFs(t)

	_, err := executeCommand(newTestRootCmd(), "render",
		"-f", "/manifests/gitlab.yaml", "--source", "gitlab-secrets")
	require.Error(t, err)
	code, ok := exitcodes.IsExitCodeError(err)
	require.True(t, ok)
	assert.Equal(t, exitcodes.ExitInputConfigurationError, code)
}

func TestRenderMissingStandInFile(t *testing.T) {
	setupTestFs(t)

	_, err := executeCommand(newTestRootCmd(), "render",
		"-f", "/manifests/gitlab.yaml", "--source", "gitlab-secrets=/standins/absent.yaml")
	require.Error(t, err)
	code, ok := exitcodes.IsExitCodeError(err)
	require.True(t, ok)
	assert.Equal(t, exitcodes.ExitManifestNotFound, code)
}

func TestRenderSetOverridesWin(t *testing.T) {
	fs := setupTestFs(t)
	require.NoError(t, afero.WriteFile(fs, "/standins/secrets.yaml", []byte(secretStandIn), 0o644))

	output, err := executeCommand(newTestRootCmd(), "render",
		"-f", "/manifests/gitlab.yaml",
		"--source", "gitlab-secrets=/standins/secrets.yaml",
		"--set", "global.smtp.port=2525")
	require.NoError(t, err)

	var merged map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(output), &merged))
	smtp := merged["global"].(map[string]interface{})["smtp"].(map[string]interface{})
	assert.Equal(t, float64(2525), smtp["port"])
}

func TestRenderOutputFile(t *testing.T) {
	fs := setupTestFs(t)
	require.NoError(t, afero.WriteFile(fs, "/standins/secrets.yaml", []byte(secretStandIn), 0o644))

	_, err := executeCommand(newTestRootCmd(), "render",
		"-f", "/manifests/gitlab.yaml",
		"--source", "gitlab-secrets=/standins/secrets.yaml",
		"--output-file", "/out/effective.yaml")
	require.NoError(t, err)

	content, err := afero.ReadFile(fs, "/out/effective.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(content), "domain: example.com")
}
