package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucas-albers-lz4/relint/pkg/exitcodes"
)

func TestInspectSummaryYAML(t *testing.T) {
	setupTestFs(t)

	output, err := executeCommand(newTestRootCmd(), "inspect", "-f", "/manifests/gitlab.yaml")
	require.NoError(t, err)

	assert.Contains(t, output, "chart: gitlab")
	assert.Contains(t, output, "version: 7.11.2")
	assert.Contains(t, output, "url: https://charts.gitlab.io")
	assert.Contains(t, output, "resolved: true")
	assert.Contains(t, output, "gitlab-secrets")
	assert.Contains(t, output, "gitlab-ses-config")
}

func TestInspectSummaryJSON(t *testing.T) {
	setupTestFs(t)

	output, err := executeCommand(newTestRootCmd(), "inspect",
		"-f", "/manifests/gitlab.yaml", "-o", "json")
	require.NoError(t, err)

	var summary releaseSummary
	require.NoError(t, json.Unmarshal([]byte(output), &summary))

	assert.Equal(t, "gitlab", summary.Name)
	assert.Equal(t, "gitlab", summary.Namespace)
	assert.Equal(t, "10m", summary.Interval)
	assert.True(t, summary.Repository.Resolved)

	// Value sources are listed in merge order with the default key filled in.
	require.Len(t, summary.ValueSources, 2)
	assert.Equal(t, "Secret", summary.ValueSources[0].Kind)
	assert.Equal(t, "gitlab-secrets", summary.ValueSources[0].Name)
	assert.Equal(t, "values.yaml", summary.ValueSources[0].ValuesKey)
	assert.False(t, summary.ValueSources[0].Optional)
	assert.Equal(t, "ConfigMap", summary.ValueSources[1].Kind)
	assert.True(t, summary.ValueSources[1].Optional)

	assert.Equal(t, []string{"global"}, summary.InlineValueKeys)
}

func TestInspectUnresolvedRepository(t *testing.T) {
	fs := setupTestFs(t)
	// Release only, so the sourceRef cannot resolve to a URL.
	parts := strings.SplitN(gitlabManifests, "---\n", 2)
	require.Len(t, parts, 2)
	releaseOnly := parts[1]
	require.NoError(t, afero.WriteFile(fs, "/manifests/release-only.yaml", []byte(releaseOnly), 0o644))

	output, err := executeCommand(newTestRootCmd(), "inspect", "-f", "/manifests/release-only.yaml")
	require.NoError(t, err)
	assert.Contains(t, output, "resolved: false")
	assert.NotContains(t, output, "url:")
}

func TestInspectNoReleases(t *testing.T) {
	fs := setupTestFs(t)
	repoOnly := `apiVersion: source.toolkit.fluxcd.io/v1
kind: HelmRepository
metadata:
  name: gitlab
spec:
  interval: 1h
  url: https://charts.gitlab.io
`
	require.NoError(t, afero.WriteFile(fs, "/manifests/repo-only.yaml", []byte(repoOnly), 0o644))

	_, err := executeCommand(newTestRootCmd(), "inspect", "-f", "/manifests/repo-only.yaml")
	require.Error(t, err)
	code, ok := exitcodes.IsExitCodeError(err)
	require.True(t, ok)
	assert.Equal(t, exitcodes.ExitInputConfigurationError, code)
}

func TestInspectAmbiguousRelease(t *testing.T) {
	fs := setupTestFs(t)
	two := gitlabManifests + "---\n" + `apiVersion: helm.toolkit.fluxcd.io/v2
kind: HelmRelease
metadata:
  name: runner
  namespace: gitlab
spec:
  interval: 5m
  chart:
    spec:
      chart: gitlab-runner
      sourceRef:
        kind: HelmRepository
        name: gitlab
`
	require.NoError(t, afero.WriteFile(fs, "/manifests/two.yaml", []byte(two), 0o644))

	// Without --release the selection is ambiguous.
	_, err := executeCommand(newTestRootCmd(), "inspect", "-f", "/manifests/two.yaml")
	require.Error(t, err)
	code, ok := exitcodes.IsExitCodeError(err)
	require.True(t, ok)
	assert.Equal(t, exitcodes.ExitInputConfigurationError, code)

	output, err := executeCommand(newTestRootCmd(), "inspect",
		"-f", "/manifests/two.yaml", "--release", "runner")
	require.NoError(t, err)
	assert.Contains(t, output, "chart: gitlab-runner")
}

func TestInspectPlacementAndResources(t *testing.T) {
	fs := setupTestFs(t)
	placed := `apiVersion: helm.toolkit.fluxcd.io/v2
kind: HelmRelease
metadata:
  name: gitlab
  namespace: gitlab
spec:
  interval: 10m
  chart:
    spec:
      chart: gitlab
      sourceRef:
        kind: HelmRepository
        name: gitlab
  values:
    global:
      nodeSelector:
        workload: web
    gitlab:
      webservice:
        nodeSelector:
          workload: web
        resources:
          requests:
            cpu: 500m
            memory: 2Gi
          limits:
            cpu: "2"
            memory: 4Gi
`
	require.NoError(t, afero.WriteFile(fs, "/manifests/placed.yaml", []byte(placed), 0o644))

	output, err := executeCommand(newTestRootCmd(), "inspect",
		"-f", "/manifests/placed.yaml", "-o", "json")
	require.NoError(t, err)

	var summary releaseSummary
	require.NoError(t, json.Unmarshal([]byte(output), &summary))

	require.Len(t, summary.NodeSelectors, 2)
	assert.Equal(t, map[string]string{"workload": "web"}, summary.NodeSelectors["global.nodeSelector"])
	assert.Equal(t, map[string]string{"workload": "web"}, summary.NodeSelectors["gitlab.webservice.nodeSelector"])

	block, ok := summary.Resources["gitlab.webservice.resources"]
	require.True(t, ok)
	assert.Equal(t, "500m", block.Requests["cpu"])
	assert.Equal(t, "2", block.Limits["cpu"])
	assert.Equal(t, "4Gi", block.Limits["memory"])
}

func TestInspectUnknownRelease(t *testing.T) {
	setupTestFs(t)

	_, err := executeCommand(newTestRootCmd(), "inspect",
		"-f", "/manifests/gitlab.yaml", "--release", "nope")
	require.Error(t, err)
	code, ok := exitcodes.IsExitCodeError(err)
	require.True(t, ok)
	assert.Equal(t, exitcodes.ExitInputConfigurationError, code)
}
