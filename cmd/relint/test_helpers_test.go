package main

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// gitlabManifests is a two-document fixture: a HelmRepository and a
// HelmRelease referencing it, with both referenced and inline value layers.
const gitlabManifests = `apiVersion: source.toolkit.fluxcd.io/v1
kind: HelmRepository
metadata:
  name: gitlab
  namespace: gitlab
spec:
  interval: 1h
  url: https://charts.gitlab.io
---
apiVersion: helm.toolkit.fluxcd.io/v2
kind: HelmRelease
metadata:
  name: gitlab
  namespace: gitlab
spec:
  interval: 10m
  chart:
    spec:
      chart: gitlab
      version: 7.11.2
      sourceRef:
        kind: HelmRepository
        name: gitlab
  valuesFrom:
    - kind: Secret
      name: gitlab-secrets
      valuesKey: values.yaml
      optional: false
    - kind: ConfigMap
      name: gitlab-ses-config
      optional: true
  values:
    global:
      hosts:
        domain: example.com
      smtp:
        port: 465
`

// newTestRootCmd builds a fresh command tree per test so flag values set by
// one test cannot leak into the next.
func newTestRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "relint",
		SilenceUsage: true,
	}
	cmd.AddCommand(newLintCmd())
	cmd.AddCommand(newInspectCmd())
	cmd.AddCommand(newRenderCmd())
	return cmd
}

// setupTestFs swaps in a MemMapFs seeded with the gitlab fixture and restores
// the real filesystem when the test ends.
func setupTestFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	restore := SetFs(fs)
	t.Cleanup(restore)
	require.NoError(t, afero.WriteFile(fs, "/manifests/gitlab.yaml", []byte(gitlabManifests), 0o644))
	return fs
}
