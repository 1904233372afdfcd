package manifest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInterval(t *testing.T) {
	tests := []struct {
		name     string
		interval string
		expected time.Duration
		wantErr  bool
	}{
		{name: "minutes", interval: "10m", expected: 10 * time.Minute},
		{name: "hours", interval: "1h", expected: time.Hour},
		{name: "compound", interval: "1h30m", expected: 90 * time.Minute},
		{name: "empty", interval: "", wantErr: true},
		{name: "zero", interval: "0s", wantErr: true},
		{name: "negative", interval: "-5m", wantErr: true},
		{name: "garbage", interval: "every hour", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseInterval(tt.interval)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInterval)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d)
		})
	}
}

func TestTypeMetaGroup(t *testing.T) {
	assert.Equal(t, "helm.toolkit.fluxcd.io", TypeMeta{APIVersion: "helm.toolkit.fluxcd.io/v2"}.Group())
	assert.Equal(t, "", TypeMeta{APIVersion: "v1"}.Group())
}

func TestValuesReferenceDefaults(t *testing.T) {
	ref := ValuesReference{Kind: KindSecret, Name: "gitlab-secrets"}
	assert.True(t, ref.Required())
	assert.Equal(t, "values.yaml", ref.EffectiveValuesKey())

	ref = ValuesReference{Kind: KindConfigMap, Name: "gitlab-ses-config", ValuesKey: "ses.yaml", Optional: true}
	assert.False(t, ref.Required())
	assert.Equal(t, "ses.yaml", ref.EffectiveValuesKey())
}

func TestDocumentSetLookups(t *testing.T) {
	repo := &HelmRepository{
		TypeMeta: TypeMeta{APIVersion: "source.toolkit.fluxcd.io/v1", Kind: KindHelmRepository},
		Metadata: ObjectMeta{Name: "gitlab", Namespace: "gitlab"},
		Spec:     HelmRepositorySpec{URL: "https://charts.gitlab.io", Interval: "1h"},
	}
	release := &HelmRelease{
		TypeMeta: TypeMeta{APIVersion: "helm.toolkit.fluxcd.io/v2", Kind: KindHelmRelease},
		Metadata: ObjectMeta{Name: "gitlab", Namespace: "gitlab"},
		Spec: HelmReleaseSpec{
			Interval: "10m",
			Chart: ChartTemplate{Spec: ChartSpec{
				Chart:     "gitlab",
				Version:   "7.11.2",
				SourceRef: CrossNamespaceObjectReference{Kind: KindHelmRepository, Name: "gitlab"},
			}},
		},
	}

	set := &DocumentSet{Documents: []Document{
		{TypeMeta: repo.TypeMeta, Repository: repo},
		{TypeMeta: release.TypeMeta, Release: release},
	}}

	assert.Len(t, set.Repositories(), 1)
	assert.Len(t, set.Releases(), 1)

	// sourceRef namespace defaults to the release namespace.
	require.NotNil(t, set.ResolveSource(release))
	assert.Equal(t, repo, set.ResolveSource(release))

	assert.Nil(t, set.FindRepository("gitlab", "other"))

	release.Spec.Chart.Spec.SourceRef.Namespace = "flux-system"
	assert.Nil(t, set.ResolveSource(release))
}
