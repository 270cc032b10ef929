package providers

import (
	"testing"

	"github.com/trustpub/trustpub/oidc"
)

func githubClaims(overrides map[string]interface{}) oidc.SignedClaims {
	claims := oidc.SignedClaims{
		"repository":          "owner/name",
		"repository_owner_id": "12345",
		"job_workflow_ref":    "owner/name/.github/workflows/release.yml@refs/heads/main",
	}
	for k, v := range overrides {
		claims[k] = v
	}
	return claims
}

func TestGitHub_VerifyClaims(t *testing.T) {
	tests := []struct {
		name     string
		provider *GitHub
		claims   oidc.SignedClaims
		want     bool
	}{
		{
			name:     "repository only",
			provider: &GitHub{ProviderName: "sample", Repository: "owner/name"},
			claims:   githubClaims(nil),
			want:     true,
		},
		{
			name:     "wrong repository",
			provider: &GitHub{ProviderName: "sample", Repository: "owner/name"},
			claims:   githubClaims(map[string]interface{}{"repository": "owner/other"}),
			want:     false,
		},
		{
			name: "owner id pinned and matching",
			provider: &GitHub{
				ProviderName: "sample", Repository: "owner/name", RepositoryOwnerID: "12345",
			},
			claims: githubClaims(nil),
			want:   true,
		},
		{
			name: "owner id pinned and recreated owner",
			provider: &GitHub{
				ProviderName: "sample", Repository: "owner/name", RepositoryOwnerID: "12345",
			},
			claims: githubClaims(map[string]interface{}{"repository_owner_id": "99999"}),
			want:   false,
		},
		{
			name: "workflow pinned and matching",
			provider: &GitHub{
				ProviderName: "sample", Repository: "owner/name", WorkflowFilename: "release.yml",
			},
			claims: githubClaims(nil),
			want:   true,
		},
		{
			name: "workflow pinned and different workflow",
			provider: &GitHub{
				ProviderName: "sample", Repository: "owner/name", WorkflowFilename: "release.yml",
			},
			claims: githubClaims(map[string]interface{}{
				"job_workflow_ref": "owner/name/.github/workflows/ci.yml@refs/heads/main",
			}),
			want: false,
		},
		{
			name: "workflow pinned but claim missing",
			provider: &GitHub{
				ProviderName: "sample", Repository: "owner/name", WorkflowFilename: "release.yml",
			},
			claims: githubClaims(map[string]interface{}{"job_workflow_ref": nil}),
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.provider.VerifyClaims(tt.claims); got != tt.want {
				t.Errorf("VerifyClaims() = %v, want: %v", got, tt.want)
			}
		})
	}
}

func TestRegistry_FindByIssuer(t *testing.T) {
	registry := NewRegistry()
	registry.Register(GitHubIssuer, &GitHub{ProviderName: "first", Repository: "owner/first"})
	registry.Register(GitHubIssuer, &GitHub{ProviderName: "second", Repository: "owner/second"})

	got := registry.FindByIssuer(GitHubIssuer, githubClaims(map[string]interface{}{
		"repository": "owner/second",
	}))
	if got == nil || got.Name() != "second" {
		t.Errorf("FindByIssuer() = %+v, want: second", got)
	}

	if got := registry.FindByIssuer(GitHubIssuer, githubClaims(map[string]interface{}{
		"repository": "owner/unknown",
	})); got != nil {
		t.Errorf("FindByIssuer() = %+v, want: nil for unregistered repository", got)
	}

	if got := registry.FindByIssuer("https://unknown.example.com", githubClaims(nil)); got != nil {
		t.Errorf("FindByIssuer() = %+v, want: nil for unknown issuer", got)
	}
}
