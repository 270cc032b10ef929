package providers

import (
	"strings"

	"github.com/trustpub/trustpub/oidc"
)

// GitHubIssuer is the issuer URL of tokens minted for GitHub Actions
// workflows.
const GitHubIssuer = "https://token.actions.githubusercontent.com"

// GitHub is a trust relationship with a GitHub repository. A token is
// accepted when it was minted for a workflow run of the registered
// repository, optionally pinned to the repository owner's account id
// and to a workflow file.
type GitHub struct {
	// ProviderName labels this registration in responses and logs.
	ProviderName string

	// Repository is the full "owner/name" the registration trusts.
	Repository string

	// RepositoryOwnerID optionally pins the owner's immutable account
	// id, guarding against a deleted and re-registered owner name.
	RepositoryOwnerID string

	// WorkflowFilename optionally restricts publishing to workflow
	// runs of one workflow file, e.g. "release.yml".
	WorkflowFilename string
}

// Name implements oidc.Provider.
func (g *GitHub) Name() string { return g.ProviderName }

// Matches reports whether the claims name this registration's
// repository.
func (g *GitHub) Matches(claims oidc.SignedClaims) bool {
	return claims.String("repository") == g.Repository
}

// VerifyClaims applies the registration's full policy to verified
// claims.
func (g *GitHub) VerifyClaims(claims oidc.SignedClaims) bool {
	if claims.String("repository") != g.Repository {
		return false
	}

	if g.RepositoryOwnerID != "" && claims.String("repository_owner_id") != g.RepositoryOwnerID {
		return false
	}

	if g.WorkflowFilename != "" {
		// job_workflow_ref looks like
		// "owner/name/.github/workflows/release.yml@refs/heads/main".
		prefix := g.Repository + "/.github/workflows/" + g.WorkflowFilename + "@"
		if !strings.HasPrefix(claims.String("job_workflow_ref"), prefix) {
			return false
		}
	}

	return true
}
