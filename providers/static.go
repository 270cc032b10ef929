package providers

import (
	"github.com/trustpub/trustpub/oidc"
)

// Static is a trust relationship defined by an exact set of required
// claim values. It suits issuers without a richer identity model, and
// tests.
type Static struct {
	ProviderName string

	// RequiredClaims must all be present with exactly these values.
	RequiredClaims map[string]string

	// MatchClaim optionally names the claim used for registry lookup
	// disambiguation; empty means any claims match this registration.
	MatchClaim string
}

// Name implements oidc.Provider.
func (s *Static) Name() string { return s.ProviderName }

// Matches reports whether the claims select this registration.
func (s *Static) Matches(claims oidc.SignedClaims) bool {
	if s.MatchClaim == "" {
		return true
	}
	return claims.String(s.MatchClaim) == s.RequiredClaims[s.MatchClaim]
}

// VerifyClaims requires every registered claim to match exactly.
func (s *Static) VerifyClaims(claims oidc.SignedClaims) bool {
	for name, want := range s.RequiredClaims {
		if claims.String(name) != want {
			return false
		}
	}
	return true
}
