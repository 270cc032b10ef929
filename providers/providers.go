// Package providers holds the registered trust relationships that
// verified identity tokens resolve to. Each provider variant encodes
// its own claim policy behind the oidc.Provider capability; the
// verification core depends only on that capability.
package providers

import (
	"github.com/trustpub/trustpub/oidc"
)

// Provider extends oidc.Provider with the registration lookup used by
// the registry. Matches answers "is this registration for the
// identity the claims name"; VerifyClaims applies the finer-grained
// policy afterwards.
type Provider interface {
	oidc.Provider
	Matches(claims oidc.SignedClaims) bool
}

// Registry indexes registered providers by issuer URL and implements
// oidc.Finder.
type Registry struct {
	byIssuer map[string][]Provider
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byIssuer: map[string][]Provider{}}
}

// Register adds a provider under the given issuer URL. Multiple
// providers may share an issuer; lookup disambiguates by claims.
func (r *Registry) Register(issuer string, p Provider) {
	r.byIssuer[issuer] = append(r.byIssuer[issuer], p)
}

// FindByIssuer returns the first provider registered for the issuer
// whose registration matches the claims, or nil.
func (r *Registry) FindByIssuer(issuer string, claims oidc.SignedClaims) oidc.Provider {
	for _, p := range r.byIssuer[issuer] {
		if p.Matches(claims) {
			return p
		}
	}
	return nil
}
