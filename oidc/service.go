// Package oidc verifies identity tokens issued by third-party OpenID
// Connect providers and resolves them to a registered trust
// relationship.
//
// The package supports two modes:
//   - Service: full signature and claims verification against the
//     provider's published keyset, cached in Redis
//   - InsecureService: parse without signature verification
//     (development/testing only)
package oidc

import (
	"context"
	"errors"
	"net/http"

	"github.com/trustpub/trustpub/keystore"
	"github.com/trustpub/trustpub/report"
	"github.com/trustpub/trustpub/static"
)

// ErrRejected is returned for every verification or match failure. The
// cause is counted and reported internally but deliberately not
// exposed, so callers cannot be used as an oracle for why a token
// failed.
var ErrRejected = errors.New("oidc: token rejected")

// SignedClaims holds the claims of a token whose signature and
// mandatory claims have been verified. Consumers must treat it as
// read-only.
type SignedClaims map[string]interface{}

// String returns the named claim if it is a string, or "".
func (c SignedClaims) String(name string) string {
	v, _ := c[name].(string)
	return v
}

// Issuer returns the iss claim.
func (c SignedClaims) Issuer() string { return c.String("iss") }

// Subject returns the sub claim.
func (c SignedClaims) Subject() string { return c.String("sub") }

// Provider is a registered trust relationship. Its claim verification
// encodes the fine-grained trust policy for one publisher identity;
// this package only invokes it.
type Provider interface {
	// Name identifies the registered provider for responses and logs.
	Name() string
	// VerifyClaims reports whether the verified claims satisfy the
	// provider's own policy.
	VerifyClaims(claims SignedClaims) bool
}

// Finder looks up a registered provider by issuer URL.
type Finder interface {
	// FindByIssuer returns the provider registered for the issuer and
	// claims, or nil if there is none.
	FindByIssuer(issuer string, claims SignedClaims) Provider
}

// KeysetStore is the shared cache holding each provider's current
// keyset and cooldown marker.
type KeysetStore interface {
	Put(provider string, keys keystore.KeySet) error
	Get(provider string) (keys keystore.KeySet, cooldown bool, err error)
}

// TokenService is the capability consumed by the request-handling
// layer. Service implements it with full verification;
// InsecureService implements it without signature checks and must
// never be selected in production wiring.
type TokenService interface {
	VerifyTokenSignature(ctx context.Context, rawToken string) (SignedClaims, error)
	FindProvider(claims SignedClaims) (Provider, error)
}

// Service verifies identity tokens for a single registered provider
// class (one issuer URL). It is safe for concurrent use; the only
// shared mutable state is the injected KeysetStore.
type Service struct {
	provider string
	issuer   string
	audience string
	store    KeysetStore
	finder   Finder
	reporter report.Reporter
	client   *http.Client
}

// New returns a Service for the given provider id and issuer URL. The
// store, finder and reporter are required collaborators.
func New(provider, issuerURL, audience string, store KeysetStore, finder Finder, reporter report.Reporter) *Service {
	return &Service{
		provider: provider,
		issuer:   issuerURL,
		audience: audience,
		store:    store,
		finder:   finder,
		reporter: reporter,
		client:   &http.Client{Timeout: static.FetchTimeout},
	}
}
