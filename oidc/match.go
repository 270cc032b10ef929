package oidc

import (
	"github.com/trustpub/trustpub/metrics"
)

// FindProvider resolves verified claims to a registered provider. The
// issuer lookup answers whether any provider claims this issuer; the
// provider's own claim verification answers whether these specific
// claims satisfy its policy. Both failures are counted separately but
// surface as the same opaque rejection.
func (s *Service) FindProvider(claims SignedClaims) (Provider, error) {
	metrics.ProviderMatchTotal.WithLabelValues(s.provider, "attempt").Inc()

	provider := s.finder.FindByIssuer(s.issuer, claims)
	if provider == nil {
		metrics.ProviderMatchTotal.WithLabelValues(s.provider, "provider_not_found").Inc()
		return nil, ErrRejected
	}

	if !provider.VerifyClaims(claims) {
		metrics.ProviderMatchTotal.WithLabelValues(s.provider, "invalid_claims").Inc()
		return nil, ErrRejected
	}

	metrics.ProviderMatchTotal.WithLabelValues(s.provider, "ok").Inc()
	return provider, nil
}
