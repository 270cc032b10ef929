package oidc

import (
	"context"
	"fmt"
	"os"
	"sync"

	log "github.com/sirupsen/logrus"
	"gopkg.in/square/go-jose.v2/jwt"

	"github.com/trustpub/trustpub/static"
)

// InsecureService implements TokenService WITHOUT signature
// verification. Of the mandatory claims only the audience is actually
// validated. It requires the ALLOW_INSECURE_OIDC=true environment
// variable to be set as a safety check.
//
// WARNING: Never use this in production - it accepts any token
// regardless of signature.
type InsecureService struct {
	issuer     string
	audience   string
	finder     Finder
	warnedOnce sync.Once
}

// NewInsecure creates a new insecure token service.
// Returns an error if the ALLOW_INSECURE_OIDC environment variable is
// not set to "true".
func NewInsecure(issuerURL, audience string, finder Finder) (*InsecureService, error) {
	// Require explicit environment variable as safety check.
	if os.Getenv("ALLOW_INSECURE_OIDC") != "true" {
		return nil, fmt.Errorf("insecure OIDC mode requires ALLOW_INSECURE_OIDC=true environment variable")
	}

	log.Warn("======================================================================")
	log.Warn("INSECURE OIDC MODE ENABLED - token signatures will NOT be validated!")
	log.Warn("This mode should ONLY be used in development/testing environments")
	log.Warn("DO NOT USE IN PRODUCTION")
	log.Warn("======================================================================")

	return &InsecureService{issuer: issuerURL, audience: audience, finder: finder}, nil
}

// VerifyTokenSignature parses the token without verifying its
// signature. The mandatory claims must still be present and the
// audience must still match.
func (s *InsecureService) VerifyTokenSignature(_ context.Context, rawToken string) (SignedClaims, error) {
	s.warnedOnce.Do(func() {
		log.Warn("INSECURE MODE: parsing token without signature verification")
	})

	tok, err := jwt.ParseSigned(rawToken)
	if err != nil {
		return nil, ErrRejected
	}

	all := SignedClaims{}
	std := jwt.Claims{}
	if err := tok.UnsafeClaimsWithoutVerification(&all, &std); err != nil {
		return nil, ErrRejected
	}

	for _, name := range requiredClaims {
		if _, ok := all[name]; !ok {
			return nil, ErrRejected
		}
	}

	err = std.ValidateWithLeeway(jwt.Expected{
		Audience: jwt.Audience{s.audience},
	}, static.VerifyLeeway)
	if err != nil {
		return nil, ErrRejected
	}

	return all, nil
}

// FindProvider looks up the registered provider by issuer. The
// provider's claim verification is deliberately skipped; this service
// exists for development only.
func (s *InsecureService) FindProvider(claims SignedClaims) (Provider, error) {
	provider := s.finder.FindByIssuer(s.issuer, claims)
	if provider == nil {
		return nil, ErrRejected
	}
	return provider, nil
}
