package oidc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/square/go-jose.v2"
	"gopkg.in/square/go-jose.v2/jwt"

	"github.com/trustpub/trustpub/metrics"
	"github.com/trustpub/trustpub/static"
)

var (
	errAlgorithmMismatch = errors.New("token algorithm is not the accepted signing algorithm")
	errMissingClaim      = errors.New("token is missing a required claim")
)

// requiredClaims must all be present in a token before its validity is
// even considered.
var requiredClaims = []string{"iss", "iat", "nbf", "exp", "aud"}

// VerifyTokenSignature cryptographically verifies the raw token and
// its mandatory claims under a fixed, fail-closed policy: RS256 only,
// iss/iat/nbf/exp/aud present, issuer and audience exact, temporal
// claims within static.VerifyLeeway. On any failure it returns
// ErrRejected with no further detail.
func (s *Service) VerifyTokenSignature(ctx context.Context, rawToken string) (SignedClaims, error) {
	claims, err := s.verify(ctx, rawToken)
	if err != nil {
		metrics.TokenVerificationsTotal.WithLabelValues(s.provider, "invalid_signature").Inc()
		if !isTokenError(err) {
			// The verification primitive is expected to fail only with
			// token errors. Anything else is an abstraction leak worth
			// reporting, though it still resolves to a rejection.
			s.reporter.Report(fmt.Sprintf("token verification raised generic error: %v", err))
		}
		return nil, ErrRejected
	}

	metrics.TokenVerificationsTotal.WithLabelValues(s.provider, "ok").Inc()
	return claims, nil
}

func (s *Service) verify(ctx context.Context, rawToken string) (SignedClaims, error) {
	tok, err := jwt.ParseSigned(rawToken)
	if err != nil {
		// Parse failures do not consistently carry go-jose sentinel
		// errors; fold them into one malformed-token cause.
		return nil, fmt.Errorf("%w: %v", errMalformedToken, err)
	}

	// The accepted algorithm is fixed up front; the token does not get
	// to negotiate it.
	if len(tok.Headers) != 1 || tok.Headers[0].Algorithm != static.TokenAlgorithm {
		return nil, errAlgorithmMismatch
	}

	key, err := s.keyForToken(ctx, tok)
	if err != nil {
		return nil, err
	}

	all := SignedClaims{}
	std := jwt.Claims{}
	if err := tok.Claims(*key, &all, &std); err != nil {
		return nil, err
	}

	// Presence first: a token without the full mandatory claim set is
	// rejected even if the claims it does carry would validate.
	for _, name := range requiredClaims {
		if _, ok := all[name]; !ok {
			return nil, fmt.Errorf("%w: %s", errMissingClaim, name)
		}
	}

	err = std.ValidateWithLeeway(jwt.Expected{
		Issuer:   s.issuer,
		Audience: jwt.Audience{s.audience},
		Time:     time.Now(),
	}, static.VerifyLeeway)
	if err != nil {
		return nil, err
	}

	return all, nil
}

// isTokenError reports whether err belongs to the expected taxonomy of
// token verification failures. Errors outside it indicate a leak from
// the verification primitive.
func isTokenError(err error) bool {
	switch {
	case errors.Is(err, errKeyNotFound),
		errors.Is(err, errMalformedToken),
		errors.Is(err, errAlgorithmMismatch),
		errors.Is(err, errMissingClaim),
		errors.Is(err, jwt.ErrExpired),
		errors.Is(err, jwt.ErrNotValidYet),
		errors.Is(err, jwt.ErrIssuedInTheFuture),
		errors.Is(err, jwt.ErrInvalidIssuer),
		errors.Is(err, jwt.ErrInvalidAudience),
		errors.Is(err, jwt.ErrInvalidSubject),
		errors.Is(err, jose.ErrCryptoFailure):
		return true
	}
	// Parse and signature failures surface as go-jose errors without
	// sentinel values; they all carry the library prefix.
	return strings.HasPrefix(err.Error(), "square/go-jose:")
}
