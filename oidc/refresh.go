package oidc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"
	"gopkg.in/square/go-jose.v2"
	"gopkg.in/square/go-jose.v2/jwt"

	"github.com/trustpub/trustpub/keystore"
	"github.com/trustpub/trustpub/metrics"
	"github.com/trustpub/trustpub/static"
)

var (
	errKeyNotFound    = errors.New("key id not found in provider keyset")
	errMalformedToken = errors.New("malformed token header")
)

// refreshKeyset attempts to refresh the provider keyset from the
// upstream OIDC endpoints, assuming no cooldown is in effect.
//
// It returns the refreshed keyset, or the cached keyset if a cooldown
// is in effect. Every upstream access or format error degrades to the
// cached keyset; this never returns an error, so a provider outage
// cannot take down verification for tokens whose key is already
// cached.
func (s *Service) refreshKeyset(ctx context.Context) keystore.KeySet {
	// Fast path: we are in a cooldown from a previous refresh.
	keys, cooldown, err := s.store.Get(s.provider)
	if err != nil {
		s.reporter.Report(fmt.Sprintf(
			"OIDC provider %s keyset cache read failed: %v", s.provider, err))
		keys = keystore.KeySet{}
	}
	if cooldown {
		metrics.KeysetRefreshTotal.WithLabelValues(s.provider, "cooldown").Inc()
		return keys
	}

	discoveryURL := s.issuer + static.DiscoveryPath
	var conf struct {
		JWKSURI string `json:"jwks_uri"`
	}
	// A provider's configuration endpoint may be offline. Other
	// providers might still be online, so report and fall back instead
	// of failing the caller.
	if err := s.fetchJSON(ctx, discoveryURL, &conf); err != nil {
		metrics.KeysetRefreshTotal.WithLabelValues(s.provider, "config_error").Inc()
		s.reporter.Report(fmt.Sprintf(
			"OIDC provider %s failed to return configuration %s: %v", s.provider, discoveryURL, err))
		return keys
	}

	// A valid OIDC configuration MUST have a jwks_uri, but we defend
	// against its absence anyways.
	if conf.JWKSURI == "" {
		metrics.KeysetRefreshTotal.WithLabelValues(s.provider, "config_malformed").Inc()
		s.reporter.Report(fmt.Sprintf(
			"OIDC provider %s is returning malformed configuration (no jwks_uri)", s.provider))
		return keys
	}

	var jwks struct {
		Keys []jose.JSONWebKey `json:"keys"`
	}
	if err := s.fetchJSON(ctx, conf.JWKSURI, &jwks); err != nil {
		metrics.KeysetRefreshTotal.WithLabelValues(s.provider, "jwks_error").Inc()
		s.reporter.Report(fmt.Sprintf(
			"OIDC provider %s failed to return JWKS JSON %s: %v", s.provider, conf.JWKSURI, err))
		return keys
	}

	// A provider should never publish an empty keyset. Treat one as a
	// short-lived upstream error rather than caching it over a
	// previous known-good set.
	if len(jwks.Keys) == 0 {
		metrics.KeysetRefreshTotal.WithLabelValues(s.provider, "empty_keyset").Inc()
		s.reporter.Report(fmt.Sprintf(
			"OIDC provider %s returned JWKS JSON but no keys", s.provider))
		return keys
	}

	fresh := keystore.KeySet{}
	for _, k := range jwks.Keys {
		fresh[k.KeyID] = k
	}

	if err := s.store.Put(s.provider, fresh); err != nil {
		// The fetched keys are still usable for this request even if
		// the shared cache write failed.
		metrics.KeysetRefreshTotal.WithLabelValues(s.provider, "store_error").Inc()
		s.reporter.Report(fmt.Sprintf(
			"OIDC provider %s keyset cache write failed: %v", s.provider, err))
		return fresh
	}

	metrics.KeysetRefreshTotal.WithLabelValues(s.provider, "ok").Inc()
	return fresh
}

// fetchJSON GETs the URL and decodes the body into v. The response
// body is capped at static.MaxJWKSResponseSize.
func (s *Service) fetchJSON(ctx context.Context, url string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return json.NewDecoder(io.LimitReader(resp.Body, static.MaxJWKSResponseSize)).Decode(v)
}

// getKey returns the JWK for the given key id, refreshing the cached
// keyset once on a miss. A key rotated upstream becomes visible only
// after the refresh; a second miss is a typed not-found.
func (s *Service) getKey(ctx context.Context, keyID string) (*jose.JSONWebKey, error) {
	keys, _, err := s.store.Get(s.provider)
	if err != nil {
		s.reporter.Report(fmt.Sprintf(
			"OIDC provider %s keyset cache read failed: %v", s.provider, err))
		keys = keystore.KeySet{}
	}

	k, ok := keys[keyID]
	if !ok {
		keys = s.refreshKeyset(ctx)
		k, ok = keys[keyID]
	}
	if !ok {
		metrics.KeyLookupMissesTotal.WithLabelValues(s.provider).Inc()
		log.WithFields(log.Fields{
			"provider": s.provider,
			"kid":      keyID,
		}).Info("key id not found in provider keyset")
		return nil, errKeyNotFound
	}

	return &k, nil
}

// keyForToken returns a JWK suitable for verifying the given token.
// The token is not verified at this point; reading the kid header is a
// precondition of verification, not a trust decision.
func (s *Service) keyForToken(ctx context.Context, tok *jwt.JSONWebToken) (*jose.JSONWebKey, error) {
	if len(tok.Headers) != 1 {
		return nil, errMalformedToken
	}
	kid := tok.Headers[0].KeyID
	if kid == "" {
		return nil, fmt.Errorf("%w: no kid", errMalformedToken)
	}
	return s.getKey(ctx, kid)
}
