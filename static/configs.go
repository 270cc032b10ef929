// Package static contains static information for the trustpub service.
package static

import "time"

// Constants used by the trustpub service and the automated clients
// presenting OIDC identity tokens to it.
const (
	// KeysetCacheNamespace prefixes every Redis key holding a cached
	// provider keyset. The cooldown marker for a provider lives at
	// "{namespace}/{provider}/timeout".
	KeysetCacheNamespace = "/trustpub/oidc/jwks"

	// KeysetCooldownSecs is the lifetime of the cooldown marker set on
	// every keyset store. While the marker exists, no upstream refresh
	// is attempted for that provider.
	KeysetCooldownSecs = 60

	// VerifyLeeway is the clock-skew tolerance applied in both
	// directions to iat, nbf and exp during token verification.
	VerifyLeeway = 30 * time.Second

	// FetchTimeout bounds each upstream discovery or JWKS fetch so a
	// stalled provider cannot block verification requests.
	FetchTimeout = 10 * time.Second

	// MaxJWKSResponseSize limits the size of upstream JWKS and
	// discovery responses read into memory.
	MaxJWKSResponseSize = 1 << 20 // 1 MiB

	// TokenAlgorithm is the only signing algorithm accepted from
	// registered providers. The token header is checked against it
	// before any cryptographic work to rule out algorithm confusion.
	TokenAlgorithm = "RS256"

	// AudienceTrustpub is the audience value every identity token must
	// carry to be accepted by this service.
	AudienceTrustpub = "trustpub"

	BackoffInitialInterval = time.Second
	BackoffMaxInterval     = 30 * time.Second
	BackoffMaxElapsedTime  = 2 * time.Minute
)

// DiscoveryPath is the well-known suffix appended to an issuer URL to
// locate its OIDC configuration document.
const DiscoveryPath = "/.well-known/openid-configuration"
