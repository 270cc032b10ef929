package oidc

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/m-lab/go/testingx"
	"gopkg.in/square/go-jose.v2"
	"gopkg.in/square/go-jose.v2/jwt"

	"github.com/trustpub/trustpub/keystore"
)

// fakeStore is an in-memory KeysetStore with scriptable failures.
type fakeStore struct {
	keys     keystore.KeySet
	cooldown bool
	getErr   error
	putErr   error
	gets     int
	puts     int
}

func (f *fakeStore) Put(provider string, keys keystore.KeySet) error {
	f.puts++
	if f.putErr != nil {
		return f.putErr
	}
	f.keys = keys
	f.cooldown = true
	return nil
}

func (f *fakeStore) Get(provider string) (keystore.KeySet, bool, error) {
	f.gets++
	if f.getErr != nil {
		return keystore.KeySet{}, false, f.getErr
	}
	if f.keys == nil {
		return keystore.KeySet{}, f.cooldown, nil
	}
	return f.keys, f.cooldown, nil
}

// fakeReporter collects reported messages.
type fakeReporter struct {
	messages []string
}

func (f *fakeReporter) Report(message string) {
	f.messages = append(f.messages, message)
}

// fakeProvider answers VerifyClaims with a fixed result.
type fakeProvider struct {
	name   string
	verify bool
}

func (f *fakeProvider) Name() string                     { return f.name }
func (f *fakeProvider) VerifyClaims(_ SignedClaims) bool { return f.verify }

// fakeFinder returns its configured provider for every issuer.
type fakeFinder struct {
	provider Provider
}

func (f *fakeFinder) FindByIssuer(_ string, _ SignedClaims) Provider {
	return f.provider
}

// testKey generates an RSA keypair, returning the public JWK under the
// given kid and a signer for the private half.
func testKey(t *testing.T, kid string) (jose.JSONWebKey, jose.Signer) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	testingx.Must(t, err, "failed to generate test key")

	pub := jose.JSONWebKey{Key: &priv.PublicKey, KeyID: kid, Algorithm: "RS256", Use: "sig"}
	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.RS256, Key: jose.JSONWebKey{Key: priv, KeyID: kid}},
		(&jose.SignerOptions{}).WithType("JWT"))
	testingx.Must(t, err, "failed to create signer")
	return pub, signer
}

// validClaims returns a standard claim set that verifies against the
// given issuer and the trustpub audience.
func validClaims(issuer string) jwt.Claims {
	now := time.Now()
	return jwt.Claims{
		Issuer:    issuer,
		Subject:   "repo:owner/name",
		Audience:  jwt.Audience{"trustpub"},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Expiry:    jwt.NewNumericDate(now.Add(5 * time.Minute)),
	}
}

// signToken serializes a token carrying the standard and extra claims.
func signToken(t *testing.T, signer jose.Signer, std jwt.Claims, extra map[string]interface{}) string {
	t.Helper()
	builder := jwt.Signed(signer).Claims(std)
	if extra != nil {
		builder = builder.Claims(extra)
	}
	raw, err := builder.CompactSerialize()
	testingx.Must(t, err, "failed to sign token")
	return raw
}
