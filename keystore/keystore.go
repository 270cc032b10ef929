// Package keystore reads and writes cached OIDC provider keysets in
// Redis. The cache is shared by every trustpub instance; each provider
// has an independent record and a short-lived cooldown marker that
// rate-limits upstream refresh attempts.
package keystore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"
	"gopkg.in/square/go-jose.v2"

	"github.com/trustpub/trustpub/metrics"
	"github.com/trustpub/trustpub/static"
)

// KeySet maps a key id to its published JWK. A keyset is replaced
// wholesale on refresh, never merged.
type KeySet map[string]jose.JSONWebKey

// Client reads and writes provider keysets in Redis.
type Client struct {
	pool *redis.Pool
}

// NewClient returns a new keyset cache client backed by the given
// Redis pool.
func NewClient(pool *redis.Pool) *Client {
	return &Client{pool}
}

// keysetKey returns the Redis key holding the keyset for a provider.
func keysetKey(provider string) string {
	return fmt.Sprintf("%s/%s", static.KeysetCacheNamespace, provider)
}

// cooldownKey returns the Redis key holding the cooldown marker for a
// provider.
func cooldownKey(provider string) string {
	return keysetKey(provider) + "/timeout"
}

// Put stores the keyset for the given provider using `SET key value`
// and (re)sets the cooldown marker with `SETEX key 60 value`. Any
// previously stored keyset is overwritten unconditionally.
func (c *Client) Put(provider string, keys KeySet) error {
	t := time.Now()
	conn := c.pool.Get()
	defer conn.Close()

	b, err := json.Marshal(keys)
	if err != nil {
		metrics.KeystoreRequestDuration.WithLabelValues("put", "marshal error").Observe(time.Since(t).Seconds())
		return err
	}

	if _, err = conn.Do("SET", keysetKey(provider), b); err != nil {
		metrics.KeystoreRequestDuration.WithLabelValues("put", "SET error").Observe(time.Since(t).Seconds())
		return err
	}

	if _, err = conn.Do("SETEX", cooldownKey(provider), static.KeysetCooldownSecs, "placeholder"); err != nil {
		metrics.KeystoreRequestDuration.WithLabelValues("put", "SETEX error").Observe(time.Since(t).Seconds())
		return err
	}

	metrics.KeystoreRequestDuration.WithLabelValues("put", "OK").Observe(time.Since(t).Seconds())
	return nil
}

// Get returns the last stored keyset for the given provider and
// whether its cooldown marker currently exists. A cache miss is not an
// error; it is reported as an empty keyset.
func (c *Client) Get(provider string) (KeySet, bool, error) {
	t := time.Now()
	conn := c.pool.Get()
	defer conn.Close()

	keys := KeySet{}
	b, err := redis.Bytes(conn.Do("GET", keysetKey(provider)))
	switch err {
	case nil:
		if err = json.Unmarshal(b, &keys); err != nil {
			metrics.KeystoreRequestDuration.WithLabelValues("get", "unmarshal error").Observe(time.Since(t).Seconds())
			return KeySet{}, false, err
		}
	case redis.ErrNil:
		// No keyset stored yet.
	default:
		metrics.KeystoreRequestDuration.WithLabelValues("get", "GET error").Observe(time.Since(t).Seconds())
		return KeySet{}, false, err
	}

	cooldown, err := redis.Bool(conn.Do("EXISTS", cooldownKey(provider)))
	if err != nil {
		metrics.KeystoreRequestDuration.WithLabelValues("get", "EXISTS error").Observe(time.Since(t).Seconds())
		return keys, false, err
	}

	metrics.KeystoreRequestDuration.WithLabelValues("get", "OK").Observe(time.Since(t).Seconds())
	return keys, cooldown, nil
}
