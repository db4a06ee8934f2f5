package keycloak

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrKeyNotFound is returned when the realm publishes no key with the
	// token's key ID.
	ErrKeyNotFound = errors.New("keycloak: signing key not found")

	// ErrKeySetUnavailable wraps failures to fetch the realm's key set.
	ErrKeySetUnavailable = errors.New("keycloak: key set unavailable")
)

// DefaultKeyTTL is how long fetched signing keys are trusted.
const DefaultKeyTTL = 10 * time.Minute

// KeySet caches the RSA signing keys a realm publishes at its certs
// endpoint.
//
// Contract:
//   - Concurrency: safe for concurrent use; concurrent refreshes share one
//     request.
//   - Errors: when a refresh fails, keys from earlier fetches are still
//     served.
type KeySet struct {
	url    string
	client *http.Client
	ttl    time.Duration

	mu      sync.RWMutex
	keys    map[string]*rsa.PublicKey
	fetched time.Time
	group   singleflight.Group
}

// NewKeySet creates a key set for a JWKS URL. A zero ttl means
// DefaultKeyTTL; a nil client means http.DefaultClient.
func NewKeySet(url string, client *http.Client, ttl time.Duration) *KeySet {
	if ttl <= 0 {
		ttl = DefaultKeyTTL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &KeySet{url: url, client: client, ttl: ttl, keys: make(map[string]*rsa.PublicKey)}
}

// Key returns the key with the given ID. An empty ID matches only while
// the realm has published a single key. An unknown ID forces a refresh even
// while the cache is fresh, so rotated keys are picked up.
func (s *KeySet) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	s.mu.RLock()
	fresh := time.Since(s.fetched) < s.ttl
	key := s.lookupLocked(kid)
	n := len(s.keys)
	s.mu.RUnlock()

	if kid == "" && n > 1 {
		return nil, fmt.Errorf("%w: token has no kid and the realm publishes %d keys", ErrKeyNotFound, n)
	}
	if fresh && key != nil {
		return key, nil
	}

	_, err, _ := s.group.Do("refresh", func() (any, error) {
		return nil, s.refresh(ctx)
	})

	s.mu.RLock()
	key = s.lookupLocked(kid)
	s.mu.RUnlock()

	switch {
	case key != nil:
		return key, nil
	case err != nil:
		return nil, err
	default:
		return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, kid)
	}
}

// Keyfunc adapts the key set to jwt.Parse.
func (s *KeySet) Keyfunc(ctx context.Context) jwt.Keyfunc {
	return func(token *jwt.Token) (any, error) {
		kid, _ := token.Header["kid"].(string)
		return s.Key(ctx, kid)
	}
}

func (s *KeySet) lookupLocked(kid string) *rsa.PublicKey {
	if kid != "" {
		return s.keys[kid]
	}
	if len(s.keys) != 1 {
		return nil
	}
	for _, key := range s.keys {
		return key
	}
	return nil
}

// refresh replaces the cached keys. Keys missing from the new set are kept
// so tokens signed before a rotation still verify.
func (s *KeySet) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrKeySetUnavailable, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrKeySetUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrKeySetUnavailable, resp.StatusCode)
	}

	var set struct {
		Keys []jwk `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return fmt.Errorf("%w: decode: %w", ErrKeySetUnavailable, err)
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, k := range set.Keys {
		if k.Kty != "RSA" || (k.Use != "" && k.Use != "sig") {
			continue
		}
		pub, err := k.rsaKey()
		if err != nil {
			continue
		}
		keys[k.Kid] = pub
	}

	s.mu.Lock()
	for kid, key := range keys {
		s.keys[kid] = key
	}
	s.fetched = time.Now()
	s.mu.Unlock()
	return nil
}

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func (k jwk) rsaKey() (*rsa.PublicKey, error) {
	n, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil || len(n) == 0 {
		return nil, fmt.Errorf("keycloak: bad modulus in key %q", k.Kid)
	}
	e, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil || len(e) == 0 {
		return nil, fmt.Errorf("keycloak: bad exponent in key %q", k.Kid)
	}
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(n),
		E: int(new(big.Int).SetBytes(e).Int64()),
	}, nil
}
