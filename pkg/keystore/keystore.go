// Package keystore implements a namespacing and expiration layer over a
// synchronous string-keyed storage backend. Every entry is written under a
// fully-qualified key derived from the current domain, and may carry a
// companion key holding an absolute expiration instant. Expired entries are
// purged lazily on the next read; there is no background sweep.
package keystore

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/sanchis/localit/pkg/storage"
)

var nopLogger = zap.NewNop()

// BackendType selects one of the two backends a Store was built with.
type BackendType string

const (
	TypePrimary   BackendType = "primary"
	TypeSecondary BackendType = "secondary"
)

type Options struct {
	// Primary backend. Cannot be nil.
	Primary storage.Backend

	// Secondary backend. Optional. Falls back to Primary.
	Secondary storage.Backend

	// Domain is the initial namespace prefix. Default is "".
	Domain string

	// Logger is the *zap.Logger for diagnostics. Misuse (empty keys,
	// malformed expiration specs) is reported here instead of through
	// error returns. A nil Logger will disable logging.
	Logger *zap.Logger

	// Metrics registers the store counters. Optional.
	Metrics prometheus.Registerer
}

// Config carries the options recognized by Store.Config.
type Config struct {
	Domain string      `yaml:"domain"`
	Type   BackendType `yaml:"type"`
}

// Store groups keys under a mutable domain prefix and delegates all reads
// and writes to the selected backend. The (domain, backend) pair is guarded
// by a single mutex so every operation observes a consistent selection.
type Store struct {
	primary   storage.Backend
	secondary storage.Backend
	logger    *zap.Logger
	metrics   *storeMetrics

	mu      sync.Mutex
	domain  string
	backend storage.Backend
}

func New(opts Options) (*Store, error) {
	if opts.Primary == nil {
		return nil, errors.New("nil primary backend")
	}
	if opts.Secondary == nil {
		opts.Secondary = opts.Primary
	}
	if opts.Logger == nil {
		opts.Logger = nopLogger
	}
	return &Store{
		primary:   opts.Primary,
		secondary: opts.Secondary,
		logger:    opts.Logger,
		metrics:   newStoreMetrics(opts.Metrics),
		domain:    opts.Domain,
		backend:   opts.Primary,
	}, nil
}

// Config atomically replaces the domain and the backend selection. An
// absent domain resets the prefix to "", it is not left unchanged. Any
// Type other than TypeSecondary selects the primary backend.
func (s *Store) Config(cfg Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.domain = cfg.Domain
	if cfg.Type == TypeSecondary {
		s.backend = s.secondary
	} else {
		s.backend = s.primary
	}
}

// SetDomain replaces the domain prefix. The backend selection is untouched.
func (s *Store) SetDomain(domain string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.domain = domain
}

// Set stores value under key, JSON-encoding everything but plain strings.
// An optional expiration spec ("90s", "15m", "12h", "7d") attaches an
// expiration instant to the entry. An empty key or an unencodable value
// aborts the write with a logged warning; a malformed expiration spec is
// logged and skipped after the value has already been written.
func (s *Store) Set(key string, value any, expiration ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(key) == 0 {
		s.logger.Warn("set called with empty key")
		return nil
	}
	raw, err := encodeValue(value)
	if err != nil {
		s.logger.Warn("unencodable value", zap.String("key", key), zap.Error(err))
		return nil
	}
	if err := s.backend.SetItem(s.fullKey(key), raw); err != nil {
		return err
	}
	s.metrics.writes.Inc()
	if len(expiration) > 0 && len(expiration[0]) > 0 {
		return s.setExpiration(key, expiration[0])
	}
	return nil
}

// Get returns the value stored under key, or nil when the key is absent or
// its expiration instant has passed. Reading an expired entry removes both
// the value and its expiration key as a side effect.
func (s *Store) Get(key string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(key)
}

func (s *Store) get(key string) (any, error) {
	hasExp, err := s.hasExpirationDate(key)
	if err != nil {
		return nil, err
	}
	if hasExp {
		expired, err := s.hasExpired(key)
		if err != nil {
			return nil, err
		}
		if expired {
			if err := s.remove(key); err != nil {
				return nil, err
			}
			s.metrics.expiredPurges.Inc()
			s.metrics.misses.Inc()
			return nil, nil
		}
	}

	raw, ok, err := s.backend.GetItem(s.fullKey(key))
	if err != nil {
		return nil, err
	}
	if !ok {
		s.metrics.misses.Inc()
		return nil, nil
	}
	s.metrics.hits.Inc()
	return decodeValue(raw), nil
}

// Remove deletes key and its expiration key, whether or not they exist.
func (s *Store) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remove(key)
}

func (s *Store) remove(key string) error {
	if err := s.backend.RemoveItem(s.fullKey(key)); err != nil {
		return err
	}
	return s.backend.RemoveItem(s.expirationKey(key))
}

// GetAndRemove returns the value stored under key and deletes the entry.
func (s *Store) GetAndRemove(key string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.get(key)
	if err != nil {
		return nil, err
	}
	return v, s.remove(key)
}

// ClearDomain removes every key containing the "<domain>_" token. The
// current domain is used when none is given. Note this is a substring
// match, not a prefix match: a key containing the token anywhere is
// removed, expiration keys and unrelated lookalikes included. Kept for
// compatibility with existing databases.
func (s *Store) ClearDomain(domain ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.domain
	if len(domain) > 0 {
		d = domain[0]
	}
	keys, err := s.backend.Keys()
	if err != nil {
		return err
	}
	token := d + "_"
	for _, k := range keys {
		if strings.Contains(k, token) {
			if err := s.backend.RemoveItem(k); err != nil {
				return err
			}
		}
	}
	return nil
}

// Keys returns every fully-qualified key present in the selected backend,
// expiration keys included.
func (s *Store) Keys() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Keys()
}

// Bust clears the backend entirely, regardless of domain.
func (s *Store) Bust() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Clear()
}

// fullKey is "<domain>_<key>". The underscore is always present, so an
// empty domain yields "_<key>". Underscores in the domain or the key are
// not escaped; differently-split pairs can collide.
func (s *Store) fullKey(key string) string {
	return s.domain + "_" + key
}

func (s *Store) expirationKey(key string) string {
	return s.fullKey(key) + expirationSuffix
}

func encodeValue(v any) (string, error) {
	if str, ok := v.(string); ok {
		return str, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// decodeValue interprets raw as JSON, falling back to the raw string for
// anything that does not parse (plain strings are stored unencoded).
func decodeValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}
