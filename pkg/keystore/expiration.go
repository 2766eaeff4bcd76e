package keystore

import (
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const expirationSuffix = "_expiration_date"

// parseExpiration parses a "<number><unit>" spec where unit is one of
// s, m, h or d. A negative number is accepted and yields an instant in
// the past, expiring the entry immediately.
func parseExpiration(spec string) (time.Duration, error) {
	if len(spec) < 2 {
		return 0, fmt.Errorf("spec %q is too short", spec)
	}
	var unit time.Duration
	switch spec[len(spec)-1] {
	case 's':
		unit = time.Second
	case 'm':
		unit = time.Minute
	case 'h':
		unit = time.Hour
	case 'd':
		unit = 24 * time.Hour
	default:
		return 0, fmt.Errorf("unknown time unit %q", spec[len(spec)-1])
	}
	n, err := strconv.Atoi(spec[:len(spec)-1])
	if err != nil {
		return 0, fmt.Errorf("invalid amount in spec %q", spec)
	}
	return time.Duration(n) * unit, nil
}

// setExpiration writes the absolute expiration instant for key. A
// malformed spec is logged and skipped; the value written by the caller
// stays in place without an expiration.
func (s *Store) setExpiration(key, spec string) error {
	d, err := parseExpiration(spec)
	if err != nil {
		s.logger.Warn("invalid expiration spec", zap.String("key", key), zap.Error(err))
		return nil
	}
	at := time.Now().Add(d)
	return s.backend.SetItem(s.expirationKey(key), at.Format(time.RFC3339Nano))
}

// hasExpirationDate reports whether an expiration key exists for key.
// The stored instant is not interpreted.
func (s *Store) hasExpirationDate(key string) (bool, error) {
	_, ok, err := s.backend.GetItem(s.expirationKey(key))
	return ok, err
}

// hasExpired reports whether the expiration instant of key is strictly in
// the past. Callers must check hasExpirationDate first; an absent or
// unreadable instant reports false so a corrupt companion key never
// destroys a live value.
func (s *Store) hasExpired(key string) (bool, error) {
	raw, ok, err := s.backend.GetItem(s.expirationKey(key))
	if err != nil || !ok {
		return false, err
	}
	at, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		s.logger.Warn("unreadable expiration date", zap.String("key", key), zap.Error(err))
		return false, nil
	}
	return time.Now().After(at), nil
}
