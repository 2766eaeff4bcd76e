package bolt_storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang/snappy"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

var nopLogger = zap.NewNop()

// Value layout: 1 marker byte (rawValue or snappyValue) followed by the
// value bytes. The marker is always written so that a database created
// with Compress enabled stays readable after reopening without it.
const (
	rawValue    = 0x00
	snappyValue = 0x01
)

type BoltStorageOpts struct {
	// Path of the database file. Cannot be empty.
	Path string

	// Bucket holding all entries. Default is "localit".
	Bucket string

	// Compress stores values snappy-compressed.
	Compress bool

	// Logger is the *zap.Logger for this BoltStorage.
	// A nil Logger will disable logging.
	Logger *zap.Logger
}

func (opts *BoltStorageOpts) Init() error {
	if len(opts.Path) == 0 {
		return errors.New("empty database path")
	}
	if len(opts.Bucket) == 0 {
		opts.Bucket = "localit"
	}
	if opts.Logger == nil {
		opts.Logger = nopLogger
	}
	return nil
}

// BoltStorage is a storage.Backend persisted in a single bbolt bucket.
type BoltStorage struct {
	opts   BoltStorageOpts
	db     *bolt.DB
	bucket []byte
}

func NewBoltStorage(opts BoltStorageOpts) (*BoltStorage, error) {
	if err := opts.Init(); err != nil {
		return nil, err
	}

	db, err := bolt.Open(opts.Path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	bucket := []byte(opts.Bucket)
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init bucket: %w", err)
	}
	return &BoltStorage{opts: opts, db: db, bucket: bucket}, nil
}

func (s *BoltStorage) GetItem(key string) (string, bool, error) {
	var value string
	var ok bool
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(s.bucket).Get([]byte(key))
		if v == nil {
			return nil
		}
		decoded, err := decodeValue(v)
		if err != nil {
			return fmt.Errorf("corrupted value for key %s: %w", key, err)
		}
		value = decoded
		ok = true
		return nil
	})
	if err != nil {
		return "", false, err
	}
	return value, ok, nil
}

func (s *BoltStorage) SetItem(key, value string) error {
	buf := encodeValue(value, s.opts.Compress)
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), buf)
	})
}

func (s *BoltStorage) RemoveItem(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(key))
	})
}

func (s *BoltStorage) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(s.bucket); err != nil {
			return err
		}
		_, err := tx.CreateBucket(s.bucket)
		return err
	})
}

func (s *BoltStorage) Keys() ([]string, error) {
	var keys []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (s *BoltStorage) Len() int {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(s.bucket).Stats().KeyN
		return nil
	})
	if err != nil {
		s.opts.Logger.Error("bucket stats", zap.Error(err))
		return 0
	}
	return n
}

func (s *BoltStorage) Close() error {
	return s.db.Close()
}

func encodeValue(value string, compress bool) []byte {
	if compress {
		encoded := snappy.Encode(nil, []byte(value))
		buf := make([]byte, 1+len(encoded))
		buf[0] = snappyValue
		copy(buf[1:], encoded)
		return buf
	}
	buf := make([]byte, 1+len(value))
	buf[0] = rawValue
	copy(buf[1:], value)
	return buf
}

func decodeValue(b []byte) (string, error) {
	if len(b) < 1 {
		return "", errors.New("value is too short")
	}
	switch b[0] {
	case rawValue:
		return string(b[1:]), nil
	case snappyValue:
		decoded, err := snappy.Decode(nil, b[1:])
		if err != nil {
			return "", err
		}
		return string(decoded), nil
	default:
		return "", fmt.Errorf("unknown value marker %#x", b[0])
	}
}
