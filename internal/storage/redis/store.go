// Package redis stores proxy records in Redis hashes.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/R3E-Network/nft_layer/internal/storage"
)

const (
	defaultPrefix = "nft"
	fieldImpl     = "implementation"
	fieldState    = "state"
	fieldCreated  = "created_at"
	fieldUpdated  = "updated_at"
)

// Store implements storage.Store. Each proxy is a hash at
// <prefix>:proxy:<address>; <prefix>:proxies is a sorted set ordered by
// creation time.
type Store struct {
	client goredis.UniversalClient
	prefix string
}

var _ storage.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithPrefix namespaces every key.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// New wraps an existing client.
func New(client goredis.UniversalClient, opts ...Option) *Store {
	s := &Store{client: client, prefix: defaultPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dial connects to addr and pings it.
func Dial(ctx context.Context, addr, password string, db int, opts ...Option) (*Store, error) {
	client := goredis.NewClient(&goredis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	return New(client, opts...), nil
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) proxyKey(address string) string {
	return s.prefix + ":proxy:" + address
}

func (s *Store) indexKey() string {
	return s.prefix + ":proxies"
}

func (s *Store) Load(ctx context.Context, address string) (storage.Record, error) {
	fields, err := s.client.HGetAll(ctx, s.proxyKey(address)).Result()
	if err != nil {
		return storage.Record{}, fmt.Errorf("load proxy %s: %w", address, err)
	}
	if len(fields) == 0 {
		return storage.Record{}, storage.ErrNotFound
	}
	return recordFromHash(address, fields)
}

// Save writes the hash atomically. created_at is only set on first write.
func (s *Store) Save(ctx context.Context, rec storage.Record) error {
	now := time.Now().UTC()
	created := rec.CreatedAt
	if created.IsZero() {
		created = now
	}
	key := s.proxyKey(rec.Address)

	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HSetNX(ctx, key, fieldCreated, created.Format(time.RFC3339Nano))
		pipe.HSet(ctx, key,
			fieldImpl, rec.Implementation,
			fieldState, string(rec.State),
			fieldUpdated, now.Format(time.RFC3339Nano),
		)
		pipe.ZAddNX(ctx, s.indexKey(), &goredis.Z{Score: float64(created.UnixNano()), Member: rec.Address})
		return nil
	})
	if err != nil {
		return fmt.Errorf("save proxy %s: %w", rec.Address, err)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]storage.Record, error) {
	addresses, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list proxies: %w", err)
	}

	out := make([]storage.Record, 0, len(addresses))
	for _, addr := range addresses {
		rec, err := s.Load(ctx, addr)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func recordFromHash(address string, fields map[string]string) (storage.Record, error) {
	rec := storage.Record{
		Address:        address,
		Implementation: fields[fieldImpl],
		State:          []byte(fields[fieldState]),
	}
	var err error
	if v := fields[fieldCreated]; v != "" {
		if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, v); err != nil {
			return storage.Record{}, fmt.Errorf("proxy %s: bad %s: %w", address, fieldCreated, err)
		}
	}
	if v := fields[fieldUpdated]; v != "" {
		if rec.UpdatedAt, err = time.Parse(time.RFC3339Nano, v); err != nil {
			return storage.Record{}, fmt.Errorf("proxy %s: bad %s: %w", address, fieldUpdated, err)
		}
	}
	return rec, nil
}
