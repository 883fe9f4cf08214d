// Package database provides the persistent key-value store backing the
// identity provider and the shopping list. Values are opaque strings,
// usually JSON documents.
package database

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

// Store is a string key-value store. Get reports a missing key with
// ok == false and a nil error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}

var ErrUnknownBackend = errors.New("unknown store backend")

func ValidBackend(name string) bool {
	switch strings.ToLower(name) {
	case BackendSQLite, BackendRedis, BackendMongo, BackendMemory:
		return true
	}
	return false
}

type Options struct {
	Backend       string
	SQLitePath    string
	RedisAddr     string
	RedisPassword string `json:"-"`
	RedisDB       int
	MongoURI      string
}

// MarshalJSON hides the redis password and any password in the mongo URI.
func (o Options) MarshalJSON() ([]byte, error) {
	type options Options
	out := options(o)
	out.MongoURI = redactURI(o.MongoURI)
	return json.Marshal(out)
}

func redactURI(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "(unparsable uri)"
	}
	return u.Redacted()
}

// Open connects to the backend named in opts.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(opts.Backend) {
	case BackendSQLite:
		return NewSQLiteStore(opts.SQLitePath)
	case BackendRedis:
		return NewRedisStore(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
	case BackendMongo:
		return NewMongoStore(ctx, opts.MongoURI)
	case BackendMemory:
		return NewMemoryStore(), nil
	}
	return nil, errors.Wrapf(ErrUnknownBackend, "backend: %q", opts.Backend)
}
