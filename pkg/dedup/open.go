package dedup

import (
	"context"
	"slices"

	"github.com/matzehuels/trigen/pkg/errors"
)

// Backends lists the supported store backends.
var Backends = []string{"memory", "badger", "redis", "mongo"}

// Options selects and configures a store backend.
type Options struct {
	Backend  string `toml:"backend"`
	Path     string `toml:"path"`     // badger
	Addr     string `toml:"addr"`     // redis
	Prefix   string `toml:"prefix"`   // redis
	URI      string `toml:"uri"`      // mongo
	Database string `toml:"database"` // mongo
}

// Validate checks the backend name and its required settings.
func (o Options) Validate() error {
	if !slices.Contains(Backends, o.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q (available: %v)", o.Backend, Backends)
	}
	switch o.Backend {
	case "redis":
		if o.Addr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "redis store needs addr")
		}
	case "mongo":
		if o.URI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "mongo store needs uri")
		}
	}
	return nil
}

// Open returns the factory selected by o.
func Open(ctx context.Context, o Options) (StoreFactory, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	var (
		f   StoreFactory
		err error
	)
	switch o.Backend {
	case "memory":
		return NewMemoryFactory(), nil
	case "badger":
		f, err = OpenBadger(o.Path)
	case "redis":
		f, err = OpenRedis(ctx, o.Addr, o.Prefix)
	case "mongo":
		f, err = OpenMongo(ctx, o.URI, o.Database)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "open %s store", o.Backend)
	}
	return f, nil
}
