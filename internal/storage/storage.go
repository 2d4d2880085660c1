// Package storage provides the local key-value stores that keep history and
// usage stats between runs.
package storage

import (
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/thomas-vilte/promptforge/internal/config"
	domainErrors "github.com/thomas-vilte/promptforge/internal/errors"
	"github.com/thomas-vilte/promptforge/internal/ports"
)

var validKey = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Open builds the backend named in cfg. Relative or empty paths are resolved
// against dir, normally the config directory.
func Open(cfg config.StorageConfig, dir string) (ports.KVStore, error) {
	var (
		store ports.KVStore
		err   error
	)

	switch cfg.Backend {
	case config.StorageFile, "":
		path := cfg.Path
		if path == "" {
			path = "store"
		}
		store, err = NewFileStore(resolve(dir, path))
	case config.StorageSQLite:
		path := cfg.Path
		if path == "" {
			path = "promptforge.db"
		}
		store, err = NewSQLiteStore(resolve(dir, path))
	case config.StorageMemory:
		store = NewMemoryStore()
	default:
		err = fmt.Errorf("unsupported storage backend: %s", cfg.Backend)
	}

	if err != nil {
		return nil, domainErrors.ErrPersistence.WithError(err).WithContext("backend", cfg.Backend)
	}
	return store, nil
}

func resolve(dir, path string) string {
	if filepath.IsAbs(path) || dir == "" {
		return path
	}
	return filepath.Join(dir, path)
}

func checkKey(key string) error {
	if !validKey.MatchString(key) {
		return fmt.Errorf("invalid store key %q", key)
	}
	return nil
}
