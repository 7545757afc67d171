package database

import (
	"context"
	"errors"
	"fmt"
	"io"

	"taskdesk/config"
	"taskdesk/utilities"
)

// ErrUnknownDriver é retornado quando STORAGE_DRIVER não corresponde a nenhum backend.
var ErrUnknownDriver = errors.New("unknown storage driver")

// KV é o armazenamento chave-valor local usado pelos stores. Os valores são texto JSON.
type KV interface {
	// Get devolve ok=false quando a chave não existe.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	// Remove não falha para chaves inexistentes.
	Remove(ctx context.Context, key string) error
}

type Store interface {
	KV
	io.Closer
}

// Open abre o backend escolhido em cfg.StorageDriver.
func Open(cfg *config.Config) (Store, error) {
	utilities.LogDebug("Abrindo armazenamento %q em %s", cfg.StorageDriver, cfg.StoragePath)

	switch cfg.StorageDriver {
	case "memory":
		return NewMemory(), nil
	case "file", "":
		return NewFile(cfg.StoragePath)
	case "sqlite":
		return OpenSQLite(cfg.StoragePath)
	case "postgres":
		return ConnectPostgres(cfg.DB)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, cfg.StorageDriver)
	}
}
