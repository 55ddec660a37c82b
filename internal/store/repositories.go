package store

import (
	"context"

	"github.com/mlevkov/go-fin-keeper/internal/config"
	"github.com/mlevkov/go-fin-keeper/internal/logger"
)

type Repositories struct {
	UserRepository  UserRepository
	EntryRepository EntryRepository
}

// NewRepositories connects to the configured database, applies migrations,
// and wires all repositories on top of the shared connection.
func NewRepositories(ctx context.Context, cfg config.Storage, logger *logger.Logger) (*Repositories, error) {
	db, err := NewConnectPostgres(ctx, cfg.DB, logger)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(); err != nil {
		return nil, err
	}

	return &Repositories{
		UserRepository:  NewUserRepository(db, logger),
		EntryRepository: NewEntryRepository(db, logger),
	}, nil
}
