package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/isdelr/blog-be/internal/database"
)

// UserStoreOptions selects and configures the credential store backend.
type UserStoreOptions struct {
	Backend       string // "sqlite" or "mongo"
	MongoURI      string
	MongoDatabase string
	BcryptCost    int
}

// OpenUserStore returns the configured credential store and a function that
// releases its connections. The SQLite store shares db; its closer is a no-op.
func OpenUserStore(ctx context.Context, db *sql.DB, opts UserStoreOptions) (UserServiceProvider, func(context.Context) error, error) {
	switch opts.Backend {
	case "", "sqlite":
		return NewUserService(db, opts.BcryptCost), func(context.Context) error { return nil }, nil
	case "mongo":
		client, err := database.NewMongo(ctx, opts.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		store, err := NewMongoUserService(ctx, client.Database(opts.MongoDatabase), opts.BcryptCost)
		if err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, err
		}
		return store, client.Disconnect, nil
	default:
		return nil, nil, fmt.Errorf("unknown user store %q", opts.Backend)
	}
}
