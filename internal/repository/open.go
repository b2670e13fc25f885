package repository

import (
	"context"
	"fmt"

	"userauth/internal/config"
	"userauth/internal/db"
)

// CloseFunc releases the resources behind a repository.
type CloseFunc func(ctx context.Context) error

// Open builds the user repository selected by cfg.StoreDriver.
func Open(ctx context.Context, cfg *config.Config) (UserRepository, CloseFunc, error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, err := db.NewMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		coll := client.Database(cfg.MongoDatabase).Collection(UsersCollection)
		if err := EnsureUserIndexes(ctx, coll); err != nil {
			_ = client.Disconnect(ctx)
			return nil, nil, err
		}
		return NewMongoUserRepository(coll), client.Disconnect, nil

	case config.StoreMySQL:
		gdb, err := db.NewMySQL(cfg.MySQLDSN)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func(context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		}
		return NewGormUserRepository(gdb), closeFn, nil

	case config.StoreMemory:
		return NewMemoryUserRepository(), func(context.Context) error { return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}
