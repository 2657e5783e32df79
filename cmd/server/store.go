package main

import (
	"context"

	"go-pos-ledger/internal/account"
	"go-pos-ledger/internal/config"
	"go-pos-ledger/internal/database"
	"go-pos-ledger/internal/ledger"

	"go.uber.org/zap"
)

// backend is everything the services need from a storage driver.
type backend interface {
	account.TenantStore
	ledger.ProductStore
	ledger.TransactionStore
}

type openedStore struct {
	store backend
	close func()
}

// openStore connects the configured driver and makes sure its schema or
// indexes exist.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (*openedStore, error) {
	switch cfg.StoreDriver {
	case config.DriverMySQL:
		db, err := database.ConnectMySQL(cfg.DBDSN, cfg.IsDev(), log)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(db); err != nil {
			return nil, err
		}
		return &openedStore{
			store: database.NewGormStore(db),
			close: func() {
				if sqlDB, err := db.DB(); err == nil {
					_ = sqlDB.Close()
				}
			},
		}, nil

	case config.DriverMemory:
		log.Warn("memory_store_in_use")
		return &openedStore{store: database.NewMemoryStore(), close: func() {}}, nil
	}

	client, err := database.ConnectMongo(ctx, cfg.ConnectionString, log)
	if err != nil {
		return nil, err
	}
	st := database.NewMongoStore(client.Database(cfg.MongoDatabase))
	if err := st.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return &openedStore{
		store: st,
		close: func() { _ = client.Disconnect(context.Background()) },
	}, nil
}
