// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/quickclass/internal/app/store/audit"
	blockstore "github.com/dalemusser/quickclass/internal/app/store/blocks"
	classsetstore "github.com/dalemusser/quickclass/internal/app/store/classsets"
	userstore "github.com/dalemusser/quickclass/internal/app/store/users"
	"github.com/dalemusser/quickclass/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB opens the MongoDB client and verifies it with a ping.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize).
		SetAppName("quickclass")

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}

	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))
	return DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
	}, nil
}

// indexer is implemented by every store that owns indexes.
type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

// EnsureSchema creates the indexes every store relies on.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase
	stores := []struct {
		name string
		s    indexer
	}{
		{"class_sets", classsetstore.New(db)},
		{"blocks", blockstore.New(db)},
		{"users", userstore.New(db)},
		{"audit_events", audit.New(db)},
	}
	for _, st := range stores {
		if err := st.s.EnsureIndexes(ctx); err != nil {
			logger.Error("ensure indexes failed", zap.String("collection", st.name), zap.Error(err))
			return fmt.Errorf("ensure %s indexes: %w", st.name, err)
		}
	}
	logger.Info("indexes ensured", zap.Int("collections", len(stores)))
	return nil
}
