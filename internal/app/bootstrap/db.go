// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"github.com/edusphere/console/internal/app/store/audit"
	"github.com/edusphere/console/internal/edusphere"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ConnectDB builds the EduSphere API client and, when configured, the
// MongoDB audit sink. The console starts fine with the backend down; every
// page resolves its own calls.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	deps := DBDeps{
		API: edusphere.New(appCfg.APIBaseURL, logger),
	}
	logger.Info("edusphere backend configured", zap.String("base_url", appCfg.APIBaseURL))

	if appCfg.MongoURI == "" {
		return deps, nil
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(appCfg.MongoURI))
	if err != nil {
		return DBDeps{}, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return DBDeps{}, err
	}

	deps.MongoClient = client
	deps.MongoDatabase = client.Database(appCfg.MongoDatabase)
	deps.AuditStore = audit.New(deps.MongoDatabase)
	logger.Info("audit sink connected", zap.String("database", appCfg.MongoDatabase))

	return deps, nil
}

// EnsureSchema creates the audit indexes when a sink is configured.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.AuditStore == nil {
		return nil
	}
	if err := deps.AuditStore.EnsureIndexes(ctx); err != nil {
		logger.Error("audit index creation failed", zap.Error(err))
		return err
	}
	return nil
}
