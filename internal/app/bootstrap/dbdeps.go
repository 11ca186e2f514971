// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/edusphere/console/internal/app/store/audit"
	"github.com/edusphere/console/internal/edusphere"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds the console's backend dependencies. The EduSphere REST
// client is the primary backend; Mongo is an optional audit sink and may
// be nil.
type DBDeps struct {
	API *edusphere.Client

	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
	AuditStore    *audit.Store
}
