// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/studydesk/internal/app/store/kv"
	"github.com/dalemusser/studydesk/internal/app/system/contentgen"
	"github.com/dalemusser/studydesk/internal/app/system/ratelimit"
	"github.com/dalemusser/studydesk/internal/app/system/sessionhub"
	"github.com/dalemusser/studydesk/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
// The Mongo fields are nil when storage_type is memory.
type DBDeps struct {
	StudyDeskMongoClient   *mongo.Client
	StudyDeskMongoDatabase *mongo.Database

	Store   kv.Store
	Hub     *sessionhub.Hub
	Content contentgen.Service

	Cleanup        *workers.SessionCleanup
	ContentLimiter *ratelimit.Limiter
	LoginLimiter   *ratelimit.LoginLimiter
}
