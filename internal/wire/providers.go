package wire

import (
	"context"
	"net/http"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	chathandler "moodfeed/internal/chat/handler"
	"moodfeed/internal/common"
	"moodfeed/internal/config"
	"moodfeed/internal/dbmongo"
	"moodfeed/internal/dbsql"
	"moodfeed/internal/events"
	"moodfeed/internal/feed"
	"moodfeed/internal/grpcserver"
	"moodfeed/internal/httpapi"
	"moodfeed/internal/media"
	"moodfeed/internal/social"
	"moodfeed/internal/thread"
	"moodfeed/internal/user"
)

// Application is everything cmd/moodfeed needs to run and shut down.
type Application struct {
	Config     *config.Config
	Log        *logrus.Logger
	HTTP       *http.Server
	GRPC       *grpcserver.Server
	Dispatcher *events.Dispatcher
}

// Store is the relational handle used by cmd/migrate.
type Store struct {
	Config *config.Config
	Log    *logrus.Logger
	DB     *gorm.DB
}

const eventSubjectPrefix = "moodfeed"

func ProvideDatabaseConnection(cfg *config.Config, log *logrus.Logger) (*gorm.DB, func(), error) {
	db, err := dbsql.Open(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := dbsql.Migrate(db); err != nil {
			_ = dbsql.Close(db)
			return nil, nil, err
		}
		log.Info("database migration completed")
	}
	cleanup := func() {
		if err := dbsql.Close(db); err != nil {
			log.WithError(err).Warn("failed to close database")
		}
	}
	return db, cleanup, nil
}

// ProvideMongo returns a nil client when media storage is disabled.
func ProvideMongo(cfg *config.Config, log *logrus.Logger) (*dbmongo.MongoClient, func(), error) {
	if !cfg.MongoDB.Enabled {
		log.Info("MongoDB disabled, media routes are not mounted")
		return nil, func() {}, nil
	}
	mc, err := dbmongo.NewMongoConnection(context.Background(), cfg)
	if err != nil {
		return nil, nil, err
	}
	log.WithField("database", cfg.MongoDB.Database).Info("connected to MongoDB")
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mc.Close(ctx); err != nil {
			log.WithError(err).Warn("failed to close MongoDB")
		}
	}
	return mc, cleanup, nil
}

// ProvideNATS returns a nil connection when NATS is disabled.
func ProvideNATS(cfg *config.Config, log *logrus.Logger) (*nats.Conn, func(), error) {
	if !cfg.NATS.Enabled {
		return nil, func() {}, nil
	}
	nc, err := events.NewNATSConnection(cfg.NATS, log)
	if err != nil {
		return nil, nil, err
	}
	return nc, func() {
		if err := nc.Drain(); err != nil {
			nc.Close()
		}
	}, nil
}

func ProvideDispatcher(cfg *config.Config, log *logrus.Logger, nc *nats.Conn) (*events.Dispatcher, func()) {
	d := events.NewDispatcher(cfg.Events.Workers, cfg.Events.BufferSize, log)
	d.Subscribe(events.NewLogObserver(log))
	if nc != nil {
		d.Subscribe(events.NewNATSObserver(nc, eventSubjectPrefix))
	}
	return d, d.Shutdown
}

func ProvideTokenManager(cfg *config.Config) *common.TokenManager {
	return common.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer)
}

func ProvideHealthCheck(db *gorm.DB) httpapi.HealthCheck {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

func ProvideMediaServer(mc *dbmongo.MongoClient, log *logrus.Logger) *media.Server {
	if mc == nil {
		return nil
	}
	return media.NewServer(dbmongo.NewMediaStorage(mc), log)
}

func ProvideRouter(
	auth *common.HTTPAuth,
	log *logrus.Logger,
	health httpapi.HealthCheck,
	users *user.Handler,
	socialHandler *social.Handler,
	feedHandlers *feed.FeedHandlers,
	threads *thread.Handler,
	chat *chathandler.ChatHandler,
	mediaServer *media.Server,
) *httpapi.Router {
	registrars := []httpapi.Registrar{users, socialHandler, feedHandlers, threads, chat}
	if mediaServer != nil {
		registrars = append(registrars, mediaServer)
	}
	return httpapi.NewRouter(auth, log, health, registrars...)
}
