//go:build wireinject
// +build wireinject

package wire

import (
	"github.com/google/wire"

	chathandler "moodfeed/internal/chat/handler"
	chatrepo "moodfeed/internal/chat/repository"
	chatservice "moodfeed/internal/chat/service"
	"moodfeed/internal/common"
	"moodfeed/internal/config"
	"moodfeed/internal/events"
	"moodfeed/internal/feed"
	"moodfeed/internal/grpcserver"
	"moodfeed/internal/httpapi"
	"moodfeed/internal/social"
	"moodfeed/internal/thread"
	"moodfeed/internal/user"
)

var infraSet = wire.NewSet(
	config.LoadConfig,
	common.NewLogger,
	ProvideDatabaseConnection,
)

var domainSet = wire.NewSet(
	ProvideTokenManager,
	common.NewHTTPAuth,
	common.NewValidator,
	ProvideNATS,
	ProvideDispatcher,
	wire.Bind(new(events.Publisher), new(*events.Dispatcher)),

	user.NewUserRepository,
	user.NewUserService,
	user.NewHandler,

	social.NewFollowRepository,
	social.NewSocialService,
	wire.Bind(new(social.SocialUsecase), new(*social.SocialService)),
	social.NewHandler,

	feed.NewPostRepository,
	feed.NewAggregator,
	feed.NewFeedService,
	wire.Bind(new(feed.FeedUsecase), new(*feed.FeedService)),
	feed.NewFeedHandlers,

	thread.NewCommentRepository,
	thread.NewThreadService,
	wire.Bind(new(thread.ThreadUsecase), new(*thread.ThreadService)),
	thread.NewHandler,

	chatrepo.NewChatRepository,
	chatservice.NewChatService,
	chathandler.NewChatHandler,
)

var transportSet = wire.NewSet(
	ProvideMongo,
	ProvideMediaServer,
	ProvideHealthCheck,
	ProvideRouter,
	httpapi.NewServer,
	grpcserver.New,
)

func InitializeApplication() (*Application, func(), error) {
	wire.Build(
		infraSet,
		domainSet,
		transportSet,
		wire.Struct(new(Application), "*"),
	)
	return nil, nil, nil
}

func InitializeStore() (*Store, func(), error) {
	wire.Build(
		infraSet,
		wire.Struct(new(Store), "*"),
	)
	return nil, nil, nil
}
