package server

import (
	"github.com/google/wire"

	"github.com/iWorld-y/boardroom/app/boardroom/pkg/engine"
	"github.com/iWorld-y/boardroom/app/console/internal/biz"
	"github.com/iWorld-y/boardroom/app/console/internal/service"
)

// ProviderSet 是会议控制台的依赖注入 Provider 集合
var ProviderSet = wire.NewSet(
	// Server providers
	NewHTTPServer,

	// Engine providers
	NewBoardroomEngine,
	wire.Bind(new(biz.Boardroom), new(*engine.Engine)),

	// UseCase providers
	biz.NewPanelUseCase,

	// Service providers
	service.NewPanelService,
)
