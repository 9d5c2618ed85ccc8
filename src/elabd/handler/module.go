package handler

import (
	controller "github.com/uber/elabd/src/elabd/controller"
	"github.com/uber/elabd/src/elabd/controller/elabd"
	handler "github.com/uber/elabd/src/elabd/handler/elabd"
	"github.com/uber/elabd/src/elabd/repository/session"
	"go.uber.org/fx"
)

// Module provides the elabd server into an Fx application.
var Module = fx.Options(
	controller.Module,
	fx.Provide(session.New),
	fx.Provide(handler.New),
	fx.Invoke(outputServiceInfo),
	fx.Invoke(func(h handler.Handler) {}),
	fx.Invoke(func(c elabd.Controller) {}),
)
