package app

import (
	"context"
	"time"

	tally "github.com/uber-go/tally/v4"
	ideclient "github.com/uber/elabd/src/elabd/gateway/ide-client"
	"github.com/uber/elabd/src/elabd/handler"
	"github.com/uber/elabd/src/elabd/internal/clock"
	"github.com/uber/elabd/src/elabd/internal/core"
	"github.com/uber/elabd/src/elabd/internal/executor"
	"github.com/uber/elabd/src/elabd/internal/fs"
	"github.com/uber/elabd/src/elabd/internal/jsonrpcfx"
	"github.com/uber/elabd/src/elabd/internal/serverinfofile"
	"go.uber.org/fx"
)

// Module defines the elabd application module.
var Module = fx.Options(
	ideclient.Module, // outbounds
	handler.Module,   // inbounds
	jsonrpcfx.Module,
	fs.Module,
	executor.Module,
	clock.Module,
	serverinfofile.Module,
	core.ConfigModule,
	core.LoggerModule,
	fx.Provide(func(lc fx.Lifecycle) tally.Scope {
		rs, closer := tally.NewRootScope(tally.ScopeOptions{
			Tags: map[string]string{
				"service": "elabd",
			},
		}, 1*time.Second)
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return closer.Close()
			},
		})
		return rs
	}),
	fx.Decorate(decorateEnvContext),
	fx.Decorate(decorateConfigProvider),
	fx.Provide(func() Context {
		return Context{
			Environment:        EnvLocal,
			RuntimeEnvironment: EnvLocal,
		}
	}),
)
