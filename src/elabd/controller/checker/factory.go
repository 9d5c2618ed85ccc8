package checker

import (
	"io"

	tally "github.com/uber-go/tally/v4"
	"github.com/uber/elabd/src/elabd/internal/clock"
	"github.com/uber/elabd/src/elabd/internal/executor"
	"github.com/uber/elabd/src/elabd/internal/fs"
	"github.com/uber/elabd/src/elabd/internal/logfilewriter"
	"github.com/uber/elabd/src/elabd/internal/serverinfofile"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const _nameKey = "checker"

// Module is the Fx module for this package.
var Module = fx.Provide(NewFactory)

// Factory creates the checker session of a workspace.
type Factory interface {
	New(workspaceRoot string, clientName string) Manager
}

// Params are inbound parameters to initialize a new Factory.
type Params struct {
	fx.In

	Config         config.Provider
	Logger         *zap.SugaredLogger
	Stats          tally.Scope
	Executor       executor.Executor
	Clock          clock.Clock
	FS             fs.ElabdFS
	ServerInfoFile serverinfofile.ServerInfoFile
}

type factoryImpl struct {
	cfg    Config
	params Params
	scope  tally.Scope
}

// NewFactory reads the checker configuration and returns a Factory for per-workspace managers.
func NewFactory(p Params) (Factory, error) {
	cfg, err := LoadConfig(p.Config)
	if err != nil {
		return nil, err
	}

	return &factoryImpl{
		cfg:    cfg,
		params: p,
		scope:  p.Stats.SubScope(_nameKey),
	}, nil
}

func (f *factoryImpl) New(workspaceRoot string, clientName string) Manager {
	return New(Options{
		WorkspaceRoot: workspaceRoot,
		ClientName:    clientName,
		Config:        f.cfg,
		Executor:      f.params.Executor,
		Clock:         f.params.Clock,
		Logger:        f.params.Logger.With("plugin", _nameKey),
		Scope:         f.scope,
		InfoFile:      f.params.ServerInfoFile,
		Output: func(name string) (io.WriteCloser, error) {
			return logfilewriter.SetupOutputWriter(logfilewriter.Params{
				FS:             f.params.FS,
				ServerInfoFile: f.params.ServerInfoFile,
			}, name)
		},
	})
}
