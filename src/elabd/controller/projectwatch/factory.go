package projectwatch

import (
	tally "github.com/uber-go/tally/v4"
	"github.com/uber/elabd/src/elabd/controller/checker"
	"github.com/uber/elabd/src/elabd/internal/clock"
	"github.com/uber/elabd/src/elabd/internal/fs"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const _nameKey = "project-watch"

// Module is the Fx module for this package.
var Module = fx.Provide(NewFactory)

// Factory creates the manifest watcher of a workspace.
type Factory interface {
	New(workspaceRoot string, session checker.Manager) Watcher
}

// Params are inbound parameters to initialize a new Factory.
type Params struct {
	fx.In

	Config config.Provider
	Logger *zap.SugaredLogger
	Stats  tally.Scope
	Clock  clock.Clock
	FS     fs.ElabdFS
}

type factoryImpl struct {
	cfg    Config
	logger *zap.SugaredLogger
	scope  tally.Scope
	clock  clock.Clock
	fs     fs.ElabdFS
}

// NewFactory reads the project file configuration and returns a Factory for per-workspace watchers.
func NewFactory(p Params) (Factory, error) {
	cfg, err := LoadConfig(p.Config)
	if err != nil {
		return nil, err
	}
	return &factoryImpl{
		cfg:    cfg,
		logger: p.Logger.With("plugin", _nameKey),
		scope:  p.Stats.SubScope("project_watch"),
		clock:  p.Clock,
		fs:     p.FS,
	}, nil
}

func (f *factoryImpl) New(workspaceRoot string, session checker.Manager) Watcher {
	return New(Options{
		WorkspaceRoot: workspaceRoot,
		Session:       session,
		FS:            f.fs,
		Config:        f.cfg,
		Clock:         f.clock,
		Logger:        f.logger,
		Scope:         f.scope,
	})
}
