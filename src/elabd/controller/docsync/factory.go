package docsync

import (
	tally "github.com/uber-go/tally/v4"
	"github.com/uber/elabd/src/elabd/controller/checker"
	"github.com/uber/elabd/src/elabd/controller/roi"
	"github.com/uber/elabd/src/elabd/internal/clock"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const _nameKey = "doc-sync"

// Module is the Fx module for this package.
var Module = fx.Provide(NewFactory)

// Factory creates the sync controller of a workspace.
type Factory interface {
	New(workspaceRoot string, session checker.Manager, tracker roi.Tracker) Controller
}

// Params are inbound parameters to initialize a new Factory.
type Params struct {
	fx.In

	Config config.Provider
	Logger *zap.SugaredLogger
	Stats  tally.Scope
	Clock  clock.Clock
}

type factoryImpl struct {
	cfg    Config
	logger *zap.SugaredLogger
	scope  tally.Scope
	clock  clock.Clock
}

// NewFactory reads the document configuration and returns a Factory for per-workspace controllers.
func NewFactory(p Params) (Factory, error) {
	cfg, err := LoadConfig(p.Config)
	if err != nil {
		return nil, err
	}
	return &factoryImpl{
		cfg:    cfg,
		logger: p.Logger.With("plugin", _nameKey),
		scope:  p.Stats.SubScope("doc_sync"),
		clock:  p.Clock,
	}, nil
}

func (f *factoryImpl) New(workspaceRoot string, session checker.Manager, tracker roi.Tracker) Controller {
	return New(Options{
		WorkspaceRoot: workspaceRoot,
		Session:       session,
		Tracker:       tracker,
		Config:        f.cfg,
		Clock:         f.clock,
		Logger:        f.logger,
		Scope:         f.scope,
	})
}
