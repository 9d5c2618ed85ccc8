package roi

import (
	tally "github.com/uber-go/tally/v4"
	"github.com/uber/elabd/src/elabd/internal/clock"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const _nameKey = "roi"

// Module is the Fx module for this package.
var Module = fx.Provide(NewFactory)

// Factory creates the Tracker of a workspace.
type Factory interface {
	New(syncer Syncer) Tracker
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

// NewFactory reads the ROI configuration and returns a Factory for per-workspace trackers.
func NewFactory(p Params) (Factory, error) {
	cfg, err := LoadConfig(p.Config)
	if err != nil {
		return nil, err
	}
	return &factoryImpl{
		cfg:    cfg,
		logger: p.Logger.With("plugin", _nameKey),
		scope:  p.Stats.SubScope(_nameKey),
		clock:  p.Clock,
	}, nil
}

func (f *factoryImpl) New(syncer Syncer) Tracker {
	return New(Options{
		Syncer: syncer,
		Config: f.cfg,
		Clock:  f.clock,
		Logger: f.logger,
		Scope:  f.scope,
	})
}
