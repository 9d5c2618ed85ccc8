package broadcast

import (
	tally "github.com/uber-go/tally/v4"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const _nameKey = "broadcast"

// Module is the Fx module for this package.
var Module = fx.Provide(NewFactory)

// Factory creates the Broadcaster of a workspace.
type Factory interface {
	New(workspaceRoot string, generations GenerationSource) Broadcaster
}

// Params are inbound parameters to initialize a new Factory.
type Params struct {
	fx.In

	Config config.Provider
	Logger *zap.SugaredLogger
	Stats  tally.Scope
}

type factoryImpl struct {
	cfg    Config
	logger *zap.SugaredLogger
	scope  tally.Scope
}

// NewFactory reads the broadcast configuration and returns a Factory for per-workspace broadcasters.
func NewFactory(p Params) (Factory, error) {
	cfg, err := LoadConfig(p.Config)
	if err != nil {
		return nil, err
	}
	return &factoryImpl{
		cfg:    cfg,
		logger: p.Logger.With("plugin", _nameKey),
		scope:  p.Stats.SubScope(_nameKey),
	}, nil
}

func (f *factoryImpl) New(workspaceRoot string, generations GenerationSource) Broadcaster {
	return New(Options{
		WorkspaceRoot: workspaceRoot,
		Generations:   generations,
		Config:        f.cfg,
		Logger:        f.logger,
		Scope:         f.scope,
	})
}
