package controller

import (
	"github.com/uber/elabd/src/elabd/controller/broadcast"
	"github.com/uber/elabd/src/elabd/controller/checker"
	"github.com/uber/elabd/src/elabd/controller/diagnostics"
	"github.com/uber/elabd/src/elabd/controller/docsync"
	"github.com/uber/elabd/src/elabd/controller/elabd"
	"github.com/uber/elabd/src/elabd/controller/projectwatch"
	"github.com/uber/elabd/src/elabd/controller/roi"
	notifier "github.com/uber/elabd/src/elabd/internal/persistent-notifier"
	"go.uber.org/fx"
)

// Module provides every controller and per-workspace factory.
var Module = fx.Options(
	elabd.Module,
	diagnostics.Module,
	checker.Module,
	roi.Module,
	broadcast.Module,
	docsync.Module,
	projectwatch.Module,
	notifier.Module,
)
