package handler

import (
	"fmt"
	"os"
	"strconv"

	"github.com/uber/elabd/src/elabd/internal/serverinfofile"
	"go.uber.org/config"
)

const (
	_configKeyServiceName = "service.name"

	_infoKeyServiceName = "service-name"
	_infoKeyPid         = "service-pid"
)

// Output the identity of this process so that editors can find and signal the running daemon.
// The JSON-RPC listener and the checkers add their own fields to the Server Info file.
func outputServiceInfo(cfg config.Provider, infofile serverinfofile.ServerInfoFile) error {
	var name string
	if err := cfg.Get(_configKeyServiceName).Populate(&name); err != nil {
		return fmt.Errorf("loading service name: %w", err)
	}
	if name == "" {
		return fmt.Errorf("missing field %q in config", _configKeyServiceName)
	}

	if err := infofile.UpdateField(_infoKeyServiceName, name); err != nil {
		return fmt.Errorf("outputting service name to info file: %w", err)
	}
	if err := infofile.UpdateField(_infoKeyPid, strconv.Itoa(os.Getpid())); err != nil {
		return fmt.Errorf("outputting service pid to info file: %w", err)
	}
	return nil
}
