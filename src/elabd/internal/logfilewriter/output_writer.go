package logfilewriter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/uber/elabd/src/elabd/internal/fs"
	"github.com/uber/elabd/src/elabd/internal/serverinfofile"
	"go.uber.org/fx"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	_fmtOutputKey = "output:%s"
	_outputDir    = "elabd"
)

// Params define the dependencies for SetupOutputWriter.
type Params struct {
	fx.In

	FS             fs.ElabdFS
	ServerInfoFile serverinfofile.ServerInfoFile
}

// SetupOutputWriter creates a writer that stores human readable output in a temporary file for reference by the user.
// It is used for output that is independent of overall server logging, such as a checker's stderr.
// The file path will be stored in the server info file for reference by the IDE, and both are removed on Close.
func SetupOutputWriter(p Params, name string) (io.WriteCloser, error) {
	logsDirPath := filepath.Join(os.TempDir(), _outputDir)
	if err := p.FS.MkdirAll(logsDirPath); err != nil {
		return nil, err
	}

	logFile, err := p.FS.TempFile(logsDirPath, "output-*.log")
	if err != nil {
		return nil, err
	}

	// IDE can tail the file by getting the file path from the server info file.
	key := fmt.Sprintf(_fmtOutputKey, name)
	if err := p.ServerInfoFile.UpdateField(key, logFile.Name()); err != nil {
		logFile.Close()
		p.FS.Remove(logFile.Name())
		return nil, err
	}

	// Write via a logger for formatting, timestamp, and buffering.
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(logFile),
		zap.InfoLevel,
	)

	return &loggerWriter{
		logger:   zap.New(core).Sugar(),
		file:     logFile,
		key:      key,
		fs:       p.FS,
		infoFile: p.ServerInfoFile,
	}, nil
}

type loggerWriter struct {
	logger   *zap.SugaredLogger
	file     *os.File
	key      string
	fs       fs.ElabdFS
	infoFile serverinfofile.ServerInfoFile
}

// Write implements the io.Writer interface by sending data to the given logger.
func (o *loggerWriter) Write(p []byte) (n int, err error) {
	// Incoming data may contain multiple lines, including blank ones.
	// Split and log each line individually.
	lines := strings.Split(string(p), "\n")
	for _, line := range lines {
		if len(line) > 0 {
			o.logger.Info(line)
		}
	}

	return len(p), nil
}

// Close flushes the output and removes the file along with its server info entry.
func (o *loggerWriter) Close() error {
	o.logger.Sync()
	var err error
	if o.file != nil {
		err = multierr.Append(err, o.file.Close())
		err = multierr.Append(err, o.fs.Remove(o.file.Name()))
	}
	if o.infoFile != nil {
		err = multierr.Append(err, o.infoFile.RemoveField(o.key))
	}
	return err
}
