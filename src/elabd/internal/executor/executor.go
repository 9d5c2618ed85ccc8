package executor

import (
	"fmt"
	"io"
	"os"
	"os/exec"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides a module to inject using fx.
var Module = fx.Options(
	fx.Provide(func(logger *zap.SugaredLogger) Executor {
		return NewExecutor(WithLogger(logger.Named("executor")))
	}),
)

// Executor wraps the spawning of "os/exec".Cmd's to allow adding logs to
// each exec and makes it easier to test.
type Executor interface {
	// Start logs and starts the Cmd specified, returning a handle with its stdin and stdout attached.
	Start(cmd *exec.Cmd) (Process, error)
}

// Process is a running child process.
type Process interface {
	// Stdin is connected to the standard input of the process.
	Stdin() io.WriteCloser
	// Stdout is connected to the standard output of the process. It reports io.EOF once the process exits.
	// The reader should be closed by its consumer.
	Stdout() io.ReadCloser
	// Pid returns the operating system process id.
	Pid() int
	// Wait blocks until the process exits.
	Wait() error
	// Kill terminates the process immediately.
	Kill() error
}

// executorImp implements Executor
type executorImp struct {
	Logger *zap.SugaredLogger
	// StartFunc may be replaced to use executorImp in tests.
	StartFunc func(e *exec.Cmd) error
}

// Option defines options to customize executorImp's behavior
type Option func(*executorImp)

// WithLogger overrides the default noop logger
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(executor *executorImp) {
		executor.Logger = logger
	}
}

// WithStartFunc provides customized start behavior for executorImp
func WithStartFunc(startFunc func(e *exec.Cmd) error) Option {
	return func(executor *executorImp) {
		executor.StartFunc = startFunc
	}
}

// NewExecutor creates a new executorImp with a noop logger and a default start function.
func NewExecutor(opts ...Option) Executor {
	executor := &executorImp{
		Logger:    zap.NewNop().Sugar(),
		StartFunc: func(cmd *exec.Cmd) error { return cmd.Start() },
	}
	for _, opt := range opts {
		opt(executor)
	}
	return executor
}

// Start logs the Path/Args and starts the command with piped stdin and stdout.
// Stdout is an os.Pipe owned by the caller rather than cmd.StdoutPipe, so Wait can run while output is still being read.
func (l *executorImp) Start(cmd *exec.Cmd) (Process, error) {
	l.logCommand(cmd)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("creating stdin pipe: %w", err)
	}

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		stdin.Close()
		return nil, fmt.Errorf("creating stdout pipe: %w", err)
	}
	cmd.Stdout = stdoutW

	if err := l.StartFunc(cmd); err != nil {
		stdin.Close()
		stdoutR.Close()
		stdoutW.Close()
		return nil, err
	}

	// The child holds its own copy of the write end.
	stdoutW.Close()

	return &cmdProcess{cmd: cmd, stdin: stdin, stdout: stdoutR}, nil
}

// Logs the command specified: Path, Dir, Args
func (l *executorImp) logCommand(cmd *exec.Cmd) {
	var args []string
	if len(cmd.Args) > 0 {
		args = cmd.Args[1:] // First arg is always the command itself
	}
	l.Logger.Infow("Exec",
		"Path", cmd.Path,
		"Dir", cmd.Dir,
		"Args", args,
	)
}

type cmdProcess struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
}

func (p *cmdProcess) Stdin() io.WriteCloser { return p.stdin }

func (p *cmdProcess) Stdout() io.ReadCloser { return p.stdout }

func (p *cmdProcess) Pid() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

func (p *cmdProcess) Wait() error { return p.cmd.Wait() }

func (p *cmdProcess) Kill() error {
	if p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Kill()
}
