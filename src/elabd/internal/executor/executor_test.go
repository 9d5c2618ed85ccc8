package executor

import (
	"errors"
	"io"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// Instantiates the new Executor through fx provider
func fxExecutor(t *testing.T) (Executor, *observer.ObservedLogs) {
	var e Executor
	core, recorded := observer.New(zap.InfoLevel)
	logger := zap.New(core).Sugar()

	fxtest.New(t,
		fx.Provide(
			func() Executor {
				return NewExecutor(WithLogger(logger))
			},
		),
		fx.Populate(&e),
	).RequireStart().RequireStop()

	return e, recorded
}

func lookPath(t *testing.T, name string) string {
	binPath, err := exec.LookPath(name)
	if errors.Is(err, exec.ErrNotFound) {
		t.Skipf("no %s available", name)
	}
	require.NoError(t, err)
	return binPath
}

func TestStart(t *testing.T) {
	e, recorded := fxExecutor(t)

	t.Run("echo through cat", func(t *testing.T) {
		binPath := lookPath(t, "cat")

		cmd := exec.Command("cat", "-")
		cmd.Dir = "/"
		p, err := e.Start(cmd)
		require.NoError(t, err)
		assert.NotZero(t, p.Pid())

		logs := recorded.TakeAll()
		require.Len(t, logs, 1)
		assert.Equal(t, map[string]interface{}{
			"Path": binPath,
			"Dir":  "/",
			"Args": []interface{}{"-"},
		}, logs[0].ContextMap())

		_, err = io.WriteString(p.Stdin(), "Content-Length: 2\r\n\r\n{}")
		require.NoError(t, err)
		require.NoError(t, p.Stdin().Close())

		out, err := io.ReadAll(p.Stdout())
		require.NoError(t, err)
		assert.Equal(t, "Content-Length: 2\r\n\r\n{}", string(out))
		assert.NoError(t, p.Stdout().Close())
		assert.NoError(t, p.Wait())
	})

	t.Run("kill", func(t *testing.T) {
		lookPath(t, "sleep")

		p, err := e.Start(exec.Command("sleep", "30"))
		require.NoError(t, err)
		require.NoError(t, p.Kill())
		assert.Error(t, p.Wait())

		// Output reaches EOF once the child is gone.
		_, err = io.ReadAll(p.Stdout())
		assert.NoError(t, err)
		p.Stdout().Close()
	})
}

func TestStartFails(t *testing.T) {
	t.Run("unknown command", func(t *testing.T) {
		e, _ := fxExecutor(t)
		p, err := e.Start(exec.Command("no_valid_command_"))
		assert.Nil(t, p)
		require.Error(t, err)
		assert.Equal(t, `exec: "no_valid_command_": executable file not found in $PATH`, err.Error())
	})

	t.Run("custom start func", func(t *testing.T) {
		var started *exec.Cmd
		e := NewExecutor(WithStartFunc(func(cmd *exec.Cmd) error {
			started = cmd
			return errors.New("sample error")
		}))

		cmd := exec.Command("checker", "--server")
		p, err := e.Start(cmd)
		assert.Nil(t, p)
		assert.EqualError(t, err, "sample error")
		assert.Same(t, cmd, started)
	})
}
