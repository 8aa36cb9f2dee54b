package executor

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/sourcegraph/conc"
)

// Result represents the outcome of a command execution.
type Result struct {
	Stdout    string
	Stderr    string
	ExitCode  int
	Truncated bool
}

// Options bounds command execution.
type Options struct {
	MaxOutputSize int64         // per stream
	GracePeriod   time.Duration // between interrupt and kill on timeout
}

// OSCommandExecutor runs host commands with os/exec.
type OSCommandExecutor struct {
	opts Options
}

// NewOSCommandExecutor creates an executor. Zero options get small defaults.
func NewOSCommandExecutor(opts Options) *OSCommandExecutor {
	if opts.MaxOutputSize <= 0 {
		opts.MaxOutputSize = 64 * 1024
	}
	if opts.GracePeriod <= 0 {
		opts.GracePeriod = 2 * time.Second
	}
	return &OSCommandExecutor{opts: opts}
}

// Run executes a command, collecting its output, and interrupts it once
// timeout elapses. A non-zero exit is reported both in Result.ExitCode and
// as the returned error.
func (f *OSCommandExecutor) Run(ctx context.Context, command []string, timeout time.Duration) (*Result, error) {
	if len(command) == 0 {
		return nil, os.ErrInvalid
	}

	// Graceful shutdown is handled below instead of through CommandContext.
	cmd := exec.Command(command[0], command[1:]...)
	cmd.Stdin = nil

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &CommandError{Cmd: command[0], Cause: err, Stage: "start"}
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, &CommandError{Cmd: command[0], Cause: err, Stage: "start"}
	}

	if err := cmd.Start(); err != nil {
		return nil, &CommandError{Cmd: command[0], Cause: err, Stage: "start"}
	}

	var stdoutStr, stderrStr string
	var truncated bool
	done := make(chan error, 1)
	go func() {
		// Wait closes the pipes, so every read must finish first.
		stdoutStr, stderrStr, truncated = f.collectOutput(stdoutPipe, stderrPipe)
		done <- cmd.Wait()
	}()

	var timer <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		timer = t.C
	}

	var execErr error
	select {
	case err := <-done:
		execErr = err
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		execErr = ctx.Err()
	case <-timer:
		_ = cmd.Process.Signal(os.Interrupt)
		select {
		case <-done:
		case <-time.After(f.opts.GracePeriod):
			_ = cmd.Process.Kill()
			<-done
		}
		execErr = ErrTimeout
	}

	exitCode := 0
	if execErr != nil {
		exitCode = getExitCode(execErr)
	}

	return &Result{
		Stdout:    stdoutStr,
		Stderr:    stderrStr,
		ExitCode:  exitCode,
		Truncated: truncated,
	}, execErr
}

// Start launches a command without waiting for it, for GUI applications
// that outlive the request.
func (f *OSCommandExecutor) Start(command []string) error {
	if len(command) == 0 {
		return os.ErrInvalid
	}
	cmd := exec.Command(command[0], command[1:]...)
	if err := cmd.Start(); err != nil {
		return &CommandError{Cmd: command[0], Cause: err, Stage: "start"}
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

func (f *OSCommandExecutor) collectOutput(stdout, stderr io.Reader) (string, string, bool) {
	maxBytes := int(f.opts.MaxOutputSize)

	out, errOut := newCapture(maxBytes), newCapture(maxBytes)

	var wg conc.WaitGroup
	wg.Go(func() { _, _ = io.Copy(out, stdout) })
	wg.Go(func() { _, _ = io.Copy(errOut, stderr) })
	wg.Wait()

	return out.String(), errOut.String(), out.Truncated() || errOut.Truncated()
}

func getExitCode(err error) int {
	if errors.Is(err, ErrTimeout) {
		return -1
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return -1
}
