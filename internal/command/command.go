// Package command runs external tools with a hard deadline. Every stage
// collaborator (yt-dlp, ffmpeg, ffprobe, the ASR CLI) funnels through Run so
// timeout and termination semantics stay uniform.
package command

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"subcast/internal/services"
)

// killWaitDelay bounds how long a process gets between SIGKILL to its group
// and Wait giving up on pipe draining.
const killWaitDelay = 5 * time.Second

// Result captures the output of a completed tool invocation.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration
}

// Run executes binary with args under the given timeout. The child is placed
// in its own process group; on deadline expiry the whole group is killed so
// tool-spawned helpers (ffmpeg children, fragment downloaders) cannot leak.
// Timeouts surface as services.ErrTimeout, non-zero exits as
// services.ErrExternalTool with the stderr tail attached.
func Run(ctx context.Context, timeout time.Duration, binary string, args ...string) (Result, error) {
	if strings.TrimSpace(binary) == "" {
		return Result{}, services.Wrap(services.ErrConfiguration, "", "run tool", "empty binary name", nil)
	}
	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, binary, args...)
	cmd.SysProcAttr = &unix.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		// Negative pid addresses the process group.
		return unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
	}
	cmd.WaitDelay = killWaitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	result := Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}
	if err == nil {
		return result, nil
	}

	if runCtx.Err() != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return result, services.Wrap(services.ErrTimeout, "", binary, "deadline exceeded after "+result.Duration.Truncate(time.Millisecond).String(), nil)
	}
	return result, services.Wrap(services.ErrExternalTool, "", binary, stderrTail(result.Stderr), err)
}

// stderrTail keeps error messages bounded; tools like ffmpeg write pages of
// diagnostics and only the end names the actual failure.
func stderrTail(stderr []byte) string {
	text := strings.TrimSpace(string(stderr))
	if text == "" {
		return "exited with error"
	}
	lines := strings.Split(text, "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
