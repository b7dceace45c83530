// Package daemon runs the pipeline on a fixed interval and enforces
// single-instance execution through a file lock.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"subcast/internal/config"
	"subcast/internal/logging"
	"subcast/internal/runlog"
)

// RunInvoker executes one full pipeline run.
type RunInvoker interface {
	Run(ctx context.Context) (runlog.Summary, error)
}

type Daemon struct {
	invoker  RunInvoker
	logger   *slog.Logger
	interval time.Duration

	lockPath string
	lock     *flock.Flock
	pidPath  string

	running atomic.Bool
}

// New constructs a daemon around a run invoker.
func New(cfg *config.Config, invoker RunInvoker, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || invoker == nil {
		return nil, errors.New("daemon requires config and run invoker")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	interval := time.Duration(cfg.Daemon.IntervalSeconds) * time.Second
	if interval <= 0 {
		return nil, errors.New("daemon interval must be positive")
	}
	lockPath := cfg.LockPath()
	return &Daemon{
		invoker:  invoker,
		logger:   logging.WithComponent(logger, "daemon"),
		interval: interval,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
		pidPath:  cfg.PIDPath(),
	}, nil
}

// LockPath returns the single-instance lock file location.
func (d *Daemon) LockPath() string {
	return d.lockPath
}

// Running reports whether the timer loop is active.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// Run acquires the instance lock and drives pipeline runs until ctx is
// cancelled. The first run starts immediately; subsequent runs wait out the
// configured interval measured from the previous run's completion.
func (d *Daemon) Run(ctx context.Context) error {
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another subcast instance holds %s", d.lockPath)
	}
	defer func() {
		if err := d.lock.Unlock(); err != nil {
			d.logger.Warn("release instance lock failed", logging.Error(err))
		}
	}()

	if err := writePIDFile(d.pidPath); err != nil {
		d.logger.Warn("write pid file failed", logging.Error(err))
	} else {
		defer os.Remove(d.pidPath)
	}

	d.running.Store(true)
	defer d.running.Store(false)
	d.logger.Info("daemon started",
		logging.String("lock", d.lockPath),
		logging.Duration("interval", d.interval))

	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("daemon shutting down")
			return nil
		case <-timer.C:
		}
		d.invoke(ctx)
		timer.Reset(d.interval)
	}
}

// invoke executes one pipeline pass. A failed pass is logged and the timer
// loop keeps going.
func (d *Daemon) invoke(ctx context.Context) {
	summary, err := d.invoker.Run(ctx)
	if err != nil {
		d.logger.Error("pipeline run failed", logging.Error(err))
		return
	}
	d.logger.Info("pipeline run finished",
		logging.String(logging.FieldRunID, summary.RunID),
		logging.Int("retried", summary.Retried),
		logging.Int("fresh", summary.Fresh),
		logging.Int("succeeded", summary.Succeeded),
		logging.Int("failed", summary.Failed),
		logging.Int("skipped", summary.Skipped))
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644)
}
