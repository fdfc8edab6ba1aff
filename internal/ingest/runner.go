// Package ingest periodically re-launches the external job that refreshes
// the proposal sheet in the remote store. This process never writes to the
// store itself.
package ingest

import (
	"context"
	"log"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// DefaultInterval is how often the job is re-launched.
const DefaultInterval = time.Minute

// Runner forks the configured command on a fixed interval. A run still
// alive when the next tick arrives is killed; the tick after that starts a
// fresh one.
type Runner struct {
	command  string
	interval time.Duration
	debug    bool

	mu      sync.Mutex
	current *exec.Cmd
}

// New builds a runner for a shell-less command line (program plus
// space-separated arguments). A non-positive interval selects
// DefaultInterval.
func New(command string, interval time.Duration, debug bool) *Runner {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Runner{command: command, interval: interval, debug: debug}
}

// Run launches the job immediately and then once per interval, until ctx
// ends. A configured empty command disables the runner.
func (r *Runner) Run(ctx context.Context) {
	if strings.TrimSpace(r.command) == "" {
		return
	}

	r.tick(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.kill()
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Runner) tick(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// A job still running at tick time is considered stuck.
	if r.current != nil {
		log.Printf("ingest job still running, killing it")
		_ = r.current.Process.Kill()
		return
	}

	args := strings.Fields(r.command)
	if r.debug {
		args = append(args, "--debug")
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	if err := cmd.Start(); err != nil {
		log.Printf("ingest job failed to start: %v", err)
		return
	}
	r.current = cmd
	r.debugf("ingest job forked (pid %d)", cmd.Process.Pid)

	go func() {
		err := cmd.Wait()
		r.mu.Lock()
		r.current = nil
		r.mu.Unlock()
		if err != nil {
			log.Printf("ingest job exited: %v", err)
			return
		}
		r.debugf("ingest job finished")
	}()
}

func (r *Runner) kill() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current != nil {
		_ = r.current.Process.Kill()
	}
}

func (r *Runner) debugf(format string, args ...any) {
	if r.debug {
		log.Printf(format, args...)
	}
}
