package app

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/nutrilog/internal/health"
)

func (a *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (a *App) startHealthServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := health.NewServer(a.config.HealthAddr, a.logger, a.Checker(), health.DefaultInterval)
	if err := s.Run(ctx); err != nil {
		a.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// archiveOnce runs one sweep and logs the outcome.
func (a *App) archiveOnce(ctx context.Context) {
	rep, err := a.summaries.ArchiveOlderThan(ctx, a.config.RetentionDays)
	if err != nil {
		a.logger.Error(ctx, "archive failed", "error", err)
		return
	}
	a.logger.Info(ctx, "archive done", "cutoff", rep.Cutoff, "dates", len(rep.Archived), "skipped", len(rep.Skipped))
}

func (a *App) startArchiver(ctx context.Context, interval time.Duration) {
	a.archiveOnce(ctx)
	if interval <= 0 {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			a.archiveOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Run serves the health endpoint and sweeps old entries every
// ArchiveInterval until a signal arrives or ctx is done.
func (a *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	a.logger.Info(ctx, "Starting nutrilogd...", "mode", a.mode)

	a.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		a.startHealthServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		a.startArchiver(ctx, a.config.ArchiveInterval)
	}()

	wg.Wait()
}
