package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/storecheck/storecheck/internal/endpoint"
	"github.com/storecheck/storecheck/internal/runner"
	"github.com/storecheck/storecheck/internal/store"
)

// makeJob makes a cron job that runs r.
// A tick that fires while the previous run is still in flight is skipped.
func (cmd *Command) makeJob(ctx context.Context, r *runner.Runner) cron.Job {
	var running atomic.Bool

	return cron.FuncJob(func() {
		if !running.CompareAndSwap(false, true) {
			cmd.Logger.Warn().Msg("previous run is still in progress; skip this tick")
			return
		}
		defer running.Store(false)

		if ctx.Err() != nil {
			return
		}

		if _, err := r.Run(ctx); err != nil {
			cmd.Logger.Error().Err(err).Msg("run failed")
		}
	})
}

func (cmd *Command) RunServer(ctx context.Context, r *runner.Runner, history *store.History) (exitCode int) {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	listener, err := net.Listen("tcp", fmt.Sprintf("0.0.0.0:%d", cmd.ListenPort))
	if err != nil {
		fmt.Fprintf(cmd.ErrStream, "error: failed to listen: %s\n", err)
		return 1
	}
	return cmd.Serve(ctx, listener, r, history)
}

// Serve runs the scheduler and the status server on the listener until ctx is done.
func (cmd *Command) Serve(ctx context.Context, listener net.Listener, r *runner.Runner, history *store.History) (exitCode int) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	latest := &endpoint.Latest{}
	r.Publishers = append(r.Publishers, latest)

	scheduler := cron.New()
	job := cmd.makeJob(ctx, r)

	wg := &sync.WaitGroup{}

	if cmd.Schedule.NeedKickWhenStart() {
		wg.Add(1)
		go func() {
			job.Run()
			wg.Done()
		}()
	}
	scheduler.Schedule(cmd.Schedule, job)

	scheduler.Start()
	defer scheduler.Stop()

	cmd.Logger.Info().
		Str("url", "http://"+listener.Addr().String()).
		Str("schedule", cmd.Schedule.String()).
		Int("endpoints", len(r.Catalog.Endpoints)).
		Msg("start storecheck server")

	srv := &http.Server{Handler: endpoint.New(latest, history, cmd.Logger)}

	wg.Add(2)
	go func() {
		<-ctx.Done()

		go func() {
			<-scheduler.Stop().Done()
			wg.Done()
		}()

		if err := srv.Shutdown(context.Background()); err != nil {
			cmd.Logger.Error().Err(err).Msg("failed to shutdown server")
		}
		wg.Done()
	}()

	if err := srv.Serve(listener); err != http.ErrServerClosed {
		cmd.Logger.Error().Err(err).Msg("server stopped")
		exitCode = 1
	}
	cancel()

	wg.Wait()

	return exitCode
}
