package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/loophost/rotator/internal/config"
	"github.com/loophost/rotator/internal/errmsg"
	"github.com/loophost/rotator/internal/ingest"
	"github.com/loophost/rotator/internal/overlay"
	"github.com/loophost/rotator/internal/playback"
	"github.com/loophost/rotator/internal/sched"
	"github.com/loophost/rotator/internal/source"
	"github.com/loophost/rotator/internal/state"
	"github.com/loophost/rotator/internal/store"
)

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(lvl)
	}
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if cfg.MediaDir == "" {
		return fmt.Errorf("no media_dir configured")
	}

	stateMgr, err := state.Open()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpStateOpen, err))
	}
	defer stateMgr.Close()

	fs := afero.NewOsFs()
	lib := store.New(fs)

	pipeline := ingest.New(fs, lib, cfg.MediaDir)
	if err := pipeline.Scan(); err != nil {
		return errors.New(errmsg.Format(errmsg.OpLibraryScan, err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := pipeline.Watch(ctx); err != nil {
			logrus.Error(errmsg.Format(errmsg.OpLibraryWatch, err))
		}
	}()

	// The host media slot: a wall-clock simulator when running headless.
	var src source.Interface
	if cfg.SimulatorEnabled() {
		src = source.NewSimulator(time.Duration(cfg.Simulator.ItemMs) * time.Millisecond)
	} else {
		return fmt.Errorf("no media source configured and simulator disabled")
	}

	loop := sched.NewLoop()
	timers := sched.NewTimers(loop)

	titles := overlay.NewTitles(overlay.Log{}, timers, overlay.Timings{
		ShowDelay:    time.Duration(cfg.Overlay.ShowDelayMs) * time.Millisecond,
		ClearLead:    time.Duration(cfg.Overlay.ClearLeadMs) * time.Millisecond,
		FadeDuration: time.Duration(cfg.Overlay.FadeMs) * time.Millisecond,
		FadeSteps:    cfg.Overlay.FadeSteps,
		DurationPoll: time.Duration(cfg.Overlay.DurationPollMs) * time.Millisecond,
	})

	opts := playback.DefaultOptions()
	opts.RetryCap = cfg.Playback.RetryCap
	opts.GracePeriod = time.Duration(cfg.Playback.GraceMs) * time.Millisecond
	opts.SeekJump = time.Duration(cfg.Playback.SeekJumpMs) * time.Millisecond
	opts.RestartDelay = time.Duration(cfg.Playback.RestartDelayMs) * time.Millisecond
	opts.PauseWhenHidden = cfg.Playback.PauseWhenHidden

	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	ctrl := playback.New(lib, src, titles, timers, rng, opts, stateMgr)

	// Saved rotation wins over the configured mode; config applies on a
	// fresh database.
	if snap, err := stateMgr.GetRotation(); err != nil {
		logrus.Warn(errmsg.Format(errmsg.OpStateLoad, err))
	} else if snap != nil {
		ctrl.Restore(*snap)
	} else {
		ctrl.SetMode(playback.ParseMode(cfg.Playback.Mode))
	}

	// The loop outlives ctx just long enough to run one shutdown tick.
	loopCtx, loopDone := context.WithCancel(context.Background())
	defer loopDone()

	ticker := time.NewTicker(time.Duration(cfg.TickMs) * time.Millisecond)
	defer ticker.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				loop.Post(func() {
					ctrl.Shutdown()
					ctrl.Tick()
					loopDone()
				})
				return
			case <-ticker.C:
				loop.Post(ctrl.Tick)
			}
		}
	}()

	logrus.WithFields(logrus.Fields{
		"media_dir": cfg.MediaDir,
		"mode":      ctrl.Mode(),
	}).Info("rotator running")

	loop.Run(loopCtx)
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
