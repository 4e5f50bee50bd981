package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/1broseidon/tidewm/internal/bar"
	"github.com/1broseidon/tidewm/internal/config"
	"github.com/1broseidon/tidewm/internal/display"
	"github.com/1broseidon/tidewm/internal/ipc"
	"github.com/1broseidon/tidewm/internal/spawn"
	"github.com/1broseidon/tidewm/internal/wm"
	"github.com/1broseidon/tidewm/internal/x11"
)

// clockInterval is how often the bar clock is refreshed while idle.
const clockInterval = 10 * time.Second

func runWM(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "", "config file (default: standard location)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tidewm run [-config path]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Start the window manager in the foreground.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "run takes no arguments")
		fs.Usage()
		return 2
	}

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFromPath(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	logger, closeLog, err := newLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer closeLog()
	slog.SetDefault(logger)

	if err := serve(cfg, logger); err != nil {
		logger.Error("window manager exited", "error", err)
		return 1
	}
	return 0
}

func serve(cfg *config.Config, logger *slog.Logger) error {
	conn, err := x11.Connect(logger)
	if err != nil {
		return err
	}
	defer conn.Close()
	defer conn.UngrabKeys()

	bindings, err := cfg.ResolveBindings()
	if err != nil {
		return err
	}
	keymap, err := conn.GrabKeys(bindings, cfg.ModKey)
	if err != nil {
		return err
	}

	output := conn.OutputGeometry()
	state := wm.NewState(output, keymap)
	mode, err := cfg.DefaultMode()
	if err != nil {
		return err
	}
	for _, ws := range state.Workspaces {
		ws.Mode = mode
		ws.Params = cfg.DefaultParams()
		ws.BarVisible = cfg.BarVisible()
	}

	xbar, err := bar.NewXBar(conn.XUtil(), output.Width, cfg.Bar.Font, cfg.ClockEnabled())
	if err != nil {
		return err
	}
	xbar.SetVisible(cfg.BarVisible())

	waker, err := x11.NewWaker()
	if err != nil {
		return err
	}
	defer waker.Close()

	queue := ipc.NewActionQueue(waker.Wake)

	var statusMu sync.Mutex
	var status ipc.StatusData
	statusFn := func() ipc.StatusData {
		statusMu.Lock()
		defer statusMu.Unlock()
		return status
	}
	updateStatus := func() {
		snapshot := snapshotStatus(state)
		statusMu.Lock()
		status = snapshot
		statusMu.Unlock()
	}

	ctrl := wm.NewController(wm.ControllerConfig{
		State:   state,
		Server:  conn,
		Bar:     xbar,
		Spawner: spawn.New(logger),
		Logger:  logger,
		Pending: queue.Drain,
	})

	ipcServer, err := ipc.NewServer(statusFn, queue, logger)
	if err != nil {
		return err
	}
	if err := ipcServer.Start(); err != nil {
		return err
	}
	defer ipcServer.Stop()

	// SIGTERM and Ctrl-C queue an orderly quit through the same path an
	// IPC quit takes.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-sigCh:
			queue.Submit(wm.Action{Kind: wm.ActionQuit})
		case <-done:
		}
	}()

	if cfg.ClockEnabled() {
		go func() {
			ticker := time.NewTicker(clockInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					waker.Wake()
				case <-done:
					return
				}
			}
		}()
	}

	// Adopt windows that were already mapped before we started.
	existing, err := conn.ExistingWindows()
	if err != nil {
		logger.Warn("adopting existing windows", "error", err)
	}
	for _, w := range existing {
		if err := ctrl.HandleEvent(display.MapRequest{Window: w}); err != nil {
			return err
		}
	}
	updateStatus()

	logger.Info("tidewm started",
		"output_width", output.Width,
		"output_height", output.Height,
		"windows_adopted", len(existing))

	for {
		ev, err := conn.NextEvent()
		if err != nil {
			return err
		}
		if oc, ok := ev.(display.OutputChange); ok {
			xbar.Resize(oc.Geometry.Width)
		}
		if err := ctrl.HandleEvent(ev); err != nil {
			if errors.Is(err, wm.ErrQuit) {
				logger.Info("shutting down")
				return nil
			}
			return err
		}
		updateStatus()
	}
}

// snapshotStatus renders the model into the externally visible status form,
// with 1-based workspace numbers.
func snapshotStatus(state *wm.State) ipc.StatusData {
	ws := state.ActiveWorkspace()
	var occupied []int
	for i, busy := range state.Occupied() {
		if busy {
			occupied = append(occupied, i+1)
		}
	}
	return ipc.StatusData{
		ActiveWorkspace:    state.Active + 1,
		LayoutName:         string(ws.Mode),
		FocusedTitle:       state.Title(ws.Focused),
		WindowCount:        state.WindowCount(),
		OccupiedWorkspaces: occupied,
		BarVisible:         ws.BarVisible,
	}
}

func newLogger(cfg config.LoggingConfig) (*slog.Logger, func(), error) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "", "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, nil, fmt.Errorf("unknown log level %q", cfg.Level)
	}

	sink := os.Stderr
	closeLog := func() {}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		sink = f
		closeLog = func() { f.Close() }
	}

	logger := slog.New(slog.NewTextHandler(sink, &slog.HandlerOptions{Level: level}))
	return logger, closeLog, nil
}
