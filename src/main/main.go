package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"hoversnap/src/bindstore"
	"hoversnap/src/capture"
	"hoversnap/src/config"
	"hoversnap/src/display"
	"hoversnap/src/eventloop"
	"hoversnap/src/hittest"
	"hoversnap/src/hotkeys"
	"hoversnap/src/interceptor"
	"hoversnap/src/logutil"
	"hoversnap/src/overlay"
	"hoversnap/src/permissions"
	"hoversnap/src/pointer"
	"hoversnap/src/session"
	"hoversnap/src/sink"
	"hoversnap/src/tracker"
	"hoversnap/src/worker"
)

func main() {
	// Ensure DPI awareness before querying any display metrics.
	enableDPIAwareness()

	// The input hook and clipboard expect a stable main thread.
	runtime.LockOSThread()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logutil.Setup(cfg.EnableFileLogging)

	perms := permissions.NewChecker()
	if !perms.IsAccessibilityGranted() {
		log.Printf("Accessibility not granted, requesting consent")
		perms.RequestAccessibility()
	}
	if !perms.IsScreenRecordingGranted() {
		log.Printf("Screen recording not granted, opening consent surface")
		perms.RequestScreenRecording()
	}

	if err := sink.Init(); err != nil {
		log.Fatalf("Failed to initialize clipboard: %v", err)
	}

	displays := display.NewProvider()
	primaryHeight := func() float64 {
		if p, ok := display.Primary(displays.Displays()); ok {
			return p.Frame.H
		}
		return 0
	}

	hook := interceptor.NewHook()
	engine := &capture.Engine{Permissions: perms, Primitive: capture.NewPrimitive()}
	pool := worker.New(engine)
	defer pool.Close()

	resolver := hittest.NewResolver()
	ptr := pointer.NewSource(primaryHeight)

	cancelKey, err := hotkeys.ParseSingleKey(cfg.CancelKey)
	if err != nil {
		log.Printf("Cancel key %q rejected (%v), using Escape", cfg.CancelKey, err)
		cancelKey = eventloop.DefaultCancelKey
	}

	highlight := overlay.NewAnimated(tracker.TicksPerSecond, nil)
	loop := eventloop.New(eventloop.Options{
		Displays:    displays,
		Pointer:     ptr,
		Resolver:    resolver,
		Tracker:     tracker.New(displays, ptr, resolver, highlight),
		Overlay:     highlight,
		Taps:        hook,
		Permissions: perms,
		Pool:        pool,
		Sink:        &sink.Sink{Clipboard: sink.NewClipboard()},
		CancelKey:   cancelKey,
	})

	var store hotkeys.Store
	if s, err := bindstore.Open(cfg.BindingDBPath); err != nil {
		log.Printf("Binding store unavailable, using defaults: %v", err)
	} else {
		defer s.Close()
		store = s
	}

	mgr := hotkeys.NewManager(hook, store)
	defer mgr.Close()
	bindings := []struct {
		mode  session.Mode
		combo string
	}{
		{session.ModeElement, cfg.ElementHotkey},
		{session.ModeFullscreen, cfg.FullscreenHotkey},
		{session.ModeWindow, cfg.WindowHotkey},
	}
	for _, b := range bindings {
		mode := b.mode
		if err := mgr.Bind(mode.String(), b.combo, func() { loop.Start(mode) }); err != nil {
			log.Fatalf("Failed to bind %s hotkey: %v", mode, err)
		}
	}

	log.Printf("hoversnap initialized")
	log.Printf("Hotkeys: element=%s fullscreen=%s window=%s",
		cfg.ElementHotkey, cfg.FullscreenHotkey, cfg.WindowHotkey)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		cancel()
	}()

	if err := loop.Run(ctx); err != nil {
		log.Printf("event loop stopped: %v", err)
	}
}
