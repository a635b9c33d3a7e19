package app

import (
	"errors"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PokeMichele/lumo/internal/config"
	"github.com/PokeMichele/lumo/internal/editor"
	"github.com/PokeMichele/lumo/internal/library"
	"github.com/PokeMichele/lumo/internal/log"
	"github.com/PokeMichele/lumo/internal/project"
	"github.com/PokeMichele/lumo/internal/script"
	"github.com/PokeMichele/lumo/internal/surface"
)

// DefaultProjectName is the project name used when none is given.
const DefaultProjectName = "untitled"

// messageTTL is how long a status message stays on screen.
const messageTTL = 4 * time.Second

// Application errors.
var (
	// ErrQuit signals that the application should exit normally.
	ErrQuit = errors.New("quit requested")

	// ErrAlreadyRunning indicates Run was called while running.
	ErrAlreadyRunning = errors.New("application already running")

	// ErrNoStore indicates project persistence was not configured.
	ErrNoStore = errors.New("no project store configured")
)

// InitError reports which component failed to initialize.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return "init " + e.Component + ": " + e.Err.Error()
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// Options configures the application.
type Options struct {
	// ConfigPath is the TOML configuration file. A missing file yields
	// the defaults.
	ConfigPath string

	// ProjectDB is the SQLite project database path. Empty disables
	// persistence.
	ProjectDB string

	// ProjectName is the project opened on startup and the name later
	// saves write to.
	ProjectName string

	// Scripts are Lua files run after wiring, before the screen opens.
	Scripts []string

	// Watch reloads edit tunables when the config file changes.
	Watch bool
}

// Application owns every component and runs the main loop.
type Application struct {
	logger  *log.Logger
	logFile *os.File

	editor  *editor.Editor
	library *library.Library
	store   *project.Store
	scripts *script.Runner
	watcher *config.Watcher
	screen  surface.Screen

	// mu guards the fields below, shared between the Run goroutine and
	// the config watcher.
	mu        sync.Mutex
	cfg       *config.Config
	view      *surface.View
	message   string
	messageAt time.Time
	dirty     bool

	// Run-goroutine state, no locking needed.
	width, height int
	button        surface.MouseButton
	scrubbing     bool
	outside       bool
	projectName   string

	running   atomic.Bool
	done      chan struct{}
	stopOnce  sync.Once
	closeOnce sync.Once
}

// New wires the application from configuration. The screen is injected so
// tests can run against the in-memory implementation.
func New(screen surface.Screen, opts Options) (*Application, error) {
	if screen == nil {
		return nil, errors.New("nil screen")
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, &InitError{Component: "config", Err: err}
	}

	logger, logFile, err := newLogger(cfg)
	if err != nil {
		return nil, &InitError{Component: "log", Err: err}
	}

	app := &Application{
		logger:      logger,
		logFile:     logFile,
		library:     library.New(),
		screen:      screen,
		cfg:         cfg,
		view:        surface.NewView(surface.WithLayout(cfg.GestureLayout())),
		projectName: opts.ProjectName,
		done:        make(chan struct{}),
	}
	if app.projectName == "" {
		app.projectName = DefaultProjectName
	}

	app.editor = editor.New(
		editor.WithLogger(logger.WithComponent("editor")),
		editor.WithOpener(newPreviewOpener()),
		editor.WithAspect(cfg.PreviewAspect()),
		editor.WithEpsilon(cfg.Timeline.Epsilon),
		editor.WithMaxUndoEntries(cfg.History.MaxEntries),
		editor.WithLayout(cfg.GestureLayout()),
		editor.WithMaxFrameRate(cfg.Playback.MaxFPS),
		editor.WithSnapOptions(cfg.SnapOptions()...),
		editor.WithSyncTolerance(cfg.Playback.SyncTolerance),
	)
	app.editor.SetMasterVolume(cfg.Playback.MasterVolume)
	app.editor.SetViewport(cfg.Preview.Width, cfg.Preview.Height)

	if opts.ProjectDB != "" {
		if err := app.openStore(opts.ProjectDB); err != nil {
			app.Close()
			return nil, err
		}
	}

	app.scripts, err = script.New(app.editor, app.library,
		script.WithLogger(logger.WithComponent("script")))
	if err != nil {
		app.Close()
		return nil, &InitError{Component: "script", Err: err}
	}
	for _, path := range opts.Scripts {
		if err := app.scripts.DoFile(path); err != nil {
			app.Close()
			return nil, &InitError{Component: "script", Err: err}
		}
	}

	if opts.Watch && opts.ConfigPath != "" {
		app.watcher, err = config.Watch(opts.ConfigPath, app.applyConfig,
			config.WithWatchLogger(logger.WithComponent("config")))
		if err != nil {
			app.Close()
			return nil, &InitError{Component: "config watcher", Err: err}
		}
	}

	if app.store != nil {
		err := app.LoadProject(app.projectName)
		if err != nil && !errors.Is(err, project.ErrNotFound) {
			app.Close()
			return nil, &InitError{Component: "project", Err: err}
		}
	}

	return app, nil
}

// openStore opens the project database and brings its schema current.
func (app *Application) openStore(path string) error {
	ctx, cancel := storeContext()
	defer cancel()

	store, err := project.Open(ctx, path)
	if err != nil {
		return &InitError{Component: "project store", Err: err}
	}
	if err := project.ApplyMigrations(ctx, store.DB()); err != nil {
		store.Close()
		return &InitError{Component: "project store", Err: err}
	}
	app.store = store
	return nil
}

// newLogger builds the logger the config names. Without a log file the
// output is discarded, the screen owns the terminal while the UI runs.
func newLogger(cfg *config.Config) (*log.Logger, *os.File, error) {
	lcfg := log.DefaultConfig()
	lcfg.Level = cfg.LogLevel()
	if cfg.Log.File == "" {
		lcfg.Output = io.Discard
		return log.New(lcfg), nil, nil
	}

	f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}
	lcfg.Output = f
	return log.New(lcfg), f, nil
}

// Run opens the screen and drives the main loop until a quit binding
// fires, Shutdown is called, or the screen is finalized.
func (app *Application) Run() error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	if err := app.screen.Init(); err != nil {
		return &InitError{Component: "screen", Err: err}
	}
	defer app.screen.Fini()

	app.width, app.height = app.screen.Size()
	app.markDirty()

	events := app.startInputPolling()

	ticker := time.NewTicker(frameInterval(app.Config().Playback.MaxFPS))
	defer ticker.Stop()

	app.logger.Info("running", "width", app.width, "height", app.height)

	for {
		select {
		case <-app.done:
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := app.handleEvent(ev); err != nil {
				if errors.Is(err, ErrQuit) {
					return nil
				}
				return err
			}
		case now := <-ticker.C:
			app.tick(now)
		}
	}
}

// frameInterval converts a frame rate cap to a ticker period.
func frameInterval(hz float64) time.Duration {
	if hz <= 0 {
		hz = 30
	}
	return time.Duration(float64(time.Second) / hz)
}

// Shutdown asks the main loop to exit. Safe to call from any goroutine,
// including a signal handler, and before Run.
func (app *Application) Shutdown() {
	app.stopOnce.Do(func() { close(app.done) })
}

// Close releases every resource in dependency order: the watcher first so
// no reload lands mid-teardown, then scripts, media handles, the store
// and the log file. The screen belongs to Run, which finalizes it on the
// way out.
func (app *Application) Close() {
	app.closeOnce.Do(func() {
		if app.watcher != nil {
			app.watcher.Close()
		}
		if app.scripts != nil {
			app.scripts.Close()
		}
		if app.editor != nil {
			app.editor.Close()
		}
		if app.store != nil {
			app.store.Close()
		}
		if app.logFile != nil {
			app.logFile.Close()
		}
	})
}

// Running reports whether the main loop is active.
func (app *Application) Running() bool {
	return app.running.Load()
}

// Editor returns the editing facade.
func (app *Application) Editor() *editor.Editor {
	return app.editor
}

// Library returns the media source registry.
func (app *Application) Library() *library.Library {
	return app.library
}

// Config returns the active configuration.
func (app *Application) Config() *config.Config {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.cfg
}

// applyConfig adopts a rewritten config file while running. Only the
// tunables that can change without a rebuild are applied: view geometry,
// preview aspect and log level.
func (app *Application) applyConfig(cfg *config.Config) {
	layout := cfg.GestureLayout()
	app.editor.SetLayout(layout)
	app.editor.SetAspect(cfg.PreviewAspect())
	app.logger.SetLevel(cfg.LogLevel())

	app.mu.Lock()
	app.cfg = cfg
	app.view = surface.NewView(surface.WithLayout(layout))
	app.mu.Unlock()

	app.say("configuration reloaded")
}
