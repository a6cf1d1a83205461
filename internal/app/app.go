// Package app implements the application layer for kiln.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.trai.ch/kiln/internal/adapters/detector"  //nolint:depguard // Wired in app layer
	"go.trai.ch/kiln/internal/adapters/linear"    //nolint:depguard // Wired in app layer
	"go.trai.ch/kiln/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/kiln/internal/adapters/template"  //nolint:depguard // Wired in app layer
	"go.trai.ch/kiln/internal/adapters/tui"       //nolint:depguard // Wired in app layer
	"go.trai.ch/kiln/internal/adapters/watcher"   //nolint:depguard // Wired in app layer
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/pipeline"
	"go.trai.ch/kiln/internal/engine/speak"
	"go.trai.ch/kiln/internal/engine/watchloop"
	"go.trai.ch/kiln/internal/ui/summary"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// StoreFactory opens the checksum cache of a project.
type StoreFactory func(cfg *domain.Config) ports.ChecksumStore

// SynthesizerFactory creates the speech synthesizer of a project.
type SynthesizerFactory func(ctx context.Context, cfg *domain.Config, runner ports.ToolRunner) (ports.Synthesizer, error)

// Services groups the adapters the App drives.
type Services struct {
	Loader     ports.ConfigLoader
	Logger     ports.Logger
	Files      ports.FileSystem
	Hasher     ports.Hasher
	Runner     ports.ToolRunner
	Watcher    ports.WatcherFactory
	Debouncer  ports.DebouncerFactory
	Store      StoreFactory
	Synthesize SynthesizerFactory
}

// App represents the main application logic.
type App struct {
	Services
	workDir     string
	stdout      io.Writer
	stderr      io.Writer
	teaOptions  []tea.ProgramOption
	disableTick bool
}

// New creates a new App instance.
func New(services Services) *App {
	return &App{
		Services: services,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
}

// WithTeaOptions adds bubbletea program options to the App.
// This is primarily used for testing to disable input/output.
func (a *App) WithTeaOptions(opts ...tea.ProgramOption) *App {
	a.teaOptions = append(a.teaOptions, opts...)
	return a
}

// WithDisableTick disables the TUI tick loop.
// This is primarily used for testing with synctest to avoid goroutine deadlocks.
func (a *App) WithDisableTick() *App {
	a.disableTick = true
	return a
}

// WithWorkDir sets the directory the project configuration is searched from.
// It defaults to the process working directory.
func (a *App) WithWorkDir(dir string) *App {
	a.workDir = dir
	return a
}

// WithOutput redirects progress and summary output.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// RunOptions configuration for the commands driving the pipeline.
type RunOptions struct {
	OutputMode string
}

// session is the state shared by the stages of one command.
type session struct {
	cfg    *domain.Config
	tracer ports.Tracer
	orch   *pipeline.Orchestrator
}

// Build runs every pipeline stage once and exits.
func (a *App) Build(ctx context.Context, opts RunOptions) error {
	return a.run(ctx, opts, job{
		stages: func(ctx context.Context, s *session) ([]domain.StageResult, error) {
			return s.orch.Build(ctx)
		},
		cached: true,
	})
}

// Bindings refreshes the index and regenerates the binding file.
func (a *App) Bindings(ctx context.Context, opts RunOptions) error {
	return a.run(ctx, opts, job{
		stages: func(ctx context.Context, s *session) ([]domain.StageResult, error) {
			return s.orch.RefreshBindings(ctx)
		},
		cached: true,
	})
}

// Watch runs a full build and then keeps the output tree in sync until ctx is done.
func (a *App) Watch(ctx context.Context, opts RunOptions) error {
	return a.run(ctx, opts, job{
		stages: func(ctx context.Context, s *session) ([]domain.StageResult, error) {
			return s.orch.Build(ctx)
		},
		follow: a.watch,
		cached: true,
	})
}

// Speak synthesizes the missing audio of the dialogue file at path.
func (a *App) Speak(ctx context.Context, path string, opts RunOptions) error {
	if !filepath.IsAbs(path) && a.workDir != "" {
		path = filepath.Join(a.workDir, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrIOFailure.Error()), "path", path)
	}
	path = abs

	// Speak neither reads the checksum cache nor writes the output tree, so it runs
	// next to a watching kiln without the workspace lock.
	return a.run(ctx, opts, job{
		stages: func(ctx context.Context, s *session) ([]domain.StageResult, error) {
			synth, err := a.Synthesize(ctx, s.cfg, a.Runner)
			if err != nil {
				return nil, err
			}
			res, err := speak.New(s.cfg, a.Files, synth, s.tracer, a.Logger).Speak(ctx, path)
			return []domain.StageResult{res}, err
		},
	})
}

// job describes one command driven by run.
type job struct {
	stages func(ctx context.Context, s *session) ([]domain.StageResult, error)
	// follow runs after a successful batch, without the renderer.
	follow func(ctx context.Context, s *session) error
	// cached jobs hold the workspace lock and persist the checksum cache.
	cached bool
}

// run loads the project, runs the job's stages under a progress renderer and persists the
// checksum cache.
//
//nolint:cyclop // orchestration function
func (a *App) run(ctx context.Context, opts RunOptions, j job) error {
	// 1. Load the configuration
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	// 2. Lock the workspace and load the checksum cache
	sums := domain.NewChecksums()
	save := func(domain.Checksums) error { return nil }
	if j.cached {
		store := a.Store(cfg)
		if err := store.Acquire(); err != nil {
			return err
		}
		defer func() {
			if err := store.Release(); err != nil {
				a.Logger.Error(err)
			}
		}()

		loaded, err := store.Load()
		if err != nil {
			a.Logger.Warn("checksum cache unreadable, rebuilding everything: " + err.Error())
		} else {
			sums = loaded
		}
		save = store.Save
	}

	// 3. Initialize Renderer
	renderer, err := a.newRenderer(ctx, opts.OutputMode)
	if err != nil {
		return err
	}

	// 4. Initialize Telemetry
	// Every span is forwarded to the renderer by the bridge.
	shutdown := telemetry.Setup(telemetry.NewBridge(renderer))
	defer func() {
		_ = shutdown(context.WithoutCancel(ctx))
	}()
	runID := uuid.NewString()
	tracer := telemetry.NewOTelTracer(telemetry.InstrumentationName).WithAttribute(domain.AttrRunID, runID)
	a.setLogAttrs(domain.AttrRunID, runID)

	orch := pipeline.NewOrchestrator(cfg, a.Files, a.Hasher, a.Runner, template.ForConfig(cfg), tracer, a.Logger)
	orch.SetChecksums(sums)
	s := &session{cfg: cfg, tracer: tracer, orch: orch}

	// 5. Run Renderer and Stages concurrently
	var results []domain.StageResult
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := renderer.Start(gctx); err != nil {
			return err
		}
		// Wait blocks until the renderer has terminated.
		return renderer.Wait()
	})

	g.Go(func() error {
		defer func() {
			if r := recover(); r != nil {
				fmt.Fprintf(a.stderr, "Pipeline panic: %v\n", r)
			}
			_ = renderer.Stop()
		}()

		var err error
		results, err = j.stages(gctx, s)
		if err != nil {
			return errors.Join(domain.ErrBuildFailed, err)
		}
		return nil
	})

	err = g.Wait()

	// 6. Report and persist
	if out := summary.Render(results); out != "" {
		fmt.Fprint(a.stderr, out)
	}
	if saveErr := save(orch.Checksums()); saveErr != nil {
		err = errors.Join(err, saveErr)
	}
	if err != nil || j.follow == nil {
		return err
	}

	err = j.follow(ctx, s)
	if saveErr := save(orch.Checksums()); saveErr != nil {
		err = errors.Join(err, saveErr)
	}
	return err
}

func (a *App) watch(ctx context.Context, s *session) error {
	w, err := a.Watcher()
	if err != nil {
		return err
	}
	suppressed := watcher.NewSuppressionSet(s.cfg.Watch.SuppressionTTL)
	loop := watchloop.New(s.cfg, s.orch, w, a.Debouncer, suppressed, a.Logger)
	if err := loop.Run(ctx); err != nil {
		return errors.Join(domain.ErrBuildFailed, err)
	}
	return nil
}

func (a *App) newRenderer(ctx context.Context, outputMode string) (ports.Renderer, error) {
	requested, err := detector.ParseMode(outputMode)
	if err != nil {
		return nil, err
	}
	mode := detector.ResolveMode(detector.DetectEnvironment(), requested)

	if mode == detector.ModeTUI {
		model := tui.NewModel(a.stderr)
		if a.disableTick {
			model = model.WithDisableTick()
		}
		optsTea := append([]tea.ProgramOption{tea.WithContext(ctx)}, a.teaOptions...)
		return tui.NewRenderer(&model, optsTea...), nil
	}
	return linear.NewRenderer(a.stdout, a.stderr), nil
}

func (a *App) loadConfig() (*domain.Config, error) {
	dir := a.workDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, zerr.Wrap(err, domain.ErrFailedToGetRoot.Error())
		}
		dir = wd
	}

	cfg, err := a.Loader.Load(dir)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	return cfg, nil
}

// Clean removes the checksum cache so that the next build converts everything again.
func (a *App) Clean(_ context.Context) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	store := a.Store(cfg)
	if err := store.Acquire(); err != nil {
		return err
	}
	defer func() {
		if err := store.Release(); err != nil {
			a.Logger.Error(err)
		}
	}()

	path := cfg.ChecksumsPath()
	a.Logger.Info(fmt.Sprintf("removing %s...", path))
	if err := a.Files.RemoveAll(path); err != nil {
		return zerr.Wrap(err, "failed to remove checksum cache")
	}
	a.Logger.Info(fmt.Sprintf("removed %s", path))
	return nil
}

// jsonLogger is implemented by loggers that can switch to structured output.
type jsonLogger interface {
	SetJSON(enable bool)
}

// SetJSONLog switches the logger to JSON lines when it supports it.
func (a *App) SetJSONLog(enable bool) {
	if l, ok := a.Logger.(jsonLogger); ok {
		l.SetJSON(enable)
	}
}

// attrLogger is implemented by loggers that attach attributes to every record.
type attrLogger interface {
	SetAttrs(args ...any)
}

func (a *App) setLogAttrs(args ...any) {
	if l, ok := a.Logger.(attrLogger); ok {
		l.SetAttrs(args...)
	}
}
