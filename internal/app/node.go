package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/kiln/internal/adapters/cas"     //nolint:depguard // Wired in app layer
	"go.trai.ch/kiln/internal/adapters/config"  //nolint:depguard // Wired in app layer
	"go.trai.ch/kiln/internal/adapters/fs"      //nolint:depguard // Wired in app layer
	"go.trai.ch/kiln/internal/adapters/logger"  //nolint:depguard // Wired in app layer
	"go.trai.ch/kiln/internal/adapters/shell"   //nolint:depguard // Wired in app layer
	"go.trai.ch/kiln/internal/adapters/tts"     //nolint:depguard // Wired in app layer
	"go.trai.ch/kiln/internal/adapters/watcher" //nolint:depguard // Wired in app layer
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components contains all the initialized application components.
// This struct provides controlled access to components needed by the CLI layer.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			logger.NodeID,
			fs.FilesNodeID,
			fs.HasherNodeID,
			shell.NodeID,
			watcher.WatcherNodeID,
			watcher.DebouncerNodeID,
		},
		Run: runAppNode,
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{App: app, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	files, err := graft.Dep[ports.FileSystem](ctx)
	if err != nil {
		return nil, err
	}

	hasher, err := graft.Dep[ports.Hasher](ctx)
	if err != nil {
		return nil, err
	}

	runner, err := graft.Dep[ports.ToolRunner](ctx)
	if err != nil {
		return nil, err
	}

	newWatcher, err := graft.Dep[ports.WatcherFactory](ctx)
	if err != nil {
		return nil, err
	}

	newDebouncer, err := graft.Dep[ports.DebouncerFactory](ctx)
	if err != nil {
		return nil, err
	}

	return New(Services{
		Loader:     loader,
		Logger:     log,
		Files:      files,
		Hasher:     hasher,
		Runner:     runner,
		Watcher:    newWatcher,
		Debouncer:  newDebouncer,
		Store:      OpenStore,
		Synthesize: NewSynthesizer,
	}), nil
}

// OpenStore opens the checksum cache and workspace lock below the project's cache directory.
func OpenStore(cfg *domain.Config) ports.ChecksumStore {
	return cas.NewStore(cfg.ChecksumsPath(), cfg.LockPath())
}

// NewSynthesizer creates the speech synthesizer for the project's speech settings.
func NewSynthesizer(ctx context.Context, cfg *domain.Config, runner ports.ToolRunner) (ports.Synthesizer, error) {
	return tts.New(ctx, cfg, runner)
}
