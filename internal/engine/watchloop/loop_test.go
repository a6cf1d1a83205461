package watchloop_test

import (
	"context"
	"iter"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/watcher"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.trai.ch/kiln/internal/engine/watchloop"
	"go.uber.org/mock/gomock"
)

func testConfig() *domain.Config {
	root := filepath.FromSlash("/project")
	source := filepath.Join(root, "data-src")
	return &domain.Config{
		Root:     root,
		Source:   source,
		Output:   filepath.Join(root, "data"),
		Bindings: domain.BindingsConfig{Output: filepath.Join(source, "scripts", "ALPACA.lua")},
		Watch: domain.WatchConfig{
			Debounce:       500 * time.Millisecond,
			SuppressionTTL: 5 * time.Second,
		},
	}
}

// fakePipeline records the operations the loop dispatches.
type fakePipeline struct {
	mu    sync.Mutex
	calls []string

	rewrite   map[string]bool
	exportErr error
	failures  []domain.FileErrors
}

func (p *fakePipeline) record(call string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, call)
}

func (p *fakePipeline) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.calls)
}

func (p *fakePipeline) ExportAnimation(_ context.Context, path string) ([]domain.StageResult, error) {
	p.record("animation " + filepath.Base(path))
	return []domain.StageResult{{Stage: "animations", Failures: p.failures}}, p.exportErr
}

func (p *fakePipeline) UpdateAudio(_ context.Context, path string) ([]domain.StageResult, error) {
	p.record("audio " + filepath.Base(path))
	return nil, nil
}

func (p *fakePipeline) CopyScript(_ context.Context, path string) (domain.StageResult, error) {
	p.record("script " + filepath.Base(path))
	return domain.StageResult{}, nil
}

func (p *fakePipeline) NormalizeScene(_ context.Context, path string) (domain.StageResult, bool, error) {
	p.record("normalize " + filepath.Base(path))
	rewritten := p.rewrite[path]
	delete(p.rewrite, path)
	return domain.StageResult{}, rewritten, nil
}

func (p *fakePipeline) AcceptScene(_ context.Context, path string) (domain.StageResult, error) {
	p.record("accept " + filepath.Base(path))
	return domain.StageResult{}, nil
}

func (p *fakePipeline) CopyConfig(_ context.Context, path string) (domain.StageResult, error) {
	p.record("config " + filepath.Base(path))
	return domain.StageResult{}, nil
}

func (p *fakePipeline) UpdateDialogue(_ context.Context, path string) (domain.StageResult, error) {
	p.record("dialogue " + filepath.Base(path))
	return domain.StageResult{}, nil
}

func (p *fakePipeline) GenerateBindings(context.Context) (domain.StageResult, error) {
	p.record("bindings")
	return domain.StageResult{}, nil
}

// fakeWatcher delivers events pushed by the test.
type fakeWatcher struct {
	events chan ports.WatchEvent
	root   string
	once   sync.Once
}

func newFakeWatcher() *fakeWatcher {
	return &fakeWatcher{events: make(chan ports.WatchEvent)}
}

func (w *fakeWatcher) Start(_ context.Context, root string) error {
	w.root = root
	return nil
}

func (w *fakeWatcher) Stop() error {
	w.once.Do(func() { close(w.events) })
	return nil
}

func (w *fakeWatcher) Events() iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for e := range w.events {
			if !yield(e) {
				return
			}
		}
	}
}

// messages collects log lines from several goroutines.
type messages struct {
	mu    sync.Mutex
	infos []string
	warns []string
}

func (m *messages) Warns() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.warns)
}

func newLogger(t *testing.T, m *messages) *mocks.MockLogger {
	t.Helper()
	logger := mocks.NewMockLogger(gomock.NewController(t))
	logger.EXPECT().Info(gomock.Any()).Do(func(msg string) {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.infos = append(m.infos, msg)
	}).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).Do(func(msg string) {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.warns = append(m.warns, msg)
	}).AnyTimes()
	logger.EXPECT().Error(gomock.Any()).AnyTimes()
	return logger
}

func newLoop(t *testing.T, cfg *domain.Config, p *fakePipeline, w ports.Watcher, m *messages) *watchloop.Loop {
	t.Helper()
	return watchloop.New(cfg, p, w, watcher.NewDebouncerFactory(),
		watcher.NewSuppressionSet(cfg.Watch.SuppressionTTL), newLogger(t, m))
}

func TestDispatch_RoutesByKind(t *testing.T) {
	cfg := testConfig()
	p := &fakePipeline{}
	loop := newLoop(t, cfg, p, newFakeWatcher(), &messages{})

	paths := []string{
		filepath.Join(cfg.Source, "characters", "joy", "joy.spine"),
		filepath.Join(cfg.Source, "audio", "de_001.ogg"),
		filepath.Join(cfg.Source, "scripts", "door.lua"),
		filepath.Join(cfg.Source, "config", "game.json"),
		filepath.Join(cfg.Source, "dialog", "intro.schnack"),
		cfg.Bindings.Output,
		filepath.Join(cfg.Source, "notes.json"),
	}
	for _, path := range paths {
		require.NoError(t, loop.Dispatch(context.Background(), path))
	}

	assert.Equal(t, []string{
		"animation joy.spine", "bindings",
		"audio de_001.ogg", "bindings",
		"script door.lua", "bindings",
		"config game.json", "bindings",
		"dialogue intro.schnack", "bindings",
	}, p.Calls())
}

func TestDispatch_SuppressesSelfWrittenScene(t *testing.T) {
	cfg := testConfig()
	scene := filepath.Join(cfg.Source, "scenes", "intro.json")
	p := &fakePipeline{rewrite: map[string]bool{scene: true}}
	loop := newLoop(t, cfg, p, newFakeWatcher(), &messages{})

	ctx := context.Background()
	// The author's edit leaves a stale hash: the scene is rewritten.
	require.NoError(t, loop.Dispatch(ctx, scene))
	// The rewrite's own event is accepted without hashing again.
	require.NoError(t, loop.Dispatch(ctx, scene))
	// The mark is consumed, so the next edit is normalized again.
	require.NoError(t, loop.Dispatch(ctx, scene))

	assert.Equal(t, []string{
		"normalize intro.json", "bindings",
		"accept intro.json", "bindings",
		"normalize intro.json", "bindings",
	}, p.Calls())
}

func TestDispatch_FatalExportSkipsBindings(t *testing.T) {
	cfg := testConfig()
	p := &fakePipeline{exportErr: &domain.ToolError{Tool: "spine", Source: "data-src/joy.spine", ExitCode: 2}}
	loop := newLoop(t, cfg, p, newFakeWatcher(), &messages{})

	err := loop.Dispatch(context.Background(), filepath.Join(cfg.Source, "joy.spine"))
	require.ErrorIs(t, err, domain.ErrFatalToolFailure)
	assert.Equal(t, []string{"animation joy.spine"}, p.Calls())
}

func TestDispatch_ReportsSoftFailures(t *testing.T) {
	cfg := testConfig()
	p := &fakePipeline{failures: []domain.FileErrors{
		{File: "data-src/joy.spine", Errors: []string{"exported skeleton not found"}},
	}}
	m := &messages{}
	loop := newLoop(t, cfg, p, newFakeWatcher(), m)

	require.NoError(t, loop.Dispatch(context.Background(), filepath.Join(cfg.Source, "joy.spine")))
	assert.Equal(t, []string{"data-src/joy.spine: exported skeleton not found"}, m.Warns())
}

func TestRun_DebouncesEvents(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		cfg := testConfig()
		p := &fakePipeline{}
		w := newFakeWatcher()
		m := &messages{}
		loop := newLoop(t, cfg, p, w, m)

		ctx, cancel := context.WithCancel(context.Background())
		errc := make(chan error, 1)
		go func() { errc <- loop.Run(ctx) }()

		script := filepath.Join(cfg.Source, "scripts", "door.lua")
		for range 3 {
			w.events <- ports.WatchEvent{Path: script, Operation: ports.OpWrite}
		}
		w.events <- ports.WatchEvent{Path: filepath.Join(cfg.Source, "audio", "de_007.ogg"), Operation: ports.OpRemove}
		w.events <- ports.WatchEvent{Path: filepath.Join(cfg.Source, "readme.md"), Operation: ports.OpWrite}

		time.Sleep(cfg.Watch.Debounce + time.Millisecond)
		synctest.Wait()

		assert.Equal(t, cfg.Source, w.root)
		assert.Equal(t, []string{"script door.lua", "bindings"}, p.Calls())
		assert.Equal(t, []string{
			"data-src/audio/de_007.ogg was deleted, please delete it manually from data",
		}, m.Warns())

		cancel()
		require.NoError(t, <-errc)
	})
}

func TestRun_StopsOnFatalDispatch(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		cfg := testConfig()
		p := &fakePipeline{exportErr: &domain.ToolError{Tool: "spine", Source: "data-src/joy.spine", ExitCode: 4}}
		w := newFakeWatcher()
		loop := newLoop(t, cfg, p, w, &messages{})

		errc := make(chan error, 1)
		go func() { errc <- loop.Run(context.Background()) }()

		w.events <- ports.WatchEvent{Path: filepath.Join(cfg.Source, "joy.spine"), Operation: ports.OpCreate}

		var toolErr *domain.ToolError
		require.ErrorAs(t, <-errc, &toolErr)
		assert.Equal(t, 4, toolErr.ExitCode)
	})
}
