package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/kiln/internal/adapters/fs"
	"go.trai.ch/kiln/internal/app"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	loader *mocks.MockConfigLoader
	logger *mocks.MockLogger
	store  *mocks.MockChecksumStore
	runner *mocks.MockToolRunner
	app    *app.App
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &fixture{
		loader: mocks.NewMockConfigLoader(ctrl),
		logger: mocks.NewMockLogger(ctrl),
		store:  mocks.NewMockChecksumStore(ctrl),
		runner: mocks.NewMockToolRunner(ctrl),
	}
	f.app = app.New(app.Services{
		Loader: f.loader,
		Logger: f.logger,
		Files:  fs.NewFiles(fs.NewWalker()),
		Hasher: fs.NewHasher(),
		Runner: f.runner,
		Store: func(*domain.Config) ports.ChecksumStore {
			return f.store
		},
	}).WithWorkDir(t.TempDir()).WithOutput(new(bytes.Buffer), new(bytes.Buffer))
	return f
}

func (f *fixture) provider(_ context.Context) (*app.Components, func(), error) {
	return &app.Components{App: f.app, Logger: f.logger}, func() {}, nil
}

// TestRun_Success verifies that the run function returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	f := newFixture(t)

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stderr, f.provider)
	assert.Equal(t, 0, exitCode)
}

// TestRun_InitializationError verifies that run returns 1 when component initialization fails.
func TestRun_InitializationError(t *testing.T) {
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return nil, nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

// TestRun_ExecutionError verifies that run returns 1 when the command execution fails.
func TestRun_ExecutionError(t *testing.T) {
	f := newFixture(t)
	f.logger.EXPECT().Error(gomock.Any())
	f.loader.EXPECT().Load(gomock.Any()).Return(nil, errors.New("load failed"))

	exitCode := run(context.Background(), []string{"build", "--ci"}, new(bytes.Buffer), f.provider)
	assert.Equal(t, 1, exitCode)
}

// TestRun_ToolExitCode verifies that a failed animation export exits with the exporter's code.
func TestRun_ToolExitCode(t *testing.T) {
	f := newFixture(t)
	root := t.TempDir()
	cfg := &domain.Config{
		Root:        root,
		Source:      filepath.Join(root, "data-src"),
		Output:      filepath.Join(root, "data"),
		Cache:       filepath.Join(root, domain.KilnDirName),
		Parallelism: 1,
		Tools:       domain.ToolsConfig{Animation: "spine", LipSync: "rhubarb"},
	}
	writeProject(t, filepath.Join(cfg.Source, "characters", "joy", "joy.spine"))

	f.loader.EXPECT().Load(gomock.Any()).Return(cfg, nil)
	f.store.EXPECT().Acquire().Return(nil)
	f.store.EXPECT().Load().Return(domain.NewChecksums(), nil)
	f.store.EXPECT().Save(gomock.Any()).Return(nil)
	f.store.EXPECT().Release().Return(nil)
	f.runner.EXPECT().Run(gomock.Any(), gomock.Any()).Return(domain.ToolResult{ExitCode: 7}, nil)
	f.logger.EXPECT().Error(gomock.Any())
	f.logger.EXPECT().Info(gomock.Any()).AnyTimes()
	f.logger.EXPECT().Warn(gomock.Any()).AnyTimes()

	exitCode := run(context.Background(), []string{"build", "--ci"}, new(bytes.Buffer), f.provider)
	assert.Equal(t, 7, exitCode)
}

func writeProject(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("rig"), domain.FilePerm); err != nil {
		t.Fatal(err)
	}
}
