package device

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"webpreview/internal/assets"
	"webpreview/internal/build"
	"webpreview/pkg/models"
)

// WebDevice runs a web application as a local preview: compile, bundle,
// serve over loopback, open a browser. One session at a time; starting again
// replaces the previous session.
type WebDevice struct {
	id   string
	name string
	log  *zap.Logger

	compiler build.Compiler
	builder  build.Builder
	launcher Launcher
	server   *assets.Server
	buildDir string

	// slot serializes start/stop so a half-closed server is never reused.
	slot *semaphore.Weighted

	state  models.DeviceState
	bundle *models.BundleContext
	logs   *BufferedLogReader
}

var _ Device = (*WebDevice)(nil)

// NewWebDevice wires a preview device from its collaborators. buildDir is
// where the compiled entry script and the materialized asset bundle live.
func NewWebDevice(id, name string, log *zap.Logger, compiler build.Compiler, builder build.Builder, launcher Launcher, buildDir string) *WebDevice {
	return &WebDevice{
		id:       id,
		name:     name,
		log:      log,
		compiler: compiler,
		builder:  builder,
		launcher: launcher,
		server:   assets.NewServer(log.Named("assets")),
		buildDir: buildDir,
		slot:     semaphore.NewWeighted(1),
		state:    models.StateIdle,
		logs:     NewBufferedLogReader(name),
	}
}

func (d *WebDevice) ID() string   { return d.id }
func (d *WebDevice) Name() string { return d.name }

// IsSupported is true everywhere a browser can be launched; platform
// specifics surface when the launcher resolves its executable.
func (d *WebDevice) IsSupported() bool { return true }

// Install is a no-op: a served web app has nothing to install.
func (d *WebDevice) Install(ctx context.Context, app models.AppPackage) error { return nil }

// Uninstall is a no-op for the same reason.
func (d *WebDevice) Uninstall(ctx context.Context, app models.AppPackage) error { return nil }

func (d *WebDevice) SupportsHotReload() bool  { return false }
func (d *WebDevice) SupportsHotRestart() bool { return false }

func (d *WebDevice) LogReader() LogReader { return d.logs }

// State returns the current lifecycle state.
func (d *WebDevice) State() models.DeviceState { return d.state }

// Start runs the full lifecycle: compile, build and materialize the asset
// bundle, bind the loopback server, launch the browser. A running session is
// stopped first. A compile failure returns *build.CompileError and leaves
// the device idle with nothing bound.
func (d *WebDevice) Start(ctx context.Context, app models.AppPackage, opts models.StartOptions) (*models.ServerHandle, error) {
	if err := d.slot.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer d.slot.Release(1)

	if d.state == models.StateRunning {
		d.stopLocked()
	}
	d.state = models.StateStarting
	d.logs.Append(fmt.Sprintf("starting %s", app.Name))

	code, err := d.compiler.Compile(ctx, app.MainPath, build.Options{
		Minify:        opts.Minify,
		EnableAsserts: opts.EnableAsserts,
	})
	if err != nil {
		d.state = models.StateIdle
		return nil, fmt.Errorf("compile step failed to run: %w", err)
	}
	if code != 0 {
		d.state = models.StateIdle
		d.logs.Append(fmt.Sprintf("compile failed with exit status %d", code))
		return nil, &build.CompileError{Entry: app.MainPath, ExitCode: code}
	}

	code, err = d.builder.Build(ctx)
	if err != nil || code != 0 {
		d.state = models.StateIdle
		return nil, &build.BundleBuildError{ExitCode: code, Err: err}
	}

	assetRoot := filepath.Join(d.buildDir, "assets")
	if err := build.WriteBundle(d.builder.Entries(), assetRoot); err != nil {
		d.state = models.StateIdle
		return nil, &build.BundleBuildError{Err: err}
	}

	bundle := &models.BundleContext{
		AppName:    app.Name,
		WebRoot:    app.WebRoot,
		OutputRoot: d.buildDir,
		AssetRoot:  assetRoot,
		CreatedAt:  time.Now(),
	}
	d.server.SetBundle(bundle)

	handle, err := d.server.Bind()
	if err != nil {
		d.server.SetBundle(nil)
		d.state = models.StateIdle
		return nil, err
	}
	if err := d.server.Serve(); err != nil {
		d.stopLocked()
		return nil, err
	}

	if _, err := d.launcher.Launch(handle.URL); err != nil {
		d.stopLocked()
		return nil, err
	}

	d.bundle = bundle
	d.state = models.StateRunning
	d.log.Info("preview session running",
		zap.String("app", app.Name),
		zap.String("url", handle.URL),
	)
	d.logs.Append(fmt.Sprintf("serving %s at %s", app.Name, handle.URL))

	return handle, nil
}

// Stop shuts the asset server down and clears the session. The launched
// browser is left alone: it cannot be told apart from windows the user
// opened themselves. Idempotent from idle.
func (d *WebDevice) Stop(ctx context.Context) error {
	if err := d.slot.Acquire(ctx, 1); err != nil {
		return err
	}
	defer d.slot.Release(1)

	if d.state == models.StateIdle {
		return nil
	}
	d.stopLocked()
	return nil
}

func (d *WebDevice) stopLocked() {
	d.state = models.StateStopping
	_ = d.server.Shutdown()
	d.server.SetBundle(nil)
	d.bundle = nil
	d.state = models.StateIdle
	d.logs.Append("preview session stopped")
}
