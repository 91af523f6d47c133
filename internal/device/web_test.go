package device

import (
	"context"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"webpreview/internal/build"
	"webpreview/pkg/models"
)

type fakeCompiler struct {
	code   int
	outDir string
	calls  int
}

func (c *fakeCompiler) Compile(ctx context.Context, entry string, opts build.Options) (int, error) {
	c.calls++
	if c.code != 0 {
		return c.code, nil
	}
	if err := os.MkdirAll(c.outDir, 0755); err != nil {
		return -1, err
	}
	return 0, os.WriteFile(filepath.Join(c.outDir, "main.dart.js"), []byte("compiled"), 0644)
}

type fakeBuilder struct {
	entries map[string][]byte
	code    int
	err     error
}

func (b *fakeBuilder) Build(ctx context.Context) (int, error) { return b.code, b.err }
func (b *fakeBuilder) Entries() map[string][]byte             { return b.entries }

type fakeLauncher struct {
	urls []string
	err  error
}

func (l *fakeLauncher) Launch(url string) (*os.Process, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.urls = append(l.urls, url)
	return nil, nil
}

func newTestDevice(t *testing.T) (*WebDevice, models.AppPackage, *fakeCompiler, *fakeLauncher) {
	t.Helper()

	webRoot := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(webRoot, "index.html"), []byte("<html>demo</html>"), 0644))

	buildDir := filepath.Join(t.TempDir(), "build", "web")
	compiler := &fakeCompiler{outDir: buildDir}
	builder := &fakeBuilder{entries: map[string][]byte{"logo.png": []byte("png")}}
	launcher := &fakeLauncher{}

	dev := NewWebDevice("chrome", "Chrome", zap.NewNop(), compiler, builder, launcher, buildDir)
	t.Cleanup(func() { _ = dev.Stop(context.Background()) })

	app := models.AppPackage{Name: "demo", WebRoot: webRoot, MainPath: "web/main.dart"}
	return dev, app, compiler, launcher
}

func TestStartServesAndLaunches(t *testing.T) {
	dev, app, _, launcher := newTestDevice(t)

	handle, err := dev.Start(context.Background(), app, models.StartOptions{EnableAsserts: true})
	require.NoError(t, err)
	require.NotNil(t, handle)
	assert.Equal(t, models.StateRunning, dev.State())

	require.Len(t, launcher.urls, 1)
	assert.Equal(t, handle.URL, launcher.urls[0])

	resp, err := http.Get(handle.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html", resp.Header.Get("Content-Type"))

	resp, err = http.Get(handle.URL + "main.dart.js")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(handle.URL + "assets/logo.png")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(handle.URL + "unknown")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStartCompileFailureLeavesNothingBound(t *testing.T) {
	dev, app, compiler, launcher := newTestDevice(t)
	compiler.code = 1

	handle, err := dev.Start(context.Background(), app, models.StartOptions{})
	assert.Nil(t, handle)

	var compileErr *build.CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, 1, compileErr.ExitCode)
	assert.Equal(t, 1, compiler.calls)

	assert.Equal(t, models.StateIdle, dev.State())
	assert.Nil(t, dev.server.Handle(), "no listener may be bound after a compile failure")
	assert.Empty(t, launcher.urls, "browser must not be launched after a compile failure")
}

func TestStartBundleBuildFailure(t *testing.T) {
	dev, app, _, _ := newTestDevice(t)
	dev.builder = &fakeBuilder{code: 1}

	_, err := dev.Start(context.Background(), app, models.StartOptions{})

	var bundleErr *build.BundleBuildError
	require.ErrorAs(t, err, &bundleErr)
	assert.Equal(t, models.StateIdle, dev.State())
	assert.Nil(t, dev.server.Handle())
}

func TestStartLaunchFailureTearsDown(t *testing.T) {
	dev, app, _, _ := newTestDevice(t)
	dev.launcher = &fakeLauncher{err: os.ErrNotExist}

	_, err := dev.Start(context.Background(), app, models.StartOptions{})
	require.Error(t, err)
	assert.Equal(t, models.StateIdle, dev.State())
	assert.Nil(t, dev.server.Handle())
}

func TestStartTwiceLeavesOneListener(t *testing.T) {
	dev, app, _, launcher := newTestDevice(t)

	first, err := dev.Start(context.Background(), app, models.StartOptions{})
	require.NoError(t, err)

	second, err := dev.Start(context.Background(), app, models.StartOptions{})
	require.NoError(t, err)
	assert.Len(t, launcher.urls, 2)

	_, err = net.DialTimeout("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(first.Port)), 200*time.Millisecond)
	assert.Error(t, err, "previous session's listener must be closed")

	resp, err := http.Get(second.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStopIsIdempotent(t *testing.T) {
	dev, app, _, _ := newTestDevice(t)

	// Stopping an idle device is a no-op.
	require.NoError(t, dev.Stop(context.Background()))

	handle, err := dev.Start(context.Background(), app, models.StartOptions{})
	require.NoError(t, err)

	require.NoError(t, dev.Stop(context.Background()))
	require.NoError(t, dev.Stop(context.Background()))
	assert.Equal(t, models.StateIdle, dev.State())

	_, err = net.DialTimeout("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(handle.Port)), 200*time.Millisecond)
	assert.Error(t, err, "listener must be closed after stop")
}

func TestCapabilitySurface(t *testing.T) {
	dev, app, _, _ := newTestDevice(t)

	assert.Equal(t, "chrome", dev.ID())
	assert.Equal(t, "Chrome", dev.Name())
	assert.True(t, dev.IsSupported())
	assert.False(t, dev.SupportsHotReload())
	assert.False(t, dev.SupportsHotRestart())
	assert.NoError(t, dev.Install(context.Background(), app))
	assert.NoError(t, dev.Uninstall(context.Background(), app))
	assert.Equal(t, "Chrome", dev.LogReader().Name())
}
