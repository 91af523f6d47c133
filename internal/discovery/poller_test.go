package discovery_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"webpreview/internal/browser"
	"webpreview/internal/build"
	"webpreview/internal/device"
	"webpreview/internal/discovery"
)

func testFactory(t *testing.T) func() []device.Device {
	log := zap.NewNop()
	return func() []device.Device {
		dev := device.NewWebDevice("chrome", "Chrome", log,
			build.NewJSCompiler(log, "dart", t.TempDir()),
			build.NewDirBuilder(log, ""),
			browser.NewLauncher(log),
			t.TempDir(),
		)
		return []device.Device{dev}
	}
}

func TestDisabledPollerYieldsNoDevices(t *testing.T) {
	p := discovery.NewPoller(zap.NewNop(), false, time.Millisecond, testFactory(t))
	assert.Nil(t, p.Devices())
}

func TestEnabledPollerYieldsWebDevice(t *testing.T) {
	p := discovery.NewPoller(zap.NewNop(), true, time.Millisecond, testFactory(t))

	devices := p.Devices()
	require.Len(t, devices, 1)
	assert.Equal(t, "chrome", devices[0].ID())
	assert.True(t, devices[0].IsSupported())
}

func TestPollEmitsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := discovery.NewPoller(zap.NewNop(), true, time.Millisecond, testFactory(t))

	ch := p.Poll(ctx)

	select {
	case devices := <-ch:
		require.Len(t, devices, 1)
	case <-time.After(time.Second):
		t.Fatal("no discovery pass emitted")
	}

	cancel()
	select {
	case _, ok := <-ch:
		if ok {
			// One in-flight pass may still be delivered; the next read
			// must observe the closed channel.
			_, ok = <-ch
			assert.False(t, ok)
		}
	case <-time.After(time.Second):
		t.Fatal("poll channel not closed after cancel")
	}
}
