package device

import (
	"context"
	"os"

	"webpreview/pkg/models"
)

// Launcher starts a browser pointed at the preview URL. The returned process
// handle may be nil when the underlying strategy cannot expose one.
type Launcher interface {
	Launch(url string) (*os.Process, error)
}

// Device is the capability surface every preview device implements. The web
// device answers most of these trivially; the set exists so callers can treat
// devices uniformly without knowing their kind.
type Device interface {
	// ID is the stable identifier used to select the device.
	ID() string
	// Name is the human-readable device name.
	Name() string
	// IsSupported reports whether this device can run on the host.
	IsSupported() bool

	Install(ctx context.Context, app models.AppPackage) error
	Uninstall(ctx context.Context, app models.AppPackage) error

	// Start compiles, bundles, serves and opens the application. It returns
	// the bound server handle on success.
	Start(ctx context.Context, app models.AppPackage, opts models.StartOptions) (*models.ServerHandle, error)
	// Stop tears the preview session down. Idempotent from idle.
	Stop(ctx context.Context) error

	// SupportsHotReload and SupportsHotRestart are capability queries only;
	// no reload protocol is implemented.
	SupportsHotReload() bool
	SupportsHotRestart() bool

	// LogReader exposes the device's lifecycle log stream.
	LogReader() LogReader
}

// LogReader provides a stream of device log lines.
type LogReader interface {
	Name() string
	Lines() <-chan string
	Close()
}
