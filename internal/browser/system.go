package browser

import (
	"fmt"
	"os"

	cli "github.com/cli/browser"
	"go.uber.org/zap"
)

// SystemLauncher opens URLs with whatever browser the OS considers the
// default, skipping Chrome discovery entirely. Useful on machines without a
// Chrome install. No process handle is available through this path.
type SystemLauncher struct {
	log  *zap.Logger
	open func(url string) error
}

// NewSystemLauncher creates a launcher for the OS default browser.
func NewSystemLauncher(log *zap.Logger) *SystemLauncher {
	return &SystemLauncher{log: log, open: cli.OpenURL}
}

// Launch opens url in the default browser and returns immediately.
func (l *SystemLauncher) Launch(url string) (*os.Process, error) {
	if err := l.open(url); err != nil {
		return nil, fmt.Errorf("failed to open default browser: %w", err)
	}
	l.log.Info("default browser launched", zap.String("url", url))
	return nil, nil
}
