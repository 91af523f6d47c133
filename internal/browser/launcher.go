package browser

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"go.uber.org/zap"
)

var (
	// ErrUnsupportedPlatform means no launch strategy exists for the host OS.
	ErrUnsupportedPlatform = errors.New("no browser launch strategy for this platform")
	// ErrExecutableNotFound means the resolved browser path does not exist.
	ErrExecutableNotFound = errors.New("browser executable not found")
)

const (
	macExecutable   = "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome"
	linuxExecutable = "google-chrome"
	// windowsSuffix is joined under each candidate install prefix.
	windowsSuffix = `Google\Chrome\Application\chrome.exe`
)

// Launcher locates the system Chrome executable and starts it as a detached
// child process. Platform identity, environment, filesystem and process
// spawning are injected so resolution is testable on any host.
type Launcher struct {
	log      *zap.Logger
	platform string
	getenv   func(string) string
	lookPath func(string) (string, error)
	exists   func(string) bool
	spawn    func(path, url string) (*os.Process, error)
}

// NewLauncher creates a launcher backed by the real OS.
func NewLauncher(log *zap.Logger) *Launcher {
	return &Launcher{
		log:      log,
		platform: runtime.GOOS,
		getenv:   os.Getenv,
		lookPath: exec.LookPath,
		exists: func(path string) bool {
			_, err := os.Stat(path)
			return err == nil
		},
		spawn: spawnDetached,
	}
}

func spawnDetached(path, url string) (*os.Process, error) {
	cmd := exec.Command(path, url)
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return cmd.Process, nil
}

// ResolveExecutable returns the platform's Chrome executable path. On
// Windows the candidate install prefixes come from the environment and the
// first existing match wins; when none match the bare suffix is returned so
// the existence check in Launch reports it cleanly.
func (l *Launcher) ResolveExecutable() (string, error) {
	switch l.platform {
	case "darwin":
		return macExecutable, nil
	case "linux":
		path, err := l.lookPath(linuxExecutable)
		if err != nil {
			// Keep the bare name; Launch turns it into a not-found error.
			return linuxExecutable, nil
		}
		return path, nil
	case "windows":
		prefixes := []string{
			l.getenv("LOCALAPPDATA"),
			l.getenv("PROGRAMFILES"),
			l.getenv("PROGRAMFILES(X86)"),
		}
		for _, prefix := range prefixes {
			if prefix == "" {
				continue
			}
			candidate := prefix + `\` + windowsSuffix
			if l.exists(candidate) {
				return candidate, nil
			}
		}
		return windowsSuffix, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedPlatform, l.platform)
	}
}

// Launch starts the browser pointed at url and returns without waiting.
// The child is deliberately left running independent of this process: there
// is no reliable way to attribute browser windows back to this tool, so a
// later stop never touches it.
func (l *Launcher) Launch(url string) (*os.Process, error) {
	path, err := l.ResolveExecutable()
	if err != nil {
		return nil, err
	}

	if !l.exists(path) {
		return nil, fmt.Errorf("%w: %s", ErrExecutableNotFound, path)
	}

	proc, err := l.spawn(path, url)
	if err != nil {
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	l.log.Info("browser launched",
		zap.String("executable", path),
		zap.String("url", url),
	)

	return proc, nil
}
