package build

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"go.uber.org/zap"
)

// Options tune a single compile invocation.
type Options struct {
	Minify        bool
	EnableAsserts bool
}

// Compiler turns the application entrypoint into the served entry script.
// A nonzero exit status means the compile failed.
type Compiler interface {
	Compile(ctx context.Context, entry string, opts Options) (int, error)
}

// CompileError reports a compile attempt that finished with a nonzero exit
// status. It is recoverable: the device returns to idle and can be started
// again once the source is fixed.
type CompileError struct {
	Entry    string
	ExitCode int
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compilation of %s failed with exit status %d", e.Entry, e.ExitCode)
}

// JSCompiler shells out to the configured compiler binary and waits for it.
// No timeout is imposed; large applications take as long as they take.
type JSCompiler struct {
	log        *zap.Logger
	binary     string
	outputRoot string
}

// NewJSCompiler creates a compiler that writes the entry script under
// outputRoot.
func NewJSCompiler(log *zap.Logger, binary, outputRoot string) *JSCompiler {
	return &JSCompiler{log: log, binary: binary, outputRoot: outputRoot}
}

// Compile runs the compiler and returns its exit status.
func (c *JSCompiler) Compile(ctx context.Context, entry string, opts Options) (int, error) {
	if err := os.MkdirAll(c.outputRoot, 0755); err != nil {
		return -1, fmt.Errorf("failed to create output directory: %w", err)
	}

	args := []string{"compile", "js", entry, "-o", filepath.Join(c.outputRoot, "main.dart.js")}
	if opts.Minify {
		args = append(args, "-O4")
	}
	if opts.EnableAsserts {
		args = append(args, "--enable-asserts")
	}

	cmd := exec.CommandContext(ctx, c.binary, args...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return -1, fmt.Errorf("stderr pipe failed: %w", err)
	}

	c.log.Info("compiling entrypoint",
		zap.String("binary", c.binary),
		zap.String("entry", entry),
		zap.Bool("minify", opts.Minify),
	)

	if err := cmd.Start(); err != nil {
		return -1, fmt.Errorf("failed to start compiler: %w", err)
	}

	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		c.log.Debug("compiler", zap.String("line", scanner.Text()))
	}

	if err := cmd.Wait(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("compiler did not run: %w", err)
	}

	return 0, nil
}
