package build

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// ErrBuildFailed matches every BuildFailedError.
var ErrBuildFailed = errors.New("build failed")

// BuildFailedError reports a non-zero cargo exit.
type BuildFailedError struct {
	ExitCode int
}

func (e *BuildFailedError) Error() string {
	return fmt.Sprintf("build failed with exit code %d", e.ExitCode)
}

// Is reports whether target is ErrBuildFailed.
func (e *BuildFailedError) Is(target error) bool {
	return target == ErrBuildFailed
}

// Runner invokes cargo.
type Runner struct {
	// Cargo is the cargo executable; defaults to $CARGO, then "cargo"
	Cargo string

	// Dir is the working directory (empty for the current one)
	Dir string

	// Stdout and Stderr receive the build output; nil means os.Stdout
	// and os.Stderr
	Stdout io.Writer
	Stderr io.Writer
}

func (r *Runner) cargo() string {
	if r.Cargo != "" {
		return r.Cargo
	}
	if c := os.Getenv("CARGO"); c != "" {
		return c
	}
	return "cargo"
}

func (r *Runner) stdout() io.Writer {
	if r.Stdout != nil {
		return r.Stdout
	}
	return os.Stdout
}

func (r *Runner) stderr() io.Writer {
	if r.Stderr != nil {
		return r.Stderr
	}
	return os.Stderr
}

// Metadata runs `cargo metadata` for the request's manifest.
func (r *Runner) Metadata(ctx context.Context, req Request) (*Metadata, error) {
	args := []string{"metadata", "--format-version", "1", "--no-deps"}
	if req.ManifestPath != "" {
		args = append(args, "--manifest-path", req.ManifestPath)
	}

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, r.cargo(), args...)
	cmd.Dir = r.Dir
	cmd.Stdout = &out
	cmd.Stderr = r.stderr()

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("cargo metadata: %w", err)
	}
	return ParseMetadata(out.Bytes())
}

// Build runs `cargo build` for req and returns the artifact path.
// A non-zero exit is reported as *BuildFailedError.
//
// The path is the executable cargo reports for the artifact, so a target
// set in .cargo/config.toml is honoured without --target. When cargo
// reports none, the path is computed by ResolveArtifactPath, taking the
// target from CARGO_BUILD_TARGET if req has none.
func (r *Runner) Build(ctx context.Context, req Request) (string, error) {
	meta, err := r.Metadata(ctx, req)
	if err != nil {
		return "", err
	}

	args := append(Args(req), "--message-format="+MessageFormat)
	cmd := exec.CommandContext(ctx, r.cargo(), args...)
	cmd.Dir = r.Dir
	cmd.Stderr = r.stderr()

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("run cargo build: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("run cargo build: %w", err)
	}

	artifacts, readErr := ReadArtifacts(stdout, r.stdout())
	if readErr != nil {
		_, _ = io.Copy(io.Discard, stdout)
	}

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code := exitErr.ExitCode()
			if code < 0 {
				code = 1
			}
			return "", &BuildFailedError{ExitCode: code}
		}
		return "", fmt.Errorf("run cargo build: %w", err)
	}
	if readErr != nil {
		return "", readErr
	}

	name, err := ArtifactName(req, meta)
	if err != nil {
		return "", err
	}
	if exe, ok := SelectExecutable(req, name, artifacts); ok {
		return exe, nil
	}

	if req.TargetTriple == "" {
		req.TargetTriple = os.Getenv("CARGO_BUILD_TARGET")
	}
	return ResolveArtifactPath(req, meta)
}
