package procmacro

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/software-mansion/scarb/scarbid"
)

// PlatformTriple identifies the current build's platform the way a
// prebuilt plugin binary's filename would encode it (§4.I point 1).
func PlatformTriple() string {
	return fmt.Sprintf("%s-%s", runtime.GOOS, runtime.GOARCH)
}

// BuildSpec describes one plugin package ready to be built or loaded.
type BuildSpec struct {
	Package          scarbid.PackageId
	SourceDir        string
	SourceHash       string // content fingerprint of SourceDir, from resolve.Fingerprint
	PrebuiltPath     string // path to a shipped prebuilt binary, if any
	AllowPrebuilt    bool
	BuildToolCommand []string // foreign build tool invocation, e.g. ["cargo", "build", "--release"]
	BuiltArtifact    string   // relative path to the shared library the build tool produces
}

// BuildResult is the outcome of ensuring a plugin's shared library exists.
type BuildResult struct {
	LibraryPath string
	Stdout      string
	Stderr      string
	FromPrebuilt bool
}

// PluginBuildFailedError wraps a foreign build tool failure, carrying its
// captured output for diagnostics (§4.I, §7 KindPluginBuildFailed).
type PluginBuildFailedError struct {
	Package scarbid.PackageId
	Stdout  string
	Stderr  string
	Cause   error
}

func (e *PluginBuildFailedError) Error() string {
	return fmt.Sprintf("building plugin %s: %v", e.Package, e.Cause)
}

func (e *PluginBuildFailedError) Unwrap() error { return e.Cause }

// Build ensures a shared library exists in
// <cacheRoot>/<source-hash>/<package-id>/ for spec, preferring a shipped
// prebuilt binary for the current platform when the workspace has opted
// in, otherwise invoking the foreign build tool and capturing its output
// (§4.I point 1).
func Build(spec BuildSpec, cacheRoot string) (*BuildResult, error) {
	destDir := filepath.Join(cacheRoot, spec.SourceHash, sanitizePackageID(spec.Package))
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, err
	}

	if spec.AllowPrebuilt && spec.PrebuiltPath != "" {
		if _, err := os.Stat(spec.PrebuiltPath); err == nil {
			dest := filepath.Join(destDir, filepath.Base(spec.PrebuiltPath))
			if err := copyFile(spec.PrebuiltPath, dest); err != nil {
				return nil, err
			}
			return &BuildResult{LibraryPath: dest, FromPrebuilt: true}, nil
		}
	}

	builtPath := filepath.Join(destDir, spec.BuiltArtifact)
	if _, err := os.Stat(builtPath); err == nil {
		return &BuildResult{LibraryPath: builtPath}, nil
	}

	if len(spec.BuildToolCommand) == 0 {
		return nil, &PluginBuildFailedError{Package: spec.Package, Cause: fmt.Errorf("no build tool command configured and no usable prebuilt binary")}
	}

	cmd := exec.Command(spec.BuildToolCommand[0], spec.BuildToolCommand[1:]...)
	cmd.Dir = spec.SourceDir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, &PluginBuildFailedError{
			Package: spec.Package,
			Stdout:  stdout.String(),
			Stderr:  stderr.String(),
			Cause:   err,
		}
	}

	producedPath := filepath.Join(spec.SourceDir, spec.BuiltArtifact)
	if err := copyFile(producedPath, builtPath); err != nil {
		return nil, &PluginBuildFailedError{Package: spec.Package, Stdout: stdout.String(), Stderr: stderr.String(), Cause: err}
	}

	return &BuildResult{LibraryPath: builtPath, Stdout: stdout.String(), Stderr: stderr.String()}, nil
}

func sanitizePackageID(id scarbid.PackageId) string {
	return id.Name.String() + "-" + id.Version.String()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}
