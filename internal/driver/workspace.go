package driver

import (
	"io"
	"os"
	"path/filepath"

	pkgerrors "github.com/pkg/errors"
)

// Workspace is the per-request temporary directory. Every intermediate and
// final artifact is written here and relocated to its target path only at
// emission, so no partial file is ever visible at the final location.
type Workspace struct {
	Dir string

	// Persistent workspaces are never released; the caller reports the
	// path instead.
	Persistent bool
}

// acquireWorkspace creates the per-request directory. A non-empty override
// pins the workspace to that path and marks it persistent.
func acquireWorkspace(override string) (*Workspace, error) {
	if override != "" {
		if err := os.MkdirAll(override, 0o755); err != nil {
			return nil, pkgerrors.Wrap(err, "creating workspace")
		}
		return &Workspace{Dir: override, Persistent: true}, nil
	}
	dir, err := os.MkdirTemp("", "scriptcc-")
	if err != nil {
		return nil, pkgerrors.Wrap(err, "creating workspace")
	}
	return &Workspace{Dir: dir}, nil
}

// Release removes the workspace unless it is persistent. Safe to call on
// every exit path.
func (w *Workspace) Release() {
	if w == nil || w.Persistent {
		return
	}
	os.RemoveAll(w.Dir)
}

// Path joins elements under the workspace directory.
func (w *Workspace) Path(elem ...string) string {
	return filepath.Join(append([]string{w.Dir}, elem...)...)
}

// relocate atomically moves a finished artifact out of the workspace to its
// final path, falling back to copy+remove across filesystems.
func relocate(src, dst string) error {
	if dir := filepath.Dir(dst); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return pkgerrors.Wrap(err, "creating target directory")
		}
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := copyReplace(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

// copyReplace copies src beside dst and renames it into place, so an
// interrupted copy never leaves a partial file at the final path.
func copyReplace(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return pkgerrors.Wrap(err, "relocating artifact")
	}
	defer in.Close()
	out, err := os.CreateTemp(filepath.Dir(dst), filepath.Base(dst)+".tmp")
	if err != nil {
		return pkgerrors.Wrap(err, "relocating artifact")
	}
	tmp := out.Name()
	if err := out.Chmod(0o644); err != nil {
		out.Close()
		os.Remove(tmp)
		return pkgerrors.Wrap(err, "relocating artifact")
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return pkgerrors.Wrap(err, "relocating artifact")
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return pkgerrors.Wrap(err, "relocating artifact")
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return pkgerrors.Wrap(err, "relocating artifact")
	}
	return nil
}
