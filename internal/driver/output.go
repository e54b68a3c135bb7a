package driver

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"scriptcc/internal/errors"
)

// PlaceholderToken marks where the translated script lands in a shell
// template. It must appear exactly once; a missing token fails the build.
const PlaceholderToken = "{{{ SCRIPT_CODE }}}"

//go:embed shell.html
var defaultShell string

// emitArtifact places a finished artifact at its final path. The write goes
// through the workspace so the relocation is atomic: no partial file is
// ever visible at the target path.
func emitArtifact(ws *Workspace, src, dst string) error {
	staged := src
	if !strings.HasPrefix(src, ws.Dir+string(filepath.Separator)) {
		// Sources outside the workspace (e.g. a user-supplied object that
		// needed no linking) are staged first so the original survives.
		staged = ws.Path("emit_" + filepath.Base(src))
		if err := stage(src, staged); err != nil {
			return err
		}
	}
	return relocate(staged, dst)
}

// emitObjects handles compile-only output: a single explicit target takes
// the one object; otherwise each input's object lands next to it, named
// after the input.
func emitObjects(req *BuildRequest, ws *Workspace) error {
	if req.Target.Path != "" {
		if len(req.Inputs) != 1 {
			return errors.Usage("explicit target with -c requires a single input")
		}
		return emitArtifact(ws, req.Inputs[0].Object, req.Target.Path)
	}
	for _, in := range req.Inputs {
		if in.Kind == KindObject {
			continue
		}
		dst := filepath.Join(filepath.Dir(in.Path), in.stem()+".o")
		if err := emitArtifact(ws, in.Object, dst); err != nil {
			return err
		}
	}
	return nil
}

// emitDocument substitutes the translated text into a shell template and
// writes the result to the target path.
func emitDocument(ws *Workspace, script, shellFile, dst string) error {
	shell := defaultShell
	if shellFile != "" {
		data, err := os.ReadFile(shellFile)
		if err != nil {
			return pkgerrors.Wrap(err, "reading shell template")
		}
		shell = string(data)
	}
	if !strings.Contains(shell, PlaceholderToken) {
		name := shellFile
		if name == "" {
			name = "default shell"
		}
		return errors.Template("shell template %s has no %s placeholder", name, PlaceholderToken)
	}

	text, err := os.ReadFile(script)
	if err != nil {
		return pkgerrors.Wrap(err, "reading translated text")
	}
	doc := strings.Replace(shell, PlaceholderToken, string(text), 1)

	staged := ws.Path("output.html")
	if err := os.WriteFile(staged, []byte(doc), 0o644); err != nil {
		return pkgerrors.Wrap(err, "writing document")
	}
	return relocate(staged, dst)
}

// stage copies a file into the workspace.
func stage(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return pkgerrors.Wrap(err, "staging artifact")
	}
	return pkgerrors.Wrap(os.WriteFile(dst, data, 0o644), "staging artifact")
}
