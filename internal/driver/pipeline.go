package driver

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"scriptcc/internal/cache"
	"scriptcc/internal/config"
	"scriptcc/internal/errors"
	"scriptcc/internal/libraries"
	"scriptcc/internal/passes"
	"scriptcc/internal/symbols"
	"scriptcc/internal/toolchain"
)

var log = commonlog.GetLogger("scriptcc.driver")

// Pipeline sequences one build request through the stage machine. A
// Pipeline value is single-use: it carries the request's state and must not
// be shared across requests.
type Pipeline struct {
	tc       toolchain.Toolchain
	store    *cache.Cache
	catalog  []libraries.Descriptor
	reporter *errors.Reporter
	state    State
}

// New returns a pipeline over the given toolchain and library cache. A nil
// reporter defaults to stderr.
func New(tc toolchain.Toolchain, store *cache.Cache, reporter *errors.Reporter) *Pipeline {
	if reporter == nil {
		reporter = errors.NewReporter(os.Stderr)
	}
	return &Pipeline{
		tc:       tc,
		store:    store,
		catalog:  libraries.Registry(),
		reporter: reporter,
		state:    StateParsed,
	}
}

// State exposes the current pipeline state, mostly for tests and tracing.
func (p *Pipeline) State() State {
	return p.state
}

func (p *Pipeline) advance(to State) {
	if !allowedTransition(p.state, to) {
		panic(fmt.Sprintf("invalid pipeline transition %s -> %s", p.state, to))
	}
	log.Debugf("state %s -> %s", p.state, to)
	p.state = to
}

// fail marks the pipeline Failed and passes the error through. All errors
// are fatal: no stage attempts recovery or partial output.
func (p *Pipeline) fail(err error) error {
	p.state = StateFailed
	return err
}

// Run executes the whole pipeline for one request. The workspace is
// released on every exit path unless the environment pinned it, in which
// case the path is reported instead.
func (p *Pipeline) Run(ctx context.Context, req *BuildRequest, env Env) error {
	settings, err := config.Derive(req.OptLevel)
	if err != nil {
		return p.fail(err)
	}
	if err := config.Apply(settings, req.Overrides); err != nil {
		return p.fail(err)
	}

	minify := req.effectiveMinify()
	scriptTarget := !req.CompileOnly && req.Target.Kind != TargetObject
	if !scriptTarget {
		if req.Minify != nil && *req.Minify {
			p.reporter.Warn("--minify ignored: target is not a translated program")
		}
		if req.TransformCmd != "" {
			p.reporter.Warn("--transform ignored: target is not a translated program")
		}
		if req.Compress {
			p.reporter.Warn("--compress ignored: target is not a translated program")
		}
	}
	if settings.Reloop && !settings.MicroOpts {
		p.reporter.Warn("structural control-flow reconstruction without backend optimizations is slow")
	}

	ws, err := acquireWorkspace(env.TempDir)
	if err != nil {
		return p.fail(err)
	}
	defer func() {
		if ws.Persistent {
			p.reporter.Warn("keeping temporary workspace %s", ws.Dir)
			return
		}
		ws.Release()
	}()

	if req.DepFile != "" {
		// Accepted for build-system compatibility; dependency scanning is
		// not implemented, so the file is empty.
		if err := os.WriteFile(req.DepFile, nil, 0o644); err != nil {
			return p.fail(err)
		}
	}

	var linked string
	if env.InputsRaw {
		// Inputs are already fully processed objects; skip every
		// bitcode-level stage.
		if len(req.Inputs) > 1 {
			p.reporter.Warn("SCRIPTCC_INPUTS_RAW: using %s, ignoring %d further inputs",
				req.Inputs[0].Path, len(req.Inputs)-1)
		}
		linked = req.Inputs[0].Path
		p.advance(StateCompiled)
		p.advance(StateSymbolResolved)
		p.advance(StateLinked)
		p.advance(StateBitcodeOptimized)
	} else {
		if err := p.compileInputs(ctx, req, settings, ws); err != nil {
			return p.fail(err)
		}
		p.advance(StateCompiled)

		if req.CompileOnly {
			if err := emitObjects(req, ws); err != nil {
				return p.fail(err)
			}
			p.advance(StateEmitted)
			return nil
		}

		extra, err := p.resolveLibraries(ctx, req, settings)
		if err != nil {
			return p.fail(err)
		}
		p.advance(StateSymbolResolved)

		linked, err = p.link(ctx, req, extra, ws)
		if err != nil {
			return p.fail(err)
		}
		p.advance(StateLinked)

		if err := p.optimizeBitcode(ctx, req, settings, linked); err != nil {
			return p.fail(err)
		}
		p.advance(StateBitcodeOptimized)
	}

	if req.Target.Kind == TargetObject {
		if err := emitArtifact(ws, linked, req.Target.Path); err != nil {
			return p.fail(err)
		}
		p.advance(StateEmitted)
		return nil
	}

	script := ws.Path("output.js")
	if err := p.tc.Translate(ctx, settings, linked, script); err != nil {
		return p.fail(errors.Translation(err, "translating linked bitcode"))
	}
	p.advance(StateTranslated)

	if req.TransformCmd != "" {
		if err := runTransform(ctx, req.TransformCmd, script); err != nil {
			return p.fail(err)
		}
	}
	p.advance(StateTransformed)

	q := passes.NewQueue()
	if settings.Reloop {
		q.Enqueue(passes.HoistMultiples)
		q.Enqueue(passes.LoopOptimizer)
	}
	if settings.MicroOpts {
		q.Enqueue(passes.Eliminate)
		q.Enqueue(passes.SimplifyExpressions)
		q.Enqueue(passes.OptimizeShifts)
	}
	if err := q.Flush(ctx, p.tc, settings, script); err != nil {
		return p.fail(errors.Translation(err, "applying pre-minify passes"))
	}
	p.advance(StatePassesFlushedPre)

	if minify {
		if err := p.tc.Minify(ctx, script); err != nil {
			return p.fail(errors.Translation(err, "minifying output"))
		}
	}
	p.advance(StateMinified)

	if settings.MicroOpts {
		q.Enqueue(passes.SimplifyExpressions)
	}
	if req.Compress {
		q.Enqueue(passes.Compress)
	}
	if err := q.Flush(ctx, p.tc, settings, script); err != nil {
		return p.fail(errors.Translation(err, "applying post-minify passes"))
	}
	p.advance(StatePassesFlushedPost)

	switch req.Target.Kind {
	case TargetProgram:
		err = emitArtifact(ws, script, req.Target.Path)
	case TargetDocument:
		err = emitDocument(ws, script, req.ShellFile, req.Target.Path)
	}
	if err != nil {
		return p.fail(err)
	}
	p.advance(StateEmitted)
	return nil
}

// compileInputs reduces every input to object form. Independent inputs
// compile in parallel; all objects are collected before symbol resolution.
func (p *Pipeline) compileInputs(ctx context.Context, req *BuildRequest, settings *config.Settings, ws *Workspace) error {
	g, gctx := errgroup.WithContext(ctx)
	for i, in := range req.Inputs {
		if in.Kind == KindObject {
			in.Object = in.Path
			continue
		}
		obj := ws.Path(fmt.Sprintf("%d_%s.bc", i, in.stem()))
		in := in
		g.Go(func() error {
			var err error
			if in.Kind == KindSource {
				err = p.tc.Compile(gctx, settings, in.Path, obj)
			} else {
				err = p.tc.Assemble(gctx, in.Path, obj)
			}
			if err != nil {
				return errors.Compile(err, "compiling %s", in.Path)
			}
			if _, err := os.Stat(obj); err != nil {
				return errors.Compile(nil, "frontend produced no object for %s", in.Path)
			}
			in.Object = obj
			return nil
		})
	}
	return g.Wait()
}

// resolveLibraries computes per-object symbol tables and runs conditional
// library linking, returning extra artifact paths in link order.
func (p *Pipeline) resolveLibraries(ctx context.Context, req *BuildRequest, settings *config.Settings) ([]string, error) {
	tables := make([]*symbols.Table, len(req.Inputs))
	g, gctx := errgroup.WithContext(ctx)
	for i, in := range req.Inputs {
		i, in := i, in
		g.Go(func() error {
			listing, err := p.tc.Symbols(gctx, in.Object)
			if err != nil {
				return errors.Link(err, "reading symbols of %s", in.Path)
			}
			tables[i] = symbols.ParseListing(listing)
			log.Debugf("%s: %d defined, %d undefined", in.Path,
				tables[i].DefinedCount(), tables[i].UndefinedCount())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res, err := libraries.Resolve(ctx, tables, p.catalog, p.store, p.tc, settings, p.reporter.Warn)
	if err != nil {
		return nil, err
	}
	if len(res.Included) > 0 {
		log.Infof("linking support libraries: %s", strings.Join(res.Included, ", "))
	}
	return res.Paths, nil
}

// link combines the input objects and resolved libraries into one object.
// A single object with no extra libraries passes through untouched.
func (p *Pipeline) link(ctx context.Context, req *BuildRequest, extra []string, ws *Workspace) (string, error) {
	objects := make([]string, 0, len(req.Inputs)+len(extra))
	for _, in := range req.Inputs {
		objects = append(objects, in.Object)
	}
	objects = append(objects, extra...)

	if len(objects) == 1 {
		return objects[0], nil
	}
	linked := ws.Path("linked.bc")
	if err := p.tc.Link(ctx, objects, linked); err != nil {
		return "", errors.Link(err, "linking %d objects", len(objects))
	}
	return linked, nil
}

// optimizeBitcode runs the full optimizer when a backend level is in
// effect, otherwise a light dead-globals pass unless building a shared
// library.
func (p *Pipeline) optimizeBitcode(ctx context.Context, req *BuildRequest, settings *config.Settings, linked string) error {
	bopts := req.BitcodeOpts
	if bopts < 0 {
		bopts = 0
		if settings.MicroOpts {
			bopts = 1
		}
	}
	if bopts > 0 {
		if err := p.tc.OptimizeBitcode(ctx, linked, req.OptLevel); err != nil {
			return errors.Link(err, "optimizing bitcode")
		}
		return nil
	}
	if req.Shared {
		return nil
	}
	if err := p.tc.DeadGlobalElim(ctx, linked); err != nil {
		return errors.Link(err, "eliminating dead globals")
	}
	return nil
}

// runTransform invokes the external text-transform hook with the script
// path appended. The command must succeed and leave non-empty output text.
func runTransform(ctx context.Context, cmdline, script string) error {
	parts := strings.Fields(cmdline)
	if len(parts) == 0 {
		return errors.TransformHook(nil, "empty transform command")
	}
	cmd := exec.CommandContext(ctx, parts[0], append(parts[1:], script)...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return errors.TransformHook(err, "transform %q failed: %s", cmdline, strings.TrimSpace(string(out)))
	}
	info, err := os.Stat(script)
	if err != nil || info.Size() == 0 {
		return errors.TransformHook(nil, "transform %q left no output text", cmdline)
	}
	return nil
}
