// Package genpipeline runs registry documents through load, build and emit
// concurrently and then writes every rendered file. Nothing is written
// unless every document renders and every output is staged as a temp file
// beside its destination; the final renames are not atomic as a group, so a
// rename failure can still leave earlier outputs replaced.
package genpipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"dispatchgen/internal/cgen"
	"dispatchgen/internal/diag"
	"dispatchgen/internal/dispatch"
	"dispatchgen/internal/registry"
	"dispatchgen/internal/snapshot"
	"dispatchgen/internal/trace"
)

// ModelDir holds --emit-model snapshots under the output directory.
const ModelDir = "model"

// Request configures one generator run.
type Request struct {
	Files     []string // registry documents, processed independently
	OutDir    string
	Options   dispatch.Options
	Jobs      int // <= 0 means GOMAXPROCS
	Progress  ProgressSink
	EmitModel bool
}

// TargetSummary describes one generated target.
type TargetSummary struct {
	Name      string
	Source    string
	Functions int
	Roots     int
	Providers int
	Outputs   []string // relative to the output directory
}

// Result captures what a run produced.
type Result struct {
	Targets []TargetSummary
	Written []string // absolute paths in write order
	Timings Timings
}

type rendered struct {
	summary TargetSummary
	docs    []cgen.Document
	elapsed map[Stage]time.Duration
}

// Generate renders every document in req.Files and writes the results
// under req.OutDir.
func Generate(ctx context.Context, req *Request) (Result, error) {
	var result Result
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return result, fmt.Errorf("missing generate request")
	}
	if len(req.Files) == 0 {
		return result, diag.Errorf(diag.CfgNoSources, "", "no registry documents given")
	}
	if req.OutDir == "" {
		return result, diag.Errorf(diag.CfgBadValue, "dir", "output directory is required")
	}
	if err := checkTargetNames(req.Files); err != nil {
		return result, err
	}

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeRun, "generate", trace.CurrentSpan(ctx).SpanID)
	ctx = trace.WithSpan(ctx, span)

	emitQueued(req.Progress, req.Files)

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]rendered, len(req.Files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(req.Files)))
	for i, path := range req.Files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			r, err := renderDocument(gctx, path, req)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		emitStage(req.Progress, nil, StageEmit, StatusError, err)
		span.End("error")
		return result, err
	}

	for _, r := range results {
		for stage, d := range r.elapsed {
			result.Timings.Add(stage, d)
		}
		result.Targets = append(result.Targets, r.summary)
	}

	writeStart := time.Now()
	emitStage(req.Progress, nil, StageWrite, StatusWorking, nil)
	var pending []staged
	discard := func() {
		for _, st := range pending {
			_ = os.Remove(st.tmp)
		}
	}
	for i, r := range results {
		file := req.Files[i]
		emitFile(req.Progress, file, StageWrite, StatusWorking, nil)
		for _, d := range r.docs {
			st, err := stageDocument(req.OutDir, d)
			if err != nil {
				discard()
				emitFile(req.Progress, file, StageWrite, StatusError, err)
				emitStage(req.Progress, nil, StageWrite, StatusError, err)
				span.End("error")
				return result, err
			}
			pending = append(pending, st)
		}
	}
	for i, st := range pending {
		if err := os.Rename(st.tmp, st.path); err != nil {
			pending = pending[i:]
			discard()
			err = diag.Wrap(diag.IOWriteFile, st.path, err)
			emitStage(req.Progress, nil, StageWrite, StatusError, err)
			span.End("error")
			return result, err
		}
		result.Written = append(result.Written, st.path)
	}
	for _, file := range req.Files {
		emitFile(req.Progress, file, StageWrite, StatusDone, nil)
	}
	result.Timings.Set(StageWrite, time.Since(writeStart))
	emitStage(req.Progress, nil, StageWrite, StatusDone, nil)
	span.WithExtra("targets", strconv.Itoa(len(results))).
		WithExtra("files", strconv.Itoa(len(result.Written)))
	span.End("")
	return result, nil
}

// checkTargetNames rejects two documents that would overwrite each other.
func checkTargetNames(files []string) error {
	seen := make(map[string]string, len(files))
	for _, f := range files {
		name := registry.DocumentName(f)
		if prev, ok := seen[name]; ok {
			return diag.Errorf(diag.CfgBadValue, f, "target %q is also produced by %s", name, prev)
		}
		seen[name] = f
	}
	return nil
}

func renderDocument(ctx context.Context, path string, req *Request) (rendered, error) {
	out := rendered{elapsed: make(map[Stage]time.Duration, 3)}
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDocument, "document:"+registry.DocumentName(path), trace.CurrentSpan(ctx).SpanID)
	ctx = trace.WithSpan(ctx, span)
	fail := func(stage Stage, err error) (rendered, error) {
		emitFile(req.Progress, path, stage, StatusError, err)
		span.End("error")
		return rendered{}, err
	}

	start := time.Now()
	emitFile(req.Progress, path, StageLoad, StatusWorking, nil)
	reg, err := registry.Load(path)
	if err != nil {
		return fail(StageLoad, err)
	}
	out.elapsed[StageLoad] = time.Since(start)

	start = time.Now()
	emitFile(req.Progress, path, StageBuild, StatusWorking, nil)
	tgt, err := dispatch.Build(ctx, reg, req.Options)
	if err != nil {
		return fail(StageBuild, fmt.Errorf("%s: %w", path, err))
	}
	out.elapsed[StageBuild] = time.Since(start)

	start = time.Now()
	emitFile(req.Progress, path, StageEmit, StatusWorking, nil)
	docs, err := cgen.Emit(tgt)
	if err != nil {
		return fail(StageEmit, fmt.Errorf("%s: %w", path, err))
	}
	if req.EmitModel {
		data, err := snapshot.Marshal(snapshot.FromTarget(tgt))
		if err != nil {
			return fail(StageEmit, diag.Wrap(diag.IOWriteFile, path, err))
		}
		docs = append(docs, cgen.Document{Path: ModelDir + "/" + tgt.Name + ".msgpack", Content: string(data)})
	}
	out.elapsed[StageEmit] = time.Since(start)

	out.docs = docs
	out.summary = TargetSummary{
		Name:      tgt.Name,
		Source:    path,
		Functions: len(tgt.Functions()),
		Roots:     len(tgt.Roots()),
		Providers: len(tgt.Providers()),
	}
	for _, d := range docs {
		out.summary.Outputs = append(out.summary.Outputs, d.Path)
	}
	span.WithExtra("functions", strconv.Itoa(out.summary.Functions))
	span.End("")
	return out, nil
}

// staged is a fully written temp file waiting to be renamed onto path.
type staged struct {
	tmp  string
	path string
}

// stageDocument writes d next to its final path. Renaming happens only once
// every document of the run is staged.
func stageDocument(outDir string, d cgen.Document) (staged, error) {
	path := filepath.Join(outDir, filepath.FromSlash(d.Path))
	dir := filepath.Dir(path)
	// #nosec G301 -- generated sources are meant to be shared with the build
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return staged{}, diag.Wrap(diag.IOWriteFile, dir, err)
	}
	f, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return staged{}, diag.Wrap(diag.IOWriteFile, path, err)
	}
	tmp := f.Name()
	if _, err := f.WriteString(d.Content); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return staged{}, diag.Wrap(diag.IOWriteFile, path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return staged{}, diag.Wrap(diag.IOWriteFile, path, err)
	}
	// #nosec G302 -- generated sources are world-readable like any checkout
	if err := os.Chmod(tmp, 0o644); err != nil {
		_ = os.Remove(tmp)
		return staged{}, diag.Wrap(diag.IOWriteFile, path, err)
	}
	return staged{tmp: tmp, path: path}, nil
}
