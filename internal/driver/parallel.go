package driver

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"bugfree/internal/ast"
	"bugfree/internal/check"
	"bugfree/internal/config"
	"bugfree/internal/diag"
	"bugfree/internal/fix"
	"bugfree/internal/observ"
	"bugfree/internal/phpparse"
	"bugfree/internal/qname"
	"bugfree/internal/resolve"
	"bugfree/internal/source"
	"bugfree/internal/trace"
)

type pipeline struct {
	cfg      *config.Config
	opts     Options
	autofix  bool
	jobs     int
	timer    *observ.Timer
	progress ProgressSink
	cache    *DiskCache

	fileSet     *source.FileSet
	resolver    *resolve.Resolver
	levels      diag.Levels
	fingerprint Digest
}

// unit is one file moving through the passes. Each goroutine owns the
// unit it was handed, so no locking is needed.
type unit struct {
	path     string
	id       source.FileID
	file     *ast.File
	declared []qname.Name
	result   FileResult
}

func jobs(opts Options, cfg *config.Config) int {
	switch {
	case opts.Jobs > 0:
		return opts.Jobs
	case cfg.Jobs > 0:
		return cfg.Jobs
	}
	return runtime.GOMAXPROCS(0)
}

func (p *pipeline) run(ctx context.Context, files []string) (*Result, error) {
	p.fileSet = source.NewFileSet()
	units := p.load(ctx, files)

	if p.cfg.Oracle.IndexSources {
		if err := p.forEach(ctx, StageIndex, units, p.index); err != nil {
			return nil, err
		}
	}

	done := p.timer.Track("oracle")
	declared := collectDeclared(units)
	o, err := BuildOracle(p.cfg, declared)
	if err != nil {
		done("failed")
		return nil, fmt.Errorf("build oracle: %w", err)
	}
	if p.resolver, p.levels, err = newResolver(p.cfg, o, p.autofix); err != nil {
		done("failed")
		return nil, err
	}
	if p.cache != nil {
		display := make([]string, len(units))
		for i, u := range units {
			display[i] = u.result.Path
		}
		if p.fingerprint, err = Fingerprint(p.cfg, p.autofix, declared, display); err != nil {
			done("failed")
			return nil, err
		}
	}
	done(fmt.Sprintf("%d indexed classes", len(declared)))

	if err := p.forEach(ctx, StageCheck, units, p.check); err != nil {
		return nil, err
	}
	if p.opts.Apply {
		if err := p.forEach(ctx, StageApply, units, p.apply); err != nil {
			return nil, err
		}
	}

	res := &Result{FileSet: p.fileSet, Files: make([]FileResult, len(units))}
	for i, u := range units {
		status := StatusDone
		if u.result.Err != nil {
			status = StatusError
		}
		emit(p.progress, Event{File: u.result.Path, Status: status, Err: u.result.Err})
		res.Files[i] = u.result
	}
	return res, nil
}

// load читает файлы последовательно: FileSet не потокобезопасен на запись.
func (p *pipeline) load(ctx context.Context, files []string) []*unit {
	done := p.timer.Track(string(StageLoad))
	_, span := trace.Start(ctx, trace.ScopePass, string(StageLoad))

	units := make([]*unit, len(files))
	failed := 0
	for i, path := range files {
		u := &unit{path: path}
		u.result.Path = filepath.ToSlash(filepath.Clean(path))
		emit(p.progress, Event{File: u.result.Path, Stage: StageLoad, Status: StatusQueued})

		id, err := p.fileSet.Load(path)
		if err != nil {
			u.result.Err = fmt.Errorf("failed to load file: %w", err)
			failed++
		} else {
			u.id = id
			u.result.FileID = id
			u.result.Path = p.fileSet.Display(p.fileSet.Get(id))
		}
		units[i] = u
	}

	note := fmt.Sprintf("%d files, %d failed", len(files), failed)
	span.End(note)
	done(note)
	return units
}

// forEach runs fn over every healthy unit with bounded parallelism. fn
// records per-file failures in the unit; only cancellation stops the pass.
func (p *pipeline) forEach(ctx context.Context, stage Stage, units []*unit, fn func(context.Context, *unit) error) error {
	done := p.timer.Track(string(stage))
	ctx, span := trace.Start(ctx, trace.ScopePass, string(stage))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(p.jobs, len(units))))

	for _, u := range units {
		if u.result.Err != nil {
			continue
		}
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			emit(p.progress, Event{File: u.result.Path, Stage: stage, Status: StatusWorking})
			fctx, fspan := trace.StartFile(gctx, string(stage), u.result.Path)
			start := time.Now()
			err := fn(fctx, u)
			fspan.End("")
			p.timer.File(string(stage), u.result.Path, time.Since(start))
			if err != nil {
				return err
			}
			if u.result.Err != nil {
				emit(p.progress, Event{File: u.result.Path, Stage: stage, Status: StatusError, Err: u.result.Err, Elapsed: time.Since(start)})
			}
			return nil
		})
	}

	err := g.Wait()
	span.End("")
	done("")
	return err
}

func (p *pipeline) parse(ctx context.Context, u *unit) error {
	if u.file != nil {
		return nil
	}
	f, err := phpparse.Parse(ctx, u.result.Path, p.fileSet.Get(u.id).Content)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		u.result.Err = err
		return nil
	}
	u.file = f
	return nil
}

func (p *pipeline) index(ctx context.Context, u *unit) error {
	key := declKey(p.fileSet.Get(u.id).Hash)
	if names, ok, err := p.cache.GetDecls(key); err == nil && ok {
		u.declared = names
		return nil
	}

	if err := p.parse(ctx, u); err != nil || u.result.Err != nil {
		return err
	}
	u.declared = phpparse.Declared(u.file)
	if err := p.cache.PutDecls(key, u.declared); err != nil {
		trace.Note(ctx, trace.ScopeFile, "cache write failed", err.Error())
	}
	return nil
}

func (p *pipeline) check(ctx context.Context, u *unit) error {
	key := checkKey(p.fileSet.Get(u.id).Hash, u.result.Path, p.fingerprint)
	if payload, ok, err := p.cache.GetCheck(key); err == nil && ok {
		u.result.Diagnostics = payload.Diagnostics
		u.result.Fixes = payload.Fixes
		u.result.Cached = true
		u.file = nil
		return nil
	}

	if err := p.parse(ctx, u); err != nil || u.result.Err != nil {
		return err
	}
	res, err := check.Run(u.file, p.resolver, p.levels)
	// дерево больше не нужно
	u.file = nil
	if err != nil {
		if !errors.Is(err, check.ErrMalformedTree) {
			return err
		}
		u.result.Err = err
		return nil
	}
	u.result.Diagnostics = res.Diagnostics
	u.result.Fixes = res.Fixes
	if err := p.cache.PutCheck(key, res.Diagnostics, res.Fixes); err != nil {
		trace.Note(ctx, trace.ScopeFile, "cache write failed", err.Error())
	}
	return nil
}

func (p *pipeline) apply(ctx context.Context, u *unit) error {
	if len(u.result.Fixes) == 0 {
		return nil
	}
	applied, err := fix.ApplyFile(u.path, u.result.Fixes)
	u.result.Applied = applied
	if err != nil && !errors.Is(err, fix.ErrNoFixes) {
		u.result.Err = err
	}
	if applied != nil {
		trace.Note(ctx, trace.ScopeFile, "applied",
			fmt.Sprintf("%d applied, %d skipped", len(applied.Applied), len(applied.Skipped)))
	}
	return nil
}

// collectDeclared merges the per-file indexes, sorted and without
// duplicates.
func collectDeclared(units []*unit) []qname.Name {
	seen := make(map[string]struct{})
	var out []qname.Name
	for _, u := range units {
		for _, n := range u.declared {
			key := n.String()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
