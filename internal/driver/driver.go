// Package driver runs the checker over a set of files: it loads them,
// builds the existence oracle, checks every file in parallel and
// optionally writes the fixes back.
package driver

import (
	"context"
	"errors"
	"fmt"

	"bugfree/internal/check"
	"bugfree/internal/config"
	"bugfree/internal/diag"
	"bugfree/internal/fix"
	"bugfree/internal/observ"
	"bugfree/internal/oracle"
	"bugfree/internal/phpparse"
	"bugfree/internal/resolve"
	"bugfree/internal/source"
	"bugfree/internal/trace"
)

// ErrNoFiles is returned when the given paths match nothing.
var ErrNoFiles = errors.New("no files to check")

// Options control one run.
type Options struct {
	// Config defaults to config.Default().
	Config *config.Config
	// AutoFix turns fixable findings into fixes, on top of Config.AutoFix.
	AutoFix bool
	// Apply writes the fixes to disk; it implies AutoFix.
	Apply bool
	// Jobs bounds parallelism; 0 uses Config.Jobs, then GOMAXPROCS.
	Jobs     int
	NoCache  bool
	Progress ProgressSink
	// Timings collects per-pass durations into Result.Timing.
	Timings bool
}

func (o Options) autofix(cfg *config.Config) bool {
	return o.AutoFix || o.Apply || cfg.AutoFix
}

// FileResult is the outcome for one file.
type FileResult struct {
	// Path is the display path diagnostics refer to.
	Path        string
	FileID      source.FileID
	Diagnostics []diag.Diagnostic
	Fixes       []fix.Fix
	Applied     *fix.ApplyResult
	Cached      bool
	// Err is a load, parse or tree failure; the file has no diagnostics.
	Err error
}

// Result is the outcome of a run.
type Result struct {
	Files   []FileResult
	FileSet *source.FileSet
	Timing  *observ.Report
}

// Diagnostics flattens all files' diagnostics, ordered by path and line.
func (r *Result) Diagnostics() []diag.Diagnostic {
	bag := diag.NewBag(0)
	for _, f := range r.Files {
		bag.Extend(f.Diagnostics)
	}
	bag.Sort()
	return bag.Items()
}

// Failed lists files that could not be checked.
func (r *Result) Failed() []FileResult {
	var out []FileResult
	for _, f := range r.Files {
		if f.Err != nil {
			out = append(out, f)
		}
	}
	return out
}

// FixCount counts synthesized fixes and, when applying, applied ones.
func (r *Result) FixCount() (found, applied int) {
	for _, f := range r.Files {
		found += len(f.Fixes)
		if f.Applied != nil {
			applied += len(f.Applied.Applied)
		}
	}
	return found, applied
}

// Run checks the files under paths.
func Run(ctx context.Context, paths []string, opts Options) (*Result, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ctx, span := trace.Start(ctx, trace.ScopeDriver, "run")
	defer span.End("")

	var timer *observ.Timer
	if opts.Timings {
		timer = observ.NewTimer()
	}

	done := timer.Track("collect")
	files, err := Collect(paths, cfg.Include, cfg.Exclude)
	done(fmt.Sprintf("%d files", len(files)))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	p := &pipeline{
		cfg:      cfg,
		opts:     opts,
		autofix:  opts.autofix(cfg),
		jobs:     jobs(opts, cfg),
		timer:    timer,
		progress: opts.Progress,
	}
	if cfg.Cache.Enabled && !opts.NoCache {
		if p.cache, err = OpenDiskCache(cfg.Abs(cfg.Cache.Dir)); err != nil {
			trace.Note(ctx, trace.ScopeDriver, "cache disabled", err.Error())
			p.cache = nil
		}
	}

	res, err := p.run(ctx, files)
	if err != nil {
		return nil, err
	}
	if timer != nil {
		report := timer.Report()
		res.Timing = &report
	}
	span.WithExtra("files", fmt.Sprint(len(files)))
	return res, nil
}

// CheckSource checks one in-memory file against o. It is what the
// pipeline does per file, without the cache.
func CheckSource(ctx context.Context, path string, src []byte, o oracle.Oracle, cfg *config.Config, autofix bool) (*check.Result, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	res, levels, err := newResolver(cfg, o, autofix)
	if err != nil {
		return nil, err
	}
	f, err := phpparse.Parse(ctx, path, src)
	if err != nil {
		return nil, err
	}
	return check.Run(f, res, levels)
}

func newResolver(cfg *config.Config, o oracle.Oracle, autofix bool) (*resolve.Resolver, diag.Levels, error) {
	levels, err := cfg.Levels()
	if err != nil {
		return nil, nil, err
	}
	policy, err := cfg.Policy()
	if err != nil {
		return nil, nil, err
	}
	res := resolve.New(o, resolve.DefaultTables(), resolve.Options{
		AutoFix: autofix,
		Rooted:  policy,
		Hints:   cfg.Hints,
	})
	return res, levels, nil
}
