package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"bugfree/internal/config"
	"bugfree/internal/diag"
	"bugfree/internal/diagfmt"
	"bugfree/internal/driver"
	"bugfree/internal/trace"
	"bugfree/internal/ui"
)

// Коды выхода: 0 - чисто, 1 - только предупреждения, 2 - ошибки.
const (
	statusSuccess = 0
	statusWarning = 1
	statusError   = 2
)

// exitError carries a non-zero status without an error message.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// lintOptions are the flags shared by lint and fix.
type lintOptions struct {
	format           diagfmt.Format
	output           string
	pathMode         diagfmt.PathMode
	jobs             int
	noWarnings       bool
	warningsAsErrors bool
	autofix          bool
	apply            bool
	noCache          bool
	showFixes        bool
	preview          bool
	maxDiagnostics   int
	ui               uiMode
	color            bool
	quiet            bool
	timings          bool
	width            int
}

func addLintFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", "pretty", "output format (pretty|short|json|tap|checkstyle|junit|pmd)")
	cmd.Flags().StringP("output", "o", "", "write the report to this file instead of stdout")
	cmd.Flags().String("paths", "auto", "path display (auto|absolute|relative|basename)")
	cmd.Flags().Int("jobs", 0, "max parallel workers (0=config, then auto)")
	cmd.Flags().Bool("no-warnings", false, "ignore warnings in diagnostics")
	cmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	cmd.Flags().Bool("no-cache", false, "do not read or write the result cache")
	cmd.Flags().Bool("suggest", false, "include fixes in the report")
	cmd.Flags().Bool("preview", false, "show the lines every fix changes")
	cmd.Flags().Int("max-diagnostics", 0, "maximum number of diagnostics in JSON output (0=all)")
	cmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
}

func newLintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint [flags] [path...]",
		Short: "Check PHP files for namespace and import problems",
		Long: `Check every PHP file under the given paths (default: the current
directory). Exit status is 0 when clean, 1 when only warnings were found
and 2 on errors.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readLintOptions(cmd)
			if err != nil {
				return err
			}
			opts.autofix, err = cmd.Flags().GetBool("autofix")
			if err != nil {
				return fmt.Errorf("failed to get autofix flag: %w", err)
			}
			return runLint(cmd, args, opts)
		},
	}
	addLintFlags(cmd)
	cmd.Flags().Bool("autofix", false, "turn fixable findings into fixes without writing them")
	return cmd
}

func readLintOptions(cmd *cobra.Command) (lintOptions, error) {
	var opts lintOptions
	flags := cmd.Flags()

	formatStr, err := flags.GetString("format")
	if err != nil {
		return opts, fmt.Errorf("failed to get format flag: %w", err)
	}
	if opts.format, err = diagfmt.ParseFormat(formatStr); err != nil {
		return opts, err
	}
	if opts.output, err = flags.GetString("output"); err != nil {
		return opts, fmt.Errorf("failed to get output flag: %w", err)
	}
	pathsStr, err := flags.GetString("paths")
	if err != nil {
		return opts, fmt.Errorf("failed to get paths flag: %w", err)
	}
	if opts.pathMode, err = diagfmt.ParsePathMode(pathsStr); err != nil {
		return opts, err
	}
	if opts.jobs, err = flags.GetInt("jobs"); err != nil {
		return opts, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if opts.noWarnings, err = flags.GetBool("no-warnings"); err != nil {
		return opts, fmt.Errorf("failed to get no-warnings flag: %w", err)
	}
	if opts.warningsAsErrors, err = flags.GetBool("warnings-as-errors"); err != nil {
		return opts, fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
	}
	if opts.noWarnings && opts.warningsAsErrors {
		return opts, fmt.Errorf("no-warnings and warnings-as-errors flags cannot be used together")
	}
	if opts.noCache, err = flags.GetBool("no-cache"); err != nil {
		return opts, fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	if opts.showFixes, err = flags.GetBool("suggest"); err != nil {
		return opts, fmt.Errorf("failed to get suggest flag: %w", err)
	}
	if opts.preview, err = flags.GetBool("preview"); err != nil {
		return opts, fmt.Errorf("failed to get preview flag: %w", err)
	}
	if opts.maxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
		return opts, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	uiStr, err := flags.GetString("ui")
	if err != nil {
		return opts, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if opts.ui, err = readUIMode(uiStr); err != nil {
		return opts, err
	}

	root := cmd.Root().PersistentFlags()
	colorStr, err := root.GetString("color")
	if err != nil {
		return opts, fmt.Errorf("failed to get color flag: %w", err)
	}
	if opts.color, err = colorEnabled(colorStr, opts.output); err != nil {
		return opts, err
	}
	if opts.quiet, err = root.GetBool("quiet"); err != nil {
		return opts, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if opts.timings, err = root.GetBool("timings"); err != nil {
		return opts, fmt.Errorf("failed to get timings flag: %w", err)
	}
	opts.width = terminalWidth(os.Stdout)
	return opts, nil
}

// runLint checks args and reports. It returns an *exitError when findings
// set a non-zero status.
func runLint(cmd *cobra.Command, args []string, opts lintOptions) error {
	defer closeTracing(cmd)
	defer dumpTraceOnPanic(cmd)

	if len(args) == 0 {
		args = []string{"."}
	}
	cfg, err := loadConfig(cmd, args[0])
	if err != nil {
		return err
	}
	if !opts.quiet && cfg.Path != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "config loaded from %s\n", cfg.Path)
	}
	trace.Note(cmd.Context(), trace.ScopeDriver, "config", cfg.Path)

	runOpts := driver.Options{
		Config:  cfg,
		AutoFix: opts.autofix,
		Apply:   opts.apply,
		Jobs:    opts.jobs,
		NoCache: opts.noCache,
		Timings: opts.timings,
	}

	var (
		events chan driver.Event
		uiDone sync.WaitGroup
	)
	if !opts.quiet && shouldUseTUI(opts.ui) {
		events = make(chan driver.Event, 256)
		runOpts.Progress = driver.ChannelSink{Ch: events}
		uiDone.Add(1)
		go func() {
			defer uiDone.Done()
			if err := ui.Run(cmd.Context(), cmd.ErrOrStderr(), "bugfree", events); err != nil {
				trace.Note(cmd.Context(), trace.ScopeDriver, "ui failed", err.Error())
			}
			// вид мог закрыться раньше - не блокируем драйвер
			for range events {
			}
		}()
	}

	res, err := driver.Run(cmd.Context(), args, runOpts)
	if events != nil {
		close(events)
		uiDone.Wait()
	}
	if err != nil {
		dumpTrace(cmd, "failure")
		return err
	}

	report := buildReport(res, opts.noWarnings)
	if err := writeReport(cmd, report, opts); err != nil {
		return err
	}
	if opts.timings && res.Timing != nil {
		printTimings(cmd.ErrOrStderr(), *res.Timing)
	}
	if len(res.Failed()) > 0 {
		dumpTrace(cmd, "file failures")
	}

	if code := exitStatus(report.Totals(), opts.warningsAsErrors); code != statusSuccess {
		return &exitError{code: code}
	}
	return nil
}

func loadConfig(cmd *cobra.Command, firstPath string) (*config.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	if path != "" {
		return config.Load(path)
	}
	start := firstPath
	if info, err := os.Stat(firstPath); err == nil && !info.IsDir() {
		start = filepath.Dir(firstPath)
	}
	return config.Discover(start)
}

// buildReport converts a driver result for the formatters.
func buildReport(res *driver.Result, noWarnings bool) *diagfmt.Report {
	report := &diagfmt.Report{Time: time.Now()}
	if res.FileSet != nil {
		report.BaseDir = res.FileSet.BaseDir()
	}
	for _, f := range res.Files {
		fr := diagfmt.FileReport{Path: f.Path, Fixes: f.Fixes, Err: f.Err}
		for _, d := range f.Diagnostics {
			if noWarnings && d.Severity == diag.SevWarning {
				continue
			}
			fr.Diagnostics = append(fr.Diagnostics, d)
		}
		if f.Applied != nil {
			fr.Applied = f.Applied.Applied
		}
		if f.Err == nil && res.FileSet != nil {
			fr.Source = res.FileSet.Get(f.FileID)
		}
		report.Files = append(report.Files, fr)
	}
	return report
}

func writeReport(cmd *cobra.Command, report *diagfmt.Report, opts lintOptions) (err error) {
	var out io.Writer = cmd.OutOrStdout()
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		out = f
	}

	fmtOpts := diagfmt.Options{
		PathMode: opts.pathMode,
		Pretty: diagfmt.PrettyOpts{
			Color:       opts.color,
			PathMode:    opts.pathMode,
			Width:       opts.width,
			ShowSource:  true,
			ShowFixes:   opts.showFixes || opts.apply,
			ShowPreview: opts.preview,
			Summary:     !opts.quiet,
		},
		JSON: diagfmt.JSONOpts{
			PathMode:        opts.pathMode,
			Max:             opts.maxDiagnostics,
			IncludeFixes:    opts.showFixes || opts.apply || opts.autofix,
			IncludePreviews: opts.preview,
			Indent:          true,
		},
	}
	return diagfmt.Write(out, report, opts.format, fmtOpts)
}

// exitStatus maps totals to the process status. Files that could not be
// checked count as errors.
func exitStatus(t diagfmt.Totals, warningsAsErrors bool) int {
	switch {
	case t.Errors > 0 || t.Broken > 0:
		return statusError
	case t.Warnings > 0 && warningsAsErrors:
		return statusError
	case t.Warnings > 0:
		return statusWarning
	}
	return statusSuccess
}

func colorEnabled(mode, output string) (bool, error) {
	switch mode {
	case "on", "always":
		return true, nil
	case "off", "never":
		return false, nil
	case "", "auto":
		return output == "" && !color.NoColor && isTerminal(os.Stdout), nil
	}
	return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
}
