package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"bugfree/internal/prof"
	"bugfree/internal/trace"
)

// tracing is the state setupTracing leaves for closeTracing.
type tracing struct {
	tracer    trace.Tracer
	heartbeat *trace.Heartbeat
	profile   *prof.Session
	closeOnce sync.Once
}

type tracingKey struct{}

// setupTracing inspects trace-related flags and attaches a tracer to the
// command context.
func setupTracing(cmd *cobra.Command) error {
	root := cmd.Root()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	traceOutput, err := root.PersistentFlags().GetString("trace")
	if err != nil {
		return fmt.Errorf("failed to get trace flag: %w", err)
	}
	levelStr, err := root.PersistentFlags().GetString("trace-level")
	if err != nil {
		return fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	modeStr, err := root.PersistentFlags().GetString("trace-mode")
	if err != nil {
		return fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	formatStr, err := root.PersistentFlags().GetString("trace-format")
	if err != nil {
		return fmt.Errorf("failed to get trace-format flag: %w", err)
	}
	ringSize, err := root.PersistentFlags().GetInt("trace-ring-size")
	if err != nil {
		return fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}
	heartbeatInterval, err := root.PersistentFlags().GetDuration("trace-heartbeat")
	if err != nil {
		return fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return fmt.Errorf("invalid trace level: %w", err)
	}
	// --trace без уровня включает фазы
	if level == trace.LevelOff && traceOutput != "" {
		level = trace.LevelPhase
	}

	paths, err := profilePaths(cmd)
	if err != nil {
		return err
	}
	var profile *prof.Session
	if paths.Enabled() {
		if profile, err = prof.Start(paths); err != nil {
			return err
		}
	}

	if level == trace.LevelOff {
		ctx = trace.WithTracer(ctx, trace.Nop)
		if profile != nil {
			ctx = context.WithValue(ctx, tracingKey{}, &tracing{tracer: trace.Nop, profile: profile})
		}
		cmd.SetContext(ctx)
		return nil
	}

	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return fmt.Errorf("invalid trace mode: %w", err)
	}
	format, err := trace.ParseFormat(formatStr, traceOutput)
	if err != nil {
		return fmt.Errorf("invalid trace format: %w", err)
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: traceOutput,
		RingSize:   ringSize,
		Heartbeat:  heartbeatInterval,
	})
	if err != nil {
		_ = profile.Stop()
		return fmt.Errorf("failed to create tracer: %w", err)
	}

	state := &tracing{tracer: tracer, profile: profile}
	if heartbeatInterval > 0 {
		state.heartbeat = trace.StartHeartbeat(tracer, heartbeatInterval)
	}

	ctx = trace.WithTracer(ctx, tracer)
	ctx = context.WithValue(ctx, tracingKey{}, state)
	cmd.SetContext(ctx)
	return nil
}

func profilePaths(cmd *cobra.Command) (prof.Paths, error) {
	var paths prof.Paths
	var err error
	pf := cmd.Root().PersistentFlags()
	if paths.CPU, err = pf.GetString("cpuprofile"); err != nil {
		return paths, fmt.Errorf("failed to get cpuprofile flag: %w", err)
	}
	if paths.Mem, err = pf.GetString("memprofile"); err != nil {
		return paths, fmt.Errorf("failed to get memprofile flag: %w", err)
	}
	if paths.Trace, err = pf.GetString("exectrace"); err != nil {
		return paths, fmt.Errorf("failed to get exectrace flag: %w", err)
	}
	return paths, nil
}

func tracingFrom(cmd *cobra.Command) *tracing {
	if ctx := cmd.Context(); ctx != nil {
		if state, ok := ctx.Value(tracingKey{}).(*tracing); ok {
			return state
		}
	}
	return nil
}

// closeTracing stops the heartbeat, flushes the tracer and finishes the
// profiles. Safe to call more than once: cobra skips PersistentPostRun when
// RunE fails, so the commands close it themselves too.
func closeTracing(cmd *cobra.Command) {
	state := tracingFrom(cmd)
	if state == nil {
		return
	}
	state.closeOnce.Do(func() {
		if state.heartbeat != nil {
			state.heartbeat.Stop()
		}
		if err := state.tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := state.tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
		if err := state.profile.Stop(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "profile: %v\n", err)
		}
	})
}

// ringOf returns the ring buffer of a ring or both-mode tracer.
func ringOf(t trace.Tracer) *trace.RingTracer {
	switch t := t.(type) {
	case *trace.RingTracer:
		return t
	case *trace.MultiTracer:
		return t.Ring()
	}
	return nil
}

// dumpTrace writes the buffered events to stderr after a failed run.
func dumpTrace(cmd *cobra.Command, reason string) {
	state := tracingFrom(cmd)
	if state == nil {
		return
	}
	ring := ringOf(state.tracer)
	if ring == nil {
		return
	}
	w := cmd.ErrOrStderr()
	fmt.Fprintf(w, "trace: last events before %s\n", reason)
	if err := ring.Dump(w, trace.FormatText); err != nil {
		fmt.Fprintf(w, "trace: dump error: %v\n", err)
	}
}

// dumpTraceOnPanic dumps the ring and re-panics.
func dumpTraceOnPanic(cmd *cobra.Command) {
	if r := recover(); r != nil {
		dumpTrace(cmd, "panic")
		closeTracing(cmd)
		fmt.Fprintf(os.Stderr, "panic: %v\n", r)
		panic(r)
	}
}
