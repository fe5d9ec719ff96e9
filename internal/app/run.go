package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/specialistvlad/dagjudge/internal/ctxlog"
	"github.com/specialistvlad/dagjudge/internal/dagdef"
	"github.com/specialistvlad/dagjudge/internal/metric"
	"github.com/specialistvlad/dagjudge/internal/scheduler"
	"github.com/specialistvlad/dagjudge/internal/telemetry"
	"github.com/specialistvlad/dagjudge/internal/testcase"
)

// Report is the printable outcome of a run.
type Report struct {
	Metric     string  `json:"metric"`
	RunID      string  `json:"run_id"`
	Score      float64 `json:"score"`
	Threshold  float64 `json:"threshold"`
	Success    bool    `json:"success"`
	Reason     string  `json:"reason,omitempty"`
	ScoredBy   string  `json:"scored_by"`
	Cost       float64 `json:"cost"`
	VerboseLog string  `json:"verbose_log"`
}

func newReport(r *metric.Result) Report {
	return Report{
		Metric:     r.Metric,
		RunID:      r.RunID,
		Score:      r.Score,
		Threshold:  r.Threshold,
		Success:    r.Success,
		Reason:     r.Reason,
		ScoredBy:   r.ScoredBy,
		Cost:       r.Cost,
		VerboseLog: r.VerboseLog,
	}
}

// Validate loads the definitions and builds every metric graph without
// calling a judge.
func (a *App) Validate(ctx context.Context) (*dagdef.Definitions, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	defs, err := dagdef.Load(ctx, a.config.DefinitionsPath)
	if err != nil {
		return nil, err
	}
	if err := defs.Validate(ctx); err != nil {
		return nil, err
	}
	a.logger.Info("✅ Definitions are valid", "path", a.config.DefinitionsPath, "metrics", strings.Join(defs.MetricNames(), ","))
	return defs, nil
}

// Run evaluates the configured test case against the configured metric and
// writes the report to the app's output.
func (a *App) Run(ctx context.Context) (*metric.Result, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	if a.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.Timeout)
		defer cancel()
	}
	defer func() {
		if err := a.Close(context.WithoutCancel(ctx)); err != nil {
			a.logger.Warn("Failed to shut down cleanly", "error", err)
		}
	}()

	if a.config.CasePath == "" {
		return nil, errors.New("CasePath is a required configuration field and cannot be empty")
	}
	if a.config.HealthcheckPort > 0 {
		if _, err := a.startHealthcheckServer(a.config.HealthcheckPort); err != nil {
			return nil, err
		}
	}
	if a.config.Trace {
		shutdown, err := telemetry.SetupTracing(a.outW)
		if err != nil {
			return nil, err
		}
		a.shutdown = append(a.shutdown, shutdown)
	}

	defs, err := a.Validate(ctx)
	if err != nil {
		return nil, err
	}
	name := a.config.Metric
	if name == "" {
		name = defs.MetricNames()[0]
	}
	tc, err := testcase.Load(a.config.CasePath)
	if err != nil {
		return nil, err
	}
	if a.judge == nil {
		if a.judge, err = newJudge(a.config); err != nil {
			return nil, err
		}
	}
	sched, err := scheduler.New(a.config.Scheduler, a.config.ParallelLimit)
	if err != nil {
		return nil, err
	}

	opts := []metric.Option{metric.WithScheduler(sched)}
	if !a.config.IncludeReason {
		opts = append(opts, metric.WithReason(false))
	}
	m, err := defs.NewMetric(name, a.judge, opts...)
	if err != nil {
		return nil, err
	}

	a.logger.Info("▶️ Starting evaluation", "metric", name, "case", a.config.CasePath, "judge", a.judge.Name(), "scheduler", sched.Name())
	res, err := m.Measure(ctx, tc)
	if err != nil {
		if partial := metric.PartialLog(err); len(partial) > 0 {
			a.logger.Error("Evaluation failed", "metric", name, "completed_nodes", len(partial))
		}
		return nil, err
	}
	if err := a.writeReport(a.outW, newReport(res)); err != nil {
		return nil, err
	}
	return res, nil
}

func (a *App) writeReport(w io.Writer, r Report) error {
	if a.config.Output == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	status := "FAIL"
	if r.Success {
		status = "PASS"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n\n", r.VerboseLog)
	fmt.Fprintf(&sb, "Metric:    %s [%s]\n", r.Metric, status)
	fmt.Fprintf(&sb, "Score:     %.2f (threshold %.2f)\n", r.Score, r.Threshold)
	fmt.Fprintf(&sb, "Scored by: %s\n", r.ScoredBy)
	if r.Reason != "" {
		fmt.Fprintf(&sb, "Reason:    %s\n", r.Reason)
	}
	fmt.Fprintf(&sb, "Cost:      $%.6f\n", r.Cost)
	fmt.Fprintf(&sb, "Run ID:    %s\n", r.RunID)
	_, err := io.WriteString(w, sb.String())
	return err
}
